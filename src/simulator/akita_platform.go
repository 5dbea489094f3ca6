package simulator

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"systolicsim/src/misc"
	"systolicsim/src/simulator/conv"
)

// arrayComponent exposes the systolic platform to akita as a ticking
// component. Each tick is one array cycle; the component stops asking for
// ticks once the layer is done.
type arrayComponent struct {
	*sim.TickingComponent

	platform *SystolicPlatform
}

func (this *arrayComponent) Tick() bool {
	return this.platform.step()
}

// AkitaPlatform drives a SystolicPlatform from an akita serial engine at the
// configured clock frequency. The first Cycle call schedules the component
// and runs the engine until no more events remain.
type AkitaPlatform struct {
	SystolicPlatform

	engine    *sim.SerialEngine
	component *arrayComponent
	clockMhz  int
	started   bool
	endTime   float64
}

func (this *AkitaPlatform) Init(command_line_parser *misc.CommandLineParser) {
	this.SystolicPlatform.Init(command_line_parser)

	config_loader := new(misc.ConfigLoader)
	config_loader.Init()
	this.buildEngine(config_loader.ClockMhz())
}

// InitWithLayer prepares the platform for layer with an array clocked at
// clockMhz.
func (this *AkitaPlatform) InitWithLayer(layer *conv.Layer, binDirpath string, clockMhz int) {
	this.SystolicPlatform.InitWithLayer(layer, binDirpath)
	this.buildEngine(clockMhz)
}

func (this *AkitaPlatform) buildEngine(clockMhz int) {
	if clockMhz <= 0 {
		clockMhz = 1
	}

	engine := sim.NewSerialEngine()
	component := &arrayComponent{platform: &this.SystolicPlatform}
	component.TickingComponent = sim.NewTickingComponent(
		"SystolicArray",
		engine,
		sim.Freq(clockMhz)*sim.MHz,
		component,
	)

	this.engine = engine
	this.component = component
	this.clockMhz = clockMhz
	this.started = false
}

func (this *AkitaPlatform) Cycle() {
	if this.finished {
		return
	}

	if !this.started {
		this.started = true
		this.component.TickLater()
	}

	if err := this.engine.Run(); err != nil {
		this.err = err
		this.finished = true
		fmt.Printf("[systolic] akita engine error: %v\n", err)
		return
	}
	this.endTime = float64(this.engine.CurrentTime())

	if !this.finished {
		// the component went idle without finishing the layer
		this.err = fmt.Errorf("akita engine drained at cycle %d before the layer finished", this.currentCycle)
		this.finished = true
	}
}

// SimulatedTime returns the engine time, in seconds, at which the last tick
// ran.
func (this *AkitaPlatform) SimulatedTime() float64 {
	return this.endTime
}

func (this *AkitaPlatform) ClockMhz() int {
	return this.clockMhz
}

func (this *AkitaPlatform) Dump() {
	this.writeStatsFile("systolic_log.txt", []string{
		fmt.Sprintf("AkitaPlatform_clock_mhz: %d", this.clockMhz),
		fmt.Sprintf("AkitaPlatform_simulated_time_sec: %.9f", this.endTime),
	})
}
