package simulator

import (
	"fmt"
	"path/filepath"

	"systolicsim/src/misc"
	"systolicsim/src/simulator/conv"
	"systolicsim/src/simulator/systolic"
	"systolicsim/src/simulator/systolic/fixed"
)

// SystolicPlatform runs one generated conv layer on a single systolic array,
// one array cycle per Cycle call, and checks the result against the direct
// reference convolution when the descriptor stream is exhausted.
type SystolicPlatform struct {
	layer      *conv.Layer
	coords     []conv.TileCoord
	array      *systolic.Array
	streams    systolic.Streams
	output     *systolic.Channel[fixed.PackedInt]
	result     *conv.Tensor
	mismatches []conv.Mismatch

	binDirpath        string
	verbose           int
	progressInterval  int
	nextProgressCycle int

	statFactory  *misc.StatFactory
	currentCycle int
	tilesDone    int64
	err          error
	finished     bool
}

func (this *SystolicPlatform) Init(command_line_parser *misc.CommandLineParser) {
	config_loader := new(misc.ConfigLoader)
	config_loader.Init()

	params := systolic.LoadParameters(config_loader)
	layer_params := conv.LayerParams{
		OX1: config_loader.LayerOX1(),
		OY1: config_loader.LayerOY1(),
		OC1: config_loader.LayerOC1(),
		IC1: config_loader.LayerIC1(),
		FX:  config_loader.LayerFX(),
		FY:  config_loader.LayerFY(),
		OX0: config_loader.LayerOX0(),
		OY0: config_loader.LayerOY0(),
	}

	source, _ := conv.SourceFromString(config_loader.Stimulus())
	layer, err := conv.GenerateLayer(layer_params, params, config_loader.Seed(), source)
	if err != nil {
		panic(err)
	}

	this.InitWithLayer(layer, config_loader.BinDirpath())
	this.SetProgressInterval(config_loader.ProgressInterval())
}

// InitWithLayer prepares the platform for layer without consulting the
// runtime configuration.
func (this *SystolicPlatform) InitWithLayer(layer *conv.Layer, binDirpath string) {
	array, err := systolic.NewArray(layer.Array)
	if err != nil {
		panic(err)
	}

	coords := layer.Params.Tiles()
	streams, output := layer.Streams(coords)
	if err := array.Attach(streams); err != nil {
		panic(err)
	}
	if err := array.Load(layer.Params.Shape()); err != nil {
		panic(err)
	}

	this.layer = layer
	this.coords = coords
	this.array = array
	this.streams = streams
	this.output = output
	this.result = nil
	this.mismatches = nil
	this.binDirpath = binDirpath
	this.verbose = misc.RuntimeVerbosity()
	this.statFactory = new(misc.StatFactory)
	this.statFactory.Init("SystolicPlatform")
	this.currentCycle = 0
	this.tilesDone = 0
	this.err = nil
	this.finished = false

	if this.verbose >= 2 {
		array.Core().Observe(&traceObserver{platform: this})
	}

	if this.verbose >= 1 {
		fmt.Printf("[systolic] %s on a %dx%d %s array, %d tiles of %d cycles\n",
			layer.Params,
			layer.Array.IC0,
			layer.Array.OC0,
			layer.Array.WeightBuffering,
			len(coords),
			layer.Params.Tile().ExpectedCycles(layer.Array),
		)
	}
}

// SetProgressInterval prints a progress line every interval cycles; a
// non-positive interval disables it.
func (this *SystolicPlatform) SetProgressInterval(interval int) {
	if interval < 0 {
		interval = 0
	}
	this.progressInterval = interval
	this.nextProgressCycle = interval
}

func (this *SystolicPlatform) Fini() {
	this.streams = systolic.Streams{}
	this.output = nil
	this.array = nil
}

func (this *SystolicPlatform) IsFinished() bool {
	return this.finished
}

func (this *SystolicPlatform) Cycle() {
	if this.finished {
		return
	}

	this.step()
}

// step advances the array by one cycle and reports whether any work was
// done.
func (this *SystolicPlatform) step() bool {
	if this.finished {
		return false
	}

	if this.array.IsFinished() {
		this.complete()
		return false
	}

	if err := this.array.Cycle(); err != nil {
		this.err = err
		this.finished = true
		fmt.Printf("[systolic] error at cycle %d: %v\n", this.currentCycle, err)
		return false
	}

	this.currentCycle++
	this.statFactory.Increment("cycles", 1)

	if completed := this.array.Stats().TilesCompleted; completed > this.tilesDone {
		this.tilesDone = completed
		if this.verbose >= 1 {
			fmt.Printf("[systolic] tile %d/%d done at cycle %d\n", completed, len(this.coords), this.currentCycle)
		}
	}
	this.emitProgress()

	if this.array.IsFinished() {
		this.complete()
	}
	return true
}

func (this *SystolicPlatform) emitProgress() {
	if this.progressInterval <= 0 || this.currentCycle < this.nextProgressCycle {
		return
	}
	this.nextProgressCycle += this.progressInterval

	stats := this.array.Stats()
	fmt.Printf("[systolic] cycle=%d | tiles started=%d done=%d pending=%d | MACs=%d | outputs=%d\n",
		this.currentCycle,
		this.array.TilesStarted(),
		stats.TilesCompleted,
		this.array.PendingTiles(),
		stats.MacIssues,
		this.output.Len(),
	)
}

func (this *SystolicPlatform) complete() {
	this.finished = true

	result := this.layer.NewOutput()
	if err := this.layer.Collect(this.coords, this.output.Drain(), result); err != nil {
		this.err = err
		fmt.Printf("[systolic] error collecting output: %v\n", err)
		return
	}
	this.result = result

	mismatches, err := conv.Compare(conv.Reference(this.layer), result, 16)
	if err != nil {
		this.err = err
		return
	}
	this.mismatches = mismatches

	if len(mismatches) == 0 {
		fmt.Printf("[systolic] layer finished in %d cycles, output matches reference\n", this.currentCycle)
	} else {
		fmt.Printf("[systolic] layer finished in %d cycles, %d mismatches (first %s)\n",
			this.currentCycle, len(mismatches), mismatches[0])
	}
}

// Err returns the error that stopped the run, if any.
func (this *SystolicPlatform) Err() error {
	return this.err
}

// Output returns the gathered output tensor once the run is complete.
func (this *SystolicPlatform) Output() *conv.Tensor {
	return this.result
}

func (this *SystolicPlatform) Mismatches() []conv.Mismatch {
	return this.mismatches
}

func (this *SystolicPlatform) CurrentCycle() int {
	return this.currentCycle
}

func (this *SystolicPlatform) Stats() systolic.Stats {
	if this.array == nil {
		return systolic.Stats{}
	}
	return this.array.Stats()
}

func (this *SystolicPlatform) Dump() {
	this.writeStatsFile("systolic_log.txt", nil)
}

func (this *SystolicPlatform) writeStatsFile(name string, extra []string) {
	if this.binDirpath == "" {
		return
	}

	file_dumper := new(misc.FileDumper)
	file_dumper.Init(filepath.Join(this.binDirpath, name))

	tile := this.layer.Params.Tile()
	this.statFactory.Set("tiles_total", int64(len(this.coords)))
	this.statFactory.Set("tile_expected_cycles", int64(tile.ExpectedCycles(this.layer.Array)))
	this.statFactory.Set("mismatches", int64(len(this.mismatches)))
	for name, stream := range map[string]any{
		"input":  this.streams.Input,
		"weight": this.streams.Weight,
		"output": this.streams.Output,
	} {
		if counted, ok := stream.(streamTotals); ok {
			reads, writes := counted.Totals()
			this.statFactory.Set(name+"_reads", reads)
			this.statFactory.Set(name+"_writes", writes)
		}
	}

	lines := make([]string, 0)
	lines = append(lines, this.statFactory.ToLines()...)
	stats := this.Stats()
	lines = append(lines, stats.ToLines("SystolicArray")...)
	lines = append(lines, extra...)

	status := "ok"
	if this.err != nil {
		status = this.err.Error()
	} else if !this.finished {
		status = "incomplete"
	} else if len(this.mismatches) > 0 {
		status = "mismatch"
	}
	lines = append(lines, fmt.Sprintf("SystolicPlatform_status: %s", status))

	for _, mismatch := range this.mismatches {
		lines = append(lines, fmt.Sprintf("SystolicPlatform_mismatch: %s", mismatch))
	}

	file_dumper.WriteLines(lines)

	if this.verbose >= 1 {
		fmt.Printf("[systolic] stats written to %s\n", file_dumper.Path())
	}
}

type streamTotals interface {
	Totals() (reads int64, writes int64)
}

// traceObserver prints every accumulation buffer write.
type traceObserver struct {
	systolic.NopObserver
	platform *SystolicPlatform
}

func (this *traceObserver) Accumulated(cycle int, pixel int, row []int64, final bool) {
	fmt.Printf("[systolic] tile %d cycle %d: acc[%d] <- %v final=%v\n",
		this.platform.array.TilesStarted()-1, cycle, pixel, row, final)
}
