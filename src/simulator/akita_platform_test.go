package simulator_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"systolicsim/src/simulator"
	"systolicsim/src/simulator/conv"
	"systolicsim/src/simulator/systolic"
)

var _ = Describe("AkitaPlatform", func() {
	var (
		layer *conv.Layer
		dir   string
	)

	BeforeEach(func() {
		params := systolic.DefaultParameters()
		params.IC0 = 4
		params.OC0 = 4
		params.AccumulationBufferSize = 32

		layerParams := conv.LayerParams{OX1: 2, OY1: 2, OC1: 1, IC1: 2, FX: 3, FY: 1, OX0: 2, OY0: 3}

		var err error
		layer, err = conv.GenerateLayer(layerParams, params, 21, conv.SourceFP16)
		Expect(err).NotTo(HaveOccurred())
		dir = GinkgoT().TempDir()
	})

	runSerial := func() *simulator.SystolicPlatform {
		platform := new(simulator.SystolicPlatform)
		platform.InitWithLayer(layer, "")
		for !platform.IsFinished() {
			platform.Cycle()
		}
		return platform
	}

	Describe("running a layer", func() {
		var platform *simulator.AkitaPlatform

		BeforeEach(func() {
			platform = new(simulator.AkitaPlatform)
			platform.InitWithLayer(layer, dir, 500)
		})

		It("should finish in a single Cycle call", func() {
			platform.Cycle()

			Expect(platform.IsFinished()).To(BeTrue())
			Expect(platform.Err()).NotTo(HaveOccurred())
			Expect(platform.Mismatches()).To(BeEmpty())
		})

		It("should match the serial platform cycle for cycle", func() {
			platform.Cycle()
			serial := runSerial()

			Expect(platform.CurrentCycle()).To(Equal(serial.CurrentCycle()))
			Expect(platform.Stats()).To(Equal(serial.Stats()))
			Expect(platform.Output().Data).To(Equal(serial.Output().Data))
		})

		It("should advance simulated time at the array clock", func() {
			platform.Cycle()

			period := 1.0 / 500e6
			cycles := float64(platform.CurrentCycle())
			Expect(platform.ClockMhz()).To(Equal(500))
			Expect(platform.SimulatedTime()).To(BeNumerically(">=", (cycles-1)*period))
			Expect(platform.SimulatedTime()).To(BeNumerically("<=", (cycles+2)*period))
		})

		It("should dump engine and array statistics", func() {
			platform.Cycle()
			platform.Dump()

			content, err := os.ReadFile(filepath.Join(dir, "systolic_log.txt"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(content)).To(ContainSubstring("AkitaPlatform_clock_mhz: 500\n"))
			Expect(string(content)).To(ContainSubstring("SystolicPlatform_status: ok\n"))
			Expect(string(content)).To(ContainSubstring("SystolicArray_tiles_completed: 4\n"))
		})

		It("should ignore Cycle calls after finishing", func() {
			platform.Cycle()
			cycles := platform.CurrentCycle()

			platform.Cycle()
			Expect(platform.CurrentCycle()).To(Equal(cycles))
		})
	})

	Describe("with a single weight bank", func() {
		It("should still match the reference", func() {
			single := *layer
			single.Array.WeightBuffering = systolic.WeightBufferingSingle

			platform := new(simulator.AkitaPlatform)
			platform.InitWithLayer(&single, "", 1000)
			platform.Cycle()

			Expect(platform.Err()).NotTo(HaveOccurred())
			Expect(platform.Mismatches()).To(BeEmpty())
			tile := single.Params.Tile()
			Expect(platform.CurrentCycle()).To(Equal(4 * tile.ExpectedCycles(single.Array)))
		})
	})
})
