package systolic

import (
	"math/rand"
	"testing"

	"systolicsim/src/simulator/systolic/fixed"
)

// tileStimulus is one tile's worth of stream data in issue order.
type tileStimulus struct {
	tile    TileDescriptor
	inputs  [][]int64
	weights [][]int64
}

func testParameters(ic0, oc0 int) Parameters {
	params := DefaultParameters()
	params.IC0 = ic0
	params.OC0 = oc0
	params.AccumulationBufferSize = 64
	return params
}

func randomStimulus(rng *rand.Rand, params Parameters, tile TileDescriptor) tileStimulus {
	stim := tileStimulus{tile: tile}
	for n := 0; n < tile.MacIters(); n++ {
		vec := make([]int64, params.IC0)
		for i := range vec {
			vec[i] = randomLane(rng, params.InputPrecision)
		}
		stim.inputs = append(stim.inputs, vec)
	}
	for n := 0; n < tile.WeightRows(params.IC0); n++ {
		row := make([]int64, params.OC0)
		for j := range row {
			row[j] = randomLane(rng, params.WeightPrecision)
		}
		stim.weights = append(stim.weights, row)
	}
	return stim
}

func randomLane(rng *rand.Rand, p fixed.Precision) int64 {
	span := p.Max() - p.Min() + 1
	return p.Min() + rng.Int63n(span)
}

func (s tileStimulus) streams(params Parameters) (Streams, *Channel[fixed.PackedInt]) {
	input := NewChannel[fixed.PackedInt]("Input", 0)
	for _, v := range s.inputs {
		_ = input.Write(fixed.FromValues(params.InputPrecision, v...))
	}
	weight := NewChannel[fixed.PackedInt]("Weight", 0)
	for _, w := range s.weights {
		_ = weight.Write(fixed.FromValues(params.WeightPrecision, w...))
	}
	output := NewChannel[fixed.PackedInt]("Output", 0)
	return Streams{Input: input, Weight: weight, Output: output}, output
}

// reference accumulates in the order the grid does: passes in issue order,
// rows top to bottom within a pass.
func (s tileStimulus) reference(params Parameters) [][]int64 {
	size := s.tile.TileSize()
	out := newRegisters(size, params.OC0)
	for pass := 0; pass < s.tile.Passes(); pass++ {
		for p := 0; p < size; p++ {
			x := s.inputs[pass*size+p]
			for j := 0; j < params.OC0; j++ {
				for i := 0; i < params.IC0; i++ {
					w := s.weights[pass*params.IC0+i][j]
					out[p][j] = params.OutputPrecision.Quantize(out[p][j] + x[i]*w)
				}
			}
		}
	}
	return out
}

func drainRows(t *testing.T, out *Channel[fixed.PackedInt]) [][]int64 {
	t.Helper()
	rows := make([][]int64, 0, out.Len())
	for _, row := range out.Drain() {
		rows = append(rows, row.Value)
	}
	return rows
}

func mustCore(t *testing.T, params Parameters) *Core {
	t.Helper()
	core, err := NewCore(params)
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}
	return core
}

// recorder keeps every accumulation and emission event.
type recorder struct {
	NopObserver
	accumulated []accumulateEvent
	emitted     []int
	weightLoads []int
}

type accumulateEvent struct {
	cycle int
	pixel int
	row   []int64
	final bool
}

func (r *recorder) WeightLoaded(cycle int, pass int, rows [][]int64) {
	r.weightLoads = append(r.weightLoads, cycle)
}

func (r *recorder) Accumulated(cycle int, pixel int, row []int64, final bool) {
	r.accumulated = append(r.accumulated, accumulateEvent{
		cycle: cycle,
		pixel: pixel,
		row:   append([]int64(nil), row...),
		final: final,
	})
}

func (r *recorder) Emitted(cycle int, pixel int, row fixed.PackedInt) {
	r.emitted = append(r.emitted, cycle)
}
