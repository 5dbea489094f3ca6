package systolic

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"systolicsim/src/simulator/systolic/fixed"
)

func TestSkewQueueLatency(t *testing.T) {
	for depth := 1; depth <= 4; depth++ {
		q := NewSkewQueue[int](depth)
		var got []int
		for cycle := 0; cycle < 6; cycle++ {
			got = append(got, q.Shift(cycle+1))
		}

		want := make([]int, 6)
		for cycle := range want {
			if src := cycle - (depth - 1); src >= 0 {
				want[cycle] = src + 1
			}
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("depth %d (-want +got):\n%s", depth, diff)
		}
	}
}

func TestSkewQueueReset(t *testing.T) {
	q := NewSkewQueue[int64](3)
	q.Shift(7)
	q.Shift(8)
	q.Reset()
	for k := 0; k < 3; k++ {
		if got := q.Shift(0); got != 0 {
			t.Fatalf("shift %d after reset returned %d", k, got)
		}
	}
	if q := NewSkewQueue[int](0); q.Depth() != 1 {
		t.Fatalf("expected depth clamped to 1, got %d", q.Depth())
	}
}

func TestSkewBankDepths(t *testing.T) {
	input := NewSkewBank[int64](4, inputSkewDepth)
	output := NewSkewBank[int64](4, outputSkewDepth(4))
	for k := 0; k < 4; k++ {
		if input.Depth(k) != k+1 {
			t.Fatalf("input lane %d depth %d", k, input.Depth(k))
		}
		if output.Depth(k) != 4-k {
			t.Fatalf("output lane %d depth %d", k, output.Depth(k))
		}
	}

	// total latency through input lane i, grid column j and output lane j is
	// constant, which is what aligns a result row
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			latency := (input.Depth(i) - 1) + (4 - i) + j + (output.Depth(j) - 1)
			if latency != 4+4-1 {
				t.Fatalf("lane %d column %d latency %d", i, j, latency)
			}
		}
	}
}

func TestLoopCounterOrder(t *testing.T) {
	tile := TileDescriptor{IC1: 2, FY: 2, FX: 2, OX0: 2, OY0: 2}
	c := NewLoopCounter(tile)

	type position struct{ IC1, FY, FX, OY0, OX0 int }
	var got []position
	for !c.Wrapped() {
		got = append(got, position{c.IC1, c.FY, c.FX, c.OY0, c.OX0})
		c.Advance()
	}
	if len(got) != tile.MacIters() {
		t.Fatalf("expected %d iterations, got %d", tile.MacIters(), len(got))
	}

	want := make([]position, 0, tile.MacIters())
	for ic1 := 0; ic1 < 2; ic1++ {
		for fy := 0; fy < 2; fy++ {
			for fx := 0; fx < 2; fx++ {
				for oy0 := 0; oy0 < 2; oy0++ {
					for ox0 := 0; ox0 < 2; ox0++ {
						want = append(want, position{ic1, fy, fx, oy0, ox0})
					}
				}
			}
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("iteration order (-want +got):\n%s", diff)
	}
}

func TestLoopCounterPassFlags(t *testing.T) {
	tile := TileDescriptor{IC1: 2, FY: 1, FX: 3, OX0: 3, OY0: 1}
	c := NewLoopCounter(tile)

	for n := 0; n < tile.MacIters(); n++ {
		pass := n / tile.TileSize()
		if c.Pass() != pass {
			t.Fatalf("iteration %d: pass %d, want %d", n, c.Pass(), pass)
		}
		if c.PixelOffset() != n%tile.TileSize() {
			t.Fatalf("iteration %d: pixel %d, want %d", n, c.PixelOffset(), n%tile.TileSize())
		}
		if c.FirstPass() != (pass == 0) {
			t.Fatalf("iteration %d: FirstPass=%v", n, c.FirstPass())
		}
		if c.LastPass() != (pass == tile.Passes()-1) {
			t.Fatalf("iteration %d: LastPass=%v", n, c.LastPass())
		}
		c.Advance()
	}
	if !c.Wrapped() || c.Pass() != 0 || c.PixelOffset() != 0 {
		t.Fatalf("counter did not wrap to zero: %+v", c)
	}
}

func TestWeightStoreDoubleBuffering(t *testing.T) {
	store := NewWeightStore(1, 1, WeightBufferingDouble)
	if got := store.Weight(0, 0, 5); got != 0 {
		t.Fatalf("expected zero before any load, got %d", got)
	}

	store.Load([][]int64{{3}}, 0)
	store.Load([][]int64{{4}}, 10)

	cases := []struct {
		issue int
		want  int64
	}{
		{0, 3},
		{9, 3},
		{10, 4},
		{25, 4},
	}
	for _, tc := range cases {
		if got := store.Weight(0, 0, tc.issue); got != tc.want {
			t.Fatalf("issue %d: weight %d, want %d", tc.issue, got, tc.want)
		}
	}

	// third load replaces the older bank
	store.Load([][]int64{{5}}, 20)
	if got := store.Weight(0, 0, 15); got != 4 {
		t.Fatalf("issue 15 after third load: weight %d, want 4", got)
	}
	if got := store.Weight(0, 0, 20); got != 5 {
		t.Fatalf("issue 20 after third load: weight %d, want 5", got)
	}
}

func TestWeightStoreSingleBuffering(t *testing.T) {
	store := NewWeightStore(2, 1, WeightBufferingSingle)
	store.Load([][]int64{{1}, {2}}, 0)
	store.Load([][]int64{{7}, {8}}, 4)
	if got := store.Weight(1, 0, 0); got != 8 {
		t.Fatalf("single bank should hold the latest load, got %d", got)
	}
	store.Reset()
	if got := store.Weight(1, 0, 0); got != 0 {
		t.Fatalf("expected zero after reset, got %d", got)
	}
}

func TestWeightBufferingFromString(t *testing.T) {
	for _, name := range []string{"single", "single-buffered"} {
		if got, ok := WeightBufferingFromString(name); !ok || got != WeightBufferingSingle {
			t.Fatalf("%q: got %v ok=%v", name, got, ok)
		}
	}
	for _, name := range []string{"double", "double-buffered"} {
		if got, ok := WeightBufferingFromString(name); !ok || got != WeightBufferingDouble {
			t.Fatalf("%q: got %v ok=%v", name, got, ok)
		}
	}
	if _, ok := WeightBufferingFromString("triple"); ok {
		t.Fatalf("expected unknown strategy to be rejected")
	}
}

func TestAccumulationBuffer(t *testing.T) {
	buf := NewAccumulationBuffer("acc", 4, 2)
	if err := buf.Write(1, []int64{5, 6}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := buf.Write(1, []int64{7, 8}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := buf.Write(3, []int64{1, 1}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	dst := make([]int64, 2)
	if err := buf.Read(1, dst); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff([]int64{7, 8}, dst); diff != "" {
		t.Fatalf("slot 1 (-want +got):\n%s", diff)
	}
	if buf.Occupancy() != 2 || buf.PeakOccupancy() != 2 {
		t.Fatalf("occupancy %d peak %d", buf.Occupancy(), buf.PeakOccupancy())
	}

	if err := buf.Write(4, []int64{0, 0}); err == nil {
		t.Fatalf("expected write past capacity to fail")
	}
	if err := buf.Read(-1, dst); err == nil {
		t.Fatalf("expected negative read to fail")
	}
	if err := buf.Write(0, []int64{1}); err == nil {
		t.Fatalf("expected narrow write to fail")
	}

	buf.Reset()
	if buf.Occupancy() != 0 || buf.PeakOccupancy() != 2 {
		t.Fatalf("after reset occupancy %d peak %d", buf.Occupancy(), buf.PeakOccupancy())
	}
	if diff := cmp.Diff(newRegisters(4, 2), buf.Snapshot(10)); diff != "" {
		t.Fatalf("slots not zeroed (-want +got):\n%s", diff)
	}
	reads, writes := buf.Accesses()
	if reads != 1 || writes != 3 {
		t.Fatalf("accesses reads=%d writes=%d", reads, writes)
	}
}

func TestProcessingElementQuantizes(t *testing.T) {
	pe := NewProcessingElement(fixed.Int(8))
	in, psum := pe.Run(10, 100, 5)
	if in != 10 {
		t.Fatalf("activation not forwarded: %d", in)
	}
	if psum != fixed.Int(8).Quantize(150) {
		t.Fatalf("psum %d, want %d", psum, fixed.Int(8).Quantize(150))
	}

	pe = NewProcessingElement(fixed.Int(8).WithOverflow(fixed.Saturate))
	if _, psum := pe.Run(10, 100, 5); psum != 127 {
		t.Fatalf("saturated psum %d, want 127", psum)
	}
}

func TestGridWavefront(t *testing.T) {
	grid := NewGrid(2, 2, fixed.Int(32))
	weights := [][]int64{{1, 2}, {3, 4}}
	weight := func(i, j int) int64 { return weights[i][j] }

	grid.SetInput(0, 5)
	grid.SetPsum(0, 100)
	grid.Evaluate(weight)
	grid.Shift()

	if grid.Input(0, 1) != 5 {
		t.Fatalf("activation did not move right: %d", grid.Input(0, 1))
	}
	if grid.Psum(1, 0) != 105 {
		t.Fatalf("psum did not move down: %d", grid.Psum(1, 0))
	}

	grid.SetInput(0, 0)
	grid.SetInput(1, 0)
	grid.SetPsum(0, 0)
	grid.SetPsum(1, 0)
	grid.Evaluate(weight)
	if grid.Bottom(0) != 0 {
		t.Fatalf("bottom latched before the shift: %d", grid.Bottom(0))
	}
	grid.Shift()
	if grid.Bottom(0) != 105 {
		t.Fatalf("bottom of column 0: %d, want 105", grid.Bottom(0))
	}
	if grid.Psum(1, 1) != 10 {
		t.Fatalf("psum of column 1: %d, want 10", grid.Psum(1, 1))
	}

	grid.Reset()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if grid.Input(i, j) != 0 || grid.Psum(i, j) != 0 {
				t.Fatalf("register (%d, %d) survived reset", i, j)
			}
		}
	}
}

func TestParametersValidate(t *testing.T) {
	if err := DefaultParameters().Validate(); err != nil {
		t.Fatalf("default parameters rejected: %v", err)
	}

	mutations := map[string]func(*Parameters){
		"zero IC0":       func(p *Parameters) { p.IC0 = 0 },
		"zero buffer":    func(p *Parameters) { p.AccumulationBufferSize = 0 },
		"zero FY max":    func(p *Parameters) { p.Limits.FYMax = 0 },
		"wide input":     func(p *Parameters) { p.InputPrecision = fixed.Int(64) },
		"bad buffering":  func(p *Parameters) { p.WeightBuffering = WeightBuffering(9) },
		"zero precision": func(p *Parameters) { p.WeightPrecision = fixed.Int(0) },
		"wide product":   func(p *Parameters) { p.InputPrecision, p.WeightPrecision = fixed.Int(31), fixed.Int(32) },
		"wide output":    func(p *Parameters) { p.OutputPrecision = fixed.Int(63) },
	}
	for name, mutate := range mutations {
		params := DefaultParameters()
		mutate(&params)
		if err := params.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestPassGap(t *testing.T) {
	params := testParameters(4, 4)
	cases := []struct {
		buffering WeightBuffering
		tileSize  int
		want      int
	}{
		{WeightBufferingDouble, 20, 20},
		{WeightBufferingDouble, 3, 8},
		{WeightBufferingSingle, 20, 26},
		{WeightBufferingSingle, 1, 8},
	}
	for _, tc := range cases {
		params.WeightBuffering = tc.buffering
		if got := params.passGap(tc.tileSize); got != tc.want {
			t.Fatalf("%s tile %d: gap %d, want %d", tc.buffering, tc.tileSize, got, tc.want)
		}
	}
}

func TestTileExpectedCycles(t *testing.T) {
	params := testParameters(2, 2)
	tile := TileDescriptor{IC1: 1, FY: 1, FX: 1, OX0: 4, OY0: 1}
	if got := tile.ExpectedCycles(params); got != tile.MacIters()+params.Ramp() {
		t.Fatalf("single pass: %d cycles", got)
	}
	tile.IC1 = 3
	if got := tile.ExpectedCycles(params); got != tile.MacIters()+params.Ramp() {
		t.Fatalf("double-buffered without bubbles: %d cycles", got)
	}
	if limit := params.MaxTileCycles(); limit < tile.ExpectedCycles(params) {
		t.Fatalf("MaxTileCycles %d below a valid tile", limit)
	}
}

func TestStatsLines(t *testing.T) {
	var total Stats
	total.Accumulate(Stats{Cycles: 10, MacIssues: 5, PeakAccumulator: 3})
	total.Accumulate(Stats{Cycles: 10, MacIssues: 5, PeakAccumulator: 2})
	if total.Cycles != 20 || total.PeakAccumulator != 3 {
		t.Fatalf("accumulated %+v", total)
	}
	if total.Utilization() != 0.5 {
		t.Fatalf("utilization %f", total.Utilization())
	}

	lines := total.ToLines("Core")
	if lines[0] != "Core_cycles: 20" {
		t.Fatalf("first line %q", lines[0])
	}
	if last := lines[len(lines)-1]; !strings.HasPrefix(last, "Core_utilization: 0.5") {
		t.Fatalf("last line %q", last)
	}
}
