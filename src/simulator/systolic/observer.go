package systolic

import "systolicsim/src/simulator/systolic/fixed"

// Observer receives per-cycle events from a Core. Slices passed to an
// observer are only valid for the duration of the call.
type Observer interface {
	// WeightLoaded fires when a reduction pass reads its IC0 weight rows.
	WeightLoaded(cycle int, pass int, rows [][]int64)
	// Accumulated fires for every valid row written to the accumulation
	// buffer. final is set on the last reduction pass.
	Accumulated(cycle int, pixel int, row []int64, final bool)
	// Emitted fires when a finished row is written to the output stream.
	Emitted(cycle int, pixel int, row fixed.PackedInt)
	// CycleEvaluated fires after the grid evaluates, before the register
	// shift, so grid reads show the operands PEs consumed this cycle.
	CycleEvaluated(cycle int, grid *Grid)
}

// NopObserver implements Observer with empty methods. Embed it to override a
// subset of hooks.
type NopObserver struct{}

func (NopObserver) WeightLoaded(int, int, [][]int64) {}
func (NopObserver) Accumulated(int, int, []int64, bool) {}
func (NopObserver) Emitted(int, int, fixed.PackedInt) {}
func (NopObserver) CycleEvaluated(int, *Grid) {}
