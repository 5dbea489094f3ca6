package systolic

import "fmt"

// TileDescriptor holds the loop bounds of one output tile. It is produced by
// the Looper and consumed once per core invocation.
type TileDescriptor struct {
	IC1 int
	FY  int
	FX  int
	OX0 int
	OY0 int
}

// TileSize is the number of output pixels in the tile.
func (d TileDescriptor) TileSize() int {
	return d.OX0 * d.OY0
}

// Passes is the number of (ic1, fy, fx) reduction passes.
func (d TileDescriptor) Passes() int {
	return d.IC1 * d.FY * d.FX
}

// MacIters is the number of MAC issues (input reads) for the tile.
func (d TileDescriptor) MacIters() int {
	return d.Passes() * d.TileSize()
}

// WeightRows is the number of weight rows read for the tile.
func (d TileDescriptor) WeightRows(ic0 int) int {
	return d.Passes() * ic0
}

// Validate rejects descriptors that do not fit the static limits or the
// accumulation buffer. It runs before any cycle of the tile.
func (d TileDescriptor) Validate(params Parameters) error {
	bounds := []struct {
		name  string
		value int
		max   int
	}{
		{"IC1", d.IC1, params.Limits.IC1Max},
		{"FY", d.FY, params.Limits.FYMax},
		{"FX", d.FX, params.Limits.FXMax},
		{"OX0", d.OX0, params.Limits.OX0Max},
		{"OY0", d.OY0, params.Limits.OY0Max},
	}
	for _, b := range bounds {
		if b.value <= 0 || b.value > b.max {
			return fmt.Errorf("%w: %s=%d outside [1, %d]", ErrInvalidTile, b.name, b.value, b.max)
		}
	}
	if d.TileSize() > params.AccumulationBufferSize {
		return fmt.Errorf("%w: OX0*OY0=%d exceeds accumulation buffer capacity %d",
			ErrInvalidTile, d.TileSize(), params.AccumulationBufferSize)
	}
	return nil
}

// ExpectedCycles returns the cycle count of the tile including any bubbles
// the pass interlock inserts.
func (d TileDescriptor) ExpectedCycles(params Parameters) int {
	passes := d.Passes()
	if passes == 0 {
		return 0
	}
	gap := params.passGap(d.TileSize())
	return (passes-1)*gap + d.TileSize() + params.Ramp()
}

func (d TileDescriptor) String() string {
	return fmt.Sprintf("tile{IC1=%d FY=%d FX=%d OX0=%d OY0=%d}", d.IC1, d.FY, d.FX, d.OX0, d.OY0)
}
