package systolic

// LoopCounter is the flattened loop nest of a tile as a mixed-radix odometer.
// Digits advance ox0 first, carrying into oy0, fx, fy and finally ic1.
type LoopCounter struct {
	OX0 int
	OY0 int
	FX  int
	FY  int
	IC1 int

	bounds  TileDescriptor
	wrapped bool
}

// NewLoopCounter returns a counter positioned on the first iteration of d.
func NewLoopCounter(d TileDescriptor) LoopCounter {
	return LoopCounter{bounds: d}
}

// Advance moves to the next iteration. After the last iteration the counter
// wraps to zero and Wrapped reports true.
func (c *LoopCounter) Advance() {
	digits := []struct {
		value *int
		bound int
	}{
		{&c.OX0, c.bounds.OX0},
		{&c.OY0, c.bounds.OY0},
		{&c.FX, c.bounds.FX},
		{&c.FY, c.bounds.FY},
		{&c.IC1, c.bounds.IC1},
	}
	for _, d := range digits {
		*d.value++
		if *d.value < d.bound {
			return
		}
		*d.value = 0
	}
	c.wrapped = true
}

// Wrapped reports whether Advance has run past the final iteration.
func (c *LoopCounter) Wrapped() bool {
	return c.wrapped
}

// PixelOffset is the flattened pixel index within the tile.
func (c *LoopCounter) PixelOffset() int {
	return c.OY0*c.bounds.OX0 + c.OX0
}

// Pass is the flattened reduction pass index.
func (c *LoopCounter) Pass() int {
	return (c.IC1*c.bounds.FY+c.FY)*c.bounds.FX + c.FX
}

// FirstPass reports ic1 == fy == fx == 0.
func (c *LoopCounter) FirstPass() bool {
	return c.IC1 == 0 && c.FY == 0 && c.FX == 0
}

// LastPass reports that every reduction digit sits on its final value.
func (c *LoopCounter) LastPass() bool {
	return c.IC1 == c.bounds.IC1-1 && c.FY == c.bounds.FY-1 && c.FX == c.bounds.FX-1
}
