package systolic

import "fmt"

// AccumulationBuffer holds the running OC0-wide partial sum of every pixel of
// the tile in flight. Capacity is fixed at construction; occupancy counts the
// slots written since the last reset so that the peak footprint of a layer can
// be reported.
type AccumulationBuffer struct {
	Name     string
	width    int
	slots    [][]int64
	written  []bool
	occupied int
	peak     int
	reads    int64
	writes   int64
}

// NewAccumulationBuffer builds a zeroed buffer of capacity slots, each width
// lanes wide.
func NewAccumulationBuffer(name string, capacity int, width int) *AccumulationBuffer {
	if capacity < 0 {
		capacity = 0
	}
	if width <= 0 {
		width = 1
	}

	return &AccumulationBuffer{
		Name:    name,
		width:   width,
		slots:   newRegisters(capacity, width),
		written: make([]bool, capacity),
	}
}

// Capacity returns the number of pixel slots.
func (b *AccumulationBuffer) Capacity() int {
	return len(b.slots)
}

// Width returns the lane count of a slot.
func (b *AccumulationBuffer) Width() int {
	return b.width
}

// Occupancy returns the number of slots written since the last reset.
func (b *AccumulationBuffer) Occupancy() int {
	return b.occupied
}

// PeakOccupancy returns the largest occupancy observed across resets.
func (b *AccumulationBuffer) PeakOccupancy() int {
	return b.peak
}

// Accesses returns the read and write counts since construction.
func (b *AccumulationBuffer) Accesses() (reads int64, writes int64) {
	return b.reads, b.writes
}

// Read copies the sum of pixel p into dst.
func (b *AccumulationBuffer) Read(p int, dst []int64) error {
	if p < 0 || p >= len(b.slots) {
		return fmt.Errorf("%s: read of pixel %d outside capacity %d", b.Name, p, len(b.slots))
	}
	copy(dst, b.slots[p])
	b.reads++
	return nil
}

// Write replaces the sum of pixel p with row.
func (b *AccumulationBuffer) Write(p int, row []int64) error {
	if p < 0 || p >= len(b.slots) {
		return fmt.Errorf("%s: write of pixel %d outside capacity %d", b.Name, p, len(b.slots))
	}
	if len(row) != b.width {
		return fmt.Errorf("%s: write of %d lanes into %d-lane slot", b.Name, len(row), b.width)
	}
	copy(b.slots[p], row)
	if !b.written[p] {
		b.written[p] = true
		b.occupied++
		if b.occupied > b.peak {
			b.peak = b.occupied
		}
	}
	b.writes++
	return nil
}

// Snapshot returns a copy of the first n slots.
func (b *AccumulationBuffer) Snapshot(n int) [][]int64 {
	if n > len(b.slots) {
		n = len(b.slots)
	}
	snapshot := newRegisters(n, b.width)
	for p := 0; p < n; p++ {
		copy(snapshot[p], b.slots[p])
	}
	return snapshot
}

// Reset zeroes every slot and clears occupancy. Peak occupancy and access
// counters survive.
func (b *AccumulationBuffer) Reset() {
	for p, slot := range b.slots {
		for k := range slot {
			slot[k] = 0
		}
		b.written[p] = false
	}
	b.occupied = 0
}
