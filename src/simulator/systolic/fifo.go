package systolic

// SkewQueue is a fixed-depth delay line built as a ring of depth registers.
// Each Shift latches one value and returns the value latched depth-1 calls
// earlier, so a depth-1 queue is a plain wire and every extra register adds
// one cycle of skew. Unwarmed registers read as the zero value.
type SkewQueue[T any] struct {
	regs []T
	head int
}

// NewSkewQueue builds a queue with depth registers. Depths below one are
// clamped to one.
func NewSkewQueue[T any](depth int) *SkewQueue[T] {
	if depth < 1 {
		depth = 1
	}
	return &SkewQueue[T]{regs: make([]T, depth)}
}

// Depth returns the number of registers.
func (q *SkewQueue[T]) Depth() int {
	return len(q.regs)
}

// Shift pushes in and pops the oldest value. It must be called exactly once
// per cycle.
func (q *SkewQueue[T]) Shift(in T) T {
	q.regs[q.head] = in
	q.head++
	if q.head == len(q.regs) {
		q.head = 0
	}
	return q.regs[q.head]
}

// Reset zeroes every register.
func (q *SkewQueue[T]) Reset() {
	var zero T
	for i := range q.regs {
		q.regs[i] = zero
	}
	q.head = 0
}

// SkewBank is one skew queue per lane, with lane depths given by a depth
// function of the lane index.
type SkewBank[T any] struct {
	lanes []*SkewQueue[T]
}

// NewSkewBank builds n lanes with depth(k) registers for lane k.
func NewSkewBank[T any](n int, depth func(lane int) int) *SkewBank[T] {
	lanes := make([]*SkewQueue[T], n)
	for k := range lanes {
		lanes[k] = NewSkewQueue[T](depth(k))
	}
	return &SkewBank[T]{lanes: lanes}
}

// Lanes returns the number of queues.
func (b *SkewBank[T]) Lanes() int {
	return len(b.lanes)
}

// Depth returns the register count of lane k.
func (b *SkewBank[T]) Depth(k int) int {
	return b.lanes[k].Depth()
}

// Shift drives lane k for this cycle.
func (b *SkewBank[T]) Shift(k int, in T) T {
	return b.lanes[k].Shift(in)
}

// Reset zeroes every lane.
func (b *SkewBank[T]) Reset() {
	for _, lane := range b.lanes {
		lane.Reset()
	}
}

// Depth functions of the three skew banks around the grid.
func inputSkewDepth(lane int) int { return lane + 1 }

func psumSkewDepth(lane int) int { return lane + 1 }

func outputSkewDepth(oc0 int) func(int) int {
	return func(lane int) int { return oc0 - lane }
}
