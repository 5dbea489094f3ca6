package systolic

import (
	"fmt"

	"systolicsim/src/simulator/systolic/fixed"
)

// InputStream supplies IC0-lane activation vectors, one per MAC issue.
type InputStream interface {
	Read() (fixed.PackedInt, error)
}

// WeightStream supplies OC0-lane weight rows, IC0 per reduction pass.
type WeightStream interface {
	Read() (fixed.PackedInt, error)
}

// OutputStream receives OC0-lane result rows, one per output pixel.
type OutputStream interface {
	Write(row fixed.PackedInt) error
}

// Streams bundles the three data streams of one array.
type Streams struct {
	Input  InputStream
	Weight WeightStream
	Output OutputStream
}

func (s Streams) validate() error {
	if s.Input == nil || s.Weight == nil || s.Output == nil {
		return fmt.Errorf("%w: missing stream (input=%v weight=%v output=%v)",
			ErrInvalidTile, s.Input != nil, s.Weight != nil, s.Output != nil)
	}
	return nil
}

// Channel is an ordered FIFO used for every stream between the test bench,
// the looper and the core. A zero capacity means unbounded. Reading an empty
// channel or writing a full one is a protocol error, never a blocking wait:
// the model is single-threaded and a stall would never resolve.
type Channel[T any] struct {
	Name     string
	items    []T
	capacity int
	reads    int64
	writes   int64
}

// NewChannel builds an empty channel.
func NewChannel[T any](name string, capacity int) *Channel[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Channel[T]{
		Name:     name,
		items:    make([]T, 0),
		capacity: capacity,
	}
}

// Write appends item.
func (c *Channel[T]) Write(item T) error {
	if c.capacity > 0 && len(c.items) >= c.capacity {
		return fmt.Errorf("%w: %s full at %d items", ErrStreamOverflow, c.Name, c.capacity)
	}
	c.items = append(c.items, item)
	c.writes++
	return nil
}

// Read removes and returns the oldest item.
func (c *Channel[T]) Read() (T, error) {
	var zero T
	if len(c.items) == 0 {
		return zero, fmt.Errorf("%w: %s empty after %d reads", ErrStreamUnderflow, c.Name, c.reads)
	}

	item := c.items[0]
	c.items[0] = zero
	c.items = c.items[1:]
	c.reads++

	return item, nil
}

// Len returns the number of queued items.
func (c *Channel[T]) Len() int {
	return len(c.items)
}

// Drain removes and returns every queued item.
func (c *Channel[T]) Drain() []T {
	items := c.items
	c.reads += int64(len(items))
	c.items = make([]T, 0)
	return items
}

// Totals returns the number of reads and writes performed.
func (c *Channel[T]) Totals() (reads int64, writes int64) {
	return c.reads, c.writes
}
