package conv

import "fmt"

// Tensor is a dense row-major integer tensor.
type Tensor struct {
	Shape []int
	Data  []int64
}

// NewTensor allocates a zeroed tensor of the given shape.
func NewTensor(shape ...int) *Tensor {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	return &Tensor{
		Shape: append([]int(nil), shape...),
		Data:  make([]int64, size),
	}
}

func (t *Tensor) offset(idx []int) int {
	if len(idx) != len(t.Shape) {
		panic(fmt.Sprintf("tensor of rank %d indexed with %d coordinates", len(t.Shape), len(idx)))
	}
	offset := 0
	for k, i := range idx {
		if i < 0 || i >= t.Shape[k] {
			panic(fmt.Sprintf("index %v outside shape %v", idx, t.Shape))
		}
		offset = offset*t.Shape[k] + i
	}
	return offset
}

// At returns the element at idx.
func (t *Tensor) At(idx ...int) int64 {
	return t.Data[t.offset(idx)]
}

// Set stores value at idx.
func (t *Tensor) Set(value int64, idx ...int) {
	t.Data[t.offset(idx)] = value
}
