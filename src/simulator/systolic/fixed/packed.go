package fixed

// PackedInt is an N-lane vector where every lane shares one precision. It is
// the unit carried by the input, weight and output streams.
type PackedInt struct {
	Precision Precision
	Value     []int64
}

// NewPackedInt builds a zeroed vector of the given width.
func NewPackedInt(precision Precision, lanes int) PackedInt {
	if lanes < 0 {
		lanes = 0
	}
	return PackedInt{
		Precision: precision,
		Value:     make([]int64, lanes),
	}
}

// FromValues quantizes values into a new vector.
func FromValues(precision Precision, values ...int64) PackedInt {
	packed := NewPackedInt(precision, len(values))
	for i, v := range values {
		packed.Value[i] = precision.Quantize(v)
	}
	return packed
}

// Lanes returns the vector width.
func (p PackedInt) Lanes() int {
	return len(p.Value)
}

// Set stores value in lane i after quantization.
func (p PackedInt) Set(i int, value int64) {
	p.Value[i] = p.Precision.Quantize(value)
}

// Clone returns a deep copy.
func (p PackedInt) Clone() PackedInt {
	clone := PackedInt{Precision: p.Precision, Value: make([]int64, len(p.Value))}
	copy(clone.Value, p.Value)
	return clone
}

// Equal compares lane values and widths. Precision is not compared so that a
// result can be checked against a plain reference vector.
func (p PackedInt) Equal(other PackedInt) bool {
	if len(p.Value) != len(other.Value) {
		return false
	}
	for i := range p.Value {
		if p.Value[i] != other.Value[i] {
			return false
		}
	}
	return true
}
