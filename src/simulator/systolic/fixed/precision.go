package fixed

import (
	"fmt"
	"math"
)

// Overflow selects what happens when a value leaves the representable range
// of a lane.
type Overflow int

const (
	// Wrap keeps the low Bits bits, two's complement for signed lanes.
	Wrap Overflow = iota
	// Saturate clamps to the nearest representable bound.
	Saturate
)

func (o Overflow) String() string {
	switch o {
	case Wrap:
		return "wrap"
	case Saturate:
		return "saturate"
	default:
		return "unknown"
	}
}

// OverflowFromString converts an option value into an Overflow mode. The bool
// return is false for unknown names.
func OverflowFromString(value string) (Overflow, bool) {
	switch value {
	case "wrap":
		return Wrap, true
	case "saturate":
		return Saturate, true
	default:
		return Wrap, false
	}
}

// Precision describes one integer lane: its width, signedness and overflow
// behaviour. Widths up to 63 bits are supported so that every product of two
// 32-bit lanes still fits the int64 carrier.
type Precision struct {
	Bits     int
	Signed   bool
	Overflow Overflow
}

// Int returns a wrapping signed precision of the given width.
func Int(bits int) Precision {
	return Precision{Bits: bits, Signed: true, Overflow: Wrap}
}

// Uint returns a wrapping unsigned precision of the given width.
func Uint(bits int) Precision {
	return Precision{Bits: bits, Signed: false, Overflow: Wrap}
}

// WithOverflow returns a copy of p using the provided overflow mode.
func (p Precision) WithOverflow(mode Overflow) Precision {
	p.Overflow = mode
	return p
}

// Validate reports whether the precision can be represented on an int64
// carrier.
func (p Precision) Validate() error {
	if p.Bits <= 0 || p.Bits > 63 {
		return fmt.Errorf("precision width %d out of range [1, 63]", p.Bits)
	}
	if p.Overflow != Wrap && p.Overflow != Saturate {
		return fmt.Errorf("unknown overflow mode %d", int(p.Overflow))
	}
	return nil
}

// Min returns the smallest representable value.
func (p Precision) Min() int64 {
	if !p.Signed {
		return 0
	}
	return -(int64(1) << (p.Bits - 1))
}

// Max returns the largest representable value.
func (p Precision) Max() int64 {
	if p.Signed {
		return int64(1)<<(p.Bits-1) - 1
	}
	if p.Bits == 63 {
		return math.MaxInt64
	}
	return int64(1)<<p.Bits - 1
}

// Contains reports whether value is representable without overflow.
func (p Precision) Contains(value int64) bool {
	return value >= p.Min() && value <= p.Max()
}

// Quantize maps value into the lane's range according to the overflow mode.
func (p Precision) Quantize(value int64) int64 {
	if p.Contains(value) {
		return value
	}

	if p.Overflow == Saturate {
		if value < p.Min() {
			return p.Min()
		}
		return p.Max()
	}

	mask := uint64(1)<<p.Bits - 1
	raw := uint64(value) & mask
	if p.Signed && raw&(uint64(1)<<(p.Bits-1)) != 0 {
		return int64(raw | ^mask)
	}
	return int64(raw)
}

func (p Precision) String() string {
	kind := "int"
	if !p.Signed {
		kind = "uint"
	}
	return fmt.Sprintf("%s%d/%s", kind, p.Bits, p.Overflow)
}
