package misc

import "github.com/x448/float16"

func Float16ToFloat32(value uint16) float32 {
	return float16.Frombits(value).Float32()
}

func Float32ToFloat16(value float32) uint16 {
	return float16.Fromfloat32(value).Bits()
}

// RoundTripFloat16 rounds value to the nearest representable half-precision
// number.
func RoundTripFloat16(value float32) float32 {
	return float16.Fromfloat32(value).Float32()
}
