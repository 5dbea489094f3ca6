package conv

import (
	"fmt"
	"slices"
)

// Mismatch is one differing element.
type Mismatch struct {
	Index []int
	Want  int64
	Got   int64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%v: want %d got %d", m.Index, m.Want, m.Got)
}

// Compare returns up to limit mismatches between want and got. A non-positive
// limit reports every mismatch.
func Compare(want, got *Tensor, limit int) ([]Mismatch, error) {
	if !slices.Equal(want.Shape, got.Shape) {
		return nil, fmt.Errorf("shape mismatch: want %v got %v", want.Shape, got.Shape)
	}

	var mismatches []Mismatch
	for k := range want.Data {
		if want.Data[k] == got.Data[k] {
			continue
		}
		mismatches = append(mismatches, Mismatch{Index: unravel(k, want.Shape), Want: want.Data[k], Got: got.Data[k]})
		if limit > 0 && len(mismatches) == limit {
			break
		}
	}
	return mismatches, nil
}

func unravel(offset int, shape []int) []int {
	idx := make([]int, len(shape))
	for k := len(shape) - 1; k >= 0; k-- {
		idx[k] = offset % shape[k]
		offset /= shape[k]
	}
	return idx
}
