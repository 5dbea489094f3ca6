package conv

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/samber/lo"

	"systolicsim/src/misc"
	"systolicsim/src/simulator/systolic"
	"systolicsim/src/simulator/systolic/fixed"
)

// Source selects how generated values are drawn.
type Source int

const (
	// SourceUniform draws integers uniformly over the lane range.
	SourceUniform Source = iota
	// SourceFP16 draws normally distributed half-precision values and
	// quantizes them symmetrically onto the lane range.
	SourceFP16
)

func (s Source) String() string {
	switch s {
	case SourceUniform:
		return "uniform"
	case SourceFP16:
		return "fp16"
	default:
		return "unknown"
	}
}

// SourceFromString converts an option value into a Source. The bool return
// is false for unknown names.
func SourceFromString(value string) (Source, bool) {
	switch value {
	case "uniform":
		return SourceUniform, true
	case "fp16":
		return SourceFP16, true
	default:
		return SourceUniform, false
	}
}

// fp16Range is the magnitude mapped onto the lane maximum.
const fp16Range = 4.0

// GenerateLayer builds a deterministic pseudo-random layer.
func GenerateLayer(params LayerParams, array systolic.Parameters, seed int64, source Source) (*Layer, error) {
	if err := array.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(array); err != nil {
		return nil, err
	}
	if source != SourceUniform && source != SourceFP16 {
		return nil, fmt.Errorf("unknown source %d", int(source))
	}

	rng := rand.New(rand.NewSource(seed))
	layer := &Layer{Params: params, Array: array}
	layer.Input = NewTensor(layer.InputChannels(), params.InputHeight(), params.InputWidth())
	layer.Weights = NewTensor(layer.OutputChannels(), layer.InputChannels(), params.FY, params.FX)

	draw := func(p fixed.Precision) int64 {
		switch source {
		case SourceFP16:
			return QuantizeFP16(float32(rng.NormFloat64()), p)
		default:
			return p.Min() + rng.Int63n(p.Max()-p.Min()+1)
		}
	}

	layer.Input.Data = lo.Times(len(layer.Input.Data), func(int) int64 { return draw(array.InputPrecision) })
	layer.Weights.Data = lo.Times(len(layer.Weights.Data), func(int) int64 { return draw(array.WeightPrecision) })
	return layer, nil
}

// QuantizeFP16 rounds value to half precision and maps [-fp16Range,
// fp16Range] symmetrically onto p, saturating outside it.
func QuantizeFP16(value float32, p fixed.Precision) int64 {
	half := misc.RoundTripFloat16(value)
	scaled := math.Round(float64(half) / fp16Range * float64(p.Max()))
	if scaled > float64(p.Max()) {
		return p.Max()
	}
	if scaled < float64(p.Min()) {
		return p.Min()
	}
	return int64(scaled)
}
