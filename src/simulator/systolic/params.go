package systolic

import (
	"fmt"

	"systolicsim/src/misc"
	"systolicsim/src/simulator/systolic/fixed"
)

// MaxLaneBits bounds the output width and the combined input and weight
// widths so that psum + input*weight never leaves int64 before quantizing.
const MaxLaneBits = 62

// Parameters captures the compile-time knobs of one systolic array instance:
// grid geometry, lane precisions, accumulation buffer size and the static
// loop bounds every tile descriptor must respect.
type Parameters struct {
	IC0                    int
	OC0                    int
	AccumulationBufferSize int
	InputPrecision         fixed.Precision
	WeightPrecision        fixed.Precision
	OutputPrecision        fixed.Precision
	Limits                 TileLimits
	WeightBuffering        WeightBuffering
}

// TileLimits are the *_MAX bounds for the per-tile loop trip counts.
type TileLimits struct {
	IC1Max int
	FYMax  int
	FXMax  int
	OX0Max int
	OY0Max int
}

// DefaultParameters returns a 16x16 int8 x int8 -> int32 array with a 1024
// entry accumulation buffer, the configuration used by the reference test
// bench.
func DefaultParameters() Parameters {
	return Parameters{
		IC0:                    16,
		OC0:                    16,
		AccumulationBufferSize: 1024,
		InputPrecision:         fixed.Int(8),
		WeightPrecision:        fixed.Int(8),
		OutputPrecision:        fixed.Int(32),
		Limits: TileLimits{
			IC1Max: 16,
			FYMax:  7,
			FXMax:  7,
			OX0Max: 32,
			OY0Max: 32,
		},
		WeightBuffering: WeightBufferingDouble,
	}
}

// Ramp is the pipeline fill latency: operands need IC0 cycles to reach the
// bottom row and OC0-1 more to leave the output skew bank.
func (p Parameters) Ramp() int {
	return p.IC0 + p.OC0 - 1
}

// MaxTileCycles bounds the cycle count of any tile accepted by these
// parameters, bubbles included.
func (p Parameters) MaxTileCycles() int {
	limits := p.Limits
	passes := limits.IC1Max * limits.FYMax * limits.FXMax
	tileSize := limits.OX0Max * limits.OY0Max
	return passes*p.passGap(tileSize) + p.Ramp()
}

// passGap is the minimum distance in cycles between the first issues of two
// consecutive reduction passes over a tile of tileSize pixels.
func (p Parameters) passGap(tileSize int) int {
	ramp := p.Ramp()
	gap := tileSize
	if gap < ramp+1 {
		// the previous pass must have written every pixel back before it is
		// seeded again
		gap = ramp + 1
	}
	if p.WeightBuffering == WeightBufferingSingle && gap < tileSize+ramp-1 {
		// one bank: the grid must drain before the weights are replaced
		gap = tileSize + ramp - 1
	}
	return gap
}

// Validate checks geometry, precisions and limits.
func (p Parameters) Validate() error {
	if p.IC0 <= 0 || p.OC0 <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidParameters, p.IC0, p.OC0)
	}
	if p.AccumulationBufferSize <= 0 {
		return fmt.Errorf("%w: accumulation buffer size %d", ErrInvalidParameters, p.AccumulationBufferSize)
	}
	for name, precision := range map[string]fixed.Precision{
		"input":  p.InputPrecision,
		"weight": p.WeightPrecision,
		"output": p.OutputPrecision,
	} {
		if err := precision.Validate(); err != nil {
			return fmt.Errorf("%w: %s precision: %v", ErrInvalidParameters, name, err)
		}
	}
	if bits := p.InputPrecision.Bits + p.WeightPrecision.Bits; bits > MaxLaneBits {
		return fmt.Errorf("%w: product width %d exceeds %d bits", ErrInvalidParameters, bits, MaxLaneBits)
	}
	if p.OutputPrecision.Bits > MaxLaneBits {
		return fmt.Errorf("%w: output width %d exceeds %d bits", ErrInvalidParameters, p.OutputPrecision.Bits, MaxLaneBits)
	}
	limits := p.Limits
	if limits.IC1Max <= 0 || limits.FYMax <= 0 || limits.FXMax <= 0 || limits.OX0Max <= 0 || limits.OY0Max <= 0 {
		return fmt.Errorf("%w: non-positive tile limit %+v", ErrInvalidParameters, limits)
	}
	if _, ok := WeightBufferingFromString(p.WeightBuffering.String()); !ok {
		return fmt.Errorf("%w: weight buffering %d", ErrInvalidParameters, int(p.WeightBuffering))
	}
	return nil
}

// LoadParameters pulls array parameters from the shared ConfigLoader.
func LoadParameters(loader *misc.ConfigLoader) Parameters {
	params := DefaultParameters()

	params.IC0 = loader.IC0()
	params.OC0 = loader.OC0()
	params.AccumulationBufferSize = loader.AccumulationBufferSize()

	overflow, _ := fixed.OverflowFromString(loader.OverflowMode())
	params.InputPrecision = fixed.Int(loader.InputPrecision())
	params.WeightPrecision = fixed.Int(loader.WeightPrecision())
	params.OutputPrecision = fixed.Int(loader.OutputPrecision()).WithOverflow(overflow)

	params.Limits = TileLimits{
		IC1Max: loader.IC1Max(),
		FYMax:  loader.FYMax(),
		FXMax:  loader.FXMax(),
		OX0Max: loader.OX0Max(),
		OY0Max: loader.OY0Max(),
	}

	if buffering, ok := WeightBufferingFromString(loader.WeightBuffering()); ok {
		params.WeightBuffering = buffering
	}

	return params
}
