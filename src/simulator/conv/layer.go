package conv

import (
	"fmt"

	"systolicsim/src/simulator/systolic"
)

// LayerParams is the tiling of one stride-1, unpadded convolution layer.
// Output channels are OC1 groups of the array's OC0 columns, input channels
// IC1 groups of its IC0 rows, and the output image OX1 x OY1 tiles of
// OX0 x OY0 pixels.
type LayerParams struct {
	OX1 int
	OY1 int
	OC1 int
	IC1 int
	FX  int
	FY  int
	OX0 int
	OY0 int
}

// Tile returns the per-tile descriptor shared by every output tile.
func (l LayerParams) Tile() systolic.TileDescriptor {
	return systolic.TileDescriptor{IC1: l.IC1, FY: l.FY, FX: l.FX, OX0: l.OX0, OY0: l.OY0}
}

// Shape returns the outer tiling handed to the looper.
func (l LayerParams) Shape() systolic.LayerShape {
	return systolic.LayerShape{OX1: l.OX1, OY1: l.OY1, OC1: l.OC1, Tile: l.Tile()}
}

func (l LayerParams) OutputWidth() int  { return l.OX1 * l.OX0 }
func (l LayerParams) OutputHeight() int { return l.OY1 * l.OY0 }
func (l LayerParams) InputWidth() int   { return l.OutputWidth() + l.FX - 1 }
func (l LayerParams) InputHeight() int  { return l.OutputHeight() + l.FY - 1 }

// Validate checks the layer against the array parameters.
func (l LayerParams) Validate(params systolic.Parameters) error {
	if err := l.Shape().Validate(); err != nil {
		return err
	}
	return l.Tile().Validate(params)
}

func (l LayerParams) String() string {
	return fmt.Sprintf("layer{OX1=%d OY1=%d OC1=%d %s}", l.OX1, l.OY1, l.OC1, l.Tile())
}

// TileCoord locates one output tile.
type TileCoord struct {
	OX1 int
	OY1 int
	OC1 int
}

// Tiles lists the output tiles in the order the looper issues them: image
// tiles outermost with x fastest, kernel tiles inside.
func (l LayerParams) Tiles() []TileCoord {
	coords := make([]TileCoord, 0, l.OX1*l.OY1*l.OC1)
	for p := 0; p < l.OX1*l.OY1; p++ {
		for oc1 := 0; oc1 < l.OC1; oc1++ {
			coords = append(coords, TileCoord{OX1: p % l.OX1, OY1: p / l.OX1, OC1: oc1})
		}
	}
	return coords
}

// Layer is a generated layer: activations [IC][IY][IX] and weights
// [OC][IC][FY][FX] for an array with the given parameters.
type Layer struct {
	Params  LayerParams
	Array   systolic.Parameters
	Input   *Tensor
	Weights *Tensor
}

func (l *Layer) InputChannels() int  { return l.Params.IC1 * l.Array.IC0 }
func (l *Layer) OutputChannels() int { return l.Params.OC1 * l.Array.OC0 }

// NewOutput allocates an output tensor [OC][OY][OX].
func (l *Layer) NewOutput() *Tensor {
	return NewTensor(l.OutputChannels(), l.Params.OutputHeight(), l.Params.OutputWidth())
}
