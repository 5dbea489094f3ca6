package conv

import (
	"fmt"

	"github.com/samber/lo"

	"systolicsim/src/simulator/systolic"
	"systolicsim/src/simulator/systolic/fixed"
)

// TileInputs returns the activation vectors of one tile in issue order:
// ic1, fy, fx, oy0, ox0 from outermost to innermost.
func (l *Layer) TileInputs(coord TileCoord) []fixed.PackedInt {
	p := l.Params
	vectors := make([]fixed.PackedInt, 0, p.Tile().MacIters())
	for ic1 := 0; ic1 < p.IC1; ic1++ {
		for fy := 0; fy < p.FY; fy++ {
			for fx := 0; fx < p.FX; fx++ {
				for oy0 := 0; oy0 < p.OY0; oy0++ {
					for ox0 := 0; ox0 < p.OX0; ox0++ {
						y := coord.OY1*p.OY0 + oy0 + fy
						x := coord.OX1*p.OX0 + ox0 + fx
						vec := fixed.NewPackedInt(l.Array.InputPrecision, l.Array.IC0)
						for i := 0; i < l.Array.IC0; i++ {
							vec.Set(i, l.Input.At(ic1*l.Array.IC0+i, y, x))
						}
						vectors = append(vectors, vec)
					}
				}
			}
		}
	}
	return vectors
}

// TileWeights returns the weight rows of one tile, IC0 rows per reduction
// pass in pass order.
func (l *Layer) TileWeights(coord TileCoord) []fixed.PackedInt {
	p := l.Params
	rows := make([]fixed.PackedInt, 0, p.Tile().WeightRows(l.Array.IC0))
	for ic1 := 0; ic1 < p.IC1; ic1++ {
		for fy := 0; fy < p.FY; fy++ {
			for fx := 0; fx < p.FX; fx++ {
				for i := 0; i < l.Array.IC0; i++ {
					row := fixed.NewPackedInt(l.Array.WeightPrecision, l.Array.OC0)
					for j := 0; j < l.Array.OC0; j++ {
						row.Set(j, l.Weights.At(coord.OC1*l.Array.OC0+j, ic1*l.Array.IC0+i, fy, fx))
					}
					rows = append(rows, row)
				}
			}
		}
	}
	return rows
}

// Scatter writes the output rows of one tile, pixel by pixel, into out.
func (l *Layer) Scatter(coord TileCoord, rows []fixed.PackedInt, out *Tensor) error {
	p := l.Params
	if len(rows) != p.Tile().TileSize() {
		return fmt.Errorf("tile %+v: %d output rows, want %d", coord, len(rows), p.Tile().TileSize())
	}
	for pixel, row := range rows {
		if row.Lanes() != l.Array.OC0 {
			return fmt.Errorf("%w: tile %+v pixel %d has %d lanes", systolic.ErrLaneMismatch, coord, pixel, row.Lanes())
		}
		y := coord.OY1*p.OY0 + pixel/p.OX0
		x := coord.OX1*p.OX0 + pixel%p.OX0
		for j, v := range row.Value {
			out.Set(v, coord.OC1*l.Array.OC0+j, y, x)
		}
	}
	return nil
}

// Streams packs the given tiles back to back into fresh channels.
func (l *Layer) Streams(coords []TileCoord) (systolic.Streams, *systolic.Channel[fixed.PackedInt]) {
	input := systolic.NewChannel[fixed.PackedInt]("Input", 0)
	weight := systolic.NewChannel[fixed.PackedInt]("Weight", 0)
	output := systolic.NewChannel[fixed.PackedInt]("Output", 0)
	for _, coord := range coords {
		for _, vec := range l.TileInputs(coord) {
			_ = input.Write(vec)
		}
		for _, row := range l.TileWeights(coord) {
			_ = weight.Write(row)
		}
	}
	return systolic.Streams{Input: input, Weight: weight, Output: output}, output
}

// Collect scatters rows emitted for coords, in the same order, into out.
func (l *Layer) Collect(coords []TileCoord, rows []fixed.PackedInt, out *Tensor) error {
	size := l.Params.Tile().TileSize()
	if len(rows) != len(coords)*size {
		return fmt.Errorf("%d output rows for %d tiles of %d pixels", len(rows), len(coords), size)
	}
	for k, chunk := range lo.Chunk(rows, size) {
		if err := l.Scatter(coords[k], chunk, out); err != nil {
			return err
		}
	}
	return nil
}
