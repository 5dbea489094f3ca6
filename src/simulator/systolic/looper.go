package systolic

import "fmt"

// LayerShape is the outer tiling of a layer: OX1 x OY1 image tiles, each
// computed for OC1 kernel tiles, all sharing one per-tile descriptor.
type LayerShape struct {
	OX1  int
	OY1  int
	OC1  int
	Tile TileDescriptor
}

// Tiles returns the number of core invocations the layer needs.
func (s LayerShape) Tiles() int {
	return s.OX1 * s.OY1 * s.OC1
}

// Validate checks the outer trip counts.
func (s LayerShape) Validate() error {
	if s.OX1 <= 0 || s.OY1 <= 0 || s.OC1 <= 0 {
		return fmt.Errorf("%w: layer shape OX1=%d OY1=%d OC1=%d", ErrInvalidTile, s.OX1, s.OY1, s.OC1)
	}
	return nil
}

// DescriptorSink receives tile descriptors.
type DescriptorSink interface {
	Write(d TileDescriptor) error
}

// Looper replays one tile descriptor per output tile: image tiles outermost,
// kernel tiles inside.
type Looper struct {
	emitted int64
}

// Run writes shape.Tiles() copies of shape.Tile into out.
func (l *Looper) Run(shape LayerShape, out DescriptorSink) error {
	if err := shape.Validate(); err != nil {
		return err
	}
	for p := 0; p < shape.OX1*shape.OY1; p++ {
		for oc1 := 0; oc1 < shape.OC1; oc1++ {
			if err := out.Write(shape.Tile); err != nil {
				return fmt.Errorf("looper: image tile %d kernel tile %d: %w", p, oc1, err)
			}
			l.emitted++
		}
	}
	return nil
}

// Replay writes count copies of tile into out.
func (l *Looper) Replay(tile TileDescriptor, count int, out DescriptorSink) error {
	return l.Run(LayerShape{OX1: count, OY1: 1, OC1: 1, Tile: tile}, out)
}

// Emitted returns the number of descriptors written so far.
func (l *Looper) Emitted() int64 {
	return l.emitted
}
