package systolic

import (
	"context"
	"fmt"
)

// Array wires a Looper to a Core through a descriptor channel. The core takes
// descriptors one at a time and runs each tile to completion before the next;
// input, weight and output streams are shared across tiles.
type Array struct {
	looper      Looper
	core        *Core
	descriptors *Channel[TileDescriptor]
	streams     Streams
	tileIndex   int
}

// NewArray builds an array for params.
func NewArray(params Parameters) (*Array, error) {
	core, err := NewCore(params)
	if err != nil {
		return nil, err
	}
	return &Array{
		core:        core,
		descriptors: NewChannel[TileDescriptor]("Descriptors", 0),
	}, nil
}

// Core returns the compute core.
func (a *Array) Core() *Core {
	return a.core
}

// Attach sets the data streams used by every subsequent tile.
func (a *Array) Attach(streams Streams) error {
	if err := streams.validate(); err != nil {
		return err
	}
	a.streams = streams
	return nil
}

// Load expands shape into the descriptor channel.
func (a *Array) Load(shape LayerShape) error {
	return a.looper.Run(shape, a.descriptors)
}

// Replay queues count copies of tile.
func (a *Array) Replay(tile TileDescriptor, count int) error {
	return a.looper.Replay(tile, count, a.descriptors)
}

// PendingTiles returns the number of descriptors not yet started.
func (a *Array) PendingTiles() int {
	return a.descriptors.Len()
}

// TilesStarted returns the number of descriptors taken by the core.
func (a *Array) TilesStarted() int {
	return a.tileIndex
}

// IsFinished reports that no tile is in flight and none is queued.
func (a *Array) IsFinished() bool {
	return !a.core.Busy() && a.descriptors.Len() == 0
}

// Cycle advances the array by one clock cycle, starting the next tile when
// the core is idle.
func (a *Array) Cycle() error {
	if err := a.core.Err(); err != nil {
		return err
	}
	if !a.core.Busy() {
		if a.descriptors.Len() == 0 {
			return nil
		}
		tile, err := a.descriptors.Read()
		if err != nil {
			return err
		}
		if err := a.core.Begin(tile, a.streams); err != nil {
			return fmt.Errorf("tile %d: %w", a.tileIndex, err)
		}
		a.tileIndex++
	}
	if err := a.core.Step(); err != nil {
		return fmt.Errorf("tile %d: %w", a.tileIndex-1, err)
	}
	return nil
}

// Run cycles until the descriptor stream is exhausted.
func (a *Array) Run(ctx context.Context) error {
	for !a.IsFinished() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.Cycle(); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns the core counters.
func (a *Array) Stats() Stats {
	return a.core.Stats()
}
