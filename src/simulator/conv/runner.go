package conv

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"systolicsim/src/simulator/systolic"
)

// Result is the outcome of a layer run.
type Result struct {
	Output *Tensor
	// Stats sums the counters of every array.
	Stats systolic.Stats
	// Cycles is the cycle count of the slowest array.
	Cycles int64
	Arrays int
}

// RunLayer splits the output tiles of layer into contiguous groups, runs each
// group on its own Array in parallel and gathers the rows into one output
// tensor. Arrays share nothing but the read-only layer and disjoint regions
// of the output.
func RunLayer(ctx context.Context, layer *Layer, workers int) (*Result, error) {
	if workers < 1 {
		workers = 1
	}

	coords := layer.Params.Tiles()
	if len(coords) == 0 {
		return nil, fmt.Errorf("%w: %s has no tiles", systolic.ErrInvalidTile, layer.Params)
	}
	groups := lo.Chunk(coords, (len(coords)+workers-1)/workers)
	out := layer.NewOutput()
	stats := make([]systolic.Stats, len(groups))

	g, ctx := errgroup.WithContext(ctx)
	for k, group := range groups {
		k, group := k, group
		g.Go(func() error {
			array, err := systolic.NewArray(layer.Array)
			if err != nil {
				return err
			}

			streams, output := layer.Streams(group)
			if err := array.Attach(streams); err != nil {
				return err
			}
			if err := array.Replay(layer.Params.Tile(), len(group)); err != nil {
				return err
			}
			if err := array.Run(ctx); err != nil {
				return fmt.Errorf("array %d: %w", k, err)
			}
			if err := layer.Collect(group, output.Drain(), out); err != nil {
				return fmt.Errorf("array %d: %w", k, err)
			}

			stats[k] = array.Stats()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Output: out, Arrays: len(groups)}
	for _, s := range stats {
		result.Stats.Accumulate(s)
		result.Cycles = max(result.Cycles, s.Cycles)
	}
	return result, nil
}
