package systolic

import (
	"context"
	"fmt"

	"systolicsim/src/simulator/systolic/fixed"
)

// writeToken travels alongside each MAC issue through a ramp-deep delay line
// and tells the writeback stage which pixel the row leaving the output skew
// bank belongs to.
type writeToken struct {
	valid bool
	pixel int
	last  bool
}

// Core is the weight-stationary systolic compute core. One core persists
// across the tiles of a layer; every tile starts from explicitly zeroed
// registers, queues, weights and accumulation buffer.
type Core struct {
	params Parameters
	ramp   int

	grid        *Grid
	inputSkew   *SkewBank[int64]
	psumSkew    *SkewBank[int64]
	outputSkew  *SkewBank[int64]
	tokens      *SkewQueue[writeToken]
	accumulator *AccumulationBuffer
	weights     *WeightStore
	observer    Observer

	// per-tile state
	tile       TileDescriptor
	streams    Streams
	counter    LoopCounter
	busy       bool
	err        error
	cycle      int
	issued     int
	written    int
	emitted    int
	passStart  int
	macIters   int
	passGap    int
	tileStats  Stats
	totalStats Stats

	// scratch reused every cycle
	inputVec  []int64
	seedVec   []int64
	outputRow []int64
	weightBuf [][]int64
}

// NewCore builds a core for params.
func NewCore(params Parameters) (*Core, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	ramp := params.Ramp()
	core := &Core{
		params:      params,
		ramp:        ramp,
		grid:        NewGrid(params.IC0, params.OC0, params.OutputPrecision),
		inputSkew:   NewSkewBank[int64](params.IC0, inputSkewDepth),
		psumSkew:    NewSkewBank[int64](params.OC0, psumSkewDepth),
		outputSkew:  NewSkewBank[int64](params.OC0, outputSkewDepth(params.OC0)),
		tokens:      NewSkewQueue[writeToken](ramp + 1),
		accumulator: NewAccumulationBuffer("AccumulationBuffer", params.AccumulationBufferSize, params.OC0),
		weights:     NewWeightStore(params.IC0, params.OC0, params.WeightBuffering),
		observer:    NopObserver{},
		inputVec:    make([]int64, params.IC0),
		seedVec:     make([]int64, params.OC0),
		outputRow:   make([]int64, params.OC0),
		weightBuf:   newRegisters(params.IC0, params.OC0),
	}
	return core, nil
}

// Parameters returns the configuration the core was built with.
func (c *Core) Parameters() Parameters {
	return c.params
}

// Observe installs an observer; nil restores the no-op observer.
func (c *Core) Observe(observer Observer) {
	if observer == nil {
		observer = NopObserver{}
	}
	c.observer = observer
}

// Begin validates tile and resets all per-tile state. No stream is touched
// before validation succeeds.
func (c *Core) Begin(tile TileDescriptor, streams Streams) error {
	if c.busy {
		return fmt.Errorf("%w: %s still in flight at cycle %d", ErrInvalidTile, c.tile, c.cycle)
	}
	if err := tile.Validate(c.params); err != nil {
		return err
	}
	if err := streams.validate(); err != nil {
		return err
	}

	c.reset()
	c.tile = tile
	c.streams = streams
	c.counter = NewLoopCounter(tile)
	c.macIters = tile.MacIters()
	c.passGap = c.params.passGap(tile.TileSize())
	c.busy = true
	return nil
}

func (c *Core) reset() {
	c.grid.Reset()
	c.inputSkew.Reset()
	c.psumSkew.Reset()
	c.outputSkew.Reset()
	c.tokens.Reset()
	c.accumulator.Reset()
	c.weights.Reset()

	c.err = nil
	c.cycle = 0
	c.issued = 0
	c.written = 0
	c.emitted = 0
	c.passStart = 0
	c.tileStats.Reset()
}

// Busy reports whether a tile is in flight.
func (c *Core) Busy() bool {
	return c.busy
}

// Cycle returns the index of the next cycle of the current tile.
func (c *Core) Cycle() int {
	return c.cycle
}

// Err returns the error that stopped the current tile, if any.
func (c *Core) Err() error {
	return c.err
}

// Stats returns counters aggregated over every completed or failed tile plus
// the tile in flight.
func (c *Core) Stats() Stats {
	stats := c.totalStats
	if c.busy {
		stats.Accumulate(c.tileStats)
	}
	return stats
}

// TileStats returns the counters of the current or most recent tile.
func (c *Core) TileStats() Stats {
	return c.tileStats
}

// Accumulator exposes the accumulation buffer for inspection.
func (c *Core) Accumulator() *AccumulationBuffer {
	return c.accumulator
}

// Run processes one tile to completion.
func (c *Core) Run(ctx context.Context, tile TileDescriptor, streams Streams) error {
	if err := c.Begin(tile, streams); err != nil {
		return err
	}
	for c.busy {
		if err := ctx.Err(); err != nil {
			c.fail(err)
			return err
		}
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// canIssue applies the pass interlock: the first pixel of a pass may only
// issue passGap cycles after the first pixel of the previous pass.
func (c *Core) canIssue() bool {
	if c.issued >= c.macIters {
		return false
	}
	if c.issued == 0 || c.counter.PixelOffset() != 0 {
		return true
	}
	return c.cycle >= c.passStart+c.passGap
}

// Step simulates one clock cycle of the current tile.
func (c *Core) Step() error {
	if c.err != nil {
		return c.err
	}
	if !c.busy {
		return ErrCoreIdle
	}

	t := c.cycle
	issue := c.canIssue()
	pixel := c.counter.PixelOffset()

	// weight load, once per reduction pass
	if issue && pixel == 0 {
		if err := c.loadWeights(t); err != nil {
			return c.fail(err)
		}
	}

	// input fetch; drain and bubble cycles feed zeros
	for i := range c.inputVec {
		c.inputVec[i] = 0
	}
	if issue {
		vec, err := c.streams.Input.Read()
		if err != nil {
			return c.fail(fmt.Errorf("cycle %d input read %d/%d: %w", t, c.issued+1, c.macIters, err))
		}
		if vec.Lanes() != c.params.IC0 {
			return c.fail(fmt.Errorf("%w: input vector has %d lanes, grid has %d", ErrLaneMismatch, vec.Lanes(), c.params.IC0))
		}
		for i, v := range vec.Value {
			c.inputVec[i] = c.params.InputPrecision.Quantize(v)
		}
		c.tileStats.MacIssues++
		c.tileStats.MacOps += int64(c.params.IC0 * c.params.OC0)
	}

	// input skew
	for i, v := range c.inputVec {
		c.grid.SetInput(i, c.inputSkew.Shift(i, v))
	}

	// partial-sum seed
	for j := range c.seedVec {
		c.seedVec[j] = 0
	}
	if issue && !c.counter.FirstPass() {
		if err := c.accumulator.Read(pixel, c.seedVec); err != nil {
			return c.fail(err)
		}
		c.tileStats.AccumulatorReads++
	}

	// partial-sum-in skew
	for j, v := range c.seedVec {
		c.grid.SetPsum(j, c.psumSkew.Shift(j, v))
	}

	// grid evaluation; PE (i, j) holds the operand issued i+j cycles ago
	c.grid.Evaluate(func(i, j int) int64 {
		return c.weights.Weight(i, j, t-i-j)
	})

	// output skew
	for j := range c.outputRow {
		c.outputRow[j] = c.outputSkew.Shift(j, c.grid.Bottom(j))
	}

	// writeback and emit
	token := c.tokens.Shift(writeToken{valid: issue, pixel: pixel, last: issue && c.counter.LastPass()})
	if token.valid {
		if err := c.writeback(t, token); err != nil {
			return c.fail(err)
		}
	}

	c.observer.CycleEvaluated(t, c.grid)

	// register shift
	c.grid.Shift()

	// index advance
	if issue {
		c.counter.Advance()
		c.issued++
	} else {
		if c.issued < c.macIters {
			c.tileStats.BubbleCycles++
		}
	}
	c.cycle++
	c.tileStats.Cycles++

	if c.issued == c.macIters && c.written == c.macIters {
		c.finish()
	}
	return nil
}

func (c *Core) loadWeights(t int) error {
	for i := 0; i < c.params.IC0; i++ {
		row, err := c.streams.Weight.Read()
		if err != nil {
			return fmt.Errorf("cycle %d weight row %d of pass %d: %w", t, i, c.counter.Pass(), err)
		}
		if row.Lanes() != c.params.OC0 {
			return fmt.Errorf("%w: weight row has %d lanes, grid has %d", ErrLaneMismatch, row.Lanes(), c.params.OC0)
		}
		for j, w := range row.Value {
			c.weightBuf[i][j] = c.params.WeightPrecision.Quantize(w)
		}
	}
	c.weights.Load(c.weightBuf, t)
	c.passStart = t
	c.tileStats.WeightRowsRead += int64(c.params.IC0)
	c.tileStats.WeightLoads++
	c.observer.WeightLoaded(t, c.counter.Pass(), c.weightBuf)
	return nil
}

func (c *Core) writeback(t int, token writeToken) error {
	if c.written >= c.macIters {
		return fmt.Errorf("%w: writeback %d beyond %d MAC issues", ErrStreamOverflow, c.written+1, c.macIters)
	}
	if err := c.accumulator.Write(token.pixel, c.outputRow); err != nil {
		return err
	}
	c.written++
	c.tileStats.AccumulatorWrites++
	c.observer.Accumulated(t, token.pixel, c.outputRow, token.last)

	if !token.last {
		return nil
	}
	if c.emitted >= c.tile.TileSize() {
		return fmt.Errorf("%w: output %d beyond tile size %d", ErrStreamOverflow, c.emitted+1, c.tile.TileSize())
	}
	row := fixed.FromValues(c.params.OutputPrecision, c.outputRow...)
	if err := c.streams.Output.Write(row); err != nil {
		return fmt.Errorf("cycle %d output %d/%d: %w", t, c.emitted+1, c.tile.TileSize(), err)
	}
	c.emitted++
	c.tileStats.OutputsEmitted++
	c.observer.Emitted(t, token.pixel, row)
	return nil
}

func (c *Core) finish() {
	c.tileStats.TilesCompleted++
	c.tileStats.PeakAccumulator = int64(c.accumulator.PeakOccupancy())
	c.totalStats.Accumulate(c.tileStats)
	c.busy = false
	c.streams = Streams{}
}

func (c *Core) fail(err error) error {
	c.err = err
	if c.busy {
		c.totalStats.Accumulate(c.tileStats)
	}
	c.busy = false
	c.streams = Streams{}
	return err
}
