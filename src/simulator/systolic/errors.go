package systolic

import "errors"

var (
	// ErrInvalidParameters is returned when a core cannot be built from the
	// provided configuration.
	ErrInvalidParameters = errors.New("systolic: invalid parameters")
	// ErrInvalidTile is returned by Begin when a descriptor exceeds the static
	// limits or the accumulation buffer capacity.
	ErrInvalidTile = errors.New("systolic: invalid tile descriptor")
	// ErrStreamUnderflow reports a read from a stream that had no data.
	ErrStreamUnderflow = errors.New("systolic: stream underflow")
	// ErrStreamOverflow reports a write beyond a stream's capacity or beyond
	// the expected per-tile output count.
	ErrStreamOverflow = errors.New("systolic: stream overflow")
	// ErrLaneMismatch reports a stream vector whose width differs from the grid.
	ErrLaneMismatch = errors.New("systolic: lane count mismatch")
	// ErrCoreIdle is returned by Step when no tile is in flight.
	ErrCoreIdle = errors.New("systolic: no tile in flight")
)
