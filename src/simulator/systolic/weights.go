package systolic

// WeightBuffering selects how many weight banks the array keeps.
type WeightBuffering int

const (
	// WeightBufferingSingle keeps one bank; a new pass waits for the grid to
	// drain before its weights replace the old ones. Once OX0*OY0 exceeds the
	// ramp those waits are bubble cycles, so the last write lands after
	// mac_iters+ramp-1; that bound holds for double buffering only.
	WeightBufferingSingle WeightBuffering = iota
	// WeightBufferingDouble keeps two banks so the next pass's weights load
	// while the previous pass is still in the grid.
	WeightBufferingDouble
)

func (w WeightBuffering) String() string {
	switch w {
	case WeightBufferingSingle:
		return "single-buffered"
	case WeightBufferingDouble:
		return "double-buffered"
	default:
		return "unknown"
	}
}

// WeightBufferingFromString converts an option value into a strategy. The
// bool return is false for unknown values.
func WeightBufferingFromString(value string) (WeightBuffering, bool) {
	switch value {
	case "single-buffered", "single":
		return WeightBufferingSingle, true
	case "double-buffered", "double":
		return WeightBufferingDouble, true
	default:
		return WeightBufferingSingle, false
	}
}

// WeightStore holds the stationary weights. Each bank remembers the issue
// cycle of the first operand that must see it; a PE computing an operand
// issued at cycle c uses the most recent bank loaded at or before c.
type WeightStore struct {
	strategy WeightBuffering
	banks    [2][][]int64
	loadedAt [2]int
	latest   int
}

// NewWeightStore builds an empty rows x cols store.
func NewWeightStore(rows, cols int, strategy WeightBuffering) *WeightStore {
	store := &WeightStore{strategy: strategy}
	for b := range store.banks {
		store.banks[b] = newRegisters(rows, cols)
	}
	store.Reset()
	return store
}

// Load writes rows into the next bank, effective for operands issued at or
// after cycle.
func (s *WeightStore) Load(rows [][]int64, cycle int) {
	target := 0
	if s.strategy == WeightBufferingDouble && s.loadedAt[s.latest] >= 0 {
		target = 1 - s.latest
	}
	for i, row := range rows {
		copy(s.banks[target][i], row)
	}
	s.loadedAt[target] = cycle
	s.latest = target
}

// Weight returns the weight of PE (i, j) for an operand issued at issueCycle.
// Operands issued before any load see zero.
func (s *WeightStore) Weight(i, j, issueCycle int) int64 {
	if s.strategy == WeightBufferingSingle {
		return s.banks[0][i][j]
	}
	bank := -1
	for b, at := range s.loadedAt {
		if at < 0 || at > issueCycle {
			continue
		}
		if bank < 0 || at > s.loadedAt[bank] {
			bank = b
		}
	}
	if bank < 0 {
		return 0
	}
	return s.banks[bank][i][j]
}

// Reset clears both banks.
func (s *WeightStore) Reset() {
	for b := range s.banks {
		for _, row := range s.banks[b] {
			for k := range row {
				row[k] = 0
			}
		}
		s.loadedAt[b] = -1
	}
	s.latest = 0
}
