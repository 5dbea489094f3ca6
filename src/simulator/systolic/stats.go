package systolic

import "fmt"

// Stats records per-core counters.
type Stats struct {
	Cycles            int64
	BubbleCycles      int64
	MacIssues         int64
	MacOps            int64
	WeightRowsRead    int64
	WeightLoads       int64
	AccumulatorReads  int64
	AccumulatorWrites int64
	OutputsEmitted    int64
	TilesCompleted    int64
	PeakAccumulator   int64
}

func (s *Stats) Reset() {
	*s = Stats{}
}

func (s *Stats) Accumulate(other Stats) {
	s.Cycles += other.Cycles
	s.BubbleCycles += other.BubbleCycles
	s.MacIssues += other.MacIssues
	s.MacOps += other.MacOps
	s.WeightRowsRead += other.WeightRowsRead
	s.WeightLoads += other.WeightLoads
	s.AccumulatorReads += other.AccumulatorReads
	s.AccumulatorWrites += other.AccumulatorWrites
	s.OutputsEmitted += other.OutputsEmitted
	s.TilesCompleted += other.TilesCompleted

	if other.PeakAccumulator > s.PeakAccumulator {
		s.PeakAccumulator = other.PeakAccumulator
	}
}

// Utilization is the fraction of cycles that issued a MAC.
func (s *Stats) Utilization() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.MacIssues) / float64(s.Cycles)
}

// ToLines renders the counters as "prefix_key: value" lines.
func (s *Stats) ToLines(prefix string) []string {
	return []string{
		fmt.Sprintf("%s_cycles: %d", prefix, s.Cycles),
		fmt.Sprintf("%s_bubble_cycles: %d", prefix, s.BubbleCycles),
		fmt.Sprintf("%s_mac_issues: %d", prefix, s.MacIssues),
		fmt.Sprintf("%s_mac_ops: %d", prefix, s.MacOps),
		fmt.Sprintf("%s_weight_rows_read: %d", prefix, s.WeightRowsRead),
		fmt.Sprintf("%s_weight_loads: %d", prefix, s.WeightLoads),
		fmt.Sprintf("%s_accumulator_reads: %d", prefix, s.AccumulatorReads),
		fmt.Sprintf("%s_accumulator_writes: %d", prefix, s.AccumulatorWrites),
		fmt.Sprintf("%s_outputs_emitted: %d", prefix, s.OutputsEmitted),
		fmt.Sprintf("%s_tiles_completed: %d", prefix, s.TilesCompleted),
		fmt.Sprintf("%s_accumulator_peak_slots: %d", prefix, s.PeakAccumulator),
		fmt.Sprintf("%s_utilization: %.4f", prefix, s.Utilization()),
	}
}
