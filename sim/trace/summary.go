package trace

// Summary aggregates statistics from an EvaluationTrace.
type Summary struct {
	FreeWindowCount    int
	PenaltyWindowCount int
	TotalPenaltyUnits  int64
	UnservedCount      int
	Disqualified       bool
	LaunchesPerCat     map[string]int // category → launch count
	TerminationUnits   int64          // units billed at explicit/forced terminations
}

// Summarize computes aggregate statistics from an EvaluationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(et *EvaluationTrace) *Summary {
	summary := &Summary{
		LaunchesPerCat: make(map[string]int),
	}
	if et == nil {
		return summary
	}

	for _, d := range et.Dispatches {
		if d.Window == "penalty" {
			summary.PenaltyWindowCount++
		} else {
			summary.FreeWindowCount++
		}
		summary.TotalPenaltyUnits += d.PenaltyUnits
	}

	summary.UnservedCount = len(et.Unserved)
	for _, u := range et.Unserved {
		if u.Disqualified {
			summary.Disqualified = true
		}
	}

	for _, m := range et.Machines {
		switch m.Action {
		case "launch":
			summary.LaunchesPerCat[m.Category]++
		case "terminate":
			summary.TerminationUnits += m.BilledUnits
		}
	}

	return summary
}
