// Package trace provides decision-trace recording for post-run analysis of
// an evaluation. This package has no dependencies on sim/ — it stores pure
// data types.
package trace

// DispatchRecord captures a single job placement.
type DispatchRecord struct {
	JobID        string
	Category     string
	Clock        int64
	MachineID    string
	Window       string  // "free" or "penalty"
	Overrun      float64 // queuing delay beyond arrival (seconds)
	PenaltyUnits int64   // penalty charged for this placement (0 within grace)
}

// UnservedRecord captures a job that no machine could take this pass.
type UnservedRecord struct {
	JobID        string
	Category     string
	Clock        int64
	Disqualified bool // true when the miss happened past the grace period
}

// MachineRecord captures a machine lifecycle transition.
type MachineRecord struct {
	MachineID   string
	Category    string
	Clock       int64
	Action      string // "launch" or "terminate"
	BilledUnits int64  // whole units billed at termination (0 for launches)
}
