// Tracks evaluation-wide counters such as placements per window, penalty
// units, unserved jobs, and the queue-delay distribution.

package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about an evaluation run for final
// reporting. Useful for comparing contestant strategies and debugging
// dispatch behavior over time.
type Metrics struct {
	JobsDispatched      int   // jobs successfully placed on a machine
	FreeWindowJobs      int   // placements within the penalty-free window
	PenaltyWindowJobs   int   // placements that needed the penalty window
	PenaltyUnitsCharged int64 // penalty units added to the bill (past grace)
	PenaltyUnitsWaived  int64 // penalty units forgiven inside the grace period
	UnservedJobs        int   // dispatch passes that left a job pending
	MachinesLaunched    int
	MachinesTerminated  int

	queueDelays []float64 // seconds between job arrival and earliest start
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{queueDelays: make([]float64, 0)}
}

// RecordDelay adds one job's queue delay sample.
func (m *Metrics) RecordDelay(seconds float64) {
	m.queueDelays = append(m.queueDelays, seconds)
}

// DelaySummary holds distribution statistics over job queue delays.
type DelaySummary struct {
	Count  int
	Mean   float64
	StdDev float64
	P50    float64
	P95    float64
	Max    float64
}

// DelaySummary computes the queue-delay distribution. Zero-valued for runs
// with no dispatched jobs.
func (m *Metrics) DelaySummary() DelaySummary {
	if len(m.queueDelays) == 0 {
		return DelaySummary{}
	}
	sorted := make([]float64, len(m.queueDelays))
	copy(sorted, m.queueDelays)
	sort.Float64s(sorted)

	s := DelaySummary{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
		Max:   sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}

// Print displays aggregated metrics at the end of the evaluation.
func (m *Metrics) Print() {
	fmt.Println("=== Evaluation Metrics ===")
	fmt.Printf("Jobs Dispatched      : %d\n", m.JobsDispatched)
	fmt.Printf("  Free Window        : %d\n", m.FreeWindowJobs)
	fmt.Printf("  Penalty Window     : %d\n", m.PenaltyWindowJobs)
	fmt.Printf("Penalty Units        : %d charged, %d waived\n", m.PenaltyUnitsCharged, m.PenaltyUnitsWaived)
	fmt.Printf("Unserved Passes      : %d\n", m.UnservedJobs)
	fmt.Printf("Machines             : %d launched, %d terminated\n", m.MachinesLaunched, m.MachinesTerminated)
	if d := m.DelaySummary(); d.Count > 0 {
		fmt.Printf("Queue Delay          : mean=%.2fs stddev=%.2fs p50=%.2fs p95=%.2fs max=%.2fs\n",
			d.Mean, d.StdDev, d.P50, d.P95, d.Max)
	}
}
