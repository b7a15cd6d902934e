package sim

import "math"

// Machine models one billable virtual machine. Billing periods are
// fixed-size intervals of billingUnit seconds anchored at RunningSince, so
// period boundaries fall at RunningSince + k*billingUnit. BusyTill carries
// fractional seconds because job durations are fractional; it is 0 until the
// first assignment, meaning "free as soon as the machine is active".
type Machine struct {
	RunningSince int64   // timestamp at which boot was requested
	ActiveFrom   int64   // RunningSince + boot delay; no work before this
	BusyTill     float64 // when the currently assigned work ends (0 = idle)
	Terminated   bool
	ID           string // opaque token for traceability only

	billingUnit int64
	billed      bool
}

// NewMachine creates a machine booted at the given timestamp.
func NewMachine(bootedAt int64, bootDelay int64, billingUnit int64, id string) *Machine {
	return &Machine{
		RunningSince: bootedAt,
		ActiveFrom:   bootedAt + bootDelay,
		BusyTill:     0,
		ID:           id,
		billingUnit:  billingUnit,
	}
}

// TillBilling returns the number of seconds from now until the next billing
// boundary, in [0, billingUnit). It is 0 only exactly on a boundary.
func (m *Machine) TillBilling(now float64) float64 {
	unit := float64(m.billingUnit)
	r := math.Mod(now-float64(m.RunningSince), unit)
	if r < 0 {
		r += unit
	}
	if r == 0 {
		return 0
	}
	return unit - r
}

// IsAvailable reports whether the machine has booted and is unoccupied at
// the given time. Pure predicate.
func (m *Machine) IsAvailable(at float64) bool {
	return at >= float64(m.ActiveFrom) && m.BusyTill <= at
}

// ProjectedFinish returns the earliest time the machine could complete a job
// of the given duration if assigned now, respecting boot delay and existing
// occupancy.
func (m *Machine) ProjectedFinish(arrival int64, duration float64) float64 {
	start := math.Max(float64(m.ActiveFrom), m.BusyTill)
	start = math.Max(start, float64(arrival))
	return start + duration
}

// Assign gives the machine a job, pushing BusyTill forward to the projected
// finish. BusyTill never decreases across successive assignments.
func (m *Machine) Assign(arrival int64, duration float64) {
	m.BusyTill = m.ProjectedFinish(arrival, duration)
}
