package sim

import (
	"fmt"
	"math/rand"
)

// Window names which placement window an assignment used.
type Window string

const (
	// WindowFree: the machine was available within FreeSlack of arrival.
	WindowFree Window = "free"
	// WindowPenalty: the machine only became available within MaxSlack,
	// so the job incurred a queuing overrun.
	WindowPenalty Window = "penalty"
)

// Assignment is a dispatch decision for one job.
type Assignment struct {
	Machine *Machine
	Window  Window
	Overrun float64 // queuing delay beyond arrival; 0 in the free window
}

// DispatchPolicy selects a machine for a pending job from its category's
// live machines. The boolean is false when no machine qualifies; the job
// then stays pending. Policies never mutate the machines.
type DispatchPolicy interface {
	Select(job Job, machines []*Machine) (Assignment, bool)
}

// NewDispatchPolicy constructs the policy named by cfg.Policy.
// The randomized policy draws from the injected RNG partition so runs are
// replayable under a fixed seed.
func NewDispatchPolicy(cfg EngineConfig, rng *PartitionedRNG) (DispatchPolicy, error) {
	switch cfg.Policy {
	case PolicyBestFit, "":
		return &BestFitPolicy{FreeSlack: cfg.FreeSlack, MaxSlack: cfg.MaxSlack}, nil
	case PolicyRandomFirstFit:
		return &RandomFirstFitPolicy{MaxSlack: cfg.MaxSlack, rng: rng.ForSubsystem(SubsystemDispatch)}, nil
	default:
		return nil, fmt.Errorf("unknown dispatch policy %q", cfg.Policy)
	}
}

// BestFitPolicy places a job in two passes. The free window considers
// machines available within FreeSlack of arrival and picks the one whose
// billing period is least wasted by taking the job (smallest time left
// until the billing boundary after the projected finish). If none
// qualifies, the penalty window considers machines available within
// MaxSlack and picks the earliest possible start; the job then carries an
// overrun that the engine converts into penalty units.
type BestFitPolicy struct {
	FreeSlack int64
	MaxSlack  int64
}

// Select implements DispatchPolicy.
func (p *BestFitPolicy) Select(job Job, machines []*Machine) (Assignment, bool) {
	t := job.Timestamp()

	var best *Machine
	var bestKey float64
	for _, m := range machines {
		if !m.IsAvailable(float64(t + p.FreeSlack)) {
			continue
		}
		key := m.TillBilling(m.ProjectedFinish(t, job.Duration()))
		if best == nil || key < bestKey {
			best, bestKey = m, key
		}
	}
	if best != nil {
		return Assignment{Machine: best, Window: WindowFree}, true
	}

	for _, m := range machines {
		if !m.IsAvailable(float64(t + p.MaxSlack)) {
			continue
		}
		start := m.ProjectedFinish(t, 0)
		if best == nil || start < bestKey {
			best, bestKey = m, start
		}
	}
	if best != nil {
		return Assignment{
			Machine: best,
			Window:  WindowPenalty,
			Overrun: bestKey - float64(t),
		}, true
	}
	return Assignment{}, false
}

// RandomFirstFitPolicy scans the pool cyclically from a random starting
// index and takes the first machine available within MaxSlack of arrival.
// There is no free/penalty split and no per-job penalty.
type RandomFirstFitPolicy struct {
	MaxSlack int64
	rng      *rand.Rand
}

// Select implements DispatchPolicy.
func (p *RandomFirstFitPolicy) Select(job Job, machines []*Machine) (Assignment, bool) {
	n := len(machines)
	if n == 0 {
		return Assignment{}, false
	}
	start := p.rng.Intn(n)
	for i := 0; i < n; i++ {
		m := machines[(start+i)%n]
		if m.IsAvailable(float64(job.Timestamp() + p.MaxSlack)) {
			return Assignment{Machine: m, Window: WindowFree}, true
		}
	}
	return Assignment{}, false
}
