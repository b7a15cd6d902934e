// sim/state.go
package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/scale-contest/scale-eval/sim/trace"
)

// State is the core object that holds simulation time, the per-category job
// queues and machine pools, the running bill, and the grace-period status.
// A single State consumes one time-ordered event stream; it is strictly
// single-threaded.
type State struct {
	cfg    EngineConfig
	log    logrus.FieldLogger
	policy DispatchPolicy

	clock    int64
	trialEnd int64
	trialSet bool

	billed       int64
	disqualified bool
	drained      bool

	jobs       map[string]*JobQueue
	pools      map[string]*machinePool
	categories map[string]bool

	nextMachineID uint64

	metrics *Metrics
	tr      *trace.EvaluationTrace
}

// Result is the outcome of an evaluation. A disqualified run must never be
// confused with a legitimately zero bill, so the flag travels with the
// total.
type Result struct {
	BilledUnits  int64
	Disqualified bool
}

// Sentinel returns the conventional single-number form of the result:
// the billed total, or -1 when disqualified.
func (r Result) Sentinel() int64 {
	if r.Disqualified {
		return -1
	}
	return r.BilledUnits
}

// NewState creates an engine for the given configuration. The logger is
// injected rather than ambient; nil means the standard logrus logger. The
// trace may be nil (no recording).
func NewState(cfg EngineConfig, logger logrus.FieldLogger, tr *trace.EvaluationTrace) (*State, error) {
	if cfg.BillingUnit <= 0 {
		return nil, fmt.Errorf("billing unit must be positive, got %d", cfg.BillingUnit)
	}
	if cfg.MaxSlack <= 0 {
		return nil, fmt.Errorf("max slack must be positive, got %d", cfg.MaxSlack)
	}
	if cfg.GracePeriod < 0 {
		return nil, fmt.Errorf("grace period must be non-negative, got %d", cfg.GracePeriod)
	}
	if len(cfg.Categories) == 0 {
		return nil, fmt.Errorf("at least one category is required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	policy, err := NewDispatchPolicy(cfg, NewPartitionedRNG(NewSimulationKey(cfg.Seed)))
	if err != nil {
		return nil, err
	}

	s := &State{
		cfg:        cfg,
		log:        logger,
		policy:     policy,
		jobs:       make(map[string]*JobQueue, len(cfg.Categories)),
		pools:      make(map[string]*machinePool, len(cfg.Categories)),
		categories: make(map[string]bool, len(cfg.Categories)),
		metrics:    NewMetrics(),
		tr:         tr,
	}
	for _, cat := range cfg.Categories {
		s.jobs[cat] = NewJobQueue()
		s.pools[cat] = newMachinePool()
		s.categories[cat] = true
	}
	return s, nil
}

// Clock returns the latest event timestamp received.
func (s *State) Clock() int64 { return s.clock }

// TrialEnd returns the end of the grace period, 0 before the first event.
func (s *State) TrialEnd() int64 { return s.trialEnd }

// BilledUnits returns the whole billing units charged so far.
func (s *State) BilledUnits() int64 { return s.billed }

// Disqualified reports whether the sticky disqualification flag is set.
func (s *State) Disqualified() bool { return s.disqualified }

// Metrics returns the run's aggregated counters.
func (s *State) Metrics() *Metrics { return s.metrics }

// Receive processes one event from the stream. Events in unknown categories
// are noise and are dropped without touching the clock. Once disqualified,
// events are still consumed but trigger no dispatch or billing.
func (s *State) Receive(ev Event) {
	if !s.categories[ev.Category()] {
		s.log.Warnf("event for unknown category %q dropped", ev.Category())
		return
	}
	s.advanceClock(ev.Timestamp())
	if s.disqualified {
		return
	}

	switch e := ev.(type) {
	case Job:
		s.jobs[e.Category()].Push(e)
		s.processQueue(e.Category())
	case Command:
		switch e.Kind() {
		case KindLaunch:
			if s.cfg.AdmitBeforeDispatch {
				s.launch(e.Timestamp(), e.Category())
				s.processQueue(e.Category())
			} else {
				s.processQueue(e.Category())
				s.launch(e.Timestamp(), e.Category())
			}
		case KindTerminate:
			s.processQueue(e.Category())
			s.terminateClosest(e.Category())
		}
	}
}

// Evaluate drains the remaining work and returns the final result.
func (s *State) Evaluate() Result {
	s.Drain()
	return Result{BilledUnits: s.billed, Disqualified: s.disqualified}
}

// Drain runs one final dispatch pass per category (in the configured order),
// then force-terminates and bills every surviving machine. Draining twice
// is a no-op.
func (s *State) Drain() {
	if s.drained {
		return
	}
	s.drained = true
	for _, cat := range s.cfg.Categories {
		if !s.disqualified {
			s.processQueue(cat)
		}
		pool := s.pools[cat]
		for {
			m := pool.PopClosest(float64(s.clock))
			if m == nil {
				break
			}
			s.terminate(m, cat)
		}
	}
}

// advanceClock moves simulation time to the event's timestamp and latches
// the grace-period end on the first event. A regressing timestamp is
// malformed input: it is logged and the clock holds.
func (s *State) advanceClock(ts int64) {
	if !s.trialSet {
		s.clock = ts
		s.trialEnd = ts + s.cfg.GracePeriod
		s.trialSet = true
		s.log.Infof("trial_ends %d", s.trialEnd)
		return
	}
	if ts < s.clock {
		s.log.Warnf("event timestamp %d behind clock %d, clock held", ts, s.clock)
		return
	}
	s.clock = ts
}

// launch adds a freshly booted machine to the category pool.
func (s *State) launch(bootedAt int64, category string) {
	s.nextMachineID++
	m := NewMachine(bootedAt, s.cfg.BootDelay, s.cfg.BillingUnit,
		fmt.Sprintf("machine_%04d", s.nextMachineID))
	s.pools[category].Add(m)
	s.metrics.MachinesLaunched++
	s.log.Infof("launch %d %g %s", m.RunningSince, m.BusyTill, m.ID)
	s.tr.RecordMachine(trace.MachineRecord{
		MachineID: m.ID,
		Category:  category,
		Clock:     s.clock,
		Action:    "launch",
	})
}

// terminateClosest removes and bills the category machine with the least
// time left in its paid billing period. Terminating that one wastes the
// least pre-paid time. A terminate against an empty pool is a no-op.
func (s *State) terminateClosest(category string) {
	m := s.pools[category].PopClosest(float64(s.clock))
	if m == nil {
		return
	}
	s.terminate(m, category)
}

// terminate marks the machine terminated and bills it exactly once.
func (s *State) terminate(m *Machine, category string) {
	m.Terminated = true
	units := s.billMachine(m)
	s.metrics.MachinesTerminated++
	s.log.Infof("terminate %d %d %d %s", m.RunningSince, m.ActiveFrom, units, m.ID)
	s.tr.RecordMachine(trace.MachineRecord{
		MachineID:   m.ID,
		Category:    category,
		Clock:       s.clock,
		Action:      "terminate",
		BilledUnits: units,
	})
}

// processQueue runs the dispatch pass for one category: pending jobs are
// placed oldest-first until the queue is empty or a job cannot be placed.
// An unplaceable job stays pending for the next triggering event; past the
// grace period it disqualifies the run instead.
func (s *State) processQueue(category string) {
	q := s.jobs[category]
	pool := s.pools[category]
	for !s.disqualified {
		job, ok := q.Peek()
		if !ok {
			return
		}
		s.log.Debugf("job_retrieved %d %s", job.Timestamp(), job.GUID())

		asg, placed := s.policy.Select(job, pool.Items())
		if !placed {
			s.log.Infof("no_machine_for %d %s", job.Timestamp(), job.GUID())
			s.metrics.UnservedJobs++
			dq := s.clock >= s.trialEnd
			s.tr.RecordUnserved(trace.UnservedRecord{
				JobID:        job.GUID(),
				Category:     category,
				Clock:        s.clock,
				Disqualified: dq,
			})
			if dq {
				s.disqualified = true
				s.log.Warnf("disqualified: job %s unserved at %d past trial end %d",
					job.GUID(), s.clock, s.trialEnd)
			}
			return
		}
		q.Pop()

		m := asg.Machine
		delay := m.ProjectedFinish(job.Timestamp(), 0) - float64(job.Timestamp())
		m.Assign(job.Timestamp(), job.Duration())

		s.metrics.JobsDispatched++
		s.metrics.RecordDelay(delay)
		var charged int64
		if asg.Window == WindowPenalty {
			s.metrics.PenaltyWindowJobs++
			if pen := s.penaltyUnits(asg.Overrun); pen > 0 {
				s.log.Infof("job_penalty %d %s", pen, job.GUID())
				if s.billingActive() {
					s.billed += pen
					s.metrics.PenaltyUnitsCharged += pen
					charged = pen
				} else {
					s.metrics.PenaltyUnitsWaived += pen
				}
			}
		} else {
			s.metrics.FreeWindowJobs++
		}

		s.log.Infof("job_executed_till %g %s %s", m.BusyTill, job.GUID(), m.ID)
		s.tr.RecordDispatch(trace.DispatchRecord{
			JobID:        job.GUID(),
			Category:     category,
			Clock:        s.clock,
			MachineID:    m.ID,
			Window:       string(asg.Window),
			Overrun:      asg.Overrun,
			PenaltyUnits: charged,
		})
	}
}

// billingActive reports whether charges apply at the current clock. The
// grace period forgives everything up to and including trialEnd; a zero
// grace period means billing applies from the very first event.
func (s *State) billingActive() bool {
	return s.clock > s.trialEnd || s.cfg.GracePeriod == 0
}

// penaltyUnits converts a queuing overrun into whole billing-unit-equivalent
// penalty charges: ceil(3 * (overrun - FreeSlack) / MaxSlack), floored at 0.
func (s *State) penaltyUnits(overrun float64) int64 {
	p := math.Ceil(3 * (overrun - float64(s.cfg.FreeSlack)) / float64(s.cfg.MaxSlack))
	if p < 0 {
		return 0
	}
	return int64(p)
}

// billMachine charges one machine for its whole anchored billing periods.
// Machines are billed exactly once; nothing is charged inside the grace
// period. Returns the units added to the bill.
func (s *State) billMachine(m *Machine) int64 {
	if m.billed {
		return 0
	}
	m.billed = true
	if !s.billingActive() {
		return 0
	}
	stop := math.Max(float64(s.clock), m.BusyTill)
	start := math.Max(float64(s.trialEnd), float64(m.RunningSince))
	end := math.Max(float64(s.trialEnd), stop+m.TillBilling(stop))
	units := int64(math.Ceil((end - start) / float64(s.cfg.BillingUnit)))
	if units < 0 {
		units = 0
	}
	s.billed += units
	return units
}
