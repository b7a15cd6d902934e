package sim

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scale-contest/scale-eval/sim/trace"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestState(t *testing.T, cfg EngineConfig, tr *trace.EvaluationTrace) *State {
	t.Helper()
	s, err := NewState(cfg, quietLogger(), tr)
	require.NoError(t, err)
	return s
}

func singleCategoryConfig(grace int64) EngineConfig {
	cfg := DefaultEngineConfig()
	cfg.GracePeriod = grace
	cfg.Categories = []string{"default"}
	return cfg
}

func TestState_EndToEnd_BootDelayThenDrain(t *testing.T) {
	// GIVEN grace period 0, one machine launched at t=0 and a 100s job at t=0
	tr := trace.NewEvaluationTrace(trace.LevelDecisions)
	s := newTestState(t, singleCategoryConfig(0), tr)
	s.Receive(NewCommand(0, "default", KindLaunch))
	s.Receive(NewJob(0, "default", 100, "job-1"))

	// THEN the job waits out the 120s boot delay: placed via the penalty
	// window with overrun 120, running until t=220
	require.Len(t, tr.Dispatches, 1)
	d := tr.Dispatches[0]
	assert.Equal(t, "penalty", d.Window)
	assert.Equal(t, 120.0, d.Overrun)
	// ceil(3 * (120-5) / 120) = 3 penalty units, charged since grace is 0
	assert.Equal(t, int64(3), d.PenaltyUnits)

	// WHEN the input ends and the state drains
	res := s.Evaluate()

	// THEN the machine bills ceil(220/3600) = 1 unit on top of the penalty
	require.Len(t, tr.Machines, 2)
	term := tr.Machines[1]
	assert.Equal(t, "terminate", term.Action)
	assert.Equal(t, int64(1), term.BilledUnits)
	assert.False(t, res.Disqualified)
	assert.Equal(t, int64(4), res.BilledUnits)
	assert.Equal(t, int64(4), res.Sentinel())
}

func TestState_PenaltyWaivedDuringGrace(t *testing.T) {
	// GIVEN the default 24h grace period, one machine launched at t=0 and
	// two 50s jobs at t=0 and t=10
	tr := trace.NewEvaluationTrace(trace.LevelDecisions)
	s := newTestState(t, singleCategoryConfig(DefaultGracePeriod), tr)
	s.Receive(NewCommand(0, "default", KindLaunch))
	s.Receive(NewJob(0, "default", 50, "job-1"))
	s.Receive(NewJob(10, "default", 50, "job-2"))

	// THEN the first job used the penalty window (boot delay) and its
	// penalty was waived inside the grace period
	assert.Equal(t, 1, s.Metrics().PenaltyWindowJobs)
	assert.Equal(t, int64(0), s.Metrics().PenaltyUnitsCharged)
	assert.Equal(t, int64(3), s.Metrics().PenaltyUnitsWaived)

	// AND the second job cannot be placed (the machine stays busy past its
	// t+120 deadline) but within the grace period this is informational,
	// not a disqualification
	assert.Equal(t, 1, s.Metrics().UnservedJobs)
	assert.False(t, s.Disqualified())

	// AND nothing is billed inside the grace period
	res := s.Evaluate()
	assert.False(t, res.Disqualified)
	assert.Equal(t, int64(0), res.BilledUnits)
}

func TestState_PenaltyChargedAfterTrialEnd(t *testing.T) {
	// GIVEN a 10s grace period, a machine launched at t=0 and a job
	// arriving at t=30, after trial end but before boot completes
	tr := trace.NewEvaluationTrace(trace.LevelDecisions)
	s := newTestState(t, singleCategoryConfig(10), tr)
	s.Receive(NewCommand(0, "default", KindLaunch))
	s.Receive(NewJob(30, "default", 50, "job-1"))

	// THEN the penalty window overrun is 90s (start at t=120) and
	// ceil(3 * (90-5) / 120) = 3 units are charged immediately
	require.Len(t, tr.Dispatches, 1)
	assert.Equal(t, 90.0, tr.Dispatches[0].Overrun)
	assert.Equal(t, int64(3), s.Metrics().PenaltyUnitsCharged)
	assert.Equal(t, int64(3), s.BilledUnits())

	// AND the drain bills the machine for one whole unit
	res := s.Evaluate()
	assert.Equal(t, int64(4), res.BilledUnits)
}

func TestState_Billing_WithinGraceBillsZero(t *testing.T) {
	// GIVEN a machine terminated one second before its first billing
	// boundary, all within the grace period
	s := newTestState(t, singleCategoryConfig(DefaultGracePeriod), nil)
	s.Receive(NewCommand(0, "default", KindLaunch))
	s.Receive(NewCommand(DefaultBootDelay+DefaultBillingUnit-1, "default", KindTerminate))

	// THEN the termination bills nothing
	assert.Equal(t, 1, s.Metrics().MachinesTerminated)
	assert.Equal(t, int64(0), s.BilledUnits())
}

func TestState_Billing_PastBoundaryBillsTwoUnits(t *testing.T) {
	// GIVEN no grace period and a machine terminated just past its first
	// boundary plus boot delay (t=3721)
	s := newTestState(t, singleCategoryConfig(0), nil)
	s.Receive(NewCommand(0, "default", KindLaunch))
	s.Receive(NewCommand(DefaultBootDelay+DefaultBillingUnit+1, "default", KindTerminate))

	// THEN the stop time rounds up to the second boundary: 2 units
	assert.Equal(t, int64(2), s.BilledUnits())
}

func TestState_Billing_ExactBoundaryBillsMinimum(t *testing.T) {
	// GIVEN no grace period and a machine terminated exactly on its first
	// billing boundary
	s := newTestState(t, singleCategoryConfig(0), nil)
	s.Receive(NewCommand(0, "default", KindLaunch))
	s.Receive(NewCommand(DefaultBillingUnit, "default", KindTerminate))

	// THEN exactly one whole unit is billed, with no off-by-one
	assert.Equal(t, int64(1), s.BilledUnits())
}

func TestState_DisqualificationSentinel(t *testing.T) {
	// GIVEN no grace period and a job arriving with no machines at all
	s := newTestState(t, singleCategoryConfig(0), nil)
	s.Receive(NewJob(100, "default", 10, "job-1"))

	// THEN the sticky flag is set
	require.True(t, s.Disqualified())

	// AND later events are consumed without dispatch or billing
	s.Receive(NewCommand(200, "default", KindLaunch))
	s.Receive(NewCommand(8000, "default", KindTerminate))

	res := s.Evaluate()
	assert.True(t, res.Disqualified)
	assert.Equal(t, int64(0), res.BilledUnits)
	assert.Equal(t, int64(-1), res.Sentinel())
}

func TestState_DrainIsIdempotent(t *testing.T) {
	// GIVEN a drained state
	s := newTestState(t, singleCategoryConfig(0), nil)
	s.Receive(NewCommand(0, "default", KindLaunch))
	s.Receive(NewJob(0, "default", 100, "job-1"))
	first := s.Evaluate()

	// WHEN it is drained again
	s.Drain()
	second := s.Evaluate()

	// THEN nothing is billed twice
	assert.Equal(t, first, second)
	assert.Equal(t, 1, s.Metrics().MachinesTerminated)
}

func TestState_LongerJobNeverBillsLess(t *testing.T) {
	run := func(duration float64) int64 {
		s := newTestState(t, singleCategoryConfig(0), nil)
		s.Receive(NewCommand(0, "default", KindLaunch))
		s.Receive(NewJob(0, "default", duration, "job-1"))
		return s.Evaluate().BilledUnits
	}

	// GIVEN the same scenario with increasing durations
	short := run(100)  // busy until 220: 1 unit + 3 penalty
	long := run(4000)  // busy until 4120: 2 units + 3 penalty

	// THEN a longer job never decreases the total
	assert.Equal(t, int64(4), short)
	assert.Equal(t, int64(5), long)
	assert.GreaterOrEqual(t, long, short)
}

func TestState_LaunchOrdering_DispatchBeforeAdmit(t *testing.T) {
	// GIVEN the default ordering: pending jobs are processed before a newly
	// launched machine joins the pool
	s := newTestState(t, singleCategoryConfig(DefaultGracePeriod), nil)
	s.Receive(NewJob(100, "default", 10, "job-1"))
	s.Receive(NewCommand(100, "default", KindLaunch))

	// THEN the job queued at the same instant is not served by this pass
	assert.Equal(t, 0, s.Metrics().JobsDispatched)

	// AND the drain's final pass picks it up
	res := s.Evaluate()
	assert.Equal(t, 1, s.Metrics().JobsDispatched)
	assert.False(t, res.Disqualified)
}

func TestState_LaunchOrdering_AdmitBeforeDispatch(t *testing.T) {
	// GIVEN the variant ordering: the machine is admitted first
	cfg := singleCategoryConfig(DefaultGracePeriod)
	cfg.AdmitBeforeDispatch = true
	s := newTestState(t, cfg, nil)
	s.Receive(NewJob(100, "default", 10, "job-1"))
	s.Receive(NewCommand(100, "default", KindLaunch))

	// THEN the same-instant launch serves the already-queued job
	assert.Equal(t, 1, s.Metrics().JobsDispatched)
}

func TestState_TerminatePicksMachineClosestToBoundary(t *testing.T) {
	// GIVEN two machines launched at t=0 and t=1800
	tr := trace.NewEvaluationTrace(trace.LevelDecisions)
	s := newTestState(t, singleCategoryConfig(DefaultGracePeriod), tr)
	s.Receive(NewCommand(0, "default", KindLaunch))
	s.Receive(NewCommand(1800, "default", KindLaunch))

	// WHEN one is terminated at t=3000 (600s vs 2400s to the boundary)
	s.Receive(NewCommand(3000, "default", KindTerminate))

	// THEN the machine launched at t=0 goes: it wastes the least paid time
	require.Len(t, tr.Machines, 3)
	assert.Equal(t, "terminate", tr.Machines[2].Action)
	assert.Equal(t, "machine_0001", tr.Machines[2].MachineID)
}

func TestState_TerminateOnEmptyPoolIsNoop(t *testing.T) {
	s := newTestState(t, singleCategoryConfig(0), nil)
	s.Receive(NewCommand(100, "default", KindTerminate))
	assert.Equal(t, 0, s.Metrics().MachinesTerminated)
	assert.Equal(t, int64(0), s.BilledUnits())
}

func TestState_UnknownCategoryIsNoise(t *testing.T) {
	// GIVEN an event for a category the contest does not run
	s := newTestState(t, singleCategoryConfig(100), nil)
	s.Receive(NewJob(500, "bogus", 10, "job-1"))

	// THEN it neither advances the clock nor latches the trial end
	assert.Equal(t, int64(0), s.Clock())
	assert.Equal(t, int64(0), s.TrialEnd())

	// AND the first valid event latches the trial normally
	s.Receive(NewCommand(1000, "default", KindLaunch))
	assert.Equal(t, int64(1000), s.Clock())
	assert.Equal(t, int64(1100), s.TrialEnd())
}

func TestState_ClockNeverMovesBackward(t *testing.T) {
	// GIVEN a malformed stream with a regressing timestamp
	s := newTestState(t, singleCategoryConfig(DefaultGracePeriod), nil)
	s.Receive(NewCommand(1000, "default", KindLaunch))
	s.Receive(NewCommand(900, "default", KindLaunch))

	// THEN the clock holds at the latest time seen
	assert.Equal(t, int64(1000), s.Clock())
}

func TestState_CategoriesAreIsolated(t *testing.T) {
	// GIVEN a machine in "export" and a job in "url"
	cfg := DefaultEngineConfig()
	cfg.GracePeriod = 0
	s := newTestState(t, cfg, nil)
	s.Receive(NewCommand(0, "export", KindLaunch))
	s.Receive(NewJob(0, "url", 10, "job-1"))

	// THEN the export machine cannot serve the url job: disqualified
	assert.True(t, s.Disqualified())
}

func TestState_RandomPolicy_RunsAreReplayable(t *testing.T) {
	run := func() (int64, []string) {
		cfg := singleCategoryConfig(0)
		cfg.Policy = PolicyRandomFirstFit
		cfg.Seed = 99
		tr := trace.NewEvaluationTrace(trace.LevelDecisions)
		s := newTestState(t, cfg, tr)
		for i := 0; i < 3; i++ {
			s.Receive(NewCommand(0, "default", KindLaunch))
		}
		for i := 0; i < 5; i++ {
			s.Receive(NewJob(130+int64(i), "default", 1, "job"))
		}
		res := s.Evaluate()
		var machines []string
		for _, d := range tr.Dispatches {
			machines = append(machines, d.MachineID)
		}
		return res.BilledUnits, machines
	}

	// GIVEN two runs with the same seed and input
	bill1, machines1 := run()
	bill2, machines2 := run()

	// THEN the dispatch decisions and the bill are identical
	assert.Equal(t, bill1, bill2)
	assert.Equal(t, machines1, machines2)
}

func TestNewState_RejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*EngineConfig)
	}{
		{"zero billing unit", func(c *EngineConfig) { c.BillingUnit = 0 }},
		{"zero max slack", func(c *EngineConfig) { c.MaxSlack = 0 }},
		{"negative grace", func(c *EngineConfig) { c.GracePeriod = -1 }},
		{"no categories", func(c *EngineConfig) { c.Categories = nil }},
		{"unknown policy", func(c *EngineConfig) { c.Policy = "lifo" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			tc.mutate(&cfg)
			_, err := NewState(cfg, quietLogger(), nil)
			assert.Error(t, err)
		})
	}
}
