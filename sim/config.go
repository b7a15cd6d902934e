package sim

// Engine constants shared by both contest seasons.
const (
	// DefaultBillingUnit: machines are billed by the hour (3600 seconds).
	DefaultBillingUnit int64 = 3600
	// DefaultBootDelay: a machine cannot accept work for 2 minutes after launch.
	DefaultBootDelay int64 = 120
	// DefaultFreeSlack: jobs placed within 5 seconds of arrival cost no penalty.
	DefaultFreeSlack int64 = 5
	// DefaultMaxSlack: the longest a job may wait before the contestant is
	// disqualified (after the grace period).
	DefaultMaxSlack int64 = 120
	// DefaultGracePeriod: the first 24 hours carry no billing or
	// disqualification.
	DefaultGracePeriod int64 = 24 * 60 * 60
)

// Dispatch policy selectors accepted by NewState.
const (
	// PolicyBestFit is the free-window best fit with a bounded penalty window.
	PolicyBestFit = "best-fit"
	// PolicyRandomFirstFit is the randomized cyclic first fit.
	PolicyRandomFirstFit = "random-first-fit"
)

// EngineConfig groups the engine parameters. The two historical evaluator
// variants differ only in these values, so one engine serves both.
type EngineConfig struct {
	BillingUnit int64    // billing granularity in seconds (must be > 0)
	BootDelay   int64    // seconds between launch and the machine accepting work
	FreeSlack   int64    // penalty-free placement window after job arrival
	MaxSlack    int64    // hard placement deadline after job arrival
	GracePeriod int64    // seconds after the first event with no billing or disqualification
	Categories  []string // category drain order; also the set of valid categories
	Policy      string   // dispatch policy selector (PolicyBestFit default)
	Seed        int64    // master seed for the randomized policy

	// AdmitBeforeDispatch controls the ordering on a launch command: false
	// (default) runs the pending-job dispatch pass before the new machine
	// joins the pool, so already-queued jobs cannot land on a machine
	// launched at the same instant; true admits the machine first.
	AdmitBeforeDispatch bool
}

// DefaultEngineConfig returns the canonical contest configuration:
// three categories drained in the order default, export, url.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		BillingUnit: DefaultBillingUnit,
		BootDelay:   DefaultBootDelay,
		FreeSlack:   DefaultFreeSlack,
		MaxSlack:    DefaultMaxSlack,
		GracePeriod: DefaultGracePeriod,
		Categories:  []string{"default", "export", "url"},
		Policy:      PolicyBestFit,
		Seed:        42,
	}
}
