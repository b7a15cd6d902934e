package sim

import "math"

// Baseline is the machine-hour budget a score of zero corresponds to:
// running 100 machines per category for 3 days + 1 hour (instances must be
// up 2 minutes before the first job).
//
//	HOURS * MACHINES * CATEGORIES
const Baseline = float64((24*2 + 1) * 100 * 3)

// Tier classifies a test case for scoring purposes.
type Tier string

const (
	// TierSecret: the hidden data sets that decide the contest.
	TierSecret Tier = "secret"
	// TierPublic: the published data sets.
	TierPublic Tier = "public"
	// TierSample: the sample data set, worth nothing.
	TierSample Tier = "sample"
)

// Coefficient returns the fixed score multiplier for a tier.
func Coefficient(tier Tier) float64 {
	switch tier {
	case TierSecret:
		return 100000.0
	case TierPublic:
		return 100.0
	default:
		return 0.0
	}
}

// ClassifyTestCase maps a test case id to its tier: ids 2 and 3 are the
// secret data sets, ids below 2 are public, the rest is the sample set.
func ClassifyTestCase(id int) Tier {
	switch {
	case id > 1 && id < 4:
		return TierSecret
	case id < 2:
		return TierPublic
	default:
		return TierSample
	}
}

// Score turns the machine-hours a submission used into a score. Hours are
// clamped to [0, Baseline]; spending the whole baseline (or more) scores 0.
// Disqualified submissions must not be passed through this function — they
// score 0 with an invalid flag at the caller.
func Score(vmHoursUsed float64, tier Tier) float64 {
	capped := math.Max(0, math.Min(Baseline, vmHoursUsed))
	return Coefficient(tier) * (Baseline - capped) / Baseline
}
