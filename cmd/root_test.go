package cmd

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/scale-contest/scale-eval/sim"
)

func TestEvaluateStream_BilledTotal(t *testing.T) {
	logrus.SetLevel(logrus.ErrorLevel)
	gracePeriod = 0
	policyName = sim.PolicyBestFit

	// GIVEN a log with one machine and one 100s job at t=0
	log := "0 launch default\n0 100.0 job-1 default\n"

	result, metrics, err := evaluateStream(strings.NewReader(log))
	require.NoError(t, err)

	// THEN the boot-delay penalty (3) plus one machine unit are billed
	assert.False(t, result.Disqualified)
	assert.Equal(t, int64(4), result.Sentinel())
	assert.Equal(t, 1, metrics.JobsDispatched)
}

func TestEvaluateStream_DisqualificationSentinel(t *testing.T) {
	logrus.SetLevel(logrus.ErrorLevel)
	gracePeriod = 0
	policyName = sim.PolicyBestFit

	// GIVEN a job with no machine ever launched
	result, _, err := evaluateStream(strings.NewReader("100 10.0 job-1 default\n"))
	require.NoError(t, err)

	// THEN the sentinel is -1, never a zero bill
	assert.True(t, result.Disqualified)
	assert.Equal(t, int64(-1), result.Sentinel())
}

func TestEvaluateStream_NoiseOnlyLogIsEmptyRun(t *testing.T) {
	logrus.SetLevel(logrus.ErrorLevel)
	gracePeriod = sim.DefaultGracePeriod
	policyName = sim.PolicyBestFit

	result, _, err := evaluateStream(strings.NewReader("garbage\nmore garbage\n"))
	require.NoError(t, err)
	assert.False(t, result.Disqualified)
	assert.Equal(t, int64(0), result.Sentinel())
}
