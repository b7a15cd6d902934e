package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMachinePool_PopClosest_PicksLeastRemainingBilling(t *testing.T) {
	// GIVEN two machines with billing periods anchored at 0 and 1800
	early := NewMachine(0, DefaultBootDelay, DefaultBillingUnit, "early")
	late := NewMachine(1800, DefaultBootDelay, DefaultBillingUnit, "late")
	pool := newMachinePool()
	pool.Add(early)
	pool.Add(late)

	// WHEN the closest machine is popped at t=1000
	// (early has 2600s left in its period, late has 800s)
	got := pool.PopClosest(1000)

	// THEN the machine launched at 1800 is closest to its boundary
	require.NotNil(t, got)
	require.Equal(t, "late", got.ID)
}

func TestMachinePool_PopClosest_RekeysWhenClockMoves(t *testing.T) {
	// GIVEN a pool ordered under an earlier clock
	early := NewMachine(0, DefaultBootDelay, DefaultBillingUnit, "early")
	late := NewMachine(1800, DefaultBootDelay, DefaultBillingUnit, "late")
	pool := newMachinePool()
	pool.Add(early)
	pool.Add(late)

	first := pool.PopClosest(1000)
	require.Equal(t, "late", first.ID)
	pool.Add(first)

	// WHEN the clock advances past the crossover point
	// (at t=3000: early has 600s left, late has 2400s)
	second := pool.PopClosest(3000)

	// THEN the ordering is re-derived against the new clock
	require.Equal(t, "early", second.ID)
}

func TestMachinePool_PopClosest_Empty_ReturnsNil(t *testing.T) {
	pool := newMachinePool()
	require.Nil(t, pool.PopClosest(0))
}

func TestMachinePool_Items_TracksMembership(t *testing.T) {
	pool := newMachinePool()
	require.Equal(t, 0, pool.Len())

	pool.Add(NewMachine(0, DefaultBootDelay, DefaultBillingUnit, "a"))
	pool.Add(NewMachine(10, DefaultBootDelay, DefaultBillingUnit, "b"))
	require.Equal(t, 2, pool.Len())
	require.Len(t, pool.Items(), 2)

	pool.PopClosest(0)
	require.Equal(t, 1, pool.Len())
}
