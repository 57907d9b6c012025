package engine

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvenShares_SumsExactly(t *testing.T) {
	for n := 1; n <= 12; n++ {
		shares := EvenShares(n, 100)
		require.Len(t, shares, n)
		sum := 0
		for _, s := range shares {
			sum += s
		}
		assert.Equal(t, 100, sum, "n=%d", n)
	}
}

func TestEvenShares_RemainderGoesToEarliestSlots(t *testing.T) {
	shares := EvenShares(3, 100)
	assert.Equal(t, []int{34, 33, 33}, shares)

	shares = EvenShares(7, 100)
	assert.Equal(t, []int{15, 15, 14, 14, 14, 14, 14}, shares)
}

func TestEvenShares_DegenerateInputs(t *testing.T) {
	assert.Nil(t, EvenShares(0, 100))
	assert.Nil(t, EvenShares(-1, 100))
	assert.Nil(t, EvenShares(3, 0))
}

func stepTimeTotals(cfg *domain.ActivityConfiguration) float64 {
	total := 0.0
	for _, a := range BuildStepAggregates(cfg) {
		total += a.TimePercent
	}
	return total
}

func TestDistributeStepTime_EvenAcrossUnlocked(t *testing.T) {
	cfg := &domain.ActivityConfiguration{ActivityID: "act-1", PracticePercent: 100}
	for i, step := range []string{"Design", "Prototype", "Evaluate"} {
		cfg.UpsertSubcomponent(&domain.SubcomponentAllocation{
			SubcomponentID: fmt.Sprintf("sub-%d", i+1),
			Phase:          "P", Step: step, Seq: i + 1,
		})
	}

	DistributeStepTime(cfg)

	aggs := BuildStepAggregates(cfg)
	require.Len(t, aggs, 3)
	assert.InDelta(t, 34.0, aggs[0].TimePercent, 1e-9) // first step takes the remainder point
	assert.InDelta(t, 33.0, aggs[1].TimePercent, 1e-9)
	assert.InDelta(t, 33.0, aggs[2].TimePercent, 1e-9)
	assert.InDelta(t, 100.0, stepTimeTotals(cfg), 1e-9)
}

func TestDistributeStepTime_LockedStepsKeepPinnedValue(t *testing.T) {
	cfg := &domain.ActivityConfiguration{ActivityID: "act-1", PracticePercent: 100}
	cfg.UpsertSubcomponent(&domain.SubcomponentAllocation{
		SubcomponentID: "sub-1", Phase: "P", Step: "Design", TimePercent: 40, Seq: 1,
	})
	cfg.UpsertSubcomponent(&domain.SubcomponentAllocation{
		SubcomponentID: "sub-2", Phase: "P", Step: "Prototype", Seq: 2,
	})
	cfg.UpsertSubcomponent(&domain.SubcomponentAllocation{
		SubcomponentID: "sub-3", Phase: "P", Step: "Evaluate", Seq: 3,
	})
	cfg.LockStep("Design")

	DistributeStepTime(cfg)

	aggs := BuildStepAggregates(cfg)
	require.Len(t, aggs, 3)
	assert.InDelta(t, 40.0, aggs[0].TimePercent, 1e-9)
	assert.InDelta(t, 30.0, aggs[1].TimePercent, 1e-9)
	assert.InDelta(t, 30.0, aggs[2].TimePercent, 1e-9)
	assert.InDelta(t, 100.0, stepTimeTotals(cfg), 1e-9)
}

func TestDistributeStepTime_FractionalLockedTotalStillSums(t *testing.T) {
	cfg := &domain.ActivityConfiguration{ActivityID: "act-1"}
	cfg.UpsertSubcomponent(&domain.SubcomponentAllocation{
		SubcomponentID: "sub-1", Phase: "P", Step: "Design", TimePercent: 40.5, Seq: 1,
	})
	cfg.UpsertSubcomponent(&domain.SubcomponentAllocation{
		SubcomponentID: "sub-2", Phase: "P", Step: "Prototype", Seq: 2,
	})
	cfg.UpsertSubcomponent(&domain.SubcomponentAllocation{
		SubcomponentID: "sub-3", Phase: "P", Step: "Evaluate", Seq: 3,
	})
	cfg.LockStep("Design")

	DistributeStepTime(cfg)

	aggs := BuildStepAggregates(cfg)
	require.Len(t, aggs, 3)
	assert.InDelta(t, 40.5, aggs[0].TimePercent, 1e-9)
	// First unlocked step absorbs the half point left by the lock.
	assert.InDelta(t, 30.5, aggs[1].TimePercent, 1e-9)
	assert.InDelta(t, 29.0, aggs[2].TimePercent, 1e-9)
	assert.InDelta(t, 100.0, stepTimeTotals(cfg), 1e-9)
}

func TestDistributeStepTime_AllLockedIsNoop(t *testing.T) {
	cfg := &domain.ActivityConfiguration{ActivityID: "act-1"}
	cfg.UpsertSubcomponent(&domain.SubcomponentAllocation{
		SubcomponentID: "sub-1", Phase: "P", Step: "Design", TimePercent: 70, Seq: 1,
	})
	cfg.LockStep("Design")

	DistributeStepTime(cfg)

	assert.InDelta(t, 70.0, cfg.OrderedSubcomponents()[0].TimePercent, 1e-9)
}

func TestDistributeStepTime_NoSubcomponentsIsNoop(t *testing.T) {
	cfg := &domain.ActivityConfiguration{ActivityID: "act-1"}
	DistributeStepTime(cfg) // must not panic or divide by zero
	assert.Empty(t, cfg.Subcomponents)
}

func TestDistributeStepTime_LockedTotalOver100LeavesZero(t *testing.T) {
	cfg := &domain.ActivityConfiguration{ActivityID: "act-1"}
	cfg.UpsertSubcomponent(&domain.SubcomponentAllocation{
		SubcomponentID: "sub-1", Phase: "P", Step: "Design", TimePercent: 120, Seq: 1,
	})
	cfg.UpsertSubcomponent(&domain.SubcomponentAllocation{
		SubcomponentID: "sub-2", Phase: "P", Step: "Evaluate", TimePercent: 50, Seq: 2,
	})
	cfg.LockStep("Design")

	DistributeStepTime(cfg)

	aggs := BuildStepAggregates(cfg)
	assert.InDelta(t, 120.0, aggs[0].TimePercent, 1e-9)
	assert.InDelta(t, 0.0, aggs[1].TimePercent, 1e-9)
}

func TestDistributeFrequency_UnknownStepIsNoop(t *testing.T) {
	cfg := &domain.ActivityConfiguration{ActivityID: "act-1"}
	cfg.UpsertSubcomponent(&domain.SubcomponentAllocation{
		SubcomponentID: "sub-1", Phase: "P", Step: "Design", FrequencyPercent: 80, Seq: 1,
	})

	DistributeFrequency(cfg, "P", "Nowhere")

	assert.InDelta(t, 80.0, cfg.OrderedSubcomponents()[0].FrequencyPercent, 1e-9)
}

// Property test: for any mix of locked and unlocked steps, unlocked step
// times are non-negative integers and the grand total is exactly
// max(lockedTotal, 100) within float tolerance.
func TestDistributeStepTime_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		numSteps := rng.Intn(10) + 1
		cfg := &domain.ActivityConfiguration{ActivityID: "act-1"}
		lockedTotal := 0.0
		hasUnlocked := false

		for i := 0; i < numSteps; i++ {
			step := fmt.Sprintf("step-%d", i)
			pinned := float64(rng.Intn(60))
			cfg.UpsertSubcomponent(&domain.SubcomponentAllocation{
				SubcomponentID: fmt.Sprintf("sub-%d", i),
				Phase:          "P", Step: step,
				TimePercent: pinned,
				Seq:         i + 1,
			})
			if rng.Intn(2) == 1 {
				cfg.LockStep(step)
				lockedTotal += pinned
			} else {
				hasUnlocked = true
			}
		}

		DistributeStepTime(cfg)

		total := 0.0
		for _, a := range BuildStepAggregates(cfg) {
			if !a.IsLocked {
				assert.GreaterOrEqual(t, a.TimePercent, 0.0, "trial %d", trial)
				assert.Equal(t, a.TimePercent, float64(int(a.TimePercent)),
					"trial %d: unlocked share must be integral", trial)
			}
			total += a.TimePercent
		}

		if !hasUnlocked {
			continue
		}
		expected := 100.0
		if lockedTotal > 100 {
			expected = lockedTotal
		}
		assert.InDelta(t, expected, total, 1e-9, "trial %d", trial)
	}
}
