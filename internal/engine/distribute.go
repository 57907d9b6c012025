package engine

import (
	"math"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
)

// EvenShares splits total integer percentage points across n slots:
// each slot gets floor(total/n), and the first total%n slots get one
// extra point, so the shares always sum to exactly total. n <= 0 or
// total <= 0 yields nil.
func EvenShares(n, total int) []int {
	if n <= 0 || total <= 0 {
		return nil
	}
	base := total / n
	extra := total % n
	shares := make([]int, n)
	for i := range shares {
		shares[i] = base
		if i < extra {
			shares[i]++
		}
	}
	return shares
}

// DistributeStepTime assigns each unlocked step an even share of the time
// percent remaining after locked steps keep their pinned values. Whole
// points split floor-plus-remainder to the earliest steps in insertion
// order; any fractional part of the locked total lands on the first
// unlocked step so the activity still sums to 100. With no unlocked
// steps the configuration is unchanged.
func DistributeStepTime(cfg *domain.ActivityConfiguration) {
	aggs := BuildStepAggregates(cfg)

	var unlocked []StepAggregate
	lockedTotal := 0.0
	for _, a := range aggs {
		if a.IsLocked {
			lockedTotal += a.TimePercent
			continue
		}
		unlocked = append(unlocked, a)
	}
	if len(unlocked) == 0 {
		return
	}

	remaining := 100 - lockedTotal
	if remaining < 0 {
		remaining = 0
	}

	// Integer point shares for the whole part; the fractional part left
	// over by non-integer locked totals goes to the first unlocked step
	// so locked plus unlocked still sums to 100.
	whole := int(math.Floor(remaining))
	frac := remaining - float64(whole)
	shares := EvenShares(len(unlocked), whole)
	for i, a := range unlocked {
		share := 0.0
		if shares != nil {
			share = float64(shares[i])
		}
		if i == 0 {
			share += frac
		}
		for _, sub := range a.Allocations {
			sub.TimePercent = share
		}
	}
}

// DistributeFrequency evenly splits frequency percent across the
// allocations of one (phase, step), remainder points going to the
// earliest selections. Unknown steps are a no-op.
func DistributeFrequency(cfg *domain.ActivityConfiguration, phase, step string) {
	for _, a := range BuildStepAggregates(cfg) {
		if a.Phase != phase || a.Step != step {
			continue
		}
		shares := EvenShares(len(a.Allocations), 100)
		for i, sub := range a.Allocations {
			sub.FrequencyPercent = float64(shares[i])
		}
		return
	}
}
