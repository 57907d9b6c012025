package engine

import (
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
)

// AppliedPercent computes the fully cascaded R&D percentage:
// practice * time/100 * frequency/100 * year/100.
// It is a pure function of its inputs and is recomputed on every read;
// no applied percent is ever cached across an edit.
func AppliedPercent(practicePercent, timePercent, frequencyPercent, yearPercent float64) float64 {
	return practicePercent * (timePercent / 100) * (frequencyPercent / 100) * (yearPercent / 100)
}

// AppliedPercentFor computes the applied percent for one allocation under
// its parent configuration. Allocations opted out via IsNonRD contribute 0.
func AppliedPercentFor(cfg *domain.ActivityConfiguration, sub *domain.SubcomponentAllocation) float64 {
	if sub.IsNonRD {
		return 0
	}
	return AppliedPercent(cfg.PracticePercent, sub.TimePercent, sub.FrequencyPercent, sub.YearPercent)
}

// StepAggregate is the derived per-step view of an activity: the
// allocations sharing one (phase, step), the step's time percent, and
// whether the step is pinned against redistribution. Never stored.
type StepAggregate struct {
	Phase string
	Step  string

	TimePercent float64
	IsLocked    bool

	Allocations         []*domain.SubcomponentAllocation
	SubcomponentCount   int
	TotalAppliedPercent float64
}

// BuildStepAggregates groups an activity's allocations by (phase, step)
// in insertion order. The step's time percent is taken from its first
// allocation; all allocations within a step share the step's time.
func BuildStepAggregates(cfg *domain.ActivityConfiguration) []StepAggregate {
	index := make(map[[2]string]int)
	var aggs []StepAggregate

	for _, sub := range cfg.OrderedSubcomponents() {
		gk := [2]string{sub.Phase, sub.Step}
		i, ok := index[gk]
		if !ok {
			i = len(aggs)
			index[gk] = i
			aggs = append(aggs, StepAggregate{
				Phase:       sub.Phase,
				Step:        sub.Step,
				TimePercent: sub.TimePercent,
				IsLocked:    cfg.IsStepLocked(sub.Step),
			})
		}
		aggs[i].Allocations = append(aggs[i].Allocations, sub)
		aggs[i].SubcomponentCount++
		aggs[i].TotalAppliedPercent += AppliedPercentFor(cfg, sub)
	}

	return aggs
}

// Rollup holds the activity-level totals derived from its allocations.
type Rollup struct {
	TotalAppliedPercent float64
	SubcomponentCount   int
	StepCount           int
}

// RollupActivity computes the activity totals: summed applied percent,
// distinct subcomponent count, distinct step count.
func RollupActivity(cfg *domain.ActivityConfiguration) Rollup {
	var r Rollup
	subIDs := make(map[string]bool)
	steps := make(map[[2]string]bool)

	for _, sub := range cfg.Subcomponents {
		r.TotalAppliedPercent += AppliedPercentFor(cfg, sub)
		subIDs[sub.SubcomponentID] = true
		steps[[2]string{sub.Phase, sub.Step}] = true
	}

	r.SubcomponentCount = len(subIDs)
	r.StepCount = len(steps)
	return r
}
