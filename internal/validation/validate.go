// Package validation checks allocation invariants and reports imbalances.
// Validation is purely informational: it never blocks save or export.
package validation

import (
	"math"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/catalog"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/engine"
)

// Tolerance is the allowed deviation from 100 for sum-to-100 invariants.
const Tolerance = 0.01

type IssueKind string

const (
	// StepTimeImbalance: the activity's step time percents do not sum to 100.
	StepTimeImbalance IssueKind = "step_time_imbalance"
	// FrequencyImbalance: a step's subcomponent frequencies do not sum to 100.
	FrequencyImbalance IssueKind = "frequency_imbalance"
	// OrphanAllocation: an allocation's (phase, step) has no catalog match
	// and the allocation is not flagged non-R&D.
	OrphanAllocation IssueKind = "orphan_allocation"
)

// Issue is one advisory finding. Total carries the offending sum for the
// imbalance kinds.
type Issue struct {
	Kind       IssueKind
	ActivityID string
	Phase      string
	Step       string
	Key        domain.AllocationKey
	Total      float64
}

// Report is the validation outcome for one activity configuration.
type Report struct {
	ActivityID string
	Issues     []Issue

	// QRACompleted is true when the activity has at least one selected
	// subcomponent and no step-time or frequency imbalance. Orphans do
	// not affect completeness.
	QRACompleted bool
}

// Has reports whether the report contains an issue of the given kind.
func (r Report) Has(kind IssueKind) bool {
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}

func withinTolerance(total float64) bool {
	return math.Abs(total-100) <= Tolerance
}

// CheckConfiguration validates one activity configuration against the
// catalog. A nil catalog skips the ownership check. Never returns an
// error; orphaned allocations are reported but retained.
func CheckConfiguration(cat catalog.Catalog, cfg *domain.ActivityConfiguration) Report {
	report := Report{ActivityID: cfg.ActivityID}
	aggs := engine.BuildStepAggregates(cfg)

	// Step-time invariant, only meaningful for active activities with
	// selections.
	if cfg.Active && len(aggs) > 0 {
		stepTotal := 0.0
		for _, a := range aggs {
			stepTotal += a.TimePercent
		}
		if !withinTolerance(stepTotal) {
			report.Issues = append(report.Issues, Issue{
				Kind:       StepTimeImbalance,
				ActivityID: cfg.ActivityID,
				Total:      stepTotal,
			})
		}
	}

	// Subcomponent-frequency invariant per step.
	for _, a := range aggs {
		freqTotal := 0.0
		for _, sub := range a.Allocations {
			freqTotal += sub.FrequencyPercent
		}
		if !withinTolerance(freqTotal) {
			report.Issues = append(report.Issues, Issue{
				Kind:       FrequencyImbalance,
				ActivityID: cfg.ActivityID,
				Phase:      a.Phase,
				Step:       a.Step,
				Total:      freqTotal,
			})
		}
	}

	// Ownership invariant: every (phase, step) must resolve in the
	// catalog unless the allocation opted out of R&D.
	if cat != nil {
		for _, key := range cfg.SortedKeys() {
			sub := cfg.Subcomponents[key]
			if sub.IsNonRD {
				continue
			}
			if !catalog.HasStep(cat, cfg.ActivityID, sub.Phase, sub.Step) {
				report.Issues = append(report.Issues, Issue{
					Kind:       OrphanAllocation,
					ActivityID: cfg.ActivityID,
					Phase:      sub.Phase,
					Step:       sub.Step,
					Key:        key,
				})
			}
		}
	}

	report.QRACompleted = len(cfg.Subcomponents) > 0 &&
		!report.Has(StepTimeImbalance) &&
		!report.Has(FrequencyImbalance)

	return report
}

// CheckAll validates a set of configurations, one report each, in input
// order.
func CheckAll(cat catalog.Catalog, cfgs []*domain.ActivityConfiguration) []Report {
	reports := make([]Report, 0, len(cfgs))
	for _, cfg := range cfgs {
		reports = append(reports, CheckConfiguration(cat, cfg))
	}
	return reports
}
