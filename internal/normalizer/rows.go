// Package normalizer transforms the sparse, edit-oriented allocation map
// into deduplicated relational rows and back, and serializes the row set
// to JSON, tagged long-format CSV, and SQL insert statements. All three
// formats are pure functions of the normalized row set.
package normalizer

import (
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
)

// TaxonomyRow is one deduplicated taxonomy entity
// (category/area/focus/activity/phase/step/subcomponent).
type TaxonomyRow struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Level    domain.NodeLevel `json:"level"`
	ParentID string           `json:"parentId,omitempty"`

	Goal               string `json:"goal,omitempty"`
	Hypothesis         string `json:"hypothesis,omitempty"`
	Uncertainties      string `json:"uncertainties,omitempty"`
	Alternatives       string `json:"alternatives,omitempty"`
	DevelopmentProcess string `json:"developmentProcess,omitempty"`
	Hint               string `json:"hint,omitempty"`
}

// SubcomponentRow is the normalized projection of one subcomponent
// allocation. AppliedPercent is derived at export time.
type SubcomponentRow struct {
	SubcomponentID   string   `json:"subcomponentId"`
	SubcomponentName string   `json:"subcomponentName,omitempty"`
	Phase            string   `json:"phase"`
	Step             string   `json:"step"`
	TimePercent      float64  `json:"timePercent"`
	FrequencyPercent float64  `json:"frequencyPercent"`
	YearPercent      float64  `json:"yearPercent"`
	StartYear        int      `json:"startYear,omitempty"`
	SelectedRoles    []string `json:"selectedRoles,omitempty"`
	IsNonRD          bool     `json:"isNonRD,omitempty"`
	CatalogMiss      bool     `json:"catalogMiss,omitempty"`
	Seq              int      `json:"seq"`
	AppliedPercent   float64  `json:"appliedPercent"`
}

// ConfigurationRow is the persistence-ready projection of one activity
// configuration, with rollups and the completeness flag.
type ConfigurationRow struct {
	ID           string `json:"id"`
	BusinessID   string `json:"businessId"`
	Year         int    `json:"year"`
	ActivityID   string `json:"activityId"`
	ActivityName string `json:"activityName"`

	PracticePercent float64  `json:"practicePercent"`
	NonRDTime       float64  `json:"nonRDTime"`
	Active          bool     `json:"active"`
	SelectedRoles   []string `json:"selectedRoles,omitempty"`
	LockedSteps     []string `json:"lockedSteps,omitempty"`

	QRACompleted        bool    `json:"qraCompleted"`
	TotalAppliedPercent float64 `json:"totalAppliedPercent"`
	SubcomponentCount   int     `json:"subcomponentCount"`
	StepCount           int     `json:"stepCount"`

	Subcomponents []SubcomponentRow `json:"subcomponents"`
}

// RowSet is the full normalized export for one business year. Taxonomy
// rows appear once per unique id; configuration rows one per activity.
type RowSet struct {
	Taxonomy       []TaxonomyRow      `json:"taxonomy"`
	Configurations []ConfigurationRow `json:"configurations"`
}

// TaxonomyByLevel returns the taxonomy rows of one level, in export order.
func (rs *RowSet) TaxonomyByLevel(level domain.NodeLevel) []TaxonomyRow {
	var out []TaxonomyRow
	for _, row := range rs.Taxonomy {
		if row.Level == level {
			out = append(out, row)
		}
	}
	return out
}
