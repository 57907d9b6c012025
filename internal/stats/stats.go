// Package stats derives reporting aggregates from normalized
// configuration rows. Read-only; consumers are reporting surfaces.
package stats

import (
	"sort"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/normalizer"
)

// TopN is how many activities the leaderboard keeps.
const TopN = 5

// ActivityStat is one leaderboard entry.
type ActivityStat struct {
	ActivityID     string
	ActivityName   string
	AppliedPercent float64
}

// Summary is the reporting aggregate for one business year.
type Summary struct {
	TotalActivities     int
	TotalSubcomponents  int
	TotalAppliedPercent float64

	RDActivities    int
	NonRDActivities int

	AverageAppliedPercent float64

	TopActivities []ActivityStat
}

// Summarize aggregates the configuration rows of one business year.
// Ties in the leaderboard keep input order.
func Summarize(rows []normalizer.ConfigurationRow) Summary {
	s := Summary{TotalActivities: len(rows)}

	entries := make([]ActivityStat, 0, len(rows))
	for _, row := range rows {
		s.TotalSubcomponents += row.SubcomponentCount
		s.TotalAppliedPercent += row.TotalAppliedPercent
		if row.TotalAppliedPercent > 0 {
			s.RDActivities++
		} else {
			s.NonRDActivities++
		}
		entries = append(entries, ActivityStat{
			ActivityID:     row.ActivityID,
			ActivityName:   row.ActivityName,
			AppliedPercent: row.TotalAppliedPercent,
		})
	}

	if s.TotalActivities > 0 {
		s.AverageAppliedPercent = s.TotalAppliedPercent / float64(s.TotalActivities)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AppliedPercent > entries[j].AppliedPercent
	})
	if len(entries) > TopN {
		entries = entries[:TopN]
	}
	s.TopActivities = entries

	return s
}
