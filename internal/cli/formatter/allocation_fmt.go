package formatter

import (
	"fmt"
	"strings"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/engine"
)

// Percent renders a percentage with up to two fractional digits,
// trimming trailing zeros.
func Percent(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s + "%"
}

// FormatConfigurationList renders the activity table for one business year.
func FormatConfigurationList(cfgs []*domain.ActivityConfiguration) string {
	headers := []string{"ACTIVITY", "NAME", "PRACTICE", "SUBS", "STEPS", "APPLIED", "STATE"}
	rows := make([][]string, 0, len(cfgs))
	for _, cfg := range cfgs {
		rollup := engine.RollupActivity(cfg)
		state := StyleGreen.Render("active")
		if !cfg.Active {
			state = Dim("inactive")
		}
		rows = append(rows, []string{
			cfg.ActivityID,
			cfg.ActivityName,
			Percent(cfg.PracticePercent),
			fmt.Sprintf("%d", rollup.SubcomponentCount),
			fmt.Sprintf("%d", rollup.StepCount),
			Percent(rollup.TotalAppliedPercent),
			state,
		})
	}
	return RenderTable(headers, rows)
}

// FormatConfigurationDetail renders one activity with its step aggregates
// and subcomponent allocations.
func FormatConfigurationDetail(cfg *domain.ActivityConfiguration) string {
	var b strings.Builder

	b.WriteString(Header(cfg.ActivityName))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s  %s\n", Bold("Activity:"), cfg.ActivityID))
	b.WriteString(fmt.Sprintf("%s  %s\n", Bold("Practice:"), Percent(cfg.PracticePercent)))
	b.WriteString(fmt.Sprintf("%s  %s\n", Bold("Non-R&D:"), Percent(cfg.NonRDTime)))
	if len(cfg.SelectedRoles) > 0 {
		b.WriteString(fmt.Sprintf("%s  %s\n", Bold("Roles:"), strings.Join(cfg.SelectedRoles, ", ")))
	}

	aggs := engine.BuildStepAggregates(cfg)
	if len(aggs) == 0 {
		b.WriteString("\n" + Dim("No subcomponents selected.") + "\n")
		return b.String()
	}

	for _, agg := range aggs {
		lock := ""
		if agg.IsLocked {
			lock = " " + StylePurple.Render("[locked]")
		}
		b.WriteString(fmt.Sprintf("\n%s / %s  %s%s\n",
			StyleBlue.Render(agg.Phase), StyleBlue.Render(agg.Step),
			Percent(agg.TimePercent), lock))

		headers := []string{"SUBCOMPONENT", "FREQ", "YEAR", "APPLIED", ""}
		rows := make([][]string, 0, len(agg.Allocations))
		for _, sub := range agg.Allocations {
			note := ""
			if sub.IsNonRD {
				note = Dim("non-R&D")
			} else if sub.CatalogMiss {
				note = StyleYellow.Render("no catalog match")
			}
			rows = append(rows, []string{
				sub.SubcomponentName,
				Percent(sub.FrequencyPercent),
				Percent(sub.YearPercent),
				Percent(engine.AppliedPercentFor(cfg, sub)),
				note,
			})
		}
		b.WriteString(RenderTable(headers, rows))
	}

	return b.String()
}
