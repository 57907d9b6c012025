package normalizer

import (
	"fmt"
	"strings"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
)

// sqlTableNames maps taxonomy levels to their normalized table names.
var sqlTableNames = map[domain.NodeLevel]string{
	domain.LevelCategory:     "categories",
	domain.LevelArea:         "areas",
	domain.LevelFocus:        "focuses",
	domain.LevelActivity:     "activities",
	domain.LevelPhase:        "phases",
	domain.LevelStep:         "steps",
	domain.LevelSubcomponent: "subcomponents",
}

// quoteSQL renders a string literal, doubling embedded quote characters.
func quoteSQL(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sqlBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// EncodeSQL renders the row set as INSERT statements, one per entity row.
// Statement order follows the row set: taxonomy parents before children,
// configurations before their subcomponent allocations.
func EncodeSQL(rs *RowSet) string {
	var b strings.Builder

	for _, row := range rs.Taxonomy {
		table := sqlTableNames[row.Level]
		fmt.Fprintf(&b,
			"INSERT INTO %s (id, name, parent_id, goal, hypothesis, uncertainties, alternatives, development_process, hint) VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s);\n",
			table,
			quoteSQL(row.ID), quoteSQL(row.Name), quoteSQL(row.ParentID),
			quoteSQL(row.Goal), quoteSQL(row.Hypothesis), quoteSQL(row.Uncertainties),
			quoteSQL(row.Alternatives), quoteSQL(row.DevelopmentProcess), quoteSQL(row.Hint),
		)
	}

	for _, cfg := range rs.Configurations {
		fmt.Fprintf(&b,
			"INSERT INTO qra_configurations (id, business_id, year, activity_id, activity_name, practice_percent, non_rd_time, active, selected_roles, locked_steps, qra_completed, total_applied_percent, subcomponent_count, step_count) VALUES (%s, %s, %d, %s, %s, %s, %s, %s, %s, %s, %s, %s, %d, %d);\n",
			quoteSQL(cfg.ID), quoteSQL(cfg.BusinessID), cfg.Year,
			quoteSQL(cfg.ActivityID), quoteSQL(cfg.ActivityName),
			formatFloat(cfg.PracticePercent), formatFloat(cfg.NonRDTime),
			sqlBool(cfg.Active),
			quoteSQL(strings.Join(cfg.SelectedRoles, roleSeparator)),
			quoteSQL(strings.Join(cfg.LockedSteps, roleSeparator)),
			sqlBool(cfg.QRACompleted),
			formatFloat(cfg.TotalAppliedPercent),
			cfg.SubcomponentCount, cfg.StepCount,
		)

		for _, sub := range cfg.Subcomponents {
			fmt.Fprintf(&b,
				"INSERT INTO qra_subcomponent_allocations (configuration_id, subcomponent_id, subcomponent_name, phase, step, time_percent, frequency_percent, year_percent, start_year, selected_roles, is_non_rd, catalog_miss, seq, applied_percent) VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %d, %s, %s, %s, %d, %s);\n",
				quoteSQL(cfg.ID), quoteSQL(sub.SubcomponentID), quoteSQL(sub.SubcomponentName),
				quoteSQL(sub.Phase), quoteSQL(sub.Step),
				formatFloat(sub.TimePercent), formatFloat(sub.FrequencyPercent), formatFloat(sub.YearPercent),
				sub.StartYear,
				quoteSQL(strings.Join(sub.SelectedRoles, roleSeparator)),
				sqlBool(sub.IsNonRD), sqlBool(sub.CatalogMiss), sub.Seq,
				formatFloat(sub.AppliedPercent),
			)
		}
	}

	return b.String()
}
