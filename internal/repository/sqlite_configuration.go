package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/db"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/normalizer"
)

// SQLiteConfigurationRepo implements ConfigurationRepo using a SQLite
// database. It accepts a DBTX so callers can compose the full-year
// replace inside a unit of work.
type SQLiteConfigurationRepo struct {
	db db.DBTX
}

// NewSQLiteConfigurationRepo creates a new SQLiteConfigurationRepo.
func NewSQLiteConfigurationRepo(conn db.DBTX) *SQLiteConfigurationRepo {
	return &SQLiteConfigurationRepo{db: conn}
}

// ReplaceForYear deletes the year's normalized rows and writes the given
// set. Allocations cascade off their configuration rows.
func (r *SQLiteConfigurationRepo) ReplaceForYear(ctx context.Context, by domain.BusinessYear, rows []normalizer.ConfigurationRow) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM qra_configurations WHERE business_id = ? AND year = ?`,
		by.BusinessID, by.Year,
	); err != nil {
		return fmt.Errorf("clearing configurations for %s: %w", by, err)
	}

	now := nowUTC()
	for _, row := range rows {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO qra_configurations (id, business_id, year, activity_id, activity_name,
				practice_percent, non_rd_time, active, selected_roles, locked_steps,
				qra_completed, total_applied_percent, subcomponent_count, step_count,
				created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.ID, row.BusinessID, row.Year, row.ActivityID, row.ActivityName,
			row.PracticePercent, row.NonRDTime, boolToInt(row.Active),
			joinRoles(row.SelectedRoles), joinRoles(row.LockedSteps),
			boolToInt(row.QRACompleted), row.TotalAppliedPercent,
			row.SubcomponentCount, row.StepCount,
			now, now,
		); err != nil {
			return fmt.Errorf("inserting configuration %s: %w", row.ID, err)
		}

		for _, sub := range row.Subcomponents {
			if _, err := r.db.ExecContext(ctx,
				`INSERT INTO qra_subcomponent_allocations (configuration_id, phase, step,
					subcomponent_id, subcomponent_name, time_percent, frequency_percent,
					year_percent, applied_percent, start_year, selected_roles,
					is_non_rd, catalog_miss, seq)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				row.ID, sub.Phase, sub.Step,
				sub.SubcomponentID, sub.SubcomponentName,
				sub.TimePercent, sub.FrequencyPercent, sub.YearPercent,
				sub.AppliedPercent, sub.StartYear, joinRoles(sub.SelectedRoles),
				boolToInt(sub.IsNonRD), boolToInt(sub.CatalogMiss), sub.Seq,
			); err != nil {
				return fmt.Errorf("inserting allocation %s/%s/%s under %s: %w",
					sub.Phase, sub.Step, sub.SubcomponentID, row.ID, err)
			}
		}
	}
	return nil
}

func (r *SQLiteConfigurationRepo) ListByYear(ctx context.Context, by domain.BusinessYear) ([]normalizer.ConfigurationRow, error) {
	query := `SELECT id, business_id, year, activity_id, activity_name,
		practice_percent, non_rd_time, active, selected_roles, locked_steps,
		qra_completed, total_applied_percent, subcomponent_count, step_count
		FROM qra_configurations WHERE business_id = ? AND year = ? ORDER BY activity_id`
	rows, err := r.db.QueryContext(ctx, query, by.BusinessID, by.Year)
	if err != nil {
		return nil, fmt.Errorf("listing configurations for %s: %w", by, err)
	}
	defer rows.Close()

	var out []normalizer.ConfigurationRow
	byID := make(map[string]int)
	for rows.Next() {
		var row normalizer.ConfigurationRow
		var active, completed int
		var roles, lockedSteps string
		if err := rows.Scan(
			&row.ID, &row.BusinessID, &row.Year, &row.ActivityID, &row.ActivityName,
			&row.PracticePercent, &row.NonRDTime, &active, &roles, &lockedSteps,
			&completed, &row.TotalAppliedPercent, &row.SubcomponentCount, &row.StepCount,
		); err != nil {
			return nil, fmt.Errorf("scanning configuration: %w", err)
		}
		row.Active = intToBool(active)
		row.QRACompleted = intToBool(completed)
		row.SelectedRoles = splitRoles(roles)
		row.LockedSteps = splitRoles(lockedSteps)
		byID[row.ID] = len(out)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating configurations: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}

	subQuery := `SELECT a.configuration_id, a.phase, a.step, a.subcomponent_id,
		a.subcomponent_name, a.time_percent, a.frequency_percent, a.year_percent,
		a.applied_percent, a.start_year, a.selected_roles, a.is_non_rd, a.catalog_miss, a.seq
		FROM qra_subcomponent_allocations a
		JOIN qra_configurations c ON c.id = a.configuration_id
		WHERE c.business_id = ? AND c.year = ?`
	subRows, err := r.db.QueryContext(ctx, subQuery, by.BusinessID, by.Year)
	if err != nil {
		return nil, fmt.Errorf("listing allocations for %s: %w", by, err)
	}
	defer subRows.Close()

	for subRows.Next() {
		var configID, roles string
		var sub normalizer.SubcomponentRow
		var isNonRD, catalogMiss int
		if err := subRows.Scan(
			&configID, &sub.Phase, &sub.Step, &sub.SubcomponentID,
			&sub.SubcomponentName, &sub.TimePercent, &sub.FrequencyPercent, &sub.YearPercent,
			&sub.AppliedPercent, &sub.StartYear, &roles, &isNonRD, &catalogMiss, &sub.Seq,
		); err != nil {
			return nil, fmt.Errorf("scanning allocation: %w", err)
		}
		sub.SelectedRoles = splitRoles(roles)
		sub.IsNonRD = intToBool(isNonRD)
		sub.CatalogMiss = intToBool(catalogMiss)
		if idx, ok := byID[configID]; ok {
			out[idx].Subcomponents = append(out[idx].Subcomponents, sub)
		}
	}
	if err := subRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating allocations: %w", err)
	}

	for i := range out {
		subs := out[i].Subcomponents
		sort.Slice(subs, func(a, b int) bool { return subs[a].Seq < subs[b].Seq })
	}
	return out, nil
}
