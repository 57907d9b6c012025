package repository

import (
	"context"
	"fmt"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/db"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/normalizer"
)

// levelTables maps each taxonomy level to its table name.
var levelTables = map[domain.NodeLevel]string{
	domain.LevelCategory:     "categories",
	domain.LevelArea:         "areas",
	domain.LevelFocus:        "focuses",
	domain.LevelActivity:     "activities",
	domain.LevelPhase:        "phases",
	domain.LevelStep:         "steps",
	domain.LevelSubcomponent: "subcomponents",
}

// SQLiteTaxonomyRepo implements TaxonomyRepo using a SQLite database.
type SQLiteTaxonomyRepo struct {
	db db.DBTX
}

// NewSQLiteTaxonomyRepo creates a new SQLiteTaxonomyRepo.
func NewSQLiteTaxonomyRepo(conn db.DBTX) *SQLiteTaxonomyRepo {
	return &SQLiteTaxonomyRepo{db: conn}
}

// Upsert writes taxonomy rows into their per-level tables, replacing
// existing rows by id. Rows must be ordered parents before children when
// foreign keys are enforced; normalized exports already are.
func (r *SQLiteTaxonomyRepo) Upsert(ctx context.Context, rows []normalizer.TaxonomyRow) error {
	for _, row := range rows {
		table, ok := levelTables[row.Level]
		if !ok {
			return fmt.Errorf("taxonomy row %s has unknown level %q", row.ID, row.Level)
		}
		var err error
		switch row.Level {
		case domain.LevelCategory:
			_, err = r.db.ExecContext(ctx,
				`INSERT OR REPLACE INTO categories (id, name) VALUES (?, ?)`,
				row.ID, row.Name)
		case domain.LevelActivity:
			_, err = r.db.ExecContext(ctx,
				`INSERT OR REPLACE INTO activities (id, name, parent_id, goal, hypothesis,
					uncertainties, alternatives, development_process)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				row.ID, row.Name, row.ParentID, row.Goal, row.Hypothesis,
				row.Uncertainties, row.Alternatives, row.DevelopmentProcess)
		case domain.LevelSubcomponent:
			_, err = r.db.ExecContext(ctx,
				`INSERT OR REPLACE INTO subcomponents (id, name, parent_id, hint) VALUES (?, ?, ?, ?)`,
				row.ID, row.Name, row.ParentID, row.Hint)
		default:
			_, err = r.db.ExecContext(ctx,
				fmt.Sprintf(`INSERT OR REPLACE INTO %s (id, name, parent_id) VALUES (?, ?, ?)`, table),
				row.ID, row.Name, row.ParentID)
		}
		if err != nil {
			return fmt.Errorf("upserting %s row %s: %w", row.Level, row.ID, err)
		}
	}
	return nil
}

func (r *SQLiteTaxonomyRepo) ListByLevel(ctx context.Context, level domain.NodeLevel) ([]normalizer.TaxonomyRow, error) {
	table, ok := levelTables[level]
	if !ok {
		return nil, fmt.Errorf("unknown taxonomy level %q", level)
	}

	var query string
	switch level {
	case domain.LevelCategory:
		query = `SELECT id, name, '', '', '', '', '', '', '' FROM categories ORDER BY id`
	case domain.LevelActivity:
		query = `SELECT id, name, parent_id, goal, hypothesis, uncertainties, alternatives,
			development_process, '' FROM activities ORDER BY id`
	case domain.LevelSubcomponent:
		query = `SELECT id, name, parent_id, '', '', '', '', '', hint FROM subcomponents ORDER BY id`
	default:
		query = fmt.Sprintf(
			`SELECT id, name, parent_id, '', '', '', '', '', '' FROM %s ORDER BY id`, table)
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing %s rows: %w", level, err)
	}
	defer rows.Close()

	var out []normalizer.TaxonomyRow
	for rows.Next() {
		row := normalizer.TaxonomyRow{Level: level}
		if err := rows.Scan(
			&row.ID, &row.Name, &row.ParentID, &row.Goal, &row.Hypothesis,
			&row.Uncertainties, &row.Alternatives, &row.DevelopmentProcess, &row.Hint,
		); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", level, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", level, err)
	}
	return out, nil
}
