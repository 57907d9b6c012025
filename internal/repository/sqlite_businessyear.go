package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/db"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
)

// SQLiteBusinessYearRepo implements BusinessYearRepo using a SQLite database.
//
// Stored payloads that fail schema validation are recovered as an empty
// configuration set rather than surfaced as errors, so one corrupt record
// never blocks the rest of a business's data. The recovery is logged.
type SQLiteBusinessYearRepo struct {
	db     db.DBTX
	logger *slog.Logger
}

// NewSQLiteBusinessYearRepo creates a new SQLiteBusinessYearRepo.
func NewSQLiteBusinessYearRepo(conn db.DBTX, logger *slog.Logger) *SQLiteBusinessYearRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteBusinessYearRepo{db: conn, logger: logger}
}

func (r *SQLiteBusinessYearRepo) Get(ctx context.Context, by domain.BusinessYear) (*Snapshot, error) {
	query := `SELECT version, payload, updated_at FROM business_years
		WHERE business_id = ? AND year = ?`
	row := r.db.QueryRowContext(ctx, query, by.BusinessID, by.Year)

	var version int64
	var payload, updatedAtStr string
	if err := row.Scan(&version, &payload, &updatedAtStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("business year %s: %w", by, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning business year %s: %w", by, err)
	}

	updatedAt, err := time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		updatedAt = time.Time{}
	}

	cfgs, err := decodePayload(by, []byte(payload))
	if err != nil {
		r.logger.Warn("recovering malformed allocation snapshot as empty",
			"business_id", by.BusinessID,
			"year", by.Year,
			"error", err)
		cfgs = nil
	}

	return &Snapshot{
		BusinessYear:   by,
		Version:        version,
		Configurations: cfgs,
		UpdatedAt:      updatedAt,
	}, nil
}

func (r *SQLiteBusinessYearRepo) Save(ctx context.Context, by domain.BusinessYear, cfgs []*domain.ActivityConfiguration, expectedVersion int64) (int64, error) {
	payload, err := encodePayload(by, cfgs)
	if err != nil {
		return 0, err
	}

	if expectedVersion == 0 {
		query := `INSERT INTO business_years (business_id, year, version, payload, updated_at)
			VALUES (?, ?, 1, ?, ?)`
		if _, err := r.db.ExecContext(ctx, query, by.BusinessID, by.Year, string(payload), nowUTC()); err != nil {
			var existing int64
			probe := r.db.QueryRowContext(ctx,
				`SELECT version FROM business_years WHERE business_id = ? AND year = ?`,
				by.BusinessID, by.Year)
			if probeErr := probe.Scan(&existing); probeErr == nil {
				return 0, fmt.Errorf("business year %s already at version %d: %w", by, existing, ErrVersionConflict)
			}
			return 0, fmt.Errorf("inserting business year %s: %w", by, err)
		}
		return 1, nil
	}

	query := `UPDATE business_years SET version = version + 1, payload = ?, updated_at = ?
		WHERE business_id = ? AND year = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, query, string(payload), nowUTC(), by.BusinessID, by.Year, expectedVersion)
	if err != nil {
		return 0, fmt.Errorf("updating business year %s: %w", by, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking update of business year %s: %w", by, err)
	}
	if affected == 0 {
		var current int64
		probe := r.db.QueryRowContext(ctx,
			`SELECT version FROM business_years WHERE business_id = ? AND year = ?`,
			by.BusinessID, by.Year)
		if probeErr := probe.Scan(&current); probeErr != nil {
			if probeErr == sql.ErrNoRows {
				return 0, fmt.Errorf("business year %s: %w", by, ErrNotFound)
			}
			return 0, fmt.Errorf("probing business year %s: %w", by, probeErr)
		}
		return 0, fmt.Errorf("business year %s at version %d, expected %d: %w",
			by, current, expectedVersion, ErrVersionConflict)
	}
	return expectedVersion + 1, nil
}

func (r *SQLiteBusinessYearRepo) Delete(ctx context.Context, by domain.BusinessYear) error {
	query := `DELETE FROM business_years WHERE business_id = ? AND year = ?`
	if _, err := r.db.ExecContext(ctx, query, by.BusinessID, by.Year); err != nil {
		return fmt.Errorf("deleting business year %s: %w", by, err)
	}
	return nil
}

func (r *SQLiteBusinessYearRepo) ListYears(ctx context.Context, businessID string) ([]int, error) {
	query := `SELECT year FROM business_years WHERE business_id = ? ORDER BY year`
	rows, err := r.db.QueryContext(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("listing years for %s: %w", businessID, err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scanning year: %w", err)
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating years: %w", err)
	}
	return years, nil
}
