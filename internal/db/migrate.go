package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// Versioned allocation snapshots. One row per (business, year); the
	// payload holds the full configuration set as JSON and version backs
	// optimistic concurrency on save.
	`CREATE TABLE IF NOT EXISTS business_years (
		business_id TEXT NOT NULL,
		year        INTEGER NOT NULL,
		version     INTEGER NOT NULL DEFAULT 1,
		payload     TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		PRIMARY KEY (business_id, year)
	)`,

	// Research taxonomy, one table per level. Rows are written during
	// normalized export and read back for reporting queries.
	`CREATE TABLE IF NOT EXISTS categories (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS areas (
		id        TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		parent_id TEXT NOT NULL REFERENCES categories(id)
	)`,

	`CREATE TABLE IF NOT EXISTS focuses (
		id        TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		parent_id TEXT NOT NULL REFERENCES areas(id)
	)`,

	`CREATE TABLE IF NOT EXISTS activities (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL,
		parent_id           TEXT NOT NULL REFERENCES focuses(id),
		goal                TEXT NOT NULL DEFAULT '',
		hypothesis          TEXT NOT NULL DEFAULT '',
		uncertainties       TEXT NOT NULL DEFAULT '',
		alternatives        TEXT NOT NULL DEFAULT '',
		development_process TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS phases (
		id        TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		parent_id TEXT NOT NULL REFERENCES activities(id)
	)`,

	`CREATE TABLE IF NOT EXISTS steps (
		id        TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		parent_id TEXT NOT NULL REFERENCES phases(id)
	)`,

	`CREATE TABLE IF NOT EXISTS subcomponents (
		id        TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		parent_id TEXT NOT NULL REFERENCES steps(id),
		hint      TEXT NOT NULL DEFAULT ''
	)`,

	// Normalized activity configurations. One row per selected activity
	// within a business year.
	`CREATE TABLE IF NOT EXISTS qra_configurations (
		id                    TEXT PRIMARY KEY,
		business_id           TEXT NOT NULL,
		year                  INTEGER NOT NULL,
		activity_id           TEXT NOT NULL,
		activity_name         TEXT NOT NULL,
		practice_percent      REAL NOT NULL,
		non_rd_time           REAL NOT NULL DEFAULT 0,
		active                INTEGER NOT NULL DEFAULT 1,
		selected_roles        TEXT NOT NULL DEFAULT '',
		locked_steps          TEXT NOT NULL DEFAULT '',
		qra_completed         INTEGER NOT NULL DEFAULT 0,
		total_applied_percent REAL NOT NULL DEFAULT 0,
		subcomponent_count    INTEGER NOT NULL DEFAULT 0,
		step_count            INTEGER NOT NULL DEFAULT 0,
		created_at            TEXT NOT NULL,
		updated_at            TEXT NOT NULL,
		UNIQUE (business_id, year, activity_id)
	)`,

	// Normalized subcomponent allocations. The composite of phase, step
	// and subcomponent id identifies an allocation within a configuration.
	`CREATE TABLE IF NOT EXISTS qra_subcomponent_allocations (
		configuration_id  TEXT NOT NULL REFERENCES qra_configurations(id) ON DELETE CASCADE,
		phase             TEXT NOT NULL,
		step              TEXT NOT NULL,
		subcomponent_id   TEXT NOT NULL,
		subcomponent_name TEXT NOT NULL DEFAULT '',
		time_percent      REAL NOT NULL DEFAULT 0,
		frequency_percent REAL NOT NULL DEFAULT 0,
		year_percent      REAL NOT NULL DEFAULT 100,
		applied_percent   REAL NOT NULL DEFAULT 0,
		start_year        INTEGER NOT NULL DEFAULT 0,
		selected_roles    TEXT NOT NULL DEFAULT '',
		is_non_rd         INTEGER NOT NULL DEFAULT 0,
		catalog_miss      INTEGER NOT NULL DEFAULT 0,
		seq               INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (configuration_id, phase, step, subcomponent_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_qra_configurations_business_year
		ON qra_configurations(business_id, year)`,

	`CREATE INDEX IF NOT EXISTS idx_qra_subcomponent_allocations_config
		ON qra_subcomponent_allocations(configuration_id)`,
}
