package repository

import (
	"context"
	"time"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/normalizer"
)

// Snapshot is one versioned allocation record for a business year: the
// full set of activity configurations plus the optimistic-concurrency
// version the caller must present on the next save.
type Snapshot struct {
	domain.BusinessYear
	Version        int64
	Configurations []*domain.ActivityConfiguration
	UpdatedAt      time.Time
}

// BusinessYearRepo stores allocation snapshots, one per (business, year).
// Save enforces optimistic concurrency: callers pass the version they
// loaded, and a mismatch returns ErrVersionConflict. A zero expected
// version creates the record and conflicts if one already exists.
type BusinessYearRepo interface {
	Get(ctx context.Context, by domain.BusinessYear) (*Snapshot, error)
	Save(ctx context.Context, by domain.BusinessYear, cfgs []*domain.ActivityConfiguration, expectedVersion int64) (int64, error)
	Delete(ctx context.Context, by domain.BusinessYear) error
	ListYears(ctx context.Context, businessID string) ([]int, error)
}

// ConfigurationRepo stores the normalized relational projection of a
// business year's configurations and their subcomponent allocations.
type ConfigurationRepo interface {
	ReplaceForYear(ctx context.Context, by domain.BusinessYear, rows []normalizer.ConfigurationRow) error
	ListByYear(ctx context.Context, by domain.BusinessYear) ([]normalizer.ConfigurationRow, error)
}

// TaxonomyRepo stores deduplicated taxonomy rows across all levels.
type TaxonomyRepo interface {
	Upsert(ctx context.Context, rows []normalizer.TaxonomyRow) error
	ListByLevel(ctx context.Context, level domain.NodeLevel) ([]normalizer.TaxonomyRow, error)
}
