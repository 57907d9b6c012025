package service

import (
	"context"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/importer"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/normalizer"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/repository"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/stats"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/validation"
)

// SubcomponentSelection carries the user's input when selecting a
// subcomponent under an activity. Subcomponent may be a catalog id or a
// display name; resolution is tolerant and misses are annotated, not
// rejected.
type SubcomponentSelection struct {
	Phase            string
	Step             string
	Subcomponent     string
	TimePercent      float64
	FrequencyPercent float64
	YearPercent      float64
	StartYear        int
	Roles            []string
	IsNonRD          bool
}

// ActivityEdit carries the editable activity-level fields. Nil pointers
// leave the current value unchanged.
type ActivityEdit struct {
	PracticePercent *float64
	NonRDTime       *float64
	Active          *bool
	Roles           []string
}

type AllocationService interface {
	Get(ctx context.Context, by domain.BusinessYear) (*repository.Snapshot, error)
	ListYears(ctx context.Context, businessID string) ([]int, error)
	SelectActivity(ctx context.Context, by domain.BusinessYear, activityID string, practicePercent float64, roles []string) (*domain.ActivityConfiguration, error)
	UpdateActivity(ctx context.Context, ref domain.ActivityRef, edit ActivityEdit) (*domain.ActivityConfiguration, error)
	DeselectActivity(ctx context.Context, ref domain.ActivityRef) error
	SelectSubcomponent(ctx context.Context, ref domain.ActivityRef, sel SubcomponentSelection) (*domain.SubcomponentAllocation, error)
	DeselectSubcomponent(ctx context.Context, ref domain.ActivityRef, key domain.AllocationKey) error
	DistributeStepTime(ctx context.Context, ref domain.ActivityRef) error
	DistributeFrequency(ctx context.Context, ref domain.ActivityRef, phase, step string) error
	SetStepLock(ctx context.Context, ref domain.ActivityRef, step string, locked bool) error
	Validate(ctx context.Context, by domain.BusinessYear) ([]validation.Report, error)
}

type ExportService interface {
	Rows(ctx context.Context, by domain.BusinessYear) (*normalizer.RowSet, error)
	ExportJSON(ctx context.Context, by domain.BusinessYear) ([]byte, error)
	ExportCSV(ctx context.Context, by domain.BusinessYear) ([]byte, error)
	ExportSQL(ctx context.Context, by domain.BusinessYear) ([]byte, error)
	PersistNormalized(ctx context.Context, by domain.BusinessYear) error
	StoredRows(ctx context.Context, by domain.BusinessYear) ([]normalizer.ConfigurationRow, error)
	ImportCSV(ctx context.Context, by domain.BusinessYear, data []byte) error
}

// ImportResult holds the outcome of a selection-file import.
type ImportResult struct {
	BusinessYear      domain.BusinessYear
	ActivityCount     int
	SubcomponentCount int
	CatalogMissCount  int
	Version           int64
}

type ImportService interface {
	ImportSelections(ctx context.Context, filePath string) (*ImportResult, error)
	ImportFromSchema(ctx context.Context, schema *importer.SelectionSchema) (*ImportResult, error)
}

type StatsService interface {
	Summary(ctx context.Context, by domain.BusinessYear) (stats.Summary, error)
}
