package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/catalog"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/importer"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/repository"
)

type importService struct {
	years    repository.BusinessYearRepo
	cat      catalog.Catalog
	observer UseCaseObserver
}

// NewImportService creates the selection-file import service.
func NewImportService(years repository.BusinessYearRepo, cat catalog.Catalog, observers ...UseCaseObserver) ImportService {
	return &importService{
		years:    years,
		cat:      cat,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *importService) ImportSelections(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadSelectionSchema(filePath)
	if err != nil {
		return nil, err
	}
	return s.ImportFromSchema(ctx, schema)
}

func (s *importService) ImportFromSchema(ctx context.Context, schema *importer.SelectionSchema) (result *ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"business_id": schema.BusinessID, "year": schema.Year}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "import-selections",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if errs := importer.ValidateSelectionSchema(schema); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("import validation failed with %d error(s):\n  %s",
			len(errs), strings.Join(msgs, "\n  "))
	}

	by := domain.BusinessYear{BusinessID: schema.BusinessID, Year: schema.Year}
	cfgs := importer.Convert(schema, s.cat)

	result = &ImportResult{BusinessYear: by, ActivityCount: len(cfgs)}
	for _, cfg := range cfgs {
		for _, sub := range cfg.Subcomponents {
			result.SubcomponentCount++
			if sub.CatalogMiss {
				result.CatalogMissCount++
			}
		}
	}
	fields["activity_count"] = result.ActivityCount
	fields["subcomponent_count"] = result.SubcomponentCount

	var version int64
	if snap, getErr := s.years.Get(ctx, by); getErr == nil {
		version = snap.Version
	} else if !errors.Is(getErr, repository.ErrNotFound) {
		return nil, getErr
	}

	result.Version, err = s.years.Save(ctx, by, cfgs, version)
	if err != nil {
		return nil, err
	}
	return result, nil
}
