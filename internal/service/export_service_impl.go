package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/catalog"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/db"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/normalizer"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/repository"
)

type exportService struct {
	years    repository.BusinessYearRepo
	cat      catalog.Catalog
	uow      db.UnitOfWork
	logger   *slog.Logger
	observer UseCaseObserver
}

// NewExportService creates the normalization/export service. The unit of
// work backs PersistNormalized; it may be nil when only in-memory
// serialization is needed.
func NewExportService(years repository.BusinessYearRepo, cat catalog.Catalog, uow db.UnitOfWork, logger *slog.Logger, observers ...UseCaseObserver) ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &exportService{
		years:    years,
		cat:      cat,
		uow:      uow,
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *exportService) Rows(ctx context.Context, by domain.BusinessYear) (*normalizer.RowSet, error) {
	snap, err := s.years.Get(ctx, by)
	if err != nil {
		return nil, err
	}
	return normalizer.ToRows(s.cat, snap.Configurations, s.logger), nil
}

func (s *exportService) ExportJSON(ctx context.Context, by domain.BusinessYear) ([]byte, error) {
	rs, err := s.Rows(ctx, by)
	if err != nil {
		return nil, err
	}
	return normalizer.EncodeJSON(rs)
}

func (s *exportService) ExportCSV(ctx context.Context, by domain.BusinessYear) ([]byte, error) {
	rs, err := s.Rows(ctx, by)
	if err != nil {
		return nil, err
	}
	return normalizer.EncodeCSV(rs)
}

func (s *exportService) ExportSQL(ctx context.Context, by domain.BusinessYear) ([]byte, error) {
	rs, err := s.Rows(ctx, by)
	if err != nil {
		return nil, err
	}
	return []byte(normalizer.EncodeSQL(rs)), nil
}

// PersistNormalized writes the year's normalized rows to the relational
// tables in one transaction: taxonomy upserts first, then a full replace
// of the configuration and allocation rows.
func (s *exportService) PersistNormalized(ctx context.Context, by domain.BusinessYear) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"business_id": by.BusinessID, "year": by.Year}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "persist-normalized",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if s.uow == nil {
		return fmt.Errorf("persisting normalized rows for %s: no unit of work configured", by)
	}

	rs, err := s.Rows(ctx, by)
	if err != nil {
		return err
	}
	fields["taxonomy_rows"] = len(rs.Taxonomy)
	fields["configuration_rows"] = len(rs.Configurations)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteTaxonomyRepo(tx).Upsert(ctx, rs.Taxonomy); err != nil {
			return err
		}
		return repository.NewSQLiteConfigurationRepo(tx).ReplaceForYear(ctx, by, rs.Configurations)
	})
}

func (s *exportService) StoredRows(ctx context.Context, by domain.BusinessYear) ([]normalizer.ConfigurationRow, error) {
	if s.uow == nil {
		return nil, fmt.Errorf("reading normalized rows for %s: no unit of work configured", by)
	}
	var rows []normalizer.ConfigurationRow
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		rows, err = repository.NewSQLiteConfigurationRepo(tx).ListByYear(ctx, by)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ImportCSV rebuilds the allocation snapshot from a tagged long-format
// CSV export and saves it over the year's current record.
func (s *exportService) ImportCSV(ctx context.Context, by domain.BusinessYear, data []byte) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"business_id": by.BusinessID, "year": by.Year}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "import-csv",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	rs, err := normalizer.DecodeCSV(data)
	if err != nil {
		return fmt.Errorf("decoding csv for %s: %w", by, err)
	}
	cfgs := normalizer.FromRows(rs)
	for _, cfg := range cfgs {
		cfg.BusinessID = by.BusinessID
		cfg.Year = by.Year
	}
	fields["configuration_rows"] = len(cfgs)

	var version int64
	if snap, getErr := s.years.Get(ctx, by); getErr == nil {
		version = snap.Version
	} else if !errors.Is(getErr, repository.ErrNotFound) {
		return getErr
	}
	_, err = s.years.Save(ctx, by, cfgs, version)
	return err
}
