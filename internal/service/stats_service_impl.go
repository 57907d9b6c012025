package service

import (
	"context"
	"log/slog"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/catalog"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/normalizer"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/repository"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/stats"
)

type statsService struct {
	years  repository.BusinessYearRepo
	cat    catalog.Catalog
	logger *slog.Logger
}

// NewStatsService creates the reporting service.
func NewStatsService(years repository.BusinessYearRepo, cat catalog.Catalog, logger *slog.Logger) StatsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &statsService{years: years, cat: cat, logger: logger}
}

func (s *statsService) Summary(ctx context.Context, by domain.BusinessYear) (stats.Summary, error) {
	snap, err := s.years.Get(ctx, by)
	if err != nil {
		return stats.Summary{}, err
	}
	rows := normalizer.ToRows(s.cat, snap.Configurations, s.logger)
	return stats.Summarize(rows.Configurations), nil
}
