package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/catalog"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/engine"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/repository"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/validation"
	"github.com/google/uuid"
)

type allocationService struct {
	years    repository.BusinessYearRepo
	cat      catalog.Catalog
	observer UseCaseObserver
}

// NewAllocationService creates the allocation editing service. The
// catalog may be nil; selections then carry catalog-miss annotations.
func NewAllocationService(years repository.BusinessYearRepo, cat catalog.Catalog, observers ...UseCaseObserver) AllocationService {
	return &allocationService{
		years:    years,
		cat:      cat,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Get returns the business year's snapshot. A year with no record yet
// reads as zero allocations at version 0, matching the recovery posture
// of the store itself.
func (s *allocationService) Get(ctx context.Context, by domain.BusinessYear) (*repository.Snapshot, error) {
	return s.loadOrEmpty(ctx, by)
}

func (s *allocationService) ListYears(ctx context.Context, businessID string) ([]int, error) {
	return s.years.ListYears(ctx, businessID)
}

// loadOrEmpty returns the stored snapshot, or a fresh zero-version
// snapshot when the business year has no record yet.
func (s *allocationService) loadOrEmpty(ctx context.Context, by domain.BusinessYear) (*repository.Snapshot, error) {
	snap, err := s.years.Get(ctx, by)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &repository.Snapshot{BusinessYear: by}, nil
		}
		return nil, err
	}
	return snap, nil
}

// mutate loads the business year, applies fn to its configurations, and
// saves with the loaded version. Version conflicts surface to the caller.
func (s *allocationService) mutate(ctx context.Context, by domain.BusinessYear, fn func(snap *repository.Snapshot) error) error {
	snap, err := s.loadOrEmpty(ctx, by)
	if err != nil {
		return err
	}
	if err := fn(snap); err != nil {
		return err
	}
	_, err = s.years.Save(ctx, by, snap.Configurations, snap.Version)
	return err
}

// findConfig locates the activity's configuration within a snapshot.
func findConfig(snap *repository.Snapshot, activityID string) *domain.ActivityConfiguration {
	for _, cfg := range snap.Configurations {
		if cfg.ActivityID == activityID {
			return cfg
		}
	}
	return nil
}

func (s *allocationService) SelectActivity(ctx context.Context, by domain.BusinessYear, activityID string, practicePercent float64, roles []string) (cfg *domain.ActivityConfiguration, err error) {
	defer s.observe(ctx, "select-activity", time.Now().UTC(), map[string]any{
		"business_id": by.BusinessID, "year": by.Year, "activity_id": activityID,
	}, &err)

	err = s.mutate(ctx, by, func(snap *repository.Snapshot) error {
		cfg = findConfig(snap, activityID)
		if cfg == nil {
			now := time.Now().UTC()
			cfg = &domain.ActivityConfiguration{
				ID:         uuid.New().String(),
				BusinessID: by.BusinessID,
				Year:       by.Year,
				ActivityID: activityID,
				Active:     true,
				CreatedAt:  now,
			}
			if s.cat != nil {
				if act, ok := s.cat.ActivityByID(activityID); ok {
					cfg.ActivityName = act.Name
				}
			}
			snap.Configurations = append(snap.Configurations, cfg)
		}
		cfg.PracticePercent = domain.ClampPercent(practicePercent)
		if roles != nil {
			cfg.SelectedRoles = domain.NormalizeRoles(roles)
		}
		cfg.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *allocationService) UpdateActivity(ctx context.Context, ref domain.ActivityRef, edit ActivityEdit) (cfg *domain.ActivityConfiguration, err error) {
	defer s.observe(ctx, "update-activity", time.Now().UTC(), map[string]any{
		"business_id": ref.BusinessID, "year": ref.Year, "activity_id": ref.ActivityID,
	}, &err)

	err = s.mutate(ctx, ref.BusinessYear, func(snap *repository.Snapshot) error {
		cfg = findConfig(snap, ref.ActivityID)
		if cfg == nil {
			return fmt.Errorf("activity %s for %s: %w", ref.ActivityID, ref.BusinessYear, repository.ErrNotFound)
		}
		if edit.PracticePercent != nil {
			cfg.PracticePercent = domain.ClampPercent(*edit.PracticePercent)
		}
		if edit.NonRDTime != nil {
			cfg.NonRDTime = domain.ClampPercent(*edit.NonRDTime)
		}
		if edit.Active != nil {
			cfg.Active = *edit.Active
		}
		if edit.Roles != nil {
			cfg.SelectedRoles = domain.NormalizeRoles(edit.Roles)
		}
		cfg.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *allocationService) DeselectActivity(ctx context.Context, ref domain.ActivityRef) (err error) {
	defer s.observe(ctx, "deselect-activity", time.Now().UTC(), map[string]any{
		"business_id": ref.BusinessID, "year": ref.Year, "activity_id": ref.ActivityID,
	}, &err)

	return s.mutate(ctx, ref.BusinessYear, func(snap *repository.Snapshot) error {
		for i, cfg := range snap.Configurations {
			if cfg.ActivityID == ref.ActivityID {
				snap.Configurations = append(snap.Configurations[:i], snap.Configurations[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("activity %s for %s: %w", ref.ActivityID, ref.BusinessYear, repository.ErrNotFound)
	})
}

func (s *allocationService) SelectSubcomponent(ctx context.Context, ref domain.ActivityRef, sel SubcomponentSelection) (sub *domain.SubcomponentAllocation, err error) {
	defer s.observe(ctx, "select-subcomponent", time.Now().UTC(), map[string]any{
		"business_id": ref.BusinessID, "year": ref.Year, "activity_id": ref.ActivityID,
	}, &err)

	err = s.mutate(ctx, ref.BusinessYear, func(snap *repository.Snapshot) error {
		cfg := findConfig(snap, ref.ActivityID)
		if cfg == nil {
			return fmt.Errorf("activity %s for %s: %w", ref.ActivityID, ref.BusinessYear, repository.ErrNotFound)
		}

		sub = &domain.SubcomponentAllocation{
			SubcomponentID:   sel.Subcomponent,
			SubcomponentName: sel.Subcomponent,
			Phase:            sel.Phase,
			Step:             sel.Step,
			TimePercent:      domain.ClampPercent(sel.TimePercent),
			FrequencyPercent: domain.ClampPercent(sel.FrequencyPercent),
			YearPercent:      domain.ClampPercent(sel.YearPercent),
			StartYear:        sel.StartYear,
			SelectedRoles:    domain.NormalizeRoles(sel.Roles),
			IsNonRD:          sel.IsNonRD,
		}
		if sub.StartYear == 0 {
			sub.StartYear = ref.Year
		}
		if s.cat != nil {
			if n, ok := catalog.ResolveSubcomponent(s.cat, cfg.ActivityName, sel.Subcomponent); ok {
				sub.SubcomponentID = n.ID
				sub.SubcomponentName = n.Name
			} else {
				sub.CatalogMiss = true
			}
		} else {
			sub.CatalogMiss = true
		}

		// Re-selecting an existing key replaces the entry but keeps its
		// position in the insertion order.
		if existing, ok := cfg.Subcomponents[sub.Key()]; ok {
			sub.Seq = existing.Seq
		} else {
			sub.Seq = cfg.NextSeq()
		}
		cfg.UpsertSubcomponent(sub)
		cfg.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *allocationService) DeselectSubcomponent(ctx context.Context, ref domain.ActivityRef, key domain.AllocationKey) (err error) {
	defer s.observe(ctx, "deselect-subcomponent", time.Now().UTC(), map[string]any{
		"business_id": ref.BusinessID, "year": ref.Year, "activity_id": ref.ActivityID,
	}, &err)

	return s.mutate(ctx, ref.BusinessYear, func(snap *repository.Snapshot) error {
		cfg := findConfig(snap, ref.ActivityID)
		if cfg == nil {
			return fmt.Errorf("activity %s for %s: %w", ref.ActivityID, ref.BusinessYear, repository.ErrNotFound)
		}
		if !cfg.RemoveSubcomponent(key) {
			return fmt.Errorf("allocation %s under %s: %w", key.Encode(), ref.ActivityID, repository.ErrNotFound)
		}
		cfg.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (s *allocationService) DistributeStepTime(ctx context.Context, ref domain.ActivityRef) (err error) {
	defer s.observe(ctx, "distribute-step-time", time.Now().UTC(), map[string]any{
		"business_id": ref.BusinessID, "year": ref.Year, "activity_id": ref.ActivityID,
	}, &err)

	return s.mutate(ctx, ref.BusinessYear, func(snap *repository.Snapshot) error {
		cfg := findConfig(snap, ref.ActivityID)
		if cfg == nil {
			return fmt.Errorf("activity %s for %s: %w", ref.ActivityID, ref.BusinessYear, repository.ErrNotFound)
		}
		engine.DistributeStepTime(cfg)
		cfg.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (s *allocationService) DistributeFrequency(ctx context.Context, ref domain.ActivityRef, phase, step string) (err error) {
	defer s.observe(ctx, "distribute-frequency", time.Now().UTC(), map[string]any{
		"business_id": ref.BusinessID, "year": ref.Year, "activity_id": ref.ActivityID, "step": step,
	}, &err)

	return s.mutate(ctx, ref.BusinessYear, func(snap *repository.Snapshot) error {
		cfg := findConfig(snap, ref.ActivityID)
		if cfg == nil {
			return fmt.Errorf("activity %s for %s: %w", ref.ActivityID, ref.BusinessYear, repository.ErrNotFound)
		}
		engine.DistributeFrequency(cfg, phase, step)
		cfg.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (s *allocationService) SetStepLock(ctx context.Context, ref domain.ActivityRef, step string, locked bool) (err error) {
	defer s.observe(ctx, "set-step-lock", time.Now().UTC(), map[string]any{
		"business_id": ref.BusinessID, "year": ref.Year, "activity_id": ref.ActivityID, "step": step, "locked": locked,
	}, &err)

	return s.mutate(ctx, ref.BusinessYear, func(snap *repository.Snapshot) error {
		cfg := findConfig(snap, ref.ActivityID)
		if cfg == nil {
			return fmt.Errorf("activity %s for %s: %w", ref.ActivityID, ref.BusinessYear, repository.ErrNotFound)
		}
		if locked {
			cfg.LockStep(step)
		} else {
			cfg.UnlockStep(step)
		}
		cfg.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (s *allocationService) Validate(ctx context.Context, by domain.BusinessYear) ([]validation.Report, error) {
	snap, err := s.loadOrEmpty(ctx, by)
	if err != nil {
		return nil, err
	}
	return validation.CheckAll(s.cat, snap.Configurations), nil
}

func (s *allocationService) observe(ctx context.Context, name string, startedAt time.Time, fields map[string]any, errp *error) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   *errp == nil,
		Err:       *errp,
		Fields:    fields,
	})
}
