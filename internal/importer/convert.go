package importer

import (
	"time"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/catalog"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/google/uuid"
)

// Convert transforms a validated SelectionSchema into domain
// configurations ready for persistence. Call ValidateSelectionSchema
// first; Convert assumes the schema is valid.
//
// Subcomponent references resolve through the catalog: by id, then by
// tolerant name lookup. Unresolved references are kept with CatalogMiss
// set so the caller can surface them for reconciliation.
func Convert(schema *SelectionSchema, cat catalog.Catalog) []*domain.ActivityConfiguration {
	now := time.Now().UTC()

	var cfgs []*domain.ActivityConfiguration
	for _, a := range schema.Activities {
		cfg := &domain.ActivityConfiguration{
			ID:              uuid.New().String(),
			BusinessID:      schema.BusinessID,
			Year:            schema.Year,
			ActivityID:      a.ActivityID,
			ActivityName:    a.ActivityName,
			PracticePercent: domain.ClampPercent(a.PracticePercent),
			Active:          true,
			SelectedRoles:   domain.NormalizeRoles(a.SelectedRoles),
			LockedSteps:     append([]string(nil), a.LockedSteps...),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if a.NonRDTime != nil {
			cfg.NonRDTime = domain.ClampPercent(*a.NonRDTime)
		}
		if a.Active != nil {
			cfg.Active = *a.Active
		}
		if cfg.ActivityName == "" && cat != nil {
			if act, ok := cat.ActivityByID(a.ActivityID); ok {
				cfg.ActivityName = act.Name
			}
		}

		for _, s := range a.Subcomponents {
			sub := &domain.SubcomponentAllocation{
				SubcomponentID:   s.Subcomponent,
				SubcomponentName: s.Subcomponent,
				Phase:            s.Phase,
				Step:             s.Step,
				FrequencyPercent: 100,
				YearPercent:      100,
				StartYear:        schema.Year,
				SelectedRoles:    domain.NormalizeRoles(s.SelectedRoles),
				IsNonRD:          s.IsNonRD,
				Seq:              cfg.NextSeq(),
			}
			if s.TimePercent != nil {
				sub.TimePercent = domain.ClampPercent(*s.TimePercent)
			}
			if s.FrequencyPercent != nil {
				sub.FrequencyPercent = domain.ClampPercent(*s.FrequencyPercent)
			}
			if s.YearPercent != nil {
				sub.YearPercent = domain.ClampPercent(*s.YearPercent)
			}
			if s.StartYear != nil {
				sub.StartYear = *s.StartYear
			}
			resolveSubcomponent(sub, cfg, cat)
			cfg.UpsertSubcomponent(sub)
		}

		cfgs = append(cfgs, cfg)
	}
	return cfgs
}

// resolveSubcomponent fills the allocation's id and name from the
// catalog, or marks it a catalog miss when nothing matches.
func resolveSubcomponent(sub *domain.SubcomponentAllocation, cfg *domain.ActivityConfiguration, cat catalog.Catalog) {
	if cat == nil {
		sub.CatalogMiss = true
		return
	}
	if n, ok := catalog.ResolveSubcomponent(cat, cfg.ActivityName, sub.SubcomponentID); ok {
		sub.SubcomponentID = n.ID
		sub.SubcomponentName = n.Name
		return
	}
	sub.CatalogMiss = true
}
