package normalizer

import (
	"log/slog"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/catalog"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/engine"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/validation"
)

// rowCollector deduplicates taxonomy rows by id, first-seen wins.
// Later rows that disagree on a descriptive field are dropped and the
// conflict logged.
type rowCollector struct {
	rows   []TaxonomyRow
	index  map[string]int
	logger *slog.Logger
}

func newRowCollector(logger *slog.Logger) *rowCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &rowCollector{index: make(map[string]int), logger: logger}
}

func (c *rowCollector) add(row TaxonomyRow) {
	if row.ID == "" {
		return
	}
	if i, ok := c.index[row.ID]; ok {
		if c.rows[i] != row {
			c.logger.Warn("normalization conflict, keeping first-seen row",
				"id", row.ID, "level", string(row.Level))
		}
		return
	}
	c.index[row.ID] = len(c.rows)
	c.rows = append(c.rows, row)
}

func taxonomyRowFor(n *domain.TaxonomyNode) TaxonomyRow {
	return TaxonomyRow{
		ID:                 n.ID,
		Name:               n.Name,
		Level:              n.Level,
		ParentID:           n.ParentID,
		Goal:               n.Goal,
		Hypothesis:         n.Hypothesis,
		Uncertainties:      n.Uncertainties,
		Alternatives:       n.Alternatives,
		DevelopmentProcess: n.DevelopmentProcess,
		Hint:               n.Hint,
	}
}

// ToRows normalizes a set of activity configurations into deduplicated
// taxonomy rows plus one configuration row per activity, with rollups
// computed from the allocation model. Catalog misses produce
// configuration rows without taxonomy context; they are never errors.
func ToRows(cat catalog.Catalog, cfgs []*domain.ActivityConfiguration, logger *slog.Logger) *RowSet {
	collector := newRowCollector(logger)
	rs := &RowSet{}

	for _, cfg := range cfgs {
		if cat != nil {
			collectAncestry(cat, collector, cfg)
		}
		rs.Configurations = append(rs.Configurations, configurationRowFor(cat, cfg))
	}

	rs.Taxonomy = collector.rows
	return rs
}

// collectAncestry emits the taxonomy rows reachable from one
// configuration: the activity's ancestor chain up to category, and the
// phase/step/subcomponent chain for every selected subcomponent.
func collectAncestry(cat catalog.Catalog, collector *rowCollector, cfg *domain.ActivityConfiguration) {
	var chain []TaxonomyRow
	for id := cfg.ActivityID; id != ""; {
		n, ok := cat.NodeByID(id)
		if !ok {
			break
		}
		chain = append(chain, taxonomyRowFor(n))
		id = n.ParentID
	}
	// Emit root first so parents precede children.
	for i := len(chain) - 1; i >= 0; i-- {
		collector.add(chain[i])
	}

	for _, key := range cfg.SortedKeys() {
		sub := cfg.Subcomponents[key]
		n, ok := cat.NodeByID(sub.SubcomponentID)
		if !ok {
			continue
		}
		var subChain []TaxonomyRow
		for id := n.ID; id != ""; {
			node, ok := cat.NodeByID(id)
			if !ok || node.Level.Depth() <= domain.LevelActivity.Depth() {
				break
			}
			subChain = append(subChain, taxonomyRowFor(node))
			id = node.ParentID
		}
		for i := len(subChain) - 1; i >= 0; i-- {
			collector.add(subChain[i])
		}
	}
}

func configurationRowFor(cat catalog.Catalog, cfg *domain.ActivityConfiguration) ConfigurationRow {
	rollup := engine.RollupActivity(cfg)
	report := validation.CheckConfiguration(cat, cfg)

	row := ConfigurationRow{
		ID:           cfg.ID,
		BusinessID:   cfg.BusinessID,
		Year:         cfg.Year,
		ActivityID:   cfg.ActivityID,
		ActivityName: cfg.ActivityName,

		PracticePercent: cfg.PracticePercent,
		NonRDTime:       cfg.NonRDTime,
		Active:          cfg.Active,
		SelectedRoles:   append([]string(nil), cfg.SelectedRoles...),
		LockedSteps:     append([]string(nil), cfg.LockedSteps...),

		QRACompleted:        report.QRACompleted,
		TotalAppliedPercent: rollup.TotalAppliedPercent,
		SubcomponentCount:   rollup.SubcomponentCount,
		StepCount:           rollup.StepCount,
	}

	for _, sub := range cfg.OrderedSubcomponents() {
		row.Subcomponents = append(row.Subcomponents, SubcomponentRow{
			SubcomponentID:   sub.SubcomponentID,
			SubcomponentName: sub.SubcomponentName,
			Phase:            sub.Phase,
			Step:             sub.Step,
			TimePercent:      sub.TimePercent,
			FrequencyPercent: sub.FrequencyPercent,
			YearPercent:      sub.YearPercent,
			StartYear:        sub.StartYear,
			SelectedRoles:    append([]string(nil), sub.SelectedRoles...),
			IsNonRD:          sub.IsNonRD,
			CatalogMiss:      sub.CatalogMiss,
			Seq:              sub.Seq,
			AppliedPercent:   engine.AppliedPercentFor(cfg, sub),
		})
	}

	return row
}

// FromRows reconstructs the sparse allocation map from configuration
// rows, keyed by the same composite key used internally. Export followed
// by import is idempotent up to generated timestamps. Taxonomy rows are
// reference data and do not participate.
func FromRows(rs *RowSet) []*domain.ActivityConfiguration {
	var cfgs []*domain.ActivityConfiguration

	for _, row := range rs.Configurations {
		cfg := &domain.ActivityConfiguration{
			ID:           row.ID,
			BusinessID:   row.BusinessID,
			Year:         row.Year,
			ActivityID:   row.ActivityID,
			ActivityName: row.ActivityName,

			PracticePercent: row.PracticePercent,
			NonRDTime:       row.NonRDTime,
			Active:          row.Active,
			SelectedRoles:   append([]string(nil), row.SelectedRoles...),
			LockedSteps:     append([]string(nil), row.LockedSteps...),
		}
		for _, sub := range row.Subcomponents {
			cfg.UpsertSubcomponent(&domain.SubcomponentAllocation{
				SubcomponentID:   sub.SubcomponentID,
				SubcomponentName: sub.SubcomponentName,
				Phase:            sub.Phase,
				Step:             sub.Step,
				TimePercent:      sub.TimePercent,
				FrequencyPercent: sub.FrequencyPercent,
				YearPercent:      sub.YearPercent,
				StartYear:        sub.StartYear,
				SelectedRoles:    append([]string(nil), sub.SelectedRoles...),
				IsNonRD:          sub.IsNonRD,
				CatalogMiss:      sub.CatalogMiss,
				Seq:              sub.Seq,
			})
		}
		cfgs = append(cfgs, cfg)
	}

	return cfgs
}
