package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
)

// payloadSchemaVersion is the schema version written into every snapshot
// payload. Decoding rejects payloads from a newer schema.
const payloadSchemaVersion = 1

// snapshotPayload is the stored JSON form of a business year's
// configurations. Subcomponent maps are flattened to ordered lists
// because the composite key is a struct.
type snapshotPayload struct {
	SchemaVersion  int                    `json:"schemaVersion"`
	Configurations []configurationPayload `json:"configurations"`
}

type configurationPayload struct {
	ID           string `json:"id"`
	ActivityID   string `json:"activityId"`
	ActivityName string `json:"activityName,omitempty"`

	PracticePercent float64  `json:"practicePercent"`
	NonRDTime       float64  `json:"nonRDTime,omitempty"`
	Active          bool     `json:"active"`
	SelectedRoles   []string `json:"selectedRoles,omitempty"`
	LockedSteps     []string `json:"lockedSteps,omitempty"`

	Subcomponents []allocationPayload `json:"subcomponents,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type allocationPayload struct {
	SubcomponentID   string   `json:"subcomponentId"`
	SubcomponentName string   `json:"subcomponentName,omitempty"`
	Phase            string   `json:"phase"`
	Step             string   `json:"step"`
	TimePercent      float64  `json:"timePercent"`
	FrequencyPercent float64  `json:"frequencyPercent"`
	YearPercent      float64  `json:"yearPercent"`
	StartYear        int      `json:"startYear,omitempty"`
	SelectedRoles    []string `json:"selectedRoles,omitempty"`
	IsNonRD          bool     `json:"isNonRD,omitempty"`
	CatalogMiss      bool     `json:"catalogMiss,omitempty"`
	Seq              int      `json:"seq"`
}

// encodePayload serializes configurations into the stored JSON form.
func encodePayload(by domain.BusinessYear, cfgs []*domain.ActivityConfiguration) ([]byte, error) {
	p := snapshotPayload{SchemaVersion: payloadSchemaVersion}
	for _, cfg := range cfgs {
		cp := configurationPayload{
			ID:              cfg.ID,
			ActivityID:      cfg.ActivityID,
			ActivityName:    cfg.ActivityName,
			PracticePercent: cfg.PracticePercent,
			NonRDTime:       cfg.NonRDTime,
			Active:          cfg.Active,
			SelectedRoles:   cfg.SelectedRoles,
			LockedSteps:     cfg.LockedSteps,
			CreatedAt:       cfg.CreatedAt,
			UpdatedAt:       cfg.UpdatedAt,
		}
		for _, sub := range cfg.OrderedSubcomponents() {
			cp.Subcomponents = append(cp.Subcomponents, allocationPayload{
				SubcomponentID:   sub.SubcomponentID,
				SubcomponentName: sub.SubcomponentName,
				Phase:            sub.Phase,
				Step:             sub.Step,
				TimePercent:      sub.TimePercent,
				FrequencyPercent: sub.FrequencyPercent,
				YearPercent:      sub.YearPercent,
				StartYear:        sub.StartYear,
				SelectedRoles:    sub.SelectedRoles,
				IsNonRD:          sub.IsNonRD,
				CatalogMiss:      sub.CatalogMiss,
				Seq:              sub.Seq,
			})
		}
		p.Configurations = append(p.Configurations, cp)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot payload for %s: %w", by, err)
	}
	return data, nil
}

// decodePayload parses a stored payload back into domain configurations.
// Returns an error for unparseable JSON, an unsupported schema version,
// or entries missing their identifying fields; callers decide whether to
// recover or fail.
func decodePayload(by domain.BusinessYear, data []byte) ([]*domain.ActivityConfiguration, error) {
	var p snapshotPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing snapshot payload for %s: %w", by, err)
	}
	if p.SchemaVersion != payloadSchemaVersion {
		return nil, fmt.Errorf("unsupported snapshot schema version %d for %s", p.SchemaVersion, by)
	}

	var cfgs []*domain.ActivityConfiguration
	for i, cp := range p.Configurations {
		if cp.ActivityID == "" {
			return nil, fmt.Errorf("snapshot configuration %d for %s has no activity id", i, by)
		}
		cfg := &domain.ActivityConfiguration{
			ID:              cp.ID,
			BusinessID:      by.BusinessID,
			Year:            by.Year,
			ActivityID:      cp.ActivityID,
			ActivityName:    cp.ActivityName,
			PracticePercent: cp.PracticePercent,
			NonRDTime:       cp.NonRDTime,
			Active:          cp.Active,
			SelectedRoles:   cp.SelectedRoles,
			LockedSteps:     cp.LockedSteps,
			CreatedAt:       cp.CreatedAt,
			UpdatedAt:       cp.UpdatedAt,
		}
		for j, ap := range cp.Subcomponents {
			if ap.SubcomponentID == "" || ap.Phase == "" || ap.Step == "" {
				return nil, fmt.Errorf("snapshot allocation %d/%d for %s has an incomplete key", i, j, by)
			}
			cfg.UpsertSubcomponent(&domain.SubcomponentAllocation{
				SubcomponentID:   ap.SubcomponentID,
				SubcomponentName: ap.SubcomponentName,
				Phase:            ap.Phase,
				Step:             ap.Step,
				TimePercent:      ap.TimePercent,
				FrequencyPercent: ap.FrequencyPercent,
				YearPercent:      ap.YearPercent,
				StartYear:        ap.StartYear,
				SelectedRoles:    ap.SelectedRoles,
				IsNonRD:          ap.IsNonRD,
				CatalogMiss:      ap.CatalogMiss,
				Seq:              ap.Seq,
			})
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}
