package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// CurrentSchemaVersion is the selection-file format version this build
// reads and writes.
const CurrentSchemaVersion = 1

// SelectionSchema is the top-level JSON structure for an allocation
// import file: one business year and its selected activities.
type SelectionSchema struct {
	SchemaVersion int              `json:"schema_version"`
	BusinessID    string           `json:"business_id"`
	Year          int              `json:"year"`
	Activities    []ActivityImport `json:"activities"`
}

// ActivityImport defines one selected activity and its subcomponents.
type ActivityImport struct {
	ActivityID      string   `json:"activity_id"`
	ActivityName    string   `json:"activity_name,omitempty"`
	PracticePercent float64  `json:"practice_percent"`
	NonRDTime       *float64 `json:"non_rd_time,omitempty"`
	Active          *bool    `json:"active,omitempty"`
	SelectedRoles   []string `json:"selected_roles,omitempty"`
	LockedSteps     []string `json:"locked_steps,omitempty"`

	Subcomponents []SubcomponentImport `json:"subcomponents,omitempty"`
}

// SubcomponentImport defines one subcomponent selection under an
// activity. Subcomponent may be a catalog id or a display name; names
// resolve through tolerant catalog matching at conversion time.
type SubcomponentImport struct {
	Phase            string   `json:"phase"`
	Step             string   `json:"step"`
	Subcomponent     string   `json:"subcomponent"`
	TimePercent      *float64 `json:"time_percent,omitempty"`
	FrequencyPercent *float64 `json:"frequency_percent,omitempty"`
	YearPercent      *float64 `json:"year_percent,omitempty"`
	StartYear        *int     `json:"start_year,omitempty"`
	SelectedRoles    []string `json:"selected_roles,omitempty"`
	IsNonRD          bool     `json:"is_non_rd,omitempty"`
}

// LoadSelectionSchema reads and parses a selection import JSON file.
func LoadSelectionSchema(path string) (*SelectionSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var schema SelectionSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
