package importer

import (
	"fmt"
)

// ValidateSelectionSchema checks the import schema for errors before
// conversion. Returns a slice of all validation errors found.
//
// Unknown activity or subcomponent references are deliberately not
// errors here: catalog matching is tolerant and misses are carried as
// annotations on the converted allocations instead.
func ValidateSelectionSchema(schema *SelectionSchema) []error {
	var errs []error

	if schema.SchemaVersion != CurrentSchemaVersion {
		errs = append(errs, fmt.Errorf("schema_version: unsupported version %d (expected %d)",
			schema.SchemaVersion, CurrentSchemaVersion))
	}
	if schema.BusinessID == "" {
		errs = append(errs, fmt.Errorf("business_id is required"))
	}
	if schema.Year < 1900 || schema.Year > 2200 {
		errs = append(errs, fmt.Errorf("year: implausible value %d", schema.Year))
	}

	seenActivities := make(map[string]bool)
	for i, a := range schema.Activities {
		prefix := fmt.Sprintf("activities[%d]", i)
		errs = append(errs, validateActivity(prefix, &a)...)
		if a.ActivityID != "" {
			if seenActivities[a.ActivityID] {
				errs = append(errs, fmt.Errorf("%s: duplicate activity_id %q", prefix, a.ActivityID))
			}
			seenActivities[a.ActivityID] = true
		}
	}

	return errs
}

func validateActivity(prefix string, a *ActivityImport) []error {
	var errs []error

	if a.ActivityID == "" {
		errs = append(errs, fmt.Errorf("%s.activity_id is required", prefix))
	}
	if err := checkPercent(prefix+".practice_percent", a.PracticePercent); err != nil {
		errs = append(errs, err)
	}
	if a.NonRDTime != nil {
		if err := checkPercent(prefix+".non_rd_time", *a.NonRDTime); err != nil {
			errs = append(errs, err)
		}
	}

	seen := make(map[string]bool)
	for j, s := range a.Subcomponents {
		subPrefix := fmt.Sprintf("%s.subcomponents[%d]", prefix, j)
		errs = append(errs, validateSubcomponent(subPrefix, &s)...)

		composite := s.Phase + "\x00" + s.Step + "\x00" + s.Subcomponent
		if s.Phase != "" && s.Step != "" && s.Subcomponent != "" {
			if seen[composite] {
				errs = append(errs, fmt.Errorf("%s: duplicate (phase, step, subcomponent) %q/%q/%q",
					subPrefix, s.Phase, s.Step, s.Subcomponent))
			}
			seen[composite] = true
		}
	}

	return errs
}

func validateSubcomponent(prefix string, s *SubcomponentImport) []error {
	var errs []error

	if s.Phase == "" {
		errs = append(errs, fmt.Errorf("%s.phase is required", prefix))
	}
	if s.Step == "" {
		errs = append(errs, fmt.Errorf("%s.step is required", prefix))
	}
	if s.Subcomponent == "" {
		errs = append(errs, fmt.Errorf("%s.subcomponent is required", prefix))
	}
	for _, pct := range []struct {
		name  string
		value *float64
	}{
		{"time_percent", s.TimePercent},
		{"frequency_percent", s.FrequencyPercent},
		{"year_percent", s.YearPercent},
	} {
		if pct.value == nil {
			continue
		}
		if err := checkPercent(prefix+"."+pct.name, *pct.value); err != nil {
			errs = append(errs, err)
		}
	}
	if s.StartYear != nil && (*s.StartYear < 1900 || *s.StartYear > 2200) {
		errs = append(errs, fmt.Errorf("%s.start_year: implausible value %d", prefix, *s.StartYear))
	}

	return errs
}

func checkPercent(name string, v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%s: %v is outside [0, 100]", name, v)
	}
	return nil
}
