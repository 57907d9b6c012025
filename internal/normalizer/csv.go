package normalizer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
)

// csvHeader is the tagged long format: one row per scalar field per
// entity, suitable for generic ingestion.
var csvHeader = []string{"Table", "ID", "Field", "Value", "DataType", "ParentID", "ParentType"}

const (
	tableConfiguration = "qra_configuration"
	tableSubcomponent  = "qra_subcomponent"

	typeString  = "string"
	typeNumber  = "number"
	typeBoolean = "boolean"
)

// roleSeparator joins role sets into a single CSV value.
const roleSeparator = ";"

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type fieldValue struct {
	field    string
	value    string
	dataType string
}

func strField(field, value string) fieldValue {
	return fieldValue{field: field, value: value, dataType: typeString}
}

func numField(field string, value float64) fieldValue {
	return fieldValue{field: field, value: formatFloat(value), dataType: typeNumber}
}

func intField(field string, value int) fieldValue {
	return fieldValue{field: field, value: strconv.Itoa(value), dataType: typeNumber}
}

func boolField(field string, value bool) fieldValue {
	return fieldValue{field: field, value: strconv.FormatBool(value), dataType: typeBoolean}
}

// EncodeCSV serializes the row set as tagged long-format CSV.
func EncodeCSV(rs *RowSet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}

	write := func(table, id string, fv fieldValue, parentID, parentType string) error {
		return w.Write([]string{table, id, fv.field, fv.value, fv.dataType, parentID, parentType})
	}

	for _, row := range rs.Taxonomy {
		parentType := string(row.Level.ParentLevel())
		if row.ParentID == "" {
			parentType = ""
		}
		fields := []fieldValue{strField("name", row.Name)}
		for _, fv := range []fieldValue{
			strField("goal", row.Goal),
			strField("hypothesis", row.Hypothesis),
			strField("uncertainties", row.Uncertainties),
			strField("alternatives", row.Alternatives),
			strField("development_process", row.DevelopmentProcess),
			strField("hint", row.Hint),
		} {
			if fv.value != "" {
				fields = append(fields, fv)
			}
		}
		for _, fv := range fields {
			if err := write(string(row.Level), row.ID, fv, row.ParentID, parentType); err != nil {
				return nil, fmt.Errorf("writing taxonomy row: %w", err)
			}
		}
	}

	for _, cfg := range rs.Configurations {
		cfgFields := []fieldValue{
			strField("business_id", cfg.BusinessID),
			intField("year", cfg.Year),
			strField("activity_id", cfg.ActivityID),
			strField("activity_name", cfg.ActivityName),
			numField("practice_percent", cfg.PracticePercent),
			numField("non_rd_time", cfg.NonRDTime),
			boolField("active", cfg.Active),
			strField("selected_roles", strings.Join(cfg.SelectedRoles, roleSeparator)),
			strField("locked_steps", strings.Join(cfg.LockedSteps, roleSeparator)),
			boolField("qra_completed", cfg.QRACompleted),
			numField("total_applied_percent", cfg.TotalAppliedPercent),
			intField("subcomponent_count", cfg.SubcomponentCount),
			intField("step_count", cfg.StepCount),
		}
		for _, fv := range cfgFields {
			if err := write(tableConfiguration, cfg.ID, fv, "", ""); err != nil {
				return nil, fmt.Errorf("writing configuration row: %w", err)
			}
		}

		for _, sub := range cfg.Subcomponents {
			key := domain.AllocationKey{Phase: sub.Phase, Step: sub.Step, SubcomponentID: sub.SubcomponentID}
			id := cfg.ID + ":" + key.Encode()
			subFields := []fieldValue{
				strField("subcomponent_id", sub.SubcomponentID),
				strField("subcomponent_name", sub.SubcomponentName),
				strField("phase", sub.Phase),
				strField("step", sub.Step),
				numField("time_percent", sub.TimePercent),
				numField("frequency_percent", sub.FrequencyPercent),
				numField("year_percent", sub.YearPercent),
				intField("start_year", sub.StartYear),
				strField("selected_roles", strings.Join(sub.SelectedRoles, roleSeparator)),
				boolField("is_non_rd", sub.IsNonRD),
				boolField("catalog_miss", sub.CatalogMiss),
				intField("seq", sub.Seq),
				numField("applied_percent", sub.AppliedPercent),
			}
			for _, fv := range subFields {
				if err := write(tableSubcomponent, id, fv, cfg.ID, tableConfiguration); err != nil {
					return nil, fmt.Errorf("writing subcomponent row: %w", err)
				}
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// entityRecord accumulates one entity's fields during CSV decoding.
type entityRecord struct {
	table    string
	id       string
	parentID string
	fields   map[string]string
}

// DecodeCSV rebuilds a row set from tagged long-format CSV. Unknown
// tables and fields are skipped; decoding is tolerant by design so
// partially hand-edited exports still reconcile.
func DecodeCSV(data []byte) (*RowSet, error) {
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return &RowSet{}, nil
	}

	var entities []*entityRecord
	index := make(map[string]*entityRecord)

	for i, rec := range records {
		if i == 0 && rec[0] == csvHeader[0] {
			continue // header
		}
		if len(rec) < 7 {
			return nil, fmt.Errorf("csv row %d: expected 7 columns, got %d", i+1, len(rec))
		}
		table, id, field, value, parentID := rec[0], rec[1], rec[2], rec[3], rec[5]
		key := table + "\x00" + id
		ent, ok := index[key]
		if !ok {
			ent = &entityRecord{table: table, id: id, parentID: parentID, fields: make(map[string]string)}
			index[key] = ent
			entities = append(entities, ent)
		}
		ent.fields[field] = value
	}

	rs := &RowSet{}
	configs := make(map[string]*ConfigurationRow)
	var configOrder []*ConfigurationRow

	for _, ent := range entities {
		switch ent.table {
		case tableConfiguration:
			row := decodeConfiguration(ent)
			configs[ent.id] = &row
			configOrder = append(configOrder, &row)
		case tableSubcomponent:
			// Attached in a second pass below; parents may appear later
			// in hand-reordered files.
		default:
			if level := domain.NodeLevel(ent.table); level.Depth() >= 0 {
				rs.Taxonomy = append(rs.Taxonomy, decodeTaxonomy(ent, level))
			}
		}
	}

	for _, ent := range entities {
		if ent.table != tableSubcomponent {
			continue
		}
		parent, ok := configs[ent.parentID]
		if !ok {
			continue // orphaned subcomponent row, skip
		}
		parent.Subcomponents = append(parent.Subcomponents, decodeSubcomponent(ent))
	}

	for _, cfg := range configOrder {
		subs := cfg.Subcomponents
		sort.SliceStable(subs, func(a, b int) bool { return subs[a].Seq < subs[b].Seq })
		rs.Configurations = append(rs.Configurations, *cfg)
	}

	return rs, nil
}

func splitRoles(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, roleSeparator)
}

func parseFloatField(fields map[string]string, name string) float64 {
	v, err := strconv.ParseFloat(fields[name], 64)
	if err != nil {
		return 0
	}
	return v
}

func parseIntField(fields map[string]string, name string) int {
	v, err := strconv.Atoi(fields[name])
	if err != nil {
		return 0
	}
	return v
}

func decodeTaxonomy(ent *entityRecord, level domain.NodeLevel) TaxonomyRow {
	return TaxonomyRow{
		ID:                 ent.id,
		Name:               ent.fields["name"],
		Level:              level,
		ParentID:           ent.parentID,
		Goal:               ent.fields["goal"],
		Hypothesis:         ent.fields["hypothesis"],
		Uncertainties:      ent.fields["uncertainties"],
		Alternatives:       ent.fields["alternatives"],
		DevelopmentProcess: ent.fields["development_process"],
		Hint:               ent.fields["hint"],
	}
}

func decodeConfiguration(ent *entityRecord) ConfigurationRow {
	return ConfigurationRow{
		ID:                  ent.id,
		BusinessID:          ent.fields["business_id"],
		Year:                parseIntField(ent.fields, "year"),
		ActivityID:          ent.fields["activity_id"],
		ActivityName:        ent.fields["activity_name"],
		PracticePercent:     parseFloatField(ent.fields, "practice_percent"),
		NonRDTime:           parseFloatField(ent.fields, "non_rd_time"),
		Active:              ent.fields["active"] == "true",
		SelectedRoles:       splitRoles(ent.fields["selected_roles"]),
		LockedSteps:         splitRoles(ent.fields["locked_steps"]),
		QRACompleted:        ent.fields["qra_completed"] == "true",
		TotalAppliedPercent: parseFloatField(ent.fields, "total_applied_percent"),
		SubcomponentCount:   parseIntField(ent.fields, "subcomponent_count"),
		StepCount:           parseIntField(ent.fields, "step_count"),
	}
}

func decodeSubcomponent(ent *entityRecord) SubcomponentRow {
	return SubcomponentRow{
		SubcomponentID:   ent.fields["subcomponent_id"],
		SubcomponentName: ent.fields["subcomponent_name"],
		Phase:            ent.fields["phase"],
		Step:             ent.fields["step"],
		TimePercent:      parseFloatField(ent.fields, "time_percent"),
		FrequencyPercent: parseFloatField(ent.fields, "frequency_percent"),
		YearPercent:      parseFloatField(ent.fields, "year_percent"),
		StartYear:        parseIntField(ent.fields, "start_year"),
		SelectedRoles:    splitRoles(ent.fields["selected_roles"]),
		IsNonRD:          ent.fields["is_non_rd"] == "true",
		CatalogMiss:      ent.fields["catalog_miss"] == "true",
		Seq:              parseIntField(ent.fields, "seq"),
		AppliedPercent:   parseFloatField(ent.fields, "applied_percent"),
	}
}
