package importer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/catalog"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importTestCatalog() *catalog.Memory {
	return catalog.NewMemory([]*domain.TaxonomyNode{
		{ID: "cat-1", Name: "Healthcare", Level: domain.LevelCategory},
		{ID: "area-1", Name: "Dentistry", Level: domain.LevelArea, ParentID: "cat-1"},
		{ID: "focus-1", Name: "Orthodontics", Level: domain.LevelFocus, ParentID: "area-1"},
		{ID: "act-1", Name: "Clear Aligner Development", Level: domain.LevelActivity, ParentID: "focus-1"},
		{ID: "phase-1", Name: "Design", Level: domain.LevelPhase, ParentID: "act-1"},
		{ID: "step-1", Name: "Prototype", Level: domain.LevelStep, ParentID: "phase-1"},
		{ID: "sub-1", Name: "Material Selection", Level: domain.LevelSubcomponent, ParentID: "step-1"},
		{ID: "sub-2", Name: "Force Modeling", Level: domain.LevelSubcomponent, ParentID: "step-1"},
	})
}

func TestConvert_ResolvesSubcomponentByID(t *testing.T) {
	schema := validSchema()
	schema.Activities[0].Subcomponents[0].Subcomponent = "sub-1"

	cfgs := Convert(schema, importTestCatalog())
	require.Len(t, cfgs, 1)

	cfg := cfgs[0]
	assert.Equal(t, "biz-1", cfg.BusinessID)
	assert.Equal(t, 2024, cfg.Year)
	assert.Equal(t, "Clear Aligner Development", cfg.ActivityName)
	assert.True(t, cfg.Active)

	subs := cfg.OrderedSubcomponents()
	require.Len(t, subs, 1)
	assert.Equal(t, "sub-1", subs[0].SubcomponentID)
	assert.Equal(t, "Material Selection", subs[0].SubcomponentName)
	assert.False(t, subs[0].CatalogMiss)
	assert.Equal(t, 40.0, subs[0].TimePercent)
	assert.Equal(t, 100.0, subs[0].FrequencyPercent)
	assert.Equal(t, 100.0, subs[0].YearPercent)
	assert.Equal(t, 2024, subs[0].StartYear)
}

func TestConvert_ResolvesSubcomponentByName(t *testing.T) {
	schema := validSchema()
	schema.Activities[0].Subcomponents[0].Subcomponent = "force model"

	cfgs := Convert(schema, importTestCatalog())
	subs := cfgs[0].OrderedSubcomponents()
	require.Len(t, subs, 1)
	assert.Equal(t, "sub-2", subs[0].SubcomponentID)
	assert.Equal(t, "Force Modeling", subs[0].SubcomponentName)
	assert.False(t, subs[0].CatalogMiss)
}

func TestConvert_MissKeptWithAnnotation(t *testing.T) {
	schema := validSchema()
	schema.Activities[0].Subcomponents[0].Subcomponent = "Quantum Flux Capacitor"

	cfgs := Convert(schema, importTestCatalog())
	subs := cfgs[0].OrderedSubcomponents()
	require.Len(t, subs, 1)
	assert.True(t, subs[0].CatalogMiss)
	assert.Equal(t, "Quantum Flux Capacitor", subs[0].SubcomponentID)
}

func TestConvert_AppliesExplicitFields(t *testing.T) {
	inactive := false
	schema := validSchema()
	schema.Activities[0].ActivityName = "Custom Name"
	schema.Activities[0].Active = &inactive
	schema.Activities[0].NonRDTime = floatPtr(15)
	schema.Activities[0].SelectedRoles = []string{"Scientist", "Engineer", "Engineer"}
	schema.Activities[0].LockedSteps = []string{"Prototype"}
	schema.Activities[0].Subcomponents[0].IsNonRD = true
	schema.Activities[0].Subcomponents[0].StartYear = intPtr(2022)

	cfgs := Convert(schema, importTestCatalog())
	cfg := cfgs[0]
	assert.Equal(t, "Custom Name", cfg.ActivityName)
	assert.False(t, cfg.Active)
	assert.Equal(t, 15.0, cfg.NonRDTime)
	assert.Equal(t, []string{"Engineer", "Scientist"}, cfg.SelectedRoles)
	assert.Equal(t, []string{"Prototype"}, cfg.LockedSteps)

	subs := cfg.OrderedSubcomponents()
	assert.True(t, subs[0].IsNonRD)
	assert.Equal(t, 2022, subs[0].StartYear)
}

func TestConvert_SeqFollowsFileOrder(t *testing.T) {
	schema := validSchema()
	schema.Activities[0].Subcomponents = []SubcomponentImport{
		{Phase: "Design", Step: "Prototype", Subcomponent: "sub-2"},
		{Phase: "Design", Step: "Prototype", Subcomponent: "sub-1"},
	}

	cfgs := Convert(schema, importTestCatalog())
	subs := cfgs[0].OrderedSubcomponents()
	require.Len(t, subs, 2)
	assert.Equal(t, "sub-2", subs[0].SubcomponentID)
	assert.Equal(t, "sub-1", subs[1].SubcomponentID)
}

func TestConvert_NilCatalogFlagsEverything(t *testing.T) {
	cfgs := Convert(validSchema(), nil)
	subs := cfgs[0].OrderedSubcomponents()
	require.Len(t, subs, 1)
	assert.True(t, subs[0].CatalogMiss)
}

func TestLoadSelectionSchema(t *testing.T) {
	schema := validSchema()
	data, err := json.Marshal(schema)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "selections.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, err := LoadSelectionSchema(path)
	require.NoError(t, err)
	assert.Equal(t, schema.BusinessID, loaded.BusinessID)
	require.Len(t, loaded.Activities, 1)
	assert.Equal(t, "act-1", loaded.Activities[0].ActivityID)
}

func TestLoadSelectionSchema_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selections.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadSelectionSchema(path)
	require.Error(t, err)
}
