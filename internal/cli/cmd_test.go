package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/catalog"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/db"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/repository"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/service"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cliTestCatalog() *catalog.Memory {
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

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	cat := cliTestCatalog()

	years := repository.NewSQLiteBusinessYearRepo(database, nil)
	uow := db.NewSQLiteUnitOfWork(database)

	return &App{
		Allocations: service.NewAllocationService(years, cat),
		Export:      service.NewExportService(years, cat, uow, nil),
		Import:      service.NewImportService(years, cat),
		Stats:       service.NewStatsService(years, cat, nil),
		// IsInteractive left nil: edit falls back to flag-only mode.
	}
}

// executeCmd runs a cobra command and captures cobra's own output.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func yearArgs(args ...string) []string {
	return append(args, "--business", "biz-1", "--year", "2024")
}

func TestRootCmd_NoArgs_ShowsHelp(t *testing.T) {
	app := testApp(t)

	output, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, output, "qra")
}

func TestActivityCmd_RequiresBusinessYearFlags(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "activity", "list")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "business")
}

func TestActivityCmd_SelectListShow(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, yearArgs("activity", "select", "act-1", "--practice", "80", "--roles", "Engineer,Researcher")...)
	require.NoError(t, err)

	_, err = executeCmd(t, app, yearArgs("activity", "list")...)
	require.NoError(t, err)

	_, err = executeCmd(t, app, yearArgs("activity", "show", "act-1")...)
	require.NoError(t, err)

	snap, err := app.Allocations.Get(context.Background(), domain.BusinessYear{BusinessID: "biz-1", Year: 2024})
	require.NoError(t, err)
	require.Len(t, snap.Configurations, 1)
	assert.Equal(t, 80.0, snap.Configurations[0].PracticePercent)
	assert.Equal(t, []string{"Engineer", "Researcher"}, snap.Configurations[0].SelectedRoles)
}

func TestActivityCmd_ListEmptyYear(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, yearArgs("activity", "list")...)
	require.NoError(t, err)
}

func TestActivityCmd_ShowUnknownActivity(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, yearArgs("activity", "show", "act-9")...)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not selected")
}

func TestActivityCmd_EditWithFlags(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, yearArgs("activity", "select", "act-1")...)
	require.NoError(t, err)

	_, err = executeCmd(t, app, yearArgs("activity", "edit", "act-1", "--practice", "65", "--nonrd", "10")...)
	require.NoError(t, err)

	snap, err := app.Allocations.Get(context.Background(), domain.BusinessYear{BusinessID: "biz-1", Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, 65.0, snap.Configurations[0].PracticePercent)
	assert.Equal(t, 10.0, snap.Configurations[0].NonRDTime)
}

func TestActivityCmd_EditWithoutFlagsOrTerminal(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, yearArgs("activity", "select", "act-1")...)
	require.NoError(t, err)

	_, err = executeCmd(t, app, yearArgs("activity", "edit", "act-1")...)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no fields to edit")
}

func TestSubCmd_SelectAndDeselect(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, yearArgs("activity", "select", "act-1")...)
	require.NoError(t, err)

	_, err = executeCmd(t, app, yearArgs("sub", "select", "material",
		"--activity", "act-1", "--phase", "Design", "--step", "Prototype", "--time", "60")...)
	require.NoError(t, err)

	snap, err := app.Allocations.Get(context.Background(), domain.BusinessYear{BusinessID: "biz-1", Year: 2024})
	require.NoError(t, err)
	subs := snap.Configurations[0].OrderedSubcomponents()
	require.Len(t, subs, 1)
	assert.Equal(t, "sub-1", subs[0].SubcomponentID)
	assert.Equal(t, 60.0, subs[0].TimePercent)

	_, err = executeCmd(t, app, yearArgs("sub", "deselect", "sub-1",
		"--activity", "act-1", "--phase", "Design", "--step", "Prototype")...)
	require.NoError(t, err)

	snap, err = app.Allocations.Get(context.Background(), domain.BusinessYear{BusinessID: "biz-1", Year: 2024})
	require.NoError(t, err)
	assert.Empty(t, snap.Configurations[0].OrderedSubcomponents())
}

func TestDistributeCmd_Frequency(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, yearArgs("activity", "select", "act-1")...)
	require.NoError(t, err)
	_, err = executeCmd(t, app, yearArgs("sub", "select", "sub-1",
		"--activity", "act-1", "--phase", "Design", "--step", "Prototype", "--frequency", "70")...)
	require.NoError(t, err)
	_, err = executeCmd(t, app, yearArgs("sub", "select", "sub-2",
		"--activity", "act-1", "--phase", "Design", "--step", "Prototype", "--frequency", "70")...)
	require.NoError(t, err)

	_, err = executeCmd(t, app, yearArgs("distribute", "frequency",
		"--activity", "act-1", "--phase", "Design", "--step", "Prototype")...)
	require.NoError(t, err)

	snap, err := app.Allocations.Get(context.Background(), domain.BusinessYear{BusinessID: "biz-1", Year: 2024})
	require.NoError(t, err)
	for _, sub := range snap.Configurations[0].OrderedSubcomponents() {
		assert.InDelta(t, 50.0, sub.FrequencyPercent, 0.01)
	}
}

func TestValidateCmd_RunsOnEmptyYear(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, yearArgs("validate")...)
	require.NoError(t, err)
}

func TestExportCmd_JSONToFile(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, yearArgs("activity", "select", "act-1")...)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "export.json")
	_, err = executeCmd(t, app, yearArgs("export", "json", "--out", out)...)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "act-1")
}

func TestExportCmd_PersistDB(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, yearArgs("activity", "select", "act-1")...)
	require.NoError(t, err)

	_, err = executeCmd(t, app, yearArgs("export", "db")...)
	require.NoError(t, err)

	rows, err := app.Export.StoredRows(context.Background(), domain.BusinessYear{BusinessID: "biz-1", Year: 2024})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "act-1", rows[0].ActivityID)
}

func TestImportCmd_MissingFile(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "import", "selections", filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestStatsCmd_WithData(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, yearArgs("activity", "select", "act-1", "--practice", "75")...)
	require.NoError(t, err)

	_, err = executeCmd(t, app, yearArgs("stats")...)
	require.NoError(t, err)
}

func TestParseRoles(t *testing.T) {
	assert.Nil(t, parseRoles(""))
	assert.Equal(t, []string{"Engineer"}, parseRoles("Engineer"))
	assert.Equal(t, []string{"Engineer", "Researcher"}, parseRoles(" Engineer , Researcher ,"))
}
