package service

import (
	"context"
	"errors"
	"testing"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/normalizer"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/repository"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exportTestEnv struct {
	alloc  AllocationService
	export ExportService
}

func newExportTestEnv(t *testing.T) exportTestEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	years := repository.NewSQLiteBusinessYearRepo(database, nil)
	cat := serviceTestCatalog()
	return exportTestEnv{
		alloc:  NewAllocationService(years, cat),
		export: NewExportService(years, cat, testutil.NewTestUoW(database), nil),
	}
}

func (e exportTestEnv) seedYear(t *testing.T, ctx context.Context) {
	t.Helper()
	_, err := e.alloc.SelectActivity(ctx, testBY, "act-1", 80, []string{"Engineer"})
	require.NoError(t, err)
	for _, sel := range []SubcomponentSelection{
		{Phase: "Design", Step: "Prototype", Subcomponent: "sub-1",
			TimePercent: 60, FrequencyPercent: 50, YearPercent: 100},
		{Phase: "Design", Step: "Prototype", Subcomponent: "sub-2",
			TimePercent: 60, FrequencyPercent: 50, YearPercent: 100},
		{Phase: "Design", Step: "Evaluate", Subcomponent: "sub-3",
			TimePercent: 40, FrequencyPercent: 100, YearPercent: 100},
	} {
		_, err := e.alloc.SelectSubcomponent(ctx, testRef("act-1"), sel)
		require.NoError(t, err)
	}
}

func TestExportService_Rows_IncludesAncestryAndRollups(t *testing.T) {
	env := newExportTestEnv(t)
	ctx := context.Background()
	env.seedYear(t, ctx)

	rs, err := env.export.Rows(ctx, testBY)
	require.NoError(t, err)

	require.Len(t, rs.Configurations, 1)
	cfg := rs.Configurations[0]
	assert.Equal(t, 3, cfg.SubcomponentCount)
	assert.Equal(t, 2, cfg.StepCount)
	assert.True(t, cfg.QRACompleted)

	assert.Len(t, rs.TaxonomyByLevel(domain.LevelCategory), 1)
	assert.Len(t, rs.TaxonomyByLevel(domain.LevelActivity), 1)
	assert.Len(t, rs.TaxonomyByLevel(domain.LevelSubcomponent), 3)
}

func TestExportService_PersistNormalized_RoundTrip(t *testing.T) {
	env := newExportTestEnv(t)
	ctx := context.Background()
	env.seedYear(t, ctx)

	require.NoError(t, env.export.PersistNormalized(ctx, testBY))

	stored, err := env.export.StoredRows(ctx, testBY)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "act-1", stored[0].ActivityID)
	assert.Len(t, stored[0].Subcomponents, 3)

	rs, err := env.export.Rows(ctx, testBY)
	require.NoError(t, err)
	assert.Equal(t, rs.Configurations[0].TotalAppliedPercent, stored[0].TotalAppliedPercent)
}

func TestExportService_PersistNormalized_Idempotent(t *testing.T) {
	env := newExportTestEnv(t)
	ctx := context.Background()
	env.seedYear(t, ctx)

	require.NoError(t, env.export.PersistNormalized(ctx, testBY))
	require.NoError(t, env.export.PersistNormalized(ctx, testBY))

	stored, err := env.export.StoredRows(ctx, testBY)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestExportService_CSVRoundTrip(t *testing.T) {
	env := newExportTestEnv(t)
	ctx := context.Background()
	env.seedYear(t, ctx)

	before, err := env.alloc.Get(ctx, testBY)
	require.NoError(t, err)

	data, err := env.export.ExportCSV(ctx, testBY)
	require.NoError(t, err)
	require.NoError(t, env.export.ImportCSV(ctx, testBY, data))

	after, err := env.alloc.Get(ctx, testBY)
	require.NoError(t, err)
	assert.Equal(t, before.Version+1, after.Version)
	require.Len(t, after.Configurations, 1)

	in := before.Configurations[0]
	out := after.Configurations[0]
	assert.Equal(t, in.ActivityID, out.ActivityID)
	assert.Equal(t, in.PracticePercent, out.PracticePercent)
	assert.Equal(t, in.SelectedRoles, out.SelectedRoles)
	require.Len(t, out.Subcomponents, len(in.Subcomponents))
	for key, sub := range in.Subcomponents {
		got, ok := out.Subcomponents[key]
		require.True(t, ok, "key %s should survive the round trip", key.Encode())
		assert.Equal(t, sub.TimePercent, got.TimePercent)
		assert.Equal(t, sub.FrequencyPercent, got.FrequencyPercent)
		assert.Equal(t, sub.Seq, got.Seq)
	}
}

func TestExportService_FormatsAgree(t *testing.T) {
	env := newExportTestEnv(t)
	ctx := context.Background()
	env.seedYear(t, ctx)

	jsonData, err := env.export.ExportJSON(ctx, testBY)
	require.NoError(t, err)
	sqlData, err := env.export.ExportSQL(ctx, testBY)
	require.NoError(t, err)

	rs, err := normalizer.DecodeJSON(jsonData)
	require.NoError(t, err)
	assert.Len(t, rs.Configurations, 1)
	assert.Contains(t, string(sqlData), "INSERT INTO qra_configurations")
}

// brokenYearStore fails every operation with a fixed non-NotFound error.
type brokenYearStore struct {
	err error
}

func (b *brokenYearStore) Get(context.Context, domain.BusinessYear) (*repository.Snapshot, error) {
	return nil, b.err
}

func (b *brokenYearStore) Save(context.Context, domain.BusinessYear, []*domain.ActivityConfiguration, int64) (int64, error) {
	return 0, b.err
}

func (b *brokenYearStore) Delete(context.Context, domain.BusinessYear) error { return b.err }

func (b *brokenYearStore) ListYears(context.Context, string) ([]int, error) {
	return nil, b.err
}

func TestExportService_ImportCSV_PropagatesStoreErrors(t *testing.T) {
	env := newExportTestEnv(t)
	ctx := context.Background()
	env.seedYear(t, ctx)

	data, err := env.export.ExportCSV(ctx, testBY)
	require.NoError(t, err)

	boom := errors.New("store unavailable")
	broken := NewExportService(&brokenYearStore{err: boom}, serviceTestCatalog(), nil, nil)

	err = broken.ImportCSV(ctx, testBY, data)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestExportService_Rows_UnknownYear(t *testing.T) {
	env := newExportTestEnv(t)

	_, err := env.export.Rows(context.Background(), testBY)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
