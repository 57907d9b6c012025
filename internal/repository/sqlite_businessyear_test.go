package repository

import (
	"context"
	"testing"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessYearRepo_SaveAndGet_RoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteBusinessYearRepo(db, nil)
	ctx := context.Background()
	by := domain.BusinessYear{BusinessID: "biz-1", Year: 2024}

	cfg := testutil.NewTestConfiguration("act-1", testutil.WithBusinessYear("biz-1", 2024),
		testutil.WithPracticePercent(80), testutil.WithConfigRoles("Engineer", "Scientist"))
	cfg.UpsertSubcomponent(testutil.NewTestAllocation("Design", "Prototype", "sub-1",
		testutil.WithPercents(40, 60, 100)))
	cfg.UpsertSubcomponent(testutil.NewTestAllocation("Design", "Prototype", "sub-2",
		testutil.WithPercents(40, 40, 50), testutil.WithNonRD()))
	cfg.LockStep("Prototype")

	version, err := repo.Save(ctx, by, []*domain.ActivityConfiguration{cfg}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	snap, err := repo.Get(ctx, by)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Version)
	require.Len(t, snap.Configurations, 1)

	got := snap.Configurations[0]
	assert.Equal(t, "act-1", got.ActivityID)
	assert.Equal(t, 80.0, got.PracticePercent)
	assert.Equal(t, []string{"Engineer", "Scientist"}, got.SelectedRoles)
	assert.Equal(t, []string{"Prototype"}, got.LockedSteps)
	require.Len(t, got.Subcomponents, 2)

	key := domain.AllocationKey{Phase: "Design", Step: "Prototype", SubcomponentID: "sub-2"}
	sub := got.Subcomponents[key]
	require.NotNil(t, sub)
	assert.Equal(t, 40.0, sub.TimePercent)
	assert.Equal(t, 40.0, sub.FrequencyPercent)
	assert.Equal(t, 50.0, sub.YearPercent)
	assert.True(t, sub.IsNonRD)
}

func TestBusinessYearRepo_Get_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteBusinessYearRepo(db, nil)

	_, err := repo.Get(context.Background(), domain.BusinessYear{BusinessID: "nope", Year: 2024})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBusinessYearRepo_Save_VersionIncrements(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteBusinessYearRepo(db, nil)
	ctx := context.Background()
	by := domain.BusinessYear{BusinessID: "biz-1", Year: 2024}

	v1, err := repo.Save(ctx, by, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v1)

	v2, err := repo.Save(ctx, by, nil, v1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2)
}

func TestBusinessYearRepo_Save_ConflictOnStaleVersion(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteBusinessYearRepo(db, nil)
	ctx := context.Background()
	by := domain.BusinessYear{BusinessID: "biz-1", Year: 2024}

	v1, err := repo.Save(ctx, by, nil, 0)
	require.NoError(t, err)

	_, err = repo.Save(ctx, by, nil, v1)
	require.NoError(t, err)

	// Second writer still holds v1.
	_, err = repo.Save(ctx, by, nil, v1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestBusinessYearRepo_Save_ConflictOnDuplicateCreate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteBusinessYearRepo(db, nil)
	ctx := context.Background()
	by := domain.BusinessYear{BusinessID: "biz-1", Year: 2024}

	_, err := repo.Save(ctx, by, nil, 0)
	require.NoError(t, err)

	_, err = repo.Save(ctx, by, nil, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestBusinessYearRepo_Save_NotFoundForMissingRecord(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteBusinessYearRepo(db, nil)

	_, err := repo.Save(context.Background(),
		domain.BusinessYear{BusinessID: "biz-1", Year: 2024}, nil, 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBusinessYearRepo_Get_RecoversMalformedPayload(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteBusinessYearRepo(db, nil)
	ctx := context.Background()
	by := domain.BusinessYear{BusinessID: "biz-1", Year: 2024}

	_, err := db.ExecContext(ctx,
		`INSERT INTO business_years (business_id, year, version, payload, updated_at)
		 VALUES (?, ?, 3, ?, ?)`,
		by.BusinessID, by.Year, `{"schemaVersion":1,"configurations":[{"id":"x"}]}`,
		"2024-06-01T00:00:00Z")
	require.NoError(t, err)

	snap, err := repo.Get(ctx, by)
	require.NoError(t, err)
	assert.Equal(t, int64(3), snap.Version)
	assert.Empty(t, snap.Configurations)
}

func TestBusinessYearRepo_Get_RejectsUnknownSchemaVersion(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteBusinessYearRepo(db, nil)
	ctx := context.Background()
	by := domain.BusinessYear{BusinessID: "biz-1", Year: 2024}

	_, err := db.ExecContext(ctx,
		`INSERT INTO business_years (business_id, year, version, payload, updated_at)
		 VALUES (?, ?, 1, ?, ?)`,
		by.BusinessID, by.Year, `{"schemaVersion":99,"configurations":[]}`,
		"2024-06-01T00:00:00Z")
	require.NoError(t, err)

	snap, err := repo.Get(ctx, by)
	require.NoError(t, err)
	assert.Empty(t, snap.Configurations)
}

func TestBusinessYearRepo_ListYears(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteBusinessYearRepo(db, nil)
	ctx := context.Background()

	for _, year := range []int{2025, 2023, 2024} {
		_, err := repo.Save(ctx, domain.BusinessYear{BusinessID: "biz-1", Year: year}, nil, 0)
		require.NoError(t, err)
	}
	_, err := repo.Save(ctx, domain.BusinessYear{BusinessID: "biz-2", Year: 2024}, nil, 0)
	require.NoError(t, err)

	years, err := repo.ListYears(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2024, 2025}, years)
}

func TestBusinessYearRepo_Delete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteBusinessYearRepo(db, nil)
	ctx := context.Background()
	by := domain.BusinessYear{BusinessID: "biz-1", Year: 2024}

	_, err := repo.Save(ctx, by, nil, 0)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, by))

	_, err = repo.Get(ctx, by)
	assert.ErrorIs(t, err, ErrNotFound)
}
