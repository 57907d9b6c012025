package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/db"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/domain"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/normalizer"
	"github.com/TaxRx/R-D-Direct-Research-sub001/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfigRows() []normalizer.ConfigurationRow {
	return []normalizer.ConfigurationRow{
		{
			ID:                  "cfg-1",
			BusinessID:          "biz-1",
			Year:                2024,
			ActivityID:          "act-1",
			ActivityName:        "Diagnostic Protocol Development",
			PracticePercent:     80,
			NonRDTime:           10,
			Active:              true,
			SelectedRoles:       []string{"Engineer"},
			LockedSteps:         []string{"Prototype"},
			QRACompleted:        true,
			TotalAppliedPercent: 19.2,
			SubcomponentCount:   2,
			StepCount:           1,
			Subcomponents: []normalizer.SubcomponentRow{
				{
					SubcomponentID: "sub-1", SubcomponentName: "Alpha",
					Phase: "Design", Step: "Prototype",
					TimePercent: 40, FrequencyPercent: 60, YearPercent: 100,
					AppliedPercent: 19.2, StartYear: 2024, Seq: 1,
					SelectedRoles: []string{"Engineer"},
				},
				{
					SubcomponentID: "sub-2", SubcomponentName: "Beta",
					Phase: "Design", Step: "Prototype",
					TimePercent: 40, FrequencyPercent: 40, YearPercent: 100,
					StartYear: 2024, Seq: 2, IsNonRD: true, CatalogMiss: true,
				},
			},
		},
		{
			ID:              "cfg-2",
			BusinessID:      "biz-1",
			Year:            2024,
			ActivityID:      "act-2",
			ActivityName:    "Assay Validation",
			PracticePercent: 50,
			Active:          true,
		},
	}
}

func TestConfigurationRepo_ReplaceAndList_RoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteConfigurationRepo(database)
	ctx := context.Background()
	by := domain.BusinessYear{BusinessID: "biz-1", Year: 2024}

	in := testConfigRows()
	require.NoError(t, repo.ReplaceForYear(ctx, by, in))

	out, err := repo.ListByYear(ctx, by)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "cfg-1", out[0].ID)
	assert.Equal(t, 80.0, out[0].PracticePercent)
	assert.Equal(t, []string{"Engineer"}, out[0].SelectedRoles)
	assert.Equal(t, []string{"Prototype"}, out[0].LockedSteps)
	assert.True(t, out[0].QRACompleted)
	assert.Equal(t, 19.2, out[0].TotalAppliedPercent)
	require.Len(t, out[0].Subcomponents, 2)
	assert.Equal(t, "sub-1", out[0].Subcomponents[0].SubcomponentID)
	assert.Equal(t, "sub-2", out[0].Subcomponents[1].SubcomponentID)
	assert.True(t, out[0].Subcomponents[1].IsNonRD)
	assert.True(t, out[0].Subcomponents[1].CatalogMiss)

	assert.Equal(t, "cfg-2", out[1].ID)
	assert.Empty(t, out[1].Subcomponents)
}

func TestConfigurationRepo_ReplaceForYear_ReplacesPriorRows(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteConfigurationRepo(database)
	ctx := context.Background()
	by := domain.BusinessYear{BusinessID: "biz-1", Year: 2024}

	require.NoError(t, repo.ReplaceForYear(ctx, by, testConfigRows()))
	require.NoError(t, repo.ReplaceForYear(ctx, by, testConfigRows()[:1]))

	out, err := repo.ListByYear(ctx, by)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "cfg-1", out[0].ID)

	// Allocations of the removed configuration must cascade away.
	var orphans int
	require.NoError(t, database.QueryRow(
		`SELECT COUNT(*) FROM qra_subcomponent_allocations
		 WHERE configuration_id NOT IN (SELECT id FROM qra_configurations)`,
	).Scan(&orphans))
	assert.Equal(t, 0, orphans)
}

func TestConfigurationRepo_ReplaceForYear_ScopedToBusinessYear(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteConfigurationRepo(database)
	ctx := context.Background()

	rows2023 := testConfigRows()[:1]
	rows2023[0].ID = "cfg-old"
	rows2023[0].Year = 2023
	require.NoError(t, repo.ReplaceForYear(ctx,
		domain.BusinessYear{BusinessID: "biz-1", Year: 2023}, rows2023))
	require.NoError(t, repo.ReplaceForYear(ctx,
		domain.BusinessYear{BusinessID: "biz-1", Year: 2024}, testConfigRows()))

	old, err := repo.ListByYear(ctx, domain.BusinessYear{BusinessID: "biz-1", Year: 2023})
	require.NoError(t, err)
	require.Len(t, old, 1)
	assert.Equal(t, "cfg-old", old[0].ID)
}

func TestConfigurationRepo_ReplaceForYear_RollsBackAtomically(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	by := domain.BusinessYear{BusinessID: "biz-1", Year: 2024}

	boom := errors.New("disk full")
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 4, Err: boom}
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return NewSQLiteConfigurationRepo(tx).ReplaceForYear(ctx, by, testConfigRows())
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	out, err := NewSQLiteConfigurationRepo(database).ListByYear(ctx, by)
	require.NoError(t, err)
	assert.Empty(t, out)
}
