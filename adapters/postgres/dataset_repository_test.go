package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datagent/adapters/postgres/migrations"
	"datagent/domain/core"
	"datagent/domain/datareadiness/profiling"
	"datagent/domain/dataset"
)

// openTestDB connects to DATAGENT_TEST_DATABASE_URL and migrates it, skipping otherwise
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("DATAGENT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("DATAGENT_TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.NewMigrator(db, nil).Up(context.Background()))
	return db
}

func newDataset() *dataset.Dataset {
	return &dataset.Dataset{
		ID:          core.NewDatasetID(),
		Filename:    "sales.xlsx",
		UploadTime:  core.NewTimestamp(time.Now().UTC().Truncate(time.Millisecond)),
		FilePath:    "uploads/sales.xlsx",
		RowCount:    4,
		ColumnCount: 2,
		DataQuality: profiling.QualityReport{
			Completeness:          100,
			RowCount:              4,
			TypeConsistency:       map[string]profiling.Consistency{"amount": profiling.Consistent},
			MissingValuesByColumn: map[string]int{"amount": 0, "region": 0},
		},
		ColumnInfo: dataset.ColumnInfo{
			Names: []string{"region", "amount"},
			Types: map[string]string{"region": "text", "amount": "numeric"},
		},
	}
}

func TestDatasetRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewDatasetRepository(db)
	ctx := context.Background()

	ds := newDataset()
	require.NoError(t, repo.Create(ctx, ds))

	got, err := repo.GetByID(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.Filename, got.Filename)
	assert.Equal(t, ds.ColumnInfo, got.ColumnInfo)
	assert.Equal(t, ds.DataQuality, got.DataQuality)
	assert.True(t, ds.UploadTime.Time().Equal(got.UploadTime.Time()))

	_, err = repo.GetByID(ctx, core.NewDatasetID())
	assert.True(t, errors.Is(err, core.ErrDatasetNotFound))
}

func TestDatasetRepository_QueryLog(t *testing.T) {
	db := openTestDB(t)
	repo := NewDatasetRepository(db)
	ctx := context.Background()

	ds := newDataset()
	require.NoError(t, repo.Create(ctx, ds))

	first := dataset.NewQueryRecord(ds.ID, "total sales", 0.5, json.RawMessage(`{"analysis":"ok"}`), nil)
	second := dataset.NewQueryRecord(ds.ID, "broken", 0.1, nil, errors.New("LLM timeout: deadline"))
	second.Timestamp = core.NewTimestamp(first.Timestamp.Time().Add(time.Second))
	require.NoError(t, repo.LogQuery(ctx, first))
	require.NoError(t, repo.LogQuery(ctx, second))

	history, err := repo.History(ctx, ds.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, dataset.QueryFailed, history[0].Success)
	assert.Nil(t, history[0].Result)
	assert.JSONEq(t, `{"analysis":"ok"}`, string(history[1].Result))

	all, err := repo.ListQueries(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, all[0].ID)

	recent, err := repo.RecentSuccessful(ctx, 100)
	require.NoError(t, err)
	for _, q := range recent {
		assert.True(t, q.Succeeded())
	}

	orphan := dataset.NewQueryRecord(core.NewDatasetID(), "x", 0, nil, nil)
	assert.True(t, errors.Is(repo.LogQuery(ctx, orphan), core.ErrDatasetNotFound))
}
