package history

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/minebench/internal/results"
	"github.com/dbsmedya/minebench/internal/sweep"
)

func sampleResult(started time.Time, success bool, recs ...results.RunRecord) *sweep.SweepResult {
	table := results.NewTable()
	for _, rec := range recs {
		table.Append(rec)
	}
	completed := started.Add(3 * time.Second)
	return &sweep.SweepResult{
		Dataset:     "data/market.dat",
		OutputDir:   "out",
		StartedAt:   started,
		CompletedAt: completed,
		Duration:    completed.Sub(started),
		Table:       table,
		Success:     success,
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	store, err := Open("")
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewStore_NilDB(t *testing.T) {
	store, err := NewStore(nil)
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestRecordSweep_RoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	started := time.Date(2026, 2, 14, 9, 30, 0, 123456789, time.UTC)
	res := sampleResult(started, true,
		results.RunRecord{Algorithm: "apriori", Support: 5, Status: results.StatusOK, Runtime: 1234 * time.Millisecond, Output: "out/apriori-s5.out"},
		results.RunRecord{Algorithm: "apriori", Support: 10, Status: results.StatusEmpty, Runtime: 87 * time.Microsecond, Output: "out/apriori-s10.out"},
		results.RunRecord{Algorithm: "eclat", Support: 5, Status: results.StatusOK, Runtime: 2 * time.Second, Output: "out/eclat-s5.out"},
	)

	ctx := context.Background()
	id, err := store.RecordSweep(ctx, res)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	sweeps, err := store.ListSweeps(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sweeps, 1)
	assert.Equal(t, id, sweeps[0].ID)
	assert.Equal(t, "data/market.dat", sweeps[0].Dataset)
	assert.Equal(t, "out", sweeps[0].OutputDir)
	assert.True(t, sweeps[0].StartedAt.Equal(started))
	assert.True(t, sweeps[0].CompletedAt.Equal(started.Add(3*time.Second)))
	assert.True(t, sweeps[0].Success)
	assert.Equal(t, 3, sweeps[0].Runs)

	table, err := store.Runs(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, res.Table.Records(), table.Records())
}

func TestRecordSweep_Validation(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	_, err = store.RecordSweep(ctx, nil)
	assert.Error(t, err)

	_, err = store.RecordSweep(ctx, &sweep.SweepResult{})
	assert.Error(t, err)
}

func TestListSweeps_NewestFirstWithLimit(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.RecordSweep(ctx, sampleResult(base.Add(time.Duration(i)*time.Hour), true))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	sweeps, err := store.ListSweeps(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sweeps, 3)
	assert.Equal(t, ids[2], sweeps[0].ID)
	assert.Equal(t, ids[1], sweeps[1].ID)
	assert.Equal(t, ids[0], sweeps[2].ID)

	limited, err := store.ListSweeps(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, ids[2], limited[0].ID)
	assert.Equal(t, ids[1], limited[1].ID)
}

func TestRuns_UnknownSweep(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Runs(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrSweepNotFound)
}

func TestPruneBefore(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	oldID, err := store.RecordSweep(ctx, sampleResult(old, true,
		results.RunRecord{Algorithm: "apriori", Support: 5, Status: results.StatusOK, Runtime: time.Second, Output: "out/apriori-s5.out"},
	))
	require.NoError(t, err)
	recentID, err := store.RecordSweep(ctx, sampleResult(recent, false))
	require.NoError(t, err)

	pruned, err := store.PruneBefore(ctx, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	sweeps, err := store.ListSweeps(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sweeps, 1)
	assert.Equal(t, recentID, sweeps[0].ID)

	// The pruned sweep's runs are gone with it.
	_, err = store.Runs(ctx, oldID)
	assert.ErrorIs(t, err, ErrSweepNotFound)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)

	id, err := store.RecordSweep(context.Background(), sampleResult(time.Now().UTC(), true))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	sweeps, err := reopened.ListSweeps(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, sweeps, 1)
	assert.Equal(t, id, sweeps[0].ID)
}

func TestRecordSweep_BeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	_, err = store.RecordSweep(context.Background(), sampleResult(time.Now(), true))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSweep_InsertErrorRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sweeps").WillReturnError(sql.ErrTxDone)
	mock.ExpectRollback()

	_, err = store.RecordSweep(context.Background(), sampleResult(time.Now(), true))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert sweep")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSweep_RunInsertErrorRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sweeps").WillReturnResult(sqlmock.NewResult(1, 1))
	prep := mock.ExpectPrepare("INSERT INTO runs")
	prep.ExpectExec().WillReturnError(sql.ErrTxDone)
	mock.ExpectRollback()

	res := sampleResult(time.Now(), true,
		results.RunRecord{Algorithm: "apriori", Support: 5, Status: results.StatusOK, Runtime: time.Second, Output: "out/apriori-s5.out"},
	)

	_, err = store.RecordSweep(context.Background(), res)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert run for apriori")
	assert.NoError(t, mock.ExpectationsWereMet())
}
