package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sts-risk-cli/internal/config"
	"github.com/sells-group/sts-risk-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Migrate(context.Background()))
}

// --- Runs ---

func TestSQLite_RunLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "request", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	require.NoError(t, st.FinishRun(ctx, run.ID, 2, 1))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "request", got.Adapter)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.Succeeded)
	assert.Equal(t, 1, got.Failed)
}

func TestSQLite_FinishRun_AllFailed(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "stream", 2)
	require.NoError(t, err)
	require.NoError(t, st.FinishRun(ctx, run.ID, 0, 2))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
}

func TestSQLite_FinishRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	err := st.FinishRun(context.Background(), "missing", 1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a, err := st.CreateRun(ctx, "request", 1)
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "request", 1)
	require.NoError(t, err)
	require.NoError(t, st.FinishRun(ctx, a.ID, 1, 0))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	done, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, a.ID, done[0].ID)

	page, err := st.ListRuns(ctx, RunFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

// --- Results ---

func TestSQLite_SaveAndListResults(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "request", 2)
	require.NoError(t, err)

	require.NoError(t, st.SaveResult(ctx, model.Result{
		RunID:     run.ID,
		PatientID: "P1",
		Outcome:   model.Outcome{model.PredMort: 0.0201, model.PredStroke: 0.011},
		Method:    "direct",
	}))
	require.NoError(t, st.SaveResult(ctx, model.Result{
		RunID:     run.ID,
		PatientID: "P2",
		Error:     "sts: request transport: status 502",
	}))

	results, err := st.ListResults(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "P1", results[0].PatientID)
	assert.Equal(t, 0.0201, results[0].Outcome[model.PredMort])
	assert.Equal(t, "direct", results[0].Method)
	assert.True(t, results[0].OK())
	assert.False(t, results[0].CreatedAt.IsZero())

	assert.Equal(t, "P2", results[1].PatientID)
	assert.Nil(t, results[1].Outcome)
	assert.False(t, results[1].OK())
}

func TestSQLite_LatestResults(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first, err := st.CreateRun(ctx, "request", 2)
	require.NoError(t, err)
	second, err := st.CreateRun(ctx, "request", 2)
	require.NoError(t, err)

	save := func(runID, id string, mort float64, errMsg string) {
		r := model.Result{RunID: runID, PatientID: id, Method: "direct", Error: errMsg}
		if errMsg == "" {
			r.Outcome = model.Outcome{model.PredMort: mort}
		}
		require.NoError(t, st.SaveResult(ctx, r))
	}
	save(first.ID, "P1", 0.01, "")
	save(second.ID, "P1", 0.02, "")
	save(first.ID, "P2", 0, "boom")
	save(first.ID, "P3", 0.03, "")

	latest, err := st.LatestResults(ctx, []string{"P1", "P2", "P9"})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 0.02, latest["P1"].Outcome[model.PredMort])
	assert.Equal(t, second.ID, latest["P1"].RunID)
}

func TestSQLite_LatestResults_ManyIDs(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "request", 1)
	require.NoError(t, err)
	require.NoError(t, st.SaveResult(ctx, model.Result{
		RunID: run.ID, PatientID: "needle", Outcome: model.Outcome{model.PredMM: 0.1},
	}))

	ids := make([]string, 0, 1200)
	for i := range 1199 {
		ids = append(ids, time.Duration(i).String())
	}
	ids = append(ids, "needle")

	latest, err := st.LatestResults(ctx, ids)
	require.NoError(t, err)
	assert.Contains(t, latest, "needle")

	empty, err := st.LatestResults(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOpen_SQLite(t *testing.T) {
	s, err := Open(context.Background(), config.StoreConfig{
		Driver:      config.DriverSQLite,
		DatabaseURL: filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck

	_, err = s.CreateRun(context.Background(), "request", 0)
	assert.NoError(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
