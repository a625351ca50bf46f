package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/commune-qc/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func koResult(commune string) *model.AnalysisResult {
	conformity := 72.5
	return &model.AnalysisResult{
		Commune:    commune,
		Status:     model.StatusKO,
		Conformity: &conformity,
		Reasons:    []string{"conformity 72.50 below threshold 90.00"},
	}
}

func TestSQLiteStore_SaveAndGetRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := s.SaveRun(ctx, koResult("Sainte-Anne"))
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "Sainte-Anne", got.Commune)
	assert.Equal(t, model.StatusKO, got.Status)
	require.NotNil(t, got.Result)
	require.NotNil(t, got.Result.Conformity)
	assert.InDelta(t, 72.5, *got.Result.Conformity, 0.001)
	assert.Equal(t, []string{"conformity 72.50 below threshold 90.00"}, got.Result.Reasons)
}

func TestSQLiteStore_GetRunNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.SaveRun(ctx, koResult("Sainte-Anne"))
	require.NoError(t, err)
	_, err = s.SaveRun(ctx, koResult("Sainte-Anne"))
	require.NoError(t, err)
	_, err = s.SaveRun(ctx, &model.AnalysisResult{Commune: "Beaupre", Status: model.StatusOK})
	require.NoError(t, err)

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byCommune, err := s.ListRuns(ctx, RunFilter{Commune: "Sainte-Anne"})
	require.NoError(t, err)
	assert.Len(t, byCommune, 2)

	byStatus, err := s.ListRuns(ctx, RunFilter{Status: model.StatusOK})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "Beaupre", byStatus[0].Commune)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
