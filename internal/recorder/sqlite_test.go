package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"LynchScreen/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *model.PortfolioSnapshot {
	return &model.PortfolioSnapshot{
		RunAt: time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC),
		Buckets: []model.PortfolioBucket{
			{
				Name: model.BucketValue, TargetPct: 40, AchievedPct: 20,
				Positions: []model.Position{
					{Ticker: "ACME", Score: 0.8, PEG: 0.4, GrowthPct: 46, PE: 18.5, Confidence: 3, Attempted: 3, WeightPct: 10},
					{Ticker: "BOLT", Score: 0.7, PEG: 0.5, GrowthPct: 40, PE: 20, Confidence: 2, Attempted: 3, Disagreement: true, WeightPct: 10},
				},
			},
			{Name: model.BucketGrowth, TargetPct: 40, AchievedPct: 0},
			{Name: model.BucketBalanced, TargetPct: 20, AchievedPct: 0},
		},
	}
}

func TestSQLiteRecorder_RecordRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screener.db")
	r, err := NewSQLiteRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	delta := model.HistoryDelta{Added: []string{"ACME", "BOLT"}}
	require.NoError(t, r.RecordRun(testSnapshot(), delta))

	var runs, positions, changes int
	require.NoError(t, r.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs))
	require.NoError(t, r.db.QueryRow("SELECT COUNT(*) FROM positions").Scan(&positions))
	require.NoError(t, r.db.QueryRow("SELECT COUNT(*) FROM portfolio_changes").Scan(&changes))
	assert.Equal(t, 1, runs)
	assert.Equal(t, 2, positions)
	assert.Equal(t, 2, changes)

	var bucket string
	var disagreement int
	require.NoError(t, r.db.QueryRow(
		"SELECT bucket, disagreement FROM positions WHERE ticker = ?", "BOLT",
	).Scan(&bucket, &disagreement))
	assert.Equal(t, string(model.BucketValue), bucket)
	assert.Equal(t, 1, disagreement)
}

func TestSQLiteRecorder_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screener.db")

	r, err := NewSQLiteRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, r.RecordRun(testSnapshot(), model.HistoryDelta{}))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	var runs int
	require.NoError(t, r.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs))
	assert.Equal(t, 1, runs)
}

func TestNoopRecorder(t *testing.T) {
	n := NewNoopRecorder()
	assert.NoError(t, n.RecordRun(testSnapshot(), model.HistoryDelta{}))
	assert.NoError(t, n.Close())
}
