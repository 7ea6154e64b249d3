package notifier

import (
	"strings"
	"testing"
	"time"

	"LynchScreen/internal/model"

	"github.com/stretchr/testify/assert"
)

func sampleSnapshot() *model.PortfolioSnapshot {
	return &model.PortfolioSnapshot{
		RunAt: time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC),
		Buckets: []model.PortfolioBucket{
			{
				Name:        model.BucketValue,
				TargetPct:   40,
				AchievedPct: 10,
				Positions: []model.Position{
					{
						Ticker: "ACME", Name: "Acme Corp", Sector: "Technology",
						Score: 0.812, PEG: 0.40, GrowthPct: 46, PE: 18.5,
						Confidence: 3, Attempted: 3, WeightPct: 10,
					},
				},
			},
			{Name: model.BucketGrowth, TargetPct: 40, AchievedPct: 0},
			{Name: model.BucketBalanced, TargetPct: 20, AchievedPct: 0},
		},
		Schedules: []model.EntrySchedule{
			{Ticker: "ACME", Stages: []model.EntryStage{
				{Week: 1, Percent: 3}, {Week: 2, Percent: 3}, {Week: 3, Percent: 4},
			}},
		},
	}
}

func TestFormatRunReport(t *testing.T) {
	report := FormatRunReport(sampleSnapshot(), model.HistoryDelta{
		Added: []string{"ACME"},
	})

	assert.Contains(t, report, "2026-08-24")
	assert.Contains(t, report, "*Best Value* (target 40%, achieved 10%)")
	assert.Contains(t, report, "*ACME*")
	assert.Contains(t, report, "https://finance.yahoo.com/quote/ACME")
	assert.Contains(t, report, "PEG 0.40 | growth 46.0% | P/E 18.5 | score 0.812 | sources 3/3")
	assert.Contains(t, report, "entry: wk1 3% → wk2 3% → wk3 4%")
	assert.Contains(t, report, "30% of target unfilled")
	assert.Contains(t, report, "new: ACME")
	assert.Contains(t, report, "dropped: none")
}

func TestFormatRunReport_EmptyBucket(t *testing.T) {
	snap := sampleSnapshot()
	report := FormatRunReport(snap, model.HistoryDelta{})

	assert.Contains(t, report, "no qualifying candidates")
}

func TestFormatRunReport_DisagreementWarning(t *testing.T) {
	snap := sampleSnapshot()
	snap.Buckets[0].Positions[0].Disagreement = true

	report := FormatRunReport(snap, model.HistoryDelta{})
	assert.Contains(t, report, "sources disagreed")
}

func TestFormatTickers(t *testing.T) {
	assert.Equal(t, "none", formatTickers(nil))
	assert.Equal(t, "AAPL, MSFT", formatTickers([]string{"AAPL", "MSFT"}))
}

func TestFormatRunReport_NoDisagreementLineWhenClean(t *testing.T) {
	report := FormatRunReport(sampleSnapshot(), model.HistoryDelta{})
	assert.False(t, strings.Contains(report, "disagreed"))
}
