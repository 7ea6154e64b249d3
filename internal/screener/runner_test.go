package screener

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"LynchScreen/internal/allocator"
	"LynchScreen/internal/collector"
	"LynchScreen/internal/history"
	"LynchScreen/internal/model"
	"LynchScreen/internal/recorder"
	"LynchScreen/internal/scorer"
	"LynchScreen/internal/source"
	"LynchScreen/internal/validator"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	messages []string
	err      error
}

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, text)
	return nil
}

type staticNarrator struct {
	summary string
	err     error
}

func (s *staticNarrator) Summarize(context.Context, *model.PortfolioSnapshot, model.HistoryDelta) (string, error) {
	return s.summary, s.err
}

type failingUniverse struct{}

func (failingUniverse) Tickers(context.Context) ([]string, error) {
	return nil, errors.New("screener endpoint down")
}

func testDeps(t *testing.T, adapters []source.Adapter, tickers []string) Deps {
	t.Helper()
	log := zerolog.Nop()
	return Deps{
		Universe:  source.StaticUniverse(tickers),
		Collector: collector.New(adapters, 4, log),
		Validator: validator.New(
			validator.Tolerances{Growth: 0.25, PE: 0.15},
			validator.Limits{MaxGrowthPct: 500},
			len(adapters), log),
		Scorer:      scorer.New(scorer.DefaultWeights()),
		Allocator:   allocator.New(allocator.DefaultConfig(), log),
		Stages:      allocator.DefaultStages(),
		HistoryFile: filepath.Join(t.TempDir(), "history.json"),
		Recorder:    recorder.NewNoopRecorder(),
	}
}

func twoSources() []source.Adapter {
	snaps := map[string]model.RawSnapshot{
		"VALU": {TrailingPE: 18.5, GrowthPct: 46, Name: "Value Corp", Country: "USA"},
		"GROW": {TrailingPE: 80, GrowthPct: 80, Name: "Growth Inc", Country: "USA"},
		"JUNK": {TrailingPE: -3, GrowthPct: 5},
	}
	return []source.Adapter{
		&source.MockAdapter{Source: "alpha", Snapshots: snaps},
		&source.MockAdapter{Source: "beta", Snapshots: snaps},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	deps := testDeps(t, twoSources(), []string{"VALU", "GROW", "JUNK", "GONE"})
	notif := &captureNotifier{}
	deps.Notifier = notif

	runner := New(deps, zerolog.Nop())
	snap, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"GROW", "VALU"}, snap.Tickers())
	require.Len(t, snap.Schedules, 2)
	assert.InDelta(t, 10, snap.Schedules[0].TotalPercent(), 1e-9)

	require.Len(t, notif.messages, 1)
	assert.Contains(t, notif.messages[0], "VALU")
	assert.Contains(t, notif.messages[0], "new: GROW, VALU")

	// The run persisted its snapshot for the next diff.
	prev, err := history.Load(deps.HistoryFile)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, snap.Tickers(), prev.Tickers())
}

func TestRun_SecondRunDiffsAgainstHistory(t *testing.T) {
	deps := testDeps(t, twoSources(), []string{"VALU", "GROW"})
	notif := &captureNotifier{}
	deps.Notifier = notif
	runner := New(deps, zerolog.Nop())

	_, err := runner.Run(context.Background())
	require.NoError(t, err)
	_, err = runner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, notif.messages, 2)
	assert.Contains(t, notif.messages[1], "retained: GROW, VALU")
	assert.Contains(t, notif.messages[1], "new: none")
}

func TestRun_UniverseFailureIsFatal(t *testing.T) {
	deps := testDeps(t, twoSources(), nil)
	deps.Universe = failingUniverse{}

	runner := New(deps, zerolog.Nop())
	_, err := runner.Run(context.Background())
	assert.Error(t, err)
}

func TestRun_NotifierFailureDoesNotAbort(t *testing.T) {
	deps := testDeps(t, twoSources(), []string{"VALU"})
	deps.Notifier = &captureNotifier{err: errors.New("slack down")}

	runner := New(deps, zerolog.Nop())
	snap, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"VALU"}, snap.Tickers())

	// History was still saved despite the delivery failure.
	prev, err := history.Load(deps.HistoryFile)
	require.NoError(t, err)
	require.NotNil(t, prev)
}

func TestRun_NarrativeAppendedToReport(t *testing.T) {
	deps := testDeps(t, twoSources(), []string{"VALU"})
	notif := &captureNotifier{}
	deps.Notifier = notif
	deps.Narrator = &staticNarrator{summary: "A classic fast grower at a fair price."}

	runner := New(deps, zerolog.Nop())
	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, notif.messages, 1)
	assert.Contains(t, notif.messages[0], "A classic fast grower at a fair price.")
}

func TestRun_NarrativeFailureDoesNotAbort(t *testing.T) {
	deps := testDeps(t, twoSources(), []string{"VALU"})
	notif := &captureNotifier{}
	deps.Notifier = notif
	deps.Narrator = &staticNarrator{err: errors.New("model unavailable")}

	runner := New(deps, zerolog.Nop())
	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, notif.messages, 1, "report sent without the commentary")
}
