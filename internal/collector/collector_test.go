package collector

import (
	"context"
	"testing"
	"time"

	"LynchScreen/internal/model"
	"LynchScreen/internal/source"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect_GroupsSnapshotsByTicker(t *testing.T) {
	a := &source.MockAdapter{
		Source: "alpha",
		Snapshots: map[string]model.RawSnapshot{
			"AAPL": {TrailingPE: 28, GrowthPct: 15},
			"MSFT": {TrailingPE: 32, GrowthPct: 18},
		},
	}
	b := &source.MockAdapter{
		Source: "beta",
		Snapshots: map[string]model.RawSnapshot{
			"AAPL": {TrailingPE: 29, GrowthPct: 16},
		},
	}
	c := New([]source.Adapter{a, b}, 2, zerolog.Nop())
	require.Equal(t, 2, c.SourceCount())

	byTicker := c.Collect(context.Background(), []string{"AAPL", "MSFT"})

	require.Len(t, byTicker["AAPL"], 2)
	require.Len(t, byTicker["MSFT"], 1)
	assert.Equal(t, "alpha", byTicker["MSFT"][0].Source)
	assert.Equal(t, "MSFT", byTicker["MSFT"][0].Ticker)
}

func TestCollect_SourceFailureDoesNotPoisonOthers(t *testing.T) {
	healthy := &source.MockAdapter{
		Source: "alpha",
		Snapshots: map[string]model.RawSnapshot{
			"AAPL": {TrailingPE: 28, GrowthPct: 15},
		},
	}
	broken := &source.MockAdapter{Source: "beta"} // not-found for everything

	c := New([]source.Adapter{healthy, broken}, 2, zerolog.Nop())
	byTicker := c.Collect(context.Background(), []string{"AAPL", "NOPE"})

	require.Len(t, byTicker["AAPL"], 1)
	assert.Equal(t, "alpha", byTicker["AAPL"][0].Source)
	assert.NotContains(t, byTicker, "NOPE")
}

func TestCollect_CancelledContextReturnsPartialData(t *testing.T) {
	slow := &source.MockAdapter{
		Source: "slow",
		Delay:  time.Hour,
		Snapshots: map[string]model.RawSnapshot{
			"AAPL": {TrailingPE: 28, GrowthPct: 15},
		},
	}
	c := New([]source.Adapter{slow}, 1, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan map[string][]model.RawSnapshot, 1)
	go func() { done <- c.Collect(ctx, []string{"AAPL", "MSFT", "GOOG"}) }()

	select {
	case byTicker := <-done:
		assert.Empty(t, byTicker, "nothing completed before the deadline")
	case <-time.After(5 * time.Second):
		t.Fatal("Collect did not return after context cancellation")
	}
}

func TestCollect_NoSources(t *testing.T) {
	c := New(nil, 4, zerolog.Nop())
	byTicker := c.Collect(context.Background(), []string{"AAPL"})
	assert.Empty(t, byTicker)
}
