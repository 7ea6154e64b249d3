package source

import (
	"context"
	"time"

	"LynchScreen/internal/model"
)

// MockAdapter returns controllable fixed data for development and testing.
type MockAdapter struct {
	Source    string
	Snapshots map[string]model.RawSnapshot // per ticker
	Failures  map[string]*Failure          // per ticker, wins over Snapshots
	Delay     time.Duration
}

func (m *MockAdapter) Name() string {
	if m.Source == "" {
		return "mock"
	}
	return m.Source
}

func (m *MockAdapter) Fetch(ctx context.Context, ticker string) (*model.RawSnapshot, error) {
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, newFailure(m.Name(), ticker, KindTimeout, ctx.Err())
		case <-time.After(m.Delay):
		}
	}
	if f, ok := m.Failures[ticker]; ok {
		return nil, f
	}
	if snap, ok := m.Snapshots[ticker]; ok {
		snap.Ticker = ticker
		snap.Source = m.Name()
		if snap.FetchedAt.IsZero() {
			snap.FetchedAt = time.Now()
		}
		return &snap, nil
	}
	return nil, newFailure(m.Name(), ticker, KindNotFound, nil)
}
