package collector

import (
	"context"
	"errors"
	"sync"

	"LynchScreen/internal/model"
	"LynchScreen/internal/source"

	"github.com/rs/zerolog"
)

// Collector fans the configured sources out over the ticker universe.
// Per-ticker, per-source fetches are independent and run in parallel under
// a bounded worker limit; each fetch produces an immutable RawSnapshot
// consumed by exactly one validation pass.
type Collector struct {
	sources     []source.Adapter
	concurrency int
	log         zerolog.Logger
}

// New creates a Collector. concurrency bounds in-flight fetches across all
// sources to respect provider rate limits.
func New(sources []source.Adapter, concurrency int, log zerolog.Logger) *Collector {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Collector{sources: sources, concurrency: concurrency, log: log}
}

// SourceCount returns the number of configured sources, i.e. the attempted
// count the validator scores confidence against.
func (c *Collector) SourceCount() int { return len(c.sources) }

// Collect fetches fundamentals for every (ticker, source) pair and returns
// the successful snapshots grouped by ticker. The context carries the
// global run timeout; fetches cut off by it are simply absent from the
// result, degrading that ticker's confidence instead of failing the run.
func (c *Collector) Collect(ctx context.Context, tickers []string) map[string][]model.RawSnapshot {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		byTicker = make(map[string][]model.RawSnapshot, len(tickers))
		failures = make(map[source.FailureKind]int)
	)
	sem := make(chan struct{}, c.concurrency)

	for _, ticker := range tickers {
		for _, adapter := range c.sources {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				wg.Wait()
				c.log.Warn().Int("with_data", len(byTicker)).
					Msg("run timeout reached, proceeding with partial data")
				return byTicker
			}

			wg.Add(1)
			go func(ticker string, adapter source.Adapter) {
				defer wg.Done()
				defer func() { <-sem }()

				snap, err := adapter.Fetch(ctx, ticker)
				if err != nil {
					var f *source.Failure
					mu.Lock()
					if errors.As(err, &f) {
						failures[f.Kind]++
					}
					mu.Unlock()
					c.log.Debug().Str("ticker", ticker).Str("source", adapter.Name()).
						Err(err).Msg("fetch failed")
					return
				}
				mu.Lock()
				byTicker[ticker] = append(byTicker[ticker], *snap)
				mu.Unlock()
			}(ticker, adapter)
		}
	}
	wg.Wait()

	event := c.log.Info().Int("tickers", len(tickers)).Int("with_data", len(byTicker))
	for kind, n := range failures {
		event = event.Int(string(kind), n)
	}
	event.Msg("collection complete")

	return byTicker
}
