// Package screener runs the weekly screening pipeline end to end:
// universe, collection, validation, scoring, allocation, entry scheduling,
// history diff, then delivery and persistence. Once candidate data exists,
// downstream failures degrade the run instead of aborting it.
package screener

import (
	"context"
	"fmt"
	"time"

	"LynchScreen/internal/allocator"
	"LynchScreen/internal/collector"
	"LynchScreen/internal/history"
	"LynchScreen/internal/model"
	"LynchScreen/internal/notifier"
	"LynchScreen/internal/recorder"
	"LynchScreen/internal/scorer"
	"LynchScreen/internal/source"
	"LynchScreen/internal/validator"

	"github.com/rs/zerolog"
)

// Notifier delivers the run report to the configured channel.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Narrator produces the optional model-written commentary for a run.
type Narrator interface {
	Summarize(ctx context.Context, snap *model.PortfolioSnapshot, delta model.HistoryDelta) (string, error)
}

// Runner wires the pipeline stages together for one screening run.
type Runner struct {
	universe    source.UniverseProvider
	collector   *collector.Collector
	validator   *validator.Validator
	scorer      *scorer.Scorer
	allocator   *allocator.Allocator
	stages      []model.EntryStage
	historyFile string
	recorder    recorder.Recorder
	notifier    Notifier
	narrator    Narrator // nil disables commentary
	timeout     time.Duration
	log         zerolog.Logger
}

// Deps collects the pipeline stages a Runner needs.
type Deps struct {
	Universe    source.UniverseProvider
	Collector   *collector.Collector
	Validator   *validator.Validator
	Scorer      *scorer.Scorer
	Allocator   *allocator.Allocator
	Stages      []model.EntryStage
	HistoryFile string
	Recorder    recorder.Recorder
	Notifier    Notifier
	Narrator    Narrator
	Timeout     time.Duration
}

// New creates a Runner from its dependencies.
func New(d Deps, log zerolog.Logger) *Runner {
	if d.Timeout == 0 {
		d.Timeout = 45 * time.Minute
	}
	return &Runner{
		universe:    d.Universe,
		collector:   d.Collector,
		validator:   d.Validator,
		scorer:      d.Scorer,
		allocator:   d.Allocator,
		stages:      d.Stages,
		historyFile: d.HistoryFile,
		recorder:    d.Recorder,
		notifier:    d.Notifier,
		narrator:    d.Narrator,
		timeout:     d.Timeout,
		log:         log,
	}
}

// Run executes one full screening run. It fails only when no universe can
// be resolved; every later stage logs problems and carries on with what it
// has, so a flaky source or a down Slack API never wastes a week's data.
func (r *Runner) Run(ctx context.Context) (*model.PortfolioSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	r.log.Info().Msg("screening run started")

	tickers, err := r.universe.Tickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve universe: %w", err)
	}
	r.log.Info().Int("tickers", len(tickers)).Msg("universe resolved")

	byTicker := r.collector.Collect(ctx, tickers)

	validated, drops := r.validator.ValidateAll(tickers, byTicker)
	r.log.Info().
		Int("validated", len(validated)).
		Int("dropped", len(drops)).
		Msg("validation complete")

	cands := make([]model.CandidateScore, 0, len(validated))
	for _, f := range validated {
		cand, err := r.scorer.Score(f)
		if err != nil {
			r.log.Debug().Str("ticker", f.Ticker).Err(err).Msg("candidate not scorable")
			continue
		}
		cands = append(cands, cand)
	}

	buckets := r.allocator.Allocate(cands)
	schedules := allocator.BuildSchedules(buckets, r.stages)

	snap := &model.PortfolioSnapshot{
		RunAt:     time.Now().UTC(),
		Buckets:   buckets,
		Schedules: schedules,
	}

	prev, err := history.Load(r.historyFile)
	if err != nil {
		r.log.Warn().Err(err).Msg("load portfolio history failed, treating run as first")
		prev = nil
	}
	delta := history.Diff(prev, snap)

	report := notifier.FormatRunReport(snap, delta)
	if r.narrator != nil {
		summary, err := r.narrator.Summarize(ctx, snap, delta)
		if err != nil {
			r.log.Warn().Err(err).Msg("narrative generation failed, sending report without it")
		} else if summary != "" {
			report += "\n\n" + summary
		}
	}

	if r.notifier != nil {
		if err := r.notifier.SendWithRetry(ctx, report, 3); err != nil {
			r.log.Error().Err(err).Msg("send run report failed")
		}
	}

	if err := r.recorder.RecordRun(snap, delta); err != nil {
		r.log.Error().Err(err).Msg("record run failed")
	}

	if err := history.Save(r.historyFile, snap); err != nil {
		r.log.Error().Err(err).Msg("save portfolio history failed")
	}

	r.log.Info().
		Int("positions", len(snap.Tickers())).
		Int("added", len(delta.Added)).
		Int("removed", len(delta.Removed)).
		Dur("elapsed", time.Since(start)).
		Msg("screening run finished")
	return snap, nil
}
