package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LynchScreen/internal/allocator"
	"LynchScreen/internal/collector"
	"LynchScreen/internal/config"
	"LynchScreen/internal/model"
	"LynchScreen/internal/narrative"
	"LynchScreen/internal/notifier"
	"LynchScreen/internal/recorder"
	"LynchScreen/internal/scheduler"
	"LynchScreen/internal/scorer"
	"LynchScreen/internal/screener"
	"LynchScreen/internal/source"
	"LynchScreen/internal/validator"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	log.Info().Msg("LynchScreen starting")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	timeout := time.Duration(cfg.Sources.TimeoutSeconds) * time.Second

	// Data source adapters
	var adapters []source.Adapter
	if !cfg.Sources.DisableYahoo {
		adapters = append(adapters, source.NewYahooAdapter(cfg.Proxy, timeout))
	}
	if !cfg.Sources.DisableFinviz {
		adapters = append(adapters, source.NewFinvizAdapter(cfg.Proxy, timeout))
	}
	if cfg.Sources.StockGrid.BaseURL != "" {
		adapters = append(adapters, source.NewStockGridAdapter(
			cfg.Sources.StockGrid.BaseURL, cfg.Sources.StockGrid.APIKey, cfg.Proxy, timeout))
	}
	for _, a := range adapters {
		log.Info().Str("source", a.Name()).Msg("data source enabled")
	}

	// Universe
	var universe source.UniverseProvider
	if len(cfg.Universe.Tickers) > 0 {
		universe = source.StaticUniverse(cfg.Universe.Tickers)
	} else {
		universe = source.NewNasdaqUniverse(cfg.Proxy, timeout, cfg.Universe.Limit)
	}

	col := collector.New(adapters, cfg.Fetch.Concurrency, log)

	val := validator.New(
		validator.Tolerances{
			Growth: cfg.Validation.GrowthTolerancePct / 100,
			PE:     cfg.Validation.PETolerancePct / 100,
		},
		validator.Limits{
			MaxGrowthPct: cfg.Validation.MaxGrowthPct,
			MinMarketCap: cfg.Universe.MinMarketCap,
		},
		len(adapters), log)

	sc := scorer.New(scorer.Weights{
		PEG:                 cfg.Scoring.PEGWeight,
		Growth:              cfg.Scoring.GrowthWeight,
		DisagreementPenalty: cfg.Scoring.DisagreementPenalty,
	})

	maxChina := -1
	if cfg.Allocation.MaxChinaPositions != nil {
		maxChina = *cfg.Allocation.MaxChinaPositions
	}
	alloc := allocator.New(allocator.Config{
		BucketTargets: map[model.Bucket]float64{
			model.BucketValue:    cfg.Allocation.ValuePct,
			model.BucketGrowth:   cfg.Allocation.GrowthPct,
			model.BucketBalanced: cfg.Allocation.BalancedPct,
		},
		PositionWeightPct: cfg.Allocation.PositionWeightPct,
		CandidateCap:      cfg.Allocation.CandidateCap,
		MaxChinaPositions: maxChina,
	}, log)

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Slack notifier
	var slack screener.Notifier
	if cfg.Slack.BotToken != "" && cfg.Slack.ChannelID != "" {
		slack = notifier.NewSlackNotifier(cfg.Slack.BotToken, cfg.Slack.ChannelID, cfg.Proxy, log)
	} else {
		log.Warn().Msg("slack not configured, reports will only be logged")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional narrative commentary
	var narrator screener.Narrator
	if cfg.Narrative.Enabled && cfg.Narrative.APIKey != "" {
		n, err := narrative.New(ctx, cfg.Narrative.APIKey, cfg.Narrative.Model, log)
		if err != nil {
			log.Warn().Err(err).Msg("init narrative summarizer failed, continuing without it")
		} else {
			narrator = n
		}
	}

	runner := screener.New(screener.Deps{
		Universe:    universe,
		Collector:   col,
		Validator:   val,
		Scorer:      sc,
		Allocator:   alloc,
		Stages:      cfg.Entry.Stages,
		HistoryFile: cfg.History.StateFile,
		Recorder:    rec,
		Notifier:    slack,
		Narrator:    narrator,
		Timeout:     time.Duration(cfg.Fetch.GlobalTimeoutMinutes) * time.Minute,
	}, log)

	sched := scheduler.New(ctx, runner, log)
	if err := sched.Register(cfg.Schedule.WeeklyCron); err != nil {
		log.Fatal().Err(err).Msg("register cron task")
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing screening run now")
		go sched.RunWeeklyNow()
	}

	log.Info().Str("cron", cfg.Schedule.WeeklyCron).Msg("LynchScreen is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	log.Info().Msg("LynchScreen stopped")
}
