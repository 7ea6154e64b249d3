package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"LynchScreen/internal/allocator"
	"LynchScreen/internal/model"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Policy constants (bucket
// weights, scoring weights, tolerances, entry stages) live here rather than
// in code; the defaults below are the screener's standard policy.
type Config struct {
	Slack struct {
		BotToken  string `yaml:"bot_token"`
		ChannelID string `yaml:"channel_id"`
	} `yaml:"slack"`
	Sources struct {
		DisableYahoo  bool `yaml:"disable_yahoo"`
		DisableFinviz bool `yaml:"disable_finviz"`
		StockGrid     struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"stockgrid"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"sources"`
	Universe struct {
		Tickers      []string `yaml:"tickers"` // static list; empty means Nasdaq screener
		Limit        int      `yaml:"limit"`
		MinMarketCap float64  `yaml:"min_market_cap"`
	} `yaml:"universe"`
	Validation struct {
		GrowthTolerancePct float64 `yaml:"growth_tolerance_pct"`
		PETolerancePct     float64 `yaml:"pe_tolerance_pct"`
		MaxGrowthPct       float64 `yaml:"max_growth_pct"`
	} `yaml:"validation"`
	Scoring struct {
		PEGWeight           float64 `yaml:"peg_weight"`
		GrowthWeight        float64 `yaml:"growth_weight"`
		DisagreementPenalty float64 `yaml:"disagreement_penalty"`
	} `yaml:"scoring"`
	Allocation struct {
		ValuePct          float64 `yaml:"value_pct"`
		GrowthPct         float64 `yaml:"growth_pct"`
		BalancedPct       float64 `yaml:"balanced_pct"`
		PositionWeightPct float64 `yaml:"position_weight_pct"`
		CandidateCap      int     `yaml:"candidate_cap"`
		MaxChinaPositions *int    `yaml:"max_china_positions"`
	} `yaml:"allocation"`
	Entry struct {
		Stages []model.EntryStage `yaml:"stages"`
	} `yaml:"entry"`
	Fetch struct {
		Concurrency          int `yaml:"concurrency"`
		GlobalTimeoutMinutes int `yaml:"global_timeout_minutes"`
	} `yaml:"fetch"`
	Schedule struct {
		WeeklyCron string `yaml:"weekly_cron"`
	} `yaml:"schedule"`
	History struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"history"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Narrative struct {
		Enabled bool   `yaml:"enabled"`
		Model   string `yaml:"model"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"narrative"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SLACK_BOT_TOKEN"); v != "" {
		cfg.Slack.BotToken = v
	}
	if v := os.Getenv("SLACK_CHANNEL_ID"); v != "" {
		cfg.Slack.ChannelID = v
	}
	if v := os.Getenv("STOCKGRID_BASE_URL"); v != "" {
		cfg.Sources.StockGrid.BaseURL = v
	}
	if v := os.Getenv("STOCKGRID_API_KEY"); v != "" {
		cfg.Sources.StockGrid.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Narrative.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_WEEKLY"); v != "" {
		cfg.Schedule.WeeklyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("UNIVERSE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Universe.Limit = n
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Sources.TimeoutSeconds == 0 {
		c.Sources.TimeoutSeconds = 30
	}
	if c.Universe.MinMarketCap == 0 {
		c.Universe.MinMarketCap = 100e6
	}
	if c.Validation.GrowthTolerancePct == 0 {
		c.Validation.GrowthTolerancePct = 25
	}
	if c.Validation.PETolerancePct == 0 {
		c.Validation.PETolerancePct = 15
	}
	if c.Validation.MaxGrowthPct == 0 {
		c.Validation.MaxGrowthPct = 500
	}
	if c.Scoring.PEGWeight == 0 && c.Scoring.GrowthWeight == 0 {
		c.Scoring.PEGWeight = 0.6
		c.Scoring.GrowthWeight = 0.4
	}
	if c.Scoring.DisagreementPenalty == 0 {
		c.Scoring.DisagreementPenalty = 0.85
	}
	if c.Allocation.ValuePct == 0 && c.Allocation.GrowthPct == 0 && c.Allocation.BalancedPct == 0 {
		c.Allocation.ValuePct = 40
		c.Allocation.GrowthPct = 40
		c.Allocation.BalancedPct = 20
	}
	if c.Allocation.PositionWeightPct == 0 {
		c.Allocation.PositionWeightPct = 10
	}
	if c.Allocation.CandidateCap == 0 {
		c.Allocation.CandidateCap = 10
	}
	if c.Allocation.MaxChinaPositions == nil {
		one := 1
		c.Allocation.MaxChinaPositions = &one
	}
	if len(c.Entry.Stages) == 0 {
		c.Entry.Stages = []model.EntryStage{
			{Week: 1, Percent: 3},
			{Week: 2, Percent: 3},
			{Week: 3, Percent: 4},
		}
	}
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = 8
	}
	if c.Fetch.GlobalTimeoutMinutes == 0 {
		c.Fetch.GlobalTimeoutMinutes = 45
	}
	if c.Schedule.WeeklyCron == "" {
		c.Schedule.WeeklyCron = "0 0 8 * * 1"
	}
	if c.History.StateFile == "" {
		c.History.StateFile = "data/portfolio_history.json"
	}
	if c.Narrative.Model == "" {
		c.Narrative.Model = "gemini-2.5-flash"
	}
}

// Validate checks the configuration before any fetching begins; an invalid
// policy fails fast rather than producing an invalid portfolio.
func (c *Config) Validate() error {
	total := c.Allocation.ValuePct + c.Allocation.GrowthPct + c.Allocation.BalancedPct
	if math.Abs(total-100) > 1e-9 {
		return fmt.Errorf("allocation bucket weights sum to %.2f%%, must sum to 100%%", total)
	}
	if c.Allocation.PositionWeightPct <= 0 {
		return fmt.Errorf("allocation.position_weight_pct must be positive")
	}
	if c.Scoring.PEGWeight <= 0 || c.Scoring.GrowthWeight <= 0 {
		return fmt.Errorf("scoring weights must be positive")
	}
	if c.Scoring.DisagreementPenalty <= 0 || c.Scoring.DisagreementPenalty > 1 {
		return fmt.Errorf("scoring.disagreement_penalty must be in (0, 1]")
	}
	if c.Validation.GrowthTolerancePct <= 0 || c.Validation.PETolerancePct <= 0 {
		return fmt.Errorf("validation tolerances must be positive")
	}
	if err := allocator.ValidateStages(c.Entry.Stages, c.Allocation.PositionWeightPct); err != nil {
		return err
	}
	if c.SourceCount() == 0 {
		return fmt.Errorf("no data sources enabled")
	}
	return nil
}

// SourceCount returns how many adapters the config enables.
func (c *Config) SourceCount() int {
	n := 0
	if !c.Sources.DisableYahoo {
		n++
	}
	if !c.Sources.DisableFinviz {
		n++
	}
	if c.Sources.StockGrid.BaseURL != "" {
		n++
	}
	return n
}
