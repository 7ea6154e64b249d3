package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Sources.TimeoutSeconds)
	assert.InDelta(t, 100e6, cfg.Universe.MinMarketCap, 1)
	assert.InDelta(t, 25, cfg.Validation.GrowthTolerancePct, 1e-9)
	assert.InDelta(t, 15, cfg.Validation.PETolerancePct, 1e-9)
	assert.InDelta(t, 500, cfg.Validation.MaxGrowthPct, 1e-9)
	assert.InDelta(t, 0.6, cfg.Scoring.PEGWeight, 1e-9)
	assert.InDelta(t, 0.4, cfg.Scoring.GrowthWeight, 1e-9)
	assert.InDelta(t, 40, cfg.Allocation.ValuePct, 1e-9)
	assert.InDelta(t, 20, cfg.Allocation.BalancedPct, 1e-9)
	assert.InDelta(t, 10, cfg.Allocation.PositionWeightPct, 1e-9)
	require.NotNil(t, cfg.Allocation.MaxChinaPositions)
	assert.Equal(t, 1, *cfg.Allocation.MaxChinaPositions)
	require.Len(t, cfg.Entry.Stages, 3)
	assert.Equal(t, "0 0 8 * * 1", cfg.Schedule.WeeklyCron)
	assert.Equal(t, "gemini-2.5-flash", cfg.Narrative.Model)

	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
slack:
  bot_token: xoxb-test
  channel_id: C123
universe:
  tickers: [AAPL, MSFT]
  limit: 200
allocation:
  value_pct: 50
  growth_pct: 30
  balanced_pct: 20
  max_china_positions: 0
entry:
  stages:
    - week: 1
      percent: 5
    - week: 2
      percent: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "xoxb-test", cfg.Slack.BotToken)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Universe.Tickers)
	assert.InDelta(t, 50, cfg.Allocation.ValuePct, 1e-9)
	require.NotNil(t, cfg.Allocation.MaxChinaPositions)
	assert.Equal(t, 0, *cfg.Allocation.MaxChinaPositions, "explicit zero must survive defaulting")
	require.Len(t, cfg.Entry.Stages, 2)
	assert.Equal(t, 2, cfg.Entry.Stages[1].Week)

	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
slack:
  bot_token: from-file
`)
	t.Setenv("SLACK_BOT_TOKEN", "from-env")
	t.Setenv("UNIVERSE_LIMIT", "50")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Slack.BotToken)
	assert.Equal(t, 50, cfg.Universe.Limit)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "allocation: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bucket weights not 100", func(c *Config) { c.Allocation.ValuePct = 45 }},
		{"zero position weight", func(c *Config) { c.Allocation.PositionWeightPct = -1 }},
		{"zero scoring weight", func(c *Config) { c.Scoring.PEGWeight = -0.5 }},
		{"penalty above one", func(c *Config) { c.Scoring.DisagreementPenalty = 1.5 }},
		{"negative tolerance", func(c *Config) { c.Validation.PETolerancePct = -15 }},
		{"entry sum mismatch", func(c *Config) { c.Entry.Stages[2].Percent = 5 }},
		{"no sources", func(c *Config) {
			c.Sources.DisableYahoo = true
			c.Sources.DisableFinviz = true
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSourceCount(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.SourceCount())

	cfg.Sources.StockGrid.BaseURL = "https://grid.example.com"
	assert.Equal(t, 3, cfg.SourceCount())

	cfg.Sources.DisableYahoo = true
	cfg.Sources.DisableFinviz = true
	assert.Equal(t, 1, cfg.SourceCount())
}
