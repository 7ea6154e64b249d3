package model

import (
	"sort"
	"time"
)

// EntryStage is one step of a staged capital-entry plan.
type EntryStage struct {
	Week    int     `json:"week"`
	Percent float64 `json:"percent"`
}

// EntrySchedule is the staged entry plan for one selected ticker. Week
// indices are strictly increasing starting at 1 and the percentages sum to
// the per-position weight.
type EntrySchedule struct {
	Ticker string       `json:"ticker"`
	Stages []EntryStage `json:"stages"`
}

// TotalPercent returns the sum of all stage percentages.
func (s EntrySchedule) TotalPercent() float64 {
	total := 0.0
	for _, st := range s.Stages {
		total += st.Percent
	}
	return total
}

// Position is one selected ticker inside a bucket.
type Position struct {
	Ticker       string  `json:"ticker"`
	Name         string  `json:"name"`
	Sector       string  `json:"sector"`
	Country      string  `json:"country"`
	Score        float64 `json:"score"`
	PEG          float64 `json:"peg"`
	GrowthPct    float64 `json:"growth_pct"`
	PE           float64 `json:"pe"`
	MarketCap    float64 `json:"market_cap"`
	Confidence   int     `json:"confidence"`
	Attempted    int     `json:"attempted"`
	Disagreement bool    `json:"disagreement"`
	WeightPct    float64 `json:"weight_pct"`
}

// PortfolioBucket is one tier with its chosen, ranked positions.
// AchievedPct never exceeds TargetPct; the difference is the shortfall,
// which is reported rather than redistributed.
type PortfolioBucket struct {
	Name        Bucket     `json:"name"`
	TargetPct   float64    `json:"target_pct"`
	AchievedPct float64    `json:"achieved_pct"`
	Positions   []Position `json:"positions"`
}

// ShortfallPct returns the unfilled share of the bucket's target weight.
func (b PortfolioBucket) ShortfallPct() float64 {
	if sf := b.TargetPct - b.AchievedPct; sf > 0 {
		return sf
	}
	return 0
}

// PortfolioSnapshot is the immutable result of one screening run and the
// unit persisted for historical comparison.
type PortfolioSnapshot struct {
	RunAt     time.Time         `json:"run_at"`
	Buckets   []PortfolioBucket `json:"buckets"`
	Schedules []EntrySchedule   `json:"schedules"`
}

// Tickers returns the sorted union of all bucket memberships.
func (s *PortfolioSnapshot) Tickers() []string {
	var out []string
	for _, b := range s.Buckets {
		for _, p := range b.Positions {
			out = append(out, p.Ticker)
		}
	}
	sort.Strings(out)
	return out
}

// HistoryDelta describes how the new portfolio differs from the prior run.
type HistoryDelta struct {
	Added    []string `json:"added"`
	Removed  []string `json:"removed"`
	Retained []string `json:"retained"`
}
