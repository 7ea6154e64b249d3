package model

import "time"

// RawSnapshot is one provider's view of a ticker's fundamentals at fetch time.
// Adapters map their provider-specific responses into this shape at the
// boundary; nothing downstream ever inspects provider fields.
type RawSnapshot struct {
	Ticker     string
	Source     string
	Name       string
	Sector     string
	Country    string
	TrailingPE float64
	ForwardPE  float64
	GrowthPct  float64 // expected earnings growth, percent
	MarketCap  float64
	FetchedAt  time.Time
}

// PE returns the P/E figure this snapshot contributes to reconciliation:
// trailing when available, forward otherwise.
func (s RawSnapshot) PE() float64 {
	if s.TrailingPE > 0 {
		return s.TrailingPE
	}
	return s.ForwardPE
}

// ValidatedFundamentals is the reconciled record for a ticker, built once per
// run from one or more RawSnapshots and read-only thereafter. PEG is always
// recomputed as PE / GrowthPct from the reconciled inputs; a provider-reported
// PEG never survives validation.
type ValidatedFundamentals struct {
	Ticker       string
	Name         string
	Sector       string
	Country      string
	PE           float64
	GrowthPct    float64
	PEG          float64
	MarketCap    float64
	Confidence   int // sources whose every field fell within tolerance of the median
	Attempted    int // sources queried for this ticker
	Disagreement bool
}
