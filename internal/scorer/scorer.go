// Package scorer turns a validated fundamentals record into a composite
// value/growth score and the set of buckets the ticker qualifies for.
// Scoring is a pure function: identical inputs always produce identical
// output.
package scorer

import (
	"errors"

	"LynchScreen/internal/model"
)

// ErrInvalidFundamentals marks a ticker whose reconciled figures make PEG
// undefined (non-positive growth). Such tickers are excluded from scoring.
var ErrInvalidFundamentals = errors.New("invalid fundamentals: non-positive growth rate")

// Bucket eligibility bounds, Peter Lynch's criteria. A ticker may satisfy
// more than one rule; the allocator resolves the set to exactly one bucket.
const (
	valuePEGMax    = 0.7
	valueGrowthMin = 20.0
	valueGrowthMax = 50.0 // exclusive

	growthGrowthMin = 50.0
	growthPEGMax    = 1.2

	balancedPEGMax    = 1.0
	balancedGrowthMin = 20.0
	balancedGrowthMax = 40.0 // exclusive
)

// Normalization ceilings for the composite blend. PEG at or above the
// ceiling contributes nothing; growth is capped at the screener's upper
// sanity bound.
const (
	pegCeiling    = 1.5
	growthCeiling = 200.0
)

// Weights is the tunable scoring policy: the blend between PEG cheapness
// and growth, and the multiplicative penalty applied when sources
// disagreed.
type Weights struct {
	PEG                 float64
	Growth              float64
	DisagreementPenalty float64
}

// DefaultWeights favors cheapness over raw growth, as the screener's
// default policy.
func DefaultWeights() Weights {
	return Weights{PEG: 0.6, Growth: 0.4, DisagreementPenalty: 0.85}
}

// Scorer computes candidate scores under a fixed weight policy.
type Scorer struct {
	w Weights
}

func New(w Weights) *Scorer {
	return &Scorer{w: w}
}

// Score computes the composite score and bucket eligibility for one
// validated record. Growth at or below zero returns ErrInvalidFundamentals
// rather than a nonsensical negative-growth PEG.
func (s *Scorer) Score(f model.ValidatedFundamentals) (model.CandidateScore, error) {
	if f.GrowthPct <= 0 {
		return model.CandidateScore{}, ErrInvalidFundamentals
	}

	peg := f.PE / f.GrowthPct

	var eligible []model.Bucket
	if peg < valuePEGMax && f.GrowthPct >= valueGrowthMin && f.GrowthPct < valueGrowthMax {
		eligible = append(eligible, model.BucketValue)
	}
	if f.GrowthPct >= growthGrowthMin && peg < growthPEGMax {
		eligible = append(eligible, model.BucketGrowth)
	}
	if peg < balancedPEGMax && f.GrowthPct >= balancedGrowthMin && f.GrowthPct < balancedGrowthMax {
		eligible = append(eligible, model.BucketBalanced)
	}

	return model.CandidateScore{
		Ticker:       f.Ticker,
		Fundamentals: f,
		Score:        s.composite(peg, f),
		Eligible:     eligible,
	}, nil
}

// composite blends PEG cheapness with growth, then scales by the share of
// sources that agreed. A record confirmed by 1 of 3 sources scores
// materially below the same record confirmed by all 3.
func (s *Scorer) composite(peg float64, f model.ValidatedFundamentals) float64 {
	pegScore := clamp01((pegCeiling - peg) / pegCeiling)
	growthScore := clamp01(f.GrowthPct / growthCeiling)

	total := s.w.PEG + s.w.Growth
	base := (s.w.PEG*pegScore + s.w.Growth*growthScore) / total

	if f.Attempted > 0 {
		base *= float64(f.Confidence) / float64(f.Attempted)
	}
	if f.Disagreement {
		base *= s.w.DisagreementPenalty
	}
	return base
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
