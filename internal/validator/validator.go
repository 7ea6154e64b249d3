// Package validator reconciles the per-source fundamentals snapshots for a
// ticker into one trusted record. Disagreement between sources lowers trust,
// it never rejects a ticker on its own; only missing or nonsensical data
// drops one.
package validator

import (
	"math"
	"sort"

	"LynchScreen/internal/model"

	"github.com/rs/zerolog"
)

// Drop reasons surfaced when a ticker is excluded from scoring.
const (
	ReasonNoData         = "no-data"
	ReasonInvalidFigures = "invalid-fundamentals"
	ReasonBelowMinCap    = "below-min-market-cap"
)

// Drop records a ticker excluded during validation, with the reason.
type Drop struct {
	Ticker string
	Reason string
}

// Tolerances are the per-field fractional spread limits. A field whose
// spread (max-min)/median across sources exceeds its tolerance marks the
// record as disagreeing, but the median still stands.
type Tolerances struct {
	Growth float64 // e.g. 0.25 for 25%
	PE     float64 // e.g. 0.15 for 15%
}

// Limits reject reconciled figures that no plausible company produces.
type Limits struct {
	MaxGrowthPct float64 // growth beyond this is provider noise, not growth
	MinMarketCap float64 // 0 disables the cap filter
}

// Validator owns the RawSnapshots handed to it and retires them after
// producing ValidatedFundamentals; no partial record is ever exposed.
type Validator struct {
	tol       Tolerances
	limits    Limits
	attempted int
	log       zerolog.Logger
}

// New creates a Validator. attempted is the number of configured sources,
// the denominator of every confidence figure.
func New(tol Tolerances, limits Limits, attempted int, log zerolog.Logger) *Validator {
	return &Validator{tol: tol, limits: limits, attempted: attempted, log: log}
}

// ValidateAll reconciles every ticker in the universe, in lexical order for
// run determinism. Tickers without a single successful snapshot are dropped
// with reason no-data.
func (v *Validator) ValidateAll(universe []string, byTicker map[string][]model.RawSnapshot) ([]model.ValidatedFundamentals, []Drop) {
	sorted := make([]string, len(universe))
	copy(sorted, universe)
	sort.Strings(sorted)

	var (
		validated []model.ValidatedFundamentals
		drops     []Drop
	)
	for _, ticker := range sorted {
		vf, drop := v.Validate(ticker, byTicker[ticker])
		if drop != nil {
			drops = append(drops, *drop)
			continue
		}
		validated = append(validated, *vf)
	}

	v.log.Info().Int("validated", len(validated)).Int("dropped", len(drops)).
		Msg("cross-validation complete")
	return validated, drops
}

// Validate reconciles the snapshots collected for one ticker. Exactly one
// ValidatedFundamentals comes out, or the ticker is dropped.
func (v *Validator) Validate(ticker string, snaps []model.RawSnapshot) (*model.ValidatedFundamentals, *Drop) {
	if len(snaps) == 0 {
		return nil, &Drop{Ticker: ticker, Reason: ReasonNoData}
	}

	// Stable order so metadata selection and medians never depend on
	// fetch completion order.
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Source < snaps[j].Source })

	pes := make([]float64, len(snaps))
	growths := make([]float64, len(snaps))
	for i, s := range snaps {
		pes[i] = s.PE()
		growths[i] = s.GrowthPct
	}

	pe := median(pes)
	growth := median(growths)

	disagreement := len(snaps) == 1
	if len(snaps) >= 2 {
		if spread(pes, pe) > v.tol.PE || spread(growths, growth) > v.tol.Growth {
			disagreement = true
		}
	}

	confidence := 1
	if len(snaps) >= 2 {
		confidence = 0
		for i := range snaps {
			if within(pes[i], pe, v.tol.PE) && within(growths[i], growth, v.tol.Growth) {
				confidence++
			}
		}
	}

	if pe <= 0 || growth > v.limits.MaxGrowthPct {
		return nil, &Drop{Ticker: ticker, Reason: ReasonInvalidFigures}
	}

	vf := &model.ValidatedFundamentals{
		Ticker:       ticker,
		PE:           pe,
		GrowthPct:    growth,
		MarketCap:    median(nonZero(marketCaps(snaps))),
		Confidence:   confidence,
		Attempted:    v.attempted,
		Disagreement: disagreement,
	}
	// PEG is recomputed here from the reconciled inputs; provider-reported
	// PEG values never survive validation.
	if growth > 0 {
		vf.PEG = pe / growth
	}
	for _, s := range snaps {
		if vf.Name == "" {
			vf.Name = s.Name
		}
		if vf.Sector == "" {
			vf.Sector = s.Sector
		}
		if vf.Country == "" {
			vf.Country = s.Country
		}
	}

	if v.limits.MinMarketCap > 0 && vf.MarketCap > 0 && vf.MarketCap < v.limits.MinMarketCap {
		return nil, &Drop{Ticker: ticker, Reason: ReasonBelowMinCap}
	}
	return vf, nil
}

// median returns the middle value, averaging the two middles for even
// counts. Zero for an empty slice.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// spread is the fractional range (max-min)/median of a field across
// sources. A non-positive median makes the field incomparable and counts
// as maximal spread.
func spread(values []float64, med float64) float64 {
	if med <= 0 {
		return math.Inf(1)
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return (max - min) / med
}

func within(value, med, tol float64) bool {
	if med <= 0 {
		return false
	}
	return math.Abs(value-med)/med <= tol
}

func marketCaps(snaps []model.RawSnapshot) []float64 {
	caps := make([]float64, len(snaps))
	for i, s := range snaps {
		caps[i] = s.MarketCap
	}
	return caps
}

func nonZero(values []float64) []float64 {
	var out []float64
	for _, v := range values {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}
