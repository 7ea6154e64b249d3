// Package allocator buckets scored candidates into the Value/Growth/Balanced
// tiers, ranks and truncates each tier to its target weight, and derives the
// staged entry schedule for every selected position.
package allocator

import (
	"sort"
	"strings"

	"LynchScreen/internal/model"

	"github.com/rs/zerolog"
)

// Config is the allocation policy. Bucket targets must sum to 100%; this is
// validated at startup, before any fetching begins.
type Config struct {
	BucketTargets     map[model.Bucket]float64
	PositionWeightPct float64 // equal weight per position within a bucket
	CandidateCap      int     // per-bucket candidate cap before ranking, 0 = unlimited
	MaxChinaPositions int     // portfolio-wide cap on China-domiciled positions, -1 = unlimited
}

// DefaultConfig is the 40/40/20 policy with 10% positions and at most one
// China-domiciled holding.
func DefaultConfig() Config {
	return Config{
		BucketTargets: map[model.Bucket]float64{
			model.BucketValue:    40,
			model.BucketGrowth:   40,
			model.BucketBalanced: 20,
		},
		PositionWeightPct: 10,
		CandidateCap:      10,
		MaxChinaPositions: 1,
	}
}

// Allocator owns bucket composition for a run.
type Allocator struct {
	cfg Config
	log zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) *Allocator {
	return &Allocator{cfg: cfg, log: log}
}

// Allocate assigns every candidate to at most one bucket, ranks each bucket
// by composite score and keeps the top positions needed to reach the
// bucket's target weight. A bucket that cannot fill its target reports the
// shortfall; unused weight is never redistributed.
func (a *Allocator) Allocate(cands []model.CandidateScore) []model.PortfolioBucket {
	ranked := a.rankEligible(cands)
	assigned := resolveAssignments(ranked)

	chinaLeft := a.cfg.MaxChinaPositions
	if chinaLeft < 0 {
		chinaLeft = len(cands)
	}

	buckets := make([]model.PortfolioBucket, 0, len(model.Buckets))
	for _, name := range model.Buckets {
		target := a.cfg.BucketTargets[name]
		slots := int(target / a.cfg.PositionWeightPct)

		candidates := assigned[name]
		if a.cfg.CandidateCap > 0 && len(candidates) > a.cfg.CandidateCap {
			candidates = candidates[:a.cfg.CandidateCap]
		}

		var positions []model.Position
		for _, c := range candidates {
			if len(positions) == slots {
				break
			}
			if isChinaDomiciled(c.Fundamentals.Country) {
				if chinaLeft == 0 {
					a.log.Debug().Str("ticker", c.Ticker).Str("bucket", string(name)).
						Msg("skipped: China position limit reached")
					continue
				}
				chinaLeft--
			}
			positions = append(positions, position(c, a.cfg.PositionWeightPct))
		}

		bucket := model.PortfolioBucket{
			Name:        name,
			TargetPct:   target,
			AchievedPct: float64(len(positions)) * a.cfg.PositionWeightPct,
			Positions:   positions,
		}
		if sf := bucket.ShortfallPct(); sf > 0 {
			a.log.Warn().Str("bucket", string(name)).Float64("shortfall_pct", sf).
				Int("filled", len(positions)).Int("slots", slots).
				Msg("bucket could not reach target weight")
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}

// rankEligible builds, for each bucket, the eligible candidates sorted
// descending by score with ties broken by ticker lexical order.
func (a *Allocator) rankEligible(cands []model.CandidateScore) map[model.Bucket][]model.CandidateScore {
	ranked := make(map[model.Bucket][]model.CandidateScore, len(model.Buckets))
	for _, name := range model.Buckets {
		var eligible []model.CandidateScore
		for _, c := range cands {
			if c.EligibleFor(name) {
				eligible = append(eligible, c)
			}
		}
		sort.Slice(eligible, func(i, j int) bool {
			if eligible[i].Score != eligible[j].Score {
				return eligible[i].Score > eligible[j].Score
			}
			return eligible[i].Ticker < eligible[j].Ticker
		})
		ranked[name] = eligible
	}
	return ranked
}

// resolveAssignments gives each multi-eligible ticker to the single bucket
// where it ranks highest relative to that bucket's other candidates. Equal
// ranks resolve to the earlier bucket in the fixed tier order, keeping the
// outcome deterministic.
func resolveAssignments(ranked map[model.Bucket][]model.CandidateScore) map[model.Bucket][]model.CandidateScore {
	best := make(map[string]model.Bucket)
	bestRank := make(map[string]int)
	for _, name := range model.Buckets {
		for rank, c := range ranked[name] {
			if prev, ok := bestRank[c.Ticker]; !ok || rank < prev {
				best[c.Ticker] = name
				bestRank[c.Ticker] = rank
			}
		}
	}

	assigned := make(map[model.Bucket][]model.CandidateScore, len(ranked))
	for _, name := range model.Buckets {
		for _, c := range ranked[name] {
			if best[c.Ticker] == name {
				assigned[name] = append(assigned[name], c)
			}
		}
	}
	return assigned
}

func position(c model.CandidateScore, weightPct float64) model.Position {
	f := c.Fundamentals
	return model.Position{
		Ticker:       c.Ticker,
		Name:         f.Name,
		Sector:       f.Sector,
		Country:      f.Country,
		Score:        c.Score,
		PEG:          f.PEG,
		GrowthPct:    f.GrowthPct,
		PE:           f.PE,
		MarketCap:    f.MarketCap,
		Confidence:   f.Confidence,
		Attempted:    f.Attempted,
		Disagreement: f.Disagreement,
		WeightPct:    weightPct,
	}
}

func isChinaDomiciled(country string) bool {
	c := strings.ToLower(country)
	for _, kw := range []string{"china", "hong kong", "taiwan", "macau"} {
		if strings.Contains(c, kw) {
			return true
		}
	}
	return false
}
