package model

// Bucket names one of the three portfolio tiers.
type Bucket string

const (
	BucketValue    Bucket = "VALUE"
	BucketGrowth   Bucket = "GROWTH"
	BucketBalanced Bucket = "BALANCED"
)

// Buckets lists the tiers in their fixed processing order.
var Buckets = []Bucket{BucketValue, BucketGrowth, BucketBalanced}

// CandidateScore pairs a ticker's validated fundamentals with its composite
// score and the set of buckets it qualifies for. The score is a deterministic
// pure function of the fundamentals; the allocator later resolves the
// eligible set down to exactly one bucket.
type CandidateScore struct {
	Ticker       string
	Fundamentals ValidatedFundamentals
	Score        float64
	Eligible     []Bucket
}

// EligibleFor reports whether the candidate qualifies for the given bucket.
func (c CandidateScore) EligibleFor(b Bucket) bool {
	for _, e := range c.Eligible {
		if e == b {
			return true
		}
	}
	return false
}
