package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"LynchScreen/internal/model"
)

// Adapter is the uniform fetch contract every data provider implements.
// Fetch returns the provider's fundamentals snapshot for a ticker or a
// typed *Failure; it never blocks past its own timeout and is safe to retry.
type Adapter interface {
	Fetch(ctx context.Context, ticker string) (*model.RawSnapshot, error)
	Name() string
}

// UniverseProvider supplies the ticker universe screened each run.
type UniverseProvider interface {
	Tickers(ctx context.Context) ([]string, error)
}

// FailureKind classifies an adapter failure.
type FailureKind string

const (
	KindTimeout     FailureKind = "timeout"
	KindNotFound    FailureKind = "not-found"
	KindMalformed   FailureKind = "malformed-data"
	KindRateLimited FailureKind = "rate-limited"
)

// Failure is the typed error an adapter surfaces instead of raising
// uncontrolled errors. It is always recovered by the validator's quorum
// rules and never propagates past it.
type Failure struct {
	Source string
	Ticker string
	Kind   FailureKind
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", f.Source, f.Ticker, f.Kind, f.Err)
	}
	return fmt.Sprintf("%s %s: %s", f.Source, f.Ticker, f.Kind)
}

func (f *Failure) Unwrap() error { return f.Err }

// newFailure wraps err, classifying transport timeouts and context
// expiry as KindTimeout so callers see one taxonomy.
func newFailure(source, ticker string, kind FailureKind, err error) *Failure {
	if isTimeout(err) {
		kind = KindTimeout
	}
	return &Failure{Source: source, Ticker: ticker, Kind: kind, Err: err}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var uerr *url.Error
	return errors.As(err, &uerr) && uerr.Timeout()
}
