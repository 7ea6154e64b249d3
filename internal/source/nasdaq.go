package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// NasdaqUniverse pulls the screened ticker universe from the Nasdaq stock
// screener download endpoint and filters it down to plain US common stock
// symbols.
type NasdaqUniverse struct {
	Client *http.Client
	Limit  int // 0 means no cap
}

// NewNasdaqUniverse creates a universe provider with optional proxy support.
func NewNasdaqUniverse(proxyURL string, timeout time.Duration, limit int) *NasdaqUniverse {
	return &NasdaqUniverse{Client: newHTTPClient(proxyURL, timeout), Limit: limit}
}

type nasdaqScreener struct {
	Data struct {
		Rows []struct {
			Symbol string `json:"symbol"`
			Name   string `json:"name"`
		} `json:"rows"`
	} `json:"data"`
}

func (u *NasdaqUniverse) Tickers(ctx context.Context) ([]string, error) {
	endpoint := "https://api.nasdaq.com/api/screener/stocks?tableonly=true&limit=25000&download=true"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch universe: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch universe: status %d, body: %s", resp.StatusCode, string(body))
	}

	var screener nasdaqScreener
	if err := json.NewDecoder(resp.Body).Decode(&screener); err != nil {
		return nil, fmt.Errorf("decode universe: %w", err)
	}
	if len(screener.Data.Rows) == 0 {
		return nil, fmt.Errorf("universe: no rows returned")
	}

	seen := make(map[string]bool)
	var tickers []string
	for _, row := range screener.Data.Rows {
		sym := strings.ToUpper(strings.TrimSpace(row.Symbol))
		if !isPlainSymbol(sym) || seen[sym] {
			continue
		}
		if isFundName(row.Name) {
			continue
		}
		seen[sym] = true
		tickers = append(tickers, sym)
	}
	sort.Strings(tickers)

	if u.Limit > 0 && len(tickers) > u.Limit {
		tickers = tickers[:u.Limit]
	}
	return tickers, nil
}

// isPlainSymbol accepts 1-5 letter symbols; units, warrants and share
// classes carry ^ . or - and are dropped.
func isPlainSymbol(sym string) bool {
	if len(sym) < 1 || len(sym) > 5 {
		return false
	}
	for _, r := range sym {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func isFundName(name string) bool {
	upper := strings.ToUpper(name)
	for _, kw := range []string{"ETF", "ETN", "FUND", "TRUST"} {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// StaticUniverse serves a fixed ticker list from configuration, used for
// smoke runs and tests.
type StaticUniverse []string

func (s StaticUniverse) Tickers(_ context.Context) ([]string, error) {
	out := make([]string, len(s))
	copy(out, s)
	sort.Strings(out)
	return out, nil
}
