package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"LynchScreen/internal/model"
)

// FinvizAdapter scrapes the fundamentals table from a Finviz quote page.
// Finviz has no public API; the snapshot table is label/value cell pairs.
type FinvizAdapter struct {
	Client *http.Client
}

// NewFinvizAdapter creates a Finviz adapter with optional proxy support.
func NewFinvizAdapter(proxyURL string, timeout time.Duration) *FinvizAdapter {
	return &FinvizAdapter{Client: newHTTPClient(proxyURL, timeout)}
}

func (a *FinvizAdapter) Name() string { return "finviz" }

func (a *FinvizAdapter) Fetch(ctx context.Context, ticker string) (*model.RawSnapshot, error) {
	u := fmt.Sprintf("https://finviz.com/quote.ashx?t=%s", url.QueryEscape(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, newFailure(a.Name(), ticker, KindMalformed, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, newFailure(a.Name(), ticker, KindMalformed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, newFailure(a.Name(), ticker, KindNotFound, nil)
	case http.StatusTooManyRequests, http.StatusForbidden:
		return nil, newFailure(a.Name(), ticker, KindRateLimited, nil)
	default:
		return nil, newFailure(a.Name(), ticker, KindMalformed,
			fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newFailure(a.Name(), ticker, KindMalformed, err)
	}

	fields := parseSnapshotCells(string(body))

	pe := parseFinvizNumber(fields["P/E"])
	fwdPE := parseFinvizNumber(fields["Forward P/E"])
	growth := parseFinvizNumber(fields["EPS next Y"])
	mcap := parseFinvizMarketCap(fields["Market Cap"])

	if pe <= 0 && fwdPE <= 0 {
		return nil, newFailure(a.Name(), ticker, KindMalformed,
			fmt.Errorf("no P/E in snapshot table"))
	}
	if growth == 0 {
		return nil, newFailure(a.Name(), ticker, KindMalformed,
			fmt.Errorf("no growth estimate in snapshot table"))
	}

	return &model.RawSnapshot{
		Ticker:     ticker,
		Source:     a.Name(),
		Sector:     fields["Sector"],
		Country:    fields["Country"],
		TrailingPE: pe,
		ForwardPE:  fwdPE,
		GrowthPct:  growth,
		MarketCap:  mcap,
		FetchedAt:  time.Now(),
	}, nil
}

// parseSnapshotCells walks the page's <td> cells in order and pairs each
// known label with the cell that follows it.
func parseSnapshotCells(page string) map[string]string {
	cells := extractCells(page)
	fields := make(map[string]string)
	for i := 0; i+1 < len(cells); i++ {
		switch cells[i] {
		case "P/E", "Forward P/E", "PEG", "EPS next Y", "EPS next 5Y", "Market Cap", "Sector", "Country":
			if _, seen := fields[cells[i]]; !seen {
				fields[cells[i]] = cells[i+1]
			}
		}
	}
	return fields
}

// extractCells returns the text content of every <td> element, in order.
func extractCells(page string) []string {
	var cells []string
	rest := page
	for {
		start := strings.Index(rest, "<td")
		if start < 0 {
			break
		}
		rest = rest[start:]
		open := strings.Index(rest, ">")
		if open < 0 {
			break
		}
		rest = rest[open+1:]
		end := strings.Index(rest, "</td>")
		if end < 0 {
			break
		}
		cells = append(cells, stripTags(rest[:end]))
		rest = rest[end:]
	}
	return cells
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// parseFinvizNumber parses values like "18.50", "46.00%" or "-". Returns 0
// when the cell is empty or not numeric.
func parseFinvizNumber(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" || s == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseFinvizMarketCap parses values like "1.50B" or "820.00M" into dollars.
func parseFinvizMarketCap(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0
	}
	mult := 1.0
	switch s[len(s)-1] {
	case 'B':
		mult = 1e9
		s = s[:len(s)-1]
	case 'M':
		mult = 1e6
		s = s[:len(s)-1]
	case 'K':
		mult = 1e3
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v * mult
}
