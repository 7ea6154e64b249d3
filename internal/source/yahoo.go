package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"LynchScreen/internal/model"
)

// YahooAdapter fetches fundamentals from the Yahoo Finance quoteSummary API.
type YahooAdapter struct {
	Client *http.Client
}

// NewYahooAdapter creates a Yahoo adapter with optional proxy support.
func NewYahooAdapter(proxyURL string, timeout time.Duration) *YahooAdapter {
	return &YahooAdapter{Client: newHTTPClient(proxyURL, timeout)}
}

func (a *YahooAdapter) Name() string { return "yahoo" }

// yahooNumber is Yahoo's {raw, fmt} wrapper around numeric fields.
type yahooNumber struct {
	Raw float64 `json:"raw"`
}

type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Country string `json:"country"`
				Sector  string `json:"sector"`
			} `json:"assetProfile"`
			Price struct {
				LongName  string      `json:"longName"`
				ShortName string      `json:"shortName"`
				MarketCap yahooNumber `json:"marketCap"`
			} `json:"price"`
			SummaryDetail struct {
				TrailingPE yahooNumber `json:"trailingPE"`
				ForwardPE  yahooNumber `json:"forwardPE"`
			} `json:"summaryDetail"`
			FinancialData struct {
				EarningsGrowth yahooNumber `json:"earningsGrowth"`
			} `json:"financialData"`
			DefaultKeyStatistics struct {
				EarningsQuarterlyGrowth yahooNumber `json:"earningsQuarterlyGrowth"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func (a *YahooAdapter) Fetch(ctx context.Context, ticker string) (*model.RawSnapshot, error) {
	u := fmt.Sprintf(
		"https://query1.finance.yahoo.com/v10/finance/quoteSummary/%s?modules=assetProfile,price,summaryDetail,financialData,defaultKeyStatistics",
		url.PathEscape(ticker))

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
	case http.StatusTooManyRequests:
		return nil, newFailure(a.Name(), ticker, KindRateLimited, nil)
	default:
		return nil, newFailure(a.Name(), ticker, KindMalformed,
			fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newFailure(a.Name(), ticker, KindMalformed, err)
	}

	var summary yahooSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, newFailure(a.Name(), ticker, KindMalformed, err)
	}
	if e := summary.QuoteSummary.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, newFailure(a.Name(), ticker, KindNotFound, fmt.Errorf("%s", e.Description))
		}
		return nil, newFailure(a.Name(), ticker, KindMalformed, fmt.Errorf("%s: %s", e.Code, e.Description))
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return nil, newFailure(a.Name(), ticker, KindNotFound, nil)
	}

	r := summary.QuoteSummary.Result[0]

	growth := r.FinancialData.EarningsGrowth.Raw
	if growth == 0 {
		growth = r.DefaultKeyStatistics.EarningsQuarterlyGrowth.Raw
	}

	name := r.Price.LongName
	if name == "" {
		name = r.Price.ShortName
	}

	snap := &model.RawSnapshot{
		Ticker:     ticker,
		Source:     a.Name(),
		Name:       name,
		Sector:     r.AssetProfile.Sector,
		Country:    r.AssetProfile.Country,
		TrailingPE: r.SummaryDetail.TrailingPE.Raw,
		ForwardPE:  r.SummaryDetail.ForwardPE.Raw,
		GrowthPct:  normalizeGrowthPct(growth),
		MarketCap:  r.Price.MarketCap.Raw,
		FetchedAt:  time.Now(),
	}
	if snap.PE() <= 0 || snap.GrowthPct == 0 {
		return nil, newFailure(a.Name(), ticker, KindMalformed,
			fmt.Errorf("missing P/E or growth"))
	}
	return snap, nil
}

// normalizeGrowthPct converts a growth figure to percent. Yahoo reports
// growth as a fraction (0.46 for 46%); anything below 10 in magnitude is
// treated as a fraction, larger values are assumed to already be percent.
func normalizeGrowthPct(growth float64) float64 {
	if growth > -10 && growth < 10 {
		return growth * 100
	}
	return growth
}
