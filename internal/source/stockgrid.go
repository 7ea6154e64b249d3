package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"LynchScreen/internal/model"
)

// StockGridAdapter fetches fundamentals from a self-hosted StockGrid REST
// service. The service aggregates filings-derived figures and is the third,
// independently computed leg of the cross-validation.
type StockGridAdapter struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewStockGridAdapter creates an adapter with optional proxy support.
func NewStockGridAdapter(baseURL, apiKey, proxyURL string, timeout time.Duration) *StockGridAdapter {
	return &StockGridAdapter{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (a *StockGridAdapter) Name() string { return "stockgrid" }

// gridFundamentals is the expected JSON shape from the StockGrid API.
type gridFundamentals struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Sector       string  `json:"sector"`
	Country      string  `json:"country"`
	TrailingPE   float64 `json:"trailing_pe"`
	ForwardPE    float64 `json:"forward_pe"`
	GrowthPct    float64 `json:"earnings_growth_pct"`
	MarketCapUSD float64 `json:"market_cap_usd"`
}

func (a *StockGridAdapter) Fetch(ctx context.Context, ticker string) (*model.RawSnapshot, error) {
	endpoint := fmt.Sprintf("%s/api/v1/fundamentals?symbol=%s", a.BaseURL, url.QueryEscape(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, newFailure(a.Name(), ticker, KindMalformed, err)
	}
	if a.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.APIKey)
	}

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

	var gf gridFundamentals
	if err := json.NewDecoder(resp.Body).Decode(&gf); err != nil {
		return nil, newFailure(a.Name(), ticker, KindMalformed, err)
	}
	if gf.TrailingPE <= 0 && gf.ForwardPE <= 0 {
		return nil, newFailure(a.Name(), ticker, KindMalformed,
			fmt.Errorf("no P/E for %s", ticker))
	}

	return &model.RawSnapshot{
		Ticker:     ticker,
		Source:     a.Name(),
		Name:       gf.Name,
		Sector:     gf.Sector,
		Country:    gf.Country,
		TrailingPE: gf.TrailingPE,
		ForwardPE:  gf.ForwardPE,
		GrowthPct:  gf.GrowthPct,
		MarketCap:  gf.MarketCapUSD,
		FetchedAt:  time.Now(),
	}, nil
}
