package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	yahooBaseURL  = "https://query1.finance.yahoo.com/v7/finance/quote"
	yahooBatchMax = 50
)

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []yahooQuoteResult `json:"result"`
		Error  *json.RawMessage   `json:"error"`
	} `json:"quoteResponse"`
}

type yahooQuoteResult struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

// YahooProvider quotes listed securities from Yahoo Finance. Ledger symbols are
// sent as Yahoo tickers, so exchange-suffixed symbols such as 1023.KL work as is.
type YahooProvider struct {
	httpClient *http.Client
	baseURL    string
}

// NewYahooProvider creates a Yahoo Finance provider.
func NewYahooProvider(httpClient *http.Client) *YahooProvider {
	return &YahooProvider{httpClient: httpClient, baseURL: yahooBaseURL}
}

// Name returns the provider's display name.
func (p *YahooProvider) Name() string { return "Yahoo Finance" }

// Supports returns true for stock, etf, bond and mutual_fund.
func (p *YahooProvider) Supports(assetType string) bool {
	switch normalizeType(assetType) {
	case "stock", "etf", "bond", "mutual_fund":
		return true
	default:
		return false
	}
}

// FetchPrices quotes assets in batches of at most fifty tickers.
func (p *YahooProvider) FetchPrices(ctx context.Context, assets []Asset) ([]Quote, []FetchError) {
	var quotes []Quote
	var failed []FetchError
	for i := 0; i < len(assets); i += yahooBatchMax {
		end := min(i+yahooBatchMax, len(assets))
		q, f := p.fetchBatch(ctx, assets[i:end])
		quotes = append(quotes, q...)
		failed = append(failed, f...)
	}
	return quotes, failed
}

func (p *YahooProvider) fetchBatch(ctx context.Context, batch []Asset) ([]Quote, []FetchError) {
	tickers := make([]string, len(batch))
	for i, a := range batch {
		tickers[i] = strings.ToUpper(a.Symbol)
	}

	resp, err := getJSON(ctx, p.httpClient, p.baseURL+"?symbols="+url.QueryEscape(strings.Join(tickers, ",")))
	if err != nil {
		return nil, failAll(batch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body yahooQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, failAll(batch, fmt.Errorf("decoding response: %w", err))
	}

	prices := make(map[string]float64, len(body.QuoteResponse.Result))
	for _, r := range body.QuoteResponse.Result {
		prices[strings.ToUpper(r.Symbol)] = r.RegularMarketPrice
	}

	var quotes []Quote
	var failed []FetchError
	for i, a := range batch {
		price, ok := prices[tickers[i]]
		switch {
		case !ok:
			failed = append(failed, FetchError{AssetID: a.ID, Symbol: a.Symbol, Err: fmt.Errorf("symbol %s not found in response", tickers[i])})
		case price <= 0:
			failed = append(failed, FetchError{AssetID: a.ID, Symbol: a.Symbol, Err: fmt.Errorf("no price for %s", tickers[i])})
		default:
			quotes = append(quotes, Quote{AssetID: a.ID, Symbol: a.Symbol, Price: price})
		}
	}
	return quotes, failed
}
