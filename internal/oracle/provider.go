// Package oracle fetches market quotes from external sources and pushes them
// into the asset ledger through the price ingestion route.
package oracle

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Asset is the subset of a ledger asset a provider needs to quote it.
type Asset struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
}

// Quote is a successfully fetched price for an asset.
type Quote struct {
	AssetID string
	Symbol  string
	Price   float64
}

// FetchError is a failed quote for a specific asset.
type FetchError struct {
	AssetID string
	Symbol  string
	Err     error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch price for %s (%s): %v", e.Symbol, e.AssetID, e.Err)
}

// Provider fetches current market prices for a set of assets.
type Provider interface {
	// Name returns the provider's display name.
	Name() string

	// Supports reports whether the provider can quote the given asset type.
	Supports(assetType string) bool

	// FetchPrices returns as many quotes as it can, plus one error per asset it could not quote.
	FetchPrices(ctx context.Context, assets []Asset) ([]Quote, []FetchError)
}

// userAgent is sent to quote sources that reject the default Go client.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"

func getJSON(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp, nil
}

// failAll reports err against every asset in a failed request.
func failAll(assets []Asset, err error) []FetchError {
	out := make([]FetchError, len(assets))
	for i, a := range assets {
		out[i] = FetchError{AssetID: a.ID, Symbol: a.Symbol, Err: err}
	}
	return out
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
