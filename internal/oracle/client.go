package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// listPageSize is the largest page the asset listing accepts.
	listPageSize = 100
	// pushBatchMax is the largest bulk update the ingestion route accepts.
	pushBatchMax = 500
)

// PushResult is the ledger's answer to a bulk price push.
type PushResult struct {
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Results   []PushEntry `json:"results"`
}

// PushEntry is the outcome of one pushed quote.
type PushEntry struct {
	AssetID string `json:"assetId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RevalueResult is the ledger's answer to a revaluation sweep.
type RevalueResult struct {
	Revalued int      `json:"revalued"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Client talks to the tradebook API. Writes go through the ingestion routes,
// which authenticate with X-API-Key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a tradebook API client.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// ListAssets fetches every active asset, following pagination.
func (c *Client) ListAssets(ctx context.Context) ([]Asset, error) {
	var all []Asset
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("active", "true")
		q.Set("page", strconv.Itoa(page))
		q.Set("page_size", strconv.Itoa(listPageSize))

		var body struct {
			Data       []Asset `json:"data"`
			TotalPages int     `json:"total_pages"`
		}
		if err := c.do(ctx, http.MethodGet, "/api/v1/assets?"+q.Encode(), nil, &body); err != nil {
			return nil, fmt.Errorf("listing assets: %w", err)
		}
		all = append(all, body.Data...)
		if page >= body.TotalPages {
			return all, nil
		}
	}
}

// PushPrices submits quotes to the bulk price ingestion route, at most
// pushBatchMax per request.
func (c *Client) PushPrices(ctx context.Context, quotes []Quote) (*PushResult, error) {
	type update struct {
		AssetID string  `json:"assetId"`
		Price   float64 `json:"price"`
	}

	total := &PushResult{}
	for i := 0; i < len(quotes); i += pushBatchMax {
		batch := quotes[i:min(i+pushBatchMax, len(quotes))]
		updates := make([]update, len(batch))
		for j, q := range batch {
			updates[j] = update{AssetID: q.AssetID, Price: q.Price}
		}

		var result PushResult
		if err := c.do(ctx, http.MethodPost, "/api/v1/ingest/prices", map[string]any{"updates": updates}, &result); err != nil {
			return nil, fmt.Errorf("pushing prices: %w", err)
		}
		total.Succeeded += result.Succeeded
		total.Failed += result.Failed
		total.Results = append(total.Results, result.Results...)
	}
	return total, nil
}

// Revalue triggers a market revaluation of every active portfolio.
func (c *Client) Revalue(ctx context.Context) (*RevalueResult, error) {
	var result RevalueResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/ingest/revalue", nil, &result); err != nil {
		return nil, fmt.Errorf("revaluing portfolios: %w", err)
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
