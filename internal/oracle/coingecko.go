package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3/simple/price"

// coinGeckoIDs maps ticker symbols to CoinGecko coin ids.
var coinGeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"USDT":  "tether",
	"USDC":  "usd-coin",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"LTC":   "litecoin",
	"MATIC": "matic-network",
}

// LookupCoinGeckoID returns the CoinGecko id of a ticker symbol.
func LookupCoinGeckoID(symbol string) (string, bool) {
	id, ok := coinGeckoIDs[strings.ToUpper(strings.TrimSpace(symbol))]
	return id, ok
}

// CoinGeckoProvider quotes crypto assets from CoinGecko in each asset's currency.
type CoinGeckoProvider struct {
	httpClient *http.Client
	baseURL    string
}

// NewCoinGeckoProvider creates a CoinGecko provider.
func NewCoinGeckoProvider(httpClient *http.Client) *CoinGeckoProvider {
	return &CoinGeckoProvider{httpClient: httpClient, baseURL: coinGeckoBaseURL}
}

// Name returns the provider's display name.
func (p *CoinGeckoProvider) Name() string { return "CoinGecko" }

// Supports returns true for crypto only.
func (p *CoinGeckoProvider) Supports(assetType string) bool {
	return normalizeType(assetType) == "crypto"
}

// FetchPrices quotes every known coin in a single request.
func (p *CoinGeckoProvider) FetchPrices(ctx context.Context, assets []Asset) ([]Quote, []FetchError) {
	var failed []FetchError
	var known []Asset
	ids := make(map[string]bool)
	currencies := make(map[string]bool)
	for _, a := range assets {
		id, ok := LookupCoinGeckoID(a.Symbol)
		if !ok {
			failed = append(failed, FetchError{AssetID: a.ID, Symbol: a.Symbol, Err: fmt.Errorf("unknown coin %s", a.Symbol)})
			continue
		}
		known = append(known, a)
		ids[id] = true
		currencies[strings.ToLower(a.Currency)] = true
	}
	if len(known) == 0 {
		return nil, failed
	}

	q := url.Values{}
	q.Set("ids", joinKeys(ids))
	q.Set("vs_currencies", joinKeys(currencies))
	resp, err := getJSON(ctx, p.httpClient, p.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, append(failed, failAll(known, err)...)
	}
	defer func() { _ = resp.Body.Close() }()

	var body map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, append(failed, failAll(known, fmt.Errorf("decoding response: %w", err))...)
	}

	var quotes []Quote
	for _, a := range known {
		id, _ := LookupCoinGeckoID(a.Symbol)
		price, ok := body[id][strings.ToLower(a.Currency)]
		if !ok || price <= 0 {
			failed = append(failed, FetchError{AssetID: a.ID, Symbol: a.Symbol, Err: fmt.Errorf("no %s price for %s", a.Currency, id)})
			continue
		}
		quotes = append(quotes, Quote{AssetID: a.ID, Symbol: a.Symbol, Price: price})
	}
	return quotes, failed
}

func joinKeys(set map[string]bool) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
