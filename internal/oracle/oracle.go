package oracle

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Ledger is the part of the tradebook API the oracle drives.
type Ledger interface {
	ListAssets(ctx context.Context) ([]Asset, error)
	PushPrices(ctx context.Context, quotes []Quote) (*PushResult, error)
	Revalue(ctx context.Context) (*RevalueResult, error)
}

// RunResult is the outcome of one oracle cycle.
type RunResult struct {
	AssetsListed int
	Unsupported  int
	Fetched      int
	Recorded     int
	Rejected     int
	Revalued     int
	Errors       []FetchError
	Duration     time.Duration
}

// Oracle quotes every active asset from the first provider that supports its
// type and records the quotes in the ledger.
type Oracle struct {
	ledger    Ledger
	providers []Provider
	revalue   bool
	log       *zap.SugaredLogger
}

// New creates an Oracle. With revalue set, each cycle that records prices ends
// with a revaluation sweep.
func New(ledger Ledger, providers []Provider, revalue bool, log *zap.SugaredLogger) *Oracle {
	return &Oracle{ledger: ledger, providers: providers, revalue: revalue, log: log}
}

// Run executes a single cycle. Per-asset quote failures are reported in the
// result; only ledger failures abort the run.
func (o *Oracle) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{}

	assets, err := o.ledger.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	result.AssetsListed = len(assets)
	if len(assets) == 0 {
		o.log.Info("no active assets, nothing to do")
		result.Duration = time.Since(start)
		return result, nil
	}

	groups := make(map[int][]Asset)
	for _, a := range assets {
		matched := false
		for i, p := range o.providers {
			if p.Supports(a.Type) {
				groups[i] = append(groups[i], a)
				matched = true
				break
			}
		}
		if !matched {
			result.Unsupported++
			o.log.Warnw("no provider supports asset type", "symbol", a.Symbol, "type", a.Type)
		}
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		quotes []Quote
	)
	for i, group := range groups {
		wg.Add(1)
		go func(p Provider, group []Asset) {
			defer wg.Done()
			o.log.Infow("fetching prices", "provider", p.Name(), "count", len(group))
			q, failed := p.FetchPrices(ctx, group)
			mu.Lock()
			quotes = append(quotes, q...)
			result.Errors = append(result.Errors, failed...)
			mu.Unlock()
		}(o.providers[i], group)
	}
	wg.Wait()

	for _, e := range result.Errors {
		o.log.Warnw("price fetch failed", "asset_id", e.AssetID, "symbol", e.Symbol, "error", e.Err)
	}
	result.Fetched = len(quotes)
	if len(quotes) == 0 {
		o.log.Info("no prices fetched")
		result.Duration = time.Since(start)
		return result, nil
	}

	pushed, err := o.ledger.PushPrices(ctx, quotes)
	if err != nil {
		return nil, err
	}
	result.Recorded = pushed.Succeeded
	result.Rejected = pushed.Failed

	if o.revalue {
		report, err := o.ledger.Revalue(ctx)
		if err != nil {
			o.log.Warnw("failed to revalue portfolios", "error", err)
		} else {
			result.Revalued = report.Revalued
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}
