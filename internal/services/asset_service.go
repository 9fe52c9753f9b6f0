package services

import (
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/models"
	"tradebook/internal/store"
	"tradebook/internal/validator"
)

// DefaultPriceHistoryLimit is the number of price points kept per asset.
const DefaultPriceHistoryLimit = 100

// assetService handles the asset ledger.
type assetService struct {
	assets       *store.Collection[models.Asset, *models.Asset]
	trades       *store.Collection[models.Trade, *models.Trade]
	validate     *validator.Validator
	log          *zap.SugaredLogger
	now          func() time.Time
	historyLimit int
}

// AssetOption configures an asset service.
type AssetOption func(*assetService)

// WithPriceHistoryLimit sets how many price points are kept per asset.
func WithPriceHistoryLimit(limit int) AssetOption {
	return func(s *assetService) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// WithAssetClock sets the clock used to timestamp price points.
func WithAssetClock(now func() time.Time) AssetOption {
	return func(s *assetService) { s.now = now }
}

// NewAssetService creates a new AssetServicer.
func NewAssetService(db *store.DB, v *validator.Validator, log *zap.SugaredLogger, opts ...AssetOption) AssetServicer {
	s := &assetService{
		assets:       assetsOf(db),
		trades:       tradesOf(db),
		validate:     v,
		log:          log,
		now:          time.Now,
		historyLimit: DefaultPriceHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAsset validates and stores a new asset. Symbols are unique and case-sensitive.
func (s *assetService) CreateAsset(input CreateAssetInput) (*models.Asset, error) {
	asset := &models.Asset{
		Symbol:       strings.TrimSpace(input.Symbol),
		Name:         strings.TrimSpace(input.Name),
		Type:         input.Type,
		Currency:     input.Currency,
		CurrentPrice: input.CurrentPrice,
		PriceHistory: []models.PricePoint{},
		MarketCap:    input.MarketCap,
		Sector:       input.Sector,
		IsActive:     true,
	}
	if asset.Currency == "" {
		asset.Currency = "USD"
	}
	if input.IsActive != nil {
		asset.IsActive = *input.IsActive
	}
	if err := s.validate.Validate(asset); err != nil {
		return nil, err
	}

	created, err := s.assets.CreateIf(asset, func(existing []models.Asset) error {
		return symbolFree(existing, asset.Symbol, "")
	})
	if err != nil {
		return nil, storeErr(err)
	}
	s.log.Infow("asset created", "asset_id", created.ID, "symbol", created.Symbol)
	return created, nil
}

func symbolFree(assets []models.Asset, symbol, exceptID string) error {
	for i := range assets {
		if assets[i].Symbol == symbol && assets[i].ID != exceptID {
			return apperrors.ErrDuplicateSymbol
		}
	}
	return nil
}

// GetAsset retrieves an asset by ID.
func (s *assetService) GetAsset(id string) (*models.Asset, error) {
	asset, err := s.assets.FindByID(id)
	if err != nil {
		return nil, storeErr(err)
	}
	if asset == nil {
		return nil, apperrors.ErrAssetNotFound
	}
	return asset, nil
}

// GetAssetBySymbol retrieves an asset by its exact symbol.
func (s *assetService) GetAssetBySymbol(symbol string) (*models.Asset, error) {
	asset, err := s.assets.FindOne(store.Eq("symbol", symbol))
	if err != nil {
		return nil, storeErr(err)
	}
	if asset == nil {
		return nil, apperrors.ErrAssetNotFound
	}
	return asset, nil
}

// ListAssets returns the assets matching filter in storage order.
func (s *assetService) ListAssets(filter AssetFilter) ([]models.Asset, error) {
	var conds []store.Condition
	if filter.Type != nil {
		conds = append(conds, store.Eq("type", *filter.Type))
	}
	if filter.IsActive != nil {
		conds = append(conds, store.Eq("isActive", *filter.IsActive))
	}
	assets, err := s.assets.FindAll(conds...)
	if err != nil {
		return nil, storeErr(err)
	}
	return assets, nil
}

// UpdateAsset applies patch and re-validates the result. A changed symbol must stay unique.
func (s *assetService) UpdateAsset(id string, patch models.AssetPatch) (*models.Asset, error) {
	if patch.Symbol != nil {
		trimmed := strings.TrimSpace(*patch.Symbol)
		patch.Symbol = &trimmed
		others, err := s.assets.FindAll(store.Eq("symbol", trimmed))
		if err != nil {
			return nil, storeErr(err)
		}
		if err := symbolFree(others, trimmed, id); err != nil {
			return nil, err
		}
	}

	updated, err := s.assets.UpdateByID(id, func(a *models.Asset) error {
		patch.Apply(a)
		return s.validate.Validate(a)
	})
	if err != nil {
		return nil, storeErr(err)
	}
	if updated == nil {
		return nil, apperrors.ErrAssetNotFound
	}
	return updated, nil
}

// UpdateAssetPrice sets the current price. With addToHistory the price is also
// appended to the bounded price history, dropping the oldest entries first.
func (s *assetService) UpdateAssetPrice(id string, price float64, addToHistory bool) (*models.Asset, error) {
	if price < 0 {
		return nil, apperrors.WithViolations([]apperrors.Violation{{
			Field: "price", Rule: "gte", Message: "price must be at least 0",
		}})
	}

	now := s.now().UTC()
	updated, err := s.assets.UpdateByID(id, func(a *models.Asset) error {
		a.CurrentPrice = price
		if addToHistory {
			a.AppendPrice(models.PricePoint{Price: price, Timestamp: now}, s.historyLimit)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	if updated == nil {
		return nil, apperrors.ErrAssetNotFound
	}
	return updated, nil
}

// BulkUpdatePrices applies every entry on its own, with history. A failed
// entry is reported and does not stop the rest. Entries may name the asset by
// symbol instead of id.
func (s *assetService) BulkUpdatePrices(entries []PriceUpdate) []PriceUpdateResult {
	results := make([]PriceUpdateResult, 0, len(entries))
	for _, entry := range entries {
		result := PriceUpdateResult{AssetID: entry.AssetID}

		assetID := entry.AssetID
		if assetID == "" && entry.Symbol != "" {
			asset, err := s.GetAssetBySymbol(entry.Symbol)
			if err != nil {
				result.Error = err.Error()
				results = append(results, result)
				continue
			}
			assetID = asset.ID
			result.AssetID = assetID
		}

		asset, err := s.UpdateAssetPrice(assetID, entry.Price, true)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Success = true
			result.Asset = asset
		}
		results = append(results, result)
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	s.log.Infow("bulk price update", "entries", len(entries), "failed", failed)
	return results
}

// DeleteAsset removes an asset that no trade references.
func (s *assetService) DeleteAsset(id string) error {
	referenced, err := s.trades.Count(store.Eq("assetId", id))
	if err != nil {
		return storeErr(err)
	}

	removed, err := s.assets.DeleteIf(id, func(*models.Asset) error {
		if referenced > 0 {
			return apperrors.ErrAssetInUse
		}
		return nil
	})
	if err != nil {
		return storeErr(err)
	}
	if !removed {
		return apperrors.ErrAssetNotFound
	}
	return nil
}
