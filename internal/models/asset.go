package models

import "time"

// AssetType represents the type of tradable asset.
type AssetType string

const (
	AssetTypeStock      AssetType = "stock"
	AssetTypeETF        AssetType = "etf"
	AssetTypeBond       AssetType = "bond"
	AssetTypeCrypto     AssetType = "crypto"
	AssetTypeMutualFund AssetType = "mutual_fund"
)

// AssetTypes lists every accepted asset type.
var AssetTypes = []AssetType{AssetTypeStock, AssetTypeETF, AssetTypeBond, AssetTypeCrypto, AssetTypeMutualFund}

// PricePoint is one entry of an asset's price history.
type PricePoint struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Asset is a tradable instrument identified by its symbol.
type Asset struct {
	Base
	Symbol       string       `json:"symbol" validate:"required,max=20"`
	Name         string       `json:"name" validate:"required,max=200"`
	Type         AssetType    `json:"type" validate:"required,asset_type"`
	Currency     string       `json:"currency" validate:"required,iso4217"`
	CurrentPrice float64      `json:"currentPrice" validate:"gte=0"`
	PriceHistory []PricePoint `json:"priceHistory"`
	MarketCap    *float64     `json:"marketCap" validate:"omitempty,gte=0"`
	Sector       *string      `json:"sector"`
	IsActive     bool         `json:"isActive"`
}

// Field implements store.Document.
func (a *Asset) Field(name string) (any, bool) {
	switch name {
	case "symbol":
		return a.Symbol, true
	case "name":
		return a.Name, true
	case "type":
		return a.Type, true
	case "currency":
		return a.Currency, true
	case "sector":
		return a.Sector, true
	case "isActive":
		return a.IsActive, true
	}
	return a.baseField(name)
}

// AppendPrice records a price point, keeping at most limit of the most recent entries.
func (a *Asset) AppendPrice(p PricePoint, limit int) {
	a.PriceHistory = append(a.PriceHistory, p)
	if limit > 0 && len(a.PriceHistory) > limit {
		trimmed := make([]PricePoint, limit)
		copy(trimmed, a.PriceHistory[len(a.PriceHistory)-limit:])
		a.PriceHistory = trimmed
	}
}

// AssetPatch holds the asset fields an update may change. Nil fields are left as they are.
type AssetPatch struct {
	Symbol       *string    `json:"symbol"`
	Name         *string    `json:"name"`
	Type         *AssetType `json:"type"`
	Currency     *string    `json:"currency"`
	CurrentPrice *float64   `json:"currentPrice"`
	MarketCap    *float64   `json:"marketCap"`
	Sector       *string    `json:"sector"`
	IsActive     *bool      `json:"isActive"`
}

// Apply copies the set fields of the patch onto a.
func (p AssetPatch) Apply(a *Asset) {
	if p.Symbol != nil {
		a.Symbol = *p.Symbol
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Currency != nil {
		a.Currency = *p.Currency
	}
	if p.CurrentPrice != nil {
		a.CurrentPrice = *p.CurrentPrice
	}
	if p.MarketCap != nil {
		a.MarketCap = p.MarketCap
	}
	if p.Sector != nil {
		a.Sector = p.Sector
	}
	if p.IsActive != nil {
		a.IsActive = *p.IsActive
	}
}
