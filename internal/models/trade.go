package models

import "time"

// TradeType is the direction of a trade.
type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

// TradeStatus is the lifecycle state of a trade.
//
// A trade is created pending and makes at most one transition, to executed
// or cancelled. Failed is only ever set explicitly by an external caller.
type TradeStatus string

const (
	TradePending   TradeStatus = "pending"
	TradeExecuted  TradeStatus = "executed"
	TradeFailed    TradeStatus = "failed"
	TradeCancelled TradeStatus = "cancelled"
)

// Trade is one entry of the trade ledger.
type Trade struct {
	Base
	PortfolioID string      `json:"portfolioId" validate:"required"`
	AssetID     string      `json:"assetId" validate:"required"`
	Type        TradeType   `json:"type" validate:"required,trade_type"`
	Quantity    float64     `json:"quantity" validate:"gt=0"`
	Price       float64     `json:"price" validate:"gt=0"`
	TotalAmount float64     `json:"totalAmount"`
	Status      TradeStatus `json:"status" validate:"required,trade_status"`
	ExecutedAt  *time.Time  `json:"executedAt"`
	Notes       string      `json:"notes"`
}

// Field implements store.Document.
func (t *Trade) Field(name string) (any, bool) {
	switch name {
	case "portfolioId":
		return t.PortfolioID, true
	case "assetId":
		return t.AssetID, true
	case "type":
		return t.Type, true
	case "status":
		return t.Status, true
	}
	return t.baseField(name)
}

// TradePatch holds the trade fields an update may change.
type TradePatch struct {
	Type     *TradeType   `json:"type"`
	Quantity *float64     `json:"quantity"`
	Price    *float64     `json:"price"`
	Status   *TradeStatus `json:"status"`
	Notes    *string      `json:"notes"`
}

// ReassertsExecuted reports whether the patch sets the status to executed.
func (p TradePatch) ReassertsExecuted() bool {
	return p.Status != nil && *p.Status == TradeExecuted
}

// ChangesTerms reports whether the patch touches the economic terms of a trade.
func (p TradePatch) ChangesTerms() bool {
	return p.Type != nil || p.Quantity != nil || p.Price != nil
}

// Apply copies the set fields of the patch onto t. It does not recompute TotalAmount.
func (p TradePatch) Apply(t *Trade) {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Quantity != nil {
		t.Quantity = *p.Quantity
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
}
