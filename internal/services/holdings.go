package services

import (
	"github.com/shopspring/decimal"

	"tradebook/internal/models"
)

type position struct {
	quantity decimal.Decimal
	cost     decimal.Decimal
	average  decimal.Decimal
}

// FoldHoldings replays trades in the given order and returns the open
// positions, ordered by the first appearance of each asset. Only executed
// trades count. A buy adds its quantity and total amount, a sell subtracts
// both, and the average price is refreshed whenever the quantity is positive.
//
// Over-selling is not guarded here: a history that sells more than it bought
// can leave a negative total cost on a later reopened position.
func FoldHoldings(trades []models.Trade) []models.Holding {
	positions := make(map[string]*position)
	var order []string

	for i := range trades {
		t := &trades[i]
		if t.Status != models.TradeExecuted {
			continue
		}
		pos, ok := positions[t.AssetID]
		if !ok {
			pos = &position{}
			positions[t.AssetID] = pos
			order = append(order, t.AssetID)
		}

		qty := decimal.NewFromFloat(t.Quantity)
		amount := decimal.NewFromFloat(t.TotalAmount)
		switch t.Type {
		case models.TradeBuy:
			pos.quantity = pos.quantity.Add(qty)
			pos.cost = pos.cost.Add(amount)
		case models.TradeSell:
			pos.quantity = pos.quantity.Sub(qty)
			pos.cost = pos.cost.Sub(amount)
		}
		if pos.quantity.IsPositive() {
			pos.average = pos.cost.Div(pos.quantity)
		}
	}

	holdings := make([]models.Holding, 0, len(order))
	for _, assetID := range order {
		pos := positions[assetID]
		if !pos.quantity.IsPositive() {
			continue
		}
		holdings = append(holdings, models.Holding{
			AssetID:      assetID,
			Quantity:     pos.quantity.InexactFloat64(),
			TotalCost:    pos.cost.InexactFloat64(),
			AveragePrice: pos.average.InexactFloat64(),
		})
	}
	return holdings
}

// HeldQuantity returns the open quantity of assetID within holdings.
func HeldQuantity(holdings []models.Holding, assetID string) decimal.Decimal {
	for _, h := range holdings {
		if h.AssetID == assetID {
			return decimal.NewFromFloat(h.Quantity)
		}
	}
	return decimal.Zero
}

// Valuate sums quantity × price over holdings. The price is the override for
// the asset when one is given and positive, otherwise the average price.
func Valuate(holdings []models.Holding, priceOverrides map[string]float64) float64 {
	total := decimal.Zero
	for _, h := range holdings {
		price := h.AveragePrice
		if p, ok := priceOverrides[h.AssetID]; ok && p > 0 {
			price = p
		}
		total = total.Add(decimal.NewFromFloat(h.Quantity).Mul(decimal.NewFromFloat(price)))
	}
	return total.InexactFloat64()
}

// totalAmount computes quantity × price.
func totalAmount(quantity, price float64) float64 {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(price)).InexactFloat64()
}
