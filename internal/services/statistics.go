package services

import (
	"github.com/shopspring/decimal"

	"tradebook/internal/models"
)

// Statistics summarizes the trades of one portfolio, or of every portfolio
// when portfolioID is empty.
func (s *tradeService) Statistics(portfolioID string) (*TradeStatistics, error) {
	var filter TradeFilter
	if portfolioID != "" {
		filter.PortfolioIDs = []string{portfolioID}
	}
	trades, err := s.ListTrades(filter)
	if err != nil {
		return nil, err
	}
	return Summarize(trades), nil
}

// Summarize counts trades by status and type. Volume and the executed count
// cover executed trades only.
func Summarize(trades []models.Trade) *TradeStatistics {
	stats := &TradeStatistics{ByStatus: make(map[models.TradeStatus]int)}
	volume := decimal.Zero
	for _, t := range trades {
		stats.Total++
		stats.ByStatus[t.Status]++
		switch t.Type {
		case models.TradeBuy:
			stats.ByType.Buy++
		case models.TradeSell:
			stats.ByType.Sell++
		}
		if t.Status == models.TradeExecuted {
			stats.Executed++
			volume = volume.Add(decimal.NewFromFloat(t.TotalAmount))
		}
	}
	stats.TotalVolume = volume.InexactFloat64()
	return stats
}

// MergeStatistics sums statistics field by field, merging the status maps by key.
func MergeStatistics(parts ...*TradeStatistics) *TradeStatistics {
	out := &TradeStatistics{ByStatus: make(map[models.TradeStatus]int)}
	volume := decimal.Zero
	for _, p := range parts {
		if p == nil {
			continue
		}
		out.Total += p.Total
		out.ByType.Buy += p.ByType.Buy
		out.ByType.Sell += p.ByType.Sell
		out.Executed += p.Executed
		volume = volume.Add(decimal.NewFromFloat(p.TotalVolume))
		for status, n := range p.ByStatus {
			out.ByStatus[status] += n
		}
	}
	out.TotalVolume = volume.InexactFloat64()
	return out
}
