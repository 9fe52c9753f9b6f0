package services

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/models"
	"tradebook/internal/store"
	"tradebook/internal/validator"
)

// tradeService handles the trade ledger and its state machine.
type tradeService struct {
	trades     *store.Collection[models.Trade, *models.Trade]
	assets     AssetServicer
	portfolios PortfolioServicer
	validate   *validator.Validator
	log        *zap.SugaredLogger
	now        func() time.Time
}

// NewTradeService creates a new TradeServicer. Execution revalues the trade's
// portfolio through portfolios.
func NewTradeService(db *store.DB, assets AssetServicer, portfolios PortfolioServicer, v *validator.Validator, log *zap.SugaredLogger) TradeServicer {
	return &tradeService{
		trades:     tradesOf(db),
		assets:     assets,
		portfolios: portfolios,
		validate:   v,
		log:        log,
		now:        time.Now,
	}
}

// CreateTrade records a pending trade. The price defaults to the asset's current price.
func (s *tradeService) CreateTrade(input CreateTradeInput) (*models.Trade, error) {
	if _, err := s.portfolios.GetPortfolio(input.PortfolioID); err != nil {
		return nil, err
	}
	asset, err := s.assets.GetAsset(input.AssetID)
	if err != nil {
		return nil, err
	}

	price := asset.CurrentPrice
	if input.Price != nil {
		price = *input.Price
	}

	trade := &models.Trade{
		PortfolioID: input.PortfolioID,
		AssetID:     input.AssetID,
		Type:        input.Type,
		Quantity:    input.Quantity,
		Price:       price,
		TotalAmount: totalAmount(input.Quantity, price),
		Status:      models.TradePending,
		Notes:       input.Notes,
	}
	if err := s.validate.Validate(trade); err != nil {
		return nil, err
	}

	created, err := s.trades.Create(trade)
	if err != nil {
		return nil, storeErr(err)
	}
	s.log.Infow("trade created",
		"trade_id", created.ID,
		"portfolio_id", created.PortfolioID,
		"asset_id", created.AssetID,
		"type", created.Type,
	)
	return created, nil
}

// GetTrade retrieves a trade by ID.
func (s *tradeService) GetTrade(id string) (*models.Trade, error) {
	trade, err := s.trades.FindByID(id)
	if err != nil {
		return nil, storeErr(err)
	}
	if trade == nil {
		return nil, apperrors.ErrTradeNotFound
	}
	return trade, nil
}

// ListTrades returns the trades matching filter in ledger order.
func (s *tradeService) ListTrades(filter TradeFilter) ([]models.Trade, error) {
	var conds []store.Condition
	if filter.PortfolioIDs != nil {
		conds = append(conds, store.In("portfolioId", filter.PortfolioIDs...))
	}
	if filter.AssetID != nil {
		conds = append(conds, store.Eq("assetId", *filter.AssetID))
	}
	if filter.Status != nil {
		conds = append(conds, store.Eq("status", *filter.Status))
	}
	if filter.Type != nil {
		conds = append(conds, store.Eq("type", *filter.Type))
	}
	trades, err := s.trades.FindAll(conds...)
	if err != nil {
		return nil, storeErr(err)
	}
	return trades, nil
}

// ListPortfolioTrades returns every trade of an existing portfolio.
func (s *tradeService) ListPortfolioTrades(portfolioID string) ([]models.Trade, error) {
	if _, err := s.portfolios.GetPortfolio(portfolioID); err != nil {
		return nil, err
	}
	return s.ListTrades(TradeFilter{PortfolioIDs: []string{portfolioID}})
}

// UpdateTrade applies patch to a trade that has not been executed. An executed
// trade accepts only a patch that re-asserts executed and leaves its terms alone.
// The total amount follows the effective quantity and price.
func (s *tradeService) UpdateTrade(id string, patch models.TradePatch) (*models.Trade, error) {
	updated, err := s.trades.UpdateByID(id, func(t *models.Trade) error {
		if err := checkPatch(t, patch); err != nil {
			return err
		}
		patch.Apply(t)
		if patch.Quantity != nil || patch.Price != nil {
			t.TotalAmount = totalAmount(t.Quantity, t.Price)
		}
		return s.validate.Validate(t)
	})
	if err != nil {
		return nil, storeErr(err)
	}
	if updated == nil {
		return nil, apperrors.ErrTradeNotFound
	}
	return updated, nil
}

// checkPatch enforces the lifecycle rules of UpdateTrade against the stored trade.
func checkPatch(t *models.Trade, patch models.TradePatch) error {
	if t.Status == models.TradeExecuted {
		if !patch.ReassertsExecuted() || patch.ChangesTerms() {
			return apperrors.ErrTradeExecuted
		}
		return nil
	}
	if patch.Status == nil || *patch.Status == t.Status {
		return nil
	}

	next := *patch.Status
	switch {
	case next == models.TradeExecuted:
		return apperrors.WithMessage(apperrors.ErrInvalidTradeState, "Trades are executed through the execute operation")
	case t.Status == models.TradePending && (next == models.TradeCancelled || next == models.TradeFailed):
		return nil
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidTradeState,
			"Cannot change trade status from "+string(t.Status)+" to "+string(next))
	}
}

// ExecuteTrade moves a pending trade to executed and revalues its portfolio.
// A sell must be covered by the current holdings of the asset.
func (s *tradeService) ExecuteTrade(id string) (*models.Trade, error) {
	trade, err := s.GetTrade(id)
	if err != nil {
		return nil, err
	}
	if trade.Status != models.TradePending {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTradeState, "Only pending trades can be executed")
	}

	if trade.Type == models.TradeSell {
		holdings, err := s.portfolios.ComputeHoldings(trade.PortfolioID)
		if err != nil {
			return nil, err
		}
		held := HeldQuantity(holdings, trade.AssetID)
		if held.LessThan(decimal.NewFromFloat(trade.Quantity)) {
			return nil, apperrors.ErrInsufficientHoldings
		}
	}

	now := s.now().UTC()
	executed, err := s.trades.UpdateByID(id, func(t *models.Trade) error {
		if t.Status != models.TradePending {
			return apperrors.WithMessage(apperrors.ErrInvalidTradeState, "Only pending trades can be executed")
		}
		t.Status = models.TradeExecuted
		t.ExecutedAt = &now
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	if executed == nil {
		return nil, apperrors.ErrTradeNotFound
	}
	s.log.Infow("trade executed", "trade_id", id, "portfolio_id", executed.PortfolioID)

	// The trade stays executed if revaluation fails; the next sweep catches up.
	if _, err := s.portfolios.RecalculateValue(executed.PortfolioID, nil); err != nil {
		s.log.Errorw("failed to revalue portfolio after execution",
			"trade_id", id,
			"portfolio_id", executed.PortfolioID,
			"error", err,
		)
	}
	return executed, nil
}

// CancelTrade cancels a trade that has not been executed. Cancelling a cancelled trade is a no-op.
func (s *tradeService) CancelTrade(id string) (*models.Trade, error) {
	cancelled, err := s.trades.UpdateByID(id, func(t *models.Trade) error {
		if t.Status == models.TradeExecuted {
			return apperrors.WithMessage(apperrors.ErrInvalidTradeState, "Cannot cancel an executed trade")
		}
		t.Status = models.TradeCancelled
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	if cancelled == nil {
		return nil, apperrors.ErrTradeNotFound
	}
	return cancelled, nil
}

// DeleteTrade removes a trade that has not been executed.
func (s *tradeService) DeleteTrade(id string) error {
	removed, err := s.trades.DeleteIf(id, func(t *models.Trade) error {
		if t.Status == models.TradeExecuted {
			return apperrors.WithMessage(apperrors.ErrInvalidTradeState, "Cannot delete an executed trade")
		}
		return nil
	})
	if err != nil {
		return storeErr(err)
	}
	if !removed {
		return apperrors.ErrTradeNotFound
	}
	return nil
}
