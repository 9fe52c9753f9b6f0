package services

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/models"
	"tradebook/internal/store"
	"tradebook/internal/validator"
)

// portfolioService handles portfolios and their valuation.
type portfolioService struct {
	portfolios *store.Collection[models.Portfolio, *models.Portfolio]
	trades     *store.Collection[models.Trade, *models.Trade]
	assets     *store.Collection[models.Asset, *models.Asset]
	validate   *validator.Validator
	log        *zap.SugaredLogger
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(db *store.DB, v *validator.Validator, log *zap.SugaredLogger) PortfolioServicer {
	return &portfolioService{
		portfolios: portfoliosOf(db),
		trades:     tradesOf(db),
		assets:     assetsOf(db),
		validate:   v,
		log:        log,
	}
}

// CreatePortfolio validates and stores a new portfolio for input.UserID.
func (s *portfolioService) CreatePortfolio(input CreatePortfolioInput) (*models.Portfolio, error) {
	portfolio := &models.Portfolio{
		UserID:            input.UserID,
		Name:              strings.TrimSpace(input.Name),
		Description:       input.Description,
		InitialInvestment: input.InitialInvestment,
		Currency:          input.Currency,
		RiskProfile:       input.RiskProfile,
		IsActive:          true,
	}
	if portfolio.Currency == "" {
		portfolio.Currency = "USD"
	}
	if portfolio.RiskProfile == "" {
		portfolio.RiskProfile = models.RiskModerate
	}
	if err := s.validate.Validate(portfolio); err != nil {
		return nil, err
	}

	created, err := s.portfolios.Create(portfolio)
	if err != nil {
		return nil, storeErr(err)
	}
	s.log.Infow("portfolio created", "portfolio_id", created.ID, "user_id", created.UserID)
	return created, nil
}

// GetPortfolio retrieves a portfolio by ID.
func (s *portfolioService) GetPortfolio(id string) (*models.Portfolio, error) {
	portfolio, err := s.portfolios.FindByID(id)
	if err != nil {
		return nil, storeErr(err)
	}
	if portfolio == nil {
		return nil, apperrors.ErrPortfolioNotFound
	}
	return portfolio, nil
}

// GetPortfolioWithHoldings returns the portfolio with its current holdings.
func (s *portfolioService) GetPortfolioWithHoldings(id string) (*PortfolioWithHoldings, error) {
	portfolio, err := s.GetPortfolio(id)
	if err != nil {
		return nil, err
	}
	holdings, err := s.holdingsOf(id)
	if err != nil {
		return nil, err
	}
	return &PortfolioWithHoldings{
		Portfolio:     *portfolio,
		Holdings:      holdings,
		TotalHoldings: len(holdings),
	}, nil
}

// ListPortfolios returns the portfolios of ownerID, or every portfolio when ownerID is empty.
func (s *portfolioService) ListPortfolios(ownerID string) ([]models.Portfolio, error) {
	var conds []store.Condition
	if ownerID != "" {
		conds = append(conds, store.Eq("userId", ownerID))
	}
	portfolios, err := s.portfolios.FindAll(conds...)
	if err != nil {
		return nil, storeErr(err)
	}
	return portfolios, nil
}

// UpdatePortfolio applies patch and re-validates the result.
func (s *portfolioService) UpdatePortfolio(id string, patch models.PortfolioPatch) (*models.Portfolio, error) {
	updated, err := s.portfolios.UpdateByID(id, func(p *models.Portfolio) error {
		patch.Apply(p)
		return s.validate.Validate(p)
	})
	if err != nil {
		return nil, storeErr(err)
	}
	if updated == nil {
		return nil, apperrors.ErrPortfolioNotFound
	}
	return updated, nil
}

// DeletePortfolio removes a portfolio that no trade references, in any status.
func (s *portfolioService) DeletePortfolio(id string) error {
	referenced, err := s.trades.Count(store.Eq("portfolioId", id))
	if err != nil {
		return storeErr(err)
	}

	removed, err := s.portfolios.DeleteIf(id, func(*models.Portfolio) error {
		if referenced > 0 {
			return apperrors.ErrPortfolioHasTrades
		}
		return nil
	})
	if err != nil {
		return storeErr(err)
	}
	if !removed {
		return apperrors.ErrPortfolioNotFound
	}
	s.log.Infow("portfolio deleted", "portfolio_id", id)
	return nil
}

// ComputeHoldings derives the open positions of the portfolio from its executed trades.
func (s *portfolioService) ComputeHoldings(portfolioID string) ([]models.Holding, error) {
	if _, err := s.GetPortfolio(portfolioID); err != nil {
		return nil, err
	}
	return s.holdingsOf(portfolioID)
}

func (s *portfolioService) holdingsOf(portfolioID string) ([]models.Holding, error) {
	trades, err := s.trades.FindAll(
		store.Eq("portfolioId", portfolioID),
		store.Eq("status", models.TradeExecuted),
	)
	if err != nil {
		return nil, storeErr(err)
	}
	return FoldHoldings(trades), nil
}

// RecalculateValue values the holdings at the override prices, falling back to
// each holding's average price, and stores the result as the portfolio's total value.
func (s *portfolioService) RecalculateValue(portfolioID string, priceOverrides map[string]float64) (float64, error) {
	holdings, err := s.ComputeHoldings(portfolioID)
	if err != nil {
		return 0, err
	}
	total := Valuate(holdings, priceOverrides)

	// Written without re-validation: an over-sold history can value below zero.
	updated, err := s.portfolios.UpdateByID(portfolioID, func(p *models.Portfolio) error {
		p.TotalValue = total
		return nil
	})
	if err != nil {
		return 0, storeErr(err)
	}
	if updated == nil {
		return 0, apperrors.ErrPortfolioNotFound
	}

	s.log.Debugw("portfolio revalued", "portfolio_id", portfolioID, "total_value", total, "holdings", len(holdings))
	return total, nil
}

// RevalueAtMarket recalculates the value using every held asset's current price.
func (s *portfolioService) RevalueAtMarket(portfolioID string) (float64, error) {
	holdings, err := s.ComputeHoldings(portfolioID)
	if err != nil {
		return 0, err
	}
	if len(holdings) == 0 {
		return s.RecalculateValue(portfolioID, nil)
	}

	ids := make([]string, 0, len(holdings))
	for _, h := range holdings {
		ids = append(ids, h.AssetID)
	}
	assets, err := s.assets.FindAll(store.In("id", ids...))
	if err != nil {
		return 0, storeErr(err)
	}
	prices := make(map[string]float64, len(assets))
	for _, a := range assets {
		prices[a.ID] = a.CurrentPrice
	}
	return s.RecalculateValue(portfolioID, prices)
}

// RevalueAll revalues every active portfolio at market. A portfolio that fails is
// logged and counted and does not stop the sweep.
func (s *portfolioService) RevalueAll() (*RevalueReport, error) {
	portfolios, err := s.portfolios.FindAll(store.Eq("isActive", true))
	if err != nil {
		return nil, storeErr(err)
	}

	report := &RevalueReport{}
	for _, p := range portfolios {
		if _, err := s.RevalueAtMarket(p.ID); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", p.ID, err))
			s.log.Errorw("failed to revalue portfolio", "portfolio_id", p.ID, "error", err)
			continue
		}
		report.Revalued++
	}
	s.log.Infow("revaluation sweep complete", "revalued", report.Revalued, "failed", report.Failed)
	return report, nil
}
