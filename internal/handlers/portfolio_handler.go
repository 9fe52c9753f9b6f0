package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradebook/internal/models"
	"tradebook/internal/services"
)

// PortfolioHandler handles portfolio and valuation requests.
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
	tradeService     services.TradeServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService services.PortfolioServicer, tradeService services.TradeServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService, tradeService: tradeService}
}

// CreatePortfolioRequest represents the request payload for creating a portfolio.
type CreatePortfolioRequest struct {
	Name              string             `json:"name" binding:"required,max=200"`
	Description       string             `json:"description" binding:"max=1000"`
	Currency          string             `json:"currency" binding:"omitempty,iso4217"`
	RiskProfile       models.RiskProfile `json:"riskProfile" binding:"omitempty,risk_profile"`
	InitialInvestment float64            `json:"initialInvestment" binding:"gte=0"`
}

// UpdatePortfolioRequest represents the request payload for updating a portfolio.
type UpdatePortfolioRequest struct {
	Name              *string             `json:"name" binding:"omitempty,min=1,max=200"`
	Description       *string             `json:"description" binding:"omitempty,max=1000"`
	Currency          *string             `json:"currency" binding:"omitempty,iso4217"`
	RiskProfile       *models.RiskProfile `json:"riskProfile" binding:"omitempty,risk_profile"`
	InitialInvestment *float64            `json:"initialInvestment" binding:"omitempty,gte=0"`
	IsActive          *bool               `json:"isActive"`
}

// RecalculateRequest represents the request payload for revaluing a portfolio.
// AtMarket values the holdings at the assets' current prices; otherwise
// PriceOverrides are applied over the average purchase prices.
type RecalculateRequest struct {
	PriceOverrides map[string]float64 `json:"priceOverrides"`
	AtMarket       bool               `json:"atMarket"`
}

// ValueResponse reports a freshly computed portfolio value.
type ValueResponse struct {
	PortfolioID string  `json:"portfolioId"`
	TotalValue  float64 `json:"totalValue"`
}

// ListPortfolios handles listing portfolios. Admins see every portfolio and may
// narrow the list with userId; everyone else sees their own.
// @Summary     List portfolios
// @Tags        portfolios
// @Produce     json
// @Security    BearerAuth
// @Param       userId query string false "Owner filter (admin only)"
// @Success     200 {array} models.Portfolio
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /portfolios [get]
func (h *PortfolioHandler) ListPortfolios(c *gin.Context) {
	id, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	owner := id.UserID
	if id.IsAdmin() {
		owner = c.Query("userId")
	}
	portfolios, err := h.portfolioService.ListPortfolios(owner)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolios": portfolios})
}

// CreatePortfolio handles creating a portfolio owned by the caller.
// @Summary     Create portfolio
// @Tags        portfolios
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePortfolioRequest true "Portfolio data"
// @Success     201 {object} models.Portfolio
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /portfolios [post]
func (h *PortfolioHandler) CreatePortfolio(c *gin.Context) {
	id, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePortfolioRequest
	if !bindJSON(c, &req) {
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(services.CreatePortfolioInput{
		UserID:            id.UserID,
		Name:              req.Name,
		Description:       req.Description,
		Currency:          req.Currency,
		RiskProfile:       req.RiskProfile,
		InitialInvestment: req.InitialInvestment,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"portfolio": portfolio})
}

// GetPortfolio handles retrieving a portfolio with its holdings.
// @Summary     Get portfolio
// @Tags        portfolios
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Portfolio ID"
// @Success     200 {object} services.PortfolioWithHoldings
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /portfolios/{id} [get]
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	if _, ok := h.authorize(c); !ok {
		return
	}

	portfolio, err := h.portfolioService.GetPortfolioWithHoldings(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolio": portfolio})
}

// UpdatePortfolio handles updating a portfolio.
// @Summary     Update portfolio
// @Tags        portfolios
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                 true "Portfolio ID"
// @Param       request body UpdatePortfolioRequest true "Fields to change"
// @Success     200 {object} models.Portfolio
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /portfolios/{id} [put]
func (h *PortfolioHandler) UpdatePortfolio(c *gin.Context) {
	if _, ok := h.authorize(c); !ok {
		return
	}

	var req UpdatePortfolioRequest
	if !bindJSON(c, &req) {
		return
	}

	portfolio, err := h.portfolioService.UpdatePortfolio(c.Param("id"), models.PortfolioPatch{
		Name:              req.Name,
		Description:       req.Description,
		Currency:          req.Currency,
		RiskProfile:       req.RiskProfile,
		InitialInvestment: req.InitialInvestment,
		IsActive:          req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolio": portfolio})
}

// DeletePortfolio handles deleting a portfolio without trades.
// @Summary     Delete portfolio
// @Tags        portfolios
// @Security    BearerAuth
// @Param       id path string true "Portfolio ID"
// @Success     204
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Failure     409 {object} ErrorResponse "Portfolio has trades"
// @Router      /portfolios/{id} [delete]
func (h *PortfolioHandler) DeletePortfolio(c *gin.Context) {
	if _, ok := h.authorize(c); !ok {
		return
	}

	if err := h.portfolioService.DeletePortfolio(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetHoldings handles listing a portfolio's derived holdings.
// @Summary     Get portfolio holdings
// @Tags        portfolios
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Portfolio ID"
// @Success     200 {array} models.Holding
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /portfolios/{id}/holdings [get]
func (h *PortfolioHandler) GetHoldings(c *gin.Context) {
	if _, ok := h.authorize(c); !ok {
		return
	}

	holdings, err := h.portfolioService.ComputeHoldings(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"holdings": holdings})
}

// RevalueAll handles revaluing every active portfolio at market prices.
// @Summary     Revalue all portfolios
// @Tags        ingest
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} services.RevalueReport
// @Failure     503 {object} ErrorResponse "Ingestion not configured"
// @Router      /ingest/revalue [post]
func (h *PortfolioHandler) RevalueAll(c *gin.Context) {
	report, err := h.portfolioService.RevalueAll()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Recalculate handles revaluing a portfolio and caching its total value.
// @Summary     Recalculate portfolio value
// @Tags        portfolios
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true  "Portfolio ID"
// @Param       request body RecalculateRequest false "Price overrides"
// @Success     200 {object} ValueResponse
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /portfolios/{id}/recalculate [post]
func (h *PortfolioHandler) Recalculate(c *gin.Context) {
	if _, ok := h.authorize(c); !ok {
		return
	}

	var req RecalculateRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	portfolioID := c.Param("id")
	var (
		value float64
		err   error
	)
	if req.AtMarket {
		value, err = h.portfolioService.RevalueAtMarket(portfolioID)
	} else {
		value, err = h.portfolioService.RecalculateValue(portfolioID, req.PriceOverrides)
	}
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ValueResponse{PortfolioID: portfolioID, TotalValue: value})
}

// ListTrades handles listing every trade of a portfolio.
// @Summary     List portfolio trades
// @Tags        portfolios
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Portfolio ID"
// @Success     200 {array} models.Trade
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /portfolios/{id}/trades [get]
func (h *PortfolioHandler) ListTrades(c *gin.Context) {
	if _, ok := h.authorize(c); !ok {
		return
	}

	trades, err := h.tradeService.ListPortfolioTrades(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

// authorize loads the portfolio named by the id path parameter and checks the
// caller may act on it. It answers the request itself when it returns false.
func (h *PortfolioHandler) authorize(c *gin.Context) (*models.Portfolio, bool) {
	id, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	portfolio, err := ownedPortfolio(h.portfolioService, id, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	return portfolio, true
}

