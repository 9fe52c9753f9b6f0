package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradebook/internal/models"
	"tradebook/internal/services"
)

// TradeHandler handles trade ledger requests.
type TradeHandler struct {
	tradeService     services.TradeServicer
	portfolioService services.PortfolioServicer
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradeService services.TradeServicer, portfolioService services.PortfolioServicer) *TradeHandler {
	return &TradeHandler{tradeService: tradeService, portfolioService: portfolioService}
}

// CreateTradeRequest represents the request payload for recording a trade.
type CreateTradeRequest struct {
	PortfolioID string           `json:"portfolioId" binding:"required"`
	AssetID     string           `json:"assetId" binding:"required"`
	Type        models.TradeType `json:"type" binding:"required,trade_type"`
	Quantity    float64          `json:"quantity" binding:"required,gt=0"`
	Price       *float64         `json:"price" binding:"omitempty,gt=0"`
	Notes       string           `json:"notes" binding:"max=1000"`
}

// UpdateTradeRequest represents the request payload for updating a trade.
type UpdateTradeRequest struct {
	Type     *models.TradeType   `json:"type" binding:"omitempty,trade_type"`
	Quantity *float64            `json:"quantity" binding:"omitempty,gt=0"`
	Price    *float64            `json:"price" binding:"omitempty,gt=0"`
	Status   *models.TradeStatus `json:"status" binding:"omitempty,trade_status"`
	Notes    *string             `json:"notes" binding:"omitempty,max=1000"`
}

// ListTradesQuery represents the query parameters for listing trades.
type ListTradesQuery struct {
	PortfolioID string              `form:"portfolioId"`
	AssetID     *string             `form:"assetId"`
	Status      *models.TradeStatus `form:"status" binding:"omitempty,trade_status"`
	Type        *models.TradeType   `form:"type" binding:"omitempty,trade_type"`
}

// ListTrades handles listing trades. Non-admin callers only see trades of
// their own portfolios.
// @Summary     List trades
// @Tags        trades
// @Produce     json
// @Security    BearerAuth
// @Param       portfolioId query string false "Portfolio ID"
// @Param       assetId     query string false "Asset ID"
// @Param       status      query string false "Trade status"
// @Param       type        query string false "Trade type"
// @Success     200 {array} models.Trade
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Router      /trades [get]
func (h *TradeHandler) ListTrades(c *gin.Context) {
	var query ListTradesQuery
	if !bindQuery(c, &query) {
		return
	}

	scope, ok := h.scope(c, query.PortfolioID)
	if !ok {
		return
	}

	trades, err := h.tradeService.ListTrades(services.TradeFilter{
		PortfolioIDs: scope,
		AssetID:      query.AssetID,
		Status:       query.Status,
		Type:         query.Type,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

// CreateTrade handles recording a pending trade.
// @Summary     Create trade
// @Description Record a pending trade. The price defaults to the asset's current price.
// @Tags        trades
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTradeRequest true "Trade data"
// @Success     201 {object} models.Trade
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Portfolio or asset not found"
// @Router      /trades [post]
func (h *TradeHandler) CreateTrade(c *gin.Context) {
	id, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTradeRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := ownedPortfolio(h.portfolioService, id, req.PortfolioID); err != nil {
		respondWithError(c, err)
		return
	}

	trade, err := h.tradeService.CreateTrade(services.CreateTradeInput{
		PortfolioID: req.PortfolioID,
		AssetID:     req.AssetID,
		Type:        req.Type,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Notes:       req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"trade": trade})
}

// GetTrade handles retrieving a trade.
// @Summary     Get trade
// @Tags        trades
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Trade ID"
// @Success     200 {object} models.Trade
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Trade not found"
// @Router      /trades/{id} [get]
func (h *TradeHandler) GetTrade(c *gin.Context) {
	trade, ok := h.authorize(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

// UpdateTrade handles updating a trade that has not been executed.
// @Summary     Update trade
// @Tags        trades
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Trade ID"
// @Param       request body UpdateTradeRequest true "Fields to change"
// @Success     200 {object} models.Trade
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Trade not found"
// @Failure     409 {object} ErrorResponse "Trade executed or invalid transition"
// @Router      /trades/{id} [put]
func (h *TradeHandler) UpdateTrade(c *gin.Context) {
	if _, ok := h.authorize(c); !ok {
		return
	}

	var req UpdateTradeRequest
	if !bindJSON(c, &req) {
		return
	}

	trade, err := h.tradeService.UpdateTrade(c.Param("id"), models.TradePatch{
		Type:     req.Type,
		Quantity: req.Quantity,
		Price:    req.Price,
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

// DeleteTrade handles deleting a trade that has not been executed.
// @Summary     Delete trade
// @Tags        trades
// @Security    BearerAuth
// @Param       id path string true "Trade ID"
// @Success     204
// @Failure     404 {object} ErrorResponse "Trade not found"
// @Failure     409 {object} ErrorResponse "Trade executed"
// @Router      /trades/{id} [delete]
func (h *TradeHandler) DeleteTrade(c *gin.Context) {
	if _, ok := h.authorize(c); !ok {
		return
	}

	if err := h.tradeService.DeleteTrade(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExecuteTrade handles executing a pending trade.
// @Summary     Execute trade
// @Tags        trades
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Trade ID"
// @Success     200 {object} models.Trade
// @Failure     404 {object} ErrorResponse "Trade not found"
// @Failure     409 {object} ErrorResponse "Trade is not pending"
// @Failure     422 {object} ErrorResponse "Insufficient holdings"
// @Router      /trades/{id}/execute [post]
func (h *TradeHandler) ExecuteTrade(c *gin.Context) {
	if _, ok := h.authorize(c); !ok {
		return
	}

	trade, err := h.tradeService.ExecuteTrade(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

// CancelTrade handles cancelling a trade that has not been executed.
// @Summary     Cancel trade
// @Tags        trades
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Trade ID"
// @Success     200 {object} models.Trade
// @Failure     404 {object} ErrorResponse "Trade not found"
// @Failure     409 {object} ErrorResponse "Trade executed"
// @Router      /trades/{id}/cancel [post]
func (h *TradeHandler) CancelTrade(c *gin.Context) {
	if _, ok := h.authorize(c); !ok {
		return
	}

	trade, err := h.tradeService.CancelTrade(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

// Statistics handles summarizing trades. Without portfolioId, admins get the
// whole ledger and everyone else the sum over their own portfolios.
// @Summary     Trade statistics
// @Tags        trades
// @Produce     json
// @Security    BearerAuth
// @Param       portfolioId query string false "Portfolio ID"
// @Success     200 {object} services.TradeStatistics
// @Failure     403 {object} ErrorResponse "Access denied"
// @Failure     404 {object} ErrorResponse "Portfolio not found"
// @Router      /trades/statistics [get]
func (h *TradeHandler) Statistics(c *gin.Context) {
	scope, ok := h.scope(c, c.Query("portfolioId"))
	if !ok {
		return
	}

	if scope == nil {
		stats, err := h.tradeService.Statistics("")
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"statistics": stats})
		return
	}

	parts := make([]*services.TradeStatistics, 0, len(scope))
	for _, portfolioID := range scope {
		stats, err := h.tradeService.Statistics(portfolioID)
		if err != nil {
			respondWithError(c, err)
			return
		}
		parts = append(parts, stats)
	}
	c.JSON(http.StatusOK, gin.H{"statistics": services.MergeStatistics(parts...)})
}

// scope resolves the portfolios a listing may cover. A nil result means the
// whole ledger and is only returned to admins without a portfolio filter.
func (h *TradeHandler) scope(c *gin.Context, portfolioID string) ([]string, bool) {
	id, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}

	if portfolioID != "" {
		if _, err := ownedPortfolio(h.portfolioService, id, portfolioID); err != nil {
			respondWithError(c, err)
			return nil, false
		}
		return []string{portfolioID}, true
	}
	if id.IsAdmin() {
		return nil, true
	}

	portfolios, err := h.portfolioService.ListPortfolios(id.UserID)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	ids := make([]string, 0, len(portfolios))
	for i := range portfolios {
		ids = append(ids, portfolios[i].ID)
	}
	return ids, true
}

// authorize loads the trade named by the id path parameter and checks the
// caller may act on its portfolio. It answers the request itself when it
// returns false.
func (h *TradeHandler) authorize(c *gin.Context) (*models.Trade, bool) {
	id, err := getIdentity(c)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	trade, err := ownedTrade(h.tradeService, h.portfolioService, id, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	return trade, true
}
