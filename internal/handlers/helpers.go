package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/middleware"
	"tradebook/internal/models"
	"tradebook/internal/services"
	"tradebook/internal/validator"
)

// getIdentity extracts the authenticated caller from the Gin context.
// Returns ErrUnauthorized if not present.
func getIdentity(c *gin.Context) (services.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.UserID == "" {
		return services.Identity{}, apperrors.ErrUnauthorized
	}
	return id, nil
}

// respondWithError hands err to the ErrorHandler middleware, which renders the
// JSON error envelope, and stops the handler chain.
func respondWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// bindJSON binds the request body into req, answering with a validation error on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondWithError(c, validator.BindingError(err))
		return false
	}
	return true
}

// bindQuery binds query parameters into req, answering with a validation error on failure.
func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondWithError(c, validator.BindingError(err))
		return false
	}
	return true
}

// ownedPortfolio loads a portfolio the caller may act on: admins may act on any
// portfolio, everyone else only on their own.
func ownedPortfolio(portfolios services.PortfolioServicer, id services.Identity, portfolioID string) (*models.Portfolio, error) {
	portfolio, err := portfolios.GetPortfolio(portfolioID)
	if err != nil {
		return nil, err
	}
	if !id.IsAdmin() && portfolio.UserID != id.UserID {
		return nil, apperrors.ErrForbidden
	}
	return portfolio, nil
}

// ownedTrade loads a trade whose portfolio the caller may act on.
func ownedTrade(trades services.TradeServicer, portfolios services.PortfolioServicer, id services.Identity, tradeID string) (*models.Trade, error) {
	trade, err := trades.GetTrade(tradeID)
	if err != nil {
		return nil, err
	}
	if id.IsAdmin() {
		return trade, nil
	}
	if _, err := ownedPortfolio(portfolios, id, trade.PortfolioID); err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, err
	}
	return trade, nil
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code       string                `json:"code"`
	Message    string                `json:"message"`
	Violations []apperrors.Violation `json:"violations,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
