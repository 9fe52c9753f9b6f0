package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/models"
	"tradebook/internal/services"
)

// ingestUserID identifies machine callers admitted by an API key.
const ingestUserID = "price-ingest"

var errIngestNotConfigured = &apperrors.AppError{
	Kind:       apperrors.KindInternal,
	Code:       "INGEST_NOT_CONFIGURED",
	Message:    "Price ingestion is not configured",
	StatusCode: http.StatusServiceUnavailable,
}

// APIKeyAuth admits machine callers that present the configured X-API-Key and
// gives them the analyst role. An unset key disables the routes.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWith(c, errIngestNotConfigured)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWith(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or missing API key"))
			return
		}
		SetIdentity(c, services.Identity{UserID: ingestUserID, Role: models.RoleAnalyst})
		c.Next()
	}
}
