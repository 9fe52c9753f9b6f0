package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/models"
	"tradebook/internal/services"
)

const (
	identityKey = "identity"
	issuer      = "tradebook-api"
)

// JWTClaims represents the claims in the JWT
type JWTClaims struct {
	UserID string      `json:"userId"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies HS256 access tokens.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthenticator returns an Authenticator signing with secret. Tokens live for ttl.
func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken generates an access token carrying the user's id and role.
func (a *Authenticator) GenerateToken(user *models.User) (string, error) {
	now := a.now()
	claims := &JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ParseToken validates tokenString and returns its claims.
func (a *Authenticator) ParseToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// Authenticate verifies the bearer token and stores the caller's identity in the context.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		// Check if the header is in the correct format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWith(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		claims, err := a.ParseToken(parts[1])
		if err != nil {
			abortWith(c, apperrors.ErrInvalidToken)
			return
		}

		SetIdentity(c, services.Identity{UserID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// RequireRole rejects callers whose role is not one of roles. It must run after Authenticate.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			abortWith(c, apperrors.ErrUnauthorized)
			return
		}
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		abortWith(c, apperrors.WithMessage(apperrors.ErrForbidden, "Insufficient permissions"))
	}
}

// SetIdentity stores the authenticated caller on the request context.
func SetIdentity(c *gin.Context, id services.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity stored by Authenticate.
func IdentityFrom(c *gin.Context) (services.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return services.Identity{}, false
	}
	id, ok := v.(services.Identity)
	return id, ok
}

func abortWith(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
