// Package server assembles the HTTP surface of the tradebook API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "tradebook/internal/docs" // Import swagger docs
	"tradebook/internal/handlers"
	"tradebook/internal/middleware"
	"tradebook/internal/models"
	"tradebook/internal/services"
)

// Deps holds everything the router wires into handlers.
type Deps struct {
	Log        *zap.SugaredLogger
	Auth       *middleware.Authenticator
	Users      services.UserServicer
	Assets     services.AssetServicer
	Portfolios services.PortfolioServicer
	Trades     services.TradeServicer

	CORSOrigin        string
	PriceIngestAPIKey string
}

// NewRouter builds the Gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	authHandler := handlers.NewAuthHandler(d.Users, d.Auth)
	userHandler := handlers.NewUserHandler(d.Users)
	assetHandler := handlers.NewAssetHandler(d.Assets)
	portfolioHandler := handlers.NewPortfolioHandler(d.Portfolios, d.Trades)
	tradeHandler := handlers.NewTradeHandler(d.Trades, d.Portfolios)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging(d.Log))
	router.Use(middleware.ErrorHandler(d.Log))
	router.Use(cors(d.CORSOrigin))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	assetsPublic := v1.Group("/assets")
	assetsPublic.GET("", assetHandler.ListAssets)
	assetsPublic.GET("/symbol/:symbol", assetHandler.GetAssetBySymbol)
	assetsPublic.GET("/:id", assetHandler.GetAsset)

	// Machine price ingestion
	ingest := v1.Group("/ingest", middleware.APIKeyAuth(d.PriceIngestAPIKey))
	ingest.POST("/prices", assetHandler.BulkUpdatePrices)
	ingest.POST("/revalue", portfolioHandler.RevalueAll)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(d.Auth.Authenticate())

	protected.GET("/profile", authHandler.GetProfile)

	users := protected.Group("/users", middleware.RequireRole(models.RoleAdmin))
	users.GET("", userHandler.ListUsers)
	users.GET("/:id", userHandler.GetUser)
	users.PUT("/:id", userHandler.UpdateUser)
	users.DELETE("/:id", userHandler.DeleteUser)

	assets := protected.Group("/assets")
	managers := middleware.RequireRole(models.RoleAdmin, models.RoleAnalyst)
	assets.POST("", managers, assetHandler.CreateAsset)
	assets.POST("/prices/bulk", managers, assetHandler.BulkUpdatePrices)
	assets.PUT("/:id", managers, assetHandler.UpdateAsset)
	assets.PUT("/:id/price", managers, assetHandler.UpdatePrice)
	assets.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), assetHandler.DeleteAsset)

	portfolios := protected.Group("/portfolios")
	portfolios.GET("", portfolioHandler.ListPortfolios)
	portfolios.POST("", portfolioHandler.CreatePortfolio)
	portfolios.GET("/:id", portfolioHandler.GetPortfolio)
	portfolios.PUT("/:id", portfolioHandler.UpdatePortfolio)
	portfolios.DELETE("/:id", portfolioHandler.DeletePortfolio)
	portfolios.GET("/:id/holdings", portfolioHandler.GetHoldings)
	portfolios.POST("/:id/recalculate", portfolioHandler.Recalculate)
	portfolios.GET("/:id/trades", portfolioHandler.ListTrades)

	trades := protected.Group("/trades")
	trades.GET("", tradeHandler.ListTrades)
	trades.POST("", tradeHandler.CreateTrade)
	trades.GET("/statistics", tradeHandler.Statistics)
	trades.GET("/:id", tradeHandler.GetTrade)
	trades.PUT("/:id", tradeHandler.UpdateTrade)
	trades.DELETE("/:id", tradeHandler.DeleteTrade)
	trades.POST("/:id/execute", tradeHandler.ExecuteTrade)
	trades.POST("/:id/cancel", tradeHandler.CancelTrade)

	return router
}

// cors answers preflight requests and allows origin.
func cors(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
