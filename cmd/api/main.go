package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradebook/internal/config"
	"tradebook/internal/logger"
	"tradebook/internal/middleware"
	"tradebook/internal/scheduler"
	"tradebook/internal/server"
	"tradebook/internal/services"
	"tradebook/internal/store"
	"tradebook/internal/validator"
)

// @title           Tradebook API
// @version         1.0
// @description     Tradebook keeps investment records: an asset ledger, portfolios valued from their executed trades, and a trade ledger with a small state machine.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	// Initialize logger (use ENV var if available, default to development)
	log := logger.New(os.Getenv("ENV"))
	defer logger.Sync(log)

	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(appConfig.Env)
	defer logger.Sync(log)

	// Open the document store
	db, err := store.Open(store.Options{Dir: appConfig.DataDir, Logger: log.With("component", "store")})
	if err != nil {
		return fmt.Errorf("failed to open data store: %w", err)
	}

	// Initialize services
	validator.Register()
	v := validator.New()
	userService := services.NewUserService(db, v, log, 0)
	assetService := services.NewAssetService(db, v, log, services.WithPriceHistoryLimit(appConfig.PriceHistoryLimit))
	portfolioService := services.NewPortfolioService(db, v, log)
	tradeService := services.NewTradeService(db, assetService, portfolioService, v, log)

	// Background revaluation
	sched := scheduler.New(log)
	if appConfig.RevalueSchedule != "" {
		if err := sched.AddJob(appConfig.RevalueSchedule, scheduler.NewRevalueJob(portfolioService, log)); err != nil {
			return fmt.Errorf("invalid REVALUE_SCHEDULE %q: %w", appConfig.RevalueSchedule, err)
		}
	}
	sched.Start()
	defer sched.Stop()

	router := server.NewRouter(server.Deps{
		Log:               log,
		Auth:              middleware.NewAuthenticator(appConfig.JWTSecret, appConfig.JWTExpirationDur),
		Users:             userService,
		Assets:            assetService,
		Portfolios:        portfolioService,
		Trades:            tradeService,
		CORSOrigin:        appConfig.CORSOrigin,
		PriceIngestAPIKey: appConfig.PriceIngestAPIKey,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Tradebook server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
