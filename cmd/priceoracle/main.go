// Command priceoracle runs one price oracle cycle: it quotes every active asset
// from Yahoo Finance or CoinGecko and records the quotes through the tradebook
// ingestion API. Schedule it with cron or a Kubernetes CronJob.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tradebook/internal/config"
	"tradebook/internal/logger"
	"tradebook/internal/oracle"
)

func main() {
	log := logger.New(os.Getenv("ENV"))
	defer logger.Sync(log)

	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadOracle()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(cfg.Env).With("component", "oracle")
	defer logger.Sync(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	o := oracle.New(
		oracle.NewClient(cfg.APIURL, cfg.APIKey, httpClient),
		[]oracle.Provider{
			oracle.NewYahooProvider(httpClient),
			oracle.NewCoinGeckoProvider(httpClient),
		},
		cfg.Revalue,
		log,
	)

	result, err := o.Run(ctx)
	if err != nil {
		return err
	}
	log.Infow("oracle run complete",
		"assets", result.AssetsListed,
		"fetched", result.Fetched,
		"recorded", result.Recorded,
		"rejected", result.Rejected,
		"fetch_errors", len(result.Errors),
		"unsupported", result.Unsupported,
		"revalued", result.Revalued,
		"duration", result.Duration,
	)
	return nil
}
