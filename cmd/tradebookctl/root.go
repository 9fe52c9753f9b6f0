package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tradebook/internal/logger"
	"tradebook/internal/services"
	"tradebook/internal/store"
	"tradebook/internal/validator"
)

// app holds the services a command runs against.
type app struct {
	log        *zap.SugaredLogger
	assets     services.AssetServicer
	portfolios services.PortfolioServicer
	trades     services.TradeServicer
}

func openApp(dataDir string, verbose bool) (*app, error) {
	log := logger.Nop()
	if verbose {
		log = logger.New("development")
	}

	db, err := store.Open(store.Options{Dir: dataDir, Logger: log})
	if err != nil {
		return nil, err
	}
	v := validator.New()
	assets := services.NewAssetService(db, v, log)
	portfolios := services.NewPortfolioService(db, v, log)
	return &app{
		log:        log,
		assets:     assets,
		portfolios: portfolios,
		trades:     services.NewTradeService(db, assets, portfolios, v, log),
	}, nil
}

func newRootCmd() *cobra.Command {
	var (
		dataDir string
		verbose bool
	)

	defaultDir := os.Getenv("DATA_DIR")
	if defaultDir == "" {
		defaultDir = "./data"
	}

	rootCmd := &cobra.Command{
		Use:           "tradebookctl",
		Short:         "Operate on a tradebook data directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", defaultDir, "Directory holding the collection files (defaults to DATA_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log store and service activity")

	open := func() (*app, error) { return openApp(dataDir, verbose) }

	rootCmd.AddCommand(assetsCmd(open))
	rootCmd.AddCommand(pricesCmd(open))
	rootCmd.AddCommand(portfoliosCmd(open))
	rootCmd.AddCommand(tradesCmd(open))
	return rootCmd
}
