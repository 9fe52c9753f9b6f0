package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tradebook/internal/models"
	"tradebook/internal/services"
)

type opener func() (*app, error)

func assetsCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Inspect the asset ledger",
	}

	var assetType string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			var filter services.AssetFilter
			if assetType != "" {
				t := models.AssetType(assetType)
				filter.Type = &t
			}
			assets, err := a.assets.ListAssets(filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSYMBOL\tTYPE\tPRICE\tCURRENCY\tACTIVE")
			for _, asset := range assets {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\t%v\n",
					asset.ID, asset.Symbol, asset.Type, asset.CurrentPrice, asset.Currency, asset.IsActive)
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&assetType, "type", "", "Only list assets of this type")

	cmd.AddCommand(listCmd)
	return cmd
}

// priceFile is the YAML layout accepted by `prices import`.
type priceFile struct {
	Prices []services.PriceUpdate `yaml:"prices"`
}

func loadPriceFile(path string) ([]services.PriceUpdate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file priceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(file.Prices) == 0 {
		return nil, fmt.Errorf("%s lists no prices", path)
	}
	return file.Prices, nil
}

func pricesCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Manage asset prices",
	}

	importCmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Apply a YAML file of price updates",
		Long: `Apply a YAML file of price updates. Each entry names an asset by
assetId or symbol:

  prices:
    - symbol: ABC
      price: 12.5
    - assetId: 0190c1d2-...
      price: 101`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := loadPriceFile(args[0])
			if err != nil {
				return err
			}
			a, err := open()
			if err != nil {
				return err
			}

			failed := 0
			for i, r := range a.assets.BulkUpdatePrices(updates) {
				name := updates[i].Symbol
				if name == "" {
					name = updates[i].AssetID
				}
				if !r.Success {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %s\n", name, r.Error)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK   %s: %v\n", name, r.Asset.CurrentPrice)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d price updates failed", failed, len(updates))
			}
			return nil
		},
	}

	cmd.AddCommand(importCmd)
	return cmd
}

func portfoliosCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolios",
		Short: "Value portfolios",
	}

	var market bool
	revalueCmd := &cobra.Command{
		Use:   "revalue [portfolio-id...]",
		Short: "Recalculate and store portfolio values",
		Long: `Recalculate and store portfolio values. Without ids every active
portfolio is revalued at market prices.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				report, err := a.portfolios.RevalueAll()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "revalued %d portfolios, %d failed\n", report.Revalued, report.Failed)
				for _, e := range report.Errors {
					fmt.Fprintln(cmd.OutOrStdout(), "  "+e)
				}
				if report.Failed > 0 {
					return errors.New("revaluation finished with failures")
				}
				return nil
			}

			for _, id := range args {
				var value float64
				if market {
					value, err = a.portfolios.RevalueAtMarket(id)
				} else {
					value, err = a.portfolios.RecalculateValue(id, nil)
				}
				if err != nil {
					return fmt.Errorf("portfolio %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\n", id, value)
			}
			return nil
		},
	}
	revalueCmd.Flags().BoolVar(&market, "market", false, "Value named portfolios at current asset prices instead of average cost")

	cmd.AddCommand(revalueCmd)
	return cmd
}

func tradesCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Inspect the trade ledger",
	}

	var portfolioID string
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize trades by status and type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			if portfolioID != "" {
				if _, err := a.portfolios.GetPortfolio(portfolioID); err != nil {
					return err
				}
			}
			stats, err := a.trades.Statistics(portfolioID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "total\t%d\n", stats.Total)
			fmt.Fprintf(w, "executed\t%d\n", stats.Executed)
			fmt.Fprintf(w, "volume\t%v\n", stats.TotalVolume)
			fmt.Fprintf(w, "buy\t%d\n", stats.ByType.Buy)
			fmt.Fprintf(w, "sell\t%d\n", stats.ByType.Sell)
			for _, status := range []models.TradeStatus{models.TradePending, models.TradeExecuted, models.TradeCancelled, models.TradeFailed} {
				fmt.Fprintf(w, "%s\t%d\n", status, stats.ByStatus[status])
			}
			return w.Flush()
		},
	}
	statsCmd.Flags().StringVar(&portfolioID, "portfolio", "", "Only summarize trades of this portfolio")

	cmd.AddCommand(statsCmd)
	return cmd
}
