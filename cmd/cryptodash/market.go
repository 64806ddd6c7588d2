package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var marketFormat string

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Fetch the market overview once",
	RunE:  runMarket,
}

func init() {
	marketCmd.Flags().StringVarP(&marketFormat, "output", "o", formatTable, "output format: table, json or yaml")
	rootCmd.AddCommand(marketCmd)
}

func runMarket(cmd *cobra.Command, args []string) error {
	if err := checkFormat(marketFormat); err != nil {
		return err
	}
	a, cfg, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !cfg.Market.Enabled {
		return fmt.Errorf("market data is disabled in config")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	snap, err := a.RefreshMarket(ctx)
	if err != nil {
		return err
	}
	return renderMarket(cmd.OutOrStdout(), snap, marketFormat)
}
