package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newthinker/cryptodash/internal/journal"
)

var (
	tradeDate  string
	tradeAsset string
	tradeSide  string
	tradeQty   float64
	tradeEntry float64
	tradeExit  float64
	tradeFees  float64
	tradeNotes string

	filterSide  string
	filterQuery string
	filterFrom  string
	filterTo    string
	outFormat   string
)

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "Manage journal trades",
}

var tradesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a trade",
	Long: `Record a trade in the journal. Leave --exit unset for an open position.
The date defaults to now.`,
	RunE: runTradesAdd,
}

var tradesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades, newest first",
	RunE:  runTradesList,
}

var tradesRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradesRm,
}

func init() {
	f := tradesAddCmd.Flags()
	f.StringVar(&tradeDate, "date", "", "trade date, RFC3339 or YYYY-MM-DD (default now)")
	f.StringVar(&tradeAsset, "asset", "", "asset or pair, e.g. BTCUSDT (required)")
	f.StringVar(&tradeSide, "side", "LONG", "LONG or SHORT")
	f.Float64Var(&tradeQty, "qty", 0, "position size (required)")
	f.Float64Var(&tradeEntry, "entry", 0, "entry price (required)")
	f.Float64Var(&tradeExit, "exit", 0, "exit price; omit for an open position")
	f.Float64Var(&tradeFees, "fees", 0, "total fees")
	f.StringVar(&tradeNotes, "notes", "", "free text, used for strategy tagging")
	tradesAddCmd.MarkFlagRequired("asset")
	tradesAddCmd.MarkFlagRequired("qty")
	tradesAddCmd.MarkFlagRequired("entry")

	addFilterFlags(tradesListCmd)

	tradesCmd.AddCommand(tradesAddCmd, tradesListCmd, tradesRmCmd)
	rootCmd.AddCommand(tradesCmd)
}

func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&filterSide, "side", "ALL", "LONG, SHORT or ALL")
	f.StringVarP(&filterQuery, "query", "q", "", "case-insensitive match on asset or notes")
	f.StringVar(&filterFrom, "from", "", "first day, YYYY-MM-DD")
	f.StringVar(&filterTo, "to", "", "last day, YYYY-MM-DD")
	f.StringVarP(&outFormat, "output", "o", formatTable, "output format: table, json or yaml")
}

func tradeFromFlags(cmd *cobra.Command) journal.Trade {
	t := journal.Trade{
		Date:  tradeDate,
		Asset: tradeAsset,
		Side:  journal.Side(tradeSide),
		Qty:   tradeQty,
		Entry: tradeEntry,
		Notes: tradeNotes,
	}
	if cmd.Flags().Changed("exit") {
		t.Exit = journal.Float(tradeExit)
	}
	if cmd.Flags().Changed("fees") {
		t.Fees = journal.Float(tradeFees)
	}
	return t
}

func runTradesAdd(cmd *cobra.Command, args []string) error {
	a, _, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.RecordTrade(cmd.Context(), tradeFromFlags(cmd))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "recorded %s %s %s\n", t.ID, t.Side, t.Asset)
	return nil
}

func runTradesList(cmd *cobra.Command, args []string) error {
	if err := checkFormat(outFormat); err != nil {
		return err
	}
	a, _, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := journal.ParseFilter(filterSide, filterQuery, filterFrom, filterTo, a.Location())
	if err != nil {
		return err
	}
	trades, err := a.Trades(cmd.Context(), f)
	if err != nil {
		return err
	}
	return renderTrades(cmd.OutOrStdout(), trades, outFormat)
}

func runTradesRm(cmd *cobra.Command, args []string) error {
	a, _, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.DeleteTrade(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}
