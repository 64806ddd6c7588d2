package main

import (
	"github.com/spf13/cobra"

	"github.com/newthinker/cryptodash/internal/journal"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show journal analytics",
	Long: `Show KPIs, weekday performance and strategy distribution for the
journal, optionally narrowed by side, text and date range.`,
	RunE: runStats,
}

func init() {
	addFilterFlags(statsCmd)
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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
	report, err := a.Report(cmd.Context(), f)
	if err != nil {
		return err
	}
	return renderReport(cmd.OutOrStdout(), report, outFormat)
}
