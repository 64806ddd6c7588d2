package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/newthinker/cryptodash/internal/journal"
	"github.com/newthinker/cryptodash/internal/market"
	"github.com/newthinker/cryptodash/internal/market/symbol"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (table, json, yaml)", format)
}

// writeStructured renders v as JSON or YAML. YAML goes through the JSON
// encoding so both formats share field names.
func writeStructured(w io.Writer, v any, format string) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(generic)
}

func renderTrades(w io.Writer, trades []journal.Trade, format string) error {
	if format != formatTable {
		return writeStructured(w, trades, format)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tASSET\tSIDE\tQTY\tENTRY\tEXIT\tFEES\tPNL\tNOTES")
	for _, t := range trades {
		pnl := "open"
		if v, ok := t.PnL(); ok {
			pnl = money(journal.Round2(v))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(t.ID), t.Date, t.Asset, t.Side,
			num(t.Qty), num(t.Entry), optNum(t.Exit), optNum(t.Fees), pnl, t.Notes)
	}
	return tw.Flush()
}

func renderReport(w io.Writer, r journal.Report, format string) error {
	if format != formatTable {
		return writeStructured(w, r, format)
	}

	k := r.KPIs
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Trades\t%d of %d\n", r.Filtered, r.Total)
	fmt.Fprintf(tw, "Closed\t%d (%d wins, %d losses)\n", k.Closed, k.Wins, k.Losses)
	fmt.Fprintf(tw, "Win rate\t%d%%\n", k.WinRate)
	fmt.Fprintf(tw, "Net PnL\t%s\n", money(k.NetPnL))
	fmt.Fprintf(tw, "Gross profit\t%s\n", money(k.GrossProfit))
	fmt.Fprintf(tw, "Gross loss\t%s\n", money(k.GrossLoss))
	fmt.Fprintf(tw, "Profit factor\t%s\n", profitFactor(k.ProfitFactor))
	fmt.Fprintf(tw, "Max drawdown\t%s\n", money(k.MaxDrawdown))
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WEEKDAY\tTRADES\tPNL")
	for _, d := range r.Weekdays {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", d.Label, d.Count, money(d.PnL))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tTRADES")
	for _, s := range r.Strategies {
		fmt.Fprintf(tw, "%s\t%d\n", s.Name, s.Value)
	}
	return tw.Flush()
}

func renderMarket(w io.Writer, snap *market.Snapshot, format string) error {
	if format != formatTable {
		return writeStructured(w, snap, format)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tPRICE\tCHANGE\tSOURCE")
	for _, q := range snap.Quotes {
		fmt.Fprintf(tw, "%s\t%s\t%+.2f%%\t%s\n", symbol.Display(q.Symbol), num(q.Price), q.ChangePercent, q.Source)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if snap.FearGreed != nil {
		fmt.Fprintf(w, "\nFear & Greed: %d (%s)\n", snap.FearGreed.Value, snap.FearGreed.Classification)
	}

	if len(snap.Calendar) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE (UTC)\tEVENT\tCOUNTRY")
		for _, e := range snap.Calendar {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Date.UTC().Format("2006-01-02 15:04"), e.Event, e.Country)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(snap.News) > 0 {
		fmt.Fprintln(w, "\nNews:")
		for _, p := range snap.News {
			if p.Domain != "" {
				fmt.Fprintf(w, "  %s (%s)\n", p.Title, p.Domain)
			} else {
				fmt.Fprintf(w, "  %s\n", p.Title)
			}
		}
	}
	keys := make([]string, 0, len(snap.Errors))
	for key := range snap.Errors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(w, "warning: %s: %s\n", key, snap.Errors[key])
	}
	return nil
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func optNum(f *float64) string {
	if f == nil {
		return "-"
	}
	return num(*f)
}

func money(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func profitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "∞"
	}
	return money(pf)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
