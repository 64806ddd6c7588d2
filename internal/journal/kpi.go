package journal

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// EquityPoint is one step of the cumulative realized P&L curve.
type EquityPoint struct {
	Date   string  `json:"date"`
	Equity float64 `json:"equity"`
}

// KPIs summarizes the closed trades of a journal snapshot.
type KPIs struct {
	Closed       int     `json:"closed"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      int     `json:"winrate"`
	NetPnL       float64 `json:"netPnl"`
	GrossProfit  float64 `json:"grossProfit"`
	GrossLoss    float64 `json:"grossLoss"`
	ProfitFactor float64 `json:"profitFactor"`
	// MaxDrawdown is the deepest fall below the running peak, always <= 0.
	MaxDrawdown float64       `json:"maxDrawdown"`
	Equity      []EquityPoint `json:"equity"`
}

// MarshalJSON writes an infinite profit factor as the string "Infinity",
// since JSON has no representation for it.
func (k KPIs) MarshalJSON() ([]byte, error) {
	type plain KPIs
	var pf any = k.ProfitFactor
	if math.IsInf(k.ProfitFactor, 1) {
		pf = "Infinity"
	}
	return json.Marshal(struct {
		plain
		ProfitFactor any `json:"profitFactor"`
	}{plain(k), pf})
}

// ComputeKPIs derives win rate, profit factor, drawdown and the equity curve
// from the closed trades in the input. Equity dates are rendered in loc
// (nil means local time).
func ComputeKPIs(trades []Trade, loc *time.Location) KPIs {
	loc = locOrLocal(loc)

	closed := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsClosed() {
			closed = append(closed, t)
		}
	}

	k := KPIs{Closed: len(closed), Equity: []EquityPoint{}}
	for _, t := range closed {
		pnl, _ := t.PnL()
		if t.IsWin() {
			k.Wins++
		}
		if pnl > 0 {
			k.GrossProfit += pnl
		} else if pnl < 0 {
			k.GrossLoss += pnl
		}
		k.NetPnL += pnl
	}
	k.Losses = k.Closed - k.Wins

	if k.Closed > 0 {
		k.WinRate = int(math.Round(float64(k.Wins) / float64(k.Closed) * 100))
	}

	switch {
	case k.GrossLoss != 0:
		k.ProfitFactor = k.GrossProfit / math.Abs(k.GrossLoss)
	case k.GrossProfit > 0:
		k.ProfitFactor = math.Inf(1)
	}

	sortByDate(closed)
	var equity, peak float64
	for _, t := range closed {
		pnl, _ := t.PnL()
		equity += pnl
		if equity > peak {
			peak = equity
		}
		if dd := equity - peak; dd < k.MaxDrawdown {
			k.MaxDrawdown = dd
		}
		k.Equity = append(k.Equity, EquityPoint{
			Date:   displayDate(t, loc),
			Equity: Round2(equity),
		})
	}

	return k
}

// sortByDate orders trades by parsed date, oldest first. Trades with
// unparseable dates keep their relative order and go last.
func sortByDate(trades []Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		ti, okI := trades[i].Time()
		tj, okJ := trades[j].Time()
		switch {
		case okI && okJ:
			return ti.Before(tj)
		case okI:
			return true
		default:
			return false
		}
	})
}

func displayDate(t Trade, loc *time.Location) string {
	ts, ok := t.Time()
	if !ok {
		return ""
	}
	return ts.In(loc).Format(DayLayout)
}

// Round2 rounds half away from zero to two decimal places. NaN and infinities
// pass through unchanged.
func Round2(f float64) float64 {
	if !finite(f) {
		return f
	}
	r, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return r
}
