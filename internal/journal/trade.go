// Package journal holds the trade model and the pure analytics computed over a
// journal snapshot: filtering, KPIs, weekday performance and strategy tags.
package journal

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/newthinker/cryptodash/internal/core"
)

// Side is the direction of a position
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
	// SideAll is only meaningful in a Filter.
	SideAll Side = "ALL"
)

// Trade is a single journal entry. Exit is nil while the position is open.
type Trade struct {
	ID    string   `json:"id"`
	Date  string   `json:"date"`
	Asset string   `json:"asset"`
	Side  Side     `json:"side"`
	Qty   float64  `json:"qty"`
	Entry float64  `json:"entry"`
	Exit  *float64 `json:"exit,omitempty"`
	Fees  *float64 `json:"fees,omitempty"`
	Notes string   `json:"notes,omitempty"`
}

// IsClosed reports whether the trade has an exit price
func (t Trade) IsClosed() bool {
	return t.Exit != nil
}

// Direction is +1 for LONG and -1 for anything else.
func (t Trade) Direction() float64 {
	if t.Side == SideLong {
		return 1
	}
	return -1
}

// FeesOrZero returns the recorded fees, 0 when absent
func (t Trade) FeesOrZero() float64 {
	if t.Fees == nil {
		return 0
	}
	return *t.Fees
}

// PriceMove is (exit - entry) * direction for a closed trade, ignoring
// quantity and fees. ok is false for open trades.
func (t Trade) PriceMove() (move float64, ok bool) {
	if t.Exit == nil {
		return 0, false
	}
	return (*t.Exit - t.Entry) * t.Direction(), true
}

// PnL is the realized profit or loss of a closed trade: the price move
// scaled by quantity, minus fees.
func (t Trade) PnL() (pnl float64, ok bool) {
	move, ok := t.PriceMove()
	if !ok {
		return 0, false
	}
	return move*t.Qty - t.FeesOrZero(), true
}

// IsWin reports whether a closed trade moved in the trade's favour.
// Fees are not considered.
func (t Trade) IsWin() bool {
	move, ok := t.PriceMove()
	return ok && move > 0
}

// Time parses the trade date. ok is false when the date is unparseable.
func (t Trade) Time() (time.Time, bool) {
	return ParseTime(t.Date)
}

// UnrealizedPnL marks an open trade to the given price, fees subtracted.
// Closed trades return their realized PnL.
func UnrealizedPnL(t Trade, mark float64) float64 {
	if pnl, ok := t.PnL(); ok {
		return pnl
	}
	return (mark-t.Entry)*t.Direction()*t.Qty - t.FeesOrZero()
}

// Normalize applies the journal's input conventions: trimmed uppercase
// asset, trimmed notes, and a date defaulted to now and rewritten as RFC3339 UTC
// when it parses.
func Normalize(t Trade, now time.Time) Trade {
	t.Asset = strings.ToUpper(strings.TrimSpace(t.Asset))
	t.Notes = strings.TrimSpace(t.Notes)
	t.Side = Side(strings.ToUpper(strings.TrimSpace(string(t.Side))))
	if t.Side == "" {
		t.Side = SideLong
	}

	date := strings.TrimSpace(t.Date)
	if date == "" {
		t.Date = now.UTC().Format(time.RFC3339Nano)
		return t
	}
	if ts, ok := ParseTime(date); ok {
		t.Date = ts.UTC().Format(time.RFC3339Nano)
	} else {
		t.Date = date
	}
	return t
}

// Validate checks the fields the analytics rely on. The analytics themselves
// never reject input, so this is the place malformed numbers are stopped.
func (t Trade) Validate() error {
	if t.Asset == "" {
		return invalid("asset is required")
	}
	if t.Side != SideLong && t.Side != SideShort {
		return invalid("side must be LONG or SHORT, got %q", t.Side)
	}
	if !finite(t.Qty) || t.Qty <= 0 {
		return invalid("qty must be a positive number, got %v", t.Qty)
	}
	if !finite(t.Entry) {
		return invalid("entry must be a finite number, got %v", t.Entry)
	}
	if t.Exit != nil && !finite(*t.Exit) {
		return invalid("exit must be a finite number, got %v", *t.Exit)
	}
	if t.Fees != nil && !finite(*t.Fees) {
		return invalid("fees must be a finite number, got %v", *t.Fees)
	}
	if _, ok := ParseTime(t.Date); !ok {
		return invalid("date %q is not a valid timestamp", t.Date)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return core.WrapError(core.ErrInvalidTrade, fmt.Errorf(format, args...))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Float returns a pointer to f, for optional exit and fee fields.
func Float(f float64) *float64 {
	return &f
}
