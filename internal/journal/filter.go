package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/cryptodash/internal/core"
)

// Filter selects a subset of the journal. All criteria are conjunctive and
// zero values mean "no constraint".
type Filter struct {
	Side  Side
	Query string
	// From and To are calendar days, inclusive, in their own location.
	From time.Time
	To   time.Time
}

// HasDateBounds reports whether either date bound is set
func (f Filter) HasDateBounds() bool {
	return !f.From.IsZero() || !f.To.IsZero()
}

// Match reports whether a single trade passes the filter.
func (f Filter) Match(t Trade) bool {
	if f.Side != "" && f.Side != SideAll && t.Side != f.Side {
		return false
	}

	if q := strings.ToLower(f.Query); q != "" {
		if !strings.Contains(strings.ToLower(t.Asset), q) &&
			!strings.Contains(strings.ToLower(t.Notes), q) {
			return false
		}
	}

	if !f.HasDateBounds() {
		return true
	}
	ts, ok := t.Time()
	if !ok {
		return false
	}
	if !f.From.IsZero() && ts.Before(startOfDay(f.From)) {
		return false
	}
	if !f.To.IsZero() && ts.After(endOfDay(f.To)) {
		return false
	}
	return true
}

// Apply returns the trades that pass f, preserving input order. The input
// slice is not modified.
func Apply(trades []Trade, f Filter) []Trade {
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// ParseFilter builds a Filter from raw query values. Date bounds are
// YYYY-MM-DD days interpreted in loc (nil means local time).
func ParseFilter(side, query, from, to string, loc *time.Location) (Filter, error) {
	loc = locOrLocal(loc)
	f := Filter{Query: strings.TrimSpace(query)}

	switch s := Side(strings.ToUpper(strings.TrimSpace(side))); s {
	case "", SideAll:
		f.Side = SideAll
	case SideLong, SideShort:
		f.Side = s
	default:
		return Filter{}, core.WrapError(core.ErrInvalidFilter, fmt.Errorf("unknown side %q", side))
	}

	var err error
	if f.From, err = parseDay(from, loc); err != nil {
		return Filter{}, err
	}
	if f.To, err = parseDay(to, loc); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, core.WrapError(core.ErrInvalidFilter, fmt.Errorf("date bound %q: %w", s, err))
	}
	return d, nil
}
