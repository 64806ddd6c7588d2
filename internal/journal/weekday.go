package journal

import "time"

// WeekdayStat is the realized performance of closed trades opened on one
// day of the week.
type WeekdayStat struct {
	Weekday time.Weekday `json:"weekday"`
	Label   string       `json:"label"`
	Count   int          `json:"count"`
	PnL     float64      `json:"pnl"`
}

// WeekdayPerformance buckets closed trades by the weekday of their date in
// loc (nil means local time). The result always has seven entries, Sunday
// first. Trades whose date does not parse are left out.
func WeekdayPerformance(trades []Trade, loc *time.Location) []WeekdayStat {
	loc = locOrLocal(loc)

	stats := make([]WeekdayStat, 7)
	for d := range stats {
		wd := time.Weekday(d)
		stats[d] = WeekdayStat{Weekday: wd, Label: wd.String()[:3]}
	}

	for _, t := range trades {
		pnl, ok := t.PnL()
		if !ok {
			continue
		}
		ts, ok := t.Time()
		if !ok {
			continue
		}
		s := &stats[ts.In(loc).Weekday()]
		s.Count++
		s.PnL += pnl
	}

	for i := range stats {
		stats[i].PnL = Round2(stats[i].PnL)
	}
	return stats
}
