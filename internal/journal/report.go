package journal

import "time"

// Report bundles every analytics panel computed from one filtered snapshot.
type Report struct {
	Total      int             `json:"total"`
	Filtered   int             `json:"filtered"`
	KPIs       KPIs            `json:"kpis"`
	Weekdays   []WeekdayStat   `json:"weekdays"`
	Strategies []StrategyCount `json:"strategies"`
}

// BuildReport filters the journal and runs all aggregations over the result.
func BuildReport(trades []Trade, f Filter, loc *time.Location) Report {
	filtered := Apply(trades, f)
	return Report{
		Total:      len(trades),
		Filtered:   len(filtered),
		KPIs:       ComputeKPIs(filtered, loc),
		Weekdays:   WeekdayPerformance(filtered, loc),
		Strategies: StrategyDistribution(filtered),
	}
}
