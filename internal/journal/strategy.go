package journal

import "regexp"

// StrategyRule maps a notes pattern to a strategy tag.
type StrategyRule struct {
	Tag     string
	Pattern *regexp.Regexp
}

// StrategyRules is evaluated top to bottom; the first matching rule wins.
var StrategyRules = []StrategyRule{
	{Tag: "SCALP", Pattern: regexp.MustCompile(`(?i)scalp`)},
	{Tag: "TREND", Pattern: regexp.MustCompile(`(?i)trend`)},
	{Tag: "BREAKOUT", Pattern: regexp.MustCompile(`(?i)breakout`)},
	{Tag: "MEAN REVERSION", Pattern: regexp.MustCompile(`(?i)mean\s*reversion`)},
	{Tag: "NEWS", Pattern: regexp.MustCompile(`(?i)news`)},
}

// StrategyCount is the number of trades carrying one tag.
type StrategyCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ClassifyStrategy returns the strategy tag for a trade, falling back to
// its side when the notes match no rule.
func ClassifyStrategy(t Trade) string {
	for _, r := range StrategyRules {
		if r.Pattern.MatchString(t.Notes) {
			return r.Tag
		}
	}
	return string(t.Side)
}

// StrategyDistribution counts trades per strategy tag, open trades included.
// Rows are ordered by first occurrence in the input.
func StrategyDistribution(trades []Trade) []StrategyCount {
	out := []StrategyCount{}
	index := make(map[string]int)
	for _, t := range trades {
		tag := ClassifyStrategy(t)
		i, seen := index[tag]
		if !seen {
			i = len(out)
			index[tag] = i
			out = append(out, StrategyCount{Name: tag})
		}
		out[i].Value++
	}
	return out
}
