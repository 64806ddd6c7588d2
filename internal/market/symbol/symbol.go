// Package symbol normalizes crypto trading pairs across providers.
package symbol

import (
	"fmt"
	"regexp"
	"strings"
)

// Quote currencies in detection priority
var quoteCurrencies = []string{"USDT", "BUSD", "USDC", "USD", "BTC", "ETH", "BNB"}

var validPair = regexp.MustCompile(`^[A-Z0-9]{2,20}$`)

var separators = strings.NewReplacer("-", "", "/", "", "_", "", " ", "")

// Normalize converts "btc", "BTC-USDT", "btc/usdt" and similar inputs to
// the compact pair form "BTCUSDT", appending defaultQuote when the input
// names only a base asset.
func Normalize(input, defaultQuote string) string {
	s := separators.Replace(strings.ToUpper(strings.TrimSpace(input)))
	if s == "" {
		return ""
	}

	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return s
		}
	}
	return s + strings.ToUpper(defaultQuote)
}

// Parse splits a normalized pair: "BTCUSDT" -> ("BTC", "USDT").
func Parse(pair string) (base, quote string) {
	s := strings.ToUpper(pair)
	for _, q := range quoteCurrencies {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return strings.TrimSuffix(s, q), q
		}
	}
	return s, ""
}

// Base returns the base asset of a pair or a bare asset name.
func Base(pair string) string {
	base, _ := Parse(separators.Replace(strings.ToUpper(pair)))
	return base
}

// Display renders "BTCUSDT" as "BTC/USDT".
func Display(pair string) string {
	base, quote := Parse(pair)
	if quote == "" {
		return base
	}
	return base + "/" + quote
}

// Validate checks that input can be normalized into a pair.
func Validate(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(input) > 30 {
		return fmt.Errorf("symbol too long: %s", input)
	}
	if s := separators.Replace(strings.ToUpper(strings.TrimSpace(input))); !validPair.MatchString(s) {
		return fmt.Errorf("invalid symbol format: %s", input)
	}
	return nil
}
