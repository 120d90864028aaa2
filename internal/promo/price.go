package promo

import (
	"log/slog"
	"strconv"
	"strings"
)

var currencySymbols = map[string]string{
	"€":   "EUR",
	"$":   "USD",
	"£":   "GBP",
	"¥":   "JPY",
	"CHF": "CHF",
}

// ParsePrice parses a displayed price string into a float.
//
// It accepts the formats storefronts actually render: "€123.45",
// "123,45 €", "1 234,56 €", "1.234,56" and "1,234.56". The second
// return is false when the text cannot be read as a price.
func ParsePrice(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	for sym := range currencySymbols {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return 0, false
	}

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")

	switch {
	case hasComma && hasDot:
		// The rightmost separator is the decimal one.
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasComma:
		// A single comma with at most two trailing digits is a decimal
		// separator, anything else is a thousands separator.
		parts := strings.Split(cleaned, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasDot:
		parts := strings.Split(cleaned, ".")
		if !(len(parts) == 2 && len(parts[1]) <= 2) {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		slog.Warn("promo: unparseable price string", "text", s)
		return 0, false
	}
	return v, true
}

// DiscountPercentage computes the discount between a regular and a
// current price, clamped to [0, 100]. A non-positive regular price
// yields 0.
func DiscountPercentage(regular, current float64) float64 {
	if regular <= 0 {
		return 0
	}
	pct := (regular - current) / regular * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Currency extracts the ISO currency code from a displayed price.
// Defaults to EUR when no known symbol is present.
func Currency(s string) string {
	for sym, code := range currencySymbols {
		if strings.Contains(s, sym) {
			return code
		}
	}
	return "EUR"
}
