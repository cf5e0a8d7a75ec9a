// Package format converts numbers and currency codes into display strings.
// Every function is pure and safe for concurrent use.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// symbols maps the dashboard's currency codes to their display prefix.
// Unknown codes fall back to the upper-cased code.
var symbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"jpy": "¥",
	"aud": "A$",
	"cad": "C$",
}

// Symbol returns the display prefix for a currency code.
func Symbol(currency string) string {
	if s, ok := symbols[strings.ToLower(currency)]; ok {
		return s
	}
	return strings.ToUpper(currency)
}

// Currency formats value with the currency prefix, thousands separators and
// exactly two decimals: Currency(1234.5, "usd") == "$1,234.50".
func Currency(value decimal.Decimal, currency string) string {
	f := money.NewFormatter(2, ".", ",", Symbol(currency), "$1")
	return f.Format(value.Shift(2).Round(0).IntPart())
}

// WholeCurrency formats value rounded to whole units, as used for large
// aggregates: WholeCurrency(2412345678.9, "usd") == "$2,412,345,679".
func WholeCurrency(value decimal.Decimal, currency string) string {
	whole := value.Round(0).IntPart()
	if whole < 0 {
		return "-" + Symbol(currency) + humanize.Comma(-whole)
	}
	return Symbol(currency) + humanize.Comma(whole)
}

// Percent formats p with two decimals and a trailing percent sign.
func Percent(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64) + "%"
}

// SignedPercent is Percent with an explicit "+" for non-negative values.
func SignedPercent(p float64) string {
	if p >= 0 {
		return "+" + Percent(p)
	}
	return Percent(p)
}

// Quantity formats a holding quantity without trailing zeros.
func Quantity(q float64) string {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return "–"
	}
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// IndexChange renders a Fear & Greed delta as an arrow and magnitude: "↑ 5", "↓ 3".
// Zero renders as a down arrow, matching a non-increase.
func IndexChange(delta int) string {
	if delta > 0 {
		return fmt.Sprintf("↑ %d", delta)
	}
	if delta < 0 {
		delta = -delta
	}
	return fmt.Sprintf("↓ %d", delta)
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Date renders a calendar date.
func Date(t time.Time) string {
	return t.Format("2006-01-02")
}

// Timestamp renders a full local timestamp.
func Timestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
