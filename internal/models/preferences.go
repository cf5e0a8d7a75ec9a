package models

import (
	"fmt"
	"strings"
)

// Currency is a supported fiat currency code, lower-case as the market API expects.
type Currency string

const (
	CurrencyUSD Currency = "usd"
	CurrencyEUR Currency = "eur"
	CurrencyGBP Currency = "gbp"
	CurrencyJPY Currency = "jpy"
	CurrencyAUD Currency = "aud"
	CurrencyCAD Currency = "cad"
)

// Currencies lists the selectable currencies in display order.
var Currencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyJPY, CurrencyAUD, CurrencyCAD}

// ParseCurrency accepts a currency code in any case.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Currencies {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unsupported currency %q", s)
}

// ChartStyle selects how the sentiment history is drawn.
type ChartStyle string

const (
	ChartLine ChartStyle = "line"
	ChartBar  ChartStyle = "bar"
)

// ParseChartStyle accepts "line" or "bar" in any case.
func ParseChartStyle(s string) (ChartStyle, error) {
	switch ChartStyle(strings.ToLower(strings.TrimSpace(s))) {
	case ChartLine:
		return ChartLine, nil
	case ChartBar:
		return ChartBar, nil
	}
	return "", fmt.Errorf("unsupported chart style %q", s)
}

// Theme is the persisted color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme returns the theme for s, or ThemeDark for anything unrecognised.
func ParseTheme(s string) Theme {
	if Theme(strings.ToLower(strings.TrimSpace(s))) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// LookbackOptions are the lookback windows offered by the selector.
var LookbackOptions = []int{7, 14, 30, 90}

// MaxLookback bounds free-form lookback input.
const MaxLookback = 365

// ValidateLookback checks a Fear & Greed lookback window length.
func ValidateLookback(days int) error {
	if days < 1 || days > MaxLookback {
		return fmt.Errorf("lookback must be between 1 and %d, got %d", MaxLookback, days)
	}
	return nil
}

// Preferences are the process-wide display settings. Only Theme survives a restart.
type Preferences struct {
	Currency    Currency   `json:"currency"`
	ChartStyle  ChartStyle `json:"chart_style"`
	Lookback    int        `json:"lookback"`
	AutoRefresh bool       `json:"auto_refresh"`
	Theme       Theme      `json:"theme"`
	Search      string     `json:"search"`
}
