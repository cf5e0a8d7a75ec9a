// Package models defines the core domain entities for coinboard.
// These models represent asset quotes, global market snapshots, sentiment
// index samples, news items, portfolio entries, and display preferences.
// Models that cross a trust boundary include validation so bad payloads are
// rejected before they reach a renderer.
package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is one asset's market data as returned by a single fetch.
// A new fetch produces a wholly new set of quotes; quotes are never patched.
type Quote struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"current_price"`
	Change24h float64         `json:"price_change_percentage_24h"` // percent, e.g. 3.5 for +3.5%
	MarketCap decimal.Decimal `json:"market_cap"`
	Image     string          `json:"image"`
	Sparkline []float64       `json:"sparkline,omitempty"` // 7d prices, oldest first
}

// Validate checks that the quote can be displayed and matched.
func (q *Quote) Validate() error {
	if q.ID == "" {
		return errors.New("quote ID must not be empty")
	}
	if q.Symbol == "" {
		return errors.New("quote symbol must not be empty")
	}
	if q.Price.IsNegative() {
		return errors.New("quote price must not be negative")
	}
	if q.MarketCap.IsNegative() {
		return errors.New("market cap must not be negative")
	}
	return nil
}

// Matches reports whether the identifier names this quote, by ID or symbol,
// ignoring case.
func (q *Quote) Matches(identifier string) bool {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	return strings.ToLower(q.ID) == identifier || strings.ToLower(q.Symbol) == identifier
}

// MarketSnapshot is the global market aggregate for one fetch cycle.
type MarketSnapshot struct {
	TotalMarketCap map[string]decimal.Decimal `json:"total_market_cap"` // currency code → value
	TotalVolume    map[string]decimal.Decimal `json:"total_volume"`     // currency code → value
	Dominance      map[string]float64         `json:"market_cap_percentage"`
	FetchedAt      time.Time                  `json:"fetched_at"`
}

// MarketCapIn returns the total market cap in the given currency,
// falling back to USD when the aggregate has no figure for it.
func (m *MarketSnapshot) MarketCapIn(currency Currency) (decimal.Decimal, Currency) {
	return pick(m.TotalMarketCap, currency)
}

// VolumeIn returns the total 24h volume in the given currency,
// falling back to USD when the aggregate has no figure for it.
func (m *MarketSnapshot) VolumeIn(currency Currency) (decimal.Decimal, Currency) {
	return pick(m.TotalVolume, currency)
}

// DominanceOf returns the market cap share of the symbol in percent.
func (m *MarketSnapshot) DominanceOf(symbol string) (float64, bool) {
	v, ok := m.Dominance[strings.ToLower(symbol)]
	return v, ok
}

func pick(values map[string]decimal.Decimal, currency Currency) (decimal.Decimal, Currency) {
	if v, ok := values[string(currency)]; ok {
		return v, currency
	}
	return values[string(CurrencyUSD)], CurrencyUSD
}
