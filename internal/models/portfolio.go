package models

import (
	"errors"
	"math"
)

// PortfolioEntry is a held quantity of one asset.
// ID is stored case-folded; it may be a CoinGecko ID ("bitcoin") or a symbol ("btc").
type PortfolioEntry struct {
	ID       string  `json:"id"`
	Quantity float64 `json:"quantity"`
}

// Validate checks that the entry could have been admitted to a portfolio
func (e *PortfolioEntry) Validate() error {
	if e.ID == "" {
		return errors.New("entry ID must not be empty")
	}
	if !ValidQuantity(e.Quantity) {
		return errors.New("quantity must be a positive finite number")
	}
	return nil
}

// ValidQuantity reports whether q is strictly positive and finite.
func ValidQuantity(q float64) bool {
	return q > 0 && !math.IsInf(q, 0) && !math.IsNaN(q)
}
