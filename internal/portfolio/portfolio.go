// Package portfolio maintains an ordered list of holdings and values it
// against a quote snapshot.
//
// A Portfolio holds at most one entry per identifier. Adding to an existing
// identifier accumulates into that entry's quantity. A Portfolio is not safe
// for concurrent use; the dashboard guards it with its own lock.
package portfolio

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rewired-gh/coinboard/internal/models"
)

// ValidationError reports user input that was rejected without changing the portfolio.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Portfolio is an ordered list of holdings.
type Portfolio struct {
	entries []models.PortfolioEntry
}

// New builds a portfolio from stored entries, merging duplicate identifiers
// and dropping invalid ones.
func New(entries []models.PortfolioEntry) *Portfolio {
	p := &Portfolio{entries: make([]models.PortfolioEntry, 0, len(entries))}
	for _, e := range entries {
		_ = p.AddOrAccumulate(e.ID, e.Quantity)
	}
	return p
}

// Normalize case-folds and trims an identifier.
func Normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// AddOrAccumulate adds quantity of id. An existing entry for the normalized
// id has its quantity increased; otherwise a new entry is appended.
// Empty ids and quantities that are not strictly positive and finite are
// rejected with a *ValidationError and leave the portfolio unchanged.
func (p *Portfolio) AddOrAccumulate(id string, quantity float64) error {
	id = Normalize(id)
	if id == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !models.ValidQuantity(quantity) {
		return &ValidationError{Field: "quantity", Reason: fmt.Sprintf("%v is not a positive number", quantity)}
	}

	for i := range p.entries {
		if p.entries[i].ID == id {
			sum := p.entries[i].Quantity + quantity
			if !models.ValidQuantity(sum) {
				return &ValidationError{Field: "quantity", Reason: "total overflows"}
			}
			p.entries[i] = models.PortfolioEntry{ID: id, Quantity: sum}
			return nil
		}
	}
	p.entries = append(p.entries, models.PortfolioEntry{ID: id, Quantity: quantity})
	return nil
}

// Remove deletes the entry at index. Out-of-range indexes return an error
// and leave the portfolio unchanged.
func (p *Portfolio) Remove(index int) (models.PortfolioEntry, error) {
	if index < 0 || index >= len(p.entries) {
		return models.PortfolioEntry{}, fmt.Errorf("index %d out of range [0, %d)", index, len(p.entries))
	}
	removed := p.entries[index]
	p.entries = append(p.entries[:index], p.entries[index+1:]...)
	return removed, nil
}

// Entries returns a copy of the entries in order.
func (p *Portfolio) Entries() []models.PortfolioEntry {
	out := make([]models.PortfolioEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Valuate returns Σ quantity × price over entries that match a quote by ID or
// symbol. Entries without a matching quote contribute zero.
func (p *Portfolio) Valuate(quotes []models.Quote) decimal.Decimal {
	total := decimal.Zero
	for _, line := range p.Breakdown(quotes) {
		total = total.Add(line.Value)
	}
	return total
}

// Line is one entry's share of a valuation.
type Line struct {
	Entry   models.PortfolioEntry
	Quote   *models.Quote // nil when no quote matched
	Value   decimal.Decimal
	Matched bool
}

// Breakdown values each entry separately, in portfolio order.
func (p *Portfolio) Breakdown(quotes []models.Quote) []Line {
	lines := make([]Line, 0, len(p.entries))
	for _, e := range p.entries {
		line := Line{Entry: e, Value: decimal.Zero}
		if q := findQuote(quotes, e.ID); q != nil {
			line.Quote = q
			line.Matched = true
			line.Value = q.Price.Mul(decimal.NewFromFloat(e.Quantity))
		}
		lines = append(lines, line)
	}
	return lines
}

func findQuote(quotes []models.Quote, id string) *models.Quote {
	for i := range quotes {
		if quotes[i].Matches(id) {
			return &quotes[i]
		}
	}
	return nil
}
