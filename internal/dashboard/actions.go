package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/rewired-gh/coinboard/internal/logger"
	"github.com/rewired-gh/coinboard/internal/models"
	"github.com/rewired-gh/coinboard/internal/storage"
)

// SetSearch updates the price filter. Rapid calls are coalesced: the price
// fetch runs once, SearchDebounce after the last call.
func (d *Dashboard) SetSearch(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.prefs.Search = strings.TrimSpace(query)
	if d.debounce != nil {
		d.debounce.Stop()
	}
	ctx := d.ctx
	d.debounce = time.AfterFunc(d.opts.SearchDebounce, func() {
		if ctx.Err() != nil {
			return
		}
		d.start(ctx, "search", taskPrices)
	})
}

// SetCurrency switches the quote currency and refetches prices and market stats.
func (d *Dashboard) SetCurrency(ctx context.Context, code string) (*Cycle, error) {
	currency, err := models.ParseCurrency(code)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.prefs.Currency = currency
	d.mu.Unlock()
	return d.start(ctx, "currency", taskPrices, taskStats), nil
}

// SetChartStyle switches the chart style and redraws the index history.
func (d *Dashboard) SetChartStyle(ctx context.Context, style string) (*Cycle, error) {
	s, err := models.ParseChartStyle(style)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.prefs.ChartStyle = s
	d.mu.Unlock()
	return d.start(ctx, "chart style", taskFearGreed), nil
}

// SetLookback changes the index history window and refetches it.
func (d *Dashboard) SetLookback(ctx context.Context, days int) (*Cycle, error) {
	if err := models.ValidateLookback(days); err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.prefs.Lookback = days
	d.mu.Unlock()
	return d.start(ctx, "lookback", taskFearGreed), nil
}

// SetAutoRefresh gates the ticker. Refreshes already in flight are not affected.
func (d *Dashboard) SetAutoRefresh(on bool) {
	d.mu.Lock()
	d.prefs.AutoRefresh = on
	d.mu.Unlock()
	logger.Info("Auto-refresh set to %v", on)
}

// ToggleTheme flips and persists the theme, then redraws the chart in it.
func (d *Dashboard) ToggleTheme(ctx context.Context) (models.Theme, *Cycle) {
	d.mu.Lock()
	d.prefs.Theme = d.prefs.Theme.Toggle()
	theme := d.prefs.Theme
	d.mu.Unlock()

	if err := storage.SaveTheme(ctx, d.store, theme); err != nil {
		logger.Error("Failed to persist theme: %v", err)
	}
	d.presenter.SetTheme(theme)
	return theme, d.start(ctx, "theme", taskFearGreed)
}

// ToggleFavorite stars or unstars id, persists the set and refetches prices.
// It reports whether id is a favorite afterwards.
func (d *Dashboard) ToggleFavorite(ctx context.Context, id string) (bool, *Cycle) {
	id = strings.ToLower(strings.TrimSpace(id))

	d.mu.Lock()
	on := d.favorites.Toggle(id)
	ids := d.favorites.List()
	d.mu.Unlock()

	if err := storage.SaveFavorites(ctx, d.store, ids); err != nil {
		logger.Error("Failed to persist favorites: %v", err)
	}
	return on, d.start(ctx, "favorite", taskPrices)
}

// Favorites returns the favorite IDs in insertion order.
func (d *Dashboard) Favorites() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.favorites.List()
}

// AddToPortfolio accumulates quantity of id. Invalid input returns a
// *portfolio.ValidationError and changes nothing.
func (d *Dashboard) AddToPortfolio(ctx context.Context, id string, quantity float64) (*Cycle, error) {
	d.mu.Lock()
	err := d.portfolio.AddOrAccumulate(id, quantity)
	entries := d.portfolio.Entries()
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return d.portfolioChanged(ctx, entries), nil
}

// RemoveFromPortfolio deletes the entry at the zero-based index.
func (d *Dashboard) RemoveFromPortfolio(ctx context.Context, index int) (models.PortfolioEntry, *Cycle, error) {
	d.mu.Lock()
	removed, err := d.portfolio.Remove(index)
	entries := d.portfolio.Entries()
	d.mu.Unlock()
	if err != nil {
		return models.PortfolioEntry{}, nil, err
	}
	return removed, d.portfolioChanged(ctx, entries), nil
}

func (d *Dashboard) portfolioChanged(ctx context.Context, entries []models.PortfolioEntry) *Cycle {
	if err := storage.SavePortfolio(ctx, d.store, entries); err != nil {
		logger.Error("Failed to persist portfolio: %v", err)
	}
	d.ShowPortfolio(ctx)
	return d.start(ctx, "portfolio", taskPrices)
}
