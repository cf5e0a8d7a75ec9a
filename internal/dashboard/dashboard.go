// Package dashboard owns the application state and orchestrates refreshes.
//
// Every trigger (the auto-refresh ticker, a preference change, a portfolio
// or favorites mutation) starts one or more fetch tasks as independent
// goroutines. A failed task turns into an inline error widget and never
// affects the others. In-flight tasks are not cancelled when superseded;
// instead every task draws a sequence token and its result is dropped if a
// newer result for the same widget group has already been applied.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rewired-gh/coinboard/internal/coingecko"
	"github.com/rewired-gh/coinboard/internal/favorites"
	"github.com/rewired-gh/coinboard/internal/logger"
	"github.com/rewired-gh/coinboard/internal/models"
	"github.com/rewired-gh/coinboard/internal/portfolio"
	"github.com/rewired-gh/coinboard/internal/render"
	"github.com/rewired-gh/coinboard/internal/sentiment"
	"github.com/rewired-gh/coinboard/internal/storage"
)

// MarketSource provides asset quotes and the global aggregate.
type MarketSource interface {
	Markets(ctx context.Context, currency models.Currency, perPage int, sparkline bool) ([]models.Quote, error)
	Global(ctx context.Context) (*models.MarketSnapshot, error)
}

// IndexSource provides the Fear & Greed history, newest first.
type IndexSource interface {
	History(ctx context.Context, limit int) ([]models.SentimentSample, error)
}

// NewsSource provides the latest articles.
type NewsSource interface {
	Latest(ctx context.Context, limit int) ([]models.NewsItem, error)
}

// Options tunes the refresh behavior.
type Options struct {
	RefreshInterval time.Duration
	SearchDebounce  time.Duration
	PricesPerPage   int
	MoversPerPage   int
	MoversCount     int
	Sparkline       bool
	NewsLimit       int
	SentimentLimit  int
}

// task names a fetch and the widget group its result feeds. Sequence tokens
// are kept per task.
type task string

const (
	taskMovers    task = render.IDGainers
	taskStats     task = render.IDMarketStats
	taskPrices    task = render.IDCryptoPrices
	taskFearGreed task = render.IDFearGreed
	taskNews      task = render.IDNewsFeed
	taskSentiment task = render.IDSentiment
)

var allTasks = []task{taskMovers, taskStats, taskPrices, taskFearGreed, taskNews, taskSentiment}

// Dashboard is the refresh orchestrator.
type Dashboard struct {
	markets   MarketSource
	index     IndexSource
	news      NewsSource
	store     storage.Store
	presenter Presenter
	opts      Options
	now       func() time.Time

	// mu guards the application state and the issued tokens.
	mu        sync.Mutex
	ctx       context.Context
	prefs     models.Preferences
	favorites *favorites.Set
	portfolio *portfolio.Portfolio
	quotes    []models.Quote // last applied unfiltered price list
	quotedIn  models.Currency
	issued    map[task]uint64
	debounce  *time.Timer

	// applyMu serializes presentation so that the token check and the
	// presenter call happen atomically.
	applyMu sync.Mutex
	applied map[task]uint64
	chart   ChartHandle
}

// New builds a dashboard, restoring favorites, portfolio and theme from store.
func New(ctx context.Context, markets MarketSource, index IndexSource, news NewsSource,
	store storage.Store, presenter Presenter, prefs models.Preferences, opts Options) *Dashboard {

	prefs.Theme = storage.LoadTheme(ctx, store)
	presenter.SetTheme(prefs.Theme)

	return &Dashboard{
		markets:   markets,
		index:     index,
		news:      news,
		store:     store,
		presenter: presenter,
		opts:      opts,
		now:       time.Now,
		ctx:       context.Background(),
		prefs:     prefs,
		quotedIn:  prefs.Currency,
		favorites: favorites.New(storage.LoadFavorites(ctx, store)),
		portfolio: portfolio.New(storage.LoadPortfolio(ctx, store)),
		issued:    make(map[task]uint64),
		applied:   make(map[task]uint64),
	}
}

// Cycle is one trigger and the fetch tasks it started.
type Cycle struct {
	ID     string
	Reason string
	wg     sync.WaitGroup
}

// Wait blocks until every task of the cycle has been applied or discarded.
func (c *Cycle) Wait() { c.wg.Wait() }

// Run performs an initial refresh, then refreshes on every tick while
// auto-refresh is enabled. It returns when ctx is cancelled.
func (d *Dashboard) Run(ctx context.Context) error {
	d.mu.Lock()
	d.ctx = ctx
	d.mu.Unlock()

	logger.Info("Starting dashboard (interval: %v, auto_refresh: %v)", d.opts.RefreshInterval, d.Preferences().AutoRefresh)
	d.ShowPortfolio(ctx)
	d.Refresh(ctx, "startup")

	ticker := time.NewTicker(d.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.mu.Lock()
			if d.debounce != nil {
				d.debounce.Stop()
			}
			d.mu.Unlock()
			logger.Info("Dashboard stopped")
			return nil
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

// tick refreshes unless auto-refresh is off. It returns nil when skipped.
func (d *Dashboard) tick(ctx context.Context) *Cycle {
	if !d.Preferences().AutoRefresh {
		logger.Debug("Auto-refresh disabled, skipping scheduled refresh")
		return nil
	}
	return d.Refresh(ctx, "timer")
}

// Refresh starts every fetch task and updates the last-update widget.
func (d *Dashboard) Refresh(ctx context.Context, reason string) *Cycle {
	d.apply(ctx, "", 0, func(ctx context.Context) {
		d.show(ctx, render.LastUpdate(d.now()))
	})
	return d.start(ctx, reason, allTasks...)
}

// start launches the given tasks as one cycle.
func (d *Dashboard) start(ctx context.Context, reason string, tasks ...task) *Cycle {
	c := &Cycle{ID: uuid.New().String(), Reason: reason}
	log := logger.With("cycle", c.ID)
	log.Debug().Str("reason", reason).Int("tasks", len(tasks)).Msg("starting refresh cycle")

	d.mu.Lock()
	prefs := d.prefs
	tokens := make([]uint64, len(tasks))
	for i, t := range tasks {
		d.issued[t]++
		tokens[i] = d.issued[t]
	}
	d.mu.Unlock()

	c.wg.Add(len(tasks))
	for i, t := range tasks {
		go func(t task, token uint64) {
			defer c.wg.Done()
			d.run(ctx, log, t, token, prefs)
		}(t, tokens[i])
	}
	return c
}

func (d *Dashboard) run(ctx context.Context, log zerolog.Logger, t task, token uint64, prefs models.Preferences) {
	start := time.Now()
	var err error
	switch t {
	case taskMovers:
		err = d.fetchMovers(ctx, token)
	case taskStats:
		err = d.fetchStats(ctx, token, prefs)
	case taskPrices:
		err = d.fetchPrices(ctx, token, prefs)
	case taskFearGreed:
		err = d.fetchFearGreed(ctx, token, prefs)
	case taskNews:
		err = d.fetchNews(ctx, token)
	case taskSentiment:
		err = d.fetchSentiment(ctx, token)
	}
	if err != nil {
		log.Warn().Err(err).Str("task", string(t)).Uint64("seq", token).Msg("fetch failed")
		return
	}
	log.Debug().Str("task", string(t)).Uint64("seq", token).Dur("took", time.Since(start)).Msg("fetch applied")
}

// apply runs present if token is not older than the last applied token for
// t. An empty task bypasses sequencing. It reports whether present ran.
func (d *Dashboard) apply(ctx context.Context, t task, token uint64, present func(ctx context.Context)) bool {
	d.applyMu.Lock()
	defer d.applyMu.Unlock()

	if t != "" {
		if token < d.applied[t] {
			logger.Debug("Discarding stale %s result (seq %d < %d)", t, token, d.applied[t])
			return false
		}
		d.applied[t] = token
	}
	present(ctx)
	return true
}

// show hands a widget to the presenter. Callers hold applyMu.
func (d *Dashboard) show(ctx context.Context, w render.Widget) {
	if err := d.presenter.ShowWidget(ctx, w); err != nil {
		logger.Error("Failed to show widget %s: %v", w.ID, err)
	}
}

// showChart disposes the current chart before displaying its replacement.
// Callers hold applyMu.
func (d *Dashboard) showChart(ctx context.Context, png []byte, caption string) {
	d.disposeChart(ctx)
	h, err := d.presenter.ShowChart(ctx, png, caption)
	if err != nil {
		logger.Error("Failed to show chart: %v", err)
		return
	}
	d.chart = h
}

// disposeChart removes the live chart, if any. Callers hold applyMu.
func (d *Dashboard) disposeChart(ctx context.Context) {
	if d.chart == nil {
		return
	}
	if err := d.chart.Dispose(ctx); err != nil {
		logger.Warn("Failed to dispose previous chart: %v", err)
	}
	d.chart = nil
}

func (d *Dashboard) fetchMovers(ctx context.Context, token uint64) error {
	// Percent changes do not depend on the quote currency.
	quotes, err := d.markets.Markets(ctx, models.CurrencyUSD, d.opts.MoversPerPage, false)
	if err != nil {
		d.apply(ctx, taskMovers, token, func(ctx context.Context) {
			d.show(ctx, render.Error(render.IDGainers, render.ErrGainers))
			d.show(ctx, render.Error(render.IDLosers, render.ErrLosers))
		})
		return fmt.Errorf("failed to fetch top movers: %w", err)
	}
	gainers, losers := coingecko.TopMovers(quotes, d.opts.MoversCount)
	g, l := render.TopMovers(gainers, losers)
	d.apply(ctx, taskMovers, token, func(ctx context.Context) {
		d.show(ctx, g)
		d.show(ctx, l)
	})
	return nil
}

func (d *Dashboard) fetchStats(ctx context.Context, token uint64, prefs models.Preferences) error {
	snap, err := d.markets.Global(ctx)
	w := render.MarketStats(snap, prefs.Currency)
	if err != nil {
		w = render.Error(render.IDMarketStats, render.ErrMarketStats)
	}
	d.apply(ctx, taskStats, token, func(ctx context.Context) { d.show(ctx, w) })
	if err != nil {
		return fmt.Errorf("failed to fetch market stats: %w", err)
	}
	return nil
}

func (d *Dashboard) fetchPrices(ctx context.Context, token uint64, prefs models.Preferences) error {
	quotes, err := d.markets.Markets(ctx, prefs.Currency, d.opts.PricesPerPage, d.opts.Sparkline)
	if err != nil {
		d.apply(ctx, taskPrices, token, func(ctx context.Context) {
			d.show(ctx, render.Error(render.IDCryptoPrices, render.ErrPrices))
		})
		return fmt.Errorf("failed to fetch prices: %w", err)
	}

	d.apply(ctx, taskPrices, token, func(ctx context.Context) {
		// Favorites, search and portfolio are read at apply time so that a
		// mutation made while the fetch was in flight is reflected.
		d.mu.Lock()
		d.quotes = quotes
		d.quotedIn = prefs.Currency
		search := d.prefs.Search
		prices := render.Prices(coingecko.Filter(quotes, search), prefs.Currency, d.favorites.Contains)
		holdings := render.Portfolio(d.portfolio.Breakdown(quotes), d.portfolio.Valuate(quotes), prefs.Currency)
		d.mu.Unlock()

		d.show(ctx, prices)
		d.show(ctx, holdings)
	})
	return nil
}

func (d *Dashboard) fetchFearGreed(ctx context.Context, token uint64, prefs models.Preferences) error {
	samples, err := d.index.History(ctx, prefs.Lookback)
	if err != nil {
		d.apply(ctx, taskFearGreed, token, func(ctx context.Context) {
			d.show(ctx, render.Error(render.IDFearGreed, render.ErrFearGreed))
		})
		return fmt.Errorf("failed to fetch fear & greed index: %w", err)
	}

	headline := render.FearGreed(samples)
	img, chartErr := render.Chart(samples, prefs.ChartStyle, prefs.Theme)
	d.apply(ctx, taskFearGreed, token, func(ctx context.Context) {
		d.show(ctx, headline)
		if chartErr != nil {
			logger.Debug("Not drawing chart: %v", chartErr)
			d.disposeChart(ctx)
			d.show(ctx, render.Error(render.IDFearGreedChart, render.ErrChart))
			return
		}
		d.showChart(ctx, img, render.ChartCaption(samples, prefs.ChartStyle))
	})
	return nil
}

func (d *Dashboard) fetchNews(ctx context.Context, token uint64) error {
	items, err := d.news.Latest(ctx, d.opts.NewsLimit)
	w := render.News(items)
	if err != nil {
		w = render.Error(render.IDNewsFeed, render.ErrNews)
	}
	d.apply(ctx, taskNews, token, func(ctx context.Context) { d.show(ctx, w) })
	if err != nil {
		return fmt.Errorf("failed to fetch news: %w", err)
	}
	return nil
}

func (d *Dashboard) fetchSentiment(ctx context.Context, token uint64) error {
	items, err := d.news.Latest(ctx, d.opts.SentimentLimit)
	w := render.Sentiment(sentiment.Aggregate(items))
	if err != nil {
		w = render.Error(render.IDSentiment, render.ErrSentiment)
	}
	d.apply(ctx, taskSentiment, token, func(ctx context.Context) { d.show(ctx, w) })
	if err != nil {
		return fmt.Errorf("failed to fetch sentiment: %w", err)
	}
	return nil
}

// ShowPortfolio re-renders the portfolio against the last applied quotes.
// The widget is built under applyMu so it cannot overtake a price apply.
func (d *Dashboard) ShowPortfolio(ctx context.Context) {
	d.apply(ctx, "", 0, func(ctx context.Context) { d.show(ctx, d.PortfolioWidget()) })
}

// PortfolioWidget renders the portfolio against the last applied quotes,
// labelled in the currency those quotes were priced in. Until a price fetch
// in a newly selected currency lands, that is the previous currency.
func (d *Dashboard) PortfolioWidget() render.Widget {
	d.mu.Lock()
	defer d.mu.Unlock()
	return render.Portfolio(d.portfolio.Breakdown(d.quotes), d.portfolio.Valuate(d.quotes), d.quotedIn)
}

// Preferences returns a copy of the current preferences.
func (d *Dashboard) Preferences() models.Preferences {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.prefs
}

// IsValidation reports whether err is a rejected user input.
func IsValidation(err error) bool {
	var ve *portfolio.ValidationError
	return errors.As(err, &ve)
}
