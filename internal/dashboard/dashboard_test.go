package dashboard

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/coinboard/internal/fetch"
	"github.com/rewired-gh/coinboard/internal/models"
	"github.com/rewired-gh/coinboard/internal/render"
	"github.com/rewired-gh/coinboard/internal/storage"
)

// memPresenter records what the dashboard shows.
type memPresenter struct {
	mu      sync.Mutex
	widgets map[string]render.Widget
	events  []string
	charts  int
	theme   models.Theme
}

func newMemPresenter() *memPresenter {
	return &memPresenter{widgets: make(map[string]render.Widget)}
}

func (p *memPresenter) ShowWidget(_ context.Context, w render.Widget) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.widgets[w.ID] = w
	return nil
}

func (p *memPresenter) ShowChart(_ context.Context, _ []byte, _ string) (ChartHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.charts++
	p.events = append(p.events, fmt.Sprintf("show %d", p.charts))
	return &memChart{p: p, n: p.charts}, nil
}

func (p *memPresenter) Notify(context.Context, string) error { return nil }

func (p *memPresenter) SetTheme(theme models.Theme) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.theme = theme
}

func (p *memPresenter) widget(id string) (render.Widget, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.widgets[id]
	return w, ok
}

func (p *memPresenter) eventLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type memChart struct {
	p *memPresenter
	n int
}

func (c *memChart) Dispose(context.Context) error {
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	c.p.events = append(c.p.events, fmt.Sprintf("dispose %d", c.n))
	return nil
}

type fakeMarkets struct {
	mu         sync.Mutex
	calls      int
	currencies []models.Currency
	markets    func(call int, currency models.Currency) ([]models.Quote, error)
	global     *models.MarketSnapshot
	globalErr  error
}

func (f *fakeMarkets) Markets(_ context.Context, currency models.Currency, _ int, _ bool) ([]models.Quote, error) {
	f.mu.Lock()
	n := f.calls
	f.calls++
	f.currencies = append(f.currencies, currency)
	fn := f.markets
	f.mu.Unlock()
	if fn == nil {
		return defaultQuotes(), nil
	}
	return fn(n, currency)
}

func (f *fakeMarkets) Global(context.Context) (*models.MarketSnapshot, error) {
	if f.globalErr != nil {
		return nil, f.globalErr
	}
	if f.global != nil {
		return f.global, nil
	}
	return &models.MarketSnapshot{
		TotalMarketCap: map[string]decimal.Decimal{"usd": decimal.NewFromInt(2_000_000)},
		TotalVolume:    map[string]decimal.Decimal{"usd": decimal.NewFromInt(90_000)},
		Dominance:      map[string]float64{"btc": 50, "eth": 17},
	}, nil
}

func (f *fakeMarkets) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeIndex struct {
	err error
}

func (f *fakeIndex) History(_ context.Context, limit int) ([]models.SentimentSample, error) {
	if f.err != nil {
		return nil, f.err
	}
	newest := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	out := make([]models.SentimentSample, limit)
	for i := range out {
		out[i] = models.SentimentSample{Timestamp: newest.AddDate(0, 0, -i), Value: 40 + i, Classification: "Fear"}
	}
	return out, nil
}

type fakeNews struct {
	err error
}

func (f *fakeNews) Latest(_ context.Context, limit int) ([]models.NewsItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	items := []models.NewsItem{
		{Title: "Bitcoin rally continues", Body: "buyers", Source: "a"},
		{Title: "Market crash fears", Body: "sellers", Source: "b"},
	}
	if limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func defaultQuotes() []models.Quote {
	return []models.Quote{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", Price: decimal.NewFromInt(50000), Change24h: 2},
		{ID: "ethereum", Name: "Ethereum", Symbol: "eth", Price: decimal.NewFromInt(3000), Change24h: -1},
	}
}

func testOptions() Options {
	return Options{
		RefreshInterval: time.Hour,
		SearchDebounce:  20 * time.Millisecond,
		PricesPerPage:   50,
		MoversPerPage:   100,
		MoversCount:     5,
		NewsLimit:       10,
		SentimentLimit:  5,
	}
}

func testPrefs() models.Preferences {
	return models.Preferences{
		Currency:    models.CurrencyUSD,
		ChartStyle:  models.ChartLine,
		Lookback:    7,
		AutoRefresh: true,
		Theme:       models.ThemeDark,
	}
}

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	s, err := storage.NewFile(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	return s
}

type harness struct {
	d       *Dashboard
	p       *memPresenter
	markets *fakeMarkets
	index   *fakeIndex
	news    *fakeNews
	store   storage.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		p:       newMemPresenter(),
		markets: &fakeMarkets{},
		index:   &fakeIndex{},
		news:    &fakeNews{},
		store:   newTestStore(t),
	}
	h.build()
	return h
}

func (h *harness) build() {
	h.d = New(context.Background(), h.markets, h.index, h.news, h.store, h.p, testPrefs(), testOptions())
}

func TestRefresh_RendersEveryWidget(t *testing.T) {
	h := newHarness(t)

	c := h.d.Refresh(context.Background(), "test")
	require.NotEmpty(t, c.ID)
	c.Wait()

	for _, id := range render.WidgetIDs {
		if id == render.IDFearGreedChart {
			continue
		}
		w, ok := h.p.widget(id)
		require.True(t, ok, "widget %s not shown", id)
		assert.False(t, w.Failed(), "widget %s failed: %s", id, w.Err)
	}
	assert.Equal(t, []string{"show 1"}, h.p.eventLog())

	s, _ := h.p.widget(render.IDSentiment)
	assert.Equal(t, "😊 Positive 50%", s.Lines[0].Text)
}

func TestRefresh_FailuresStayLocal(t *testing.T) {
	h := newHarness(t)
	h.markets.markets = func(int, models.Currency) ([]models.Quote, error) {
		return nil, &fetch.Error{Source: "coingecko", Kind: fetch.KindTransport, Status: 503}
	}
	h.markets.globalErr = &fetch.Error{Source: "coingecko", Kind: fetch.KindParse, Err: errors.New("bad json")}
	h.news.err = &fetch.Error{Source: "cryptocompare", Kind: fetch.KindTransport}

	h.d.Refresh(context.Background(), "test").Wait()

	expectErr := map[string]string{
		render.IDGainers:      render.ErrGainers,
		render.IDLosers:       render.ErrLosers,
		render.IDCryptoPrices: render.ErrPrices,
		render.IDMarketStats:  render.ErrMarketStats,
		render.IDNewsFeed:     render.ErrNews,
		render.IDSentiment:    render.ErrSentiment,
	}
	for id, msg := range expectErr {
		w, ok := h.p.widget(id)
		require.True(t, ok, id)
		assert.Equal(t, msg, w.Err, id)
	}

	fg, ok := h.p.widget(render.IDFearGreed)
	require.True(t, ok)
	assert.False(t, fg.Failed())
}

func TestStaleResultIsDiscarded(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	h.markets.markets = func(call int, _ models.Currency) ([]models.Quote, error) {
		if call == 0 {
			<-release
			return []models.Quote{{ID: "old", Name: "Old", Symbol: "old", Price: decimal.NewFromInt(1)}}, nil
		}
		return []models.Quote{{ID: "new", Name: "New", Symbol: "new", Price: decimal.NewFromInt(2)}}, nil
	}
	ctx := context.Background()

	first := h.d.start(ctx, "slow", taskPrices)
	require.Eventually(t, func() bool { return h.markets.callCount() == 1 }, time.Second, time.Millisecond)
	h.d.start(ctx, "fast", taskPrices).Wait()

	close(release)
	first.Wait()

	w, ok := h.p.widget(render.IDCryptoPrices)
	require.True(t, ok)
	require.Len(t, w.Lines, 1)
	assert.Contains(t, w.Lines[0].Text, "New")
}

func TestTick_RespectsAutoRefresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.d.SetAutoRefresh(false)
	assert.Nil(t, h.d.tick(ctx))
	assert.Equal(t, 0, h.markets.callCount())

	h.d.SetAutoRefresh(true)
	c := h.d.tick(ctx)
	require.NotNil(t, c)
	c.Wait()
	assert.Equal(t, 2, h.markets.callCount(), "movers and prices")
}

func TestSetSearch_Debounces(t *testing.T) {
	h := newHarness(t)

	for _, q := range []string{"e", "et", "eth"} {
		h.d.SetSearch(q)
	}

	require.Eventually(t, func() bool { return h.markets.callCount() == 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := h.p.widget(render.IDCryptoPrices)
		return ok
	}, time.Second, time.Millisecond)
	time.Sleep(5 * testOptions().SearchDebounce)
	assert.Equal(t, 1, h.markets.callCount())

	w, _ := h.p.widget(render.IDCryptoPrices)
	require.Len(t, w.Lines, 1)
	assert.Contains(t, w.Lines[0].Text, "Ethereum")
	assert.Equal(t, "eth", h.d.Preferences().Search)
}

func TestChartIsDisposedBeforeReplacement(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.d.start(ctx, "one", taskFearGreed).Wait()
	c, err := h.d.SetChartStyle(ctx, "bar")
	require.NoError(t, err)
	c.Wait()

	assert.Equal(t, []string{"show 1", "dispose 1", "show 2"}, h.p.eventLog())
}

func TestSetLookback(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.d.SetLookback(ctx, 0)
	assert.Error(t, err)
	assert.Equal(t, 7, h.d.Preferences().Lookback)

	c, err := h.d.SetLookback(ctx, 30)
	require.NoError(t, err)
	c.Wait()
	assert.Equal(t, 30, h.d.Preferences().Lookback)
}

func TestSingleSampleShowsChartError(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.d.start(ctx, "seven days", taskFearGreed).Wait()
	c, err := h.d.SetLookback(ctx, 1)
	require.NoError(t, err)
	c.Wait()

	w, ok := h.p.widget(render.IDFearGreedChart)
	require.True(t, ok)
	assert.Equal(t, render.ErrChart, w.Err)
	assert.Equal(t, []string{"show 1", "dispose 1"}, h.p.eventLog())
}

func TestSetCurrency(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.d.SetCurrency(ctx, "xyz")
	assert.Error(t, err)

	c, err := h.d.SetCurrency(ctx, "EUR")
	require.NoError(t, err)
	c.Wait()

	assert.Equal(t, []models.Currency{models.CurrencyEUR}, h.markets.currencies)
	w, _ := h.p.widget(render.IDCryptoPrices)
	assert.Contains(t, w.Lines[0].Text, "€50,000.00")
	stats, _ := h.p.widget(render.IDMarketStats)
	assert.Contains(t, stats.Lines[0].Text, "$2,000,000", "falls back to USD aggregates")
}

func TestToggleFavorite_PersistsAndMarks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	on, c := h.d.ToggleFavorite(ctx, "Bitcoin")
	assert.True(t, on)
	c.Wait()

	assert.Equal(t, []string{"bitcoin"}, storage.LoadFavorites(ctx, h.store))
	w, _ := h.p.widget(render.IDCryptoPrices)
	assert.Contains(t, w.Lines[0].Text, "★ Bitcoin")

	on, c = h.d.ToggleFavorite(ctx, "bitcoin")
	assert.False(t, on)
	c.Wait()
	assert.Empty(t, storage.LoadFavorites(ctx, h.store))
}

func TestPortfolioMutations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.d.AddToPortfolio(ctx, "eth", -1)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Empty(t, storage.LoadPortfolio(ctx, h.store))

	c, err := h.d.AddToPortfolio(ctx, "btc", 1)
	require.NoError(t, err)
	c.Wait()
	c, err = h.d.AddToPortfolio(ctx, "BTC", 1)
	require.NoError(t, err)
	c.Wait()

	assert.Equal(t, []models.PortfolioEntry{{ID: "btc", Quantity: 2}}, storage.LoadPortfolio(ctx, h.store))
	w, ok := h.p.widget(render.IDPortfolio)
	require.True(t, ok)
	assert.Equal(t, "Total Value: $100,000.00", w.Footer)

	_, _, err = h.d.RemoveFromPortfolio(ctx, 3)
	assert.Error(t, err)

	removed, c, err := h.d.RemoveFromPortfolio(ctx, 0)
	require.NoError(t, err)
	c.Wait()
	assert.Equal(t, "btc", removed.ID)
	assert.Empty(t, storage.LoadPortfolio(ctx, h.store))
	w, _ = h.p.widget(render.IDPortfolio)
	assert.True(t, w.Empty)
}

func TestPortfolio_KeepsQuoteCurrencyUntilNewPricesLand(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	release := make(chan struct{})
	h.markets.markets = func(_ int, currency models.Currency) ([]models.Quote, error) {
		if currency == models.CurrencyEUR {
			<-release
		}
		return defaultQuotes(), nil
	}

	h.d.Refresh(ctx, "test").Wait()

	switched, err := h.d.SetCurrency(ctx, "eur")
	require.NoError(t, err)
	added, err := h.d.AddToPortfolio(ctx, "btc", 1)
	require.NoError(t, err)

	w, ok := h.p.widget(render.IDPortfolio)
	require.True(t, ok)
	assert.Equal(t, "Total Value: $50,000.00", w.Footer, "still priced in USD")

	close(release)
	switched.Wait()
	added.Wait()

	w, _ = h.p.widget(render.IDPortfolio)
	assert.Equal(t, "Total Value: €50,000.00", w.Footer)
}

func TestToggleTheme_PersistsAndRestores(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	theme, c := h.d.ToggleTheme(ctx)
	c.Wait()
	assert.Equal(t, models.ThemeLight, theme)
	assert.Equal(t, models.ThemeLight, h.p.theme)

	_, _ = h.d.ToggleFavorite(ctx, "solana")
	_, err := h.d.AddToPortfolio(ctx, "sol", 3)
	require.NoError(t, err)

	h.p = newMemPresenter()
	h.build()
	assert.Equal(t, models.ThemeLight, h.d.Preferences().Theme)
	assert.Equal(t, models.ThemeLight, h.p.theme)
	assert.Equal(t, []string{"solana"}, h.d.Favorites())
	assert.Len(t, h.d.PortfolioWidget().Lines, 1)
}

func TestRun_StopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.d.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := h.p.widget(render.IDLastUpdate)
		return ok
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
