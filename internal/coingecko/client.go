// Package coingecko fetches asset quotes and the global market aggregate
// from the CoinGecko public API, and derives the top-movers and search views
// from a quote list.
package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rewired-gh/coinboard/internal/fetch"
	"github.com/rewired-gh/coinboard/internal/logger"
	"github.com/rewired-gh/coinboard/internal/models"
)

// Client provides access to the CoinGecko API
type Client struct {
	apiBaseURL string
	requester  *fetch.Requester
}

// MarketCoin is one element of the /coins/markets response.
type MarketCoin struct {
	ID                       string          `json:"id"`
	Symbol                   string          `json:"symbol"`
	Name                     string          `json:"name"`
	Image                    string          `json:"image"`
	CurrentPrice             decimal.Decimal `json:"current_price"`
	MarketCap                decimal.Decimal `json:"market_cap"`
	PriceChangePercentage24h *float64        `json:"price_change_percentage_24h"`
	SparklineIn7d            *struct {
		Price []float64 `json:"price"`
	} `json:"sparkline_in_7d,omitempty"`
}

// GlobalResponse is the /global response envelope.
type GlobalResponse struct {
	Data struct {
		TotalMarketCap      map[string]decimal.Decimal `json:"total_market_cap"`
		TotalVolume         map[string]decimal.Decimal `json:"total_volume"`
		MarketCapPercentage map[string]float64         `json:"market_cap_percentage"`
		UpdatedAt           int64                      `json:"updated_at"`
	} `json:"data"`
}

// NewClient creates a new CoinGecko client
func NewClient(apiBaseURL string, requester *fetch.Requester) *Client {
	return &Client{
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		requester:  requester,
	}
}

// Markets retrieves up to perPage assets ordered by market cap descending,
// priced in currency.
func (c *Client) Markets(ctx context.Context, currency models.Currency, perPage int, sparkline bool) ([]models.Quote, error) {
	params := url.Values{}
	params.Set("vs_currency", string(currency))
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", "1")
	params.Set("sparkline", strconv.FormatBool(sparkline))
	params.Set("price_change_percentage", "24h")
	reqURL := fmt.Sprintf("%s/coins/markets?%s", c.apiBaseURL, params.Encode())

	var coins []MarketCoin
	if err := c.requester.GetJSON(ctx, "coingecko/markets", reqURL, &coins); err != nil {
		return nil, err
	}

	quotes := make([]models.Quote, 0, len(coins))
	for _, coin := range coins {
		q := coin.toQuote()
		if err := q.Validate(); err != nil {
			logger.Debug("Skipping coin %q: %v", coin.ID, err)
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// Global retrieves the global market aggregate.
func (c *Client) Global(ctx context.Context) (*models.MarketSnapshot, error) {
	var resp GlobalResponse
	if err := c.requester.GetJSON(ctx, "coingecko/global", c.apiBaseURL+"/global", &resp); err != nil {
		return nil, err
	}
	if resp.Data.TotalMarketCap == nil {
		return nil, &fetch.Error{Source: "coingecko/global", Kind: fetch.KindParse, Err: fmt.Errorf("response has no data.total_market_cap")}
	}

	fetchedAt := time.Now()
	if resp.Data.UpdatedAt > 0 {
		fetchedAt = time.Unix(resp.Data.UpdatedAt, 0)
	}
	return &models.MarketSnapshot{
		TotalMarketCap: resp.Data.TotalMarketCap,
		TotalVolume:    resp.Data.TotalVolume,
		Dominance:      resp.Data.MarketCapPercentage,
		FetchedAt:      fetchedAt,
	}, nil
}

func (m MarketCoin) toQuote() models.Quote {
	q := models.Quote{
		ID:        m.ID,
		Name:      m.Name,
		Symbol:    m.Symbol,
		Price:     m.CurrentPrice,
		MarketCap: m.MarketCap,
		Image:     m.Image,
	}
	if m.PriceChangePercentage24h != nil {
		q.Change24h = *m.PriceChangePercentage24h
	}
	if m.SparklineIn7d != nil {
		q.Sparkline = m.SparklineIn7d.Price
	}
	return q
}

// TopMovers sorts a copy of quotes by 24h change descending and returns the
// n largest gainers and the n largest losers (biggest loss first).
// Equal changes keep their input order.
func TopMovers(quotes []models.Quote, n int) (gainers, losers []models.Quote) {
	sorted := make([]models.Quote, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Change24h > sorted[j].Change24h
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	if n <= 0 {
		return []models.Quote{}, []models.Quote{}
	}

	gainers = append([]models.Quote(nil), sorted[:n]...)
	tail := sorted[len(sorted)-n:]
	losers = make([]models.Quote, 0, n)
	for i := len(tail) - 1; i >= 0; i-- {
		losers = append(losers, tail[i])
	}
	return gainers, losers
}

// Filter keeps quotes whose name, symbol or ID contains query, ignoring case.
// An empty query returns the input unchanged.
func Filter(quotes []models.Quote, query string) []models.Quote {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return quotes
	}

	filtered := make([]models.Quote, 0, len(quotes))
	for _, q := range quotes {
		if strings.Contains(strings.ToLower(q.Name), query) ||
			strings.Contains(strings.ToLower(q.Symbol), query) ||
			strings.Contains(strings.ToLower(q.ID), query) {
			filtered = append(filtered, q)
		}
	}
	return filtered
}
