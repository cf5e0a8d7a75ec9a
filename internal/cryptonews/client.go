// Package cryptonews fetches the latest articles from the CryptoCompare news feed.
package cryptonews

import (
	"context"
	"fmt"
	"time"

	"github.com/rewired-gh/coinboard/internal/fetch"
	"github.com/rewired-gh/coinboard/internal/models"
)

const source = "cryptonews/latest"

// Client provides access to the news feed
type Client struct {
	apiURL    string
	requester *fetch.Requester
}

// Article is one element of the feed's Data array.
type Article struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Source      string `json:"source"`
	PublishedOn int64  `json:"published_on"`
	ImageURL    string `json:"imageurl"`
	URL         string `json:"url"`
}

// FeedResponse is the API envelope.
type FeedResponse struct {
	Type    int       `json:"Type"`
	Message string    `json:"Message"`
	Data    []Article `json:"Data"`
}

// NewClient creates a new news client. apiURL is used verbatim, including its query.
func NewClient(apiURL string, requester *fetch.Requester) *Client {
	return &Client{apiURL: apiURL, requester: requester}
}

// Latest retrieves the feed and returns at most limit articles in feed order.
func (c *Client) Latest(ctx context.Context, limit int) ([]models.NewsItem, error) {
	var resp FeedResponse
	if err := c.requester.GetJSON(ctx, source, c.apiURL, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, &fetch.Error{Source: source, Kind: fetch.KindParse, Err: fmt.Errorf("response has no Data array (message: %q)", resp.Message)}
	}

	n := len(resp.Data)
	if limit >= 0 && limit < n {
		n = limit
	}
	items := make([]models.NewsItem, 0, n)
	for _, a := range resp.Data[:n] {
		items = append(items, models.NewsItem{
			Title:       a.Title,
			Body:        a.Body,
			Source:      a.Source,
			PublishedAt: time.Unix(a.PublishedOn, 0),
			ImageURL:    a.ImageURL,
			URL:         a.URL,
		})
	}
	return items, nil
}
