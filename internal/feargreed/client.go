// Package feargreed fetches the Crypto Fear & Greed index history.
package feargreed

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rewired-gh/coinboard/internal/fetch"
	"github.com/rewired-gh/coinboard/internal/models"
)

const source = "feargreed/history"

// Client provides access to the Fear & Greed index API
type Client struct {
	apiURL    string
	requester *fetch.Requester
}

// IndexResponse is the API envelope. Values and timestamps arrive as strings.
type IndexResponse struct {
	Name string `json:"name"`
	Data []struct {
		Value               string `json:"value"`
		ValueClassification string `json:"value_classification"`
		Timestamp           string `json:"timestamp"`
	} `json:"data"`
	Metadata struct {
		Error *string `json:"error"`
	} `json:"metadata"`
}

// NewClient creates a new Fear & Greed client
func NewClient(apiURL string, requester *fetch.Requester) *Client {
	return &Client{
		apiURL:    strings.TrimRight(apiURL, "/"),
		requester: requester,
	}
}

// History retrieves the most recent limit samples, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]models.SentimentSample, error) {
	reqURL := fmt.Sprintf("%s/?limit=%d", c.apiURL, limit)

	var resp IndexResponse
	if err := c.requester.GetJSON(ctx, source, reqURL, &resp); err != nil {
		return nil, err
	}
	if resp.Metadata.Error != nil && *resp.Metadata.Error != "" {
		return nil, &fetch.Error{Source: source, Kind: fetch.KindParse, Err: fmt.Errorf("api error: %s", *resp.Metadata.Error)}
	}

	samples := make([]models.SentimentSample, 0, len(resp.Data))
	for i, d := range resp.Data {
		value, err := strconv.Atoi(strings.TrimSpace(d.Value))
		if err != nil {
			return nil, &fetch.Error{Source: source, Kind: fetch.KindParse, Err: fmt.Errorf("sample %d: invalid value %q: %w", i, d.Value, err)}
		}
		ts, err := strconv.ParseInt(strings.TrimSpace(d.Timestamp), 10, 64)
		if err != nil {
			return nil, &fetch.Error{Source: source, Kind: fetch.KindParse, Err: fmt.Errorf("sample %d: invalid timestamp %q: %w", i, d.Timestamp, err)}
		}
		sample := models.SentimentSample{
			Timestamp:      time.Unix(ts, 0),
			Value:          value,
			Classification: d.ValueClassification,
		}
		if err := sample.Validate(); err != nil {
			return nil, &fetch.Error{Source: source, Kind: fetch.KindParse, Err: fmt.Errorf("sample %d: %w", i, err)}
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// Summary is the headline view of a newest-first sample series.
type Summary struct {
	Current     models.SentimentSample
	Previous    models.SentimentSample
	HasPrevious bool
	Change      int // Current.Value - Previous.Value, 0 without a previous sample
}

// Summarize reads the current and previous samples from a newest-first series.
// It returns false for an empty series.
func Summarize(samples []models.SentimentSample) (Summary, bool) {
	if len(samples) == 0 {
		return Summary{}, false
	}
	s := Summary{Current: samples[0]}
	if len(samples) > 1 {
		s.Previous = samples[1]
		s.HasPrevious = true
		s.Change = s.Current.Value - s.Previous.Value
	}
	return s, true
}

// Chronological returns a copy of a newest-first series in oldest-first order.
func Chronological(samples []models.SentimentSample) []models.SentimentSample {
	out := make([]models.SentimentSample, len(samples))
	for i, s := range samples {
		out[len(samples)-1-i] = s
	}
	return out
}
