package models

import (
	"errors"
	"time"
)

// SentimentSample is one Fear & Greed index reading.
type SentimentSample struct {
	Timestamp      time.Time `json:"timestamp"`
	Value          int       `json:"value"` // 0–100
	Classification string    `json:"classification"`
}

// Validate checks that all sample fields are valid
func (s *SentimentSample) Validate() error {
	if s.Value < 0 || s.Value > 100 {
		return errors.New("index value must be between 0 and 100")
	}
	if s.Timestamp.IsZero() {
		return errors.New("timestamp must be set")
	}
	return nil
}

// NewsItem is a read-only article from the news feed.
type NewsItem struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	ImageURL    string    `json:"image_url"`
	URL         string    `json:"url"`
}

// Polarity is the keyword-derived tone of a news item.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
	PolarityNeutral  Polarity = "neutral"
)

// SentimentBreakdown aggregates classified news items. Percentages are
// rounded independently and may not sum to exactly 100.
type SentimentBreakdown struct {
	Positive        int `json:"positive"`
	Negative        int `json:"negative"`
	Neutral         int `json:"neutral"`
	Total           int `json:"total"`
	PositivePercent int `json:"positive_percent"`
	NegativePercent int `json:"negative_percent"`
	NeutralPercent  int `json:"neutral_percent"`
}
