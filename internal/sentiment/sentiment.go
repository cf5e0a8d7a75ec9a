// Package sentiment classifies news items by keyword and aggregates the result.
//
// An item is positive when its title or body contains a positive keyword and no
// negative one, negative in the mirror case, and neutral otherwise. Matching is
// case-insensitive substring matching, so "up" also matches "update".
package sentiment

import (
	"math"
	"strings"

	"github.com/rewired-gh/coinboard/internal/models"
)

// PositiveKeywords and NegativeKeywords are the fixed classification lists.
var (
	PositiveKeywords = []string{"surge", "gain", "rally", "bullish", "up", "rise", "soar"}
	NegativeKeywords = []string{"drop", "fall", "crash", "bearish", "down", "decline", "plunge"}
)

// Classify returns the polarity of a single item.
func Classify(item models.NewsItem) models.Polarity {
	text := strings.ToLower(item.Title + " " + item.Body)
	pos := containsAny(text, PositiveKeywords)
	neg := containsAny(text, NegativeKeywords)

	switch {
	case pos && !neg:
		return models.PolarityPositive
	case neg && !pos:
		return models.PolarityNegative
	default:
		return models.PolarityNeutral
	}
}

// Aggregate classifies items and returns counts and rounded percentages.
// Each percentage is rounded on its own; the three need not sum to 100.
func Aggregate(items []models.NewsItem) models.SentimentBreakdown {
	var b models.SentimentBreakdown
	for _, item := range items {
		switch Classify(item) {
		case models.PolarityPositive:
			b.Positive++
		case models.PolarityNegative:
			b.Negative++
		default:
			b.Neutral++
		}
	}
	b.Total = len(items)
	if b.Total == 0 {
		return b
	}
	b.PositivePercent = percent(b.Positive, b.Total)
	b.NegativePercent = percent(b.Negative, b.Total)
	b.NeutralPercent = percent(b.Neutral, b.Total)
	return b
}

func percent(n, total int) int {
	return int(math.Round(float64(n) / float64(total) * 100))
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
