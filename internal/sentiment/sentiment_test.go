package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rewired-gh/coinboard/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		item models.NewsItem
		want models.Polarity
	}{
		{"positive keyword only", models.NewsItem{Title: "Bitcoin RALLY extends", Body: "Buyers return."}, models.PolarityPositive},
		{"both lists", models.NewsItem{Title: "Surge after crash", Body: ""}, models.PolarityNeutral},
		{"negative in body", models.NewsItem{Title: "Weekly recap", Body: "Altcoins plunge on news"}, models.PolarityNegative},
		{"neither list", models.NewsItem{Title: "Exchange lists token", Body: "Trading opens Monday."}, models.PolarityNeutral},
		{"substring match", models.NewsItem{Title: "Protocol update shipped", Body: ""}, models.PolarityPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.item))
		})
	}
}

func TestAggregate(t *testing.T) {
	items := []models.NewsItem{
		{Title: "rally"},
		{Title: "crash"},
		{Title: "listing"},
	}

	b := Aggregate(items)
	assert.Equal(t, 1, b.Positive)
	assert.Equal(t, 1, b.Negative)
	assert.Equal(t, 1, b.Neutral)
	assert.Equal(t, 3, b.Total)
	assert.Equal(t, 33, b.PositivePercent)
	assert.Equal(t, 33, b.NegativePercent)
	assert.Equal(t, 33, b.NeutralPercent)
	assert.Equal(t, 99, b.PositivePercent+b.NegativePercent+b.NeutralPercent, "independent rounding is not corrected")
}

func TestAggregate_RoundsHalfUp(t *testing.T) {
	items := []models.NewsItem{{Title: "gain"}, {Title: "drop"}, {Title: "drop"}, {Title: "quiet"}, {Title: "quiet"}, {Title: "quiet"}, {Title: "quiet"}, {Title: "quiet"}}

	b := Aggregate(items)
	assert.Equal(t, 13, b.PositivePercent) // 12.5
	assert.Equal(t, 25, b.NegativePercent)
	assert.Equal(t, 63, b.NeutralPercent) // 62.5
}

func TestAggregate_Empty(t *testing.T) {
	b := Aggregate(nil)
	assert.Equal(t, models.SentimentBreakdown{}, b)
}
