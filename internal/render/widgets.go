package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rewired-gh/coinboard/internal/feargreed"
	"github.com/rewired-gh/coinboard/internal/format"
	"github.com/rewired-gh/coinboard/internal/models"
	"github.com/rewired-gh/coinboard/internal/portfolio"
)

// NewsExcerptLength is the number of body characters shown per article.
const NewsExcerptLength = 150

// PlaceholderImage stands in for articles that have no thumbnail.
const PlaceholderImage = "https://via.placeholder.com/150"

func coinLabel(q models.Quote) string {
	return fmt.Sprintf("%s (%s)", q.Name, strings.ToUpper(q.Symbol))
}

// TopMovers renders the gainers and losers widgets.
func TopMovers(gainers, losers []models.Quote) (Widget, Widget) {
	return movers(IDGainers, gainers), movers(IDLosers, losers)
}

func movers(id string, quotes []models.Quote) Widget {
	if len(quotes) == 0 {
		return empty(id, "No market movers available.")
	}
	w := newWidget(id)
	for _, q := range quotes {
		w.Lines = append(w.Lines, Line{
			Text:  fmt.Sprintf("%s %s", coinLabel(q), format.SignedPercent(q.Change24h)),
			Tone:  toneOf(q.Change24h),
			Image: q.Image,
		})
	}
	return w
}

// MarketStats renders the global aggregate in the selected currency, falling
// back to USD figures when the aggregate lacks that currency.
func MarketStats(snap *models.MarketSnapshot, currency models.Currency) Widget {
	if snap == nil || (len(snap.TotalMarketCap) == 0 && len(snap.TotalVolume) == 0) {
		return empty(IDMarketStats, "No market statistics available.")
	}
	w := newWidget(IDMarketStats)

	mcap, mcapCurrency := snap.MarketCapIn(currency)
	volume, volumeCurrency := snap.VolumeIn(currency)
	w.Lines = append(w.Lines,
		Line{Text: "Total Market Cap: " + format.WholeCurrency(mcap, string(mcapCurrency))},
		Line{Text: "24h Volume: " + format.WholeCurrency(volume, string(volumeCurrency))},
	)
	for _, sym := range []string{"btc", "eth"} {
		text := strings.ToUpper(sym) + " Dominance: "
		if d, ok := snap.DominanceOf(sym); ok {
			text += format.Percent(d)
		} else {
			text += "n/a"
		}
		w.Lines = append(w.Lines, Line{Text: text})
	}
	return w
}

// Prices renders the price list. Each row carries the favorite marker and
// the command that toggles it.
func Prices(quotes []models.Quote, currency models.Currency, isFavorite func(id string) bool) Widget {
	if len(quotes) == 0 {
		return empty(IDCryptoPrices, "No coins found matching your search.")
	}
	w := newWidget(IDCryptoPrices)
	code := string(currency)
	for _, q := range quotes {
		star := "☆"
		if isFavorite != nil && isFavorite(q.ID) {
			star = "★"
		}
		detail := fmt.Sprintf("24h: %s · Market Cap: %s",
			format.SignedPercent(q.Change24h), format.Currency(q.MarketCap, code))
		if spark := Sparkline(q.Sparkline, sparklineWidth); spark != "" {
			detail += " · 7d: " + spark
		}
		w.Lines = append(w.Lines, Line{
			Text:   fmt.Sprintf("%s %s %s", star, coinLabel(q), format.Currency(q.Price, code)),
			Detail: detail,
			Tone:   toneOf(q.Change24h),
			Image:  q.Image,
			Action: "/fav " + q.ID,
		})
	}
	return w
}

// FearGreed renders the headline index reading from a newest-first series.
func FearGreed(samples []models.SentimentSample) Widget {
	s, ok := feargreed.Summarize(samples)
	if !ok {
		return empty(IDFearGreed, "No Fear & Greed data available.")
	}
	w := newWidget(IDFearGreed)
	w.Lines = append(w.Lines, Line{
		Text: fmt.Sprintf("%d · %s", s.Current.Value, s.Current.Classification),
	})
	if s.HasPrevious {
		w.Lines = append(w.Lines, Line{
			Text: "Change from yesterday: " + format.IndexChange(s.Change),
			Tone: toneOf(float64(s.Change)),
		})
	}
	w.Footer = "Updated: " + format.Timestamp(s.Current.Timestamp)
	return w
}

// ChartCaption describes the chart image for presenters that attach a caption.
func ChartCaption(samples []models.SentimentSample, style models.ChartStyle) string {
	return fmt.Sprintf("%s · %d days · %s", Title(IDFearGreedChart), len(samples), style)
}

// News renders the article list. Bodies are cut to NewsExcerptLength runes.
func News(items []models.NewsItem) Widget {
	if len(items) == 0 {
		return empty(IDNewsFeed, "No news available at the moment.")
	}
	w := newWidget(IDNewsFeed)
	for _, it := range items {
		image := it.ImageURL
		if image == "" {
			image = PlaceholderImage
		}
		w.Lines = append(w.Lines, Line{
			Text:   it.Title,
			Detail: fmt.Sprintf("%s (%s, %s)", format.Truncate(it.Body, NewsExcerptLength), it.Source, format.Date(it.PublishedAt)),
			Link:   it.URL,
			Image:  image,
		})
	}
	return w
}

// Sentiment renders the news tone breakdown.
func Sentiment(b models.SentimentBreakdown) Widget {
	if b.Total == 0 {
		return empty(IDSentiment, "No sentiment data available.")
	}
	w := newWidget(IDSentiment)
	w.Lines = []Line{
		{Text: fmt.Sprintf("😊 Positive %d%%", b.PositivePercent), Tone: ToneUp},
		{Text: fmt.Sprintf("😐 Neutral %d%%", b.NeutralPercent), Tone: ToneNeutral},
		{Text: fmt.Sprintf("😟 Negative %d%%", b.NegativePercent), Tone: ToneDown},
	}
	w.Footer = fmt.Sprintf("Based on recent news headlines (last %d articles)", b.Total)
	return w
}

// Portfolio renders holdings with their per-entry value and the total.
// Rows are numbered from 1, matching the /remove command.
func Portfolio(lines []portfolio.Line, total decimal.Decimal, currency models.Currency) Widget {
	if len(lines) == 0 {
		return empty(IDPortfolio, "No coins in portfolio. Add some with /add <coin> <quantity>.")
	}
	w := newWidget(IDPortfolio)
	code := string(currency)
	for i, l := range lines {
		value := "no price"
		if l.Matched {
			value = format.Currency(l.Value, code)
		}
		w.Lines = append(w.Lines, Line{
			Text:   fmt.Sprintf("%d. %s × %s = %s", i+1, strings.ToUpper(l.Entry.ID), format.Quantity(l.Entry.Quantity), value),
			Action: fmt.Sprintf("/remove %d", i+1),
		})
	}
	w.Footer = "Total Value: " + format.Currency(total, code)
	return w
}

// LastUpdate renders the refresh timestamp.
func LastUpdate(at time.Time) Widget {
	w := newWidget(IDLastUpdate)
	w.Lines = []Line{{Text: format.Timestamp(at)}}
	return w
}
