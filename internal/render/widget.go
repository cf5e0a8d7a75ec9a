// Package render turns fetched payloads and the current preferences into
// widget view-models. Every renderer returns a complete Widget that replaces
// the previous one wholesale; presenters never patch a widget in place.
package render

import "strings"

// Widget IDs. They are stable across refreshes and identify the slot a
// presenter draws into.
const (
	IDGainers        = "gainers"
	IDLosers         = "losers"
	IDMarketStats    = "market-stats"
	IDCryptoPrices   = "crypto-prices"
	IDFearGreed      = "fear-greed"
	IDFearGreedChart = "fear-greed-chart"
	IDNewsFeed       = "news-feed"
	IDSentiment      = "sentiment"
	IDPortfolio      = "portfolio"
	IDLastUpdate     = "last-update"
)

// WidgetIDs lists every widget in display order.
var WidgetIDs = []string{
	IDLastUpdate,
	IDMarketStats,
	IDGainers,
	IDLosers,
	IDCryptoPrices,
	IDFearGreed,
	IDFearGreedChart,
	IDSentiment,
	IDNewsFeed,
	IDPortfolio,
}

var titles = map[string]string{
	IDGainers:        "🚀 Top Gainers",
	IDLosers:         "📉 Top Losers",
	IDMarketStats:    "🌐 Market Overview",
	IDCryptoPrices:   "💰 Prices",
	IDFearGreed:      "😨 Fear & Greed Index",
	IDFearGreedChart: "📈 Fear & Greed History",
	IDNewsFeed:       "📰 Latest News",
	IDSentiment:      "🧭 News Sentiment",
	IDPortfolio:      "💼 Portfolio",
	IDLastUpdate:     "🕒 Last Update",
}

// Title returns the display title of a widget ID.
func Title(id string) string {
	if t, ok := titles[id]; ok {
		return t
	}
	return id
}

// Tone colours a line: gains, losses, or neither.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneUp
	ToneDown
)

// toneOf maps a signed change to its tone. Zero counts as up, as the
// dashboard has always shown flat assets in green.
func toneOf(change float64) Tone {
	if change >= 0 {
		return ToneUp
	}
	return ToneDown
}

// Line is one row of a widget.
type Line struct {
	Text   string
	Detail string // secondary text, e.g. an article excerpt
	Tone   Tone
	Link   string // article URL
	Image  string // logo or thumbnail URL
	Action string // command that acts on this row, e.g. "/fav bitcoin"
}

// Widget is the complete description of one dashboard slot.
type Widget struct {
	ID     string
	Title  string
	Lines  []Line
	Footer string
	Empty  bool   // true when there was nothing to show; Lines holds the notice
	Err    string // inline error message; Lines is empty when set
}

// Failed reports whether the widget carries an error instead of content.
func (w Widget) Failed() bool { return w.Err != "" }

// Text flattens the widget into plain text, one line per row.
func (w Widget) Text() string {
	var b strings.Builder
	b.WriteString(w.Title)
	b.WriteString("\n")
	if w.Failed() {
		b.WriteString("⚠️ " + w.Err + "\n")
		return b.String()
	}
	for _, l := range w.Lines {
		b.WriteString(l.Text)
		if l.Detail != "" {
			b.WriteString("\n  " + l.Detail)
		}
		b.WriteString("\n")
	}
	if w.Footer != "" {
		b.WriteString(w.Footer + "\n")
	}
	return b.String()
}

func newWidget(id string) Widget {
	return Widget{ID: id, Title: Title(id)}
}

func empty(id, notice string) Widget {
	w := newWidget(id)
	w.Empty = true
	w.Lines = []Line{{Text: notice}}
	return w
}

// Error builds the inline error widget shown when a fetch for id fails.
func Error(id, message string) Widget {
	w := newWidget(id)
	w.Err = message
	return w
}

// Error messages shown inline per widget.
const (
	ErrGainers     = "Unable to load top gainers"
	ErrLosers      = "Unable to load top losers"
	ErrMarketStats = "Unable to load market statistics"
	ErrPrices      = "Unable to load cryptocurrency prices"
	ErrFearGreed   = "Unable to load Fear & Greed Index"
	ErrChart       = "Unable to draw Fear & Greed history"
	ErrNews        = "Unable to load news feed"
	ErrSentiment   = "Unable to load sentiment analysis"
)
