package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/rewired-gh/coinboard/internal/feargreed"
	"github.com/rewired-gh/coinboard/internal/models"
)

var (
	seriesColor = drawing.ColorFromHex("3b82f6") // blue-500
	darkCanvas  = drawing.ColorFromHex("111827")
	darkText    = drawing.ColorFromHex("e5e7eb")
)

// Chart renders the Fear & Greed history as a PNG. samples arrive newest
// first and are drawn oldest first on a fixed 0–100 axis.
func Chart(samples []models.SentimentSample, style models.ChartStyle, theme models.Theme) ([]byte, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(samples))
	}
	ordered := feargreed.Chronological(samples)

	var buf bytes.Buffer
	var err error
	switch style {
	case models.ChartBar:
		err = barChart(ordered, theme).Render(chart.PNG, &buf)
	default:
		err = lineChart(ordered, theme).Render(chart.PNG, &buf)
	}
	if err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func yRange() *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: 0, Max: 100}
}

func canvasStyle(theme models.Theme) (background, canvas chart.Style, text drawing.Color) {
	background = chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10}}
	if theme == models.ThemeDark {
		background.FillColor = darkCanvas
		canvas.FillColor = darkCanvas
		return background, canvas, darkText
	}
	return background, canvas, chart.DefaultTextColor
}

func lineChart(samples []models.SentimentSample, theme models.Theme) chart.Chart {
	xValues := make([]time.Time, len(samples))
	yValues := make([]float64, len(samples))
	for i, s := range samples {
		xValues[i] = s.Timestamp
		yValues[i] = float64(s.Value)
	}

	background, canvas, text := canvasStyle(theme)
	axis := chart.Style{FontColor: text, StrokeColor: text}
	return chart.Chart{
		Title:      "Fear & Greed Index",
		TitleStyle: chart.Style{FontColor: text},
		Width:      900,
		Height:     400,
		Background: background,
		Canvas:     canvas,
		XAxis: chart.XAxis{
			Style: axis,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Style: axis,
			Range: yRange(),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Fear & Greed Index",
				Style: chart.Style{
					StrokeColor: seriesColor,
					StrokeWidth: 2.5,
					FillColor:   seriesColor.WithAlpha(50),
				},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}
}

func barChart(samples []models.SentimentSample, theme models.Theme) chart.BarChart {
	bars := make([]chart.Value, len(samples))
	for i, s := range samples {
		bars[i] = chart.Value{
			Label: s.Timestamp.Format("01/02"),
			Value: float64(s.Value),
			Style: chart.Style{FillColor: seriesColor.WithAlpha(150), StrokeColor: seriesColor},
		}
	}

	background, canvas, text := canvasStyle(theme)
	axis := chart.Style{FontColor: text, StrokeColor: text}
	barWidth := 800 / len(samples)
	if barWidth > 40 {
		barWidth = 40
	}
	if barWidth < 2 {
		barWidth = 2
	}
	return chart.BarChart{
		Title:      "Fear & Greed Index",
		TitleStyle: chart.Style{FontColor: text},
		Width:      900,
		Height:     400,
		BarWidth:   barWidth,
		BarSpacing: barWidth / 4,
		Background: background,
		Canvas:     canvas,
		XAxis:      axis,
		YAxis: chart.YAxis{
			Style: axis,
			Range: yRange(),
		},
		Bars: bars,
	}
}
