package render

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil, 10))
	assert.Equal(t, "", Sparkline([]float64{1}, 10))
	assert.Equal(t, "▁█", Sparkline([]float64{1, 2}, 10))
	assert.Equal(t, "▁▁▁", Sparkline([]float64{5, 5, 5}, 10))
	assert.Equal(t, "▁▄█", Sparkline([]float64{0, 50, 100}, 10))
}

func TestSparkline_DownsamplesToWidth(t *testing.T) {
	values := make([]float64, 168)
	for i := range values {
		values[i] = float64(i)
	}

	s := Sparkline(values, sparklineWidth)

	assert.Equal(t, sparklineWidth, utf8.RuneCountInString(s))
	r := []rune(s)
	assert.Equal(t, '▁', r[0])
	assert.Equal(t, '█', r[len(r)-1])
}
