package render

import "math"

const sparklineWidth = 24

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values as a row of block characters, averaging them down
// to at most width cells. Fewer than two values draw nothing.
func Sparkline(values []float64, width int) string {
	if len(values) < 2 || width < 1 {
		return ""
	}
	cells := bucket(values, width)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range cells {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make([]rune, len(cells))
	for i, v := range cells {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		out[i] = sparkBlocks[idx]
	}
	return string(out)
}

// bucket averages values into at most n consecutive groups.
func bucket(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for i := range out {
		start := i * len(values) / n
		end := (i + 1) * len(values) / n
		sum := 0.0
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
