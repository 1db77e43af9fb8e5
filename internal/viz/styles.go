package viz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#e8f0ff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#3a4a5a"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5fd7af")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8a94a6"))

	WarningText = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// sparkBands colors a level by where it sits in the series range: depleted,
// intermediate, abundant.
var sparkBands = [3]lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("#d75f5f")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#d7af5f")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#5fd787")),
}

// GradientText colors each rune of text along a linear blend between two
// hex colors.
func GradientText(text string, from, to lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	r0, g0, b0 := parseHex(string(from))
	r1, g1, b1 := parseHex(string(to))
	blend := func(a, b int, t float64) int { return a + int(t*float64(b-a)) }

	var sb strings.Builder
	for i, c := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		color := hexColor(blend(r0, r1, t), blend(g0, g1, t), blend(b0, b1, t))
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(c)))
	}
	return sb.String()
}

// SparklineChart squeezes a concentration series into width cells. Each
// cell shows the mean of its bucket of samples, scaled to the series range.
func SparklineChart(series []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(series) == 0 {
		return strings.Repeat("─", width)
	}

	cells := min(width, len(series))
	means := make([]float64, cells)
	for c := range means {
		lo := c * len(series) / cells
		hi := (c + 1) * len(series) / cells
		sum := 0.0
		for _, v := range series[lo:hi] {
			sum += v
		}
		means[c] = sum / float64(hi-lo)
	}

	lo, hi := means[0], means[0]
	for _, v := range means {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var sb strings.Builder
	for _, v := range means {
		norm := (v - lo) / span
		level := min(max(int(norm*float64(len(sparkLevels)-1)), 0), len(sparkLevels)-1)
		band := 0
		switch {
		case norm > 0.7:
			band = 2
		case norm > 0.3:
			band = 1
		}
		sb.WriteString(sparkBands[band].Render(string(sparkLevels[level])))
	}
	return sb.String()
}

func parseHex(hex string) (r, g, b int) {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if len(hex) != 7 || hex[0] != '#' || err != nil {
		return 255, 255, 255
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

func hexColor(r, g, b int) string {
	return fmt.Sprintf("#%02x%02x%02x", clampByte(r), clampByte(g), clampByte(b))
}

func clampByte(v int) int {
	return max(0, min(255, v))
}
