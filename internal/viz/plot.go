package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/biosim/internal/dynamo"
)

// chart colors and the matching legend colors
var (
	seriesColors = []asciigraph.AnsiColor{
		asciigraph.Green,
		asciigraph.Red,
		asciigraph.Blue,
		asciigraph.Yellow,
		asciigraph.Magenta,
		asciigraph.Cyan,
	}
	legendColors = []lipgloss.Color{"#00ff00", "#ff0000", "#0000ff", "#ffff00", "#ff00ff", "#00ffff"}
)

type PlotOptions struct {
	Width   int
	Height  int
	Caption string
	Color   bool
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Width: 80, Height: 15, Color: true}
}

// PlotSpecies charts the trajectories of the given species indices on one
// set of axes. An empty selection plots every species.
func PlotSpecies(r *dynamo.Result, species []int, opts PlotOptions) (string, error) {
	if r == nil || r.Len() == 0 {
		return "", fmt.Errorf("nothing to plot: empty result")
	}
	if len(species) == 0 {
		species = make([]int, r.NumSpecies)
		for i := range species {
			species[i] = i
		}
	}

	series := make([][]float64, 0, len(species))
	legend := make([]string, 0, len(species))
	for _, s := range species {
		if s < 0 || s >= r.NumSpecies {
			return "", fmt.Errorf("species index %d out of range [0,%d)", s, r.NumSpecies)
		}
		data := Downsample(r.Trajectory(s), opts.Width)
		for _, v := range data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return "", fmt.Errorf("species %d has non-finite values", s)
			}
		}
		series = append(series, data)
		legend = append(legend, speciesLabel(r, s))
	}

	caption := opts.Caption
	if caption == "" {
		caption = fmt.Sprintf("t = %.4g .. %.4g", r.Time[0], r.Time[r.Len()-1])
	}

	graphOpts := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption),
	}
	if opts.Color {
		graphOpts = append(graphOpts, asciigraph.SeriesColors(colorsFor(len(series))...))
	}

	var sb strings.Builder
	sb.WriteString(asciigraph.PlotMany(series, graphOpts...))
	sb.WriteString("\n")
	for i, name := range legend {
		if i > 0 {
			sb.WriteString("  ")
		}
		marker := "──"
		if opts.Color {
			marker = lipgloss.NewStyle().Foreground(legendColors[i%len(legendColors)]).Render(marker)
		}
		sb.WriteString(marker + " " + name)
	}
	sb.WriteString("\n")
	return sb.String(), nil
}

// PlotSeries charts one series, such as a power spectrum.
func PlotSeries(data []float64, opts PlotOptions) string {
	return asciigraph.Plot(Downsample(data, opts.Width),
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(opts.Caption),
	)
}

// Downsample keeps at most n evenly strided points, always including the
// last one.
func Downsample(data []float64, n int) []float64 {
	if n <= 1 || len(data) <= n {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = data[i*(len(data)-1)/(n-1)]
	}
	return out
}

func colorsFor(n int) []asciigraph.AnsiColor {
	out := make([]asciigraph.AnsiColor, n)
	for i := range out {
		out[i] = seriesColors[i%len(seriesColors)]
	}
	return out
}

func speciesLabel(r *dynamo.Result, s int) string {
	if s < len(r.SpeciesNames) && r.SpeciesNames[s] != "" {
		return r.SpeciesNames[s]
	}
	return fmt.Sprintf("x%d", s)
}
