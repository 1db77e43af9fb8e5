// Package export renders trajectories as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/biosim/internal/analysis"
	"github.com/san-kum/biosim/internal/dynamo"
)

var palette = []string{"#00ff88", "#ff4444", "#00ccff", "#ffcc00", "#ff00ff", "#88ffff"}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b *bounds) include(x, y float64) {
	b.minX = math.Min(b.minX, x)
	b.maxX = math.Max(b.maxX, x)
	b.minY = math.Min(b.minY, y)
	b.maxY = math.Max(b.maxY, y)
}

// pad widens each axis by 10% so lines do not touch the frame.
func (b *bounds) pad() {
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
}

func newBounds() bounds {
	return bounds{minX: math.Inf(1), maxX: math.Inf(-1), minY: math.Inf(1), maxY: math.Inf(-1)}
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

func writePath(sb *strings.Builder, xs, ys []float64, b bounds, width, height int, color string) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, color)
	for i := range xs {
		x := (xs[i] - b.minX) / (b.maxX - b.minX) * float64(width)
		y := float64(height) - (ys[i]-b.minY)/(b.maxY-b.minY)*float64(height)
		if i == 0 {
			fmt.Fprintf(sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

// TrajectoriesToSVG draws every species against time on shared axes with
// a legend. It returns "" for results with fewer than two samples or any
// non-finite value.
func TrajectoriesToSVG(r *dynamo.Result, width, height int) string {
	if r == nil || r.Len() < 2 {
		return ""
	}
	if _, ok := analysis.FirstNonFinite(r); ok {
		return ""
	}

	b := newBounds()
	for i, t := range r.Time {
		for s := 0; s < r.NumSpecies; s++ {
			b.include(t, r.Values[i*r.NumSpecies+s])
		}
	}
	b.pad()

	var sb strings.Builder
	header(&sb, width, height)
	for s := 0; s < r.NumSpecies; s++ {
		color := palette[s%len(palette)]
		writePath(&sb, r.Time, r.Trajectory(s), b, width, height, color)

		name := fmt.Sprintf("x%d", s)
		if s < len(r.SpeciesNames) {
			name = r.SpeciesNames[s]
		}
		fmt.Fprintf(&sb, `<text x="10" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 20+16*s, color, escape(name))
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// PhasePortraitToSVG draws one species against another.
func PhasePortraitToSVG(p *analysis.PhasePortrait2D, width, height int, strokeColor string) string {
	if p == nil || len(p.Points) < 2 {
		return ""
	}

	xs := make([]float64, len(p.Points))
	ys := make([]float64, len(p.Points))
	b := newBounds()
	for i, pt := range p.Points {
		xs[i], ys[i] = pt.X, pt.Y
		b.include(pt.X, pt.Y)
	}
	b.pad()

	var sb strings.Builder
	header(&sb, width, height)
	writePath(&sb, xs, ys, b, width, height, strokeColor)
	sb.WriteString("</svg>")
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}
