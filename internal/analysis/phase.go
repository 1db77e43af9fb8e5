package analysis

import (
	"strings"

	"github.com/san-kum/biosim/internal/dynamo"
)

// Point is one sample of a phase portrait.
type Point struct {
	X, Y float64
}

// PhasePortrait2D holds one species plotted against another.
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// PhasePortraitFromResult pairs two species' trajectories sample by
// sample. It returns nil for out-of-range indices.
func PhasePortraitFromResult(r *dynamo.Result, xIdx, yIdx int) *PhasePortrait2D {
	if xIdx < 0 || yIdx < 0 || xIdx >= r.NumSpecies || yIdx >= r.NumSpecies {
		return nil
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, r.Len()),
	}
	for i := range portrait.Points {
		row := r.Values[i*r.NumSpecies : (i+1)*r.NumSpecies]
		portrait.Points[i] = Point{X: row[xIdx], Y: row[yIdx]}
	}
	return portrait
}

// window is a padded axis range.
type window struct {
	lo, span float64
}

// axisWindow spans values with a 10% margin on each side. A flat axis gets
// a unit span.
func axisWindow(values func(Point) float64, pts []Point) window {
	lo, hi := values(pts[0]), values(pts[0])
	for _, p := range pts[1:] {
		lo = min(lo, values(p))
		hi = max(hi, values(p))
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return window{lo: lo - 0.1*span, span: 1.2 * span}
}

// cell maps v into [0, n-1]; ok is false outside the window.
func (w window) cell(v float64, n int) (int, bool) {
	if v < w.lo || v > w.lo+w.span {
		return 0, false
	}
	i := int((v - w.lo) / w.span * float64(n-1))
	return i, i < n
}

// PhasePortraitToASCII draws the portrait on a width x height character
// grid, one line per row. Zero-concentration axes appear when they fall
// inside the plotted window.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	xw := axisWindow(func(p Point) float64 { return p.X }, portrait.Points)
	yw := axisWindow(func(p Point) float64 { return p.Y }, portrait.Points)

	grid := make([][]rune, height)
	for row := range grid {
		grid[row] = []rune(strings.Repeat(" ", width))
	}

	if col, ok := xw.cell(0, width); ok {
		for row := range grid {
			grid[row][col] = '│'
		}
	}
	if r, ok := yw.cell(0, height); ok {
		row := height - 1 - r
		for col := range grid[row] {
			if grid[row][col] == ' ' {
				grid[row][col] = '─'
			}
		}
	}

	for _, p := range portrait.Points {
		col, okX := xw.cell(p.X, width)
		r, okY := yw.cell(p.Y, height)
		if okX && okY {
			grid[height-1-r][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}
