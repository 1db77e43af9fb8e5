package viz

import (
	"fmt"
	"strings"

	"github.com/san-kum/biosim/internal/analysis"
	"github.com/san-kum/biosim/internal/dynamo"
)

// SummaryTable renders per-species statistics with a sparkline of each
// trajectory.
func SummaryTable(r *dynamo.Result, sums []analysis.SpeciesSummary) string {
	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render(fmt.Sprintf("%-14s %12s %12s %12s %12s  %s",
		"species", "initial", "final", "min", "max", "trajectory")))
	sb.WriteString("\n")

	for _, s := range sums {
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("x%d", s.Index)
		}
		sb.WriteString(MetricLabel.Render(fmt.Sprintf("%-14s", name)))
		for _, v := range []float64{s.Initial, s.Final, s.Min, s.Max} {
			sb.WriteString(" ")
			sb.WriteString(MetricValue.Render(fmt.Sprintf("%12.5g", v)))
		}
		sb.WriteString("  ")
		sb.WriteString(SparklineChart(r.Trajectory(s.Index), 24))
		sb.WriteString("\n")
	}
	return sb.String()
}

// KeyValue renders one labeled metric line.
func KeyValue(label string, value any) string {
	return MetricLabel.Render(fmt.Sprintf("%-16s", label+":")) + " " + MetricValue.Render(fmt.Sprint(value))
}
