package analysis

import (
	"github.com/san-kum/biosim/internal/scan"
)

// SweepPoint holds the distinct local maxima one species reached for one
// scan value, after the transient.
type SweepPoint struct {
	Param float64
	Peaks []float64
}

// SweepPeaks turns a scan into a bifurcation-style diagram: for each
// entry, the local maxima of species observed at or after time transient,
// quantized to 1e-3 to merge repeats of the same orbit.
func SweepPeaks(results []scan.Result, species int, transient float64) []SweepPoint {
	out := make([]SweepPoint, 0, len(results))
	for _, entry := range results {
		point := SweepPoint{Param: entry.ParameterValue}
		r := entry.Results
		if r == nil || species < 0 || species >= r.NumSpecies {
			out = append(out, point)
			continue
		}

		series := r.Trajectory(species)
		seen := make(map[int]bool)
		for i := 1; i < len(series)-1; i++ {
			if r.Time[i] < transient {
				continue
			}
			if series[i] > series[i-1] && series[i] >= series[i+1] {
				key := int(series[i] * 1000)
				if !seen[key] {
					seen[key] = true
					point.Peaks = append(point.Peaks, series[i])
				}
			}
		}
		out = append(out, point)
	}
	return out
}
