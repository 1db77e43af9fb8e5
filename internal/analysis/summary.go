package analysis

import (
	"math"

	"github.com/san-kum/biosim/internal/dynamo"
)

type SpeciesSummary struct {
	Index   int     `json:"index"`
	Name    string  `json:"name"`
	Initial float64 `json:"initial"`
	Final   float64 `json:"final"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
}

// Summarize reports per-species statistics in species-index order.
func Summarize(r *dynamo.Result) []SpeciesSummary {
	if r == nil || r.Len() == 0 {
		return nil
	}

	out := make([]SpeciesSummary, r.NumSpecies)
	for s := range out {
		series := r.Trajectory(s)
		sum := SpeciesSummary{
			Index:   s,
			Initial: series[0],
			Final:   series[len(series)-1],
			Min:     math.Inf(1),
			Max:     math.Inf(-1),
		}
		if s < len(r.SpeciesNames) {
			sum.Name = r.SpeciesNames[s]
		}
		total := 0.0
		for _, v := range series {
			sum.Min = math.Min(sum.Min, v)
			sum.Max = math.Max(sum.Max, v)
			total += v
		}
		sum.Mean = total / float64(len(series))
		out[s] = sum
	}
	return out
}

// FirstNonFinite returns the first time index holding a NaN or Inf.
func FirstNonFinite(r *dynamo.Result) (int, bool) {
	for i, v := range r.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i / r.NumSpecies, true
		}
	}
	return 0, false
}

// Drift is the largest absolute deviation of Σ w_s·x_s from its initial
// value over the trajectory. Missing weights count as zero.
func Drift(r *dynamo.Result, weights []float64) float64 {
	if r.Len() == 0 {
		return 0
	}
	weighted := func(i int) float64 {
		row := r.Values[i*r.NumSpecies : (i+1)*r.NumSpecies]
		q := 0.0
		for s, w := range weights {
			if s < len(row) {
				q += w * row[s]
			}
		}
		return q
	}

	q0 := weighted(0)
	worst := 0.0
	for i := 1; i < r.Len(); i++ {
		worst = math.Max(worst, math.Abs(weighted(i)-q0))
	}
	return worst
}

// Monotonic reports whether series never decreases (increasing) or never
// increases (!increasing), allowing tol of slack per step.
func Monotonic(series []float64, increasing bool, tol float64) bool {
	for i := 1; i < len(series); i++ {
		d := series[i] - series[i-1]
		if increasing && d < -tol {
			return false
		}
		if !increasing && d > tol {
			return false
		}
	}
	return true
}
