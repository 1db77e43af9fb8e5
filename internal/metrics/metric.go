// Package metrics reduces a trajectory to named scalars by observing it
// one sample at a time.
package metrics

import (
	"github.com/san-kum/biosim/internal/dynamo"
)

type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

// Default is the set computed for stored runs.
func Default() []Metric {
	return []Metric{
		NewMeanTotal(),
		NewTotalDrift(nil),
		NewPositivity(1e-12),
		NewActivity(),
	}
}

// Evaluate resets each metric, feeds it every sample of r in time order
// and collects the values by name.
func Evaluate(r *dynamo.Result, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
	}
	for i := 0; i < r.Len(); i++ {
		x := dynamo.State(r.Values[i*r.NumSpecies : (i+1)*r.NumSpecies])
		for _, m := range ms {
			m.Observe(x, r.Time[i])
		}
	}
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
