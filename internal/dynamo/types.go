package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Sum() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum
}

// System is an autonomous ODE right-hand side. Derive must not retain or
// mutate x; integrators call it several times per step.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// Result is a sampled trajectory. Values is row-major over
// (time index, species index), so len(Values) == len(Time)*NumSpecies.
type Result struct {
	Time         []float64 `json:"time"`
	Values       []float64 `json:"values"`
	NumSpecies   int       `json:"num_species"`
	SpeciesNames []string  `json:"species_names,omitempty"`
}

func NewResult(samples, numSpecies int) *Result {
	return &Result{
		Time:       make([]float64, 0, samples),
		Values:     make([]float64, 0, samples*numSpecies),
		NumSpecies: numSpecies,
	}
}

// Append records a sample. The state is copied into Values.
func (r *Result) Append(t float64, x State) {
	r.Time = append(r.Time, t)
	r.Values = append(r.Values, x...)
}

func (r *Result) Len() int { return len(r.Time) }

// At returns a copy of the state recorded at time index i.
func (r *Result) At(i int) State {
	row := r.Values[i*r.NumSpecies : (i+1)*r.NumSpecies]
	return State(row).Clone()
}

func (r *Result) Final() State {
	if r.Len() == 0 {
		return nil
	}
	return r.At(r.Len() - 1)
}

// Trajectory returns the time series of one species.
func (r *Result) Trajectory(species int) []float64 {
	out := make([]float64, r.Len())
	for i := range out {
		out[i] = r.Values[i*r.NumSpecies+species]
	}
	return out
}

// Consistent reports whether the flat layout matches the sample and
// species counts.
func (r *Result) Consistent() bool {
	return len(r.Values) == len(r.Time)*r.NumSpecies
}
