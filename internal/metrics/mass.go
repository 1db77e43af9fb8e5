package metrics

import (
	"math"

	"github.com/san-kum/biosim/internal/dynamo"
)

// MeanTotal is the time average of the summed concentrations.
type MeanTotal struct {
	name    string
	total   float64
	samples int
}

func NewMeanTotal() *MeanTotal {
	return &MeanTotal{name: "mean_total"}
}

func (m *MeanTotal) Name() string { return m.name }

func (m *MeanTotal) Observe(x dynamo.State, t float64) {
	m.total += x.Sum()
	m.samples++
}

func (m *MeanTotal) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanTotal) Reset() {
	m.total = 0
	m.samples = 0
}

// TotalDrift tracks the largest relative deviation of Σ w·x from its
// first observed value. Nil weights weigh every species by one.
type TotalDrift struct {
	name     string
	weights  []float64
	initial  float64
	maxDrift float64
	samples  int
}

func NewTotalDrift(weights []float64) *TotalDrift {
	return &TotalDrift{
		name:    "total_drift",
		weights: weights,
	}
}

func (d *TotalDrift) Name() string { return d.name }

func (d *TotalDrift) Observe(x dynamo.State, t float64) {
	q := x.Sum()
	if d.weights != nil {
		q = 0
		for i, w := range d.weights {
			if i < len(x) {
				q += w * x[i]
			}
		}
	}

	if d.samples == 0 {
		d.initial = q
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(q-d.initial) / math.Abs(d.initial)
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *TotalDrift) Value() float64 {
	return d.maxDrift
}

func (d *TotalDrift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
