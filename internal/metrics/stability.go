package metrics

import (
	"math"

	"github.com/san-kum/biosim/internal/dynamo"
)

// Positivity is the fraction of samples whose concentrations are all
// finite and no lower than -tol.
type Positivity struct {
	name       string
	tol        float64
	violations int
	samples    int
}

func NewPositivity(tol float64) *Positivity {
	return &Positivity{
		name: "positivity",
		tol:  tol,
	}
}

func (p *Positivity) Name() string {
	return p.name
}

func (p *Positivity) Observe(x dynamo.State, t float64) {
	p.samples++
	for _, val := range x {
		if val < -p.tol || math.IsNaN(val) || math.IsInf(val, 0) {
			p.violations++
			break
		}
	}
}

func (p *Positivity) Value() float64 {
	if p.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(p.violations)/float64(p.samples)
}

func (p *Positivity) Reset() {
	p.violations = 0
	p.samples = 0
}

// Activity is the mean absolute rate of change per species between
// consecutive samples.
type Activity struct {
	name    string
	prev    dynamo.State
	prevT   float64
	sum     float64
	samples int
}

func NewActivity() *Activity {
	return &Activity{name: "activity"}
}

func (a *Activity) Name() string {
	return a.name
}

func (a *Activity) Observe(x dynamo.State, t float64) {
	if a.prev != nil && t > a.prevT && len(x) > 0 {
		dt := t - a.prevT
		rate := 0.0
		for i, val := range x {
			rate += math.Abs(val-a.prev[i]) / dt
		}
		a.sum += rate / float64(len(x))
		a.samples++
	}
	a.prev = append(a.prev[:0], x...)
	a.prevT = t
}

func (a *Activity) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

func (a *Activity) Reset() {
	a.prev = nil
	a.prevT = 0
	a.sum = 0
	a.samples = 0
}
