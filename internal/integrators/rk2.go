package integrators

import "github.com/san-kum/biosim/internal/dynamo"

// Midpoint is the explicit second-order midpoint rule (RK2).
type Midpoint struct {
	scratch dynamo.State
}

func NewMidpoint() *Midpoint {
	return &Midpoint{}
}

func (m *Midpoint) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	if len(m.scratch) != n {
		m.scratch = make(dynamo.State, n)
	}

	k1 := dyn.Derive(x, t)
	for i := 0; i < n; i++ {
		m.scratch[i] = x[i] + dt*0.5*k1[i]
	}
	k2 := dyn.Derive(m.scratch, t+dt*0.5)

	result := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt*k2[i]
	}
	return result
}

// Heun is the trapezoidal predictor-corrector (improved Euler).
type Heun struct {
	scratch dynamo.State
}

func NewHeun() *Heun {
	return &Heun{}
}

func (h *Heun) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	if len(h.scratch) != n {
		h.scratch = make(dynamo.State, n)
	}

	k1 := dyn.Derive(x, t)
	for i := 0; i < n; i++ {
		h.scratch[i] = x[i] + dt*k1[i]
	}
	k2 := dyn.Derive(h.scratch, t+dt)

	result := make(dynamo.State, n)
	halfDt := 0.5 * dt
	for i := 0; i < n; i++ {
		result[i] = x[i] + halfDt*(k1[i]+k2[i])
	}
	return result
}
