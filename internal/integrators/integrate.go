package integrators

import (
	"github.com/san-kum/biosim/internal/dynamo"
)

// Integrate advances dyn from x0 over the fixed grid 0, dt, 2dt, ... up to
// the last sample not past cfg.TimeEnd, recording every state. Non-finite
// states are recorded and stepping continues.
func Integrate(dyn dynamo.System, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	method, err := ParseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	if len(x0) != dyn.StateDim() {
		return nil, dynamo.ErrDimensionMismatch
	}
	if err := cfg.CheckCapacity(len(x0)); err != nil {
		return nil, err
	}
	integ, err := method.New()
	if err != nil {
		return nil, err
	}

	steps := dynamo.StepCount(cfg.TimeEnd, cfg.TimeStep)
	dt := cfg.TimeStep
	result := dynamo.NewResult(steps+1, len(x0))

	x := x0.Clone()
	result.Append(0, x)

	for i := 1; i <= steps; i++ {
		t := float64(i-1) * dt
		x = integ.Step(dyn, x, t, dt)
		if cfg.ClampNegative {
			clampNegative(x)
		}
		result.Append(float64(i)*dt, x)
	}

	return result, nil
}

func clampNegative(x dynamo.State) {
	for i := range x {
		if x[i] < 0 {
			x[i] = 0
		}
	}
}
