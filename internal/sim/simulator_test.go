package sim

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/biosim/internal/dynamo"
	"github.com/san-kum/biosim/internal/models"
	"github.com/san-kum/biosim/internal/sbml"
)

func mustModel(t *testing.T, name string) *sbml.Model {
	t.Helper()
	m, err := sbml.ParseString(models.MustSource(name))
	require.NoError(t, err)
	return m
}

func TestConversionScenario(t *testing.T) {
	m := mustModel(t, models.Conversion)

	res, err := Simulate(m, dynamo.Config{TimeEnd: 10.0, TimeStep: 0.1, Method: "rk4"})
	require.NoError(t, err)

	require.Equal(t, 101, res.Len())
	require.True(t, res.Consistent())
	assert.Equal(t, 2, res.NumSpecies)
	assert.Equal(t, []string{"Species A", "Species B"}, res.SpeciesNames)

	a := res.Trajectory(0)
	b := res.Trajectory(1)
	for i := 1; i < res.Len(); i++ {
		assert.LessOrEqual(t, a[i], a[i-1], "A must not increase at sample %d", i)
		assert.GreaterOrEqual(t, b[i], b[i-1], "B must not decrease at sample %d", i)
	}
	for i := range a {
		assert.InDelta(t, 10.0, a[i]+b[i], 1e-9, "mass not conserved at sample %d", i)
	}

	// A(t) = 10 exp(-0.1 t)
	assert.InDelta(t, 10*math.Exp(-1), a[len(a)-1], 1e-6)
}

func TestLotkaVolterraScenario(t *testing.T) {
	m := mustModel(t, models.LotkaVolterra)

	res, err := Simulate(m, dynamo.Config{TimeEnd: 50.0, TimeStep: 0.1, Method: "rk4"})
	require.NoError(t, err)

	require.Equal(t, 501, len(res.Time))
	require.Equal(t, 501*2, len(res.Values))
	assert.Equal(t, 0.0, res.Time[0])
	for i, ti := range res.Time {
		assert.Equal(t, float64(i)*0.1, ti)
	}

	prey := res.Trajectory(0)
	predator := res.Trajectory(1)
	for i := 0; i < 100; i++ {
		assert.GreaterOrEqual(t, prey[i], 0.0)
		assert.GreaterOrEqual(t, predator[i], 0.0)
	}

	// oscillation: prey both rises above and falls below its start
	maxPrey, minPrey := prey[0], prey[0]
	for _, v := range prey {
		maxPrey = math.Max(maxPrey, v)
		minPrey = math.Min(minPrey, v)
	}
	assert.Greater(t, maxPrey, 10.0)
	assert.Less(t, minPrey, 10.0)
}

func TestSimulateDeterministic(t *testing.T) {
	m := mustModel(t, models.LotkaVolterra)
	cfg := dynamo.Config{TimeEnd: 20, TimeStep: 0.05}

	a, err := Simulate(m, cfg)
	require.NoError(t, err)
	b, err := Simulate(m, cfg)
	require.NoError(t, err)

	require.Equal(t, len(a.Values), len(b.Values))
	for i := range a.Values {
		if math.Float64bits(a.Values[i]) != math.Float64bits(b.Values[i]) {
			t.Fatalf("value %d differs: %v vs %v", i, a.Values[i], b.Values[i])
		}
	}
}

func TestConservedQuantityConvergesWithStep(t *testing.T) {
	m := mustModel(t, models.Dimerization)

	drift := func(dt float64) float64 {
		res, err := Simulate(m, dynamo.Config{TimeEnd: 5, TimeStep: dt, Method: "euler"})
		require.NoError(t, err)
		worst := 0.0
		for i := 0; i < res.Len(); i++ {
			x := res.At(i)
			worst = math.Max(worst, math.Abs(x[0]+2*x[1]-2.0))
		}
		return worst
	}

	// M + 2D is conserved exactly by every linear update; drift stays at rounding level.
	assert.Less(t, drift(0.1), 1e-10)
	assert.Less(t, drift(0.01), 1e-10)
}

func TestSimulatorRunFrom(t *testing.T) {
	m := mustModel(t, models.Conversion)
	s, err := New(m)
	require.NoError(t, err)

	res, err := s.RunFrom(dynamo.State{0, 4}, []float64{0.1}, dynamo.Config{TimeEnd: 1, TimeStep: 0.5})
	require.NoError(t, err)
	assert.Equal(t, dynamo.State{0, 4}, res.Final(), "nothing to convert")

	_, err = s.RunFrom(dynamo.State{1}, []float64{0.1}, dynamo.Config{TimeEnd: 1, TimeStep: 0.5})
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)

	_, err = s.RunFrom(dynamo.State{1, 0}, nil, dynamo.Config{TimeEnd: 1, TimeStep: 0.5})
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestSimulateErrors(t *testing.T) {
	m := mustModel(t, models.Conversion)

	_, err := Simulate(m, dynamo.Config{TimeEnd: 1, TimeStep: 0.1, Method: "gear"})
	assert.True(t, errors.Is(err, dynamo.ErrUnsupportedMethod))

	_, err = Simulate(m, dynamo.Config{TimeStep: 0.1})
	assert.True(t, errors.Is(err, dynamo.ErrInvalidConfig))

	_, err = Simulate(m, dynamo.Config{TimeEnd: 1e20, TimeStep: 1, Method: "rk4"})
	assert.True(t, errors.Is(err, dynamo.ErrInvalidConfig), "step count beyond the limit")

	unresolved, err := sbml.NewModel("m", "", []sbml.Compartment{{ID: "c"}},
		[]sbml.Species{{ID: "A", Compartment: "c", InitialConcentration: 1}}, nil,
		[]sbml.Reaction{{ID: "r", Reactants: []string{"A"}}})
	require.NoError(t, err)
	_, err = Simulate(unresolved, dynamo.Config{TimeEnd: 1, TimeStep: 0.1})
	assert.True(t, errors.Is(err, dynamo.ErrUnresolvedRateConstant))
}

func TestSimulateLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m := mustModel(t, models.Conversion)
	_, err := Simulate(m, dynamo.Config{TimeEnd: 2000, TimeStep: 0.1}, WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "model compiled")
	assert.Contains(t, out, "running simulation")
	assert.Contains(t, out, "large simulation may be slow")
	assert.Contains(t, out, "simulation complete")
}

func TestCheckConfigDefaultsMethod(t *testing.T) {
	cfg, err := CheckConfig(dynamo.Config{TimeEnd: 1, TimeStep: 0.1})
	require.NoError(t, err)
	assert.Equal(t, "rk4", cfg.Method)
}
