package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/biosim/internal/dynamo"
	"github.com/san-kum/biosim/internal/models"
	"github.com/san-kum/biosim/internal/sbml"
	"github.com/san-kum/biosim/internal/scan"
	"github.com/san-kum/biosim/internal/sim"
)

func twoSpecies(rows ...[2]float64) *dynamo.Result {
	r := dynamo.NewResult(len(rows), 2)
	r.SpeciesNames = []string{"A", "B"}
	for i, row := range rows {
		r.Append(float64(i)*0.5, dynamo.State{row[0], row[1]})
	}
	return r
}

func TestSummarize(t *testing.T) {
	r := twoSpecies([2]float64{1, 0}, [2]float64{3, 2}, [2]float64{2, 4})

	sums := Summarize(r)
	require.Len(t, sums, 2)

	assert.Equal(t, "A", sums[0].Name)
	assert.Equal(t, 1.0, sums[0].Initial)
	assert.Equal(t, 2.0, sums[0].Final)
	assert.Equal(t, 1.0, sums[0].Min)
	assert.Equal(t, 3.0, sums[0].Max)
	assert.InDelta(t, 2.0, sums[0].Mean, 1e-12)

	assert.Equal(t, "B", sums[1].Name)
	assert.Equal(t, 4.0, sums[1].Max)

	assert.Nil(t, Summarize(dynamo.NewResult(0, 2)))
}

func TestFirstNonFinite(t *testing.T) {
	r := twoSpecies([2]float64{1, 1}, [2]float64{2, 2}, [2]float64{math.Inf(1), math.NaN()})

	i, ok := FirstNonFinite(r)
	require.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = FirstNonFinite(twoSpecies([2]float64{1, 1}))
	assert.False(t, ok)
}

func TestDrift(t *testing.T) {
	r := twoSpecies([2]float64{1, 0}, [2]float64{0.5, 0.5}, [2]float64{0.2, 0.9})
	assert.InDelta(t, 0.1, Drift(r, []float64{1, 1}), 1e-12)
	assert.Equal(t, 0.0, Drift(r, nil))
}

func TestDriftConversionConserved(t *testing.T) {
	model, err := sbml.ParseString(models.MustSource(models.Conversion))
	require.NoError(t, err)

	r, err := sim.Simulate(model, dynamo.Config{TimeEnd: 20, TimeStep: 0.1, Method: "rk4"})
	require.NoError(t, err)

	assert.Less(t, Drift(r, []float64{1, 1}), 1e-9)
	assert.True(t, Monotonic(r.Trajectory(0), false, 0))
	assert.True(t, Monotonic(r.Trajectory(1), true, 0))
}

func TestMonotonic(t *testing.T) {
	assert.True(t, Monotonic([]float64{1, 2, 2, 3}, true, 0))
	assert.False(t, Monotonic([]float64{1, 2, 1.5}, true, 0))
	assert.True(t, Monotonic([]float64{1, 2, 1.9999}, true, 1e-3))
	assert.True(t, Monotonic(nil, false, 0))
}

func TestDominantPeriod(t *testing.T) {
	const dt = 0.05
	series := make([]float64, 1024)
	for i := range series {
		series[i] = 3 + math.Sin(float64(i)*dt)
	}

	assert.InDelta(t, 2*math.Pi, DominantPeriod(series, dt), 0.5)
	assert.Equal(t, 0.0, DominantPeriod([]float64{1, 1, 1, 1, 1}, dt))
	assert.Equal(t, 0.0, DominantPeriod([]float64{1, 2}, dt))
}

func TestPhasePortrait(t *testing.T) {
	r := twoSpecies([2]float64{1, 5}, [2]float64{2, 6}, [2]float64{3, 4})

	p := PhasePortraitFromResult(r, 0, 1)
	require.NotNil(t, p)
	require.Len(t, p.Points, 3)
	assert.Equal(t, 2.0, p.Points[1].X)
	assert.Equal(t, 6.0, p.Points[1].Y)

	assert.Nil(t, PhasePortraitFromResult(r, 0, 2))

	art := PhasePortraitToASCII(p, 20, 10)
	assert.Equal(t, 10, strings.Count(art, "\n"))
	assert.Contains(t, art, "•")
	assert.Empty(t, PhasePortraitToASCII(nil, 20, 10))
}

func TestSweepPeaks(t *testing.T) {
	osc := dynamo.NewResult(7, 1)
	for i, v := range []float64{0, 2, 0, 2, 0, 3, 0} {
		osc.Append(float64(i), dynamo.State{v})
	}

	points := SweepPeaks([]scan.Result{
		{ParameterValue: 0.1, Results: osc},
		{ParameterValue: 0.2, Results: nil},
	}, 0, 2)

	require.Len(t, points, 2)
	assert.Equal(t, 0.1, points[0].Param)
	assert.Equal(t, []float64{2, 3}, points[0].Peaks)
	assert.Empty(t, points[1].Peaks)
}
