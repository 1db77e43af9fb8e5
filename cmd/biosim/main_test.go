package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAssignments(t *testing.T) {
	got, err := applyAssignments(nil, []string{"k1=0.5", "k2=1e-3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"k1": 0.5, "k2": 1e-3}, got)

	got, err = applyAssignments(map[string]float64{"k1": 1}, []string{"k1=2"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got["k1"])

	for _, bad := range []string{"k1", "=1", "k1=abc"} {
		_, err := applyAssignments(nil, []string{bad})
		assert.Error(t, err, bad)
	}
}

func TestPowerOfTwoPrefix(t *testing.T) {
	assert.Len(t, powerOfTwoPrefix(make([]float64, 1001)), 512)
	assert.Len(t, powerOfTwoPrefix(make([]float64, 4)), 4)
}

func TestEquationSide(t *testing.T) {
	assert.Equal(t, "∅", equationSide(nil))
	assert.Equal(t, "M + M", equationSide([]string{"M", "M"}))
}

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"k1=0.1:0.3:3", "k2=1:1:1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2"}, names)
	require.Len(t, ranges, 2)
	assert.InDeltaSlice(t, []float64{0.1, 0.2, 0.3}, ranges[0], 1e-12)
	assert.Equal(t, []float64{1}, ranges[1])

	for _, bad := range []string{"k1", "k1=0.1:0.3", "k1=a:1:2", "k1=0:1:0", "=0:1:2"} {
		_, _, err := parseGrid([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestAnalyzeSpeciesIndexIsSeparateFromPlotAxis(t *testing.T) {
	root := newRootCmd()
	xAxis, peakSpecies = 0, 0

	analyze, _, err := root.Find([]string{"analyze"})
	require.NoError(t, err)
	require.NoError(t, analyze.Flags().Set("species-index", "1"))

	plot, _, err := root.Find([]string{"plot"})
	require.NoError(t, err)
	require.NoError(t, plot.Flags().Set("x-axis", "2"))

	assert.Equal(t, 1, peakSpecies)
	assert.Equal(t, 2, xAxis)
}
