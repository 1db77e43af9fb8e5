package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/biosim/internal/dynamo"
	"github.com/san-kum/biosim/internal/models"
	"github.com/san-kum/biosim/internal/sbml"
)

func conversion(t *testing.T) *sbml.Model {
	t.Helper()
	m, err := sbml.ParseString(models.MustSource(models.Conversion))
	require.NoError(t, err)
	return m
}

func TestGridSearchFindsRate(t *testing.T) {
	m := conversion(t)
	cfg := dynamo.Config{TimeEnd: 10, TimeStep: 0.01}

	// A(10) = 10·e^{-10k}; k = 0.1 gives 10/e
	objective, err := FinalTargets(m, map[string]float64{"A": 10 / math.E})
	require.NoError(t, err)

	g := NewGridSearch([]string{"k1"}, [][]float64{{0.05, 0.1, 0.15, 0.2}})
	best, score, err := g.Search(context.Background(), m, cfg, objective)
	require.NoError(t, err)

	assert.Equal(t, 0.1, best["k1"])
	assert.Less(t, score, 1e-8)
	assert.Equal(t, 0.1, m.ParameterValues()["k1"], "base model must not change")
}

func TestGridSearchErrors(t *testing.T) {
	m := conversion(t)
	cfg := dynamo.Config{TimeEnd: 1, TimeStep: 0.1}
	objective := func(r *dynamo.Result) float64 { return 0 }

	_, _, err := NewGridSearch([]string{"nope"}, [][]float64{{1}}).Search(context.Background(), m, cfg, objective)
	assert.True(t, errors.Is(err, dynamo.ErrUnknownParameter))

	_, _, err = NewGridSearch([]string{"k1"}, nil).Search(context.Background(), m, cfg, objective)
	assert.Error(t, err)

	_, _, err = NewGridSearch([]string{"k1"}, [][]float64{{}}).Search(context.Background(), m, cfg, objective)
	assert.Error(t, err)

	_, _, err = NewGridSearch([]string{"k1"}, [][]float64{{0.1}}).Search(context.Background(), m, dynamo.Config{TimeEnd: 1, TimeStep: 0.1, Method: "bogus"}, objective)
	assert.True(t, errors.Is(err, dynamo.ErrUnsupportedMethod))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = NewGridSearch([]string{"k1"}, [][]float64{{0.1}}).Search(ctx, m, cfg, objective)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = FinalTargets(m, map[string]float64{"Z": 1})
	assert.True(t, errors.Is(err, dynamo.ErrDanglingReference))
}
