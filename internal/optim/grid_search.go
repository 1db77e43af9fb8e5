// Package optim searches parameter grids for the values that best match a
// simulation objective.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/biosim/internal/dynamo"
	"github.com/san-kum/biosim/internal/sbml"
	"github.com/san-kum/biosim/internal/sim"
)

// Objective scores a trajectory; lower is better.
type Objective func(*dynamo.Result) float64

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search simulates every point of the grid in lexicographic order and
// returns the first point with the lowest finite score.
func (g *GridSearch) Search(ctx context.Context, model *sbml.Model, cfg dynamo.Config, objective Objective) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("grid has %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	for i, name := range g.paramNames {
		if _, ok := model.ParameterIndex(name); !ok {
			return nil, 0, &dynamo.UnknownParameterError{Parameter: name}
		}
		if len(g.ranges[i]) == 0 {
			return nil, 0, fmt.Errorf("empty range for parameter %q", name)
		}
	}
	if _, err := sim.CheckConfig(cfg); err != nil {
		return nil, 0, err
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, model, make(map[string]float64), cfg, objective, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, errors.New("no grid point produced a finite score")
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	model *sbml.Model,
	current map[string]float64,
	cfg dynamo.Config,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := sim.Simulate(model, cfg)
		if err != nil {
			return err
		}

		val := objective(result)
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next, err := model.WithParameter(paramName, val)
		if err != nil {
			return err
		}
		current[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, next, current, cfg, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// FinalTargets scores the squared distance between the final
// concentrations and the given per-species targets.
func FinalTargets(model *sbml.Model, targets map[string]float64) (Objective, error) {
	idx := make(map[int]float64, len(targets))
	for id, v := range targets {
		i, ok := model.SpeciesIndex(id)
		if !ok {
			return nil, &dynamo.DanglingReferenceError{Owner: "target", Kind: "species", Ref: id}
		}
		idx[i] = v
	}

	return func(r *dynamo.Result) float64 {
		final := r.Final()
		sum := 0.0
		for i, v := range idx {
			d := final[i] - v
			sum += d * d
		}
		if math.IsNaN(sum) {
			return math.Inf(1)
		}
		return sum
	}, nil
}
