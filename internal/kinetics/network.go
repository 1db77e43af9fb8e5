package kinetics

import (
	"github.com/san-kum/biosim/internal/dynamo"
	"github.com/san-kum/biosim/internal/sbml"
)

type effect struct {
	species int
	coef    float64
}

// Network is a compiled reaction network: its stoichiometry and one rate
// law per reaction. It holds no mutable state and may be shared between
// goroutines.
type Network struct {
	stoich        *StoichiometryMatrix
	laws          []RateLaw
	effects       [][]effect
	numSpecies    int
	numParameters int
	speciesIDs    []string
	speciesNames  []string
}

// Compile builds the stoichiometry matrix and rate laws of a model.
func Compile(m *sbml.Model) (*Network, error) {
	constants, err := resolveRateConstants(m)
	if err != nil {
		return nil, err
	}

	reactions := m.Reactions()
	n := &Network{
		stoich:        newStoichiometryMatrix(len(reactions), m.NumSpecies()),
		laws:          make([]RateLaw, len(reactions)),
		effects:       make([][]effect, len(reactions)),
		numSpecies:    m.NumSpecies(),
		numParameters: m.NumParameters(),
		speciesIDs:    m.SpeciesIDs(),
		speciesNames:  m.SpeciesNames(),
	}

	for r, reaction := range reactions {
		orders := make(map[int]int)
		var order []int
		for _, id := range reaction.Reactants {
			s, _ := m.SpeciesIndex(id)
			n.stoich.add(r, s, -1)
			if orders[s] == 0 {
				order = append(order, s)
			}
			orders[s]++
		}
		for _, id := range reaction.Products {
			s, _ := m.SpeciesIndex(id)
			n.stoich.add(r, s, 1)
		}

		terms := make([]reactantTerm, len(order))
		for i, s := range order {
			terms[i] = reactantTerm{species: s, order: orders[s]}
		}
		n.laws[r] = RateLaw{Reaction: reaction.ID, Constant: constants[r], terms: terms}

		for s := 0; s < n.numSpecies; s++ {
			if c := n.stoich.At(r, s); c != 0 {
				n.effects[r] = append(n.effects[r], effect{species: s, coef: float64(c)})
			}
		}
	}

	return n, nil
}

func (n *Network) Stoichiometry() *StoichiometryMatrix { return n.stoich }
func (n *Network) NumSpecies() int                     { return n.numSpecies }
func (n *Network) NumReactions() int                   { return len(n.laws) }
func (n *Network) SpeciesIDs() []string                { return append([]string(nil), n.speciesIDs...) }
func (n *Network) SpeciesNames() []string              { return append([]string(nil), n.speciesNames...) }

// RateLaws returns the compiled rate laws in reaction order.
func (n *Network) RateLaws() []RateLaw {
	return append([]RateLaw(nil), n.laws...)
}

// Rates evaluates every reaction's instantaneous rate.
func (n *Network) Rates(x dynamo.State, params []float64) []float64 {
	rates := make([]float64, len(n.laws))
	for r := range n.laws {
		rates[r] = n.laws[r].Rate(x, params)
	}
	return rates
}

// Derivative returns dx/dt: for each species, the sum over reactions of
// its net coefficient times the reaction rate. It reads x and params only.
func (n *Network) Derivative(x dynamo.State, params []float64) dynamo.State {
	dx := make(dynamo.State, n.numSpecies)
	for r := range n.laws {
		rate := n.laws[r].Rate(x, params)
		for _, e := range n.effects[r] {
			dx[e.species] += e.coef * rate
		}
	}
	return dx
}

// Bind fixes a parameter vector and returns the network as a
// [dynamo.System]. The vector is copied.
func (n *Network) Bind(params []float64) (*ODE, error) {
	if len(params) != n.numParameters {
		return nil, dynamo.ErrDimensionMismatch
	}
	return &ODE{net: n, params: append([]float64(nil), params...)}, nil
}

// ODE is a network bound to one parameter snapshot.
type ODE struct {
	net    *Network
	params []float64
}

func (o *ODE) Derive(x dynamo.State, t float64) dynamo.State {
	return o.net.Derivative(x, o.params)
}

func (o *ODE) StateDim() int { return o.net.numSpecies }

func (o *ODE) Parameters() []float64 { return append([]float64(nil), o.params...) }
