package kinetics

import (
	"github.com/san-kum/biosim/internal/dynamo"
	"github.com/san-kum/biosim/internal/sbml"
)

// Origins of a rate constant, in resolution order.
const (
	SourceKineticLaw = "kinetic_law"
	SourceSameID     = "same_id"
	SourcePrefixed   = "prefixed_id"
	SourcePositional = "positional"
)

// RateConstant records which value a reaction's rate is scaled by.
// Index points into the model's parameter vector; it is -1 for a
// parameter local to the kinetic law, whose value is then Local.
type RateConstant struct {
	ID     string
	Index  int
	Local  float64
	Source string
}

func (c RateConstant) value(params []float64) float64 {
	if c.Index < 0 {
		return c.Local
	}
	return params[c.Index]
}

type reactantTerm struct {
	species int
	order   int
}

// RateLaw evaluates a mass-action rate: k times the product of reactant
// concentrations raised to their multiplicities.
type RateLaw struct {
	Reaction string
	Constant RateConstant
	terms    []reactantTerm
}

func (l *RateLaw) Rate(x dynamo.State, params []float64) float64 {
	rate := l.Constant.value(params)
	for _, term := range l.terms {
		c := x[term.species]
		for i := 0; i < term.order; i++ {
			rate *= c
		}
	}
	return rate
}

// resolveRateConstants associates every reaction with a rate constant.
// A reaction takes, in order: the first identifier of its kinetic law that
// names a local or global parameter; the global parameter sharing its id;
// the global parameter "k_<id>". Reactions still unresolved receive the
// parameters nobody claimed, in declaration order.
func resolveRateConstants(m *sbml.Model) ([]RateConstant, error) {
	reactions := m.Reactions()
	params := m.Parameters()
	out := make([]RateConstant, len(reactions))
	resolved := make([]bool, len(reactions))
	claimed := make([]bool, len(params))

	global := func(id string) (RateConstant, bool) {
		i, ok := m.ParameterIndex(id)
		if !ok {
			return RateConstant{}, false
		}
		return RateConstant{ID: id, Index: i}, true
	}

	for r, reaction := range reactions {
		c, ok := explicitConstant(reaction, global)
		if !ok {
			if c, ok = global(reaction.ID); ok {
				c.Source = SourceSameID
			} else if c, ok = global("k_" + reaction.ID); ok {
				c.Source = SourcePrefixed
			}
		}
		if !ok {
			continue
		}
		out[r] = c
		resolved[r] = true
		if c.Index >= 0 {
			claimed[c.Index] = true
		}
	}

	next := 0
	for r, reaction := range reactions {
		if resolved[r] {
			continue
		}
		for next < len(params) && claimed[next] {
			next++
		}
		if next == len(params) {
			return nil, &dynamo.UnresolvedRateConstantError{Reaction: reaction.ID}
		}
		out[r] = RateConstant{ID: params[next].ID, Index: next, Source: SourcePositional}
		claimed[next] = true
	}

	return out, nil
}

func explicitConstant(r sbml.Reaction, global func(string) (RateConstant, bool)) (RateConstant, bool) {
	if r.KineticLaw == nil {
		return RateConstant{}, false
	}
	for _, ident := range r.KineticLaw.Identifiers {
		for _, lp := range r.KineticLaw.LocalParameters {
			if lp.ID == ident {
				return RateConstant{ID: r.ID + "." + lp.ID, Index: -1, Local: lp.Value, Source: SourceKineticLaw}, true
			}
		}
		if c, ok := global(ident); ok {
			c.Source = SourceKineticLaw
			return c, true
		}
	}
	return RateConstant{}, false
}
