package sbml

import (
	"fmt"
	"math"

	"github.com/san-kum/biosim/internal/dynamo"
)

type Compartment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Constant bool   `json:"constant"`
}

type Species struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Compartment          string  `json:"compartment"`
	InitialConcentration float64 `json:"initial_concentration"`
}

type Parameter struct {
	ID       string  `json:"id"`
	Value    float64 `json:"value"`
	Constant bool    `json:"constant"`
}

// KineticLaw keeps what the document says about a reaction's rate: the
// identifiers referenced by its MathML, in document order, and any
// parameters local to the law.
type KineticLaw struct {
	Identifiers     []string    `json:"identifiers,omitempty"`
	LocalParameters []Parameter `json:"local_parameters,omitempty"`
}

type Reaction struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Reactants  []string    `json:"reactants"`
	Products   []string    `json:"products"`
	KineticLaw *KineticLaw `json:"kinetic_law,omitempty"`
}

// Model is a validated reaction network. It is never mutated after
// construction; overrides produce private copies.
type Model struct {
	id           string
	name         string
	compartments []Compartment
	species      []Species
	parameters   []Parameter
	reactions    []Reaction

	speciesIndex   map[string]int
	parameterIndex map[string]int
}

// NewModel validates the parts and builds a Model. The slices are copied.
func NewModel(id, name string, compartments []Compartment, species []Species, parameters []Parameter, reactions []Reaction) (*Model, error) {
	m := &Model{
		id:           id,
		name:         name,
		compartments: append([]Compartment(nil), compartments...),
		species:      append([]Species(nil), species...),
		parameters:   append([]Parameter(nil), parameters...),
		reactions:    cloneReactions(reactions),
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) validate() error {
	if len(m.compartments) == 0 {
		return &dynamo.ParseError{Message: "model declares no compartments"}
	}
	if len(m.species) == 0 {
		return &dynamo.ParseError{Message: "model declares no species"}
	}

	compartments := make(map[string]bool, len(m.compartments))
	for _, c := range m.compartments {
		if c.ID == "" {
			return &dynamo.ParseError{Message: "compartment without id"}
		}
		if compartments[c.ID] {
			return &dynamo.ParseError{Message: fmt.Sprintf("duplicate compartment id %q", c.ID)}
		}
		compartments[c.ID] = true
	}

	m.speciesIndex = make(map[string]int, len(m.species))
	for i, s := range m.species {
		if s.ID == "" {
			return &dynamo.ParseError{Message: "species without id"}
		}
		if _, dup := m.speciesIndex[s.ID]; dup {
			return &dynamo.ParseError{Message: fmt.Sprintf("duplicate species id %q", s.ID)}
		}
		if s.InitialConcentration < 0 || math.IsNaN(s.InitialConcentration) || math.IsInf(s.InitialConcentration, 0) {
			return &dynamo.ParseError{Message: fmt.Sprintf("species %q has invalid initial concentration %g", s.ID, s.InitialConcentration)}
		}
		if !compartments[s.Compartment] {
			return &dynamo.DanglingReferenceError{Owner: "species " + s.ID, Kind: "compartment", Ref: s.Compartment}
		}
		m.speciesIndex[s.ID] = i
	}

	m.parameterIndex = make(map[string]int, len(m.parameters))
	for i, p := range m.parameters {
		if p.ID == "" {
			return &dynamo.ParseError{Message: "parameter without id"}
		}
		if _, dup := m.parameterIndex[p.ID]; dup {
			return &dynamo.ParseError{Message: fmt.Sprintf("duplicate parameter id %q", p.ID)}
		}
		m.parameterIndex[p.ID] = i
	}

	reactions := make(map[string]bool, len(m.reactions))
	for _, r := range m.reactions {
		if r.ID == "" {
			return &dynamo.ParseError{Message: "reaction without id"}
		}
		if reactions[r.ID] {
			return &dynamo.ParseError{Message: fmt.Sprintf("duplicate reaction id %q", r.ID)}
		}
		reactions[r.ID] = true

		for _, ref := range r.Reactants {
			if _, ok := m.speciesIndex[ref]; !ok {
				return &dynamo.DanglingReferenceError{Owner: "reaction " + r.ID, Kind: "species", Ref: ref}
			}
		}
		for _, ref := range r.Products {
			if _, ok := m.speciesIndex[ref]; !ok {
				return &dynamo.DanglingReferenceError{Owner: "reaction " + r.ID, Kind: "species", Ref: ref}
			}
		}
	}

	return nil
}

func (m *Model) ID() string   { return m.id }
func (m *Model) Name() string { return m.name }

func (m *Model) NumSpecies() int    { return len(m.species) }
func (m *Model) NumParameters() int { return len(m.parameters) }
func (m *Model) NumReactions() int  { return len(m.reactions) }

func (m *Model) Compartments() []Compartment {
	return append([]Compartment(nil), m.compartments...)
}

func (m *Model) Species() []Species {
	return append([]Species(nil), m.species...)
}

func (m *Model) Parameters() []Parameter {
	return append([]Parameter(nil), m.parameters...)
}

func (m *Model) Reactions() []Reaction {
	return cloneReactions(m.reactions)
}

// SpeciesIDs returns species ids in index order.
func (m *Model) SpeciesIDs() []string {
	ids := make([]string, len(m.species))
	for i, s := range m.species {
		ids[i] = s.ID
	}
	return ids
}

// SpeciesNames returns species names in index order.
func (m *Model) SpeciesNames() []string {
	names := make([]string, len(m.species))
	for i, s := range m.species {
		names[i] = s.Name
	}
	return names
}

// ParameterValues returns a snapshot mapping parameter id to value.
func (m *Model) ParameterValues() map[string]float64 {
	values := make(map[string]float64, len(m.parameters))
	for _, p := range m.parameters {
		values[p.ID] = p.Value
	}
	return values
}

// InitialConcentrations returns a snapshot mapping species id to its
// initial concentration.
func (m *Model) InitialConcentrations() map[string]float64 {
	values := make(map[string]float64, len(m.species))
	for _, s := range m.species {
		values[s.ID] = s.InitialConcentration
	}
	return values
}

func (m *Model) SpeciesIndex(id string) (int, bool) {
	i, ok := m.speciesIndex[id]
	return i, ok
}

func (m *Model) ParameterIndex(id string) (int, bool) {
	i, ok := m.parameterIndex[id]
	return i, ok
}

// InitialState returns the initial concentrations in species-index order.
func (m *Model) InitialState() dynamo.State {
	x := make(dynamo.State, len(m.species))
	for i, s := range m.species {
		x[i] = s.InitialConcentration
	}
	return x
}

// ParameterVector returns parameter values in declaration order.
func (m *Model) ParameterVector() []float64 {
	p := make([]float64, len(m.parameters))
	for i, param := range m.parameters {
		p[i] = param.Value
	}
	return p
}

// WithParameter returns a copy of the model with one parameter overridden.
func (m *Model) WithParameter(id string, value float64) (*Model, error) {
	i, ok := m.parameterIndex[id]
	if !ok {
		return nil, &dynamo.UnknownParameterError{Parameter: id}
	}
	c := m.clone()
	c.parameters[i].Value = value
	return c, nil
}

// WithInitialConcentration returns a copy of the model with one species'
// initial concentration overridden.
func (m *Model) WithInitialConcentration(id string, value float64) (*Model, error) {
	i, ok := m.speciesIndex[id]
	if !ok {
		return nil, &dynamo.DanglingReferenceError{Owner: "override", Kind: "species", Ref: id}
	}
	if value < 0 {
		return nil, fmt.Errorf("species %q: initial concentration must be non-negative, got %g", id, value)
	}
	c := m.clone()
	c.species[i].InitialConcentration = value
	return c, nil
}

// clone copies everything a caller could reach through an override. The
// index maps are shared; they are never written after validate.
func (m *Model) clone() *Model {
	return &Model{
		id:             m.id,
		name:           m.name,
		compartments:   append([]Compartment(nil), m.compartments...),
		species:        append([]Species(nil), m.species...),
		parameters:     append([]Parameter(nil), m.parameters...),
		reactions:      cloneReactions(m.reactions),
		speciesIndex:   m.speciesIndex,
		parameterIndex: m.parameterIndex,
	}
}

func cloneReactions(in []Reaction) []Reaction {
	if in == nil {
		return nil
	}
	out := make([]Reaction, len(in))
	for i, r := range in {
		out[i] = Reaction{
			ID:        r.ID,
			Name:      r.Name,
			Reactants: append([]string(nil), r.Reactants...),
			Products:  append([]string(nil), r.Products...),
		}
		if r.KineticLaw != nil {
			out[i].KineticLaw = &KineticLaw{
				Identifiers:     append([]string(nil), r.KineticLaw.Identifiers...),
				LocalParameters: append([]Parameter(nil), r.KineticLaw.LocalParameters...),
			}
		}
	}
	return out
}
