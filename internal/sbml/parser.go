package sbml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/biosim/internal/dynamo"
)

type xmlModel struct {
	ID           string           `xml:"id,attr"`
	Name         string           `xml:"name,attr"`
	Compartments []xmlCompartment `xml:"listOfCompartments>compartment"`
	Species      []xmlSpecies     `xml:"listOfSpecies>species"`
	Parameters   []xmlParameter   `xml:"listOfParameters>parameter"`
	Reactions    []xmlReaction    `xml:"listOfReactions>reaction"`
}

type xmlCompartment struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	Constant string `xml:"constant,attr"`
}

type xmlSpecies struct {
	ID                   string `xml:"id,attr"`
	Name                 string `xml:"name,attr"`
	Compartment          string `xml:"compartment,attr"`
	InitialConcentration string `xml:"initialConcentration,attr"`
	InitialAmount        string `xml:"initialAmount,attr"`
}

type xmlParameter struct {
	ID       string `xml:"id,attr"`
	Value    string `xml:"value,attr"`
	Constant string `xml:"constant,attr"`
}

type xmlSpeciesReference struct {
	Species       string `xml:"species,attr"`
	Stoichiometry string `xml:"stoichiometry,attr"`
}

type xmlReaction struct {
	ID         string                `xml:"id,attr"`
	Name       string                `xml:"name,attr"`
	Reactants  []xmlSpeciesReference `xml:"listOfReactants>speciesReference"`
	Products   []xmlSpeciesReference `xml:"listOfProducts>speciesReference"`
	KineticLaw *xmlKineticLaw        `xml:"kineticLaw"`
}

type xmlKineticLaw struct {
	Math            xmlMath        `xml:"math"`
	LocalParameters []xmlParameter `xml:"listOfLocalParameters>localParameter"`
	// Level 2 documents declare local parameters as plain parameters.
	Parameters []xmlParameter `xml:"listOfParameters>parameter"`
}

type xmlMath struct {
	Inner []byte `xml:",innerxml"`
}

// ParseString parses a model document held in memory.
func ParseString(doc string) (*Model, error) {
	return Parse(strings.NewReader(doc))
}

// Parse reads an SBML document whose root is <sbml> wrapping a <model>,
// or a bare <model> element.
func Parse(r io.Reader) (*Model, error) {
	dec := xml.NewDecoder(r)
	inRoot := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, &dynamo.ParseError{Message: "document contains no model element"}
		}
		if err != nil {
			return nil, syntaxError(err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch {
		case start.Name.Local == "model":
			var xm xmlModel
			if err := dec.DecodeElement(&xm, &start); err != nil {
				return nil, syntaxError(err)
			}
			return buildModel(&xm)
		case start.Name.Local == "sbml" && !inRoot:
			inRoot = true
		case inRoot:
			// notes, annotations and the like
			if err := dec.Skip(); err != nil {
				return nil, syntaxError(err)
			}
		default:
			line, _ := dec.InputPos()
			return nil, &dynamo.ParseError{Line: line, Message: fmt.Sprintf("unexpected root element <%s>", start.Name.Local)}
		}
	}
}

func syntaxError(err error) error {
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return &dynamo.ParseError{Line: se.Line, Message: "malformed XML", Err: err}
	}
	return &dynamo.ParseError{Message: "malformed XML", Err: err}
}

func buildModel(xm *xmlModel) (*Model, error) {
	compartments := make([]Compartment, 0, len(xm.Compartments))
	for _, xc := range xm.Compartments {
		constant, err := parseBool(xc.Constant, true)
		if err != nil {
			return nil, attrError("compartment", xc.ID, "constant", err)
		}
		compartments = append(compartments, Compartment{ID: xc.ID, Name: xc.Name, Constant: constant})
	}

	species := make([]Species, 0, len(xm.Species))
	for _, xs := range xm.Species {
		raw := xs.InitialConcentration
		if raw == "" {
			raw = xs.InitialAmount
		}
		conc, err := parseFloat(raw, 0)
		if err != nil {
			return nil, attrError("species", xs.ID, "initialConcentration", err)
		}
		species = append(species, Species{
			ID:                   xs.ID,
			Name:                 nameOrID(xs.Name, xs.ID),
			Compartment:          xs.Compartment,
			InitialConcentration: conc,
		})
	}

	parameters, err := buildParameters("parameter", xm.Parameters)
	if err != nil {
		return nil, err
	}

	reactions := make([]Reaction, 0, len(xm.Reactions))
	for _, xr := range xm.Reactions {
		r, err := buildReaction(&xr)
		if err != nil {
			return nil, err
		}
		reactions = append(reactions, r)
	}

	return NewModel(xm.ID, xm.Name, compartments, species, parameters, reactions)
}

func buildParameters(kind string, in []xmlParameter) ([]Parameter, error) {
	out := make([]Parameter, 0, len(in))
	for _, xp := range in {
		value, err := parseFloat(xp.Value, 0)
		if err != nil {
			return nil, attrError(kind, xp.ID, "value", err)
		}
		constant, err := parseBool(xp.Constant, true)
		if err != nil {
			return nil, attrError(kind, xp.ID, "constant", err)
		}
		out = append(out, Parameter{ID: xp.ID, Value: value, Constant: constant})
	}
	return out, nil
}

func buildReaction(xr *xmlReaction) (Reaction, error) {
	r := Reaction{ID: xr.ID, Name: nameOrID(xr.Name, xr.ID)}

	var err error
	if r.Reactants, err = expandReferences(xr.ID, xr.Reactants); err != nil {
		return Reaction{}, err
	}
	if r.Products, err = expandReferences(xr.ID, xr.Products); err != nil {
		return Reaction{}, err
	}

	if xr.KineticLaw != nil {
		law := &KineticLaw{}
		locals := make([]xmlParameter, 0, len(xr.KineticLaw.LocalParameters)+len(xr.KineticLaw.Parameters))
		locals = append(locals, xr.KineticLaw.LocalParameters...)
		locals = append(locals, xr.KineticLaw.Parameters...)
		if law.LocalParameters, err = buildParameters("local parameter of "+xr.ID, locals); err != nil {
			return Reaction{}, err
		}
		if law.Identifiers, err = mathIdentifiers(xr.KineticLaw.Math.Inner); err != nil {
			return Reaction{}, &dynamo.ParseError{Message: fmt.Sprintf("reaction %q: kinetic law", xr.ID), Err: err}
		}
		r.KineticLaw = law
	}

	return r, nil
}

// MaxStoichiometry bounds the stoichiometry attribute of one species
// reference.
const MaxStoichiometry = 1000

// expandReferences repeats each species reference by its integer
// stoichiometry attribute, defaulting to one.
func expandReferences(reaction string, refs []xmlSpeciesReference) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Species == "" {
			return nil, &dynamo.ParseError{Message: fmt.Sprintf("reaction %q: speciesReference without species", reaction)}
		}
		n := 1
		if ref.Stoichiometry != "" {
			v, err := strconv.ParseFloat(strings.TrimSpace(ref.Stoichiometry), 64)
			if err != nil || v < 1 || v > MaxStoichiometry || v != math.Trunc(v) {
				return nil, &dynamo.ParseError{Message: fmt.Sprintf("reaction %q: stoichiometry %q is not an integer in [1, %d]", reaction, ref.Stoichiometry, MaxStoichiometry)}
			}
			n = int(v)
		}
		for i := 0; i < n; i++ {
			out = append(out, ref.Species)
		}
	}
	return out, nil
}

// mathIdentifiers collects the trimmed text of every <ci> element in a
// MathML fragment, in document order.
func mathIdentifiers(inner []byte) ([]string, error) {
	if len(bytes.TrimSpace(inner)) == 0 {
		return nil, nil
	}

	dec := xml.NewDecoder(bytes.NewReader(inner))
	var ids []string
	depth := 0
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return ids, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "ci" {
				depth++
				text.Reset()
			}
		case xml.CharData:
			if depth > 0 {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "ci" && depth > 0 {
				depth--
				if id := strings.TrimSpace(text.String()); id != "" {
					ids = append(ids, id)
				}
			}
		}
	}
}

func attrError(kind, id, attr string, err error) error {
	return &dynamo.ParseError{Message: fmt.Sprintf("%s %q: attribute %s", kind, id, attr), Err: err}
}

func parseFloat(raw string, def float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func parseBool(raw string, def bool) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseBool(raw)
}

func nameOrID(name, id string) string {
	if name == "" {
		return id
	}
	return name
}
