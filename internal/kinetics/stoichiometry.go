package kinetics

// StoichiometryMatrix is a dense reactions × species matrix of net
// stoichiometric coefficients (products minus reactants).
type StoichiometryMatrix struct {
	reactions int
	species   int
	data      []int
}

func newStoichiometryMatrix(reactions, species int) *StoichiometryMatrix {
	return &StoichiometryMatrix{
		reactions: reactions,
		species:   species,
		data:      make([]int, reactions*species),
	}
}

func (m *StoichiometryMatrix) Reactions() int { return m.reactions }
func (m *StoichiometryMatrix) Species() int   { return m.species }

func (m *StoichiometryMatrix) At(reaction, species int) int {
	return m.data[reaction*m.species+species]
}

// Row returns a copy of one reaction's coefficients in species order.
func (m *StoichiometryMatrix) Row(reaction int) []int {
	row := make([]int, m.species)
	copy(row, m.data[reaction*m.species:(reaction+1)*m.species])
	return row
}

func (m *StoichiometryMatrix) add(reaction, species, delta int) {
	m.data[reaction*m.species+species] += delta
}
