// Package kinetics compiles a reaction network into a system of ordinary
// differential equations under mass-action kinetics.
//
// [Compile] derives a reactions × species [StoichiometryMatrix] and one
// [RateLaw] per reaction. [Network.Derivative] evaluates
//
//	dx_s/dt = Σ_r N[r][s] · k_r · Π_i x_i^m_ri
//
// where N is the net stoichiometry and m_ri the multiplicity of species i
// among the reactants of r.
package kinetics
