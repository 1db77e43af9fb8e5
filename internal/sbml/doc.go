// Package sbml reads SBML-shaped reaction network documents into an
// immutable [Model].
//
// Only the subset needed for mass-action simulation is understood:
// compartments, species with initial concentrations, global parameters and
// reactions with ordered reactant/product species references. A species
// referenced N times on one side of a reaction has multiplicity N there.
// Declaration order of species and parameters is the index order used by
// every numeric vector downstream.
package sbml
