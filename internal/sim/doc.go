// Package sim drives a single simulation run: it takes the initial state
// and parameter snapshot from a model, binds them to the compiled network
// and hands the system to the integrator.
package sim
