// Package dynamo provides the core primitives shared by the reaction
// network engine.
//
// The package defines the fundamental types for integrating a compiled
// reaction network as a system of ordinary differential equations:
//
//   - [State]: concentration vector in species-index order
//   - [System]: interface for autonomous ODE systems (dX/dt = f(X))
//   - [Integrator]: fixed-step numerical stepping rule
//   - [Config]: closed simulation configuration (time_end, time_step, method)
//   - [Result]: flat time/value trajectory with its species count
//
// # Example
//
//	model, _ := sbml.ParseString(doc)
//	cfg := dynamo.Config{TimeEnd: 50, TimeStep: 0.1, Method: "rk4"}
//	result, _ := sim.Simulate(model, cfg)
//	prey := result.Trajectory(0)
//
// # Errors
//
// Every error kind surfaced by the engine matches one of the sentinel
// errors declared here through [errors.Is].
package dynamo
