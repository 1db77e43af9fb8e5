// Package integrators provides fixed-step ODE integration rules and the
// loop that samples a trajectory on a uniform time grid.
//
// Adding a rule means adding a [Method] constant, its name in
// methodAliases and a case in [Method.New].
package integrators
