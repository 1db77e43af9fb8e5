package integrators

import (
	"strings"

	"github.com/san-kum/biosim/internal/dynamo"
)

// Method selects a fixed-step integration rule. The zero value is MethodRK4.
type Method int

const (
	MethodRK4 Method = iota
	MethodEuler
	MethodMidpoint
	MethodHeun
)

var methodNames = map[Method]string{
	MethodRK4:      "rk4",
	MethodEuler:    "euler",
	MethodMidpoint: "rk2",
	MethodHeun:     "heun",
}

var methodAliases = map[string]Method{
	"rk4":      MethodRK4,
	"euler":    MethodEuler,
	"rk2":      MethodMidpoint,
	"midpoint": MethodMidpoint,
	"heun":     MethodHeun,
}

// ParseMethod translates a configuration name. Matching ignores case and
// surrounding space; the empty name selects MethodRK4.
func ParseMethod(name string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return MethodRK4, nil
	}
	m, ok := methodAliases[key]
	if !ok {
		return 0, &dynamo.UnsupportedMethodError{Method: name}
	}
	return m, nil
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "unknown"
}

// Methods lists every supported method.
func Methods() []Method {
	return []Method{MethodRK4, MethodEuler, MethodMidpoint, MethodHeun}
}

// New returns a fresh stepper for the method.
func (m Method) New() (dynamo.Integrator, error) {
	switch m {
	case MethodRK4:
		return NewRK4(), nil
	case MethodEuler:
		return NewEuler(), nil
	case MethodMidpoint:
		return NewMidpoint(), nil
	case MethodHeun:
		return NewHeun(), nil
	default:
		return nil, &dynamo.UnsupportedMethodError{Method: m.String()}
	}
}

// Order is the method's global order of accuracy.
func (m Method) Order() int {
	switch m {
	case MethodRK4:
		return 4
	case MethodMidpoint, MethodHeun:
		return 2
	case MethodEuler:
		return 1
	default:
		return 0
	}
}
