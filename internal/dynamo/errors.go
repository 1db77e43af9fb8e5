package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for parsing, compiling and simulating reaction networks.
var (
	// ErrParse indicates a malformed or incomplete model document.
	ErrParse = errors.New("dynamo: malformed model document")

	// ErrDanglingReference indicates a reference to a nonexistent compartment or species.
	ErrDanglingReference = errors.New("dynamo: dangling reference")

	// ErrUnresolvedRateConstant indicates a reaction whose rate constant is not among the parameters.
	ErrUnresolvedRateConstant = errors.New("dynamo: unresolved rate constant")

	// ErrUnsupportedMethod indicates an unknown integration method name.
	ErrUnsupportedMethod = errors.New("dynamo: unsupported integration method")

	// ErrUnknownParameter indicates a parameter id not present in the model.
	ErrUnknownParameter = errors.New("dynamo: unknown parameter")

	// ErrInvalidConfig indicates a simulation config that failed validation.
	ErrInvalidConfig = errors.New("dynamo: invalid simulation config")

	// ErrDimensionMismatch indicates a state or parameter vector of the wrong length.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between vector and system")
)

// ParseError reports a document that cannot be turned into a model.
// Line is zero when the position is unknown.
type ParseError struct {
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return "parse: " + msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// DanglingReferenceError names the element holding a reference and the
// missing target, e.g. Owner "reaction r1", Kind "species", Ref "X".
type DanglingReferenceError struct {
	Owner string
	Kind  string
	Ref   string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("%s references unknown %s %q", e.Owner, e.Kind, e.Ref)
}

func (e *DanglingReferenceError) Is(target error) bool { return target == ErrDanglingReference }

type UnresolvedRateConstantError struct {
	Reaction string
}

func (e *UnresolvedRateConstantError) Error() string {
	return fmt.Sprintf("reaction %q: no rate constant among parameters", e.Reaction)
}

func (e *UnresolvedRateConstantError) Is(target error) bool {
	return target == ErrUnresolvedRateConstant
}

type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported integration method %q", e.Method)
}

func (e *UnsupportedMethodError) Is(target error) bool { return target == ErrUnsupportedMethod }

type UnknownParameterError struct {
	Parameter string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("unknown parameter %q", e.Parameter)
}

func (e *UnknownParameterError) Is(target error) bool { return target == ErrUnknownParameter }

// ConfigError wraps a validation failure of a simulation config.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid simulation config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }
