package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"negative", State{-0.5, 2.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Clone(t *testing.T) {
	s := State{1, 2, 3}
	c := s.Clone()
	c[0] = 99
	if s[0] != 1 {
		t.Error("Clone did not create independent copy")
	}
	if s.Sum() != 6 {
		t.Errorf("Sum() = %v, want 6", s.Sum())
	}
}

func TestResultLayout(t *testing.T) {
	r := NewResult(3, 2)
	x := State{1, 2}
	r.Append(0, x)
	x[0] = 5
	r.Append(0.5, x)
	r.Append(1.0, State{7, 8})

	if !r.Consistent() {
		t.Fatalf("inconsistent layout: %d values for %d samples", len(r.Values), r.Len())
	}
	if r.Values[0] != 1 {
		t.Errorf("Append aliased the state: got %v", r.Values[0])
	}

	traj := r.Trajectory(1)
	if traj[0] != 2 || traj[1] != 2 || traj[2] != 8 {
		t.Errorf("Trajectory(1) = %v", traj)
	}

	at := r.At(1)
	at[0] = -1
	if r.Values[2] != 5 {
		t.Error("At returned an alias into Values")
	}

	final := r.Final()
	if final[0] != 7 || final[1] != 8 {
		t.Errorf("Final() = %v", final)
	}
}

func TestEmptyResultFinal(t *testing.T) {
	r := NewResult(0, 2)
	if r.Final() != nil {
		t.Error("expected nil final state for empty result")
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
		msg      string
	}{
		{&ParseError{Line: 3, Message: "bad"}, ErrParse, "parse: line 3: bad"},
		{&DanglingReferenceError{Owner: "reaction r1", Kind: "species", Ref: "X"}, ErrDanglingReference, `reaction r1 references unknown species "X"`},
		{&UnresolvedRateConstantError{Reaction: "r1"}, ErrUnresolvedRateConstant, `reaction "r1": no rate constant among parameters`},
		{&UnsupportedMethodError{Method: "rk9"}, ErrUnsupportedMethod, `unsupported integration method "rk9"`},
		{&UnknownParameterError{Parameter: "kx"}, ErrUnknownParameter, `unknown parameter "kx"`},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.sentinel) {
			t.Errorf("%T does not match its sentinel", tt.err)
		}
		if tt.err.Error() != tt.msg {
			t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.msg)
		}
	}

	if errors.Is(&ParseError{}, ErrDanglingReference) {
		t.Error("ParseError must not match ErrDanglingReference")
	}
}
