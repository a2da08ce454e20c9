// Package reconcile compares the state fetched from Lagoon with a desired
// state and returns the operations needed to converge. Nothing in this
// package performs a request.
package reconcile

import (
	"github.com/ovh/lagoonctl/sdk"
)

// State is the desired state of a resource.
type State string

// States
const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

// ParseState returns StatePresent for an empty string.
func ParseState(s string) (State, error) {
	switch State(s) {
	case "", StatePresent:
		return StatePresent, nil
	case StateAbsent:
		return StateAbsent, nil
	}
	return "", sdk.NewErrorFrom(sdk.ErrInvalidEnumValue, "state must be present or absent, got %q", s)
}

// Op is the operation needed on a single resource.
type Op int

// Operations
const (
	OpNoop Op = iota
	OpCreate
	OpReplace
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpReplace:
		return "replace"
	case OpDelete:
		return "delete"
	}
	return "noop"
}

// Changed returns true for every operation but OpNoop.
func (o Op) Changed() bool { return o != OpNoop }
