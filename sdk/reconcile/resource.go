package reconcile

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/ovh/lagoonctl/sdk"
)

// EnvVariable returns the operation needed to reach desired, given the
// variable of the same name if any. An existing variable is only replaced
// when replaceExisting is set and its value or scope differs.
func EnvVariable(existing *sdk.EnvVariable, desired sdk.EnvVariable, state State, replaceExisting bool) Op {
	if state == StateAbsent {
		if existing == nil {
			return OpNoop
		}
		return OpDelete
	}
	if existing == nil {
		return OpCreate
	}
	if !replaceExisting {
		return OpNoop
	}
	if existing.Value == desired.Value && existing.Scope.EqualFold(desired.Scope) {
		return OpNoop
	}
	return OpReplace
}

// Fact returns the operation needed on the fact named desired.Name. Facts
// cannot be updated: a new value means delete then add.
func Fact(existing []sdk.Fact, desired sdk.Fact, state State) (Op, *sdk.Fact) {
	var found *sdk.Fact
	for i := range existing {
		if existing[i].Name == desired.Name {
			found = &existing[i]
		}
	}
	switch {
	case found == nil && state == StateAbsent:
		return OpNoop, nil
	case found != nil && state == StateAbsent:
		return OpDelete, found
	case found == nil:
		return OpCreate, nil
	case found.Value != desired.Value:
		return OpReplace, found
	}
	return OpNoop, found
}

// Problem returns the operation needed on the problem identified by
// desired.Identifier. Data is compared once decoded, so that formatting
// differences of the JSON documents are ignored.
func Problem(existing []sdk.Problem, desired sdk.Problem, state State) (Op, *sdk.Problem) {
	var found *sdk.Problem
	for i := range existing {
		if existing[i].Identifier == desired.Identifier {
			found = &existing[i]
		}
	}
	switch {
	case found == nil && state == StateAbsent:
		return OpNoop, nil
	case found != nil && state == StateAbsent:
		return OpDelete, found
	case found == nil:
		return OpCreate, nil
	case !sameJSON(found.Data, desired.Data):
		return OpReplace, found
	}
	return OpNoop, found
}

func sameJSON(a, b string) bool {
	var va, vb interface{}
	if json.Unmarshal([]byte(a), &va) != nil || json.Unmarshal([]byte(b), &vb) != nil {
		return strings.TrimSpace(a) == strings.TrimSpace(b)
	}
	return reflect.DeepEqual(va, vb)
}
