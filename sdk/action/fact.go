package action

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
	"github.com/ovh/lagoonctl/sdk/reconcile"
)

// FactArgs are the arguments of the fact action.
type FactArgs struct {
	Environment int    `mapstructure:"environment" validate:"required"`
	Name        string `mapstructure:"name" validate:"required"`
	Value       string `mapstructure:"value"`
	Source      string `mapstructure:"source"`
	Type        string `mapstructure:"type" validate:"omitempty,oneof=TEXT SEMVER URL"`
	Description string `mapstructure:"description"`
	Category    string `mapstructure:"category"`
	State       string `mapstructure:"state"`
}

// RunFact adds a fact to an environment, replacing the fact of the same
// name when its value differs, or deletes it for state absent.
func RunFact(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a FactArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	state, err := reconcile.ParseState(a.State)
	if err != nil {
		return res, err
	}

	existing, err := c.Facts(ctx, a.Environment)
	if err != nil {
		return res, err
	}
	desired := sdk.Fact{
		Environment: a.Environment,
		Name:        a.Name,
		Value:       a.Value,
		Source:      a.Source,
		Type:        sdk.FactType(a.Type),
		Description: a.Description,
		Category:    a.Category,
	}

	op, _ := reconcile.Fact(existing, desired, state)
	switch op {
	case reconcile.OpNoop:
		return res, nil
	case reconcile.OpDelete:
		ok, err := c.FactDelete(ctx, a.Environment, a.Name)
		if err != nil {
			return res, err
		}
		res.Changed = true
		res.Result = ok
		return res, nil
	case reconcile.OpReplace:
		if _, err := c.FactDelete(ctx, a.Environment, a.Name); err != nil {
			return res, err
		}
	}

	id, err := c.FactAdd(ctx, desired)
	if err != nil {
		return res, err
	}
	res.Changed = true
	res.Result = id
	return res, nil
}

// ProblemArgs are the arguments of the problem action. Data is any document
// that encodes to a JSON object or array.
type ProblemArgs struct {
	Environment       int         `mapstructure:"environment" validate:"required"`
	Identifier        string      `mapstructure:"identifier" validate:"required"`
	Data              interface{} `mapstructure:"data"`
	Severity          string      `mapstructure:"severity" validate:"omitempty,oneof=NONE UNKNOWN NEGLIGIBLE LOW MEDIUM HIGH CRITICAL"`
	SeverityScore     float64     `mapstructure:"severityScore" validate:"gte=0,lte=1"`
	Service           string      `mapstructure:"service"`
	Source            string      `mapstructure:"source"`
	AssociatedPackage string      `mapstructure:"associatedPackage"`
	Description       string      `mapstructure:"description"`
	Version           string      `mapstructure:"version"`
	FixedVersion      string      `mapstructure:"fixedVersion"`
	Links             string      `mapstructure:"links"`
	State             string      `mapstructure:"state"`
}

// RunProblem adds a problem to an environment, replacing the problem of the
// same identifier when its data differs, or deletes it for state absent.
func RunProblem(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a ProblemArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	state, err := reconcile.ParseState(a.State)
	if err != nil {
		return res, err
	}

	desired := sdk.Problem{
		Environment:       a.Environment,
		Identifier:        a.Identifier,
		Severity:          sdk.ProblemSeverity(a.Severity),
		SeverityScore:     a.SeverityScore,
		Service:           a.Service,
		Source:            a.Source,
		AssociatedPackage: a.AssociatedPackage,
		Description:       a.Description,
		Version:           a.Version,
		FixedVersion:      a.FixedVersion,
		Links:             a.Links,
	}
	if state == reconcile.StatePresent {
		data, err := problemData(a.Data)
		if err != nil {
			return res, err
		}
		desired.Data = data
	}

	existing, err := c.Problems(ctx, a.Environment)
	if err != nil {
		return res, err
	}

	op, _ := reconcile.Problem(existing, desired, state)
	switch op {
	case reconcile.OpNoop:
		return res, nil
	case reconcile.OpDelete:
		ok, err := c.ProblemDelete(ctx, a.Environment, a.Identifier)
		if err != nil {
			return res, err
		}
		res.Changed = true
		res.Result = ok
		return res, nil
	case reconcile.OpReplace:
		if _, err := c.ProblemDelete(ctx, a.Environment, a.Identifier); err != nil {
			return res, err
		}
	}

	id, err := c.ProblemAdd(ctx, desired)
	if err != nil {
		return res, err
	}
	res.Changed = true
	res.Result = id
	return res, nil
}

// problemData encodes data, which must be a map or a slice.
func problemData(data interface{}) (string, error) {
	if data == nil {
		return "", sdk.NewErrorFrom(sdk.ErrWrongRequest, "missing required argument %q", "data")
	}
	switch reflect.TypeOf(data).Kind() {
	case reflect.Map, reflect.Slice:
	default:
		return "", sdk.NewErrorFrom(sdk.ErrWrongRequest, "invalid problem data %v, must be a dict or list, to be JSON encoded", data)
	}
	btes, err := json.Marshal(data)
	if err != nil {
		return "", sdk.NewErrorFrom(sdk.ErrWrongRequest, "unable to encode problem data: %v", err)
	}
	return string(btes), nil
}
