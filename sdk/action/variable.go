package action

import (
	"context"
	"errors"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
	"github.com/ovh/lagoonctl/sdk/reconcile"
)

// DefaultVerifyAttempts bounds the polling of verify_value.
const DefaultVerifyAttempts = 30

var verifyInterval = time.Second

var errNotVerified = errors.New("variable not yet in the expected state")

// EnvVariableArgs are the arguments of the env_variable action. TypeName is
// the project name or the environment namespace, depending on Type.
type EnvVariableArgs struct {
	Name            string  `mapstructure:"name" validate:"required"`
	Type            string  `mapstructure:"type" validate:"required,oneof=PROJECT ENVIRONMENT"`
	TypeName        string  `mapstructure:"type_name" validate:"required"`
	State           string  `mapstructure:"state"`
	Value           *string `mapstructure:"value"`
	Scope           string  `mapstructure:"scope"`
	ReplaceExisting bool    `mapstructure:"replace_existing"`
	VerifyValue     bool    `mapstructure:"verify_value"`
	VerifyAttempts  int     `mapstructure:"verify_attempts"`
}

// RunEnvVariable adds, replaces or deletes a project or environment
// variable. With verify_value set, it then polls the variables until the
// change is visible.
func RunEnvVariable(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a EnvVariableArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	state, err := reconcile.ParseState(a.State)
	if err != nil {
		return res, err
	}
	if state == reconcile.StatePresent && (a.Value == nil || a.Scope == "") {
		return res, sdk.NewErrorFrom(sdk.ErrWrongRequest, "value and scope are required when creating a variable")
	}

	typ := sdk.EnvVariableType(a.Type)
	typeID, vars, err := variables(ctx, c, typ, a.TypeName)
	if err != nil {
		return res, err
	}

	desired := sdk.EnvVariable{Name: a.Name, Scope: sdk.EnvVariableScope(a.Scope)}
	if a.Value != nil {
		desired.Value = *a.Value
	}
	var existing *sdk.EnvVariable
	if v, ok := sdk.EnvVariableByName(vars, a.Name); ok {
		existing = &v
		res.set("id", v.ID)
	}

	op := reconcile.EnvVariable(existing, desired, state, a.ReplaceExisting)
	log.Debug(ctx, "variable %s on %s %s: %s", a.Name, a.Type, a.TypeName, op)
	switch op {
	case reconcile.OpNoop:
		return res, nil
	case reconcile.OpDelete, reconcile.OpReplace:
		ok, err := c.VariableDelete(ctx, existing.ID)
		if err != nil {
			return res, err
		}
		res.Changed = ok
		if op == reconcile.OpDelete {
			if a.VerifyValue {
				return res, verifyVariable(ctx, c, typ, a.TypeName, a.Name, nil, a.VerifyAttempts)
			}
			return res, nil
		}
	}

	id, err := c.VariableAdd(ctx, typ, typeID, desired.Name, desired.Value, desired.Scope)
	if err != nil {
		return res, err
	}
	res.Changed = true
	res.set("id", id)
	res.Result = id
	if a.VerifyValue {
		return res, verifyVariable(ctx, c, typ, a.TypeName, a.Name, &desired.Value, a.VerifyAttempts)
	}
	return res, nil
}

// variables returns the id of the project or environment and its variables.
func variables(ctx context.Context, c lagoonclient.Interface, typ sdk.EnvVariableType, name string) (int, []sdk.EnvVariable, error) {
	if typ == sdk.EnvVariableTypeProject {
		q := lagoonclient.NewProjectQuery(c).ByName(ctx, name, lagoonclient.Fields("id", "name")).WithVariables(ctx)
		if q.Err() != nil {
			return 0, nil, q.Err()
		}
		if len(q.Projects()) == 0 {
			return 0, nil, sdk.NewErrorFrom(sdk.ErrNotFound, "project %q not found", name)
		}
		p := q.Projects()[0]
		return p.ID, p.EnvVariables, nil
	}

	q := lagoonclient.NewEnvironmentQuery(c).ByNamespace(ctx, name, lagoonclient.Fields("id", "kubernetesNamespaceName")).WithVariables(ctx)
	if q.Err() != nil {
		return 0, nil, q.Err()
	}
	if len(q.Environments()) == 0 {
		return 0, nil, sdk.NewErrorFrom(sdk.ErrNotFound, "environment %q not found", name)
	}
	e := q.Environments()[0]
	return e.ID, e.EnvVariables, nil
}

// verifyVariable polls the variables until the one named name holds value,
// or is gone when value is nil.
func verifyVariable(ctx context.Context, c lagoonclient.Interface, typ sdk.EnvVariableType, typeName, name string, value *string, attempts int) error {
	if attempts <= 0 {
		attempts = DefaultVerifyAttempts
	}
	r := retrier.New(retrier.ConstantBackoff(attempts-1, verifyInterval), retrier.WhitelistClassifier{errNotVerified})
	err := r.RunCtx(ctx, func(ctx context.Context) error {
		_, vars, err := variables(ctx, c, typ, typeName)
		if err != nil {
			return err
		}
		v, found := sdk.EnvVariableByName(vars, name)
		switch {
		case value == nil && !found:
			return nil
		case value != nil && found && v.Value == *value:
			return nil
		}
		return errNotVerified
	})
	if errors.Is(err, errNotVerified) {
		return sdk.NewErrorFrom(sdk.ErrMaxRetries, "variable %s not verified after %d attempts", name, attempts)
	}
	return err
}
