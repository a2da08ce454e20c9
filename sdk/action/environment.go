package action

import (
	"context"

	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
	"github.com/ovh/lagoonctl/sdk/reconcile"
)

// EnvironmentUpdateArgs are the arguments of the environment_update action.
// The environment is given by namespace or by id.
type EnvironmentUpdateArgs struct {
	Environment   string                 `mapstructure:"environment"`
	EnvironmentID int                    `mapstructure:"environment_id"`
	Values        map[string]interface{} `mapstructure:"values"`
}

// RunEnvironmentUpdate patches an environment when one of the given values
// differs from the current one. Cluster values are compared on their id.
func RunEnvironmentUpdate(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a EnvironmentUpdateArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	if a.Environment == "" && a.EnvironmentID == 0 {
		return res, sdk.NewErrorFrom(sdk.ErrWrongRequest, "environment name or id is required")
	}
	if len(a.Values) == 0 {
		return res, sdk.NewErrorFrom(sdk.ErrWrongRequest, "no value to update")
	}

	env, err := environment(ctx, c, a.Environment, a.EnvironmentID)
	if err != nil {
		return res, err
	}
	current, err := asMap(env)
	if err != nil {
		return res, err
	}
	if !reconcile.PatchRequired(current, a.Values, reconcile.ClusterKeys...) {
		res.Result = env
		return res, nil
	}

	updated, err := c.EnvironmentUpdate(ctx, env.ID, a.Values)
	if err != nil {
		return res, err
	}
	log.Info(ctx, "environment %s updated", env.KubernetesNamespaceName)
	res.Changed = true
	res.Result = updated
	return res, nil
}

// EnvironmentDeleteArgs are the arguments of the environment_delete action.
type EnvironmentDeleteArgs struct {
	Project string `mapstructure:"project" validate:"required"`
	Branch  string `mapstructure:"branch" validate:"required"`
}

// RunEnvironmentDelete deletes the environment of a project. The status
// returned by the API is kept in the result.
func RunEnvironmentDelete(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a EnvironmentDeleteArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	status, err := c.EnvironmentDelete(ctx, a.Project, a.Branch)
	if err != nil {
		return res, err
	}
	res.Result = status
	res.Changed = status == "success"
	return res, nil
}

// InfoArgs are the arguments of the info action.
type InfoArgs struct {
	Resource string `mapstructure:"resource"`
	Name     string `mapstructure:"name" validate:"required"`
}

// RunInfo returns an environment with its cluster and project. A missing
// environment fails the action with the notFound extra set.
func RunInfo(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a InfoArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	if a.Resource == "" {
		a.Resource = "environment"
	}
	if err := sdk.ValidateEnum("resource", a.Resource, "environment"); err != nil {
		return res, err
	}

	q := lagoonclient.NewEnvironmentQuery(c).ByNamespace(ctx, a.Name)
	if q.Err() != nil {
		return res, q.Err()
	}
	if len(q.Environments()) == 0 {
		res.set("notFound", true)
		return res, sdk.NewErrorFrom(sdk.ErrNotFound, "environment %q not found", a.Name)
	}
	q = q.WithCluster(ctx).WithProject(ctx)
	if q.Err() != nil {
		return res, q.Err()
	}
	warnPartial(ctx, q.Errors())
	res.Result = q.Environments()[0]
	return res, nil
}

// environment fetches an environment with its cluster, by namespace when
// ns is set, by id otherwise.
func environment(ctx context.Context, c lagoonclient.Interface, ns string, id int) (sdk.Environment, error) {
	q := lagoonclient.NewEnvironmentQuery(c)
	if ns != "" {
		q = q.ByNamespace(ctx, ns)
	} else {
		q = q.ByID(ctx, id)
	}
	if q.Err() != nil {
		return sdk.Environment{}, q.Err()
	}
	if len(q.Environments()) == 0 {
		if ns == "" {
			return sdk.Environment{}, sdk.NewErrorFrom(sdk.ErrNotFound, "environment %d not found", id)
		}
		return sdk.Environment{}, sdk.NewErrorFrom(sdk.ErrNotFound, "environment %q not found", ns)
	}
	q = q.WithCluster(ctx)
	if q.Err() != nil {
		return sdk.Environment{}, q.Err()
	}
	return q.Environments()[0], nil
}
