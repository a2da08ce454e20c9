package lagoonclient

import (
	"context"
	"encoding/json"

	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/graphql"
	lagoonlog "github.com/ovh/lagoonctl/sdk/log"
)

// ErrMsgViewAllEnvironments is returned by allEnvironments to users that are
// not platform owners.
const ErrMsgViewAllEnvironments = `Unauthorized: You don't have permission to "viewAll" on "environment": {}`

// EnvironmentQuery fetches environments then attaches sub-resources to them.
// It follows the same rules as ProjectQuery.
type EnvironmentQuery struct {
	client       Interface
	environments []sdk.Environment
	errors       sdk.GraphQLErrors
	err          error
}

// NewEnvironmentQuery returns an empty query.
func NewEnvironmentQuery(c Interface) EnvironmentQuery {
	return EnvironmentQuery{client: c}
}

// Environments returns the fetched environments.
func (q EnvironmentQuery) Environments() []sdk.Environment { return q.environments }

// Errors returns the partial errors accumulated so far.
func (q EnvironmentQuery) Errors() sdk.GraphQLErrors { return q.errors }

// Err returns the error that stopped the query, if any.
func (q EnvironmentQuery) Err() error { return q.err }

// All seeds the query with every environment. Users who are not allowed to
// list all environments get them through their projects instead.
func (q EnvironmentQuery) All(ctx context.Context, opts ...Option) EnvironmentQuery {
	if q.err != nil {
		return q
	}
	o := newOptions(sdk.EnvironmentFields, 0, opts...)
	raw, errs, err := q.client.QueryTopLevel(ctx, "allEnvironments", nil, o.fields)
	if errs.HasMessage(ErrMsgViewAllEnvironments) {
		log.Debug(ctx, "not allowed to list all environments, going through projects")
		return q.AllThroughProjects(ctx, opts...)
	}
	return q.seed("allEnvironments", raw, errs, err)
}

// AllThroughProjects seeds the query with the environments of every project
// the token can see.
func (q EnvironmentQuery) AllThroughProjects(ctx context.Context, opts ...Option) EnvironmentQuery {
	if q.err != nil {
		return q
	}
	pq := NewProjectQuery(q.client).All(ctx, Fields("id", "name")).WithEnvironments(ctx, opts...)
	q.errors = appendErrors(q.errors, pq.Errors())
	if pq.Err() != nil {
		q.err = pq.Err()
		return q
	}
	envs := make([]sdk.Environment, 0, len(q.environments))
	envs = append(envs, q.environments...)
	for _, p := range pq.Projects() {
		envs = append(envs, p.Environments...)
	}
	q.environments = envs
	return q
}

// ByNamespace seeds the query with the environment living in namespace ns.
func (q EnvironmentQuery) ByNamespace(ctx context.Context, ns string, opts ...Option) EnvironmentQuery {
	if q.err != nil {
		return q
	}
	o := newOptions(sdk.EnvironmentFields, 0, opts...)
	raw, errs, err := q.client.QueryTopLevel(ctx, "environmentByKubernetesNamespaceName", map[string]interface{}{"kubernetesNamespaceName": ns}, o.fields)
	return q.seed("environmentByKubernetesNamespaceName", raw, errs, err)
}

// ByID seeds the query with a single environment.
func (q EnvironmentQuery) ByID(ctx context.Context, id int, opts ...Option) EnvironmentQuery {
	if q.err != nil {
		return q
	}
	o := newOptions(sdk.EnvironmentFields, 0, opts...)
	raw, errs, err := q.client.QueryTopLevel(ctx, "environmentById", map[string]interface{}{"id": id}, o.fields)
	return q.seed("environmentById", raw, errs, err)
}

func (q EnvironmentQuery) seed(root string, raw json.RawMessage, errs sdk.GraphQLErrors, err error) EnvironmentQuery {
	q.errors = appendErrors(q.errors, errs)
	if err != nil {
		q.err = err
		return q
	}
	if raw == nil {
		return q
	}

	var found []sdk.Environment
	if raw[0] == '[' {
		var list []*sdk.Environment
		if err := json.Unmarshal(raw, &list); err != nil {
			q.err = sdk.NewErrorFrom(sdk.ErrInvalidData, "unable to decode %s: %v", root, err)
			return q
		}
		for _, e := range list {
			if e != nil {
				found = append(found, *e)
			}
		}
	} else {
		var e sdk.Environment
		if err := json.Unmarshal(raw, &e); err != nil {
			q.err = sdk.NewErrorFrom(sdk.ErrInvalidData, "unable to decode %s: %v", root, err)
			return q
		}
		found = append(found, e)
	}

	envs := make([]sdk.Environment, 0, len(q.environments)+len(found))
	envs = append(envs, q.environments...)
	q.environments = append(envs, found...)
	return q
}

// WithCluster attaches the kubernetes (and legacy openshift) cluster of each environment.
func (q EnvironmentQuery) WithCluster(ctx context.Context, opts ...Option) EnvironmentQuery {
	o := newOptions(sdk.ClusterFields, q.defaultBatchSize(), opts...)
	sel := []graphql.Selection{graphql.NewField("kubernetes").SelectFields(o.fields...)}
	return q.attach(ctx, "cluster", sel, o.batchSize, func(dst, src *sdk.Environment) {
		if src == nil {
			dst.Kubernetes, dst.Openshift = nil, nil
			return
		}
		dst.Kubernetes = src.Kubernetes
		dst.Openshift = src.Kubernetes
	})
}

// WithVariables attaches the variables of each environment.
func (q EnvironmentQuery) WithVariables(ctx context.Context, opts ...Option) EnvironmentQuery {
	o := newOptions(sdk.EnvVariableFields, q.defaultBatchSize(), opts...)
	sel := []graphql.Selection{graphql.NewField("envVariables").SelectFields(o.fields...)}
	return q.attach(ctx, "variables", sel, o.batchSize, func(dst, src *sdk.Environment) {
		dst.EnvVariables = nil
		if src != nil {
			dst.EnvVariables = src.EnvVariables
		}
	})
}

// WithProject attaches the project of each environment.
func (q EnvironmentQuery) WithProject(ctx context.Context, opts ...Option) EnvironmentQuery {
	o := newOptions(sdk.ProjectFields, q.defaultBatchSize(), opts...)
	sel := []graphql.Selection{graphql.NewField("project").SelectFields(o.fields...)}
	return q.attach(ctx, "project", sel, o.batchSize, func(dst, src *sdk.Environment) {
		dst.Project = nil
		if src != nil {
			dst.Project = src.Project
		}
	})
}

// WithDeployments attaches the deployments of each environment, latest first.
func (q EnvironmentQuery) WithDeployments(ctx context.Context, opts ...Option) EnvironmentQuery {
	o := newOptions(sdk.DeploymentFields, q.defaultBatchSize(), opts...)
	sel := []graphql.Selection{graphql.NewField("deployments").SelectFields(o.fields...)}
	return q.attach(ctx, "deployments", sel, o.batchSize, func(dst, src *sdk.Environment) {
		dst.Deployments = nil
		if src != nil {
			dst.Deployments = src.Deployments
		}
	})
}

func (q EnvironmentQuery) defaultBatchSize() int {
	if q.client == nil {
		return DefaultBatchSize
	}
	return q.client.Config().BatchSize
}

func (q EnvironmentQuery) attach(ctx context.Context, what string, sel []graphql.Selection, batchSize int, splice func(dst, src *sdk.Environment)) EnvironmentQuery {
	if q.err != nil || len(q.environments) == 0 {
		return q
	}
	ctx = context.WithValue(ctx, lagoonlog.Operation, "environment "+what)
	log.Debug(ctx, "fetching %s for %d environments", what, len(q.environments))

	res := q.client.BatchQuery(ctx, "environmentByKubernetesNamespaceName", "kubernetesNamespaceName", sdk.EnvironmentNames(q.environments), sel, batchSize)
	q.errors = appendErrors(q.errors, res.Errors)
	if res.Err != nil {
		q.err = sdk.WrapError(res.Err, "error fetching environment %s", what)
		return q
	}

	envs := make([]sdk.Environment, len(q.environments))
	copy(envs, q.environments)
	for i := range envs {
		raw := res.Data[envs[i].KubernetesNamespaceName]
		if raw == nil {
			splice(&envs[i], nil)
			continue
		}
		var src sdk.Environment
		if err := json.Unmarshal(raw, &src); err != nil {
			q.err = sdk.NewErrorFrom(sdk.ErrInvalidData, "unable to decode %s of environment %s: %v", what, envs[i].KubernetesNamespaceName, err)
			return q
		}
		splice(&envs[i], &src)
	}
	q.environments = envs
	return q
}
