package lagoonclient

import (
	"context"
	"encoding/json"

	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/graphql"
	lagoonlog "github.com/ovh/lagoonctl/sdk/log"
)

// ProjectQuery fetches projects then attaches sub-resources to them. Every
// method returns a new value and leaves the receiver untouched. Once Err is
// set, the following calls do nothing.
type ProjectQuery struct {
	client   Interface
	projects []sdk.Project
	errors   sdk.GraphQLErrors
	err      error
}

// NewProjectQuery returns an empty query.
func NewProjectQuery(c Interface) ProjectQuery {
	return ProjectQuery{client: c}
}

// Projects returns the fetched projects.
func (q ProjectQuery) Projects() []sdk.Project { return q.projects }

// Errors returns the partial errors accumulated so far.
func (q ProjectQuery) Errors() sdk.GraphQLErrors { return q.errors }

// Err returns the error that stopped the query, if any.
func (q ProjectQuery) Err() error { return q.err }

// All seeds the query with every project the token can see.
func (q ProjectQuery) All(ctx context.Context, opts ...Option) ProjectQuery {
	o := newOptions(sdk.ProjectFields, 0, opts...)
	return q.seed(ctx, "allProjects", nil, o.fields)
}

// AllInGroup seeds the query with the projects of a group.
func (q ProjectQuery) AllInGroup(ctx context.Context, group string, opts ...Option) ProjectQuery {
	o := newOptions(sdk.ProjectFields, 0, opts...)
	return q.seed(ctx, "allProjectsInGroup", map[string]interface{}{"input": map[string]interface{}{"name": group}}, o.fields)
}

// ByName seeds the query with a single project.
func (q ProjectQuery) ByName(ctx context.Context, name string, opts ...Option) ProjectQuery {
	o := newOptions(sdk.ProjectFields, 0, opts...)
	return q.seed(ctx, "projectByName", map[string]interface{}{"name": name}, o.fields)
}

func (q ProjectQuery) seed(ctx context.Context, root string, args map[string]interface{}, fields []string) ProjectQuery {
	if q.err != nil {
		return q
	}
	raw, errs, err := q.client.QueryTopLevel(ctx, root, args, fields)
	q.errors = appendErrors(q.errors, errs)
	if err != nil {
		q.err = err
		return q
	}
	if raw == nil {
		return q
	}

	var found []sdk.Project
	if raw[0] == '[' {
		var list []*sdk.Project
		if err := json.Unmarshal(raw, &list); err != nil {
			q.err = sdk.NewErrorFrom(sdk.ErrInvalidData, "unable to decode %s: %v", root, err)
			return q
		}
		// allProjectsInGroup may return null entries
		for _, p := range list {
			if p != nil {
				found = append(found, *p)
			}
		}
	} else {
		var p sdk.Project
		if err := json.Unmarshal(raw, &p); err != nil {
			q.err = sdk.NewErrorFrom(sdk.ErrInvalidData, "unable to decode %s: %v", root, err)
			return q
		}
		found = append(found, p)
	}

	projects := make([]sdk.Project, 0, len(q.projects)+len(found))
	projects = append(projects, q.projects...)
	q.projects = append(projects, found...)
	return q
}

// Unique drops the projects seeded more than once, keeping the first one.
func (q ProjectQuery) Unique() ProjectQuery {
	seen := make(map[string]bool, len(q.projects))
	projects := make([]sdk.Project, 0, len(q.projects))
	for _, p := range q.projects {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		projects = append(projects, p)
	}
	q.projects = projects
	return q
}

// WithCluster attaches the kubernetes (and legacy openshift) cluster of each project.
func (q ProjectQuery) WithCluster(ctx context.Context, opts ...Option) ProjectQuery {
	o := newOptions(sdk.ClusterFields, q.defaultBatchSize(), opts...)
	sel := []graphql.Selection{graphql.NewField("kubernetes").SelectFields(o.fields...)}
	return q.attach(ctx, "cluster", sel, o.batchSize, func(dst *sdk.Project, src *sdk.Project) {
		if src == nil {
			dst.Kubernetes, dst.Openshift = nil, nil
			return
		}
		dst.Kubernetes = src.Kubernetes
		dst.Openshift = src.Kubernetes
	})
}

// WithEnvironments attaches the environments of each project.
func (q ProjectQuery) WithEnvironments(ctx context.Context, opts ...Option) ProjectQuery {
	o := newOptions(sdk.EnvironmentFields, q.defaultBatchSize(), opts...)
	sel := []graphql.Selection{graphql.NewField("environments").SelectFields(o.fields...)}
	return q.attach(ctx, "environments", sel, o.batchSize, func(dst *sdk.Project, src *sdk.Project) {
		dst.Environments = nil
		if src != nil {
			dst.Environments = src.Environments
		}
	})
}

// WithDeployTargetConfigs attaches the deploy target configs of each project.
func (q ProjectQuery) WithDeployTargetConfigs(ctx context.Context, opts ...Option) ProjectQuery {
	o := newOptions(deployTargetConfigFields(), q.defaultBatchSize(), opts...)
	sel := []graphql.Selection{graphql.NewField("deployTargetConfigs", withDeployTarget(o.fields)...)}
	return q.attach(ctx, "deploy target configs", sel, o.batchSize, func(dst *sdk.Project, src *sdk.Project) {
		dst.DeployTargetConfigs = nil
		if src != nil {
			dst.DeployTargetConfigs = src.DeployTargetConfigs
		}
	})
}

// WithVariables attaches the project level variables of each project.
func (q ProjectQuery) WithVariables(ctx context.Context, opts ...Option) ProjectQuery {
	o := newOptions(sdk.EnvVariableFields, q.defaultBatchSize(), opts...)
	sel := []graphql.Selection{graphql.NewField("envVariables").SelectFields(o.fields...)}
	return q.attach(ctx, "variables", sel, o.batchSize, func(dst *sdk.Project, src *sdk.Project) {
		dst.EnvVariables = nil
		if src != nil {
			dst.EnvVariables = src.EnvVariables
		}
	})
}

// WithGroups attaches the groups of each project.
func (q ProjectQuery) WithGroups(ctx context.Context, opts ...Option) ProjectQuery {
	o := newOptions(sdk.GroupFields, q.defaultBatchSize(), opts...)
	sel := []graphql.Selection{graphql.NewField("groups").SelectFields(o.fields...)}
	return q.attach(ctx, "groups", sel, o.batchSize, func(dst *sdk.Project, src *sdk.Project) {
		dst.Groups = nil
		if src != nil {
			dst.Groups = src.Groups
		}
	})
}

// WithMetadata refreshes the metadata of each project. Metadata being a
// scalar, only the BatchSize option applies.
func (q ProjectQuery) WithMetadata(ctx context.Context, opts ...Option) ProjectQuery {
	o := newOptions(nil, q.defaultBatchSize(), opts...)
	return q.attach(ctx, "metadata", graphql.Fields("metadata"), o.batchSize, func(dst *sdk.Project, src *sdk.Project) {
		dst.Metadata = nil
		if src != nil {
			dst.Metadata = src.Metadata
		}
	})
}

func (q ProjectQuery) defaultBatchSize() int {
	if q.client == nil {
		return DefaultBatchSize
	}
	return q.client.Config().BatchSize
}

func (q ProjectQuery) attach(ctx context.Context, what string, sel []graphql.Selection, batchSize int, splice func(dst, src *sdk.Project)) ProjectQuery {
	if q.err != nil || len(q.projects) == 0 {
		return q
	}
	ctx = context.WithValue(ctx, lagoonlog.Operation, "project "+what)
	log.Debug(ctx, "fetching %s for %d projects", what, len(q.projects))

	res := q.client.BatchQuery(ctx, "projectByName", "name", sdk.ProjectNames(q.projects), sel, batchSize)
	q.errors = appendErrors(q.errors, res.Errors)
	if res.Err != nil {
		q.err = sdk.WrapError(res.Err, "error fetching project %s", what)
		return q
	}

	projects := make([]sdk.Project, len(q.projects))
	copy(projects, q.projects)
	for i := range projects {
		raw := res.Data[projects[i].Name]
		if raw == nil {
			splice(&projects[i], nil)
			continue
		}
		var src sdk.Project
		if err := json.Unmarshal(raw, &src); err != nil {
			q.err = sdk.NewErrorFrom(sdk.ErrInvalidData, "unable to decode %s of project %s: %v", what, projects[i].Name, err)
			return q
		}
		splice(&projects[i], &src)
	}
	q.projects = projects
	return q
}

// appendErrors never aliases the backing array of dst.
func appendErrors(dst, src sdk.GraphQLErrors) sdk.GraphQLErrors {
	if len(src) == 0 {
		return dst
	}
	res := make(sdk.GraphQLErrors, 0, len(dst)+len(src))
	res = append(res, dst...)
	return append(res, src...)
}
