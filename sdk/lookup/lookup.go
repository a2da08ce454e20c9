// Package lookup implements the read-only queries of lagoonctl. Lookups never
// change anything on the remote side.
package lookup

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/graphql"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
	lagoonlog "github.com/ovh/lagoonctl/sdk/log"
)

// Batch sizes used when attaching sub-resources to every environment or project.
const (
	AllEnvironmentsBatchSize = 50
	AllProjectsBatchSize     = 20
)

// AllEnvironments returns every environment with its cluster and variables.
// Partial errors are logged as warnings. When no environment could be
// fetched at all, the errors are returned.
func AllEnvironments(ctx context.Context, c lagoonclient.Interface) ([]sdk.Environment, error) {
	ctx = context.WithValue(ctx, lagoonlog.Operation, "all_environments")
	q := lagoonclient.NewEnvironmentQuery(c).All(ctx)
	if q.Err() != nil {
		return nil, q.Err()
	}
	if len(q.Environments()) == 0 {
		if len(q.Errors()) > 0 {
			return nil, sdk.NewErrorFrom(sdk.ErrGraphQL, "unable to fetch environments: %s", q.Errors().Error())
		}
		return nil, nil
	}
	q = q.WithCluster(ctx, lagoonclient.BatchSize(AllEnvironmentsBatchSize)).
		WithVariables(ctx, lagoonclient.BatchSize(AllEnvironmentsBatchSize))
	if q.Err() != nil {
		return nil, q.Err()
	}
	warnPartial(ctx, q.Errors())
	return q.Environments(), nil
}

// AllProjects returns every project with its cluster and environments.
func AllProjects(ctx context.Context, c lagoonclient.Interface) ([]sdk.Project, error) {
	ctx = context.WithValue(ctx, lagoonlog.Operation, "all_projects")
	q := lagoonclient.NewProjectQuery(c).All(ctx).
		WithCluster(ctx, lagoonclient.BatchSize(AllProjectsBatchSize)).
		WithEnvironments(ctx, lagoonclient.BatchSize(AllProjectsBatchSize))
	if q.Err() != nil {
		return nil, q.Err()
	}
	warnPartial(ctx, q.Errors())
	return q.Projects(), nil
}

// Environment returns the environment living in namespace ns with its
// deployments, clusters and project id, in a single request.
func Environment(ctx context.Context, c lagoonclient.Interface, ns string) (*sdk.Environment, error) {
	field := graphql.NewField("environmentByKubernetesNamespaceName").
		WithArg("kubernetesNamespaceName", ns).
		SelectFields("id", "name", "kubernetesNamespaceName", "autoIdle", "route", "routes").
		Select(
			graphql.NewField("deployments").SelectFields("name", "status", "started", "completed"),
			graphql.NewField("project").SelectFields("id"),
			graphql.NewField("openshift").SelectFields(sdk.ClusterFields...),
			graphql.NewField("kubernetes").SelectFields(sdk.ClusterFields...),
		)
	var env sdk.Environment
	if err := queryOne(ctx, c, "environmentByKubernetesNamespaceName", field, &env); err != nil {
		if sdk.ErrorIs(err, sdk.ErrNotFound) {
			return nil, sdk.NewErrorFrom(sdk.ErrNotFound, "environment %q not found", ns)
		}
		return nil, err
	}
	return &env, nil
}

// EnvironmentIDFromNamespace returns the id of the environment living in
// namespace ns. A missing environment yields 0 and no error, unless
// failOnNotFound is set.
func EnvironmentIDFromNamespace(ctx context.Context, c lagoonclient.Interface, ns string, failOnNotFound bool) (int, error) {
	id, err := c.EnvironmentIDFromNamespace(ctx, ns)
	if err != nil && sdk.ErrorIs(err, sdk.ErrNotFound) && !failOnNotFound {
		log.Debug(ctx, "environment %s not found", ns)
		return 0, nil
	}
	return id, err
}

// ProjectIDFromName returns the id of a project. A missing project yields 0
// and no error, unless failOnNotFound is set.
func ProjectIDFromName(ctx context.Context, c lagoonclient.Interface, name string, failOnNotFound bool) (int, error) {
	id, err := c.ProjectIDFromName(ctx, name)
	if err != nil && sdk.ErrorIs(err, sdk.ErrNotFound) && !failOnNotFound {
		log.Debug(ctx, "project %s not found", name)
		return 0, nil
	}
	return id, err
}

// Group returns a group by name.
func Group(ctx context.Context, c lagoonclient.Interface, name string) (*sdk.Group, error) {
	return c.GroupByName(ctx, name)
}

// Metadata returns the values of keys in the metadata of a project, in the
// order of keys. A missing key gets def when def is not nil and is skipped
// otherwise.
func Metadata(ctx context.Context, c lagoonclient.Interface, project string, keys []string, def *sdk.MetadataValue) ([]sdk.MetadataValue, error) {
	all, errs, err := c.ProjectMetadata(ctx, []string{project})
	if err != nil {
		return nil, err
	}
	warnPartial(ctx, errs)
	md, ok := all[project]
	if !ok || md == nil {
		return nil, sdk.NewErrorFrom(sdk.ErrNotFound, "project %q not found", project)
	}

	res := make([]sdk.MetadataValue, 0, len(keys))
	for _, k := range keys {
		v, has := md[k]
		switch {
		case has:
			res = append(res, v)
		case def != nil:
			res = append(res, *def)
		}
	}
	return res, nil
}

// Project returns a project with its clusters, environments and deploy
// target configs.
func Project(ctx context.Context, c lagoonclient.Interface, name string) (*sdk.Project, error) {
	field := graphql.NewField("projectByName").
		WithArg("name", name).
		SelectFields("id", "name", "autoIdle", "branches", "gitUrl", "metadata", "developmentEnvironmentsLimit").
		Select(
			graphql.NewField("openshift").SelectFields(sdk.ClusterFields...),
			graphql.NewField("kubernetes").SelectFields(sdk.ClusterFields...),
			graphql.NewField("environments").
				SelectFields("name", "kubernetesNamespaceName").
				Select(
					graphql.NewField("openshift").SelectFields(sdk.ClusterFields...),
					graphql.NewField("kubernetes").SelectFields(sdk.ClusterFields...),
				),
			graphql.NewField("deployTargetConfigs").
				SelectFields(sdk.DeployTargetConfigFields...).
				Select(graphql.NewField("deployTarget").SelectFields(sdk.ClusterFields...)),
		)
	var p sdk.Project
	if err := queryOne(ctx, c, "projectByName", field, &p); err != nil {
		if sdk.ErrorIs(err, sdk.ErrNotFound) {
			return nil, sdk.NewErrorFrom(sdk.ErrNotFound, "unable to get details for project %s; please make sure the project name is correct", name)
		}
		return nil, err
	}
	return &p, nil
}

// ProjectFromEnvironment returns the project owning the environment living
// in namespace ns.
func ProjectFromEnvironment(ctx context.Context, c lagoonclient.Interface, ns string) (*sdk.Project, error) {
	field := graphql.NewField("environmentByKubernetesNamespaceName").
		WithArg("kubernetesNamespaceName", ns).
		Select(graphql.NewField("project").SelectFields("id", "name", "autoIdle", "branches", "gitUrl", "metadata"))
	var env sdk.Environment
	err := queryOne(ctx, c, "environmentByKubernetesNamespaceName", field, &env)
	if err != nil && !sdk.ErrorIs(err, sdk.ErrNotFound) {
		return nil, err
	}
	if err != nil || env.Project == nil {
		return nil, sdk.NewErrorFrom(sdk.ErrNotFound, "unable to get project details for environment %s; please make sure the environment name is correct", ns)
	}
	return env.Project, nil
}

// Task returns a task by id when term is numeric, by task name otherwise.
func Task(ctx context.Context, c lagoonclient.Interface, term string) (*sdk.Task, error) {
	if term == "" {
		return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "task id or name is required")
	}
	if id, err := strconv.Atoi(term); err == nil {
		return c.TaskByID(ctx, id)
	}
	return c.TaskByName(ctx, term)
}

// VariablesOptions shapes the result of Variables.
type VariablesOptions struct {
	// Environment selects the variables of an environment of the project
	// instead of the project ones.
	Environment string
	// ReturnDict returns the variables keyed by name.
	ReturnDict bool
	// VarName returns only the named variable.
	VarName string
}

// Variables returns the variables of a project or of one of its
// environments. The result is a []sdk.EnvVariable, a
// map[string]sdk.EnvVariable when ReturnDict is set, or a *sdk.EnvVariable
// (nil when absent) when VarName is set.
func Variables(ctx context.Context, c lagoonclient.Interface, project string, opts VariablesOptions) (interface{}, error) {
	var vars []sdk.EnvVariable
	var err error
	if opts.Environment != "" {
		ns := sdk.NamespaceName(project, opts.Environment)
		log.Debug(ctx, "variable lookup environment: %s", ns)
		vars, err = c.VariablesForEnvironment(ctx, ns)
	} else {
		log.Debug(ctx, "variable lookup project: %s", project)
		vars, err = c.VariablesForProject(ctx, project)
	}
	if err != nil {
		return nil, err
	}

	switch {
	case opts.ReturnDict:
		res := make(map[string]sdk.EnvVariable, len(vars))
		for _, v := range vars {
			res[v.Name] = v
		}
		return res, nil
	case opts.VarName != "":
		v, found := sdk.EnvVariableByName(vars, opts.VarName)
		if !found {
			return (*sdk.EnvVariable)(nil), nil
		}
		return &v, nil
	}
	return vars, nil
}

// queryOne runs a query made of field and decodes its root into out. A null
// root is an ErrNotFound error.
func queryOne(ctx context.Context, c lagoonclient.Interface, root string, field *graphql.Field, out interface{}) error {
	doc := graphql.Query(field)
	if err := doc.Validate(); err != nil {
		return err
	}
	var data map[string]json.RawMessage
	errs, err := c.ExecuteDocument(ctx, doc, &data)
	if err != nil {
		return err
	}
	raw, ok := data[root]
	if !ok || string(raw) == "null" {
		if len(errs) > 0 {
			return sdk.NewErrorFrom(sdk.ErrGraphQL, "%s: %s", root, errs.Error())
		}
		return sdk.NewErrorFrom(sdk.ErrNotFound, "%s returned nothing", root)
	}
	warnPartial(ctx, errs)
	if err := json.Unmarshal(raw, out); err != nil {
		return sdk.NewErrorFrom(sdk.ErrInvalidData, "unable to decode %s: %v", root, err)
	}
	return nil
}

func warnPartial(ctx context.Context, errs sdk.GraphQLErrors) {
	if len(errs) > 0 {
		log.Warn(ctx, "the query partially succeeded, but the following errors were encountered: %v", errs)
	}
}
