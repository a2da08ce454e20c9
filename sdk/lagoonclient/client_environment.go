package lagoonclient

import (
	"context"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/graphql"
)

const environmentDeleteMutation = `mutation deleteEnvironment($project: String!, $name: String!) {
  deleteEnvironment(input: {project: $project, name: $name})
}`

const environmentIDQuery = `query environmentId($ns: String!) {
  environmentByKubernetesNamespaceName(kubernetesNamespaceName: $ns) {
    id
  }
}`

func (c *client) EnvironmentUpdate(ctx context.Context, id int, patch map[string]interface{}) (*sdk.Environment, error) {
	field := graphql.NewField("updateEnvironment").
		WithArg("input", map[string]interface{}{"id": id, "patch": NormalizePatch(patch)}).
		SelectFields("id", "name", "autoIdle").
		Select(
			graphql.NewField("kubernetes").SelectFields(sdk.ClusterFields...),
			graphql.NewField("openshift").SelectFields(sdk.ClusterFields...),
		)
	var res sdk.Environment
	if err := c.mutateDocument(ctx, graphql.Mutation(field), "updateEnvironment", &res); err != nil {
		return nil, sdk.WrapError(err, "unable to update environment %d", id)
	}
	return &res, nil
}

func (c *client) EnvironmentDelete(ctx context.Context, project, environment string) (string, error) {
	var res string
	vars := map[string]interface{}{"project": project, "name": environment}
	if err := c.mutateField(ctx, environmentDeleteMutation, vars, "deleteEnvironment", &res); err != nil {
		return "", sdk.WrapError(err, "unable to delete environment %s of project %s", environment, project)
	}
	return res, nil
}

func (c *client) EnvironmentIDFromNamespace(ctx context.Context, ns string) (int, error) {
	var e sdk.Environment
	if err := c.queryField(ctx, environmentIDQuery, map[string]interface{}{"ns": ns}, "environmentByKubernetesNamespaceName", &e); err != nil {
		if sdk.ErrorIs(err, sdk.ErrNotFound) {
			return 0, sdk.NewErrorFrom(sdk.ErrNotFound, "environment %q not found", ns)
		}
		return 0, err
	}
	return e.ID, nil
}
