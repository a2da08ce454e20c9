package lagoonclient

import (
	"context"
	"strconv"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/graphql"
)

const projectAddMutation = `mutation addProject(
  $name: String!
  $gitUrl: String!
  $subfolder: String
  $branches: String
  $pullrequests: String
  $openshift: Int!
  $productionEnvironment: String!
  $standbyProductionEnvironment: String
  $autoIdle: Int
  $developmentEnvironmentsLimit: Int
  $problemsUi: Int
  $factsUi: Int
) {
  addProject(input: {
    name: $name
    gitUrl: $gitUrl
    subfolder: $subfolder
    branches: $branches
    pullrequests: $pullrequests
    openshift: $openshift
    productionEnvironment: $productionEnvironment
    standbyProductionEnvironment: $standbyProductionEnvironment
    autoIdle: $autoIdle
    developmentEnvironmentsLimit: $developmentEnvironmentsLimit
    problemsUi: $problemsUi
    factsUi: $factsUi
  }) {
    id
    name
  }
}`

const projectDeleteMutation = `mutation deleteProject($name: String!) {
  deleteProject(input: {project: $name})
}`

const projectIDQuery = `query projectId($name: String!) {
  projectByName(name: $name) {
    id
  }
}`

func (c *client) ProjectAdd(ctx context.Context, p sdk.ProjectInput) (*sdk.Project, error) {
	if err := sdk.Validate(p); err != nil {
		return nil, err
	}
	vars := map[string]interface{}{
		"name":                         p.Name,
		"gitUrl":                       p.GitURL,
		"subfolder":                    p.Subfolder,
		"branches":                     p.Branches,
		"pullrequests":                 p.Pullrequests,
		"openshift":                    p.Openshift,
		"productionEnvironment":        p.ProductionEnvironment,
		"standbyProductionEnvironment": p.StandbyProductionEnvironment,
		"autoIdle":                     p.AutoIdle,
		"developmentEnvironmentsLimit": p.DevelopmentEnvironmentsLimit,
		"problemsUi":                   p.ProblemsUI,
		"factsUi":                      p.FactsUI,
	}
	var res sdk.Project
	if err := c.mutateField(ctx, projectAddMutation, vars, "addProject", &res); err != nil {
		return nil, sdk.WrapError(err, "unable to add project %s", p.Name)
	}
	return &res, nil
}

func (c *client) ProjectDelete(ctx context.Context, name string) error {
	ok, err := c.success(ctx, projectDeleteMutation, map[string]interface{}{"name": name}, "deleteProject")
	if err != nil {
		return sdk.WrapError(err, "unable to delete project %s", name)
	}
	if !ok {
		return sdk.NewErrorFrom(sdk.ErrGraphQL, "project %s was not deleted", name)
	}
	return nil
}

func (c *client) ProjectUpdate(ctx context.Context, id int, patch map[string]interface{}) (*sdk.Project, error) {
	field := graphql.NewField("updateProject").
		WithArg("input", map[string]interface{}{"id": id, "patch": NormalizePatch(patch)}).
		SelectFields("id", "name", "autoIdle", "branches", "gitUrl", "metadata").
		Select(
			graphql.NewField("kubernetes").SelectFields(sdk.ClusterFields...),
			graphql.NewField("openshift").SelectFields(sdk.ClusterFields...),
			graphql.NewField("environments").SelectFields("name"),
		)
	var res sdk.Project
	if err := c.mutateDocument(ctx, graphql.Mutation(field), "updateProject", &res); err != nil {
		return nil, sdk.WrapError(err, "unable to update project %d", id)
	}
	return &res, nil
}

func (c *client) ProjectIDFromName(ctx context.Context, name string) (int, error) {
	var p sdk.Project
	if err := c.queryField(ctx, projectIDQuery, map[string]interface{}{"name": name}, "projectByName", &p); err != nil {
		if sdk.ErrorIs(err, sdk.ErrNotFound) {
			return 0, sdk.NewErrorFrom(sdk.ErrNotFound, "project %q not found", name)
		}
		return 0, err
	}
	return p.ID, nil
}

// NormalizePatch returns a copy of patch where booleans and the string
// values holding an integer are converted to int, the update mutations
// expecting Int for fields such as autoIdle or kubernetes.
func NormalizePatch(patch map[string]interface{}) map[string]interface{} {
	res := make(map[string]interface{}, len(patch))
	for k, v := range patch {
		switch t := v.(type) {
		case bool:
			res[k] = sdk.BoolToInt(t)
			continue
		case string:
			if i, err := strconv.Atoi(t); err == nil {
				res[k] = i
				continue
			}
		}
		res[k] = v
	}
	return res
}
