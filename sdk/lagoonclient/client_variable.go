package lagoonclient

import (
	"context"

	"github.com/ovh/lagoonctl/sdk"
)

const variableAddMutation = `mutation addEnvVariable(
  $type: EnvVariableType!
  $typeId: Int!
  $name: String!
  $value: String!
  $scope: EnvVariableScope!
) {
  addEnvVariable(input: {
    type: $type
    typeId: $typeId
    scope: $scope
    name: $name
    value: $value
  }) {
    id
  }
}`

const variableDeleteMutation = `mutation deleteEnvVariable($id: Int!) {
  deleteEnvVariable(input: {id: $id})
}`

func (c *client) VariableAdd(ctx context.Context, typ sdk.EnvVariableType, typeID int, name, value string, scope sdk.EnvVariableScope) (int, error) {
	in := sdk.EnvVariableInput{Type: typ, TypeID: typeID, Name: name, Value: value, Scope: scope}
	if err := sdk.Validate(in); err != nil {
		return 0, err
	}
	for _, s := range sdk.EnvVariableScopes {
		if s.EqualFold(scope) {
			in.Scope = s
		}
	}
	vars := map[string]interface{}{
		"type":   in.Type,
		"typeId": in.TypeID,
		"name":   in.Name,
		"value":  in.Value,
		"scope":  in.Scope,
	}
	var res sdk.EnvVariable
	if err := c.mutateField(ctx, variableAddMutation, vars, "addEnvVariable", &res); err != nil {
		return 0, sdk.WrapError(err, "unable to add variable %s", name)
	}
	return res.ID, nil
}

func (c *client) VariableDelete(ctx context.Context, id int) (bool, error) {
	ok, err := c.success(ctx, variableDeleteMutation, map[string]interface{}{"id": id}, "deleteEnvVariable")
	if err != nil {
		return false, sdk.WrapError(err, "unable to delete variable %d", id)
	}
	return ok, nil
}

func (c *client) VariablesForProject(ctx context.Context, project string) ([]sdk.EnvVariable, error) {
	q := NewProjectQuery(c).ByName(ctx, project, Fields("id", "name")).WithVariables(ctx)
	if err := q.Err(); err != nil {
		return nil, err
	}
	if len(q.Projects()) == 0 {
		return nil, sdk.NewErrorFrom(sdk.ErrNotFound, "project %q not found", project)
	}
	return q.Projects()[0].EnvVariables, nil
}

func (c *client) VariablesForEnvironment(ctx context.Context, ns string) ([]sdk.EnvVariable, error) {
	q := NewEnvironmentQuery(c).ByNamespace(ctx, ns, Fields("id", "kubernetesNamespaceName")).WithVariables(ctx)
	if err := q.Err(); err != nil {
		return nil, err
	}
	if len(q.Environments()) == 0 {
		return nil, sdk.NewErrorFrom(sdk.ErrNotFound, "environment %q not found", ns)
	}
	return q.Environments()[0].EnvVariables, nil
}
