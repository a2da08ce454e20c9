package lagoonclient

import (
	"context"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/graphql"
)

const taskInvokeMutation = `mutation invokeRegisteredTask(
  $definition: Int!
  $environment: Int!
  $arguments: [AdvancedTaskDefinitionArgumentValueInput]
) {
  invokeRegisteredTask(
    advancedTaskDefinition: $definition
    environment: $environment
    argumentValues: $arguments
  ) {
    id
    name
    status
    taskName
  }
}`

func (c *client) TaskByID(ctx context.Context, id int) (*sdk.Task, error) {
	return c.task(ctx, "taskById", map[string]interface{}{"id": id})
}

func (c *client) TaskByName(ctx context.Context, name string) (*sdk.Task, error) {
	return c.task(ctx, "taskByTaskName", map[string]interface{}{"taskName": name})
}

func (c *client) task(ctx context.Context, root string, args map[string]interface{}) (*sdk.Task, error) {
	field := graphql.NewField(root).WithArgs(args).
		SelectFields(sdk.TaskFields...).
		Select(graphql.NewField("environment").SelectFields("id", "name", "kubernetesNamespaceName"))
	doc := graphql.Query(field)
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	var t sdk.Task
	if err := c.queryField(ctx, doc.String(), nil, root, &t); err != nil {
		if sdk.ErrorIs(err, sdk.ErrNotFound) {
			return nil, sdk.NewErrorFrom(sdk.ErrNotFound, "task %v not found", args)
		}
		return nil, err
	}
	return &t, nil
}

func (c *client) TaskInvoke(ctx context.Context, environmentID, definitionID int, args []sdk.TaskArgumentValue) (*sdk.Task, error) {
	vars := map[string]interface{}{
		"definition":  definitionID,
		"environment": environmentID,
	}
	if len(args) > 0 {
		vars["arguments"] = args
	}
	var t sdk.Task
	if err := c.mutateField(ctx, taskInvokeMutation, vars, "invokeRegisteredTask", &t); err != nil {
		return nil, sdk.WrapError(err, "unable to invoke task definition %d on environment %d", definitionID, environmentID)
	}
	return &t, nil
}
