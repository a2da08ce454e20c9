package lagoonclient

import (
	"context"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/graphql"
)

const taskDefinitionDeleteMutation = `mutation deleteAdvancedTaskDefinition($id: Int!) {
  deleteAdvancedTaskDefinition(advancedTaskDefinition: $id)
}`

// TaskDefinitions returns the task definitions visible to the user. With an
// environment id, the definitions usable on that environment are returned;
// with a project id only, the definitions attached to the project.
func (c *client) TaskDefinitions(ctx context.Context, projectID, environmentID int, fields ...string) ([]sdk.TaskDefinition, error) {
	if len(fields) == 0 {
		fields = sdk.TaskDefinitionFields
	}
	image := &graphql.Fragment{Name: "Image", On: "AdvancedTaskDefinitionImage", Selection: taskDefinitionSelection(fields, "image")}
	command := &graphql.Fragment{Name: "Command", On: "AdvancedTaskDefinitionCommand", Selection: taskDefinitionSelection(fields, "command")}

	root := graphql.NewField("allAdvancedTaskDefinitions", image.Spread(), command.Spread())
	if environmentID != 0 {
		root = graphql.NewField("advancedTasksForEnvironment", image.Spread(), command.Spread()).WithArg("environment", environmentID)
	}
	doc := graphql.Query(root).WithFragment(image).WithFragment(command)

	var data map[string][]*sdk.TaskDefinition
	errs, err := c.ExecuteDocument(ctx, doc, &data)
	if err != nil {
		return nil, err
	}
	list, ok := data[root.Name]
	if err := totalFailure(root.Name, ok && list != nil, errs); err != nil {
		return nil, err
	}

	res := make([]sdk.TaskDefinition, 0, len(list))
	for _, td := range list {
		if td == nil {
			continue
		}
		if environmentID == 0 && projectID != 0 && (td.Project == nil || *td.Project != projectID) {
			continue
		}
		res = append(res, *td)
	}
	return res, nil
}

func taskDefinitionSelection(fields []string, variant string) []graphql.Selection {
	sel := make([]graphql.Selection, 0, len(fields)+2)
	for _, f := range fields {
		sel = append(sel, &graphql.Field{Name: f})
	}
	sel = append(sel, &graphql.Field{Name: variant})
	return append(sel, graphql.NewField("advancedTaskDefinitionArguments").SelectFields(sdk.TaskDefinitionArgumentFields...))
}

func (c *client) TaskDefinitionAdd(ctx context.Context, td sdk.TaskDefinition) (int, error) {
	if err := sdk.Validate(td); err != nil {
		return 0, err
	}
	field := graphql.NewField("addAdvancedTaskDefinition").
		WithArg("input", taskDefinitionInput(td)).
		Select(taskDefinitionIDSelection()...)
	var res struct {
		ID int `json:"id"`
	}
	if err := c.mutateDocument(ctx, graphql.Mutation(field), "addAdvancedTaskDefinition", &res); err != nil {
		return 0, sdk.WrapError(err, "unable to add task definition %s", td.Name)
	}
	return res.ID, nil
}

func (c *client) TaskDefinitionUpdate(ctx context.Context, id int, td sdk.TaskDefinition) (int, error) {
	if err := sdk.Validate(td); err != nil {
		return 0, err
	}
	field := graphql.NewField("updateAdvancedTaskDefinition").
		WithArg("input", map[string]interface{}{"id": id, "patch": taskDefinitionInput(td)}).
		Select(taskDefinitionIDSelection()...)
	var res struct {
		ID int `json:"id"`
	}
	if err := c.mutateDocument(ctx, graphql.Mutation(field), "updateAdvancedTaskDefinition", &res); err != nil {
		return 0, sdk.WrapError(err, "unable to update task definition %s", td.Name)
	}
	return res.ID, nil
}

func (c *client) TaskDefinitionDelete(ctx context.Context, id int) (bool, error) {
	ok, err := c.success(ctx, taskDefinitionDeleteMutation, map[string]interface{}{"id": id}, "deleteAdvancedTaskDefinition")
	if err != nil {
		return false, sdk.WrapError(err, "unable to delete task definition %d", id)
	}
	return ok, nil
}

func taskDefinitionIDSelection() []graphql.Selection {
	return []graphql.Selection{
		graphql.On("AdvancedTaskDefinitionCommand", graphql.Fields("id")...),
		graphql.On("AdvancedTaskDefinitionImage", graphql.Fields("id")...),
	}
}

// taskDefinitionInput only sends command or image, depending on the type.
func taskDefinitionInput(td sdk.TaskDefinition) map[string]interface{} {
	args := make([]interface{}, len(td.Arguments))
	for i, a := range td.Arguments {
		arg := map[string]interface{}{
			"name": a.Name,
			"type": graphql.Enum(a.Type),
		}
		if a.DisplayName != "" {
			arg["displayName"] = a.DisplayName
		}
		if len(a.Range) > 0 {
			arg["range"] = a.Range
		}
		args[i] = arg
	}
	in := map[string]interface{}{
		"type":                            graphql.Enum(td.Type),
		"permission":                      graphql.Enum(td.Permission),
		"name":                            td.Name,
		"description":                     td.Description,
		"service":                         td.Service,
		"advancedTaskDefinitionArguments": args,
		"deployTokenInjection":            td.DeployTokenInjection,
		"projectKeyInjection":             td.ProjectKeyInjection,
		"systemWide":                      td.SystemWide,
	}
	if td.Project != nil && *td.Project != 0 {
		in["project"] = *td.Project
	}
	if td.Environment != nil && *td.Environment != 0 {
		in["environment"] = *td.Environment
	}
	if td.GroupName != "" {
		in["groupName"] = td.GroupName
	}
	if td.ConfirmationText != "" {
		in["confirmationText"] = td.ConfirmationText
	}
	switch td.Type {
	case sdk.TaskDefinitionTypeCommand:
		in["command"] = td.Command
	case sdk.TaskDefinitionTypeImage:
		in["image"] = td.Image
	}
	return in
}
