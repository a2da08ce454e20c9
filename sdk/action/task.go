package action

import (
	"context"
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
	"github.com/ovh/lagoonctl/sdk/reconcile"
)

// TaskDefinitionArgs are the arguments of the task_definition action.
type TaskDefinitionArgs struct {
	Name                 string                       `mapstructure:"name" validate:"required"`
	TaskType             string                       `mapstructure:"task_type"`
	Permission           string                       `mapstructure:"permission"`
	Project              string                       `mapstructure:"project"`
	Environment          string                       `mapstructure:"environment"`
	Description          string                       `mapstructure:"description"`
	Service              string                       `mapstructure:"service"`
	Image                string                       `mapstructure:"image"`
	Command              string                       `mapstructure:"command"`
	Arguments            []sdk.TaskDefinitionArgument `mapstructure:"arguments"`
	ConfirmationText     string                       `mapstructure:"confirmation_text"`
	DeployTokenInjection bool                         `mapstructure:"deploy_token_injection"`
	ProjectKeyInjection  bool                         `mapstructure:"project_key_injection"`
	SystemWide           bool                         `mapstructure:"system_wide"`
	State                string                       `mapstructure:"state"`
}

func (a TaskDefinitionArgs) definition(projectID int) sdk.TaskDefinition {
	td := sdk.TaskDefinition{
		Type:                 sdk.TaskDefinitionType(a.TaskType),
		Name:                 a.Name,
		Description:          a.Description,
		Permission:           sdk.TaskPermission(a.Permission),
		Service:              a.Service,
		Command:              a.Command,
		Image:                a.Image,
		ConfirmationText:     a.ConfirmationText,
		DeployTokenInjection: a.DeployTokenInjection,
		ProjectKeyInjection:  a.ProjectKeyInjection,
		SystemWide:           a.SystemWide,
		Arguments:            a.Arguments,
	}
	if projectID != 0 {
		td.Project = &projectID
	}
	return td
}

// RunTaskDefinition creates, updates or deletes an advanced task definition,
// matched by name among the definitions of the project, or among every
// definition when no project is given. Environment scoped definitions are
// not supported: the environment argument is ignored.
func RunTaskDefinition(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a TaskDefinitionArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	state, err := reconcile.ParseState(a.State)
	if err != nil {
		return res, err
	}
	if state == reconcile.StateAbsent && a.Project == "" {
		return res, sdk.NewErrorFrom(sdk.ErrWrongRequest, "project name is required when deleting")
	}
	if a.Environment != "" {
		log.Warn(ctx, "environment-specific tasks are not currently supported; skipping environment name %s", a.Environment)
	}

	var projectID int
	if a.Project != "" {
		projectID, err = c.ProjectIDFromName(ctx, a.Project)
		if err != nil {
			return res, err
		}
	}

	existing, err := c.TaskDefinitions(ctx, projectID, 0)
	if err != nil {
		return res, err
	}
	current, found := sdk.TaskDefinitionByName(existing, a.Name)

	if state == reconcile.StateAbsent {
		if !found {
			return res, nil
		}
		ok, err := c.TaskDefinitionDelete(ctx, current.ID)
		if err != nil {
			return res, err
		}
		res.Changed = true
		res.Result = ok
		return res, nil
	}

	desired := a.definition(projectID)
	if err := sdk.Validate(desired); err != nil {
		return res, err
	}

	var id int
	switch {
	case !found:
		id, err = c.TaskDefinitionAdd(ctx, desired)
	case reconcile.TaskDefinitionChanged(current, desired):
		id, err = c.TaskDefinitionUpdate(ctx, current.ID, desired)
	default:
		res.Result = current.ID
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.Changed = true
	res.Result = id
	return res, nil
}

// TaskInvokeArgs are the arguments of the task_invoke action. The
// environment is given by namespace or id, the definition by name or id.
// Arguments is either a list of {name, value} or a map of name to value.
type TaskInvokeArgs struct {
	Environment   string      `mapstructure:"environment"`
	EnvironmentID int         `mapstructure:"environment_id"`
	Task          string      `mapstructure:"task"`
	TaskID        int         `mapstructure:"task_id"`
	Arguments     interface{} `mapstructure:"arguments"`
}

// RunTaskInvoke invokes an advanced task definition on an environment.
func RunTaskInvoke(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a TaskInvokeArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	if err := requireArg("environment", a.Environment != "" || a.EnvironmentID != 0); err != nil {
		return res, err
	}
	if err := requireArg("task", a.Task != "" || a.TaskID != 0); err != nil {
		return res, err
	}
	values, err := taskArgumentValues(a.Arguments)
	if err != nil {
		return res, err
	}

	envID := a.EnvironmentID
	if envID == 0 {
		envID, err = c.EnvironmentIDFromNamespace(ctx, a.Environment)
		if err != nil {
			return res, err
		}
	}

	defID := a.TaskID
	if defID == 0 {
		defs, err := c.TaskDefinitions(ctx, 0, envID, "id", "name")
		if err != nil {
			return res, err
		}
		def, ok := sdk.TaskDefinitionByName(defs, a.Task)
		if !ok {
			return res, sdk.NewErrorFrom(sdk.ErrNotFound, "task definition %q not found for environment %d", a.Task, envID)
		}
		defID = def.ID
	}

	task, err := c.TaskInvoke(ctx, envID, defID, values)
	if err != nil {
		return res, err
	}
	res.Changed = true
	res.Result = task
	return res, nil
}

func taskArgumentValues(in interface{}) ([]sdk.TaskArgumentValue, error) {
	if in == nil {
		return nil, nil
	}
	if m, ok := in.(map[string]interface{}); ok {
		names := make([]string, 0, len(m))
		for k := range m {
			names = append(names, k)
		}
		sort.Strings(names)
		values := make([]sdk.TaskArgumentValue, len(names))
		for i, n := range names {
			values[i] = sdk.TaskArgumentValue{Name: n, Value: fmt.Sprintf("%v", m[n])}
		}
		return values, nil
	}
	var values []sdk.TaskArgumentValue
	if err := mapstructure.WeakDecode(in, &values); err != nil {
		return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "invalid task arguments: %v", err)
	}
	return values, nil
}
