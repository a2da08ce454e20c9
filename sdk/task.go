package sdk

// TaskDefinitionType is the variant of an advanced task definition.
type TaskDefinitionType string

// Task definition types
const (
	TaskDefinitionTypeCommand TaskDefinitionType = "COMMAND"
	TaskDefinitionTypeImage   TaskDefinitionType = "IMAGE"
)

// TaskPermission is the minimal role required to invoke a task.
type TaskPermission string

// Task permissions
const (
	TaskPermissionGuest      TaskPermission = "GUEST"
	TaskPermissionDeveloper  TaskPermission = "DEVELOPER"
	TaskPermissionMaintainer TaskPermission = "MAINTAINER"
)

// TaskDefinitionArgument is an argument a task definition accepts at invocation.
type TaskDefinitionArgument struct {
	ID          int      `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Name        string   `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	DisplayName string   `json:"displayName,omitempty" yaml:"displayName,omitempty" mapstructure:"display_name"`
	Type        string   `json:"type" yaml:"type" mapstructure:"type" validate:"required,oneof=NUMERIC STRING ENVIRONMENT_SOURCE_NAME ENVIRONMENT_SOURCE_NAME_EXCLUDE_SELF"`
	Range       []string `json:"range,omitempty" yaml:"range,omitempty" mapstructure:"range"`
}

// TaskDefinition is an advanced task definition. Command is set for COMMAND
// definitions and Image for IMAGE ones. At most one of Project and
// Environment is set, none meaning a system-wide definition.
type TaskDefinition struct {
	ID                   int                      `json:"id,omitempty" yaml:"id,omitempty" cli:"id"`
	Type                 TaskDefinitionType       `json:"type" yaml:"type" cli:"type" validate:"required,oneof=COMMAND IMAGE"`
	Name                 string                   `json:"name" yaml:"name" cli:"name,key" validate:"required"`
	Description          string                   `json:"description" yaml:"description" cli:"description"`
	Permission           TaskPermission           `json:"permission" yaml:"permission" cli:"permission" validate:"required,oneof=GUEST DEVELOPER MAINTAINER"`
	Service              string                   `json:"service" yaml:"service" cli:"service"`
	Command              string                   `json:"command,omitempty" yaml:"command,omitempty" validate:"required_if=Type COMMAND"`
	Image                string                   `json:"image,omitempty" yaml:"image,omitempty" validate:"required_if=Type IMAGE"`
	Project              *int                     `json:"project,omitempty" yaml:"project,omitempty"`
	Environment          *int                     `json:"environment,omitempty" yaml:"environment,omitempty"`
	GroupName            string                   `json:"groupName,omitempty" yaml:"groupName,omitempty"`
	ConfirmationText     string                   `json:"confirmationText,omitempty" yaml:"confirmationText,omitempty"`
	DeployTokenInjection bool                     `json:"deployTokenInjection" yaml:"deployTokenInjection"`
	ProjectKeyInjection  bool                     `json:"projectKeyInjection" yaml:"projectKeyInjection"`
	SystemWide           bool                     `json:"systemWide,omitempty" yaml:"systemWide,omitempty"`
	Arguments            []TaskDefinitionArgument `json:"advancedTaskDefinitionArguments,omitempty" yaml:"arguments,omitempty" validate:"dive"`
}

// Default top-level fields selected for task definitions, shared by both variants.
var TaskDefinitionFields = []string{
	"id",
	"type",
	"permission",
	"project",
	"environment",
	"name",
	"description",
	"service",
	"confirmationText",
	"groupName",
	"deployTokenInjection",
	"projectKeyInjection",
	"systemWide",
}

// Default fields selected for task definition arguments.
var TaskDefinitionArgumentFields = []string{"id", "name", "displayName", "type", "range"}

// TaskDefinitionByName returns the definition with the given name.
func TaskDefinitionByName(defs []TaskDefinition, name string) (TaskDefinition, bool) {
	for i := range defs {
		if defs[i].Name == name {
			return defs[i], true
		}
	}
	return TaskDefinition{}, false
}

// Task is an invoked task.
type Task struct {
	ID          int          `json:"id" yaml:"id" cli:"id,key"`
	Name        string       `json:"name" yaml:"name" cli:"name"`
	Status      string       `json:"status" yaml:"status" cli:"status"`
	Created     string       `json:"created,omitempty" yaml:"created,omitempty" cli:"created"`
	Started     string       `json:"started,omitempty" yaml:"started,omitempty"`
	Completed   string       `json:"completed,omitempty" yaml:"completed,omitempty"`
	Service     string       `json:"service,omitempty" yaml:"service,omitempty"`
	Command     string       `json:"command,omitempty" yaml:"command,omitempty"`
	RemoteID    string       `json:"remoteId,omitempty" yaml:"remoteId,omitempty"`
	TaskName    string       `json:"taskName,omitempty" yaml:"taskName,omitempty"`
	Logs        string       `json:"logs,omitempty" yaml:"logs,omitempty"`
	Environment *Environment `json:"environment,omitempty" yaml:"environment,omitempty"`
}

// Default fields selected for tasks.
var TaskFields = []string{"id", "name", "status", "created", "started", "completed", "service", "command", "remoteId", "taskName"}

// TaskArgumentValue is a value passed to an argument at task invocation.
type TaskArgumentValue struct {
	Name  string `json:"advancedTaskDefinitionArgumentName" mapstructure:"name"`
	Value string `json:"value" mapstructure:"value"`
}
