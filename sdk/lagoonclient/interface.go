package lagoonclient

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/graphql"
)

// Interface is the main interface for lagoonclient package
type Interface interface {
	Execute(ctx context.Context, query string, variables map[string]interface{}, out interface{}, mods ...RequestModifier) (sdk.GraphQLErrors, error)
	ExecuteDocument(ctx context.Context, doc *graphql.Document, out interface{}, mods ...RequestModifier) (sdk.GraphQLErrors, error)
	BatchQuery(ctx context.Context, root, argName string, names []string, selection []graphql.Selection, batchSize int) BatchResult
	QueryTopLevel(ctx context.Context, root string, args map[string]interface{}, fields []string) (json.RawMessage, sdk.GraphQLErrors, error)
	HTTPClient() *http.Client
	Config() Config

	ProjectClient
	EnvironmentClient
	DeployClient
	VariableClient
	GroupClient
	MetadataClient
	TaskClient
	TaskDefinitionClient
	DeployTargetConfigClient
	FactClient
	ProblemClient
	NotificationClient
	UserClient
}

// ProjectClient exposes project related functions
type ProjectClient interface {
	ProjectAdd(ctx context.Context, p sdk.ProjectInput) (*sdk.Project, error)
	ProjectDelete(ctx context.Context, name string) error
	ProjectUpdate(ctx context.Context, id int, patch map[string]interface{}) (*sdk.Project, error)
	ProjectIDFromName(ctx context.Context, name string) (int, error)
}

// EnvironmentClient exposes environment related functions
type EnvironmentClient interface {
	EnvironmentUpdate(ctx context.Context, id int, patch map[string]interface{}) (*sdk.Environment, error)
	EnvironmentDelete(ctx context.Context, project, environment string) (string, error)
	EnvironmentIDFromNamespace(ctx context.Context, ns string) (int, error)
}

// DeployClient exposes deployment related functions
type DeployClient interface {
	DeployBranch(ctx context.Context, project, branch string) (string, error)
	DeployLatest(ctx context.Context, project, environment string) (string, error)
	BulkDeploy(ctx context.Context, name string, buildVars []sdk.BuildVariable, envs []sdk.DeployEnvironmentInput) (string, error)
	CheckDeployStatus(ctx context.Context, ns string, wait bool, delay time.Duration, retries int) (string, error)
}

// VariableClient exposes variable related functions
type VariableClient interface {
	VariableAdd(ctx context.Context, typ sdk.EnvVariableType, typeID int, name, value string, scope sdk.EnvVariableScope) (int, error)
	VariableDelete(ctx context.Context, id int) (bool, error)
	VariablesForProject(ctx context.Context, project string) ([]sdk.EnvVariable, error)
	VariablesForEnvironment(ctx context.Context, ns string) ([]sdk.EnvVariable, error)
}

// GroupClient exposes group related functions
type GroupClient interface {
	ProjectGroups(ctx context.Context, projects []string) (map[string][]sdk.Group, sdk.GraphQLErrors, error)
	GroupByName(ctx context.Context, name string) (*sdk.Group, error)
	GroupAdd(ctx context.Context, name, parent string) (*sdk.Group, error)
	GroupDelete(ctx context.Context, name string) error
	ProjectGroupsAdd(ctx context.Context, project string, groups []string) error
	ProjectGroupsRemove(ctx context.Context, project string, groups []string) error
	UserGroupAdd(ctx context.Context, email, group string, role sdk.GroupRole) (string, error)
	UserGroupRemove(ctx context.Context, email, group string) (string, error)
}

// MetadataClient exposes project metadata related functions
type MetadataClient interface {
	ProjectMetadata(ctx context.Context, projects []string) (map[string]sdk.Metadata, sdk.GraphQLErrors, error)
	MetadataUpdate(ctx context.Context, projectID int, key, value string) (string, error)
	MetadataRemove(ctx context.Context, projectID int, key string) (string, error)
}

// TaskClient exposes task related functions
type TaskClient interface {
	TaskByID(ctx context.Context, id int) (*sdk.Task, error)
	TaskByName(ctx context.Context, name string) (*sdk.Task, error)
	TaskInvoke(ctx context.Context, environmentID, definitionID int, args []sdk.TaskArgumentValue) (*sdk.Task, error)
}

// TaskDefinitionClient exposes advanced task definition related functions
type TaskDefinitionClient interface {
	TaskDefinitions(ctx context.Context, projectID, environmentID int, fields ...string) ([]sdk.TaskDefinition, error)
	TaskDefinitionAdd(ctx context.Context, td sdk.TaskDefinition) (int, error)
	TaskDefinitionUpdate(ctx context.Context, id int, td sdk.TaskDefinition) (int, error)
	TaskDefinitionDelete(ctx context.Context, id int) (bool, error)
}

// DeployTargetConfigClient exposes deploy target config related functions
type DeployTargetConfigClient interface {
	DeployTargetConfigAdd(ctx context.Context, projectID int, cfg sdk.DeployTargetConfigInput) (*sdk.DeployTargetConfig, error)
	DeployTargetConfigDelete(ctx context.Context, projectID, id int) (bool, error)
}

// FactClient exposes fact related functions
type FactClient interface {
	Facts(ctx context.Context, environmentID int) ([]sdk.Fact, error)
	FactAdd(ctx context.Context, f sdk.Fact) (int, error)
	FactDelete(ctx context.Context, environmentID int, name string) (bool, error)
}

// ProblemClient exposes problem related functions
type ProblemClient interface {
	Problems(ctx context.Context, environmentID int) ([]sdk.Problem, error)
	ProblemAdd(ctx context.Context, p sdk.Problem) (int, error)
	ProblemDelete(ctx context.Context, environmentID int, identifier string) (bool, error)
}

// NotificationClient exposes notification related functions
type NotificationClient interface {
	NotificationAdd(ctx context.Context, n sdk.Notification) error
	NotificationRemove(ctx context.Context, n sdk.Notification) error
}

// UserClient exposes user related functions
type UserClient interface {
	Me(ctx context.Context) (*sdk.User, error)
}
