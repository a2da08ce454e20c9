package sdk

import "strings"

// EnvVariableScope is where a variable is made available.
type EnvVariableScope string

// Variable scopes
const (
	EnvVariableScopeBuild                     EnvVariableScope = "BUILD"
	EnvVariableScopeRuntime                   EnvVariableScope = "RUNTIME"
	EnvVariableScopeGlobal                    EnvVariableScope = "GLOBAL"
	EnvVariableScopeContainerRegistry         EnvVariableScope = "CONTAINER_REGISTRY"
	EnvVariableScopeInternalContainerRegistry EnvVariableScope = "INTERNAL_CONTAINER_REGISTRY"
)

// EnvVariableScopes lists the accepted scopes.
var EnvVariableScopes = []EnvVariableScope{
	EnvVariableScopeBuild,
	EnvVariableScopeRuntime,
	EnvVariableScopeGlobal,
	EnvVariableScopeContainerRegistry,
	EnvVariableScopeInternalContainerRegistry,
}

// EqualFold compares scopes case-insensitively, the API returning them lowercased.
func (s EnvVariableScope) EqualFold(o EnvVariableScope) bool {
	return strings.EqualFold(string(s), string(o))
}

// EnvVariableType is the kind of resource a variable is attached to.
type EnvVariableType string

// Variable types
const (
	EnvVariableTypeProject     EnvVariableType = "PROJECT"
	EnvVariableTypeEnvironment EnvVariableType = "ENVIRONMENT"
)

// EnvVariable is a variable attached to a project or an environment.
type EnvVariable struct {
	ID    int              `json:"id,omitempty" yaml:"id,omitempty" cli:"id"`
	Name  string           `json:"name" yaml:"name" cli:"name,key"`
	Value string           `json:"value" yaml:"value" cli:"value"`
	Scope EnvVariableScope `json:"scope" yaml:"scope" cli:"scope"`
}

// Default fields selected for variables.
var EnvVariableFields = []string{"id", "name", "value", "scope"}

// EnvVariableInput is the input of the addEnvVariable mutation.
type EnvVariableInput struct {
	Type   EnvVariableType  `json:"type" validate:"required,oneof=PROJECT ENVIRONMENT"`
	TypeID int              `json:"typeId" validate:"required"`
	Name   string           `json:"name" validate:"required"`
	Value  string           `json:"value"`
	Scope  EnvVariableScope `json:"scope" validate:"required,lagoon_scope"`
}

// EnvVariableByName returns the variable with the given name.
func EnvVariableByName(vars []EnvVariable, name string) (EnvVariable, bool) {
	for i := range vars {
		if vars[i].Name == name {
			return vars[i], true
		}
	}
	return EnvVariable{}, false
}
