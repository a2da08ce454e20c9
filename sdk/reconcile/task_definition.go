package reconcile

import (
	"github.com/mitchellh/hashstructure"

	"github.com/ovh/lagoonctl/sdk"
)

type argumentFingerprint struct {
	Name        string
	DisplayName string
	Type        string
}

// TaskDefinitionChanged returns true when desired differs from current on
// type, permission, description, service, arguments (name, display name and
// type, in order) or, depending on the type, command or image.
func TaskDefinitionChanged(current, desired sdk.TaskDefinition) bool {
	if current.Type != desired.Type ||
		current.Permission != desired.Permission ||
		current.Description != desired.Description ||
		current.Service != desired.Service {
		return true
	}
	if argumentsChanged(current.Arguments, desired.Arguments) {
		return true
	}
	switch current.Type {
	case sdk.TaskDefinitionTypeCommand:
		return current.Command != desired.Command
	case sdk.TaskDefinitionTypeImage:
		return current.Image != desired.Image
	}
	return false
}

func argumentsChanged(current, desired []sdk.TaskDefinitionArgument) bool {
	if len(current) != len(desired) {
		return true
	}
	if len(current) == 0 {
		return false
	}
	hc, errc := hashstructure.Hash(fingerprints(current), nil)
	hd, errd := hashstructure.Hash(fingerprints(desired), nil)
	if errc != nil || errd != nil {
		return true
	}
	return hc != hd
}

func fingerprints(args []sdk.TaskDefinitionArgument) []argumentFingerprint {
	res := make([]argumentFingerprint, len(args))
	for i := range args {
		res[i] = argumentFingerprint{Name: args[i].Name, DisplayName: args[i].DisplayName, Type: args[i].Type}
	}
	return res
}
