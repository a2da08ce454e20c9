package inventory

import (
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/ovh/lagoonctl/sdk"
)

// Default dotted keys read by EnvironmentInput.
const (
	DefaultEnvironmentKey = "environment.name"
	DefaultProjectKey     = "project.name"
)

// EnvironmentInput builds the environment inputs of a bulk deployment out of
// inventory hosts. envKey and projectKey are dotted paths into the variables
// of each host, defaulting to DefaultEnvironmentKey and DefaultProjectKey.
func EnvironmentInput(hosts []string, hostvars map[string]map[string]interface{}, envKey, projectKey string) ([]sdk.DeployEnvironmentInput, error) {
	if hostvars == nil {
		return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "'hostvars' not found")
	}
	if envKey == "" {
		envKey = DefaultEnvironmentKey
	}
	if projectKey == "" {
		projectKey = DefaultProjectKey
	}

	res := make([]sdk.DeployEnvironmentInput, 0, len(hosts))
	for _, h := range hosts {
		hv, ok := hostvars[h]
		if !ok {
			return nil, sdk.NewErrorFrom(sdk.ErrNotFound, "'%s' not in variable list", h)
		}
		env, ok := dig(hv, envKey)
		if !ok {
			return nil, sdk.NewErrorFrom(sdk.ErrNotFound, "'%s' not in variable list", h)
		}
		project, ok := dig(hv, projectKey)
		if !ok {
			return nil, sdk.NewErrorFrom(sdk.ErrNotFound, "'%s' not in variable list", h)
		}
		res = append(res, sdk.DeployEnvironmentInput{
			Name:    env,
			Project: &sdk.DeployProjectInput{Name: project},
		})
	}
	return res, nil
}

// HostVarsMap flattens the host variables of inv into the generic form
// taken by EnvironmentInput.
func (inv *Inventory) HostVarsMap() (map[string]map[string]interface{}, error) {
	res := make(map[string]map[string]interface{}, len(inv.HostVars))
	for name, hv := range inv.HostVars {
		var m map[string]interface{}
		if err := mapstructure.Decode(hv, &m); err != nil {
			return nil, sdk.WrapError(err, "unable to read variables of host %s", name)
		}
		res[name] = m
	}
	return res, nil
}

// dig follows a dotted path into nested maps and returns the string value
// found at its end.
func dig(m map[string]interface{}, path string) (string, bool) {
	var cur interface{} = m
	for _, k := range strings.Split(path, ".") {
		switch t := cur.(type) {
		case map[string]interface{}:
			v, ok := t[k]
			if !ok {
				return "", false
			}
			cur = v
		case map[interface{}]interface{}:
			v, ok := t[k]
			if !ok {
				return "", false
			}
			cur = v
		default:
			return "", false
		}
	}
	switch t := cur.(type) {
	case string:
		return t, true
	case nil:
		return "", false
	}
	var s string
	if err := mapstructure.WeakDecode(cur, &s); err != nil {
		return "", false
	}
	return s, true
}
