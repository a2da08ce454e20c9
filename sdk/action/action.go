// Package action implements the Lagoon automation actions. Each action takes
// loosely typed arguments, as found in a playbook or on a command line, and
// returns a Result describing whether something changed.
package action

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
)

// Args are the raw arguments of an action.
type Args map[string]interface{}

// Result is the outcome of an action.
type Result struct {
	Changed bool                   `json:"changed" yaml:"changed"`
	Failed  bool                   `json:"failed,omitempty" yaml:"failed,omitempty"`
	Msg     string                 `json:"msg,omitempty" yaml:"msg,omitempty"`
	Result  interface{}            `json:"result,omitempty" yaml:"result,omitempty"`
	Extra   map[string]interface{} `json:"extra,omitempty" yaml:"extra,omitempty"`
}

func (r *Result) set(key string, value interface{}) {
	if r.Extra == nil {
		r.Extra = make(map[string]interface{})
	}
	r.Extra[key] = value
}

// BuiltinAction is the signature of every action. The client may be nil for
// actions that do not talk to the API.
type BuiltinAction func(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error)

// Action names
const (
	CMDBDiffAction            = "cmdb_diff"
	ConfigAction              = "config"
	DeployAction              = "deploy"
	DeployBulkAction          = "deploy_bulk"
	DeployTargetConfigAction  = "deploy_target_config"
	EnvVariableAction         = "env_variable"
	EnvironmentDeleteAction   = "environment_delete"
	EnvironmentUpdateAction   = "environment_update"
	FactAction                = "fact"
	GroupAction               = "group"
	InfoAction                = "info"
	LagoonLogAction           = "lagoon_log"
	LastDeployAction          = "last_deploy"
	ListAction                = "list"
	MetadataAction            = "metadata"
	MutationAction            = "mutation"
	ProblemAction             = "problem"
	ProjectAction             = "project"
	ProjectGroupAction        = "project_group"
	ProjectNotificationAction = "project_notification"
	ProjectUpdateAction       = "project_update"
	QueryAction               = "query"
	TaskDefinitionAction      = "task_definition"
	TaskInvokeAction          = "task_invoke"
	TokenAction               = "token"
	UserGroupAction           = "user_group"
	WhoamiAction              = "whoami"
)

var mapBuiltinActions = map[string]BuiltinAction{}

// Actions which do not need an API client.
var offlineActions = map[string]bool{
	CMDBDiffAction:  true,
	ConfigAction:    true,
	LagoonLogAction: true,
	TokenAction:     true,
}

func init() {
	mapBuiltinActions[CMDBDiffAction] = RunCMDBDiff
	mapBuiltinActions[ConfigAction] = RunConfig
	mapBuiltinActions[DeployAction] = RunDeploy
	mapBuiltinActions[DeployBulkAction] = RunDeployBulk
	mapBuiltinActions[DeployTargetConfigAction] = RunDeployTargetConfig
	mapBuiltinActions[EnvVariableAction] = RunEnvVariable
	mapBuiltinActions[EnvironmentDeleteAction] = RunEnvironmentDelete
	mapBuiltinActions[EnvironmentUpdateAction] = RunEnvironmentUpdate
	mapBuiltinActions[FactAction] = RunFact
	mapBuiltinActions[GroupAction] = RunGroup
	mapBuiltinActions[InfoAction] = RunInfo
	mapBuiltinActions[LagoonLogAction] = RunLagoonLog
	mapBuiltinActions[LastDeployAction] = RunLastDeploy
	mapBuiltinActions[ListAction] = RunList
	mapBuiltinActions[MetadataAction] = RunMetadata
	mapBuiltinActions[MutationAction] = RunMutation
	mapBuiltinActions[ProblemAction] = RunProblem
	mapBuiltinActions[ProjectAction] = RunProject
	mapBuiltinActions[ProjectGroupAction] = RunProjectGroup
	mapBuiltinActions[ProjectNotificationAction] = RunProjectNotification
	mapBuiltinActions[ProjectUpdateAction] = RunProjectUpdate
	mapBuiltinActions[QueryAction] = RunQuery
	mapBuiltinActions[TaskDefinitionAction] = RunTaskDefinition
	mapBuiltinActions[TaskInvokeAction] = RunTaskInvoke
	mapBuiltinActions[TokenAction] = RunToken
	mapBuiltinActions[UserGroupAction] = RunUserGroup
	mapBuiltinActions[WhoamiAction] = RunWhoami
}

// Names returns the sorted names of the known actions.
func Names() []string {
	names := make([]string, 0, len(mapBuiltinActions))
	for n := range mapBuiltinActions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NeedsClient returns false for actions that never call the API.
func NeedsClient(name string) bool {
	return !offlineActions[name]
}

// Run runs the named action. An error returned by the action is reported in
// the result as a failure, the returned error being kept for callers which
// need the cause.
func Run(ctx context.Context, c lagoonclient.Interface, name string, args Args) (Result, error) {
	f, ok := mapBuiltinActions[name]
	if !ok {
		err := sdk.NewErrorFrom(sdk.ErrNotFound, "unknown action %q", name)
		return Result{Failed: true, Msg: err.Error()}, err
	}
	if c == nil && NeedsClient(name) {
		err := sdk.NewErrorFrom(sdk.ErrWrongRequest, "action %s requires an API client", name)
		return Result{Failed: true, Msg: err.Error()}, err
	}

	log.Debug(ctx, "running action %s", name)
	res, err := f(ctx, c, args)
	if err != nil {
		res.Failed = true
		res.Msg = err.Error()
		log.Error(ctx, "action.Run> %s: %v", name, err)
	}
	return res, err
}

// decode fills out from args and validates it.
func decode(args Args, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(boolToString),
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		Result:           out,
	})
	if err != nil {
		return sdk.WithStack(err)
	}
	if err := dec.Decode(map[string]interface{}(args)); err != nil {
		return sdk.NewErrorFrom(sdk.ErrWrongRequest, "invalid arguments: %v", err)
	}
	return sdk.Validate(out)
}

// boolToString keeps booleans as "true" or "false" in string fields, the
// weak decoding giving "1" or "0" otherwise.
func boolToString(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.Bool || t.Kind() != reflect.String {
		return data, nil
	}
	return strconv.FormatBool(data.(bool)), nil
}

func requireArg(name string, set bool) error {
	if !set {
		return sdk.NewErrorFrom(sdk.ErrWrongRequest, "missing required argument %q", name)
	}
	return nil
}

func warnPartial(ctx context.Context, errs sdk.GraphQLErrors) {
	if len(errs) > 0 {
		log.Warn(ctx, "the query partially succeeded, but the following errors were encountered: %v", errs)
	}
}

func typeOf(v interface{}) string {
	return fmt.Sprintf("%T", v)
}
