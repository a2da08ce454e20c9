package action

import (
	"context"
	"fmt"
	"sort"

	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
	"github.com/ovh/lagoonctl/sdk/reconcile"
)

// GroupArgs are the arguments of the group action.
type GroupArgs struct {
	Name        string `mapstructure:"name" validate:"required"`
	ParentGroup string `mapstructure:"parent_group"`
	State       string `mapstructure:"state"`
}

// RunGroup adds a group if it does not exist, or deletes it for state absent.
func RunGroup(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a GroupArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	state, err := reconcile.ParseState(a.State)
	if err != nil {
		return res, err
	}

	g, err := c.GroupByName(ctx, a.Name)
	if err != nil && !sdk.ErrorIs(err, sdk.ErrNotFound) {
		return res, err
	}
	exists := err == nil && g != nil

	switch {
	case state == reconcile.StatePresent && exists:
		res.Result = g
	case state == reconcile.StatePresent:
		g, err := c.GroupAdd(ctx, a.Name, a.ParentGroup)
		if err != nil {
			return res, err
		}
		res.Changed = true
		res.Result = g
	case exists:
		if err := c.GroupDelete(ctx, a.Name); err != nil {
			return res, err
		}
		res.Changed = true
	}
	return res, nil
}

// UserGroupArgs are the arguments of the user_group action.
type UserGroupArgs struct {
	Email string `mapstructure:"email" validate:"required"`
	Group string `mapstructure:"group" validate:"required"`
	Role  string `mapstructure:"role" validate:"omitempty,oneof=GUEST REPORTER DEVELOPER MAINTAINER OWNER"`
	State string `mapstructure:"state"`
}

// RunUserGroup adds a user to a group with a role, or removes it for state
// absent. Removing a user who is not a member is not a change.
func RunUserGroup(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a UserGroupArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	state, err := reconcile.ParseState(a.State)
	if err != nil {
		return res, err
	}

	if state == reconcile.StateAbsent {
		id, err := c.UserGroupRemove(ctx, a.Email, a.Group)
		if err != nil {
			if sdk.ErrorIs(err, sdk.ErrGraphQL) {
				log.Warn(ctx, "unable to remove %s from %s: %v", a.Email, a.Group, err)
				res.Msg = err.Error()
				return res, nil
			}
			return res, err
		}
		res.Changed = true
		res.Result = id
		return res, nil
	}

	if err := requireArg("role", a.Role != ""); err != nil {
		return res, err
	}
	id, err := c.UserGroupAdd(ctx, a.Email, a.Group, sdk.GroupRole(a.Role))
	if err != nil {
		return res, err
	}
	res.Changed = true
	res.Result = id
	return res, nil
}

// MetadataArgs are the arguments of the metadata action. Data is a map of
// key to value, or a list: of {key, value} items for state present, of keys
// for state absent.
type MetadataArgs struct {
	ProjectID int         `mapstructure:"project_id"`
	Project   string      `mapstructure:"project"`
	Data      interface{} `mapstructure:"data"`
	State     string      `mapstructure:"state"`
}

// RunMetadata sets or removes metadata of a project. Invalid items are
// skipped and listed in the result, failing the action.
func RunMetadata(ctx context.Context, c lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a MetadataArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	state, err := reconcile.ParseState(a.State)
	if err != nil {
		return res, err
	}
	if err := requireArg("project_id", a.ProjectID != 0 || a.Project != ""); err != nil {
		return res, err
	}

	var keys []string
	values := make(map[string]string)
	var invalid []interface{}
	switch data := a.Data.(type) {
	case map[string]interface{}:
		for k, v := range data {
			keys = append(keys, k)
			values[k] = fmt.Sprintf("%v", v)
		}
		sort.Strings(keys)
	case []interface{}:
		for _, item := range data {
			if state == reconcile.StateAbsent {
				keys = append(keys, fmt.Sprintf("%v", item))
				continue
			}
			m, ok := item.(map[string]interface{})
			if !ok {
				invalid = append(invalid, item)
				continue
			}
			k, hasKey := m["key"]
			v, hasValue := m["value"]
			if !hasKey || !hasValue {
				invalid = append(invalid, item)
				continue
			}
			key := fmt.Sprintf("%v", k)
			keys = append(keys, key)
			values[key] = fmt.Sprintf("%v", v)
		}
	default:
		return res, sdk.NewErrorFrom(sdk.ErrWrongRequest, "invalid data type (%s) expected list or dict", typeOf(a.Data))
	}

	projectID := a.ProjectID
	if projectID == 0 {
		projectID, err = c.ProjectIDFromName(ctx, a.Project)
		if err != nil {
			return res, err
		}
	}

	results := make([]string, 0, len(keys))
	for _, k := range keys {
		var r string
		if state == reconcile.StateAbsent {
			r, err = c.MetadataRemove(ctx, projectID, k)
		} else {
			r, err = c.MetadataUpdate(ctx, projectID, k, values[k])
		}
		if err != nil {
			res.Result = results
			return res, err
		}
		results = append(results, r)
	}
	res.Result = results
	res.Changed = len(results) > 0
	if len(invalid) > 0 {
		res.set("invalid", invalid)
		return res, sdk.NewErrorFrom(sdk.ErrWrongRequest, "%d invalid metadata items", len(invalid))
	}
	return res, nil
}

// RunWhoami returns the user owning the token.
func RunWhoami(ctx context.Context, c lagoonclient.Interface, _ Args) (Result, error) {
	var res Result
	u, err := c.Me(ctx)
	if err != nil {
		return res, err
	}
	res.Result = u
	return res, nil
}
