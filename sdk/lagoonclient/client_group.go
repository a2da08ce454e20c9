package lagoonclient

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/graphql"
)

const groupByNameQuery = `query groupByName($name: String!) {
  groupByName(name: $name) {
    id
    name
    type
  }
}`

const groupAddMutation = `mutation addGroup($name: String!) {
  addGroup(input: {name: $name}) {
    id
    name
  }
}`

const groupAddWithParentMutation = `mutation addGroup($name: String!, $parent: String!) {
  addGroup(input: {name: $name, parentGroup: {name: $parent}}) {
    id
    name
  }
}`

const groupDeleteMutation = `mutation deleteGroup($name: String!) {
  deleteGroup(input: {group: {name: $name}})
}`

const userGroupAddMutation = `mutation addUserToGroup($email: String!, $group: String!, $role: GroupRole!) {
  addUserToGroup(input: {
    user: {email: $email}
    group: {name: $group}
    role: $role
  }) {
    id
  }
}`

const userGroupRemoveMutation = `mutation removeUserFromGroup($email: String!, $group: String!) {
  removeUserFromGroup(input: {
    user: {email: $email}
    group: {name: $group}
  }) {
    id
  }
}`

func (c *client) ProjectGroups(ctx context.Context, projects []string) (map[string][]sdk.Group, sdk.GraphQLErrors, error) {
	sel := []graphql.Selection{graphql.NewField("groups").SelectFields(sdk.GroupFields...)}
	res := c.BatchQuery(ctx, "projectByName", "name", projects, sel, 0)
	if res.Err != nil {
		return nil, res.Errors, sdk.WrapError(res.Err, "error fetching groups")
	}
	groups := make(map[string][]sdk.Group, len(projects))
	for name, raw := range res.Data {
		if raw == nil {
			groups[name] = nil
			continue
		}
		var p sdk.Project
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, res.Errors, sdk.NewErrorFrom(sdk.ErrInvalidData, "unable to decode groups of project %s: %v", name, err)
		}
		groups[name] = p.Groups
	}
	return groups, res.Errors, nil
}

func (c *client) GroupByName(ctx context.Context, name string) (*sdk.Group, error) {
	var g sdk.Group
	if err := c.queryField(ctx, groupByNameQuery, map[string]interface{}{"name": name}, "groupByName", &g); err != nil {
		if sdk.ErrorIs(err, sdk.ErrNotFound) {
			return nil, sdk.NewErrorFrom(sdk.ErrNotFound, "group %q not found", name)
		}
		return nil, err
	}
	return &g, nil
}

func (c *client) GroupAdd(ctx context.Context, name, parent string) (*sdk.Group, error) {
	query := groupAddMutation
	vars := map[string]interface{}{"name": name}
	if parent != "" {
		query = groupAddWithParentMutation
		vars["parent"] = parent
	}
	var g sdk.Group
	if err := c.mutateField(ctx, query, vars, "addGroup", &g); err != nil {
		if strings.Contains(err.Error(), "exists") || strings.Contains(err.Error(), "Duplicate") {
			return nil, sdk.NewErrorFrom(sdk.ErrConflict, "group %q exists", name)
		}
		return nil, sdk.WrapError(err, "unable to add group %s", name)
	}
	return &g, nil
}

func (c *client) GroupDelete(ctx context.Context, name string) error {
	if err := c.mutateField(ctx, groupDeleteMutation, map[string]interface{}{"name": name}, "deleteGroup", nil); err != nil {
		return sdk.WrapError(err, "unable to delete group %s", name)
	}
	return nil
}

func (c *client) ProjectGroupsAdd(ctx context.Context, project string, groups []string) error {
	return c.projectGroups(ctx, "addGroupsToProject", project, groups)
}

func (c *client) ProjectGroupsRemove(ctx context.Context, project string, groups []string) error {
	return c.projectGroups(ctx, "removeGroupsFromProject", project, groups)
}

func (c *client) projectGroups(ctx context.Context, mutation, project string, groups []string) error {
	if len(groups) == 0 {
		return nil
	}
	in := make([]interface{}, len(groups))
	for i := range groups {
		in[i] = map[string]interface{}{"name": groups[i]}
	}
	field := graphql.NewField(mutation).
		WithArg("input", map[string]interface{}{
			"project": map[string]interface{}{"name": project},
			"groups":  in,
		}).
		SelectFields("id")
	if err := c.mutateDocument(ctx, graphql.Mutation(field), mutation, nil); err != nil {
		return sdk.WrapError(err, "unable to update groups of project %s", project)
	}
	return nil
}

func (c *client) UserGroupAdd(ctx context.Context, email, group string, role sdk.GroupRole) (string, error) {
	role = sdk.GroupRole(strings.ToUpper(string(role)))
	if err := sdk.ValidateEnum("role", string(role),
		string(sdk.GroupRoleGuest), string(sdk.GroupRoleReporter), string(sdk.GroupRoleDeveloper),
		string(sdk.GroupRoleMaintainer), string(sdk.GroupRoleOwner)); err != nil {
		return "", err
	}
	var g sdk.Group
	vars := map[string]interface{}{"email": email, "group": group, "role": role}
	if err := c.mutateField(ctx, userGroupAddMutation, vars, "addUserToGroup", &g); err != nil {
		return "", sdk.WrapError(err, "unable to add %s to group %s", email, group)
	}
	return g.ID, nil
}

func (c *client) UserGroupRemove(ctx context.Context, email, group string) (string, error) {
	var g sdk.Group
	vars := map[string]interface{}{"email": email, "group": group}
	if err := c.mutateField(ctx, userGroupRemoveMutation, vars, "removeUserFromGroup", &g); err != nil {
		return "", sdk.WrapError(err, "unable to remove %s from group %s", email, group)
	}
	return g.ID, nil
}
