package lagoonclient

import (
	"context"

	"github.com/ovh/lagoonctl/sdk"
)

const notificationAddMutation = `mutation addNotificationToProject($project: String!, $type: NotificationType!, $name: String!) {
  addNotificationToProject(input: {
    project: $project
    notificationType: $type
    notificationName: $name
  }) {
    id
    name
  }
}`

const notificationRemoveMutation = `mutation removeNotificationFromProject($project: String!, $type: NotificationType!, $name: String!) {
  removeNotificationFromProject(input: {
    project: $project
    notificationType: $type
    notificationName: $name
  }) {
    id
  }
}`

func (c *client) NotificationAdd(ctx context.Context, n sdk.Notification) error {
	if err := sdk.Validate(n); err != nil {
		return err
	}
	vars := map[string]interface{}{"project": n.Project, "type": n.Type, "name": n.Name}
	return sdk.WrapError(c.mutateField(ctx, notificationAddMutation, vars, "addNotificationToProject", nil),
		"unable to add notification %s to project %s", n.Name, n.Project)
}

func (c *client) NotificationRemove(ctx context.Context, n sdk.Notification) error {
	if err := sdk.Validate(n); err != nil {
		return err
	}
	vars := map[string]interface{}{"project": n.Project, "type": n.Type, "name": n.Name}
	return sdk.WrapError(c.mutateField(ctx, notificationRemoveMutation, vars, "removeNotificationFromProject", nil),
		"unable to remove notification %s from project %s", n.Name, n.Project)
}
