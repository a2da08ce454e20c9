package action

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/h2non/gock.v1"

	"github.com/ovh/lagoonctl/sdk"
)

func mockProjectID(project interface{}) {
	mockGraphQL().
		AddMatcher(queryContains("query projectId")).
		Reply(http.StatusOK).
		JSON(data(m{"projectByName": project}))
}

func TestRunProjectCreate(t *testing.T) {
	c := newTestClient(t)

	mockProjectID(nil)
	mockGraphQL().
		AddMatcher(queryContains("addProject")).
		AddMatcher(variable("openshift", 1)).
		AddMatcher(variable("autoIdle", 0)).
		AddMatcher(variable("developmentEnvironmentsLimit", 5)).
		Reply(http.StatusOK).
		JSON(data(m{"addProject": m{"id": 3, "name": "foo"}}))

	res, err := Run(context.TODO(), c, ProjectAction, Args{
		"name":                   "foo",
		"git_url":                "git@example.com:foo.git",
		"production_environment": "main",
		"auto_idle":              "0",
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	p, ok := res.Result.(*sdk.Project)
	require.True(t, ok)
	assert.Equal(t, 3, p.ID)
	assert.True(t, gock.IsDone())
}

func TestRunProjectExisting(t *testing.T) {
	c := newTestClient(t)

	mockProjectID(m{"id": 3})

	res, err := Run(context.TODO(), c, ProjectAction, Args{"name": "foo", "git_url": "git@example.com:foo.git"})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.True(t, gock.IsDone())
}

func TestRunProjectAbsent(t *testing.T) {
	c := newTestClient(t)

	mockProjectID(nil)
	res, err := Run(context.TODO(), c, ProjectAction, Args{"name": "foo", "state": "absent"})
	require.NoError(t, err)
	assert.False(t, res.Changed)

	mockProjectID(m{"id": 3})
	mockGraphQL().
		AddMatcher(queryContains("deleteProject")).
		Reply(http.StatusOK).
		JSON(data(m{"deleteProject": "success"}))
	res, err = Run(context.TODO(), c, ProjectAction, Args{"name": "foo", "state": "absent"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.True(t, gock.IsDone())

	_, err = Run(context.TODO(), c, ProjectAction, Args{"name": "foo", "state": "gone"})
	assert.Error(t, err)
}

func mockProjectWithCluster() {
	mockGraphQL().
		AddMatcher(queryContains(`projectByName(name: "foo")`)).
		AddMatcher(queryExcludes("foo: projectByName")).
		Reply(http.StatusOK).
		JSON(data(m{"projectByName": m{"id": 1, "name": "foo", "autoIdle": 1, "branches": "^main$"}}))
	mockGraphQL().
		AddMatcher(queryContains(`foo: projectByName(name: "foo")`, "kubernetes {")).
		Reply(http.StatusOK).
		JSON(data(m{"foo": m{"kubernetes": m{"id": 2, "name": "k8s"}}}))
}

func TestRunProjectUpdateUnchanged(t *testing.T) {
	c := newTestClient(t)

	mockProjectWithCluster()

	res, err := Run(context.TODO(), c, ProjectUpdateAction, Args{
		"project": "foo",
		"values":  m{"autoIdle": "1", "kubernetes": 2, "branches": "^main$"},
	})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.True(t, gock.IsDone())
}

func TestRunProjectUpdate(t *testing.T) {
	c := newTestClient(t)

	mockProjectWithCluster()
	mockGraphQL().
		AddMatcher(queryContains("updateProject(input: {", "id: 1", "kubernetes: 3")).
		Reply(http.StatusOK).
		JSON(data(m{"updateProject": m{"id": 1, "name": "foo", "kubernetes": m{"id": 3, "name": "k8s-2"}}}))

	res, err := Run(context.TODO(), c, ProjectUpdateAction, Args{
		"project": "foo",
		"values":  m{"autoIdle": 1, "kubernetes": "3"},
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	p, ok := res.Result.(*sdk.Project)
	require.True(t, ok)
	assert.Equal(t, 3, p.Kubernetes.ID)
	assert.True(t, gock.IsDone())
}

func TestRunProjectUpdateNotFound(t *testing.T) {
	c := newTestClient(t)

	mockGraphQL().
		AddMatcher(queryContains(`projectByName(name: "foo")`)).
		Reply(http.StatusOK).
		JSON(data(m{"projectByName": nil}))

	_, err := Run(context.TODO(), c, ProjectUpdateAction, Args{"project": "foo", "values": m{"autoIdle": 1}})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrNotFound))

	_, err = Run(context.TODO(), c, ProjectUpdateAction, Args{"project": "foo"})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))
	assert.True(t, gock.IsDone())
}

func mockProjectGroups(groups ...interface{}) {
	mockGraphQL().
		AddMatcher(queryContains(`foo: projectByName(name: "foo")`, "groups {")).
		Reply(http.StatusOK).
		JSON(data(m{"foo": m{"groups": groups}}))
}

func TestRunProjectGroup(t *testing.T) {
	c := newTestClient(t)

	mockProjectGroups(m{"id": "g1", "name": "devs", "type": "null"})
	mockGraphQL().
		AddMatcher(queryContains("addGroupsToProject", `name: "ops"`)).
		AddMatcher(queryExcludes(`name: "devs"`)).
		Reply(http.StatusOK).
		JSON(data(m{"addGroupsToProject": m{"id": 1}}))

	res, err := Run(context.TODO(), c, ProjectGroupAction, Args{"project": "foo", "groups": []interface{}{"devs", "ops"}})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, []string{"ops"}, res.Result)
	assert.True(t, gock.IsDone())
}

func TestRunProjectGroupAbsentUnchanged(t *testing.T) {
	c := newTestClient(t)

	mockProjectGroups(m{"id": "g1", "name": "devs", "type": "null"})

	res, err := Run(context.TODO(), c, ProjectGroupAction, Args{"project": "foo", "groups": []interface{}{"ops"}, "state": "absent"})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.True(t, gock.IsDone())
}

func TestRunProjectNotification(t *testing.T) {
	c := newTestClient(t)

	mockGraphQL().
		AddMatcher(queryContains("addNotificationToProject")).
		AddMatcher(variable("type", "SLACK")).
		Reply(http.StatusOK).
		JSON(data(m{"addNotificationToProject": m{"id": 1, "name": "foo"}}))
	res, err := Run(context.TODO(), c, ProjectNotificationAction, Args{"project": "foo", "notification": "deploys"})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	mockGraphQL().
		AddMatcher(queryContains("addNotificationToProject")).
		Reply(http.StatusOK).
		JSON(m{"data": m{"addNotificationToProject": nil}, "errors": []interface{}{m{"message": "Duplicate entry 'deploys' for key"}}})
	res, err = Run(context.TODO(), c, ProjectNotificationAction, Args{"project": "foo", "notification": "deploys"})
	require.NoError(t, err)
	assert.False(t, res.Changed)

	_, err = Run(context.TODO(), c, ProjectNotificationAction, Args{"project": "foo", "notification": "deploys", "type": "EMAIL"})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrInvalidEnumValue))
	assert.True(t, gock.IsDone())
}

func TestRunList(t *testing.T) {
	c := newTestClient(t)

	mockGraphQL().
		AddMatcher(queryContains("allProjects {")).
		Reply(http.StatusOK).
		JSON(data(m{"allProjects": []interface{}{m{"id": 1, "name": "foo"}, m{"id": 2, "name": "bar"}}}))
	mockGraphQL().
		AddMatcher(queryContains(`foo: projectByName`, `bar: projectByName`, "environments {")).
		Reply(http.StatusOK).
		JSON(m{
			"data":   m{"foo": m{"environments": []interface{}{m{"name": "main", "kubernetesNamespaceName": "foo-main"}}}, "bar": nil},
			"errors": []interface{}{m{"message": "Unauthorized", "path": []interface{}{"bar"}}},
		})

	res, err := Run(context.TODO(), c, ListAction, nil)
	require.NoError(t, err)
	projects, ok := res.Result.([]sdk.Project)
	require.True(t, ok)
	require.Len(t, projects, 2)
	assert.Len(t, projects[0].Environments, 1)
	assert.Empty(t, projects[1].Environments)
	assert.True(t, gock.IsDone())

	_, err = Run(context.TODO(), c, ListAction, Args{"type": "group"})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrInvalidEnumValue))
}
