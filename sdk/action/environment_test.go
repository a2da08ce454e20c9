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

func mockEnvironment(env interface{}) {
	mockGraphQL().
		AddMatcher(queryContains(`environmentByKubernetesNamespaceName(kubernetesNamespaceName: "foo-main")`)).
		AddMatcher(queryExcludes("foo_main:")).
		Reply(http.StatusOK).
		JSON(data(m{"environmentByKubernetesNamespaceName": env}))
}

func mockEnvironmentCluster() {
	mockGraphQL().
		AddMatcher(queryContains("foo_main: environmentByKubernetesNamespaceName", "kubernetes {")).
		Reply(http.StatusOK).
		JSON(data(m{"foo_main": m{"kubernetes": m{"id": 2, "name": "k8s"}}}))
}

func TestRunEnvironmentUpdate(t *testing.T) {
	c := newTestClient(t)

	mockEnvironment(m{"id": 10, "name": "main", "kubernetesNamespaceName": "foo-main", "autoIdle": 1})
	mockEnvironmentCluster()
	mockGraphQL().
		AddMatcher(queryContains("updateEnvironment(input: {", "id: 10", "autoIdle: 0")).
		Reply(http.StatusOK).
		JSON(data(m{"updateEnvironment": m{"id": 10, "name": "main", "autoIdle": 0}}))

	res, err := Run(context.TODO(), c, EnvironmentUpdateAction, Args{
		"environment": "foo-main",
		"values":      m{"autoIdle": false, "kubernetes": 2},
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.True(t, gock.IsDone())
}

func TestRunEnvironmentUpdateUnchanged(t *testing.T) {
	c := newTestClient(t)

	mockEnvironment(m{"id": 10, "name": "main", "kubernetesNamespaceName": "foo-main", "autoIdle": 1})
	mockEnvironmentCluster()

	res, err := Run(context.TODO(), c, EnvironmentUpdateAction, Args{
		"environment": "foo-main",
		"values":      m{"autoIdle": true, "openshift": "2"},
	})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.True(t, gock.IsDone())

	_, err = Run(context.TODO(), c, EnvironmentUpdateAction, Args{"values": m{"autoIdle": 1}})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))
}

func TestRunEnvironmentDelete(t *testing.T) {
	c := newTestClient(t)

	mockGraphQL().
		AddMatcher(queryContains("deleteEnvironment")).
		AddMatcher(variable("name", "develop")).
		Reply(http.StatusOK).
		JSON(data(m{"deleteEnvironment": "success"}))

	res, err := Run(context.TODO(), c, EnvironmentDeleteAction, Args{"project": "foo", "branch": "develop"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "success", res.Result)
	assert.True(t, gock.IsDone())
}

func TestRunInfo(t *testing.T) {
	c := newTestClient(t)

	mockEnvironment(m{"id": 10, "name": "main", "kubernetesNamespaceName": "foo-main"})
	mockEnvironmentCluster()
	mockGraphQL().
		AddMatcher(queryContains("foo_main: environmentByKubernetesNamespaceName", "project {")).
		Reply(http.StatusOK).
		JSON(data(m{"foo_main": m{"project": m{"id": 1, "name": "foo"}}}))

	res, err := Run(context.TODO(), c, InfoAction, Args{"name": "foo-main"})
	require.NoError(t, err)
	env, ok := res.Result.(sdk.Environment)
	require.True(t, ok)
	assert.Equal(t, 2, env.Kubernetes.ID)
	require.NotNil(t, env.Project)
	assert.Equal(t, "foo", env.Project.Name)
	assert.True(t, gock.IsDone())
}

func TestRunInfoNotFound(t *testing.T) {
	c := newTestClient(t)

	mockEnvironment(nil)

	res, err := Run(context.TODO(), c, InfoAction, Args{"name": "foo-main"})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrNotFound))
	assert.True(t, res.Failed)
	assert.Equal(t, true, res.Extra["notFound"])
	assert.True(t, gock.IsDone())
}
