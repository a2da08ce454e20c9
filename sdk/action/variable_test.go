package action

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/h2non/gock.v1"

	"github.com/ovh/lagoonctl/sdk"
)

func fastVerify(t *testing.T) {
	old := verifyInterval
	verifyInterval = time.Millisecond
	t.Cleanup(func() { verifyInterval = old })
}

func mockProjectSeed(times int) {
	mockGraphQL().
		Times(times).
		AddMatcher(queryContains(`projectByName(name: "foo")`)).
		AddMatcher(queryExcludes("foo: projectByName")).
		Reply(http.StatusOK).
		JSON(data(m{"projectByName": m{"id": 1, "name": "foo"}}))
}

func mockProjectVariables(vars ...interface{}) {
	mockGraphQL().
		AddMatcher(queryContains(`foo: projectByName(name: "foo")`, "envVariables {")).
		Reply(http.StatusOK).
		JSON(data(m{"foo": m{"envVariables": vars}}))
}

func TestRunEnvVariableCreateAndVerify(t *testing.T) {
	c := newTestClient(t)
	fastVerify(t)

	mockProjectSeed(3)
	mockProjectVariables()
	mockGraphQL().
		AddMatcher(queryContains("addEnvVariable")).
		AddMatcher(variable("typeId", 1)).
		AddMatcher(variable("scope", "RUNTIME")).
		Reply(http.StatusOK).
		JSON(data(m{"addEnvVariable": m{"id": 99}}))
	mockProjectVariables()
	mockProjectVariables(m{"id": 99, "name": "FOO", "value": "bar", "scope": "runtime"})

	res, err := Run(context.TODO(), c, EnvVariableAction, Args{
		"name":         "FOO",
		"type":         "PROJECT",
		"type_name":    "foo",
		"value":        "bar",
		"scope":        "runtime",
		"verify_value": true,
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 99, res.Extra["id"])
	assert.True(t, gock.IsDone())
}

func TestRunEnvVariableVerifyExhausted(t *testing.T) {
	c := newTestClient(t)
	fastVerify(t)

	mockProjectSeed(3)
	mockProjectVariables(m{"id": 5, "name": "FOO", "value": "old", "scope": "runtime"})
	mockGraphQL().
		AddMatcher(queryContains("deleteEnvVariable")).
		AddMatcher(variable("id", 5)).
		Reply(http.StatusOK).
		JSON(data(m{"deleteEnvVariable": "success"}))
	mockProjectVariables(m{"id": 5, "name": "FOO", "value": "old", "scope": "runtime"})
	mockProjectVariables(m{"id": 5, "name": "FOO", "value": "old", "scope": "runtime"})

	res, err := Run(context.TODO(), c, EnvVariableAction, Args{
		"name":            "FOO",
		"type":            "PROJECT",
		"type_name":       "foo",
		"state":           "absent",
		"verify_value":    true,
		"verify_attempts": 2,
	})
	require.Error(t, err)
	assert.True(t, sdk.ErrorIs(err, sdk.ErrMaxRetries))
	assert.True(t, res.Changed)
	assert.True(t, gock.IsDone())
}

func TestRunEnvVariableExistingNotReplaced(t *testing.T) {
	c := newTestClient(t)

	mockProjectSeed(1)
	mockProjectVariables(m{"id": 5, "name": "FOO", "value": "old", "scope": "runtime"})

	res, err := Run(context.TODO(), c, EnvVariableAction, Args{
		"name":      "FOO",
		"type":      "PROJECT",
		"type_name": "foo",
		"value":     "new",
		"scope":     "runtime",
	})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, 5, res.Extra["id"])
	assert.True(t, gock.IsDone())
}

func TestRunEnvVariableReplaceOnEnvironment(t *testing.T) {
	c := newTestClient(t)

	mockGraphQL().
		AddMatcher(queryContains(`environmentByKubernetesNamespaceName(kubernetesNamespaceName: "foo-main")`)).
		AddMatcher(queryExcludes("foo_main:")).
		Reply(http.StatusOK).
		JSON(data(m{"environmentByKubernetesNamespaceName": m{"id": 10, "kubernetesNamespaceName": "foo-main"}}))
	mockGraphQL().
		AddMatcher(queryContains(`foo_main: environmentByKubernetesNamespaceName`, "envVariables {")).
		Reply(http.StatusOK).
		JSON(data(m{"foo_main": m{"envVariables": []interface{}{
			m{"id": 5, "name": "FOO", "value": "old", "scope": "build"},
		}}}))
	mockGraphQL().
		AddMatcher(queryContains("deleteEnvVariable")).
		Reply(http.StatusOK).
		JSON(data(m{"deleteEnvVariable": "success"}))
	mockGraphQL().
		AddMatcher(queryContains("addEnvVariable")).
		AddMatcher(variable("type", "ENVIRONMENT")).
		AddMatcher(variable("typeId", 10)).
		AddMatcher(variable("value", "new")).
		Reply(http.StatusOK).
		JSON(data(m{"addEnvVariable": m{"id": 6}}))

	res, err := Run(context.TODO(), c, EnvVariableAction, Args{
		"name":             "FOO",
		"type":             "ENVIRONMENT",
		"type_name":        "foo-main",
		"value":            "new",
		"scope":            "build",
		"replace_existing": true,
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 6, res.Result)
	assert.True(t, gock.IsDone())
}

func TestRunEnvVariableValidation(t *testing.T) {
	c := newTestClient(t)

	_, err := Run(context.TODO(), c, EnvVariableAction, Args{"name": "FOO", "type": "PROJECT", "type_name": "foo", "scope": "runtime"})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))

	_, err = Run(context.TODO(), c, EnvVariableAction, Args{"name": "FOO", "type": "GROUP", "type_name": "foo"})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrInvalidEnumValue))
	assert.False(t, gock.HasUnmatchedRequest())
}
