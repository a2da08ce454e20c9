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

func mockFacts(facts ...interface{}) {
	mockGraphQL().
		AddMatcher(queryContains("environmentById", "facts {")).
		AddMatcher(variable("id", 10)).
		Reply(http.StatusOK).
		JSON(data(m{"environmentById": m{"facts": facts}}))
}

func TestRunFactReplace(t *testing.T) {
	c := newTestClient(t)

	mockFacts(m{"id": 1, "name": "php_version", "value": "8.1"})
	mockGraphQL().
		AddMatcher(queryContains("deleteFact")).
		AddMatcher(variable("name", "php_version")).
		Reply(http.StatusOK).
		JSON(data(m{"deleteFact": "success"}))
	mockGraphQL().
		AddMatcher(queryContains("addFact")).
		AddMatcher(variable("value", "8.2")).
		AddMatcher(variable("type", "SEMVER")).
		Reply(http.StatusOK).
		JSON(data(m{"addFact": m{"id": 2}}))

	res, err := Run(context.TODO(), c, FactAction, Args{
		"environment": "10",
		"name":        "php_version",
		"value":       "8.2",
		"type":        "SEMVER",
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 2, res.Result)
	assert.True(t, gock.IsDone())
}

func TestRunFactUnchanged(t *testing.T) {
	c := newTestClient(t)

	mockFacts(m{"id": 1, "name": "php_version", "value": "8.2"})

	res, err := Run(context.TODO(), c, FactAction, Args{"environment": 10, "name": "php_version", "value": "8.2"})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.True(t, gock.IsDone())
}

func TestRunFactAbsent(t *testing.T) {
	c := newTestClient(t)

	mockFacts()

	res, err := Run(context.TODO(), c, FactAction, Args{"environment": 10, "name": "php_version", "state": "absent"})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.True(t, gock.IsDone())
}

func TestRunProblemUnchanged(t *testing.T) {
	c := newTestClient(t)

	mockGraphQL().
		AddMatcher(queryContains("environmentById", "problems {")).
		Reply(http.StatusOK).
		JSON(data(m{"environmentById": m{"problems": []interface{}{
			m{"id": 3, "identifier": "CVE-1", "data": `{"a": 1, "b": [1, 2]}`, "source": "ansible"},
		}}}))

	res, err := Run(context.TODO(), c, ProblemAction, Args{
		"environment": 10,
		"identifier":  "CVE-1",
		"data":        m{"b": []interface{}{1, 2}, "a": 1},
	})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.True(t, gock.IsDone())
}

func TestRunProblemCreate(t *testing.T) {
	c := newTestClient(t)

	mockGraphQL().
		AddMatcher(queryContains("environmentById", "problems {")).
		Reply(http.StatusOK).
		JSON(data(m{"environmentById": m{"problems": []interface{}{}}}))
	mockGraphQL().
		AddMatcher(queryContains("addProblem")).
		AddMatcher(variable("data", `[{"pkg":"openssl"}]`)).
		AddMatcher(variable("severity", "HIGH")).
		Reply(http.StatusOK).
		JSON(data(m{"addProblem": m{"id": 4}}))

	res, err := Run(context.TODO(), c, ProblemAction, Args{
		"environment":   10,
		"identifier":    "CVE-2",
		"severity":      "HIGH",
		"severityScore": "0.8",
		"data":          []interface{}{m{"pkg": "openssl"}},
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 4, res.Result)
	assert.True(t, gock.IsDone())
}

func TestRunProblemInvalidData(t *testing.T) {
	c := newTestClient(t)

	_, err := Run(context.TODO(), c, ProblemAction, Args{"environment": 10, "identifier": "CVE-1", "data": "nope"})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))

	_, err = Run(context.TODO(), c, ProblemAction, Args{"environment": 10, "identifier": "CVE-1"})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))

	_, err = Run(context.TODO(), c, ProblemAction, Args{"environment": 10, "identifier": "CVE-1", "data": m{}, "severityScore": 2})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))
	assert.False(t, gock.HasUnmatchedRequest())
}
