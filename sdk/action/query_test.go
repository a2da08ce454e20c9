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

func TestRunQuery(t *testing.T) {
	c := newTestClient(t)

	mockGraphQL().
		AddMatcher(queryContains(`projectByName(name: "foo") {`, "kubernetes {")).
		Reply(http.StatusOK).
		JSON(data(m{"projectByName": m{"id": 1, "name": "foo", "kubernetes": m{"id": 2, "name": "k8s"}}}))

	res, err := Run(context.TODO(), c, QueryAction, Args{
		"query":     "projectByName",
		"mainType":  "Project",
		"args":      m{"name": "foo"},
		"fields":    []interface{}{"id", "name"},
		"subFields": m{"kubernetes": m{"type": "Kubernetes", "fields": []interface{}{"id", "name"}}},
	})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, map[string]interface{}{
		"id":         float64(1),
		"name":       "foo",
		"kubernetes": map[string]interface{}{"id": float64(2), "name": "k8s"},
	}, res.Result)
	assert.True(t, gock.IsDone())
}

func TestRunQueryErrors(t *testing.T) {
	c := newTestClient(t)

	mockGraphQL().
		AddMatcher(queryContains("projectByName")).
		Reply(http.StatusOK).
		JSON(m{"errors": []interface{}{m{"message": "Cannot query field \"nope\""}}})

	_, err := Run(context.TODO(), c, QueryAction, Args{"query": "projectByName", "fields": []interface{}{"nope"}})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrGraphQL))

	_, err = Run(context.TODO(), c, QueryAction, Args{"query": "projectByName"})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))
	assert.True(t, gock.IsDone())
}

func TestRunMutation(t *testing.T) {
	c := newTestClient(t)

	mockGraphQL().
		AddMatcher(queryContains("mutation", `addFact(input: {environment: 1, name: "drupal"}) {`, "id")).
		Reply(http.StatusOK).
		JSON(data(m{"addFact": m{"id": 5}}))

	res, err := Run(context.TODO(), c, MutationAction, Args{
		"mutation":  "addFact",
		"arguments": m{"environment": 1, "name": "drupal"},
	})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, map[string]interface{}{"id": float64(5)}, res.Result)

	_, err = Run(context.TODO(), c, MutationAction, Args{"mutation": "addFact", "arguments": m{"a": 1}, "selectType": "Fact", "subfields": []interface{}{}})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))
	assert.True(t, gock.IsDone())
}
