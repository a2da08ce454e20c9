package action

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rockbears/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/h2non/gock.v1"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
)

const testHost = "https://api.lagoon.test"

type m = map[string]interface{}

func data(d interface{}) m {
	return m{"data": d}
}

func newTestClient(t *testing.T) lagoonclient.Interface {
	log.Factory = log.NewTestingWrapper(t)
	c := lagoonclient.New(lagoonclient.Config{Endpoint: testHost + "/graphql", Token: "secret"})
	gock.InterceptClient(c.HTTPClient())
	t.Cleanup(gock.Off)
	return c
}

func mockGraphQL() *gock.Request {
	return gock.New(testHost).Post("/graphql")
}

func requestBody(r *http.Request) (query string, variables map[string]interface{}, err error) {
	if r.Body == nil {
		return "", nil, nil
	}
	btes, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(btes))
	var body struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	if err := json.Unmarshal(btes, &body); err != nil {
		return "", nil, nil
	}
	return body.Query, body.Variables, nil
}

// queryContains matches requests whose GraphQL document contains every s.
func queryContains(s ...string) gock.MatchFunc {
	return func(r *http.Request, _ *gock.Request) (bool, error) {
		q, _, err := requestBody(r)
		if err != nil {
			return false, err
		}
		for i := range s {
			if !strings.Contains(q, s[i]) {
				return false, nil
			}
		}
		return true, nil
	}
}

// queryExcludes matches requests whose GraphQL document contains none of s.
func queryExcludes(s ...string) gock.MatchFunc {
	return func(r *http.Request, _ *gock.Request) (bool, error) {
		q, _, err := requestBody(r)
		if err != nil {
			return false, err
		}
		for i := range s {
			if strings.Contains(q, s[i]) {
				return false, nil
			}
		}
		return true, nil
	}
}

// variable matches requests sending key with the given value, once encoded.
func variable(key string, value interface{}) gock.MatchFunc {
	return func(r *http.Request, _ *gock.Request) (bool, error) {
		_, vars, err := requestBody(r)
		if err != nil {
			return false, err
		}
		got, _ := json.Marshal(vars[key])
		want, _ := json.Marshal(value)
		return bytes.Equal(got, want), nil
	}
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Len(t, names, 27)
	assert.Contains(t, names, DeployTargetConfigAction)
	assert.Contains(t, names, LagoonLogAction)
	assert.True(t, sortedStrings(names))
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}

func TestRunUnknownAction(t *testing.T) {
	log.Factory = log.NewTestingWrapper(t)
	res, err := Run(context.TODO(), nil, "nope", nil)
	require.Error(t, err)
	assert.True(t, sdk.ErrorIs(err, sdk.ErrNotFound))
	assert.True(t, res.Failed)
}

func TestRunRequiresClient(t *testing.T) {
	log.Factory = log.NewTestingWrapper(t)
	_, err := Run(context.TODO(), nil, WhoamiAction, nil)
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))
	assert.False(t, NeedsClient(CMDBDiffAction))
	assert.True(t, NeedsClient(FactAction))
}

func TestRunReportsFailure(t *testing.T) {
	c := newTestClient(t)

	res, err := Run(context.TODO(), c, FactAction, Args{"name": "php_version"})
	require.Error(t, err)
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))
	assert.True(t, res.Failed)
	assert.Contains(t, res.Msg, "Environment")
	assert.False(t, gock.HasUnmatchedRequest())
}

func TestDecodeWeaklyTyped(t *testing.T) {
	var a DeployTargetConfigArgs
	err := decode(Args{
		"project": "foo",
		"replace": "true",
		"configs": []interface{}{
			m{"branches": "main", "pullrequests": "false", "deployTarget": "2", "weight": "10"},
		},
	}, &a)
	require.NoError(t, err)
	assert.True(t, a.Replace)
	require.Len(t, a.Configs, 1)
	assert.Equal(t, 2, a.Configs[0].DeployTarget)
	assert.Equal(t, 10, a.Configs[0].Weight)

	var missing DeployTargetConfigArgs
	err = decode(Args{"project": "foo", "configs": []interface{}{m{"branches": "main"}}}, &missing)
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))
}

func TestDecodeKeepsBooleansInStrings(t *testing.T) {
	var dtc DeployTargetConfigArgs
	require.NoError(t, decode(Args{
		"project": "foo",
		"configs": []interface{}{
			m{"branches": "main", "pullrequests": false, "deployTarget": 2},
		},
	}, &dtc))
	require.Len(t, dtc.Configs, 1)
	assert.Equal(t, "false", dtc.Configs[0].Pullrequests)

	var p ProjectArgs
	require.NoError(t, decode(Args{"name": "foo", "branches": true, "pullrequests": false}, &p))
	require.NotNil(t, p.Branches)
	require.NotNil(t, p.Pullrequests)
	assert.Equal(t, "true", *p.Branches)
	assert.Equal(t, "false", *p.Pullrequests)

	var v EnvVariableArgs
	require.NoError(t, decode(Args{"name": "DEBUG", "type": "PROJECT", "type_name": "foo", "value": true}, &v))
	require.NotNil(t, v.Value)
	assert.Equal(t, "true", *v.Value)
}

func TestRunWhoami(t *testing.T) {
	c := newTestClient(t)
	mockGraphQL().
		AddMatcher(queryContains("me {")).
		Reply(http.StatusOK).
		JSON(data(m{"me": m{"id": "u1", "email": "jane@example.com"}}))

	res, err := Run(context.TODO(), c, WhoamiAction, nil)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	u, ok := res.Result.(*sdk.User)
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.True(t, gock.IsDone())
}
