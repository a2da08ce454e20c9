package lagoonclient

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rockbears/log"
	"gopkg.in/h2non/gock.v1"
)

const testHost = "https://api.lagoon.test"

func newTestClient(t *testing.T, cfg Config) Interface {
	log.Factory = log.NewTestingWrapper(t)
	if cfg.Endpoint == "" {
		cfg.Endpoint = testHost + "/graphql"
	}
	if cfg.Token == "" {
		cfg.Token = "secret"
	}
	c := New(cfg)
	gock.InterceptClient(c.HTTPClient())
	t.Cleanup(gock.Off)
	return c
}

// queryContains matches requests whose GraphQL document contains every s.
func queryContains(s ...string) gock.MatchFunc {
	return func(r *http.Request, _ *gock.Request) (bool, error) {
		if r.Body == nil {
			return false, nil
		}
		btes, err := io.ReadAll(r.Body)
		if err != nil {
			return false, err
		}
		r.Body = io.NopCloser(bytes.NewReader(btes))
		var body request
		if err := json.Unmarshal(btes, &body); err != nil {
			return false, nil
		}
		for i := range s {
			if !strings.Contains(body.Query, s[i]) {
				return false, nil
			}
		}
		return true, nil
	}
}

// variablesEqual matches requests sending exactly vars.
func variablesEqual(vars map[string]interface{}) gock.MatchFunc {
	return func(r *http.Request, _ *gock.Request) (bool, error) {
		btes, err := io.ReadAll(r.Body)
		if err != nil {
			return false, err
		}
		r.Body = io.NopCloser(bytes.NewReader(btes))
		var body struct {
			Variables json.RawMessage `json:"variables"`
		}
		if err := json.Unmarshal(btes, &body); err != nil {
			return false, nil
		}
		want, _ := json.Marshal(vars)
		var got, exp interface{}
		_ = json.Unmarshal(body.Variables, &got)
		_ = json.Unmarshal(want, &exp)
		gotBtes, _ := json.Marshal(got)
		expBtes, _ := json.Marshal(exp)
		return bytes.Equal(gotBtes, expBtes), nil
	}
}

func mockGraphQL() *gock.Request {
	return gock.New(testHost).Post("/graphql")
}
