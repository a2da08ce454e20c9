package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/rockbears/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/token"
)

type fakeExchanger struct {
	out   []byte
	calls int
	cfg   token.Config
}

func (f *fakeExchanger) Exchange(_ context.Context, cfg token.Config) ([]byte, error) {
	f.calls++
	f.cfg = cfg
	return f.out, nil
}

func setupConfig(t *testing.T, content string) string {
	log.Factory = log.NewTestingWrapper(t)
	for _, k := range []string{
		"LAGOON_API_ENDPOINT", "LAGOON_API_TOKEN", "LAGOON_INSECURE", "LAGOON_VERBOSE",
		"LAGOON_SSH_HOST", "LAGOON_SSH_PORT", "LAGOON_SSH_PRIVATE_KEY", "LAGOON_SSH_PRIVATE_KEY_FILE",
	} {
		t.Setenv(k, "")
	}
	f := filepath.Join(t.TempDir(), ".lagoonrc")
	require.NoError(t, os.WriteFile(f, []byte(content), 0600))
	return f
}

func TestLoadConfigFromFile(t *testing.T) {
	f := setupConfig(t, `
endpoint = "https://api.lagoon.test/graphql"
token = "file-token"
insecure = true

[headers]
X-Team = "web"
`)

	cfg, err := loadConfig(context.TODO(), f, false, false)
	require.NoError(t, err)
	assert.Equal(t, "https://api.lagoon.test/graphql", cfg.Endpoint)
	assert.Equal(t, "file-token", cfg.Token)
	assert.True(t, cfg.InsecureSkipVerifyTLS)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, map[string]string{"X-Team": "web"}, cfg.Headers)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	f := setupConfig(t, `
endpoint = "https://api.lagoon.test/graphql"
token = "file-token"
insecure = true
`)
	t.Setenv("LAGOON_API_TOKEN", "env-token")
	t.Setenv("LAGOON_INSECURE", "false")
	t.Setenv("LAGOON_VERBOSE", "true")

	cfg, err := loadConfig(context.TODO(), f, false, false)
	require.NoError(t, err)
	assert.Equal(t, "https://api.lagoon.test/graphql", cfg.Endpoint)
	assert.Equal(t, "env-token", cfg.Token)
	assert.False(t, cfg.InsecureSkipVerifyTLS)
	assert.True(t, cfg.Verbose)

	cfg, err = loadConfig(context.TODO(), f, true, false)
	require.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerifyTLS)
}

func TestLoadConfigErrors(t *testing.T) {
	f := setupConfig(t, `token = "file-token"`)

	_, err := loadConfig(context.TODO(), f, false, false)
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))

	_, err = loadConfig(context.TODO(), filepath.Join(t.TempDir(), "missing"), false, false)
	assert.True(t, sdk.ErrorIs(err, sdk.ErrNotFound))

	t.Setenv("LAGOON_API_ENDPOINT", "https://api.lagoon.test/graphql")
	t.Setenv("LAGOON_SSH_PORT", "ssh")
	_, err = loadConfig(context.TODO(), f, false, false)
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))

	bad := setupConfig(t, `endpoint = `)
	_, err = loadConfig(context.TODO(), bad, false, false)
	assert.True(t, sdk.ErrorIs(err, sdk.ErrInvalidData))
}

func TestLoadConfigTokenExchange(t *testing.T) {
	f := setupConfig(t, `endpoint = "https://api.lagoon.test/graphql"`)
	cache := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(f, []byte(`
endpoint = "https://api.lagoon.test/graphql"
token_cache = "`+cache+`"
`), 0600))

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()}).SignedString([]byte("secret"))
	require.NoError(t, err)
	out, err := json.Marshal(map[string]interface{}{"access_token": accessToken, "expires_in": 3600, "token_type": "bearer"})
	require.NoError(t, err)

	ex := &fakeExchanger{out: out}
	exchanger = ex
	t.Cleanup(func() { exchanger = nil })

	t.Setenv("LAGOON_SSH_HOST", "ssh.config-test.lagoon.test")
	t.Setenv("LAGOON_SSH_PORT", "2020")
	t.Setenv("LAGOON_SSH_PRIVATE_KEY_FILE", "/home/me/.ssh/id_lagoon")

	cfg, err := loadConfig(context.TODO(), f, false, false)
	require.NoError(t, err)
	assert.Equal(t, accessToken, cfg.Token)
	assert.Equal(t, 1, ex.calls)
	assert.Equal(t, "ssh.config-test.lagoon.test", ex.cfg.Host)
	assert.Equal(t, 2020, ex.cfg.Port)
	assert.Equal(t, "/home/me/.ssh/id_lagoon", ex.cfg.PrivateKeyPath)
}
