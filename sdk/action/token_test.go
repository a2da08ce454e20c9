package action

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/rockbears/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/log/hook"
	"github.com/ovh/lagoonctl/sdk/token"
)

type stubExchanger struct {
	out   []byte
	calls int
}

func (s *stubExchanger) Exchange(_ context.Context, _ token.Config) ([]byte, error) {
	s.calls++
	return s.out, nil
}

func TestRunTokenGrant(t *testing.T) {
	log.Factory = log.NewTestingWrapper(t)
	ex := &stubExchanger{out: []byte(`{"access_token": "abc", "expires_in": 3600, "token_type": "bearer"}`)}

	res, err := runToken(context.TODO(), TokenArgs{
		SSHHost:   "ssh.lagoon.test",
		Grant:     true,
		CachePath: filepath.Join(t.TempDir(), "token"),
		NoCache:   true,
		exchanger: ex,
	})
	require.NoError(t, err)
	tok, ok := res.Result.(*sdk.Token)
	require.True(t, ok)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, 3600, tok.ExpiresIn)

	res, err = runToken(context.TODO(), TokenArgs{SSHHost: "ssh.lagoon.test", NoCache: true, exchanger: ex})
	require.NoError(t, err)
	assert.Equal(t, "abc", res.Result)
	assert.Equal(t, 2, ex.calls)
}

func TestRunTokenMissingHost(t *testing.T) {
	log.Factory = log.NewTestingWrapper(t)
	res, err := Run(context.TODO(), nil, TokenAction, Args{"ssh_port": 22})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))
	assert.True(t, res.Failed)
}

func TestRunLagoonLog(t *testing.T) {
	log.Factory = log.NewTestingWrapper(t)

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	host, port, err := net.SplitHostPort(conn.LocalAddr().String())
	require.NoError(t, err)

	res, err := Run(context.TODO(), nil, LagoonLogAction, Args{
		"server":    host,
		"port":      port,
		"message":   "deployed",
		"namespace": "foo-main",
		"context":   m{"build": "abc"},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Msg)

	buf := make([]byte, 4096)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	n, _, err := conn.ReadFrom(buf)
	require.NoError(t, err)

	var got hook.Message
	require.NoError(t, json.Unmarshal(buf[:n], &got))
	assert.Equal(t, "deployed", got.Message)
	assert.Equal(t, "INFO", got.Level)
	assert.Equal(t, "foo-main", got.Type)
	assert.Equal(t, "abc", got.Context["build"])
}

func TestRunLagoonLogNamespaceRequired(t *testing.T) {
	log.Factory = log.NewTestingWrapper(t)

	_, err := Run(context.TODO(), nil, LagoonLogAction, Args{"message": "deployed", "extra": m{"a": 1}})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))

	assert.Equal(t, "logs.example.com:5140", LagoonLogArgs{Server: "logs.example.com"}.addr())
	assert.Equal(t, "application-logs.lagoon.svc:1234", LagoonLogArgs{Port: 1234}.addr())
}
