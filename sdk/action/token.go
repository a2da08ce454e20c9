package action

import (
	"context"
	"net"
	"strconv"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
	lagoonlog "github.com/ovh/lagoonctl/sdk/log"
	"github.com/ovh/lagoonctl/sdk/log/hook"
	"github.com/ovh/lagoonctl/sdk/token"
)

// TokenArgs are the arguments of the token action.
type TokenArgs struct {
	SSHHost        string   `mapstructure:"ssh_host" validate:"required"`
	SSHPort        int      `mapstructure:"ssh_port"`
	SSHUser        string   `mapstructure:"ssh_user"`
	SSHOptions     []string `mapstructure:"ssh_options"`
	PrivateKey     string   `mapstructure:"private_key"`
	PrivateKeyFile string   `mapstructure:"private_key_file"`
	Grant          bool     `mapstructure:"grant"`
	CachePath      string   `mapstructure:"cache_path"`
	NoCache        bool     `mapstructure:"no_cache"`
	NativeSSH      bool     `mapstructure:"native_ssh"`
	exchanger      token.Exchanger
}

// RunToken fetches a token from the Lagoon ssh service. With grant set, the
// whole grant (access token and expiry) is returned, otherwise the access
// token only.
func RunToken(ctx context.Context, _ lagoonclient.Interface, args Args) (Result, error) {
	var a TokenArgs
	if err := decode(args, &a); err != nil {
		return Result{}, err
	}
	return runToken(ctx, a)
}

func runToken(ctx context.Context, a TokenArgs) (Result, error) {
	var res Result
	cfg := token.Config{
		Host:           a.SSHHost,
		Port:           a.SSHPort,
		User:           a.SSHUser,
		Options:        a.SSHOptions,
		PrivateKey:     a.PrivateKey,
		PrivateKeyPath: a.PrivateKeyFile,
		CachePath:      a.CachePath,
		NoCache:        a.NoCache,
		Exchanger:      a.exchanger,
	}
	if a.NativeSSH && cfg.Exchanger == nil {
		cfg.Exchanger = token.NativeExchanger{}
	}

	tok, msg, err := token.Fetch(ctx, cfg)
	if err != nil {
		res.set("error", err.Error())
		return res, err
	}
	if msg != "" {
		res.Msg = msg
	}
	if a.Grant {
		res.Result = tok
	} else {
		res.Result = tok.AccessToken
	}
	return res, nil
}

// LagoonLogArgs are the arguments of the lagoon_log action. Namespace is
// required when context or extra data is set.
type LagoonLogArgs struct {
	Server    string                 `mapstructure:"server"`
	Port      int                    `mapstructure:"port"`
	Message   string                 `mapstructure:"message" validate:"required"`
	Level     string                 `mapstructure:"level"`
	Host      string                 `mapstructure:"host"`
	Namespace string                 `mapstructure:"namespace"`
	Context   map[string]interface{} `mapstructure:"context"`
	Extra     map[string]interface{} `mapstructure:"extra"`
}

func (a LagoonLogArgs) addr() string {
	host, port, _ := net.SplitHostPort(hook.DefaultAddr)
	if a.Server != "" {
		host = a.Server
	}
	if a.Port != 0 {
		port = strconv.Itoa(a.Port)
	}
	return net.JoinHostPort(host, port)
}

// RunLagoonLog sends a message to Lagoon Logs. Failing to send is only a
// warning, logs being best effort.
func RunLagoonLog(ctx context.Context, _ lagoonclient.Interface, args Args) (Result, error) {
	var res Result
	var a LagoonLogArgs
	if err := decode(args, &a); err != nil {
		return res, err
	}
	if a.Level == "" {
		a.Level = "info"
	}

	m := hook.NewMessage(a.Level, a.Message)
	if a.Host != "" {
		m.Host = a.Host
	}
	m.Type = a.Namespace
	m.Context = a.Context
	m.Extra = a.Extra
	if err := m.Validate(); err != nil {
		return res, sdk.NewError(sdk.ErrWrongRequest, err)
	}

	if err := lagoonlog.Send(ctx, a.addr(), m); err != nil {
		res.Msg = "unable to send a log message to Lagoon Logs"
		res.set("error", err.Error())
		return res, nil
	}
	res.Result = m
	return res, nil
}
