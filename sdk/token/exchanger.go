package token

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	"github.com/ovh/lagoonctl/sdk"
)

// CommandExchanger runs the ssh binary:
//
//	ssh -p <port> [options] [-i <key>] <user>@<host> <command>
type CommandExchanger struct {
	// Binary defaults to "ssh".
	Binary string
}

// Args returns the arguments given to the ssh binary.
func (e CommandExchanger) Args(cfg Config) []string {
	args := []string{"-p", strconv.Itoa(cfg.Port)}
	args = append(args, cfg.Options...)
	if cfg.PrivateKeyPath != "" {
		args = append(args, "-i", cfg.PrivateKeyPath)
	}
	return append(args, cfg.User+"@"+cfg.Host, cfg.Command)
}

func (e CommandExchanger) Exchange(ctx context.Context, cfg Config) ([]byte, error) {
	bin := e.Binary
	if bin == "" {
		bin = "ssh"
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, e.Args(cfg)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, sdk.NewErrorFrom(sdk.ErrTokenExchange, "%s exited with code %d: %s", bin, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, sdk.NewError(sdk.ErrTokenExchange, err)
	}
	return stdout.Bytes(), nil
}

// NativeExchanger talks ssh without the ssh binary. Only the private key of
// the config is used to authenticate; ssh options are ignored.
type NativeExchanger struct {
	Timeout time.Duration
	// HostKeyCallback defaults to accepting any host key.
	HostKeyCallback ssh.HostKeyCallback
}

func (e NativeExchanger) Exchange(ctx context.Context, cfg Config) ([]byte, error) {
	key := []byte(cfg.PrivateKey)
	if len(key) == 0 {
		if cfg.PrivateKeyPath == "" {
			return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "a private key is required")
		}
		var err error
		key, err = os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, sdk.NewError(sdk.ErrTokenExchange, err)
		}
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, sdk.NewError(sdk.ErrTokenExchange, fmt.Errorf("unable to parse private key: %v", err))
	}

	hostKeyCallback := e.HostKeyCallback
	if hostKeyCallback == nil {
		hostKeyCallback = func(string, net.Addr, ssh.PublicKey) error { return nil }
	}
	timeout := e.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	sshConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	client, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return nil, sdk.NewError(sdk.ErrTokenExchange, err)
	}
	defer client.Close() // nolint

	session, err := client.NewSession()
	if err != nil {
		return nil, sdk.NewError(sdk.ErrTokenExchange, err)
	}
	defer session.Close() // nolint

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- session.Run(cfg.Command) }()
	select {
	case <-ctx.Done():
		return nil, sdk.NewError(sdk.ErrTokenExchange, ctx.Err())
	case err := <-done:
		if err != nil {
			var exitErr *ssh.ExitError
			if errors.As(err, &exitErr) {
				return nil, sdk.NewErrorFrom(sdk.ErrTokenExchange, "%s exited with code %d: %s", cfg.Command, exitErr.ExitStatus(), strings.TrimSpace(stderr.String()))
			}
			return nil, sdk.NewError(sdk.ErrTokenExchange, err)
		}
	}
	return stdout.Bytes(), nil
}
