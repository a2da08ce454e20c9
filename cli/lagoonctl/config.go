package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/pelletier/go-toml"
	"github.com/rockbears/log"

	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
	"github.com/ovh/lagoonctl/sdk/token"
)

// config is the content of a .lagoonrc file, env vars taking precedence.
type config struct {
	Endpoint          string            `toml:"endpoint"`
	Token             string            `toml:"token"`
	Insecure          bool              `toml:"insecure"`
	Verbose           bool              `toml:"verbose"`
	Headers           map[string]string `toml:"headers"`
	SSHHost           string            `toml:"ssh_host"`
	SSHPort           int               `toml:"ssh_port"`
	SSHPrivateKey     string            `toml:"ssh_private_key"`
	SSHPrivateKeyFile string            `toml:"ssh_private_key_file"`
	TokenCache        string            `toml:"token_cache"`
}

// exchanger is used for the token exchange, nil meaning the ssh binary.
var exchanger token.Exchanger

func userHomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

func configFiles(configFile string) ([]string, error) {
	if configFile != "" {
		return []string{configFile}, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, sdk.WithStack(err)
	}
	return []string{
		path.Join(dir, ".lagoonrc"),
		path.Join(userHomeDir(), ".lagoonrc"),
	}, nil
}

// readConfig reads the first existing rc file, then applies env vars.
func readConfig(ctx context.Context, configFile string) (*config, error) {
	c := &config{}

	files, err := configFiles(configFile)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if configFile != "" {
				return nil, sdk.NewErrorFrom(sdk.ErrNotFound, "configuration file %s not found", configFile)
			}
			continue
		}
		if err := decodeConfigFile(f, c); err != nil {
			return nil, err
		}
		log.Debug(ctx, "configuration loaded from %s", f)
		break
	}

	if v := os.Getenv("LAGOON_API_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("LAGOON_API_TOKEN"); v != "" {
		c.Token = v
	}
	if b, err := strconv.ParseBool(os.Getenv("LAGOON_INSECURE")); err == nil {
		c.Insecure = b
	}
	if b, err := strconv.ParseBool(os.Getenv("LAGOON_VERBOSE")); err == nil {
		c.Verbose = b
	}
	if v := os.Getenv("LAGOON_SSH_HOST"); v != "" {
		c.SSHHost = v
	}
	if v := os.Getenv("LAGOON_SSH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "invalid LAGOON_SSH_PORT %q", v)
		}
		c.SSHPort = port
	}
	if v := os.Getenv("LAGOON_SSH_PRIVATE_KEY"); v != "" {
		c.SSHPrivateKey = v
	}
	if v := os.Getenv("LAGOON_SSH_PRIVATE_KEY_FILE"); v != "" {
		c.SSHPrivateKeyFile = v
	}
	return c, nil
}

func decodeConfigFile(f string, c *config) error {
	r, err := os.Open(f)
	if err != nil {
		return sdk.WithStack(err)
	}
	defer r.Close() // nolint
	if err := toml.NewDecoder(r).Decode(c); err != nil {
		return sdk.NewError(sdk.ErrInvalidData, fmt.Errorf("unable to load configuration %s: %v", f, err))
	}
	return nil
}

// loadConfig returns the client configuration. Without an API token, one is
// obtained from the ssh token service when ssh_host is set.
func loadConfig(ctx context.Context, configFile string, insecure, verbose bool) (*lagoonclient.Config, error) {
	c, err := readConfig(ctx, configFile)
	if err != nil {
		return nil, err
	}
	if c.Endpoint == "" {
		return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "unable to load configuration, LAGOON_API_ENDPOINT or a .lagoonrc file is required")
	}

	if c.Token == "" && c.SSHHost != "" {
		tok, _, err := token.Fetch(ctx, c.tokenConfig())
		if err != nil {
			return nil, sdk.WrapError(err, "unable to get a token from %s", c.SSHHost)
		}
		c.Token = tok.AccessToken
	}
	if c.Token == "" {
		return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "no API token: set LAGOON_API_TOKEN or LAGOON_SSH_HOST")
	}

	return &lagoonclient.Config{
		Endpoint:              c.Endpoint,
		Token:                 c.Token,
		Headers:               c.Headers,
		InsecureSkipVerifyTLS: c.Insecure || insecure,
		Verbose:               c.Verbose || verbose,
	}, nil
}

func (c config) tokenConfig() token.Config {
	return token.Config{
		Host:           c.SSHHost,
		Port:           c.SSHPort,
		PrivateKey:     c.SSHPrivateKey,
		PrivateKeyPath: c.SSHPrivateKeyFile,
		CachePath:      c.TokenCache,
		Exchanger:      exchanger,
	}
}
