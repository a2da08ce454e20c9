package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ovh/lagoonctl/cli"
	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/token"
)

var whoamiCmd = cli.Command{
	Name:  "whoami",
	Short: "Display the user owning the API token",
}

func whoami() *cobra.Command {
	return cli.NewGetCommand(whoamiCmd, whoamiRun, nil)
}

func whoamiRun(v cli.Values) (cli.GetResult, error) {
	ctx := context.Background()
	c, err := apiClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.Me(ctx)
}

var tokenCmd = cli.Command{
	Name:  "token",
	Short: "Fetch an API token from the Lagoon ssh service",
	Flags: []cli.Flag{
		{
			Name:  "no-cache",
			Type:  cli.FlagBool,
			Usage: "Always ask the ssh service for a new token",
		},
	},
}

func tokenGet() *cobra.Command {
	return cli.NewGetCommand(tokenCmd, tokenRun, nil)
}

func tokenRun(v cli.Values) (cli.GetResult, error) {
	ctx := context.Background()
	c, err := readConfig(ctx, configFilePath)
	if err != nil {
		return nil, err
	}
	if c.SSHHost == "" {
		return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "LAGOON_SSH_HOST or ssh_host is required")
	}
	cfg := c.tokenConfig()
	cfg.NoCache = v.GetBool("no-cache")
	tok, _, err := token.Fetch(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return tok, nil
}
