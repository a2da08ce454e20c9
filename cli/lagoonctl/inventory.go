package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/ovh/lagoonctl/cli"
	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/inventory"
)

var inventoryCmd = cli.Command{
	Name:  "inventory",
	Short: "Ansible dynamic inventory of Lagoon environments",
	Long: `Print an Ansible dynamic inventory built from the Lagoon instances listed in a source file:

	lagoons:
	  - name: lagoon
	    lagoon_api_endpoint: https://api.lagoon.example.com/graphql
	    lagoon_api_token: ...
	    ssh_host: ssh.lagoon.example.com
	    ssh_port: 32222
	    groups: [devs]
	    filters: ["team=web"]

The source file defaults to the LAGOON_INVENTORY environment variable.`,
	Example: `lagoonctl inventory --source lagoon.yml --list
lagoonctl inventory --source lagoon.yml --host foo-main`,
	Flags: []cli.Flag{
		{
			Name:  "source",
			Usage: "Inventory source file",
		},
		{
			Name:  "list",
			Type:  cli.FlagBool,
			Usage: "Print the whole inventory",
		},
		{
			Name:  "host",
			Usage: "Print the variables of a host",
		},
	},
}

func dynamicInventory() *cobra.Command {
	return cli.NewCommand(inventoryCmd, inventoryRun, []*cobra.Command{
		cli.NewCommand(inventoryEnvironmentInputCmd, inventoryEnvironmentInputRun, nil),
	})
}

func buildInventory(ctx context.Context, v cli.Values) (*inventory.Inventory, error) {
	source := v.GetString("source")
	if source == "" {
		source = os.Getenv("LAGOON_INVENTORY")
	}
	if source == "" {
		return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "missing inventory source")
	}
	src, err := inventory.LoadSource(source)
	if err != nil {
		return nil, err
	}
	return inventory.Build(ctx, *src, nil)
}

func inventoryRun(v cli.Values) error {
	ctx := context.Background()
	host := v.GetString("host")
	if !v.GetBool("list") && host == "" {
		return cli.ErrWrongUsage
	}

	inv, err := buildInventory(ctx, v)
	if err != nil {
		return err
	}
	if host == "" {
		return cli.PrintGet(os.Stdout, inv, "json", false, nil, false)
	}
	hv, ok := inv.Host(host)
	if !ok {
		return cli.PrintGet(os.Stdout, map[string]interface{}{}, "json", false, nil, false)
	}
	return cli.PrintGet(os.Stdout, hv, "json", false, nil, false)
}

var inventoryEnvironmentInputCmd = cli.Command{
	Name:         "environment-input",
	Short:        "Print the bulk deployment input of inventory hosts",
	Example:      `lagoonctl inventory environment-input --source lagoon.yml foo-main bar-main`,
	VariadicArgs: cli.Arg{Name: "hosts"},
	Flags: []cli.Flag{
		{
			Name:  "source",
			Usage: "Inventory source file",
		},
		{
			Name:    "environment-key",
			Default: "environment_name",
			Usage:   "Dotted path of the environment name in the host variables",
		},
		{
			Name:    "project-key",
			Default: "project_name",
			Usage:   "Dotted path of the project name in the host variables",
		},
	},
}

func inventoryEnvironmentInputRun(v cli.Values) error {
	ctx := context.Background()
	inv, err := buildInventory(ctx, v)
	if err != nil {
		return err
	}
	hostvars, err := inv.HostVarsMap()
	if err != nil {
		return err
	}
	input, err := inventory.EnvironmentInput(v.GetStringArray("hosts"), hostvars, v.GetString("environment-key"), v.GetString("project-key"))
	if err != nil {
		return err
	}
	return cli.PrintGet(os.Stdout, input, "json", false, nil, false)
}
