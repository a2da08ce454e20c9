package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ovh/lagoonctl/cli"
	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/lookup"
)

var lookupCmd = cli.Command{
	Name:    "lookup",
	Aliases: []string{"get"},
	Short:   "Read projects, environments and related data",
}

func lookups() *cobra.Command {
	return cli.NewCommand(lookupCmd, nil, []*cobra.Command{
		cli.NewListCommand(lookupEnvironmentsCmd, lookupEnvironmentsRun, nil),
		cli.NewListCommand(lookupProjectsCmd, lookupProjectsRun, nil),
		cli.NewGetCommand(lookupEnvironmentCmd, lookupEnvironmentRun, nil),
		cli.NewGetCommand(lookupEnvironmentIDCmd, lookupEnvironmentIDRun, nil),
		cli.NewGetCommand(lookupProjectCmd, lookupProjectRun, nil),
		cli.NewGetCommand(lookupProjectIDCmd, lookupProjectIDRun, nil),
		cli.NewGetCommand(lookupProjectFromEnvironmentCmd, lookupProjectFromEnvironmentRun, nil),
		cli.NewGetCommand(lookupGroupCmd, lookupGroupRun, nil),
		cli.NewListCommand(lookupMetadataCmd, lookupMetadataRun, nil),
		cli.NewGetCommand(lookupTaskCmd, lookupTaskRun, nil),
		cli.NewGetCommand(lookupVariablesCmd, lookupVariablesRun, nil),
	})
}

var lookupEnvironmentsCmd = cli.Command{
	Name:  "environments",
	Short: "List all environments with their cluster and variables",
}

func lookupEnvironmentsRun(v cli.Values) (cli.ListResult, error) {
	ctx := context.Background()
	c, err := apiClient(ctx)
	if err != nil {
		return nil, err
	}
	envs, err := lookup.AllEnvironments(ctx, c)
	if err != nil {
		return nil, err
	}
	return cli.AsListResult(envs), nil
}

var lookupProjectsCmd = cli.Command{
	Name:  "projects",
	Short: "List all projects with their cluster and environments",
}

func lookupProjectsRun(v cli.Values) (cli.ListResult, error) {
	ctx := context.Background()
	c, err := apiClient(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := lookup.AllProjects(ctx, c)
	if err != nil {
		return nil, err
	}
	return cli.AsListResult(projects), nil
}

var lookupEnvironmentCmd = cli.Command{
	Name:  "environment",
	Short: "Get an environment from its namespace",
	Args:  []cli.Arg{{Name: "namespace"}},
}

func lookupEnvironmentRun(v cli.Values) (cli.GetResult, error) {
	ctx := context.Background()
	c, err := apiClient(ctx)
	if err != nil {
		return nil, err
	}
	return lookup.Environment(ctx, c, v.GetString("namespace"))
}

var lookupEnvironmentIDCmd = cli.Command{
	Name:  "environment-id",
	Short: "Get the id of an environment from its namespace",
	Args:  []cli.Arg{{Name: "namespace"}},
	Flags: []cli.Flag{
		{
			Name:  "fail-on-not-found",
			Type:  cli.FlagBool,
			Usage: "Return an error instead of 0 when the environment does not exist",
		},
	},
}

func lookupEnvironmentIDRun(v cli.Values) (cli.GetResult, error) {
	ctx := context.Background()
	c, err := apiClient(ctx)
	if err != nil {
		return nil, err
	}
	return lookup.EnvironmentIDFromNamespace(ctx, c, v.GetString("namespace"), v.GetBool("fail-on-not-found"))
}

var lookupProjectCmd = cli.Command{
	Name:  "project",
	Short: "Get a project with its environments and deploy target configs",
	Args:  []cli.Arg{{Name: "name"}},
}

func lookupProjectRun(v cli.Values) (cli.GetResult, error) {
	ctx := context.Background()
	c, err := apiClient(ctx)
	if err != nil {
		return nil, err
	}
	return lookup.Project(ctx, c, v.GetString("name"))
}

var lookupProjectIDCmd = cli.Command{
	Name:  "project-id",
	Short: "Get the id of a project from its name",
	Args:  []cli.Arg{{Name: "name"}},
	Flags: []cli.Flag{
		{
			Name:  "fail-on-not-found",
			Type:  cli.FlagBool,
			Usage: "Return an error instead of 0 when the project does not exist",
		},
	},
}

func lookupProjectIDRun(v cli.Values) (cli.GetResult, error) {
	ctx := context.Background()
	c, err := apiClient(ctx)
	if err != nil {
		return nil, err
	}
	return lookup.ProjectIDFromName(ctx, c, v.GetString("name"), v.GetBool("fail-on-not-found"))
}

var lookupProjectFromEnvironmentCmd = cli.Command{
	Name:  "environment-project",
	Short: "Get the project owning an environment namespace",
	Args:  []cli.Arg{{Name: "namespace"}},
}

func lookupProjectFromEnvironmentRun(v cli.Values) (cli.GetResult, error) {
	ctx := context.Background()
	c, err := apiClient(ctx)
	if err != nil {
		return nil, err
	}
	return lookup.ProjectFromEnvironment(ctx, c, v.GetString("namespace"))
}

var lookupGroupCmd = cli.Command{
	Name:  "group",
	Short: "Get a group",
	Args:  []cli.Arg{{Name: "name"}},
}

func lookupGroupRun(v cli.Values) (cli.GetResult, error) {
	ctx := context.Background()
	c, err := apiClient(ctx)
	if err != nil {
		return nil, err
	}
	return lookup.Group(ctx, c, v.GetString("name"))
}

var lookupMetadataCmd = cli.Command{
	Name:         "metadata",
	Short:        "Get metadata values of a project",
	Args:         []cli.Arg{{Name: "project"}},
	VariadicArgs: cli.Arg{Name: "keys"},
	Flags: []cli.Flag{
		{
			Name:  "default",
			Usage: "Value returned for missing keys, missing keys are skipped otherwise",
		},
	},
}

type metadataItem struct {
	Key   string `cli:"key,key"`
	Value string `cli:"value"`
}

func lookupMetadataRun(v cli.Values) (cli.ListResult, error) {
	ctx := context.Background()
	c, err := apiClient(ctx)
	if err != nil {
		return nil, err
	}

	var def *sdk.MetadataValue
	if d, ok := v["default"]; ok && len(d) > 0 && d[0] != "" {
		mv := sdk.NewMetadataValue(d[0])
		def = &mv
	}

	keys := v.GetStringArray("keys")
	values, err := lookup.Metadata(ctx, c, v.GetString("project"), keys, def)
	if err != nil {
		return nil, err
	}
	items := make([]metadataItem, 0, len(values))
	for i, mv := range values {
		item := metadataItem{Value: mv.String()}
		if len(values) == len(keys) {
			item.Key = keys[i]
		}
		items = append(items, item)
	}
	return cli.AsListResult(items), nil
}

var lookupTaskCmd = cli.Command{
	Name:  "task",
	Short: "Get a task by id or by name",
	Args:  []cli.Arg{{Name: "term"}},
}

func lookupTaskRun(v cli.Values) (cli.GetResult, error) {
	ctx := context.Background()
	c, err := apiClient(ctx)
	if err != nil {
		return nil, err
	}
	return lookup.Task(ctx, c, v.GetString("term"))
}

var lookupVariablesCmd = cli.Command{
	Name:         "variables",
	Aliases:      []string{"var"},
	Short:        "Get the variables of a project or of one of its environments",
	Args:         []cli.Arg{{Name: "project"}},
	OptionalArgs: []cli.Arg{{Name: "environment"}},
	Flags: []cli.Flag{
		{
			Name:  "name",
			Usage: "Only return the named variable",
		},
		{
			Name:  "dict",
			Type:  cli.FlagBool,
			Usage: "Return the variables keyed by name",
		},
	},
}

func lookupVariablesRun(v cli.Values) (cli.GetResult, error) {
	ctx := context.Background()
	c, err := apiClient(ctx)
	if err != nil {
		return nil, err
	}
	res, err := lookup.Variables(ctx, c, v.GetString("project"), lookup.VariablesOptions{
		Environment: v.GetString("environment"),
		ReturnDict:  v.GetBool("dict"),
		VarName:     strings.TrimSpace(v.GetString("name")),
	})
	if err != nil {
		return nil, err
	}
	if ev, ok := res.(*sdk.EnvVariable); ok && ev == nil {
		return nil, sdk.NewErrorFrom(sdk.ErrNotFound, "variable %s not found", v.GetString("name"))
	}
	return res, nil
}
