package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ovh/lagoonctl/cli"
	"github.com/ovh/lagoonctl/sdk"
	"github.com/ovh/lagoonctl/sdk/action"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
)

var actionCmd = cli.Command{
	Name:    "action",
	Aliases: []string{"actions"},
	Short:   "Manage Lagoon resources with idempotent actions",
}

func actions() *cobra.Command {
	return cli.NewCommand(actionCmd, nil, []*cobra.Command{
		cli.NewListCommand(actionListCmd, actionListRun, nil),
		cli.NewCommand(actionRunCmd, actionRunRun, nil),
	})
}

var actionListCmd = cli.Command{
	Name:  "list",
	Short: "List available actions",
}

type actionItem struct {
	Name    string `cli:"name,key"`
	Offline bool   `cli:"offline"`
}

func actionListRun(v cli.Values) (cli.ListResult, error) {
	names := action.Names()
	items := make([]actionItem, len(names))
	for i, n := range names {
		items[i] = actionItem{Name: n, Offline: !action.NeedsClient(n)}
	}
	return cli.AsListResult(items), nil
}

var actionRunCmd = cli.Command{
	Name:  "run",
	Short: "Run an action",
	Long: `Run an action with arguments given as key=value pairs, a JSON object or a YAML file.
Values of key=value pairs are parsed as YAML, so lists and booleans can be given inline.`,
	Example: `lagoonctl action run deploy -a project=foo -a branch=main -a wait=true
lagoonctl action run env_variable --args '{"type": "PROJECT", "type_name": "foo", "name": "KEY", "value": "v", "scope": "RUNTIME"}'
lagoonctl action run cmdb_diff --args-file diff.yml`,
	Args: []cli.Arg{{Name: "name"}},
	Flags: []cli.Flag{
		{
			Name:      "arg",
			ShortHand: "a",
			Type:      cli.FlagArray,
			Usage:     "Action argument as key=value, can be repeated",
		},
		{
			Name:  "args",
			Usage: "Action arguments as a JSON object",
		},
		{
			Name:  "args-file",
			Usage: "YAML file holding the action arguments",
		},
		{
			Name:    "format",
			Default: "yaml",
			Usage:   "Output format: yaml|json",
		},
	},
}

func actionRunRun(v cli.Values) error {
	ctx := context.Background()
	name := v.GetString("name")

	args, err := actionArgs(v)
	if err != nil {
		return err
	}

	var c lagoonclient.Interface
	if action.NeedsClient(name) {
		c, err = apiClient(ctx)
		if err != nil {
			return err
		}
	}

	var display *cli.Display
	if !verbose {
		display = cli.NewStderrDisplay()
	}
	display.Printf("running %s...", name)
	display.Do(ctx)
	res, runErr := action.Run(ctx, c, name, args)
	display.Stop()

	if err := cli.PrintGet(os.Stdout, res, v.GetString("format"), false, nil, false); err != nil {
		return err
	}
	printActionStatus(os.Stderr, name, res)
	return runErr
}

// actionArgs merges the args file, then the JSON args, then key=value pairs.
func actionArgs(v cli.Values) (action.Args, error) {
	args := action.Args{}

	if f := v.GetString("args-file"); f != "" {
		btes, err := os.ReadFile(f)
		if err != nil {
			return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "unable to read %s: %v", f, err)
		}
		fromFile := map[string]interface{}{}
		if err := yaml.Unmarshal(btes, &fromFile); err != nil {
			return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "invalid args file %s: %v", f, err)
		}
		for k, val := range fromFile {
			args[k] = val
		}
	}

	if s := v.GetString("args"); s != "" {
		fromJSON := map[string]interface{}{}
		if err := json.Unmarshal([]byte(s), &fromJSON); err != nil {
			return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "invalid JSON args: %v", err)
		}
		for k, val := range fromJSON {
			args[k] = val
		}
	}

	for _, kv := range v.GetStringArray("arg") {
		k, raw, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, sdk.NewErrorFrom(sdk.ErrWrongRequest, "argument %q should be formatted like key=value", kv)
		}
		var val interface{}
		if err := yaml.Unmarshal([]byte(raw), &val); err != nil || val == nil {
			val = raw
		}
		args[k] = val
	}

	return args, nil
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

// printActionStatus writes a coloured summary of res, with its diff messages.
func printActionStatus(w io.Writer, name string, res action.Result) {
	switch {
	case res.Failed:
		fmt.Fprintln(w, red("failed: ", name))
	case res.Changed:
		fmt.Fprintln(w, yellow("changed: ", name))
	default:
		fmt.Fprintln(w, green("ok: ", name))
	}

	msgs, _ := res.Extra["diff_message"].([]string)
	for _, m := range msgs {
		switch {
		case strings.HasPrefix(m, "+ "):
			fmt.Fprintln(w, green(m))
		case strings.HasPrefix(m, "- "):
			fmt.Fprintln(w, red(m))
		default:
			fmt.Fprintln(w, yellow(m))
		}
	}
}
