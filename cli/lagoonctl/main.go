package main

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ovh/lagoonctl/cli"
	"github.com/ovh/lagoonctl/sdk/lagoonclient"
	lagoonlog "github.com/ovh/lagoonctl/sdk/log"
)

var (
	configFilePath string
	insecure       bool
	verbose        bool
	root           *cobra.Command

	clientOnce sync.Once
	client     lagoonclient.Interface
	clientErr  error
)

func main() {
	root = rootFromSubCommands([]*cobra.Command{
		actions(),
		lookups(),
		dynamicInventory(),
		whoami(),
		tokenGet(),
	})
	if err := root.Execute(); err != nil {
		cli.ExitOnError(err)
	}
}

func rootFromSubCommands(cmds []*cobra.Command) *cobra.Command {
	root := cli.NewCommand(mainCmd, nil, cmds)

	root.PersistentFlags().StringVarP(&configFilePath, "file", "f", "", "set configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "", false, "Enable verbose output")
	root.PersistentFlags().BoolVarP(&insecure, "insecure", "", false, `(SSL) This option explicitly allows curl to perform "insecure" SSL connections and transfers.`)
	root.PersistentFlags().StringP("log-level", "", "info", "Log level: debug|info|warning|error")
	root.PersistentFlags().StringP("log-format", "", "text", "Log format: text|json")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		if verbose {
			level = "debug"
		}
		lagoonlog.Initialize(context.Background(), &lagoonlog.Conf{
			Level:  level,
			Format: format,
		})
	}

	return root
}

// apiClient loads the configuration once, fetching a token over ssh if needed.
func apiClient(ctx context.Context) (lagoonclient.Interface, error) {
	clientOnce.Do(func() {
		cfg, err := loadConfig(ctx, configFilePath, insecure, verbose)
		if err != nil {
			clientErr = err
			return
		}
		client = lagoonclient.New(*cfg)
	})
	return client, clientErr
}

var mainCmd = cli.Command{
	Name:  "lagoonctl",
	Short: "Lagoon API automation utility",
	Long: `

## Configuration

lagoonctl reads a ` + "`.lagoonrc`" + ` TOML file from the current directory, then from your home directory:

	endpoint = "https://api.lagoon.example.com/graphql"
	token = "..."

Environment variables take precedence over the file:

	LAGOON_API_ENDPOINT="https://api.lagoon.example.com/graphql" LAGOON_API_TOKEN="token" lagoonctl [command]

Without a token, one is fetched from the Lagoon ssh service:

	LAGOON_SSH_HOST="ssh.lagoon.example.com" LAGOON_SSH_PORT=32222 LAGOON_SSH_PRIVATE_KEY_FILE=~/.ssh/id_rsa lagoonctl [command]

Want to debug something? You can use ` + "`LAGOON_VERBOSE`" + ` environment variable.

	LAGOON_VERBOSE=true lagoonctl [command]

If you're using a self-signed certificate on the Lagoon API, you probably want to use ` + "`LAGOON_INSECURE`" + ` variable.

	LAGOON_INSECURE=true lagoonctl [command]
`,
}
