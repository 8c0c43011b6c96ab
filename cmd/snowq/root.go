package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/copdips/snowkit/src/client"
)

type rootFlags struct {
	profile      string
	profilesFile string
	logLevel     string
	queryTag     string
	timeout      time.Duration
	telemetry    bool
}

var flags rootFlags

// NewRootCmd builds the top-level `snowq` command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "snowq",
		Short:         "snowq - run queries against a Snowflake warehouse",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return startTelemetry(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&flags.profile, "profile", "p", "", "Named connection profile (default: $SNOWFLAKE_DEFAULT_CONNECTION_NAME, then \"default\")")
	root.PersistentFlags().StringVar(&flags.profilesFile, "profiles-file", "", "Path to connections.toml (default: $SNOWFLAKE_HOME, then ~/.snowflake)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Log level: debug|info|warn|error|off")
	root.PersistentFlags().StringVar(&flags.queryTag, "tag", "", "QUERY_TAG session parameter")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "Optional context timeout (e.g. 30s, 5m). 0 disables.")
	root.PersistentFlags().BoolVar(&flags.telemetry, "telemetry", false, "Print OpenTelemetry traces and metrics to stdout")

	root.AddCommand(newRunCmd())
	root.AddCommand(newDescribeCmd())
	root.AddCommand(newSubmitCmd())
	root.AddCommand(newFetchCmd())
	root.AddCommand(newScriptCmd())
	root.AddCommand(newPingCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("snowq " + client.Version())
		},
	}
}

// newClient opens a client from the root flags.
func newClient() (*client.Client, error) {
	cfg := client.DefaultConfig()
	cfg.ProfilePath = flags.profilesFile
	cfg.QueryTag = flags.queryTag
	cfg.Logging = client.NewConsoleLoggingConfig(client.ParseLogLevel(flags.logLevel))
	if !flags.telemetry {
		cfg.Observability.EnableTracing = false
		cfg.Observability.EnableMetrics = false
	}

	c, err := client.NewClientWithConfig(flags.profile, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return c, nil
}
