package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"streamdb/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags "-X streamdb/internal/cli.Version=..."
var Version = "dev"

type GlobalOptions struct {
	CfgFilePath string
	LogLevel    string
	EnvFile     string
	Driver      string
	URI         string
	Database    string
	DBPath      string

	Logger *logrus.Logger
	Conf   *config.Config

	viper *viper.Viper
}

func NewRootCMD() *cobra.Command {
	return newRootCMD(&GlobalOptions{viper: viper.New()})
}

func newRootCMD(globalOptions *GlobalOptions) *cobra.Command {
	rootCMD := &cobra.Command{
		Use:   "streamdb",
		Short: "Video streaming database bootstrap",
		Long: `Creates the collections, validators and indexes of the video streaming
database, seeds the initial users and demo video, checks the write path and
reports storage statistics. Every step is idempotent.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return globalOptions.initializeConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// register global flags
	globalOptions.registerFlags(rootCMD)

	// add subcommands
	rootCMD.AddCommand(NewInitCommand(globalOptions))
	rootCMD.AddCommand(NewStatsCommand(globalOptions))
	rootCMD.AddCommand(NewProbeCommand(globalOptions))
	rootCMD.AddCommand(NewReplicaCommand(globalOptions))
	rootCMD.AddCommand(NewRecoveryCommand(globalOptions))
	rootCMD.AddCommand(NewConfigCommand(globalOptions))
	rootCMD.AddCommand(NewVersionCommand())

	return rootCMD
}

func (options *GlobalOptions) registerFlags(cmd *cobra.Command) {
	// flags that can be used for each command
	cmd.PersistentFlags().StringVar(&options.CfgFilePath, "config_path", "config.toml", "Path to the base configuration file. (Env: STREAMDB_CONFIG_PATH)")
	cmd.PersistentFlags().StringVar(&options.LogLevel, "log-level", "", "Logging level (debug, info, warn, error). (Env: STREAMDB_LOGGING_LEVEL)")
	cmd.PersistentFlags().StringVar(&options.EnvFile, "env-file", ".env", "Path to a dotenv file loaded before reading the environment.")
	cmd.PersistentFlags().StringVar(&options.Driver, "driver", "", "Database driver: mongo or sqlite. (Env: STREAMDB_DATABASE_DRIVER)")
	cmd.PersistentFlags().StringVar(&options.URI, "uri", "", "MongoDB connection URI. (Env: STREAMDB_DATABASE_URI)")
	cmd.PersistentFlags().StringVar(&options.Database, "database", "", "Target database name. (Env: STREAMDB_DATABASE_NAME)")
	cmd.PersistentFlags().StringVar(&options.DBPath, "db-path", "", "SQLite database file. (Env: STREAMDB_DATABASE_PATH)")
}

// Execute runs the root command. SIGINT and SIGTERM cancel the context
// passed to every command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := NewRootCMD()

	// Run the command based on os.Args
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
