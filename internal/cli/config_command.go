// filepath: internal/cli/config_command.go
package cli

import (
	"fmt"

	"streamdb/internal/config"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

func NewConfigCommand(globalOptions *GlobalOptions) *cobra.Command {
	configCommand := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the effective configuration",
	}

	configCommand.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(globalOptions.Conf.Redacted())
		},
	})

	configCommand.AddCommand(&cobra.Command{
		Use:   "write [path]",
		Short: "Write the effective configuration, without secrets, to a TOML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalOptions.CfgFilePath
			if len(args) == 1 {
				path = args[0]
			}
			cfg := globalOptions.Conf.WithoutSecrets()
			if err := config.SaveConfig(path, &cfg); err != nil {
				return err
			}
			globalOptions.Logger.Infof("Configuration written to %s", path)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return configCommand
}
