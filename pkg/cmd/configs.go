package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/mediacabinet/pkg/configs"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "config subcommands",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configs.InitConfig(configPath)
		},
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the path of the config file in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := configs.GetViper()
			if v == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "config not initialized")
				return nil
			}

			if cfg := v.ConfigFileUsed(); cfg != "" {
				fmt.Fprintln(cmd.OutOrStdout(), cfg)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "no config file used (defaults and env only)")
			}

			return nil
		},
	}

	configShowCmd = &cobra.Command{
		Use:     "show",
		Short:   "print the effective config values as JSON",
		Aliases: []string{"debug"},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := configs.GetViper()
			if v == nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "config not initialized")
				return nil
			}

			if debug {
				v.Debug()
			}

			b, err := json.MarshalIndent(configs.GetConfig(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}
)

func registerConfigsCommands() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
