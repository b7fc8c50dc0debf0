package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/mediacabinet/pkg/internal/storage/kv"
)

var (
	kvCmd = &cobra.Command{
		Use:   "kv",
		Short: "key-value cache related commands",
	}

	kvListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list kv backends compiled into this binary",
		Aliases: []string{"ls"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Available kv backends:")
			for _, t := range kv.GetRegisteredKVTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "  - "+string(t))
			}
		},
	}
)

func registerKVCommands() {
	kvCmd.AddCommand(kvListCmd)
	rootCmd.AddCommand(kvCmd)
}
