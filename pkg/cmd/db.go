package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/mediacabinet/pkg/internal/storage/db"
)

var (
	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "database related commands",
	}

	dbListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list database backends compiled into this binary",
		Aliases: []string{"ls"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Available database backends:")
			for _, t := range db.GetRegisteredDBTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "  - "+t)
			}
		},
	}
)

func registerDBCommands() {
	dbCmd.AddCommand(dbListCmd)
	rootCmd.AddCommand(dbCmd)
}
