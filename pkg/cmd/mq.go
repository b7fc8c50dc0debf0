package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/mediacabinet/pkg/internal/storage/mq"
)

var (
	mqCmd = &cobra.Command{
		Use:   "mq",
		Short: "message queue related commands",
	}

	mqListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list mq backends compiled into this binary",
		Aliases: []string{"ls"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Available mq backends:")
			for _, t := range mq.GetRegisteredMQTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "  - "+string(t))
			}
		},
	}
)

func registerMQCommands() {
	mqCmd.AddCommand(mqListCmd)
	rootCmd.AddCommand(mqCmd)
}
