package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yeisme/mediacabinet/pkg/configs"
	ctxPkg "github.com/yeisme/mediacabinet/pkg/context"
	"github.com/yeisme/mediacabinet/pkg/internal/service"
	"github.com/yeisme/mediacabinet/pkg/internal/storage"
	"github.com/yeisme/mediacabinet/pkg/internal/variant"
)

var (
	archiveFolderID uint
	archiveOutput   string

	archiveCmd = &cobra.Command{
		Use:   "archive",
		Short: "export a folder subtree as a zip laid out by the folder tree",
		Long: "Create an archive with the contents of a media folder, using the " +
			"tree structure of the database instead of the object key layout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return fmt.Errorf("init config: %w", err)
			}

			manifest, err := variant.DefaultManifest(configs.GetConfig().Library.DefaultPPOI)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			mgr, err := storage.Init(ctx)
			if err != nil {
				return fmt.Errorf("init storage: %w", err)
			}

			svc := service.NewCabinetService(ctxPkg.WithStorageManager(ctx, mgr), manifest)

			out, err := os.Create(archiveOutput)
			if err != nil {
				return err
			}

			if err := svc.ArchiveFolder(ctx, archiveFolderID, out); err != nil {
				_ = out.Close()
				_ = os.Remove(archiveOutput)

				return err
			}

			if err := out.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "archive of folder %d written to %s\n", archiveFolderID, archiveOutput)

			return nil
		},
	}
)

func registerArchiveCommands() {
	archiveCmd.Flags().UintVar(&archiveFolderID, "folder-id", 0, "folder whose subtree to archive")
	archiveCmd.Flags().StringVarP(&archiveOutput, "output", "o", "", "output zip path")
	_ = archiveCmd.MarkFlagRequired("folder-id")
	_ = archiveCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(archiveCmd)
}
