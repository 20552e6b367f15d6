package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gstrates/internal/app"
	"gstrates/internal/service"
)

var ingestSource string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Ingest a PDF, XLSX or CSV rate schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		return withApp(cmd, func(a *app.App) error {
			report, err := a.Ingest.Ingest(cmd.Context(), service.IngestInput{
				FileName:       filepath.Base(args[0]),
				Data:           data,
				SourceDocument: ingestSource,
			})
			if report != nil {
				if perr := printJSON(cmd.OutOrStdout(), report); perr != nil {
					return perr
				}
			}
			return err
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed [dir]",
	Short: "Ingest every schedule in a directory when the catalogue is empty",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Ingest.SeedDir
		if len(args) == 1 {
			dir = args[0]
		}

		return withApp(cmd, func(a *app.App) error {
			n, err := a.Ingest.SeedIfEmpty(cmd.Context(), afero.NewOsFs(), dir)
			zap.L().Info("seed complete", zap.String("dir", dir), zap.Int("documents", n))
			return err
		})
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "source document name recorded on rows (default: file name)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(seedCmd)
}
