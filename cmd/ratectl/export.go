package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gstrates/internal/app"
	"gstrates/internal/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalogue as CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		path := exportOut
		if path == "" {
			path = export.BuildFilename(format, time.Now())
		}

		return withApp(cmd, func(a *app.App) error {
			var w io.Writer = cmd.OutOrStdout()
			if path != "-" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create %s: %w", path, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			if err := a.Export.Export(cmd.Context(), w, format); err != nil {
				return err
			}
			zap.L().Info("export complete", zap.String("format", string(format)), zap.String("out", path))
			return nil
		})
	},
}

var tokenSubject string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an admin bearer token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(a *app.App) error {
			token, expiresAt, err := a.Tokens.Mint(tokenSubject)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"token":      token,
				"expires_at": expiresAt,
			})
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file, - for stdout (default: gst_rates_<date>.<ext>)")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "token subject")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(tokenCmd)
}
