package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"maintenance-backend/internal/bootstrap"
	"maintenance-backend/internal/export"
)

func exportCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{Use: "export", Short: "Write report artifacts to disk"}
	cmd.AddCommand(
		exportFormatCmd(v, "pdf", "Write the gated technical report PDF", func(svc *export.Service) func(context.Context, string) (export.Artifact, error) {
			return svc.ExportPDF
		}),
		exportFormatCmd(v, "json", "Write the plan and annotation state as JSON", func(svc *export.Service) func(context.Context, string) (export.Artifact, error) {
			return svc.ExportJSON
		}),
	)
	return cmd
}

func exportFormatCmd(v *viper.Viper, use, short string, pick func(*export.Service) func(context.Context, string) (export.Artifact, error)) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   use + " <plan-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), v, func(ctx context.Context, app *bootstrap.App) error {
				plan, err := app.Plans.Open(ctx, args[0])
				if err != nil {
					return err
				}
				art, err := pick(app.Export)(ctx, plan.ID)
				var blocked *export.BlockedError
				if errors.As(err, &blocked) {
					printViolations(cmd, blocked.Result)
					return blocked
				}
				if err != nil {
					return err
				}
				if art.Fallback {
					fmt.Fprintln(cmd.ErrOrStderr(), art.Alert)
				}
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
				path := filepath.Join(outDir, art.FileName)
				if err := os.WriteFile(path, art.Data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}
