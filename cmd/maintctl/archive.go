package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"maintenance-backend/internal/bootstrap"
)

func archiveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{Use: "archive", Short: "Read exported reports back from the archive"}

	var outPath string
	get := &cobra.Command{
		Use:   "get <storage-key>",
		Short: "Copy an archived report, as named by the X-Storage-Key header, to a file or stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), v, func(ctx context.Context, app *bootstrap.App) error {
				rc, err := app.Store.Open(ctx, args[0])
				if err != nil {
					return err
				}
				defer rc.Close()

				var dst io.Writer = cmd.OutOrStdout()
				if outPath != "" && outPath != "-" {
					f, err := os.Create(outPath)
					if err != nil {
						return fmt.Errorf("create %s: %w", outPath, err)
					}
					defer f.Close()
					dst = f
				}
				n, err := io.Copy(dst, rc)
				if err != nil {
					return fmt.Errorf("copy %s: %w", args[0], err)
				}
				if dst != cmd.OutOrStdout() {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s (%d bytes)\n", outPath, n)
				}
				return nil
			})
		},
	}
	get.Flags().StringVarP(&outPath, "out", "o", "-", "destination file, - for stdout")
	cmd.AddCommand(get)
	return cmd
}
