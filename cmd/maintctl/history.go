package main

import (
	"context"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"maintenance-backend/internal/bootstrap"
)

func historyCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List generated plans, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), v, func(ctx context.Context, app *bootstrap.App) error {
				items, err := app.History.List(ctx)
				if err != nil {
					return err
				}
				if v.GetBool("json") {
					return printJSON(cmd.OutOrStdout(), items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"ID", "Tag", "Category", "Instrument", "Platform", "Created"})
				for _, p := range items {
					tw.AppendRow(table.Row{p.ID, p.Tag, p.Category, p.InstrumentType, p.PlatformType, p.CreatedAt.UTC().Format("2006-01-02 15:04")})
				}
				tw.AppendFooter(table.Row{"", "", "", "", "total", len(items)})
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}
