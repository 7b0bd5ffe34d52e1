package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"maintenance-backend/internal/bootstrap"
	"maintenance-backend/internal/settings"
)

func settingsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{Use: "settings", Short: "Show or change generation preferences"}
	cmd.AddCommand(settingsShowCmd(v), settingsSetCmd(v))
	return cmd
}

func settingsShowCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), v, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.Settings.Get(ctx)
				if err != nil {
					return err
				}
				return printSettings(cmd, v, s)
			})
		},
	}
}

func settingsSetCmd(v *viper.Viper) *cobra.Command {
	var personnel, supervisorRole string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the saved settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("personnel") && !cmd.Flags().Changed("supervisor-role") {
				return fmt.Errorf("nothing to update: pass --personnel or --supervisor-role")
			}
			return withApp(cmd.Context(), v, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.Settings.Get(ctx)
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("personnel") {
					s.DefaultPersonnel = personnel
				}
				if cmd.Flags().Changed("supervisor-role") {
					s.DefaultSupervisorRole = supervisorRole
				}
				saved, err := app.Settings.Save(ctx, s)
				if err != nil {
					return err
				}
				return printSettings(cmd, v, saved)
			})
		},
	}
	cmd.Flags().StringVar(&personnel, "personnel", "", "default personnel hint for generation")
	cmd.Flags().StringVar(&supervisorRole, "supervisor-role", "", "default supervisor role")
	return cmd
}

func printSettings(cmd *cobra.Command, v *viper.Viper, s settings.Settings) error {
	if v.GetBool("json") {
		return printJSON(cmd.OutOrStdout(), s)
	}
	out, err := yaml.Marshal(map[string]string{
		"defaultPersonnel":      s.DefaultPersonnel,
		"defaultSupervisorRole": s.DefaultSupervisorRole,
	})
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
