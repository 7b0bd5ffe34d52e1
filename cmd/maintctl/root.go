package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"maintenance-backend/internal/bootstrap"
	"maintenance-backend/internal/shared/config"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "maintctl",
		Short:         "Inspect maintenance plans, reviews and exports stored locally",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("kv-backend", "", "sqlite, postgres or memory (default from KV_BACKEND)")
	root.PersistentFlags().String("sqlite-path", "", "sqlite database file (default from SQLITE_PATH)")
	root.PersistentFlags().String("database-url", "", "postgres url (default from DATABASE_URL)")
	root.PersistentFlags().String("store-dir", "", "local export archive directory (default from LOCAL_STORE_DIR)")
	root.PersistentFlags().Bool("json", false, "output JSON")
	for _, name := range []string{"kv-backend", "sqlite-path", "database-url", "store-dir", "json"} {
		_ = v.BindPFlag(name, root.PersistentFlags().Lookup(name))
	}
	v.SetEnvPrefix("MAINT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(
		historyCmd(v),
		reviewCmd(v),
		exportCmd(v),
		settingsCmd(v),
		archiveCmd(v),
	)
	return root
}

// loadConfig reads the service configuration and applies CLI overrides.
func loadConfig(v *viper.Viper) config.Config {
	cfg := config.Load()
	if s := strings.TrimSpace(v.GetString("kv-backend")); s != "" {
		cfg.KVBackend = s
	}
	if s := strings.TrimSpace(v.GetString("sqlite-path")); s != "" {
		cfg.SQLitePath = s
	}
	if s := strings.TrimSpace(v.GetString("database-url")); s != "" {
		cfg.DatabaseURL = s
	}
	if s := strings.TrimSpace(v.GetString("store-dir")); s != "" {
		cfg.ObjectStoreType = "local"
		cfg.LocalStoreDir = s
	}
	// The CLI never generates plans.
	cfg.LLMProvider = "none"
	return cfg
}

func withApp(ctx context.Context, v *viper.Viper, fn func(ctx context.Context, app *bootstrap.App) error) error {
	app, err := bootstrap.Build(ctx, loadConfig(v))
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
