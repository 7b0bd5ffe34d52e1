package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/export"
	"maintenance-backend/internal/history"
	"maintenance-backend/internal/llm"
	"maintenance-backend/internal/llm/gemini"
	"maintenance-backend/internal/llm/openai"
	"maintenance-backend/internal/plans"
	"maintenance-backend/internal/review"
	"maintenance-backend/internal/services/health"
	"maintenance-backend/internal/settings"
	"maintenance-backend/internal/shared/config"
	"maintenance-backend/internal/shared/server"
	"maintenance-backend/internal/shared/storage/db"
	"maintenance-backend/internal/shared/storage/kv"
	"maintenance-backend/internal/shared/storage/object"
	localstore "maintenance-backend/internal/shared/storage/object/local"
	s3store "maintenance-backend/internal/shared/storage/object/s3"
	"maintenance-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	KV     kv.Store
	Store  object.ObjectStore

	Settings *settings.Service
	History  *history.Store
	Review   *review.Manager
	Plans    *plans.Service
	Export   *export.Service
	Health   *health.Service

	SettingsHandler *settings.Handler
	PlansHandler    *plans.Handler
	ReviewHandler   *review.Handler
	ExportHandler   *export.Handler
}

// Build prepares every dependency and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	sqlDB, store, err := BuildKV(ctx, cfg)
	if err != nil {
		return nil, err
	}

	objects, err := buildStore(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	completer, err := buildCompleter(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		KV:     store,
		Store:  objects,
	}
	app.wire(llm.NewGateway(completer))
	app.Router = server.NewRouter(cfg, server.Options{Health: app.Health},
		app.SettingsHandler,
		app.PlansHandler,
		app.ReviewHandler,
		app.ExportHandler,
	)
	return app, nil
}

// Close releases the database handle, if any.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func (a *App) wire(gen plans.Generator) {
	a.Settings = settings.NewService(a.KV)
	a.History = history.NewStore(a.KV)
	a.Review = review.NewManager(a.KV)
	a.Plans = &plans.Service{
		Generator: gen,
		History:   a.History,
		Settings:  a.Settings,
		Review:    a.Review,
	}
	a.Export = export.NewService(a.Review, a.Store)

	a.SettingsHandler = settings.NewHandler(a.Settings)
	a.ReviewHandler = review.NewHandler(a.Plans, a.Review)
	a.PlansHandler = plans.NewHandler(a.Plans)
	a.PlansHandler.Review = a.ReviewHandler
	a.ExportHandler = export.NewHandler(a.Export)

	a.Health = health.NewService(a.Config.KVBackend, a.DB)
	a.Health.Generating = a.Plans.Generating
	a.Health.Exporting = a.Export.Exporting
}

// BuildKV opens the configured key-value backend; sqlite and postgres are migrated first.
func BuildKV(ctx context.Context, cfg config.Config) (*sql.DB, kv.Store, error) {
	switch cfg.KVBackend {
	case "memory":
		telemetry.Warn("bootstrap.kv_memory", map[string]any{"detail": "nothing survives a restart"})
		return nil, kv.NewMemoryStore(), nil
	case "postgres":
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.RunMigrations(ctx, sqlDB, db.DialectPostgres); err != nil {
			sqlDB.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return sqlDB, &kv.PGStore{DB: sqlDB}, nil
	default:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath, db.OptionsFromEnv(db.DefaultSQLiteOptions()))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := db.RunMigrations(ctx, sqlDB, db.DialectSQLite); err != nil {
			sqlDB.Close()
			return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return sqlDB, &kv.SQLiteStore{DB: sqlDB}, nil
	}
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, s3store.Options{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			KMSKeyID: cfg.SSEKMSKeyID,
			Endpoint: cfg.S3Endpoint,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildCompleter(ctx context.Context, cfg config.Config) (llm.Completer, error) {
	switch cfg.LLMProvider {
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "gemini":
		client, err := gemini.NewClient(ctx, gemini.Options{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			if isDevLike(cfg.Env) {
				telemetry.Warn("bootstrap.llm_disabled", map[string]any{"provider": "gemini", "error": err})
				return llm.PlaceholderCompleter{}, nil
			}
			return nil, err
		}
		return client, nil
	default:
		telemetry.Info("bootstrap.llm_disabled", map[string]any{"provider": cfg.LLMProvider})
		return llm.PlaceholderCompleter{}, nil
	}
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		sqlDB.Close()
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
