package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maintenance-backend/internal/bootstrap"
	"maintenance-backend/internal/shared/config"
	"maintenance-backend/internal/shared/server"
	"maintenance-backend/internal/shared/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		telemetry.Error("api.exit", map[string]any{"error": err})
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	telemetry.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		telemetry.Info("api.listening", map[string]any{
			"addr": srv.Addr,
			"env":  cfg.Env,
			"kv":   cfg.KVBackend,
			"llm":  cfg.LLMProvider,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	telemetry.Info("api.shutdown", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
