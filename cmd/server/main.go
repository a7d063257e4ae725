// Package main is the entry point for the ficha-service HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/ficha-service/internal/app"
	"github.com/fleveque/ficha-service/internal/config"
	"github.com/fleveque/ficha-service/internal/server"
	"github.com/fleveque/ficha-service/internal/studio"
)

func main() {
	// run() keeps deferred cleanup working; os.Exit would skip it.
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadEnvFile(os.Getenv("FICHA_ENV_FILE")); err != nil {
		return err
	}
	cfg, err := config.Load(os.Getenv("FICHA_CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var logger *zap.Logger
	if cfg.Log.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	// Sync commonly fails on stdout/stderr; nothing to do about it.
	defer func() { _ = logger.Sync() }()

	a, err := app.Build(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	st := studio.New(a.Renderer, a.Decoder, logger)
	st.SetDefaultSettings(a.Defaults)

	srv := server.New(cfg, server.Deps{
		Studio:  st,
		Exports: a.Exports,
		Encoder: a.Encoder,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go pruneSessions(ctx, st, cfg.Session.TTL)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	// Give in-flight requests (a video export can take a while) time to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// pruneSessions closes idle sessions so their decoded photos can be
// collected. ttl <= 0 keeps sessions forever.
func pruneSessions(ctx context.Context, st *studio.Studio, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(max(ttl/4, time.Minute))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Prune(ttl)
		}
	}
}
