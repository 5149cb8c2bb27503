package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/orangery/ams/backend/internal/router"
	"github.com/orangery/ams/backend/internal/setup"
	"github.com/orangery/ams/shared/config"
	"github.com/orangery/ams/shared/logger"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.JSON)

	if err := run(cfg); err != nil {
		logger.Log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Storage.Cleanup()
	defer deps.LoginLimiter.Stop()
	defer deps.SignUpLimiter.Stop()

	if err := deps.Seeder.Seed(ctx); err != nil {
		return err
	}

	httpCfg := cfg.Public.HTTP
	srv := &http.Server{
		Addr:         httpCfg.Addr,
		Handler:      router.New(deps),
		ReadTimeout:  httpCfg.ReadTimeout,
		WriteTimeout: httpCfg.WriteTimeout,
		IdleTimeout:  2 * httpCfg.ReadTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Info("server started", "addr", httpCfg.Addr, "sms_enabled", cfg.Public.Sms.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			unseed(cfg, deps)
			return err
		}
	case <-ctx.Done():
		logger.Log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("graceful shutdown failed", "error", err)
	}
	unseed(cfg, deps)
	return nil
}

func unseed(cfg *config.Config, deps *setup.Dependencies) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Public.HTTP.ShutdownTimeout)
	defer cancel()
	if err := deps.Seeder.Unseed(ctx); err != nil {
		logger.Log.Error("failed to remove seed admin", "error", err)
	}
}
