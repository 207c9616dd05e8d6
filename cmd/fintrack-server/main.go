package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	app := cli.MustApp(ctx, logger, cfg)
	defer app.Close(logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Auth:    app.Auth,
		Ledger:  app.Ledger,
		Reports: app.Reports,
		Ready: func(ctx context.Context) error {
			_, _, err := app.Backend.Store.FindUser(ctx, "")
			return err
		},
	}, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ReportCacheTTL:     cfg.ReportCacheTTL,
		ReportCacheSize:    cfg.ReportCacheSize,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger,
	})
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend, "events", cfg.EventsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		app.Close(logger)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
