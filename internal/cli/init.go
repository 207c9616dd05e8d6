// Package cli holds the process bootstrap shared by the fintrack binaries
// and the command dispatcher of the fintrack CLI.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/auth"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// SetupLogger installs a text logger at the given LOG_LEVEL as the
// process default and returns it.
func SetupLogger(level string, w io.Writer) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: applog.ComponentApp,
		Output:    w,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// App is the wired core every binary serves from.
type App struct {
	Backend *backend.BackendResult
	Auth    *auth.Provider
	Ledger  *services.Ledger
	Reports *services.ReportService
}

// NewApp opens the configured backend and builds the services on top of it.
func NewApp(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	provider, err := auth.NewProvider(res.Store, cfg.BcryptCost)
	if err != nil {
		_ = res.Cleanup()
		return nil, err
	}
	ledger := services.NewLedger(res.Store, res.Publisher)
	return &App{
		Backend: res,
		Auth:    provider,
		Ledger:  ledger,
		Reports: services.NewReportService(ledger),
	}, nil
}

// MustApp is NewApp for main functions: it exits the process on failure.
func MustApp(ctx context.Context, logger *applog.Logger, cfg *config.Config) *App {
	app, err := NewApp(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return app
}

// Close releases the backend.
func (a *App) Close(logger *applog.Logger) {
	if err := a.Backend.Cleanup(); err != nil {
		logger.Error("Backend cleanup failed", applog.FieldError, err)
	}
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM. The
// received signal is logged.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
