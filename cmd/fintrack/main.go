package main

import (
	"os"

	"fintrack/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	// Command output goes to stdout, so logs go to stderr.
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stderr)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	app := cli.MustApp(ctx, logger, cfg)

	d := &cli.Dispatcher{
		Auth:      app.Auth,
		Ledger:    app.Ledger,
		Reports:   app.Reports,
		ExportDir: cfg.ExportDir,
		Out:       os.Stdout,
		Err:       os.Stderr,
	}
	code := d.Run(ctx, os.Args[1:])

	app.Close(logger)
	cancel()
	os.Exit(code)
}
