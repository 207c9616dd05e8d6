package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout).WithComponent(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	app := cli.MustApp(ctx, logger, cfg)
	defer app.Close(logger)

	var exporter export.Exporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			app.Close(logger)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Reports sync to Google Sheets", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		exporter = export.NewFileExporter(cfg.ExportDir, export.CSVEncoder{})
		logger.Info("Google Sheets disabled, reports sync to files", "dir", cfg.ExportDir)
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		app.Close(logger)
		os.Exit(1)
	}
	defer consumer.Close()

	syncer := worker.NewReportSync(app.Reports, exporter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Consuming ledger events", "queue", cfg.AMQPQueue)
		return consumer.Consume(gctx, syncer.HandleEvent)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		consumer.Close()
		app.Close(logger)
		os.Exit(1)
	}
	logger.Info("Worker stopped")
}
