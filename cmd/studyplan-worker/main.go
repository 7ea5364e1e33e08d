package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"studyplan/internal/amqp"
	"studyplan/internal/cli"
	"studyplan/internal/config"
	applog "studyplan/internal/log"
	gsheet "studyplan/internal/sheets/google"
	"studyplan/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting studyplan-worker")

	cfg := cli.LoadAndValidateWorkerConfig(logger)
	if err := run(logger, cfg); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(logger *applog.Logger, cfg *config.Config) error {
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	sheetsClient, err := gsheet.New(ctx, gsheet.Settings{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return fmt.Errorf("initialize Google Sheets client: %w", err)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(repo, sheetsClient, cfg.ExportBatchSize)

	// Completions saved while the worker was down have no message waiting for them.
	logger.Info("Performing startup export check...")
	if err := exportWorker.StartupCheck(ctx); err != nil {
		logger.Error("Failed startup export check", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeSessionCompleted(gctx, exportWorker.HandleCompletionMessage)
	})
	g.Go(func() error {
		return exportWorker.RunPendingLoop(gctx, cfg.ExportInterval)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	<-done
	return nil
}
