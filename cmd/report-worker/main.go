package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"tally/internal/amqp"
	"tally/internal/config"
	"tally/internal/export"
	googleexport "tally/internal/export/google"
	memoryexport "tally/internal/export/memory"
	"tally/internal/log"
	"tally/internal/services"
	"tally/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: "report-worker"})
	log.SetDefault(logger)

	logger.Info("Starting report-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPLedgerQueue, cfg.AMQPGoalQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	var writer export.SummaryWriter
	switch cfg.ReportBackend {
	case "sheets":
		writer, err = googleexport.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets writer", "error", err)
			os.Exit(1)
		}
		logger.Info("Report backend: Google Sheets")
	default:
		writer = memoryexport.New()
		logger.Info("Report backend: in-memory (reports are not persisted)")
	}

	analytics := services.NewAnalyticsService(repo)

	// On every ledger event, refresh the affected owner's current-month
	// report. The event carries identifiers only; the overview is always
	// recomputed from storage.
	handle := func(msg *amqp.LedgerEventMessage) error {
		now := time.Now()
		analytics.Invalidate(msg.OwnerID, now.Year(), int(now.Month()))
		overview, err := analytics.MonthOverview(ctx, msg.OwnerID, now.Year(), int(now.Month()))
		if err != nil {
			return err
		}
		return writer.WriteMonthOverview(ctx, msg.OwnerID, overview)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeLedgerEvents(gctx, handle)
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Report-worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Report-worker shutdown complete")
}
