package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"centavo/internal/cli"
	"centavo/internal/config"
	"centavo/internal/core"
	"centavo/internal/log"
	"centavo/internal/services"
	"centavo/internal/storage"
)

func main() {
	cfg, logger := cli.Bootstrap(config.RoleRecurringWorker, log.ComponentRecurring)

	logger.Info("Starting recurring-worker")
	if err := run(cfg, logger); err != nil {
		logger.Error("Recurring worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Recurring-worker shutdown complete")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()

	// Posted transactions reach the export worker through the same events
	// as API-created ones.
	publisher, closePublisher := cli.NewPublisher(cfg, logger)
	defer closePublisher()

	transactions := services.NewTransactionService(repo, repo, repo, publisher, logger)
	processor := services.NewRecurringProcessor(repo, transactions, logger)

	logger.Info("Recurring processor configured", "interval", cfg.RecurringInterval)
	process := func() {
		count, err := processor.ProcessDue(ctx, core.Today())
		if err != nil {
			logger.Error("Processing failed", log.FieldError, err)
			return
		}
		logger.Info("Processing complete",
			"transactions_created", count,
			"next_check", time.Now().Add(cfg.RecurringInterval).Format("15:04:05"))
	}

	process()

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received")
			return nil
		case <-ticker.C:
			process()
		}
	}
}
