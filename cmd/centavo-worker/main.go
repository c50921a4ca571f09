package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"centavo/internal/amqp"
	"centavo/internal/backend"
	"centavo/internal/cli"
	"centavo/internal/config"
	"centavo/internal/log"
	"centavo/internal/storage"
	"centavo/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(config.RoleExportWorker, log.ComponentWorker)

	logger.Info("Starting centavo-worker")
	if err := run(cfg, logger); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()

	rows, err := backend.NewRowWriter(ctx, cfg, logger)
	if err != nil {
		return err
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return fmt.Errorf("initialize amqp client: %w", err)
	}
	defer client.Close()

	w := worker.NewExportWorker(repo, rows, logger)
	err = client.ConsumeTransactionEvents(ctx, w.Handle)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
