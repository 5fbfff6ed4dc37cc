package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ridelog/internal/amqp"
	"ridelog/internal/cli"
	"ridelog/internal/storage"
	syncports "ridelog/internal/sync"
	"ridelog/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting ridelog-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The worker reads the same SQLite database the server writes, so a
	// sync message can be resolved to its full record.
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	remote := cli.InitBackend(ctx, logger, cfg)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, remote)

	// On startup, push any local records the remote is missing.
	logger.Info("Performing startup sync check...")
	if err := runSyncCheck(ctx, syncWorker, repo, remote); err != nil {
		logger.Error("Failed startup sync check", "error", err)
		// Don't exit - continue with normal operation
	}

	consumeDone := make(chan error, 1)
	go func() {
		consumeDone <- amqpClient.ConsumeRecordSync(ctx, func(msg *amqp.RecordSyncMessage) error {
			return syncWorker.HandleSyncMessage(ctx, msg)
		})
	}()

	// Periodic re-check catches messages lost while the worker was down.
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := runSyncCheck(ctx, syncWorker, repo, remote); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-consumeDone:
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
		}
	}

	// Give in-flight handlers a moment to finish before the deferred
	// connection close.
	time.Sleep(time.Second)
	logger.Info("Worker shutdown complete")
}

// runSyncCheck loads the current local collection and pushes whatever the
// remote is missing.
func runSyncCheck(ctx context.Context, w *worker.SyncWorker, repo *storage.SQLiteRepository, remote syncports.RecordPuller) error {
	local, err := repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	return w.StartupSyncCheck(ctx, local, remote)
}
