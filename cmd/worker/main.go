package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/personifi/personifi/internal/config"
	"github.com/personifi/personifi/internal/gcs"
	"github.com/personifi/personifi/internal/ingest"
	"github.com/personifi/personifi/internal/jobs/inmemory"
	"github.com/personifi/personifi/internal/logger"
	"github.com/personifi/personifi/internal/store"
)

func main() {
	log := logger.New()
	cfg := config.Load()

	if cfg.GCSBucket == "" {
		log.Fatal().Msg("GCS_BUCKET is required for the worker service")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	archive, err := gcs.NewArchive(ctx, cfg.GCSBucket)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create statement archive")
	}
	defer archive.Close()

	txStore, err := store.NewBigQueryStore(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create transaction store")
	}
	defer txStore.Close()

	// In production the in-memory queue would be replaced with Cloud Tasks
	// or Pub/Sub; the consumer interface stays the same.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	ingestSvc := ingest.NewService(archive, txStore, log)

	if err := jobQueue.Start(ctx, ingestSvc.HandleJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}
