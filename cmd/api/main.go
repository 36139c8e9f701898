package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/personifi/personifi/internal/agent"
	"github.com/personifi/personifi/internal/api/handlers"
	"github.com/personifi/personifi/internal/api/middleware"
	"github.com/personifi/personifi/internal/config"
	"github.com/personifi/personifi/internal/gcs"
	"github.com/personifi/personifi/internal/ingest"
	"github.com/personifi/personifi/internal/jobs/inmemory"
	"github.com/personifi/personifi/internal/logger"
	"github.com/personifi/personifi/internal/store"
)

func main() {
	cfg := config.Load()

	var (
		port   = flag.String("port", cfg.Port, "HTTP server port")
		bucket = flag.String("bucket", cfg.GCSBucket, "GCS bucket for statement uploads (or set GCS_BUCKET env)")
	)
	flag.Parse()

	log := logger.New()

	ctx := context.Background()

	txStore, err := store.NewBigQueryStore(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create transaction store")
	}
	defer txStore.Close()

	// The insight agent degrades to deterministic charts when the model is
	// unreachable, but the model client itself must be constructible.
	model, err := agent.NewGeminiModel(ctx, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	insightAgent := agent.New(model, txStore, log)

	// Async upload pipeline. Optional: without a bucket the sync parse
	// endpoint still works.
	var archive gcs.StatementArchive
	if *bucket != "" {
		a, err := gcs.NewArchive(ctx, *bucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create statement archive")
		}
		defer a.Close()
		archive = a
	} else {
		log.Warn().Msg("No GCS bucket configured - async statement uploads will be disabled")
	}

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if archive != nil {
		ingestSvc := ingest.NewService(archive, txStore, log)
		go func() {
			log.Info().Msg("Starting parse job worker")
			if err := jobQueue.Start(workerCtx, ingestSvc.HandleJob); err != nil {
				log.Error().Err(err).Msg("Job worker stopped with error")
			}
		}()
	}

	systemHandler := handlers.NewSystemHandler(cfg.MaxUploadBytes)
	statementsHandler := handlers.NewStatementsHandler(txStore, archive, jobQueue, cfg.MaxUploadBytes, log)
	transactionsHandler := handlers.NewTransactionsHandler(txStore, log)
	agentHandler := handlers.NewAgentHandler(insightAgent, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", systemHandler.Root)
	mux.HandleFunc("GET /api/health", systemHandler.Health)
	mux.HandleFunc("GET /api/formats", systemHandler.Formats)
	mux.HandleFunc("POST /api/parse-transactions", statementsHandler.ParseTransactions)
	mux.HandleFunc("POST /api/save-transactions", statementsHandler.SaveTransactions)
	mux.HandleFunc("POST /api/statements/upload", statementsHandler.UploadStatement)
	mux.HandleFunc("GET /api/transactions", transactionsHandler.ListTransactions)
	mux.HandleFunc("POST /api/ask-agent", agentHandler.AskAgent)
	mux.HandleFunc("GET /api/jobs", jobsHandler.ListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", jobsHandler.GetJob)

	rateLimiter := middleware.NewRateLimiter(cfg.RatePerMinute)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					rateLimiter.Middleware(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
