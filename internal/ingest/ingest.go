// Package ingest runs the asynchronous statement pipeline: fetch the archived
// file from GCS, parse it, and load the transactions into the warehouse.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/personifi/personifi/internal/gcs"
	"github.com/personifi/personifi/internal/jobs"
	"github.com/personifi/personifi/internal/statement"
	"github.com/personifi/personifi/internal/store"
)

// Service processes statement parse jobs.
type Service struct {
	archive gcs.StatementArchive
	store   store.TransactionStore
	logger  zerolog.Logger
}

func NewService(archive gcs.StatementArchive, st store.TransactionStore, logger zerolog.Logger) *Service {
	return &Service{archive: archive, store: st, logger: logger}
}

// HandleJob is the jobs.JobHandler for the parse queue. A returned error
// makes the queue retry the job.
func (s *Service) HandleJob(ctx context.Context, job jobs.Job) error {
	parseJob, ok := job.(*jobs.ParseStatementJob)
	if !ok {
		return fmt.Errorf("HandleJob: unexpected job type %s", job.GetType())
	}
	return s.Process(ctx, parseJob)
}

// Process runs the pipeline for one job and records the transaction count on
// success.
func (s *Service) Process(ctx context.Context, job *jobs.ParseStatementJob) error {
	log := s.logger.With().
		Str("job_id", job.JobID).
		Str("statement_id", job.StatementID).
		Str("gcs_uri", job.GCSURI).
		Logger()
	log.Info().Msg("processing statement")

	data, err := s.archive.Fetch(ctx, job.GCSURI)
	if err != nil {
		return fmt.Errorf("Process: fetch statement: %w", err)
	}

	filename := job.Filename
	if filename == "" {
		filename = gcs.FilenameFromURI(job.GCSURI)
	}

	// The parser picks its reader from the file extension, so the temp file
	// must keep the original one.
	path, cleanup, err := writeTempFile(data, filepath.Ext(filename))
	if err != nil {
		return fmt.Errorf("Process: stage statement: %w", err)
	}
	defer cleanup()

	result := statement.ParseStatement(path)
	if !result.Success {
		// A malformed file will not parse better on retry; fail outright.
		job.MaxRetries = 0
		return fmt.Errorf("Process: parse statement: %s", result.Error)
	}

	inserted, err := s.store.InsertTransactions(ctx, result.Transactions, filename)
	if err != nil {
		return fmt.Errorf("Process: insert transactions: %w", err)
	}
	job.TransactionCount = inserted

	log.Info().
		Int("transactions", inserted).
		Int("parse_errors", len(result.Metadata.Errors)).
		Msg("statement loaded")
	return nil
}

func writeTempFile(data []byte, ext string) (string, func(), error) {
	f, err := os.CreateTemp("", "statement-*"+ext)
	if err != nil {
		return "", nil, err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, err
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}
