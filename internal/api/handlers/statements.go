package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/personifi/personifi/internal/api/middleware"
	"github.com/personifi/personifi/internal/domain"
	"github.com/personifi/personifi/internal/gcs"
	"github.com/personifi/personifi/internal/jobs"
	"github.com/personifi/personifi/internal/statement"
	"github.com/personifi/personifi/internal/store"
)

var allowedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
}

// StatementsHandler handles statement upload and parse endpoints.
type StatementsHandler struct {
	store          store.TransactionStore
	archive        gcs.StatementArchive
	publisher      jobs.Publisher
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewStatementsHandler creates a new statements handler. archive and
// publisher may be nil when async upload is not configured.
func NewStatementsHandler(st store.TransactionStore, archive gcs.StatementArchive, publisher jobs.Publisher, maxUploadBytes int64, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		store:          st,
		archive:        archive,
		publisher:      publisher,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// uploadMetadata augments the parse metadata with upload details.
type uploadMetadata struct {
	*statement.Metadata
	OriginalFilename string `json:"original_filename"`
	FileSize         int64  `json:"file_size"`
	UploadTimestamp  string `json:"upload_timestamp"`
}

type parseResponse struct {
	Success      bool                 `json:"success"`
	Transactions []domain.Transaction `json:"transactions"`
	Metadata     *uploadMetadata      `json:"metadata"`
}

// ParseTransactions handles POST /api/parse-transactions
// It parses the uploaded statement synchronously and returns the normalized
// transactions without persisting anything.
func (h *StatementsHandler) ParseTransactions(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.acceptUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	path, cleanup, err := stageUpload(file, filepath.Ext(header.Filename))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to stage uploaded file")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to process uploaded file")
		return
	}
	defer cleanup()

	result := statement.ParseStatement(path)
	if !result.Success {
		middleware.WriteJSON(w, http.StatusBadRequest, result)
		return
	}

	h.log.Info().
		Str("filename", header.Filename).
		Int("transactions", result.Metadata.TotalTransactions).
		Int("row_errors", len(result.Metadata.Errors)).
		Msg("Statement parsed")

	middleware.WriteJSON(w, http.StatusOK, parseResponse{
		Success:      true,
		Transactions: result.Transactions,
		Metadata: &uploadMetadata{
			Metadata:         result.Metadata,
			OriginalFilename: header.Filename,
			FileSize:         header.Size,
			UploadTimestamp:  time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// SaveTransactions handles POST /api/save-transactions
func (h *StatementsHandler) SaveTransactions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transactions []domain.Transaction `json:"transactions"`
		SourceFile   string               `json:"source_file"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Transactions) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "No transactions provided")
		return
	}

	inserted, err := h.store.InsertTransactions(r.Context(), req.Transactions, req.SourceFile)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to insert transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"inserted_count": inserted,
	})
}

// UploadStatement handles POST /api/statements/upload
// It archives the file in GCS and enqueues an async parse job.
func (h *StatementsHandler) UploadStatement(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil || h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Async upload is not configured")
		return
	}

	file, header, ok := h.acceptUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	statementID := uuid.NewString()
	objectName := fmt.Sprintf("uploads/%s/%s-%s", time.Now().Format("2006/01/02"), statementID, filepath.Base(header.Filename))

	gcsURI, err := h.archive.Upload(r.Context(), objectName, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to archive statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	job := &jobs.ParseStatementJob{
		StatementID: statementID,
		GCSURI:      gcsURI,
		Filename:    header.Filename,
	}
	if err := h.publisher.PublishParseStatement(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue parse job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue parsing job")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("statement_id", statementID).
		Str("gcs_uri", gcsURI).
		Msg("Parse job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":       job.JobID,
		"statement_id": statementID,
		"gcs_uri":      gcsURI,
		"status":       string(job.Status),
	})
}

// acceptUpload validates the multipart upload and returns the file. On
// failure it writes the error response and returns ok=false.
func (h *StatementsHandler) acceptUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File too large. Maximum size is %dMB", h.maxUploadBytes/(1<<20)))
		} else {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		}
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "No file provided")
		return nil, nil, false
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		file.Close()
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   statement.ErrUnsupportedFormat.Error(),
		})
		return nil, nil, false
	}

	return file, header, true
}

// stageUpload copies the upload to a temp file keeping the original
// extension, which the parser uses to pick its reader.
func stageUpload(r io.Reader, ext string) (string, func(), error) {
	f, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return "", nil, err
	}
	if _, err := io.Copy(f, r); err != nil {
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
