package handlers

import (
	"net/http"

	"github.com/personifi/personifi/internal/api/middleware"
	"github.com/personifi/personifi/internal/statement"
)

// SystemHandler serves the service-info endpoints.
type SystemHandler struct {
	maxUploadBytes int64
}

// NewSystemHandler creates a new system handler.
func NewSystemHandler(maxUploadBytes int64) *SystemHandler {
	return &SystemHandler{maxUploadBytes: maxUploadBytes}
}

// Root handles GET /
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "PersoniFi Transaction Parser API",
		"status":  "running",
	})
}

// Health handles GET /api/health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "transaction-parser",
	})
}

// Formats handles GET /api/formats
func (h *SystemHandler) Formats(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"supported_formats": []string{".csv", ".xlsx", ".xls"},
		"max_file_size_mb":  h.maxUploadBytes / (1 << 20),
		"column_keywords":   statement.RoleKeywords(),
	})
}
