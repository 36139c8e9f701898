package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/personifi/personifi/internal/agent"
	"github.com/personifi/personifi/internal/api/middleware"
)

// InsightAgent abstracts the question-answering agent so handlers can be
// tested without a model.
type InsightAgent interface {
	Ask(ctx context.Context, question string) (*agent.Response, error)
}

// AgentHandler handles the natural-language query endpoint.
type AgentHandler struct {
	agent InsightAgent
	log   zerolog.Logger
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(a InsightAgent, log zerolog.Logger) *AgentHandler {
	return &AgentHandler{agent: a, log: log}
}

// AskAgent handles POST /api/ask-agent
func (h *AgentHandler) AskAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Question is required")
		return
	}

	resp, err := h.agent.Ask(r.Context(), req.Question)
	if err != nil {
		h.log.Error().Err(err).Msg("Agent query failed")
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Failed to answer question",
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}
