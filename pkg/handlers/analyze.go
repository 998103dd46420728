package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/tablelens-ai/tablelens-engine/pkg/models"
	"github.com/tablelens-ai/tablelens-engine/pkg/services"
)

// maxAnalyzeBodyBytes caps the request body; metadata blobs are text, not
// dumps.
const maxAnalyzeBodyBytes = 16 << 20

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Tables  []TableRequest `json:"tables"`
	Rules   string         `json:"rules"`
	History string         `json:"history"`
}

// TableRequest is one table's metadata in an analyze request.
type TableRequest struct {
	Name    string `json:"name"`
	Schema  string `json:"schema"`
	Stats   string `json:"stats"`
	Samples string `json:"samples"`
	Rules   string `json:"rules"`
}

// AnalyzeHandler runs analysis requests through the orchestrator.
type AnalyzeHandler struct {
	orchestrator services.Orchestrator
	logger       *zap.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(orchestrator services.Orchestrator, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		orchestrator: orchestrator,
		logger:       logger.Named("analyze-handler"),
	}
}

// RegisterRoutes registers the analyze handler's routes on the given mux.
func (h *AnalyzeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/analyze", h.Analyze)
}

// Analyze handles POST /api/analyze. The optional ?format=yaml query
// parameter switches the response to the YAML export.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxAnalyzeBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	inputs := models.AnalysisInputs{
		Rules:   req.Rules,
		History: req.History,
		Tables:  make([]models.TableInput, 0, len(req.Tables)),
	}
	for _, t := range req.Tables {
		if strings.TrimSpace(t.Name) == "" {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "every table needs a name")
			return
		}
		inputs.Tables = append(inputs.Tables, models.NewTableInput(t.Name, t.Schema, t.Stats, t.Samples, t.Rules))
	}

	h.logger.Info("analysis request received",
		zap.Int("tables", len(inputs.Tables)),
		zap.Bool("has_global_rules", inputs.Rules != ""))

	result, err := h.orchestrator.AnalyzeAll(r.Context(), inputs)
	if err != nil {
		h.logger.Error("analysis run failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "analysis_failed", "analysis run could not complete")
		return
	}

	if r.URL.Query().Get("format") == "yaml" {
		data, err := result.ToYAML()
		if err != nil {
			h.logger.Error("YAML export failed", zap.Error(err))
			_ = ErrorResponse(w, http.StatusInternalServerError, "export_failed", "could not render YAML export")
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode analysis response", zap.Error(err))
	}
}
