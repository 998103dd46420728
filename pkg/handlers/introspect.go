package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/tablelens-ai/tablelens-engine/pkg/apperrors"
	"github.com/tablelens-ai/tablelens-engine/pkg/datasource"
	"github.com/tablelens-ai/tablelens-engine/pkg/logging"
	"github.com/tablelens-ai/tablelens-engine/pkg/models"
)

// IntrospectRequest is the body of POST /api/introspect.
type IntrospectRequest struct {
	// Driver selects the introspector: "postgres" or "sqlserver".
	Driver string `json:"driver"`
	// ConnectionString is used for this request only and never stored.
	ConnectionString string `json:"connection_string"`
	SampleRows       int    `json:"sample_rows"`
}

// IntrospectResponse returns the discovered tables for user review before
// they are submitted for analysis.
type IntrospectResponse struct {
	Tables []models.TableInput `json:"tables"`
}

// IntrospectHandler introspects live databases into analysis inputs.
// The connect field is swapped for a stub in tests.
type IntrospectHandler struct {
	logger  *zap.Logger
	connect func(r *http.Request, req IntrospectRequest) (datasource.Introspector, error)
}

// NewIntrospectHandler creates a new IntrospectHandler.
func NewIntrospectHandler(logger *zap.Logger) *IntrospectHandler {
	h := &IntrospectHandler{logger: logger.Named("introspect-handler")}
	h.connect = func(r *http.Request, req IntrospectRequest) (datasource.Introspector, error) {
		return datasource.New(r.Context(), req.Driver, req.ConnectionString, req.SampleRows, h.logger)
	}
	return h
}

// RegisterRoutes registers the introspect handler's routes on the given mux.
func (h *IntrospectHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/introspect", h.Introspect)
}

// Introspect handles POST /api/introspect.
func (h *IntrospectHandler) Introspect(w http.ResponseWriter, r *http.Request) {
	var req IntrospectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if req.ConnectionString == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "connection_string is required")
		return
	}

	intro, err := h.connect(r, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnsupportedDriver) {
			_ = ErrorResponse(w, http.StatusBadRequest, "unsupported_driver", "driver must be postgres or sqlserver")
			return
		}
		h.logger.Warn("datasource connection failed",
			zap.String("driver", req.Driver),
			zap.String("error", logging.SanitizeError(err)))
		_ = ErrorResponse(w, http.StatusBadGateway, "connection_failed", "could not connect to the datasource")
		return
	}
	defer intro.Close()

	tables, err := intro.Introspect(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNoTables) {
			_ = ErrorResponse(w, http.StatusNotFound, "no_tables", "the datasource has no user tables")
			return
		}
		h.logger.Error("introspection failed",
			zap.String("driver", req.Driver),
			zap.String("error", logging.SanitizeError(err)))
		_ = ErrorResponse(w, http.StatusBadGateway, "introspection_failed", "could not introspect the datasource")
		return
	}

	if err := WriteJSON(w, http.StatusOK, IntrospectResponse{Tables: tables}); err != nil {
		h.logger.Error("Failed to encode introspect response", zap.Error(err))
	}
}
