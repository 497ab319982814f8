// Package httphandler is the JSON API driving adapter.
package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/creditpanel/internal/application"
	"github.com/ericfisherdev/creditpanel/internal/domain/model"
)

// maxBodyBytes bounds the assess request body.
const maxBodyBytes = 64 << 10

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	assessSvc *application.AssessService
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(assessSvc *application.AssessService, logger *slog.Logger) *Handler {
	return &Handler{
		assessSvc: assessSvc,
		logger:    logger,
	}
}

// RegisterAPIRoutes registers the JSON API on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /api/v1/assess", h.Assess)
	mux.HandleFunc("GET /api/v1/applications", h.ListApplications)
	mux.HandleFunc("GET /api/v1/vocabulary", h.Vocabulary)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// Assess scores one applicant and records the result.
func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	if err := validateAssessRequest(body); err != nil {
		schemaErr, _ := isSchemaError(err)
		writeFieldError(w, schemaErr.Field, schemaErr.Error())
		return
	}

	var req AssessRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.assessSvc.Assess(r.Context(), req.toApplicant())
	if err != nil {
		var encErr *model.EncodingError
		switch {
		case errors.As(err, &encErr):
			field, ok := requestFields[encErr.Field]
			if !ok {
				field = encErr.Field
			}
			writeFieldError(w, field, encErr.Error())
		case errors.Is(err, model.ErrServiceUnavailable):
			writeError(w, http.StatusServiceUnavailable, "risk model not loaded")
		default:
			h.logger.Error("assessment failed", "request_id", RequestIDFrom(r.Context()), "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toAssessmentResponse(out))
}

// ListApplications returns every recorded assessment, most recent first.
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	records, err := h.assessSvc.History(r.Context())
	if err != nil {
		h.logger.Error("failed to list applications", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]ApplicationResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toApplicationResponse(rec))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Vocabulary returns the accepted labels of every categorical field, keyed by
// request field name.
func (h *Handler) Vocabulary(w http.ResponseWriter, _ *http.Request) {
	vocab := h.assessSvc.Vocabulary()
	if vocab == nil {
		writeError(w, http.StatusServiceUnavailable, "risk model not loaded")
		return
	}

	fields := make(map[string][]string, len(model.CategoricalFields))
	for _, f := range model.CategoricalFields {
		fields[requestFields[f]] = vocab.Labels(f)
	}

	writeJSON(w, http.StatusOK, VocabularyResponse{Fields: fields})
}

// Health reports liveness and whether a model is loaded. A degraded service
// still answers 200 so that history stays reachable.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if !h.assessSvc.Ready() {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      status,
		Time:        time.Now().UTC().Format(time.RFC3339),
		ModelLoaded: h.assessSvc.Ready(),
	})
}
