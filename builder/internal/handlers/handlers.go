// Package handlers serves the query builder HTTP API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/metrics"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/repository"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/service"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/analyzer"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
	"github.com/telhawk-systems/telhawk-querybuilder/common/httputil"
	"github.com/telhawk-systems/telhawk-querybuilder/common/logging"
)

type Handler struct {
	svc      *service.QueryService
	tracker  *analyzer.Tracker
	upgrader websocket.Upgrader
	logger   *logging.Logger
}

// NewHandler creates a handler. checkOrigin decides which browser origins may
// open the live analysis socket; nil allows same-origin requests only.
func NewHandler(svc *service.QueryService, checkOrigin func(*http.Request) bool) *Handler {
	return &Handler{
		svc:     svc,
		tracker: analyzer.NewTracker(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		logger: logging.Default().Component("handlers"),
	}
}

// HealthCheck handles GET /healthz
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.svc.Health(r.Context()))
}

// ListCategories handles GET /api/v1/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": h.svc.Categories(),
	})
}

// ListFields handles GET /api/v1/fields?category=
func (h *Handler) ListFields(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"fields": h.svc.Fields(r.URL.Query().Get("category")),
	})
}

// GetField handles GET /api/v1/fields/{name}
func (h *Handler) GetField(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.Field(r.PathValue("name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

// FieldOperators handles GET /api/v1/fields/{name}/operators
func (h *Handler) FieldOperators(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	ops, err := h.svc.Operators(name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"field":     name,
		"operators": ops,
	})
}

// ListOperators handles GET /api/v1/operators
func (h *Handler) ListOperators(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"operators": h.svc.AllOperators(),
	})
}

// ValidateRequest is the body of POST /api/v1/validate.
type ValidateRequest struct {
	Field    string          `json:"field"`
	Value    string          `json:"value"`
	Operator fields.Operator `json:"operator"`
}

// Validate handles POST /api/v1/validate. Invalid values are reported in the
// body with status 200.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := httputil.DecodeJSON(w, r, &req, httputil.DefaultMaxBodyBytes); err != nil {
		httputil.WriteJSONAPIValidationError(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.svc.Validate(req.Field, req.Value, req.Operator))
}

// CompileRequest is the body of POST /api/v1/compile.
type CompileRequest struct {
	Conditions []query.Condition `json:"conditions"`
}

// Compile handles POST /api/v1/compile
func (h *Handler) Compile(w http.ResponseWriter, r *http.Request) {
	var req CompileRequest
	if err := httputil.DecodeJSON(w, r, &req, httputil.DefaultMaxBodyBytes); err != nil {
		httputil.WriteJSONAPIValidationError(w, err.Error())
		return
	}
	res := h.svc.Compile(req.Conditions)
	h.logger.DebugContext(r.Context(), "query compiled",
		logging.Conditions(len(req.Conditions)),
		logging.Complexity(res.Analysis.ComplexityScore))
	httputil.WriteJSON(w, http.StatusOK, res)
}

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	Query string `json:"query"`
}

// Analyze handles POST /api/v1/analyze
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := httputil.DecodeJSON(w, r, &req, httputil.DefaultMaxBodyBytes); err != nil {
		httputil.WriteJSONAPIValidationError(w, err.Error())
		return
	}
	metrics.AnalysesTotal.WithLabelValues("http").Inc()
	httputil.WriteJSON(w, http.StatusOK, h.svc.Analyze(req.Query))
}

// ListTemplates handles GET /api/v1/templates
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":   h.svc.TemplatesVersion(),
		"templates": h.svc.Templates(),
	})
}

// GetTemplate handles GET /api/v1/templates/{id}
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Template(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

// ExpandTemplate handles POST /api/v1/templates/{id}/expand
func (h *Handler) ExpandTemplate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, err := h.svc.ExpandTemplate(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.DebugContext(r.Context(), "template expanded", logging.TemplateID(id))
	httputil.WriteJSON(w, http.StatusOK, res)
}

// Search handles POST /api/v1/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req service.SearchRequest
	if err := httputil.DecodeJSON(w, r, &req, httputil.DefaultMaxBodyBytes); err != nil {
		httputil.WriteJSONAPIValidationError(w, err.Error())
		return
	}
	res, err := h.svc.Search(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// writeError maps service errors onto JSON:API error responses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidationFailed):
		httputil.WriteJSONAPIValidationError(w, err.Error())
	case errors.Is(err, service.ErrFieldNotFound):
		httputil.WriteJSONAPINotFoundError(w, "field", r.PathValue("name"))
	case errors.Is(err, service.ErrTemplateNotFound):
		httputil.WriteJSONAPINotFoundError(w, "template", r.PathValue("id"))
	case errors.Is(err, repository.ErrSavedQueryNotFound):
		httputil.WriteJSONAPINotFoundError(w, "saved_query", r.PathValue("id"))
	case errors.Is(err, service.ErrExecutorUnavailable), errors.Is(err, service.ErrStoreUnavailable):
		httputil.WriteJSONAPIUnavailableError(w, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "request failed", logging.Error(err))
		httputil.WriteJSONAPIInternalError(w, "internal server error")
	}
}
