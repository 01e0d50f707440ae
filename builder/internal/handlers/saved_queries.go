package handlers

import (
	"net/http"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/repository"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/service"
	"github.com/telhawk-systems/telhawk-querybuilder/common/httputil"
)

const (
	savedQueryType   = "saved_query"
	savedQueriesPath = "/api/v1/saved-queries/"
	defaultPageSize  = 50
	maxPageSize      = 500
)

func savedQueryResource(q repository.SavedQuery) httputil.JSONAPIResource {
	return httputil.JSONAPIResource{
		Type:       savedQueryType,
		ID:         q.ID,
		Attributes: q,
		Links:      map[string]string{"self": savedQueriesPath + q.ID},
	}
}

// ListSavedQueries handles GET /api/v1/saved-queries?page=&limit=
func (h *Handler) ListSavedQueries(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListSavedQueries(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p := httputil.ParsePagination(r, defaultPageSize, maxPageSize)
	p.Total = len(list)
	start, end := p.Window(len(list))

	resources := make([]httputil.JSONAPIResource, 0, end-start)
	for _, q := range list[start:end] {
		resources = append(resources, savedQueryResource(q))
	}
	httputil.WriteJSONAPICollection(w, http.StatusOK, resources, &p)
}

// CreateSavedQuery handles POST /api/v1/saved-queries
func (h *Handler) CreateSavedQuery(w http.ResponseWriter, r *http.Request) {
	var req service.SaveRequest
	if err := httputil.DecodeJSON(w, r, &req, httputil.DefaultMaxBodyBytes); err != nil {
		httputil.WriteJSONAPIValidationError(w, err.Error())
		return
	}
	q, err := h.svc.SaveQuery(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if q.Version > 1 {
		status = http.StatusOK
	}
	w.Header().Set("Location", savedQueriesPath+q.ID)
	httputil.WriteJSONAPIResource(w, status, savedQueryResource(*q))
}

// GetSavedQuery handles GET /api/v1/saved-queries/{id}
func (h *Handler) GetSavedQuery(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.GetSavedQuery(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSONAPIResource(w, http.StatusOK, savedQueryResource(*q))
}

// DeleteSavedQuery handles DELETE /api/v1/saved-queries/{id}
func (h *Handler) DeleteSavedQuery(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSavedQuery(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
