package httputil

import (
	"net/http"
)

// JSONAPIResource is one resource object. Attributes is marshalled as is.
type JSONAPIResource struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Attributes interface{}       `json:"attributes"`
	Links      map[string]string `json:"links,omitempty"`
}

type jsonAPIDocument struct {
	Data interface{}  `json:"data"`
	Meta *jsonAPIMeta `json:"meta,omitempty"`
}

type jsonAPIMeta struct {
	Pagination pageMeta `json:"pagination"`
}

type pageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// WriteJSONAPIResource writes a document whose primary data is res.
func WriteJSONAPIResource(w http.ResponseWriter, status int, res JSONAPIResource) {
	WriteJSONAPI(w, status, jsonAPIDocument{Data: res})
}

// WriteJSONAPICollection writes resources as primary data. A nil slice is
// written as []. Pagination, when given, is reported under meta.pagination.
func WriteJSONAPICollection(w http.ResponseWriter, status int, resources []JSONAPIResource, pagination *Pagination) {
	if resources == nil {
		resources = []JSONAPIResource{}
	}
	doc := jsonAPIDocument{Data: resources}
	if pagination != nil {
		doc.Meta = &jsonAPIMeta{Pagination: pageMeta{
			Page:       pagination.Page,
			Limit:      pagination.Limit,
			Total:      pagination.Total,
			TotalPages: pagination.Pages(),
		}}
	}
	WriteJSONAPI(w, status, doc)
}

// JSONAPIErrorObject is one entry of an errors document.
type JSONAPIErrorObject struct {
	Status int    `json:"status,omitempty"`
	Code   string `json:"code,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// errorKind fixes the status, code and title of a family of errors.
type errorKind struct {
	status int
	code   string
	title  string
}

var (
	kindValidation  = errorKind{http.StatusBadRequest, "validation_failed", "Validation Failed"}
	kindNotFound    = errorKind{http.StatusNotFound, "not_found", "Resource Not Found"}
	kindUnavailable = errorKind{http.StatusServiceUnavailable, "unavailable", "Service Unavailable"}
	kindInternal    = errorKind{http.StatusInternalServerError, "internal_error", "Internal Server Error"}
)

func (k errorKind) write(w http.ResponseWriter, detail string) {
	WriteJSONAPIError(w, k.status, k.code, k.title, detail)
}

// WriteJSONAPIValidationError writes a 400 for a rejected request body or
// condition.
func WriteJSONAPIValidationError(w http.ResponseWriter, detail string) {
	kindValidation.write(w, detail)
}

// WriteJSONAPINotFoundError writes a 404 naming the missing resource.
func WriteJSONAPINotFoundError(w http.ResponseWriter, resourceType, id string) {
	kindNotFound.write(w, "The requested "+resourceType+" with ID '"+id+"' was not found")
}

// WriteJSONAPIUnavailableError writes a 503 for a collaborator that is not
// configured or not reachable.
func WriteJSONAPIUnavailableError(w http.ResponseWriter, detail string) {
	kindUnavailable.write(w, detail)
}

// WriteJSONAPIInternalError writes a 500. detail is shown to clients, so log
// the underlying error first.
func WriteJSONAPIInternalError(w http.ResponseWriter, detail string) {
	kindInternal.write(w, detail)
}
