package logging

import (
	"log/slog"
	"time"
)

// Field names shared by every component.
const (
	FieldService      = "service"
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldIP           = "ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldStatus       = "status"
	FieldDuration     = "duration_ms"
	FieldError        = "error"
	FieldQuery        = "query"
	FieldField        = "field"
	FieldOperator     = "operator"
	FieldTemplateID   = "template_id"
	FieldSavedQueryID = "saved_query_id"
	FieldComplexity   = "complexity"
	FieldConditions   = "conditions"
	FieldSubject      = "subject"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// IP returns a slog attribute for the client IP address.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for d in milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Int64(FieldDuration, d.Milliseconds())
}

// Error returns a slog attribute for an error. A nil error logs as "".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}

// Query returns a slog attribute for a compiled query string.
func Query(query string) slog.Attr {
	return slog.String(FieldQuery, query)
}

// Field returns a slog attribute for a schema field name.
func Field(name string) slog.Attr {
	return slog.String(FieldField, name)
}

// Operator returns a slog attribute for a condition operator.
func Operator[T ~string](op T) slog.Attr {
	return slog.String(FieldOperator, string(op))
}

// TemplateID returns a slog attribute for a template id.
func TemplateID(id string) slog.Attr {
	return slog.String(FieldTemplateID, id)
}

// SavedQueryID returns a slog attribute for a saved query id.
func SavedQueryID(id string) slog.Attr {
	return slog.String(FieldSavedQueryID, id)
}

// Complexity returns a slog attribute for an analyzer complexity score.
func Complexity(score int) slog.Attr {
	return slog.Int(FieldComplexity, score)
}

// Conditions returns a slog attribute for a condition count.
func Conditions(n int) slog.Attr {
	return slog.Int(FieldConditions, n)
}

// Subject returns a slog attribute for a message broker subject.
func Subject(subject string) slog.Attr {
	return slog.String(FieldSubject, subject)
}
