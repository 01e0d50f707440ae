// Package service composes the query builder core with its optional
// execution, persistence and event collaborators.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/executor"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/repository"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/templates"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/validator"
	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
	"github.com/telhawk-systems/telhawk-querybuilder/common/logging"
	"github.com/telhawk-systems/telhawk-querybuilder/common/messaging"
)

var (
	ErrFieldNotFound       = errors.New("field not found")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrValidationFailed    = errors.New("validation failed")
	ErrExecutorUnavailable = errors.New("search executor not configured")
	ErrStoreUnavailable    = errors.New("saved query store not configured")
)

// QueryService provides the operations behind the HTTP, NATS and CLI surfaces.
type QueryService struct {
	reg       *fields.Registry
	validator *validator.Validator
	compiler  *query.Compiler
	templates *templates.Catalogue
	executor  executor.Executor
	store     repository.Store
	events    messaging.Publisher
	version   string
	startedAt time.Time
	logger    *logging.Logger
}

// Option configures a QueryService.
type Option func(*QueryService)

// WithRegistry replaces the default field registry.
func WithRegistry(reg *fields.Registry) Option {
	return func(s *QueryService) { s.reg = reg }
}

// WithTemplates replaces the built-in template catalogue.
func WithTemplates(c *templates.Catalogue) Option {
	return func(s *QueryService) { s.templates = c }
}

// WithExecutor enables Search.
func WithExecutor(e executor.Executor) Option {
	return func(s *QueryService) { s.executor = e }
}

// WithStore enables the saved query operations.
func WithStore(st repository.Store) Option {
	return func(s *QueryService) { s.store = st }
}

// WithPublisher publishes saved query events.
func WithPublisher(p messaging.Publisher) Option {
	return func(s *QueryService) { s.events = p }
}

// WithVersion sets the version reported by Health.
func WithVersion(v string) Option {
	return func(s *QueryService) { s.version = v }
}

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *QueryService) { s.logger = l }
}

// New builds a QueryService. Without options it serves the built-in registry
// and templates with search and saved queries disabled.
func New(opts ...Option) *QueryService {
	s := &QueryService{
		version:   "dev",
		startedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reg == nil {
		s.reg = fields.Default()
	}
	if s.templates == nil {
		s.templates = templates.Default()
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	s.logger = s.logger.Component("query-service")
	s.validator = validator.New(s.reg)
	s.compiler = query.NewCompiler(s.validator.Strict())
	return s
}

// Registry exposes the field registry.
func (s *QueryService) Registry() *fields.Registry {
	return s.reg
}

// validationError wraps ErrValidationFailed with a reason.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}

// HealthStatus reports service and collaborator state.
type HealthStatus struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Uptime     string            `json:"uptime"`
	Components map[string]string `json:"components"`
}

// pinger is implemented by collaborators that can check their backend.
type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports "ok" unless a configured collaborator is unreachable, in
// which case the status is "degraded". Unconfigured collaborators are
// reported as "disabled".
func (s *QueryService) Health(ctx context.Context) HealthStatus {
	h := HealthStatus{
		Status:     "ok",
		Version:    s.version,
		Uptime:     time.Since(s.startedAt).Round(time.Second).String(),
		Components: map[string]string{},
	}
	degrade := func(name string, err error) {
		h.Components[name] = err.Error()
		h.Status = "degraded"
	}

	switch e := s.executor.(type) {
	case nil:
		h.Components["executor"] = "disabled"
	case pinger:
		if err := e.Ping(ctx); err != nil {
			degrade("executor", err)
		} else {
			h.Components["executor"] = "ok"
		}
	default:
		h.Components["executor"] = "ok"
	}

	if s.store == nil {
		h.Components["store"] = "disabled"
	} else if _, err := s.store.List(ctx); err != nil {
		degrade("store", err)
	} else {
		h.Components["store"] = "ok"
	}

	if client, ok := s.events.(messaging.Client); ok {
		if st := messaging.CheckClientHealth(ctx, client); !st.Connected {
			degrade("nats", errors.New(st.Error))
		} else {
			h.Components["nats"] = "ok"
		}
	} else if s.events == nil {
		h.Components["nats"] = "disabled"
	}
	return h
}
