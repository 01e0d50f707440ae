// Package server wires the query builder HTTP API.
package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/handlers"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/metrics"
	"github.com/telhawk-systems/telhawk-querybuilder/common/config"
	"github.com/telhawk-systems/telhawk-querybuilder/common/logging"
	"github.com/telhawk-systems/telhawk-querybuilder/common/middleware"
)

// NewRouter constructs a ServeMux with query builder routes registered.
func NewRouter(h *handlers.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Schema
	mux.HandleFunc("GET /api/v1/categories", h.ListCategories)
	mux.HandleFunc("GET /api/v1/fields", h.ListFields)
	mux.HandleFunc("GET /api/v1/fields/{name}", h.GetField)
	mux.HandleFunc("GET /api/v1/fields/{name}/operators", h.FieldOperators)
	mux.HandleFunc("GET /api/v1/operators", h.ListOperators)

	// Building and analysis
	mux.HandleFunc("POST /api/v1/validate", h.Validate)
	mux.HandleFunc("POST /api/v1/compile", h.Compile)
	mux.HandleFunc("POST /api/v1/analyze", h.Analyze)
	mux.HandleFunc("GET /api/v1/analyze/live", h.LiveAnalyze)

	// Templates
	mux.HandleFunc("GET /api/v1/templates", h.ListTemplates)
	mux.HandleFunc("GET /api/v1/templates/{id}", h.GetTemplate)
	mux.HandleFunc("POST /api/v1/templates/{id}/expand", h.ExpandTemplate)

	// Execution and saved queries
	mux.HandleFunc("POST /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/saved-queries", h.ListSavedQueries)
	mux.HandleFunc("POST /api/v1/saved-queries", h.CreateSavedQuery)
	mux.HandleFunc("GET /api/v1/saved-queries/{id}", h.GetSavedQuery)
	mux.HandleFunc("DELETE /api/v1/saved-queries/{id}", h.DeleteSavedQuery)

	return mux
}

// Server is the query builder HTTP server with its middleware stack.
type Server struct {
	http    *http.Server
	limiter *middleware.RateLimiter
	logger  *logging.Logger
}

// New wraps the router in request id, access logging, CORS and, when
// enabled, per-client rate limiting.
func New(cfg *config.Config, h *handlers.Handler, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Server{logger: logger.Component("http")}

	mws := []func(http.Handler) http.Handler{
		middleware.RequestID,
		s.observe,
		middleware.CORS(middleware.DefaultCORSConfig(cfg.CORS.AllowedOrigins)),
	}
	if cfg.RateLimit.Enabled {
		s.limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			QPS:   cfg.RateLimit.QPS,
			Burst: cfg.RateLimit.Burst,
			OnReject: func(string) {
				metrics.RateLimitHits.Inc()
			},
		}, logger.Logger)
		mws = append(mws, s.limiter.Middleware)
	}

	s.http = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      middleware.Chain(NewRouter(h), mws...),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks until the server stops. A clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("query builder listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.http.Shutdown(ctx)
}

// CheckOrigin builds the websocket origin policy: requests without an Origin
// header and same-host origins are accepted, as are configured CORS origins.
func CheckOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if middleware.OriginAllowed(origin, allowed) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// observe logs each request and records HTTP metrics under the matched
// route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		if route == "GET /healthz" || route == "GET /metrics" {
			return
		}
		s.logger.InfoContext(r.Context(), "request completed",
			logging.Method(r.Method),
			logging.Path(r.URL.Path),
			logging.Status(rec.status),
			logging.Duration(elapsed))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets the live analysis socket take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
