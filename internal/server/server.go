package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hn-digest/trigger/internal/metrics"
	"github.com/hn-digest/trigger/internal/trigger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HeaderTriggerSecret carries the shared secret on POST /trigger.
const HeaderTriggerSecret = "X-Trigger-Secret"

const (
	bodyTriggered    = "Workflow triggered"
	bodyUnauthorized = "Unauthorized"
	bodyHealthy      = "ok"
	bodyInfo         = "hn-digest trigger"
)

// Options configures the HTTP surface. Metrics and Gatherer are optional.
type Options struct {
	// Secret must match HeaderTriggerSecret; empty rejects every trigger.
	Secret   string
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// Server serves /trigger, /health and /metrics. Depends only on trigger.Dispatcher.
type Server struct {
	dispatcher trigger.Dispatcher
	secret     string
	metrics    *metrics.Metrics
	http       *http.Server
	log        *slog.Logger
}

// NewServer returns an HTTP server that dispatches through d.
func NewServer(addr string, d trigger.Dispatcher, opts Options) *Server {
	srv := &Server{dispatcher: d, secret: opts.Secret, metrics: opts.Metrics, log: slog.Default()}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(srv.logRequests)

	r.Post("/trigger", srv.handleTrigger)
	r.HandleFunc("/health", srv.handleHealth)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	// Unmatched paths and methods, including GET /trigger, get the info body.
	r.NotFound(srv.handleDefault)
	r.MethodNotAllowed(srv.handleDefault)

	srv.http = &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	return srv
}

// Handler exposes the router (tests, embedding).
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		if s.metrics != nil {
			s.metrics.IncUnauthorized()
		}
		s.log.Warn("trigger rejected", "remote", r.RemoteAddr, "secret_configured", s.secret != "")
		writeText(w, http.StatusUnauthorized, bodyUnauthorized)
		return
	}
	// A client hanging up must not abort a dispatch already in flight.
	ctx := context.WithoutCancel(r.Context())
	if err := s.dispatcher.Dispatch(ctx, trigger.SourceHTTP); err != nil {
		writeText(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}
	writeText(w, http.StatusOK, bodyTriggered)
}

func (s *Server) authorized(r *http.Request) bool {
	if s.secret == "" {
		return false
	}
	got := r.Header.Get(HeaderTriggerSecret)
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, bodyHealthy)
}

func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, bodyInfo)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		level := slog.LevelInfo
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			level = slog.LevelDebug
		}
		s.log.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
