// Package http serves the operation catalogue and script runner over HTTP.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/cadbridge"
	"github.com/aretw0/cadbridge/internal/logging"
	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/aretw0/cadbridge/pkg/registry"
	"github.com/aretw0/cadbridge/pkg/script"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultMaxBodyBytes bounds script and argument payloads.
const DefaultMaxBodyBytes = 1 << 20

// Server exposes an Automation over HTTP.
type Server struct {
	cad      *cadbridge.Automation
	ops      *registry.Registry
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	maxBody  int64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer serves metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// NewHandler creates the HTTP handler for cad.
func NewHandler(cad *cadbridge.Automation, opts ...Option) http.Handler {
	s := &Server{
		cad:      cad,
		ops:      script.Operations(cad),
		logger:   logging.NewNop(),
		gatherer: prometheus.DefaultGatherer,
		maxBody:  DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.GetStatus)
		r.Get("/operations", s.ListOperations)
		r.Post("/operations/{name}", s.ExecuteOperation)
		r.Post("/scripts", s.RunScript)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth reports liveness without touching the host.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetStatus reports the connected host and active document.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cad.Status(r.Context()))
}

// ListOperations returns the operation catalogue.
func (s *Server) ListOperations(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ops.Entries())
}

// ExecuteOperation runs one operation with the JSON object body as arguments.
func (s *Server) ExecuteOperation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	args := map[string]any{}
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: body must be a JSON object: %v", domain.ErrInvalidParameter, err))
			return
		}
	}

	v, err := s.ops.Execute(r.Context(), name, args)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"op": name, "result": v})
}

// RunScript runs the YAML or JSON script in the body.
func (s *Server) RunScript(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := script.Parse(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	runner := &script.Runner{Registry: s.ops, Session: s.cad.Session(), Logger: s.logger}
	res, err := runner.Run(r.Context(), doc)
	if err != nil {
		status := statusFor(err)
		s.logger.Warn("Script request failed", "script", doc.Name, "status", status, "err", err)
		s.writeJSON(w, status, map[string]any{"error": err.Error(), "result": res})
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errTooLarge
		}
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrInvalidParameter, err)
	}
	return body, nil
}

var errTooLarge = errors.New("request body too large")

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrUnknownName), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoActiveDocument), errors.Is(err, domain.ErrWrongDocumentType):
		return http.StatusConflict
	case errors.Is(err, domain.ErrConnection), errors.Is(err, domain.ErrNotConnected), errors.Is(err, domain.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrHostOperation):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("Request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
