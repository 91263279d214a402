// Package api exposes the HTTP interface for the resolver service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mbellgrove/linkweaver/internal/metrics"
	"github.com/mbellgrove/linkweaver/internal/pipeline"
	"github.com/mbellgrove/linkweaver/internal/queue"
	"github.com/mbellgrove/linkweaver/internal/resource"
)

// IDGenerator produces request IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// Server wires HTTP handlers to the pipeline and queue.
type Server struct {
	router chi.Router
	pipe   pipeline.Transformer
	queue  queue.Queue
	idGen  IDGenerator
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes. The queue
// may be nil, which disables asynchronous submission.
func NewServer(pipe pipeline.Transformer, q queue.Queue, idGen IDGenerator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		pipe:   pipe,
		queue:  q,
		idGen:  idGen,
		logger: logger,
	}
	r := chi.NewRouter()
	r.Use(s.loggingMiddleware)
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/resolve", s.resolve)
		r.Post("/resolutions", s.submitResolution)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type resolveRequest struct {
	URL    string `json:"url"`
	Origin string `json:"origin"`
	Label  string `json:"label"`
}

type resolveResponse struct {
	RequestID string            `json:"request_id"`
	Resource  resource.Resource `json:"resource"`
	Error     string            `json:"error,omitempty"`
}

// resolve runs the pipeline synchronously and returns the resolved
// resource.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeResolveRequest(w, r)
	if !ok {
		return
	}

	id, err := s.idGen.NewID()
	if err != nil {
		s.logger.Error("id generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "id generation failed")
		return
	}

	resolved, err := s.pipe.Transform(r.Context(), resource.New(req.URL, req.Origin, req.Label))
	if err != nil {
		s.logger.Error("pipeline failed", zap.String("url", req.URL), zap.Error(err))
		writeError(w, http.StatusBadGateway, "resolution failed")
		return
	}

	response := resolveResponse{RequestID: id, Resource: resolved}
	if resolved.IsInvalid() && resolved.Err != nil {
		response.Error = resolved.Err.Error()
	}
	writeJSON(w, http.StatusOK, response)
}

// submitResolution enqueues the URL for asynchronous resolution by the
// worker.
func (s *Server) submitResolution(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		writeError(w, http.StatusServiceUnavailable, "asynchronous resolution is not configured")
		return
	}
	req, ok := s.decodeResolveRequest(w, r)
	if !ok {
		return
	}

	id, err := s.idGen.NewID()
	if err != nil {
		s.logger.Error("id generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "id generation failed")
		return
	}

	item := queue.Request{
		ID:        id,
		OriginURL: req.URL,
		Origin:    req.Origin,
		Label:     req.Label,
		Submitted: time.Now().UTC(),
	}
	if err := s.queue.Enqueue(r.Context(), item); err != nil {
		s.logger.Error("enqueue failed", zap.String("url", req.URL), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "queue unavailable")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"request_id": id})
}

func (s *Server) decodeResolveRequest(w http.ResponseWriter, r *http.Request) (resolveRequest, bool) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return resolveRequest{}, false
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return resolveRequest{}, false
	}
	return req, true
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("panic", rec))
					writeError(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
