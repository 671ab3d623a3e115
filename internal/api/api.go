// Package api serves validation runs over HTTP: batch submission, stored
// run inspection, and the reporting views built from the latest run.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/sells-group/provdir/internal/pipeline"
	"github.com/sells-group/provdir/internal/store"
)

// Server wires the run store and pipeline into an HTTP API.
type Server struct {
	store    store.Store
	pipeline *pipeline.Pipeline
	limiter  *rate.Limiter
	origins  []string
}

// Option adjusts how a Server is built.
type Option func(*Server)

// WithRateLimit caps request throughput across all clients. Non-positive
// values keep the default.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 && burst > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithAllowedOrigins sets the CORS origin allowlist.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// New builds a Server around a run store and a configured pipeline.
func New(st store.Store, p *pipeline.Pipeline, opts ...Option) *Server {
	s := &Server{
		store:    st,
		pipeline: p,
		limiter:  rate.NewLimiter(10, 20),
		origins:  []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler assembles the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.throttle)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/providers", s.handleListProviders)
		r.Get("/providers/{recordID}", s.handleGetProvider)
		r.Get("/providers/{recordID}/outreach", s.handleOutreach)
		r.Get("/review-queue", s.handleReviewQueue)
		r.Get("/stats", s.handleStats)
		r.Get("/trends", s.handleTrends)
	})

	return r
}
