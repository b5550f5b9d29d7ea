// Package server exposes the solver over HTTP.
//
// POST / takes {"query", "foreground"?, "background"?} and answers the
// assembled result JSON. Any failure past input validation answers 500
// with the plain body "Something went wrong"; the detail goes to the log
// and, when configured, to Sentry.
package server

import (
	"context"
	"net/http"

	"github.com/jonwraymond/mathproxy/auth"
	"github.com/jonwraymond/mathproxy/health"
	"github.com/jonwraymond/mathproxy/observe"
	"github.com/jonwraymond/mathproxy/resilience"
	"github.com/jonwraymond/mathproxy/solve"
)

// Solver answers one query. *solve.Orchestrator implements it.
type Solver interface {
	Handle(ctx context.Context, q solve.Query) (*solve.Result, error)
}

// Config wires the server's collaborators. Only Solver is required.
type Config struct {
	Solver Solver

	// Health serves /healthz, /readyz and /health when set.
	Health *health.Aggregator

	// Metrics serves /metrics when set.
	Metrics http.Handler

	// Auth gates POST /. Nil or empty leaves it open.
	Auth *auth.Chain

	// Limiter rate limits POST /. Nil disables limiting.
	Limiter *resilience.RateLimiter

	// Reporter receives internal errors. Nil discards them.
	Reporter Reporter

	Logger observe.Logger
	Tracer observe.Tracer
}

// Server is the mathproxy HTTP handler.
type Server struct {
	config  Config
	mux     *http.ServeMux
	handler http.Handler
}

// New creates a Server.
func New(config Config) *Server {
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Tracer == nil {
		config.Tracer = observe.NopTracer()
	}
	if config.Reporter == nil {
		config.Reporter = NopReporter()
	}

	s := &Server{config: config, mux: http.NewServeMux()}
	s.registerRoutes()

	var h http.Handler = s.mux
	h = CORSMiddleware(h)
	h = observe.NewMiddleware(config.Tracer, config.Logger).Wrap(h)
	s.handler = h
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
