package server

import (
	"net/http"

	"github.com/jonwraymond/mathproxy/auth"
	"github.com/jonwraymond/mathproxy/health"
)

// registerRoutes wires all endpoints onto the server mux. /metrics is left
// uncompressed because the Prometheus handler negotiates its own encoding.
func (s *Server) registerRoutes() {
	solveHandler := http.Handler(http.HandlerFunc(s.handleSolve))
	solveHandler = RateLimitMiddleware(s.config.Limiter)(solveHandler)
	solveHandler = auth.Middleware(s.config.Auth, s.config.Logger)(solveHandler)
	s.mux.Handle("POST /{$}", GzipMiddleware(solveHandler))

	if agg := s.config.Health; agg != nil {
		s.mux.Handle("GET /healthz", health.LivenessHandler())
		s.mux.Handle("GET /readyz", health.ReadinessHandler(agg))
		s.mux.Handle("GET /health", GzipMiddleware(health.DetailedHandler(agg)))
	}
	if s.config.Metrics != nil {
		s.mux.Handle("GET /metrics", s.config.Metrics)
	}
}
