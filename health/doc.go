// Package health reports whether the proxy can answer queries.
//
// A Checker inspects one component and returns a Result whose Status is
// Healthy, Degraded or Unhealthy. The proxy registers three of them on an
// Aggregator:
//
//   - token_pool: degraded while the pool is between runs, has restarted
//     since the previous check, or has no token ready.
//   - cache: reports the number of stored responses; degraded past an
//     optional entry ceiling.
//   - memory: heap usage against a ceiling, since the response cache never
//     evicts by default.
//
// The aggregate is served over HTTP:
//
//	mux.Handle("GET /healthz", health.LivenessHandler())
//	mux.Handle("GET /readyz", health.ReadinessHandler(agg))
//	mux.Handle("GET /health", health.DetailedHandler(agg))
//
// Liveness never runs checks. Readiness and the detailed view answer 503
// when any check is unhealthy; a degraded proxy still answers 200.
package health
