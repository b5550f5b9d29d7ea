// Package observe provides the logging, tracing and metrics primitives used
// across the proxy.
//
// Components receive a Logger, a Tracer and a Metrics value at construction
// time. Each has a no-op implementation so that tests and embedders can leave
// observability unwired. The Observer sets up OpenTelemetry providers and the
// configured exporters for a running process.
package observe
