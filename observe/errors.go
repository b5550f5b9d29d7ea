package observe

import "errors"

var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: sample_pct must be within [0, 1]")
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: invalid log level")
)

// Accepted names for the configuration's exporter and level fields. The
// empty string and "none" both mean off.
var (
	ValidTracingExporters = []string{"stdout", "otlp", "none", ""}
	ValidMetricsExporters = []string{"stdout", "otlp", "prometheus", "none", ""}
	ValidLogLevels        = []string{"debug", "info", "warn", "error", ""}
)

// RedactedFields are log field keys whose values are replaced with
// "[REDACTED]". Pooled upstream tokens travel under "token".
var RedactedFields = []string{
	"token",
	"authorization",
	"api_key",
	"jwt_secret",
	"secret",
	"password",
	"dsn",
}
