package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/jonwraymond/mathproxy/observe"
	"github.com/jonwraymond/mathproxy/token"
	"github.com/jonwraymond/mathproxy/upstream"
)

var (
	ErrInvalidPort     = errors.New("config: invalid port")
	ErrInvalidURL      = errors.New("config: invalid url")
	ErrInvalidCapacity = errors.New("config: invalid token capacity")
	ErrInvalidLimit    = errors.New("config: invalid rate limit")
	ErrInvalidExporter = errors.New("config: invalid exporter")
	ErrInvalidLogLevel = errors.New("config: invalid log level")
)

// Config is the full daemon configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Upstream UpstreamConfig `toml:"upstream"`
	Tokens   TokensConfig   `toml:"tokens"`
	Render   RenderConfig   `toml:"render"`
	Cache    CacheConfig    `toml:"cache"`
	Auth     AuthConfig     `toml:"auth"`
	Observe  ObserveConfig  `toml:"observe"`
	Sentry   SentryConfig   `toml:"sentry"`

	// Secrets configures secret providers by name, e.g. [secrets.file] dir.
	Secrets map[string]map[string]any `toml:"secrets,omitempty"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// RateLimit is the sustained requests per second on the solve route.
	// Zero disables limiting.
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`

	ReadHeaderTimeout Duration `toml:"read_header_timeout"`
	ShutdownTimeout   Duration `toml:"shutdown_timeout"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type UpstreamConfig struct {
	BaseURL          string   `toml:"base_url"`
	UserAgent        string   `toml:"user_agent"`
	Language         string   `toml:"language"`
	SolveTimeout     Duration `toml:"solve_timeout"`
	HandshakeTimeout Duration `toml:"handshake_timeout"`
	BreakerFailures  int      `toml:"breaker_failures"`
	BreakerReset     Duration `toml:"breaker_reset"`
}

type TokensConfig struct {
	Capacity     int      `toml:"capacity"`
	QueueSize    int      `toml:"queue_size"`
	RestartDelay Duration `toml:"restart_delay"`
}

type RenderConfig struct {
	// Endpoint is the LaTeX render service. Empty selects the built-in
	// text renderer.
	Endpoint      string   `toml:"endpoint"`
	MaxConcurrent int      `toml:"max_concurrent"`
	QueueTimeout  Duration `toml:"queue_timeout"`
	Attempts      int      `toml:"attempts"`
	Timeout       Duration `toml:"timeout"`

	// Steps also renders every intermediate step.
	Steps bool `toml:"steps"`
}

type CacheConfig struct {
	// TTL expires entries lazily. Zero keeps them forever.
	TTL Duration `toml:"ttl"`

	// MaxEntries degrades the cache health check once exceeded.
	MaxEntries int `toml:"max_entries"`
}

type AuthConfig struct {
	APIKeys      []string `toml:"api_keys"`
	APIKeyHeader string   `toml:"api_key_header"`
	JWTSecret    string   `toml:"jwt_secret"`
	JWTIssuer    string   `toml:"jwt_issuer"`
	JWTAudience  string   `toml:"jwt_audience"`
}

type ObserveConfig struct {
	ServiceName     string  `toml:"service_name"`
	LogLevel        string  `toml:"log_level"`
	TracingExporter string  `toml:"tracing_exporter"`
	SamplePct       float64 `toml:"sample_pct"`
	MetricsExporter string  `toml:"metrics_exporter"`
}

type SentryConfig struct {
	DSN         string  `toml:"dsn"`
	Environment string  `toml:"environment"`
	SampleRate  float64 `toml:"sample_rate"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:              8080,
			ReadHeaderTimeout: Duration(10 * time.Second),
			ShutdownTimeout:   Duration(10 * time.Second),
		},
		Upstream: UpstreamConfig{
			BaseURL:          upstream.DefaultBaseURL,
			UserAgent:        upstream.DefaultUserAgent,
			Language:         "en",
			SolveTimeout:     Duration(30 * time.Second),
			HandshakeTimeout: Duration(15 * time.Second),
			BreakerReset:     Duration(30 * time.Second),
		},
		Tokens: TokensConfig{
			Capacity:     token.Capacity,
			RestartDelay: Duration(token.DefaultRestartDelay),
		},
		Render: RenderConfig{
			MaxConcurrent: 16,
			Attempts:      2,
			Timeout:       Duration(10 * time.Second),
		},
		Observe: ObserveConfig{
			ServiceName:     "mathproxy",
			LogLevel:        "info",
			TracingExporter: "none",
			SamplePct:       1,
			MetricsExporter: "prometheus",
		},
		Sentry: SentryConfig{SampleRate: 1},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}
	if c.Server.RateLimit < 0 || (c.Server.RateLimit > 0 && c.Server.RateBurst < 0) {
		return fmt.Errorf("%w: rate %v burst %d", ErrInvalidLimit, c.Server.RateLimit, c.Server.RateBurst)
	}
	if err := checkURL("upstream.base_url", c.Upstream.BaseURL, true); err != nil {
		return err
	}
	if err := checkURL("render.endpoint", c.Render.Endpoint, false); err != nil {
		return err
	}
	if c.Tokens.Capacity < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, c.Tokens.Capacity)
	}
	if !slices.Contains(observe.ValidLogLevels, c.Observe.LogLevel) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Observe.LogLevel)
	}
	if !slices.Contains(observe.ValidTracingExporters, c.Observe.TracingExporter) {
		return fmt.Errorf("%w: tracing %q", ErrInvalidExporter, c.Observe.TracingExporter)
	}
	if !slices.Contains(observe.ValidMetricsExporters, c.Observe.MetricsExporter) {
		return fmt.Errorf("%w: metrics %q", ErrInvalidExporter, c.Observe.MetricsExporter)
	}
	return nil
}

func checkURL(field, raw string, required bool) error {
	if raw == "" && !required {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s %q", ErrInvalidURL, field, raw)
	}
	return nil
}

// ObserveConfig converts to the observe package configuration.
func (c *Config) ObserveConfig(version string) observe.Config {
	return observe.Config{
		ServiceName: c.Observe.ServiceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   enabled(c.Observe.TracingExporter),
			Exporter:  c.Observe.TracingExporter,
			SamplePct: c.Observe.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  enabled(c.Observe.MetricsExporter),
			Exporter: c.Observe.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.Observe.LogLevel,
		},
	}
}

func enabled(exporter string) bool {
	return exporter != "" && exporter != "none"
}
