package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jonwraymond/mathproxy/secret"
)

// Load builds the configuration from defaults, the TOML file at path (if
// non-empty), the environment and secret references, then validates it.
func Load(ctx context.Context, path string) (Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.resolveSecrets(ctx); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EnvOverride maps one environment variable onto the configuration.
type EnvOverride struct {
	Name  string
	apply func(*Config, string) error
}

// EnvOverrides lists every variable Load consults.
var EnvOverrides = []EnvOverride{
	{"PORT", func(c *Config, v string) error { return setInt(&c.Server.Port, "PORT", v) }},
	{"MATHPROXY_HOST", func(c *Config, v string) error { c.Server.Host = v; return nil }},
	{"MATHPROXY_UPSTREAM_URL", func(c *Config, v string) error { c.Upstream.BaseURL = v; return nil }},
	{"MATHPROXY_TOKEN_CAPACITY", func(c *Config, v string) error {
		return setInt(&c.Tokens.Capacity, "MATHPROXY_TOKEN_CAPACITY", v)
	}},
	{"MATHPROXY_RENDER_ENDPOINT", func(c *Config, v string) error { c.Render.Endpoint = v; return nil }},
	{"MATHPROXY_RENDER_STEPS", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: MATHPROXY_RENDER_STEPS: %w", err)
		}
		c.Render.Steps = b
		return nil
	}},
	{"MATHPROXY_CACHE_TTL", func(c *Config, v string) error {
		if err := c.Cache.TTL.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("config: MATHPROXY_CACHE_TTL: %w", err)
		}
		return nil
	}},
	{"MATHPROXY_API_KEYS", func(c *Config, v string) error { c.Auth.APIKeys = splitList(v); return nil }},
	{"MATHPROXY_JWT_SECRET", func(c *Config, v string) error { c.Auth.JWTSecret = v; return nil }},
	{"MATHPROXY_LOG_LEVEL", func(c *Config, v string) error { c.Observe.LogLevel = v; return nil }},
	{"MATHPROXY_TRACING_EXPORTER", func(c *Config, v string) error { c.Observe.TracingExporter = v; return nil }},
	{"MATHPROXY_METRICS_EXPORTER", func(c *Config, v string) error { c.Observe.MetricsExporter = v; return nil }},
	{"MATHPROXY_SENTRY_DSN", func(c *Config, v string) error { c.Sentry.DSN = v; return nil }},
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, o := range EnvOverrides {
		v, ok := lookup(o.Name)
		if !ok || v == "" {
			continue
		}
		if err := o.apply(cfg, v); err != nil {
			return err
		}
	}
	return nil
}

func setInt(dst *int, name, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", name, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) resolveSecrets(ctx context.Context) error {
	res, err := secret.DefaultRegistry.Resolver(true, c.Secrets)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer res.Close()

	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"upstream.base_url", &c.Upstream.BaseURL},
		{"render.endpoint", &c.Render.Endpoint},
		{"auth.jwt_secret", &c.Auth.JWTSecret},
		{"sentry.dsn", &c.Sentry.DSN},
	} {
		v, err := res.ResolveValue(ctx, *f.dst)
		if err != nil {
			return fmt.Errorf("config: %s: %w", f.name, err)
		}
		*f.dst = v
	}

	keys, err := res.ResolveSlice(ctx, c.Auth.APIKeys)
	if err != nil {
		return fmt.Errorf("config: auth.api_keys%w", err)
	}
	c.Auth.APIKeys = keys
	return nil
}

const redacted = "[REDACTED]"

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if len(c.Auth.APIKeys) > 0 {
		keys := make([]string, len(c.Auth.APIKeys))
		for i := range keys {
			keys[i] = redacted
		}
		c.Auth.APIKeys = keys
	}
	if c.Auth.JWTSecret != "" {
		c.Auth.JWTSecret = redacted
	}
	if c.Sentry.DSN != "" {
		c.Sentry.DSN = redacted
	}
	return c
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
