package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "mathproxy.toml", `
[server]
port = 9090
rate_limit = 5
rate_burst = 10

[tokens]
capacity = 4
restart_delay = "1s"

[render]
endpoint = "http://render.local/render"
steps = true

[cache]
ttl = "1h"
`)

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.RateLimit != 5 || cfg.Server.RateBurst != 10 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Tokens.Capacity != 4 || cfg.Tokens.RestartDelay.Std() != time.Second {
		t.Errorf("Tokens = %+v", cfg.Tokens)
	}
	if !cfg.Render.Steps || cfg.Render.Endpoint != "http://render.local/render" {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.Cache.TTL.Std() != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
	}
	// Untouched sections keep defaults.
	if cfg.Upstream.Language != "en" {
		t.Errorf("Upstream.Language = %q, want en", cfg.Upstream.Language)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeFile(t, "bad.toml", "[server]\nprot = 1\n")
	_, err := Load(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "server.prot") {
		t.Errorf("Load() error = %v, want unknown key server.prot", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "none.toml")); err == nil {
		t.Error("Load() error = nil for missing file")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "mathproxy.toml", "[server]\nport = 9090\n")
	t.Setenv("PORT", "7070")
	t.Setenv("MATHPROXY_API_KEYS", "a, b,,c")
	t.Setenv("MATHPROXY_RENDER_STEPS", "true")
	t.Setenv("MATHPROXY_CACHE_TTL", "5m")
	t.Setenv("MATHPROXY_LOG_LEVEL", "debug")

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070 from PORT", cfg.Server.Port)
	}
	if got := strings.Join(cfg.Auth.APIKeys, "|"); got != "a|b|c" {
		t.Errorf("APIKeys = %q, want a|b|c", got)
	}
	if !cfg.Render.Steps || cfg.Cache.TTL.Std() != 5*time.Minute || cfg.Observe.LogLevel != "debug" {
		t.Errorf("overrides not applied: %+v %+v %+v", cfg.Render, cfg.Cache, cfg.Observe)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	for name, v := range map[string]string{
		"PORT":                   "eighty",
		"MATHPROXY_RENDER_STEPS": "maybe",
		"MATHPROXY_CACHE_TTL":    "forever",
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, v)
			if _, err := Load(context.Background(), ""); err == nil {
				t.Errorf("Load() error = nil with %s=%s", name, v)
			}
		})
	}
}

func TestLoad_Secrets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "jwt"), []byte("from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MATHPROXY_TEST_KEY", "from-env")
	t.Setenv("MATHPROXY_TEST_RENDER_HOST", "render.internal")

	path := writeFile(t, "mathproxy.toml", `
[render]
endpoint = "http://${MATHPROXY_TEST_RENDER_HOST}/render"

[auth]
api_keys = ["secretref:env:MATHPROXY_TEST_KEY"]
jwt_secret = "secretref:file:jwt"

[secrets.file]
dir = "`+filepath.ToSlash(dir)+`"
`)

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Render.Endpoint != "http://render.internal/render" {
		t.Errorf("Render.Endpoint = %q", cfg.Render.Endpoint)
	}
	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0] != "from-env" {
		t.Errorf("APIKeys = %v", cfg.Auth.APIKeys)
	}
	if cfg.Auth.JWTSecret != "from-file" {
		t.Errorf("JWTSecret = %q", cfg.Auth.JWTSecret)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	path := writeFile(t, "mathproxy.toml", "[auth]\njwt_secret = \"${MATHPROXY_TEST_UNSET_SECRET}\"\n")
	_, err := Load(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "auth.jwt_secret") {
		t.Errorf("Load() error = %v, want auth.jwt_secret failure", err)
	}
}

func TestRedactedEncode(t *testing.T) {
	cfg := Default()
	cfg.Auth.APIKeys = []string{"k1", "k2"}
	cfg.Auth.JWTSecret = "s"
	cfg.Sentry.DSN = "https://key@sentry.example/1"

	var buf bytes.Buffer
	if err := cfg.Redacted().Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out := buf.String()
	for _, leak := range []string{"k1", "k2", "key@sentry"} {
		if strings.Contains(out, leak) {
			t.Errorf("encoded config leaks %q:\n%s", leak, out)
		}
	}
	if cfg.Auth.JWTSecret != "s" {
		t.Error("Redacted() modified the receiver")
	}

	var back Config
	if _, err := toml.Decode(out, &back); err != nil {
		t.Fatalf("decode encoded config: %v", err)
	}
	if back.Server.ReadHeaderTimeout != cfg.Server.ReadHeaderTimeout {
		t.Errorf("ReadHeaderTimeout = %v, want %v", back.Server.ReadHeaderTimeout, cfg.Server.ReadHeaderTimeout)
	}
}
