package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestRegistry_RegisterAndCreate(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register("stub", func(map[string]any) (Provider, error) {
		return &stubProvider{name: "stub"}, nil
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	p, err := reg.Create("stub", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Name() != "stub" {
		t.Errorf("Name() = %q, want stub", p.Name())
	}
}

func TestRegistry_RegisterInvalid(t *testing.T) {
	reg := NewRegistry()
	factory := func(map[string]any) (Provider, error) { return &stubProvider{name: "stub"}, nil }

	if err := reg.Register(" ", factory); err == nil {
		t.Error("expected error for blank name")
	}
	if err := reg.Register("stub", nil); err == nil {
		t.Error("expected error for nil factory")
	}
	_ = reg.Register("stub", factory)
	if err := reg.Register("stub", factory); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestRegistry_CreateUnknown(t *testing.T) {
	if _, err := NewRegistry().Create("missing", nil); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Create() error = %v, want ErrUnknownProvider", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	if got := DefaultRegistry.List(); !slices.Equal(got, []string{"env", "file"}) {
		t.Errorf("List() = %v, want [env file]", got)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "key"), []byte("from-file"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MATHPROXY_TEST_KEY", "from-env")

	res, err := DefaultRegistry.Resolver(true, map[string]map[string]any{
		"file": {"dir": dir},
	})
	if err != nil {
		t.Fatalf("Resolver() error = %v", err)
	}
	defer res.Close()

	got, err := res.ResolveSlice(context.Background(), []string{
		"secretref:env:MATHPROXY_TEST_KEY",
		"secretref:file:key",
	})
	if err != nil {
		t.Fatalf("ResolveSlice() error = %v", err)
	}
	if !slices.Equal(got, []string{"from-env", "from-file"}) {
		t.Errorf("ResolveSlice() = %v", got)
	}
}

func TestDefaultRegistry_BadFileConfig(t *testing.T) {
	_, err := DefaultRegistry.Resolver(true, map[string]map[string]any{
		"file": {"dir": 42},
	})
	if err == nil {
		t.Error("expected error for non-string dir")
	}
}
