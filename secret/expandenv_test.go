package secret

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("MATHPROXY_TEST_HOST", "render.local")

	got, err := ExpandEnvStrict("http://${MATHPROXY_TEST_HOST}:8081/$MATHPROXY_TEST_HOST")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if want := "http://render.local:8081/render.local"; got != want {
		t.Errorf("ExpandEnvStrict() = %q, want %q", got, want)
	}
}

func TestExpandEnvStrict_MissingVarErrors(t *testing.T) {
	t.Setenv("PRESENT", "ok")

	_, err := ExpandEnvStrict("a=${PRESENT} b=${MISSING_B} c=${MISSING_A} d=${MISSING_B}")
	if !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("error = %v, want ErrMissingEnv", err)
	}
	if !strings.HasSuffix(err.Error(), "MISSING_A, MISSING_B") {
		t.Errorf("error = %q, want sorted unique names", err)
	}
}

func TestExpandEnvStrict_DollarEscape(t *testing.T) {
	t.Setenv("X", "y")

	out, err := ExpandEnvStrict("$$${X}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "$y" {
		t.Errorf("ExpandEnvStrict() = %q, want %q", out, "$y")
	}
}
