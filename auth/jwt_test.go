package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func signed(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) http.Header {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return header("Authorization", "Bearer "+s)
}

func TestNewJWTAuthenticator_RequiresSecret(t *testing.T) {
	if _, err := NewJWTAuthenticator(JWTConfig{}); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestJWTAuthenticator_Supports(t *testing.T) {
	a, _ := NewJWTAuthenticator(JWTConfig{Secret: testSecret})

	if a.Supports(header("", "")) {
		t.Error("Supports(no header) = true")
	}
	if a.Supports(header("Authorization", "Basic abc")) {
		t.Error("Supports(Basic) = true")
	}
	if !a.Supports(header("Authorization", "Bearer abc")) {
		t.Error("Supports(Bearer) = false")
	}
}

func TestJWTAuthenticator_Authenticate(t *testing.T) {
	a, err := NewJWTAuthenticator(JWTConfig{Secret: testSecret, Issuer: "issuer", Audience: "mathproxy"})
	if err != nil {
		t.Fatalf("NewJWTAuthenticator() error = %v", err)
	}
	exp := time.Now().Add(time.Hour).Unix()
	valid := jwt.MapClaims{"sub": "alice", "iss": "issuer", "aud": "mathproxy", "exp": exp}

	tests := []struct {
		name    string
		h       http.Header
		wantErr error
	}{
		{"valid", signed(t, jwt.SigningMethodHS256, testSecret, valid), nil},
		{"expired", signed(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": "alice", "iss": "issuer", "aud": "mathproxy", "exp": time.Now().Add(-time.Hour).Unix(),
		}), ErrTokenExpired},
		{"wrong secret", signed(t, jwt.SigningMethodHS256, []byte("other"), valid), ErrInvalidCredentials},
		{"wrong method", signed(t, jwt.SigningMethodHS512, testSecret, valid), ErrInvalidCredentials},
		{"wrong issuer", signed(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": "alice", "iss": "other", "aud": "mathproxy", "exp": exp,
		}), ErrInvalidCredentials},
		{"wrong audience", signed(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": "alice", "iss": "issuer", "aud": "other", "exp": exp,
		}), ErrInvalidCredentials},
		{"no expiry", signed(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"sub": "alice", "iss": "issuer", "aud": "mathproxy",
		}), ErrInvalidCredentials},
		{"malformed", header("Authorization", "Bearer not-a-jwt"), ErrTokenMalformed},
		{"empty bearer", header("Authorization", "Bearer "), ErrMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := a.Authenticate(context.Background(), tt.h)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if id.Principal != "alice" {
				t.Errorf("Principal = %q, want alice", id.Principal)
			}
			if id.Method != MethodJWT {
				t.Errorf("Method = %v, want jwt", id.Method)
			}
			if id.ExpiresAt.Unix() != exp {
				t.Errorf("ExpiresAt = %v, want %v", id.ExpiresAt.Unix(), exp)
			}
		})
	}
}
