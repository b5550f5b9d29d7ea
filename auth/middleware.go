package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jonwraymond/mathproxy/observe"
)

// Middleware rejects unauthenticated requests with 401 and attaches the
// identity to accepted ones. Internal errors from an authenticator are
// treated as rejections. A disabled chain passes every request through.
func Middleware(chain *Chain, logger observe.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return func(next http.Handler) http.Handler {
		if !chain.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			id, err := chain.Authenticate(r.Context(), r.Header)
			if err != nil {
				logger.Info(r.Context(), "request rejected", observe.Err(err))
				w.Header().Set("WWW-Authenticate", `Bearer realm="mathproxy"`)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": publicReason(err)})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func publicReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return "missing credentials"
	case errors.Is(err, ErrTokenExpired):
		return "token expired"
	default:
		return "invalid credentials"
	}
}
