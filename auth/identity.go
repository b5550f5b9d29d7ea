package auth

import "time"

// Method names how a request was authenticated.
type Method string

const (
	MethodAPIKey Method = "api_key"
	MethodJWT    Method = "jwt"
)

// Identity is an authenticated caller.
type Identity struct {
	// Principal is the key ID or the JWT subject.
	Principal string
	Method    Method
	Claims    map[string]any
	ExpiresAt time.Time
}
