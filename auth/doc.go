// Package auth optionally gates the proxy behind inbound credentials.
//
// The proxy is open by default, like the service it fronts. When keys or a
// JWT secret are configured, Middleware rejects requests that carry no
// valid credential with 401 before they reach the solver. Two
// authenticators are provided:
//
//   - APIKeyAuthenticator: X-API-Key compared against SHA-256 hashes.
//   - JWTAuthenticator: HS256 bearer tokens with optional issuer and
//     audience checks.
//
// New builds the chain from a Config.
package auth
