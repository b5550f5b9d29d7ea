// Package upstream talks to the step-by-step solver API.
//
// Handshake loads the public solver page and extracts the short-lived
// bearer token the site sets as a cookie. Solve sends one query with such a
// token and decodes the expression tree the proxy renders, while keeping
// the raw document so it can be returned to clients untouched.
package upstream
