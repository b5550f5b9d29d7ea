// Package token keeps a warm pool of upstream bearer tokens.
//
// A Pool run owns a ready queue filled by concurrent handshakes and serves
// tokens one at a time through a request/reply protocol: the caller sends a
// Request carrying a reply slot and the run fills it at most once. Each
// served token triggers one refill, so the pool stays topped up at its
// capacity. Tokens are handed out once and never reused.
//
// Any handshake error ends the run. A Supervisor restarts runs from scratch
// forever, counting reboots, and is the only component callers talk to.
package token
