package cache

import "time"

// Policy configures entry lifetime.
type Policy struct {
	// TTL bounds how long an entry is served. Zero keeps entries for the
	// lifetime of the process.
	TTL time.Duration
}

// DefaultPolicy returns the policy used when none is configured: entries
// never expire.
func DefaultPolicy() Policy {
	return Policy{}
}

// Expires reports whether entries written under this policy expire.
func (p Policy) Expires() bool {
	return p.TTL > 0
}

// ExpiresAt returns the expiry instant for an entry written at now, or the
// zero time when the policy does not expire entries.
func (p Policy) ExpiresAt(now time.Time) time.Time {
	if !p.Expires() {
		return time.Time{}
	}
	return now.Add(p.TTL)
}
