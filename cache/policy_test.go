package cache

import (
	"testing"
	"time"
)

func TestPolicy_ExpiresAt(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	if got := DefaultPolicy().ExpiresAt(now); !got.IsZero() {
		t.Errorf("DefaultPolicy().ExpiresAt() = %v, want zero", got)
	}
	if DefaultPolicy().Expires() {
		t.Error("DefaultPolicy should not expire entries")
	}

	p := Policy{TTL: time.Hour}
	if got, want := p.ExpiresAt(now), now.Add(time.Hour); !got.Equal(want) {
		t.Errorf("ExpiresAt() = %v, want %v", got, want)
	}
	if (Policy{TTL: -time.Second}).Expires() {
		t.Error("negative TTL should not expire entries")
	}
}
