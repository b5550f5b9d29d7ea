package health

import (
	"context"
	"testing"
)

type sizer int

func (s sizer) Len() int { return int(s) }

func TestCacheChecker(t *testing.T) {
	tests := []struct {
		name string
		len  int
		max  int
		want Status
	}{
		{"no ceiling", 1_000_000, 0, StatusHealthy},
		{"under ceiling", 5, 10, StatusHealthy},
		{"at ceiling", 10, 10, StatusHealthy},
		{"over ceiling", 11, 10, StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewCacheChecker(sizer(tt.len), tt.max).Check(context.Background())
			if r.Status != tt.want {
				t.Errorf("Status = %v, want %v", r.Status, tt.want)
			}
			if r.Details["entries"] != tt.len {
				t.Errorf("Details[entries] = %v, want %d", r.Details["entries"], tt.len)
			}
		})
	}
}

func TestCacheChecker_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if r := NewCacheChecker(sizer(0), 0).Check(ctx); r.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", r.Status)
	}
}
