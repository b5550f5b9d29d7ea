package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixed(name string, s Status) Checker {
	return NewCheckerFunc(name, func(context.Context) Result {
		return Result{Status: s, Message: s.String()}
	})
}

func TestAggregator_RegisterKeepsOrder(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	agg.Register(fixed("b", StatusHealthy))
	agg.Register(fixed("a", StatusHealthy))
	agg.Register(fixed("b", StatusDegraded))

	got := agg.Names()
	if len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Errorf("Names() = %v, want [b a]", got)
	}

	r, err := agg.Check(context.Background(), "b")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if r.Status != StatusDegraded {
		t.Errorf("replaced checker Status = %v, want degraded", r.Status)
	}
}

func TestAggregator_CheckUnknown(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	if _, err := agg.Check(context.Background(), "nope"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	agg.Register(fixed("token_pool", StatusHealthy))
	agg.Register(fixed("cache", StatusDegraded))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results["cache"].Status != StatusDegraded {
		t.Errorf("cache Status = %v, want degraded", results["cache"].Status)
	}
	if results["token_pool"].Timestamp.IsZero() {
		t.Error("Timestamp should be filled in")
	}
}

func TestAggregator_CheckAllEmpty(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{})
	results := agg.CheckAll(context.Background())
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
	if got := Overall(results); got != StatusHealthy {
		t.Errorf("Overall(empty) = %v, want healthy", got)
	}
}

func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})
	release := make(chan struct{})
	defer close(release)

	agg.Register(NewCheckerFunc("stuck", func(context.Context) Result {
		<-release
		return Healthy("late")
	}))

	r := agg.CheckAll(context.Background())["stuck"]
	if r.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", r.Status)
	}
	if !errors.Is(r.Error, ErrCheckTimeout) {
		t.Errorf("Error = %v, want ErrCheckTimeout", r.Error)
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name string
		in   []Status
		want Status
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"one unhealthy", []Status{StatusDegraded, StatusUnhealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(map[string]Result)
			for i, s := range tt.in {
				results[string(rune('a'+i))] = Result{Status: s}
			}
			if got := Overall(results); got != tt.want {
				t.Errorf("Overall() = %v, want %v", got, tt.want)
			}
		})
	}
}
