package health

import (
	"context"
	"runtime"
	"testing"
)

func withHeap(m *MemoryChecker, alloc, sys uint64) *MemoryChecker {
	m.read = func(s *runtime.MemStats) {
		s.HeapAlloc = alloc
		s.Sys = sys
	}
	return m
}

func TestNewMemoryChecker_Defaults(t *testing.T) {
	m := NewMemoryChecker(MemoryCheckerConfig{WarningThreshold: 2, CriticalThreshold: -1})
	if m.config.WarningThreshold != 0.8 {
		t.Errorf("WarningThreshold = %v, want 0.8", m.config.WarningThreshold)
	}
	if m.config.CriticalThreshold != 0.95 {
		t.Errorf("CriticalThreshold = %v, want 0.95", m.config.CriticalThreshold)
	}

	m = NewMemoryChecker(MemoryCheckerConfig{WarningThreshold: 0.9, CriticalThreshold: 0.5})
	if m.config.CriticalThreshold != 0.99 {
		t.Errorf("CriticalThreshold = %v, want 0.99", m.config.CriticalThreshold)
	}
}

func TestMemoryChecker_Check(t *testing.T) {
	tests := []struct {
		name  string
		alloc uint64
		want  Status
	}{
		{"normal", 10, StatusHealthy},
		{"high", 85, StatusDegraded},
		{"critical", 99, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := withHeap(NewMemoryChecker(MemoryCheckerConfig{MaxHeap: 100}), tt.alloc, 0)
			r := m.Check(context.Background())
			if r.Status != tt.want {
				t.Errorf("Status = %v (%s), want %v", r.Status, r.Message, tt.want)
			}
		})
	}
}

func TestMemoryChecker_DefaultCeiling(t *testing.T) {
	m := withHeap(NewMemoryChecker(MemoryCheckerConfig{}), 50, 100)
	r := m.Check(context.Background())
	if r.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", r.Status)
	}
	if r.Details["ceiling"] != uint64(100) {
		t.Errorf("Details[ceiling] = %v, want 100", r.Details["ceiling"])
	}
}

func TestMemoryChecker_Unavailable(t *testing.T) {
	m := withHeap(NewMemoryChecker(MemoryCheckerConfig{}), 50, 0)
	if r := m.Check(context.Background()); r.Message != "memory stats unavailable" {
		t.Errorf("Message = %q, want memory stats unavailable", r.Message)
	}
}

func TestMemoryChecker_Real(t *testing.T) {
	m := NewMemoryChecker(MemoryCheckerConfig{})
	if m.Name() != "memory" {
		t.Errorf("Name() = %q, want memory", m.Name())
	}
	r := m.Check(context.Background())
	if r.Details["goroutines"] == nil {
		t.Error("Details should report goroutines")
	}
}
