package token

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/mathproxy/observe"
)

// DefaultRestartDelay is the pause between pool runs.
const DefaultRestartDelay = 100 * time.Millisecond

// Config configures a Supervisor.
type Config struct {
	// Capacity is the number of tokens each run keeps warm.
	// Default: Capacity
	Capacity int

	// QueueSize buffers pending Acquire calls.
	// Default: 2 * Capacity
	QueueSize int

	// RestartDelay pauses between a failed run and the next one.
	// Default: DefaultRestartDelay. Negative restarts immediately.
	RestartDelay time.Duration

	// HandshakeTimeout bounds each handshake. Zero leaves it unbounded.
	HandshakeTimeout time.Duration

	Logger  observe.Logger
	Metrics observe.Metrics
	Tracer  observe.Tracer
}

func (c *Config) applyDefaults() {
	if c.Capacity <= 0 {
		c.Capacity = Capacity
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 2 * c.Capacity
	}
	if c.RestartDelay == 0 {
		c.RestartDelay = DefaultRestartDelay
	}
	if c.Logger == nil {
		c.Logger = observe.NopLogger()
	}
	if c.Metrics == nil {
		c.Metrics = observe.NopMetrics()
	}
	if c.Tracer == nil {
		c.Tracer = observe.NopTracer()
	}
}

// Stats is a read-only snapshot of the supervisor and its current run.
type Stats struct {
	// Reboots counts pool runs that ended. It never decreases.
	Reboots int64 `json:"reboots"`

	// Ready is the number of tokens waiting in the current run.
	Ready int64 `json:"ready"`

	// Served is the number of tokens the current run delivered.
	Served int64 `json:"served"`

	// Exhausted counts requests of the current run that found no token ready.
	Exhausted int64 `json:"exhausted"`

	// Running reports whether a pool run is active.
	Running bool `json:"running"`
}

// Supervisor keeps a token pool running forever and is the only way to
// obtain tokens from it.
//
// Contract:
//   - Concurrency: Acquire and Stats are safe for concurrent use. Run must be
//     called once.
//   - Context: Run returns only when ctx is cancelled; Acquire honors ctx.
//   - Shutdown: once Run has returned, queued and later Acquire calls fail
//     with ErrStopped instead of waiting.
type Supervisor struct {
	config     Config
	handshaker Handshaker
	requests   chan Request

	// stopped is closed when Run returns.
	stopped chan struct{}

	reboots atomic.Int64
	current atomic.Pointer[Pool]
}

// NewSupervisor creates a supervisor that obtains tokens from h.
func NewSupervisor(h Handshaker, config Config) *Supervisor {
	config.applyDefaults()
	return &Supervisor{
		config:     config,
		handshaker: h,
		requests:   make(chan Request, config.QueueSize),
		stopped:    make(chan struct{}),
	}
}

// Run restarts pool runs from scratch until ctx is cancelled. Every run
// that ends increments the reboot counter.
func (s *Supervisor) Run(ctx context.Context) error {
	log := s.config.Logger
	defer s.stop()

	for {
		pool := NewPool(s.handshaker, PoolConfig{
			Capacity:         s.config.Capacity,
			HandshakeTimeout: s.config.HandshakeTimeout,
			Logger:           log,
			Metrics:          s.config.Metrics,
			Tracer:           s.config.Tracer,
		})
		s.current.Store(pool)

		err := pool.Run(ctx, s.requests)
		s.current.Store(nil)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		n := s.reboots.Add(1)
		s.config.Metrics.RecordReboot(ctx)
		log.Error(ctx, "token pool died", observe.Err(err), observe.Field{Key: "reboots", Value: n})

		if s.config.RestartDelay > 0 {
			timer := time.NewTimer(s.config.RestartDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
}

// stop marks the supervisor stopped and fails every request still queued.
func (s *Supervisor) stop() {
	close(s.stopped)
	for {
		select {
		case req := <-s.requests:
			req.fail()
		default:
			return
		}
	}
}

// Acquire obtains one token, waiting for the pool if necessary. Cancelling
// ctx abandons the request; a token delivered afterwards is discarded.
func (s *Supervisor) Acquire(ctx context.Context) (Token, error) {
	req := NewRequest(ctx.Done())

	select {
	case <-s.stopped:
		return "", ErrStopped
	default:
	}

	select {
	case s.requests <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-s.stopped:
		return "", ErrStopped
	}

	select {
	case tok, ok := <-req.Reply():
		if !ok {
			return "", ErrPoolRestarted
		}
		return tok, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-s.stopped:
		// The last run may have delivered just before stopping.
		select {
		case tok, ok := <-req.Reply():
			if ok {
				return tok, nil
			}
		default:
		}
		return "", ErrStopped
	}
}

// Stats returns a snapshot of the supervisor counters.
func (s *Supervisor) Stats() Stats {
	st := Stats{Reboots: s.reboots.Load()}
	if p := s.current.Load(); p != nil {
		st.Running = true
		st.Ready = p.Ready()
		st.Served = p.Served()
		st.Exhausted = p.Exhausted()
	}
	return st
}
