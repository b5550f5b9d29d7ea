package token

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/mathproxy/observe"
	"github.com/jonwraymond/mathproxy/resilience"
)

// PoolConfig configures a single pool run.
type PoolConfig struct {
	// Capacity is the number of tokens kept warm.
	// Default: Capacity
	Capacity int

	// HandshakeTimeout bounds each handshake. Zero leaves it unbounded.
	HandshakeTimeout time.Duration

	Logger  observe.Logger
	Metrics observe.Metrics
	Tracer  observe.Tracer
}

func (c *PoolConfig) applyDefaults() {
	if c.Capacity <= 0 {
		c.Capacity = Capacity
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

// Pool is one run of the token pool. A Pool is single-use: once Run
// returns, build a new one.
type Pool struct {
	config     PoolConfig
	handshaker Handshaker
	timeout    *resilience.Timeout

	ready     atomic.Int64
	served    atomic.Int64
	exhausted atomic.Int64
	started   atomic.Bool
}

// NewPool creates a pool that obtains tokens from h.
func NewPool(h Handshaker, config PoolConfig) *Pool {
	config.applyDefaults()
	return &Pool{
		config:     config,
		handshaker: h,
		timeout:    resilience.NewTimeout("handshake", config.HandshakeTimeout),
	}
}

// Run fills the pool and serves requests until a handshake fails, ctx is
// cancelled, or requests is closed. It always returns a non-nil error.
//
// Run waits for its in-flight handshakes before returning; tokens still in
// the ready queue are discarded.
func (p *Pool) Run(ctx context.Context, requests <-chan Request) error {
	if p.handshaker == nil {
		return ErrNilHandshaker
	}
	if !p.started.CompareAndSwap(false, true) {
		return fmt.Errorf("token: pool already ran")
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	log := p.config.Logger
	queue := make(chan Token, p.config.Capacity)
	errc := make(chan error, 1)

	refill := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.handshake(ctx, queue, errc)
		}()
	}

	log.Info(ctx, "token pool starting", observe.Field{Key: "capacity", Value: p.config.Capacity})
	for range p.config.Capacity {
		refill()
	}
	log.Info(ctx, "token refills queued", observe.Field{Key: "count", Value: p.config.Capacity})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-errc:
			return fmt.Errorf("token: handshake: %w", err)

		case req, ok := <-requests:
			if !ok {
				return ErrPoolClosed
			}

			if p.ready.Load() == 0 {
				p.exhausted.Add(1)
				p.config.Metrics.RecordTokenExhausted(ctx)
				log.Warn(ctx, "token pool exhausted")
			}

			var tok Token
			select {
			case tok = <-queue:
				p.ready.Add(-1)
			case err := <-errc:
				req.fail()
				return fmt.Errorf("token: handshake: %w", err)
			case <-ctx.Done():
				req.fail()
				return ctx.Err()
			}

			if req.deliver(tok) {
				p.served.Add(1)
			} else {
				log.Error(ctx, "failed to deliver token: requester gone")
			}
			refill()
		}
	}
}

func (p *Pool) handshake(ctx context.Context, queue chan<- Token, errc chan<- error) {
	ctx, span := p.config.Tracer.StartSpan(ctx, observe.SpanHandshake)

	var tok Token
	err := p.timeout.Execute(ctx, func(ctx context.Context) error {
		var err error
		tok, err = p.handshaker.Handshake(ctx)
		return err
	})
	p.config.Tracer.EndSpan(span, err)

	if err != nil {
		select {
		case errc <- err:
		default:
		}
		return
	}

	// The count is raised before the token is visible so a consumer can
	// never decrement it below zero.
	p.ready.Add(1)
	select {
	case queue <- tok:
	case <-ctx.Done():
		p.ready.Add(-1)
	}
}

// Ready reports the number of tokens waiting in the queue.
func (p *Pool) Ready() int64 {
	return p.ready.Load()
}

// Served reports the number of tokens delivered by this run.
func (p *Pool) Served() int64 {
	return p.served.Load()
}

// Exhausted reports how many requests found the queue empty on arrival.
func (p *Pool) Exhausted() int64 {
	return p.exhausted.Load()
}
