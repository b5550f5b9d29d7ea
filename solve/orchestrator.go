package solve

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/mathproxy/cache"
	"github.com/jonwraymond/mathproxy/observe"
	"github.com/jonwraymond/mathproxy/render"
	"github.com/jonwraymond/mathproxy/token"
	"github.com/jonwraymond/mathproxy/upstream"
)

// TokenSource hands out upstream tokens.
type TokenSource interface {
	Acquire(ctx context.Context) (token.Token, error)
}

// Upstream solves a query with a token.
type Upstream interface {
	Solve(ctx context.Context, tok token.Token, p upstream.Params) (*upstream.Document, error)
}

// Config wires an Orchestrator.
type Config struct {
	Tokens   TokenSource
	Upstream Upstream
	Renderer render.Renderer

	// Cache stores assembled results. Default: an unbounded MemoryCache.
	Cache cache.Store[Result]

	// Keyer digests cache keys for logs and spans. Default: DefaultKeyer.
	Keyer cache.Keyer

	// RenderSteps extends rendering to the nested steps of each solution.
	// Off by default: only the top-level pair and each solution's pair are
	// rendered.
	RenderSteps bool

	Logger  observe.Logger
	Metrics observe.Metrics
	Tracer  observe.Tracer
}

// Orchestrator handles queries.
//
// Contract:
//   - Concurrency: Handle is safe for concurrent use.
//   - Context: Handle honors cancellation while waiting for a token, the
//     upstream or renders. Background cache writes outlive it.
//   - Errors: failures wrap ErrInternal or ErrInvalidQuery; detail is
//     logged, and callers should not forward it to clients.
type Orchestrator struct {
	config  Config
	pending sync.WaitGroup
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(config Config) (*Orchestrator, error) {
	switch {
	case config.Tokens == nil:
		return nil, errors.New("solve: token source is required")
	case config.Upstream == nil:
		return nil, errors.New("solve: upstream is required")
	case config.Renderer == nil:
		return nil, errors.New("solve: renderer is required")
	}
	if config.Cache == nil {
		config.Cache = cache.NewMemoryCache[Result](cache.DefaultPolicy())
	}
	if config.Keyer == nil {
		config.Keyer = cache.NewDefaultKeyer()
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Metrics == nil {
		config.Metrics = observe.NopMetrics()
	}
	if config.Tracer == nil {
		config.Tracer = observe.NopTracer()
	}
	return &Orchestrator{config: config}, nil
}

// Cache returns the result store.
func (o *Orchestrator) Cache() cache.Store[Result] {
	return o.config.Cache
}

// Handle answers q from the cache or by solving and rendering it.
func (o *Orchestrator) Handle(ctx context.Context, q Query) (*Result, error) {
	key := cache.NewKey(q.Query, q.Foreground, q.Background)
	if err := cache.ValidateKey(key); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	start := time.Now()
	digest := o.config.Keyer.Digest(key)
	log := o.config.Logger.With(observe.Field{Key: "cache_key", Value: digest})

	ctx, span := o.config.Tracer.StartSpan(ctx, observe.SpanHandle, attribute.String("cache.key", digest))
	res, cached, err := o.handle(ctx, log, key, q)
	o.config.Tracer.EndSpan(span, err)
	o.config.Metrics.RecordRequest(ctx, cached, time.Since(start), err)

	if err != nil {
		log.Error(ctx, "solve failed", observe.Err(err))
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return res, nil
}

func (o *Orchestrator) handle(ctx context.Context, log observe.Logger, key cache.Key, q Query) (*Result, bool, error) {
	if hit, ok := o.config.Cache.Get(ctx, key); ok {
		o.config.Metrics.RecordCacheLookup(ctx, true)
		hit.Cached = true
		return &hit, true, nil
	}
	o.config.Metrics.RecordCacheLookup(ctx, false)
	log.Info(ctx, "cache miss")

	tok, err := o.config.Tokens.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquiring token: %w", err)
	}

	doc, err := o.config.Upstream.Solve(ctx, tok, upstream.Params{
		Query:      q.Query,
		Foreground: q.Foreground,
		Background: q.Background,
	})
	if err != nil {
		return nil, false, fmt.Errorf("querying upstream: %w", err)
	}

	res, err := o.renderDocument(ctx, doc, key.Foreground, key.Background)
	if err != nil {
		return nil, false, err
	}

	o.store(ctx, log, key, *res)
	return res, false, nil
}

// renderDocument fans out one render per expression. The top-level pair
// and each solution get their own group; a failure does not cancel the
// other groups, whose results are discarded.
func (o *Orchestrator) renderDocument(ctx context.Context, doc *upstream.Document, fg, bg string) (*Result, error) {
	res := &Result{
		Symbolab:  *doc,
		Solutions: make([]Solution, len(doc.Solutions)),
	}

	var top errgroup.Group
	o.goRender(ctx, &top, &res.CanonicalNotebookQuery, doc.CanonicalNotebookQuery, fg, bg)
	o.goRender(ctx, &top, &res.StandardQuery, doc.StandardQuery, fg, bg)

	groups := make([]*errgroup.Group, len(doc.Solutions))
	for i, s := range doc.Solutions {
		g := new(errgroup.Group)
		groups[i] = g

		dst := &res.Solutions[i]
		o.goRender(ctx, g, &dst.StepInput, s.StepInput, fg, bg)
		o.goRender(ctx, g, &dst.EntireResult, s.EntireResult, fg, bg)
		if o.config.RenderSteps {
			dst.Steps = o.goRenderSteps(ctx, g, s.Steps, fg, bg)
		}
	}

	for i, g := range groups {
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("rendering solution %d: %w", i, err)
		}
	}
	if err := top.Wait(); err != nil {
		return nil, fmt.Errorf("rendering queries: %w", err)
	}
	return res, nil
}

func (o *Orchestrator) goRenderSteps(ctx context.Context, g *errgroup.Group, steps []upstream.Step, fg, bg string) []Solution {
	if len(steps) == 0 {
		return nil
	}
	out := make([]Solution, len(steps))
	for i, s := range steps {
		o.goRender(ctx, g, &out[i].StepInput, s.StepInput, fg, bg)
		o.goRender(ctx, g, &out[i].EntireResult, s.EntireResult, fg, bg)
		out[i].Steps = o.goRenderSteps(ctx, g, s.Steps, fg, bg)
	}
	return out
}

// goRender renders expr into dst on g. An absent expression leaves dst nil
// without calling the renderer.
func (o *Orchestrator) goRender(ctx context.Context, g *errgroup.Group, dst **render.ImageSet, expr *string, fg, bg string) {
	if expr == nil {
		return
	}
	latex := render.Clean(*expr)
	g.Go(func() error {
		ctx, span := o.config.Tracer.StartSpan(ctx, observe.SpanRender)
		set, err := o.config.Renderer.Render(ctx, latex, fg, bg)
		o.config.Tracer.EndSpan(span, err)
		o.config.Metrics.RecordRender(ctx, err)
		if err != nil {
			return err
		}
		*dst = set
		return nil
	})
}

// store writes a cache-sourced copy of res in the background.
func (o *Orchestrator) store(ctx context.Context, log observe.Logger, key cache.Key, res Result) {
	res.Cached = true
	ctx = context.WithoutCancel(ctx)

	o.pending.Add(1)
	go func() {
		defer o.pending.Done()
		if err := o.config.Cache.Set(ctx, key, res); err != nil {
			log.Warn(ctx, "cache write failed", observe.Err(err))
		}
	}()
}

// Wait blocks until every scheduled cache write has landed.
func (o *Orchestrator) Wait() {
	o.pending.Wait()
}
