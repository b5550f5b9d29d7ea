package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/mathproxy/auth"
	"github.com/jonwraymond/mathproxy/cache"
	"github.com/jonwraymond/mathproxy/config"
	"github.com/jonwraymond/mathproxy/health"
	"github.com/jonwraymond/mathproxy/observe"
	"github.com/jonwraymond/mathproxy/render"
	"github.com/jonwraymond/mathproxy/resilience"
	"github.com/jonwraymond/mathproxy/server"
	"github.com/jonwraymond/mathproxy/solve"
	"github.com/jonwraymond/mathproxy/token"
	"github.com/jonwraymond/mathproxy/upstream"
)

// app is the assembled daemon.
type app struct {
	cfg          config.Config
	obs          observe.Observer
	supervisor   *token.Supervisor
	orchestrator *solve.Orchestrator
	reporter     server.Reporter
	handler      http.Handler
}

// newApp wires every component from cfg. Logs go to logOut.
func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	ocfg := cfg.ObserveConfig(version)
	ocfg.Logging.Writer = logOut
	obs, err := observe.NewObserver(ctx, ocfg)
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}
	a := &app{cfg: cfg, obs: obs}
	log := obs.Logger()

	client := upstream.NewClient(upstream.Config{
		BaseURL:         cfg.Upstream.BaseURL,
		UserAgent:       cfg.Upstream.UserAgent,
		Language:        cfg.Upstream.Language,
		SolveTimeout:    cfg.Upstream.SolveTimeout.Std(),
		BreakerFailures: cfg.Upstream.BreakerFailures,
		BreakerReset:    cfg.Upstream.BreakerReset.Std(),
		Logger:          log,
		Tracer:          obs.Tracer(),
	})

	a.supervisor = token.NewSupervisor(client, token.Config{
		Capacity:         cfg.Tokens.Capacity,
		QueueSize:        cfg.Tokens.QueueSize,
		RestartDelay:     cfg.Tokens.RestartDelay.Std(),
		HandshakeTimeout: cfg.Upstream.HandshakeTimeout.Std(),
		Logger:           log,
		Metrics:          obs.Metrics(),
		Tracer:           obs.Tracer(),
	})

	renderer, err := newRenderer(cfg.Render, log)
	if err != nil {
		return nil, a.abort(err)
	}

	store := cache.NewMemoryCache[solve.Result](cache.Policy{TTL: cfg.Cache.TTL.Std()})
	a.orchestrator, err = solve.NewOrchestrator(solve.Config{
		Tokens:      a.supervisor,
		Upstream:    client,
		Renderer:    renderer,
		Cache:       store,
		RenderSteps: cfg.Render.Steps,
		Logger:      log,
		Metrics:     obs.Metrics(),
		Tracer:      obs.Tracer(),
	})
	if err != nil {
		return nil, a.abort(err)
	}

	chain, err := auth.New(auth.Config{
		APIKeys:      cfg.Auth.APIKeys,
		APIKeyHeader: cfg.Auth.APIKeyHeader,
		JWTSecret:    cfg.Auth.JWTSecret,
		JWTIssuer:    cfg.Auth.JWTIssuer,
		JWTAudience:  cfg.Auth.JWTAudience,
	})
	if err != nil {
		return nil, a.abort(fmt.Errorf("auth: %w", err))
	}

	a.reporter = server.NopReporter()
	if cfg.Sentry.DSN != "" {
		rep, err := server.NewSentryReporter(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     "mathproxyd@" + version,
			SampleRate:  cfg.Sentry.SampleRate,
		})
		if err != nil {
			return nil, a.abort(fmt.Errorf("sentry: %w", err))
		}
		a.reporter = rep
	}

	agg := health.NewAggregator(health.AggregatorConfig{})
	agg.Register(health.NewTokenPoolChecker(a.supervisor))
	agg.Register(health.NewCacheChecker(store, cfg.Cache.MaxEntries))
	agg.Register(health.NewMemoryChecker(health.MemoryCheckerConfig{}))

	var limiter *resilience.RateLimiter
	if cfg.Server.RateLimit > 0 {
		limiter = resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:  cfg.Server.RateLimit,
			Burst: cfg.Server.RateBurst,
		})
	}

	var metrics http.Handler
	if cfg.Observe.MetricsExporter == "prometheus" {
		metrics = promhttp.Handler()
	}

	a.handler = server.New(server.Config{
		Solver:   a.orchestrator,
		Health:   agg,
		Metrics:  metrics,
		Auth:     chain,
		Limiter:  limiter,
		Reporter: a.reporter,
		Logger:   log,
		Tracer:   obs.Tracer(),
	})
	return a, nil
}

// newRenderer picks the HTTP renderer when an endpoint is configured and
// the built-in text renderer otherwise.
func newRenderer(cfg config.RenderConfig, log observe.Logger) (render.Renderer, error) {
	if cfg.Endpoint == "" {
		log.Warn(context.Background(), "no render endpoint configured; using text renderer")
		return render.TextRenderer{}, nil
	}
	return render.NewHTTPRenderer(render.HTTPConfig{
		Endpoint:      cfg.Endpoint,
		MaxConcurrent: cfg.MaxConcurrent,
		QueueTimeout:  cfg.QueueTimeout.Std(),
		Attempts:      cfg.Attempts,
		Timeout:       cfg.Timeout.Std(),
		Logger:        log,
	})
}

func (a *app) abort(err error) error {
	_ = a.obs.Shutdown(context.Background())
	return err
}

// shutdown waits for background cache writes, then flushes telemetry.
func (a *app) shutdown(timeout time.Duration) error {
	a.orchestrator.Wait()
	a.reporter.Flush(timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return a.obs.Shutdown(ctx)
}

// run starts the token supervisor and serves until ctx is cancelled. The
// supervisor outlives ctx so that requests still draining during server
// shutdown can get their tokens; it stops once serve has returned.
func (a *app) run(ctx context.Context, serve func(context.Context, http.Handler) error) error {
	supCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	supDone := make(chan error, 1)
	go func() { supDone <- a.supervisor.Run(supCtx) }()

	err := serve(ctx, a.handler)
	cancel()
	if supErr := <-supDone; err == nil && !errors.Is(supErr, context.Canceled) {
		err = supErr
	}

	if shutErr := a.shutdown(a.cfg.Server.ShutdownTimeout.Std()); err == nil {
		err = shutErr
	}
	return err
}
