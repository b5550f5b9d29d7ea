package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jonwraymond/mathproxy/observe"
	"github.com/jonwraymond/mathproxy/resilience"
	"github.com/jonwraymond/mathproxy/token"
)

// DefaultBaseURL is the solver site.
const DefaultBaseURL = "https://www.symbolab.com"

// DefaultUserAgent is a desktop browser user agent; the solver page only
// sets the token cookie for browser-like clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/104.0.0.0 Safari/537.36"

const (
	handshakePath = "/solver/step-by-step/"
	solvePath     = "/pub_api/steps"

	// maxDocumentSize caps how much of a solve response is read.
	maxDocumentSize = 32 << 20
	maxErrorBody    = 512
)

// Config configures the upstream client.
type Config struct {
	// BaseURL is the solver site root.
	// Default: DefaultBaseURL
	BaseURL string

	// UserAgent is sent on every request.
	// Default: DefaultUserAgent
	UserAgent string

	// Language is the step language requested from the solver.
	// Default: "en"
	Language string

	// SolveTimeout bounds each solve call. Zero leaves it unbounded.
	SolveTimeout time.Duration

	// BreakerFailures opens the solve circuit after this many consecutive
	// failures. Zero disables the breaker.
	BreakerFailures int

	// BreakerReset is how long the circuit stays open.
	// Default: 30 seconds
	BreakerReset time.Duration

	// HTTPClient is used for all calls. If nil, a client without a global
	// timeout is used; deadlines come from contexts.
	HTTPClient *http.Client

	Logger observe.Logger
	Tracer observe.Tracer
}

// Params is one solve query. Nil colors are omitted from the request.
type Params struct {
	Query      string
	Foreground *string
	Background *string
}

// Client calls the solver API.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: all calls honor cancellation and deadlines.
// - Errors: non-2xx solve responses return *StatusError.
type Client struct {
	config Config
	http   *http.Client
	exec   *resilience.Executor
}

// NewClient creates a new upstream client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Language == "" {
		config.Language = "en"
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Tracer == nil {
		config.Tracer = observe.NopTracer()
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	var opts []resilience.ExecutorOption
	if config.BreakerFailures > 0 {
		log := config.Logger
		opts = append(opts, resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:         "upstream.solve",
			MaxFailures:  config.BreakerFailures,
			ResetTimeout: config.BreakerReset,
			OnStateChange: func(name string, from, to resilience.State) {
				log.Warn(context.Background(), "circuit state changed",
					observe.Field{Key: "breaker", Value: name},
					observe.Field{Key: "from", Value: from.String()},
					observe.Field{Key: "to", Value: to.String()},
				)
			},
		})))
	}
	if config.SolveTimeout > 0 {
		opts = append(opts, resilience.WithTimeout("upstream solve", config.SolveTimeout))
	}

	return &Client{
		config: config,
		http:   httpClient,
		exec:   resilience.NewExecutor(opts...),
	}
}

// Breaker returns the solve circuit breaker, or nil when disabled.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.exec.CircuitBreaker()
}

// Handshake loads the solver page and returns the token from its cookies.
func (c *Client) Handshake(ctx context.Context) (token.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+handshakePath, nil)
	if err != nil {
		return "", fmt.Errorf("upstream: building handshake request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upstream: handshake: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDocumentSize))

	value, ok := tokenFromSetCookie(resp.Header.Values("Set-Cookie"))
	if !ok || value == "" {
		return "", fmt.Errorf("%w: handshake returned %d without %s cookie", ErrNoToken, resp.StatusCode, TokenCookie)
	}
	return token.Token(value), nil
}

// Solve sends one query authenticated with tok.
func (c *Client) Solve(ctx context.Context, tok token.Token, p Params) (*Document, error) {
	ctx, span := c.config.Tracer.StartSpan(ctx, observe.SpanUpstream,
		attribute.Int("query.length", len(p.Query)),
	)

	var doc *Document
	err := c.exec.Execute(ctx, func(ctx context.Context) error {
		var err error
		doc, err = c.solve(ctx, tok, p)
		return err
	})
	c.config.Tracer.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) solve(ctx context.Context, tok token.Token, p Params) (*Document, error) {
	q := url.Values{}
	q.Set("query", p.Query)
	if p.Foreground != nil {
		q.Set("foreground", *p.Foreground)
	}
	if p.Background != nil {
		q.Set("background", *p.Background)
	}
	q.Set("subscribed", "false")
	q.Set("language", c.config.Language)
	q.Set("plotRequest", "PlotOptional")
	q.Set("page", "step-by-step")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+solvePath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("upstream: building solve request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+string(tok))
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream: solve: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("upstream: reading solve response: %w", err)
	}
	return ParseDocument(body)
}
