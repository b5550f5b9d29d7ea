package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/jonwraymond/mathproxy/observe"
	"github.com/jonwraymond/mathproxy/resilience"
)

const maxImageSize = 8 << 20

// HTTPConfig configures an HTTPRenderer.
type HTTPConfig struct {
	// Endpoint receives a POST of {"latex","foreground","background"} and
	// answers with an image/svg+xml or image/webp body.
	Endpoint string

	// MaxConcurrent caps renders in flight across all requests.
	// Default: 16
	MaxConcurrent int

	// QueueTimeout bounds how long a render waits for a slot. Zero waits
	// as long as the request context allows.
	QueueTimeout time.Duration

	// Attempts is the number of tries for transient failures.
	// Default: 2
	Attempts int

	// Timeout bounds each attempt. Zero leaves it unbounded.
	Timeout time.Duration

	HTTPClient *http.Client
	Logger     observe.Logger
}

// HTTPRenderer renders through a remote LaTeX service.
type HTTPRenderer struct {
	config HTTPConfig
	http   *http.Client
	exec   *resilience.Executor
}

// NewHTTPRenderer creates an HTTPRenderer.
func NewHTTPRenderer(config HTTPConfig) (*HTTPRenderer, error) {
	if config.Endpoint == "" {
		return nil, errors.New("render: endpoint is required")
	}
	if config.Attempts <= 0 {
		config.Attempts = 2
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	wait := config.QueueTimeout
	if wait <= 0 {
		wait = -1
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	log := config.Logger
	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts: config.Attempts,
		Jitter:      true,
		RetryIf: func(err error) bool {
			var p *permanentError
			return err != nil && !errors.As(err, &p) && !errors.Is(err, context.Canceled)
		},
		OnRetry: func(attempt int, err error, delay time.Duration) {
			log.Debug(context.Background(), "retrying render",
				observe.Field{Key: "attempt", Value: attempt},
				observe.Err(err),
				observe.Field{Key: "delay_ms", Value: delay.Milliseconds()},
			)
		},
	})

	return &HTTPRenderer{
		config: config,
		http:   httpClient,
		exec: resilience.NewExecutor(
			resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
				MaxConcurrent: config.MaxConcurrent,
				MaxWait:       wait,
			})),
			resilience.WithRetry(retry),
			resilience.WithTimeout("render", config.Timeout),
		),
	}, nil
}

// Bulkhead exposes the concurrency cap for health reporting.
func (r *HTTPRenderer) Bulkhead() *resilience.Bulkhead {
	return r.exec.Bulkhead()
}

type renderRequest struct {
	LaTeX      string `json:"latex"`
	Foreground string `json:"foreground"`
	Background string `json:"background"`
}

// permanentError marks failures a retry cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Render implements Renderer.
func (r *HTTPRenderer) Render(ctx context.Context, latex, foreground, background string) (*ImageSet, error) {
	fg, bg := ForegroundColor(foreground), BackgroundColor(background)

	body, err := json.Marshal(renderRequest{LaTeX: latex, Foreground: fg.Hex(), Background: bg.Hex()})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %w", ErrRender, err)
	}

	var set *ImageSet
	err = r.exec.Execute(ctx, func(ctx context.Context) error {
		var err error
		set, err = r.post(ctx, body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return set, nil
}

func (r *HTTPRenderer) post(ctx context.Context, body []byte) (*ImageSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &permanentError{err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/svg+xml, image/webp")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("renderer returned %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &permanentError{fmt.Errorf("renderer returned %d: %s", resp.StatusCode, bytes.TrimSpace(data))}
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	url := dataURL(mediaType, data)
	switch mediaType {
	case "image/svg+xml":
		return &ImageSet{SVG: &url}, nil
	case "image/webp":
		return &ImageSet{WebP: &url}, nil
	default:
		return nil, &permanentError{fmt.Errorf("renderer returned unsupported content type %q", mediaType)}
	}
}

func dataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
