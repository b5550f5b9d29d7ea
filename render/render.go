package render

import (
	"context"
	"errors"
)

// ErrRender is wrapped by every renderer failure.
var ErrRender = errors.New("render: failed")

// ImageSet holds the encodings produced for one expression. Each field is
// a data URL, or nil when that encoding was not produced.
type ImageSet struct {
	SVG  *string `json:"svg"`
	WebP *string `json:"webp"`
}

// Renderer renders one LaTeX expression.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use; one
//     solve calls Render for every expression at once.
//   - Context: implementations must honor cancellation.
//   - Errors: failures wrap ErrRender.
//   - Input: latex has already been through Clean; colors are as requested
//     by the client. A color that does not parse falls back to black for
//     the foreground and transparent for the background; it is never an
//     error.
type Renderer interface {
	Render(ctx context.Context, latex, foreground, background string) (*ImageSet, error)
}

// Func adapts a function to Renderer.
type Func func(ctx context.Context, latex, foreground, background string) (*ImageSet, error)

// Render calls f.
func (f Func) Render(ctx context.Context, latex, foreground, background string) (*ImageSet, error) {
	return f(ctx, latex, foreground, background)
}
