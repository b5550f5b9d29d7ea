package render

import (
	"context"
	"fmt"
	"html"
	"unicode/utf8"
)

// TextRenderer draws the LaTeX source as text in an SVG. It is used when no
// rendering service is configured.
type TextRenderer struct {
	// FontSize in pixels. Default: 20
	FontSize int
}

// Render implements Renderer.
func (t TextRenderer) Render(ctx context.Context, latex, foreground, background string) (*ImageSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	fg, bg := ForegroundColor(foreground), BackgroundColor(background)

	size := t.FontSize
	if size <= 0 {
		size = 20
	}
	pad := size / 2
	width := utf8.RuneCountInString(latex)*size*3/5 + 2*pad
	height := size + 2*pad

	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<rect width="100%%" height="100%%" fill="%s" fill-opacity="%s"/>`+
			`<text x="%d" y="%d" font-family="monospace" font-size="%d" fill="%s" fill-opacity="%s">%s</text>`+
			`</svg>`,
		width, height, width, height,
		bg.RGB(), bg.Opacity(),
		pad, pad+size*4/5, size, fg.RGB(), fg.Opacity(),
		html.EscapeString(latex),
	)

	url := dataURL("image/svg+xml", []byte(svg))
	return &ImageSet{SVG: &url}, nil
}
