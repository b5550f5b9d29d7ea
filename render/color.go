package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Color is an RGB color with alpha.
type Color struct {
	// Color holds the RGB channels in [0, 1].
	colorful.Color

	// A is the alpha channel in [0, 1]; 0 is fully transparent.
	A float64
}

// Fallbacks used when a requested color does not parse.
var (
	Black       = Color{A: 1}
	Transparent = Color{}
)

// ParseColor parses "#rgb", "#rrggbb", "#rrggbbaa", one of the SVG/CSS
// color names, or "transparent". A missing alpha channel means opaque.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "transparent" {
		return Transparent, nil
	}
	if rgba, ok := colornames.Map[s]; ok {
		c, _ := colorful.MakeColor(rgba)
		return Color{Color: c, A: float64(rgba.A) / 255}, nil
	}
	if len(s) == 0 || s[0] != '#' || (len(s) != 4 && len(s) != 7 && len(s) != 9) {
		return Color{}, fmt.Errorf("render: invalid color %q", s)
	}

	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("render: invalid alpha in color %q", s)
		}
		c, err := colorful.Hex(s[:7])
		if err != nil {
			return Color{}, fmt.Errorf("render: invalid color %q: %w", s, err)
		}
		return Color{Color: c, A: float64(a) / 255}, nil
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("render: invalid color %q: %w", s, err)
	}
	return Color{Color: c, A: 1}, nil
}

// ForegroundColor parses s, falling back to opaque black.
func ForegroundColor(s string) Color {
	return parseOr(s, Black)
}

// BackgroundColor parses s, falling back to transparent.
func BackgroundColor(s string) Color {
	return parseOr(s, Transparent)
}

func parseOr(s string, fallback Color) Color {
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}

// Hex formats the color as "#rrggbbaa".
func (c Color) Hex() string {
	return fmt.Sprintf("%s%02x", c.Clamped().Hex(), uint8(c.A*255+0.5))
}

// Opacity returns the alpha channel formatted for SVG attributes.
func (c Color) Opacity() string {
	return strconv.FormatFloat(c.A, 'f', 3, 64)
}

// RGB returns the color without alpha as "#rrggbb".
func (c Color) RGB() string {
	return c.Clamped().Hex()
}
