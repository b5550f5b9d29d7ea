package render

import "strings"

// glyphs maps the non-ASCII math symbols the solver emits to LaTeX macros.
// Each macro ends in a space so it cannot run into a following letter.
var glyphs = strings.NewReplacer(
	"…", `\ldots `,
	"π", `\pi `,
	"∞", `\infty `,
	"∫", `\int `,
	"∑", `\sum `,
	"√", `\sqrt `,
	"∂", `\partial `,
	"∇", `\nabla `,
	"∀", `\forall `,
	"∃", `\exists `,
	"∈", `\in `,
	"∉", `\notin `,
	"∋", `\ni `,
	"∌", `\notni `,
	"∏", `\prod `,
	"∐", `\coprod `,
	"∓", `\mp `,
	"∔", `\dotplus `,
	"∘", `\circ `,
	"∝", `\propto `,
)

// Clean replaces math glyphs with their LaTeX macros.
func Clean(latex string) string {
	return glyphs.Replace(latex)
}
