package solve

import (
	"github.com/jonwraymond/mathproxy/render"
	"github.com/jonwraymond/mathproxy/upstream"
)

// Query is one inbound request.
type Query struct {
	// Query is the math query to solve. It must not be blank.
	Query string `json:"query"`

	// Foreground and Background are optional colors; nil means the default.
	Foreground *string `json:"foreground,omitempty"`
	Background *string `json:"background,omitempty"`
}

// Result is the assembled answer for a Query.
type Result struct {
	// Symbolab is the upstream document as received.
	Symbolab upstream.Document `json:"symbolab"`

	// Cached reports whether this copy was served from the cache.
	Cached bool `json:"cached"`

	// CanonicalNotebookQuery and StandardQuery are the rendered top-level
	// queries, nil when the upstream document lacks them.
	CanonicalNotebookQuery *render.ImageSet `json:"canonicalNotebookQuery"`
	StandardQuery          *render.ImageSet `json:"standardQuery"`

	// Solutions follows the order of the upstream solutions.
	Solutions []Solution `json:"solutions"`
}

// Solution holds the rendered expressions of one upstream solution.
type Solution struct {
	// StepInput is the rendered step input, nil when absent upstream.
	StepInput *render.ImageSet `json:"stepInput"`

	// EntireResult is the rendered result, nil when absent upstream.
	EntireResult *render.ImageSet `json:"entireResult"`

	// Steps is only filled when nested step rendering is enabled.
	Steps []Solution `json:"steps,omitempty"`
}
