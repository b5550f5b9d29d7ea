package upstream

import (
	"encoding/json"
	"fmt"
)

// Document is a solve response. Raw holds the body exactly as received;
// the remaining fields are the parts of it the proxy renders.
type Document struct {
	Raw json.RawMessage

	CanonicalNotebookQuery *string
	StandardQuery          *string
	Solutions              []Solution
}

// Solution is one entry of the document's solutions list.
type Solution struct {
	StepInput    *string `json:"step_input"`
	EntireResult *string `json:"entire_result"`
	Steps        Steps   `json:"steps"`
}

// Step is a nested step of a solution. Steps may nest further.
type Step struct {
	StepInput    *string `json:"step_input"`
	EntireResult *string `json:"entire_result"`
	Steps        Steps   `json:"steps"`
}

// Steps is a list of nested steps. Only nested step rendering reads it, so
// a value of any other shape decodes as empty instead of rejecting the
// whole document.
type Steps []Step

func (s *Steps) UnmarshalJSON(data []byte) error {
	var steps []Step
	if err := json.Unmarshal(data, &steps); err != nil {
		*s = nil
		return nil
	}
	*s = steps
	return nil
}

type documentTree struct {
	CanonicalNotebookQuery *string    `json:"canonicalNotebookQuery"`
	StandardQuery          *string    `json:"standardQuery"`
	Solutions              []Solution `json:"solutions"`
}

// ParseDocument decodes data, keeping a copy of it as Raw.
func ParseDocument(data []byte) (*Document, error) {
	var tree documentTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	raw := make(json.RawMessage, len(data))
	copy(raw, data)

	return &Document{
		Raw:                    raw,
		CanonicalNotebookQuery: tree.CanonicalNotebookQuery,
		StandardQuery:          tree.StandardQuery,
		Solutions:              tree.Solutions,
	}, nil
}

// MarshalJSON emits the raw upstream document.
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d.Raw) == 0 {
		return []byte("null"), nil
	}
	return d.Raw, nil
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (d *Document) UnmarshalJSON(data []byte) error {
	doc, err := ParseDocument(data)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}
