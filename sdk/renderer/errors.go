// Package renderer maps the shared profile model back to canonical S-format
// and C-format text (spec §4.G).
package renderer

import "fmt"

// RenderError is an output-writer failure or an unreachable renderer branch
// — always a 500 at the HTTP edge (§7 RenderError).
type RenderError struct {
	Reason string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("renderer: %s", e.Reason)
}
