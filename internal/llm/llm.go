// Package llm wraps the Gemini API behind a small text-completion interface
// and derives the static site artifacts from a task brief.
package llm

import "context"

// Client issues a single text completion. Implementations must be safe for
// concurrent use.
type Client interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
