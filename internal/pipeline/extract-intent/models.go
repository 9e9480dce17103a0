// internal/pipeline/extract-intent/models.go
package extractintent

import "context"

// CompletionRequest is a single-shot prompt completion.
type CompletionRequest struct {
	Prompt          string
	Temperature     float32
	MaxOutputTokens int32
}

// Completer is the language-understanding service. Implementations wrap
// failures with ErrUpstreamUnavailable or ErrUpstreamError.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
