package ports

import "context"

// AIClient is the single entry point to the language model. Implementations
// must return an error (never panic) on transport or provider failures; all
// callers degrade gracefully when the call fails.
type AIClient interface {
	// Invoke sends a fully built prompt and returns the raw response text.
	Invoke(ctx context.Context, prompt string, maxTokens int32) (string, error)
}
