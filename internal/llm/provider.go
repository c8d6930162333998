package llm

import "context"

// Provider is the abstraction over the external text-generation service.
// The contract is deliberately narrow: a prompt goes in, free-form text
// comes out. Callers own any decoding of that text.
type Provider interface {
	// Generate sends a prompt to the model and returns the raw text
	// response. Transport and provider failures are reported as
	// *ErrUnavailable (or *ErrRateLimit for 429s).
	Generate(ctx context.Context, req Request) (string, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes a single generation call.
type Request struct {
	// System sets the model's role and constraints. Optional.
	System string

	// Prompt is the user message. All calls in Lumina are single-turn.
	Prompt string

	// MaxTokens caps the response length. Zero means provider default.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0. Zero means deterministic.
	Temperature float64
}
