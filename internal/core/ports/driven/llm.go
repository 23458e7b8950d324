// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService provides text-completion operations for disambiguation and
// aspect filling. This is an optional service - when nil, category
// selection degrades to pure retrieval.
//
// The service must be treated as untrusted: it can time out, return
// malformed output, or return semantically wrong output. Callers validate
// everything it produces.
//
// Implementations may include:
//   - Anthropic (Claude Haiku for cheap, fast decisions)
//   - OpenAI (GPT-4o-mini)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used at startup to verify connectivity before committing to LLM-assisted mode.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// Pipeline decisions run at 0 so reruns stay reproducible.
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
