// Package llm provides LLM client functionality for analysis calls.
package llm

import (
	"context"
)

// GenerateOptions controls a single generation call.
type GenerateOptions struct {
	// Temperature for sampling. Analysis passes use 0 for determinism.
	Temperature float64
	// Seed pins sampling for reproducibility where the backend supports it.
	// Nil leaves the seed unset.
	Seed *int
}

// GenerateResult holds a completed generation with usage stats.
type GenerateResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// LLMClient defines the interface for LLM generation operations.
// Use this interface for dependency injection to enable mocking in tests.
type LLMClient interface {
	// GenerateResponse generates a chat completion response.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, opts GenerateOptions) (*GenerateResult, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// Ensure implementations satisfy LLMClient at compile time.
var (
	_ LLMClient = (*Client)(nil)
	_ LLMClient = (*AnthropicClient)(nil)
	_ LLMClient = (*RetryingClient)(nil)
	_ LLMClient = (*MockLLMClient)(nil)
)
