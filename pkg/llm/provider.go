package llm

import (
	"context"
)

// Provider defines the interface for interacting with text generation services.
type Provider interface {
	// GenerateText sends a prompt and returns the text response.
	// The intent name selects a model profile and labels the prompt log.
	GenerateText(ctx context.Context, intent, prompt string) (string, error)

	// HealthCheck verifies that the provider is configured and reachable.
	HealthCheck(ctx context.Context) error
}
