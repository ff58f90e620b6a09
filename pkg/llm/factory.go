package llm

import (
	"fmt"

	"airwavego/pkg/config"
	"airwavego/pkg/llm/gemini"
	"airwavego/pkg/llm/openai"
	"airwavego/pkg/tracker"
)

// New returns a text generation provider based on configuration.
func New(cfg config.LLMConfig, logPath string, t *tracker.Tracker) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewClient(cfg, logPath, t)
	case "openai":
		return openai.NewClient(cfg, logPath, t)
	case "mock":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
