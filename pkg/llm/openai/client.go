package openai

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"airwavego/pkg/config"
	"airwavego/pkg/tracker"
)

// Client implements text generation via the OpenAI chat completion API.
type Client struct {
	apiClient *openai.Client
	apiKey    string
	modelName string
	profiles  map[string]string // Map intent -> modelName
	tracker   *tracker.Tracker
	logPath   string

	temperature float32

	mu sync.RWMutex
}

// NewClient creates a new OpenAI client.
func NewClient(cfg config.LLMConfig, logPath string, t *tracker.Tracker) (*Client, error) {
	c := &Client{
		tracker:     t,
		logPath:     logPath,
		temperature: 0.7,
	}
	if err := c.Configure(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure updates the client with new settings.
func (c *Client) Configure(cfg config.LLMConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.apiKey = cfg.Key
	c.modelName = cfg.Model
	c.profiles = cfg.Profiles

	if c.modelName == "" {
		c.modelName = openai.GPT4oMini
	}

	if c.apiKey == "" {
		// Can't initialize without key.
		c.apiClient = nil
		return nil
	}

	c.apiClient = openai.NewClient(c.apiKey)
	return nil
}

// GenerateText sends a prompt and returns the text response.
func (c *Client) GenerateText(ctx context.Context, intent, prompt string) (string, error) {
	c.mu.RLock()
	client := c.apiClient
	model := c.resolveModel(intent)
	temperature := c.temperature
	c.mu.RUnlock()

	if client == nil {
		return "", fmt.Errorf("openai client not configured")
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		c.logPrompt(intent, prompt, fmt.Sprintf("ERROR: %v", err))
		if c.tracker != nil {
			c.tracker.TrackAPIFailure("openai")
		}
		return "", fmt.Errorf("chat completion error: %w", err)
	}

	if len(resp.Choices) == 0 {
		c.logPrompt(intent, prompt, "ERROR: no choices returned")
		if c.tracker != nil {
			c.tracker.TrackAPIFailure("openai")
		}
		return "", fmt.Errorf("no choices returned")
	}

	text := resp.Choices[0].Message.Content
	c.logPrompt(intent, prompt, text)
	if c.tracker != nil {
		c.tracker.TrackAPISuccess("openai")
	}
	return strings.TrimSpace(text), nil
}

// HealthCheck verifies that the client is configured.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.apiClient == nil {
		return fmt.Errorf("openai client not configured (missing API key)")
	}
	return nil
}

// resolveModel selects the model for an intent, falling back to the default.
func (c *Client) resolveModel(intent string) string {
	if model, ok := c.profiles[intent]; ok && model != "" {
		return model
	}
	return c.modelName
}

func (c *Client) logPrompt(intent, prompt, response string) {
	if c.logPath == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(c.logPath), 0o755); err != nil {
		return
	}

	f, err := os.OpenFile(c.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	entry := fmt.Sprintf("[%s] INTENT: %s\nPROMPT:\n%s\n\nRESPONSE:\n%s\n%s\n",
		timestamp, intent, prompt, response, strings.Repeat("-", 80))

	_, _ = f.WriteString(entry)
}
