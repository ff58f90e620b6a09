package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
)

// Mock is a Provider for tests and dry runs. It writes a small fake
// mp3 file so downstream size checks and file serving have something
// to chew on.
type Mock struct {
	calls atomic.Int64
}

// NewMock creates a mock TTS provider.
func NewMock() *Mock {
	return &Mock{}
}

// Synthesize writes placeholder bytes to outputPath.
func (m *Mock) Synthesize(_ context.Context, text, _, outputPath string) (string, error) {
	m.calls.Add(1)

	if filepath.Ext(outputPath) != ".mp3" {
		outputPath += ".mp3"
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	payload := fmt.Sprintf("MOCK-AUDIO %d bytes of text", len(text))
	if err := os.WriteFile(outputPath, []byte(payload), 0o644); err != nil {
		return "", fmt.Errorf("failed to write mock audio: %w", err)
	}
	return "mp3", nil
}

// Voices returns a single fake voice.
func (m *Mock) Voices(_ context.Context) ([]Voice, error) {
	return []Voice{{ID: "mock", Name: "Mock Voice", Language: "en-US", IsNeural: false}}, nil
}

// Calls returns how many times Synthesize ran.
func (m *Mock) Calls() int64 {
	return m.calls.Load()
}
