package fishaudio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"airwavego/pkg/config"
	"airwavego/pkg/request"
	"airwavego/pkg/tts"
)

const (
	apiURL = "https://api.fish.audio/v1/tts"
)

// Provider implements tts.Provider for Fish Audio. Requests go through
// the shared request client, which serializes calls per provider and
// handles retries with backoff.
type Provider struct {
	apiKey  string
	voiceID string // Default voice ID (reference_id)
	modelID string // Model ID (e.g. "s1")
	client  tts.Poster
}

// NewProvider creates a new Fish Audio TTS provider.
func NewProvider(cfg config.FishAudioConfig, client tts.Poster) *Provider {
	return &Provider{
		apiKey:  cfg.Key,
		voiceID: cfg.VoiceID,
		modelID: cfg.Model,
		client:  client,
	}
}

// requestBody represents the JSON payload for Fish Audio TTS.
type requestBody struct {
	Text        string `json:"text"`
	ReferenceID string `json:"reference_id"`
	ModelID     string `json:"model,omitempty"`
	Format      string `json:"format"`
	Mp3Bitrate  int    `json:"mp3_bitrate,omitempty"`
	Latency     string `json:"latency,omitempty"`
}

// Synthesize generates speech from text using Fish Audio.
func (p *Provider) Synthesize(ctx context.Context, text, voiceID, outputPath string) (string, error) {
	vid := p.voiceID
	if voiceID != "" {
		vid = voiceID
	}
	if vid == "" {
		return "", fmt.Errorf("no voice ID configured for Fish Audio")
	}

	reqData := requestBody{
		Text:        text,
		ReferenceID: vid,
		ModelID:     p.modelID,
		Format:      "mp3",
		Mp3Bitrate:  128,
		Latency:     "normal",
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Authorization": "Bearer " + p.apiKey,
		"Content-Type":  "application/json",
	}

	audio, err := p.client.PostWithHeaders(ctx, apiURL, jsonData, headers)
	if err != nil {
		var se *request.StatusError
		if errors.As(err, &se) {
			tts.Log("FISH", text, se.Code, nil)
			// Auth failures will not recover on retry at the next slot either.
			if se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden {
				return "", tts.NewFatalError(se.Code, fmt.Sprintf("Fish Audio auth failed: %s", se.Body))
			}
			return "", fmt.Errorf("fish audio api error (status %d): %s", se.Code, se.Body)
		}
		tts.Log("FISH", text, 0, err)
		return "", tts.NewFatalError(500, fmt.Sprintf("Fish Audio request failed: %v", err))
	}

	if len(audio) == 0 {
		tts.Log("FISH", "Received empty audio file (0 bytes)", 200, nil)
		return "", fmt.Errorf("received empty audio from fish audio")
	}

	ext := "mp3"
	filename := outputPath
	if filepath.Ext(filename) != "."+ext {
		filename = filename + "." + ext
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(filename, audio, 0o644); err != nil {
		tts.Log("FISH", text, 200, err)
		return "", fmt.Errorf("failed to write audio to file: %w", err)
	}

	tts.Log("FISH", text, 200, nil)
	return ext, nil
}

// Voices returns the configured voice. Fish Audio hosts thousands of
// community voices, so only the configured one is surfaced.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{
			ID:       p.voiceID,
			Name:     "Configured Fish Audio Voice",
			Language: "en-US",
			IsNeural: true,
		},
	}, nil
}
