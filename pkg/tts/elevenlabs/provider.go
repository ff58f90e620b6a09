package elevenlabs

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
	apiBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"

	defaultVoiceID = "EXAVITQu4vr4xnSDxMaL"
	defaultModelID = "eleven_multilingual_v2"
)

// Provider implements tts.Provider for ElevenLabs. Requests go through
// the shared request client, which serializes calls per provider and
// handles retries with backoff.
type Provider struct {
	apiKey  string
	voiceID string
	modelID string
	client  tts.Poster
}

// NewProvider creates a new ElevenLabs TTS provider.
func NewProvider(cfg config.ElevenLabsConfig, client tts.Poster) *Provider {
	voiceID := cfg.VoiceID
	if voiceID == "" {
		voiceID = defaultVoiceID
	}
	modelID := cfg.Model
	if modelID == "" {
		modelID = defaultModelID
	}
	return &Provider{
		apiKey:  cfg.Key,
		voiceID: voiceID,
		modelID: modelID,
		client:  client,
	}
}

// requestBody represents the JSON payload for ElevenLabs TTS.
type requestBody struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize generates speech from text using ElevenLabs.
func (p *Provider) Synthesize(ctx context.Context, text, voiceID, outputPath string) (string, error) {
	if p.apiKey == "" {
		return "", tts.NewFatalError(http.StatusUnauthorized, "no API key configured for ElevenLabs")
	}

	vid := p.voiceID
	if voiceID != "" {
		vid = voiceID
	}

	reqData := requestBody{
		Text:    text,
		ModelID: p.modelID,
		VoiceSettings: voiceSettings{
			Stability:       0.4,
			SimilarityBoost: 0.9,
		},
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"xi-api-key":   p.apiKey,
		"Content-Type": "application/json",
		"Accept":       "audio/mpeg",
	}

	audio, err := p.client.PostWithHeaders(ctx, apiBaseURL+"/"+vid, jsonData, headers)
	if err != nil {
		var se *request.StatusError
		if errors.As(err, &se) {
			tts.Log("ELEVENLABS", text, se.Code, nil)
			// Auth failures will not recover on retry at the next slot either.
			if se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden {
				return "", tts.NewFatalError(se.Code, fmt.Sprintf("ElevenLabs auth failed: %s", se.Body))
			}
			return "", fmt.Errorf("elevenlabs api error (status %d): %s", se.Code, se.Body)
		}
		tts.Log("ELEVENLABS", text, 0, err)
		return "", tts.NewFatalError(500, fmt.Sprintf("ElevenLabs request failed: %v", err))
	}

	if len(audio) == 0 {
		tts.Log("ELEVENLABS", "Received empty audio file (0 bytes)", 200, nil)
		return "", fmt.Errorf("received empty audio from elevenlabs")
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
		tts.Log("ELEVENLABS", text, 200, err)
		return "", fmt.Errorf("failed to write audio to file: %w", err)
	}

	tts.Log("ELEVENLABS", text, 200, nil)
	return ext, nil
}

// Voices returns the configured voice. ElevenLabs has a large voice
// library; we only surface what the station is set up to use.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{
			ID:       p.voiceID,
			Name:     "Configured ElevenLabs Voice",
			Language: "multilingual",
			IsNeural: true,
		},
	}, nil
}
