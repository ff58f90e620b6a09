package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"airwavego/pkg/config"
	"airwavego/pkg/request"
	"airwavego/pkg/tts"
)

// stubPoster records the last request and returns canned audio or an error.
type stubPoster struct {
	audio   []byte
	err     error
	lastURL string
	headers map[string]string
	body    []byte
}

func (s *stubPoster) PostWithHeaders(_ context.Context, u string, body []byte, headers map[string]string) ([]byte, error) {
	s.lastURL = u
	s.body = body
	s.headers = headers
	if s.err != nil {
		return nil, s.err
	}
	return s.audio, nil
}

func TestNewProviderDefaults(t *testing.T) {
	p := NewProvider(config.ElevenLabsConfig{Key: "fake-key"}, nil)
	if p.voiceID != defaultVoiceID {
		t.Errorf("voiceID = %q, want default %q", p.voiceID, defaultVoiceID)
	}
	if p.modelID != defaultModelID {
		t.Errorf("modelID = %q, want default %q", p.modelID, defaultModelID)
	}
}

func TestNewProviderConfigured(t *testing.T) {
	p := NewProvider(config.ElevenLabsConfig{
		Key:     "fake-key",
		VoiceID: "custom-voice",
		Model:   "eleven_turbo_v2",
	}, nil)
	if p.voiceID != "custom-voice" {
		t.Errorf("voiceID = %q", p.voiceID)
	}
	if p.modelID != "eleven_turbo_v2" {
		t.Errorf("modelID = %q", p.modelID)
	}
}

func TestSynthesizeWithoutKey(t *testing.T) {
	p := NewProvider(config.ElevenLabsConfig{}, nil)

	_, err := p.Synthesize(context.Background(), "hello", "", t.TempDir()+"/out")
	if err == nil {
		t.Fatal("Synthesize() should fail without an API key")
	}
	if !tts.IsFatalError(err) {
		t.Errorf("Synthesize() error = %v, want FatalError", err)
	}
}

func TestSynthesizeWritesAudio(t *testing.T) {
	tts.SetLogPath(filepath.Join(t.TempDir(), "tts.log"))
	audio := bytes.Repeat([]byte{0xFF}, 2048)
	poster := &stubPoster{audio: audio}
	p := NewProvider(config.ElevenLabsConfig{Key: "fake-key"}, poster)

	out := filepath.Join(t.TempDir(), "segment.mp3")
	format, err := p.Synthesize(context.Background(), "hello listeners", "", out)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if format != "mp3" {
		t.Errorf("format = %q", format)
	}

	written, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if !bytes.Equal(written, audio) {
		t.Error("output file does not match the synthesized audio")
	}

	if poster.lastURL != apiBaseURL+"/"+defaultVoiceID {
		t.Errorf("url = %q", poster.lastURL)
	}
	if poster.headers["xi-api-key"] != "fake-key" {
		t.Errorf("headers = %v, want api key set", poster.headers)
	}

	var reqData requestBody
	if err := json.Unmarshal(poster.body, &reqData); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if reqData.Text != "hello listeners" || reqData.ModelID != defaultModelID {
		t.Errorf("request = %+v", reqData)
	}
	if reqData.VoiceSettings.Stability != 0.4 || reqData.VoiceSettings.SimilarityBoost != 0.9 {
		t.Errorf("voice settings = %+v", reqData.VoiceSettings)
	}
}

func TestSynthesizeAuthFailureIsFatal(t *testing.T) {
	tts.SetLogPath(filepath.Join(t.TempDir(), "tts.log"))
	poster := &stubPoster{err: &request.StatusError{Code: http.StatusUnauthorized, Body: "bad key"}}
	p := NewProvider(config.ElevenLabsConfig{Key: "fake-key"}, poster)

	_, err := p.Synthesize(context.Background(), "hello", "", filepath.Join(t.TempDir(), "out.mp3"))
	if err == nil {
		t.Fatal("Synthesize() should fail on 401")
	}
	if !tts.IsFatalError(err) {
		t.Errorf("Synthesize() error = %v, want FatalError", err)
	}
}

func TestSynthesizeEmptyAudio(t *testing.T) {
	tts.SetLogPath(filepath.Join(t.TempDir(), "tts.log"))
	poster := &stubPoster{audio: nil}
	p := NewProvider(config.ElevenLabsConfig{Key: "fake-key"}, poster)

	out := filepath.Join(t.TempDir(), "out.mp3")
	if _, err := p.Synthesize(context.Background(), "hello", "", out); err == nil {
		t.Fatal("Synthesize() should fail on an empty response")
	}
	if _, err := os.Stat(out); err == nil {
		t.Error("output file created from an empty response")
	}
}
