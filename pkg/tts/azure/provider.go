package azure

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"airwavego/pkg/config"
	"airwavego/pkg/tracker"
	"airwavego/pkg/tts"
)

// localeByLanguage maps the station's two-letter language to the BCP-47
// locale Azure expects in SSML. Unknown languages fall back to en-US.
var localeByLanguage = map[string]string{
	"en": "en-US",
	"el": "el-GR",
	"fr": "fr-FR",
	"de": "de-DE",
	"es": "es-ES",
	"it": "it-IT",
	"pt": "pt-PT",
	"nl": "nl-NL",
	"sv": "sv-SE",
	"pl": "pl-PL",
	"tr": "tr-TR",
	"ru": "ru-RU",
	"zh": "zh-CN",
	"ja": "ja-JP",
	"ko": "ko-KR",
}

// Provider implements tts.Provider for Azure Speech.
type Provider struct {
	key     string
	region  string
	voiceID string
	locale  string
	client  *http.Client
	url     string
	tracker *tracker.Tracker
}

// NewProvider creates a new Azure Speech TTS provider.
func NewProvider(cfg config.AzureSpeechConfig, language string, t *tracker.Tracker) *Provider {
	locale, ok := localeByLanguage[language]
	if !ok {
		locale = "en-US"
	}
	return &Provider{
		key:     cfg.Key,
		region:  cfg.Region,
		voiceID: cfg.VoiceID,
		locale:  locale,
		client:  &http.Client{},
		url:     fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", cfg.Region),
		tracker: t,
	}
}

// Synthesize generates speech from text using Azure Speech.
func (p *Provider) Synthesize(ctx context.Context, text, voiceID, outputPath string) (string, error) {
	vid := p.voiceID
	if voiceID != "" {
		vid = voiceID
	}
	if vid == "" {
		return "", fmt.Errorf("no voice ID configured for Azure Speech")
	}

	ssml := p.buildSSML(vid, text)

	req, err := http.NewRequestWithContext(ctx, "POST", p.url, bytes.NewBufferString(ssml))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", p.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", "audio-24khz-160kbitrate-mono-mp3")
	req.Header.Set("User-Agent", "Airwave")

	resp, err := p.client.Do(req)
	if err != nil {
		tts.Log("AZURE", ssml, 0, err)
		if p.tracker != nil {
			p.tracker.TrackAPIFailure("azure-speech")
		}
		return "", fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		tts.Log("AZURE", ssml, resp.StatusCode, nil)
		body, readErr := io.ReadAll(resp.Body)
		bodyStr := string(body)
		if readErr != nil {
			bodyStr = fmt.Sprintf("[failed to read body: %v]", readErr)
		}
		if bodyStr == "" {
			bodyStr = "[empty body]"
		}

		if p.tracker != nil {
			p.tracker.TrackAPIFailure("azure-speech")
		}

		return "", tts.NewFatalError(resp.StatusCode,
			fmt.Sprintf("azure speech api error (status %d): %s", resp.StatusCode, bodyStr))
	}

	tts.Log("AZURE", ssml, 200, nil)
	ext := "mp3"
	filename := outputPath
	if filepath.Ext(filename) != "."+ext {
		filename = filename + "." + ext
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		if p.tracker != nil {
			p.tracker.TrackAPIFailure("azure-speech")
		}
		return "", fmt.Errorf("failed to write audio to file: %w", err)
	}

	if p.tracker != nil {
		p.tracker.TrackAPISuccess("azure-speech")
	}

	return ext, nil
}

// Voices returns a list of available voices.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{
			ID:       p.voiceID,
			Name:     "Configured Azure Voice",
			Language: p.locale,
			IsNeural: true,
		},
	}, nil
}

// buildSSML wraps the plain-text script in a minimal SSML envelope.
// Scripts are plain text, so everything is escaped before wrapping.
func (p *Provider) buildSSML(vid, text string) string {
	var escaped strings.Builder
	_ = xml.EscapeText(&escaped, []byte(text))

	return fmt.Sprintf(
		`<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='%s'><voice name='%s'>%s</voice></speak>`,
		p.locale, vid, escaped.String(),
	)
}
