package station

import (
	"fmt"

	"airwavego/pkg/config"
	"airwavego/pkg/tracker"
	"airwavego/pkg/tts"
	"airwavego/pkg/tts/azure"
	"airwavego/pkg/tts/edgetts"
	"airwavego/pkg/tts/elevenlabs"
	"airwavego/pkg/tts/fishaudio"
)

// NewTTSProvider returns a TTS provider based on configuration. The
// HTTP engines share the request client's per-provider queues.
func NewTTSProvider(cfg config.TTSConfig, language string, rc tts.Poster, t *tracker.Tracker) (tts.Provider, error) {
	switch cfg.Engine {
	case "elevenlabs", "eleven-labs", "":
		return elevenlabs.NewProvider(cfg.ElevenLabs, rc), nil
	case "fish-audio", "fishaudio":
		return fishaudio.NewProvider(cfg.FishAudio, rc), nil
	case "azure", "azure-speech":
		return azure.NewProvider(cfg.AzureSpeech, language, t), nil
	case "edge", "edge-tts":
		return edgetts.NewProvider(cfg.EdgeTTS, t), nil
	case "mock":
		return tts.NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown tts engine: %s", cfg.Engine)
	}
}
