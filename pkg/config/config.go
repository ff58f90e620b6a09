package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Station    StationConfig    `yaml:"station"`
	Server     ServerConfig     `yaml:"server"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
	DB         DBConfig         `yaml:"db"`
	Request    RequestConfig    `yaml:"request"`
	LLM        LLMConfig        `yaml:"llm"`
	TTS        TTSConfig        `yaml:"tts"`
	Energy     EnergyConfig     `yaml:"energy"`
	Continuity ContinuityConfig `yaml:"continuity"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Content    ContentConfig    `yaml:"content"`
}

// StationConfig describes the on-air identity of the station.
type StationConfig struct {
	Name     string         `yaml:"name"`
	Host     string         `yaml:"host"`
	Language string         `yaml:"language"` // "en", "el", ...
	Location LocationConfig `yaml:"location"`
}

// LocationConfig holds the broadcast location used by content fetchers.
type LocationConfig struct {
	City    string `yaml:"city"`
	Region  string `yaml:"region"`
	Country string `yaml:"country"` // ISO 3166-1, e.g. "GR"
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// OutputConfig holds audio output settings.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// RequestConfig holds outbound HTTP settings.
type RequestConfig struct {
	Retries  int           `yaml:"retries"`
	Timeout  Duration      `yaml:"timeout"`
	Backoff  BackoffConfig `yaml:"backoff"`
	CacheTTL Duration      `yaml:"cache_ttl"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// LLMConfig holds settings for the text generation provider.
type LLMConfig struct {
	Provider string            `yaml:"provider"` // "gemini", "openai", "mock"
	Model    string            `yaml:"model"`
	Key      string            `yaml:"key"`
	Profiles map[string]string `yaml:"profiles"` // Map of intent -> model

	// Sampling temperature: each generation samples around the base,
	// within ±jitter, so consecutive segments don't all sound alike.
	TemperatureBase   float32 `yaml:"temperature_base"`
	TemperatureJitter float32 `yaml:"temperature_jitter"`
}

// ElevenLabsConfig holds settings for ElevenLabs TTS.
type ElevenLabsConfig struct {
	Key     string `yaml:"key"`
	VoiceID string `yaml:"voice"`
	Model   string `yaml:"model"`
}

// FishAudioConfig holds settings for Fish Audio TTS.
type FishAudioConfig struct {
	Key     string `yaml:"key"`
	VoiceID string `yaml:"voice"` // Reference ID
	Model   string `yaml:"model"`
}

// AzureSpeechConfig holds settings for Azure Speech TTS.
type AzureSpeechConfig struct {
	Key     string `yaml:"key"`
	Region  string `yaml:"region"` // e.g. "eastus"
	VoiceID string `yaml:"voice"`
}

// EdgeTTSConfig holds settings for Edge TTS.
type EdgeTTSConfig struct {
	VoiceID string `yaml:"voice"` // e.g. "en-US-AvaMultilingualNeural"
}

// TTSConfig holds Text-To-Speech settings.
type TTSConfig struct {
	Engine      string            `yaml:"engine"`
	ElevenLabs  ElevenLabsConfig  `yaml:"elevenlabs"`
	FishAudio   FishAudioConfig   `yaml:"fish_audio"`
	AzureSpeech AzureSpeechConfig `yaml:"azure_speech"`
	EdgeTTS     EdgeTTSConfig     `yaml:"edge_tts"`
}

// EnergyConfig tunes the presentational energy hint passed to generation.
type EnergyConfig struct {
	Base     float64 `yaml:"base"`     // center of the [0,1] range
	Variance float64 `yaml:"variance"` // random spread around base
}

// ContinuityConfig holds rolling-history settings.
type ContinuityConfig struct {
	Path            string `yaml:"path"`
	DiskLimit       int    `yaml:"disk_limit"`        // entries kept on disk
	RecentLimit     int    `yaml:"recent_limit"`      // working-set cap after append
	ContextEntries  int    `yaml:"context_entries"`   // entries fed into the context digest
	ContextMaxChars int    `yaml:"context_max_chars"` // tail-truncation bound
}

// SchedulerConfig holds tick scheduler settings.
type SchedulerConfig struct {
	SchedulePath string `yaml:"schedule_path"`
	DemoOnce     bool   `yaml:"demo_once"` // exit after first successful firing
}

// ContentConfig holds API keys for content sources.
type ContentConfig struct {
	NewsKey    string `yaml:"news_key"`
	WeatherKey string `yaml:"weather_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
	LLM      LogSettings `yaml:"llm"`
	TTS      LogSettings `yaml:"tts"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Station: StationConfig{
			Name:     "AI Radio",
			Host:     "Sam",
			Language: "en",
			Location: LocationConfig{
				City:    "Athens",
				Region:  "Attica",
				Country: "GR",
			},
		},
		Server: ServerConfig{
			Address: "localhost:8787",
		},
		Output: OutputConfig{
			Dir: "./output",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
			LLM: LogSettings{
				Path:  "./logs/llm.log",
				Level: "INFO",
			},
			TTS: LogSettings{
				Path:  "./logs/tts.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/airwave.db",
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(90 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(30 * time.Second),
			},
			CacheTTL: Duration(10 * time.Minute),
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash-lite",
			Key:      "",
			Profiles: map[string]string{
				"announcement": "gemini-2.5-flash-lite",
			},
			TemperatureBase:   1.0,
			TemperatureJitter: 0.3,
		},
		TTS: TTSConfig{
			Engine: "elevenlabs",
			ElevenLabs: ElevenLabsConfig{
				VoiceID: "EXAVITQu4vr4xnSDxMaL",
				Model:   "eleven_multilingual_v2",
			},
			FishAudio: FishAudioConfig{
				VoiceID: "e58b0d7efca34eb38d5c4985e378abcb",
				Model:   "s1",
			},
			AzureSpeech: AzureSpeechConfig{
				VoiceID: "en-US-AvaMultilingualNeural",
			},
			EdgeTTS: EdgeTTSConfig{
				VoiceID: "en-US-AvaMultilingualNeural",
			},
		},
		Energy: EnergyConfig{
			Base:     0.45,
			Variance: 0.25,
		},
		Continuity: ContinuityConfig{
			Path:            "./output/state.json",
			DiskLimit:       20,
			RecentLimit:     10,
			ContextEntries:  6,
			ContextMaxChars: 1200,
		},
		Scheduler: SchedulerConfig{
			SchedulePath: "configs/schedule.yaml",
			DemoOnce:     false,
		},
		Content: ContentConfig{},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, defaults are merged under existing values but the file is
// NOT written back (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		applyEnvFallbacks(cfg)

		if err := validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// If file does not exist, save defaults
	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnvFallbacks(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvFallbacks fills credentials from the environment when the file left
// them empty. Keys never get saved back to disk.
func applyEnvFallbacks(cfg *Config) {
	envFill(&cfg.LLM.Key, "GEMINI_API_KEY")
	if cfg.LLM.Provider == "openai" {
		envFill(&cfg.LLM.Key, "OPENAI_API_KEY")
	}
	envFill(&cfg.TTS.ElevenLabs.Key, "ELEVENLABS_API_KEY")
	envFill(&cfg.TTS.FishAudio.Key, "FISH_AUDIO_API_KEY")
	envFill(&cfg.TTS.AzureSpeech.Key, "AZURE_SPEECH_KEY")
	envFill(&cfg.TTS.AzureSpeech.Region, "AZURE_SPEECH_REGION")
	envFill(&cfg.Content.NewsKey, "NEWS_API_KEY")
	envFill(&cfg.Content.WeatherKey, "WEATHER_API_KEY")
	envFill(&cfg.Station.Name, "STATION_NAME")
	envFill(&cfg.Station.Host, "HOST_NAME")
}

func envFill(dst *string, key string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

var languageRe = regexp.MustCompile(`^[a-z]{2}$`)

func validate(cfg *Config) error {
	if !languageRe.MatchString(cfg.Station.Language) {
		return fmt.Errorf("invalid station language %q: must be a two-letter code (e.g. 'en', 'el')", cfg.Station.Language)
	}
	if cfg.Energy.Base < 0 || cfg.Energy.Base > 1 {
		return fmt.Errorf("energy base %v out of range [0,1]", cfg.Energy.Base)
	}
	if cfg.Energy.Variance < 0 || cfg.Energy.Variance > 1 {
		return fmt.Errorf("energy variance %v out of range [0,1]", cfg.Energy.Variance)
	}
	if cfg.Continuity.DiskLimit <= 0 || cfg.Continuity.RecentLimit <= 0 {
		return fmt.Errorf("continuity limits must be positive")
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Airwave Configuration
# ---------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	// Inject comments for Enum fields
	reEngine := regexp.MustCompile(`(?m)^(\s+)engine:`)
	data = reEngine.ReplaceAll(data, []byte("${1}# Options: elevenlabs, fish-audio, azure-speech, edge-tts, mock\n${1}engine:"))

	reProvider := regexp.MustCompile(`(?m)^(\s+)provider:`)
	data = reProvider.ReplaceAll(data, []byte("${1}# Options: gemini, openai, mock\n${1}provider:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // File exists, do nothing
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
