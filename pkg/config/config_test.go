package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Energy.Base != 0.45 {
		t.Errorf("Energy.Base = %v, want 0.45", cfg.Energy.Base)
	}
	if cfg.Energy.Variance != 0.25 {
		t.Errorf("Energy.Variance = %v, want 0.25", cfg.Energy.Variance)
	}
	if cfg.LLM.TemperatureBase != 1.0 || cfg.LLM.TemperatureJitter != 0.3 {
		t.Errorf("LLM temperature = %v/%v, want 1.0/0.3", cfg.LLM.TemperatureBase, cfg.LLM.TemperatureJitter)
	}
	if cfg.Continuity.DiskLimit != 20 {
		t.Errorf("Continuity.DiskLimit = %d, want 20", cfg.Continuity.DiskLimit)
	}
	if cfg.Continuity.RecentLimit != 10 {
		t.Errorf("Continuity.RecentLimit = %d, want 10", cfg.Continuity.RecentLimit)
	}
	if cfg.TTS.Engine != "elevenlabs" {
		t.Errorf("TTS.Engine = %q, want elevenlabs", cfg.TTS.Engine)
	}
}

func TestLoadCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "airwave.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Address == "" {
		t.Error("Load() returned empty server address")
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Load() did not create config file: %v", err)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "airwave.yaml")

	content := `
station:
  name: Night Owl FM
  language: el
request:
  timeout: 2m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Station.Name != "Night Owl FM" {
		t.Errorf("Station.Name = %q, want Night Owl FM", cfg.Station.Name)
	}
	if cfg.Station.Language != "el" {
		t.Errorf("Station.Language = %q, want el", cfg.Station.Language)
	}
	if got := time.Duration(cfg.Request.Timeout); got != 2*time.Minute {
		t.Errorf("Request.Timeout = %v, want 2m", got)
	}
	// Untouched sections keep defaults
	if cfg.Continuity.ContextMaxChars != 1200 {
		t.Errorf("Continuity.ContextMaxChars = %d, want 1200", cfg.Continuity.ContextMaxChars)
	}
}

func TestLoadEnvFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "airwave.yaml")

	t.Setenv("ELEVENLABS_API_KEY", "el-key-from-env")
	t.Setenv("NEWS_API_KEY", "news-key-from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TTS.ElevenLabs.Key != "el-key-from-env" {
		t.Errorf("ElevenLabs.Key = %q, want env value", cfg.TTS.ElevenLabs.Key)
	}
	if cfg.Content.NewsKey != "news-key-from-env" {
		t.Errorf("Content.NewsKey = %q, want env value", cfg.Content.NewsKey)
	}

	// Env keys must not leak into the file written to disk
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("config file is empty")
	}
	if strings.Contains(string(data), "el-key-from-env") {
		t.Error("config file contains env credential")
	}
}

func TestLoadRejectsBadLanguage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "airwave.yaml")

	content := "station:\n  language: english\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() accepted invalid language code")
	}
}
