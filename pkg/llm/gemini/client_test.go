package gemini

import (
	"context"
	"testing"

	"airwavego/pkg/config"
	"airwavego/pkg/tracker"
)

func TestNewClientWithoutKey(t *testing.T) {
	c, err := NewClient(config.LLMConfig{Provider: "gemini"}, "", tracker.New())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := c.GenerateText(context.Background(), "announcement", "hello"); err == nil {
		t.Error("GenerateText() succeeded without a configured client")
	}
	if err := c.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() passed without a key")
	}
}

func TestResolveModelProfiles(t *testing.T) {
	c := &Client{
		modelName: "gemini-2.5-flash-lite",
		profiles:  map[string]string{"announcement": "gemini-2.5-flash"},
	}

	tests := []struct {
		intent string
		want   string
	}{
		{"announcement", "gemini-2.5-flash"},
		{"unknown-intent", "gemini-2.5-flash-lite"},
	}

	for _, tt := range tests {
		got, _ := c.resolveModel(tt.intent)
		if got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.intent, got, tt.want)
		}
	}
}

func TestSetTemperature(t *testing.T) {
	c := &Client{temperatureBase: 1.0, temperatureJitter: 0.3}
	c.SetTemperature(0.5, 0)

	_, genCfg := c.resolveModel("announcement")
	if genCfg.Temperature == nil || *genCfg.Temperature != 0.5 {
		t.Errorf("Temperature = %v, want exactly 0.5 with zero jitter", genCfg.Temperature)
	}
}

func TestSampleTemperature(t *testing.T) {
	for i := 0; i < 200; i++ {
		got := sampleTemperature(1.0, 0.3)
		if got < 0.7 || got > 1.3 {
			t.Fatalf("sampleTemperature() = %v, outside [0.7, 1.3]", got)
		}
	}

	if got := sampleTemperature(0.8, 0); got != 0.8 {
		t.Errorf("zero jitter: got %v, want 0.8", got)
	}
}

func TestWordWrap(t *testing.T) {
	got := wordWrap("one two three four five", 9)
	want := "one two\nthree\nfour five"
	if got != want {
		t.Errorf("wordWrap() = %q, want %q", got, want)
	}
}
