package gemini

import (
	"math/rand"

	"google.golang.org/genai"
)

// resolveModel returns the target model name and configuration for the given intent.
func (c *Client) resolveModel(intent string) (string, *genai.GenerateContentConfig) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	targetModel := c.modelName
	if profileModel, ok := c.profiles[intent]; ok && profileModel != "" {
		targetModel = profileModel
	}

	cfg := &genai.GenerateContentConfig{}
	if c.temperatureBase > 0 {
		temp := sampleTemperature(c.temperatureBase, c.temperatureJitter)
		cfg.Temperature = &temp
	}

	return targetModel, cfg
}

// sampleTemperature samples from a normal distribution centered on base.
// Uses jitter as the approximate range (±jitter), with σ = jitter/2.
// Result is clamped to [base-jitter, base+jitter] and minimum 0.1.
func sampleTemperature(base, jitter float32) float32 {
	if jitter <= 0 {
		return base
	}

	sigma := float64(jitter) / 2.0
	sample := float64(base) + rand.NormFloat64()*sigma

	minTemp := float64(base) - float64(jitter)
	maxTemp := float64(base) + float64(jitter)
	if sample < minTemp {
		sample = minTemp
	}
	if sample > maxTemp {
		sample = maxTemp
	}

	if sample < 0.1 {
		sample = 0.1
	}

	return float32(sample)
}
