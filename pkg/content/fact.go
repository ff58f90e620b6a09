package content

import (
	"context"
	"encoding/json"
	"log/slog"
)

const factURL = "https://uselessfacts.jsph.pl/api/v2/facts/random?language=en"

type factFetcher struct {
	client Getter
}

type factResponse struct {
	Text string `json:"text"`
}

func (f *factFetcher) Fetch(ctx context.Context, _ Locale, _ map[string]string) string {
	// No cache key: a cached random fact stops being random.
	body, err := f.client.Get(ctx, factURL, "")
	if err != nil {
		slog.Warn("Random fact fetch failed", "error", err)
		return "Random fact unavailable due to a network error."
	}

	var resp factResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Text == "" {
		return "Here's a random fact: something amazing exists!"
	}
	return resp.Text
}
