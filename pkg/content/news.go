package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

const newsBaseURL = "https://newsapi.org/v2/top-headlines"

type newsFetcher struct {
	client Getter
	apiKey string
}

type newsResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title string `json:"title"`
	} `json:"articles"`
	Message string `json:"message"`
}

func (f *newsFetcher) Fetch(ctx context.Context, loc Locale, _ map[string]string) string {
	if f.apiKey == "" {
		return "News data unavailable: no API key configured."
	}

	global := f.headline(ctx, newsBaseURL+"?sources=bbc-news&apiKey="+url.QueryEscape(f.apiKey),
		"news:global", "No global headline available.")

	// ISO 3166-1, lowercased for the API.
	country := strings.ToLower(loc.Location.Country)
	local := f.headline(ctx,
		fmt.Sprintf("%s?country=%s&apiKey=%s", newsBaseURL, url.QueryEscape(country), url.QueryEscape(f.apiKey)),
		"news:"+country, "No local headline available.")

	return fmt.Sprintf("Global news: %s\nLocal news: %s", global, local)
}

func (f *newsFetcher) headline(ctx context.Context, u, cacheKey, fallback string) string {
	body, err := f.client.Get(ctx, u, cacheKey)
	if err != nil {
		slog.Warn("News fetch failed", "key", cacheKey, "error", err)
		return fallback
	}

	var resp newsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("News response parse failed", "key", cacheKey, "error", err)
		return fallback
	}

	if len(resp.Articles) > 0 && resp.Articles[0].Title != "" {
		return resp.Articles[0].Title
	}
	if resp.Message != "" {
		return resp.Message
	}
	return fallback
}
