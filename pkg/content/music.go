package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
)

const musicLookupURL = "https://api.duckduckgo.com/"

type musicFetcher struct {
	client Getter
}

type instantAnswer struct {
	Abstract      string `json:"Abstract"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

func (f *musicFetcher) Fetch(ctx context.Context, _ Locale, metadata map[string]string) string {
	title := metadata["title"]
	artist := metadata["artist"]
	if title == "" {
		return "No song information provided."
	}

	query := title
	if artist != "" {
		query = title + " " + artist
	}

	u := fmt.Sprintf("%s?q=%s&format=json&no_redirect=1", musicLookupURL, url.QueryEscape(query))
	body, err := f.client.Get(ctx, u, "music:"+query)
	if err != nil {
		slog.Warn("Music lookup failed", "query", query, "error", err)
		return f.notFound(title, artist)
	}

	var resp instantAnswer
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("Music lookup parse failed", "query", query, "error", err)
		return f.notFound(title, artist)
	}

	snippet := resp.Abstract
	if snippet == "" && len(resp.RelatedTopics) > 0 {
		snippet = resp.RelatedTopics[0].Text
	}
	if snippet == "" {
		return f.notFound(title, artist)
	}

	who := artist
	if who == "" {
		who = "an unknown artist"
	}
	return fmt.Sprintf("Here's something about %q by %s: %s", title, who, snippet)
}

func (f *musicFetcher) notFound(title, artist string) string {
	if artist != "" {
		return fmt.Sprintf("Couldn't find details for %q by %s.", title, artist)
	}
	return fmt.Sprintf("Couldn't find details for %q.", title)
}
