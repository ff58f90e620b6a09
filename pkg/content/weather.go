package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
)

const weatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"

type weatherFetcher struct {
	client Getter
	apiKey string
}

type weatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Message string `json:"message"`
}

func (f *weatherFetcher) Fetch(ctx context.Context, loc Locale, _ map[string]string) string {
	city := loc.Location.City
	if f.apiKey == "" {
		return fmt.Sprintf("Weather data unavailable for %s: no API key configured.", city)
	}

	query := url.QueryEscape(city + "," + loc.Location.Country)
	u := fmt.Sprintf("%s?q=%s&appid=%s&units=metric&lang=%s",
		weatherBaseURL, query, url.QueryEscape(f.apiKey), url.QueryEscape(loc.Language))

	body, err := f.client.Get(ctx, u, "weather:"+city)
	if err != nil {
		slog.Warn("Weather fetch failed", "city", city, "error", err)
		return fmt.Sprintf("Weather data unavailable for %s due to a network error.", city)
	}

	var resp weatherResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("Weather response parse failed", "city", city, "error", err)
		return fmt.Sprintf("Weather data unavailable for %s.", city)
	}

	if len(resp.Weather) == 0 {
		if resp.Message != "" {
			return fmt.Sprintf("Weather data unavailable for %s: %s", city, resp.Message)
		}
		return fmt.Sprintf("Weather data unavailable for %s.", city)
	}

	return fmt.Sprintf("The weather in %s is %s with a temperature of %.0f°C.",
		city, resp.Weather[0].Description, resp.Main.Temp)
}
