package content

import (
	"context"
	"fmt"

	"airwavego/pkg/config"
	"airwavego/pkg/model"
)

// Getter is the slice of the request client the fetchers need.
type Getter interface {
	Get(ctx context.Context, url, cacheKey string) ([]byte, error)
}

// Locale is the station locale in effect for one fetch. Jobs may
// override the configured defaults per request.
type Locale struct {
	Language string
	Location config.LocationConfig
}

// Fetcher retrieves raw material for one category. Fetchers never fail:
// on any error they return a spoken-word fallback line so the broadcast
// can carry on.
type Fetcher interface {
	Fetch(ctx context.Context, loc Locale, metadata map[string]string) string
}

// Registry maps categories to their fetchers.
type Registry struct {
	fetchers map[model.Category]Fetcher
}

// NewRegistry builds the default fetcher set.
func NewRegistry(cfg *config.Config, client Getter) *Registry {
	return &Registry{
		fetchers: map[model.Category]Fetcher{
			model.CategoryNews:    &newsFetcher{client: client, apiKey: cfg.Content.NewsKey},
			model.CategoryWeather: &weatherFetcher{client: client, apiKey: cfg.Content.WeatherKey},
			model.CategoryTraffic: &trafficFetcher{},
			model.CategoryFact:    &factFetcher{client: client},
			model.CategoryMusic:   &musicFetcher{client: client},
		},
	}
}

// Fetch returns raw material for the category, or a fallback line for
// categories without a registered fetcher.
func (r *Registry) Fetch(ctx context.Context, category model.Category, loc Locale, metadata map[string]string) string {
	f, ok := r.fetchers[category]
	if !ok {
		return fmt.Sprintf("No content available for %s.", category)
	}
	return f.Fetch(ctx, loc, metadata)
}
