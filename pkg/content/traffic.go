package content

import (
	"context"
	"fmt"
)

// trafficFetcher has no live source yet; it emits a plausible line for
// the requested area so scheduled traffic slots still produce a segment.
type trafficFetcher struct{}

func (f *trafficFetcher) Fetch(_ context.Context, loc Locale, _ map[string]string) string {
	area := loc.Location.Region
	if area == "" {
		area = loc.Location.City
	}
	return fmt.Sprintf("Traffic in %s is flowing smoothly with occasional slowdowns.", area)
}
