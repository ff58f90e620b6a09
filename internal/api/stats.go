package api

import (
	"net/http"
	"sort"

	"airwavego/pkg/tracker"
)

// StatsHandler reports per-provider API and cache counters.
type StatsHandler struct {
	tracker *tracker.Tracker
}

// NewStatsHandler creates the handler.
func NewStatsHandler(t *tracker.Tracker) *StatsHandler {
	return &StatsHandler{tracker: t}
}

// ProviderStatsDTO is one provider's counters in the stats response.
type ProviderStatsDTO struct {
	Name        string `json:"name"`
	CacheHits   int64  `json:"cache_hits"`
	CacheMisses int64  `json:"cache_misses"`
	APISuccess  int64  `json:"api_success"`
	APIFailures int64  `json:"api_errors"`
	HitRate     int64  `json:"hit_rate"`
}

// StatsResponse is the GET /api/stats payload.
type StatsResponse struct {
	Providers []ProviderStatsDTO `json:"providers"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()

	resp := StatsResponse{Providers: make([]ProviderStatsDTO, 0, len(snapshot))}
	for name, s := range snapshot {
		dto := ProviderStatsDTO{
			Name:        name,
			CacheHits:   s.CacheHits,
			CacheMisses: s.CacheMisses,
			APISuccess:  s.APISuccess,
			APIFailures: s.APIFailures,
		}
		if total := s.CacheHits + s.CacheMisses; total > 0 {
			dto.HitRate = s.CacheHits * 100 / total
		}
		resp.Providers = append(resp.Providers, dto)
	}
	sort.Slice(resp.Providers, func(i, j int) bool {
		return resp.Providers[i].Name < resp.Providers[j].Name
	})

	writeJSON(w, http.StatusOK, resp)
}
