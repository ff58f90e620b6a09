package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"airwavego/pkg/jobs"
	"airwavego/pkg/model"
	"airwavego/pkg/station"
	"airwavego/pkg/tracker"
)

// fileProducer writes a real audio-sized file so the audio endpoint can
// stream it.
type fileProducer struct {
	dir  string
	fail bool
	last station.Request // written by the worker, read after Wait()
}

func (p *fileProducer) Produce(_ context.Context, req station.Request) (*station.Result, error) {
	p.last = req
	if p.fail {
		return nil, errors.New("produce failed")
	}
	path := filepath.Join(p.dir, req.JobID+".mp3")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xFF}, 2048), 0o644); err != nil {
		return nil, err
	}
	return &station.Result{Text: "script", AudioPath: path, Format: "mp3"}, nil
}

// memHistory is an in-memory AnnouncementStore.
type memHistory struct {
	items []model.Announcement
	err   error
}

func (m *memHistory) SaveAnnouncement(_ context.Context, a *model.Announcement) error {
	m.items = append(m.items, *a)
	return nil
}

func (m *memHistory) RecentAnnouncements(_ context.Context, limit int) ([]model.Announcement, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.items) > limit {
		return m.items[:limit], nil
	}
	return m.items, nil
}

func testServer(t *testing.T, prod *fileProducer, hist *memHistory) (*httptest.Server, *jobs.Queue) {
	t.Helper()

	q := jobs.NewQueue(context.Background(), prod)
	var historyH *HistoryHandler
	if hist != nil {
		historyH = NewHistoryHandler(hist)
	}
	srv := NewServer("localhost:0", NewJobsHandler(q), NewStatsHandler(tracker.New()), historyH, func() {})

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts, q
}

func TestHealthAndVersion(t *testing.T) {
	ts, _ := testServer(t, &fileProducer{dir: t.TempDir()}, nil)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status = %d", resp.StatusCode)
	}

	resp2, err := http.Get(ts.URL + "/api/version")
	if err != nil {
		t.Fatalf("GET /api/version error = %v", err)
	}
	defer resp2.Body.Close()
	var v struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&v); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	if v.Version == "" {
		t.Error("version missing")
	}
}

func TestSubmitValidation(t *testing.T) {
	ts, _ := testServer(t, &fileProducer{dir: t.TempDir()}, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"Bad JSON", `{`, http.StatusBadRequest},
		{"Missing Category", `{"time":"08:30"}`, http.StatusBadRequest},
		{"Unknown Category", `{"category":"sports"}`, http.StatusBadRequest},
		{"Single Category", `{"category":"news"}`, http.StatusAccepted},
		{"Category List", `{"category":["news","weather"],"time":"09:00"}`, http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/v1/jobs", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST /v1/jobs error = %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestSubmitConfigOverrides(t *testing.T) {
	prod := &fileProducer{dir: t.TempDir()}
	ts, q := testServer(t, prod, nil)

	body := `{"category":"weather","config":{"language":"fr","location":{"city":"Lyon","country":"FR"}}}`
	resp, err := http.Post(ts.URL+"/v1/jobs", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/jobs error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusAccepted)
	}
	q.Wait()

	want := station.Overrides{Language: "fr", City: "Lyon", Country: "FR"}
	if prod.last.Overrides != want {
		t.Errorf("Overrides = %+v, want %+v", prod.last.Overrides, want)
	}
}

func TestJobLifecycle(t *testing.T) {
	ts, q := testServer(t, &fileProducer{dir: t.TempDir()}, nil)

	resp, err := http.Post(ts.URL+"/v1/jobs", "application/json",
		strings.NewReader(`{"category":"fact","time":"10:00"}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("submit status = %d", resp.StatusCode)
	}
	var submitted struct {
		JobID string `json:"jobId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		t.Fatalf("decode submit: %v", err)
	}

	q.Wait()

	statusResp, err := http.Get(ts.URL + "/v1/jobs/" + submitted.JobID)
	if err != nil {
		t.Fatalf("GET status error = %v", err)
	}
	defer statusResp.Body.Close()
	var view jobs.View
	if err := json.NewDecoder(statusResp.Body).Decode(&view); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if view.Status != jobs.StatusSucceeded || !view.HasAudio {
		t.Errorf("view = %+v", view)
	}

	audioResp, err := http.Get(ts.URL + "/v1/jobs/" + submitted.JobID + "/audio")
	if err != nil {
		t.Fatalf("GET audio error = %v", err)
	}
	defer audioResp.Body.Close()
	if audioResp.StatusCode != http.StatusOK {
		t.Fatalf("audio status = %d", audioResp.StatusCode)
	}
	if ct := audioResp.Header.Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := audioResp.Header.Get("Content-Disposition"); !strings.Contains(cd, ".mp3") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestJobNotFound(t *testing.T) {
	ts, _ := testServer(t, &fileProducer{dir: t.TempDir()}, nil)

	for _, path := range []string{"/v1/jobs/unknown", "/v1/jobs/unknown/audio"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestAudioNotReady(t *testing.T) {
	ts, q := testServer(t, &fileProducer{dir: t.TempDir(), fail: true}, nil)

	resp, err := http.Post(ts.URL+"/v1/jobs", "application/json", strings.NewReader(`{"category":"news"}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	var submitted struct {
		JobID string `json:"jobId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		t.Fatalf("decode submit: %v", err)
	}
	resp.Body.Close()

	q.Wait()

	audioResp, err := http.Get(ts.URL + "/v1/jobs/" + submitted.JobID + "/audio")
	if err != nil {
		t.Fatalf("GET audio error = %v", err)
	}
	defer audioResp.Body.Close()
	if audioResp.StatusCode != http.StatusConflict {
		t.Errorf("audio status = %d, want 409", audioResp.StatusCode)
	}
	var body struct {
		Error  string `json:"error"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(audioResp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "not_ready" || body.Status != string(jobs.StatusFailed) {
		t.Errorf("body = %+v", body)
	}
}

func TestAudioGone(t *testing.T) {
	dir := t.TempDir()
	ts, q := testServer(t, &fileProducer{dir: dir}, nil)

	resp, err := http.Post(ts.URL+"/v1/jobs", "application/json", strings.NewReader(`{"category":"news"}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	var submitted struct {
		JobID string `json:"jobId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		t.Fatalf("decode submit: %v", err)
	}
	resp.Body.Close()

	q.Wait()
	if err := os.Remove(filepath.Join(dir, submitted.JobID+".mp3")); err != nil {
		t.Fatalf("remove audio: %v", err)
	}

	audioResp, err := http.Get(ts.URL + "/v1/jobs/" + submitted.JobID + "/audio")
	if err != nil {
		t.Fatalf("GET audio error = %v", err)
	}
	audioResp.Body.Close()
	if audioResp.StatusCode != http.StatusGone {
		t.Errorf("audio status = %d, want 410", audioResp.StatusCode)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	hist := &memHistory{items: []model.Announcement{
		{Timestamp: "2026-08-29T10:00:00Z", Category: "news", Text: "headline"},
		{Timestamp: "2026-08-29T09:00:00Z", Category: "fact", Text: "a fact"},
	}}
	ts, _ := testServer(t, &fileProducer{dir: t.TempDir()}, hist)

	resp, err := http.Get(ts.URL + "/api/history?limit=1")
	if err != nil {
		t.Fatalf("GET /api/history error = %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Announcements []model.Announcement `json:"announcements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(body.Announcements) != 1 || body.Announcements[0].Category != "news" {
		t.Errorf("history = %+v", body.Announcements)
	}

	bad, err := http.Get(ts.URL + "/api/history?limit=zero")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", bad.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	tr := tracker.New()
	tr.TrackCacheHit("newsapi")
	tr.TrackCacheHit("newsapi")
	tr.TrackCacheMiss("newsapi")
	tr.TrackAPISuccess("newsapi")

	q := jobs.NewQueue(context.Background(), &fileProducer{dir: t.TempDir()})
	srv := NewServer("localhost:0", NewJobsHandler(q), NewStatsHandler(tr), nil, func() {})
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("GET /api/stats error = %v", err)
	}
	defer resp.Body.Close()

	var stats StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if len(stats.Providers) != 1 {
		t.Fatalf("providers = %+v", stats.Providers)
	}
	p := stats.Providers[0]
	if p.Name != "newsapi" || p.CacheHits != 2 || p.HitRate != 66 {
		t.Errorf("provider stats = %+v", p)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := testServer(t, &fileProducer{dir: t.TempDir()}, nil)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/v1/jobs", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
