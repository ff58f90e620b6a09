package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"airwavego/pkg/jobs"
	"airwavego/pkg/model"
	"airwavego/pkg/station"
)

// JobsHandler exposes the job queue over HTTP.
type JobsHandler struct {
	queue *jobs.Queue
}

// NewJobsHandler creates the handler around a queue.
func NewJobsHandler(q *jobs.Queue) *JobsHandler {
	return &JobsHandler{queue: q}
}

// submitRequest is the POST body. "category" takes a single string or a
// list, matching what schedule files allow. The optional "config" block
// overrides the station language/location for this job only.
type submitRequest struct {
	Time     string            `json:"time,omitempty"`
	Category categoryList      `json:"category"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Config   *submitConfig     `json:"config,omitempty"`
}

type submitConfig struct {
	Language string `json:"language,omitempty"`
	Location struct {
		City    string `json:"city,omitempty"`
		Region  string `json:"region,omitempty"`
		Country string `json:"country,omitempty"`
	} `json:"location,omitempty"`
}

func (c *submitConfig) overrides() station.Overrides {
	if c == nil {
		return station.Overrides{}
	}
	return station.Overrides{
		Language: c.Language,
		City:     c.Location.City,
		Region:   c.Location.Region,
		Country:  c.Location.Country,
	}
}

// categoryList unmarshals either "news" or ["news","weather"].
type categoryList []model.Category

func (c *categoryList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = categoryList{model.Category(single)}
		return nil
	}
	var many []model.Category
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*c = categoryList(many)
	return nil
}

// HandleSubmit validates the request and enqueues a job. Responds 202
// with the job id; the client polls for completion.
func (h *JobsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if len(req.Category) == 0 {
		writeError(w, http.StatusBadRequest, "category_required")
		return
	}
	for _, cat := range req.Category {
		if !model.IsKnownCategory(cat) {
			writeError(w, http.StatusBadRequest, "unknown_category")
			return
		}
	}

	id := h.queue.Submit(jobs.Request{
		Time:       req.Time,
		Categories: req.Category,
		Metadata:   req.Metadata,
		Overrides:  req.Config.overrides(),
	})

	writeJSON(w, http.StatusAccepted, map[string]string{"jobId": id})
}

// HandleStatus returns the sanitized job projection.
func (h *JobsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	v, ok := h.queue.Get(r.PathValue("jobId"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleAudio streams the finished audio file.
// 404 unknown job, 409 not finished, 410 file since removed from disk.
func (h *JobsHandler) HandleAudio(w http.ResponseWriter, r *http.Request) {
	path, status, ok := h.queue.Audio(r.PathValue("jobId"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if status != jobs.StatusSucceeded || path == "" {
		writeJSON(w, http.StatusConflict, map[string]any{"error": "not_ready", "status": status})
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusGone, "gone")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusGone, "gone")
		return
	}
	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), f)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
