package jobs

import (
	"airwavego/pkg/model"
	"airwavego/pkg/station"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Request is a validated on-demand production request. Overrides are
// request-supplied config fields applied over the station defaults for
// this one run.
type Request struct {
	Time       string            `json:"time,omitempty"` // "HH:MM"; empty means "now"
	Categories []model.Category  `json:"categories"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Overrides  station.Overrides `json:"-"`
}

// Job is the internal record of one submitted request. Jobs are kept
// for the lifetime of the process so clients can poll terminal states.
type Job struct {
	ID         string
	Status     Status
	CreatedAt  string
	StartedAt  string
	FinishedAt string
	Request    Request
	OutputPath string
	Err        string
}

// View is the client-facing projection of a job. The original request
// is not echoed back.
type View struct {
	ID         string `json:"id"`
	Status     Status `json:"status"`
	CreatedAt  string `json:"createdAt"`
	StartedAt  string `json:"startedAt,omitempty"`
	FinishedAt string `json:"finishedAt,omitempty"`
	Error      string `json:"error,omitempty"`
	HasAudio   bool   `json:"hasAudio"`
}

func (j *Job) view() View {
	return View{
		ID:         j.ID,
		Status:     j.Status,
		CreatedAt:  j.CreatedAt,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
		Error:      j.Err,
		HasAudio:   j.OutputPath != "",
	}
}
