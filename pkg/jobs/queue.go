package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"airwavego/pkg/station"
)

// Producer is the slice of the station pipeline the worker drives.
type Producer interface {
	Produce(ctx context.Context, req station.Request) (*station.Result, error)
}

// Queue runs submitted jobs strictly in submission order on a single
// worker, so on-demand productions never race each other for the TTS
// provider or the continuity file.
type Queue struct {
	producer Producer
	baseCtx  context.Context
	now      func() time.Time

	mu            sync.Mutex
	jobs          map[string]*Job
	fifo          []string
	workerRunning bool
	wg            sync.WaitGroup
}

// NewQueue creates a job queue. Workers inherit ctx; cancelling it stops
// in-flight production.
func NewQueue(ctx context.Context, p Producer) *Queue {
	return &Queue{
		producer: p,
		baseCtx:  ctx,
		now:      time.Now,
		jobs:     make(map[string]*Job),
	}
}

// Submit enqueues a request and returns the new job id immediately.
// The caller validates the request first.
func (q *Queue) Submit(req Request) string {
	id := uuid.NewString()

	q.mu.Lock()
	q.jobs[id] = &Job{
		ID:        id,
		Status:    StatusQueued,
		CreatedAt: q.now().UTC().Format(time.RFC3339),
		Request:   req,
	}
	q.fifo = append(q.fifo, id)

	start := !q.workerRunning
	if start {
		q.workerRunning = true
		q.wg.Add(1)
	}
	q.mu.Unlock()

	if start {
		go q.worker()
	}

	slog.Info("Job submitted", "job_id", id, "categories", req.Categories)
	return id
}

// Get returns the client projection of a job.
func (q *Queue) Get(id string) (View, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	j, ok := q.jobs[id]
	if !ok {
		return View{}, false
	}
	return j.view(), true
}

// Audio returns the output path and status for the audio endpoint.
func (q *Queue) Audio(id string) (path string, status Status, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	j, okJob := q.jobs[id]
	if !okJob {
		return "", "", false
	}
	return j.OutputPath, j.Status, true
}

// Wait blocks until the worker drains the queue. Test helper.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// worker drains the FIFO, one job at a time, then exits. A later Submit
// starts a fresh worker.
func (q *Queue) worker() {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		if len(q.fifo) == 0 {
			q.workerRunning = false
			q.mu.Unlock()
			return
		}
		id := q.fifo[0]
		q.fifo = q.fifo[1:]
		q.mu.Unlock()

		q.run(id)
	}
}

func (q *Queue) run(id string) {
	q.mu.Lock()
	j, ok := q.jobs[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	j.Status = StatusRunning
	j.StartedAt = q.now().UTC().Format(time.RFC3339)
	req := j.Request
	q.mu.Unlock()

	displayTime := req.Time
	if displayTime == "" {
		displayTime = q.now().Format("15:04")
	}

	res, err := q.producer.Produce(q.baseCtx, station.Request{
		Time:       displayTime,
		Categories: req.Categories,
		Metadata:   req.Metadata,
		Overrides:  req.Overrides,
		JobID:      id,
		Trigger:    station.TriggerJob,
	})

	q.mu.Lock()
	defer q.mu.Unlock()
	j.FinishedAt = q.now().UTC().Format(time.RFC3339)
	if err != nil {
		j.Status = StatusFailed
		j.Err = err.Error()
		slog.Error("Job failed", "job_id", id, "error", err)
		return
	}
	j.Status = StatusSucceeded
	j.OutputPath = res.AudioPath
	slog.Info("Job succeeded", "job_id", id, "path", res.AudioPath)
}
