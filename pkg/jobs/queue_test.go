package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"airwavego/pkg/model"
	"airwavego/pkg/station"

	"github.com/stretchr/testify/assert"
)

// slowProducer records call order and can fail on demand.
type slowProducer struct {
	mu      sync.Mutex
	order   []string
	running int
	overlap bool
	fail    bool
}

func (s *slowProducer) Produce(_ context.Context, req station.Request) (*station.Result, error) {
	s.mu.Lock()
	s.running++
	if s.running > 1 {
		s.overlap = true
	}
	s.order = append(s.order, req.JobID)
	fail := s.fail
	s.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	s.mu.Lock()
	s.running--
	s.mu.Unlock()

	if fail {
		return nil, errors.New("produce failed")
	}
	return &station.Result{Text: "ok", AudioPath: "/out/" + req.JobID + ".mp3", Format: "mp3"}, nil
}

func TestSubmitAndGet(t *testing.T) {
	p := &slowProducer{}
	q := NewQueue(context.Background(), p)

	id := q.Submit(Request{Categories: []model.Category{model.CategoryFact}})
	assert.NotEmpty(t, id, "Submit should return a job id")

	v, ok := q.Get(id)
	assert.True(t, ok, "Get should find the submitted job")
	assert.Equal(t, id, v.ID)
	assert.NotEmpty(t, v.CreatedAt)

	q.Wait()

	v, _ = q.Get(id)
	assert.Equal(t, StatusSucceeded, v.Status)
	assert.True(t, v.HasAudio, "HasAudio should be set after success")
	assert.NotEmpty(t, v.StartedAt)
	assert.NotEmpty(t, v.FinishedAt)

	path, status, ok := q.Audio(id)
	assert.True(t, ok)
	assert.Equal(t, StatusSucceeded, status)
	assert.NotEmpty(t, path)
}

func TestGetUnknownJob(t *testing.T) {
	q := NewQueue(context.Background(), &slowProducer{})

	_, ok := q.Get("nope")
	assert.False(t, ok, "Get should not find a job that was never submitted")
	_, _, ok = q.Audio("nope")
	assert.False(t, ok, "Audio should not find a job that was never submitted")
}

func TestJobsRunSequentiallyInOrder(t *testing.T) {
	p := &slowProducer{}
	q := NewQueue(context.Background(), p)

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, q.Submit(Request{Categories: []model.Category{model.CategoryNews}}))
	}
	q.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.False(t, p.overlap, "worker must run one job at a time")
	assert.Equal(t, ids, p.order, "jobs must run in FIFO order")
}

func TestFailedJob(t *testing.T) {
	p := &slowProducer{fail: true}
	q := NewQueue(context.Background(), p)

	id := q.Submit(Request{Categories: []model.Category{model.CategoryWeather}})
	q.Wait()

	v, _ := q.Get(id)
	assert.Equal(t, StatusFailed, v.Status)
	assert.NotEmpty(t, v.Error, "failed job should carry an error message")
	assert.False(t, v.HasAudio)

	// Terminal jobs stay queryable.
	_, ok := q.Get(id)
	assert.True(t, ok, "failed job should stay in the queue")
}

func TestWorkerRestartsAfterDrain(t *testing.T) {
	p := &slowProducer{}
	q := NewQueue(context.Background(), p)

	first := q.Submit(Request{Categories: []model.Category{model.CategoryFact}})
	q.Wait()

	second := q.Submit(Request{Categories: []model.Category{model.CategoryFact}})
	q.Wait()

	for _, id := range []string{first, second} {
		v, _ := q.Get(id)
		assert.Equal(t, StatusSucceeded, v.Status, "job %s should have succeeded", id)
	}
}
