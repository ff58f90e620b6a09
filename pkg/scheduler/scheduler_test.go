package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"airwavego/pkg/model"
	"airwavego/pkg/station"
)

// recordingProducer counts Produce calls and can be told to fail.
type recordingProducer struct {
	mu    sync.Mutex
	calls []station.Request
	fail  bool
}

func (r *recordingProducer) Produce(_ context.Context, req station.Request) (*station.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, req)
	if r.fail {
		return nil, errors.New("produce failed")
	}
	return &station.Result{Text: "ok", AudioPath: "out.mp3", Format: "mp3"}, nil
}

func (r *recordingProducer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func fixedClock(hhmm string) func() time.Time {
	ts, _ := time.Parse("15:04", hhmm)
	return func() time.Time { return ts }
}

func testItems() []model.ScheduledItem {
	return []model.ScheduledItem{
		{Time: "08:30", Categories: []model.Category{model.CategoryNews, model.CategoryWeather}},
		{Time: "08:30", Categories: []model.Category{model.CategoryFact}},
		{Time: "21:00", Categories: []model.Category{model.CategoryMusic}},
	}
}

func TestTickFiresDueItems(t *testing.T) {
	p := &recordingProducer{}
	s := New(testItems(), p, false, nil)
	s.now = fixedClock("08:30")

	s.tick(context.Background())

	if got := p.callCount(); got != 2 {
		t.Fatalf("tick fired %d items, want 2", got)
	}
	p.mu.Lock()
	first := p.calls[0]
	p.mu.Unlock()
	if first.Trigger != station.TriggerSchedule {
		t.Errorf("Trigger = %q", first.Trigger)
	}
}

func TestTickFiresEachKeyOnce(t *testing.T) {
	p := &recordingProducer{}
	s := New(testItems(), p, false, nil)
	s.now = fixedClock("08:30")

	s.tick(context.Background())
	s.tick(context.Background())

	if got := p.callCount(); got != 2 {
		t.Errorf("repeat tick fired %d items total, want 2", got)
	}
}

func TestTickFailureAllowsRetry(t *testing.T) {
	p := &recordingProducer{fail: true}
	s := New(testItems(), p, false, nil)
	s.now = fixedClock("21:00")

	s.tick(context.Background())
	if s.hasFired("21:00-music") {
		t.Error("failed slot must not be marked fired")
	}

	p.mu.Lock()
	p.fail = false
	p.mu.Unlock()

	s.tick(context.Background())
	if !s.hasFired("21:00-music") {
		t.Error("slot should fire once the producer recovers")
	}
	if got := p.callCount(); got != 2 {
		t.Errorf("produce called %d times, want 2", got)
	}
}

func TestTickSkipsOtherMinutes(t *testing.T) {
	p := &recordingProducer{}
	s := New(testItems(), p, false, nil)
	s.now = fixedClock("12:00")

	s.tick(context.Background())
	if got := p.callCount(); got != 0 {
		t.Errorf("tick fired %d items at an unscheduled minute", got)
	}
}

func TestDemoOnceStopsAfterFirstSuccess(t *testing.T) {
	p := &recordingProducer{}
	demoFired := false
	s := New(testItems(), p, true, func() { demoFired = true })
	s.now = fixedClock("08:30")

	stop := s.tick(context.Background())
	if !stop {
		t.Error("tick should request stop in demo-once mode")
	}
	if !demoFired {
		t.Error("demo callback not invoked")
	}
	if got := p.callCount(); got != 1 {
		t.Errorf("produce called %d times, want 1 (stop after first success)", got)
	}
}

func TestNextTickDelay(t *testing.T) {
	s := New(nil, &recordingProducer{}, false, nil)

	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{
			name: "Mid Minute",
			now:  time.Date(2026, 8, 29, 10, 0, 30, 0, time.UTC),
			want: 30*time.Second + tickGrace,
		},
		{
			name: "On Boundary",
			now:  time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
			want: time.Minute + tickGrace,
		},
		{
			name: "Just Before Boundary",
			now:  time.Date(2026, 8, 29, 10, 0, 59, int(900*time.Millisecond), time.UTC),
			want: 100*time.Millisecond + tickGrace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.nextTickDelay(tt.now); got != tt.want {
				t.Errorf("nextTickDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStartStop(t *testing.T) {
	p := &recordingProducer{}
	s := New(nil, p, false, nil)

	s.Start(context.Background())
	s.Stop()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("scheduler loop did not exit")
	}
}
