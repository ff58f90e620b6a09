package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"airwavego/pkg/model"
	"airwavego/pkg/station"
)

const tickGrace = 250 * time.Millisecond

// Producer is the slice of the station pipeline the scheduler drives.
type Producer interface {
	Produce(ctx context.Context, req station.Request) (*station.Result, error)
}

// Service fires schedule slots on minute boundaries. Each slot fires at
// most once per process lifetime, keyed by time plus category list; the
// fired set is deliberately not persisted, so a restart may repeat a
// slot whose minute is still current.
type Service struct {
	items    []model.ScheduledItem
	producer Producer
	demoOnce bool
	onDemo   func() // invoked after the first success in demo-once mode

	now func() time.Time

	mu     sync.Mutex
	fired  map[string]struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a scheduler over a fixed schedule.
func New(items []model.ScheduledItem, p Producer, demoOnce bool, onDemo func()) *Service {
	return &Service{
		items:    items,
		producer: p,
		demoOnce: demoOnce,
		onDemo:   onDemo,
		now:      time.Now,
		fired:    make(map[string]struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the tick loop. It returns immediately.
func (s *Service) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	slog.Info("Scheduler started", "schedule_items", len(s.items))

	go func() {
		defer close(s.done)

		timer := time.NewTimer(tickGrace)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if stop := s.tick(ctx); stop {
				return
			}

			timer.Reset(s.nextTickDelay(s.now()))
		}
	}()
}

// Stop cancels the loop and waits for it to exit.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
}

// tick runs every due, unfired slot sequentially. It reports whether the
// loop should stop (demo-once success).
func (s *Service) tick(ctx context.Context) bool {
	currentTime := s.now().Format("15:04")

	for _, item := range s.items {
		if item.Time != currentTime || s.hasFired(item.Key()) {
			continue
		}
		if ctx.Err() != nil {
			return false
		}

		_, err := s.producer.Produce(ctx, station.Request{
			Time:       item.Time,
			Categories: item.Categories,
			Metadata:   item.Metadata,
			Trigger:    station.TriggerSchedule,
		})
		if err != nil {
			// Not marked as fired: the slot retries at its next
			// natural occurrence.
			slog.Error("Failed to produce scheduled segment", "time", item.Time,
				"categories", model.JoinCategories(item.Categories), "error", err)
			continue
		}

		s.markFired(item.Key())

		if s.demoOnce {
			slog.Info("Demo-once enabled; stopping after first successful segment")
			if s.onDemo != nil {
				s.onDemo()
			}
			return true
		}
	}
	return false
}

func (s *Service) hasFired(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.fired[key]
	return ok
}

func (s *Service) markFired(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fired[key] = struct{}{}
}

// nextTickDelay returns the wait until shortly after the next minute
// boundary. The grace keeps the tick on the right side of the boundary
// even with a slow clock; the floor stops a hot loop when the boundary
// has just passed.
func (s *Service) nextTickDelay(now time.Time) time.Duration {
	next := now.Truncate(time.Minute).Add(time.Minute)
	d := next.Sub(now) + tickGrace
	if d < tickGrace {
		return tickGrace
	}
	return d
}
