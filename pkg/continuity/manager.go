package continuity

import (
	"sync"

	"airwavego/pkg/config"
)

// Manager is the single writer for the continuity file. Scheduled ticks and
// queued jobs may produce announcements concurrently; every mutation runs
// load -> mutate -> save as one critical section so no append is lost to an
// interleaved rewrite.
type Manager struct {
	mu  sync.Mutex
	cfg config.ContinuityConfig
}

// NewManager creates a manager for the configured state path.
func NewManager(cfg config.ContinuityConfig) *Manager {
	if cfg.DiskLimit <= 0 {
		cfg.DiskLimit = DiskLimit
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = RecentLimit
	}
	if cfg.ContextEntries <= 0 {
		cfg.ContextEntries = ContextEntries
	}
	if cfg.ContextMaxChars <= 0 {
		cfg.ContextMaxChars = ContextMaxChars
	}
	return &Manager{cfg: cfg}
}

// Append records a new announcement in the rolling history and persists it.
func (m *Manager) Append(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Load(m.cfg.Path, m.cfg.DiskLimit)
	s.AddRecent(e, m.cfg.RecentLimit)
	return Save(m.cfg.Path, s, m.cfg.DiskLimit)
}

// Context returns the continuity digest for the next generation call.
func (m *Manager) Context() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return BuildContext(Load(m.cfg.Path, m.cfg.DiskLimit), m.cfg.ContextEntries, m.cfg.ContextMaxChars)
}
