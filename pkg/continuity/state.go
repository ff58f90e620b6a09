package continuity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Retention limits. DiskLimit bounds the persisted file; the in-memory working
// set after an append is capped separately (see AddRecent).
const (
	DiskLimit       = 20
	RecentLimit     = 10
	ContextEntries  = 6
	ContextMaxChars = 1200
)

// Entry is one remembered announcement, most-recent-last in State.Recent.
type Entry struct {
	TS       string `json:"ts"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

// State is the rolling memory of the last few announcements.
type State struct {
	Recent []Entry `json:"recent"`
}

// Load reads persisted state, truncated to limit entries (DiskLimit when
// limit <= 0). A missing file, unreadable content or wrong shape all yield
// an empty state rather than an error; the broadcast must never fail
// because its memory file is damaged.
func Load(path string, limit int) *State {
	if limit <= 0 {
		limit = DiskLimit
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &State{Recent: []Entry{}}
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil || s.Recent == nil {
		return &State{Recent: []Entry{}}
	}

	if len(s.Recent) > limit {
		s.Recent = s.Recent[len(s.Recent)-limit:]
	}
	return &s
}

// Save truncates to the disk retention cap (DiskLimit when limit <= 0) and
// writes the state atomically (temp file + rename) so a torn write never
// corrupts the next Load.
func Save(path string, s *State, limit int) error {
	if limit <= 0 {
		limit = DiskLimit
	}
	trimmed := &State{Recent: s.Recent}
	if len(trimmed.Recent) > limit {
		trimmed.Recent = trimmed.Recent[len(trimmed.Recent)-limit:]
	}

	data, err := json.MarshalIndent(trimmed, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal continuity state: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close state file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// AddRecent appends an entry and drops the oldest entries beyond limit.
// Pure in-memory mutation; the caller persists.
func (s *State) AddRecent(e Entry, limit int) {
	if limit <= 0 {
		limit = RecentLimit
	}
	s.Recent = append(s.Recent, e)
	if len(s.Recent) > limit {
		s.Recent = s.Recent[len(s.Recent)-limit:]
	}
}

var (
	stageTagRe   = regexp.MustCompile(`\[[^\]]*\]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// BuildContext digests at most the last entries items into a continuity
// string for the text generator (ContextEntries when entries <= 0). Bracketed
// stage directions are stripped and whitespace collapsed; entries emptied
// by cleaning are dropped. If the joined result exceeds maxChars only the
// trailing maxChars characters are kept, so the freshest context survives
// truncation.
func BuildContext(s *State, entries, maxChars int) string {
	if entries <= 0 {
		entries = ContextEntries
	}
	if maxChars <= 0 {
		maxChars = ContextMaxChars
	}

	recent := s.Recent
	if len(recent) > entries {
		recent = recent[len(recent)-entries:]
	}

	var lines []string
	for _, r := range recent {
		cleaned := stageTagRe.ReplaceAllString(r.Text, " ")
		cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))
		if cleaned == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", r.Category, cleaned))
	}

	joined := strings.Join(lines, "\n")
	if len(joined) > maxChars {
		joined = joined[len(joined)-maxChars:]
	}
	return joined
}
