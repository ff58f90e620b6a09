package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"airwavego/pkg/model"
)

// scheduleFile is the on-disk shape of the broadcast schedule.
type scheduleFile struct {
	Items []scheduleItem `yaml:"schedule"`
}

// scheduleItem tolerates both "category: news" and "categories: [a, b]".
type scheduleItem struct {
	Time       string            `yaml:"time"`
	Category   string            `yaml:"category,omitempty"`
	Categories []model.Category  `yaml:"categories,omitempty"`
	Metadata   map[string]string `yaml:"metadata,omitempty"`
}

var timeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// LoadSchedule reads the static broadcast schedule.
// The schedule is loaded once at process start and treated as immutable.
// A missing file is created with a commented example and returns an empty schedule.
func LoadSchedule(path string) ([]model.ScheduledItem, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeExampleSchedule(path); err != nil {
			return nil, err
		}
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file: %w", err)
	}

	var sf scheduleFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse schedule file: %w", err)
	}

	items := make([]model.ScheduledItem, 0, len(sf.Items))
	for i, raw := range sf.Items {
		item, err := normalizeItem(raw)
		if err != nil {
			return nil, fmt.Errorf("schedule item %d: %w", i, err)
		}
		items = append(items, item)
	}

	return items, nil
}

func normalizeItem(raw scheduleItem) (model.ScheduledItem, error) {
	var item model.ScheduledItem

	if !timeRe.MatchString(raw.Time) {
		return item, fmt.Errorf("invalid time %q: must be HH:MM (24-hour)", raw.Time)
	}

	cats := raw.Categories
	if len(cats) == 0 && raw.Category != "" {
		cats = []model.Category{model.Category(raw.Category)}
	}
	if len(cats) == 0 {
		return item, fmt.Errorf("no categories given")
	}
	for _, c := range cats {
		if !model.IsKnownCategory(c) {
			return item, fmt.Errorf("unknown category %q", c)
		}
	}

	item.Time = raw.Time
	item.Categories = cats
	item.Metadata = raw.Metadata
	return item, nil
}

func writeExampleSchedule(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create schedule directory: %w", err)
	}

	example := []byte(`# Airwave broadcast schedule
# Each item fires once per process run when the local clock reaches its time.
#
# schedule:
#   - time: "10:00"
#     categories: [news]
#   - time: "10:30"
#     categories: [weather, traffic]
#   - time: "10:45"
#     category: music
#     metadata:
#       title: Paint It Black
#       artist: The Rolling Stones

schedule: []
`)
	if err := os.WriteFile(path, example, 0o644); err != nil {
		return fmt.Errorf("failed to write schedule file: %w", err)
	}
	return nil
}
