package model

import "strings"

// Category identifies a content topic and the fetcher/prompt style used for it.
type Category string

// Known categories.
const (
	CategoryNews    Category = "news"
	CategoryWeather Category = "weather"
	CategoryTraffic Category = "traffic"
	CategoryFact    Category = "fact"
	CategoryMusic   Category = "music"
)

// KnownCategories lists every category the station can produce.
var KnownCategories = []Category{
	CategoryNews,
	CategoryWeather,
	CategoryTraffic,
	CategoryFact,
	CategoryMusic,
}

// IsKnownCategory reports whether c is a supported content category.
func IsKnownCategory(c Category) bool {
	for _, k := range KnownCategories {
		if c == k {
			return true
		}
	}
	return false
}

// JoinCategories renders a category list as a single "a+b+c" tag.
// The joined form is used for continuity entries, fired-keys and filenames.
func JoinCategories(cats []Category) string {
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = string(c)
	}
	return strings.Join(parts, "+")
}

// ScheduledItem is one entry in the static broadcast schedule.
// Immutable once loaded.
type ScheduledItem struct {
	Time       string            `yaml:"time"` // "HH:MM", 24-hour local clock
	Categories []Category        `yaml:"categories"`
	Metadata   map[string]string `yaml:"metadata,omitempty"`
}

// Key returns the composite fired-key for the item.
func (s ScheduledItem) Key() string {
	return s.Time + "-" + JoinCategories(s.Categories)
}

// Announcement is a produced broadcast segment.
type Announcement struct {
	Timestamp string `json:"ts"`
	Category  string `json:"category"` // joined categories, e.g. "weather+traffic"
	Text      string `json:"text"`
	AudioPath string `json:"audio_path,omitempty"`
	Trigger   string `json:"trigger,omitempty"` // "schedule" or "job"
}
