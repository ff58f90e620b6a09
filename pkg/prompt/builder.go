package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"airwavego/pkg/config"
	"airwavego/pkg/model"
)

// languageNames maps two-letter codes to the names used in prompts.
// Unknown codes pass through unchanged.
var languageNames = map[string]string{
	"en": "English",
	"el": "Greek",
	"fr": "French",
	"de": "German",
	"es": "Spanish",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"sv": "Swedish",
	"pl": "Polish",
	"tr": "Turkish",
	"ru": "Russian",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
}

// LanguageName resolves a two-letter language code to its English name.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

const rootTemplate = `
{{- define "persona" -}}
You are {{.HostName}}, the host of {{.StationName}}.

Tone guidance:
- Mostly chill and conversational; occasionally energetic (not always).
- Never sound like it's your first prompt. This is a continuous broadcast.
- Avoid repeating the same opener/closer phrasing. Vary sentence starts.
- Keep sentences short for TTS. Use natural punctuation and line breaks.
- If appropriate, use subtle continuity ("as we mentioned earlier", "coming up", etc.) but don't force it.
- Energy level (0..1): {{.Energy}}
{{end}}

{{- define "ttsRules" -}}
TTS rules:
- No emojis.
- No URLs.
- Avoid long parentheticals.
- Prefer 1-2 sentences per line (use line breaks).
- Write numbers as words.
{{end}}

{{- define "continuity" -}}
{{if .RecentContext}}Recent broadcast context (for continuity; do NOT quote verbatim):
{{.RecentContext}}
{{end}}
{{- end}}

{{- define "segment" -}}
{{template "persona" .}}
{{template "ttsRules" .}}
{{template "continuity" .}}
Topics: {{.Category}}.
Raw notes:
{{.Raw}}

Write one flowing spoken segment (6-12 lines). Blend related info naturally. Use this language: {{.Language}}. Time context: around {{.Time}}. City: {{.City}} (only if it fits naturally).
{{- end}}

{{- define "music" -}}
{{template "persona" .}}
{{template "ttsRules" .}}
{{template "continuity" .}}
You are doing a music segment.
Song: "{{.SongTitle}}"{{if .SongArtist}} by {{.SongArtist}}{{end}}.
Raw notes:
{{.Raw}}

Write a short DJ-style spoken intro/outro (5-10 lines). Add a light fun fact if you have it, but stay believable. Use this language: {{.Language}}.
{{- end}}`

// Params carries the per-announcement inputs to Build. Language and
// City override the station defaults when set (job-supplied config).
type Params struct {
	Category      string
	Raw           string
	Time          string // "HH:MM" display time
	Metadata      map[string]string
	Energy        float64 // clamped [0,1] hint
	RecentContext string
	Language      string
	City          string
}

// Builder renders generation prompts from the station identity and
// per-announcement parameters.
type Builder struct {
	station config.StationConfig
	root    *template.Template
}

// NewBuilder creates a prompt builder for the given station identity.
func NewBuilder(station config.StationConfig) (*Builder, error) {
	root, err := template.New("root").Parse(rootTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt templates: %w", err)
	}
	return &Builder{station: station, root: root}, nil
}

type templateData struct {
	HostName      string
	StationName   string
	Energy        string
	RecentContext string
	Category      string
	Raw           string
	Language      string
	Time          string
	City          string
	SongTitle     string
	SongArtist    string
}

// Build renders the generation prompt for the given parameters. The
// music category gets a DJ-style variant keyed off the song metadata.
func (b *Builder) Build(p Params) (string, error) {
	language := b.station.Language
	if p.Language != "" {
		language = p.Language
	}
	city := b.station.Location.City
	if p.City != "" {
		city = p.City
	}

	data := templateData{
		HostName:      b.station.Host,
		StationName:   b.station.Name,
		Energy:        fmt.Sprintf("%.2f", p.Energy),
		RecentContext: strings.TrimSpace(p.RecentContext),
		Category:      p.Category,
		Raw:           p.Raw,
		Language:      LanguageName(language),
		Time:          p.Time,
		City:          city,
		SongTitle:     p.Metadata["title"],
		SongArtist:    p.Metadata["artist"],
	}

	name := "segment"
	if p.Category == string(model.CategoryMusic) {
		name = "music"
	}

	var sb strings.Builder
	if err := b.root.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", name, err)
	}
	return sb.String(), nil
}
