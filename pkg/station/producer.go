package station

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"airwavego/pkg/config"
	"airwavego/pkg/content"
	"airwavego/pkg/continuity"
	"airwavego/pkg/llm"
	"airwavego/pkg/model"
	"airwavego/pkg/prompt"
	"airwavego/pkg/store"
	"airwavego/pkg/tts"
)

// Trigger sources recorded with each announcement.
const (
	TriggerSchedule = "schedule"
	TriggerJob      = "job"
)

// Overrides are request-supplied config fields merged over the station
// defaults for a single run. Empty fields keep the default.
type Overrides struct {
	Language string
	City     string
	Region   string
	Country  string
}

// Request describes one announcement to produce.
type Request struct {
	Time       string // "HH:MM" display time for the prompt and filename
	Categories []model.Category
	Metadata   map[string]string
	Overrides  Overrides
	JobID      string // appended to the filename for API-triggered runs
	Trigger    string // TriggerSchedule or TriggerJob
}

// Result is a finished announcement.
type Result struct {
	Text      string
	AudioPath string
	Format    string
}

// Producer turns a schedule slot or job request into spoken audio:
// content fan-out, continuity context, text generation, persistence of
// the continuity entry, then synthesis.
type Producer struct {
	cfg      *config.Config
	fetchers *content.Registry
	prompts  *prompt.Builder
	llm      llm.Provider
	tts      tts.Provider
	cont     *continuity.Manager
	history  store.AnnouncementStore // optional

	callTimeout time.Duration
	rnd         func() float64 // [0,1) source, swappable in tests
}

// NewProducer wires the production pipeline.
func NewProducer(cfg *config.Config, fetchers *content.Registry, prompts *prompt.Builder,
	textGen llm.Provider, speech tts.Provider, cont *continuity.Manager, history store.AnnouncementStore) *Producer {

	callTimeout := time.Duration(cfg.Request.Timeout)
	if callTimeout <= 0 {
		callTimeout = 90 * time.Second
	}

	return &Producer{
		cfg:         cfg,
		fetchers:    fetchers,
		prompts:     prompts,
		llm:         textGen,
		tts:         speech,
		cont:        cont,
		history:     history,
		callTimeout: callTimeout,
		rnd:         rand.Float64,
	}
}

// locale merges request overrides over the configured station locale.
func (p *Producer) locale(o Overrides) content.Locale {
	loc := content.Locale{
		Language: p.cfg.Station.Language,
		Location: p.cfg.Station.Location,
	}
	if o.Language != "" {
		loc.Language = o.Language
	}
	if o.City != "" {
		loc.Location.City = o.City
	}
	if o.Region != "" {
		loc.Location.Region = o.Region
	}
	if o.Country != "" {
		loc.Location.Country = o.Country
	}
	return loc
}

// Produce runs the full pipeline for one request. Content fetchers never
// fail; generation or synthesis failure fails the whole call. The
// continuity entry is persisted before synthesis, so a synthesis failure
// leaves an entry whose audio never aired. That entry still shapes the
// next script, which reads as the host "remembering" a dropped segment.
func (p *Producer) Produce(ctx context.Context, req Request) (*Result, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no categories requested")
	}
	joined := model.JoinCategories(req.Categories)
	loc := p.locale(req.Overrides)

	// 1. Fan out content fetchers, one goroutine per category.
	lines := make([]string, len(req.Categories))
	var wg sync.WaitGroup
	for i, cat := range req.Categories {
		wg.Add(1)
		go func(i int, cat model.Category) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
			defer cancel()
			raw := p.fetchers.Fetch(fetchCtx, cat, loc, req.Metadata)
			lines[i] = fmt.Sprintf("• %s: %s", strings.ToUpper(string(cat)), raw)
		}(i, cat)
	}
	wg.Wait()
	combinedRaw := strings.Join(lines, "\n")

	// 2. Continuity context and energy hint.
	recentContext := p.cont.Context()
	energy := energyHint(p.cfg.Energy.Base, p.cfg.Energy.Variance, p.rnd)

	// 3. Generate the script.
	promptText, err := p.prompts.Build(prompt.Params{
		Category:      joined,
		Raw:           combinedRaw,
		Time:          req.Time,
		Metadata:      req.Metadata,
		Energy:        energy,
		RecentContext: recentContext,
		Language:      req.Overrides.Language,
		City:          req.Overrides.City,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	text, err := p.llm.GenerateText(genCtx, "station", promptText)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("text generation failed: %w", err)
	}
	text = tts.StripSpeakerLabels(text)

	// 4. Remember the script before synthesis. A failed write is fatal:
	// continuing would air a segment the broadcast memory never saw.
	if err := p.cont.Append(continuity.Entry{
		TS:       time.Now().UTC().Format(time.RFC3339),
		Category: joined,
		Text:     text,
	}); err != nil {
		return nil, fmt.Errorf("failed to persist continuity state: %w", err)
	}

	// 5. Synthesize.
	fileBase := req.Time + "-" + joined
	if req.JobID != "" {
		fileBase += "-" + req.JobID
	}
	outputPath := filepath.Join(p.cfg.Output.Dir, SanitizeFilename(fileBase)+".mp3")

	synthCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	// Empty voice selects the engine's configured default.
	format, err := p.tts.Synthesize(synthCtx, text, "", outputPath)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}

	if err := tts.VerifyAudioFile(outputPath); err != nil {
		slog.Warn("Synthesized audio looks suspicious", "path", outputPath, "error", err)
	}

	// 6. Record in the announcement history.
	if p.history != nil {
		a := &model.Announcement{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Category:  joined,
			Text:      text,
			AudioPath: outputPath,
			Trigger:   req.Trigger,
		}
		histCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
		if err := p.history.SaveAnnouncement(histCtx, a); err != nil {
			slog.Error("Failed to record announcement history", "error", err)
		}
		cancel()
	}

	slog.Info("Audio ready", "time", req.Time, "categories", joined, "path", outputPath)
	return &Result{Text: text, AudioPath: outputPath, Format: format}, nil
}
