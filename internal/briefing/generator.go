// ABOUTME: Daily briefing generation pipeline
// ABOUTME: Per-team news search, synthesis, refinement and speech synthesis
package briefing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/sportsbrief/internal/catalog"
	"github.com/harperreed/sportsbrief/internal/observability"
	"github.com/harperreed/sportsbrief/pkg/audio/decode"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Status lines reported while a briefing is generated
const (
	StatusSynthesizing = "Synthesizing news into a single briefing..."
	StatusRefining     = "Refining briefing for key updates..."
	StatusSpeaking     = "Generating audio overview..."
	StatusFinalizing   = "Finalizing your briefing..."
)

// TitlePrefix starts every briefing title
const TitlePrefix = "Your Daily Sports Briefing - "

// Generator runs the briefing pipeline against a Backend
type Generator struct {
	backend Backend
	now     func() time.Time
}

// NewGenerator creates a generator
func NewGenerator(backend Backend) *Generator {
	return &Generator{
		backend: backend,
		now:     time.Now,
	}
}

// Generate produces one briefing for teams. onStatus, if set, receives a
// line of progress text before each step.
func (g *Generator) Generate(ctx context.Context, teams []catalog.Team, onStatus func(string)) (*Briefing, error) {
	logger := loggerFrom(ctx)
	status := func(msg string) {
		logger.Info().Msg(msg)
		if onStatus != nil {
			onStatus(msg)
		}
	}

	if len(teams) == 0 {
		return nil, ErrNoTeams
	}

	items := make([]string, 0, len(teams))
	var sources []Source

	for i, team := range teams {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		status(fmt.Sprintf("Fetching news for %s (%d/%d)...", team.Name, i+1, len(teams)))

		started := time.Now()
		news, err := g.backend.SearchNews(ctx, team)
		observability.RecordBackendCall("search", started, err)
		if err != nil {
			logger.Warn().Err(err).Str("team", team.ID).Msg("News search failed")
			news = NewsResult{Summary: fmt.Sprintf("Could not retrieve news for %s.", team.Name)}
		}

		items = append(items, fmt.Sprintf("News for %s:\n%s", team.Name, news.Summary))
		sources = append(sources, news.Sources...)
	}

	status(StatusSynthesizing)
	started := time.Now()
	script, err := g.backend.Synthesize(ctx, items)
	observability.RecordBackendCall("synthesize", started, err)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize briefing: %w", err)
	}

	status(StatusRefining)
	started = time.Now()
	refined, err := g.backend.Refine(ctx, script)
	observability.RecordBackendCall("refine", started, err)
	if err != nil || refined == "" {
		logger.Warn().Err(err).Msg("Refinement failed, using unrefined script")
		refined = script
	}

	status(StatusSpeaking)
	started = time.Now()
	pcm, err := g.backend.Speak(ctx, refined)
	observability.RecordBackendCall("speak", started, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoAudio, err)
	}
	if len(pcm) == 0 {
		return nil, ErrNoAudio
	}
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("%w: odd PCM length %d", ErrNoAudio, len(pcm))
	}

	status(StatusFinalizing)
	now := g.now()

	b := &Briefing{
		ID:          uuid.New().String(),
		Date:        now.Format(time.RFC3339),
		Title:       TitlePrefix + now.Format("Jan 2, 2006"),
		Summary:     refined,
		AudioBase64: decode.EncodePayload(pcm),
		Sources:     UniqueSources(sources),
	}

	logger.Info().
		Str("briefing_id", b.ID).
		Int("teams", len(teams)).
		Int("sources", len(b.Sources)).
		Int("audio_bytes", len(pcm)).
		Msg("Briefing generated")

	return b, nil
}

// UniqueSources drops sources without a URI and repeated URIs, keeping
// first-seen order
func UniqueSources(sources []Source) []Source {
	seen := make(map[string]bool, len(sources))
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.URI == "" || seen[s.URI] {
			continue
		}
		seen[s.URI] = true
		out = append(out, s)
	}
	return out
}

// loggerFrom returns the logger attached to ctx, or the global logger
func loggerFrom(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	return l
}
