// ABOUTME: Briefing data model and the AI backend contract
// ABOUTME: Briefings are immutable once generated and stored newest first
package briefing

import (
	"context"
	"errors"
	"time"

	"github.com/harperreed/sportsbrief/internal/catalog"
)

var (
	// ErrNoTeams is returned when generation is asked for with no liked teams
	ErrNoTeams = errors.New("no news could be fetched for any of the selected teams")

	// ErrNoAudio is returned when speech synthesis yields no usable audio
	ErrNoAudio = errors.New("failed to generate audio data")

	// ErrBusy is returned when a generation run is already in progress
	ErrBusy = errors.New("a briefing is already being generated")
)

// Source is one web page the news was grounded on
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Briefing is one generated daily audio briefing
type Briefing struct {
	ID          string   `json:"id"`
	Date        string   `json:"date"` // RFC 3339
	Title       string   `json:"title"`
	Summary     string   `json:"summary"` // the spoken script
	AudioBase64 string   `json:"audioBase64"`
	Sources     []Source `json:"sources"`
}

// Time parses the briefing date, returning the zero time when malformed
func (b Briefing) Time() time.Time {
	t, err := time.Parse(time.RFC3339, b.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// NewsResult is the news found for one team
type NewsResult struct {
	Summary string
	Sources []Source
}

// Backend is the generative AI service behind the pipeline. Implementations
// are constructed once and shared.
type Backend interface {
	// SearchNews summarizes the last day of news for a team using web search
	SearchNews(ctx context.Context, team catalog.Team) (NewsResult, error)

	// Synthesize merges per-team news items into one anchor script
	Synthesize(ctx context.Context, items []string) (string, error)

	// Refine trims a script down to what a casual fan cares about
	Refine(ctx context.Context, script string) (string, error)

	// Speak renders a script to s16le, 24 kHz, mono PCM
	Speak(ctx context.Context, script string) ([]byte, error)
}
