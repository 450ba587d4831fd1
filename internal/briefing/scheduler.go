// ABOUTME: Once-a-day briefing scheduling
// ABOUTME: Due check, generation runner with status fan-out and a failure latch
package briefing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harperreed/sportsbrief/internal/catalog"
	"github.com/harperreed/sportsbrief/internal/observability"
	"github.com/rs/zerolog/log"
)

// DateLayout formats the local calendar date used for the daily marker
const DateLayout = "2006-01-02"

// Threshold is the local time of day after which a briefing is due
type Threshold struct {
	Hour   int
	Minute int
}

// DefaultThreshold is 07:45 local time
var DefaultThreshold = Threshold{Hour: 7, Minute: 45}

// On returns the threshold instant on day's local date
func (t Threshold) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, day.Location())
}

func (t Threshold) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Due reports whether a daily briefing should be generated at now
func Due(now time.Time, threshold Threshold, lastDate string, liked []catalog.Team, generating bool) bool {
	if generating || len(liked) == 0 {
		return false
	}
	if lastDate == now.Format(DateLayout) {
		return false
	}
	return !now.Before(threshold.On(now))
}

// Store is the persisted state the runner reads and writes
type Store interface {
	LikedTeams() ([]catalog.Team, error)
	PrependBriefing(b Briefing) error
	LastBriefingDate() (string, error)
	SetLastBriefingDate(date string) error
}

// Status is the observable state of the runner
type Status struct {
	Generating bool   `json:"generating"`
	Message    string `json:"message"`
	Err        string `json:"error,omitempty"`
	LastID     string `json:"lastBriefingId,omitempty"`
}

// RunnerConfig holds runner configuration
type RunnerConfig struct {
	Generator *Generator
	Store     Store
	Threshold Threshold
	Interval  time.Duration // time between automatic checks
	Now       func() time.Time

	// OnBriefing is called after a new briefing has been stored
	OnBriefing func(Briefing)
}

// Runner decides when to generate and runs one generation at a time
type Runner struct {
	config RunnerConfig

	mu         sync.Mutex
	generating bool
	failedOn   string // local date of the last failed automatic run
	status     Status
	subs       map[int]chan Status
	nextSub    int
}

// NewRunner creates a runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	return &Runner{
		config: config,
		subs:   make(map[int]chan Status),
	}
}

// Status returns the current status
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Subscribe returns a channel of status updates and a func to stop them.
// Slow subscribers miss intermediate updates.
func (r *Runner) Subscribe() (<-chan Status, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++
	ch := make(chan Status, 16)
	r.subs[id] = ch

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
}

// Check generates today's briefing if it is due. It reports whether a
// run happened. A day whose automatic run failed is not retried.
func (r *Runner) Check(ctx context.Context) (bool, error) {
	now := r.config.Now()
	today := now.Format(DateLayout)

	liked, err := r.config.Store.LikedTeams()
	if err != nil {
		return false, fmt.Errorf("failed to read liked teams: %w", err)
	}
	last, err := r.config.Store.LastBriefingDate()
	if err != nil {
		return false, fmt.Errorf("failed to read last briefing date: %w", err)
	}

	r.mu.Lock()
	if !Due(now, r.config.Threshold, last, liked, r.generating) || r.failedOn == today {
		r.mu.Unlock()
		return false, nil
	}
	r.generating = true
	r.mu.Unlock()

	return true, r.execute(ctx, liked, today)
}

// Trigger generates a briefing now, ignoring the time of day, today's
// marker and any earlier failure
func (r *Runner) Trigger(ctx context.Context) error {
	liked, today, err := r.begin()
	if err != nil {
		return err
	}
	return r.execute(ctx, liked, today)
}

// TriggerAsync starts Trigger in the background. Busy and no-teams
// errors are returned immediately.
func (r *Runner) TriggerAsync(ctx context.Context) error {
	liked, today, err := r.begin()
	if err != nil {
		return err
	}
	go func() {
		if err := r.execute(ctx, liked, today); err != nil {
			log.Error().Err(err).Msg("Background generation failed")
		}
	}()
	return nil
}

// Run checks once immediately and then on every interval until ctx ends
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		if _, err := r.Check(ctx); err != nil {
			log.Error().Err(err).Msg("Daily briefing check failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// begin claims the generating flag for a manual run
func (r *Runner) begin() ([]catalog.Team, string, error) {
	liked, err := r.config.Store.LikedTeams()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read liked teams: %w", err)
	}
	if len(liked) == 0 {
		return nil, "", ErrNoTeams
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generating {
		return nil, "", ErrBusy
	}
	r.generating = true
	return liked, r.config.Now().Format(DateLayout), nil
}

// execute runs one generation; the caller must have set r.generating
func (r *Runner) execute(ctx context.Context, liked []catalog.Team, today string) error {
	runID := observability.NewRunID()
	logger := observability.WithRunID(runID)
	ctx = logger.WithContext(ctx)
	started := time.Now()

	logger.Info().Int("teams", len(liked)).Str("date", today).Msg("Generating daily briefing")
	r.publish(Status{Generating: true})

	b, err := r.config.Generator.Generate(ctx, liked, func(msg string) {
		r.publish(Status{Generating: true, Message: msg})
	})
	if err == nil {
		err = r.persist(*b, today)
	}

	observability.RecordGeneration(started, err == nil)

	r.mu.Lock()
	r.generating = false
	if err != nil {
		r.failedOn = today
		r.publishLocked(Status{Err: err.Error()})
	} else {
		r.failedOn = ""
		r.publishLocked(Status{LastID: b.ID})
	}
	r.mu.Unlock()

	if err != nil {
		logger.Error().Err(err).Msg("Failed to generate daily briefing")
		return err
	}

	if r.config.OnBriefing != nil {
		r.config.OnBriefing(*b)
	}
	return nil
}

func (r *Runner) persist(b Briefing, today string) error {
	if err := r.config.Store.PrependBriefing(b); err != nil {
		return fmt.Errorf("failed to store briefing: %w", err)
	}
	if err := r.config.Store.SetLastBriefingDate(today); err != nil {
		return fmt.Errorf("failed to store briefing date: %w", err)
	}
	return nil
}

func (r *Runner) publish(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publishLocked(s)
}

// publishLocked records status and fans it out without blocking (must hold r.mu)
func (r *Runner) publishLocked(s Status) {
	r.status = s
	for _, ch := range r.subs {
		select {
		case ch <- s:
		default:
		}
	}
}
