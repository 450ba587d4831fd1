// ABOUTME: Application orchestration
// ABOUTME: Builds store, catalog, backend, runner and playback from config
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/harperreed/sportsbrief/internal/artwork"
	"github.com/harperreed/sportsbrief/internal/briefing"
	"github.com/harperreed/sportsbrief/internal/catalog"
	"github.com/harperreed/sportsbrief/internal/config"
	"github.com/harperreed/sportsbrief/internal/gemini"
	"github.com/harperreed/sportsbrief/internal/server"
	"github.com/harperreed/sportsbrief/internal/store"
	"github.com/harperreed/sportsbrief/internal/ui"
	"github.com/harperreed/sportsbrief/internal/version"
	"github.com/harperreed/sportsbrief/pkg/audio/decode"
	"github.com/harperreed/sportsbrief/pkg/audio/encode"
	"github.com/harperreed/sportsbrief/pkg/audio/output"
	"github.com/harperreed/sportsbrief/pkg/playback"
	"github.com/rs/zerolog/log"
)

// ErrNoGeneration is returned when a command needs the runner but the app
// was opened without a backend
var ErrNoGeneration = errors.New("briefing generation is not enabled")

// App holds the wired application components
type App struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Store   *store.Store
	Logos   *artwork.Downloader
	Runner  *briefing.Runner

	// Playback is the template for every playback controller
	Playback playback.Config
}

// Open wires the components that need no backend
func Open(cfg *config.Config) (*App, error) {
	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		loaded, err := catalog.Load(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		cat = loaded
	}

	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}

	logos, err := artwork.NewDownloader(cfg.LogoCacheDir())
	if err != nil {
		st.Close()
		return nil, err
	}

	log.Debug().
		Str("db", cfg.DatabasePath()).
		Int("teams", len(cat.All())).
		Msg("Application opened")

	return &App{
		Config:  cfg,
		Catalog: cat,
		Store:   st,
		Logos:   logos,
		Playback: playback.Config{
			OpenDevice: output.NewOto,
			Frames:     playback.NewTickerFrames(cfg.FrameInterval()),
		},
	}, nil
}

// Close releases the store
func (a *App) Close() error {
	return a.Store.Close()
}

// NewBackend builds the Gemini backend from config
func (a *App) NewBackend(ctx context.Context) (briefing.Backend, error) {
	if err := a.Config.RequireAPIKey(); err != nil {
		return nil, err
	}
	return gemini.New(ctx, gemini.Config{
		APIKey:    a.Config.GeminiAPIKey,
		TextModel: a.Config.GeminiTextModel,
		TTSModel:  a.Config.GeminiTTSModel,
		Voice:     a.Config.GeminiVoice,
	})
}

// EnableGeneration creates the runner around backend
func (a *App) EnableGeneration(backend briefing.Backend) error {
	hour, minute, err := a.Config.BriefingClock()
	if err != nil {
		return err
	}

	a.Runner = briefing.NewRunner(briefing.RunnerConfig{
		Generator: briefing.NewGenerator(backend),
		Store:     a.Store,
		Threshold: briefing.Threshold{Hour: hour, Minute: minute},
		Interval:  a.Config.CheckEvery(),
		OnBriefing: func(b briefing.Briefing) {
			log.Info().Str("id", b.ID).Str("title", b.Title).Msg("Briefing stored")
		},
	})
	return nil
}

func (a *App) threshold() briefing.Threshold {
	hour, minute, err := a.Config.BriefingClock()
	if err != nil {
		return briefing.DefaultThreshold
	}
	return briefing.Threshold{Hour: hour, Minute: minute}
}

// RunTUI runs the daily check loop behind the interactive TUI
func (a *App) RunTUI(ctx context.Context) error {
	if a.Runner == nil {
		return ErrNoGeneration
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.Runner.Run(ctx)

	return ui.Run(ui.Deps{
		Ctx:       ctx,
		Catalog:   a.Catalog,
		State:     a.Store,
		Runner:    a.Runner,
		Threshold: a.threshold(),
	}, a.Playback)
}

// Serve runs the daily check loop and the feed server until ctx ends
func (a *App) Serve(ctx context.Context) error {
	if a.Runner == nil {
		return ErrNoGeneration
	}

	go a.Runner.Run(ctx)

	srv := server.New(server.Config{
		Addr:          a.Config.HTTPAddr,
		Name:          feedName(),
		Version:       version.Version,
		EnableMDNS:    a.Config.MDNSEnabled,
		EnableMetrics: a.Config.MetricsEnabled,
		GenerateCtx:   ctx,
	}, a.Catalog, a.Store, a.Runner, a.Logos)

	return srv.Run(ctx)
}

// Generate runs one generation now, or only when due unless force is set.
// It reports whether a briefing was produced.
func (a *App) Generate(ctx context.Context, force bool) (bool, error) {
	if a.Runner == nil {
		return false, ErrNoGeneration
	}
	if force {
		if err := a.Runner.Trigger(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
	return a.Runner.Check(ctx)
}

// Play plays briefing id to the end, writing progress to out
func (a *App) Play(ctx context.Context, id string, out io.Writer) error {
	b, err := a.Store.Briefing(id)
	if err != nil {
		return fmt.Errorf("briefing %s: %w", id, err)
	}

	done := make(chan struct{})
	var once sync.Once
	config := a.Playback
	config.OnProgress = func(p playback.Progress) {
		if p.Ended {
			once.Do(func() { close(done) })
		}
	}

	ctrl := playback.NewController(config)
	defer ctrl.Close()

	if err := ctrl.Initialize(ctx, b.AudioBase64); err != nil {
		return err
	}
	if err := ctrl.Play(); err != nil {
		return err
	}

	st := ctrl.State()
	fmt.Fprintf(out, "Playing %s (%s)\n", b.Title, formatDuration(st.DurationSeconds))

	select {
	case <-done:
		fmt.Fprintln(out, "Finished")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Export writes briefing id as a WAV file at path
func (a *App) Export(id, path string) error {
	b, err := a.Store.Briefing(id)
	if err != nil {
		return fmt.Errorf("briefing %s: %w", id, err)
	}

	buf, err := decode.Payload(b.AudioBase64)
	if err != nil {
		return err
	}
	return encode.WriteWAVFile(path, buf)
}

// feedName is the mDNS instance name, hostname-sportsbrief
func feedName() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%s", hostname, version.Product)
}

func formatDuration(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
