// ABOUTME: Root command and shared command setup
// ABOUTME: Loads config, configures logging and opens the application
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/harperreed/sportsbrief/internal/app"
	"github.com/harperreed/sportsbrief/internal/config"
	"github.com/harperreed/sportsbrief/internal/observability"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	logFile  string
	logLevel string
	noTUI    bool
	rootCmd  *cobra.Command

	// closed by the command that opened it
	logOutput io.Closer
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "sportsbrief",
		Short: "Daily audio briefings for the teams you follow",
		Long: `sportsbrief generates one spoken sports briefing per day for the teams
you follow and lets you play it back from the terminal.

Without a subcommand it opens the interactive briefing feed.`,
		RunE:          runFeed,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default from LOG_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (default from LOG_LEVEL)")
	rootCmd.Flags().BoolVar(&noTUI, "no-tui", false, "Run the daily check loop with streaming logs instead of the TUI")
}

var registerOnce sync.Once

// registerCommands adds subcommands once all command vars are initialized
func registerCommands() {
	registerOnce.Do(func() {
		rootCmd.AddCommand(generateCmd)
		rootCmd.AddCommand(serveCmd)
		rootCmd.AddCommand(teamsCmd)
		rootCmd.AddCommand(briefingsCmd)
		rootCmd.AddCommand(playCmd)
		rootCmd.AddCommand(exportCmd)
		rootCmd.AddCommand(discoverCmd)
		rootCmd.AddCommand(watchCmd)
		rootCmd.AddCommand(versionCmd)
	})
}

// Execute runs the root command
func Execute(version string) error {
	registerCommands()

	rootCmd.Version = version
	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func closeLog() {
	if logOutput != nil {
		logOutput.Close()
		logOutput = nil
	}
}

// loadConfig reads config and sets up logging. In TUI mode logs go only
// to the log file; otherwise they stream to stderr as well.
func loadConfig(tui bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("error opening log file: %w", err)
		}
		logOutput = f

		if tui {
			out = f
		} else {
			out = io.MultiWriter(os.Stderr, f)
		}
	} else if tui {
		out = io.Discard
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogPretty && !tui, out)
	return cfg, nil
}

// openApp loads config and opens the application. withBackend also
// builds the Gemini backend and the generation runner.
func openApp(ctx context.Context, tui, withBackend bool) (*app.App, error) {
	cfg, err := loadConfig(tui)
	if err != nil {
		return nil, err
	}

	a, err := app.Open(cfg)
	if err != nil {
		return nil, err
	}
	if !withBackend {
		return a, nil
	}

	backend, err := a.NewBackend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := a.EnableGeneration(backend); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runFeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	a, err := openApp(ctx, !noTUI, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if noTUI {
		log.Info().Str("time", a.Config.BriefingTime).Msg("Waiting for the daily briefing")
		if err := a.Runner.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}

	return a.RunTUI(ctx)
}
