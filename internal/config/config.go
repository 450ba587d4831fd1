// ABOUTME: Application configuration loaded from the environment
// ABOUTME: Optional .env file, envconfig tags with defaults, and validation
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrMissingAPIKey is returned when a backend command runs without a key
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is required")

// Config holds all configuration for sportsbrief
type Config struct {
	// Gemini backend
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	GeminiTextModel string `envconfig:"GEMINI_TEXT_MODEL" default:"gemini-2.5-flash"`
	GeminiTTSModel  string `envconfig:"GEMINI_TTS_MODEL" default:"gemini-2.5-flash-preview-tts"`
	GeminiVoice     string `envconfig:"GEMINI_VOICE" default:"Kore"`

	// Storage
	DataDir     string `envconfig:"SPORTSBRIEF_DATA_DIR" default:"~/.sportsbrief"`
	CatalogFile string `envconfig:"CATALOG_FILE" default:""` // optional teams.yaml override

	// Scheduling
	BriefingTime    string `envconfig:"BRIEFING_TIME" default:"07:45"` // local HH:MM
	CheckInterval   int    `envconfig:"CHECK_INTERVAL" default:"60"`   // seconds
	FrameIntervalMs int    `envconfig:"FRAME_INTERVAL_MS" default:"50"`

	// Feed server
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8931"`
	MDNSEnabled bool   `envconfig:"MDNS_ENABLED" default:"true"`

	// Observability
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`
	LogFile        string `envconfig:"LOG_FILE" default:"sportsbrief.log"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv reads the environment only
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dataDir, err := expandHome(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}
	cfg.DataDir = dataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value formats and ranges
func (c *Config) Validate() error {
	if _, _, err := c.BriefingClock(); err != nil {
		return err
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("CHECK_INTERVAL must be positive, got %d", c.CheckInterval)
	}
	if c.FrameIntervalMs <= 0 {
		return fmt.Errorf("FRAME_INTERVAL_MS must be positive, got %d", c.FrameIntervalMs)
	}
	if c.DataDir == "" {
		return errors.New("SPORTSBRIEF_DATA_DIR must not be empty")
	}
	return nil
}

// RequireAPIKey fails unless a Gemini API key is configured
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// BriefingClock parses BRIEFING_TIME into hour and minute
func (c *Config) BriefingClock() (hour, minute int, err error) {
	t, err := time.Parse("15:04", c.BriefingTime)
	if err != nil {
		return 0, 0, fmt.Errorf("BRIEFING_TIME must be HH:MM, got %q", c.BriefingTime)
	}
	return t.Hour(), t.Minute(), nil
}

// CheckEvery returns the daily check interval
func (c *Config) CheckEvery() time.Duration {
	return time.Duration(c.CheckInterval) * time.Second
}

// FrameInterval returns the playback progress refresh interval
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs) * time.Millisecond
}

// DatabasePath returns the sqlite store location
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "sportsbrief.db")
}

// LogoCacheDir returns the team logo cache location
func (c *Config) LogoCacheDir() string {
	return filepath.Join(c.DataDir, "logos")
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
