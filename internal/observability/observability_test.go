// ABOUTME: Tests for logging and metrics helpers
// ABOUTME: Verifies level parsing, logger output and metric recording
package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestInitLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	InitLogger("debug", false, &buf)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Info().Str("team", "nfl-gb").Msg("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log line: %v", err)
	}
	if entry["message"] != "hello" {
		t.Errorf("expected message 'hello', got %v", entry["message"])
	}
	if entry["team"] != "nfl-gb" {
		t.Errorf("expected team 'nfl-gb', got %v", entry["team"])
	}
}

func TestWithRunID(t *testing.T) {
	var buf bytes.Buffer
	InitLogger("info", false, &buf)

	logger := WithRunID("run-123")
	logger.Info().Msg("generating")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log line: %v", err)
	}
	if entry["run_id"] != "run-123" {
		t.Errorf("expected run_id 'run-123', got %v", entry["run_id"])
	}
}

func TestNewRunIDUnique(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}

func TestRecordBackendCall(t *testing.T) {
	before := testutil.ToFloat64(backendRequests.WithLabelValues("speak", "error"))

	RecordBackendCall("speak", time.Now(), errors.New("quota"))

	after := testutil.ToFloat64(backendRequests.WithLabelValues("speak", "error"))
	if after != before+1 {
		t.Errorf("expected counter %v, got %v", before+1, after)
	}
}

func TestRecordGeneration(t *testing.T) {
	before := testutil.ToFloat64(generationsTotal.WithLabelValues("success"))

	RecordGeneration(time.Now().Add(-time.Second), true)

	if got := testutil.ToFloat64(generationsTotal.WithLabelValues("success")); got != before+1 {
		t.Errorf("expected counter %v, got %v", before+1, got)
	}
}

func TestRecordDecodeError(t *testing.T) {
	before := testutil.ToFloat64(playbackDecodeErrors)
	RecordDecodeError()
	if got := testutil.ToFloat64(playbackDecodeErrors); got != before+1 {
		t.Errorf("expected counter %v, got %v", before+1, got)
	}
}
