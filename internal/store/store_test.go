// ABOUTME: Tests for the SQLite state store
// ABOUTME: Covers liked-team toggling, briefing ordering and persistence across reopen
package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/harperreed/sportsbrief/internal/briefing"
	"github.com/harperreed/sportsbrief/internal/catalog"
)

// createTestStore opens a store in a temp directory
func createTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

var (
	packers = catalog.Team{ID: "nfl-gb", Name: "Green Bay Packers", League: "NFL"}
	bruins  = catalog.Team{ID: "nhl-bos", Name: "Boston Bruins", League: "NHL"}
)

func TestEmptyStore(t *testing.T) {
	s, _ := createTestStore(t)

	teams, err := s.LikedTeams()
	if err != nil {
		t.Fatalf("failed to read liked teams: %v", err)
	}
	if teams == nil || len(teams) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", teams)
	}

	list, err := s.Briefings()
	if err != nil {
		t.Fatalf("failed to read briefings: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no briefings, got %d", len(list))
	}

	date, err := s.LastBriefingDate()
	if err != nil {
		t.Fatalf("failed to read marker: %v", err)
	}
	if date != "" {
		t.Errorf("expected empty marker, got %q", date)
	}
}

func TestToggleTeam(t *testing.T) {
	s, _ := createTestStore(t)

	liked, err := s.ToggleTeam(packers)
	if err != nil {
		t.Fatalf("failed to toggle: %v", err)
	}
	if !liked {
		t.Error("expected team followed after first toggle")
	}

	if _, err := s.ToggleTeam(bruins); err != nil {
		t.Fatalf("failed to toggle: %v", err)
	}

	teams, _ := s.LikedTeams()
	if len(teams) != 2 || teams[0].ID != "nfl-gb" || teams[1].ID != "nhl-bos" {
		t.Errorf("expected follow order kept, got %+v", teams)
	}

	liked, err = s.ToggleTeam(packers)
	if err != nil {
		t.Fatalf("failed to toggle: %v", err)
	}
	if liked {
		t.Error("expected team unfollowed after second toggle")
	}

	teams, _ = s.LikedTeams()
	if len(teams) != 1 || teams[0].ID != "nhl-bos" {
		t.Errorf("expected only bruins left, got %+v", teams)
	}
}

func TestSetLikedTeams(t *testing.T) {
	s, _ := createTestStore(t)

	if err := s.SetLikedTeams([]catalog.Team{bruins, packers}); err != nil {
		t.Fatalf("failed to set liked teams: %v", err)
	}
	if err := s.SetLikedTeams(nil); err != nil {
		t.Fatalf("failed to clear liked teams: %v", err)
	}

	teams, _ := s.LikedTeams()
	if len(teams) != 0 {
		t.Errorf("expected no teams, got %+v", teams)
	}
}

func TestPrependBriefing(t *testing.T) {
	s, _ := createTestStore(t)

	for _, id := range []string{"one", "two", "three"} {
		b := briefing.Briefing{ID: id, Title: "Briefing " + id, Sources: []briefing.Source{{URI: "u", Title: "t"}}}
		if err := s.PrependBriefing(b); err != nil {
			t.Fatalf("failed to store briefing %s: %v", id, err)
		}
	}

	list, err := s.Briefings()
	if err != nil {
		t.Fatalf("failed to read briefings: %v", err)
	}
	expected := []string{"three", "two", "one"}
	for i, id := range expected {
		if list[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, list[i].ID)
		}
	}

	b, err := s.Briefing("two")
	if err != nil {
		t.Fatalf("failed to look up briefing: %v", err)
	}
	if b.Title != "Briefing two" || len(b.Sources) != 1 {
		t.Errorf("unexpected briefing %+v", b)
	}

	if _, err := s.Briefing("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	s, path := createTestStore(t)

	if _, err := s.ToggleTeam(packers); err != nil {
		t.Fatalf("failed to toggle: %v", err)
	}
	if err := s.PrependBriefing(briefing.Briefing{ID: "kept", AudioBase64: "AAAA"}); err != nil {
		t.Fatalf("failed to store briefing: %v", err)
	}
	if err := s.SetLastBriefingDate("2025-03-09"); err != nil {
		t.Fatalf("failed to set marker: %v", err)
	}
	s.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	teams, _ := reopened.LikedTeams()
	if len(teams) != 1 || teams[0].Name != "Green Bay Packers" {
		t.Errorf("expected liked team to persist, got %+v", teams)
	}
	b, err := reopened.Briefing("kept")
	if err != nil || b.AudioBase64 != "AAAA" {
		t.Errorf("expected briefing to persist, got %+v (%v)", b, err)
	}
	date, _ := reopened.LastBriefingDate()
	if date != "2025-03-09" {
		t.Errorf("expected marker to persist, got %q", date)
	}
}

func TestInMemoryStore(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open memory store: %v", err)
	}
	defer s.Close()

	if err := s.SetLastBriefingDate("2025-01-01"); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if date, _ := s.LastBriefingDate(); date != "2025-01-01" {
		t.Errorf("expected 2025-01-01, got %q", date)
	}
}

func TestSatisfiesRunnerStore(t *testing.T) {
	var _ briefing.Store = (*Store)(nil)
}
