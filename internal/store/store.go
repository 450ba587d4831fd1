// ABOUTME: Durable key/value state backed by SQLite
// ABOUTME: Liked teams, stored briefings and the daily marker as JSON values
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/harperreed/sportsbrief/internal/briefing"
	"github.com/harperreed/sportsbrief/internal/catalog"
	_ "github.com/mattn/go-sqlite3"
)

// Fixed keys
const (
	KeyLikedTeams       = "likedTeams"
	KeyBriefings        = "audioBriefings"
	KeyLastBriefingDate = "lastBriefingDate"
)

// ErrNotFound is returned when a briefing id is not stored
var ErrNotFound = errors.New("not found")

// Store persists application state in a single kv table
type Store struct {
	db *sql.DB

	// serializes read-modify-write of list values
	mu sync.Mutex
}

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps :memory: databases shared and writes ordered
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// get decodes the JSON value at key into v. A missing key leaves v untouched.
func (s *Store) get(key string, v interface{}) error {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) put(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// LikedTeams returns followed teams in the order they were followed
func (s *Store) LikedTeams() ([]catalog.Team, error) {
	teams := []catalog.Team{}
	if err := s.get(KeyLikedTeams, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// SetLikedTeams replaces the followed teams
func (s *Store) SetLikedTeams(teams []catalog.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if teams == nil {
		teams = []catalog.Team{}
	}
	return s.put(KeyLikedTeams, teams)
}

// ToggleTeam follows team if not followed and unfollows it otherwise.
// It reports whether the team is followed afterwards.
func (s *Store) ToggleTeam(team catalog.Team) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	teams := []catalog.Team{}
	if err := s.get(KeyLikedTeams, &teams); err != nil {
		return false, err
	}

	kept := teams[:0]
	found := false
	for _, t := range teams {
		if t.ID == team.ID {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		kept = append(kept, team)
	}

	if err := s.put(KeyLikedTeams, kept); err != nil {
		return false, err
	}
	return !found, nil
}

// Briefings returns stored briefings, newest first
func (s *Store) Briefings() ([]briefing.Briefing, error) {
	list := []briefing.Briefing{}
	if err := s.get(KeyBriefings, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Briefing returns the stored briefing with id
func (s *Store) Briefing(id string) (briefing.Briefing, error) {
	list, err := s.Briefings()
	if err != nil {
		return briefing.Briefing{}, err
	}
	for _, b := range list {
		if b.ID == id {
			return b, nil
		}
	}
	return briefing.Briefing{}, fmt.Errorf("briefing %s: %w", id, ErrNotFound)
}

// PrependBriefing stores b ahead of all existing briefings
func (s *Store) PrependBriefing(b briefing.Briefing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := []briefing.Briefing{}
	if err := s.get(KeyBriefings, &list); err != nil {
		return err
	}
	return s.put(KeyBriefings, append([]briefing.Briefing{b}, list...))
}

// LastBriefingDate returns the local date of the last generated briefing,
// or "" when none has been generated
func (s *Store) LastBriefingDate() (string, error) {
	var date string
	if err := s.get(KeyLastBriefingDate, &date); err != nil {
		return "", err
	}
	return date, nil
}

// SetLastBriefingDate records the daily marker
func (s *Store) SetLastBriefingDate(date string) error {
	return s.put(KeyLastBriefingDate, date)
}
