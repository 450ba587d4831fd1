// ABOUTME: Team catalog loaded from embedded or user-supplied YAML
// ABOUTME: Lookup, search filtering and league grouping for followable teams
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed teams.yaml
var defaultTeams []byte

// ErrUnknownTeam is returned by Lookup for an id not in the catalog
var ErrUnknownTeam = errors.New("unknown team")

// Team is a followable team
type Team struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	League string `yaml:"league" json:"league"`
	Logo   string `yaml:"logo" json:"logo"`
}

// LeagueGroup is one league heading and its teams
type LeagueGroup struct {
	League string `json:"league"`
	Teams  []Team `json:"teams"`
}

// Catalog is an immutable, ordered set of teams
type Catalog struct {
	teams []Team
	byID  map[string]Team
}

type catalogFile struct {
	Teams []Team `yaml:"teams"`
}

// Default returns the built-in catalog
func Default() *Catalog {
	c, err := Parse(defaultTeams)
	if err != nil {
		panic(fmt.Sprintf("embedded team catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from path, or returns the built-in one when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML. Ids must be unique and non-empty.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		teams: make([]Team, 0, len(file.Teams)),
		byID:  make(map[string]Team, len(file.Teams)),
	}
	for i, t := range file.Teams {
		if t.ID == "" || t.Name == "" {
			return nil, fmt.Errorf("team %d: id and name are required", i)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate team id %q", t.ID)
		}
		c.teams = append(c.teams, t)
		c.byID[t.ID] = t
	}
	return c, nil
}

// All returns every team in catalog order
func (c *Catalog) All() []Team {
	out := make([]Team, len(c.teams))
	copy(out, c.teams)
	return out
}

// Lookup finds a team by id
func (c *Catalog) Lookup(id string) (Team, error) {
	t, ok := c.byID[id]
	if !ok {
		return Team{}, fmt.Errorf("%w: %s", ErrUnknownTeam, id)
	}
	return t, nil
}

// Filter returns teams whose name or league contains term, ignoring case.
// An empty term matches every team.
func (c *Catalog) Filter(term string) []Team {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return c.All()
	}

	var out []Team
	for _, t := range c.teams {
		if strings.Contains(strings.ToLower(t.Name), term) ||
			strings.Contains(strings.ToLower(t.League), term) {
			out = append(out, t)
		}
	}
	return out
}

// GroupByLeague groups teams under their league. Leagues appear in order
// of first appearance and teams keep their relative order.
func GroupByLeague(teams []Team) []LeagueGroup {
	var groups []LeagueGroup
	index := make(map[string]int)

	for _, t := range teams {
		i, ok := index[t.League]
		if !ok {
			i = len(groups)
			index[t.League] = i
			groups = append(groups, LeagueGroup{League: t.League})
		}
		groups[i].Teams = append(groups[i].Teams, t)
	}
	return groups
}
