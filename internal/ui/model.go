// ABOUTME: Bubbletea model for the briefing TUI
// ABOUTME: Feed and Teams pages, playback control and generation status
package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/sportsbrief/internal/briefing"
	"github.com/harperreed/sportsbrief/internal/catalog"
	"github.com/harperreed/sportsbrief/internal/observability"
	"github.com/harperreed/sportsbrief/pkg/playback"
	"github.com/rs/zerolog/log"
)

type page int

const (
	pageFeed page = iota
	pageTeams
)

const width = 72

// State is the persisted state shown by the TUI
type State interface {
	LikedTeams() ([]catalog.Team, error)
	ToggleTeam(team catalog.Team) (bool, error)
	Briefings() ([]briefing.Briefing, error)
}

// Generation is the briefing runner as seen by the TUI
type Generation interface {
	Status() briefing.Status
	Subscribe() (<-chan briefing.Status, func())
	TriggerAsync(ctx context.Context) error
}

// Player is the playback surface for one briefing
type Player interface {
	Initialize(ctx context.Context, payload string) error
	Toggle() error
	State() playback.State
	Close() error
}

// PlayerFactory creates a player whose callbacks report for briefing id
type PlayerFactory func(id string) Player

// Deps holds everything the model talks to
type Deps struct {
	Ctx       context.Context
	Catalog   *catalog.Catalog
	State     State
	Runner    Generation
	NewPlayer PlayerFactory
	Threshold briefing.Threshold
}

// Model represents the TUI state
type Model struct {
	deps    Deps
	updates <-chan briefing.Status

	page page

	// Feed
	briefings []briefing.Briefing
	cursor    int
	expanded  bool

	// Teams
	liked      map[string]bool
	search     string
	searching  bool
	teamCursor int

	// Playback
	player   Player
	playerID string
	playback playback.State

	// Generation
	status briefing.Status
	errMsg string

	width  int
	height int
}

// Init loads stored data and starts listening for generation status
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadData(), waitForStatus(m.updates))
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case DataMsg:
		m.applyData(msg)
	case StatusMsg:
		reload := m.applyStatus(msg)
		cmds := []tea.Cmd{waitForStatus(m.updates)}
		if reload {
			cmds = append(cmds, m.loadData())
		}
		return m, tea.Batch(cmds...)
	case PlaybackMsg:
		if msg.ID == m.playerID && m.player != nil {
			m.playback = m.player.State()
		}
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := m.renderHeader()
	if m.page == pageTeams {
		s += m.renderTeams()
	} else {
		s += m.renderFeed()
	}
	s += m.renderHelp()

	return s
}

// renderHeader renders the page tabs and generation status
func (m Model) renderHeader() string {
	feedTab, teamsTab := "[Feed]", " Teams "
	if m.page == pageTeams {
		feedTab, teamsTab = " Feed ", "[Teams]"
	}

	s := fmt.Sprintf("┌─ Sports Briefing ── %s %s %s┐\n", feedTab, teamsTab, strings.Repeat("─", width-38))

	if m.status.Generating {
		s += line("⟳ " + m.status.Message)
	}
	if errText := m.errorText(); errText != "" {
		s += line("✗ Error: " + errText)
	}
	return s + "├" + strings.Repeat("─", width-2) + "┤\n"
}

func (m Model) errorText() string {
	if m.errMsg != "" {
		return m.errMsg
	}
	return m.status.Err
}

// renderFeed renders the briefing list and the selected player
func (m Model) renderFeed() string {
	if len(m.briefings) == 0 {
		if len(m.liked) == 0 {
			return line("Select some teams to get started...") +
				line("Press tab to browse teams.")
		}
		return line(fmt.Sprintf("Your daily briefing will appear here after %s each day.", m.deps.Threshold))
	}

	s := ""
	for i, b := range m.briefings {
		marker := "  "
		if i == m.cursor {
			marker = "▸ "
		}
		s += line(marker + b.Title)
		s += line("  " + longDate(b))

		if i != m.cursor {
			continue
		}

		s += m.renderPlayer(b)
		if m.expanded {
			s += m.renderDetails(b)
		}
	}
	return s
}

// renderPlayer renders the progress bar for the selected briefing
func (m Model) renderPlayer(b briefing.Briefing) string {
	st := playback.State{}
	if b.ID == m.playerID {
		st = m.playback
	}

	icon := "▶"
	if st.Phase == playback.PhasePlaying {
		icon = "⏸"
	}

	bar := renderBar(int(st.Percent*10), 1000, 24)
	return line(fmt.Sprintf("  %s [%s] %s / %s", icon, bar,
		formatClock(st.PositionSeconds), formatClock(st.DurationSeconds)))
}

// renderDetails renders the script and its sources
func (m Model) renderDetails(b briefing.Briefing) string {
	s := line("")
	for _, l := range wrap(b.Summary, width-6) {
		s += line("  " + l)
	}
	if len(b.Sources) > 0 {
		s += line("")
		s += line("  Sources:")
		for _, src := range b.Sources {
			s += line("  • " + truncate(src.Title, width-8))
		}
	}
	return s
}

// renderTeams renders the search box and teams grouped by league
func (m Model) renderTeams() string {
	cursor := " "
	if m.searching {
		cursor = "_"
	}
	s := line("Search: " + m.search + cursor)

	teams := m.visibleTeams()
	if len(teams) == 0 {
		return s + line("No teams match your search.")
	}

	idx := 0
	for _, group := range catalog.GroupByLeague(teams) {
		s += line("")
		s += line(group.League)
		for _, t := range group.Teams {
			marker := "  "
			if idx == m.teamCursor {
				marker = "▸ "
			}
			follow := "[ Follow  ]"
			if m.liked[t.ID] {
				follow = "[Following]"
			}
			s += line(fmt.Sprintf("%s%-30s %s", marker, truncate(t.Name, 30), follow))
			idx++
		}
	}
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	help := "space:Play  enter:Details  g:Generate  tab:Teams  q:Quit"
	if m.page == pageTeams {
		help = "/:Search  enter:Follow  tab:Feed  q:Quit"
	}
	return "├" + strings.Repeat("─", width-2) + "┤\n" +
		line(help) +
		"└" + strings.Repeat("─", width-2) + "┘\n"
}

// visibleTeams returns the teams page entries in display order
func (m Model) visibleTeams() []catalog.Team {
	var out []catalog.Team
	for _, g := range catalog.GroupByLeague(m.deps.Catalog.Filter(m.search)) {
		out = append(out, g.Teams...)
	}
	return out
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.closePlayer()
		return m, tea.Quit
	case "tab":
		if m.page == pageFeed {
			m.page = pageTeams
		} else {
			m.page = pageFeed
		}
	case "g":
		m.errMsg = ""
		if err := m.deps.Runner.TriggerAsync(m.deps.Ctx); err != nil {
			m.errMsg = err.Error()
		}
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	}

	if m.page == pageTeams {
		switch msg.String() {
		case "/":
			m.searching = true
		case "enter":
			m.toggleTeam()
		}
		return m, nil
	}

	switch msg.String() {
	case " ":
		m.togglePlayback()
	case "enter":
		m.expanded = !m.expanded
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.closePlayer()
		return m, tea.Quit
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
	case tea.KeyBackspace:
		if len(m.search) > 0 {
			r := []rune(m.search)
			m.search = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.search += string(msg.Runes)
	}
	m.teamCursor = 0
	return m, nil
}

func (m *Model) move(delta int) {
	if m.page == pageTeams {
		m.teamCursor = clampIndex(m.teamCursor+delta, len(m.visibleTeams()))
		return
	}
	next := clampIndex(m.cursor+delta, len(m.briefings))
	if next != m.cursor {
		m.expanded = false
	}
	m.cursor = next
}

// togglePlayback plays or pauses the selected briefing. Selecting a
// different briefing replaces the current player.
func (m *Model) togglePlayback() {
	if m.cursor >= len(m.briefings) || m.deps.NewPlayer == nil {
		return
	}
	b := m.briefings[m.cursor]

	if m.playerID != b.ID {
		m.closePlayer()

		p := m.deps.NewPlayer(b.ID)
		if err := p.Initialize(m.deps.Ctx, b.AudioBase64); err != nil {
			observability.RecordDecodeError()
			log.Error().Err(err).Str("briefing", b.ID).Msg("Failed to load briefing audio")
			m.errMsg = fmt.Sprintf("Could not load audio: %v", err)
			p.Close()
			return
		}
		m.player = p
		m.playerID = b.ID
	}

	if err := m.player.Toggle(); err != nil {
		m.errMsg = fmt.Sprintf("Playback failed: %v", err)
	}
	m.playback = m.player.State()
}

func (m *Model) closePlayer() {
	if m.player == nil {
		return
	}
	if err := m.player.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close player")
	}
	m.player = nil
	m.playerID = ""
	m.playback = playback.State{}
}

func (m *Model) toggleTeam() {
	teams := m.visibleTeams()
	if m.teamCursor >= len(teams) {
		return
	}
	team := teams[m.teamCursor]

	liked, err := m.deps.State.ToggleTeam(team)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	if m.liked == nil {
		m.liked = make(map[string]bool)
	}
	if liked {
		m.liked[team.ID] = true
	} else {
		delete(m.liked, team.ID)
	}
}

// applyData replaces the stored lists
func (m *Model) applyData(msg DataMsg) {
	if msg.Err != nil {
		m.errMsg = msg.Err.Error()
		return
	}
	m.briefings = msg.Briefings
	m.liked = make(map[string]bool, len(msg.Liked))
	for _, t := range msg.Liked {
		m.liked[t.ID] = true
	}
	m.cursor = clampIndex(m.cursor, len(m.briefings))
}

// applyStatus updates model from status message and reports whether a
// run just finished with a new briefing
func (m *Model) applyStatus(msg StatusMsg) bool {
	finished := m.status.Generating && !msg.Status.Generating
	m.status = msg.Status
	if msg.Status.Generating {
		m.errMsg = ""
	}
	return finished && msg.Status.Err == ""
}

func (m Model) loadData() tea.Cmd {
	state := m.deps.State
	return func() tea.Msg {
		liked, err := state.LikedTeams()
		if err != nil {
			return DataMsg{Err: err}
		}
		list, err := state.Briefings()
		if err != nil {
			return DataMsg{Err: err}
		}
		return DataMsg{Liked: liked, Briefings: list}
	}
}

func waitForStatus(updates <-chan briefing.Status) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return nil
		}
		return StatusMsg{Status: st}
	}
}

// StatusMsg carries a generation status update
type StatusMsg struct {
	Status briefing.Status
}

// DataMsg carries freshly loaded teams and briefings
type DataMsg struct {
	Liked     []catalog.Team
	Briefings []briefing.Briefing
	Err       error
}

// PlaybackMsg reports a progress or phase change for briefing ID
type PlaybackMsg struct {
	ID string
}

// Utility functions
func renderBar(value, max, width int) string {
	if max <= 0 {
		return strings.Repeat("░", width)
	}
	filled := (value * width) / max
	if filled > width {
		filled = width
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length-3]) + "..."
}

// line pads s into one boxed row
func line(s string) string {
	s = truncate(s, width-4)
	pad := width - 4 - len([]rune(s))
	return "│ " + s + strings.Repeat(" ", pad) + " │\n"
}

func wrap(text string, length int) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		cur := ""
		for _, word := range strings.Fields(para) {
			if cur != "" && len([]rune(cur))+1+len([]rune(word)) > length {
				out = append(out, cur)
				cur = ""
			}
			if cur != "" {
				cur += " "
			}
			cur += word
		}
		out = append(out, cur)
	}
	return out
}

// formatClock formats seconds as m:ss
func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func longDate(b briefing.Briefing) string {
	t := b.Time()
	if t.IsZero() {
		return b.Date
	}
	return t.Local().Format("Monday, January 2, 2006")
}

func clampIndex(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
