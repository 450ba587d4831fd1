// ABOUTME: TUI initialization and control
// ABOUTME: Wires playback callbacks into the bubbletea program
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/sportsbrief/internal/briefing"
	"github.com/harperreed/sportsbrief/pkg/playback"
)

// NewModel creates a new TUI model. updates may be nil.
func NewModel(deps Deps, updates <-chan briefing.Status) Model {
	m := Model{
		deps:    deps,
		updates: updates,
		liked:   make(map[string]bool),
	}
	if deps.Runner != nil {
		m.status = deps.Runner.Status()
	}
	return m
}

// ControllerFactory adapts a playback config template into a PlayerFactory
// whose callbacks are delivered to the program as PlaybackMsg
func ControllerFactory(template playback.Config, send func(tea.Msg)) PlayerFactory {
	return func(id string) Player {
		config := template
		config.OnProgress = func(playback.Progress) { send(PlaybackMsg{ID: id}) }
		config.OnPhaseChange = func(playback.Phase) { send(PlaybackMsg{ID: id}) }
		return playback.NewController(config)
	}
}

// Run runs the TUI until the user quits
func Run(deps Deps, template playback.Config) error {
	updates, unsubscribe := deps.Runner.Subscribe()
	defer unsubscribe()

	var p *tea.Program
	// callbacks can fire inside Update, which must not block on Send
	deps.NewPlayer = ControllerFactory(template, func(msg tea.Msg) {
		go p.Send(msg)
	})

	p = tea.NewProgram(NewModel(deps, updates), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
