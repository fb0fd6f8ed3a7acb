// ABOUTME: TUI initialization and control channels
// ABOUTME: Wraps bubbletea program and carries operator commands to the app
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// PlayCmd asks for a noise burst on a speaker's channel.
type PlayCmd struct {
	Channel  int     // 0-based
	Duration float64 // seconds
	LevelDB  float64
}

// SubmitCmd carries an SLM reading for a speaker.
type SubmitCmd struct {
	Channel int
	Reading float64
}

// CalibrateCmd carries an SLM reading taken against the calibration stimulus.
type CalibrateCmd struct {
	Reading float64
}

// Control holds channels for operator command communication.
type Control struct {
	Plays      chan PlayCmd
	PlayCals   chan struct{}
	Stops      chan struct{}
	Submits    chan SubmitCmd
	Calibrates chan CalibrateCmd
	Exports    chan struct{}
	Sweeps     chan struct{}
	Quit       chan struct{}
}

// NewControl creates a control channel set.
func NewControl() *Control {
	return &Control{
		Plays:      make(chan PlayCmd, 4),
		PlayCals:   make(chan struct{}, 1),
		Stops:      make(chan struct{}, 1),
		Submits:    make(chan SubmitCmd, 4),
		Calibrates: make(chan CalibrateCmd, 1),
		Exports:    make(chan struct{}, 1),
		Sweeps:     make(chan struct{}, 1),
		Quit:       make(chan struct{}, 1),
	}
}

// NewProgram builds the bubbletea program for the balancer screen. The
// caller runs it and owns its lifetime.
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}
