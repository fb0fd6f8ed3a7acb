// ABOUTME: Bubbletea model for the speaker balancer screen
// ABOUTME: Defines application state, key handling, and rendering
package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Offset is one speaker's row in the live offset table.
type Offset struct {
	Channel    int
	Offset     float64
	Calibrated bool
}

// StatusMsg updates TUI state. Nil pointer fields leave state untouched.
type StatusMsg struct {
	Playing      *bool
	Sweeping     *bool
	SweepChannel int
	RefSet       *bool
	RefLevel     float64
	Offsets      []Offset
	Status       string
	Err          string
}

// Model represents the TUI state.
type Model struct {
	ctrl *Control

	// Session
	numSpeakers int
	selected    int
	offsets     []Offset
	refSet      bool
	refLevel    float64

	// Playback
	duration float64
	levelDB  float64
	playing  bool

	// Sweep
	sweeping     bool
	sweepChannel int

	// SLM entry
	slmInput string

	// Feedback
	status  string
	errText string

	// Dimensions
	width  int
	height int
}

// NewModel creates the balancer screen model.
func NewModel(ctrl *Control, numSpeakers int, duration, levelDB float64) Model {
	offsets := make([]Offset, numSpeakers)
	for i := range offsets {
		offsets[i].Channel = i
	}

	return Model{
		ctrl:        ctrl,
		numSpeakers: numSpeakers,
		offsets:     offsets,
		duration:    duration,
		levelDB:     levelDB,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// handleKey handles keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.signal(m.ctrl.Quit)
		return m, tea.Quit

	case "left":
		if !m.sweeping && m.selected > 0 {
			m.selected--
		}
	case "right":
		if !m.sweeping && m.selected < m.numSpeakers-1 {
			m.selected++
		}

	case "up":
		m.levelDB++
	case "down":
		m.levelDB--
	case "]":
		m.duration += 0.5
	case "[":
		if m.duration > 0.5 {
			m.duration -= 0.5
		}

	case "p":
		// The sweep owns playback until it finishes.
		if !m.sweeping {
			m.send(m.ctrl.Plays, PlayCmd{
				Channel:  m.selected,
				Duration: m.duration,
				LevelDB:  m.levelDB,
			})
		}
	case "s":
		m.signal(m.ctrl.Stops)
	case "c":
		if !m.sweeping {
			m.signal(m.ctrl.PlayCals)
		}
	case "C":
		if reading, ok := m.parsedReading(); ok {
			m.sendCalibrate(CalibrateCmd{Reading: reading})
			m.slmInput = ""
		}
	case "e":
		m.signal(m.ctrl.Exports)
	case "t":
		if !m.sweeping {
			m.signal(m.ctrl.Sweeps)
		}

	case "enter":
		if m.canCalculate() {
			reading, _ := m.parsedReading()
			m.sendSubmit(SubmitCmd{Channel: m.selected, Reading: reading})
			m.slmInput = ""
			m.selected = m.nextSpeaker()
		}

	case "backspace":
		if len(m.slmInput) > 0 {
			m.slmInput = m.slmInput[:len(m.slmInput)-1]
		}

	default:
		m.typeReading(msg.String())
	}

	return m, nil
}

// typeReading appends a character to the SLM reading entry.
func (m *Model) typeReading(key string) {
	if len(key) != 1 || len(m.slmInput) >= 7 {
		return
	}
	ch := key[0]
	switch {
	case ch >= '0' && ch <= '9':
	case ch == '.' && !strings.Contains(m.slmInput, "."):
	case ch == '-' && m.slmInput == "":
	default:
		return
	}
	m.slmInput += key
}

// parsedReading returns the typed SLM reading, if valid.
func (m Model) parsedReading() (float64, bool) {
	v, err := strconv.ParseFloat(m.slmInput, 64)
	return v, err == nil
}

// canCalculate gates the offset calculation: audio must be actively
// playing, the entry must parse, and channels past the first need a
// reference reading.
func (m Model) canCalculate() bool {
	if !m.playing || m.sweeping {
		return false
	}
	if _, ok := m.parsedReading(); !ok {
		return false
	}
	return m.selected == 0 || m.refSet
}

// nextSpeaker advances the selection, wrapping past the last speaker.
func (m Model) nextSpeaker() int {
	next := m.selected + 1
	if next >= m.numSpeakers {
		next = 0
	}
	return next
}

// applyStatus updates model state from a status message.
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Playing != nil {
		m.playing = *msg.Playing
	}
	if msg.Sweeping != nil {
		m.sweeping = *msg.Sweeping
		m.sweepChannel = msg.SweepChannel
		if m.sweeping {
			m.selected = msg.SweepChannel
		}
	}
	if msg.RefSet != nil {
		m.refSet = *msg.RefSet
		m.refLevel = msg.RefLevel
	}
	if msg.Offsets != nil {
		m.offsets = msg.Offsets
	}
	if msg.Status != "" {
		m.status = msg.Status
		m.errText = ""
	}
	if msg.Err != "" {
		m.errText = msg.Err
	}
}

// send delivers a play command without blocking the update loop.
func (m Model) send(ch chan PlayCmd, cmd PlayCmd) {
	select {
	case ch <- cmd:
	default:
	}
}

func (m Model) sendSubmit(cmd SubmitCmd) {
	select {
	case m.ctrl.Submits <- cmd:
	default:
	}
}

func (m Model) sendCalibrate(cmd CalibrateCmd) {
	select {
	case m.ctrl.Calibrates <- cmd:
	default:
	}
}

func (m Model) signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Speaker Balancer"))
	b.WriteString("\n\n")

	// Playback
	b.WriteString(headerStyle.Render("Playback  "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f s @ %.1f dB FS  ", m.duration, m.levelDB)))
	b.WriteString(m.renderState())
	b.WriteString("\n\n")

	// Speaker selector
	b.WriteString(headerStyle.Render(m.speakerHeading()))
	b.WriteString("\n")
	b.WriteString(m.renderSpeakers())
	b.WriteString("\n\n")

	// SLM entry
	b.WriteString(headerStyle.Render("SLM Reading (dB)  "))
	entry := m.slmInput
	if entry == "" {
		entry = dimStyle.Render("type a value")
	} else {
		entry = valueStyle.Render(entry)
	}
	b.WriteString(entry)
	b.WriteString("\n")
	b.WriteString(m.renderCalculateHint())
	b.WriteString("\n\n")

	// Offsets table
	b.WriteString(headerStyle.Render("Offsets"))
	b.WriteString("\n")
	b.WriteString(m.renderOffsets())
	b.WriteString("\n")

	// Help
	b.WriteString(dimStyle.Render("←/→:Speaker  ↑/↓:Level  [/]:Duration  p:Play  s:Stop  enter:Offset"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("e:Export CSV  t:Sweep all  c:Play cal  C:Submit cal  q:Quit"))
	b.WriteString("\n")

	// Status line
	if m.errText != "" {
		b.WriteString(errStyle.Render(m.errText))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(valueStyle.Render(m.status))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) speakerHeading() string {
	if m.sweeping {
		return "Speaker Number (sweep in progress...)"
	}
	return "Speaker Number"
}

func (m Model) renderState() string {
	if m.playing {
		return selectedStyle.Render("▶ playing")
	}
	return dimStyle.Render("stopped")
}

// renderSpeakers draws the speaker selector row.
func (m Model) renderSpeakers() string {
	var b strings.Builder
	for i := 0; i < m.numSpeakers; i++ {
		label := fmt.Sprintf(" %d ", i+1)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("[" + strconv.Itoa(i+1) + "]"))
		} else {
			b.WriteString(valueStyle.Render(label))
		}
		b.WriteString(" ")
	}
	return b.String()
}

// renderOffsets draws the live offset table, one line per speaker.
func (m Model) renderOffsets() string {
	var b strings.Builder
	for _, o := range m.offsets {
		label := fmt.Sprintf("  %d: ", o.Channel+1)
		b.WriteString(valueStyle.Render(label))
		if o.Calibrated {
			b.WriteString(valueStyle.Render(fmt.Sprintf("%+.1f dB", o.Offset)))
		} else {
			b.WriteString(dimStyle.Render("—"))
		}
		if o.Channel == 0 && m.refSet {
			b.WriteString(dimStyle.Render(fmt.Sprintf("   (ref %.1f dB)", m.refLevel)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderCalculateHint explains why the offset control is unavailable.
func (m Model) renderCalculateHint() string {
	switch {
	case m.canCalculate():
		return valueStyle.Render("enter: calculate offset")
	case m.sweeping:
		return dimStyle.Render("offset entry disabled during sweep")
	case !m.playing:
		return dimStyle.Render("play the signal before entering a reading")
	case m.selected != 0 && !m.refSet:
		return dimStyle.Render("start with speaker 1 to create a reference level")
	default:
		return dimStyle.Render("enter a reading to calculate the offset")
	}
}
