// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, gating rules, input editing, and selection
package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

func TestNewModel(t *testing.T) {
	m := NewModel(NewControl(), 4, 3.0, -30)

	if m.selected != 0 {
		t.Errorf("expected speaker 1 selected initially, got %d", m.selected)
	}

	if m.playing {
		t.Error("expected playing to be false initially")
	}

	if m.refSet {
		t.Error("expected no reference initially")
	}

	if len(m.offsets) != 4 {
		t.Errorf("expected 4 offset rows, got %d", len(m.offsets))
	}
}

func TestStatusMsgPlaying(t *testing.T) {
	m := NewModel(NewControl(), 4, 3.0, -30)

	playing := true
	m.applyStatus(StatusMsg{Playing: &playing})
	if !m.playing {
		t.Error("expected playing after status update")
	}

	stopped := false
	m.applyStatus(StatusMsg{Playing: &stopped})
	if m.playing {
		t.Error("expected stopped after status update")
	}
}

func TestStatusMsgReference(t *testing.T) {
	m := NewModel(NewControl(), 4, 3.0, -30)

	refSet := true
	m.applyStatus(StatusMsg{RefSet: &refSet, RefLevel: 70})

	if !m.refSet {
		t.Error("expected reference to be set")
	}
	if m.refLevel != 70 {
		t.Errorf("expected reference level 70, got %v", m.refLevel)
	}
}

func TestStatusMsgOffsets(t *testing.T) {
	m := NewModel(NewControl(), 2, 3.0, -30)

	m.applyStatus(StatusMsg{Offsets: []Offset{
		{Channel: 0, Offset: 0.0, Calibrated: true},
		{Channel: 1, Offset: -5.0, Calibrated: true},
	}})

	if !m.offsets[1].Calibrated || m.offsets[1].Offset != -5.0 {
		t.Errorf("offset table not updated: %+v", m.offsets)
	}
}

func TestStatusMsgSweepFollowsChannel(t *testing.T) {
	m := NewModel(NewControl(), 4, 3.0, -30)

	sweeping := true
	m.applyStatus(StatusMsg{Sweeping: &sweeping, SweepChannel: 2})

	if !m.sweeping {
		t.Error("expected sweeping state")
	}
	if m.selected != 2 {
		t.Errorf("selection should follow the sweep, got %d", m.selected)
	}
}

func TestStatusMsgErrorAndStatus(t *testing.T) {
	m := NewModel(NewControl(), 4, 3.0, -30)

	m.applyStatus(StatusMsg{Err: "boom"})
	if m.errText != "boom" {
		t.Errorf("expected error text, got %q", m.errText)
	}

	// A fresh status clears the error.
	m.applyStatus(StatusMsg{Status: "saved"})
	if m.errText != "" || m.status != "saved" {
		t.Errorf("expected status to clear error, got status=%q err=%q", m.status, m.errText)
	}
}

func TestCalculateDisabledWithoutPlayback(t *testing.T) {
	m := NewModel(NewControl(), 4, 3.0, -30)
	m = press(t, m, "7", "0")

	if m.canCalculate() {
		t.Error("offset calculation must be unavailable while nothing plays")
	}
}

func TestCalculateDisabledWithoutReference(t *testing.T) {
	m := NewModel(NewControl(), 4, 3.0, -30)

	playing := true
	m.applyStatus(StatusMsg{Playing: &playing})
	m = press(t, m, "right", "7", "5")

	if m.canCalculate() {
		t.Error("channels past the first need a reference reading")
	}

	refSet := true
	m.applyStatus(StatusMsg{RefSet: &refSet, RefLevel: 70})
	if !m.canCalculate() {
		t.Error("expected calculation to be available with reference and playback")
	}
}

func TestCalculateAllowedOnReferenceSpeaker(t *testing.T) {
	m := NewModel(NewControl(), 4, 3.0, -30)

	playing := true
	m.applyStatus(StatusMsg{Playing: &playing})
	m = press(t, m, "7", "0")

	if !m.canCalculate() {
		t.Error("speaker 1 should not require an existing reference")
	}
}

func TestCalculateDisabledWithoutReading(t *testing.T) {
	m := NewModel(NewControl(), 4, 3.0, -30)

	playing := true
	m.applyStatus(StatusMsg{Playing: &playing})

	if m.canCalculate() {
		t.Error("an empty reading must not be submittable")
	}
}

func TestSubmitSendsCommandAndAdvances(t *testing.T) {
	ctrl := NewControl()
	m := NewModel(ctrl, 4, 3.0, -30)

	playing := true
	m.applyStatus(StatusMsg{Playing: &playing})
	m = press(t, m, "7", "0", ".", "5", "enter")

	select {
	case cmd := <-ctrl.Submits:
		if cmd.Channel != 0 || cmd.Reading != 70.5 {
			t.Errorf("unexpected submit command: %+v", cmd)
		}
	default:
		t.Fatal("expected a submit command")
	}

	if m.selected != 1 {
		t.Errorf("expected selection to advance to speaker 2, got %d", m.selected+1)
	}

	if m.slmInput != "" {
		t.Errorf("expected input cleared after submit, got %q", m.slmInput)
	}
}

func TestSelectionWrapsAfterLastSpeaker(t *testing.T) {
	m := NewModel(NewControl(), 2, 3.0, -30)

	playing := true
	refSet := true
	m.applyStatus(StatusMsg{Playing: &playing})
	m.applyStatus(StatusMsg{RefSet: &refSet, RefLevel: 70})

	m = press(t, m, "right", "6", "8", "enter")

	if m.selected != 0 {
		t.Errorf("expected selection to wrap to speaker 1, got %d", m.selected+1)
	}
}

func TestReadingInputEditing(t *testing.T) {
	m := NewModel(NewControl(), 4, 3.0, -30)

	m = press(t, m, "-", "7", "x", "0", ".", ".", "5")
	if m.slmInput != "-70.5" {
		t.Errorf("expected input \"-70.5\", got %q", m.slmInput)
	}

	m = press(t, m, "backspace", "backspace")
	if m.slmInput != "-70" {
		t.Errorf("expected input \"-70\" after backspace, got %q", m.slmInput)
	}
}

func TestPlayCommandCarriesSettings(t *testing.T) {
	ctrl := NewControl()
	m := NewModel(ctrl, 4, 2.0, -30)

	// Nudge level up twice, duration up once, select speaker 2, play.
	m = press(t, m, "up", "up", "]", "right", "p")

	select {
	case cmd := <-ctrl.Plays:
		if cmd.Channel != 1 {
			t.Errorf("expected channel 1, got %d", cmd.Channel)
		}
		if cmd.LevelDB != -28 {
			t.Errorf("expected level -28, got %v", cmd.LevelDB)
		}
		if cmd.Duration != 2.5 {
			t.Errorf("expected duration 2.5, got %v", cmd.Duration)
		}
	default:
		t.Fatal("expected a play command")
	}
}

func TestSelectionBounds(t *testing.T) {
	m := NewModel(NewControl(), 2, 3.0, -30)

	m = press(t, m, "left", "left")
	if m.selected != 0 {
		t.Errorf("selection underflowed to %d", m.selected)
	}

	m = press(t, m, "right", "right", "right")
	if m.selected != 1 {
		t.Errorf("selection overflowed to %d", m.selected)
	}
}

func TestSelectionLockedDuringSweep(t *testing.T) {
	m := NewModel(NewControl(), 4, 3.0, -30)

	sweeping := true
	m.applyStatus(StatusMsg{Sweeping: &sweeping, SweepChannel: 1})

	m = press(t, m, "right")
	if m.selected != 1 {
		t.Error("selection should be locked during a sweep")
	}
}

func TestPlaybackLockedDuringSweep(t *testing.T) {
	ctrl := NewControl()
	m := NewModel(ctrl, 4, 3.0, -30)

	sweeping := true
	m.applyStatus(StatusMsg{Sweeping: &sweeping, SweepChannel: 0})

	m = press(t, m, "p", "c")

	select {
	case cmd := <-ctrl.Plays:
		t.Errorf("play must not interrupt a sweep, got %+v", cmd)
	default:
	}

	select {
	case <-ctrl.PlayCals:
		t.Error("calibration playback must not interrupt a sweep")
	default:
	}
}

func TestQuitSignalsApp(t *testing.T) {
	ctrl := NewControl()
	m := NewModel(ctrl, 4, 3.0, -30)

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected tea.Quit command")
	}

	select {
	case <-ctrl.Quit:
	default:
		t.Error("expected quit signal on control channel")
	}
}

func TestNewProgramConstructsWithoutStarting(t *testing.T) {
	if NewProgram(NewModel(NewControl(), 4, 3.0, -30)) == nil {
		t.Fatal("expected a program")
	}
}

func TestViewRendersWithoutSize(t *testing.T) {
	m := NewModel(NewControl(), 4, 3.0, -30)

	if m.View() != "Loading..." {
		t.Error("expected loading placeholder before first WindowSizeMsg")
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)

	if m.View() == "" {
		t.Error("expected rendered view after sizing")
	}
}
