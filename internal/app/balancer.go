// ABOUTME: Main balancer application orchestration
// ABOUTME: Coordinates config, session, playback, export, and the TUI
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/hearlab/balance-go/internal/calibration"
	"github.com/hearlab/balance-go/internal/config"
	"github.com/hearlab/balance-go/internal/export"
	"github.com/hearlab/balance-go/internal/player"
	"github.com/hearlab/balance-go/internal/session"
	"github.com/hearlab/balance-go/internal/signal"
	"github.com/hearlab/balance-go/internal/stimulus"
	"github.com/hearlab/balance-go/internal/ui"
)

// noiseSeed is fixed so every speaker hears the identical stimulus.
const noiseSeed = 1

// Balancer is the main application.
type Balancer struct {
	cfg    *config.File
	sess   *session.Session
	output *player.Output
	ctrl   *ui.Control
	prog   *tea.Program
	ctx    context.Context
	cancel context.CancelFunc

	sweepMu  sync.Mutex
	sweeping bool
}

// New creates a balancer from loaded settings.
func New(cfg *config.File) *Balancer {
	ctx, cancel := context.WithCancel(context.Background())

	return &Balancer{
		cfg:    cfg,
		sess:   session.New(cfg.NumSpeakers),
		output: player.NewOutput(),
		ctrl:   ui.NewControl(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Run starts the balancer and blocks until the operator quits.
func (b *Balancer) Run() error {
	if err := b.output.Initialize(signal.DefaultSampleRate, b.cfg.NumSpeakers); err != nil {
		return fmt.Errorf("failed to initialize audio output: %w", err)
	}
	defer b.output.Close()

	logrus.WithFields(b.cfg.LogrusFields()).Info("starting balancer")
	logrus.WithField("session", b.sess.ID).Info("session opened")
	if b.cfg.DeviceID >= 0 {
		// oto has no device picker; the configured ID is informational only.
		logrus.Warnf("deviceID %d configured, but output goes to the system default device", b.cfg.DeviceID)
	}

	prog := ui.NewProgram(ui.NewModel(b.ctrl, b.cfg.NumSpeakers, b.cfg.Duration, b.cfg.LevelDB))
	b.prog = prog

	b.output.SetOnDone(func() {
		b.sendStatus(ui.StatusMsg{Playing: boolPtr(false)})
	})

	go b.commandLoop()

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}

	b.cancel()

	if err := b.cfg.Save(); err != nil {
		logrus.Warnf("failed to save settings: %v", err)
	}

	return nil
}

// commandLoop processes operator commands from the TUI.
func (b *Balancer) commandLoop() {
	for {
		select {
		case cmd := <-b.ctrl.Plays:
			b.handlePlay(cmd)
		case <-b.ctrl.PlayCals:
			b.handlePlayCal()
		case <-b.ctrl.Stops:
			b.output.Stop()
		case cmd := <-b.ctrl.Submits:
			b.handleSubmit(cmd)
		case cmd := <-b.ctrl.Calibrates:
			b.handleCalibrate(cmd)
		case <-b.ctrl.Exports:
			b.handleExport()
		case <-b.ctrl.Sweeps:
			// Snapshot the settings here: the sweep goroutine must not
			// touch cfg while this loop keeps handling commands.
			go b.sweep(b.cfg.NumSpeakers, b.cfg.Duration, b.cfg.LevelDB)
		case <-b.ctrl.Quit:
			b.cancel()
			return
		case <-b.ctx.Done():
			return
		}
	}
}

// handlePlay presents the noise burst on the selected speaker's channel.
func (b *Balancer) handlePlay(cmd ui.PlayCmd) {
	// Persist the latest duration and level values.
	b.cfg.Duration = cmd.Duration
	b.cfg.LevelDB = cmd.LevelDB
	b.cfg.ChannelRouting = fmt.Sprintf("%d", cmd.Channel+1)
	if err := b.cfg.Save(); err != nil {
		logrus.Warnf("failed to save settings: %v", err)
	}

	if err := b.play(cmd.Channel, cmd.Duration, cmd.LevelDB); err != nil {
		b.sendStatus(ui.StatusMsg{Err: err.Error()})
	}
}

// play renders and starts a noise burst on a single channel.
func (b *Balancer) play(channel int, duration, levelDB float64) error {
	burst := player.Burst{
		Source:   signal.NewNoise(noiseSeed),
		Duration: time.Duration(duration * float64(time.Second)),
		LevelDB:  levelDB,
		Routing:  []int{channel + 1},
	}

	pcm, err := player.RenderBurst(burst, b.output.Channels())
	if err != nil {
		if errors.Is(err, player.ErrClipping) {
			return fmt.Errorf("level %.1f dB is too high and caused clipping", levelDB)
		}
		return err
	}

	if err := b.output.Play(pcm); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"channel":  channel + 1,
		"duration": duration,
		"levelDB":  levelDB,
	}).Info("burst started")

	b.sendStatus(ui.StatusMsg{Playing: boolPtr(true)})
	return nil
}

// handlePlayCal presents the calibration stimulus through the configured
// routing at the calibration level.
func (b *Balancer) handlePlayCal() {
	src, err := stimulus.Open(b.cfg.CalFile)
	if err != nil {
		b.sendStatus(ui.StatusMsg{Err: fmt.Sprintf("cannot load calibration file: %v", err)})
		return
	}

	if src.SampleRate() != signal.DefaultSampleRate {
		logrus.Warnf("calibration file is %dHz, output is %dHz; playback will be off-pitch",
			src.SampleRate(), signal.DefaultSampleRate)
	}

	routing, err := config.ParseRouting(b.cfg.ChannelRouting)
	if err != nil {
		b.sendStatus(ui.StatusMsg{Err: err.Error()})
		return
	}

	burst := player.Burst{
		Source:   src,
		Duration: time.Duration(float64(src.Len()) / float64(src.SampleRate()) * float64(time.Second)),
		LevelDB:  b.cfg.CalLevelDB,
		Routing:  routing,
	}

	pcm, err := player.RenderBurst(burst, b.output.Channels())
	if err != nil {
		b.sendStatus(ui.StatusMsg{Err: err.Error()})
		return
	}

	if err := b.output.Play(pcm); err != nil {
		b.sendStatus(ui.StatusMsg{Err: err.Error()})
		return
	}

	logrus.WithField("file", b.cfg.CalFile).Info("calibration stimulus started")
	b.sendStatus(ui.StatusMsg{Playing: boolPtr(true)})
}

// handleSubmit records an SLM reading and pushes the updated offsets.
func (b *Balancer) handleSubmit(cmd ui.SubmitCmd) {
	offset, err := b.sess.RecordReading(cmd.Channel, cmd.Reading)
	if err != nil {
		if errors.Is(err, session.ErrNoReference) {
			b.sendStatus(ui.StatusMsg{Err: "Please start with speaker 1 to create a reference level!"})
			return
		}
		b.sendStatus(ui.StatusMsg{Err: err.Error()})
		return
	}

	refSet := b.sess.HasReference()
	refLevel, _ := b.sess.ReferenceLevel()

	b.sendStatus(ui.StatusMsg{
		RefSet:   &refSet,
		RefLevel: refLevel,
		Offsets:  offsetRows(b.sess.Snapshot()),
		Status:   fmt.Sprintf("speaker %d offset: %+.1f dB", cmd.Channel+1, offset),
	})
}

// handleCalibrate updates the SLM offset from a reading taken against the
// calibration stimulus and persists the derived presentation level.
func (b *Balancer) handleCalibrate(cmd ui.CalibrateCmd) {
	b.cfg.SLMReading = cmd.Reading
	b.cfg.SLMOffset = calibration.Offset(cmd.Reading, b.cfg.CalLevelDB)
	b.cfg.AdjustedLevelDB = calibration.AdjustedLevel(b.cfg.DesiredLevelDB, b.cfg.SLMOffset)

	if err := b.cfg.Save(); err != nil {
		b.sendStatus(ui.StatusMsg{Err: fmt.Sprintf("failed to save calibration: %v", err)})
		return
	}

	logrus.WithFields(logrus.Fields{
		"slmReading": b.cfg.SLMReading,
		"slmOffset":  b.cfg.SLMOffset,
		"adjusted":   b.cfg.AdjustedLevelDB,
	}).Info("calibration updated")

	b.sendStatus(ui.StatusMsg{
		Status: fmt.Sprintf("SLM offset %.1f dB, adjusted level %.1f dB FS",
			b.cfg.SLMOffset, b.cfg.AdjustedLevelDB),
	})
}

// handleExport writes the offsets CSV into the working directory.
func (b *Balancer) handleExport() {
	name := export.Filename(time.Now())

	if err := export.Save(name, b.sess.Snapshot()); err != nil {
		b.sendStatus(ui.StatusMsg{Err: fmt.Sprintf("data not saved: %v", err)})
		return
	}

	status := fmt.Sprintf("offsets saved to %s", name)
	if missing := b.sess.MissingOffsets(); len(missing) > 0 {
		status += fmt.Sprintf(" (speakers without offsets: %s)", speakerList(missing))
	}
	b.sendStatus(ui.StatusMsg{Status: status})
}

// sweep steps through every speaker, presenting the burst on each. The
// operator walks the room with the SLM while the tool drives playback.
func (b *Balancer) sweep(numSpeakers int, duration, levelDB float64) {
	b.sweepMu.Lock()
	if b.sweeping {
		b.sweepMu.Unlock()
		return
	}
	b.sweeping = true
	b.sweepMu.Unlock()

	defer func() {
		b.sweepMu.Lock()
		b.sweeping = false
		b.sweepMu.Unlock()
		b.sendStatus(ui.StatusMsg{Sweeping: boolPtr(false), Status: "sweep finished"})
	}()

	logrus.Info("sweep started")

	for ch := 0; ch < numSpeakers; ch++ {
		select {
		case <-b.ctx.Done():
			return
		default:
		}

		b.sendStatus(ui.StatusMsg{Sweeping: boolPtr(true), SweepChannel: ch})

		if err := b.play(ch, duration, levelDB); err != nil {
			b.sendStatus(ui.StatusMsg{Err: err.Error()})
			return
		}

		// Wait out the burst plus a short gap before the next speaker.
		select {
		case <-time.After(time.Duration(duration*float64(time.Second)) + 250*time.Millisecond):
		case <-b.ctx.Done():
			b.output.Stop()
			return
		}
	}
}

// sendStatus delivers a status update to the TUI, if one is attached.
func (b *Balancer) sendStatus(msg ui.StatusMsg) {
	if b.prog != nil {
		b.prog.Send(msg)
	}
}

func offsetRows(speakers []session.Speaker) []ui.Offset {
	rows := make([]ui.Offset, len(speakers))
	for i, sp := range speakers {
		rows[i] = ui.Offset{
			Channel:    sp.Channel,
			Offset:     sp.Offset,
			Calibrated: sp.Calibrated,
		}
	}
	return rows
}

func speakerList(channels []int) string {
	s := ""
	for i, ch := range channels {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%d", ch+1)
	}
	return s
}

func boolPtr(v bool) *bool { return &v }
