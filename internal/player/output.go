// ABOUTME: Audio output using oto library
// ABOUTME: Non-blocking burst playback with early stop
package player

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
)

// Output manages audio output. Play returns immediately; a watcher
// goroutine reports completion through the OnDone callback so the UI
// never blocks on the device.
type Output struct {
	mu         sync.Mutex
	otoCtx     *oto.Context
	player     *oto.Player
	sampleRate int
	channels   int
	ready      bool
	playing    bool
	onDone     func()
}

// NewOutput creates an audio output.
func NewOutput() *Output {
	return &Output{}
}

// Initialize sets up oto for the given format. Output always goes to the
// system default device; oto offers no device picker.
func (o *Output) Initialize(sampleRate, channels int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ready {
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = sampleRate
	o.channels = channels
	o.ready = true

	logrus.Infof("audio output initialized: %dHz, %d channels", sampleRate, channels)

	return nil
}

// SetOnDone registers a callback invoked whenever playback stops, either
// by running out or by Stop.
func (o *Output) SetOnDone(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onDone = fn
}

// Channels returns the output channel count.
func (o *Output) Channels() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.channels
}

// Play starts playback of an interleaved PCM buffer and returns
// immediately. Any burst already playing is stopped first.
func (o *Output) Play(pcm []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.ready {
		return fmt.Errorf("output not initialized")
	}

	o.stopLocked()

	p := o.otoCtx.NewPlayer(bytes.NewReader(pcm))
	p.Play()
	o.player = p
	o.playing = true

	go o.watch(p)

	return nil
}

// watch waits for a player to drain and flips state back to idle.
func (o *Output) watch(p *oto.Player) {
	for {
		time.Sleep(50 * time.Millisecond)

		o.mu.Lock()
		if o.player != p {
			// Superseded by a newer burst or stopped.
			o.mu.Unlock()
			return
		}
		if !p.IsPlaying() {
			o.stopLocked()
			done := o.onDone
			o.mu.Unlock()
			if done != nil {
				done()
			}
			return
		}
		o.mu.Unlock()
	}
}

// Stop halts playback immediately.
func (o *Output) Stop() {
	o.mu.Lock()
	wasPlaying := o.playing
	o.stopLocked()
	done := o.onDone
	o.mu.Unlock()

	if wasPlaying && done != nil {
		done()
	}
}

func (o *Output) stopLocked() {
	if o.player != nil {
		o.player.Pause()
		if err := o.player.Close(); err != nil {
			logrus.Warnf("failed to close player: %v", err)
		}
		o.player = nil
	}
	o.playing = false
}

// Playing reports whether a burst is currently audible. The offset entry
// control stays disabled while this is false.
func (o *Output) Playing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.playing
}

// Close shuts down the audio output.
func (o *Output) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopLocked()
	if o.otoCtx != nil {
		o.otoCtx.Suspend()
		o.ready = false
	}
}
