// ABOUTME: Tests for the audio output wrapper
// ABOUTME: Covers the uninitialized and idle states without touching a device
package player

import "testing"

func TestOutputPlayBeforeInitialize(t *testing.T) {
	o := NewOutput()

	if err := o.Play(make([]byte, 4)); err == nil {
		t.Error("expected an error when playing before Initialize")
	}
}

func TestOutputInitiallyIdle(t *testing.T) {
	o := NewOutput()

	if o.Playing() {
		t.Error("a fresh output should not be playing")
	}

	if o.Channels() != 0 {
		t.Errorf("expected 0 channels before Initialize, got %d", o.Channels())
	}
}

func TestOutputStopWhenIdle(t *testing.T) {
	o := NewOutput()

	called := false
	o.SetOnDone(func() { called = true })

	// Stop on an idle output is a no-op and must not fire the callback.
	o.Stop()

	if called {
		t.Error("OnDone fired for a stop with nothing playing")
	}

	if o.Playing() {
		t.Error("output should stay idle after Stop")
	}
}

func TestOutputCloseWhenIdle(t *testing.T) {
	o := NewOutput()
	o.Close()

	if o.Playing() {
		t.Error("output should be idle after Close")
	}
}
