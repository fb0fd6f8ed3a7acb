// ABOUTME: Balancing session state
// ABOUTME: Tracks per-speaker SLM readings and offsets against the reference speaker
package session

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoReference is returned when an offset is requested before the
	// reference reading (speaker 1) has been recorded.
	ErrNoReference = errors.New("no reference reading: balance speaker 1 first")

	// ErrUnknownChannel is returned for channels outside the session.
	ErrUnknownChannel = errors.New("unknown channel")
)

// Speaker holds one output channel's measurement state.
type Speaker struct {
	Channel    int     // 0-based channel index; displayed 1-based
	SLMLevel   float64 // last SLM reading in dB, valid when Calibrated
	Offset     float64 // dB offset against the reference, valid when Calibrated
	Calibrated bool
}

// Session holds the reference reading and per-speaker offsets for one run.
// Offsets are only meaningful against the reference captured in the same
// session; nothing here guards against mixing readings across sessions.
type Session struct {
	ID       string
	speakers []Speaker
	refLevel float64
	refSet   bool
}

// New creates a session with numSpeakers uncalibrated speakers.
func New(numSpeakers int) *Session {
	s := &Session{
		ID:       uuid.New().String(),
		speakers: make([]Speaker, 0, numSpeakers),
	}
	for ch := 0; ch < numSpeakers; ch++ {
		s.speakers = append(s.speakers, Speaker{Channel: ch})
	}

	logrus.WithFields(logrus.Fields{
		"session":  s.ID,
		"speakers": numSpeakers,
	}).Debug("session created")

	return s
}

// NumSpeakers returns the number of speakers in the session.
func (s *Session) NumSpeakers() int {
	return len(s.speakers)
}

// HasReference reports whether the reference reading has been recorded.
func (s *Session) HasReference() bool {
	return s.refSet
}

// ReferenceLevel returns the reference SLM reading, if recorded.
func (s *Session) ReferenceLevel() (float64, bool) {
	return s.refLevel, s.refSet
}

// RecordReading stores an SLM reading for a channel and computes its offset
// against the reference. Channel 0 establishes the reference level.
// The offset is ref - reading, rounded to one decimal place.
func (s *Session) RecordReading(channel int, slmLevel float64) (float64, error) {
	if channel < 0 || channel >= len(s.speakers) {
		return 0, ErrUnknownChannel
	}

	if channel == 0 {
		s.refLevel = slmLevel
		s.refSet = true
	}

	if !s.refSet {
		return 0, ErrNoReference
	}

	offset := round1(s.refLevel - slmLevel)

	s.speakers[channel].SLMLevel = slmLevel
	s.speakers[channel].Offset = offset
	s.speakers[channel].Calibrated = true

	logrus.WithFields(logrus.Fields{
		"session": s.ID,
		"channel": channel,
		"reading": slmLevel,
		"offset":  offset,
	}).Debug("offset recorded")

	return offset, nil
}

// MissingOffsets returns the channels that have not been calibrated yet.
func (s *Session) MissingOffsets() []int {
	missing := []int{}
	for _, sp := range s.speakers {
		if !sp.Calibrated {
			missing = append(missing, sp.Channel)
			logrus.Warnf("missing offset for speaker %d", sp.Channel+1)
		}
	}
	return missing
}

// Snapshot returns a copy of the speaker list.
func (s *Session) Snapshot() []Speaker {
	out := make([]Speaker, len(s.speakers))
	copy(out, s.speakers)
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
