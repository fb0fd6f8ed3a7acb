// ABOUTME: In-memory audio source
// ABOUTME: Serves decoded stimulus samples through the signal.Source contract
package stimulus

import "io"

// MemorySource is a mono source backed by a decoded sample buffer.
type MemorySource struct {
	samples []float32
	rate    int
	pos     int
}

// NewMemorySource wraps decoded mono samples at the given sample rate.
func NewMemorySource(samples []float32, rate int) *MemorySource {
	return &MemorySource{samples: samples, rate: rate}
}

func (m *MemorySource) Read(dst []float32) (int, error) {
	if m.pos >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(dst, m.samples[m.pos:])
	m.pos += n
	return n, nil
}

func (m *MemorySource) SampleRate() int { return m.rate }
func (m *MemorySource) Channels() int   { return 1 }
func (m *MemorySource) Close() error    { return nil }

// Len returns the total number of samples.
func (m *MemorySource) Len() int { return len(m.samples) }

// Rewind resets the read position so the stimulus can be replayed.
func (m *MemorySource) Rewind() { m.pos = 0 }
