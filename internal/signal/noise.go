// ABOUTME: White Gaussian noise generator for speaker balancing
// ABOUTME: Produces a unit-RMS mono noise signal at the default sample rate
package signal

import (
	"math/rand"
	"sync"
)

// NoiseSource generates white Gaussian noise with unit RMS. The playback
// gain (dB FS) is applied when the burst is rendered, matching the level
// the operator dialed in.
type NoiseSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewNoise creates a noise source. A fixed seed yields a repeatable signal,
// which the balancing workflow relies on: every speaker hears the same
// stimulus.
func NewNoise(seed int64) *NoiseSource {
	return &NoiseSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (n *NoiseSource) Read(samples []float32) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i := range samples {
		samples[i] = float32(n.rng.NormFloat64())
	}

	return len(samples), nil
}

func (n *NoiseSource) SampleRate() int { return DefaultSampleRate }
func (n *NoiseSource) Channels() int   { return 1 }
func (n *NoiseSource) Close() error    { return nil }
