// ABOUTME: Audio source abstraction for calibration stimuli
// ABOUTME: Sources produce mono float32 samples normalized to full scale
package signal

// DefaultSampleRate is the playback sample rate for generated stimuli.
const DefaultSampleRate = 48000

// Source produces mono float32 samples at unit scale: file stimuli are
// normalized to [-1, 1], generated noise to unit RMS (individual samples
// may exceed 1). The burst renderer applies the presentation gain and
// rejects anything that would clip.
// Read returns the number of samples written and io.EOF when exhausted.
type Source interface {
	Read(samples []float32) (int, error)
	SampleRate() int
	Channels() int
	Close() error
}
