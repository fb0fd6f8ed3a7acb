// ABOUTME: Noise burst rendering
// ABOUTME: Applies gain and channel routing to produce interleaved PCM
package player

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"time"

	"github.com/hearlab/balance-go/internal/signal"
)

var (
	// ErrClipping is returned when the requested level would clip the
	// rendered waveform. Playback is aborted before it starts.
	ErrClipping = errors.New("level too high: waveform clips")

	// ErrRoutingOutOfRange is returned when a routed channel does not
	// exist on the output.
	ErrRoutingOutOfRange = errors.New("routing channel outside output channel count")
)

// Burst is a fixed-duration presentation of a source at a level (dB FS),
// routed to one or more output channels.
type Burst struct {
	Source   signal.Source
	Duration time.Duration
	LevelDB  float64
	Routing  []int // 1-based output channel numbers
}

// RenderBurst produces the interleaved 16-bit little-endian PCM for a burst
// on an output with outChannels channels. Samples land on the routed
// channels; all other channels stay silent. The whole waveform is rendered
// up front so clipping is caught before anything reaches the device.
func RenderBurst(b Burst, outChannels int) ([]byte, error) {
	if len(b.Routing) == 0 {
		return nil, ErrRoutingOutOfRange
	}
	for _, ch := range b.Routing {
		if ch < 1 || ch > outChannels {
			return nil, ErrRoutingOutOfRange
		}
	}

	frames := int(float64(b.Source.SampleRate()) * b.Duration.Seconds())
	mono := make([]float32, frames)

	total := 0
	for total < frames {
		n, err := b.Source.Read(mono[total:])
		total += n
		if err == io.EOF {
			// File stimuli may be shorter than the requested duration.
			mono = mono[:total]
			frames = total
			break
		}
		if err != nil {
			return nil, err
		}
	}

	gain := math.Pow(10, b.LevelDB/20)
	for i, v := range mono {
		scaled := float64(v) * gain
		if scaled > 1.0 || scaled < -1.0 {
			return nil, ErrClipping
		}
		mono[i] = float32(scaled)
	}

	frameBytes := outChannels * 2
	out := make([]byte, frames*frameBytes)
	for i, v := range mono {
		pcm := uint16(int16(float64(v) * 32767.0))
		for _, ch := range b.Routing {
			binary.LittleEndian.PutUint16(out[i*frameBytes+(ch-1)*2:], pcm)
		}
	}

	return out, nil
}
