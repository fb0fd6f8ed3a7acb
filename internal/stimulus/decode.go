// ABOUTME: Format decoders for stimulus files
// ABOUTME: Converts WAV, MP3, and FLAC audio to normalized mono samples
package stimulus

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"
)

func decodeWAV(f *os.File) (*MemorySource, error) {
	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file")
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav decode error: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("wav file has no channels")
	}

	scale := 1.0 / float64(int64(1)<<(d.BitDepth-1))
	frames := len(buf.Data) / channels

	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch]) * scale
		}
		samples[i] = float32(sum / float64(channels))
	}

	return NewMemorySource(samples, buf.Format.SampleRate), nil
}

func decodeMP3(f *os.File) (*MemorySource, error) {
	d, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	// go-mp3 always emits 16-bit little-endian stereo.
	frames := len(pcm) / 4
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		left := int16(binary.LittleEndian.Uint16(pcm[i*4:]))
		right := int16(binary.LittleEndian.Uint16(pcm[i*4+2:]))
		samples[i] = float32((float64(left) + float64(right)) / 2 / 32768.0)
	}

	return NewMemorySource(samples, d.SampleRate()), nil
}

func decodeFLAC(f *os.File) (*MemorySource, error) {
	stream, err := flac.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse flac: %w", err)
	}

	channels := int(stream.Info.NChannels)
	if channels < 1 {
		return nil, fmt.Errorf("flac file has no channels")
	}
	scale := 1.0 / float64(int64(1)<<(stream.Info.BitsPerSample-1))

	var samples []float32
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("flac decode error: %w", err)
		}

		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			var sum float64
			for ch := 0; ch < channels; ch++ {
				sum += float64(frame.Subframes[ch].Samples[i]) * scale
			}
			samples = append(samples, float32(sum/float64(channels)))
		}
	}

	return NewMemorySource(samples, int(stream.Info.SampleRate)), nil
}
