// ABOUTME: Calibration stimulus file loading
// ABOUTME: Decodes WAV, MP3, and FLAC files into mono normalized sources
package stimulus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrUnsupportedFormat is returned for stimulus files with an unknown
// extension.
var ErrUnsupportedFormat = errors.New("unsupported stimulus format")

// Open loads a calibration stimulus file and returns it as a mono source.
// Multichannel files are mixed down by averaging channels.
func Open(path string) (*MemorySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open stimulus %s", path)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Warnf("failed to close stimulus %s", path)
		}
	}()

	var src *MemorySource
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		src, err = decodeWAV(f)
	case ".mp3":
		src, err = decodeMP3(f)
	case ".flac":
		src, err = decodeFLAC(f)
	default:
		return nil, pkgerrors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to decode stimulus %s", path)
	}

	logrus.WithFields(logrus.Fields{
		"file":       path,
		"sampleRate": src.SampleRate(),
		"samples":    src.Len(),
	}).Debug("stimulus loaded")

	return src, nil
}
