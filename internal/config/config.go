// ABOUTME: Persisted tool settings
// ABOUTME: JSON file config with defaults and routing string parsing
package config

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrInvalidRouting is returned when a routing string cannot be parsed
// into channel numbers.
var ErrInvalidRouting = pkgerrors.New("invalid channel routing")

// Settings holds the persisted tool configuration.
type Settings struct {
	// Session
	NumSpeakers int `json:"numSpeakers"`

	// Playback
	Duration float64 `json:"duration"` // seconds
	LevelDB  float64 `json:"levelDB"`  // dB FS

	// Audio device
	DeviceID       int    `json:"deviceID"`
	ChannelRouting string `json:"channelRouting"` // space-separated 1-based channels

	// Calibration
	CalFile    string  `json:"calFile"`
	CalLevelDB float64 `json:"calLevelDB"`
	SLMReading float64 `json:"slmReading"`
	SLMOffset  float64 `json:"slmOffset"`

	// Presentation levels
	DesiredLevelDB  float64 `json:"desiredLevelDB"`
	AdjustedLevelDB float64 `json:"adjustedLevelDB"`
}

// Default returns the settings used when no config file exists yet.
func Default() Settings {
	return Settings{
		NumSpeakers:     4,
		Duration:        3.0,
		LevelDB:         -30.0,
		DeviceID:        -1, // system default output
		ChannelRouting:  "1",
		CalFile:         "cal_stim.wav",
		CalLevelDB:      -30.0,
		SLMReading:      70.0,
		SLMOffset:       100.0,
		DesiredLevelDB:  75.0,
		AdjustedLevelDB: -25.0,
	}
}

// File binds Settings to a JSON file on disk.
type File struct {
	Settings
	filepath string
}

// NewFile loads settings from configPath, falling back to defaults when
// the file is missing or empty.
func NewFile(configPath string) (*File, error) {
	f := &File{
		Settings: Default(),
		filepath: configPath,
	}
	if err := f.Load(); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads the config file. A missing or empty file leaves the defaults
// in place so first runs work without setup.
func (f *File) Load() error {
	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open config %s", f.filepath)
	}
	defer func(fp *os.File) {
		if err := fp.Close(); err != nil {
			logrus.Warnf("failed to close config %s", f.filepath)
		}
	}(fp)

	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read config %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		return nil
	}

	// Unmarshal over the defaults so absent keys keep their default values.
	s := Default()
	if err := json.Unmarshal(b, &s); err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config %s", f.filepath)
	}
	f.Settings = s

	return nil
}

// Save writes the current settings to the config file.
func (f *File) Save() error {
	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open config %s", f.filepath)
	}
	defer func(fp *os.File) {
		if err := fp.Close(); err != nil {
			logrus.Warnf("failed to close config %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f.Settings); err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config %s", f.filepath)
	}

	return nil
}

// LogrusFields returns the settings as structured log fields.
func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"numSpeakers":    f.NumSpeakers,
		"duration":       f.Duration,
		"levelDB":        f.LevelDB,
		"deviceID":       f.DeviceID,
		"channelRouting": f.ChannelRouting,
		"calFile":        f.CalFile,
		"calLevelDB":     f.CalLevelDB,
		"slmOffset":      f.SLMOffset,
	}
}

// ParseRouting converts a space-separated list of 1-based channel numbers
// ("1 3 4") into ints. Bounds against the device channel count are checked
// at render time, where the output format is known.
func ParseRouting(routing string) ([]int, error) {
	fields := strings.Fields(routing)
	if len(fields) == 0 {
		return nil, pkgerrors.Wrap(ErrInvalidRouting, "routing is empty")
	}

	channels := make([]int, 0, len(fields))
	for _, field := range fields {
		ch, err := strconv.Atoi(field)
		if err != nil {
			return nil, pkgerrors.Wrapf(ErrInvalidRouting, "bad channel %q", field)
		}
		if ch < 1 {
			return nil, pkgerrors.Wrapf(ErrInvalidRouting, "channel %d is not positive", ch)
		}
		channels = append(channels, ch)
	}

	return channels, nil
}
