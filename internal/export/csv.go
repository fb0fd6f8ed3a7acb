// ABOUTME: CSV export of speaker offsets
// ABOUTME: Writes one row per calibrated speaker with a timestamped filename
package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hearlab/balance-go/internal/session"
)

// Write emits one CSV row per calibrated speaker: speaker number (1-based)
// and its offset in dB with one decimal. Uncalibrated speakers are skipped,
// so the row count always equals the number of computed offsets.
func Write(w io.Writer, speakers []session.Speaker) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"speaker", "offset"}); err != nil {
		return pkgerrors.Wrap(err, "failed to write CSV header")
	}

	for _, sp := range speakers {
		if !sp.Calibrated {
			continue
		}
		row := []string{
			strconv.Itoa(sp.Channel + 1),
			strconv.FormatFloat(sp.Offset, 'f', 1, 64),
		}
		if err := cw.Write(row); err != nil {
			return pkgerrors.Wrapf(err, "failed to write row for speaker %d", sp.Channel+1)
		}
	}

	cw.Flush()
	return pkgerrors.Wrap(cw.Error(), "failed to flush CSV")
}

// Save writes the offsets to path, creating or truncating the file.
func Save(path string, speakers []session.Speaker) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Warnf("failed to close %s", path)
		}
	}()

	if err := Write(f, speakers); err != nil {
		return err
	}

	logrus.WithField("file", path).Info("offsets exported")
	return nil
}

// Filename returns the timestamped default export name,
// e.g. speaker_offsets_2024_Apr_12_0930.csv.
func Filename(t time.Time) string {
	return "speaker_offsets_" + t.Format("2006_Jan_02_1504") + ".csv"
}
