// ABOUTME: Headless sweep mode
// ABOUTME: Steps the burst through every speaker without the TUI
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hearlab/balance-go/internal/config"
	"github.com/hearlab/balance-go/internal/player"
	"github.com/hearlab/balance-go/internal/signal"
)

// RunSweep plays the noise burst on each speaker in turn and exits. Useful
// for checking wiring and rough levels without the interactive screen.
func RunSweep(ctx context.Context, cfg *config.File) error {
	output := player.NewOutput()
	if err := output.Initialize(signal.DefaultSampleRate, cfg.NumSpeakers); err != nil {
		return fmt.Errorf("failed to initialize audio output: %w", err)
	}
	defer output.Close()

	logrus.WithFields(cfg.LogrusFields()).Info("headless sweep started")

	for ch := 0; ch < cfg.NumSpeakers; ch++ {
		burst := player.Burst{
			Source:   signal.NewNoise(noiseSeed),
			Duration: time.Duration(cfg.Duration * float64(time.Second)),
			LevelDB:  cfg.LevelDB,
			Routing:  []int{ch + 1},
		}

		pcm, err := player.RenderBurst(burst, cfg.NumSpeakers)
		if err != nil {
			return fmt.Errorf("failed to render burst for speaker %d: %w", ch+1, err)
		}

		logrus.Infof("speaker %d/%d", ch+1, cfg.NumSpeakers)
		if err := output.Play(pcm); err != nil {
			return fmt.Errorf("playback failed on speaker %d: %w", ch+1, err)
		}

		select {
		case <-time.After(time.Duration(cfg.Duration*float64(time.Second)) + 250*time.Millisecond):
		case <-ctx.Done():
			output.Stop()
			return ctx.Err()
		}
	}

	logrus.Info("headless sweep finished")
	return nil
}
