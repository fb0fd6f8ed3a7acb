// ABOUTME: Entry point for the speaker balancer
// ABOUTME: Builds the command tree and starts the TUI application
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hearlab/balance-go/internal/app"
	"github.com/hearlab/balance-go/internal/config"
	"github.com/hearlab/balance-go/internal/version"
)

var (
	configPath = "speaker_balancer.json"
	logFile    = "speaker_balancer.log"
	logLevel   = "info"
)

// setupLogger points logrus at the log file. The TUI owns the terminal, so
// logs never go to stdout while the screen is up.
func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	f, err := os.OpenFile(logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("error opening log file: %v", err)
	}
	logrus.SetOutput(f)

	return nil
}

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "balance",
		Short:        "Balance lab speakers with a sound level meter",
		Long:         version.Product + " plays a calibration noise burst through each speaker and computes per-speaker offsets from SLM readings.",
		Version:      version.Version,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := setupLogger(); err != nil {
				return err
			}

			cfg, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			return app.New(cfg).Run()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", configPath, "Settings file path")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", logFile, "Log file path")
	cmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", logLevel, "Log level (trace, debug, info, warn, error)")

	cmd.AddCommand(newSweepCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Product, version.Version)
		},
	}
}

func newSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Play the noise burst on every speaker in turn, then exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logrus.SetLevel(logrus.InfoLevel)
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

			cfg, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			return app.RunSweep(cmd.Context(), cfg)
		},
	}
}

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
