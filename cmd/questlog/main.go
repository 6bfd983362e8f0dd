// Command questlog runs the quest log: an HTTP server plus a few
// operational subcommands over the same data directory.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"questlog/internal/config"
	"questlog/internal/logging"
)

var (
	flagConfig  string
	flagDataDir string
	flagVerbose bool
	flagQuiet   bool
)

func main() {
	root := &cobra.Command{
		Use:           "questlog",
		Short:         "Personal quest log: recurring templates, generated quests, XP and streaks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config.yaml")
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "override the data directory")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "errors only")

	root.AddCommand(newServeCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newBackupCmd())
	root.AddCommand(newRestoreCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves file, env and flag layers in that order.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	config.ApplyEnv(cfg)
	if flagDataDir != "" {
		cfg.Data.Dir = flagDataDir
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	}
	if flagQuiet {
		level = "error"
	}
	return logging.New(logging.Options{Level: level, File: cfg.Log.File})
}
