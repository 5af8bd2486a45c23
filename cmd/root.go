// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"animeku/internal/config"
	"animeku/internal/log"
	"animeku/internal/ui"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagSource   string
	flagPlayer   string
	flagJSON     bool
	flagDebug    bool
	flagNoThumb  bool
	flagDownload string
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "animeku [title]",
	Short: "Find and stream anime and movies from the terminal",
	Long: `animeku searches several unrelated sources for a title, lets you pick
an episode and resolves its mirrors into a playable stream for mpv, vlc,
iina, celluloid or the system opener.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: loadConfig,
	RunE:              searchRun,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err == nil || errors.Is(err, ui.ErrCancelled) {
		return
	}
	log.Error(err)
	fmt.Fprintln(os.Stderr, ui.Error(report(err)))
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagSource, "source", "s", "", "Source: anime | movie | tenflix (asked when unset)")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Media player: mpv | vlc | iina | celluloid | open")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Print the chosen stream as JSON instead of playing it")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&flagNoThumb, "no-thumb", false, "Do not draw poster thumbnails")
	rootCmd.PersistentFlags().StringVarP(&flagDownload, "download", "d", "", "Save the chosen stream to this directory with ffmpeg instead of playing it")

	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagSource != "" {
		cfg.Source = flagSource
	}
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagNoThumb {
		cfg.Thumbnails = false
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Setup(cfg.Debug, os.Stderr)
	log.Debugf("config: source=%s player=%s api=%s tenflix=%s", cfg.Source, cfg.Player, cfg.APIBase, cfg.TenflixBase)

	return nil
}
