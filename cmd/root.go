package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/trimcrop-cli/config"
	"github.com/user/trimcrop-cli/db"
	"github.com/user/trimcrop-cli/deps"
	"github.com/user/trimcrop-cli/logging"
)

// configPath is the --config flag; config.DefaultPath() when empty.
var configPath string

var rootCmd = &cobra.Command{
	Use:   "trimcrop",
	Short: "Select a time range and crop from a video for a downstream job",
	Long: `trimcrop is a terminal editor for choosing the part of a video to keep.

Open a local file or a hosted stream URL, drag the trim handles on the timeline,
frame the picture with an aspect ratio crop, then finalize. The selection is queued
as a submission for the configured job command.

Features:
  - Trim with mouse or keys, playback confined to the selected range
  - Aspect ratio crops (9:16, 16:9, 1:1, 4:5) positioned by dragging
  - Local files via mpv, stream URLs via mpv and yt-dlp
  - Submission queue with reports (json, csv, md, html, pdf)`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trimcrop version %s (commit %s, built %s)\n", config.Version, config.GitCommit, config.BuildTime)
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  `Check that the external programs trimcrop drives (mpv, ffprobe, yt-dlp) are installed and available.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Checking dependencies...")
		fmt.Println()

		missing := map[string]string{}
		for _, err := range deps.CheckAll() {
			var depErr *deps.DependencyError
			if errors.As(err, &depErr) {
				missing[depErr.Name] = depErr.InstallURL
			}
		}

		for _, name := range []string{"mpv", "ffprobe", "yt-dlp"} {
			if url, ok := missing[name]; ok {
				fmt.Printf("✗ %s: NOT FOUND\n", name)
				fmt.Printf("  Install from: %s\n", url)
			} else {
				fmt.Printf("✓ %s: OK\n", name)
			}
		}

		fmt.Println()
		checkStorage()

		fmt.Println()
		if len(missing) == 0 {
			fmt.Println("All dependencies are installed!")
			return
		}
		if _, ok := missing["yt-dlp"]; ok && len(missing) == 1 {
			fmt.Println("yt-dlp is only needed for stream URLs; local files will work.")
			return
		}
		fmt.Println("Some dependencies are missing. Please install them to use all features.")
		os.Exit(1)
	},
}

// checkStorage reports the config file and database state. Problems here are printed
// but do not fail doctor; edit and submissions create what is missing.
func checkStorage() {
	path := resolvedConfigPath()
	cfg, err := config.Load(path)
	switch {
	case err != nil:
		fmt.Printf("✗ config: %v\n", err)
		return
	case fileExists(path):
		fmt.Printf("✓ config: %s\n", path)
	default:
		fmt.Printf("- config: %s not found, using defaults (run 'trimcrop setup')\n", path)
	}

	applied, latest, err := db.Inspect(cfg.DBPath())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Printf("- database: %s will be created on first use\n", cfg.DBPath())
	case err != nil:
		fmt.Printf("✗ database: %v\n", err)
	case applied < latest:
		fmt.Printf("- database: schema %d, will migrate to %d on next use\n", applied, latest)
	default:
		fmt.Printf("✓ database: %s (schema %d)\n", cfg.DBPath(), applied)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $TRIMCROP_CONFIG or ~/.config/trimcrop/config.yaml)")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(doctorCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolvedConfigPath returns the config file in effect.
func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

// env is what every data command needs: config, a file logger and the database.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	closer []io.Closer
}

// openEnv loads config, opens the log file and the database.
func openEnv(component string) (*env, error) {
	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		return nil, err
	}
	logger, logFile, err := logging.OpenFile(cfg.LogPath(), cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: logging.WithComponent(logger, component), closer: []io.Closer{logFile}}

	database, err := db.Open(cfg.DBPath())
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	e.db = database
	e.closer = append(e.closer, database)
	return e, nil
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() {
	for i := len(e.closer) - 1; i >= 0; i-- {
		e.closer[i].Close()
	}
}
