package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/trimcrop-cli/config"
	"github.com/user/trimcrop-cli/crop"
	"github.com/user/trimcrop-cli/db"
	"github.com/user/trimcrop-cli/deps"
	"github.com/user/trimcrop-cli/editor"
	"github.com/user/trimcrop-cli/logging"
	"github.com/user/trimcrop-cli/media"
	"github.com/user/trimcrop-cli/playback"
	"github.com/user/trimcrop-cli/trim"
	"github.com/user/trimcrop-cli/tui"
	"github.com/user/trimcrop-cli/tui/forms"
)

const probeTimeout = 30 * time.Second

var (
	editRatio       string
	editYes         bool
	editNoSave      bool
	editWatchConfig bool
)

var editCmd = &cobra.Command{
	Use:   "edit <video-file|url>",
	Short: "Trim and crop a video interactively",
	Long: `Open a local video file or a stream URL in the editor.

The video plays in mpv while the terminal shows the timeline, the crop frame and
the selection. Press enter (or :done) to finalize, then confirm to queue the
selection as a pending submission. The finalized settings are printed as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVarP(&editRatio, "ratio", "r", "", "initial aspect ratio (original, 9:16, 16:9, 1:1, 4:5)")
	editCmd.Flags().BoolVarP(&editYes, "yes", "y", false, "save the finalized settings without asking")
	editCmd.Flags().BoolVar(&editNoSave, "no-save", false, "only print the finalized settings")
	editCmd.Flags().BoolVar(&editWatchConfig, "watch-config", true, "apply config file changes while editing")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	e, err := openEnv("edit")
	if err != nil {
		return err
	}
	defer e.Close()
	cfg := e.cfg

	target, err := resolveTarget(args[0])
	if err != nil {
		return err
	}

	ratio := cfg.AspectRatio()
	if editRatio != "" {
		if ratio, err = crop.ParseAspectRatio(editRatio); err != nil {
			return err
		}
	}

	if err := deps.CheckBinary(cfg.Player.MpvBinary, deps.MpvInstallURL); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	fmt.Printf("Probing %s...\n", displayName(target))
	meta, err := probe(ctx, cfg, target)
	if err != nil {
		return err
	}
	logger := logging.WithVideo(e.logger, meta.Identity())
	logger.Info("editing", "duration", meta.Duration, "width", meta.Width, "height", meta.Height)

	bounds := trim.Default(meta.Duration)
	factory := &playback.MpvFactory{
		Binary:       cfg.Player.MpvBinary,
		PollInterval: cfg.Player.PollInterval,
		Helper:       playback.SharedStreamHelper(cfg.Player.YtDlpBinary),
		Logger:       logging.WithComponent(logger, "playback"),
	}
	ctrl := playback.NewController(bounds, factory, cfg.SocketPath(), playback.WithLogger(logger))
	defer ctrl.Close()

	session := editor.NewSession(meta, bounds, ctrl, ratio)
	defer session.Close()

	ctrl.Mount(ctx, meta)
	if err := ctrl.SetVolume(cfg.Player.Volume); err != nil {
		logger.Warn("set volume", "error", err)
	}

	opts := tui.Options{
		NudgeStep: float64(cfg.Editor.NudgeStep),
		Logger:    logging.WithComponent(logger, "tui"),
	}
	if editWatchConfig {
		opts.NudgeUpdates = watchNudgeStep(ctx, logger)
	}

	settings, ok, err := tui.Run(session, ctrl, opts)
	ctrl.Close()
	if err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}
	if !ok {
		fmt.Println("No selection made.")
		return nil
	}

	save := editYes
	if !editNoSave && !editYes {
		save = true
		if err := forms.NewConfirmSubmitForm(settings, &save).Run(); err != nil {
			return fmt.Errorf("prompt cancelled: %w", err)
		}
	}
	if editNoSave {
		save = false
	}

	if save {
		id, err := db.InsertSubmission(e.db, meta, session.AspectRatio(), settings)
		if err != nil {
			return err
		}
		logger.Info("queued submission", "id", id)
		fmt.Fprintf(os.Stderr, "Queued submission #%d\n", id)
	}

	out, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// resolveTarget turns a local path into an absolute, existing file. URLs pass through.
func resolveTarget(target string) (string, error) {
	if media.DetectSource(target) == media.SourceEmbedded {
		return target, nil
	}

	absPath, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("video file not found: %s", absPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to access video file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a video file: %s", absPath)
	}
	return absPath, nil
}

func displayName(target string) string {
	if media.DetectSource(target) == media.SourceEmbedded {
		return target
	}
	return filepath.Base(target)
}

func probe(ctx context.Context, cfg *config.Config, target string) (media.VideoMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	prober := &media.Prober{FFprobePath: cfg.Player.FfprobeBinary, YtDlpPath: cfg.Player.YtDlpBinary}
	meta, err := prober.Probe(ctx, target)
	if err != nil {
		return media.VideoMetadata{}, fmt.Errorf("failed to read video metadata: %w", err)
	}
	return meta, nil
}

// watchNudgeStep follows the config file and reports nudge step changes. It returns
// nil when the file cannot be watched.
func watchNudgeStep(ctx context.Context, logger *slog.Logger) <-chan float64 {
	w, err := config.NewWatcher(resolvedConfigPath(), logging.WithComponent(logger, "config"))
	if err != nil {
		logger.Warn("config changes will not apply until restart", "error", err)
		return nil
	}
	updates := make(chan float64, 1)
	go w.Run(ctx, func(c *config.Config) {
		select {
		case updates <- float64(c.Editor.NudgeStep):
		default:
		}
	})
	return updates
}
