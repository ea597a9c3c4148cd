package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/trimcrop-cli/crop"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Player.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", cfg.Player.PollInterval, DefaultPollInterval)
	}
	if cfg.AspectRatio() != crop.Original {
		t.Errorf("AspectRatio = %q, want original", cfg.AspectRatio())
	}
	if cfg.Player.MpvBinary != "mpv" {
		t.Errorf("MpvBinary = %q", cfg.Player.MpvBinary)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `player:
  mpv_binary: /opt/mpv/bin/mpv
  poll_interval: 250ms
editor:
  aspect_ratio: "9:16"
paths:
  data_dir: /var/lib/trimcrop
submit:
  command: [render-job, --queue, clips]
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Player.MpvBinary != "/opt/mpv/bin/mpv" {
		t.Errorf("MpvBinary = %q", cfg.Player.MpvBinary)
	}
	if cfg.Player.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %v, want 250ms", cfg.Player.PollInterval)
	}
	if cfg.AspectRatio() != crop.Portrait {
		t.Errorf("AspectRatio = %q, want 9:16", cfg.AspectRatio())
	}
	// Unset keys keep their defaults.
	if cfg.Player.YtDlpBinary != "yt-dlp" || cfg.Editor.NudgeStep != DefaultNudgeStep {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if len(cfg.Submit.Command) != 3 || cfg.Submit.Command[0] != "render-job" {
		t.Errorf("Submit.Command = %v", cfg.Submit.Command)
	}
	if cfg.Submit.PollInterval != DefaultSubmitPoll {
		t.Errorf("Submit.PollInterval = %v", cfg.Submit.PollInterval)
	}
	if cfg.DBPath() != "/var/lib/trimcrop/trimcrop.db" {
		t.Errorf("DBPath = %q", cfg.DBPath())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvPollInterval, "40")
	t.Setenv(EnvAspectRatio, "1:1")
	t.Setenv(EnvSocketDir, "/run/trimcrop")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Player.PollInterval != 40*time.Millisecond {
		t.Errorf("PollInterval = %v, want 40ms", cfg.Player.PollInterval)
	}
	if cfg.AspectRatio() != crop.Square {
		t.Errorf("AspectRatio = %q, want 1:1", cfg.AspectRatio())
	}
	if cfg.SocketPath() != "/run/trimcrop/trimcrop-mpv.sock" {
		t.Errorf("SocketPath = %q", cfg.SocketPath())
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "# local overrides\nTRIMCROP_ASPECT_RATIO=4:5\nTRIMCROP_MPV=\"/opt/mpv/bin/mpv\"\n"
	if err := os.WriteFile(filepath.Join(dir, EnvFileName), []byte(env), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvMpv, "/usr/local/bin/mpv")

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AspectRatio() != crop.Vertical {
		t.Errorf("AspectRatio = %q, want 4:5 from .env", cfg.AspectRatio())
	}
	if cfg.Player.MpvBinary != "/usr/local/bin/mpv" {
		t.Errorf("MpvBinary = %q, environment should win over .env", cfg.Player.MpvBinary)
	}
	if _, ok := os.LookupEnv(EnvAspectRatio); ok {
		t.Error(".env leaked into the process environment")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     string
		wantErr string
	}{
		{name: "bad ratio", yaml: "editor:\n  aspect_ratio: wide\n", wantErr: "aspect_ratio"},
		{name: "zero poll", yaml: "player:\n  poll_interval: 0s\n", wantErr: "poll_interval"},
		{name: "volume", yaml: "player:\n  volume: 150\n", wantErr: "volume"},
		{name: "bad yaml", yaml: "player: [", wantErr: "parse"},
		{name: "bad env poll", env: "soon", wantErr: EnvPollInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if tt.env != "" {
				t.Setenv(EnvPollInterval, tt.env)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Editor.AspectRatio = "4:5"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.AspectRatio() != crop.Vertical {
		t.Errorf("AspectRatio = %q, want 4:5", loaded.AspectRatio())
	}
}
