// Package config loads trimcrop settings from a YAML file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/user/trimcrop-cli/crop"
)

const (
	// Default values
	DefaultLogLevel     = "info"
	DefaultDataDir      = ".trimcrop"
	DefaultPollInterval = 100 * time.Millisecond
	DefaultVolume       = 100
	DefaultNudgeStep    = 10
	DefaultSubmitPoll   = 2 * time.Second

	// Environment variable names
	EnvConfig       = "TRIMCROP_CONFIG"
	EnvMpv          = "TRIMCROP_MPV"
	EnvYtDlp        = "TRIMCROP_YTDLP"
	EnvFfprobe      = "TRIMCROP_FFPROBE"
	EnvSocketDir    = "TRIMCROP_SOCKET_DIR"
	EnvPollInterval = "TRIMCROP_POLL_INTERVAL"
	EnvAspectRatio  = "TRIMCROP_ASPECT_RATIO"
	EnvDataDir      = "TRIMCROP_DATA_DIR"
	EnvLogLevel     = "TRIMCROP_LOG_LEVEL"

	// File names inside the data directory
	DBFilename  = "trimcrop.db"
	LogFilename = "trimcrop.log"
	socketName  = "trimcrop-mpv.sock"
)

// Config represents the complete application configuration
type Config struct {
	Player PlayerConfig `yaml:"player"`
	Editor EditorConfig `yaml:"editor"`
	Paths  PathsConfig  `yaml:"paths"`
	Submit SubmitConfig `yaml:"submit"`
	Log    LogConfig    `yaml:"log"`
}

// PlayerConfig contains the external binaries and playback settings
type PlayerConfig struct {
	MpvBinary     string        `yaml:"mpv_binary"`
	YtDlpBinary   string        `yaml:"ytdlp_binary"`
	FfprobeBinary string        `yaml:"ffprobe_binary"`
	SocketDir     string        `yaml:"socket_dir"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	Volume        int           `yaml:"volume"`
}

// EditorConfig contains defaults for a new edit session
type EditorConfig struct {
	AspectRatio string `yaml:"aspect_ratio"`
	// NudgeStep is how many source pixels an arrow key moves the crop.
	NudgeStep int `yaml:"nudge_step"`
}

// PathsConfig contains where trimcrop keeps its state
type PathsConfig struct {
	DataDir string `yaml:"data_dir"`
}

// SubmitConfig describes the downstream job command. Each pending submission is
// written to the command's stdin as JSON.
type SubmitConfig struct {
	Command      []string      `yaml:"command"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Player: PlayerConfig{
			MpvBinary:     "mpv",
			YtDlpBinary:   "yt-dlp",
			FfprobeBinary: "ffprobe",
			SocketDir:     os.TempDir(),
			PollInterval:  DefaultPollInterval,
			Volume:        DefaultVolume,
		},
		Editor: EditorConfig{
			AspectRatio: string(crop.Original),
			NudgeStep:   DefaultNudgeStep,
		},
		Paths:  PathsConfig{DataDir: defaultDataDir()},
		Submit: SubmitConfig{PollInterval: DefaultSubmitPoll},
		Log:    LogConfig{Level: DefaultLogLevel},
	}
}

// DefaultPath returns ~/.config/trimcrop/config.yaml, or TRIMCROP_CONFIG when set.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(DefaultDataDir, "config.yaml")
	}
	return filepath.Join(dir, "trimcrop", "config.yaml")
}

// EnvFileName is read from the config file's directory. Its TRIMCROP_* entries apply
// like environment variables, which take precedence over it.
const EnvFileName = ".env"

// Load reads the YAML file at path over the defaults and then applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	lookup, err := envLookup(filepath.Join(filepath.Dir(path), EnvFileName))
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envLookup returns a getter over the process environment falling back to the dotenv
// file at path. The file is optional and never modifies the process environment.
func envLookup(path string) (func(string) string, error) {
	file, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return func(name string) string {
		if v := os.Getenv(name); v != "" {
			return v
		}
		return file[name]
	}, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	stringVars := map[string]*string{
		EnvMpv:         &c.Player.MpvBinary,
		EnvYtDlp:       &c.Player.YtDlpBinary,
		EnvFfprobe:     &c.Player.FfprobeBinary,
		EnvSocketDir:   &c.Player.SocketDir,
		EnvAspectRatio: &c.Editor.AspectRatio,
		EnvDataDir:     &c.Paths.DataDir,
		EnvLogLevel:    &c.Log.Level,
	}
	for name, dst := range stringVars {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}

	if v := getenv(EnvPollInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			// Bare numbers are milliseconds.
			ms, convErr := strconv.Atoi(v)
			if convErr != nil {
				return fmt.Errorf("invalid %s: %w", EnvPollInterval, err)
			}
			d = time.Duration(ms) * time.Millisecond
		}
		c.Player.PollInterval = d
	}
	return nil
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	if c.Player.PollInterval <= 0 {
		return fmt.Errorf("invalid poll_interval %s: must be positive", c.Player.PollInterval)
	}
	if c.Player.Volume < 0 || c.Player.Volume > 100 {
		return fmt.Errorf("invalid volume %d: must be between 0 and 100", c.Player.Volume)
	}
	if _, err := crop.ParseAspectRatio(c.Editor.AspectRatio); err != nil {
		return fmt.Errorf("invalid aspect_ratio: %w", err)
	}
	if c.Editor.NudgeStep <= 0 {
		return fmt.Errorf("invalid nudge_step %d: must be positive", c.Editor.NudgeStep)
	}
	if c.Submit.PollInterval <= 0 {
		return fmt.Errorf("invalid submit poll_interval %s: must be positive", c.Submit.PollInterval)
	}
	return nil
}

// AspectRatio returns the default aspect ratio for new sessions.
func (c *Config) AspectRatio() crop.AspectRatio {
	r, err := crop.ParseAspectRatio(c.Editor.AspectRatio)
	if err != nil {
		return crop.Original
	}
	return r
}

// DBPath returns the full path to the SQLite database file
func (c *Config) DBPath() string {
	return filepath.Join(c.Paths.DataDir, DBFilename)
}

// LogPath returns the log file path. Logs go to a file because the terminal belongs
// to the editor.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.DataDir, LogFilename)
}

// SocketPath returns the mpv IPC socket path, the editor's playback mount point.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Player.SocketDir, socketName)
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
