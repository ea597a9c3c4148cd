package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
	"github.com/user/trimcrop-cli/config"
	"github.com/user/trimcrop-cli/crop"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and writes config.yaml.

The file holds the mpv, ffprobe and yt-dlp binaries, the default aspect ratio,
where trimcrop keeps its database and logs, and the command that receives
finalized submissions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunSetupWithPrompter(DefaultPrompter, resolvedConfigPath())
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm(configPath+" already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	fmt.Println("Welcome to trimcrop setup!")
	fmt.Println()

	cfg := config.Default()
	if err := promptPlayer(prompter, cfg); err != nil {
		return err
	}
	if err := promptEditor(prompter, cfg); err != nil {
		return err
	}
	if err := promptStorage(prompter, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", configPath)
	return nil
}

func promptPlayer(prompter Prompter, cfg *config.Config) error {
	binaries := []struct {
		message string
		dst     *string
	}{
		{"mpv binary?", &cfg.Player.MpvBinary},
		{"ffprobe binary?", &cfg.Player.FfprobeBinary},
		{"yt-dlp binary (for stream URLs)?", &cfg.Player.YtDlpBinary},
	}
	for _, b := range binaries {
		v, err := prompter.Input(b.message, *b.dst)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if v = strings.TrimSpace(v); v != "" {
			*b.dst = v
		}
	}

	poll, err := prompter.Input("How often to poll stream playback (e.g. 100ms)?", cfg.Player.PollInterval.String())
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if poll = strings.TrimSpace(poll); poll != "" {
		d, err := time.ParseDuration(poll)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid poll interval %q", poll)
		}
		cfg.Player.PollInterval = d
	}
	return nil
}

func promptEditor(prompter Prompter, cfg *config.Config) error {
	var options []string
	for _, r := range crop.Presets() {
		if r != crop.Custom {
			options = append(options, string(r))
		}
	}
	ratio, err := prompter.Select("Default aspect ratio?", options, cfg.Editor.AspectRatio)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Editor.AspectRatio = ratio

	nudge, err := prompter.Input("Pixels moved per crop nudge?", strconv.Itoa(cfg.Editor.NudgeStep))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if nudge = strings.TrimSpace(nudge); nudge != "" {
		n, err := strconv.Atoi(nudge)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid nudge step %q", nudge)
		}
		cfg.Editor.NudgeStep = n
	}
	return nil
}

func promptStorage(prompter Prompter, cfg *config.Config) error {
	dataDir, err := prompter.Input("Where should trimcrop keep its database and logs?", cfg.Paths.DataDir)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if dataDir = strings.TrimSpace(dataDir); dataDir != "" {
		cfg.Paths.DataDir = dataDir
	}

	command, err := prompter.Input("Command that receives finalized submissions (blank to skip)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	args, err := shellquote.Split(command)
	if err != nil {
		return fmt.Errorf("invalid submit command %q: %w", command, err)
	}
	cfg.Submit.Command = args
	return nil
}
