package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/trimcrop-cli/config"
	"github.com/user/trimcrop-cli/crop"
)

// scriptedPrompter answers prompts in order; an exhausted script falls back to defaults.
type scriptedPrompter struct {
	inputs   []string
	confirms []bool
	selects  []string
	asked    []string
}

func (p *scriptedPrompter) Input(message, defaultValue string) (string, error) {
	p.asked = append(p.asked, message)
	if len(p.inputs) == 0 {
		return defaultValue, nil
	}
	v := p.inputs[0]
	p.inputs = p.inputs[1:]
	return v, nil
}

func (p *scriptedPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	p.asked = append(p.asked, message)
	if len(p.confirms) == 0 {
		return defaultValue, nil
	}
	v := p.confirms[0]
	p.confirms = p.confirms[1:]
	return v, nil
}

func (p *scriptedPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	p.asked = append(p.asked, message)
	if len(p.selects) == 0 {
		return defaultValue, nil
	}
	v := p.selects[0]
	p.selects = p.selects[1:]
	for _, o := range options {
		if o == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("%q is not an option", v)
}

func TestRunSetup_WritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trimcrop", "config.yaml")
	dataDir := filepath.Join(t.TempDir(), "data")
	p := &scriptedPrompter{
		inputs:  []string{"/opt/mpv", "", "", "250ms", "25", dataDir, "render-job --queue 'short clips'"},
		selects: []string{"9:16"},
	}

	if err := RunSetupWithPrompter(p, path); err != nil {
		t.Fatalf("RunSetupWithPrompter: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Player.MpvBinary != "/opt/mpv" || cfg.Player.FfprobeBinary != "ffprobe" {
		t.Errorf("player = %+v", cfg.Player)
	}
	if cfg.Player.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %v", cfg.Player.PollInterval)
	}
	if cfg.AspectRatio() != crop.Portrait || cfg.Editor.NudgeStep != 25 {
		t.Errorf("editor = %+v", cfg.Editor)
	}
	if cfg.Paths.DataDir != dataDir {
		t.Errorf("DataDir = %q", cfg.Paths.DataDir)
	}
	if strings.Join(cfg.Submit.Command, "|") != "render-job|--queue|short clips" {
		t.Errorf("Submit.Command = %v", cfg.Submit.Command)
	}
}

func TestRunSetup_KeepsExistingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	original := "editor:\n  aspect_ratio: \"1:1\"\n"
	if err := os.WriteFile(path, []byte(original), 0644); err != nil {
		t.Fatal(err)
	}

	p := &scriptedPrompter{confirms: []bool{false}}
	if err := RunSetupWithPrompter(p, path); err != nil {
		t.Fatalf("RunSetupWithPrompter: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != original {
		t.Errorf("config overwritten:\n%s", data)
	}
	if len(p.asked) != 1 {
		t.Errorf("asked %d prompts after declining, want 1", len(p.asked))
	}
}

func TestRunSetup_InvalidAnswers(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []string
		wantErr string
	}{
		{name: "poll interval", inputs: []string{"", "", "", "soon"}, wantErr: "poll interval"},
		{name: "nudge step", inputs: []string{"", "", "", "", "-3"}, wantErr: "nudge step"},
		{name: "submit command", inputs: []string{"", "", "", "", "", "", "render-job 'unterminated"}, wantErr: "submit command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			err := RunSetupWithPrompter(&scriptedPrompter{inputs: tt.inputs}, path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantErr)
			}
			if _, statErr := os.Stat(path); statErr == nil {
				t.Error("config written despite invalid answer")
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "12", want: 12},
		{in: "#7", want: 7},
		{in: "0", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseID(%q) = %d, %v", tt.in, got, err)
		}
	}
}
