package deps

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const (
	MpvInstallURL    = "https://mpv.io/installation/"
	FfmpegInstallURL = "https://ffmpeg.org/download.html"
	YtDlpInstallURL  = "https://github.com/yt-dlp/yt-dlp#installation"
)

// DependencyError contains information about a missing dependency
type DependencyError struct {
	Name       string
	InstallURL string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

// CheckBinary checks that name resolves in PATH (or is an existing executable path)
func CheckBinary(name, installURL string) error {
	if _, err := exec.LookPath(name); err != nil {
		return &DependencyError{
			Name:       name,
			InstallURL: installURL,
		}
	}
	return nil
}

// CheckMpv checks if mpv is installed and available in PATH
func CheckMpv() error {
	return CheckBinary("mpv", MpvInstallURL)
}

// CheckFfprobe checks if ffprobe is installed and available in PATH
func CheckFfprobe() error {
	return CheckBinary("ffprobe", FfmpegInstallURL)
}

// CheckYtDlp checks if yt-dlp is installed and available in PATH
func CheckYtDlp() error {
	return CheckBinary("yt-dlp", YtDlpInstallURL)
}

// ResolveYtDlp locates the yt-dlp binary and confirms it runs by asking for its version.
// It returns the absolute path handed to mpv's ytdl hook.
func ResolveYtDlp(ctx context.Context, name string) (string, error) {
	if name == "" {
		name = "yt-dlp"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", &DependencyError{Name: name, InstallURL: YtDlpInstallURL}
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "--version")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s --version: %w", name, err)
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", fmt.Errorf("%s --version printed nothing", name)
	}
	return path, nil
}

// CheckAll checks all dependencies and returns a slice of errors for missing ones
func CheckAll() []error {
	var errors []error

	if err := CheckMpv(); err != nil {
		errors = append(errors, err)
	}

	if err := CheckFfprobe(); err != nil {
		errors = append(errors, err)
	}

	if err := CheckYtDlp(); err != nil {
		errors = append(errors, err)
	}

	return errors
}
