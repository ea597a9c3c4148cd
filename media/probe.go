package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/user/trimcrop-cli/deps"
)

// Default frame size assumed when a probe omits stream dimensions.
const (
	fallbackWidth  = 1920
	fallbackHeight = 1080
)

// ErrNoVideoStream is returned when a probed file carries no video stream.
var ErrNoVideoStream = errors.New("no video stream found")

// Prober resolves metadata for a command-line target.
type Prober struct {
	FFprobePath string
	YtDlpPath   string
}

// Probe dispatches on the detected source type.
func (p *Prober) Probe(ctx context.Context, target string) (VideoMetadata, error) {
	if DetectSource(target) == SourceEmbedded {
		return p.ProbeStream(ctx, target)
	}
	return p.ProbeFile(ctx, target)
}

// ProbeFile reads duration and frame size of a local file with ffprobe.
func (p *Prober) ProbeFile(ctx context.Context, path string) (VideoMetadata, error) {
	bin := p.FFprobePath
	if bin == "" {
		bin = "ffprobe"
	}
	if err := deps.CheckBinary(bin, deps.FfmpegInstallURL); err != nil {
		return VideoMetadata{}, err
	}

	out, err := run(ctx, bin, "-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path)
	if err != nil {
		return VideoMetadata{}, fmt.Errorf("ffprobe failed: %w", err)
	}
	return ParseFFprobe(out, path)
}

// ProbeStream reads title, duration and frame size of a hosted stream with yt-dlp.
func (p *Prober) ProbeStream(ctx context.Context, streamURL string) (VideoMetadata, error) {
	bin := p.YtDlpPath
	if bin == "" {
		bin = "yt-dlp"
	}
	if err := deps.CheckBinary(bin, deps.YtDlpInstallURL); err != nil {
		return VideoMetadata{}, err
	}

	out, err := run(ctx, bin, "--dump-json", "--no-playlist", "--skip-download", streamURL)
	if err != nil {
		return VideoMetadata{}, fmt.Errorf("yt-dlp failed: %w", err)
	}
	return ParseYtDlp(out, streamURL)
}

func run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ParseFFprobe converts `ffprobe -show_format -show_streams` JSON into metadata.
func ParseFFprobe(data []byte, path string) (VideoMetadata, error) {
	var info ffprobeOutput
	if err := json.Unmarshal(data, &info); err != nil {
		return VideoMetadata{}, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	found := false
	width, height := fallbackWidth, fallbackHeight
	for _, s := range info.Streams {
		if s.CodecType != "video" {
			continue
		}
		found = true
		if s.Width > 0 {
			width = s.Width
		}
		if s.Height > 0 {
			height = s.Height
		}
		break
	}
	if !found {
		return VideoMetadata{}, ErrNoVideoStream
	}

	duration := 0.0
	if info.Format.Duration != "" {
		d, err := strconv.ParseFloat(info.Format.Duration, 64)
		if err != nil {
			return VideoMetadata{}, fmt.Errorf("parsing duration %q: %w", info.Format.Duration, err)
		}
		duration = d
	}

	return VideoMetadata{
		Title:    titleFromFilename(path),
		Duration: duration,
		Width:    width,
		Height:   height,
		Source:   SourceLocal,
		Locator:  path,
	}, nil
}

type ytDlpOutput struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Thumbnail string  `json:"thumbnail"`
}

// ParseYtDlp converts `yt-dlp --dump-json` output into metadata.
func ParseYtDlp(data []byte, streamURL string) (VideoMetadata, error) {
	var info ytDlpOutput
	if err := json.Unmarshal(data, &info); err != nil {
		return VideoMetadata{}, fmt.Errorf("parsing yt-dlp output: %w", err)
	}

	width, height := info.Width, info.Height
	if width <= 0 || height <= 0 {
		width, height = fallbackWidth, fallbackHeight
	}
	title := info.Title
	if title == "" {
		title = "Unknown"
	}

	return VideoMetadata{
		Title:        title,
		Duration:     info.Duration,
		Width:        width,
		Height:       height,
		Source:       SourceEmbedded,
		Locator:      streamURL,
		VideoID:      info.ID,
		ThumbnailURL: info.Thumbnail,
	}, nil
}
