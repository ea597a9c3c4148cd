// Package media describes the source video being edited and how its metadata is obtained.
package media

import (
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies which playback backend serves a video.
type Source string

const (
	// SourceLocal is a file on disk played by a native player with pushed events.
	SourceLocal Source = "local"
	// SourceEmbedded is a hosted stream played through a command/poll-only player.
	SourceEmbedded Source = "embedded"
)

// VideoMetadata is supplied once by the host and never mutated afterwards.
type VideoMetadata struct {
	Title        string  `json:"title"`
	Duration     float64 `json:"duration"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Source       Source  `json:"source_type"`
	Locator      string  `json:"locator"`
	VideoID      string  `json:"video_id,omitempty"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
}

// Identity is the key a playback mount is bound to. A change means the mount must be
// torn down and recreated.
func (m VideoMetadata) Identity() string {
	return string(m.Source) + ":" + m.Locator
}

// DetectSource classifies a command-line target: http(s) URLs are embedded streams,
// everything else is a local file.
func DetectSource(target string) Source {
	u, err := url.Parse(strings.TrimSpace(target))
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return SourceEmbedded
	}
	return SourceLocal
}

// titleFromFilename returns the file name without directory or extension.
func titleFromFilename(path string) string {
	base := filepath.Base(path)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	if title == "" || title == "." {
		return "Uploaded Video"
	}
	return title
}
