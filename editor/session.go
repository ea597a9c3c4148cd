// Package editor ties one video's trim bounds, crop and playback together into an edit
// session that ends in Settings.
package editor

import (
	"math"

	"github.com/user/trimcrop-cli/crop"
	"github.com/user/trimcrop-cli/media"
	"github.com/user/trimcrop-cli/pkg/timeutil"
	"github.com/user/trimcrop-cli/timeline"
	"github.com/user/trimcrop-cli/trim"
)

// Player is the part of playback the session drives directly.
type Player interface {
	Seek(seconds float64) error
}

// Session is one edit of one video. Like the timeline it is used from the UI loop only.
type Session struct {
	meta     media.VideoMetadata
	bounds   *trim.Bounds
	player   Player
	doc      *timeline.Document
	timeline *timeline.Controller

	ratio crop.AspectRatio
	crop  *crop.Rect
}

// NewSession starts an edit over the whole video with the given aspect ratio.
// bounds is shared with the playback controller; player may be nil.
func NewSession(meta media.VideoMetadata, bounds *trim.Bounds, player Player, ratio crop.AspectRatio) *Session {
	s := &Session{
		meta:   meta,
		bounds: bounds,
		player: player,
		doc:    &timeline.Document{},
	}
	s.timeline = timeline.NewController(s.doc, bounds, player, s)
	s.SetAspectRatio(ratio)
	return s
}

// Meta returns the video being edited.
func (s *Session) Meta() media.VideoMetadata { return s.meta }

// Bounds returns the shared trim bounds.
func (s *Session) Bounds() *trim.Bounds { return s.bounds }

// Timeline returns the pointer interaction controller.
func (s *Session) Timeline() *timeline.Controller { return s.timeline }

// Document returns the scope the host dispatches pointer moves and releases to.
func (s *Session) Document() *timeline.Document { return s.doc }

// AspectRatio returns the selected ratio.
func (s *Session) AspectRatio() crop.AspectRatio { return s.ratio }

// Crop returns the current crop, or nil for the full frame.
func (s *Session) Crop() *crop.Rect {
	if s.crop == nil {
		return nil
	}
	c := *s.crop
	return &c
}

// SetCrop replaces the crop rectangle, keeping its size.
func (s *Session) SetCrop(r crop.Rect) {
	if s.crop == nil {
		return
	}
	moved := crop.Translate(r, 0, 0, 1, 1)
	s.crop = &moved
}

// SetAspectRatio selects ratio and recomputes a centred crop for it. A crop drag in
// progress is ended so it cannot write the previous size back.
func (s *Session) SetAspectRatio(ratio crop.AspectRatio) {
	s.timeline.Close()
	s.ratio = ratio
	s.crop = crop.Compute(ratio, float64(s.meta.Width), float64(s.meta.Height))
}

// CycleAspectRatio moves to the next preset and returns it.
func (s *Session) CycleAspectRatio() crop.AspectRatio {
	presets := crop.Presets()
	next := presets[0]
	for i, p := range presets {
		if p == s.ratio {
			next = presets[(i+1)%len(presets)]
			break
		}
	}
	s.SetAspectRatio(next)
	return next
}

// NudgeCrop moves the crop by a source pixel delta, ending any drag in progress.
func (s *Session) NudgeCrop(dx, dy float64) {
	if s.crop == nil {
		return
	}
	s.timeline.Close()
	moved := crop.Translate(*s.crop, dx, dy, 1, 1)
	s.crop = &moved
}

// EditStart applies a typed start time. Unparseable text changes nothing and returns false.
func (s *Session) EditStart(text string) bool {
	t := timeutil.Parse(text)
	if math.IsNaN(t) {
		return false
	}
	s.bounds.SetStart(t)
	return true
}

// EditEnd applies a typed end time. Unparseable text changes nothing and returns false.
func (s *Session) EditEnd(text string) bool {
	t := timeutil.Parse(text)
	if math.IsNaN(t) {
		return false
	}
	s.bounds.SetEnd(t)
	return true
}

// EditSeek seeks to a typed time, clamped into the range. Unparseable text changes
// nothing and returns false.
func (s *Session) EditSeek(text string) bool {
	t := timeutil.Parse(text)
	if math.IsNaN(t) {
		return false
	}
	s.Seek(t)
	return true
}

// Seek moves the playhead to t clamped into [Start, End].
func (s *Session) Seek(t float64) {
	snap := s.bounds.Snapshot()
	t = trim.Clamp(t, snap.Start, snap.End)
	s.bounds.SetCurrentTime(t)
	if s.player != nil {
		_ = s.player.Seek(t)
	}
}

// MarkStartAtPlayhead sets the start to the current time and returns the applied value.
func (s *Session) MarkStartAtPlayhead() float64 {
	return s.bounds.SetStart(s.bounds.CurrentTime())
}

// MarkEndAtPlayhead sets the end to the current time and returns the applied value.
func (s *Session) MarkEndAtPlayhead() float64 {
	return s.bounds.SetEnd(s.bounds.CurrentTime())
}

// Reset selects the whole video and recomputes the crop.
func (s *Session) Reset() {
	s.bounds.Reset(s.meta.Duration)
	s.SetAspectRatio(s.ratio)
}

// Finalize returns the current selection. It does not end the session.
func (s *Session) Finalize() Settings {
	snap := s.bounds.Snapshot()
	return Settings{
		StartTime: snap.Start,
		EndTime:   snap.End,
		Crop:      NewCropConfig(s.crop),
	}
}

// Close ends any interaction in progress.
func (s *Session) Close() {
	s.timeline.Close()
}
