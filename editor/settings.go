package editor

import (
	"errors"
	"fmt"

	"github.com/user/trimcrop-cli/crop"
)

// ErrInvalidRange is returned when settings select less than the minimum range.
var ErrInvalidRange = errors.New("invalid trim range")

// CropConfig is the crop as the downstream renderer takes it, in whole pixels.
type CropConfig struct {
	X            int `json:"x"`
	Y            int `json:"y"`
	Width        int `json:"width"`
	Height       int `json:"height"`
	SourceWidth  int `json:"source_width"`
	SourceHeight int `json:"source_height"`
}

// NewCropConfig rounds r to whole pixels. A nil rect yields nil.
func NewCropConfig(r *crop.Rect) *CropConfig {
	if r == nil {
		return nil
	}
	p := r.Rounded()
	return &CropConfig{
		X:            int(p.X),
		Y:            int(p.Y),
		Width:        int(p.Width),
		Height:       int(p.Height),
		SourceWidth:  int(p.SourceWidth),
		SourceHeight: int(p.SourceHeight),
	}
}

// Filter renders the ffmpeg crop filter argument.
func (c CropConfig) Filter() string {
	return fmt.Sprintf("crop=%d:%d:%d:%d", c.Width, c.Height, c.X, c.Y)
}

// Settings is the finalized selection handed to the job submitter.
type Settings struct {
	StartTime float64     `json:"start_time"`
	EndTime   float64     `json:"end_time"`
	Crop      *CropConfig `json:"crop"`
}

// Duration returns the selected length in seconds.
func (s Settings) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Validate checks the range against the media duration.
func (s Settings) Validate(duration float64) error {
	if s.StartTime < 0 || s.EndTime > duration || s.EndTime <= s.StartTime {
		return fmt.Errorf("%w: %.3f-%.3f of %.3f", ErrInvalidRange, s.StartTime, s.EndTime, duration)
	}
	return nil
}
