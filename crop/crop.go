// Package crop derives and moves the output crop rectangle in source-pixel space.
package crop

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AspectRatio names an output framing target.
type AspectRatio string

const (
	Original  AspectRatio = "original"
	Portrait  AspectRatio = "9:16"
	Landscape AspectRatio = "16:9"
	Square    AspectRatio = "1:1"
	Vertical  AspectRatio = "4:5"
	Custom    AspectRatio = "custom"
)

// named maps the preset ratios to their numeric width:height.
var named = map[AspectRatio][2]float64{
	Portrait:  {9, 16},
	Landscape: {16, 9},
	Square:    {1, 1},
	Vertical:  {4, 5},
}

// Presets lists the selectable ratios in display order.
func Presets() []AspectRatio {
	return []AspectRatio{Original, Portrait, Landscape, Square, Vertical, Custom}
}

// ParseAspectRatio accepts a preset name or any positive "W:H" pair.
func ParseAspectRatio(s string) (AspectRatio, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch AspectRatio(s) {
	case Original, Portrait, Landscape, Square, Vertical, Custom:
		return AspectRatio(s), nil
	}
	if _, _, ok := splitRatio(s); ok {
		return AspectRatio(s), nil
	}
	return "", fmt.Errorf("unknown aspect ratio %q (want original, 9:16, 16:9, 1:1, 4:5, custom or W:H)", s)
}

func splitRatio(s string) (float64, float64, bool) {
	w, h, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, false
	}
	rw, err1 := strconv.ParseFloat(strings.TrimSpace(w), 64)
	rh, err2 := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err1 != nil || err2 != nil || !(rw > 0) || !(rh > 0) || math.IsInf(rw, 0) || math.IsInf(rh, 0) {
		return 0, 0, false
	}
	return rw, rh, true
}

// resolve returns the numeric ratio for r, falling back to the source's own ratio.
func resolve(r AspectRatio, sourceWidth, sourceHeight float64) (float64, float64) {
	if wh, ok := named[r]; ok {
		return wh[0], wh[1]
	}
	if rw, rh, ok := splitRatio(string(r)); ok {
		return rw, rh
	}
	return sourceWidth, sourceHeight
}

// Rect is a crop rectangle in source pixels.
// Invariant: 0 <= X, X+Width <= SourceWidth, and the same for Y/Height.
type Rect struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	SourceWidth  float64 `json:"source_width"`
	SourceHeight float64 `json:"source_height"`
}

// Compute returns the largest centred rectangle of the target ratio that fits the source.
// Original means no crop and returns nil, as do non-positive source dimensions.
// Unknown ratios (including Custom) use the source ratio and still return a rect.
func Compute(ratio AspectRatio, sourceWidth, sourceHeight float64) *Rect {
	if ratio == Original || !(sourceWidth > 0) || !(sourceHeight > 0) {
		return nil
	}

	rw, rh := resolve(ratio, sourceWidth, sourceHeight)
	targetRatio := rw / rh
	currentRatio := sourceWidth / sourceHeight

	var cropWidth, cropHeight float64
	if targetRatio > currentRatio {
		cropWidth = sourceWidth
		cropHeight = sourceWidth / targetRatio
	} else {
		cropHeight = sourceHeight
		cropWidth = sourceHeight * targetRatio
	}

	return &Rect{
		X:            (sourceWidth - cropWidth) / 2,
		Y:            (sourceHeight - cropHeight) / 2,
		Width:        cropWidth,
		Height:       cropHeight,
		SourceWidth:  sourceWidth,
		SourceHeight: sourceHeight,
	}
}

// Translate moves r by an on-screen pixel delta converted with the given
// source-pixels-per-screen-pixel scale, then clamps the origin inside the source.
// Width and height never change.
func Translate(r Rect, deltaX, deltaY, scaleX, scaleY float64) Rect {
	r.X = clampOrigin(r.X+deltaX*scaleX, r.SourceWidth-r.Width)
	r.Y = clampOrigin(r.Y+deltaY*scaleY, r.SourceHeight-r.Height)
	return r
}

func clampOrigin(v, max float64) float64 {
	if math.IsNaN(v) {
		v = 0
	}
	if v > max {
		v = max
	}
	if v < 0 {
		v = 0
	}
	return v
}

// Overlay is a crop projection in percent of the source frame.
type Overlay struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// ToOverlayPercent projects r onto the frame as percentages of the source dimensions, so
// it stays correct at any display scale. A nil rect covers the whole frame.
func ToOverlayPercent(r *Rect, sourceWidth, sourceHeight float64) Overlay {
	if r == nil || !(sourceWidth > 0) || !(sourceHeight > 0) {
		return Overlay{Left: 0, Top: 0, Width: 100, Height: 100}
	}
	return Overlay{
		Left:   r.X / sourceWidth * 100,
		Top:    r.Y / sourceHeight * 100,
		Width:  r.Width / sourceWidth * 100,
		Height: r.Height / sourceHeight * 100,
	}
}

// Rounded snaps the rect to whole pixels while keeping it inside the source.
func (r Rect) Rounded() Rect {
	out := r
	out.SourceWidth = math.Round(r.SourceWidth)
	out.SourceHeight = math.Round(r.SourceHeight)
	out.Width = math.Min(math.Round(r.Width), out.SourceWidth)
	out.Height = math.Min(math.Round(r.Height), out.SourceHeight)
	out.X = clampOrigin(math.Round(r.X), out.SourceWidth-out.Width)
	out.Y = clampOrigin(math.Round(r.Y), out.SourceHeight-out.Height)
	return out
}

// Filter renders the ffmpeg crop filter argument (crop=w:h:x:y) in whole pixels.
func (r Rect) Filter() string {
	p := r.Rounded()
	return fmt.Sprintf("crop=%d:%d:%d:%d", int(p.Width), int(p.Height), int(p.X), int(p.Y))
}

// String implements fmt.Stringer.
func (r Rect) String() string {
	return fmt.Sprintf("%.0fx%.0f+%.0f+%.0f", r.Width, r.Height, r.X, r.Y)
}
