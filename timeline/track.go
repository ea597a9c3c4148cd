package timeline

import "github.com/user/trimcrop-cli/trim"

// Point is a pointer position in host units (terminal cells in the TUI).
type Point struct {
	X, Y float64
}

// Box is an axis-aligned rectangle in host units.
type Box struct {
	Left, Top, Width, Height float64
}

// Contains reports whether p lies inside the box.
func (b Box) Contains(p Point) bool {
	return p.X >= b.Left && p.X < b.Left+b.Width && p.Y >= b.Top && p.Y < b.Top+b.Height
}

// Track is the timeline bar. X positions map linearly onto [0, duration].
type Track struct {
	Box
}

// TimeAt projects x onto the track and returns the time under it.
// Positions outside the track clamp to its ends.
func (t Track) TimeAt(x, duration float64) float64 {
	if t.Width <= 0 || duration <= 0 {
		return 0
	}
	frac := trim.Clamp((x-t.Left)/t.Width, 0, 1)
	return frac * duration
}

// XAt is the inverse of TimeAt.
func (t Track) XAt(seconds, duration float64) float64 {
	if duration <= 0 {
		return t.Left
	}
	return t.Left + trim.Clamp(seconds/duration, 0, 1)*t.Width
}
