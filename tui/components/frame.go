package components

import (
	"math"
	"strings"

	"github.com/user/trimcrop-cli/crop"
	"github.com/user/trimcrop-cli/tui/styles"
)

// CellAspect is how many times taller a terminal cell is than it is wide.
const CellAspect = 2.0

// CellRect is a rectangle of terminal cells.
type CellRect struct {
	Left, Top, Width, Height int
}

// FitFrame scales a source frame into an area of availW x availH cells, keeping its
// shape, and centres it. The result is relative to the area's top-left cell.
func FitFrame(sourceWidth, sourceHeight, availW, availH int) CellRect {
	if sourceWidth <= 0 || sourceHeight <= 0 || availW <= 0 || availH <= 0 {
		return CellRect{}
	}
	aspect := float64(sourceWidth) / float64(sourceHeight)

	h := availH
	w := int(math.Round(float64(h) * CellAspect * aspect))
	if w > availW {
		w = availW
		h = int(math.Round(float64(w) / (CellAspect * aspect)))
	}
	w = max(w, 1)
	h = min(max(h, 1), availH)

	return CellRect{
		Left:   (availW - w) / 2,
		Top:    (availH - h) / 2,
		Width:  w,
		Height: h,
	}
}

// CropCells projects an overlay onto a fitted frame. The result is relative to the
// frame and always lies inside it.
func CropCells(ov crop.Overlay, frame CellRect) CellRect {
	w := clampInt(int(math.Round(ov.Width/100*float64(frame.Width))), 1, frame.Width)
	h := clampInt(int(math.Round(ov.Height/100*float64(frame.Height))), 1, frame.Height)
	return CellRect{
		Left:   clampInt(int(math.Round(ov.Left/100*float64(frame.Width))), 0, frame.Width-w),
		Top:    clampInt(int(math.Round(ov.Top/100*float64(frame.Height))), 0, frame.Height-h),
		Width:  w,
		Height: h,
	}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

type cellKind int

const (
	cellNone cellKind = iota
	cellMasked
	cellBorder
	cellKept
)

// cropRune returns the character at (x, y) of a w x h crop outline.
func cropRune(x, y, w, h int) rune {
	if w < 2 || h < 2 {
		return '█'
	}
	top, bottom := y == 0, y == h-1
	left, right := x == 0, x == w-1
	switch {
	case top && left:
		return '┌'
	case top && right:
		return '┐'
	case bottom && left:
		return '└'
	case bottom && right:
		return '┘'
	case top || bottom:
		return '─'
	case left || right:
		return '│'
	}
	return ' '
}

// FramePreview draws the frame at its fitted position inside a width x height panel:
// the area the crop removes is shaded and the kept area is outlined.
func FramePreview(frame, cropCells CellRect, width, height int) string {
	lines := make([]string, height)
	for y := 0; y < height; y++ {
		fy := y - frame.Top
		if fy < 0 || fy >= frame.Height {
			continue
		}

		var b strings.Builder
		b.WriteString(strings.Repeat(" ", max(frame.Left, 0)))

		var run []rune
		kind := cellNone
		flush := func() {
			if len(run) == 0 {
				return
			}
			switch kind {
			case cellMasked:
				b.WriteString(styles.Masked.Render(string(run)))
			case cellBorder:
				b.WriteString(styles.CropBorder.Render(string(run)))
			default:
				b.WriteString(string(run))
			}
			run = run[:0]
		}

		for fx := 0; fx < frame.Width; fx++ {
			cx, cy := fx-cropCells.Left, fy-cropCells.Top
			next, r := cellMasked, '░'
			if cx >= 0 && cx < cropCells.Width && cy >= 0 && cy < cropCells.Height {
				r = cropRune(cx, cy, cropCells.Width, cropCells.Height)
				next = cellBorder
				if r == ' ' {
					next = cellKept
				}
			}
			if next != kind {
				flush()
				kind = next
			}
			run = append(run, r)
		}
		flush()
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}
