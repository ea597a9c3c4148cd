// Package timeline turns pointer events into trim and crop edits.
package timeline

import (
	"math"

	"github.com/user/trimcrop-cli/crop"
	"github.com/user/trimcrop-cli/trim"
)

// State is the interaction state.
type State int

const (
	Idle State = iota
	DraggingStart
	DraggingEnd
	DraggingPlayhead
	DraggingCropBox
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case DraggingStart:
		return "dragging-start"
	case DraggingEnd:
		return "dragging-end"
	case DraggingPlayhead:
		return "dragging-playhead"
	case DraggingCropBox:
		return "dragging-crop"
	default:
		return "unknown"
	}
}

// DefaultHitRadius is how far from a handle a press still grabs it, in host units.
const DefaultHitRadius = 1.0

// Seeker moves playback. The playback controller satisfies it.
type Seeker interface {
	Seek(seconds float64) error
}

// CropTarget holds the crop being edited.
type CropTarget interface {
	Crop() *crop.Rect
	SetCrop(r crop.Rect)
}

// DragSession is the snapshot taken when a drag starts.
type DragSession struct {
	State       State
	AnchorX     float64
	AnchorY     float64
	AnchorValue float64
	AnchorCrop  crop.Rect
}

// Layout places the interactive elements on screen.
type Layout struct {
	Track Track
	// CropBox is where the crop overlay is drawn.
	CropBox Box
	// ScaleX and ScaleY convert host units to source pixels inside the frame.
	ScaleX, ScaleY float64
}

// Controller is the drag state machine. Mutations happen synchronously inside the
// pointer event that causes them.
type Controller struct {
	doc    *Document
	bounds *trim.Bounds
	seeker Seeker
	target CropTarget
	layout Layout

	// HitRadius overrides DefaultHitRadius when positive.
	HitRadius float64

	state       State
	session     *DragSession
	unsubscribe func()
	cancelClick func()
}

// NewController creates an idle controller. seeker and target may be nil.
func NewController(doc *Document, bounds *trim.Bounds, seeker Seeker, target CropTarget) *Controller {
	return &Controller{doc: doc, bounds: bounds, seeker: seeker, target: target}
}

// SetLayout updates element positions, e.g. after a resize. An active drag keeps its
// anchor and continues with the new mapping.
func (c *Controller) SetLayout(l Layout) {
	c.layout = l
}

// Layout returns the current layout.
func (c *Controller) Layout() Layout {
	return c.layout
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Session returns the active drag session, or nil when idle.
func (c *Controller) Session() *DragSession {
	return c.session
}

func (c *Controller) hitRadius() float64 {
	if c.HitRadius > 0 {
		return c.HitRadius
	}
	return DefaultHitRadius
}

// HitTest returns the handle under p, or Idle when none. End is preferred over start
// and start over the playhead when they overlap, so a collapsed range can always grow.
func (c *Controller) HitTest(p Point) State {
	tr := c.layout.Track
	if p.Y < tr.Top || p.Y >= tr.Top+tr.Height {
		return Idle
	}
	s := c.bounds.Snapshot()
	candidates := []struct {
		state State
		x     float64
	}{
		{DraggingEnd, tr.XAt(s.End, s.Duration)},
		{DraggingStart, tr.XAt(s.Start, s.Duration)},
		{DraggingPlayhead, tr.XAt(s.CurrentTime, s.Duration)},
	}

	best, bestDist := Idle, math.Inf(1)
	for _, h := range candidates {
		d := math.Abs(p.X - h.x)
		if d <= c.hitRadius() && d < bestDist {
			best, bestDist = h.state, d
		}
	}
	return best
}

// PointerDown handles a press and reports whether it was consumed. Presses during a
// drag are ignored.
func (c *Controller) PointerDown(p Point) bool {
	if c.state != Idle {
		return false
	}
	if h := c.HitTest(p); h != Idle {
		c.begin(h, p)
		return true
	}
	if c.target != nil && c.target.Crop() != nil && c.layout.CropBox.Contains(p) {
		c.begin(DraggingCropBox, p)
		return true
	}
	if c.layout.Track.Contains(p) {
		c.armClick(p)
		return true
	}
	return false
}

func (c *Controller) begin(state State, p Point) {
	c.disarmClick()

	s := c.bounds.Snapshot()
	session := &DragSession{State: state, AnchorX: p.X, AnchorY: p.Y}
	switch state {
	case DraggingStart:
		session.AnchorValue = s.Start
	case DraggingEnd:
		session.AnchorValue = s.End
	case DraggingPlayhead:
		session.AnchorValue = s.CurrentTime
	case DraggingCropBox:
		session.AnchorCrop = *c.target.Crop()
	}

	c.state = state
	c.session = session
	c.unsubscribe = c.doc.Subscribe(Listener{Move: c.drag, Up: c.release})
}

func (c *Controller) drag(p Point) {
	if c.session == nil {
		return
	}
	duration := c.bounds.Duration()
	switch c.session.State {
	case DraggingStart:
		c.bounds.SetStart(c.layout.Track.TimeAt(p.X, duration))
	case DraggingEnd:
		c.bounds.SetEnd(c.layout.Track.TimeAt(p.X, duration))
	case DraggingPlayhead:
		c.seek(c.layout.Track.TimeAt(p.X, duration))
	case DraggingCropBox:
		moved := crop.Translate(c.session.AnchorCrop,
			p.X-c.session.AnchorX, p.Y-c.session.AnchorY,
			c.layout.ScaleX, c.layout.ScaleY)
		c.target.SetCrop(moved)
	}
}

func (c *Controller) release(Point) {
	c.endSession()
}

func (c *Controller) endSession() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.session = nil
	c.state = Idle
}

// armClick waits for the matching release. Any move in between turns the press into
// nothing; a clean release seeks to the pressed time.
func (c *Controller) armClick(down Point) {
	c.disarmClick()
	c.cancelClick = c.doc.Subscribe(Listener{
		Move: func(p Point) {
			if p != down {
				c.disarmClick()
			}
		},
		Up: func(Point) {
			c.disarmClick()
			if c.state == Idle {
				c.seek(c.layout.Track.TimeAt(down.X, c.bounds.Duration()))
			}
		},
	})
}

func (c *Controller) disarmClick() {
	if c.cancelClick != nil {
		c.cancelClick()
		c.cancelClick = nil
	}
}

// seek moves the playhead to t clamped into [Start, End].
func (c *Controller) seek(t float64) {
	s := c.bounds.Snapshot()
	t = trim.Clamp(t, s.Start, s.End)
	c.bounds.SetCurrentTime(t)
	if c.seeker != nil {
		_ = c.seeker.Seek(t)
	}
}

// Close ends any drag or pending click and removes their listeners.
func (c *Controller) Close() {
	c.disarmClick()
	c.endSession()
}
