package timeline

import (
	"testing"

	"github.com/user/trimcrop-cli/crop"
	"github.com/user/trimcrop-cli/trim"
)

type recordingSeeker struct {
	seeks []float64
}

func (s *recordingSeeker) Seek(t float64) error {
	s.seeks = append(s.seeks, t)
	return nil
}

type cropHolder struct {
	rect *crop.Rect
}

func (h *cropHolder) Crop() *crop.Rect { return h.rect }

func (h *cropHolder) SetCrop(r crop.Rect) { h.rect = &r }

// One host unit per second on a 120 unit track at row 10; the crop box is a
// 192x108 unit frame at 1 unit = 10 source pixels.
func newTestController(bounds *trim.Bounds, target CropTarget) (*Controller, *Document, *recordingSeeker) {
	doc := &Document{}
	seeker := &recordingSeeker{}
	c := NewController(doc, bounds, seeker, target)
	c.SetLayout(Layout{
		Track:   Track{Box{Left: 0, Top: 10, Width: 120, Height: 1}},
		CropBox: Box{Left: 0, Top: 20, Width: 192, Height: 108},
		ScaleX:  10,
		ScaleY:  10,
	})
	return c, doc, seeker
}

func TestController_StartDragClampsToEndMinusGap(t *testing.T) {
	bounds := trim.New(120, 10, 60)
	c, doc, _ := newTestController(bounds, nil)

	if !c.PointerDown(Point{X: 10, Y: 10}) {
		t.Fatal("press on start handle not consumed")
	}
	if c.State() != DraggingStart {
		t.Fatalf("state = %v, want dragging-start", c.State())
	}
	if c.Session().AnchorValue != 10 {
		t.Errorf("anchor value = %v, want 10", c.Session().AnchorValue)
	}

	doc.DispatchMove(Point{X: 65, Y: 10})
	if got := bounds.Start(); got != 59 {
		t.Errorf("start = %v, want 59", got)
	}

	// Pointer far outside the track keeps dragging, clamped.
	doc.DispatchMove(Point{X: -500, Y: 40})
	if got := bounds.Start(); got != 0 {
		t.Errorf("start = %v, want 0", got)
	}

	doc.DispatchUp(Point{X: -500, Y: 40})
	if c.State() != Idle || c.Session() != nil {
		t.Errorf("state after up = %v", c.State())
	}
	if n := doc.Listeners(); n != 0 {
		t.Errorf("listeners after up = %d, want 0", n)
	}
}

func TestController_EndDrag(t *testing.T) {
	bounds := trim.New(120, 30, 60)
	c, doc, _ := newTestController(bounds, nil)

	c.PointerDown(Point{X: 60, Y: 10})
	doc.DispatchMove(Point{X: 10, Y: 10})
	if got := bounds.End(); got != 31 {
		t.Errorf("end = %v, want 31", got)
	}
	doc.DispatchMove(Point{X: 999, Y: 10})
	if got := bounds.End(); got != 120 {
		t.Errorf("end = %v, want 120", got)
	}
	doc.DispatchUp(Point{})
}

func TestController_DragExclusivity(t *testing.T) {
	bounds := trim.New(120, 10, 60)
	c, doc, _ := newTestController(bounds, nil)

	c.PointerDown(Point{X: 10, Y: 10})
	if c.PointerDown(Point{X: 60, Y: 10}) {
		t.Error("second press consumed during drag")
	}
	if c.State() != DraggingStart {
		t.Fatalf("state = %v, want dragging-start", c.State())
	}
	if n := doc.Listeners(); n != 1 {
		t.Errorf("listeners = %d, want 1", n)
	}

	doc.DispatchUp(Point{X: 10, Y: 10})
	if !c.PointerDown(Point{X: 60, Y: 10}) || c.State() != DraggingEnd {
		t.Errorf("state after release and press = %v, want dragging-end", c.State())
	}
	doc.DispatchUp(Point{})
}

func TestController_HitTestPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		current    float64
		x          float64
		want       State
	}{
		{name: "start", start: 10, end: 60, current: 30, x: 10, want: DraggingStart},
		{name: "end", start: 10, end: 60, current: 30, x: 60.5, want: DraggingEnd},
		{name: "playhead", start: 10, end: 60, current: 30, x: 30, want: DraggingPlayhead},
		{name: "nearest wins", start: 10, end: 11, current: 30, x: 10.2, want: DraggingStart},
		{name: "end over start on tie", start: 10, end: 11, current: 30, x: 10.5, want: DraggingEnd},
		{name: "start over playhead", start: 10, end: 60, current: 10, x: 10, want: DraggingStart},
		{name: "miss", start: 10, end: 60, current: 30, x: 45, want: Idle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bounds := trim.New(120, tt.start, tt.end)
			bounds.SetCurrentTime(tt.current)
			c, _, _ := newTestController(bounds, nil)
			if got := c.HitTest(Point{X: tt.x, Y: 10}); got != tt.want {
				t.Errorf("HitTest(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestController_TrackClickSeeksClamped(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{name: "inside", x: 40, want: 40},
		{name: "before start", x: 3, want: 10},
		{name: "after end", x: 100, want: 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bounds := trim.New(120, 10, 60)
			bounds.SetCurrentTime(20)
			c, doc, seeker := newTestController(bounds, nil)

			if !c.PointerDown(Point{X: tt.x, Y: 10}) {
				t.Fatal("track press not consumed")
			}
			if c.State() != Idle {
				t.Errorf("track press started a drag: %v", c.State())
			}
			doc.DispatchUp(Point{X: tt.x, Y: 10})

			if len(seeker.seeks) != 1 || seeker.seeks[0] != tt.want {
				t.Errorf("seeks = %v, want [%v]", seeker.seeks, tt.want)
			}
			if got := bounds.CurrentTime(); got != tt.want {
				t.Errorf("current time = %v, want %v", got, tt.want)
			}
			if n := doc.Listeners(); n != 0 {
				t.Errorf("listeners = %d, want 0", n)
			}
		})
	}
}

func TestController_MoveCancelsClick(t *testing.T) {
	bounds := trim.New(120, 10, 60)
	c, doc, seeker := newTestController(bounds, nil)

	c.PointerDown(Point{X: 40, Y: 10})
	doc.DispatchMove(Point{X: 40, Y: 10})
	doc.DispatchMove(Point{X: 42, Y: 10})
	doc.DispatchUp(Point{X: 42, Y: 10})

	if len(seeker.seeks) != 0 {
		t.Errorf("seeks = %v, want none", seeker.seeks)
	}
	if n := doc.Listeners(); n != 0 {
		t.Errorf("listeners = %d, want 0", n)
	}
}

func TestController_HandlePressIsNeverAClick(t *testing.T) {
	bounds := trim.New(120, 10, 60)
	c, doc, seeker := newTestController(bounds, nil)

	c.PointerDown(Point{X: 10, Y: 10})
	doc.DispatchUp(Point{X: 10, Y: 10})
	if len(seeker.seeks) != 0 {
		t.Errorf("handle press seeked: %v", seeker.seeks)
	}
}

func TestController_PlayheadDragSeeks(t *testing.T) {
	bounds := trim.New(120, 10, 60)
	bounds.SetCurrentTime(30)
	c, doc, seeker := newTestController(bounds, nil)

	c.PointerDown(Point{X: 30, Y: 10})
	doc.DispatchMove(Point{X: 45, Y: 10})
	doc.DispatchMove(Point{X: 90, Y: 10})
	doc.DispatchUp(Point{X: 90, Y: 10})

	want := []float64{45, 60}
	if len(seeker.seeks) != len(want) || seeker.seeks[0] != want[0] || seeker.seeks[1] != want[1] {
		t.Errorf("seeks = %v, want %v", seeker.seeks, want)
	}
}

func TestController_CropDragTranslatesFromAnchor(t *testing.T) {
	bounds := trim.New(120, 10, 60)
	holder := &cropHolder{rect: &crop.Rect{X: 860, Y: 440, Width: 200, Height: 200, SourceWidth: 1920, SourceHeight: 1080}}
	c, doc, _ := newTestController(bounds, holder)

	if !c.PointerDown(Point{X: 96, Y: 74}) || c.State() != DraggingCropBox {
		t.Fatalf("state = %v, want dragging-crop", c.State())
	}

	doc.DispatchMove(Point{X: 98, Y: 73})
	if holder.rect.X != 880 || holder.rect.Y != 430 {
		t.Errorf("crop = %+v, want x=880 y=430", *holder.rect)
	}

	// Deltas stay relative to the anchor, not the previous move.
	doc.DispatchMove(Point{X: -200, Y: 74})
	if holder.rect.X != 0 || holder.rect.Y != 440 {
		t.Errorf("crop = %+v, want x=0 y=440", *holder.rect)
	}
	if holder.rect.Width != 200 || holder.rect.Height != 200 {
		t.Errorf("translate changed size: %+v", *holder.rect)
	}
	doc.DispatchUp(Point{})
}

func TestController_NoCropBoxDragWithoutCrop(t *testing.T) {
	bounds := trim.New(120, 10, 60)
	c, _, _ := newTestController(bounds, &cropHolder{})
	if c.PointerDown(Point{X: 96, Y: 74}) {
		t.Error("press on frame consumed with no crop")
	}
}

func TestController_CloseMidDragRemovesListeners(t *testing.T) {
	bounds := trim.New(120, 10, 60)
	c, doc, _ := newTestController(bounds, nil)

	c.PointerDown(Point{X: 10, Y: 10})
	c.Close()
	if n := doc.Listeners(); n != 0 {
		t.Errorf("listeners after close = %d, want 0", n)
	}
	doc.DispatchMove(Point{X: 50, Y: 10})
	if got := bounds.Start(); got != 10 {
		t.Errorf("start moved after close: %v", got)
	}
	c.Close()

	c.PointerDown(Point{X: 40, Y: 10})
	c.Close()
	if n := doc.Listeners(); n != 0 {
		t.Errorf("click listener survived close: %d", n)
	}
}

func TestDocument_UnsubscribeOnce(t *testing.T) {
	doc := &Document{}
	var a, b int
	unA := doc.Subscribe(Listener{Move: func(Point) { a++ }})
	doc.Subscribe(Listener{Move: func(Point) { b++ }})

	unA()
	unA()
	if n := doc.Listeners(); n != 1 {
		t.Fatalf("listeners = %d, want 1", n)
	}
	doc.DispatchMove(Point{})
	if a != 0 || b != 1 {
		t.Errorf("a=%d b=%d, want 0 1", a, b)
	}
}

func TestTrack_TimeAt(t *testing.T) {
	tr := Track{Box{Left: 2, Width: 100}}
	tests := []struct {
		x    float64
		want float64
	}{
		{x: 2, want: 0},
		{x: 52, want: 30},
		{x: 102, want: 60},
		{x: -40, want: 0},
		{x: 400, want: 60},
	}
	for _, tt := range tests {
		if got := tr.TimeAt(tt.x, 60); got != tt.want {
			t.Errorf("TimeAt(%v) = %v, want %v", tt.x, got, tt.want)
		}
		if tt.x >= 2 && tt.x <= 102 {
			if got := tr.XAt(tt.want, 60); got != tt.x {
				t.Errorf("XAt(%v) = %v, want %v", tt.want, got, tt.x)
			}
		}
	}
}
