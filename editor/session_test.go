package editor

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/user/trimcrop-cli/crop"
	"github.com/user/trimcrop-cli/media"
	"github.com/user/trimcrop-cli/timeline"
	"github.com/user/trimcrop-cli/trim"
)

type stubPlayer struct {
	seeks []float64
}

func (p *stubPlayer) Seek(t float64) error {
	p.seeks = append(p.seeks, t)
	return nil
}

var portraitMeta = media.VideoMetadata{
	Title:    "interview",
	Duration: 120,
	Width:    1080,
	Height:   1920,
	Source:   media.SourceLocal,
	Locator:  "/videos/interview.mp4",
}

func newSession(ratio crop.AspectRatio) (*Session, *stubPlayer) {
	p := &stubPlayer{}
	return NewSession(portraitMeta, trim.Default(portraitMeta.Duration), p, ratio), p
}

func TestSession_EditRejectsInvalidText(t *testing.T) {
	s, p := newSession(crop.Original)
	s.EditStart("0:10")
	s.EditEnd("1:00")

	for _, text := range []string{"abc", "1:xx", "1:2:3:4", ""} {
		if s.EditStart(text) {
			t.Errorf("EditStart(%q) accepted", text)
		}
		if s.EditEnd(text) {
			t.Errorf("EditEnd(%q) accepted", text)
		}
		if s.EditSeek(text) {
			t.Errorf("EditSeek(%q) accepted", text)
		}
	}
	snap := s.Bounds().Snapshot()
	if snap.Start != 10 || snap.End != 60 {
		t.Errorf("bounds = %v-%v, want 10-60", snap.Start, snap.End)
	}
	if len(p.seeks) != 0 {
		t.Errorf("player seeked on invalid input: %v", p.seeks)
	}
}

func TestSession_EditsClamp(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantStart float64
		wantEnd   float64
	}{
		{name: "plain", start: "5", end: "30.5", wantStart: 5, wantEnd: 30.5},
		{name: "start past end", start: "1:05", end: "1:00", wantStart: 59, wantEnd: 60},
		{name: "end past duration", start: "0", end: "10:00", wantStart: 0, wantEnd: 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSession(crop.Original)
			if !s.EditEnd(tt.end) || !s.EditStart(tt.start) {
				t.Fatal("valid edit rejected")
			}
			snap := s.Bounds().Snapshot()
			if snap.Start != tt.wantStart || snap.End != tt.wantEnd {
				t.Errorf("bounds = %v-%v, want %v-%v", snap.Start, snap.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestSession_EditSeekClampsIntoRange(t *testing.T) {
	s, p := newSession(crop.Original)
	s.EditStart("10")
	s.EditEnd("20")

	s.EditSeek("1:30")
	s.EditSeek("0:15")
	s.EditSeek("2")

	want := []float64{20, 15, 10}
	if len(p.seeks) != 3 || p.seeks[0] != want[0] || p.seeks[1] != want[1] || p.seeks[2] != want[2] {
		t.Errorf("seeks = %v, want %v", p.seeks, want)
	}
	if got := s.Bounds().CurrentTime(); got != 10 {
		t.Errorf("current time = %v, want 10", got)
	}
}

func TestSession_MarkAtPlayhead(t *testing.T) {
	s, _ := newSession(crop.Original)
	s.Bounds().SetCurrentTime(42)
	if got := s.MarkStartAtPlayhead(); got != 42 {
		t.Errorf("start = %v, want 42", got)
	}
	s.Bounds().SetCurrentTime(40)
	if got := s.MarkEndAtPlayhead(); got != 43 {
		t.Errorf("end = %v, want 43 (start + min gap)", got)
	}
}

func TestSession_AspectRatioRecomputesCrop(t *testing.T) {
	s, _ := newSession(crop.Original)
	if s.Crop() != nil {
		t.Fatal("original ratio has a crop")
	}

	s.SetAspectRatio(crop.Landscape)
	c := s.Crop()
	if c == nil {
		t.Fatal("no crop for 16:9")
	}
	if c.Width != 1080 || c.Height != 607.5 || c.X != 0 || c.Y != 656.25 {
		t.Errorf("crop = %+v", *c)
	}

	s.NudgeCrop(50, -1000)
	if got := s.Crop(); got.X != 0 || got.Y != 0 {
		t.Errorf("nudged crop = %+v, want origin clamped to 0,0", *got)
	}

	s.SetAspectRatio(crop.Landscape)
	if got := s.Crop(); got.Y != 656.25 {
		t.Errorf("reselecting ratio did not recentre: %+v", *got)
	}
}

func TestSession_CropReturnsCopy(t *testing.T) {
	s, _ := newSession(crop.Square)
	c := s.Crop()
	c.X = 999
	if s.Crop().X == 999 {
		t.Error("Crop exposed internal state")
	}
}

func TestSession_CycleAspectRatio(t *testing.T) {
	s, _ := newSession(crop.Original)
	var got []crop.AspectRatio
	for range crop.Presets() {
		got = append(got, s.CycleAspectRatio())
	}
	want := []crop.AspectRatio{crop.Portrait, crop.Landscape, crop.Square, crop.Vertical, crop.Custom, crop.Original}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cycle[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSession_FinalizeJSON(t *testing.T) {
	s, _ := newSession(crop.Landscape)
	s.EditStart("0:05.5")
	s.EditEnd("0:42")

	data, err := json.Marshal(s.Finalize())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"start_time":5.5,"end_time":42,"crop":{"x":0,"y":656,"width":1080,"height":608,"source_width":1080,"source_height":1920}}`
	if string(data) != want {
		t.Errorf("settings JSON =\n%s\nwant\n%s", data, want)
	}

	s.SetAspectRatio(crop.Original)
	data, _ = json.Marshal(s.Finalize())
	want = `{"start_time":5.5,"end_time":42,"crop":null}`
	if string(data) != want {
		t.Errorf("settings JSON = %s, want %s", data, want)
	}
}

func TestSession_TimelineDragsCrop(t *testing.T) {
	s, _ := newSession(crop.Square)
	s.Timeline().SetLayout(timeline.Layout{
		Track:   timeline.Track{Box: timeline.Box{Left: 0, Top: 50, Width: 120, Height: 1}},
		CropBox: timeline.Box{Left: 0, Top: 0, Width: 54, Height: 48},
		ScaleX:  20,
		ScaleY:  40,
	})

	if !s.Timeline().PointerDown(timeline.Point{X: 27, Y: 24}) {
		t.Fatal("press on crop not consumed")
	}
	s.Document().DispatchMove(timeline.Point{X: 27, Y: 30})
	s.Document().DispatchUp(timeline.Point{X: 27, Y: 30})

	c := s.Crop()
	if c.Y != 420+240 {
		t.Errorf("crop y = %v, want 660", c.Y)
	}
	if s.Document().Listeners() != 0 {
		t.Error("listener left after drag")
	}
}

func TestSession_CropChangesEndDrag(t *testing.T) {
	tests := []struct {
		name   string
		change func(s *Session)
		width  float64
		height float64
	}{
		{name: "ratio", change: func(s *Session) { s.SetAspectRatio(crop.Square) }, width: 1080, height: 1080},
		{name: "nudge", change: func(s *Session) { s.NudgeCrop(0, 10) }, width: 1080, height: 607.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSession(crop.Landscape)
			s.Timeline().SetLayout(timeline.Layout{
				Track:   timeline.Track{Box: timeline.Box{Left: 0, Top: 50, Width: 120, Height: 1}},
				CropBox: timeline.Box{Left: 0, Top: 0, Width: 54, Height: 48},
				ScaleX:  20,
				ScaleY:  40,
			})
			if !s.Timeline().PointerDown(timeline.Point{X: 27, Y: 24}) {
				t.Fatal("press on crop not consumed")
			}

			tt.change(s)
			before := *s.Crop()
			if s.Timeline().State() != timeline.Idle || s.Document().Listeners() != 0 {
				t.Fatalf("drag still active: state %v, %d listeners", s.Timeline().State(), s.Document().Listeners())
			}

			s.Document().DispatchMove(timeline.Point{X: 28, Y: 25})
			s.Document().DispatchUp(timeline.Point{X: 28, Y: 25})
			got := *s.Crop()
			if got != before {
				t.Errorf("move after change rewrote crop: %+v -> %+v", before, got)
			}
			if got.Width != tt.width || got.Height != tt.height {
				t.Errorf("crop size = %vx%v, want %vx%v", got.Width, got.Height, tt.width, tt.height)
			}
		})
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		s       Settings
		wantErr bool
	}{
		{name: "ok", s: Settings{StartTime: 1, EndTime: 10}},
		{name: "empty", s: Settings{StartTime: 5, EndTime: 5}, wantErr: true},
		{name: "past duration", s: Settings{StartTime: 0, EndTime: 200}, wantErr: true},
		{name: "negative", s: Settings{StartTime: -1, EndTime: 10}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate(120)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRange) {
				t.Errorf("err = %v, want ErrInvalidRange", err)
			}
		})
	}
}

func TestCropConfig_Filter(t *testing.T) {
	cfg := NewCropConfig(&crop.Rect{X: 420.4, Y: 0, Width: 1079.6, Height: 1080, SourceWidth: 1920, SourceHeight: 1080})
	if got := cfg.Filter(); got != "crop=1080:1080:420:0" {
		t.Errorf("Filter() = %q", got)
	}
	if NewCropConfig(nil) != nil {
		t.Error("nil rect produced a config")
	}
}
