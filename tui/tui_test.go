package tui

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/user/trimcrop-cli/crop"
	"github.com/user/trimcrop-cli/editor"
	"github.com/user/trimcrop-cli/media"
	"github.com/user/trimcrop-cli/playback"
	"github.com/user/trimcrop-cli/timeline"
	"github.com/user/trimcrop-cli/trim"
	"github.com/user/trimcrop-cli/tui/forms"
)

type fakePlayer struct {
	seeks   []float64
	volume  int
	muted   bool
	playing bool
}

func (p *fakePlayer) Seek(t float64) error { p.seeks = append(p.seeks, t); return nil }
func (p *fakePlayer) Play() error          { p.playing = true; return nil }
func (p *fakePlayer) Pause() error         { p.playing = false; return nil }
func (p *fakePlayer) TogglePlay() error    { p.playing = !p.playing; return nil }
func (p *fakePlayer) ToggleMute() error    { p.muted = !p.muted; return nil }
func (p *fakePlayer) SetVolume(v int) error {
	p.volume = min(max(v, 0), 100)
	return nil
}
func (p *fakePlayer) State() playback.State {
	return playback.State{Ready: true, Playing: p.playing, Volume: p.volume, Muted: p.muted}
}

var testMeta = media.VideoMetadata{
	Title:    "match",
	Duration: 100,
	Width:    1920,
	Height:   1080,
	Source:   media.SourceLocal,
	Locator:  "/videos/match.mp4",
}

// newTestModel lays the editor out on a 120x30 terminal. With a square crop that puts:
// the frame at cols 1-78 rows 1-22, the crop box at cols 18-61, and the trim bar on
// row 25 from col 2 with 101 cells of track.
func newTestModel(t *testing.T, ratio crop.AspectRatio) (*Model, *fakePlayer) {
	t.Helper()
	p := &fakePlayer{volume: 50}
	s := editor.NewSession(testMeta, trim.Default(testMeta.Duration), p, ratio)
	m := NewModel(s, p, Options{})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return m, p
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mouse(action tea.MouseAction, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestModel_Layout(t *testing.T) {
	m, _ := newTestModel(t, crop.Square)
	l := m.session.Timeline().Layout()

	want := timeline.Track{Box: timeline.Box{Left: 2, Top: 25, Width: 101, Height: 2}}
	if l.Track != want {
		t.Errorf("track = %+v, want %+v", l.Track, want)
	}
	wantCrop := timeline.Box{Left: 18, Top: 1, Width: 44, Height: 22}
	if l.CropBox != wantCrop {
		t.Errorf("crop box = %+v, want %+v", l.CropBox, wantCrop)
	}
	if !approx(l.ScaleX, 1920.0/78) || !approx(l.ScaleY, 1080.0/22) {
		t.Errorf("scale = %v,%v", l.ScaleX, l.ScaleY)
	}
}

func TestModel_DragEndHandle(t *testing.T) {
	m, _ := newTestModel(t, crop.Original)

	m.Update(mouse(tea.MouseActionPress, 103, 25))
	if got := m.session.Timeline().State(); got != timeline.DraggingEnd {
		t.Fatalf("state after press = %v, want dragging-end", got)
	}
	m.Update(mouse(tea.MouseActionMotion, 52, 40))
	m.Update(mouse(tea.MouseActionRelease, 52, 40))

	if got := m.session.Bounds().End(); !approx(got, 50.0/101*100) {
		t.Errorf("end = %v, want %v", got, 50.0/101*100)
	}
	if got := m.session.Timeline().State(); got != timeline.Idle {
		t.Errorf("state after release = %v, want idle", got)
	}
}

func TestModel_ClickTrackSeeks(t *testing.T) {
	m, p := newTestModel(t, crop.Original)

	m.Update(mouse(tea.MouseActionPress, 52, 26))
	m.Update(mouse(tea.MouseActionRelease, 52, 26))

	want := 50.0 / 101 * 100
	if got := m.session.Bounds().CurrentTime(); !approx(got, want) {
		t.Errorf("current time = %v, want %v", got, want)
	}
	if len(p.seeks) != 1 || !approx(p.seeks[0], want) {
		t.Errorf("player seeks = %v", p.seeks)
	}
}

func TestModel_ClickCancelledByMove(t *testing.T) {
	m, p := newTestModel(t, crop.Original)

	m.Update(mouse(tea.MouseActionPress, 52, 26))
	m.Update(mouse(tea.MouseActionMotion, 60, 26))
	m.Update(mouse(tea.MouseActionRelease, 60, 26))

	if len(p.seeks) != 0 {
		t.Errorf("player seeks = %v, want none", p.seeks)
	}
}

func TestModel_DragCrop(t *testing.T) {
	m, _ := newTestModel(t, crop.Square)

	m.Update(mouse(tea.MouseActionPress, 30, 10))
	if got := m.session.Timeline().State(); got != timeline.DraggingCropBox {
		t.Fatalf("state after press = %v, want dragging-crop", got)
	}
	m.Update(mouse(tea.MouseActionMotion, 35, 3))
	m.Update(mouse(tea.MouseActionRelease, 35, 3))

	c := m.session.Crop()
	if want := 420 + 5*1920.0/78; !approx(c.X, want) {
		t.Errorf("crop x = %v, want %v", c.X, want)
	}
	// Full-height crop cannot move vertically
	if c.Y != 0 || c.Width != 1080 || c.Height != 1080 {
		t.Errorf("crop = %+v", c)
	}
}

func TestModel_TrimKeys(t *testing.T) {
	m, _ := newTestModel(t, crop.Original)

	m.session.Seek(30)
	m.Update(runes("]"))
	m.session.Seek(10)
	m.Update(runes("["))
	m.Update(runes(">"))
	m.Update(runes("l"))

	snap := m.session.Bounds().Snapshot()
	if snap.Start != 10 || snap.End != 30 {
		t.Errorf("range = %v-%v, want 10-30", snap.Start, snap.End)
	}
	if snap.CurrentTime != 12 {
		t.Errorf("current time = %v, want 12", snap.CurrentTime)
	}

	m.Update(runes("0"))
	if got := m.session.Bounds().CurrentTime(); got != 10 {
		t.Errorf("current time after 0 = %v, want 10", got)
	}
	// Stepping back past the start clamps to it
	m.Update(runes("h"))
	if got := m.session.Bounds().CurrentTime(); got != 10 {
		t.Errorf("current time after h = %v, want 10", got)
	}
}

func TestModel_PlaybackKeys(t *testing.T) {
	m, p := newTestModel(t, crop.Original)

	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m.Update(runes("+"))
	m.Update(runes("m"))
	if !p.playing || p.volume != 55 || !p.muted {
		t.Errorf("player = %+v", p)
	}
	m.Update(runes("-"))
	m.Update(runes("-"))
	if p.volume != 45 {
		t.Errorf("volume = %d, want 45", p.volume)
	}
}

func TestModel_CropKeys(t *testing.T) {
	m, _ := newTestModel(t, crop.Original)

	m.Update(runes("r"))
	if m.session.AspectRatio() != crop.Portrait || m.statusBar.Ratio != "9:16" {
		t.Fatalf("ratio = %q, status %q", m.session.AspectRatio(), m.statusBar.Ratio)
	}
	before := m.session.Crop().X
	m.Update(tea.KeyMsg{Type: tea.KeyShiftRight})
	if got := m.session.Crop().X; got != before+defaultNudgeStep {
		t.Errorf("crop x = %v, want %v", got, before+defaultNudgeStep)
	}
}

func TestModel_NudgeStepMsg(t *testing.T) {
	m, _ := newTestModel(t, crop.Portrait)

	m.Update(NudgeStepMsg(25))
	before := m.session.Crop().X
	m.Update(tea.KeyMsg{Type: tea.KeyShiftLeft})
	if got := m.session.Crop().X; got != before-25 {
		t.Errorf("crop x = %v, want %v", got, before-25)
	}

	m.Update(NudgeStepMsg(0))
	if m.nudgeStep != 25 {
		t.Errorf("non-positive step accepted: %v", m.nudgeStep)
	}
}

func typeCommand(m *Model, cmd string) {
	m.Update(runes(":"))
	for _, r := range cmd {
		if r == ' ' {
			m.Update(tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		m.Update(runes(string(r)))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestModel_Commands(t *testing.T) {
	tests := []struct {
		cmd       string
		wantError bool
		check     func(*Model) bool
	}{
		{cmd: "start 5", check: func(m *Model) bool { return m.session.Bounds().Start() == 5 }},
		{cmd: "end 1:20", check: func(m *Model) bool { return m.session.Bounds().End() == 80 }},
		{cmd: "seek 0:42.5", check: func(m *Model) bool { return m.session.Bounds().CurrentTime() == 42.5 }},
		{cmd: "ratio 4:5", check: func(m *Model) bool { return m.session.AspectRatio() == crop.Vertical }},
		{cmd: "volume 20", check: func(m *Model) bool { return m.player.State().Volume == 20 }},
		{cmd: "seek abc", wantError: true},
		{cmd: "ratio wide", wantError: true},
		{cmd: "volume loud", wantError: true},
		{cmd: "bogus", wantError: true},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			m, _ := newTestModel(t, crop.Original)
			typeCommand(m, tt.cmd)
			if m.commandInput.Active {
				t.Error("command mode still active")
			}
			if m.commandInput.IsError != tt.wantError {
				t.Errorf("result = %q, error = %v", m.commandInput.Result, m.commandInput.IsError)
			}
			if tt.check != nil && !tt.check(m) {
				t.Error("command had no effect")
			}
		})
	}
}

func TestModel_CommandHistory(t *testing.T) {
	m, _ := newTestModel(t, crop.Original)
	typeCommand(m, "start 5")
	typeCommand(m, "end 50")

	m.Update(runes(":"))
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.commandInput.Input != "start 5" {
		t.Errorf("input = %q, want %q", m.commandInput.Input, "start 5")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.commandInput.Input != "" {
		t.Errorf("input = %q, want empty", m.commandInput.Input)
	}
}

func TestModel_EnterFinalizes(t *testing.T) {
	m, _ := newTestModel(t, crop.Square)
	m.session.EditStart("5.5")
	m.session.EditEnd("42")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("enter did not quit")
	}

	got, ok := m.Result()
	if !ok {
		t.Fatal("no result after enter")
	}
	want := editor.Settings{
		StartTime: 5.5,
		EndTime:   42,
		Crop:      &editor.CropConfig{X: 420, Y: 0, Width: 1080, Height: 1080, SourceWidth: 1920, SourceHeight: 1080},
	}
	if got.StartTime != want.StartTime || got.EndTime != want.EndTime || *got.Crop != *want.Crop {
		t.Errorf("result = %+v (crop %+v), want %+v", got, got.Crop, want.Crop)
	}
}

func TestModel_DoneCommandEndsDrag(t *testing.T) {
	m, _ := newTestModel(t, crop.Square)
	m.Update(mouse(tea.MouseActionPress, 30, 10))
	if got := m.session.Timeline().State(); got != timeline.DraggingCropBox {
		t.Fatalf("state after press = %v, want dragging-crop", got)
	}

	typeCommand(m, "done")
	if _, ok := m.Result(); !ok {
		t.Fatal("no result after :done")
	}
	if got := m.session.Timeline().State(); got != timeline.Idle {
		t.Errorf("state after :done = %v, want idle", got)
	}
	if n := m.session.Document().Listeners(); n != 0 {
		t.Errorf("%d listeners left after :done", n)
	}
}

func TestModel_QuitWithoutResult(t *testing.T) {
	m, _ := newTestModel(t, crop.Original)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
	if _, ok := m.Result(); ok {
		t.Error("result set after ctrl+c")
	}
}

func TestModel_Forms(t *testing.T) {
	m, _ := newTestModel(t, crop.Original)

	m.Update(runes("R"))
	if m.form == nil || m.formKind != formRatio {
		t.Fatal("ratio form not open")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.form != nil {
		t.Fatal("esc did not close the form")
	}

	m.ratioChoice = crop.Landscape
	m.applyForm(formRatio)
	if m.session.AspectRatio() != crop.Landscape {
		t.Errorf("ratio = %q, want 16:9", m.session.AspectRatio())
	}

	m.session.EditEnd("20")
	m.rangeInput = forms.RangeFormResult{Start: "30", End: "0:40"}
	m.applyForm(formRange)
	if s := m.session.Bounds().Snapshot(); s.Start != 30 || s.End != 40 {
		t.Errorf("range = %v-%v, want 30-40", s.Start, s.End)
	}

	m.discard = true
	if cmd := m.applyForm(formDiscard); cmd == nil || !m.quitting {
		t.Error("confirmed discard did not quit")
	}
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t, crop.Square)
	m.Update(tickMsg{})

	view := m.View()
	lines := strings.Split(view, "\n")
	if len(lines) != 30 {
		t.Errorf("view has %d lines, want 30", len(lines))
	}
	for _, want := range []string{"Timeline", "Video", "Trim", "Crop", "crop=1080:1080:420:0"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m.Update(tea.WindowSizeMsg{Width: 40, Height: 30})
	if !strings.Contains(m.View(), "Terminal too small") {
		t.Error("narrow terminal warning not shown")
	}
}
