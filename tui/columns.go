package tui

import (
	"github.com/user/trimcrop-cli/crop"
	"github.com/user/trimcrop-cli/timeline"
	"github.com/user/trimcrop-cli/tui/components"
	"github.com/user/trimcrop-cli/tui/layout"
)

// Screen rows above the body: the status bar.
const bodyTop = 1

// syncLayout recomputes the frame fit and hands the timeline controller the screen
// positions of the trim bar and the crop box.
func (m *Model) syncLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	meta := m.session.Meta()
	frameWidth, _, _ := layout.ComputeColumnWidths(m.width)
	bodyHeight := layout.BodyHeight(m.height)

	m.frame = components.FitFrame(meta.Width, meta.Height, frameWidth, bodyHeight)
	ov := crop.ToOverlayPercent(m.session.Crop(), float64(meta.Width), float64(meta.Height))
	m.cropCells = components.CropCells(ov, m.frame)

	l := timeline.Layout{
		Track: timeline.Track{Box: timeline.Box{
			Left:   components.TimelineBarCol,
			Top:    float64(bodyTop + bodyHeight + components.TimelineBarRow),
			Width:  float64(components.TimelineBarWidth(m.width, meta.Duration) - 1),
			Height: 2,
		}},
		CropBox: timeline.Box{
			Left:   float64(m.frame.Left + m.cropCells.Left),
			Top:    float64(bodyTop + m.frame.Top + m.cropCells.Top),
			Width:  float64(m.cropCells.Width),
			Height: float64(m.cropCells.Height),
		},
	}
	if m.frame.Width > 0 && m.frame.Height > 0 {
		l.ScaleX = float64(meta.Width) / float64(m.frame.Width)
		l.ScaleY = float64(meta.Height) / float64(m.frame.Height)
	}
	m.session.Timeline().SetLayout(l)
}

// renderBody renders the frame preview and, when there is room, the info column.
func (m *Model) renderBody(height int) string {
	frameWidth, infoWidth, showInfo := layout.ComputeColumnWidths(m.width)
	frame := components.FramePreview(m.frame, m.cropCells, frameWidth, height)
	if !showInfo {
		return layout.Container{Width: frameWidth, Height: height}.Render(frame)
	}

	info := components.InfoPanel(m.infoState(), infoWidth)
	return layout.JoinColumns(
		[]string{frame, layout.Container{Width: infoWidth, Height: height}.Render(info)},
		[]int{frameWidth, infoWidth},
		height,
	)
}

func (m *Model) infoState() components.InfoState {
	state := components.InfoState{
		Meta:  m.session.Meta(),
		Trim:  m.session.Bounds().Snapshot(),
		Ratio: m.session.AspectRatio(),
		Crop:  m.session.Crop(),
	}
	switch {
	case m.statusBar.Err != nil:
		state.Status = "Playback: " + m.statusBar.Err.Error()
	case !m.statusBar.Ready:
		state.Status = "Loading player..."
	case m.session.Timeline().State() != timeline.Idle:
		state.Status = m.session.Timeline().State().String()
	}
	return state
}
