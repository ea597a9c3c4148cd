package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/trimcrop-cli/crop"
	"github.com/user/trimcrop-cli/media"
	"github.com/user/trimcrop-cli/pkg/timeutil"
	"github.com/user/trimcrop-cli/trim"
	"github.com/user/trimcrop-cli/tui/styles"
)

// InfoState is what the info column shows.
type InfoState struct {
	Meta   media.VideoMetadata
	Trim   trim.Snapshot
	Ratio  crop.AspectRatio
	Crop   *crop.Rect
	Status string
}

// InfoPanel renders the video, trim and crop boxes stacked in one column.
func InfoPanel(state InfoState, width int) string {
	label := lipgloss.NewStyle().Foreground(styles.Lavender)
	value := lipgloss.NewStyle().Foreground(styles.LightLavender)
	row := func(k, v string) string {
		return " " + label.Render(fmt.Sprintf("%-8s", k)) + value.Render(v)
	}
	ms := func(t float64) string { return timeutil.Format(t, timeutil.Millisecond) }

	video := []string{
		row("Title", state.Meta.Title),
		row("Source", string(state.Meta.Source)),
		row("Size", fmt.Sprintf("%dx%d", state.Meta.Width, state.Meta.Height)),
		row("Length", timeutil.FormatTime(state.Meta.Duration)),
	}

	t := state.Trim
	trimLines := []string{
		row("Start", ms(t.Start)),
		row("End", ms(t.End)),
		row("Keep", ms(t.Length())),
		row("At", ms(t.CurrentTime)),
	}

	cropLines := []string{row("Ratio", string(state.Ratio))}
	if state.Crop != nil {
		r := state.Crop.Rounded()
		cropLines = append(cropLines,
			row("Rect", r.String()),
			row("Filter", r.Filter()),
		)
	} else {
		cropLines = append(cropLines, row("Rect", "full frame"))
	}

	boxes := []string{
		RenderInfoBox("Video", video, width),
		RenderInfoBox("Trim", trimLines, width),
		RenderInfoBox("Crop", cropLines, width),
	}
	if state.Status != "" {
		boxes = append(boxes, " "+styles.SecondaryText.Render(state.Status))
	}
	return strings.Join(boxes, "\n")
}
