package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/trimcrop-cli/pkg/timeutil"
	"github.com/user/trimcrop-cli/trim"
	"github.com/user/trimcrop-cli/tui/styles"
)

// Timeline box geometry, relative to the box's top-left cell.
const (
	TimelineHeight = 6
	// TimelineBarRow is the row holding the trim bar; the playhead row follows it.
	TimelineBarRow = 2
	// TimelineBarCol is the column of the first bar cell (border plus one space).
	TimelineBarCol = 2
)

// TimelineBarWidth returns how many cells the trim bar occupies in a box of the given
// width. The time readout is sized from duration so the bar does not shift during playback.
func TimelineBarWidth(width int, duration float64) int {
	innerWidth := width - 4
	if innerWidth < 10 {
		innerWidth = 10
	}
	barWidth := innerWidth - lipgloss.Width(timeReadout(duration, duration)) - 2
	if barWidth < 10 {
		barWidth = 10
	}
	return barWidth
}

// BarPosition maps seconds onto a bar cell index.
func BarPosition(seconds, duration float64, barWidth int) int {
	if duration <= 0 || barWidth < 1 {
		return 0
	}
	pos := int(math.Round(float64(barWidth-1) * trim.Clamp(seconds/duration, 0, 1)))
	if pos < 0 {
		pos = 0
	}
	if pos > barWidth-1 {
		pos = barWidth - 1
	}
	return pos
}

// timeReadout renders " cur / total" with cur padded to the width of total.
func timeReadout(current, duration float64) string {
	total := timeutil.FormatTime(duration)
	cur := timeutil.FormatTime(current)
	if pad := len(total) - len(cur); pad > 0 {
		cur = strings.Repeat(" ", pad) + cur
	}
	return fmt.Sprintf(" %s / %s", cur, total)
}

// Timeline renders the trim bar in a bordered container: the kept range between the
// [ and ] handles and a ▲ under the playhead.
// Total output height is 6 lines: top border, padding, bar, playhead, padding, bottom border.
func Timeline(s trim.Snapshot, width int) string {
	if width < 20 {
		return ""
	}

	timeStyle := lipgloss.NewStyle().Foreground(styles.LightLavender).Bold(true)

	barWidth := TimelineBarWidth(width, s.Duration)
	startPos := BarPosition(s.Start, s.Duration, barWidth)
	endPos := BarPosition(s.End, s.Duration, barWidth)
	headPos := BarPosition(s.CurrentTime, s.Duration, barWidth)

	var barBuilder strings.Builder
	for i := 0; i < barWidth; i++ {
		switch {
		case i == startPos && i == endPos:
			barBuilder.WriteString(styles.Handle.Render("|"))
		case i == startPos:
			barBuilder.WriteString(styles.Handle.Render("["))
		case i == endPos:
			barBuilder.WriteString(styles.Handle.Render("]"))
		case i > startPos && i < endPos:
			barBuilder.WriteString(styles.Selection.Render("━"))
		default:
			barBuilder.WriteString(styles.Excluded.Render("─"))
		}
	}
	barLine := " " + barBuilder.String() + " " + timeStyle.Render(timeReadout(s.CurrentTime, s.Duration))

	var indicatorBuilder strings.Builder
	indicatorBuilder.WriteString(" ")
	indicatorBuilder.WriteString(strings.Repeat(" ", headPos))
	indicatorBuilder.WriteString(styles.Playhead.Render("▲"))

	// Build bordered box with tab-style "Timeline" header
	headerStyle := lipgloss.NewStyle().Foreground(styles.Pink).Bold(true)
	borderStyle := lipgloss.NewStyle().Foreground(styles.Purple)

	boxInner := width - 2

	headerText := headerStyle.Render(" Timeline ")
	fillWidth := boxInner - 1 - lipgloss.Width(headerText)
	if fillWidth < 0 {
		fillWidth = 0
	}
	topLine := borderStyle.Render("╭─") + headerText + borderStyle.Render(strings.Repeat("─", fillWidth)) + borderStyle.Render("╮")

	wrapLine := func(content string) string {
		pad := boxInner - lipgloss.Width(content)
		if pad < 0 {
			pad = 0
		}
		return borderStyle.Render("│") + content + strings.Repeat(" ", pad) + borderStyle.Render("│")
	}
	emptyLine := wrapLine("")
	bottomLine := borderStyle.Render("╰" + strings.Repeat("─", boxInner) + "╯")

	return strings.Join([]string{
		topLine,
		emptyLine,
		wrapLine(barLine),
		wrapLine(indicatorBuilder.String()),
		emptyLine,
		bottomLine,
	}, "\n")
}
