// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/trimcrop-cli/pkg/timeutil"
	"github.com/user/trimcrop-cli/tui/styles"
)

// StatusBarState holds the current playback state for the status bar.
type StatusBarState struct {
	// Title is the video being edited
	Title string
	// Ready is false until the player reports the media loaded
	Ready bool
	// Playing indicates if playback is running
	Playing bool
	// Muted indicates if audio is muted
	Muted bool
	// Volume is the player volume, 0-100
	Volume int
	// TimePos is the current playback position in seconds
	TimePos float64
	// Duration is the total video duration in seconds
	Duration float64
	// StepSize is the current seek step size in seconds
	StepSize float64
	// Ratio is the selected crop aspect ratio
	Ratio string
	// Err is the last playback error, if any
	Err error
}

// StatusBar renders the status bar component.
// The left side shows the play state and position, the right side the step size,
// ratio, volume and a mute icon when muted.
func StatusBar(state StatusBarState, width int) string {
	var playIcon string
	switch {
	case state.Err != nil:
		playIcon = "✗"
	case !state.Ready:
		playIcon = "…"
	case state.Playing:
		playIcon = "▶"
	default:
		playIcon = "⏸"
	}

	leftContent := fmt.Sprintf(" %s %s / %s", playIcon,
		timeutil.Format(state.TimePos, timeutil.Millisecond), timeutil.FormatTime(state.Duration))
	if state.Title != "" {
		leftContent += "  " + state.Title
	}

	var muteIcon string
	if state.Muted {
		muteIcon = " 🔇"
	}
	rightContent := fmt.Sprintf("Step: %s  Ratio: %s  Vol: %d%s ",
		formatStepSize(state.StepSize), state.Ratio, state.Volume, muteIcon)

	padding := width - lipgloss.Width(leftContent) - lipgloss.Width(rightContent)
	if padding < 1 {
		// Drop the title before anything else
		leftContent = fmt.Sprintf(" %s %s", playIcon, timeutil.Format(state.TimePos, timeutil.Millisecond))
		padding = max(width-lipgloss.Width(leftContent)-lipgloss.Width(rightContent), 0)
	}

	statusBarStyle := lipgloss.NewStyle().
		Background(styles.DarkPurple).
		Foreground(styles.LightLavender).
		Bold(true).
		Width(width).
		MaxWidth(width)

	return statusBarStyle.Render(leftContent + strings.Repeat(" ", padding) + rightContent)
}

// formatStepSize formats the step size for display.
// Shows decimal for values less than 1, otherwise whole number.
func formatStepSize(stepSize float64) string {
	if stepSize < 1 {
		return fmt.Sprintf("%.1fs", stepSize)
	}
	return fmt.Sprintf("%.0fs", stepSize)
}
