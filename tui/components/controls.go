package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/trimcrop-cli/tui/styles"
)

// Control represents a single control with its display info.
type Control struct {
	Name     string
	Shortcut string
}

// ControlGroup represents a group of related controls.
type ControlGroup struct {
	Name     string
	Controls []Control
}

// GetControlGroups returns the editor's key bindings, grouped for display.
func GetControlGroups() []ControlGroup {
	return []ControlGroup{
		{
			Name: "Playback",
			Controls: []Control{
				{Name: "Play / pause", Shortcut: "Space"},
				{Name: "Step back", Shortcut: "H / ←"},
				{Name: "Step forward", Shortcut: "L / →"},
				{Name: "Step size -/+", Shortcut: "< / >"},
				{Name: "Volume -/+", Shortcut: "- / +"},
				{Name: "Mute", Shortcut: "M"},
			},
		},
		{
			Name: "Trim",
			Controls: []Control{
				{Name: "Start at playhead", Shortcut: "["},
				{Name: "End at playhead", Shortcut: "]"},
				{Name: "Go to start", Shortcut: "0"},
				{Name: "Type range", Shortcut: "E"},
				{Name: "Drag handles", Shortcut: "Mouse"},
			},
		},
		{
			Name: "Crop",
			Controls: []Control{
				{Name: "Next ratio", Shortcut: "R"},
				{Name: "Pick ratio", Shortcut: "Shift+R"},
				{Name: "Move crop", Shortcut: "Shift+Arrows"},
				{Name: "Drag crop", Shortcut: "Mouse"},
			},
		},
		{
			Name: "Session",
			Controls: []Control{
				{Name: "Command mode", Shortcut: ":"},
				{Name: "Reset", Shortcut: "Ctrl+R"},
				{Name: "Finish", Shortcut: "Enter"},
				{Name: "Help", Shortcut: "?"},
				{Name: "Quit", Shortcut: "Q / Ctrl+C"},
			},
		},
	}
}

// RenderInfoBox renders a generic bordered box with a tab-style header and content lines.
// Content lines are rendered as-is (caller handles styling).
func RenderInfoBox(title string, contentLines []string, width int) string {
	if width < 4 {
		return ""
	}

	innerWidth := width - 2

	headerStyle := lipgloss.NewStyle().Foreground(styles.Pink).Bold(true)
	borderStyle := lipgloss.NewStyle().Foreground(styles.Purple)

	// Tab header: ╭─ Title ─────╮
	headerText := headerStyle.Render(" " + title + " ")
	fillWidth := innerWidth - 1 - lipgloss.Width(headerText)
	if fillWidth < 0 {
		fillWidth = 0
	}
	topLine := borderStyle.Render("╭─") + headerText + borderStyle.Render(strings.Repeat("─", fillWidth)) + borderStyle.Render("╮")

	renderedLines := []string{topLine}
	for _, line := range contentLines {
		pad := innerWidth - lipgloss.Width(line)
		if pad < 0 {
			pad = 0
		}
		renderedLines = append(renderedLines, borderStyle.Render("│")+line+strings.Repeat(" ", pad)+borderStyle.Render("│"))
	}

	// Bottom border: ╰──────────────╯
	renderedLines = append(renderedLines, borderStyle.Render("╰"+strings.Repeat("─", innerWidth)+"╯"))

	return strings.Join(renderedLines, "\n")
}
