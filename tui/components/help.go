// Package components provides reusable TUI components.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/trimcrop-cli/tui/styles"
)

// CommandNames lists the ':' commands shown under the key bindings.
var CommandNames = []string{"start", "end", "seek", "ratio", "reset", "volume", "mute", "play", "pause", "done", "quit"}

var (
	helpTitle  = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true).Padding(0, 1)
	helpGroup  = lipgloss.NewStyle().Foreground(styles.Pink).Bold(true)
	helpKey    = lipgloss.NewStyle().Foreground(styles.Lavender).Bold(true).Width(14)
	helpDesc   = lipgloss.NewStyle().Foreground(styles.LightLavender)
	helpFooter = lipgloss.NewStyle().Foreground(styles.Lavender).Italic(true)
	helpPanel  = lipgloss.NewStyle().
			Background(styles.DarkPurple).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.BrightPurple).
			Padding(1, 2)
)

// helpGroupBlock renders one group of bindings.
func helpGroupBlock(g ControlGroup) string {
	lines := []string{helpGroup.Render(g.Name)}
	for _, c := range g.Controls {
		lines = append(lines, "  "+helpKey.Render(c.Shortcut)+helpDesc.Render(c.Name))
	}
	return strings.Join(lines, "\n")
}

// HelpOverlay renders every key binding in a panel centred in a width x height area.
// Groups are laid out in two columns when the area is wide enough.
func HelpOverlay(width, height int) string {
	groups := GetControlGroups()
	blocks := make([]string, len(groups))
	widest := 0
	for i, g := range groups {
		blocks[i] = helpGroupBlock(g)
		widest = max(widest, lipgloss.Width(blocks[i]))
	}

	var body string
	if width >= 2*widest+12 && len(blocks) > 1 {
		half := (len(blocks) + 1) / 2
		left := strings.Join(blocks[:half], "\n\n")
		right := strings.Join(blocks[half:], "\n\n")
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, "    ", right)
	} else {
		body = strings.Join(blocks, "\n\n")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		helpTitle.Render("Keybindings"),
		"",
		body,
		"",
		helpFooter.Render("Commands: "+strings.Join(CommandNames, ", ")),
		helpFooter.Render("Press any key to close"),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, helpPanel.Render(content))
}
