package layout

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/trimcrop-cli/tui/styles"
)

// Container clips content to an exact Width x Height cell box.
// Content taller than the box loses its tail and the last row says how many rows
// were hidden. Align positions each row horizontally; the zero value is left.
type Container struct {
	Width  int
	Height int
	Align  lipgloss.Position
}

var moreStyle = lipgloss.NewStyle().Foreground(styles.Purple)

// Render returns content as exactly Height rows of Width cells.
func (c Container) Render(content string) string {
	if c.Height <= 0 {
		return ""
	}
	lines := NormalizeLines(strings.Split(content, "\n"), c.Height)
	if hidden := strings.Count(content, "\n") + 1 - c.Height; hidden > 0 {
		lines[c.Height-1] = moreStyle.Render(fmt.Sprintf("↓ %d more", hidden+1))
	}
	for i, line := range lines {
		if c.Align != lipgloss.Left && lipgloss.Width(line) < c.Width {
			line = lipgloss.PlaceHorizontal(c.Width, c.Align, line)
		}
		lines[i] = PadToWidth(line, c.Width)
	}
	return strings.Join(lines, "\n")
}
