package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/trimcrop-cli/tui/styles"
)

// Responsive layout constants.
const (
	MinTerminalWidth  = 60 // minimum terminal width for the editor
	MinTerminalHeight = 16 // minimum height: chrome plus a few preview rows
	InfoMinWidth      = 28 // minimum width for the info column
	InfoHideThreshold = 80 // below this width, the info column is hidden

	// ChromeHeight is the rows used by the status bar, timeline box and command line.
	ChromeHeight = 8
)

// ComputeColumnWidths splits the body between the frame preview and the info column.
// Returns both widths and whether the info column should be shown.
// At >=120 width: info gets a third. At 80-119: info gets its minimum.
// Below 80 the frame preview takes the whole width.
func ComputeColumnWidths(termWidth int) (frame, info int, showInfo bool) {
	showInfo = termWidth >= InfoHideThreshold
	if !showInfo {
		return termWidth, 0, false
	}

	// One border character between the columns
	usableWidth := termWidth - 1
	if termWidth >= 120 {
		info = usableWidth / 3
	} else {
		info = InfoMinWidth
	}
	frame = usableWidth - info
	return frame, info, true
}

// BodyHeight returns the rows left for the columns once the chrome is drawn.
func BodyHeight(termHeight int) int {
	h := termHeight - ChromeHeight
	if h < 1 {
		h = 1
	}
	return h
}

// JoinColumns joins pre-rendered column strings side by side with purple border separators.
// Each column is normalized to the given height and padded to its width.
func JoinColumns(columns []string, widths []int, height int) string {
	borderStr := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Render("│")

	// Split each column into lines and normalize to height
	colLines := make([][]string, len(columns))
	for i, col := range columns {
		colLines[i] = NormalizeLines(strings.Split(col, "\n"), height)
	}

	var rows []string
	for row := 0; row < height; row++ {
		var parts []string
		for i, lines := range colLines {
			parts = append(parts, PadToWidth(lines[row], widths[i]))
		}
		rows = append(rows, strings.Join(parts, borderStr))
	}

	return strings.Join(rows, "\n")
}
