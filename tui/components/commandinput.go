// Package components provides reusable TUI components.
package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/user/trimcrop-cli/tui/styles"
)

// CommandInputState holds the state for the command input component.
type CommandInputState struct {
	// Active indicates if command mode is active
	Active bool
	// Input is the current command input buffer
	Input string
	// CursorPos is the cursor position within the input
	CursorPos int
	// Result is the result message to display (success or error)
	Result string
	// IsError indicates if the result is an error message
	IsError bool
	// History holds executed commands, oldest first
	History []string
	// historyPos indexes History while browsing; len(History) means the fresh line
	historyPos int
}

// maxHistory bounds the command history.
const maxHistory = 50

var (
	commandLine   = lipgloss.NewStyle().Background(styles.DarkPurple)
	commandPrompt = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	commandText   = lipgloss.NewStyle().Foreground(styles.LightLavender)
	commandCursor = lipgloss.NewStyle().Foreground(styles.DarkPurple).Background(styles.Cyan)
	commandOK     = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	commandErr    = lipgloss.NewStyle().Foreground(styles.Red).Bold(true)
	commandHint   = lipgloss.NewStyle().Foreground(styles.Purple).Italic(true)
)

// CommandInput renders the bottom line: the ':' prompt while typing, otherwise the last
// command's result, otherwise a hint.
func CommandInput(state CommandInputState, width int) string {
	line := commandLine.Width(width)
	switch {
	case state.Active:
		r := []rune(state.Input)
		pos := min(max(state.CursorPos, 0), len(r))
		under := " "
		rest := ""
		if pos < len(r) {
			under = string(r[pos])
			rest = string(r[pos+1:])
		}
		return line.Render(commandPrompt.Render(":") +
			commandText.Render(string(r[:pos])) +
			commandCursor.Render(under) +
			commandText.Render(rest))
	case state.Result != "" && state.IsError:
		return line.Render(" " + commandErr.Render(state.Result))
	case state.Result != "":
		return line.Render(" " + commandOK.Render(state.Result))
	default:
		return line.Render(" " + commandHint.Render(": command  ? help  enter finalize"))
	}
}

// The editing operations treat CursorPos as a rune index into Input.

// InsertChar inserts c at the cursor.
func (s *CommandInputState) InsertChar(c rune) {
	r := []rune(s.Input)
	pos := s.clampCursor(len(r))
	r = append(r[:pos], append([]rune{c}, r[pos:]...)...)
	s.Input = string(r)
	s.CursorPos = pos + 1
}

// Backspace deletes the rune before the cursor.
func (s *CommandInputState) Backspace() {
	r := []rune(s.Input)
	pos := s.clampCursor(len(r))
	if pos == 0 {
		return
	}
	s.Input = string(append(r[:pos-1], r[pos:]...))
	s.CursorPos = pos - 1
}

// Delete deletes the rune under the cursor.
func (s *CommandInputState) Delete() {
	r := []rune(s.Input)
	pos := s.clampCursor(len(r))
	if pos < len(r) {
		s.Input = string(append(r[:pos], r[pos+1:]...))
	}
}

// MoveCursorLeft moves the cursor one rune left.
func (s *CommandInputState) MoveCursorLeft() {
	if s.CursorPos > 0 {
		s.CursorPos--
	}
}

// MoveCursorRight moves the cursor one rune right.
func (s *CommandInputState) MoveCursorRight() {
	if s.CursorPos < len([]rune(s.Input)) {
		s.CursorPos++
	}
}

func (s *CommandInputState) clampCursor(n int) int {
	s.CursorPos = min(max(s.CursorPos, 0), n)
	return s.CursorPos
}

// Clear empties the input and leaves command mode.
func (s *CommandInputState) Clear() {
	s.Input = ""
	s.CursorPos = 0
	s.Active = false
}

// GetCommand returns the current command and clears the input.
func (s *CommandInputState) GetCommand() string {
	cmd := s.Input
	s.Clear()
	return cmd
}

// Activate opens command mode with an empty line.
func (s *CommandInputState) Activate() {
	s.Active = true
	s.Input = ""
	s.CursorPos = 0
	s.historyPos = len(s.History)
	s.ClearResult()
}

// Remember appends cmd to the history, skipping immediate repeats.
func (s *CommandInputState) Remember(cmd string) {
	if cmd == "" || (len(s.History) > 0 && s.History[len(s.History)-1] == cmd) {
		return
	}
	s.History = append(s.History, cmd)
	if len(s.History) > maxHistory {
		s.History = s.History[len(s.History)-maxHistory:]
	}
}

// HistoryPrev replaces the input with the previous history entry.
func (s *CommandInputState) HistoryPrev() {
	if s.historyPos <= 0 || len(s.History) == 0 {
		return
	}
	s.historyPos--
	s.Input = s.History[s.historyPos]
	s.CursorPos = len([]rune(s.Input))
}

// HistoryNext moves forward through the history, ending on an empty line.
func (s *CommandInputState) HistoryNext() {
	if s.historyPos >= len(s.History) {
		return
	}
	s.historyPos++
	if s.historyPos == len(s.History) {
		s.Input = ""
	} else {
		s.Input = s.History[s.historyPos]
	}
	s.CursorPos = len([]rune(s.Input))
}

// SetResult sets the result message.
func (s *CommandInputState) SetResult(msg string, isError bool) {
	s.Result = msg
	s.IsError = isError
}

// ClearResult clears the result message.
func (s *CommandInputState) ClearResult() {
	s.Result = ""
	s.IsError = false
}
