package tui

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/user/trimcrop-cli/crop"
	"github.com/user/trimcrop-cli/editor"
	"github.com/user/trimcrop-cli/pkg/timeutil"
	"github.com/user/trimcrop-cli/playback"
	"github.com/user/trimcrop-cli/timeline"
	"github.com/user/trimcrop-cli/tui/components"
	"github.com/user/trimcrop-cli/tui/forms"
	"github.com/user/trimcrop-cli/tui/layout"
	"github.com/user/trimcrop-cli/tui/styles"
)

const (
	// tickInterval is the interval for refreshing playback status.
	tickInterval = 100 * time.Millisecond
	// defaultStepSize is the default seek step size in seconds.
	defaultStepSize = 1.0
	// defaultNudgeStep is how many source pixels a crop nudge moves.
	defaultNudgeStep = 10.0
	// volumeStep is the change per volume key press.
	volumeStep = 5
	// resultDisplayDuration is how long to show command results.
	resultDisplayDuration = 3 * time.Second
)

// stepSizes defines the available step sizes for seek operations.
// Users can cycle through these with < and > keys.
var stepSizes = []float64{0.1, 0.5, 1, 2, 5, 10, 30}

// tickMsg is a message sent on every tick interval to update playback status.
type tickMsg time.Time

// clearResultMsg is sent to clear the command result message.
type clearResultMsg struct{}

// Player is the playback surface the editor drives. *playback.Controller satisfies it.
type Player interface {
	editor.Player
	Play() error
	Pause() error
	TogglePlay() error
	SetVolume(v int) error
	ToggleMute() error
	State() playback.State
}

// formKind identifies which huh form is open.
type formKind int

const (
	formNone formKind = iota
	formRatio
	formRange
	formDiscard
)

// Options tunes the editor.
type Options struct {
	// NudgeStep is how many source pixels shift+arrow moves the crop.
	NudgeStep float64
	// Logger receives debug output; nil discards it.
	Logger *slog.Logger
	// NudgeUpdates delivers new nudge steps while the editor runs, e.g. from a
	// config file watcher. Run stops reading when the program exits.
	NudgeUpdates <-chan float64
}

// NudgeStepMsg changes the crop nudge step of a running editor.
type NudgeStepMsg float64

// Model is the Bubbletea model for the editor.
// It implements the tea.Model interface with Init, Update, and View methods.
type Model struct {
	session *editor.Session
	player  Player
	logger  *slog.Logger

	nudgeStep float64

	// terminal size
	width  int
	height int

	statusBar    components.StatusBarState
	commandInput components.CommandInputState
	showHelp     bool

	// open form, if any, and the values it is bound to
	form        *huh.Form
	formKind    formKind
	ratioChoice crop.AspectRatio
	rangeInput  forms.RangeFormResult
	discard     bool

	// frame is the fitted preview relative to the frame panel; cropCells is relative to frame
	frame     components.CellRect
	cropCells components.CellRect

	result   *editor.Settings
	quitting bool
}

// NewModel creates an editor model over session, with player driving playback.
func NewModel(session *editor.Session, player Player, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	nudge := opts.NudgeStep
	if nudge <= 0 {
		nudge = defaultNudgeStep
	}
	return &Model{
		session:   session,
		player:    player,
		logger:    logger,
		nudgeStep: nudge,
		statusBar: components.StatusBarState{
			Title:    session.Meta().Title,
			Duration: session.Meta().Duration,
			StepSize: defaultStepSize,
			Ratio:    string(session.AspectRatio()),
		},
	}
}

// Result returns the finalized settings, and false when the user quit without finishing.
func (m *Model) Result() (editor.Settings, bool) {
	if m.result == nil {
		return editor.Settings{}, false
	}
	return *m.result, true
}

// Init initializes the model. It returns an optional command to run.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tickMsg after the tick interval.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model state. Every pass ends by re-syncing
// the pointer layout so hit tests match what the next View draws.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.syncLayout()
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.form != nil {
			return m.updateForm(msg)
		}
		return nil

	case tickMsg:
		m.refreshStatus()
		return tickCmd()

	case clearResultMsg:
		m.commandInput.ClearResult()
		return nil

	case NudgeStepMsg:
		if msg > 0 {
			m.nudgeStep = float64(msg)
			m.logger.Debug("nudge step changed", "step", m.nudgeStep)
		}
		return nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.handleMouse(msg)
		return nil

	case tea.KeyMsg:
		// Help overlay - any key dismisses it
		if m.showHelp {
			m.showHelp = false
			return nil
		}
		if m.commandInput.Active {
			return m.handleCommandInput(msg)
		}
		return m.handleKey(msg)
	}
	return nil
}

// handleKey handles key events in normal mode.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	bounds := m.session.Bounds()

	switch msg.String() {
	case "?":
		m.showHelp = true
	case "ctrl+c":
		m.session.Close()
		m.quitting = true
		return tea.Quit
	case "q", "Q":
		return m.openForm(formDiscard)
	case ":":
		m.commandInput.Activate()
	case "enter":
		return m.finalize()
	case " ":
		return m.report(m.player.TogglePlay())
	case "m", "M":
		return m.report(m.player.ToggleMute())
	case "h", "H", "left":
		m.session.Seek(bounds.CurrentTime() - m.statusBar.StepSize)
	case "l", "L", "right":
		m.session.Seek(bounds.CurrentTime() + m.statusBar.StepSize)
	case "<", ",":
		m.decreaseStepSize()
	case ">", ".":
		m.increaseStepSize()
	case "+", "=":
		return m.report(m.player.SetVolume(m.player.State().Volume + volumeStep))
	case "-", "_":
		return m.report(m.player.SetVolume(m.player.State().Volume - volumeStep))
	case "[":
		m.session.MarkStartAtPlayhead()
	case "]":
		m.session.MarkEndAtPlayhead()
	case "0":
		m.session.Seek(bounds.Start())
	case "e", "E":
		return m.openForm(formRange)
	case "r":
		m.statusBar.Ratio = string(m.session.CycleAspectRatio())
	case "R":
		return m.openForm(formRatio)
	case "shift+left":
		m.session.NudgeCrop(-m.nudgeStep, 0)
	case "shift+right":
		m.session.NudgeCrop(m.nudgeStep, 0)
	case "shift+up":
		m.session.NudgeCrop(0, -m.nudgeStep)
	case "shift+down":
		m.session.NudgeCrop(0, m.nudgeStep)
	case "ctrl+r":
		m.session.Reset()
		return m.showResult("Reset to the whole video", false)
	}
	return nil
}

// handleMouse routes pointer events: presses go to the timeline controller, moves and
// releases to the document so an active drag follows the pointer anywhere on screen.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := timeline.Point{X: float64(msg.X), Y: float64(msg.Y)}
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.session.Timeline().PointerDown(p)
		case tea.MouseButtonWheelUp:
			m.session.Seek(m.session.Bounds().CurrentTime() + m.statusBar.StepSize)
		case tea.MouseButtonWheelDown:
			m.session.Seek(m.session.Bounds().CurrentTime() - m.statusBar.StepSize)
		}
	case tea.MouseActionMotion:
		m.session.Document().DispatchMove(p)
	case tea.MouseActionRelease:
		m.session.Document().DispatchUp(p)
	}
}

// handleCommandInput handles key events when in command mode.
func (m *Model) handleCommandInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.commandInput.Clear()
		return nil

	case "enter":
		cmd := strings.TrimSpace(m.commandInput.GetCommand())
		if cmd == "" {
			return nil
		}
		m.commandInput.Remember(cmd)
		m.logger.Debug("command", "input", cmd)

		result, err := m.executeCommand(cmd)
		if err != nil {
			return m.showResult("Error: "+err.Error(), true)
		}
		if m.quitting {
			return tea.Quit
		}
		if m.result != nil {
			return tea.Quit
		}
		return m.showResult(result, false)

	case "backspace":
		m.commandInput.Backspace()
	case "delete":
		m.commandInput.Delete()
	case "left":
		m.commandInput.MoveCursorLeft()
	case "right":
		m.commandInput.MoveCursorRight()
	case "up":
		m.commandInput.HistoryPrev()
	case "down":
		m.commandInput.HistoryNext()
	default:
		// Insert character if it's a printable rune
		if msg.Type == tea.KeyRunes {
			for _, r := range msg.Runes {
				m.commandInput.InsertChar(r)
			}
		} else if msg.Type == tea.KeySpace {
			m.commandInput.InsertChar(' ')
		}
	}
	return nil
}

// executeCommand parses and executes a command string.
// Returns a result message or an error.
func (m *Model) executeCommand(cmdStr string) (string, error) {
	parts := strings.Fields(cmdStr)
	if len(parts) == 0 {
		return "", nil
	}

	cmd := parts[0]
	args := parts[1:]
	bounds := m.session.Bounds()
	ms := func(t float64) string { return timeutil.Format(t, timeutil.Millisecond) }

	switch cmd {
	case "start", "s":
		if len(args) == 0 {
			return "Start " + ms(m.session.MarkStartAtPlayhead()), nil
		}
		if !m.session.EditStart(args[0]) {
			return "", fmt.Errorf("invalid time: %s", args[0])
		}
		return "Start " + ms(bounds.Start()), nil
	case "end", "e":
		if len(args) == 0 {
			return "End " + ms(m.session.MarkEndAtPlayhead()), nil
		}
		if !m.session.EditEnd(args[0]) {
			return "", fmt.Errorf("invalid time: %s", args[0])
		}
		return "End " + ms(bounds.End()), nil
	case "seek":
		if len(args) < 1 {
			return "", errors.New("seek requires a time argument (e.g., seek 1:30 or seek 90)")
		}
		if !m.session.EditSeek(args[0]) {
			return "", fmt.Errorf("invalid time: %s", args[0])
		}
		return "Seeked to " + ms(bounds.CurrentTime()), nil
	case "ratio", "r":
		if len(args) == 0 {
			r := m.session.CycleAspectRatio()
			m.statusBar.Ratio = string(r)
			return "Ratio " + forms.RatioLabel(r), nil
		}
		r, err := crop.ParseAspectRatio(args[0])
		if err != nil {
			return "", err
		}
		m.session.SetAspectRatio(r)
		m.statusBar.Ratio = string(r)
		return "Ratio " + forms.RatioLabel(r), nil
	case "reset":
		m.session.Reset()
		return "Reset to the whole video", nil
	case "volume", "vol":
		if len(args) < 1 {
			return fmt.Sprintf("Volume: %d", m.player.State().Volume), nil
		}
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("invalid volume: %s", args[0])
		}
		if err := m.player.SetVolume(v); err != nil {
			return "", err
		}
		return fmt.Sprintf("Volume set to %d", m.player.State().Volume), nil
	case "mute", "m":
		if err := m.player.ToggleMute(); err != nil {
			return "", err
		}
		if m.player.State().Muted {
			return "Muted", nil
		}
		return "Unmuted", nil
	case "play":
		if err := m.player.Play(); err != nil {
			return "", err
		}
		return "Playing", nil
	case "pause", "p":
		if err := m.player.Pause(); err != nil {
			return "", err
		}
		return "Paused", nil
	case "done", "finalize", "wq":
		settings := m.session.Finalize()
		if err := settings.Validate(m.session.Meta().Duration); err != nil {
			return "", err
		}
		m.session.Close()
		m.result = &settings
		return "", nil
	case "q", "quit":
		m.session.Close()
		m.quitting = true
		return "", nil
	case "help", "h":
		return "Commands: " + strings.Join(components.CommandNames, ", "), nil
	default:
		return "", fmt.Errorf("unknown command: %s", cmd)
	}
}

// finalize records the current settings and quits.
func (m *Model) finalize() tea.Cmd {
	settings := m.session.Finalize()
	if err := settings.Validate(m.session.Meta().Duration); err != nil {
		return m.showResult("Error: "+err.Error(), true)
	}
	m.session.Close()
	m.result = &settings
	return tea.Quit
}

// openForm starts one of the huh forms, seeded from the current session.
func (m *Model) openForm(kind formKind) tea.Cmd {
	m.session.Close()
	switch kind {
	case formRatio:
		m.ratioChoice = m.session.AspectRatio()
		m.form = forms.NewAspectRatioForm(&m.ratioChoice)
	case formRange:
		s := m.session.Bounds().Snapshot()
		m.rangeInput = forms.RangeFormResult{
			Start: timeutil.Format(s.Start, timeutil.Millisecond),
			End:   timeutil.Format(s.End, timeutil.Millisecond),
		}
		m.form = forms.NewRangeForm(s.Duration, &m.rangeInput)
	case formDiscard:
		m.discard = false
		m.form = forms.NewConfirmDiscardForm(&m.discard)
	default:
		return nil
	}
	m.formKind = kind
	return m.form.Init()
}

// updateForm forwards msg to the open form and applies its values once submitted.
// The form's own completion command is dropped so it cannot end the program.
func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.closeForm()
		return nil
	}

	updated, cmd := m.form.Update(msg)
	if f, ok := updated.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		kind := m.formKind
		m.closeForm()
		return m.applyForm(kind)
	case huh.StateAborted:
		m.closeForm()
		return nil
	}
	return cmd
}

func (m *Model) closeForm() {
	m.form = nil
	m.formKind = formNone
}

func (m *Model) applyForm(kind formKind) tea.Cmd {
	switch kind {
	case formRatio:
		m.session.SetAspectRatio(m.ratioChoice)
		m.statusBar.Ratio = string(m.ratioChoice)
		return m.showResult("Ratio "+forms.RatioLabel(m.ratioChoice), false)
	case formRange:
		// Apply the end first when the new start lies past the current end.
		if timeutil.Parse(m.rangeInput.Start) > m.session.Bounds().End() {
			m.session.EditEnd(m.rangeInput.End)
			m.session.EditStart(m.rangeInput.Start)
		} else {
			m.session.EditStart(m.rangeInput.Start)
			m.session.EditEnd(m.rangeInput.End)
		}
		s := m.session.Bounds().Snapshot()
		return m.showResult(fmt.Sprintf("Range %s - %s",
			timeutil.Format(s.Start, timeutil.Millisecond), timeutil.Format(s.End, timeutil.Millisecond)), false)
	case formDiscard:
		if m.discard {
			m.quitting = true
			return tea.Quit
		}
	}
	return nil
}

// report shows a playback error on the command line, if any.
func (m *Model) report(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	m.logger.Warn("playback command failed", "error", err)
	return m.showResult("Error: "+err.Error(), true)
}

func (m *Model) showResult(msg string, isError bool) tea.Cmd {
	m.commandInput.SetResult(msg, isError)
	return tea.Tick(resultDisplayDuration, func(time.Time) tea.Msg {
		return clearResultMsg{}
	})
}

// decreaseStepSize cycles to the previous (smaller) step size.
func (m *Model) decreaseStepSize() {
	currentIndex := m.findStepSizeIndex()
	if currentIndex > 0 {
		m.statusBar.StepSize = stepSizes[currentIndex-1]
	}
}

// increaseStepSize cycles to the next (larger) step size.
func (m *Model) increaseStepSize() {
	currentIndex := m.findStepSizeIndex()
	if currentIndex < len(stepSizes)-1 {
		m.statusBar.StepSize = stepSizes[currentIndex+1]
	}
}

// findStepSizeIndex finds the index of the current step size in the stepSizes array.
// If the current step size is not in the array, it returns the index of the closest value.
func (m *Model) findStepSizeIndex() int {
	for i, size := range stepSizes {
		if m.statusBar.StepSize == size {
			return i
		}
	}
	for i, size := range stepSizes {
		if m.statusBar.StepSize < size {
			if i == 0 {
				return 0
			}
			return i - 1
		}
	}
	return len(stepSizes) - 1
}

// refreshStatus copies the player state into the status bar.
func (m *Model) refreshStatus() {
	st := m.player.State()
	m.statusBar.Ready = st.Ready
	m.statusBar.Playing = st.Playing
	m.statusBar.Muted = st.Muted
	m.statusBar.Volume = st.Volume
	m.statusBar.Err = st.Err
	m.statusBar.TimePos = m.session.Bounds().CurrentTime()
}

// View renders the current state of the model as a string.
func (m *Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	statusBar := components.StatusBar(m.statusBar, m.width)

	if m.showHelp {
		return components.HelpOverlay(m.width, m.height)
	}

	if m.form != nil {
		body := lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
		return statusBar + "\n" + layout.Container{Width: m.width, Height: max(m.height-1, 1)}.Render(body)
	}

	if m.width > 0 && (m.width < layout.MinTerminalWidth || m.height < layout.MinTerminalHeight) {
		warningStyle := lipgloss.NewStyle().
			Foreground(styles.Pink).
			Bold(true)
		hintStyle := lipgloss.NewStyle().
			Foreground(styles.Lavender).
			Italic(true)
		msg := warningStyle.Render(fmt.Sprintf("Terminal too small (%dx%d)", m.width, m.height)) + "\n" +
			hintStyle.Render(fmt.Sprintf("Minimum size: %dx%d", layout.MinTerminalWidth, layout.MinTerminalHeight)) + "\n" +
			hintStyle.Render("Please resize your terminal.")
		return layout.Container{Width: m.width, Height: max(m.height, 1), Align: lipgloss.Center}.Render(msg)
	}

	bodyHeight := layout.BodyHeight(m.height)
	body := m.renderBody(bodyHeight)
	timelineBox := components.Timeline(m.session.Bounds().Snapshot(), m.width)
	commandInput := components.CommandInput(m.commandInput, m.width)

	return statusBar + "\n" + body + "\n" + timelineBox + "\n" + commandInput
}

// Run starts the editor full screen with mouse tracking and blocks until it exits.
// It returns the finalized settings, or false when the user quit without finishing.
func Run(session *editor.Session, player Player, opts Options) (editor.Settings, bool, error) {
	model := NewModel(session, player, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	done := make(chan struct{})
	defer close(done)
	if opts.NudgeUpdates != nil {
		go func() {
			for {
				select {
				case <-done:
					return
				case step, ok := <-opts.NudgeUpdates:
					if !ok {
						return
					}
					p.Send(NudgeStepMsg(step))
				}
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return editor.Settings{}, false, err
	}
	settings, ok := model.Result()
	return settings, ok, nil
}
