package forms

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/user/trimcrop-cli/tui/styles"
)

// palette is the colour set applied to one field state.
type palette struct {
	border, title, text, dim, accent, err lipgloss.Color
	button, buttonText                    lipgloss.Color
}

var (
	focusedPalette = palette{
		border: styles.BrightPurple, title: styles.Pink, text: styles.LightLavender,
		dim: styles.Lavender, accent: styles.Cyan, err: styles.Red,
		button: styles.BrightPurple, buttonText: styles.LightLavender,
	}
	blurredPalette = palette{
		border: styles.DeepPurple, title: styles.Lavender, text: styles.Lavender,
		dim: styles.Purple, accent: styles.Lavender, err: styles.Red,
		button: styles.Purple, buttonText: styles.Lavender,
	}
)

// Theme returns the huh theme used by the range, ratio and confirmation forms.
func Theme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(focusedPalette.border).
		PaddingLeft(1)
	applyPalette(&t.Focused, focusedPalette, "▸ ")
	t.Focused.Title = t.Focused.Title.Bold(true)

	t.Blurred.Base = t.Blurred.Base.
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true).
		PaddingLeft(1)
	applyPalette(&t.Blurred, blurredPalette, "  ")

	// Invalid times are the common error in these forms; keep them loud.
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Bold(true)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Background(styles.Purple).
		Foreground(styles.Lavender).
		Padding(0, 1)
	t.Blurred.BlurredButton = lipgloss.NewStyle().
		Background(styles.DeepPurple).
		Foreground(styles.Purple).
		Padding(0, 1)

	return t
}

func applyPalette(fs *huh.FieldStyles, p palette, selector string) {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	fs.Title = fg(p.title)
	fs.NoteTitle = fg(p.accent).Bold(true)
	fs.Description = fg(p.dim)
	fs.ErrorIndicator = fg(p.err)
	fs.ErrorMessage = fg(p.err)

	fs.SelectSelector = fg(p.accent).SetString(selector)
	fs.MultiSelectSelector = fg(p.accent).SetString(selector)
	fs.Option = fg(p.text)
	fs.NextIndicator = fg(p.dim)
	fs.PrevIndicator = fg(p.dim)
	fs.SelectedOption = fg(p.accent)
	fs.SelectedPrefix = fg(p.accent).SetString("[✓] ")
	fs.UnselectedOption = fg(p.dim)
	fs.UnselectedPrefix = fg(p.dim).SetString("[ ] ")

	fs.TextInput.Cursor = fg(p.accent)
	fs.TextInput.Placeholder = fg(styles.Purple)
	fs.TextInput.Prompt = fg(p.accent)
	fs.TextInput.Text = fg(p.text)

	fs.FocusedButton = lipgloss.NewStyle().
		Background(p.button).
		Foreground(p.buttonText).
		Bold(true).
		Padding(0, 1)
	fs.Next = fs.FocusedButton
	fs.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1)
}
