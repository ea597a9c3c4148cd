// Package forms provides huh-based form components for the TUI.
package forms

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/user/trimcrop-cli/editor"
	"github.com/user/trimcrop-cli/pkg/timeutil"
)

// SummarizeSettings describes finalized settings in one line for a confirmation prompt.
func SummarizeSettings(s editor.Settings) string {
	summary := fmt.Sprintf("Keep %s to %s (%s)",
		timeutil.Format(s.StartTime, timeutil.Millisecond),
		timeutil.Format(s.EndTime, timeutil.Millisecond),
		timeutil.Format(s.Duration(), timeutil.Millisecond))
	if s.Crop != nil {
		summary += fmt.Sprintf(", crop %dx%d at %d,%d", s.Crop.Width, s.Crop.Height, s.Crop.X, s.Crop.Y)
	}
	return summary
}

// NewConfirmSubmitForm creates a huh confirm form asking whether to save the finalized
// settings. The result pointer is bound to the confirm field value.
func NewConfirmSubmitForm(settings editor.Settings, submit *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save these settings?").
				Description(SummarizeSettings(settings)).
				Affirmative("Save").
				Negative("Discard").
				Value(submit),
		),
	).WithTheme(Theme())
}

// NewConfirmDiscardForm creates a huh confirm form asking the user whether to leave
// without finishing the edit.
func NewConfirmDiscardForm(discard *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Quit without saving?").
				Description("The trim and crop will be lost.").
				Affirmative("Yes, quit").
				Negative("No, go back").
				Value(discard),
		),
	).WithTheme(Theme())
}
