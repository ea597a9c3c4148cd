package forms

import (
	"fmt"
	"math"

	"github.com/charmbracelet/huh"
	"github.com/user/trimcrop-cli/pkg/timeutil"
)

// RangeFormResult holds the typed start and end times.
type RangeFormResult struct {
	Start string
	End   string
}

// validTime accepts anything timeutil.Parse understands within [0, duration].
func validTime(duration float64) func(string) error {
	return func(s string) error {
		t := timeutil.Parse(s)
		if math.IsNaN(t) {
			return fmt.Errorf("use seconds, M:SS or H:MM:SS")
		}
		if t < 0 || t > duration {
			return fmt.Errorf("must be between 0 and %s", timeutil.FormatTime(duration))
		}
		return nil
	}
}

// NewRangeForm creates a huh form for typing the trim range. The result fields start
// with the current values formatted for display.
func NewRangeForm(duration float64, result *RangeFormResult) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(fmt.Sprintf("Trim range (video is %s)", timeutil.FormatTime(duration))),

			huh.NewInput().
				Title("Start").
				Value(&result.Start).
				Validate(validTime(duration)),

			huh.NewInput().
				Title("End").
				Value(&result.End).
				Validate(validTime(duration)),
		),
	).WithTheme(Theme())
}
