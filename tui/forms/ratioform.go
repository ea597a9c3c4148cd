package forms

import (
	"github.com/charmbracelet/huh"
	"github.com/user/trimcrop-cli/crop"
)

var ratioLabels = map[crop.AspectRatio]string{
	crop.Original:  "Original",
	crop.Portrait:  "Portrait 9:16",
	crop.Landscape: "Landscape 16:9",
	crop.Square:    "Square 1:1",
	crop.Vertical:  "Vertical 4:5",
	crop.Custom:    "Custom (source shape)",
}

// RatioLabel returns a display name for a preset ratio.
func RatioLabel(r crop.AspectRatio) string {
	if l, ok := ratioLabels[r]; ok {
		return l
	}
	return string(r)
}

// NewAspectRatioForm creates a huh select over the crop presets. The selection pointer
// starts on the current ratio and receives the choice on submit.
func NewAspectRatioForm(selection *crop.AspectRatio) *huh.Form {
	var options []huh.Option[crop.AspectRatio]
	for _, r := range crop.Presets() {
		options = append(options, huh.NewOption(RatioLabel(r), r))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[crop.AspectRatio]().
				Title("Crop aspect ratio").
				Options(options...).
				Value(selection),
		),
	).WithTheme(Theme()).WithShowHelp(false)
}
