package cmd

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/spf13/cobra"
	"github.com/user/trimcrop-cli/config"
	"github.com/user/trimcrop-cli/crop"
	"github.com/user/trimcrop-cli/editor"
	"github.com/user/trimcrop-cli/pkg/still"
)

var (
	cropRatio    string
	cropWidth    int
	cropHeight   int
	cropDX       float64
	cropDY       float64
	cropImage    string
	cropOut      string
	cropMaxWidth int
	cropJSONOnly bool
)

var cropCmd = &cobra.Command{
	Use:   "crop [video-file|url]",
	Short: "Compute an aspect ratio crop without opening the editor",
	Long: `Compute the centred crop for an aspect ratio and print its rectangle,
its ffmpeg filter and the JSON the job command receives.

The source size comes from --width/--height, from a probed video argument, or
from --image. With --image and --out the crop is applied to that still frame so
the framing can be checked before editing.`,
	Example: `  trimcrop crop --ratio 9:16 --width 1920 --height 1080
  trimcrop crop match.mp4 --ratio 1:1 --dx 200
  trimcrop crop --ratio 4:5 --image thumb.jpg --out preview.png`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCrop,
}

func init() {
	cropCmd.Flags().StringVarP(&cropRatio, "ratio", "r", string(crop.Portrait), "aspect ratio (9:16, 16:9, 1:1, 4:5 or W:H)")
	cropCmd.Flags().IntVar(&cropWidth, "width", 0, "source width in pixels")
	cropCmd.Flags().IntVar(&cropHeight, "height", 0, "source height in pixels")
	cropCmd.Flags().Float64Var(&cropDX, "dx", 0, "move the crop right by this many source pixels (negative moves left)")
	cropCmd.Flags().Float64Var(&cropDY, "dy", 0, "move the crop down by this many source pixels (negative moves up)")
	cropCmd.Flags().StringVar(&cropImage, "image", "", "still frame to preview the crop on")
	cropCmd.Flags().StringVarP(&cropOut, "out", "o", "", "write the cropped still here (png or jpg)")
	cropCmd.Flags().IntVar(&cropMaxWidth, "max-width", 0, "scale the cropped still down to this width")
	cropCmd.Flags().BoolVar(&cropJSONOnly, "json", false, "print only the crop JSON")
	rootCmd.AddCommand(cropCmd)
}

func runCrop(cmd *cobra.Command, args []string) error {
	ratio, err := crop.ParseAspectRatio(cropRatio)
	if err != nil {
		return err
	}

	width, height := cropWidth, cropHeight
	if len(args) == 1 && (width <= 0 || height <= 0) {
		cfg, err := config.Load(resolvedConfigPath())
		if err != nil {
			return err
		}
		target, err := resolveTarget(args[0])
		if err != nil {
			return err
		}
		meta, err := probe(cmd.Context(), cfg, target)
		if err != nil {
			return err
		}
		width, height = meta.Width, meta.Height
	}

	var img image.Image
	if cropImage != "" {
		if img, err = still.Decode(cropImage); err != nil {
			return err
		}
	}
	if img != nil && (width <= 0 || height <= 0) {
		width, height = img.Bounds().Dx(), img.Bounds().Dy()
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("source size unknown: pass --width and --height, a video, or --image")
	}

	rect := crop.Compute(ratio, float64(width), float64(height))
	if rect == nil {
		return fmt.Errorf("aspect ratio %q keeps the whole frame; nothing to crop", ratio)
	}
	moved := crop.Translate(*rect, cropDX, cropDY, 1, 1)
	cfg := editor.NewCropConfig(&moved)

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if cropJSONOnly {
		fmt.Println(string(out))
	} else {
		ov := crop.ToOverlayPercent(&moved, float64(width), float64(height))
		fmt.Printf("Source:  %dx%d\n", width, height)
		fmt.Printf("Ratio:   %s\n", ratio)
		fmt.Printf("Rect:    %s\n", moved.Rounded())
		fmt.Printf("Overlay: left %.1f%%, top %.1f%%, %.1f%% x %.1f%%\n", ov.Left, ov.Top, ov.Width, ov.Height)
		fmt.Printf("Filter:  %s\n", cfg.Filter())
		fmt.Println(string(out))
	}

	if img == nil || cropOut == "" {
		return nil
	}
	cropped, err := still.Crop(img, *cfg)
	if err != nil {
		return err
	}
	if err := still.Encode(still.Fit(cropped, cropMaxWidth, 0), cropOut); err != nil {
		return err
	}
	if !cropJSONOnly {
		fmt.Printf("Wrote %s\n", cropOut)
	}
	return nil
}
