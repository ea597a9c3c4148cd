// Package still applies a crop to a single frame image, for previewing a selection
// against a thumbnail or screenshot without touching the video.
package still

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/user/trimcrop-cli/editor"
)

// ErrEmptyCrop is returned when the crop does not overlap the image.
var ErrEmptyCrop = errors.New("crop does not overlap the image")

// Decode reads an image in any registered format.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Crop cuts c out of img. The crop is expressed in source video pixels, so it is
// rescaled when the image is a thumbnail of a different size.
func Crop(img image.Image, c editor.CropConfig) (image.Image, error) {
	b := img.Bounds()
	sx, sy := 1.0, 1.0
	if c.SourceWidth > 0 && c.SourceHeight > 0 {
		sx = float64(b.Dx()) / float64(c.SourceWidth)
		sy = float64(b.Dy()) / float64(c.SourceHeight)
	}
	r := image.Rect(
		b.Min.X+int(float64(c.X)*sx+0.5),
		b.Min.Y+int(float64(c.Y)*sy+0.5),
		b.Min.X+int(float64(c.X+c.Width)*sx+0.5),
		b.Min.Y+int(float64(c.Y+c.Height)*sy+0.5),
	).Intersect(b)
	if r.Empty() {
		return nil, ErrEmptyCrop
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, r.Min, xdraw.Src)
	return dst, nil
}

// Fit scales img down so neither side exceeds maxWidth x maxHeight. A zero limit is
// unbounded; images that already fit are returned unchanged.
func Fit(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	scale := 1.0
	if maxWidth > 0 && b.Dx() > maxWidth {
		scale = float64(maxWidth) / float64(b.Dx())
	}
	if maxHeight > 0 && float64(b.Dy())*scale > float64(maxHeight) {
		scale = float64(maxHeight) / float64(b.Dy())
	}
	if scale >= 1 {
		return img
	}
	w := max(int(float64(b.Dx())*scale+0.5), 1)
	h := max(int(float64(b.Dy())*scale+0.5), 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// Encode writes img to path as PNG, or JPEG for .jpg/.jpeg.
func Encode(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
