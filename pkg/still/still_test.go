package still

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/user/trimcrop-cli/editor"
)

// quadrants returns a w x h image whose left half is red and right half blue.
func quadrants(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= w/2 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCrop(t *testing.T) {
	tests := []struct {
		name      string
		img       image.Image
		crop      editor.CropConfig
		wantW     int
		wantH     int
		wantColor color.RGBA
	}{
		{
			name:  "same size",
			img:   quadrants(160, 90),
			crop:  editor.CropConfig{X: 100, Y: 0, Width: 50, Height: 90, SourceWidth: 160, SourceHeight: 90},
			wantW: 50, wantH: 90, wantColor: color.RGBA{B: 255, A: 255},
		},
		{
			name:  "thumbnail of a larger source",
			img:   quadrants(192, 108),
			crop:  editor.CropConfig{X: 0, Y: 0, Width: 608, Height: 1080, SourceWidth: 1920, SourceHeight: 1080},
			wantW: 61, wantH: 108, wantColor: color.RGBA{R: 255, A: 255},
		},
		{
			name:  "clipped to the image",
			img:   quadrants(100, 100),
			crop:  editor.CropConfig{X: 80, Y: 80, Width: 50, Height: 50},
			wantW: 20, wantH: 20, wantColor: color.RGBA{B: 255, A: 255},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Crop(tt.img, tt.crop)
			if err != nil {
				t.Fatalf("Crop: %v", err)
			}
			b := got.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
			if c := color.RGBAModel.Convert(got.At(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2)); c != tt.wantColor {
				t.Errorf("centre colour = %v, want %v", c, tt.wantColor)
			}
		})
	}
}

func TestCrop_Empty(t *testing.T) {
	_, err := Crop(quadrants(10, 10), editor.CropConfig{X: 20, Y: 20, Width: 5, Height: 5})
	if !errors.Is(err, ErrEmptyCrop) {
		t.Errorf("err = %v, want ErrEmptyCrop", err)
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{w: 1920, h: 1080, maxW: 640, wantW: 640, wantH: 360},
		{w: 608, h: 1080, maxW: 640, maxH: 360, wantW: 203, wantH: 360},
		{w: 100, h: 50, maxW: 640, maxH: 360, wantW: 100, wantH: 50},
		{w: 100, h: 50, wantW: 100, wantH: 50},
	}
	for _, tt := range tests {
		got := Fit(quadrants(tt.w, tt.h), tt.maxW, tt.maxH).Bounds()
		if got.Dx() != tt.wantW || got.Dy() != tt.wantH {
			t.Errorf("Fit(%dx%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.maxW, tt.maxH, got.Dx(), got.Dy(), tt.wantW, tt.wantH)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame.png", "frame.jpg"} {
		path := filepath.Join(dir, "out", name)
		if err := Encode(quadrants(32, 18), path); err != nil {
			t.Fatalf("Encode(%s): %v", name, err)
		}
		img, err := Decode(path)
		if err != nil {
			t.Fatalf("Decode(%s): %v", name, err)
		}
		if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 18 {
			t.Errorf("%s size = %v", name, b)
		}
	}
	if _, err := Decode(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
