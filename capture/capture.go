// Package capture exports frames as PNG screenshots.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"time"

	"golang.org/x/image/draw"

	"go.creack.net/chip8/op"
	"go.creack.net/chip8/vm"
)

// MaxScale bounds the upscaling factor.
const MaxScale = 64

// Palette of the exported image, index 0 is the background.
var Palette = color.Palette{
	color.Black,
	color.White,
}

var ErrInvalidScale = errors.New("invalid scale")

// Image returns the frame as a 1:1 paletted image.
func Image(frame *vm.Frame) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, op.ScreenWidth, op.ScreenHeight), Palette)
	for y := range op.ScreenHeight {
		for x := range op.ScreenWidth {
			if frame[y][x] {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	return img
}

// Scaled returns the frame upscaled by an integer factor with nearest neighbour
// sampling so pixels stay sharp.
func Scaled(frame *vm.Frame, scale int) (image.Image, error) {
	if scale < 1 || scale > MaxScale {
		return nil, fmt.Errorf("%w: %d, must be between 1 and %d", ErrInvalidScale, scale, MaxScale)
	}
	src := Image(frame)
	if scale == 1 {
		return src, nil
	}
	dst := image.NewPaletted(image.Rect(0, 0, op.ScreenWidth*scale, op.ScreenHeight*scale), Palette)
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// WritePNG encodes the scaled frame to w.
func WritePNG(w io.Writer, frame vm.Frame, scale int) error {
	img, err := Scaled(&frame, scale)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SaveFile writes the scaled frame to path.
func SaveFile(path string, frame vm.Frame, scale int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create screenshot: %w", err)
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = fmt.Errorf("close screenshot: %w", e)
		}
	}()
	return WritePNG(f, frame, scale)
}

// Name returns a timestamped screenshot file name.
func Name(t time.Time) string {
	return "chip8-" + t.Format("20060102-150405.000") + ".png"
}
