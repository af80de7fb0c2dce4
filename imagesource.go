package jabcode

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
)

// ReadImage decodes a PNG, JPEG or GIF image and returns it with its format
// name.
func ReadImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return img, format, nil
}

// Rotate returns img turned clockwise by quarterTurns quarter turns.
// Fully transparent pixels become white.
func Rotate(img image.Image, quarterTurns int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	q := ((quarterTurns % 4) + 4) % 4
	nw, nh := w, h
	if q%2 == 1 {
		nw, nh = h, w
	}
	out := image.NewRGBA(image.Rect(0, 0, nw, nh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			if c.A == 0 {
				c = color.RGBA{0xff, 0xff, 0xff, 0xff}
			}
			var nx, ny int
			switch q {
			case 0:
				nx, ny = x, y
			case 1:
				nx, ny = h-1-y, x
			case 2:
				nx, ny = w-1-x, h-1-y
			case 3:
				nx, ny = y, w-1-x
			}
			out.SetRGBA(nx, ny, c)
		}
	}
	return out
}
