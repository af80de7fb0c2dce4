package encoder

import (
	"image"
	"image/color"
	"image/draw"
)

// Render draws a code with moduleSize pixels per module and a white quiet
// zone of quietZone modules around it.
func Render(code *Code, moduleSize, quietZone int) *image.RGBA {
	if moduleSize < 1 {
		moduleSize = 1
	}
	if quietZone < 0 {
		quietZone = 0
	}
	w := (code.Width + 2*quietZone) * moduleSize
	h := (code.Height + 2*quietZone) * moduleSize
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	for _, s := range code.Symbols {
		sw := s.Metadata.Width()
		for i, c := range s.Modules {
			x := (s.Origin.X + i%sw + quietZone) * moduleSize
			y := (s.Origin.Y + i/sw + quietZone) * moduleSize
			rgba := color.RGBA{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2]), A: 0xff}
			draw.Draw(img, image.Rect(x, y, x+moduleSize, y+moduleSize), image.NewUniform(rgba), image.Point{}, draw.Src)
		}
	}
	return img
}
