// Package internal holds the pixel and result types shared by the detector,
// sampler and decoder packages.
package internal

import "image"

// Bitmap is an immutable RGB pixel grid, three bytes per pixel, row-major.
type Bitmap struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBitmap allocates a white bitmap.
func NewBitmap(width, height int) *Bitmap {
	pix := make([]uint8, width*height*3)
	for i := range pix {
		pix[i] = 0xFF
	}
	return &Bitmap{Width: width, Height: height, Pix: pix}
}

// NewBitmapFromImage converts any image to RGB. Fully transparent pixels
// become white.
func NewBitmapFromImage(img image.Image) *Bitmap {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	bm := &Bitmap{Width: w, Height: h, Pix: make([]uint8, w*h*3)}
	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < h; y++ {
			row := rgba.Pix[rgba.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			for x := 0; x < w; x++ {
				o := (y*w + x) * 3
				s := row[x*4:]
				if s[3] == 0 {
					bm.Pix[o], bm.Pix[o+1], bm.Pix[o+2] = 0xFF, 0xFF, 0xFF
					continue
				}
				bm.Pix[o], bm.Pix[o+1], bm.Pix[o+2] = s[0], s[1], s[2]
			}
		}
		return bm
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 3
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if a == 0 {
				bm.Pix[o], bm.Pix[o+1], bm.Pix[o+2] = 0xFF, 0xFF, 0xFF
				continue
			}
			bm.Pix[o], bm.Pix[o+1], bm.Pix[o+2] = uint8(r>>8), uint8(g>>8), uint8(b>>8)
		}
	}
	return bm
}

// RGB returns the pixel at (x, y).
func (b *Bitmap) RGB(x, y int) (r, g, bl uint8) {
	o := (y*b.Width + x) * 3
	return b.Pix[o], b.Pix[o+1], b.Pix[o+2]
}

// Channel returns a copy of one color plane (0 red, 1 green, 2 blue).
func (b *Bitmap) Channel(c int) []uint8 {
	plane := make([]uint8, b.Width*b.Height)
	for i := range plane {
		plane[i] = b.Pix[i*3+c]
	}
	return plane
}

// Contains reports whether (x, y) lies inside the bitmap.
func (b *Bitmap) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// Average returns the mean color of the (2r+1)x(2r+1) window around (x, y),
// clipped to the bitmap.
func (b *Bitmap) Average(x, y, r int) Color {
	var sum [3]float32
	n := 0
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			px, py := x+dx, y+dy
			if !b.Contains(px, py) {
				continue
			}
			o := (py*b.Width + px) * 3
			sum[0] += float32(b.Pix[o])
			sum[1] += float32(b.Pix[o+1])
			sum[2] += float32(b.Pix[o+2])
			n++
		}
	}
	if n == 0 {
		return Color{255, 255, 255}
	}
	return Color{sum[0] / float32(n), sum[1] / float32(n), sum[2] / float32(n)}
}
