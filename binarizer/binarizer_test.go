package binarizer

import (
	"errors"
	"testing"

	"github.com/ericlevine/jabcode/internal"
)

// stripes builds a bitmap of vertical stripes, each width pixels wide.
func stripes(colors [][3]uint8, width, height int) *internal.Bitmap {
	bm := internal.NewBitmap(len(colors)*width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < bm.Width; x++ {
			c := colors[x/width]
			o := (y*bm.Width + x) * 3
			bm.Pix[o], bm.Pix[o+1], bm.Pix[o+2] = c[0], c[1], c[2]
		}
	}
	return bm
}

func TestBinarizeCorners(t *testing.T) {
	colors := [][3]uint8{
		{0, 0, 0}, {0, 0, 255}, {0, 255, 0}, {0, 255, 255},
		{255, 0, 0}, {255, 0, 255}, {255, 255, 0}, {255, 255, 255},
	}
	bm := stripes(colors, 8, 16)
	for _, bin := range []struct {
		name string
		fn   func(*internal.Bitmap) (*CodeMap, error)
	}{
		{"global", Binarize},
		{"hybrid", BinarizeHybrid},
	} {
		t.Run(bin.name, func(t *testing.T) {
			cm, err := bin.fn(bm)
			if err != nil {
				t.Fatalf("binarize: %v", err)
			}
			for i := range colors {
				if got := cm.Corner(i*8+4, 8); got != i {
					t.Errorf("stripe %d reads as corner %d", i, got)
				}
			}
			if cm.Corner(-1, 0) != -1 || cm.Corner(0, 16) != -1 {
				t.Error("outside pixels not reported as -1")
			}
		})
	}
}

func TestHybridHalves(t *testing.T) {
	bm := stripes([][3]uint8{{0, 0, 0}, {255, 255, 255}}, 32, 64)
	cm, err := BinarizeHybrid(bm)
	if err != nil {
		t.Fatalf("BinarizeHybrid: %v", err)
	}
	for y := 0; y < 64; y += 7 {
		for x := 0; x < 64; x += 5 {
			want := 0
			if x >= 32 {
				want = 7
			}
			if got := cm.Corner(x, y); got != want {
				t.Fatalf("pixel (%d, %d) reads %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestBinarizeFlatChannel(t *testing.T) {
	bm := stripes([][3]uint8{{0, 0, 0}, {255, 0, 0}}, 8, 8)
	if _, err := Binarize(bm); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error %v, want ErrNotFound for a channel without contrast", err)
	}
}
