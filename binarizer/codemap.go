package binarizer

import (
	"golang.org/x/sync/errgroup"

	"github.com/ericlevine/jabcode/bitutil"
	"github.com/ericlevine/jabcode/internal"
)

// CodeMap holds one binary plane per RGB channel of a bitmap.
type CodeMap struct {
	Width  int
	Height int
	Planes [3]*bitutil.BitMatrix
}

// Binarize thresholds each channel of bm against its own global histogram
// valley.
func Binarize(bm *internal.Bitmap) (*CodeMap, error) {
	return binarize(bm, globalPlane)
}

// BinarizeHybrid thresholds each channel of bm with local block thresholds.
// It copes with shading that defeats a single global level.
func BinarizeHybrid(bm *internal.Bitmap) (*CodeMap, error) {
	return binarize(bm, hybridPlane)
}

// binarize thresholds the red, green and blue planes concurrently.
func binarize(bm *internal.Bitmap, threshold func([]uint8, int, int) (*bitutil.BitMatrix, error)) (*CodeMap, error) {
	m := &CodeMap{Width: bm.Width, Height: bm.Height}
	var g errgroup.Group
	for c := 0; c < 3; c++ {
		c := c
		g.Go(func() error {
			plane, err := threshold(bm.Channel(c), bm.Width, bm.Height)
			if err != nil {
				return err
			}
			m.Planes[c] = plane
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

// Corner returns the cube corner R<<2|G<<1|B nearest to pixel (x, y), or -1
// outside the map.
func (m *CodeMap) Corner(x, y int) int {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return -1
	}
	c := 0
	for i, p := range m.Planes {
		if p.Get(x, y) {
			c |= 1 << uint(2-i)
		}
	}
	return c
}
