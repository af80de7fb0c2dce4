package transform

import (
	"errors"

	"github.com/ericlevine/jabcode/internal"
)

// ErrNotFound is returned when a sampling grid leaves the image.
var ErrNotFound = errors.New("transform: grid outside image")

// SampleRadius returns the half-width of the pixel window averaged per
// module for a module size in pixels.
func SampleRadius(moduleSize float64) int {
	switch {
	case moduleSize >= 6:
		return 1
	default:
		return 0
	}
}

// Mapper maps module coordinates [x0, y0, x1, y1, ...] to pixel
// coordinates in place.
type Mapper interface {
	MapPoints(points []float64)
}

// SampleGrid samples the color of every module of a width x height grid.
// t maps module coordinates, with module (x, y) centered at (x+0.5, y+0.5),
// to pixel coordinates. Each sample is the mean of a (2r+1)x(2r+1) window.
func SampleGrid(bm *internal.Bitmap, width, height int, t Mapper, r int) (*internal.ColorMatrix, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrNotFound
	}
	m := internal.NewColorMatrix(width, height)
	points := make([]float64, 2*width)
	for y := 0; y < height; y++ {
		yValue := float64(y) + 0.5
		for x := 0; x < len(points); x += 2 {
			points[x] = float64(x/2) + 0.5
			points[x+1] = yValue
		}
		t.MapPoints(points)
		if err := CheckAndNudgePoints(bm.Width, bm.Height, points); err != nil {
			return nil, err
		}
		for x := 0; x < len(points); x += 2 {
			ix, iy := int(points[x]), int(points[x+1])
			if !bm.Contains(ix, iy) {
				return nil, ErrNotFound
			}
			m.Set(x/2, y, bm.Average(ix, iy, r))
		}
	}
	return m, nil
}

// CheckAndNudgePoints checks that transformed points are within image bounds,
// nudging points that are at most one pixel outside back in.
func CheckAndNudgePoints(width, height int, points []float64) error {
	maxOffset := len(points) - 1

	nudged := true
	for offset := 0; offset < maxOffset && nudged; offset += 2 {
		var err error
		if nudged, err = nudge(width, height, points, offset); err != nil {
			return err
		}
	}
	nudged = true
	for offset := len(points) - 2; offset >= 0 && nudged; offset -= 2 {
		var err error
		if nudged, err = nudge(width, height, points, offset); err != nil {
			return err
		}
	}
	return nil
}

func nudge(width, height int, points []float64, offset int) (bool, error) {
	x := int(points[offset])
	y := int(points[offset+1])
	if x < -1 || x > width || y < -1 || y > height {
		return false, ErrNotFound
	}
	nudged := false
	if x == -1 {
		points[offset] = 0
		nudged = true
	} else if x == width {
		points[offset] = float64(width - 1)
		nudged = true
	}
	if y == -1 {
		points[offset+1] = 0
		nudged = true
	} else if y == height {
		points[offset+1] = float64(height - 1)
		nudged = true
	}
	return nudged, nil
}
