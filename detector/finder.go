package detector

import (
	"math"
	"sort"

	"github.com/ericlevine/jabcode/binarizer"
	"github.com/ericlevine/jabcode/decoder"
)

// FinderPattern is a finder pattern candidate: its center in pixels, its
// estimated module size, its core color and how many scans confirmed it.
type FinderPattern struct {
	X, Y       float64
	ModuleSize float64
	Core       int
	Count      int
}

func (fp *FinderPattern) aboutEquals(core int, moduleSize, x, y float64) bool {
	if core != fp.Core {
		return false
	}
	if math.Abs(y-fp.Y) <= moduleSize && math.Abs(x-fp.X) <= moduleSize {
		moduleSizeDiff := math.Abs(moduleSize - fp.ModuleSize)
		return moduleSizeDiff <= 1.0 || moduleSizeDiff <= fp.ModuleSize
	}
	return false
}

func (fp *FinderPattern) combineEstimate(x, y, moduleSize float64) *FinderPattern {
	n := float64(fp.Count)
	return &FinderPattern{
		X:          (n*fp.X + x) / (n + 1),
		Y:          (n*fp.Y + y) / (n + 1),
		ModuleSize: (n*fp.ModuleSize + moduleSize) / (n + 1),
		Core:       fp.Core,
		Count:      fp.Count + 1,
	}
}

func isFinderCore(c int) bool {
	return c == decoder.CornerBlack || c == decoder.CornerYellow || c == decoder.CornerCyan
}

// foundPattern checks the run lengths of a C, ~C, C, ~C, C sequence. The
// three inner runs must agree within half a module; the outer runs only need
// half a module since neighbouring modules may extend them.
func foundPattern(runs [5]int) (float64, bool) {
	for _, r := range runs {
		if r == 0 {
			return 0, false
		}
	}
	moduleSize := float64(runs[1]+runs[2]+runs[3]) / 3
	maxVariance := moduleSize / 2
	for _, r := range runs[1:4] {
		if math.Abs(float64(r)-moduleSize) >= maxVariance {
			return 0, false
		}
	}
	if float64(runs[0]) < maxVariance || float64(runs[4]) < maxVariance {
		return 0, false
	}
	return moduleSize, true
}

// finder collects finder pattern candidates from a code map.
type finder struct {
	cm         *binarizer.CodeMap
	candidates []*FinderPattern
}

// scanLine looks for C, ~C, C, ~C, C runs along n pixels from (x0, y0) in
// steps of (dx, dy).
func (f *finder) scanLine(x0, y0, dx, dy, n int) {
	var colors, runs [5]int
	k := 0
	cur, length := f.cm.Corner(x0, y0), 1
	for i := 1; i <= n; i++ {
		c := f.cm.Corner(x0+i*dx, y0+i*dy)
		if c == cur {
			length++
			continue
		}
		if k == 5 {
			copy(colors[:], colors[1:])
			copy(runs[:], runs[1:])
			k = 4
		}
		colors[k], runs[k] = cur, length
		k++
		if k == 5 && isFinderCore(colors[2]) &&
			colors[0] == colors[2] && colors[4] == colors[2] &&
			colors[1] == 7-colors[2] && colors[3] == colors[1] {
			if moduleSize, ok := foundPattern(runs); ok {
				center := int(float64(i) - float64(runs[4]+runs[3]) - float64(runs[2])/2)
				f.handlePossibleCenter(x0+center*dx, y0+center*dy, colors[2], moduleSize)
			}
		}
		cur, length = c, 1
	}
}

// crossCheck walks from (x, y) in both directions along (dx, dy) and
// measures a C, ~C, C, ~C, C sequence centered on the start pixel. It
// returns the offset of the core run's center from the start pixel's origin
// in steps, and the module size.
func (f *finder) crossCheck(x, y, dx, dy, core, maxCount int) (float64, float64, bool) {
	var runs [5]int
	inv := 7 - core
	at := func(i int) int { return f.cm.Corner(x+i*dx, y+i*dy) }

	i := 0
	for at(-i) == core && runs[2] <= maxCount {
		runs[2]++
		i++
	}
	for at(-i) == inv && runs[1] <= maxCount {
		runs[1]++
		i++
	}
	for at(-i) == core && runs[0] < maxCount {
		runs[0]++
		i++
	}
	back := runs[2]

	i = 1
	for at(i) == core && runs[2] <= 2*maxCount {
		runs[2]++
		i++
	}
	fwd := runs[2] - back
	for at(i) == inv && runs[3] <= maxCount {
		runs[3]++
		i++
	}
	for at(i) == core && runs[4] < maxCount {
		runs[4]++
		i++
	}

	moduleSize, ok := foundPattern(runs)
	if !ok {
		return 0, 0, false
	}
	return float64(fwd-back+2) / 2, moduleSize, true
}

// handlePossibleCenter confirms a scan hit by locating the pattern around
// it, then merges it into a matching candidate.
func (f *finder) handlePossibleCenter(x, y, core int, moduleSize float64) {
	maxCount := int(3*moduleSize) + 2
	p, estModuleSize, ok := locate(x, y, func(x, y, dx, dy int) (float64, float64, bool) {
		return f.crossCheck(x, y, dx, dy, core, maxCount)
	})
	if !ok {
		return
	}
	for i, c := range f.candidates {
		if c.aboutEquals(core, estModuleSize, p.X, p.Y) {
			f.candidates[i] = c.combineEstimate(p.X, p.Y, estModuleSize)
			return
		}
	}
	f.candidates = append(f.candidates, &FinderPattern{
		X: p.X, Y: p.Y, ModuleSize: estModuleSize, Core: core, Count: 1,
	})
}

// directions are the image axes, then the two diagonals.
var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// lineCheck measures a pattern on the line through pixel (x, y) with step
// (dx, dy). It returns the core center offset from the pixel's origin and
// the module size, both in steps.
type lineCheck func(x, y, dx, dy int) (off, size float64, ok bool)

const locateRounds = 3

// locate finds the center of the pattern whose core contains pixel (x, y).
// Every round re-centers along each direction that crosses the pattern.
//
// Finder and anchor layers only fill two opposite quadrants, so a line
// through the center shows the whole sequence only within a 90 degree
// window; at any rotation one axis and one diagonal fall inside it. An axis
// at angle a to the module grid crosses a module in size/cos(a) pixels and
// a diagonal in size/cos(45-a), which gives both a and the module size.
func locate(x, y int, check lineCheck) (Point, float64, bool) {
	p := Point{float64(x) + 0.5, float64(y) + 0.5}
	for r := 0; r < locateRounds; r++ {
		for _, d := range directions {
			ix, iy := int(math.Floor(p.X)), int(math.Floor(p.Y))
			off, _, ok := check(ix, iy, d[0], d[1])
			if !ok {
				continue
			}
			p = Point{
				X: float64(ix) + 0.5 + (off-0.5)*float64(d[0]),
				Y: float64(iy) + 0.5 + (off-0.5)*float64(d[1]),
			}
		}
	}

	ix, iy := int(math.Floor(p.X)), int(math.Floor(p.Y))
	var sizes [4]float64
	var pass [4]bool
	for i, d := range directions {
		_, sizes[i], pass[i] = check(ix, iy, d[0], d[1])
	}
	axis := shorter(pass, sizes, 0, 1)
	diag := shorter(pass, sizes, 2, 3)
	switch {
	case axis >= 0 && diag >= 0:
		tan := math.Min(math.Max(sizes[axis]/sizes[diag]-1, 0), 1)
		return p, sizes[axis] * math.Cos(math.Atan(tan)), true
	case pass[0] && pass[1]:
		return p, (sizes[0] + sizes[1]) / 2, true
	}
	return p, 0, false
}

// shorter returns whichever of directions a and b passed with the shorter
// run, or -1.
func shorter(pass [4]bool, sizes [4]float64, a, b int) int {
	switch {
	case pass[a] && (!pass[b] || sizes[a] <= sizes[b]):
		return a
	case pass[b]:
		return b
	}
	return -1
}

// byCore returns the candidates with a core color, most confirmed first.
func (f *finder) byCore(core int, limit int) []*FinderPattern {
	var out []*FinderPattern
	for _, c := range f.candidates {
		if c.Core == core {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
