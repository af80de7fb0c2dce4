// Package detector locates JAB Code symbols in a bitmap: the master symbol
// by its four colored finder patterns and docked slaves by extending the
// host's module grid.
package detector

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/ericlevine/jabcode/binarizer"
	"github.com/ericlevine/jabcode/decoder"
	"github.com/ericlevine/jabcode/internal"
)

// ErrNotFound is returned when no symbol could be located.
var ErrNotFound = errors.New("detector: not found")

// maxParallelogramError bounds how far the diagonals of the anchor
// quadrilateral may miss each other, relative to the longer diagonal.
const maxParallelogramError = 0.25

// Detector finds symbols in one bitmap.
type Detector struct {
	bm     *internal.Bitmap
	cm     *binarizer.CodeMap
	logger *zap.Logger
}

// NewDetector creates a Detector for bm. A nil logger discards output.
func NewDetector(bm *internal.Bitmap, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{bm: bm, logger: logger}
}

// Bitmap returns the bitmap being searched.
func (d *Detector) Bitmap() *internal.Bitmap { return d.bm }

// DetectMaster locates the master symbol. Exhaustive detection scans every
// row and falls back to local thresholds when the global ones fail.
func (d *Detector) DetectMaster(exhaustive bool) (*SymbolGrid, error) {
	cm, err := binarizer.Binarize(d.bm)
	if err == nil {
		var g *SymbolGrid
		if g, err = d.detectMaster(cm, exhaustive); err == nil {
			d.cm = cm
			return g, nil
		}
	}
	if !exhaustive {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	d.logger.Debug("global threshold failed, trying local thresholds", zap.Error(err))
	if cm, err = binarizer.BinarizeHybrid(d.bm); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	g, err := d.detectMaster(cm, exhaustive)
	if err != nil {
		return nil, err
	}
	d.cm = cm
	return g, nil
}

func (d *Detector) detectMaster(cm *binarizer.CodeMap, exhaustive bool) (*SymbolGrid, error) {
	skip := 1
	if !exhaustive {
		skip = cm.Height / 200
		if skip < 1 {
			skip = 1
		} else if skip > 3 {
			skip = 3
		}
	}
	f := &finder{cm: cm}
	for y := skip / 2; y < cm.Height; y += skip {
		f.scanLine(0, y, 1, 0, cm.Width)
	}
	for x := skip / 2; x < cm.Width; x += skip {
		f.scanLine(x, 0, 0, 1, cm.Height)
	}
	blacks := f.byCore(decoder.CornerBlack, 4)
	yellows := f.byCore(decoder.CornerYellow, 3)
	cyans := f.byCore(decoder.CornerCyan, 3)
	d.logger.Debug("finder candidates",
		zap.Int("black", len(blacks)), zap.Int("yellow", len(yellows)), zap.Int("cyan", len(cyans)))

	anchors, moduleSize, err := assignAnchors(blacks, yellows, cyans)
	if err != nil {
		return nil, err
	}
	if cross(anchors[0], anchors[1], anchors[3]) <= 0 {
		return nil, fmt.Errorf("%w: mirrored symbol", ErrNotFound)
	}
	if moduleSize < 1 {
		return nil, fmt.Errorf("%w: module size %.2f", ErrNotFound, moduleSize)
	}
	top := (distance(anchors[0], anchors[1]) + distance(anchors[3], anchors[2])) / 2
	left := (distance(anchors[0], anchors[3]) + distance(anchors[1], anchors[2])) / 2
	offset := 2*decoder.DistanceToBorder - 1
	width := decoder.NearestSideSize(int(math.Round(top/moduleSize)) + offset)
	height := decoder.NearestSideSize(int(math.Round(left/moduleSize)) + offset)
	g := NewSymbolGrid(anchors, moduleSize, width, height, -1)
	d.logger.Debug("master located",
		zap.Int("width", width), zap.Int("height", height),
		zap.Float64("module_size", moduleSize), zap.Float64("rotation", g.Rotation))
	return g, nil
}

// cross returns the z component of (b-a) x (c-a).
func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func center(fp *FinderPattern) Point { return Point{fp.X, fp.Y} }

// assignAnchors picks FP0..FP3 from the candidates. With all four colors
// present, the combination whose diagonals best bisect each other wins; the
// two black patterns are told apart by which one is diagonal to yellow.
func assignAnchors(blacks, yellows, cyans []*FinderPattern) ([4]Point, float64, error) {
	var best [4]Point
	var bestSize float64
	bestErr := math.Inf(1)
	for i := 0; i < len(blacks); i++ {
		for j := 0; j < len(blacks); j++ {
			if i == j {
				continue
			}
			for _, y := range yellows {
				for _, c := range cyans {
					a := [4]Point{center(blacks[i]), center(blacks[j]), center(y), center(c)}
					diag := math.Max(distance(a[0], a[2]), distance(a[1], a[3]))
					if diag == 0 {
						continue
					}
					e := math.Hypot(a[0].X+a[2].X-a[1].X-a[3].X, a[0].Y+a[2].Y-a[1].Y-a[3].Y) / diag
					if e < bestErr {
						bestErr, best = e, a
						bestSize = (blacks[i].ModuleSize + blacks[j].ModuleSize + y.ModuleSize + c.ModuleSize) / 4
					}
				}
			}
		}
	}
	if bestErr <= maxParallelogramError {
		return best, bestSize, nil
	}

	var a [4]Point
	var found [4]bool
	var sizes []float64
	switch {
	case len(blacks) >= 2 && len(yellows) > 0:
		b0, b1, y := center(blacks[0]), center(blacks[1]), center(yellows[0])
		if distance(b1, y) > distance(b0, y) {
			b0, b1 = b1, b0
		}
		a[0], a[1], a[2] = b0, b1, y
		found = [4]bool{true, true, true, false}
		sizes = []float64{blacks[0].ModuleSize, blacks[1].ModuleSize, yellows[0].ModuleSize}
	case len(blacks) >= 2 && len(cyans) > 0:
		b0, b1, c := center(blacks[0]), center(blacks[1]), center(cyans[0])
		if distance(b0, c) > distance(b1, c) {
			b0, b1 = b1, b0
		}
		a[0], a[1], a[3] = b0, b1, c
		found = [4]bool{true, true, false, true}
		sizes = []float64{blacks[0].ModuleSize, blacks[1].ModuleSize, cyans[0].ModuleSize}
	case len(blacks) == 1 && len(yellows) > 0 && len(cyans) > 0:
		b, y, c := center(blacks[0]), center(yellows[0]), center(cyans[0])
		a[2], a[3] = y, c
		if distance(b, y) > distance(b, c) {
			a[0] = b
			found = [4]bool{true, false, true, true}
		} else {
			a[1] = b
			found = [4]bool{false, true, true, true}
		}
		sizes = []float64{blacks[0].ModuleSize, yellows[0].ModuleSize, cyans[0].ModuleSize}
	default:
		return a, 0, fmt.Errorf("%w: %d black, %d yellow, %d cyan finder patterns",
			ErrNotFound, len(blacks), len(yellows), len(cyans))
	}
	completeParallelogram(&a, found)
	return a, (sizes[0] + sizes[1] + sizes[2]) / 3, nil
}

// DetectSlave locates a width x height slave docked at position of host.
// DetectMaster must have succeeded first.
func (d *Detector) DetectSlave(host *SymbolGrid, position, width, height int) (*SymbolGrid, error) {
	if d.cm == nil {
		return nil, fmt.Errorf("%w: no master located", ErrNotFound)
	}
	var ox, oy float64
	switch position {
	case decoder.DockTop:
		oy = -float64(height)
	case decoder.DockBottom:
		oy = float64(host.Height)
	case decoder.DockLeft:
		ox = -float64(width)
	case decoder.DockRight:
		ox = float64(host.Width)
	default:
		return nil, fmt.Errorf("%w: docking position %d", ErrNotFound, position)
	}
	var anchors [4]Point
	var found [4]bool
	n := 0
	for i, c := range decoder.AnchorCenters(width, height) {
		expected := host.ModuleCenter(ox+float64(c.X), oy+float64(c.Y))
		if p, _, ok := d.refinePattern(expected, host.ModuleSize, decoder.CornerCyan, decoder.CornerRed); ok {
			anchors[i], found[i] = p, true
			n++
		} else {
			anchors[i] = expected
		}
	}
	if n < 3 {
		return nil, fmt.Errorf("%w: %d of 4 slave anchors at position %d", ErrNotFound, n, position)
	}
	completeParallelogram(&anchors, found)
	return NewSymbolGrid(anchors, host.ModuleSize, width, height, position), nil
}

// refinePattern searches a window of three modules around expected for a
// core of one color crossed by a ring of another. It returns the mean of the
// candidates within a module of the one nearest expected.
func (d *Detector) refinePattern(expected Point, moduleSize float64, core, ring int) (Point, float64, bool) {
	r := int(3 * moduleSize)
	ex, ey := int(expected.X), int(expected.Y)
	maxCount := int(3*moduleSize) + 2
	check := func(x, y, dx, dy int) (float64, float64, bool) {
		return d.crossCheck3(x, y, dx, dy, core, ring, maxCount)
	}
	var found []FinderPattern
	nearest, nearestDist := -1, math.Inf(1)
	for y := ey - r; y <= ey+r; y++ {
		for x := ex - r; x <= ex+r; x++ {
			if d.cm.Corner(x, y) != core || d.cm.Corner(x-1, y) == core {
				continue
			}
			end := x
			for d.cm.Corner(end, y) == core {
				end++
			}
			p, ms, ok := locate((x+end-1)/2, y, check)
			x = end - 1
			if !ok || math.Abs(ms-moduleSize) >= moduleSize/2 {
				continue
			}
			if dist := distance(p, expected); dist < nearestDist {
				nearest, nearestDist = len(found), dist
			}
			found = append(found, FinderPattern{X: p.X, Y: p.Y, ModuleSize: ms, Core: core})
		}
	}
	if nearest < 0 {
		return Point{}, 0, false
	}
	n := found[nearest]
	var sum FinderPattern
	for _, c := range found {
		if math.Hypot(c.X-n.X, c.Y-n.Y) <= n.ModuleSize {
			sum = *sum.combineEstimate(c.X, c.Y, c.ModuleSize)
		}
	}
	return Point{sum.X, sum.Y}, sum.ModuleSize, true
}

// crossCheck3 measures a ring, core, ring run sequence through (x, y) along
// (dx, dy). It returns the core center offset in steps and the core length.
func (d *Detector) crossCheck3(x, y, dx, dy, core, inv, maxCount int) (float64, float64, bool) {
	at := func(i int) int { return d.cm.Corner(x+i*dx, y+i*dy) }
	var runs [3]int
	i := 0
	for at(-i) == core && runs[1] <= maxCount {
		runs[1]++
		i++
	}
	for at(-i) == inv && runs[0] < maxCount {
		runs[0]++
		i++
	}
	back := runs[1]
	i = 1
	for at(i) == core && runs[1] <= 2*maxCount {
		runs[1]++
		i++
	}
	fwd := runs[1] - back
	for at(i) == inv && runs[2] < maxCount {
		runs[2]++
		i++
	}
	half := float64(runs[1]) / 2
	if runs[1] == 0 || float64(runs[0]) < half || float64(runs[2]) < half {
		return 0, 0, false
	}
	return float64(fwd-back+2) / 2, float64(runs[1]), true
}
