package detector

import (
	"math"

	"github.com/ericlevine/jabcode/decoder"
	"github.com/ericlevine/jabcode/internal"
	"github.com/ericlevine/jabcode/transform"
)

// Point is a position in pixels.
type Point struct {
	X, Y float64
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// SymbolGrid is the geometry of one detected symbol.
type SymbolGrid struct {
	// Anchors are the pixel centers of the four corner patterns, upper
	// left, upper right, lower right, lower left in symbol orientation.
	Anchors    [4]Point
	ModuleSize float64
	Width      int
	Height     int
	// Rotation is the angle of the upper edge in degrees.
	Rotation float64
	// Position is the docking side relative to the host, -1 for a master.
	Position  int
	Transform *transform.Perspective
	// Sampler, when set, replaces Transform for sampling.
	Sampler transform.Mapper
}

// NewSymbolGrid builds the module to pixel mapping of a width x height
// symbol whose corner pattern centers are anchors.
func NewSymbolGrid(anchors [4]Point, moduleSize float64, width, height, position int) *SymbolGrid {
	g := &SymbolGrid{
		Anchors:    anchors,
		ModuleSize: moduleSize,
		Position:   position,
		Rotation:   math.Atan2(anchors[1].Y-anchors[0].Y, anchors[1].X-anchors[0].X) * 180 / math.Pi,
	}
	return g.WithSize(width, height)
}

// WithSize returns a copy of g for a different side size.
func (g *SymbolGrid) WithSize(width, height int) *SymbolGrid {
	n := *g
	n.Width, n.Height = width, height
	n.Sampler = nil
	d := float64(decoder.DistanceToBorder) - 0.5
	w, h := float64(width), float64(height)
	a := g.Anchors
	n.Transform = transform.QuadToQuad(
		transform.Quad{{d, d}, {w - d, d}, {w - d, h - d}, {d, h - d}},
		transform.Quad{{a[0].X, a[0].Y}, {a[1].X, a[1].Y}, {a[2].X, a[2].Y}, {a[3].X, a[3].Y}})
	return &n
}

// ModuleCenter returns the pixel position of the center of module (x, y).
// Coordinates outside the symbol extrapolate the grid.
func (g *SymbolGrid) ModuleCenter(x, y float64) Point {
	px, py := g.Transform.Map(x+0.5, y+0.5)
	return Point{px, py}
}

// Sample reads the color of every module of the symbol.
func (g *SymbolGrid) Sample(bm *internal.Bitmap) (*internal.ColorMatrix, error) {
	var m transform.Mapper = g.Transform
	if g.Sampler != nil {
		m = g.Sampler
	}
	return transform.SampleGrid(bm, g.Width, g.Height, m, transform.SampleRadius(g.ModuleSize))
}

// completeParallelogram fills a single missing anchor as the fourth corner
// of the parallelogram spanned by the other three.
func completeParallelogram(anchors *[4]Point, found [4]bool) bool {
	missing := -1
	for i, ok := range found {
		if !ok {
			if missing >= 0 {
				return false
			}
			missing = i
		}
	}
	if missing < 0 {
		return true
	}
	prev, opp, next := anchors[(missing+3)%4], anchors[(missing+2)%4], anchors[(missing+1)%4]
	anchors[missing] = Point{prev.X + next.X - opp.X, prev.Y + next.Y - opp.Y}
	return true
}
