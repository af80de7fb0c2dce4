package detector

import (
	"go.uber.org/zap"

	"github.com/ericlevine/jabcode/decoder"
	"github.com/ericlevine/jabcode/transform"
)

// AlignGrid locates the interior alignment patterns of g and returns a copy
// of g that samples every block between neighbouring patterns with its own
// perspective. It reports false when g has no interior patterns or none of
// them is found.
func (d *Detector) AlignGrid(g *SymbolGrid) (*SymbolGrid, bool) {
	if d.cm == nil {
		return g, false
	}
	xs := decoder.AlignmentAxis(g.Width)
	ys := decoder.AlignmentAxis(g.Height)
	if len(xs) == 2 && len(ys) == 2 {
		return g, false
	}
	m := &blockMapper{
		xs:    xs,
		ys:    ys,
		nodes: make([][]Point, len(ys)),
		found: make([][]bool, len(ys)),
	}
	located := 0
	for i, y := range ys {
		m.nodes[i] = make([]Point, len(xs))
		m.found[i] = make([]bool, len(xs))
		for j, x := range xs {
			switch {
			case i == 0 && j == 0:
				m.nodes[i][j] = g.Anchors[0]
			case i == 0 && j == len(xs)-1:
				m.nodes[i][j] = g.Anchors[1]
			case i == len(ys)-1 && j == len(xs)-1:
				m.nodes[i][j] = g.Anchors[2]
			case i == len(ys)-1 && j == 0:
				m.nodes[i][j] = g.Anchors[3]
			default:
				expected := g.ModuleCenter(float64(x), float64(y))
				p, _, ok := d.refinePattern(expected, g.ModuleSize, decoder.CornerYellow, decoder.CornerBlue)
				if !ok {
					m.nodes[i][j] = expected
					continue
				}
				m.nodes[i][j] = p
				located++
			}
			m.found[i][j] = true
		}
	}
	d.logger.Debug("alignment patterns",
		zap.Int("width", g.Width), zap.Int("height", g.Height),
		zap.Int("located", located), zap.Int("expected", len(xs)*len(ys)-4))
	if located == 0 {
		return g, false
	}
	m.build()
	n := *g
	n.Sampler = m
	return &n, true
}

// blockMapper maps module coordinates through the perspective of the block
// of alignment patterns that contains them. A block with an unlocated corner
// borrows the perspective of the smallest enclosing block whose corners
// were all located.
type blockMapper struct {
	xs, ys []int
	nodes  [][]Point
	found  [][]bool
	blocks [][]*transform.Perspective
}

func (m *blockMapper) build() {
	m.blocks = make([][]*transform.Perspective, len(m.ys)-1)
	for i := range m.blocks {
		m.blocks[i] = make([]*transform.Perspective, len(m.xs)-1)
		for j := range m.blocks[i] {
			top, left, bottom, right := m.enclosing(i, j)
			src := transform.Quad{
				{float64(m.xs[left]) + 0.5, float64(m.ys[top]) + 0.5},
				{float64(m.xs[right]) + 0.5, float64(m.ys[top]) + 0.5},
				{float64(m.xs[right]) + 0.5, float64(m.ys[bottom]) + 0.5},
				{float64(m.xs[left]) + 0.5, float64(m.ys[bottom]) + 0.5},
			}
			a, b := m.nodes[top][left], m.nodes[top][right]
			c, e := m.nodes[bottom][right], m.nodes[bottom][left]
			dst := transform.Quad{{a.X, a.Y}, {b.X, b.Y}, {c.X, c.Y}, {e.X, e.Y}}
			m.blocks[i][j] = transform.QuadToQuad(src, dst)
		}
	}
}

// enclosing grows block (i, j) one pattern at a time, fewest steps first,
// until its four corners were all located. The outer corners always are.
func (m *blockMapper) enclosing(i, j int) (top, left, bottom, right int) {
	maxX, maxY := len(m.xs)-1, len(m.ys)-1
	for grow := 0; grow <= maxX+maxY; grow++ {
		for up := 0; up <= grow; up++ {
			for down := 0; down <= grow-up; down++ {
				for l := 0; l <= grow-up-down; l++ {
					r := grow - up - down - l
					top, bottom = max(i-up, 0), min(i+1+down, maxY)
					left, right = max(j-l, 0), min(j+1+r, maxX)
					if m.found[top][left] && m.found[top][right] &&
						m.found[bottom][left] && m.found[bottom][right] {
						return top, left, bottom, right
					}
				}
			}
		}
	}
	return 0, 0, maxY, maxX
}

// block returns the index of the block holding module coordinate v.
func block(axis []int, v float64) int {
	b := 0
	for b < len(axis)-2 && v >= float64(axis[b+1])+0.5 {
		b++
	}
	return b
}

// MapPoints maps module coordinates [x0, y0, x1, y1, ...] to pixels in place.
func (m *blockMapper) MapPoints(points []float64) {
	for i := 0; i+1 < len(points); i += 2 {
		p := m.blocks[block(m.ys, points[i+1])][block(m.xs, points[i])]
		points[i], points[i+1] = p.Map(points[i], points[i+1])
	}
}
