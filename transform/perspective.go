// Package transform maps symbol module coordinates to image pixels and
// samples module colors through that mapping.
package transform

// Quad lists four corners clockwise from the upper left.
type Quad [4][2]float64

// Perspective is a projective map of the plane. Row 0 of m gives the x
// numerator, row 1 the y numerator and row 2 the shared denominator of
// (x, y, 1).
type Perspective struct {
	m [3][3]float64
}

// QuadToQuad returns the perspective that maps each corner of src onto the
// matching corner of dst.
func QuadToQuad(src, dst Quad) *Perspective {
	return squareTo(dst).mul(squareTo(src).adjoint())
}

// Map maps a single point.
func (p *Perspective) Map(x, y float64) (float64, float64) {
	m := &p.m
	d := m[2][0]*x + m[2][1]*y + m[2][2]
	return (m[0][0]*x + m[0][1]*y + m[0][2]) / d, (m[1][0]*x + m[1][1]*y + m[1][2]) / d
}

// MapPoints maps [x0, y0, x1, y1, ...] in place.
func (p *Perspective) MapPoints(points []float64) {
	for i := 0; i+1 < len(points); i += 2 {
		points[i], points[i+1] = p.Map(points[i], points[i+1])
	}
}

// squareTo maps the unit square onto q.
func squareTo(q Quad) *Perspective {
	x0, y0 := q[0][0], q[0][1]
	x1, y1 := q[1][0], q[1][1]
	x2, y2 := q[2][0], q[2][1]
	x3, y3 := q[3][0], q[3][1]
	sx := x0 - x1 + x2 - x3
	sy := y0 - y1 + y2 - y3
	if sx == 0 && sy == 0 {
		return &Perspective{m: [3][3]float64{
			{x1 - x0, x2 - x1, x0},
			{y1 - y0, y2 - y1, y0},
			{0, 0, 1},
		}}
	}
	dx1, dx2 := x1-x2, x3-x2
	dy1, dy2 := y1-y2, y3-y2
	den := dx1*dy2 - dx2*dy1
	g := (sx*dy2 - dx2*sy) / den
	h := (dx1*sy - sx*dy1) / den
	return &Perspective{m: [3][3]float64{
		{x1 - x0 + g*x1, x3 - x0 + h*x3, x0},
		{y1 - y0 + g*y1, y3 - y0 + h*y3, y0},
		{g, h, 1},
	}}
}

// adjoint returns the adjugate, which inverts p up to scale.
func (p *Perspective) adjoint() *Perspective {
	m := &p.m
	var a Perspective
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r0, r1 := (j+1)%3, (j+2)%3
			c0, c1 := (i+1)%3, (i+2)%3
			a.m[i][j] = m[r0][c0]*m[r1][c1] - m[r0][c1]*m[r1][c0]
		}
	}
	return &a
}

// mul returns the map that applies o, then p.
func (p *Perspective) mul(o *Perspective) *Perspective {
	var r Perspective
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r.m[i][j] += p.m[i][k] * o.m[k][j]
			}
		}
	}
	return &r
}
