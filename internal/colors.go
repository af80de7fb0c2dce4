package internal

// Color is an RGB triple on the 0..255 scale.
type Color [3]float32

// Dist2 returns the squared Euclidean distance between two colors.
func (c Color) Dist2(o Color) float32 {
	dr, dg, db := c[0]-o[0], c[1]-o[1], c[2]-o[2]
	return dr*dr + dg*dg + db*db
}

// ColorMatrix holds one averaged color sample per module.
type ColorMatrix struct {
	Width  int
	Height int
	Colors []Color
}

// NewColorMatrix allocates a matrix of width x height modules.
func NewColorMatrix(width, height int) *ColorMatrix {
	return &ColorMatrix{Width: width, Height: height, Colors: make([]Color, width*height)}
}

// At returns the color of module (x, y).
func (m *ColorMatrix) At(x, y int) Color {
	return m.Colors[y*m.Width+x]
}

// Set stores the color of module (x, y).
func (m *ColorMatrix) Set(x, y int, c Color) {
	m.Colors[y*m.Width+x] = c
}
