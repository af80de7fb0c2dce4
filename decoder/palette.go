package decoder

import (
	"fmt"

	"github.com/ericlevine/jabcode/internal"
)

// MaxEmbeddedColors is the number of palette entries stored per palette.
const MaxEmbeddedColors = 64

// ColorCount returns the number of colors of a color mode Nc.
func ColorCount(colorMode int) int {
	return 1 << uint(colorMode+1)
}

// ColorModeForCount returns Nc for a color count.
func ColorModeForCount(count int) (int, error) {
	for nc := 0; nc < 8; nc++ {
		if ColorCount(nc) == count {
			return nc, nil
		}
	}
	return 0, fmt.Errorf("%w: %d colors", errInvalidColorMode, count)
}

// Corner returns one of the eight RGB cube corners, index R<<2|G<<1|B.
func Corner(index int) internal.Color {
	var c internal.Color
	for i := 0; i < 3; i++ {
		if index>>uint(2-i)&1 == 1 {
			c[i] = 255
		}
	}
	return c
}

// Colors of the fixed patterns.
const (
	CornerBlack   = 0
	CornerBlue    = 1
	CornerGreen   = 2
	CornerCyan    = 3
	CornerRed     = 4
	CornerMagenta = 5
	CornerYellow  = 6
	CornerWhite   = 7
)

// channelLevels returns the per-channel level counts of a palette with more
// than eight colors.
func channelLevels(count int) (r, g, b int) {
	switch count {
	case 16:
		return 4, 2, 2
	case 32:
		return 4, 4, 2
	case 64:
		return 4, 4, 4
	case 128:
		return 8, 4, 4
	case 256:
		return 8, 8, 4
	}
	return 2, 2, 2
}

func levelValue(i, levels int) float32 {
	step := 256 / (levels - 1)
	if levels == 4 {
		step = 85
	}
	v := i * step
	if v > 255 {
		v = 255
	}
	return float32(v)
}

// Palette returns the nominal palette of a color count.
func Palette(count int) []internal.Color {
	switch count {
	case 2:
		return []internal.Color{Corner(CornerBlack), Corner(CornerWhite)}
	case 4:
		return []internal.Color{Corner(CornerBlack), Corner(CornerCyan), Corner(CornerMagenta), Corner(CornerYellow)}
	case 8:
		p := make([]internal.Color, 8)
		for i := range p {
			p[i] = Corner(i)
		}
		return p
	}
	nr, ng, nb := channelLevels(count)
	p := make([]internal.Color, 0, count)
	for r := 0; r < nr; r++ {
		for g := 0; g < ng; g++ {
			for b := 0; b < nb; b++ {
				p = append(p, internal.Color{levelValue(r, nr), levelValue(g, ng), levelValue(b, nb)})
			}
		}
	}
	return p
}

// embeddedLevels are the levels of an eight-level channel stored in a
// symbol; the others are interpolated.
var embeddedLevels = [4]int{0, 2, 5, 7}

// EmbeddedIndices returns the palette indices stored in a symbol, in the
// order they are stored.
func EmbeddedIndices(count int) []int {
	if count <= MaxEmbeddedColors {
		idx := make([]int, count)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	nr, ng, nb := channelLevels(count)
	rl := levelSet(nr)
	gl := levelSet(ng)
	var idx []int
	for _, r := range rl {
		for _, g := range gl {
			for b := 0; b < nb; b++ {
				idx = append(idx, (r*ng+g)*nb+b)
			}
		}
	}
	return idx
}

func levelSet(levels int) []int {
	if levels == 8 {
		return embeddedLevels[:]
	}
	s := make([]int, levels)
	for i := range s {
		s[i] = i
	}
	return s
}

// Interpolate expands the embedded entries of a palette with more than 64
// colors into the full palette. Missing levels of an eight-level channel are
// weighted means of their embedded neighbours.
func Interpolate(embedded []internal.Color, count int) []internal.Color {
	if count <= MaxEmbeddedColors {
		return embedded
	}
	nr, ng, nb := channelLevels(count)
	full := make([]internal.Color, count)
	for i, idx := range EmbeddedIndices(count) {
		full[idx] = embedded[i]
	}
	at := func(r, g, b int) int { return (r*ng+g)*nb + b }
	for _, g := range levelSet(ng) {
		for b := 0; b < nb; b++ {
			fillLevels(func(l int) *internal.Color { return &full[at(l, g, b)] })
		}
	}
	if ng == 8 {
		for r := 0; r < nr; r++ {
			for b := 0; b < nb; b++ {
				fillLevels(func(l int) *internal.Color { return &full[at(r, l, b)] })
			}
		}
	}
	return full
}

// fillLevels interpolates levels 1, 3, 4 and 6 of an eight-level line.
func fillLevels(at func(level int) *internal.Color) {
	l0, l2, l5, l7 := *at(0), *at(2), *at(5), *at(7)
	for c := 0; c < 3; c++ {
		at(1)[c] = (l0[c] + l2[c]) / 2
		at(3)[c] = (2*l2[c] + l5[c]) / 3
		at(4)[c] = (l2[c] + 2*l5[c]) / 3
		at(6)[c] = (l5[c] + l7[c]) / 2
	}
}

// usesFirstPalette reports whether module (x, y) is decoded with palette 1.
func usesFirstPalette(x, y, width, height int) bool {
	if width > height {
		return x < width/2
	}
	return y < height/2
}
