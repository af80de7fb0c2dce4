package decoder

import (
	"math"

	"github.com/ericlevine/jabcode/internal"
)

// Palettes holds the two palettes of a symbol. Palette 0 serves the upper
// half, or the left half of a wide symbol.
type Palettes [2][]internal.Color

// For returns the palette used by module (x, y).
func (p *Palettes) For(x, y, width, height int) []internal.Color {
	if usesFirstPalette(x, y, width, height) {
		return p[0]
	}
	return p[1]
}

// demapper turns a sampled color into hard bits and per-bit reliabilities.
type demapper struct {
	bits int
	dist []float64
}

func newDemapper(bitsPerModule, colors int) *demapper {
	return &demapper{bits: bitsPerModule, dist: make([]float64, colors)}
}

// demap writes the bits of the nearest palette color to hard and a signed
// reliability per bit to soft: (dAlt-dBest)/(dAlt+dBest), where dAlt is the
// distance to the nearest color that differs in that bit. Positive favours
// 0. It returns the chosen index.
func (d *demapper) demap(c internal.Color, palette []internal.Color, hard []byte, soft []float32) int {
	best := 0
	for i, p := range palette {
		d.dist[i] = math.Sqrt(float64(c.Dist2(p)))
		if d.dist[i] < d.dist[best] {
			best = i
		}
	}
	dBest := d.dist[best]
	for b := 0; b < d.bits; b++ {
		shift := uint(d.bits - 1 - b)
		bit := best >> shift & 1
		dAlt := math.Inf(1)
		for i := range palette {
			if i>>shift&1 != bit && d.dist[i] < dAlt {
				dAlt = d.dist[i]
			}
		}
		r := 1e-6
		if sum := dAlt + dBest; sum > 0 && !math.IsInf(dAlt, 1) {
			r = math.Max((dAlt-dBest)/sum, 1e-6)
		}
		hard[b] = byte(bit)
		if bit == 1 {
			soft[b] = float32(-r)
		} else {
			soft[b] = float32(r)
		}
	}
	return best
}

// Quantize demaps the given modules in order into a bit stream of
// bitsPerModule bits per module, with signed reliabilities.
func Quantize(colors *internal.ColorMatrix, modules []Point, pal *Palettes, bitsPerModule int) ([]byte, []float32) {
	hard := make([]byte, len(modules)*bitsPerModule)
	soft := make([]float32, len(hard))
	dm := newDemapper(bitsPerModule, len(pal[0]))
	for k, p := range modules {
		o := k * bitsPerModule
		dm.demap(colors.At(p.X, p.Y), pal.For(p.X, p.Y, colors.Width, colors.Height), hard[o:o+bitsPerModule], soft[o:o+bitsPerModule])
	}
	return hard, soft
}

// ModuleIndices returns the nearest palette index of every listed module.
func ModuleIndices(colors *internal.ColorMatrix, modules []Point, pal *Palettes, bitsPerModule int) []int {
	idx := make([]int, len(modules))
	dm := newDemapper(bitsPerModule, len(pal[0]))
	hard := make([]byte, bitsPerModule)
	soft := make([]float32, bitsPerModule)
	for k, p := range modules {
		idx[k] = dm.demap(colors.At(p.X, p.Y), pal.For(p.X, p.Y, colors.Width, colors.Height), hard, soft)
	}
	return idx
}
