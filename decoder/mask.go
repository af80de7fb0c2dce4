package decoder

// DefaultMaskType is used when no mask is requested.
const DefaultMaskType = 7

// MaskFunc returns the mask value of module (x, y).
type MaskFunc func(x, y int) int

// MaskFuncs contains the eight data mask patterns.
var MaskFuncs = [8]MaskFunc{
	func(x, y int) int { return x + y },
	func(x, y int) int { return x },
	func(x, y int) int { return y },
	func(x, y int) int { return x/2 + y/3 },
	func(x, y int) int { return x/3 + y/2 },
	func(x, y int) int { return (x+y)/2 + (x+y)/3 },
	func(x, y int) int { return (x*x*y)%7 + (2*x*x+2*y)%19 },
	func(x, y int) int { return (x*y*y)%5 + (2*x+y*y)%13 },
}

// Demask removes the mask from the module bit stream of a symbol. Module k
// of data owns bits [k*bpm, (k+1)*bpm), most significant first. Its color
// index is XORed with f(x, y) mod colors, which flips the hard bits and
// negates the soft values of the bits set in the mask value. soft may be nil.
func Demask(bits []byte, soft []float32, data []Point, maskType, bitsPerModule int) {
	f := MaskFuncs[maskType]
	colors := 1 << uint(bitsPerModule)
	for k, p := range data {
		v := f(p.X, p.Y) % colors
		if v == 0 {
			continue
		}
		for b := 0; b < bitsPerModule; b++ {
			if v>>uint(bitsPerModule-1-b)&1 == 0 {
				continue
			}
			i := k*bitsPerModule + b
			if i >= len(bits) {
				return
			}
			bits[i] ^= 1
			if soft != nil {
				soft[i] = -soft[i]
			}
		}
	}
}

// Mask applies a data mask. Masking is its own inverse.
func Mask(bits []byte, data []Point, maskType, bitsPerModule int) {
	Demask(bits, nil, data, maskType, bitsPerModule)
}

// MaskIndex returns the masked color index of a data module.
func MaskIndex(index int, p Point, maskType, colors int) int {
	return index ^ (MaskFuncs[maskType](p.X, p.Y) % colors)
}
