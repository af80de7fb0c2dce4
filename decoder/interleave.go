package decoder

import "github.com/ericlevine/jabcode/prng"

// permutation replays the interleaving swaps on an index array; index[i]
// is the source position of interleaved position i.
func permutation(n int) []int {
	index := make([]int, n)
	for i := range index {
		index[i] = i
	}
	src := prng.New(prng.SeedInterleave)
	for i := 0; i < n; i++ {
		p := src.Pos(n - i)
		index[n-1-i], index[p] = index[p], index[n-1-i]
	}
	return index
}

// Interleave shuffles a codeword stream in place.
func Interleave(bits []byte) {
	index := permutation(len(bits))
	tmp := make([]byte, len(bits))
	for i, src := range index {
		tmp[i] = bits[src]
	}
	copy(bits, tmp)
}

// Deinterleave restores the order of an interleaved stream in place.
func Deinterleave(bits []byte) {
	index := permutation(len(bits))
	tmp := make([]byte, len(bits))
	for i, dst := range index {
		tmp[dst] = bits[i]
	}
	copy(bits, tmp)
}

// DeinterleaveSoft restores the order of soft values.
func DeinterleaveSoft(values []float32) {
	index := permutation(len(values))
	tmp := make([]float32, len(values))
	for i, dst := range index {
		tmp[dst] = values[i]
	}
	copy(values, tmp)
}
