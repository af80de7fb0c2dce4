// Package bitutil provides packed bit containers: BitArray for GF(2) row
// operations and BitMatrix for binarized color planes.
package bitutil

import "math/bits"

// BitArray is a fixed-size array of bits packed into uint32 words.
type BitArray struct {
	bits []uint32
	size int
}

// NewBitArray creates a cleared BitArray with the given size.
func NewBitArray(size int) *BitArray {
	if size <= 0 {
		return &BitArray{}
	}
	return &BitArray{
		bits: make([]uint32, (size+31)/32),
		size: size,
	}
}

// Size returns the number of bits in the array.
func (ba *BitArray) Size() int {
	return ba.size
}

// Get returns true if bit i is set.
func (ba *BitArray) Get(i int) bool {
	return (ba.bits[i/32] & (1 << uint(i&0x1F))) != 0
}

// Set sets bit i.
func (ba *BitArray) Set(i int) {
	ba.bits[i/32] |= 1 << uint(i&0x1F)
}

// GetNextSet returns the index of the first set bit at or after from, or
// Size if there is none.
func (ba *BitArray) GetNextSet(from int) int {
	if from >= ba.size {
		return ba.size
	}
	offset := from / 32
	word := ba.bits[offset] & (^uint32(0) << uint(from&0x1F))
	for word == 0 {
		offset++
		if offset == len(ba.bits) {
			return ba.size
		}
		word = ba.bits[offset]
	}
	return min(offset*32+bits.TrailingZeros32(word), ba.size)
}

// Xor adds other to ba over GF(2). Both arrays must have the same size.
func (ba *BitArray) Xor(other *BitArray) {
	if ba.size != other.size {
		panic("bitarray: sizes don't match")
	}
	for i := range ba.bits {
		ba.bits[i] ^= other.bits[i]
	}
}
