package ldpc

import (
	"fmt"

	"github.com/ericlevine/jabcode/bitutil"
)

// Code is a systematic view of a parity-check matrix. The matrix is brought
// into reduced row echelon form; its free columns carry the message, and the
// free columns beyond the message length are fixed to zero.
type Code struct {
	H *Matrix
	K int

	pivots    []int
	reduced   []*bitutil.BitArray
	message   []int
	shortened []int
	fixed     []bool
}

// NewCode derives the systematic encoder of h for k message bits.
func NewCode(h *Matrix, k int) (*Code, error) {
	n := h.Length
	rows := make([]*bitutil.BitArray, h.Checks)
	for r := range rows {
		rows[r] = bitutil.NewBitArray(n)
		for _, c := range h.Row(r) {
			rows[r].Set(c)
		}
	}

	var pivots []int
	isPivot := make([]bool, n)
	rank := 0
	for col := 0; col < n && rank < len(rows); col++ {
		sel := -1
		for r := rank; r < len(rows); r++ {
			if rows[r].Get(col) {
				sel = r
				break
			}
		}
		if sel < 0 {
			continue
		}
		rows[rank], rows[sel] = rows[sel], rows[rank]
		for r := range rows {
			if r != rank && rows[r].Get(col) {
				rows[r].Xor(rows[rank])
			}
		}
		pivots = append(pivots, col)
		isPivot[col] = true
		rank++
	}

	free := n - rank
	if k < 0 || k > free {
		return nil, fmt.Errorf("%w: %d message bits exceed %d free columns", ErrInvalidParameters, k, free)
	}
	c := &Code{
		H:       h,
		K:       k,
		pivots:  pivots,
		reduced: rows[:rank],
		fixed:   make([]bool, n),
	}
	for col := 0; col < n; col++ {
		if isPivot[col] {
			continue
		}
		if len(c.message) < k {
			c.message = append(c.message, col)
		} else {
			c.shortened = append(c.shortened, col)
			c.fixed[col] = true
		}
	}
	return c, nil
}

// Length returns the codeword length.
func (c *Code) Length() int { return c.H.Length }

// Encode returns the codeword carrying msg (one bit per byte).
func (c *Code) Encode(msg []byte) ([]byte, error) {
	if len(msg) != c.K {
		return nil, fmt.Errorf("%w: message has %d bits, code takes %d", ErrInvalidInput, len(msg), c.K)
	}
	word := make([]byte, c.H.Length)
	for i, col := range c.message {
		word[col] = msg[i] & 1
	}
	for i, row := range c.reduced {
		var p byte
		for col := row.GetNextSet(0); col < c.H.Length; col = row.GetNextSet(col + 1) {
			if col != c.pivots[i] {
				p ^= word[col]
			}
		}
		word[c.pivots[i]] = p
	}
	return word, nil
}

// Extract returns the message bits of a codeword.
func (c *Code) Extract(word []byte) []byte {
	msg := make([]byte, c.K)
	for i, col := range c.message {
		msg[i] = word[col] & 1
	}
	return msg
}

// Valid reports whether word is a codeword with all shortened bits zero.
func (c *Code) Valid(word []byte) bool {
	if !c.H.Check(word) {
		return false
	}
	for _, col := range c.shortened {
		if word[col] != 0 {
			return false
		}
	}
	return true
}
