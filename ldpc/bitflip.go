package ldpc

import "fmt"

// shortCode is the length below which only one bit flips per iteration.
const shortCode = 36

// DecodeHard runs bit-flipping decoding on hard decisions. Each iteration
// flips the bits that sit in the most unsatisfied checks, skipping the bits
// flipped by the previous iteration so two bits cannot swap back and forth.
func DecodeHard(c *Code, bits []byte, maxIter int) (*Result, error) {
	h := c.H
	if len(bits) != h.Length {
		return nil, fmt.Errorf("%w: got %d bits for a %d-bit code", ErrInvalidInput, len(bits), h.Length)
	}
	word := make([]byte, h.Length)
	for i, b := range bits {
		word[i] = b & 1
	}
	for _, col := range c.shortened {
		word[col] = 0
	}
	initial := make([]byte, h.Length)
	for i, b := range bits {
		initial[i] = b & 1
	}

	syndrome := make([]byte, h.Checks)
	counts := make([]int, h.Length)
	lastFlipped := make([]bool, h.Length)
	var flip []int

	for it := 0; it <= maxIter; it++ {
		unsatisfied := 0
		for r := 0; r < h.Checks; r++ {
			var p byte
			for _, col := range h.Row(r) {
				p ^= word[col]
			}
			syndrome[r] = p
			unsatisfied += int(p)
		}
		if unsatisfied == 0 {
			return &Result{
				Codeword:   word,
				Algorithm:  AlgorithmBitFlip,
				Iterations: it,
				Corrected:  countDiff(word, initial),
			}, nil
		}
		if it == maxIter {
			break
		}

		for j := 0; j < h.Length; j++ {
			counts[j] = 0
			if c.fixed[j] {
				continue
			}
			for _, e := range h.colEdges[j] {
				counts[j] += int(syndrome[e/h.RowWeight])
			}
		}
		flip = selectFlips(counts, lastFlipped, h.Length < shortCode, flip[:0])
		if len(flip) == 0 {
			break
		}
		for j := range lastFlipped {
			lastFlipped[j] = false
		}
		for _, j := range flip {
			word[j] ^= 1
			lastFlipped[j] = true
		}
	}
	return nil, fmt.Errorf("%w: bit flipping after %d iterations", ErrDecodeFailed, maxIter)
}

// selectFlips returns the bits with the highest unsatisfied count outside
// the tabu set, falling back to the tabu set when nothing else is left.
func selectFlips(counts []int, tabu []bool, single bool, flip []int) []int {
	for _, allowTabu := range []bool{false, true} {
		best := 0
		for j, n := range counts {
			if (allowTabu || !tabu[j]) && n > best {
				best = n
			}
		}
		if best == 0 {
			continue
		}
		for j, n := range counts {
			if n == best && (allowTabu || !tabu[j]) {
				flip = append(flip, j)
				if single {
					return flip
				}
			}
		}
		return flip
	}
	return flip
}
