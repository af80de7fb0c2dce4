package ldpc

import (
	"fmt"
	"math"
)

const tanhLimit = 1 - 1e-12

// DecodeBP runs flooding sum-product decoding on channel LLRs.
func DecodeBP(c *Code, llr []float64, maxIter int) (*Result, error) {
	h := c.H
	if len(llr) != h.Length {
		return nil, fmt.Errorf("%w: got %d values for a %d-bit code", ErrInvalidInput, len(llr), h.Length)
	}
	prior := c.priors(llr)
	word := make([]byte, h.Length)
	hardDecisions(prior, word)
	initial := make([]byte, h.Length)
	hardDecisions(llr, initial)
	if c.Valid(word) {
		return &Result{Codeword: word, Algorithm: AlgorithmBP}, nil
	}

	v2c := make([]float64, len(h.edges))
	for e, col := range h.edges {
		v2c[e] = prior[col]
	}
	c2v := make([]float64, len(h.edges))
	t := make([]float64, h.RowWeight)
	prefix := make([]float64, h.RowWeight+1)
	total := make([]float64, h.Length)

	for it := 1; it <= maxIter; it++ {
		for r := 0; r < h.Checks; r++ {
			base := r * h.RowWeight
			checkUpdate(v2c[base:base+h.RowWeight], c2v[base:base+h.RowWeight], t, prefix)
		}
		for j := 0; j < h.Length; j++ {
			sum := prior[j]
			for _, e := range h.colEdges[j] {
				sum += c2v[e]
			}
			total[j] = sum
			for _, e := range h.colEdges[j] {
				v2c[e] = clampLLR(sum - c2v[e])
			}
		}
		hardDecisions(total, word)
		if c.Valid(word) {
			return &Result{
				Codeword:   word,
				Algorithm:  AlgorithmBP,
				Iterations: it,
				Corrected:  countDiff(word, initial),
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: belief propagation after %d iterations", ErrDecodeFailed, maxIter)
}

// checkUpdate applies the tanh rule to one check: each outgoing message
// combines every incoming message but its own. Leave-one-out products come
// from prefix and suffix products so zeros need no special case.
func checkUpdate(in, out, t, prefix []float64) {
	n := len(in)
	for i, v := range in {
		t[i] = math.Tanh(v / 2)
	}
	prefix[0] = 1
	for i := 0; i < n; i++ {
		prefix[i+1] = prefix[i] * t[i]
	}
	suffix := 1.0
	for i := n - 1; i >= 0; i-- {
		p := prefix[i] * suffix
		if p > tanhLimit {
			p = tanhLimit
		} else if p < -tanhLimit {
			p = -tanhLimit
		}
		out[i] = clampLLR(2 * math.Atanh(p))
		suffix *= t[i]
	}
}
