package ldpc

import "fmt"

// DecodeILL runs iterative log-likelihood decoding with a layered schedule:
// checks are processed one after another and every variable total is updated
// as soon as a check has spoken, so later checks in the same sweep already
// see the new beliefs.
func DecodeILL(c *Code, llr []float64, maxIter int) (*Result, error) {
	h := c.H
	if len(llr) != h.Length {
		return nil, fmt.Errorf("%w: got %d values for a %d-bit code", ErrInvalidInput, len(llr), h.Length)
	}
	total := c.priors(llr)
	word := make([]byte, h.Length)
	hardDecisions(total, word)
	initial := make([]byte, h.Length)
	hardDecisions(llr, initial)
	if c.Valid(word) {
		return &Result{Codeword: word, Algorithm: AlgorithmILL}, nil
	}

	c2v := make([]float64, len(h.edges))
	in := make([]float64, h.RowWeight)
	out := make([]float64, h.RowWeight)
	t := make([]float64, h.RowWeight)
	prefix := make([]float64, h.RowWeight+1)

	for it := 1; it <= maxIter; it++ {
		for r := 0; r < h.Checks; r++ {
			base := r * h.RowWeight
			row := h.edges[base : base+h.RowWeight]
			for i, col := range row {
				in[i] = clampLLR(total[col] - c2v[base+i])
			}
			checkUpdate(in, out, t, prefix)
			for i, col := range row {
				c2v[base+i] = out[i]
				total[col] = in[i] + out[i]
			}
		}
		hardDecisions(total, word)
		if c.Valid(word) {
			return &Result{
				Codeword:   word,
				Algorithm:  AlgorithmILL,
				Iterations: it,
				Corrected:  countDiff(word, initial),
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: layered decoding after %d iterations", ErrDecodeFailed, maxIter)
}
