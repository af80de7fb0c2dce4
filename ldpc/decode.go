package ldpc

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// MaxLLR bounds every log-likelihood message.
const MaxLLR = 25.0

const (
	defaultIterations = 25
	varianceFloor     = 0.05
)

// Algorithm names the decoder that produced a result.
type Algorithm string

const (
	AlgorithmNone    Algorithm = "none"
	AlgorithmBP      Algorithm = "bp"
	AlgorithmILL     Algorithm = "ill"
	AlgorithmBitFlip Algorithm = "bitflip"
)

// ChannelInfo is what the demapper knows about a received word: either
// signed soft reliabilities or bare hard decisions.
type ChannelInfo interface {
	hardBits() []byte
	length() int
}

// SoftLikelihoods carries one signed reliability per bit. Positive values
// favour 0, negative values favour 1, magnitude is confidence.
type SoftLikelihoods struct {
	Values []float32
}

func (s SoftLikelihoods) hardBits() []byte {
	bits := make([]byte, len(s.Values))
	for i, v := range s.Values {
		if v < 0 {
			bits[i] = 1
		}
	}
	return bits
}

func (s SoftLikelihoods) length() int { return len(s.Values) }

// HardBits carries hard decisions only.
type HardBits struct {
	Bits []byte
}

func (h HardBits) hardBits() []byte {
	bits := make([]byte, len(h.Bits))
	for i, b := range h.Bits {
		bits[i] = b & 1
	}
	return bits
}

func (h HardBits) length() int { return len(h.Bits) }

// Options tunes the decoders. The zero value is usable.
type Options struct {
	// MaxIterations caps every iterative decoder; 0 means 25.
	MaxIterations int

	// Refine runs the layered decoder after a failed belief propagation.
	Refine bool
}

func (o *Options) iterations() int {
	if o == nil || o.MaxIterations <= 0 {
		return defaultIterations
	}
	return o.MaxIterations
}

// Result is a successful decode.
type Result struct {
	Codeword   []byte
	Algorithm  Algorithm
	Iterations int
	// Corrected counts bits that differ from the channel's hard decisions.
	Corrected int
}

// Decode dispatches on the channel information: soft input goes through
// belief propagation, then the layered decoder when refinement is enabled,
// then bit flipping on the hard decisions; hard input goes to bit flipping.
func Decode(c *Code, ch ChannelInfo, opts *Options) (*Result, error) {
	if ch.length() != c.Length() {
		return nil, fmt.Errorf("%w: got %d bits for a %d-bit code", ErrInvalidInput, ch.length(), c.Length())
	}
	maxIter := opts.iterations()
	if soft, ok := ch.(SoftLikelihoods); ok {
		llr := ChannelLLR(soft.Values)
		res, err := DecodeBP(c, llr, maxIter)
		if err == nil {
			return res, nil
		}
		if opts != nil && opts.Refine {
			if res, err = DecodeILL(c, llr, maxIter); err == nil {
				return res, nil
			}
		}
	}
	return DecodeHard(c, ch.hardBits(), maxIter)
}

// ChannelLLR scales signed reliabilities into log-likelihood ratios,
// 2y/sigma^2 with sigma^2 the variance of the reliability magnitudes.
func ChannelLLR(values []float32) []float64 {
	mag := make([]float64, len(values))
	for i, v := range values {
		if v < 0 {
			mag[i] = float64(-v)
		} else {
			mag[i] = float64(v)
		}
	}
	variance := varianceFloor
	if len(mag) > 1 {
		if v := stat.Variance(mag, nil); v > variance {
			variance = v
		}
	}
	llr := make([]float64, len(values))
	for i, v := range values {
		llr[i] = clampLLR(2 * float64(v) / variance)
	}
	return llr
}

func clampLLR(v float64) float64 {
	if v > MaxLLR {
		return MaxLLR
	}
	if v < -MaxLLR {
		return -MaxLLR
	}
	return v
}

// priors copies the channel LLRs and pins shortened positions to zero.
func (c *Code) priors(llr []float64) []float64 {
	p := make([]float64, len(llr))
	copy(p, llr)
	for _, col := range c.shortened {
		p[col] = MaxLLR
	}
	return p
}

func hardDecisions(total []float64, out []byte) {
	for i, v := range total {
		if v < 0 {
			out[i] = 1
		} else {
			out[i] = 0
		}
	}
}

func countDiff(a, b []byte) int {
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n
}
