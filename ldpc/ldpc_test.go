package ldpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"testing"
)

func TestBuildMatrixRegular(t *testing.T) {
	tests := []struct{ length, wc, wr int }{
		{8, 2, 4},
		{12, 2, 4},
		{18, 2, 4},
		{24, 3, 6},
		{90, 4, 9},
		{96, 3, 8},
		{700, 3, 7},
		{1204, 4, 7},
		{2000, 4, 5},
	}
	for _, tt := range tests {
		h, err := BuildMatrix(tt.length, tt.wc, tt.wr)
		if err != nil {
			t.Fatalf("BuildMatrix(%d,%d,%d): %v", tt.length, tt.wc, tt.wr, err)
		}
		if h.Checks*tt.wr != tt.length*tt.wc {
			t.Errorf("(%d,%d,%d): %d checks", tt.length, tt.wc, tt.wr, h.Checks)
		}
		for r := 0; r < h.Checks; r++ {
			seen := map[int]bool{}
			for _, c := range h.Row(r) {
				if seen[c] {
					t.Fatalf("(%d,%d,%d): row %d holds column %d twice", tt.length, tt.wc, tt.wr, r, c)
				}
				seen[c] = true
			}
			if len(seen) != tt.wr {
				t.Errorf("row %d weight %d, want %d", r, len(seen), tt.wr)
			}
		}
		for j := 0; j < tt.length; j++ {
			checks := h.Column(j)
			if len(checks) != tt.wc {
				t.Fatalf("(%d,%d,%d): column %d weight %d", tt.length, tt.wc, tt.wr, j, len(checks))
			}
			for _, r := range checks {
				if !slices.Contains(h.Row(r), j) {
					t.Errorf("column %d lists check %d that does not hold it", j, r)
				}
			}
		}
	}
}

// distinctCodes lists codes large enough to give every column its own
// set of checks.
func distinctCodes(t *testing.T) map[string]*Matrix {
	t.Helper()
	codes := map[string]*Matrix{}
	for _, p := range [][3]int{{64, 2, 4}, {96, 3, 8}, {120, 3, 6}, {700, 3, 7}, {1204, 4, 7}} {
		h, err := BuildMatrix(p[0], p[1], p[2])
		if err != nil {
			t.Fatalf("BuildMatrix%v: %v", p, err)
		}
		codes[fmt.Sprintf("data %v", p)] = h
	}
	for _, n := range []int{12, 16, 18, 20, 24, 28, 32, 48, 96} {
		h, err := BuildMetadataMatrix(n)
		if err != nil {
			t.Fatalf("BuildMetadataMatrix(%d): %v", n, err)
		}
		codes[fmt.Sprintf("metadata %d", n)] = h
	}
	h, err := BuildMetadataMatrixWeights(16, 3, 4)
	if err != nil {
		t.Fatalf("BuildMetadataMatrixWeights: %v", err)
	}
	codes["metadata 16 (3,4)"] = h
	return codes
}

func TestBuildMatrixDistinctColumns(t *testing.T) {
	for name, h := range distinctCodes(t) {
		seen := map[string]int{}
		for j := 0; j < h.Length; j++ {
			checks := h.Column(j)
			slices.Sort(checks)
			key := fmt.Sprint(checks)
			if prev, ok := seen[key]; ok {
				t.Errorf("%s: columns %d and %d share checks %v", name, prev, j, checks)
			}
			seen[key] = j
		}
	}
}

func TestBitFlipCorrectsEverySingleError(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for name, h := range distinctCodes(t) {
		c, err := NewCode(h, MessageLength(h.Length, h.ColWeight, h.RowWeight))
		if err != nil {
			t.Fatalf("%s: NewCode: %v", name, err)
		}
		word, err := c.Encode(randomBits(rng, c.K))
		if err != nil {
			t.Fatal(err)
		}
		for pos := range word {
			rx := append([]byte(nil), word...)
			rx[pos] ^= 1
			res, err := DecodeHard(c, rx, 25)
			if err != nil {
				t.Fatalf("%s: flip at %d: %v", name, pos, err)
			}
			if !slices.Equal(res.Codeword, word) {
				t.Fatalf("%s: flip at %d decoded to another codeword", name, pos)
			}
		}
	}
}

func TestBuildMatrixDeterministic(t *testing.T) {
	a, err := BuildMatrix(120, 3, 6)
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildMatrix(120, 3, 6)
	if err != nil {
		t.Fatal(err)
	}
	for r := 0; r < a.Checks; r++ {
		ra, rb := a.Row(r), b.Row(r)
		for i := range ra {
			if ra[i] != rb[i] {
				t.Fatalf("row %d differs", r)
			}
		}
	}
	m, err := BuildMetadataMatrix(120)
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for r := 0; r < a.Checks && same; r++ {
		for i, c := range a.Row(r) {
			if m.Row(r)[i] != c {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("metadata and data seeds produced the same matrix")
	}
}

func TestBuildMatrixInvalid(t *testing.T) {
	tests := []struct{ length, wc, wr int }{
		{10, 3, 4},
		{12, 4, 4},
		{12, 5, 4},
		{3, 2, 4},
		{12, 0, 4},
	}
	for _, tt := range tests {
		h, err := BuildMatrix(tt.length, tt.wc, tt.wr)
		if !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("BuildMatrix(%d,%d,%d) error = %v, want ErrInvalidParameters", tt.length, tt.wc, tt.wr, err)
		}
		if h != nil {
			t.Errorf("BuildMatrix(%d,%d,%d) returned a matrix", tt.length, tt.wc, tt.wr)
		}
	}
}

func newTestCode(t *testing.T, length, wc, wr int) *Code {
	t.Helper()
	h, err := BuildMatrix(length, wc, wr)
	if err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	c, err := NewCode(h, MessageLength(length, wc, wr))
	if err != nil {
		t.Fatalf("NewCode: %v", err)
	}
	return c
}

func randomBits(rng *rand.Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rng.Intn(2))
	}
	return b
}

func TestEncodeProducesCodewords(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, p := range [][3]int{{96, 3, 8}, {90, 4, 9}, {120, 3, 6}, {18, 2, 4}} {
		c := newTestCode(t, p[0], p[1], p[2])
		for trial := 0; trial < 5; trial++ {
			msg := randomBits(rng, c.K)
			word, err := c.Encode(msg)
			if err != nil {
				t.Fatal(err)
			}
			if !c.Valid(word) {
				t.Fatalf("%v: encoded word has nonzero syndrome", p)
			}
			got := c.Extract(word)
			for i := range msg {
				if got[i] != msg[i] {
					t.Fatalf("%v: message bit %d changed", p, i)
				}
			}
		}
	}
}

func TestDecodeValidInputNoIterations(t *testing.T) {
	c := newTestCode(t, 96, 3, 8)
	word, err := c.Encode(make([]byte, c.K))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Decode(c, HardBits{Bits: word}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Iterations != 0 || res.Corrected != 0 {
		t.Errorf("iterations=%d corrected=%d, want 0 0", res.Iterations, res.Corrected)
	}
}

func TestBitFlipCorrectsSingleError(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	c := newTestCode(t, 96, 3, 8)
	msg := randomBits(rng, c.K)
	word, _ := c.Encode(msg)
	for pos := range word {
		rx := append([]byte(nil), word...)
		rx[pos] ^= 1
		res, err := Decode(c, HardBits{Bits: rx}, nil)
		if err != nil {
			t.Fatalf("flip at %d: %v", pos, err)
		}
		if res.Algorithm != AlgorithmBitFlip {
			t.Errorf("algorithm = %s", res.Algorithm)
		}
		for i := range word {
			if res.Codeword[i] != word[i] {
				t.Fatalf("flip at %d: bit %d not restored", pos, i)
			}
		}
	}
}

func softFromBits(word []byte, weak map[int]bool) []float32 {
	v := make([]float32, len(word))
	for i, b := range word {
		mag := float32(0.8)
		if weak[i] {
			mag = 0.1
		}
		if b == 1 {
			v[i] = -mag
		} else {
			v[i] = mag
		}
	}
	return v
}

func TestBPCorrectsWeakErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	c := newTestCode(t, 720, 3, 6)
	msg := randomBits(rng, c.K)
	word, _ := c.Encode(msg)
	rx := append([]byte(nil), word...)
	weak := map[int]bool{}
	for len(weak) < 12 {
		p := rng.Intn(len(rx))
		if !weak[p] {
			weak[p] = true
			rx[p] ^= 1
		}
	}
	res, err := Decode(c, SoftLikelihoods{Values: softFromBits(rx, weak)}, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Algorithm != AlgorithmBP {
		t.Errorf("algorithm = %s, want bp", res.Algorithm)
	}
	if res.Corrected != 12 {
		t.Errorf("corrected %d bits, want 12", res.Corrected)
	}
	got := c.Extract(res.Codeword)
	for i := range msg {
		if got[i] != msg[i] {
			t.Fatalf("message bit %d wrong", i)
		}
	}
}

func TestILLCorrectsWeakErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	c := newTestCode(t, 360, 3, 6)
	word, _ := c.Encode(randomBits(rng, c.K))
	rx := append([]byte(nil), word...)
	weak := map[int]bool{5: true, 100: true, 200: true}
	for p := range weak {
		rx[p] ^= 1
	}
	res, err := DecodeILL(c, ChannelLLR(softFromBits(rx, weak)), 25)
	if err != nil {
		t.Fatalf("DecodeILL: %v", err)
	}
	for i := range word {
		if res.Codeword[i] != word[i] {
			t.Fatalf("bit %d wrong", i)
		}
	}
}

func TestHeavyNoiseNeverReturnsWrongCodeword(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	c := newTestCode(t, 240, 3, 6)
	for trial := 0; trial < 10; trial++ {
		word, _ := c.Encode(randomBits(rng, c.K))
		rx := append([]byte(nil), word...)
		for i := range rx {
			if rng.Float64() < 0.4 {
				rx[i] ^= 1
			}
		}
		res, err := Decode(c, SoftLikelihoods{Values: softFromBits(rx, nil)}, &Options{Refine: true})
		if err != nil {
			if !errors.Is(err, ErrDecodeFailed) {
				t.Fatalf("unexpected error %v", err)
			}
			continue
		}
		if !c.Valid(res.Codeword) {
			t.Fatal("decoder returned an invalid codeword")
		}
	}
}

func TestDecodeLengthMismatch(t *testing.T) {
	c := newTestCode(t, 96, 3, 8)
	_, err := Decode(c, HardBits{Bits: make([]byte, 10)}, nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestBlockLengths(t *testing.T) {
	tests := []struct {
		gross, wr int
		blocks    int
	}{
		{96, 8, 1},
		{2696, 8, 1},
		{2700, 4, 2},
		{9000, 6, 4},
	}
	for _, tt := range tests {
		l := BlockLengths(tt.gross, tt.wr)
		if len(l) != tt.blocks {
			t.Errorf("BlockLengths(%d,%d) = %d blocks, want %d", tt.gross, tt.wr, len(l), tt.blocks)
		}
		sum := 0
		for _, n := range l {
			if n%tt.wr != 0 {
				t.Errorf("block length %d not a multiple of %d", n, tt.wr)
			}
			sum += n
		}
		if sum != tt.gross {
			t.Errorf("blocks sum to %d, want %d", sum, tt.gross)
		}
	}
}

func TestStreamRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	const gross, wc, wr = 6000, 3, 6
	msg := randomBits(rng, NetLength(gross, wc, wr))
	coded, err := EncodeStream(msg, gross, wc, wr)
	if err != nil {
		t.Fatal(err)
	}
	if len(coded) != gross {
		t.Fatalf("coded length %d, want %d", len(coded), gross)
	}
	coded[10] ^= 1
	coded[4000] ^= 1
	res, err := DecodeStream(context.Background(), HardBits{Bits: coded}, wc, wr, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Message) != len(msg) {
		t.Fatalf("message length %d, want %d", len(res.Message), len(msg))
	}
	for i := range msg {
		if res.Message[i] != msg[i] {
			t.Fatalf("bit %d differs", i)
		}
	}
	if res.Corrected() != 2 {
		t.Errorf("corrected %d, want 2", res.Corrected())
	}
}
