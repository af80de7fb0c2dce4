package ldpc

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxBlockLength bounds the length of one data sub-block.
const maxBlockLength = 2700

// BlockLengths splits a gross data length into sub-block codeword lengths.
// All blocks but the last have the same length, a multiple of wr; the last
// one takes the remainder.
func BlockLengths(gross, wr int) []int {
	if gross <= 0 || wr <= 0 {
		return nil
	}
	nb := 1
	for gross/nb >= maxBlockLength {
		nb++
	}
	sub := (gross / nb) / wr * wr
	if sub == 0 {
		return []int{gross}
	}
	count := gross / sub
	lengths := make([]int, count)
	for i := range lengths {
		lengths[i] = sub
	}
	lengths[count-1] += gross - count*sub
	return lengths
}

// MessageLength returns the message bits carried by a codeword of the given
// length.
func MessageLength(length, wc, wr int) int {
	return length * (wr - wc) / wr
}

// NetLength returns the total message bits of a gross data length.
func NetLength(gross, wc, wr int) int {
	n := 0
	for _, l := range BlockLengths(gross, wr) {
		n += MessageLength(l, wc, wr)
	}
	return n
}

// CodeCache memoizes data codes by length for one symbol.
type CodeCache struct {
	wc, wr int
	mu     sync.Mutex
	codes  map[int]*Code
}

// NewCodeCache returns an empty cache for data codes with the given weights.
func NewCodeCache(wc, wr int) *CodeCache {
	return &CodeCache{wc: wc, wr: wr, codes: make(map[int]*Code)}
}

// Get returns the data code for a codeword length, building it on first use.
func (cc *CodeCache) Get(length int) (*Code, error) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if c, ok := cc.codes[length]; ok {
		return c, nil
	}
	h, err := BuildMatrix(length, cc.wc, cc.wr)
	if err != nil {
		return nil, err
	}
	c, err := NewCode(h, MessageLength(length, cc.wc, cc.wr))
	if err != nil {
		return nil, err
	}
	cc.codes[length] = c
	return c, nil
}

// EncodeStream encodes net message bits into gross codeword bits.
func EncodeStream(msg []byte, gross, wc, wr int) ([]byte, error) {
	cache := NewCodeCache(wc, wr)
	out := make([]byte, 0, gross)
	off := 0
	for _, l := range BlockLengths(gross, wr) {
		c, err := cache.Get(l)
		if err != nil {
			return nil, err
		}
		if off+c.K > len(msg) {
			return nil, fmt.Errorf("%w: message has %d bits, stream needs %d", ErrInvalidInput, len(msg), NetLength(gross, wc, wr))
		}
		word, err := c.Encode(msg[off : off+c.K])
		if err != nil {
			return nil, err
		}
		off += c.K
		out = append(out, word...)
	}
	return out, nil
}

// StreamResult is the outcome of decoding all sub-blocks of a data stream.
type StreamResult struct {
	Message []byte
	Blocks  []*Result
}

// Iterations returns the largest iteration count over the blocks.
func (s *StreamResult) Iterations() int {
	n := 0
	for _, b := range s.Blocks {
		if b.Iterations > n {
			n = b.Iterations
		}
	}
	return n
}

// Corrected returns the corrected bits summed over the blocks.
func (s *StreamResult) Corrected() int {
	n := 0
	for _, b := range s.Blocks {
		n += b.Corrected
	}
	return n
}

// Algorithm returns the strongest decoder any block needed.
func (s *StreamResult) Algorithm() Algorithm {
	rank := map[Algorithm]int{AlgorithmNone: 0, AlgorithmBP: 1, AlgorithmILL: 2, AlgorithmBitFlip: 3}
	a := AlgorithmNone
	for _, b := range s.Blocks {
		if rank[b.Algorithm] > rank[a] {
			a = b.Algorithm
		}
	}
	return a
}

// DecodeStream decodes the gross codeword bits of one symbol block by block,
// with the blocks running concurrently, and returns the concatenated message.
func DecodeStream(ctx context.Context, ch ChannelInfo, wc, wr int, opts *Options) (*StreamResult, error) {
	lengths := BlockLengths(ch.length(), wr)
	if len(lengths) == 0 {
		return nil, fmt.Errorf("%w: empty stream", ErrInvalidInput)
	}
	cache := NewCodeCache(wc, wr)
	blocks := make([]*Result, len(lengths))
	msgs := make([][]byte, len(lengths))

	g, ctx := errgroup.WithContext(ctx)
	off := 0
	for i, l := range lengths {
		i, start, end := i, off, off+l
		off = end
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := cache.Get(end - start)
			if err != nil {
				return err
			}
			res, err := Decode(c, sliceChannel(ch, start, end), opts)
			if err != nil {
				return fmt.Errorf("block %d: %w", i, err)
			}
			blocks[i] = res
			msgs[i] = c.Extract(res.Codeword)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res := &StreamResult{Blocks: blocks}
	for _, m := range msgs {
		res.Message = append(res.Message, m...)
	}
	return res, nil
}

func sliceChannel(ch ChannelInfo, start, end int) ChannelInfo {
	switch v := ch.(type) {
	case SoftLikelihoods:
		return SoftLikelihoods{Values: v.Values[start:end]}
	case HardBits:
		return HardBits{Bits: v.Bits[start:end]}
	}
	return ch
}
