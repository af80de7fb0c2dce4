// Package decoder turns the sampled module colors of a symbol into its
// metadata and payload: palette demapping, demasking, deinterleaving, LDPC
// decoding and bit stream parsing.
package decoder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ericlevine/jabcode/internal"
	"github.com/ericlevine/jabcode/ldpc"
)

// Decoder decodes sampled symbols. It holds no per-symbol state and is safe
// for concurrent use.
type Decoder struct {
	logger *zap.Logger
	ldpc   ldpc.Options
}

// NewDecoder creates a Decoder. A nil logger discards output.
func NewDecoder(logger *zap.Logger, opts ldpc.Options) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{logger: logger, ldpc: opts}
}

// GrossLength returns the number of codeword bits a data region carries.
func GrossLength(dataModules, bitsPerModule, wr int) int {
	return dataModules * bitsPerModule / wr * wr
}

// DecodeData decodes the data region of a symbol whose metadata and
// palettes are known.
func (d *Decoder) DecodeData(ctx context.Context, colors *internal.ColorMatrix, md *Metadata, pal *Palettes, master bool) (*internal.DecoderResult, error) {
	if colors.Width != md.Width() || colors.Height != md.Height() {
		return nil, fmt.Errorf("%w: sampled %dx%d modules for a %dx%d symbol",
			ErrFormat, colors.Width, colors.Height, md.Width(), md.Height())
	}
	layout := NewLayout(md, master)
	bpm := md.BitsPerModule()
	hard, soft := Quantize(colors, layout.Data, pal, bpm)
	Demask(hard, soft, layout.Data, md.MaskType, bpm)

	gross := GrossLength(len(layout.Data), bpm, md.RowWeight)
	if gross < md.RowWeight {
		return nil, fmt.Errorf("%w: no room for data", ErrFormat)
	}
	soft = soft[:gross]
	DeinterleaveSoft(soft)

	stream, err := ldpc.DecodeStream(ctx, ldpc.SoftLikelihoods{Values: soft}, md.ColWeight, md.RowWeight, &d.ldpc)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("data decoded",
		zap.Int("blocks", len(stream.Blocks)),
		zap.String("algorithm", string(stream.Algorithm())),
		zap.Int("iterations", stream.Iterations()),
		zap.Int("corrected", stream.Corrected()))

	slaves, dataLen, err := DecodeSlaveMetadata(stream.Message, md)
	if err != nil {
		return nil, err
	}
	for i := range slaves {
		if slaves[i].Metadata.SideVersionX > MaxSideVersion || slaves[i].Metadata.SideVersionY > MaxSideVersion {
			return nil, fmt.Errorf("%w: slave side version", ErrMetadata)
		}
	}
	seg, err := DecodeBitStream(stream.Message[:dataLen], d.logger)
	if err != nil {
		return nil, err
	}

	res := &internal.DecoderResult{
		Segment:         seg.Bytes,
		Message:         stream.Message,
		Metadata:        *md,
		DataOffset:      dataLen,
		ErrorsCorrected: stream.Corrected(),
		Iterations:      stream.Iterations(),
		Algorithm:       string(stream.Algorithm()),
		Truncated:       seg.Stopped != ModeNone,
		Slaves:          slaves,
	}
	for _, s := range slaves {
		res.Metadata.Docked |= 1 << uint(s.Position)
	}
	return res, nil
}
