package decoder

import (
	"fmt"

	"github.com/ericlevine/jabcode/internal"
	"github.com/ericlevine/jabcode/ldpc"
)

// Metadata describes how a symbol is coded.
type Metadata = internal.Metadata

// Docking positions of a slave relative to its host.
const (
	DockTop = iota
	DockBottom
	DockLeft
	DockRight
)

// OppositeSide returns the side of a slave that touches its host.
func OppositeSide(position int) int {
	return position ^ 1
}

// metadataCode returns the rate 1/2 code protecting k metadata bits.
func metadataCode(k int) (*ldpc.Code, error) {
	h, err := ldpc.BuildMetadataMatrix(2 * k)
	if err != nil {
		return nil, err
	}
	return ldpc.NewCode(h, k)
}

// part1Code returns the code of master metadata part 1. Its columns are
// pairwise distinct, so any single flipped module is corrected.
func part1Code() (*ldpc.Code, error) {
	h, err := ldpc.BuildMetadataMatrixWeights(part1Modules, part1ColWeight, part1RowWeight)
	if err != nil {
		return nil, err
	}
	return ldpc.NewCode(h, part1Bits)
}

// EncodeMetadataPart protects k message bits with the metadata code.
func EncodeMetadataPart(msg []byte) ([]byte, error) {
	c, err := metadataCode(len(msg))
	if err != nil {
		return nil, err
	}
	return c.Encode(msg)
}

func readField(bits []byte, pos, n int) int {
	v := 0
	for i := 0; i < n; i++ {
		v = v<<1 | int(bits[pos+i]&1)
	}
	return v
}

// moduleStream lazily demaps walk modules into a contiguous bit stream.
type moduleStream struct {
	colors *internal.ColorMatrix
	walk   []Point
	next   int
	pal    *Palettes
	dm     *demapper
	bpm    int
	hard   []byte
	soft   []float32
}

func (s *moduleStream) fill(n int) error {
	buf := make([]byte, s.bpm)
	sv := make([]float32, s.bpm)
	for len(s.hard) < n {
		if s.next >= len(s.walk) {
			return fmt.Errorf("%w: metadata walk exhausted", ErrMetadata)
		}
		p := s.walk[s.next]
		s.next++
		s.dm.demap(s.colors.At(p.X, p.Y), s.pal.For(p.X, p.Y, s.colors.Width, s.colors.Height), buf, sv)
		s.hard = append(s.hard, buf...)
		s.soft = append(s.soft, sv...)
	}
	return nil
}

// maxWalk bounds the master metadata walk: part 1, two palettes of 64
// colors and parts 2 and 3 at one bit per module.
const maxWalk = part1Modules + 2*MaxEmbeddedColors + 2*part2Bits + 2*(10+6)

// ReadMasterMetadata recovers the metadata and palettes of a master symbol
// from its sampled colors.
func (d *Decoder) ReadMasterMetadata(colors *internal.ColorMatrix) (*Metadata, *Palettes, error) {
	w, h := colors.Width, colors.Height
	walk := metadataWalk(w, h, maxWalk)

	// Part 1 is black and white; the finder pattern cores and first layers
	// give the reference levels.
	centers := AnchorCenters(w, h)
	black := (luminance(colors.At(centers[0].X, centers[0].Y)) + luminance(colors.At(centers[1].X, centers[1].Y))) / 2
	white := (luminance(colors.At(centers[0].X-1, centers[0].Y)) + luminance(colors.At(centers[1].X+1, centers[1].Y))) / 2
	half := (white - black) / 2
	if half < 8 {
		return nil, nil, fmt.Errorf("%w: no contrast between finder layers", ErrMetadata)
	}
	mid := black + half
	soft := make([]float32, part1Modules)
	for i := range soft {
		p := walk[i]
		v := (mid - luminance(colors.At(p.X, p.Y))) / half
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		soft[i] = v
	}
	c1, err := part1Code()
	if err != nil {
		return nil, nil, err
	}
	part1, err := d.decodeWith(c1, soft)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: part 1: %w", ErrMetadata, err)
	}
	if part1[3] != 0 {
		return nil, nil, fmt.Errorf("%w: part 1 reserved bit set", ErrMetadata)
	}
	md := &Metadata{ColorMode: readField(part1, 0, 3), HostPosition: -1}
	colorCount := md.ColorCount()

	n := embeddedCount(colorCount)
	var emb [2][]internal.Color
	emb[0] = make([]internal.Color, n)
	emb[1] = make([]internal.Color, n)
	for slot := 0; slot < 2*n; slot++ {
		pal, entry := masterPaletteEntry(slot, w, h)
		p := walk[part1Modules+slot]
		emb[pal][entry] = colors.At(p.X, p.Y)
	}
	pal := &Palettes{Interpolate(emb[0], colorCount), Interpolate(emb[1], colorCount)}

	s := &moduleStream{
		colors: colors,
		walk:   walk[part1Modules+2*n:],
		pal:    pal,
		dm:     newDemapper(md.BitsPerModule(), colorCount),
		bpm:    md.BitsPerModule(),
	}
	if err := s.fill(2 * part2Bits); err != nil {
		return nil, nil, err
	}
	part2, err := d.decodePart(s.soft[:2*part2Bits], part2Bits)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: part 2: %w", ErrMetadata, err)
	}
	rect := part2[0] == 1
	vf := readField(part2, 1, 2)
	md.MaskType = readField(part2, 3, 3)

	vlen := versionBits(rect, vf)
	part3Len := 2 * (vlen + 6)
	if err := s.fill(2*part2Bits + part3Len); err != nil {
		return nil, nil, err
	}
	part3, err := d.decodePart(s.soft[2*part2Bits:2*part2Bits+part3Len], vlen+6)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: part 3: %w", ErrMetadata, err)
	}
	md.SideVersionX, md.SideVersionY = decodeVersion(readField(part3, 0, vlen), rect, vf)
	md.ColWeight = readField(part3, vlen, 3) + 3
	md.RowWeight = readField(part3, vlen+3, 3) + 4
	if !ValidWeights(md.ColWeight, md.RowWeight) {
		return nil, nil, fmt.Errorf("%w: error correction weights wc=%d wr=%d", ErrMetadata, md.ColWeight, md.RowWeight)
	}
	if md.SideVersionX > MaxSideVersion || md.SideVersionY > MaxSideVersion {
		return nil, nil, fmt.Errorf("%w: side version %dx%d", ErrMetadata, md.SideVersionX, md.SideVersionY)
	}
	return md, pal, nil
}

func luminance(c internal.Color) float32 {
	return (c[0] + c[1] + c[2]) / 3
}

// decodePart decodes one metadata part from its soft values.
func (d *Decoder) decodePart(soft []float32, k int) ([]byte, error) {
	c, err := metadataCode(k)
	if err != nil {
		return nil, err
	}
	return d.decodeWith(c, soft)
}

func (d *Decoder) decodeWith(c *ldpc.Code, soft []float32) ([]byte, error) {
	res, err := ldpc.Decode(c, ldpc.SoftLikelihoods{Values: soft}, &d.ldpc)
	if err != nil {
		return nil, err
	}
	return c.Extract(res.Codeword), nil
}

// ReadSlavePalettes reads the two palettes embedded in a slave symbol.
func ReadSlavePalettes(colors *internal.ColorMatrix, md *Metadata) *Palettes {
	colorCount := md.ColorCount()
	n := embeddedCount(colorCount)
	var pal Palettes
	for p := 0; p < 2; p++ {
		emb := make([]internal.Color, n)
		for i := range emb {
			pt := slavePalettePosition(i, p, colors.Width, colors.Height)
			emb[i] = colors.At(pt.X, pt.Y)
		}
		pal[p] = Interpolate(emb, colorCount)
	}
	return &pal
}

// tailReader reads the metadata tail of a message backwards.
type tailReader struct {
	msg []byte
	pos int
}

func (t *tailReader) read(n int) (int, error) {
	if t.pos-n+1 < 0 {
		return 0, fmt.Errorf("%w: slave metadata runs past the message start", ErrMetadata)
	}
	v := 0
	for i := 0; i < n; i++ {
		v = v<<1 | int(t.msg[t.pos]&1)
		t.pos--
	}
	return v, nil
}

// DecodeSlaveMetadata parses the tail of a decoded message: the docked
// positions of the symbol and the metadata of every docked slave. host is
// the metadata of the symbol the message belongs to. It returns the slaves
// and the length of the data that precedes the tail.
func DecodeSlaveMetadata(msg []byte, host *Metadata) ([]internal.DockedSlave, int, error) {
	flag := len(msg) - 1
	for flag >= 0 && msg[flag] == 0 {
		flag--
	}
	if flag < 0 {
		return nil, 0, fmt.Errorf("%w: no metadata flag in message", ErrMetadata)
	}
	t := &tailReader{msg: msg, pos: flag - 1}
	var docked [4]bool
	for i := 0; i < 4; i++ {
		if i == host.HostPosition {
			continue
		}
		b, err := t.read(1)
		if err != nil {
			return nil, 0, err
		}
		docked[i] = b == 1
	}
	var slaves []internal.DockedSlave
	for i := 0; i < 4; i++ {
		if !docked[i] {
			continue
		}
		md := Metadata{
			ColorMode:    host.ColorMode,
			MaskType:     host.MaskType,
			SideVersionX: host.SideVersionX,
			SideVersionY: host.SideVersionY,
			ColWeight:    host.ColWeight,
			RowWeight:    host.RowWeight,
			HostPosition: OppositeSide(i),
		}
		ss, err := t.read(1)
		if err != nil {
			return nil, 0, err
		}
		se, err := t.read(1)
		if err != nil {
			return nil, 0, err
		}
		if ss == 1 {
			v, err := t.read(5)
			if err != nil {
				return nil, 0, err
			}
			if i == DockTop || i == DockBottom {
				md.SideVersionY = v + 1
			} else {
				md.SideVersionX = v + 1
			}
		}
		if se == 1 {
			e, err := t.read(6)
			if err != nil {
				return nil, 0, err
			}
			md.ColWeight = e>>3 + 3
			md.RowWeight = e&7 + 4
			if !ValidWeights(md.ColWeight, md.RowWeight) {
				return nil, 0, fmt.Errorf("%w: slave %d weights wc=%d wr=%d", ErrMetadata, i, md.ColWeight, md.RowWeight)
			}
		}
		slaves = append(slaves, internal.DockedSlave{Position: i, Metadata: md})
	}
	return slaves, t.pos + 1, nil
}

func appendField(bits []byte, v, n int) []byte {
	for i := n - 1; i >= 0; i-- {
		bits = append(bits, byte(v>>uint(i)&1))
	}
	return bits
}

// EncodeMasterMetadata returns the coded bits of part 1 (one bit per
// module) and of parts 2 and 3 (one contiguous stream).
func EncodeMasterMetadata(md *Metadata) (part1, part23 []byte, err error) {
	if md.ColorMode < 0 || md.ColorMode > 7 {
		return nil, nil, fmt.Errorf("%w: %d", errInvalidColorMode, md.ColorMode)
	}
	if !ValidWeights(md.ColWeight, md.RowWeight) {
		return nil, nil, fmt.Errorf("%w: wc=%d wr=%d", errInvalidECLevel, md.ColWeight, md.RowWeight)
	}
	msg1 := appendField(nil, md.ColorMode, 3)
	msg1 = append(msg1, 0)
	c1, err := part1Code()
	if err != nil {
		return nil, nil, err
	}
	if part1, err = c1.Encode(msg1); err != nil {
		return nil, nil, err
	}

	rect, vf := versionFlag(md.SideVersionX, md.SideVersionY)
	v, err := encodeVersion(md.SideVersionX, md.SideVersionY, rect, vf)
	if err != nil {
		return nil, nil, err
	}
	var msg2 []byte
	if rect {
		msg2 = append(msg2, 1)
	} else {
		msg2 = append(msg2, 0)
	}
	msg2 = appendField(msg2, vf, 2)
	msg2 = appendField(msg2, md.MaskType, 3)
	p2, err := EncodeMetadataPart(msg2)
	if err != nil {
		return nil, nil, err
	}

	msg3 := appendField(nil, v, versionBits(rect, vf))
	msg3 = appendField(msg3, md.ColWeight-3, 3)
	msg3 = appendField(msg3, md.RowWeight-4, 3)
	p3, err := EncodeMetadataPart(msg3)
	if err != nil {
		return nil, nil, err
	}
	return part1, append(p2, p3...), nil
}

// EncodeSlaveMetadata returns the metadata tail of a symbol in reading
// order: the docked position bits, then one record per docked slave. The
// tail is stored reversed just before the final flag bit of the message.
func EncodeSlaveMetadata(host *Metadata, slaves []internal.DockedSlave) ([]byte, error) {
	var docked [4]*Metadata
	for i := range slaves {
		p := slaves[i].Position
		if p < 0 || p > 3 || p == host.HostPosition || docked[p] != nil {
			return nil, fmt.Errorf("%w: invalid docking position %d", ErrFormat, p)
		}
		docked[p] = &slaves[i].Metadata
	}
	var t []byte
	for i := 0; i < 4; i++ {
		if i == host.HostPosition {
			continue
		}
		if docked[i] != nil {
			t = append(t, 1)
		} else {
			t = append(t, 0)
		}
	}
	for i, md := range docked {
		if md == nil {
			continue
		}
		vx, vy := host.SideVersionX, host.SideVersionY
		var v int
		if i == DockTop || i == DockBottom {
			if md.SideVersionX != vx {
				return nil, fmt.Errorf("%w: slave at %d must be %d modules wide", ErrFormat, i, host.Width())
			}
			v = md.SideVersionY
		} else {
			if md.SideVersionY != vy {
				return nil, fmt.Errorf("%w: slave at %d must be %d modules high", ErrFormat, i, host.Height())
			}
			v = md.SideVersionX
		}
		ss := md.SideVersionX != vx || md.SideVersionY != vy
		se := md.ColWeight != host.ColWeight || md.RowWeight != host.RowWeight
		t = append(t, boolBit(ss), boolBit(se))
		if ss {
			t = appendField(t, v-1, 5)
		}
		if se {
			if !ValidWeights(md.ColWeight, md.RowWeight) {
				return nil, fmt.Errorf("%w: wc=%d wr=%d", errInvalidECLevel, md.ColWeight, md.RowWeight)
			}
			t = appendField(t, md.ColWeight-3, 3)
			t = appendField(t, md.RowWeight-4, 3)
		}
	}
	return t, nil
}

func boolBit(b bool) byte {
	if b {
		return 1
	}
	return 0
}
