// Package encoder implements JAB Code encoding: payload splitting across
// docked symbols, LDPC protection, interleaving, masking and module
// placement.
package encoder

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/ericlevine/jabcode/decoder"
	"github.com/ericlevine/jabcode/internal"
	"github.com/ericlevine/jabcode/ldpc"
)

var (
	ErrInvalidOptions = errors.New("encoder: invalid options")
	ErrCapacity       = errors.New("encoder: payload does not fit")
)

// maxSymbols bounds the number of symbols in one code.
const maxSymbols = 61

// SymbolSpec describes a slave symbol docked to an earlier symbol.
type SymbolSpec struct {
	// Host is the index of the host symbol; 0 is the master.
	Host int
	// Position is the side of the host the slave docks to.
	Position int
	// SideVersion is the version along the axis not shared with the host.
	// Zero keeps the host's.
	SideVersion int
	// ECCLevel selects the slave's code weights. Zero keeps the host's.
	ECCLevel int
}

// Options controls encoding.
type Options struct {
	ColorNumber int
	ECCLevel    int
	MaskType    int
	// SideVersionX and SideVersionY fix the master size. When both are zero
	// the smallest square version that holds the payload is chosen.
	SideVersionX int
	SideVersionY int
	ModuleSize   int
	QuietZone    int
	Slaves       []SymbolSpec
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		ColorNumber: 8,
		ECCLevel:    decoder.DefaultECCLevel,
		MaskType:    decoder.DefaultMaskType,
		ModuleSize:  12,
		QuietZone:   4,
	}
}

// Symbol is one encoded symbol of a code.
type Symbol struct {
	Index    int
	Host     int
	Position int
	Metadata decoder.Metadata
	Layout   *decoder.Layout
	// Modules holds the module colors row by row.
	Modules []internal.Color
	// Origin is the upper left module of the symbol in code coordinates.
	Origin image.Point
	// Segment is the part of the payload the symbol carries.
	Segment []byte
}

// Code is a master symbol with its docked slaves.
type Code struct {
	Symbols []*Symbol
	Width   int
	Height  int
}

// At returns the color of module (x, y) of the code and whether a symbol
// covers it.
func (c *Code) At(x, y int) (internal.Color, bool) {
	for _, s := range c.Symbols {
		w, h := s.Metadata.Width(), s.Metadata.Height()
		sx, sy := x-s.Origin.X, y-s.Origin.Y
		if sx >= 0 && sy >= 0 && sx < w && sy < h {
			return s.Modules[sy*w+sx], true
		}
	}
	return internal.Color{}, false
}

// Encode encodes payload into a code.
func Encode(payload []byte, opts *Options) (*Code, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidOptions)
	}
	colorMode, err := decoder.ColorModeForCount(opts.ColorNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if opts.MaskType < 0 || opts.MaskType >= len(decoder.MaskFuncs) {
		return nil, fmt.Errorf("%w: mask type %d", ErrInvalidOptions, opts.MaskType)
	}
	if len(opts.Slaves)+1 > maxSymbols {
		return nil, fmt.Errorf("%w: %d symbols", ErrInvalidOptions, len(opts.Slaves)+1)
	}
	wc, wr, err := decoder.ECCWeights(opts.ECCLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	master := decoder.Metadata{
		ColorMode:    colorMode,
		MaskType:     opts.MaskType,
		ColWeight:    wc,
		RowWeight:    wr,
		HostPosition: -1,
	}

	if opts.SideVersionX != 0 || opts.SideVersionY != 0 {
		master.SideVersionX, master.SideVersionY = opts.SideVersionX, opts.SideVersionY
		if master.SideVersionX == 0 {
			master.SideVersionX = master.SideVersionY
		}
		if master.SideVersionY == 0 {
			master.SideVersionY = master.SideVersionX
		}
		return build(payload, master, opts.Slaves)
	}
	var lastErr error
	for v := decoder.MinSideVersion; v <= decoder.MaxSideVersion; v++ {
		master.SideVersionX, master.SideVersionY = v, v
		code, err := build(payload, master, opts.Slaves)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, ErrCapacity) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// build lays out the symbols of a code and fills them with payload.
func build(payload []byte, master decoder.Metadata, slaves []SymbolSpec) (*Code, error) {
	if master.SideVersionX < decoder.MinSideVersion || master.SideVersionX > decoder.MaxSideVersion ||
		master.SideVersionY < decoder.MinSideVersion || master.SideVersionY > decoder.MaxSideVersion {
		return nil, fmt.Errorf("%w: side version %dx%d", ErrInvalidOptions, master.SideVersionX, master.SideVersionY)
	}
	symbols := []*Symbol{{Index: 0, Host: -1, Position: -1, Metadata: master}}
	for i, spec := range slaves {
		idx := i + 1
		if spec.Host < 0 || spec.Host >= idx {
			return nil, fmt.Errorf("%w: slave %d docks to unknown symbol %d", ErrInvalidOptions, idx, spec.Host)
		}
		if spec.Position < decoder.DockTop || spec.Position > decoder.DockRight {
			return nil, fmt.Errorf("%w: slave %d position %d", ErrInvalidOptions, idx, spec.Position)
		}
		host := &symbols[spec.Host].Metadata
		if spec.Position == host.HostPosition || host.Docked&(1<<uint(spec.Position)) != 0 {
			return nil, fmt.Errorf("%w: side %d of symbol %d is taken", ErrInvalidOptions, spec.Position, spec.Host)
		}
		host.Docked |= 1 << uint(spec.Position)
		md := decoder.Metadata{
			ColorMode:    host.ColorMode,
			MaskType:     host.MaskType,
			SideVersionX: host.SideVersionX,
			SideVersionY: host.SideVersionY,
			ColWeight:    host.ColWeight,
			RowWeight:    host.RowWeight,
			HostPosition: decoder.OppositeSide(spec.Position),
		}
		if spec.SideVersion != 0 {
			if spec.SideVersion < decoder.MinSideVersion || spec.SideVersion > decoder.MaxSideVersion {
				return nil, fmt.Errorf("%w: slave %d side version %d", ErrInvalidOptions, idx, spec.SideVersion)
			}
			if spec.Position == decoder.DockTop || spec.Position == decoder.DockBottom {
				md.SideVersionY = spec.SideVersion
			} else {
				md.SideVersionX = spec.SideVersion
			}
		}
		if spec.ECCLevel != 0 {
			wc, wr, err := decoder.ECCWeights(spec.ECCLevel)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
			}
			md.ColWeight, md.RowWeight = wc, wr
		}
		symbols = append(symbols, &Symbol{Index: idx, Host: spec.Host, Position: spec.Position, Metadata: md})
	}

	if err := place(symbols); err != nil {
		return nil, err
	}
	order := bfsOrder(symbols)
	rest := payload
	for _, s := range order {
		var err error
		if rest, err = fill(s, symbols, rest); err != nil {
			return nil, err
		}
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: %d bytes left over", ErrCapacity, len(rest))
	}

	code := &Code{Symbols: symbols}
	for _, s := range symbols {
		if r := s.Origin.X + s.Metadata.Width(); r > code.Width {
			code.Width = r
		}
		if b := s.Origin.Y + s.Metadata.Height(); b > code.Height {
			code.Height = b
		}
	}
	return code, nil
}

// children returns the slaves docked to a symbol ordered by position.
func children(symbols []*Symbol, host int) []*Symbol {
	var out []*Symbol
	for _, s := range symbols {
		if s.Host == host {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// bfsOrder lists symbols in payload order: the master, then its slaves by
// position, then theirs.
func bfsOrder(symbols []*Symbol) []*Symbol {
	order := []*Symbol{symbols[0]}
	for i := 0; i < len(order); i++ {
		order = append(order, children(symbols, order[i].Index)...)
	}
	return order
}

// place assigns code coordinates to every symbol and rejects overlaps.
func place(symbols []*Symbol) error {
	for _, s := range symbols[1:] {
		h := symbols[s.Host]
		hw, hh := h.Metadata.Width(), h.Metadata.Height()
		w, ht := s.Metadata.Width(), s.Metadata.Height()
		switch s.Position {
		case decoder.DockRight:
			s.Origin = image.Pt(h.Origin.X+hw, h.Origin.Y)
		case decoder.DockLeft:
			s.Origin = image.Pt(h.Origin.X-w, h.Origin.Y)
		case decoder.DockTop:
			s.Origin = image.Pt(h.Origin.X, h.Origin.Y-ht)
		case decoder.DockBottom:
			s.Origin = image.Pt(h.Origin.X, h.Origin.Y+hh)
		}
	}
	minX, minY := 0, 0
	for _, s := range symbols {
		if s.Origin.X < minX {
			minX = s.Origin.X
		}
		if s.Origin.Y < minY {
			minY = s.Origin.Y
		}
	}
	rects := make([]image.Rectangle, len(symbols))
	for i, s := range symbols {
		s.Origin = s.Origin.Sub(image.Pt(minX, minY))
		rects[i] = image.Rect(s.Origin.X, s.Origin.Y, s.Origin.X+s.Metadata.Width(), s.Origin.Y+s.Metadata.Height())
		for j := 0; j < i; j++ {
			if rects[i].Overlaps(rects[j]) {
				return fmt.Errorf("%w: symbols %d and %d overlap", ErrInvalidOptions, j, i)
			}
		}
	}
	return nil
}

// fill encodes as much of rest as fits into s and returns what is left.
func fill(s *Symbol, symbols []*Symbol, rest []byte) ([]byte, error) {
	md := &s.Metadata
	s.Layout = decoder.NewLayout(md, s.Index == 0)
	bpm := md.BitsPerModule()
	gross := decoder.GrossLength(len(s.Layout.Data), bpm, md.RowWeight)
	if gross < md.RowWeight {
		return nil, fmt.Errorf("%w: symbol %d has no data room", ErrCapacity, s.Index)
	}
	net := ldpc.NetLength(gross, md.ColWeight, md.RowWeight)

	var docked []internal.DockedSlave
	for _, c := range children(symbols, s.Index) {
		docked = append(docked, internal.DockedSlave{Position: c.Position, Metadata: c.Metadata})
	}
	tail, err := decoder.EncodeSlaveMetadata(md, docked)
	if err != nil {
		return nil, err
	}
	budget := net - len(tail) - 1

	n := sort.Search(len(rest)+1, func(n int) bool {
		return len(encodeText(rest[:n])) > budget
	}) - 1
	if n < 0 {
		return nil, fmt.Errorf("%w: symbol %d cannot hold its metadata", ErrCapacity, s.Index)
	}
	seg := encodeText(rest[:n])
	s.Segment = rest[:n]

	msg := make([]byte, net)
	copy(msg, seg)
	for j, b := range tail {
		msg[net-2-j] = b
	}
	msg[net-1] = 1

	word, err := ldpc.EncodeStream(msg, gross, md.ColWeight, md.RowWeight)
	if err != nil {
		return nil, err
	}
	decoder.Interleave(word)
	bits := make([]byte, len(s.Layout.Data)*bpm)
	copy(bits, word)
	for i := len(word); i < len(bits); i++ {
		bits[i] = byte((i - len(word)) & 1)
	}
	decoder.Mask(bits, s.Layout.Data, md.MaskType, bpm)

	if err := s.paint(bits); err != nil {
		return nil, err
	}
	return rest[n:], nil
}

// paint writes the module colors of a symbol from its masked data bits.
func (s *Symbol) paint(bits []byte) error {
	md := &s.Metadata
	w, h := md.Width(), md.Height()
	bpm := md.BitsPerModule()
	count := md.ColorCount()
	palette := decoder.Palette(count)
	s.Modules = make([]internal.Color, w*h)
	set := func(p decoder.Point, c internal.Color) { s.Modules[p.Y*w+p.X] = c }

	for _, m := range decoder.PatternModules(w, h, s.Index == 0) {
		set(m.Point, decoder.Corner(m.Corner))
	}
	embedded := decoder.EmbeddedIndices(count)
	for p := 0; p < 2; p++ {
		for i, pt := range s.Layout.Palette[p] {
			set(pt, palette[embedded[i]])
		}
	}
	if s.Index == 0 {
		part1, part23, err := decoder.EncodeMasterMetadata(md)
		if err != nil {
			return err
		}
		walk := s.Layout.Walk
		for i, b := range part1 {
			if b == 0 {
				set(walk[i], decoder.Corner(decoder.CornerBlack))
			} else {
				set(walk[i], decoder.Corner(decoder.CornerWhite))
			}
		}
		meta := walk[len(part1)+2*len(embedded):]
		for k, p := range meta {
			set(p, palette[moduleIndex(part23, k, bpm)])
		}
	}
	for k, p := range s.Layout.Data {
		set(p, palette[moduleIndex(bits, k, bpm)])
	}
	return nil
}

// moduleIndex reads the bits of module k, most significant first. Bits past
// the end read as zero.
func moduleIndex(bits []byte, k, bpm int) int {
	v := 0
	for b := 0; b < bpm; b++ {
		v <<= 1
		if i := k*bpm + b; i < len(bits) {
			v |= int(bits[i] & 1)
		}
	}
	return v
}
