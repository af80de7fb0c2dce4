package encoder

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ericlevine/jabcode/decoder"
)

func TestEncodeTextRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"upper", "HELLO WORLD"},
		{"lower", "hello world"},
		{"numeric", "0123456789, 42."},
		{"mixed case", "Hello World From JAB"},
		{"punct", "Hi! (yes) a-b; c?"},
		{"digits after lower", "abc123def"},
		{"lower after digits", "12ab34CD"},
		{"mixed table", "a#b*c+d<e>f[g]h{i}j~\t\n\r"},
		{"bytes", "\x00\x01\x02A\x7f"},
		{"latin", "gr\xfc\xdfe"},
		{"long byte run", strings.Repeat("\x01", 40)},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bits := encodeText([]byte(tt.data))
			seg, err := decoder.DecodeBitStream(bits, nil)
			if err != nil {
				t.Fatalf("DecodeBitStream: %v", err)
			}
			if !seg.Terminated {
				t.Errorf("segment not terminated")
			}
			if !bytes.Equal(seg.Bytes, []byte(tt.data)) {
				t.Errorf("got %q, want %q", seg.Bytes, tt.data)
			}
		})
	}
}

func TestEncodeTextModeSizes(t *testing.T) {
	// Five characters of 5 bits and the end-of-message code.
	if got, want := len(encodeText([]byte("ABCDE"))), 5*5+7; got != want {
		t.Errorf("upper: got %d bits, want %d", got, want)
	}
	// Latch, four digits, latch back, end of message.
	if got, want := len(encodeText([]byte("1234"))), 5+4*4+4+7; got != want {
		t.Errorf("numeric: got %d bits, want %d", got, want)
	}
	// Escape, 13-bit extended length, 20 bytes.
	if got, want := len(encodeText(bytes.Repeat([]byte{1}, 20))), 7+4+13+20*8+7; got != want {
		t.Errorf("byte run: got %d bits, want %d", got, want)
	}
}

func TestEncodeSingleSymbol(t *testing.T) {
	code, err := Encode([]byte("HELLO JAB CODE"), nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(code.Symbols) != 1 {
		t.Fatalf("got %d symbols, want 1", len(code.Symbols))
	}
	s := code.Symbols[0]
	if s.Metadata.SideVersionX != 1 || s.Metadata.SideVersionY != 1 {
		t.Errorf("side version %dx%d, want 1x1", s.Metadata.SideVersionX, s.Metadata.SideVersionY)
	}
	if code.Width != 21 || code.Height != 21 {
		t.Errorf("code is %dx%d, want 21x21", code.Width, code.Height)
	}
	centers := decoder.AnchorCenters(21, 21)
	for i, p := range centers {
		got, ok := code.At(p.X, p.Y)
		if !ok {
			t.Fatalf("anchor %d outside the code", i)
		}
		if want := decoder.Corner(decoder.FinderCore(i)); got != want {
			t.Errorf("anchor %d core %v, want %v", i, got, want)
		}
	}
	if string(s.Segment) != "HELLO JAB CODE" {
		t.Errorf("segment %q", s.Segment)
	}
}

func TestEncodeVersionGrowsWithPayload(t *testing.T) {
	small, err := Encode([]byte("A"), nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	large, err := Encode(bytes.Repeat([]byte("PAYLOAD "), 60), nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if large.Width <= small.Width {
		t.Errorf("large payload width %d not above small payload width %d", large.Width, small.Width)
	}
}

func TestEncodeSlavePlacement(t *testing.T) {
	opts := DefaultOptions()
	opts.SideVersionX, opts.SideVersionY = 3, 3
	opts.Slaves = []SymbolSpec{
		{Host: 0, Position: decoder.DockLeft},
		{Host: 0, Position: decoder.DockBottom, SideVersion: 2},
	}
	code, err := Encode([]byte("SLAVES"), opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	master, left, bottom := code.Symbols[0], code.Symbols[1], code.Symbols[2]
	if master.Origin.X != 29 || master.Origin.Y != 0 {
		t.Errorf("master origin %v, want (29,0)", master.Origin)
	}
	if left.Origin.X != 0 || left.Origin.Y != 0 {
		t.Errorf("left slave origin %v, want (0,0)", left.Origin)
	}
	if bottom.Origin.X != 29 || bottom.Origin.Y != 29 {
		t.Errorf("bottom slave origin %v, want (29,29)", bottom.Origin)
	}
	if bottom.Metadata.Width() != 29 || bottom.Metadata.Height() != 25 {
		t.Errorf("bottom slave %dx%d, want 29x25", bottom.Metadata.Width(), bottom.Metadata.Height())
	}
	if code.Width != 58 || code.Height != 54 {
		t.Errorf("code %dx%d, want 58x54", code.Width, code.Height)
	}
	if left.Metadata.HostPosition != decoder.DockRight {
		t.Errorf("left slave host position %d, want %d", left.Metadata.HostPosition, decoder.DockRight)
	}
}

func TestEncodeInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		mod  func(o *Options)
	}{
		{"color number", func(o *Options) { o.ColorNumber = 3 }},
		{"mask", func(o *Options) { o.MaskType = 8 }},
		{"ecc level", func(o *Options) { o.ECCLevel = 11 }},
		{"version", func(o *Options) { o.SideVersionX = 33 }},
		{"unknown host", func(o *Options) { o.Slaves = []SymbolSpec{{Host: 1, Position: decoder.DockTop}} }},
		{"taken side", func(o *Options) {
			o.Slaves = []SymbolSpec{{Host: 0, Position: decoder.DockTop}, {Host: 0, Position: decoder.DockTop}}
		}},
		{"back to host", func(o *Options) {
			o.Slaves = []SymbolSpec{{Host: 0, Position: decoder.DockTop}, {Host: 1, Position: decoder.DockBottom}}
		}},
		{"overlap", func(o *Options) {
			o.Slaves = []SymbolSpec{
				{Host: 0, Position: decoder.DockRight},
				{Host: 0, Position: decoder.DockBottom},
				{Host: 1, Position: decoder.DockBottom},
				{Host: 2, Position: decoder.DockRight},
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.SideVersionX, opts.SideVersionY = 2, 2
			tt.mod(opts)
			if _, err := Encode([]byte("X"), opts); !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("got %v, want ErrInvalidOptions", err)
			}
		})
	}
}

func TestEncodeCapacity(t *testing.T) {
	opts := DefaultOptions()
	opts.SideVersionX, opts.SideVersionY = 1, 1
	if _, err := Encode(bytes.Repeat([]byte("x"), 2000), opts); !errors.Is(err, ErrCapacity) {
		t.Errorf("got %v, want ErrCapacity", err)
	}
}

func TestEncodeSplitsPayloadAcrossSlaves(t *testing.T) {
	opts := DefaultOptions()
	opts.SideVersionX, opts.SideVersionY = 2, 2
	opts.Slaves = []SymbolSpec{
		{Host: 0, Position: decoder.DockRight},
		{Host: 0, Position: decoder.DockBottom},
	}
	payload := bytes.Repeat([]byte("SPLIT ME "), 30)
	code, err := Encode(payload, opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var joined []byte
	// Payload order is the master, then its slaves by position.
	for _, i := range []int{0, 2, 1} {
		joined = append(joined, code.Symbols[i].Segment...)
	}
	if !bytes.Equal(joined, payload) {
		t.Errorf("segments do not rebuild the payload")
	}
	if len(code.Symbols[1].Segment) == 0 && len(code.Symbols[2].Segment) == 0 {
		t.Errorf("payload did not spill into the slaves")
	}
}

func TestRender(t *testing.T) {
	code, err := Encode([]byte("RENDER"), nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img := Render(code, 3, 2)
	if got, want := img.Bounds().Dx(), (code.Width+4)*3; got != want {
		t.Errorf("width %d, want %d", got, want)
	}
	if c := img.RGBAAt(0, 0); c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("quiet zone pixel %v, want white", c)
	}
	// Center of the upper left finder core.
	x := (2+3)*3 + 1
	if c := img.RGBAAt(x, x); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("finder core pixel %v, want black", c)
	}
}
