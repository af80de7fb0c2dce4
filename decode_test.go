package jabcode

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ericlevine/jabcode/encoder"
	"github.com/ericlevine/jabcode/metrics"
)

func mustEncode(t *testing.T, payload []byte, opts *EncodeOptions) *image.RGBA {
	t.Helper()
	img, err := Encode(payload, opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return img
}

func TestDecodeRendered(t *testing.T) {
	payload := []byte("Hello JAB Code 2024!")
	img := mustEncode(t, payload, nil)
	res, err := Decode(context.Background(), img, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Status != StatusSuccess {
		t.Fatalf("status %v, want %v", res.Status, StatusSuccess)
	}
	if !bytes.Equal(res.Payload, payload) {
		t.Errorf("payload %q, want %q", res.Payload, payload)
	}
	if res.Text != string(payload) {
		t.Errorf("text %q, want %q", res.Text, payload)
	}
	if len(res.Symbols) != 1 || res.Symbols[0].Host != -1 {
		t.Fatalf("symbols %+v, want one master", res.Symbols)
	}
	if s := res.Symbols[0]; s.Width != 21 || s.Height != 21 || s.Metadata.ColorCount() != 8 {
		t.Errorf("master %dx%d with %d colors, want 21x21 with 8", s.Width, s.Height, s.Metadata.ColorCount())
	}
}

func TestDecodeRotations(t *testing.T) {
	payload := []byte("rotation invariant")
	img := mustEncode(t, payload, nil)
	for q := 0; q < 4; q++ {
		res, err := Decode(context.Background(), Rotate(img, q), nil)
		if err != nil {
			t.Fatalf("%d quarter turns: Decode: %v", q, err)
		}
		if !bytes.Equal(res.Payload, payload) {
			t.Errorf("%d quarter turns: payload %q, want %q", q, res.Payload, payload)
		}
	}
}

// rotateBy turns img clockwise by deg degrees onto a white canvas that holds
// every rotation, taking the nearest source pixel.
func rotateBy(img *image.RGBA, deg float64) *image.RGBA {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	side := int(math.Ceil(math.Hypot(w, h))) + 2
	out := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	sin, cos := math.Sincos(deg * math.Pi / 180)
	c := float64(side) / 2
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			dx, dy := float64(x)+0.5-c, float64(y)+0.5-c
			sx := int(math.Floor(cos*dx + sin*dy + w/2))
			sy := int(math.Floor(-sin*dx + cos*dy + h/2))
			if sx >= 0 && sy >= 0 && sx < b.Dx() && sy < b.Dy() {
				out.SetRGBA(x, y, img.RGBAAt(b.Min.X+sx, b.Min.Y+sy))
			}
		}
	}
	return out
}

func TestDecodeArbitraryRotations(t *testing.T) {
	payload := []byte("any angle will do")
	img := mustEncode(t, payload, nil)
	for _, deg := range []float64{15, 30, 45, 135, 200, 315} {
		res, err := Decode(context.Background(), rotateBy(img, deg), nil)
		if err != nil {
			t.Errorf("%v degrees: Decode: %v", deg, err)
			continue
		}
		if !bytes.Equal(res.Payload, payload) {
			t.Errorf("%v degrees: payload %q, want %q", deg, res.Payload, payload)
		}
		if d := math.Remainder(res.Symbols[0].Rotation-deg, 360); math.Abs(d) > 3 {
			t.Errorf("%v degrees: reported rotation %.1f", deg, res.Symbols[0].Rotation)
		}
	}
}

func TestDecodeColorModes(t *testing.T) {
	for _, n := range []int{4, 8, 16, 32} {
		opts := DefaultEncodeOptions()
		opts.ColorNumber = n
		payload := []byte("colors 0123456789")
		res, err := Decode(context.Background(), mustEncode(t, payload, opts), nil)
		if err != nil {
			t.Fatalf("%d colors: Decode: %v", n, err)
		}
		if !bytes.Equal(res.Payload, payload) {
			t.Errorf("%d colors: payload %q, want %q", n, res.Payload, payload)
		}
	}
}

func TestDecodeExhaustive(t *testing.T) {
	opts := DefaultEncodeOptions()
	opts.SideVersionX, opts.SideVersionY = 3, 2
	payload := []byte("exhaustive search")
	res, err := Decode(context.Background(), mustEncode(t, payload, opts), &DecodeOptions{
		Mode:       ModeExhaustive,
		MaxSymbols: DefaultMaxSymbols,
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(res.Payload, payload) {
		t.Errorf("payload %q, want %q", res.Payload, payload)
	}
	if s := res.Symbols[0]; s.Width != 29 || s.Height != 25 {
		t.Errorf("master %dx%d, want 29x25", s.Width, s.Height)
	}
}

func slaveOptions() *EncodeOptions {
	opts := DefaultEncodeOptions()
	opts.SideVersionX, opts.SideVersionY = 2, 2
	opts.Slaves = []SlaveSpec{
		{Host: 0, Position: DockRight},
		{Host: 0, Position: DockBottom},
	}
	return opts
}

var slavePayload = bytes.Repeat([]byte("Docked slaves carry the rest. "), 12)

func TestDecodeWithSlaves(t *testing.T) {
	res, err := Decode(context.Background(), mustEncode(t, slavePayload, slaveOptions()), nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Status != StatusSuccess {
		t.Fatalf("status %v, want %v", res.Status, StatusSuccess)
	}
	if !bytes.Equal(res.Payload, slavePayload) {
		t.Errorf("payload %q, want %q", res.Payload, slavePayload)
	}
	if len(res.Symbols) != 3 {
		t.Fatalf("%d symbols, want 3", len(res.Symbols))
	}
	// Slaves are discovered top, bottom, left, right.
	if res.Symbols[1].Position != DockBottom || res.Symbols[2].Position != DockRight {
		t.Errorf("slave positions %d, %d, want %d, %d",
			res.Symbols[1].Position, res.Symbols[2].Position, DockBottom, DockRight)
	}
}

// scramble paints random colors over the data modules of the symbol
// docked at position.
func scramble(t *testing.T, img *image.RGBA, code *encoder.Code, position, moduleSize, quietZone int) *encoder.Symbol {
	t.Helper()
	var s *encoder.Symbol
	for _, c := range code.Symbols {
		if c.Host == 0 && c.Position == position && c.Index != 0 {
			s = c
		}
	}
	if s == nil {
		t.Fatalf("no symbol docked at %d", position)
	}
	rng := rand.New(rand.NewPCG(1, 2))
	for _, p := range s.Layout.Data {
		c := color.RGBA{uint8(rng.IntN(2) * 255), uint8(rng.IntN(2) * 255), uint8(rng.IntN(2) * 255), 255}
		x := (s.Origin.X + p.X + quietZone) * moduleSize
		y := (s.Origin.Y + p.Y + quietZone) * moduleSize
		draw.Draw(img, image.Rect(x, y, x+moduleSize, y+moduleSize), image.NewUniform(c), image.Point{}, draw.Src)
	}
	return s
}

func segmentAt(code *encoder.Code, position int) []byte {
	for _, c := range code.Symbols {
		if c.Index != 0 && c.Position == position {
			return c.Segment
		}
	}
	return nil
}

func TestDecodePartialSuccess(t *testing.T) {
	opts := slaveOptions()
	code, err := EncodeCode(slavePayload, opts)
	if err != nil {
		t.Fatalf("EncodeCode: %v", err)
	}
	img := encoder.Render(code, opts.ModuleSize, opts.QuietZone)
	scramble(t, img, code, DockBottom, opts.ModuleSize, opts.QuietZone)

	res, err := Decode(context.Background(), img, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Status != StatusPartialSuccess {
		t.Fatalf("status %v, want %v", res.Status, StatusPartialSuccess)
	}
	want := append(append([]byte(nil), code.Symbols[0].Segment...), segmentAt(code, DockRight)...)
	if !bytes.Equal(res.Payload, want) {
		t.Errorf("payload %q, want %q", res.Payload, want)
	}
	var failed *SymbolResult
	for i := range res.Symbols {
		if res.Symbols[i].Position == DockBottom {
			failed = &res.Symbols[i]
		}
	}
	if failed == nil || failed.Err == nil {
		t.Fatalf("bottom slave not flagged: %+v", failed)
	}
	if failed.Status != StatusDecodeFailed {
		t.Errorf("bottom slave status %v, want %v", failed.Status, StatusDecodeFailed)
	}
	if res.Decoded() != 2 {
		t.Errorf("%d symbols decoded, want 2", res.Decoded())
	}
}

func TestDecodeMaxSymbols(t *testing.T) {
	img := mustEncode(t, slavePayload, slaveOptions())
	res, err := Decode(context.Background(), img, &DecodeOptions{MaxSymbols: 1})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(res.Symbols) != 1 {
		t.Errorf("%d symbols, want 1", len(res.Symbols))
	}
	if !bytes.HasPrefix(slavePayload, res.Payload) {
		t.Errorf("payload %q is not a prefix of the message", res.Payload)
	}
}

func TestDecodeInvalidInput(t *testing.T) {
	img := mustEncode(t, []byte("x"), nil)
	for _, n := range []int{0, -1} {
		res, err := Decode(context.Background(), img, &DecodeOptions{MaxSymbols: n})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("max symbols %d: error %v, want ErrInvalidInput", n, err)
		}
		if res.Status != StatusInvalidInput {
			t.Errorf("max symbols %d: status %v, want %v", n, res.Status, StatusInvalidInput)
		}
	}
	res, err := Decode(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 0)), nil)
	if !errors.Is(err, ErrInvalidInput) || res.Status != StatusInvalidInput {
		t.Errorf("empty image: %v, %v", res.Status, err)
	}
}

func TestDecodeNotFound(t *testing.T) {
	blank := image.NewRGBA(image.Rect(0, 0, 200, 200))
	draw.Draw(blank, blank.Bounds(), image.White, image.Point{}, draw.Src)
	for _, mode := range []Mode{ModeNormal, ModeExhaustive} {
		res, err := Decode(context.Background(), blank, &DecodeOptions{Mode: mode, MaxSymbols: DefaultMaxSymbols})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%v: error %v, want ErrNotFound", mode, err)
		}
		if res.Status != StatusNotFound {
			t.Errorf("%v: status %v, want %v", mode, res.Status, StatusNotFound)
		}
	}
}

func TestDecodeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Decode(ctx, mustEncode(t, []byte("late"), nil), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error %v, want context.Canceled", err)
	}
}

func TestDecodeDetailed(t *testing.T) {
	symbols, err := DecodeDetailed(context.Background(), mustEncode(t, []byte("details"), nil), nil)
	if err != nil {
		t.Fatalf("DecodeDetailed: %v", err)
	}
	if len(symbols) != 1 {
		t.Fatalf("%d symbols, want 1", len(symbols))
	}
	s := symbols[0]
	if s.Status != StatusSuccess || s.Algorithm == "" || s.ModuleSize < 10 || s.ModuleSize > 14 {
		t.Errorf("unexpected diagnostics %+v", s)
	}
}

func TestDecodeMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	opts := DefaultDecodeOptions()
	opts.Metrics = metrics.NewCollector(reg)
	if _, err := Decode(context.Background(), mustEncode(t, []byte("counted"), nil), opts); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := Decode(context.Background(), image.NewRGBA(image.Rect(0, 0, 64, 64)), opts); !errors.Is(err, ErrNotFound) {
		t.Fatalf("blank image: got %v, want ErrNotFound", err)
	}
	want := `
# HELP jabcode_decodes_total Decode calls by overall status
# TYPE jabcode_decodes_total counter
jabcode_decodes_total{status="NOT_FOUND"} 1
jabcode_decodes_total{status="SUCCESS"} 1
# HELP jabcode_symbols_total Symbols processed by role (master, slave) and status
# TYPE jabcode_symbols_total counter
jabcode_symbols_total{role="master",status="SUCCESS"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "jabcode_decodes_total", "jabcode_symbols_total"); err != nil {
		t.Error(err)
	}
	if n, err := testutil.GatherAndCount(reg, "jabcode_ldpc_iterations"); err != nil || n != 1 {
		t.Errorf("iteration series = %d, %v; want 1", n, err)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeNormal, ModeExhaustive} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("fast"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ParseMode(fast) error %v, want ErrInvalidInput", err)
	}
}

func TestEncodeInvalid(t *testing.T) {
	opts := DefaultEncodeOptions()
	opts.ColorNumber = 5
	if _, err := Encode([]byte("x"), opts); !errors.Is(err, ErrWriter) {
		t.Fatalf("error %v, want ErrWriter", err)
	}
}
