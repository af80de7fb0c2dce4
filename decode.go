package jabcode

import (
	"context"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/ericlevine/jabcode/charset"
	"github.com/ericlevine/jabcode/internal"
	"github.com/ericlevine/jabcode/ldpc"
	"github.com/ericlevine/jabcode/metrics"
)

// DefaultMaxSymbols is the largest number of symbols one code can hold.
const DefaultMaxSymbols = 61

// Mode trades decoding time against robustness.
type Mode int

const (
	// ModeNormal scans a subset of rows and trusts the estimated symbol size.
	ModeNormal Mode = iota
	// ModeExhaustive scans every row, falls back to local thresholds and
	// tries neighbouring symbol sizes.
	ModeExhaustive
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeExhaustive:
		return "exhaustive"
	default:
		return "unknown"
	}
}

// ParseMode returns the mode with the given name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "normal", "":
		return ModeNormal, nil
	case "exhaustive":
		return ModeExhaustive, nil
	}
	return ModeNormal, fmt.Errorf("%w: mode %q", ErrInvalidInput, s)
}

// DecodeOptions configures decoding.
type DecodeOptions struct {
	Mode Mode

	// MaxSymbols bounds the number of symbols decoded, master included.
	// It must be positive.
	MaxSymbols int

	// CharacterSet names the encoding of the payload for Result.Text. Empty
	// guesses it from the bytes.
	CharacterSet string

	// MaxIterations caps every LDPC decoder; 0 uses the decoder default.
	MaxIterations int

	// Logger overrides the package logger for one call.
	Logger *zap.Logger

	// Metrics receives per-call observations when set.
	Metrics *metrics.Collector
}

// DefaultDecodeOptions returns the options used for a nil *DecodeOptions.
func DefaultDecodeOptions() *DecodeOptions {
	return &DecodeOptions{Mode: ModeNormal, MaxSymbols: DefaultMaxSymbols}
}

func (o *DecodeOptions) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return Logger()
}

func (o *DecodeOptions) ldpcOptions() ldpc.Options {
	return ldpc.Options{
		MaxIterations: o.MaxIterations,
		Refine:        o.Mode == ModeExhaustive,
	}
}

// Decode locates and decodes the code in img. The returned Result is never
// nil; its Symbols carry the diagnostics of every symbol attempted. The
// error is nil for StatusSuccess and StatusPartialSuccess and otherwise
// matches ErrNotFound, ErrChecksum, ErrFormat, ErrInvalidInput or the
// context's error.
func Decode(ctx context.Context, img image.Image, opts *DecodeOptions) (*Result, error) {
	if opts == nil {
		opts = DefaultDecodeOptions()
	}
	res := &Result{Timestamp: time.Now()}
	if img == nil || img.Bounds().Empty() {
		res.Status = StatusInvalidInput
		return res, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	if opts.MaxSymbols <= 0 {
		res.Status = StatusInvalidInput
		return res, fmt.Errorf("%w: max symbols %d", ErrInvalidInput, opts.MaxSymbols)
	}

	a := newAssembler(internal.NewBitmapFromImage(img), opts)
	err := a.run(ctx)
	res.Symbols = a.symbols
	res.Status, err = a.status(err)
	if err == nil {
		res.Payload = a.payload()
		text, cerr := charset.Decode(res.Payload, opts.CharacterSet)
		if cerr != nil {
			a.logger.Warn("payload is not text in the requested character set", zap.Error(cerr))
			text = string(res.Payload)
		}
		res.Text = text
	}
	a.observe(res.Status)
	return res, err
}

// DecodeDetailed decodes img like Decode and returns only the per-symbol
// diagnostics.
func DecodeDetailed(ctx context.Context, img image.Image, opts *DecodeOptions) ([]SymbolResult, error) {
	res, err := Decode(ctx, img, opts)
	return res.Symbols, err
}
