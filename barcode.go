// Package jabcode reads and writes JAB Code, a two-dimensional color barcode
// made of a master symbol and optional slave symbols docked to its sides.
package jabcode

import (
	"time"

	"github.com/ericlevine/jabcode/detector"
	"github.com/ericlevine/jabcode/internal"
)

// Status is the overall outcome of a decode.
type Status int

const (
	StatusSuccess Status = iota
	StatusPartialSuccess
	StatusNotFound
	StatusDecodeFailed
	StatusInvalidInput
)

// String returns the name of the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusPartialSuccess:
		return "PARTIAL_SUCCESS"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusDecodeFailed:
		return "DECODE_FAILED"
	case StatusInvalidInput:
		return "INVALID_INPUT"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Metadata describes how a symbol is coded.
type Metadata = internal.Metadata

// ResultPoint represents a point of interest in an image.
type ResultPoint struct {
	X, Y float64
}

// SymbolResult is the diagnostic record of one symbol.
type SymbolResult struct {
	// Index is the discovery order; the master is 0.
	Index int
	// Host is the index of the symbol this one is docked to, -1 for the master.
	Host int
	// Position is the docking side on the host (0 top, 1 bottom, 2 left,
	// 3 right), -1 for the master.
	Position int

	// Anchors are the pixel centers of the corner patterns.
	Anchors    [4]ResultPoint
	ModuleSize float64
	Rotation   float64
	Width      int
	Height     int

	Metadata Metadata
	Status   Status
	Payload  []byte

	Algorithm       string
	Iterations      int
	ErrorsCorrected int
	// Truncated is set when the segment stopped on an unsupported mode.
	Truncated bool

	Err error
}

func (r *SymbolResult) setGrid(g *detector.SymbolGrid) {
	for i, p := range g.Anchors {
		r.Anchors[i] = ResultPoint{p.X, p.Y}
	}
	r.ModuleSize = g.ModuleSize
	r.Rotation = g.Rotation
	r.Width, r.Height = g.Width, g.Height
}

func (r *SymbolResult) setDecoded(dr *internal.DecoderResult) {
	r.Metadata = dr.Metadata
	r.Payload = dr.Segment
	r.Algorithm = dr.Algorithm
	r.Iterations = dr.Iterations
	r.ErrorsCorrected = dr.ErrorsCorrected
	r.Truncated = dr.Truncated
}

// Result encapsulates the result of decoding a code.
type Result struct {
	Status Status
	// Payload concatenates the segments of every decoded symbol in
	// discovery order.
	Payload []byte
	// Text is Payload converted to UTF-8.
	Text      string
	Symbols   []SymbolResult
	Timestamp time.Time
}

// Decoded returns the number of symbols that decoded.
func (r *Result) Decoded() int {
	n := 0
	for i := range r.Symbols {
		if r.Symbols[i].Err == nil {
			n++
		}
	}
	return n
}
