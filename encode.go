package jabcode

import (
	"fmt"
	"image"

	"github.com/ericlevine/jabcode/decoder"
	"github.com/ericlevine/jabcode/encoder"
)

// SlaveSpec describes a slave symbol docked to an earlier symbol of a code.
type SlaveSpec = encoder.SymbolSpec

// Docking positions of a slave on its host.
const (
	DockTop    = decoder.DockTop
	DockBottom = decoder.DockBottom
	DockLeft   = decoder.DockLeft
	DockRight  = decoder.DockRight
)

// EncodeOptions configures encoding.
type EncodeOptions struct {
	// ColorNumber is the palette size: 4, 8, 16, 32, 64, 128 or 256.
	ColorNumber int

	// ECCLevel selects the LDPC weights, 1..10.
	ECCLevel int

	// MaskType forces one of the eight masks.
	MaskType int

	// SideVersionX and SideVersionY fix the master size, 1..32. Zero picks
	// the smallest square that holds the payload.
	SideVersionX int
	SideVersionY int

	// ModuleSize is the size of a module in pixels.
	ModuleSize int

	// QuietZone is the white margin in modules.
	QuietZone int

	// Slaves lists the docked symbols in the order their hosts are known.
	Slaves []SlaveSpec
}

// DefaultEncodeOptions returns the options used for a nil *EncodeOptions.
func DefaultEncodeOptions() *EncodeOptions {
	d := encoder.DefaultOptions()
	return &EncodeOptions{
		ColorNumber: d.ColorNumber,
		ECCLevel:    d.ECCLevel,
		MaskType:    d.MaskType,
		ModuleSize:  d.ModuleSize,
		QuietZone:   d.QuietZone,
	}
}

// EncodeCode lays out payload as a code without rendering it.
func EncodeCode(payload []byte, opts *EncodeOptions) (*encoder.Code, error) {
	if opts == nil {
		opts = DefaultEncodeOptions()
	}
	code, err := encoder.Encode(payload, &encoder.Options{
		ColorNumber:  opts.ColorNumber,
		ECCLevel:     opts.ECCLevel,
		MaskType:     opts.MaskType,
		SideVersionX: opts.SideVersionX,
		SideVersionY: opts.SideVersionY,
		ModuleSize:   opts.ModuleSize,
		QuietZone:    opts.QuietZone,
		Slaves:       opts.Slaves,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriter, err)
	}
	return code, nil
}

// Encode renders payload as an image.
func Encode(payload []byte, opts *EncodeOptions) (*image.RGBA, error) {
	if opts == nil {
		opts = DefaultEncodeOptions()
	}
	code, err := EncodeCode(payload, opts)
	if err != nil {
		return nil, err
	}
	return encoder.Render(code, opts.ModuleSize, opts.QuietZone), nil
}
