package jabcode

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericlevine/jabcode/binarizer"
	"github.com/ericlevine/jabcode/decoder"
	"github.com/ericlevine/jabcode/detector"
	"github.com/ericlevine/jabcode/ldpc"
	"github.com/ericlevine/jabcode/transform"
)

var (
	// ErrNotFound is returned when no master symbol is found in the image.
	ErrNotFound = errors.New("jabcode: symbol not found")

	// ErrChecksum is returned when error correction cannot recover a symbol.
	ErrChecksum = errors.New("jabcode: error correction failed")

	// ErrFormat is returned when metadata or message bits are malformed.
	ErrFormat = errors.New("jabcode: format error")

	// ErrInvalidInput is returned for an unusable image or options.
	ErrInvalidInput = errors.New("jabcode: invalid input")

	// ErrWriter is returned when a payload cannot be encoded.
	ErrWriter = errors.New("jabcode: writer error")
)

// classify maps an error from the pipeline packages to a status and the
// matching package sentinel.
func classify(err error) (Status, error) {
	switch {
	case err == nil:
		return StatusSuccess, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusDecodeFailed, err
	case errors.Is(err, detector.ErrNotFound), errors.Is(err, transform.ErrNotFound),
		errors.Is(err, binarizer.ErrNotFound), errors.Is(err, ErrNotFound):
		return StatusNotFound, ErrNotFound
	case errors.Is(err, ldpc.ErrDecodeFailed), errors.Is(err, ErrChecksum):
		return StatusDecodeFailed, ErrChecksum
	case errors.Is(err, ldpc.ErrInvalidParameters), errors.Is(err, ErrInvalidInput):
		return StatusInvalidInput, ErrInvalidInput
	case errors.Is(err, decoder.ErrMetadata), errors.Is(err, decoder.ErrFormat):
		return StatusDecodeFailed, ErrFormat
	default:
		return StatusDecodeFailed, ErrFormat
	}
}

// wrap joins a pipeline error to its sentinel so both match errors.Is.
func wrap(sentinel, err error) error {
	if sentinel == nil || errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
