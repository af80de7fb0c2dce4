package decoder

import "errors"

var (
	// ErrMetadata is returned when a symbol's metadata cannot be recovered.
	ErrMetadata = errors.New("decoder: metadata decoding failed")

	// ErrFormat is returned when decoded bits do not form a valid message.
	ErrFormat = errors.New("decoder: invalid message format")

	errInvalidVersion   = errors.New("decoder: invalid side version")
	errInvalidECLevel   = errors.New("decoder: invalid error correction level")
	errInvalidColorMode = errors.New("decoder: invalid color mode")
)
