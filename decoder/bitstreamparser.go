package decoder

import (
	"fmt"

	"go.uber.org/zap"
)

// bitReader reads big-endian fields from a stream of one bit per byte.
type bitReader struct {
	bits []byte
	pos  int
}

func (r *bitReader) available() int {
	return len(r.bits) - r.pos
}

func (r *bitReader) read(n int) (int, bool) {
	if n > r.available() {
		return 0, false
	}
	v := 0
	for i := 0; i < n; i++ {
		v = v<<1 | int(r.bits[r.pos+i]&1)
	}
	r.pos += n
	return v, true
}

// Segment is the decoded data of one symbol.
type Segment struct {
	Bytes []byte
	// Terminated is set when the segment ended with an end-of-message code.
	Terminated bool
	// Stopped names the mode that ended decoding early, ECI or FNC1.
	Stopped Mode
}

// DecodeBitStream decodes the data of one symbol. Decoding starts in upper
// mode and runs until the end-of-message code, an ECI or FNC1 switch, or
// the end of the bits. A shift records the mode to return to in preMode;
// characters of a shifted mode return there.
func DecodeBitStream(bits []byte, logger *zap.Logger) (*Segment, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &bitReader{bits: bits}
	seg := &Segment{Stopped: ModeNone}
	mode, preMode := ModeUpper, ModeNone

	for {
		switch mode {
		case ModeByte:
			if err := readByteRun(r, seg); err != nil {
				return seg, err
			}
			mode = preMode
			continue
		case ModeECI, ModeFNC1:
			logger.Warn("unsupported mode switch, stopping segment",
				zap.Stringer("mode", mode), zap.Int("bytes", len(seg.Bytes)))
			seg.Stopped = mode
			return seg, nil
		}

		value, ok := r.read(mode.CharacterSize())
		if !ok {
			return seg, fmt.Errorf("%w: stream ended in %s mode without end of message", ErrFormat, mode)
		}
		switch mode {
		case ModeUpper, ModeLower:
			if value <= 26 {
				if mode == ModeUpper {
					seg.Bytes = append(seg.Bytes, UpperTable[value])
				} else {
					seg.Bytes = append(seg.Bytes, LowerTable[value])
				}
				if preMode != ModeNone {
					mode = preMode
				}
				continue
			}
			switch value {
			case 27:
				mode, preMode = ModePunct, mode
			case 28:
				if mode == ModeUpper {
					mode, preMode = ModeLower, ModeNone
				} else {
					mode, preMode = ModeUpper, ModeLower
				}
			case 29:
				mode, preMode = ModeNumeric, ModeNone
			case 30:
				mode, preMode = ModeAlphanumeric, ModeNone
			case 31:
				sw, ok := r.read(2)
				if !ok {
					return seg, fmt.Errorf("%w: truncated mode switch", ErrFormat)
				}
				switch {
				case sw == 0:
					mode, preMode = ModeByte, mode
				case sw == 1:
					mode, preMode = ModeMixed, mode
				case sw == 2 && mode == ModeUpper:
					mode, preMode = ModeECI, ModeNone
				case sw == 2:
					mode, preMode = ModeUpper, ModeNone
				case mode == ModeUpper:
					seg.Terminated = true
					return seg, nil
				default:
					mode, preMode = ModeFNC1, ModeNone
				}
			}
		case ModeNumeric:
			if value <= 12 {
				seg.Bytes = append(seg.Bytes, NumericTable[value])
				if preMode != ModeNone {
					mode = preMode
				}
				continue
			}
			switch value {
			case 13:
				mode, preMode = ModePunct, ModeNumeric
			case 14:
				mode, preMode = ModeUpper, ModeNone
			case 15:
				sw, ok := r.read(2)
				if !ok {
					return seg, fmt.Errorf("%w: truncated mode switch", ErrFormat)
				}
				switch sw {
				case 0:
					mode, preMode = ModeByte, ModeNumeric
				case 1:
					mode, preMode = ModeMixed, ModeNumeric
				case 2:
					mode, preMode = ModeUpper, ModeNumeric
				case 3:
					mode, preMode = ModeLower, ModeNone
				}
			}
		case ModePunct:
			seg.Bytes = append(seg.Bytes, PunctTable[value])
			mode = preMode
		case ModeMixed:
			if pair, ok := MixedPairs[value]; ok {
				seg.Bytes = append(seg.Bytes, pair...)
			} else {
				seg.Bytes = append(seg.Bytes, MixedTable[value])
			}
			mode = preMode
		case ModeAlphanumeric:
			if value <= 62 {
				seg.Bytes = append(seg.Bytes, AlnumTable[value])
				if preMode != ModeNone {
					mode = preMode
				}
				continue
			}
			sw, ok := r.read(2)
			if !ok {
				return seg, fmt.Errorf("%w: truncated mode switch", ErrFormat)
			}
			switch sw {
			case 0:
				mode, preMode = ModeByte, ModeAlphanumeric
			case 1:
				mode, preMode = ModeMixed, ModeAlphanumeric
			case 2:
				mode, preMode = ModePunct, ModeAlphanumeric
			case 3:
				mode, preMode = ModeUpper, ModeNone
			}
		default:
			return seg, fmt.Errorf("%w: no decodable mode after %d bytes", ErrFormat, len(seg.Bytes))
		}
	}
}

// readByteRun reads a byte-mode length and that many bytes. A zero length
// is followed by a 13-bit extended length.
func readByteRun(r *bitReader, seg *Segment) error {
	n, ok := r.read(4)
	if !ok {
		return fmt.Errorf("%w: truncated byte length", ErrFormat)
	}
	if n == 0 {
		ext, ok := r.read(13)
		if !ok {
			return fmt.Errorf("%w: truncated byte length", ErrFormat)
		}
		n = ext + 16
	}
	for i := 0; i < n; i++ {
		b, ok := r.read(8)
		if !ok {
			return fmt.Errorf("%w: byte run of %d ended after %d bytes", ErrFormat, n, i)
		}
		seg.Bytes = append(seg.Bytes, byte(b))
	}
	return nil
}
