package encoder

import "github.com/ericlevine/jabcode/decoder"

// maxByteRun is the longest run one byte-mode switch can carry.
const maxByteRun = 16 + 1<<13 - 1

type bitWriter struct {
	bits []byte
}

func (w *bitWriter) write(v, n int) {
	for i := n - 1; i >= 0; i-- {
		w.bits = append(w.bits, byte(v>>uint(i)&1))
	}
}

func indexOf(table []byte, c byte) int {
	for i, t := range table {
		if t == c {
			return i
		}
	}
	return -1
}

func mixedIndex(c byte) int {
	for i, t := range decoder.MixedTable {
		if t == c {
			if _, pair := decoder.MixedPairs[i]; !pair {
				return i
			}
		}
	}
	return -1
}

func latchTable(m decoder.Mode) []byte {
	switch m {
	case decoder.ModeUpper:
		return decoder.UpperTable
	case decoder.ModeLower:
		return decoder.LowerTable
	case decoder.ModeNumeric:
		return decoder.NumericTable
	}
	return nil
}

func isText(c byte) bool {
	return indexOf(decoder.UpperTable, c) >= 0 || indexOf(decoder.LowerTable, c) >= 0 ||
		indexOf(decoder.NumericTable, c) >= 0 || indexOf(decoder.PunctTable, c) >= 0 ||
		mixedIndex(c) >= 0
}

// latch writes the switch from one latched text mode to another.
func (w *bitWriter) latch(from, to decoder.Mode) {
	switch from {
	case decoder.ModeUpper:
		if to == decoder.ModeLower {
			w.write(28, 5)
		} else {
			w.write(29, 5)
		}
	case decoder.ModeLower:
		if to == decoder.ModeUpper {
			w.write(31, 5)
			w.write(2, 2)
		} else {
			w.write(29, 5)
		}
	case decoder.ModeNumeric:
		if to == decoder.ModeUpper {
			w.write(14, 4)
		} else {
			w.write(15, 4)
			w.write(3, 2)
		}
	}
}

// escape writes the two-bit switch that follows the escape value of a mode.
func (w *bitWriter) escape(from decoder.Mode, sw int) {
	if from == decoder.ModeNumeric {
		w.write(15, 4)
	} else {
		w.write(31, 5)
	}
	w.write(sw, 2)
}

// encodeText encodes data as one self-contained segment: it starts in upper
// mode and ends with the end-of-message code.
func encodeText(data []byte) []byte {
	w := &bitWriter{}
	mode := decoder.ModeUpper
	for i := 0; i < len(data); {
		c := data[i]
		if idx := indexOf(latchTable(mode), c); idx >= 0 {
			w.write(idx, mode.CharacterSize())
			i++
			continue
		}
		target := decoder.ModeNone
		switch {
		case c >= 'A' && c <= 'Z':
			target = decoder.ModeUpper
		case c >= 'a' && c <= 'z':
			target = decoder.ModeLower
		case c >= '0' && c <= '9':
			target = decoder.ModeNumeric
		}
		if target != decoder.ModeNone {
			w.latch(mode, target)
			mode = target
			continue
		}
		if idx := indexOf(decoder.PunctTable, c); idx >= 0 {
			if mode == decoder.ModeNumeric {
				w.write(13, 4)
			} else {
				w.write(27, 5)
			}
			w.write(idx, 4)
			i++
			continue
		}
		if idx := mixedIndex(c); idx >= 0 {
			w.escape(mode, 1)
			w.write(idx, 5)
			i++
			continue
		}
		j := i
		for j < len(data) && j-i < maxByteRun && !isText(data[j]) {
			j++
		}
		n := j - i
		w.escape(mode, 0)
		if n < 16 {
			w.write(n, 4)
		} else {
			w.write(0, 4)
			w.write(n-16, 13)
		}
		for _, b := range data[i:j] {
			w.write(int(b), 8)
		}
		i = j
	}
	if mode != decoder.ModeUpper {
		w.latch(mode, decoder.ModeUpper)
	}
	w.write(31, 5)
	w.write(3, 2)
	return w.bits
}
