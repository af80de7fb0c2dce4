package charset

// utf8Scan tracks whether the bytes form well-formed UTF-8 and how many
// multi-byte sequences they contain.
type utf8Scan struct {
	ok        bool
	left      int
	multiByte int
}

func (s *utf8Scan) feed(v byte) {
	if !s.ok {
		return
	}
	if s.left > 0 {
		if v&0x80 == 0 {
			s.ok = false
		} else {
			s.left--
		}
		return
	}
	switch {
	case v&0x80 == 0:
	case v&0x40 == 0:
		s.ok = false
	case v&0x20 == 0:
		s.left, s.multiByte = 1, s.multiByte+1
	case v&0x10 == 0:
		s.left, s.multiByte = 2, s.multiByte+1
	case v&0x08 == 0:
		s.left, s.multiByte = 3, s.multiByte+1
	default:
		s.ok = false
	}
}

// latin1Scan rejects the C1 control range and counts high symbols that are
// rare in real Latin-1 text.
type latin1Scan struct {
	ok        bool
	highOther int
}

func (s *latin1Scan) feed(v byte) {
	if !s.ok {
		return
	}
	if v > 0x7F && v < 0xA0 {
		s.ok = false
	} else if v > 0x9F && (v < 0xC0 || v == 0xD7 || v == 0xF7) {
		s.highOther++
	}
}

// sjisScan follows Shift_JIS lead and trail bytes and measures the longest
// runs of half-width katakana and of double-byte characters.
type sjisScan struct {
	ok           bool
	left         int
	katakana     int
	kanaRun      int
	doubleRun    int
	maxKanaRun   int
	maxDoubleRun int
}

func (s *sjisScan) feed(v byte) {
	if !s.ok {
		return
	}
	switch {
	case s.left > 0:
		if v < 0x40 || v == 0x7F || v > 0xFC {
			s.ok = false
		} else {
			s.left--
		}
	case v == 0x80 || v == 0xA0 || v > 0xEF:
		s.ok = false
	case v > 0xA0 && v < 0xE0:
		s.katakana++
		s.doubleRun = 0
		s.kanaRun++
		s.maxKanaRun = max(s.maxKanaRun, s.kanaRun)
	case v > 0x7F:
		s.left++
		s.kanaRun = 0
		s.doubleRun++
		s.maxDoubleRun = max(s.maxDoubleRun, s.doubleRun)
	default:
		s.kanaRun, s.doubleRun = 0, 0
	}
}

// GuessEncoding returns the IANA name of the most plausible character set
// for data: "UTF-8", "Shift_JIS", "ISO-8859-1" or "UTF-16".
func GuessEncoding(data []byte) string {
	if len(data) > 2 && (data[0] == 0xFE && data[1] == 0xFF || data[0] == 0xFF && data[1] == 0xFE) {
		return "UTF-16"
	}
	u := utf8Scan{ok: true}
	l := latin1Scan{ok: true}
	s := sjisScan{ok: true}
	for _, v := range data {
		if !u.ok && !l.ok && !s.ok {
			break
		}
		u.feed(v)
		l.feed(v)
		s.feed(v)
	}
	u.ok = u.ok && u.left == 0
	s.ok = s.ok && s.left == 0

	bom := len(data) > 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF
	switch {
	case u.ok && (bom || u.multiByte > 0):
		return "UTF-8"
	case s.ok && (s.maxKanaRun >= 3 || s.maxDoubleRun >= 3):
		return "Shift_JIS"
	case l.ok && s.ok:
		if (s.maxKanaRun == 2 && s.katakana == 2) || l.highOther*10 >= len(data) {
			return "Shift_JIS"
		}
		return "ISO-8859-1"
	case l.ok:
		return "ISO-8859-1"
	case s.ok:
		return "Shift_JIS"
	default:
		return "UTF-8"
	}
}
