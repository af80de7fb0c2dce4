// Package charset converts payload bytes to UTF-8, either from a named
// character set or from one guessed from the bytes themselves.
package charset

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnknown is returned for a character set name with no known encoding.
var ErrUnknown = errors.New("charset: unknown character set")

// aliases maps the short names used by barcode tooling to IANA names.
var aliases = map[string]string{
	"UTF8":       "UTF-8",
	"ASCII":      "US-ASCII",
	"ISO8859_1":  "ISO-8859-1",
	"ISO8859_2":  "ISO-8859-2",
	"ISO8859_5":  "ISO-8859-5",
	"ISO8859_7":  "ISO-8859-7",
	"ISO8859_15": "ISO-8859-15",
	"SJIS":       "Shift_JIS",
	"CP1250":     "windows-1250",
	"CP1251":     "windows-1251",
	"CP1252":     "windows-1252",
	"CP1256":     "windows-1256",
	"CP437":      "IBM437",
	"EUC_KR":     "EUC-KR",
	"EUC_CN":     "GB18030",
	"GB2312":     "GB18030",
	"GBK":        "GB18030",
}

// Lookup returns the encoding for an IANA name or a common alias.
func Lookup(name string) (encoding.Encoding, error) {
	if n, ok := aliases[strings.ToUpper(name)]; ok {
		name = n
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	if enc == nil {
		// Known to the index but without an implementation.
		return nil, fmt.Errorf("%w: %q has no decoder", ErrUnknown, name)
	}
	return enc, nil
}

// Decode converts data to UTF-8. An empty name guesses the character set.
func Decode(data []byte, name string) (string, error) {
	if name == "" {
		name = GuessEncoding(data)
	}
	if name == "UTF-8" && utf8.Valid(data) {
		return string(data), nil
	}
	enc, err := Lookup(name)
	if err != nil {
		return "", err
	}
	if enc == unicode.UTF8 {
		return string(data), nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("charset: decoding %s: %w", name, err)
	}
	return string(out), nil
}
