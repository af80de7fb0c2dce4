package decoder

// Mode is an encoding mode of the data bit stream.
type Mode int

const (
	ModeUpper Mode = iota
	ModeLower
	ModeNumeric
	ModePunct
	ModeMixed
	ModeAlphanumeric
	ModeByte
	ModeECI
	ModeFNC1
	ModeNone
)

// characterSize is the bit width of one character in each mode.
var characterSize = [...]int{
	ModeUpper:        5,
	ModeLower:        5,
	ModeNumeric:      4,
	ModePunct:        4,
	ModeMixed:        5,
	ModeAlphanumeric: 6,
	ModeByte:         8,
}

// CharacterSize returns the bits per character of a mode.
func (m Mode) CharacterSize() int {
	if m < 0 || int(m) >= len(characterSize) {
		return 0
	}
	return characterSize[m]
}

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeUpper:
		return "upper"
	case ModeLower:
		return "lower"
	case ModeNumeric:
		return "numeric"
	case ModePunct:
		return "punct"
	case ModeMixed:
		return "mixed"
	case ModeAlphanumeric:
		return "alphanumeric"
	case ModeByte:
		return "byte"
	case ModeECI:
		return "eci"
	case ModeFNC1:
		return "fnc1"
	}
	return "none"
}

// Character tables of the text modes.
var (
	UpperTable   = []byte{32, 65, 66, 67, 68, 69, 70, 71, 72, 73, 74, 75, 76, 77, 78, 79, 80, 81, 82, 83, 84, 85, 86, 87, 88, 89, 90}
	LowerTable   = []byte{32, 97, 98, 99, 100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111, 112, 113, 114, 115, 116, 117, 118, 119, 120, 121, 122}
	NumericTable = []byte{32, 48, 49, 50, 51, 52, 53, 54, 55, 56, 57, 44, 46}
	PunctTable   = []byte{33, 34, 36, 37, 38, 39, 40, 41, 44, 45, 46, 47, 58, 59, 63, 64}
	MixedTable   = []byte{35, 42, 43, 60, 61, 62, 91, 92, 93, 94, 95, 96, 123, 124, 125, 126, 9, 10, 13, 0, 0, 0, 0, 164, 167, 196, 214, 220, 223, 228, 246, 252}
	AlnumTable   = []byte{32, 48, 49, 50, 51, 52, 53, 54, 55, 56, 57, 65, 66, 67, 68, 69, 70, 71, 72, 73, 74, 75, 76, 77, 78, 79, 80, 81, 82, 83, 84, 85, 86, 87, 88, 89, 90, 97, 98, 99, 100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111, 112, 113, 114, 115, 116, 117, 118, 119, 120, 121, 122}
)

// MixedPairs are the two-byte sequences of mixed values 19 to 22.
var MixedPairs = map[int]string{
	19: "\n\r",
	20: ", ",
	21: ". ",
	22: ": ",
}
