package decoder

import "fmt"

// DefaultECCLevel is used when no level is requested.
const DefaultECCLevel = 3

// eccLevels maps an ECC level to the (wc, wr) weights of the data code.
var eccLevels = [11][2]int{
	{4, 9}, {3, 8}, {3, 7}, {4, 9}, {3, 6}, {4, 7}, {4, 6}, {3, 4}, {4, 5}, {5, 6}, {6, 7},
}

// ECCWeights returns the column and row weights for an ECC level 0..10.
func ECCWeights(level int) (wc, wr int, err error) {
	if level < 0 || level >= len(eccLevels) {
		return 0, 0, fmt.Errorf("%w: %d", errInvalidECLevel, level)
	}
	return eccLevels[level][0], eccLevels[level][1], nil
}

// ECCLevelForWeights returns the lowest level with the given weights, or -1.
func ECCLevelForWeights(wc, wr int) int {
	for i := 1; i < len(eccLevels); i++ {
		if eccLevels[i][0] == wc && eccLevels[i][1] == wr {
			return i
		}
	}
	return -1
}

// ValidWeights reports whether (wc, wr) can be carried in metadata.
func ValidWeights(wc, wr int) bool {
	return wc >= 3 && wc <= 10 && wr >= 4 && wr <= 11 && wc < wr
}
