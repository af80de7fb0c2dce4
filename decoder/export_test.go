package decoder

// Part1Modules is the module count of master metadata part 1.
const Part1Modules = part1Modules

// EncodePart1 encodes a raw part 1 message.
func EncodePart1(msg []byte) ([]byte, error) {
	c, err := part1Code()
	if err != nil {
		return nil, err
	}
	return c.Encode(msg)
}
