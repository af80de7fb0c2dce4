package internal

// Metadata describes how a symbol is coded.
type Metadata struct {
	// ColorMode is Nc; the symbol has 2^(Nc+1) colors.
	ColorMode int
	// SideVersionX and SideVersionY are 1..32; the side size is 4v+17.
	SideVersionX int
	SideVersionY int
	// ColWeight and RowWeight are wc and wr of the data code.
	ColWeight int
	RowWeight int
	// MaskType selects one of the eight mask functions.
	MaskType int
	// Docked has bit i set when a slave is docked at position i
	// (0 top, 1 bottom, 2 left, 3 right).
	Docked uint8
	// HostPosition is the side a slave is docked on its host, -1 for a master.
	HostPosition int
}

// ColorCount returns the number of module colors.
func (m *Metadata) ColorCount() int {
	return 1 << uint(m.ColorMode+1)
}

// BitsPerModule returns the bits carried by one module.
func (m *Metadata) BitsPerModule() int {
	return m.ColorMode + 1
}

// Width returns the side size in columns.
func (m *Metadata) Width() int {
	return m.SideVersionX*4 + 17
}

// Height returns the side size in rows.
func (m *Metadata) Height() int {
	return m.SideVersionY*4 + 17
}

// DecoderResult is the outcome of decoding one symbol's modules.
type DecoderResult struct {
	// Segment is the payload carried by this symbol.
	Segment []byte
	// Message holds the decoded net bits.
	Message []byte
	// Metadata is the decoded, or inherited, metadata.
	Metadata Metadata
	// DataOffset is the number of message bits that belong to the segment.
	DataOffset int
	// ErrorsCorrected counts data bits changed by error correction.
	ErrorsCorrected int
	// Iterations is the largest LDPC iteration count over the data blocks.
	Iterations int
	// Algorithm names the strongest LDPC decoder any data block needed.
	Algorithm string
	// Truncated is set when the segment ended on ECI or FNC1.
	Truncated bool
	// Slaves lists the slaves docked to this symbol.
	Slaves []DockedSlave
}

// DockedSlave is the metadata a host carries for a slave docked on one of
// its sides.
type DockedSlave struct {
	Position int
	Metadata Metadata
}
