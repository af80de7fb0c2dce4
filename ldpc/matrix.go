// Package ldpc builds the regular low-density parity-check codes that protect
// symbol metadata and data, and decodes them with soft belief propagation,
// a layered refinement, or hard bit flipping.
package ldpc

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ericlevine/jabcode/prng"
)

var (
	// ErrInvalidParameters is returned for a (length, wc, wr) triple that
	// cannot form a regular matrix.
	ErrInvalidParameters = errors.New("ldpc: invalid matrix parameters")

	// ErrDecodeFailed is returned when no decoder reached a zero syndrome.
	ErrDecodeFailed = errors.New("ldpc: decoding did not converge")

	// ErrInvalidInput is returned for a received word that does not fit the code.
	ErrInvalidInput = errors.New("ldpc: invalid input")
)

// Matrix is a sparse regular parity-check matrix: every column has ColWeight
// ones and every row RowWeight ones.
type Matrix struct {
	Length    int
	Checks    int
	ColWeight int
	RowWeight int

	// edges lists the column of every one, row by row; row r owns
	// edges[r*RowWeight : (r+1)*RowWeight].
	edges []int
	// colEdges lists, per column, the indices into edges that hit it.
	colEdges [][]int
}

// BuildMatrix returns the data-code matrix for (length, wc, wr).
func BuildMatrix(length, wc, wr int) (*Matrix, error) {
	return buildMatrix(length, wc, wr, prng.SeedData)
}

// MetadataWeights returns the column and row weight of the rate 1/2 metadata
// code for a codeword of the given length.
func MetadataWeights(length int) (wc, wr int) {
	if length/2 > 36 {
		return 3, 6
	}
	return 2, 4
}

// BuildMetadataMatrix returns the metadata-code matrix for a codeword length.
func BuildMetadataMatrix(length int) (*Matrix, error) {
	wc, wr := MetadataWeights(length)
	return BuildMetadataMatrixWeights(length, wc, wr)
}

// BuildMetadataMatrixWeights returns a matrix drawn from the metadata
// generator with explicit weights.
func BuildMetadataMatrixWeights(length, wc, wr int) (*Matrix, error) {
	return buildMatrix(length, wc, wr, prng.SeedMetadata)
}

// ValidParameters reports whether (length, wc, wr) describes a regular matrix.
func ValidParameters(length, wc, wr int) bool {
	return wc > 0 && wc < wr && length >= wr && length*wc%wr == 0
}

func buildMatrix(length, wc, wr int, seed uint64) (*Matrix, error) {
	if !ValidParameters(length, wc, wr) {
		return nil, fmt.Errorf("%w: length=%d wc=%d wr=%d", ErrInvalidParameters, length, wc, wr)
	}
	n := length
	sockets := make([]int, n*wc)
	for j := 0; j < n; j++ {
		sockets[j] = j
	}
	perm := make([]int, n)
	for j := range perm {
		perm[j] = j
	}
	src := prng.New(seed)
	for b := 1; b < wc; b++ {
		band := sockets[b*n : (b+1)*n]
		for j := 0; j < n; j++ {
			p := src.Pos(n - j)
			band[perm[p]] = j
			perm[n-1-j], perm[p] = perm[p], perm[n-1-j]
		}
	}
	if n%wr != 0 {
		if err := repairRows(sockets, wr); err != nil {
			return nil, fmt.Errorf("%w: length=%d wc=%d wr=%d", err, length, wc, wr)
		}
	}
	repairColumns(sockets, n, wr)

	m := &Matrix{
		Length:    n,
		Checks:    n * wc / wr,
		ColWeight: wc,
		RowWeight: wr,
		edges:     sockets,
		colEdges:  make([][]int, n),
	}
	for e, c := range sockets {
		m.colEdges[c] = append(m.colEdges[c], e)
	}
	return m, nil
}

// repairRows removes columns that appear twice in one row. That happens only
// when a row straddles two bands.
func repairRows(sockets []int, wr int) error {
	rows := len(sockets) / wr
	inRow := func(r, col int) bool {
		for _, c := range sockets[r*wr : (r+1)*wr] {
			if c == col {
				return true
			}
		}
		return false
	}
	for r := 0; r < rows; r++ {
		start := r * wr
		for k := start + 1; k < start+wr; k++ {
			dup := false
			for i := start; i < k; i++ {
				if sockets[i] == sockets[k] {
					dup = true
					break
				}
			}
			if !dup {
				continue
			}
			fixed := false
			for step := 1; step < rows && !fixed; step++ {
				other := (r + step) % rows
				for q := other * wr; q < (other+1)*wr; q++ {
					if inRow(r, sockets[q]) || inRow(other, sockets[k]) {
						continue
					}
					sockets[k], sockets[q] = sockets[q], sockets[k]
					fixed = true
					break
				}
			}
			if !fixed {
				return ErrInvalidParameters
			}
		}
	}
	return nil
}

// repairColumns gives every column its own set of checks. A column whose
// set repeats an earlier one trades one socket with another column, so that
// both sets are new and no row holds a column twice. Columns are visited in
// order and sockets scanned from the next position on. When no trade exists,
// as in codes with fewer distinct check sets than columns, the duplicate
// stays.
func repairColumns(sockets []int, n, wr int) {
	edges := make([][]int, n)
	for e, c := range sockets {
		edges[c] = append(edges[c], e)
	}
	inRow := func(r, col int) bool {
		return slices.Contains(sockets[r*wr:(r+1)*wr], col)
	}
	// key returns the sorted checks of col with socket drop moved to row add.
	key := func(col, drop, add int) string {
		rows := make([]int, 0, len(edges[col]))
		for _, e := range edges[col] {
			if e == drop {
				rows = append(rows, add)
			} else {
				rows = append(rows, e/wr)
			}
		}
		slices.Sort(rows)
		return fmt.Sprint(rows)
	}

	owner := make(map[string]int, n)
	for j := 0; j < n; j++ {
		k := key(j, -1, 0)
		if _, dup := owner[k]; !dup {
			owner[k] = j
			continue
		}
		swapped := false
		for i := len(edges[j]) - 1; i >= 0 && !swapped; i-- {
			e := edges[j][i]
			re := e / wr
			for s := 1; s < len(sockets); s++ {
				q := (e + s) % len(sockets)
				c, rq := sockets[q], q/wr
				if c == j || rq == re || inRow(re, c) || inRow(rq, j) {
					continue
				}
				kj, kc := key(j, e, rq), key(c, q, re)
				if _, taken := owner[kj]; taken || kj == kc {
					continue
				}
				if _, taken := owner[kc]; c < j && taken {
					continue
				}
				if c < j {
					if old := key(c, -1, 0); owner[old] == c {
						delete(owner, old)
					}
					owner[kc] = c
				}
				owner[kj] = j
				sockets[e], sockets[q] = c, j
				edges[j][i] = q
				for x, ec := range edges[c] {
					if ec == q {
						edges[c][x] = e
					}
				}
				swapped = true
				break
			}
		}
	}
}

// Row returns the columns of check r.
func (m *Matrix) Row(r int) []int {
	return m.edges[r*m.RowWeight : (r+1)*m.RowWeight]
}

// Column returns the checks that column j participates in.
func (m *Matrix) Column(j int) []int {
	checks := make([]int, len(m.colEdges[j]))
	for i, e := range m.colEdges[j] {
		checks[i] = e / m.RowWeight
	}
	return checks
}

// Unsatisfied returns the number of checks whose parity over bits is odd.
func (m *Matrix) Unsatisfied(bits []byte) int {
	n := 0
	for r := 0; r < m.Checks; r++ {
		var p byte
		for _, c := range m.Row(r) {
			p ^= bits[c] & 1
		}
		n += int(p)
	}
	return n
}

// Check reports whether bits has a zero syndrome.
func (m *Matrix) Check(bits []byte) bool {
	if len(bits) != m.Length {
		return false
	}
	return m.Unsatisfied(bits) == 0
}
