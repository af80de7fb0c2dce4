package decoder

// DistanceToBorder is the distance from a finder pattern center to the
// symbol border, plus one.
const DistanceToBorder = 4

const minAlignmentDistance = 16

// Point is a module position, X the column and Y the row.
type Point struct {
	X, Y int
}

// PatternModule is a module of a finder or alignment pattern with its fixed
// cube-corner color.
type PatternModule struct {
	Point
	Corner int
}

// finderCores are the core colors of FP0..FP3 in a master symbol.
var finderCores = [4]int{CornerBlack, CornerBlack, CornerYellow, CornerCyan}

// AnchorCenters returns the module centers of the four corner patterns,
// in order upper left, upper right, lower right, lower left.
func AnchorCenters(width, height int) [4]Point {
	d := DistanceToBorder - 1
	return [4]Point{
		{d, d},
		{width - 1 - d, d},
		{width - 1 - d, height - 1 - d},
		{d, height - 1 - d},
	}
}

// FinderCore returns the core color of master finder pattern i.
func FinderCore(i int) int {
	return finderCores[i]
}

// AlignmentAxis returns the pattern centers along one axis, the corner
// patterns first and last.
func AlignmentAxis(size int) []int {
	span := size - (DistanceToBorder*2 - 1)
	n := span/minAlignmentDistance - 1
	if n < 0 {
		n = 0
	}
	n += 2
	centers := make([]int, n)
	for j := range centers {
		centers[j] = DistanceToBorder - 1 + j*span/(n-1)
	}
	return centers
}

// PatternModules returns every module of the finder, anchor and alignment
// patterns of a symbol.
func PatternModules(width, height int, master bool) []PatternModule {
	xs := AlignmentAxis(width)
	ys := AlignmentAxis(height)
	var mods []PatternModule
	add := func(x, y, corner int) {
		mods = append(mods, PatternModule{Point{x, y}, corner})
	}
	for i, cy := range ys {
		for j, cx := range xs {
			first, last := i == 0, i == len(ys)-1
			corner := (j == 0 || j == len(xs)-1) && (first || last)
			if !corner {
				add(cx, cy, CornerYellow)
				for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
					add(cx+d[0], cy+d[1], CornerBlue)
				}
				if i%2 == j%2 {
					add(cx-1, cy-1, CornerBlue)
					add(cx+1, cy+1, CornerBlue)
				} else {
					add(cx+1, cy-1, CornerBlue)
					add(cx-1, cy+1, CornerBlue)
				}
				continue
			}
			// Upper patterns fill the upper-left and lower-right quadrants,
			// lower patterns the upper-right and lower-left ones.
			sx := 1
			if last {
				sx = -1
			}
			core, layers := CornerCyan, 2
			if master {
				layers = 3
				switch {
				case first && j == 0:
					core = finderCores[0]
				case first:
					core = finderCores[1]
				case j != 0:
					core = finderCores[2]
				default:
					core = finderCores[3]
				}
			}
			add(cx, cy, core)
			for k := 1; k < layers; k++ {
				c := core
				if k%2 == 1 {
					c = 7 - core
				}
				for a := 0; a <= k; a++ {
					for b := 0; b <= k; b++ {
						if a != k && b != k {
							continue
						}
						// (a, b) is (row, column) distance inside the quadrant.
						add(cx-b*sx, cy-a, c)
						add(cx+b*sx, cy+a, c)
					}
				}
			}
		}
	}
	return mods
}

// structuralMap marks the pattern modules of a symbol.
func structuralMap(width, height int, master bool) []bool {
	m := make([]bool, width*height)
	for _, p := range PatternModules(width, height, master) {
		m[p.Y*width+p.X] = true
	}
	return m
}

// metadataWalk returns the first n positions of the master metadata walk.
func metadataWalk(width, height, n int) []Point {
	walk := make([]Point, 0, n)
	x, y := 6, 1
	for count := 0; count < n; count++ {
		if count > 0 {
			switch count % 4 {
			case 0, 2:
				y = height - 1 - y
			case 1, 3:
				x = width - 1 - x
			}
			if count%4 == 0 {
				switch {
				case count <= 20 || (count >= 44 && count <= 68) ||
					(count >= 96 && count <= 124) || (count >= 156 && count <= 172):
					y++
				case (count > 20 && count < 44) || (count > 68 && count < 96) ||
					(count > 124 && count < 156):
					x--
				}
			}
			if count == 44 || count == 96 || count == 156 {
				x, y = y, x
			}
		}
		walk = append(walk, Point{x, y})
	}
	return walk
}

// slavePalettePositions lists the positions of palette 1 entries 0, 2, 4...
// in a slave symbol.
var slavePalettePositions = [32]Point{
	{4, 5}, {4, 6}, {4, 7}, {4, 8}, {4, 9}, {4, 10}, {4, 11}, {4, 12},
	{5, 12}, {5, 11}, {5, 10}, {5, 9}, {5, 8}, {5, 7}, {5, 6}, {5, 5},
	{6, 5}, {6, 6}, {6, 7}, {6, 8}, {6, 9}, {6, 10}, {6, 11}, {6, 12},
	{7, 12}, {7, 11}, {7, 10}, {7, 9}, {7, 8}, {7, 7}, {7, 6}, {7, 5},
}

// slavePalettePosition returns where entry i of palette p (0 or 1) sits in
// a slave symbol.
func slavePalettePosition(i, p, width, height int) Point {
	t := slavePalettePositions[i/2]
	pt := t
	if i%2 == 1 {
		if width > height {
			pt = Point{t.Y, height - 1 - t.X}
		} else {
			pt = Point{width - 1 - t.Y, t.X}
		}
	}
	if p == 1 {
		pt = Point{width - 1 - pt.X, height - 1 - pt.Y}
	}
	return pt
}

// Part sizes of the master metadata, in coded bits or modules. Part 1 has
// its own column and row weights; parts 2 and 3 use the rate 1/2 metadata
// code.
const (
	part1Modules   = 16
	part1Bits      = 4
	part1ColWeight = 3
	part1RowWeight = 4
	part2Bits      = 6
)

// masterMetadataModules returns the number of walk modules the master
// metadata occupies.
func masterMetadataModules(md *Metadata) int {
	rect, vf := versionFlag(md.SideVersionX, md.SideVersionY)
	coded := 2*part2Bits + 2*(versionBits(rect, vf)+6)
	bpm := md.BitsPerModule()
	return part1Modules + 2*embeddedCount(md.ColorCount()) + (coded+bpm-1)/bpm
}

func embeddedCount(colors int) int {
	if colors > MaxEmbeddedColors {
		return MaxEmbeddedColors
	}
	return colors
}

// Layout assigns every module of a symbol to a pattern, metadata, palette or
// data.
type Layout struct {
	Width  int
	Height int
	Master bool
	// Data lists the data modules in placement order, column by column.
	Data []Point
	// Walk lists the master metadata modules in reading order.
	Walk []Point
	// Palette lists the positions of the embedded entries of both palettes.
	Palette [2][]Point
}

// NewLayout computes the layout of a symbol described by md.
func NewLayout(md *Metadata, master bool) *Layout {
	w, h := md.Width(), md.Height()
	l := &Layout{Width: w, Height: h, Master: master}
	used := structuralMap(w, h, master)
	n := embeddedCount(md.ColorCount())
	l.Palette[0] = make([]Point, n)
	l.Palette[1] = make([]Point, n)
	if master {
		l.Walk = metadataWalk(w, h, masterMetadataModules(md))
		for _, p := range l.Walk {
			used[p.Y*w+p.X] = true
		}
		for slot := 0; slot < 2*n; slot++ {
			pal, entry := masterPaletteEntry(slot, w, h)
			l.Palette[pal][entry] = l.Walk[part1Modules+slot]
		}
	} else {
		for p := 0; p < 2; p++ {
			for i := 0; i < n; i++ {
				pt := slavePalettePosition(i, p, w, h)
				l.Palette[p][i] = pt
				used[pt.Y*w+pt.X] = true
			}
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if !used[y*w+x] {
				l.Data = append(l.Data, Point{x, y})
			}
		}
	}
	return l
}

// masterPaletteEntry returns the palette and entry stored at a palette slot
// of the master metadata walk. Slots come in groups of four per color pair.
func masterPaletteEntry(slot, width, height int) (palette, entry int) {
	pair := slot / 4 * 2
	if width > height {
		switch slot % 4 {
		case 0:
			return 0, pair
		case 1:
			return 1, pair + 1
		case 2:
			return 1, pair
		default:
			return 0, pair + 1
		}
	}
	switch slot % 4 {
	case 0:
		return 0, pair
	case 1:
		return 0, pair + 1
	case 2:
		return 1, pair
	default:
		return 1, pair + 1
	}
}
