package binarizer

import "github.com/ericlevine/jabcode/bitutil"

const (
	blockSizePower   = 3
	blockSize        = 1 << blockSizePower
	blockSizeMask    = blockSize - 1
	minimumDimension = blockSize * 5
	minDynamicRange  = 24
)

// hybridPlane thresholds one channel plane with a local threshold per 8x8
// block, averaged over the surrounding 5x5 blocks. Planes smaller than 40
// pixels fall back to a global threshold.
func hybridPlane(plane []uint8, width, height int) (*bitutil.BitMatrix, error) {
	if width < minimumDimension || height < minimumDimension {
		return globalPlane(plane, width, height)
	}
	subWidth := width >> blockSizePower
	if width&blockSizeMask != 0 {
		subWidth++
	}
	subHeight := height >> blockSizePower
	if height&blockSizeMask != 0 {
		subHeight++
	}
	levels := calculateBlockLevels(plane, subWidth, subHeight, width, height)
	matrix := bitutil.NewBitMatrixWithSize(width, height)
	calculateThresholdForBlock(plane, subWidth, subHeight, width, height, levels, matrix)
	return matrix, nil
}

func calculateThresholdForBlock(plane []uint8, subWidth, subHeight, width, height int,
	levels [][]int, matrix *bitutil.BitMatrix) {
	maxYOffset := height - blockSize
	maxXOffset := width - blockSize
	for y := 0; y < subHeight; y++ {
		yoffset := y << blockSizePower
		if yoffset > maxYOffset {
			yoffset = maxYOffset
		}
		top := cap3(y, subHeight-3)
		for x := 0; x < subWidth; x++ {
			xoffset := x << blockSizePower
			if xoffset > maxXOffset {
				xoffset = maxXOffset
			}
			left := cap3(x, subWidth-3)
			sum := 0
			for z := -2; z <= 2; z++ {
				row := levels[top+z]
				sum += row[left-2] + row[left-1] + row[left] + row[left+1] + row[left+2]
			}
			thresholdBlock(plane, xoffset, yoffset, sum/25, width, matrix)
		}
	}
}

func cap3(value, max int) int {
	if value < 2 {
		return 2
	}
	if value > max {
		return max
	}
	return value
}

func thresholdBlock(plane []uint8, xoffset, yoffset, threshold, stride int, matrix *bitutil.BitMatrix) {
	for y, offset := 0, yoffset*stride+xoffset; y < blockSize; y, offset = y+1, offset+stride {
		for x := 0; x < blockSize; x++ {
			if int(plane[offset+x]) > threshold {
				matrix.Set(xoffset+x, yoffset+y)
			}
		}
	}
}

// calculateBlockLevels returns the mean of every block, or for flat blocks
// half their minimum, pulled toward the neighbours' level.
func calculateBlockLevels(plane []uint8, subWidth, subHeight, width, height int) [][]int {
	maxYOffset := height - blockSize
	maxXOffset := width - blockSize
	levels := make([][]int, subHeight)
	for i := range levels {
		levels[i] = make([]int, subWidth)
	}

	for y := 0; y < subHeight; y++ {
		yoffset := y << blockSizePower
		if yoffset > maxYOffset {
			yoffset = maxYOffset
		}
		for x := 0; x < subWidth; x++ {
			xoffset := x << blockSizePower
			if xoffset > maxXOffset {
				xoffset = maxXOffset
			}
			sum := 0
			mn := 0xFF
			mx := 0
			for yy, offset := 0, yoffset*width+xoffset; yy < blockSize; yy, offset = yy+1, offset+width {
				for xx := 0; xx < blockSize; xx++ {
					pixel := int(plane[offset+xx])
					sum += pixel
					if pixel < mn {
						mn = pixel
					}
					if pixel > mx {
						mx = pixel
					}
				}
				if mx-mn > minDynamicRange {
					for yy, offset = yy+1, offset+width; yy < blockSize; yy, offset = yy+1, offset+width {
						for xx := 0; xx < blockSize; xx++ {
							sum += int(plane[offset+xx])
						}
					}
				}
			}

			average := sum >> (blockSizePower * 2)
			if mx-mn <= minDynamicRange {
				average = mn / 2
				if y > 0 && x > 0 {
					neighbours := (levels[y-1][x] + 2*levels[y][x-1] + levels[y-1][x-1]) / 4
					if mn < neighbours {
						average = neighbours
					}
				}
			}
			levels[y][x] = average
		}
	}
	return levels
}
