// Package binarizer thresholds each color channel of a bitmap into a binary
// plane. A set bit means the channel is on at that pixel.
package binarizer

import (
	"errors"

	"github.com/ericlevine/jabcode/bitutil"
)

// ErrNotFound is returned when a channel has no usable contrast.
var ErrNotFound = errors.New("binarizer: no contrast")

const (
	luminanceBits    = 5
	luminanceShift   = 8 - luminanceBits
	luminanceBuckets = 1 << luminanceBits
)

// globalPlane thresholds one channel plane against a single level taken
// from the histogram of four sampled rows.
func globalPlane(plane []uint8, width, height int) (*bitutil.BitMatrix, error) {
	var buckets [luminanceBuckets]int
	for y := 1; y < 5; y++ {
		row := plane[height*y/5*width:]
		right := (width * 4) / 5
		for x := width / 5; x < right; x++ {
			buckets[int(row[x])>>luminanceShift]++
		}
	}
	threshold, err := estimateBlackPoint(buckets[:])
	if err != nil {
		return nil, err
	}
	matrix := bitutil.NewBitMatrixWithSize(width, height)
	for y := 0; y < height; y++ {
		offset := y * width
		for x := 0; x < width; x++ {
			if int(plane[offset+x]) >= threshold {
				matrix.Set(x, y)
			}
		}
	}
	return matrix, nil
}

// estimateBlackPoint finds the valley between the two tallest well
// separated peaks of a histogram.
func estimateBlackPoint(buckets []int) (int, error) {
	numBuckets := len(buckets)
	maxBucketCount := 0
	firstPeak := 0
	firstPeakSize := 0
	for x := 0; x < numBuckets; x++ {
		if buckets[x] > firstPeakSize {
			firstPeak = x
			firstPeakSize = buckets[x]
		}
		if buckets[x] > maxBucketCount {
			maxBucketCount = buckets[x]
		}
	}

	secondPeak := 0
	secondPeakScore := 0
	for x := 0; x < numBuckets; x++ {
		dist := x - firstPeak
		score := buckets[x] * dist * dist
		if score > secondPeakScore {
			secondPeak = x
			secondPeakScore = score
		}
	}

	if firstPeak > secondPeak {
		firstPeak, secondPeak = secondPeak, firstPeak
	}
	if secondPeak-firstPeak <= numBuckets/16 {
		return 0, ErrNotFound
	}

	bestValley := secondPeak - 1
	bestValleyScore := -1
	for x := secondPeak - 1; x > firstPeak; x-- {
		fromFirst := x - firstPeak
		score := fromFirst * fromFirst * (secondPeak - x) * (maxBucketCount - buckets[x])
		if score > bestValleyScore {
			bestValley = x
			bestValleyScore = score
		}
	}
	return bestValley << luminanceShift, nil
}
