package decoder

import "fmt"

const (
	MinSideVersion = 1
	MaxSideVersion = 32
)

// SideSize returns the number of modules along a side of the given version.
func SideSize(version int) int {
	return version*4 + 17
}

// SideVersion returns the version for a side size, or 0 when the size is
// not of the form 4v+17.
func SideVersion(size int) int {
	if size < SideSize(MinSideVersion) || size > SideSize(MaxSideVersion) || (size-17)%4 != 0 {
		return 0
	}
	return (size - 17) / 4
}

// NearestSideSize snaps an estimated module count to the closest valid size.
func NearestSideSize(estimate int) int {
	v := (estimate - 17 + 2) / 4
	if v < MinSideVersion {
		v = MinSideVersion
	}
	if v > MaxSideVersion {
		v = MaxSideVersion
	}
	return SideSize(v)
}

// versionFlag returns the SS and VF fields that describe a pair of side
// versions.
func versionFlag(vx, vy int) (rect bool, vf int) {
	m := vx
	if vy > m {
		m = vy
	}
	switch {
	case m <= 4:
		vf = 0
	case m <= 8:
		vf = 1
	case m <= 16:
		vf = 2
	default:
		vf = 3
	}
	return vx != vy, vf
}

// versionBits returns the length of the V field.
func versionBits(rect bool, vf int) int {
	if rect {
		return 2 * (vf + 2)
	}
	if vf == 0 {
		return 2
	}
	return vf + 1
}

// encodeVersion returns the V field value for a pair of side versions.
func encodeVersion(vx, vy int, rect bool, vf int) (int, error) {
	if vx < MinSideVersion || vx > MaxSideVersion || vy < MinSideVersion || vy > MaxSideVersion {
		return 0, fmt.Errorf("%w: %dx%d", errInvalidVersion, vx, vy)
	}
	if rect {
		n := vf + 2
		return (vx-1)<<uint(n) | (vy - 1), nil
	}
	if vf == 0 {
		return vx - 1, nil
	}
	return vx - 1 - (1 << uint(vf+1)), nil
}

// decodeVersion is the inverse of encodeVersion.
func decodeVersion(v int, rect bool, vf int) (vx, vy int) {
	if rect {
		n := uint(vf + 2)
		return v>>n + 1, v&(1<<n-1) + 1
	}
	if vf == 0 {
		return v + 1, v + 1
	}
	s := 1<<uint(vf+1) + v + 1
	return s, s
}
