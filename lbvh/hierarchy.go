package lbvh

import "math/bits"

// Length of the longest common prefix of codes[i] and codes[j], or -1 if j
// is out of range. Equal codes are disambiguated by their indices, which
// makes every key unique and keeps the range search from stalling on
// duplicates.
func delta(codes []uint32, i, j int) int {
	if j < 0 || j >= len(codes) {
		return -1
	}

	a, b := codes[i], codes[j]
	if a == b {
		return 32 + bits.LeadingZeros32(uint32(i^j))
	}
	return bits.LeadingZeros32(a ^ b)
}

// Determine the key range covered by internal node i and locate its split.
// Returns the children of i; leaf children are offset by len(codes).
func internalNodeChildren(codes []uint32, i int) (left, right uint32) {
	n := len(codes)

	// Range direction
	d := -1
	if delta(codes, i, i+1)-delta(codes, i, i-1) > 0 {
		d = 1
	}

	// Upper bound for the range length
	dmin := delta(codes, i, i-d)
	lmax := 2
	for delta(codes, i, i+lmax*d) > dmin {
		lmax <<= 1
	}

	// Find the other end
	l := 0
	for t := lmax >> 1; t >= 1; t >>= 1 {
		if delta(codes, i, i+(l+t)*d) > dmin {
			l += t
		}
	}
	j := i + l*d

	// Find the split position
	dnode := delta(codes, i, j)
	s := 0
	for t := l; t > 1; {
		t = (t + 1) >> 1
		if delta(codes, i, i+(s+t)*d) > dnode {
			s += t
		}
	}
	gamma := i + s*d
	if d < 0 {
		gamma--
	}

	left, right = uint32(gamma), uint32(gamma+1)
	if min(i, j) == gamma {
		left += uint32(n)
	}
	if max(i, j) == gamma+1 {
		right += uint32(n)
	}
	return left, right
}
