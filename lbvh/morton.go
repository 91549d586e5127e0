package lbvh

import "github.com/achilleasa/lbvh/types"

// Axes whose extent is below this threshold are quantized to zero.
const mortonEpsilon = 1e-12

// Spread the low 10 bits of v so that there are two zero bits between
// each of them.
func expandBits(v uint32) uint32 {
	v = (v * 0x00010001) & 0xFF0000FF
	v = (v * 0x00000101) & 0x0F00F00F
	v = (v * 0x00000011) & 0xC30C30C3
	v = (v * 0x00000005) & 0x49249249
	return v
}

// Map v into [0, 1023] relative to the range [lo, lo+extent].
func quantize(v, lo, extent float32) uint32 {
	var norm float32
	if extent > mortonEpsilon {
		norm = (v - lo) / extent
	}

	scaled := norm * 1024
	if scaled < 0 {
		scaled = 0
	} else if scaled > 1023 {
		scaled = 1023
	}
	return uint32(scaled)
}

// Calculate the 30-bit Morton code of p inside the box. The x axis occupies
// the highest bit of every 3-bit group.
func mortonCode(p types.Vec4, box types.AABB) uint32 {
	extent := box.Extent()
	x := expandBits(quantize(p[0], box.Min[0], extent[0]))
	y := expandBits(quantize(p[1], box.Min[1], extent[1]))
	z := expandBits(quantize(p[2], box.Min[2], extent[2]))
	return x*4 + y*2 + z
}
