package types

import (
	"fmt"
	"math"
)

// An axis-aligned bounding box. Both corners are stored as float4 so
// they can be copied verbatim to and from device buffers.
type AABB struct {
	Min Vec4
	Max Vec4
}

// Return an inverted box that acts as the identity element for Union.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: Vec4{inf, inf, inf, inf},
		Max: Vec4{-inf, -inf, -inf, -inf},
	}
}

// Build the box of a sphere-like element whose xyz lanes hold the center
// and whose w lane holds the radius. The box spans center ± radius/2 on all
// four lanes.
func ElementAABB(pos Vec4) AABB {
	half := pos[3] * 0.5
	return AABB{
		Min: pos.Sub(Vec4{half, half, half, half}),
		Max: pos.Add(Vec4{half, half, half, half}),
	}
}

// Return the smallest box enclosing both boxes.
func (b AABB) Union(b2 AABB) AABB {
	return AABB{
		Min: MinVec4(b.Min, b2.Min),
		Max: MaxVec4(b.Max, b2.Max),
	}
}

// Check whether the xyz extents of b2 lie inside b.
func (b AABB) Contains(b2 AABB) bool {
	for i := 0; i < 3; i++ {
		if b2.Min[i] < b.Min[i] || b2.Max[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Get the xyz extent of the box.
func (b AABB) Extent() Vec3 {
	return b.Max.Vec3().Sub(b.Min.Vec3())
}

// Implements Stringer.
func (b AABB) String() string {
	return fmt.Sprintf(
		"[(%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)]",
		b.Min[0], b.Min[1], b.Min[2],
		b.Max[0], b.Max[1], b.Max[2],
	)
}
