package types

import "golang.org/x/image/math/f32"

type Vec3 f32.Vec3
type Vec4 f32.Vec4

// Define a 4 component vector.
func XYZW(x, y, z, w float32) Vec4 {
	return Vec4{x, y, z, w}
}

// Subtract a vector.
func (v Vec3) Sub(v2 Vec3) Vec3 {
	return Vec3{v[0] - v2[0], v[1] - v2[1], v[2] - v2[2]}
}

// Reduce a 4 component vector to a Vec3.
func (v Vec4) Vec3() Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

// Add a vector.
func (v Vec4) Add(v2 Vec4) Vec4 {
	return Vec4{v[0] + v2[0], v[1] + v2[1], v[2] + v2[2], v[3] + v2[3]}
}

// Subtract a vector.
func (v Vec4) Sub(v2 Vec4) Vec4 {
	return Vec4{v[0] - v2[0], v[1] - v2[1], v[2] - v2[2], v[3] - v2[3]}
}

// Calc min component from two 4 component vectors. All four lanes
// participate, including w.
func MinVec4(v1, v2 Vec4) Vec4 {
	out := v1
	for i := 0; i < 4; i++ {
		if v2[i] < out[i] {
			out[i] = v2[i]
		}
	}
	return out
}

// Calc max component from two 4 component vectors.
func MaxVec4(v1, v2 Vec4) Vec4 {
	out := v1
	for i := 0; i < 4; i++ {
		if v2[i] > out[i] {
			out[i] = v2[i]
		}
	}
	return out
}

// Check whether the xyz components of two vectors differ by at most eps.
func (v Vec4) ApproxEqual3(v2 Vec4, eps float32) bool {
	for i := 0; i < 3; i++ {
		d := v[i] - v2[i]
		if d < -eps || d > eps {
			return false
		}
	}
	return true
}
