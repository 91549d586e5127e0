package lbvh

import (
	"testing"

	"github.com/achilleasa/lbvh/types"
)

func TestExpandBits(t *testing.T) {
	type spec struct {
		in, exp uint32
	}
	specs := []spec{
		{0, 0},
		{1, 1},
		{2, 8},
		{3, 9},
		{0x3FF, 0x09249249},
	}

	for index, s := range specs {
		if got := expandBits(s.in); got != s.exp {
			t.Fatalf("[spec %d] expected expandBits(%#x) to be %#x; got %#x", index, s.in, s.exp, got)
		}
	}
}

func TestMortonCode(t *testing.T) {
	unitBox := types.AABB{Max: types.XYZW(1, 1, 1, 0)}

	type spec struct {
		p   types.Vec4
		box types.AABB
		exp uint32
	}
	specs := []spec{
		{types.XYZW(0, 0, 0, 0), unitBox, 0},
		{types.XYZW(1, 1, 1, 0), unitBox, 0x3FFFFFFF},
		// x lands in the highest bit of every triplet.
		{types.XYZW(1, 0, 0, 0), unitBox, 0x24924924},
		{types.XYZW(0, 1, 0, 0), unitBox, 0x12492492},
		{types.XYZW(0, 0, 1, 0), unitBox, 0x09249249},
		// Values outside the box are clamped.
		{types.XYZW(-3, 5, 0, 0), unitBox, 0x12492492},
		// Degenerate extents quantize to zero instead of producing NaNs.
		{types.XYZW(4, 4, 4, 0), types.AABB{Min: types.XYZW(4, 4, 4, 0), Max: types.XYZW(4, 4, 4, 0)}, 0},
	}

	for index, s := range specs {
		if got := mortonCode(s.p, s.box); got != s.exp {
			t.Fatalf("[spec %d] expected code %#x; got %#x", index, s.exp, got)
		}
	}
}

// Elements on an 8x8x8 lattice whose boxes tile [0, 8]^3 map to codes whose
// sorted order visits every aligned 2x2x2 block contiguously.
func TestMortonLocality(t *testing.T) {
	const dim = 8
	n := dim * dim * dim
	dr := newTestResources(t, n, 16)

	positions := make([]types.Vec4, 0, n)
	for x := 0; x < dim; x++ {
		for y := 0; y < dim; y++ {
			for z := 0; z < dim; z++ {
				positions = append(positions, types.XYZW(float32(x)+0.5, float32(y)+0.5, float32(z)+0.5, 1))
			}
		}
	}
	if err := dr.Upload(positions, make([]types.Vec4, n)); err != nil {
		t.Fatal(err)
	}

	for _, step := range []func() error{dr.CreateLeafAABBs, dr.ReduceAABB, dr.MortonCodes, dr.RadixSort} {
		if err := step(); err != nil {
			t.Fatal(err)
		}
	}

	box := make([]types.Vec4, 2)
	if err := dr.buffers.MortonAABB.ReadData(0, 0, 0, box); err != nil {
		t.Fatal(err)
	}
	if exp := types.XYZW(0, 0, 0, 0.5); box[0] != exp {
		t.Fatalf("expected morton box min to be %v; got %v", exp, box[0])
	}
	if exp := types.XYZW(dim, dim, dim, 1.5); box[1] != exp {
		t.Fatalf("expected morton box max to be %v; got %v", exp, box[1])
	}

	codes := readUint32s(t, dr.buffers.Codes.Current(), n)
	perm := readUint32s(t, dr.buffers.Permutation.Current(), n)
	for i := 1; i < n; i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("expected lattice codes to be unique and sorted; codes[%d]=%d codes[%d]=%d", i-1, codes[i-1], i, codes[i])
		}
	}

	for block := 0; block < n/8; block++ {
		first := positions[perm[block*8]]
		for k := 1; k < 8; k++ {
			p := positions[perm[block*8+k]]
			for axis := 0; axis < 3; axis++ {
				if int(p[axis])/2 != int(first[axis])/2 {
					t.Fatalf("block %d: element %v is not in the same 2x2x2 cell as %v", block, p, first)
				}
			}
		}
	}
}
