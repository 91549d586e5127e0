package lbvh

import (
	"math/rand"
	"sort"
	"testing"
)

func TestRadixSort(t *testing.T) {
	type spec struct {
		n, g int
		mask uint32
	}
	specs := []spec{
		{1, 4, 0xFFFFFFFF},
		{2, 4, 0xFFFFFFFF},
		{100, 4, 0xFFFFFFFF},
		// Lots of duplicates to exercise stability.
		{3000, 16, 0x8000F00F},
		// All keys equal.
		{257, 8, 0},
	}

	rng := rand.New(rand.NewSource(7))
	for index, s := range specs {
		dr := newTestResources(t, s.n, s.g)

		keys := make([]uint32, s.n)
		for i := range keys {
			keys[i] = rng.Uint32() & s.mask
		}
		writeData(t, dr.buffers.Codes.Current(), keys)

		if err := dr.RadixSort(); err != nil {
			t.Fatalf("[spec %d] %v", index, err)
		}

		sorted := readUint32s(t, dr.buffers.Codes.Current(), s.n)
		perm := readUint32s(t, dr.buffers.Permutation.Current(), s.n)

		expPerm := make([]uint32, s.n)
		for i := range expPerm {
			expPerm[i] = uint32(i)
		}
		sort.SliceStable(expPerm, func(a, b int) bool {
			return keys[expPerm[a]] < keys[expPerm[b]]
		})

		seen := make([]bool, s.n)
		for i := 0; i < s.n; i++ {
			if i > 0 && sorted[i-1] > sorted[i] {
				t.Fatalf("[spec %d] keys not sorted at %d: %d > %d", index, i, sorted[i-1], sorted[i])
			}
			if sorted[i] != keys[perm[i]] {
				t.Fatalf("[spec %d] expected sorted[%d] == keys[perm[%d]] (%d); got %d", index, i, i, keys[perm[i]], sorted[i])
			}
			if seen[perm[i]] {
				t.Fatalf("[spec %d] permutation index %d appears twice", index, perm[i])
			}
			seen[perm[i]] = true

			// A stable sort yields exactly the reference permutation.
			if perm[i] != expPerm[i] {
				t.Fatalf("[spec %d] expected perm[%d] to be %d; got %d", index, i, expPerm[i], perm[i])
			}
		}
	}
}

func TestPermute(t *testing.T) {
	dr := newTestResources(t, 5, 4)

	positions := make([]float32, 5*4)
	velocities := make([]float32, 5*4)
	for i := 0; i < 5; i++ {
		positions[4*i] = float32(i)
		velocities[4*i+1] = float32(10 * i)
	}
	if err := dr.Upload(positions, velocities); err != nil {
		t.Fatal(err)
	}
	writeData(t, dr.buffers.Permutation.Current(), []uint32{4, 2, 0, 3, 1})

	if err := dr.Permute(); err != nil {
		t.Fatal(err)
	}

	outPos := make([]float32, 5*4)
	outVel := make([]float32, 5*4)
	if err := dr.buffers.Positions.Current().ReadData(0, 0, 0, outPos); err != nil {
		t.Fatal(err)
	}
	if err := dr.buffers.Velocities.Current().ReadData(0, 0, 0, outVel); err != nil {
		t.Fatal(err)
	}

	for i, src := range []int{4, 2, 0, 3, 1} {
		if outPos[4*i] != float32(src) {
			t.Fatalf("expected position %d to come from element %d; got %f", i, src, outPos[4*i])
		}
		if outVel[4*i+1] != float32(10*src) {
			t.Fatalf("expected velocity %d to come from element %d; got %f", i, src, outVel[4*i+1])
		}
	}
}
