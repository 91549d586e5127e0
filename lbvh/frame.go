package lbvh

import (
	"encoding/binary"
	"fmt"

	"github.com/achilleasa/lbvh/types"
	"github.com/cespare/xxhash/v2"
)

// Parent slot value of the root.
const NoParent uint32 = 0xFFFFFFFF

// A host copy of a built hierarchy. All per-element slices are in sorted
// order.
//
// Internal node i has children Children[2*i] and Children[2*i+1]. A child
// index c < NumElements refers to internal node c; otherwise it refers to
// leaf c - NumElements. Parents holds the parent of internal node i at i and
// the parent of leaf j at NumElements + j. Internal node 0 is the root.
type Frame struct {
	NumElements int

	Codes       []uint32
	Permutation []uint32
	Positions   []types.Vec4
	Velocities  []types.Vec4

	Children []uint32
	Parents  []uint32

	LeafAABBs  []types.AABB
	NodeAABBs  []types.AABB
	MortonAABB types.AABB
}

// Get the number of internal nodes.
func (f *Frame) NumInternal() int {
	if f.NumElements < 2 {
		return 0
	}
	return f.NumElements - 1
}

// Get the index of the root. With a single element the root is the leaf.
func (f *Frame) Root() uint32 {
	if f.NumElements == 1 {
		return uint32(f.NumElements)
	}
	return 0
}

// Check whether a child index refers to a leaf.
func (f *Frame) IsLeaf(c uint32) bool {
	return int(c) >= f.NumElements
}

// Get the box of a node or leaf.
func (f *Frame) Bounds(c uint32) types.AABB {
	if f.IsLeaf(c) {
		return f.LeafAABBs[int(c)-f.NumElements]
	}
	return f.NodeAABBs[c]
}

// Calculate a hash over the sorted codes, the permutation and the tree
// topology. Two frames built from the same input have the same digest
// regardless of the device that built them.
func (f *Frame) Digest() uint64 {
	h := xxhash.New()
	var word [4]byte
	for _, list := range [][]uint32{f.Codes, f.Permutation, f.Children, f.Parents} {
		for _, v := range list {
			binary.LittleEndian.PutUint32(word[:], v)
			_, _ = h.Write(word[:])
		}
	}
	return h.Sum64()
}

// Check the structural invariants of the frame: the permutation is a
// bijection, codes are sorted, every node except the root has exactly one
// parent that lists it as a child, every leaf box matches its element and
// lies inside the morton box and every internal box is the union of its
// children.
func (f *Frame) Validate() error {
	n := f.NumElements
	if n == 0 {
		return ErrNoElements
	}

	seen := make([]bool, n)
	for i, p := range f.Permutation {
		if int(p) >= n || seen[p] {
			return fmt.Errorf("lbvh: permutation entry %d (%d) is out of range or duplicated", i, p)
		}
		seen[p] = true
	}

	for i := 1; i < n; i++ {
		if f.Codes[i-1] > f.Codes[i] {
			return fmt.Errorf("lbvh: codes not sorted at %d: %d > %d", i, f.Codes[i-1], f.Codes[i])
		}
	}

	for i, pos := range f.Positions {
		if exp := types.ElementAABB(pos); f.LeafAABBs[i] != exp {
			return fmt.Errorf("lbvh: leaf %d box %v does not match element box %v", i, f.LeafAABBs[i], exp)
		}
		if !f.MortonAABB.Contains(f.LeafAABBs[i]) {
			return fmt.Errorf("lbvh: leaf %d box %v lies outside the morton box %v", i, f.LeafAABBs[i], f.MortonAABB)
		}
	}

	if n == 1 {
		if f.Parents[n] != NoParent {
			return fmt.Errorf("lbvh: single leaf has parent %d", f.Parents[n])
		}
		return nil
	}

	if f.Parents[0] != NoParent {
		return fmt.Errorf("lbvh: root has parent %d", f.Parents[0])
	}

	// Every node except the root appears exactly once as a child.
	refs := make([]int, 2*n)
	for i := 0; i < n-1; i++ {
		for k := 0; k < 2; k++ {
			c := f.Children[2*i+k]
			if c == 0 || int(c) >= 2*n || c == uint32(n-1) {
				return fmt.Errorf("lbvh: node %d has invalid child %d", i, c)
			}
			if f.Parents[c] != uint32(i) {
				return fmt.Errorf("lbvh: child %d of node %d has parent %d", c, i, f.Parents[c])
			}
			refs[c]++
		}

		box := f.Bounds(f.Children[2*i]).Union(f.Bounds(f.Children[2*i+1]))
		if f.NodeAABBs[i] != box {
			return fmt.Errorf("lbvh: node %d box %v is not the union of its children %v", i, f.NodeAABBs[i], box)
		}
	}
	for c := 1; c < 2*n; c++ {
		if c == n-1 {
			continue
		}
		if refs[c] != 1 {
			return fmt.Errorf("lbvh: node %d is referenced %d times", c, refs[c])
		}
	}

	return nil
}
