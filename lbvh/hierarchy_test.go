package lbvh

import (
	"math/bits"
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

// Sequential top-down construction over the same sorted keys. The range
// [first, last] split at s has children s and s+1; the root is node 0.
func referenceHierarchy(codes []uint32) []uint32 {
	n := len(codes)
	children := make([]uint32, 2*(n-1))

	var build func(first, last, node int)
	build = func(first, last, node int) {
		split := referenceSplit(codes, first, last)

		left := uint32(split)
		if split == first {
			left += uint32(n)
		} else {
			build(first, split, split)
		}

		right := uint32(split + 1)
		if split+1 == last {
			right += uint32(n)
		} else {
			build(split+1, last, split+1)
		}

		children[2*node] = left
		children[2*node+1] = right
	}

	if n > 1 {
		build(0, n-1, 0)
	}
	return children
}

// Common prefix length of two in-range keys; equal keys compare their
// indices instead.
func referencePrefix(codes []uint32, i, j int) int {
	if codes[i] == codes[j] {
		return 32 + bits.LeadingZeros32(uint32(i^j))
	}
	return bits.LeadingZeros32(codes[i] ^ codes[j])
}

// Binary search for the last index that shares more than the range's common
// prefix with the first key.
func referenceSplit(codes []uint32, first, last int) int {
	common := referencePrefix(codes, first, last)
	split := first
	step := last - first
	for {
		step = (step + 1) >> 1
		if newSplit := split + step; newSplit < last && referencePrefix(codes, first, newSplit) > common {
			split = newSplit
		}
		if step <= 1 {
			return split
		}
	}
}

func TestDelta(t *testing.T) {
	codes := []uint32{0x1, 0x1, 0x2, 0x80000000}

	type spec struct {
		i, j, exp int
	}
	specs := []spec{
		{0, -1, -1},
		{3, 4, -1},
		{0, 2, 30},
		{2, 3, 0},
		// Equal codes fall back to the indices.
		{0, 1, 32 + 31},
	}

	for index, s := range specs {
		if got := delta(codes, s.i, s.j); got != s.exp {
			t.Fatalf("[spec %d] expected delta(%d, %d) to be %d; got %d", index, s.i, s.j, s.exp, got)
		}
	}
}

func TestDeltaMatchesReferencePrefix(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	codes := make([]uint32, 300)
	for i := range codes {
		// A narrow range forces plenty of duplicates.
		codes[i] = uint32(rng.Intn(64))
	}
	sort.Slice(codes, func(a, b int) bool { return codes[a] < codes[b] })

	for i := range codes {
		for j := range codes {
			if got, exp := delta(codes, i, j), referencePrefix(codes, i, j); got != exp {
				t.Fatalf("expected delta(%d, %d) to be %d; got %d", i, j, exp, got)
			}
		}
	}
}

func TestNodeHierarchy(t *testing.T) {
	type spec struct {
		name  string
		codes []uint32
	}

	rng := rand.New(rand.NewSource(3))
	randomCodes := func(n int, maxCode int) []uint32 {
		codes := make([]uint32, n)
		for i := range codes {
			codes[i] = uint32(rng.Intn(maxCode))
		}
		sort.Slice(codes, func(a, b int) bool { return codes[a] < codes[b] })
		return codes
	}

	specs := []spec{
		{"two elements", []uint32{1, 2}},
		{"two equal elements", []uint32{5, 5}},
		{"unique codes", randomCodes(1000, 1<<30)},
		{"many duplicates", randomCodes(1000, 300)},
		{"identical, power of two", make([]uint32, 16)},
		{"identical, odd count", make([]uint32, 13)},
	}

	for _, s := range specs {
		n := len(s.codes)
		dr := newTestResources(t, n, 8)
		writeData(t, dr.buffers.Codes.Current(), s.codes)

		if err := dr.NodeHierarchy(); err != nil {
			t.Fatalf("[%s] %v", s.name, err)
		}

		children := readUint32s(t, dr.buffers.Children, 2*(n-1))
		parents := readUint32s(t, dr.buffers.Parents, 2*n)

		if exp := referenceHierarchy(s.codes); !reflect.DeepEqual(children, exp) {
			t.Fatalf("[%s] hierarchy does not match the sequential reference", s.name)
		}

		if parents[0] != NoParent {
			t.Fatalf("[%s] expected root parent to be NoParent; got %d", s.name, parents[0])
		}
		for i := 0; i < n-1; i++ {
			for _, c := range children[2*i : 2*i+2] {
				if parents[c] != uint32(i) {
					t.Fatalf("[%s] expected parent of %d to be %d; got %d", s.name, c, i, parents[c])
				}
			}
		}
		for leaf := 0; leaf < n; leaf++ {
			if parents[n+leaf] == NoParent {
				t.Fatalf("[%s] leaf %d has no parent", s.name, leaf)
			}
		}
	}
}

func TestIdenticalCodesSplitInTheMiddle(t *testing.T) {
	dr := newTestResources(t, 16, 4)
	writeData(t, dr.buffers.Codes.Current(), make([]uint32, 16))

	if err := dr.NodeHierarchy(); err != nil {
		t.Fatal(err)
	}

	children := readUint32s(t, dr.buffers.Children, 2)
	if children[0] != 7 || children[1] != 8 {
		t.Fatalf("expected root children to be internal nodes 7 and 8; got %v", children)
	}
}
