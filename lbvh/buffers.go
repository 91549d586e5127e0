package lbvh

import (
	"reflect"

	"github.com/achilleasa/lbvh/compute"
)

// Size of buffer elements in bytes.
const (
	sizeofFloat4 = 16
	sizeofUint32 = 4
	sizeofChild  = 2 * sizeofUint32
)

type bufferSet struct {
	// Element data; reordered every frame so both live in ping-pong pairs.
	Positions  *compute.PingPong
	Velocities *compute.PingPong

	// Leaf boxes in element order.
	LeafMin compute.Buffer
	LeafMax compute.Buffer

	// Scratch space for the min/max reduction.
	ReduceMin compute.Buffer
	ReduceMax compute.Buffer

	// Global box (min at 0, max at 1) used to normalize Morton codes.
	MortonAABB compute.Buffer

	// Sort keys and the running permutation.
	Codes       *compute.PingPong
	Permutation *compute.PingPong

	// Radix sort bit flags; padded to the scan block size.
	ZeroFlags compute.Buffer
	OneFlags  compute.Buffer

	// Tree topology.
	Children compute.Buffer
	Parents  compute.Buffer

	// Internal node boxes and refit flags.
	NodeMin   compute.Buffer
	NodeMax   compute.Buffer
	NodeFlags compute.Buffer
}

// Allocate new buffer set.
func newBufferSet(dev compute.Device) *bufferSet {
	return &bufferSet{
		Positions:   compute.NewPingPong(dev, "positions"),
		Velocities:  compute.NewPingPong(dev, "velocities"),
		LeafMin:     dev.Buffer("leafMin"),
		LeafMax:     dev.Buffer("leafMax"),
		ReduceMin:   dev.Buffer("reduceMin"),
		ReduceMax:   dev.Buffer("reduceMax"),
		MortonAABB:  dev.Buffer("mortonAABB"),
		Codes:       compute.NewPingPong(dev, "mortonCodes"),
		Permutation: compute.NewPingPong(dev, "permutation"),
		ZeroFlags:   dev.Buffer("zeroFlags"),
		OneFlags:    dev.Buffer("oneFlags"),
		Children:    dev.Buffer("children"),
		Parents:     dev.Buffer("parents"),
		NodeMin:     dev.Buffer("nodeMin"),
		NodeMax:     dev.Buffer("nodeMax"),
		NodeFlags:   dev.Buffer("nodeFlags"),
	}
}

// Release all buffers.
func (bs *bufferSet) Release() {
	reflVal := reflect.ValueOf(*bs)
	var iface interface{}
	for fieldIndex := 0; fieldIndex < reflVal.NumField(); fieldIndex++ {
		iface = reflVal.Field(fieldIndex).Interface()
		switch val := iface.(type) {
		case *compute.PingPong:
			val.Release()
		case compute.Buffer:
			val.Release()
		}
	}
}

// Allocate buffers for n elements. Flag buffers hold paddedN entries. A
// single element has no internal nodes but node buffers still get one slot
// so that every buffer has a non-zero size.
func (bs *bufferSet) Allocate(n, paddedN int) error {
	var err error
	nodes := max(n-1, 1)

	pairs := []struct {
		pp   *compute.PingPong
		size int
	}{
		{bs.Positions, n * sizeofFloat4},
		{bs.Velocities, n * sizeofFloat4},
		{bs.Codes, n * sizeofUint32},
		{bs.Permutation, n * sizeofUint32},
	}
	for _, p := range pairs {
		if err = p.pp.Allocate(p.size, compute.ReadWrite); err != nil {
			return err
		}
	}

	buffers := []struct {
		buf  compute.Buffer
		size int
	}{
		{bs.LeafMin, n * sizeofFloat4},
		{bs.LeafMax, n * sizeofFloat4},
		{bs.ReduceMin, n * sizeofFloat4},
		{bs.ReduceMax, n * sizeofFloat4},
		{bs.MortonAABB, 2 * sizeofFloat4},
		{bs.ZeroFlags, paddedN * sizeofUint32},
		{bs.OneFlags, paddedN * sizeofUint32},
		{bs.Children, nodes * sizeofChild},
		{bs.Parents, 2 * n * sizeofUint32},
		{bs.NodeMin, nodes * sizeofFloat4},
		{bs.NodeMax, nodes * sizeofFloat4},
		{bs.NodeFlags, nodes * sizeofUint32},
	}
	for _, b := range buffers {
		if err = b.buf.Allocate(b.size, compute.ReadWrite); err != nil {
			return err
		}
	}

	return nil
}
