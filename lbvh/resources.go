package lbvh

import (
	"fmt"

	"github.com/achilleasa/lbvh/compute"
)

// Number of radix sort passes; one per key bit.
const radixPasses = 32

// A container that stores the compiled kernels and all device buffers
// needed to build a hierarchy for a fixed element count.
type deviceResources struct {
	dev   compute.Device
	n     int
	local int

	// The allocated device buffers.
	buffers *bufferSet

	// The set of kernels.
	kernels []compute.Kernel

	scan *scanner
}

// Using the supplied initialized device as a target, load all kernels and
// allocate buffers for the element count in opts.
func newDeviceResources(dev compute.Device, opts Options) (*deviceResources, error) {
	var err error

	if dev == nil {
		return nil, fmt.Errorf("lbvh: invalid device handle")
	}

	dr := &deviceResources{
		dev:   dev,
		n:     int(opts.NumElements),
		local: int(opts.LocalWorkSize),
	}

	// Load all kernels
	dr.kernels = make([]compute.Kernel, numKernels)
	var kType kernelType
	for kType = 0; kType < numKernels; kType++ {
		dr.kernels[kType], err = dev.Kernel(kType.String())
		if err != nil {
			dr.Close()
			return nil, err
		}
	}

	dr.scan, err = newScanner(dev, dr.kernels[scan], dr.kernels[scanAdd], dr.n, int(opts.ScanLocalWorkSize))
	if err != nil {
		dr.Close()
		return nil, err
	}

	// Allocate buffers
	dr.buffers = newBufferSet(dev)
	if err = dr.buffers.Allocate(dr.n, dr.scan.PaddedSize()); err != nil {
		dr.Close()
		return nil, err
	}

	// Slot n-1 is never written by the hierarchy kernel and with a single
	// element the leaf is the root; both keep NoParent.
	parents := make([]uint32, 2*dr.n)
	for i := range parents {
		parents[i] = NoParent
	}
	if err = dr.buffers.Parents.WriteData(parents, 0); err != nil {
		dr.Close()
		return nil, err
	}

	return dr, nil
}

// Release all allocated resources.
func (dr *deviceResources) Close() {
	if dr.buffers != nil {
		dr.buffers.Release()
		dr.buffers = nil
	}

	if dr.scan != nil {
		dr.scan.Release()
		dr.scan = nil
	}

	if dr.kernels != nil {
		for _, kernel := range dr.kernels {
			if kernel != nil {
				kernel.Release()
			}
		}
		dr.kernels = nil
	}
}

// Launch a kernel over globalWorkSize items using the element work-group size.
func (dr *deviceResources) exec(kt kernelType, globalWorkSize int, params kernelParams) error {
	if err := dr.kernels[kt].Exec1D(params.args(), globalWorkSize, dr.local); err != nil {
		return fmt.Errorf("lbvh: %s: %w", kt, err)
	}
	return nil
}

// Upload element data into the current position and velocity buffers.
func (dr *deviceResources) Upload(positions, velocities interface{}) error {
	dr.buffers.Positions.Reset()
	dr.buffers.Velocities.Reset()
	if err := dr.buffers.Positions.Current().WriteData(positions, 0); err != nil {
		return err
	}
	return dr.buffers.Velocities.Current().WriteData(velocities, 0)
}

// Move each element center along its velocity.
func (dr *deviceResources) AdvancePositions() error {
	return dr.exec(advancePositions, dr.n, advanceParams{
		positions:  dr.buffers.Positions.Current(),
		velocities: dr.buffers.Velocities.Current(),
		n:          uint32(dr.n),
	})
}

// Build the leaf boxes from the current positions.
func (dr *deviceResources) CreateLeafAABBs() error {
	return dr.exec(createLeafAABBs, dr.n, leafParams{
		positions: dr.buffers.Positions.Current(),
		aabbMin:   dr.buffers.LeafMin,
		aabbMax:   dr.buffers.LeafMax,
		n:         uint32(dr.n),
	})
}

// Reduce the leaf boxes into the global Morton box. The reduction runs on
// copies so the leaf boxes are preserved.
func (dr *deviceResources) ReduceAABB() error {
	bufs := dr.buffers
	size := dr.n * sizeofFloat4
	if err := dr.dev.CopyBuffer(bufs.ReduceMin, bufs.LeafMin, 0, 0, size); err != nil {
		return err
	}
	if err := dr.dev.CopyBuffer(bufs.ReduceMax, bufs.LeafMax, 0, 0, size); err != nil {
		return err
	}

	for count := dr.n; count > 1; {
		stride := count/2 + count%2
		err := dr.exec(reduceAABB, stride, reduceParams{
			aabbMin: bufs.ReduceMin,
			aabbMax: bufs.ReduceMax,
			n:       uint32(count),
			stride:  uint32(stride),
		})
		if err != nil {
			return err
		}
		count = stride
	}

	if err := dr.dev.CopyBuffer(bufs.MortonAABB, bufs.ReduceMin, 0, 0, sizeofFloat4); err != nil {
		return err
	}
	return dr.dev.CopyBuffer(bufs.MortonAABB, bufs.ReduceMax, sizeofFloat4, 0, sizeofFloat4)
}

// Generate a Morton code per leaf into the current key buffer.
func (dr *deviceResources) MortonCodes() error {
	return dr.exec(mortonCodes, dr.n, mortonParams{
		aabbMin:    dr.buffers.LeafMin,
		mortonAABB: dr.buffers.MortonAABB,
		codes:      dr.buffers.Codes.Current(),
		n:          uint32(dr.n),
	})
}

// Stable LSB-first radix sort of the current key buffer. On return the
// current permutation buffer maps sorted positions to original indices.
// The pass count is even so the sorted data ends up in the buffers that
// were current on entry.
func (dr *deviceResources) RadixSort() error {
	bufs := dr.buffers
	n := uint32(dr.n)
	paddedN := dr.scan.PaddedSize()

	err := dr.exec(permutationIdentity, dr.n, identityParams{
		perm: bufs.Permutation.Current(),
		n:    n,
	})
	if err != nil {
		return err
	}

	for bit := uint32(0); bit < radixPasses; bit++ {
		err = dr.exec(selectBitflag, paddedN, bitflagParams{
			keys:      bufs.Codes.Current(),
			zeroFlags: bufs.ZeroFlags,
			oneFlags:  bufs.OneFlags,
			bit:       bit,
			n:         n,
			paddedN:   uint32(paddedN),
		})
		if err != nil {
			return err
		}

		if err = dr.scan.Scan(bufs.ZeroFlags, dr.n); err != nil {
			return err
		}
		if err = dr.scan.Scan(bufs.OneFlags, dr.n); err != nil {
			return err
		}

		err = dr.exec(reorderKeys, dr.n, reorderParams{
			keysIn:   bufs.Codes.Current(),
			keysOut:  bufs.Codes.Alternate(),
			permIn:   bufs.Permutation.Current(),
			permOut:  bufs.Permutation.Alternate(),
			zeroScan: bufs.ZeroFlags,
			oneScan:  bufs.OneFlags,
			bit:      bit,
			n:        n,
		})
		if err != nil {
			return err
		}

		bufs.Codes.Swap()
		bufs.Permutation.Swap()
	}

	return nil
}

// Reorder positions and velocities to match the sorted keys.
func (dr *deviceResources) Permute() error {
	bufs := dr.buffers
	for _, pp := range []*compute.PingPong{bufs.Positions, bufs.Velocities} {
		err := dr.exec(permute, dr.n, permuteParams{
			in:   pp.Current(),
			out:  pp.Alternate(),
			perm: bufs.Permutation.Current(),
			n:    uint32(dr.n),
		})
		if err != nil {
			return err
		}
		pp.Swap()
	}
	return nil
}

// Build the internal nodes from the sorted keys.
func (dr *deviceResources) NodeHierarchy() error {
	if dr.n < 2 {
		return nil
	}

	return dr.exec(nodeHierarchy, dr.n-1, hierarchyParams{
		codes:    dr.buffers.Codes.Current(),
		children: dr.buffers.Children,
		parents:  dr.buffers.Parents,
		n:        uint32(dr.n),
	})
}

// Compute internal node boxes bottom-up.
func (dr *deviceResources) RefitInnerNodes() error {
	if dr.n < 2 {
		return nil
	}

	bufs := dr.buffers
	err := dr.exec(resetNodeFlags, dr.n-1, flagParams{
		flags: bufs.NodeFlags,
		n:     uint32(dr.n - 1),
	})
	if err != nil {
		return err
	}

	return dr.exec(refitInnerNodes, dr.n, refitParams{
		parents:  bufs.Parents,
		children: bufs.Children,
		leafMin:  bufs.LeafMin,
		leafMax:  bufs.LeafMax,
		nodeMin:  bufs.NodeMin,
		nodeMax:  bufs.NodeMax,
		flags:    bufs.NodeFlags,
		n:        uint32(dr.n),
	})
}
