package lbvh

import (
	"sync/atomic"

	"github.com/achilleasa/lbvh/compute"
	"github.com/achilleasa/lbvh/types"
)

// Refit flag states.
const (
	unvisited uint32 = 0
	visited   uint32 = 1
)

// Scan local memory is padded by one word every 32 entries to avoid bank
// conflicts.
const logNumBanks = 5

func conflictFreeOffset(n int) int {
	return n >> logNumBanks
}

// Get the number of uint32 words of local memory a scan work-group of size g
// needs.
func scanLocalWords(g int) int {
	return 2*g + (2*g)>>logNumBanks + 1
}

// Host implementations of the kernels in kernels.cl. Argument positions
// match the CL signatures.
func hostKernels() map[string]compute.HostKernelFunc {
	return map[string]compute.HostKernelFunc{
		advancePositions.String():    hostAdvancePositions,
		createLeafAABBs.String():     hostCreateLeafAABBs,
		reduceAABB.String():          hostReduceAABB,
		mortonCodes.String():         hostMortonCodes,
		permutationIdentity.String(): hostPermutationIdentity,
		selectBitflag.String():       hostSelectBitflag,
		scan.String():                hostScan,
		scanAdd.String():             hostScanAdd,
		reorderKeys.String():         hostReorderKeys,
		permute.String():             hostPermute,
		nodeHierarchy.String():       hostNodeHierarchy,
		resetNodeFlags.String():      hostResetNodeFlags,
		refitInnerNodes.String():     hostRefitInnerNodes,
	}
}

func hostAdvancePositions(wg compute.WorkGroup) {
	positions := wg.Float4s(0)
	velocities := wg.Float4s(1)
	n := int(wg.Uint32(2))

	wg.Items(func(_, i int) {
		if i >= n {
			return
		}
		v := velocities[i]
		positions[i][0] += v[0]
		positions[i][1] += v[1]
		positions[i][2] += v[2]
	})
}

func hostCreateLeafAABBs(wg compute.WorkGroup) {
	positions := wg.Float4s(0)
	aabbMin := wg.Float4s(1)
	aabbMax := wg.Float4s(2)
	n := int(wg.Uint32(3))

	wg.Items(func(_, i int) {
		if i >= n {
			return
		}
		box := types.ElementAABB(positions[i])
		aabbMin[i] = box.Min
		aabbMax[i] = box.Max
	})
}

func hostReduceAABB(wg compute.WorkGroup) {
	aabbMin := wg.Float4s(0)
	aabbMax := wg.Float4s(1)
	n := int(wg.Uint32(2))
	stride := int(wg.Uint32(3))

	wg.Items(func(_, i int) {
		if i >= stride || i+stride >= n {
			return
		}
		aabbMin[i] = types.MinVec4(aabbMin[i], aabbMin[i+stride])
		aabbMax[i] = types.MaxVec4(aabbMax[i], aabbMax[i+stride])
	})
}

func hostMortonCodes(wg compute.WorkGroup) {
	aabbMin := wg.Float4s(0)
	mortonAABB := wg.Float4s(1)
	codes := wg.Uint32s(2)
	n := int(wg.Uint32(3))

	box := types.AABB{Min: mortonAABB[0], Max: mortonAABB[1]}
	wg.Items(func(_, i int) {
		if i >= n {
			return
		}
		codes[i] = mortonCode(aabbMin[i], box)
	})
}

func hostPermutationIdentity(wg compute.WorkGroup) {
	perm := wg.Uint32s(0)
	n := int(wg.Uint32(1))

	wg.Items(func(_, i int) {
		if i < n {
			perm[i] = uint32(i)
		}
	})
}

func hostSelectBitflag(wg compute.WorkGroup) {
	keys := wg.Uint32s(0)
	zeroFlags := wg.Uint32s(1)
	oneFlags := wg.Uint32s(2)
	bit := wg.Uint32(3)
	n := int(wg.Uint32(4))
	paddedN := int(wg.Uint32(5))

	wg.Items(func(_, i int) {
		if i >= paddedN {
			return
		}
		if i >= n {
			zeroFlags[i], oneFlags[i] = 0, 0
			return
		}
		b := (keys[i] >> bit) & 1
		zeroFlags[i], oneFlags[i] = b^1, b
	})
}

func hostScan(wg compute.WorkGroup) {
	data := wg.Uint32s(0)
	sums := wg.Uint32s(1)
	n := int(wg.Uint32(2))
	tmp := wg.Local(3)

	g := wg.LocalSize()
	group := wg.GroupID()
	base := group * 2 * g

	load := func(idx int) uint32 {
		if idx < n {
			return data[idx]
		}
		return 0
	}
	wg.Items(func(l, _ int) {
		tmp[l+conflictFreeOffset(l)] = load(base + l)
		tmp[l+g+conflictFreeOffset(l+g)] = load(base + l + g)
	})

	// Up-sweep
	offset := 1
	for d := g; d > 0; d >>= 1 {
		wg.Items(func(l, _ int) {
			if l >= d {
				return
			}
			a := offset*(2*l+1) - 1
			b := offset*(2*l+2) - 1
			tmp[b+conflictFreeOffset(b)] += tmp[a+conflictFreeOffset(a)]
		})
		offset <<= 1
	}

	last := 2*g - 1 + conflictFreeOffset(2*g-1)
	sums[group] = tmp[last]
	tmp[last] = 0

	// Down-sweep
	for d := 1; d < 2*g; d <<= 1 {
		offset >>= 1
		wg.Items(func(l, _ int) {
			if l >= d {
				return
			}
			a := offset*(2*l+1) - 1
			b := offset*(2*l+2) - 1
			a += conflictFreeOffset(a)
			b += conflictFreeOffset(b)
			tmp[a], tmp[b] = tmp[b], tmp[b]+tmp[a]
		})
	}

	wg.Items(func(l, _ int) {
		data[base+l] = tmp[l+conflictFreeOffset(l)]
		data[base+l+g] = tmp[l+g+conflictFreeOffset(l+g)]
	})
}

func hostScanAdd(wg compute.WorkGroup) {
	data := wg.Uint32s(0)
	sums := wg.Uint32s(1)
	n := int(wg.Uint32(2))
	blockSize := 2 * wg.LocalSize()

	wg.Items(func(_, i int) {
		e := i + blockSize
		if e >= n {
			return
		}
		data[e] += sums[e/blockSize]
	})
}

func hostReorderKeys(wg compute.WorkGroup) {
	keysIn := wg.Uint32s(0)
	keysOut := wg.Uint32s(1)
	permIn := wg.Uint32s(2)
	permOut := wg.Uint32s(3)
	zeroScan := wg.Uint32s(4)
	oneScan := wg.Uint32s(5)
	bit := wg.Uint32(6)
	n := int(wg.Uint32(7))

	wg.Items(func(_, i int) {
		if i >= n {
			return
		}
		key := keysIn[i]
		var dst uint32
		if (key>>bit)&1 == 0 {
			dst = zeroScan[i]
		} else {
			lastIsZero := ((keysIn[n-1] >> bit) & 1) ^ 1
			dst = zeroScan[n-1] + lastIsZero + oneScan[i]
		}
		keysOut[dst] = key
		permOut[dst] = permIn[i]
	})
}

func hostPermute(wg compute.WorkGroup) {
	in := wg.Float4s(0)
	out := wg.Float4s(1)
	perm := wg.Uint32s(2)
	n := int(wg.Uint32(3))

	wg.Items(func(_, i int) {
		if i < n {
			out[i] = in[perm[i]]
		}
	})
}

func hostNodeHierarchy(wg compute.WorkGroup) {
	n := int(wg.Uint32(3))
	codes := wg.Uint32s(0)[:n]
	children := wg.Uint32s(1)
	parents := wg.Uint32s(2)

	wg.Items(func(_, i int) {
		if i >= n-1 {
			return
		}
		left, right := internalNodeChildren(codes, i)
		children[2*i] = left
		children[2*i+1] = right
		atomic.StoreUint32(&parents[left], uint32(i))
		atomic.StoreUint32(&parents[right], uint32(i))
		if i == 0 {
			atomic.StoreUint32(&parents[0], NoParent)
		}
	})
}

func hostResetNodeFlags(wg compute.WorkGroup) {
	flags := wg.Uint32s(0)
	n := int(wg.Uint32(1))

	wg.Items(func(_, i int) {
		if i < n {
			atomic.StoreUint32(&flags[i], unvisited)
		}
	})
}

func hostRefitInnerNodes(wg compute.WorkGroup) {
	parents := wg.Uint32s(0)
	children := wg.Uint32s(1)
	leafMin := wg.Float4s(2)
	leafMax := wg.Float4s(3)
	nodeMin := wg.Float4s(4)
	nodeMax := wg.Float4s(5)
	flags := wg.Uint32s(6)
	n := wg.Uint32(7)

	bounds := func(c uint32) (types.Vec4, types.Vec4) {
		if c >= n {
			return leafMin[c-n], leafMax[c-n]
		}
		return nodeMin[c], nodeMax[c]
	}

	wg.Items(func(_, i int) {
		leaf := uint32(i)
		if leaf >= n {
			return
		}

		node := atomic.LoadUint32(&parents[n+leaf])
		for node != NoParent {
			// First arrival; the sibling subtree is not ready yet.
			if atomic.CompareAndSwapUint32(&flags[node], unvisited, visited) {
				return
			}

			lmin, lmax := bounds(children[2*node])
			rmin, rmax := bounds(children[2*node+1])
			nodeMin[node] = types.MinVec4(lmin, rmin)
			nodeMax[node] = types.MaxVec4(lmax, rmax)
			node = atomic.LoadUint32(&parents[node])
		}
	})
}
