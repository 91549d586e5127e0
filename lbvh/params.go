package lbvh

import "github.com/achilleasa/lbvh/compute"

// Kernel parameters are collected in one struct per kernel and converted to
// positional arguments at launch time.
type kernelParams interface {
	args() []compute.Arg
}

type advanceParams struct {
	positions, velocities compute.Buffer
	n                     uint32
}

func (p advanceParams) args() []compute.Arg {
	return []compute.Arg{p.positions, p.velocities, p.n}
}

type leafParams struct {
	positions        compute.Buffer
	aabbMin, aabbMax compute.Buffer
	n                uint32
}

func (p leafParams) args() []compute.Arg {
	return []compute.Arg{p.positions, p.aabbMin, p.aabbMax, p.n}
}

type reduceParams struct {
	aabbMin, aabbMax compute.Buffer
	n, stride        uint32
}

func (p reduceParams) args() []compute.Arg {
	return []compute.Arg{p.aabbMin, p.aabbMax, p.n, p.stride}
}

type mortonParams struct {
	aabbMin, mortonAABB, codes compute.Buffer
	n                          uint32
}

func (p mortonParams) args() []compute.Arg {
	return []compute.Arg{p.aabbMin, p.mortonAABB, p.codes, p.n}
}

type identityParams struct {
	perm compute.Buffer
	n    uint32
}

func (p identityParams) args() []compute.Arg {
	return []compute.Arg{p.perm, p.n}
}

type bitflagParams struct {
	keys, zeroFlags, oneFlags compute.Buffer
	bit, n, paddedN           uint32
}

func (p bitflagParams) args() []compute.Arg {
	return []compute.Arg{p.keys, p.zeroFlags, p.oneFlags, p.bit, p.n, p.paddedN}
}

type scanParams struct {
	data, sums compute.Buffer
	n          uint32
	localBytes int
}

func (p scanParams) args() []compute.Arg {
	return []compute.Arg{p.data, p.sums, p.n, compute.LocalMem(p.localBytes)}
}

type scanAddParams struct {
	data, sums compute.Buffer
	n          uint32
}

func (p scanAddParams) args() []compute.Arg {
	return []compute.Arg{p.data, p.sums, p.n}
}

type reorderParams struct {
	keysIn, keysOut   compute.Buffer
	permIn, permOut   compute.Buffer
	zeroScan, oneScan compute.Buffer
	bit, n            uint32
}

func (p reorderParams) args() []compute.Arg {
	return []compute.Arg{p.keysIn, p.keysOut, p.permIn, p.permOut, p.zeroScan, p.oneScan, p.bit, p.n}
}

type permuteParams struct {
	in, out, perm compute.Buffer
	n             uint32
}

func (p permuteParams) args() []compute.Arg {
	return []compute.Arg{p.in, p.out, p.perm, p.n}
}

type hierarchyParams struct {
	codes, children, parents compute.Buffer
	n                        uint32
}

func (p hierarchyParams) args() []compute.Arg {
	return []compute.Arg{p.codes, p.children, p.parents, p.n}
}

type flagParams struct {
	flags compute.Buffer
	n     uint32
}

func (p flagParams) args() []compute.Arg {
	return []compute.Arg{p.flags, p.n}
}

type refitParams struct {
	parents, children compute.Buffer
	leafMin, leafMax  compute.Buffer
	nodeMin, nodeMax  compute.Buffer
	flags             compute.Buffer
	n                 uint32
}

func (p refitParams) args() []compute.Arg {
	return []compute.Arg{p.parents, p.children, p.leafMin, p.leafMax, p.nodeMin, p.nodeMax, p.flags, p.n}
}
