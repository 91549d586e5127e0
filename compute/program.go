package compute

import "github.com/achilleasa/lbvh/types"

// A HostKernelFunc runs one work-group of a kernel on the host.
type HostKernelFunc func(wg WorkGroup)

// A kernel program. Devices that compile kernels build Source; devices that
// execute on the host look kernels up in Host by name.
type Program struct {
	Name string

	// OpenCL C source and build options.
	Source       string
	BuildOptions string

	// Host implementations keyed by kernel name.
	Host map[string]HostKernelFunc
}

// The view of a single work-group that host kernels receive.
//
// Items runs fn once for every work-item of the group. Consecutive Items
// calls are separated by an implicit work-group barrier, so a kernel that
// needs barriers splits its body into one Items call per phase and keeps
// any per-item state in local memory.
type WorkGroup interface {
	GroupID() int
	NumGroups() int
	LocalSize() int
	GlobalSize() int

	Items(fn func(localID, globalID int))

	// Typed access to the positional kernel arguments.
	Uint32s(arg int) []uint32
	Float4s(arg int) []types.Vec4
	Uint32(arg int) uint32
	Int32(arg int) int32
	Float32(arg int) float32
	Vec4(arg int) types.Vec4
	Local(arg int) []uint32
}
