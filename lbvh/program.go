package lbvh

import (
	_ "embed"

	"github.com/achilleasa/lbvh/compute"
)

//go:embed kernels.cl
var kernelSource string

// Get the kernel program used by the builder. The program carries both the
// OpenCL source and the equivalent host kernels so it can be built by any
// compute device.
func Program() *compute.Program {
	return &compute.Program{
		Name:         "lbvh",
		Source:       kernelSource,
		BuildOptions: "-cl-std=CL1.2",
		Host:         hostKernels(),
	}
}
