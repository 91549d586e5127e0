// Package opencl implements compute.Device on top of OpenCL 1.2. The
// backend requires the OpenCL headers and ICD loader and is only built with
// the opencl build tag.
package opencl
