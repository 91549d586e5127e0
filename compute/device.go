// Package compute defines the device abstraction that the BVH pipeline runs
// on: linear buffers, named data-parallel kernels and an in-order command
// stream that is drained with Finish.
package compute

import "fmt"

type DeviceType uint8

// Supported device types.
const (
	CpuDevice   DeviceType = 1 << iota
	GpuDevice              = 1 << iota
	OtherDevice            = 1 << iota
	AllDevices             = 0xFF
)

func (dt DeviceType) String() string {
	switch dt {
	case CpuDevice:
		return "CPU"
	case GpuDevice:
		return "GPU"
	case OtherDevice:
		return "Other"
	case AllDevices:
		return "All"
	}
	return fmt.Sprintf("Unknown(%#x)", uint8(dt))
}

// Access hints for buffer allocations.
type AccessMode uint8

const (
	ReadWrite AccessMode = iota
	ReadOnly
	WriteOnly
)

// A compute device. Kernel launches are queued in submission order and may
// complete asynchronously; blocking reads and Finish are the only points
// where the caller waits for the device.
type Device interface {
	Name() string
	Type() DeviceType

	// Build the supplied program. Init is a no-op if the device is already
	// initialized.
	Init(prog *Program) error

	// Look up a kernel from the built program.
	Kernel(name string) (Kernel, error)

	// Create an empty named buffer. Call Allocate before using it.
	Buffer(name string) Buffer

	// Enqueue a device-side copy of size bytes.
	CopyBuffer(dst, src Buffer, dstOffset, srcOffset, size int) error

	// Wait for all queued commands to complete.
	Finish() error

	// Release the device.
	Close()
}

// A linear device buffer.
type Buffer interface {
	Name() string

	// Get allocated size in bytes.
	Size() int

	// Allocate size bytes, releasing any previous allocation.
	Allocate(size int, mode AccessMode) error

	// Copy the contents of a host slice into the buffer starting at the
	// given byte offset.
	WriteData(data interface{}, offset int) error

	// Read size bytes starting at srcOffset into the host slice at
	// dstOffset. If size is <= 0 the remainder of the buffer is read.
	// Reads block until the data is available.
	ReadData(srcOffset, dstOffset, size int, hostBuffer interface{}) error

	Release()
}

// A data-parallel kernel.
type Kernel interface {
	Name() string

	// Enqueue a 1D launch. Arguments are bound positionally for this
	// invocation only. The global work size is rounded up to a multiple of
	// the local work size; kernels must ignore items past their element
	// count. A zero local work size lets the device choose.
	Exec1D(args []Arg, globalWorkSize, localWorkSize int) error

	Release()
}
