package lbvh

import "fmt"

// Default work-group size for all kernels.
const DefaultLocalWorkSize = 128

type Options struct {
	// Number of elements; fixed for the lifetime of a builder.
	NumElements uint32

	// Work-group size for the element kernels. Must be a power of two.
	LocalWorkSize uint32

	// Work-group size for the scan kernels. Each scan work-group processes
	// twice as many elements. Defaults to LocalWorkSize.
	ScanLocalWorkSize uint32

	// Wait for the device after every pipeline stage so that stage timings
	// reflect execution rather than submission time.
	SyncStages bool
}

// Validate options and fill in defaults.
func (o *Options) Validate() error {
	if o.NumElements == 0 {
		return ErrNoElements
	}

	if o.LocalWorkSize == 0 {
		o.LocalWorkSize = DefaultLocalWorkSize
	}
	if o.ScanLocalWorkSize == 0 {
		o.ScanLocalWorkSize = o.LocalWorkSize
	}

	for _, size := range []uint32{o.LocalWorkSize, o.ScanLocalWorkSize} {
		if size < 2 || size&(size-1) != 0 {
			return fmt.Errorf("%w: %d", ErrInvalidLocalWorkSize, size)
		}
	}

	return nil
}
