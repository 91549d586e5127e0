//go:build opencl

package opencl

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
	"github.com/achilleasa/lbvh/compute"
	"github.com/achilleasa/lbvh/types"
)

// A wrapper around opencl kernel handles.
type Kernel struct {
	device       *Device
	kernelHandle cl.Kernel
	name         string

	// Arguments are bound to the kernel object so binding and enqueueing
	// must not interleave across goroutines.
	mu sync.Mutex

	globalWorkSize uint64
	localWorkSize  uint64
}

func (k *Kernel) Name() string {
	return k.name
}

// Free any allocated resources used by this kernel.
func (k *Kernel) Release() {
	if k.kernelHandle != nil {
		cl.ReleaseKernel(k.kernelHandle)
		k.kernelHandle = nil
	}
}

// Bind arguments and enqueue a 1D launch. The global size is padded to a
// multiple of the local size. If local is 0 the opencl implementation picks
// the work-group size.
func (k *Kernel) Exec1D(args []compute.Arg, global, local int) error {
	if global <= 0 || local < 0 {
		return fmt.Errorf("opencl device (%s): kernel %s: global %d, local %d: %w", k.device.name, k.name, global, local, compute.ErrInvalidWorkGroup)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.setArgs(args); err != nil {
		return err
	}

	var localSizePtr *uint64
	k.globalWorkSize = uint64(compute.GlobalWorkSize(global, local))
	if local != 0 {
		k.localWorkSize = uint64(local)
		localSizePtr = &k.localWorkSize
	}

	errCode := cl.EnqueueNDRangeKernel(
		k.device.cmdQueue,
		k.kernelHandle,
		1,
		nil,
		&k.globalWorkSize,
		localSizePtr,
		0,
		nil,
		nil,
	)
	if errCode != cl.SUCCESS {
		return fmt.Errorf("opencl device (%s): unable to execute kernel %s (error: %s; code %d)", k.device.name, k.name, ErrorName(errCode), errCode)
	}

	return nil
}

func (k *Kernel) setArgs(args []compute.Arg) error {
	var errCode cl.ErrorCode
	for argIndex, arg := range args {
		idx := uint32(argIndex)
		switch v := arg.(type) {
		case *Buffer:
			if v.device != k.device {
				return fmt.Errorf("opencl device (%s): arg %d for kernel %s: %w", k.device.name, argIndex, k.name, compute.ErrForeignBuffer)
			}
			bufHandle := v.bufHandle
			errCode = cl.SetKernelArg(k.kernelHandle, idx, 8, unsafe.Pointer(&bufHandle))
		case compute.LocalMem:
			errCode = cl.SetKernelArg(k.kernelHandle, idx, uint64(v), nil)
		case int32:
			errCode = cl.SetKernelArg(k.kernelHandle, idx, 4, unsafe.Pointer(&v))
		case uint32:
			errCode = cl.SetKernelArg(k.kernelHandle, idx, 4, unsafe.Pointer(&v))
		case float32:
			errCode = cl.SetKernelArg(k.kernelHandle, idx, 4, unsafe.Pointer(&v))
		case types.Vec4:
			errCode = cl.SetKernelArg(k.kernelHandle, idx, 16, unsafe.Pointer(&v[0]))
		default:
			return fmt.Errorf("opencl device (%s): arg %d for kernel %s has type %T: %w", k.device.name, argIndex, k.name, arg, compute.ErrUnsupportedArg)
		}

		if errCode != cl.SUCCESS {
			return fmt.Errorf("opencl device (%s): could not set arg %d for kernel %s (error: %s; code %d)", k.device.name, argIndex, k.name, ErrorName(errCode), errCode)
		}
	}

	return nil
}
