package host

import (
	"context"
	"fmt"
	"reflect"

	"github.com/achilleasa/lbvh/compute"
	"github.com/achilleasa/lbvh/types"
	"golang.org/x/sync/errgroup"
)

type argKind uint8

const (
	bufferArg argKind = iota
	scalarArg
	localArg
)

// A kernel argument resolved for a single launch.
type boundArg struct {
	kind  argKind
	buf   *Buffer
	value interface{}
	size  int
}

// A kernel implemented as a Go function.
type Kernel struct {
	device *Device
	name   string
	fn     compute.HostKernelFunc
}

func (k *Kernel) Name() string {
	return k.name
}

// Free any allocated resources used by this kernel.
func (k *Kernel) Release() {
	k.fn = nil
}

// Execute the kernel over a 1D range. The call returns once every
// work-group has completed.
func (k *Kernel) Exec1D(args []compute.Arg, globalWorkSize, localWorkSize int) error {
	if k.fn == nil {
		return fmt.Errorf("host device (%s): kernel %s has been released", k.device.name, k.name)
	}
	if localWorkSize <= 0 {
		localWorkSize = defaultLocalWorkSize
	}
	if globalWorkSize < 0 {
		return fmt.Errorf("host device (%s): kernel %s: negative global work size %d: %w", k.device.name, k.name, globalWorkSize, compute.ErrInvalidWorkGroup)
	}
	if globalWorkSize == 0 {
		return nil
	}

	bound, err := k.bindArgs(args)
	if err != nil {
		return err
	}

	globalWorkSize = compute.GlobalWorkSize(globalWorkSize, localWorkSize)
	numGroups := globalWorkSize / localWorkSize

	g, gctx := errgroup.WithContext(context.Background())
	g.SetLimit(k.device.workers)
	for groupID := 0; groupID < numGroups; groupID++ {
		if gctx.Err() != nil {
			break
		}

		wg := &workGroup{
			id:        groupID,
			numGroups: numGroups,
			local:     localWorkSize,
			global:    globalWorkSize,
			args:      bound,
		}
		g.Go(func() error {
			return k.runGroup(wg)
		})
	}

	return g.Wait()
}

// Run a single work-group, converting kernel panics (out of range accesses,
// argument type mismatches) into errors.
func (k *Kernel) runGroup(wg *workGroup) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("host device (%s): kernel %s failed in group %d: %v", k.device.name, k.name, wg.id, r)
		}
	}()

	wg.allocLocals()
	k.fn(wg)
	return nil
}

// Resolve positional arguments for a launch.
func (k *Kernel) bindArgs(args []compute.Arg) ([]boundArg, error) {
	bound := make([]boundArg, len(args))
	for argIndex, arg := range args {
		switch v := arg.(type) {
		case *Buffer:
			if v.device != k.device {
				return nil, fmt.Errorf("host device (%s): arg %d of kernel %s: %w", k.device.name, argIndex, k.name, compute.ErrForeignBuffer)
			}
			bound[argIndex] = boundArg{kind: bufferArg, buf: v}
		case compute.LocalMem:
			if v <= 0 {
				return nil, fmt.Errorf("host device (%s): arg %d of kernel %s: invalid local memory size %d", k.device.name, argIndex, k.name, v)
			}
			bound[argIndex] = boundArg{kind: localArg, size: int(v)}
		case uint32, int32, float32, types.Vec4:
			bound[argIndex] = boundArg{kind: scalarArg, value: v}
		default:
			return nil, fmt.Errorf(
				"host device (%s): could not set arg %d for kernel %s; unsupported arg type %s: %w",
				k.device.name,
				argIndex,
				k.name,
				reflect.TypeOf(arg),
				compute.ErrUnsupportedArg,
			)
		}
	}
	return bound, nil
}
