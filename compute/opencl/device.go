//go:build opencl

package opencl

import (
	"fmt"
	"regexp"
	"sync"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
	"github.com/achilleasa/lbvh/compute"
	"github.com/achilleasa/lbvh/log"
)

var (
	indentRegex = regexp.MustCompile("(?m)^")
	logger      = log.New("opencl")

	_ compute.Device = (*Device)(nil)
	_ compute.Buffer = (*Buffer)(nil)
	_ compute.Kernel = (*Kernel)(nil)
)

// Wrapper around opencl-supported devices.
type Device struct {
	name    string
	id      cl.DeviceId
	devType compute.DeviceType

	compUnits  uint32
	clockSpeed uint32

	// Speed estimate in GFlops.
	speed uint32

	// Opencl handles; allocated when device is initialized.
	mu       sync.Mutex
	ctx      *cl.Context
	cmdQueue cl.CommandQueue
	program  cl.Program
}

// A list of devices.
type DeviceList []*Device

func (d *Device) Name() string {
	return d.name
}

func (d *Device) Type() compute.DeviceType {
	return d.devType
}

// Get the approximate device speed in GFlops.
func (d *Device) SpeedEstimate() uint32 {
	return d.speed
}

// Implements Stringer.
func (d *Device) String() string {
	return fmt.Sprintf(
		"Name: %s\nType: %s\nSpecs: %d computation units, %d Mhz clock, %d GFlops approximate speed",
		d.name,
		d.devType.String(),
		d.compUnits,
		d.clockSpeed,
		d.speed,
	)
}

// Initialize device and build the program source.
func (d *Device) Init(prog *compute.Program) error {
	var errCode cl.ErrorCode

	d.mu.Lock()
	defer d.mu.Unlock()

	// Already initialized
	if d.ctx != nil {
		return nil
	}

	if prog == nil || prog.Source == "" {
		return fmt.Errorf("opencl device (%s): program has no kernel source", d.name)
	}

	// Create context
	d.ctx = cl.CreateContext(nil, 1, &d.id, nil, nil, (*int32)(&errCode))
	if errCode != cl.SUCCESS {
		defer d.release()
		return fmt.Errorf("opencl device (%s): could not create opencl context (error: %s; code %d)", d.name, ErrorName(errCode), errCode)
	}

	// Create an in-order command queue
	d.cmdQueue = cl.CreateCommandQueue(*d.ctx, d.id, 0, (*int32)(&errCode))
	if errCode != cl.SUCCESS {
		defer d.release()
		return fmt.Errorf("opencl device (%s): could not create command queue (error: %s; code %d)", d.name, ErrorName(errCode), errCode)
	}

	// Create and build program
	progSrc := cl.Str(prog.Source + "\x00")
	d.program = cl.CreateProgramWithSource(
		*d.ctx,
		1,
		&progSrc,
		nil,
		(*int32)(&errCode),
	)
	if errCode != cl.SUCCESS {
		defer d.release()
		return fmt.Errorf("opencl device (%s): could not create program %s (error: %s; code %d)", d.name, prog.Name, ErrorName(errCode), errCode)
	}

	errCode = cl.BuildProgram(
		d.program,
		1,
		&d.id,
		cl.Str(prog.BuildOptions+"\x00"),
		nil,
		nil,
	)
	if errCode != cl.SUCCESS {
		var dataLen uint64
		data := make([]byte, 120000)

		cl.GetProgramBuildInfo(d.program, d.id, cl.PROGRAM_BUILD_LOG, uint64(len(data)), unsafe.Pointer(&data[0]), &dataLen)
		if dataLen > 0 {
			dataLen--
		}
		defer d.release()
		return fmt.Errorf("opencl device (%s): could not build program %s (error: %s; code %d):\n%s", d.name, prog.Name, ErrorName(errCode), errCode, string(data[0:dataLen]))
	}

	logger.Debugf("opencl device (%s): built program %s", d.name, prog.Name)
	return nil
}

// Shut down the device.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.release()
}

func (d *Device) release() {
	if d.program != nil {
		cl.ReleaseProgram(d.program)
		d.program = nil
	}

	if d.cmdQueue != nil {
		cl.ReleaseCommandQueue(d.cmdQueue)
		d.cmdQueue = nil
	}

	if d.ctx != nil {
		cl.ReleaseContext(d.ctx)
		d.ctx = nil
	}
}

// Load kernel by name.
func (d *Device) Kernel(name string) (compute.Kernel, error) {
	if d.program == nil {
		return nil, fmt.Errorf("opencl device (%s): %w", d.name, compute.ErrNotInitialized)
	}

	var errCode cl.ErrorCode
	kernelHandle := cl.CreateKernel(
		d.program,
		cl.Str(name+"\x00"),
		(*int32)(&errCode),
	)

	if errCode != cl.SUCCESS {
		return nil, fmt.Errorf("opencl device (%s): could not load kernel %s (error: %s; code %d): %w", d.name, name, ErrorName(errCode), errCode, compute.ErrUnknownKernel)
	}

	return &Kernel{
		device:       d,
		kernelHandle: kernelHandle,
		name:         name,
	}, nil
}

// Create an empty buffer.
func (d *Device) Buffer(name string) compute.Buffer {
	return &Buffer{
		device: d,
		name:   name,
	}
}

// Enqueue a device-side buffer copy.
func (d *Device) CopyBuffer(dst, src compute.Buffer, dstOffset, srcOffset, size int) error {
	dstBuf, ok := dst.(*Buffer)
	if !ok || dstBuf.device != d {
		return fmt.Errorf("opencl device (%s): buffer %s: %w", d.name, dst.Name(), compute.ErrForeignBuffer)
	}
	srcBuf, ok := src.(*Buffer)
	if !ok || srcBuf.device != d {
		return fmt.Errorf("opencl device (%s): buffer %s: %w", d.name, src.Name(), compute.ErrForeignBuffer)
	}
	if srcOffset+size > srcBuf.size || dstOffset+size > dstBuf.size {
		return fmt.Errorf("opencl device (%s): copying %d bytes from %s to %s: %w", d.name, size, srcBuf.name, dstBuf.name, compute.ErrBufferTooSmall)
	}

	errCode := cl.EnqueueCopyBuffer(
		d.cmdQueue,
		srcBuf.bufHandle,
		dstBuf.bufHandle,
		uint64(srcOffset),
		uint64(dstOffset),
		uint64(size),
		0,
		nil,
		nil,
	)
	if errCode != cl.SUCCESS {
		return fmt.Errorf("opencl device (%s): could not copy %s to %s (error: %s; code %d)", d.name, srcBuf.name, dstBuf.name, ErrorName(errCode), errCode)
	}
	return nil
}

// Block until all queued commands complete.
func (d *Device) Finish() error {
	errCode := cl.Finish(d.cmdQueue)
	if errCode != cl.SUCCESS {
		return fmt.Errorf("opencl device (%s): queued commands did not complete successfully (error: %s; code %d)", d.name, ErrorName(errCode), errCode)
	}
	return nil
}

// Detect device speed.
func (d *Device) detectSpeed() error {
	// Calculate theoretical device speed as: compute units * 2ops/cycle * clock speed
	errCode := cl.GetDeviceInfo(d.id, cl.DEVICE_MAX_COMPUTE_UNITS, 4, unsafe.Pointer(&d.compUnits), nil)
	if errCode != cl.SUCCESS {
		return fmt.Errorf("opencl device (%s): could not query MAX_COMPUTE_UNITS (error: %s; code %d)", d.name, ErrorName(errCode), errCode)
	}
	errCode = cl.GetDeviceInfo(d.id, cl.DEVICE_MAX_CLOCK_FREQUENCY, 4, unsafe.Pointer(&d.clockSpeed), nil)
	if errCode != cl.SUCCESS {
		return fmt.Errorf("opencl device (%s): could not query MAX_CLOCK_FREQUENCY (error: %s; code %d)", d.name, ErrorName(errCode), errCode)
	}
	d.speed = d.compUnits * d.clockSpeed / 1000

	return nil
}
