// Package host implements a compute.Device that executes kernels as Go
// functions. Each work-group runs on its own goroutine and the number of
// groups in flight is bounded by the worker count.
package host

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/achilleasa/lbvh/compute"
	"github.com/achilleasa/lbvh/log"
)

const defaultLocalWorkSize = 64

var logger = log.New("host")

// A device backed by host memory and goroutines.
type Device struct {
	name    string
	workers int

	mu      sync.Mutex
	program *compute.Program
}

// Create a host device that runs up to workers work-groups concurrently. If
// workers is <= 0, GOMAXPROCS is used.
func NewDevice(workers int) *Device {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Device{
		name:    fmt.Sprintf("Go host (%d workers)", workers),
		workers: workers,
	}
}

func (d *Device) Name() string {
	return d.name
}

func (d *Device) Type() compute.DeviceType {
	return compute.CpuDevice
}

// Get the worker limit.
func (d *Device) Workers() int {
	return d.workers
}

// Attach the program's host kernels to the device.
func (d *Device) Init(prog *compute.Program) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.program != nil {
		return nil
	}
	if prog == nil || len(prog.Host) == 0 {
		return fmt.Errorf("host device (%s): program has no host kernels", d.name)
	}

	d.program = prog
	logger.Debugf("host device (%s): loaded program %q with %d kernels", d.name, prog.Name, len(prog.Host))
	return nil
}

// Shut down the device.
func (d *Device) Close() {
	d.mu.Lock()
	d.program = nil
	d.mu.Unlock()
}

// Load kernel by name.
func (d *Device) Kernel(name string) (compute.Kernel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.program == nil {
		return nil, fmt.Errorf("host device (%s): %w", d.name, compute.ErrNotInitialized)
	}

	fn, ok := d.program.Host[name]
	if !ok {
		return nil, fmt.Errorf("host device (%s): could not load kernel %s: %w", d.name, name, compute.ErrUnknownKernel)
	}

	return &Kernel{
		device: d,
		name:   name,
		fn:     fn,
	}, nil
}

// Create an empty buffer.
func (d *Device) Buffer(name string) compute.Buffer {
	return &Buffer{
		device: d,
		name:   name,
	}
}

// Copy size bytes between two buffers of this device. Launches complete
// before Exec1D returns so the copy observes all previously queued work.
func (d *Device) CopyBuffer(dst, src compute.Buffer, dstOffset, srcOffset, size int) error {
	dstBuf, err := d.ownBuffer(dst)
	if err != nil {
		return err
	}
	srcBuf, err := d.ownBuffer(src)
	if err != nil {
		return err
	}

	if srcOffset < 0 || dstOffset < 0 || size < 0 ||
		srcOffset+size > srcBuf.size || dstOffset+size > dstBuf.size {
		return fmt.Errorf(
			"host device (%s): copying %d bytes from %s@%d to %s@%d: %w",
			d.name, size, srcBuf.name, srcOffset, dstBuf.name, dstOffset, compute.ErrBufferTooSmall,
		)
	}

	copy(dstBuf.bytes()[dstOffset:dstOffset+size], srcBuf.bytes()[srcOffset:srcOffset+size])
	return nil
}

// All host launches are synchronous so there is never any pending work.
func (d *Device) Finish() error {
	return nil
}

func (d *Device) ownBuffer(b compute.Buffer) (*Buffer, error) {
	hb, ok := b.(*Buffer)
	if !ok || hb.device != d {
		return nil, fmt.Errorf("host device (%s): buffer %s: %w", d.name, b.Name(), compute.ErrForeignBuffer)
	}
	return hb, nil
}
