//go:build opencl

package opencl

import (
	"fmt"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
	"github.com/achilleasa/lbvh/compute"
)

type Buffer struct {
	// Handle to opencl buffer.
	bufHandle cl.Mem

	// Associated Device.
	device *Device

	// A name for identifying the buffer.
	name string

	// Allocated size.
	size int
}

func (b *Buffer) Name() string {
	return b.name
}

// Get buffer size.
func (b *Buffer) Size() int {
	return b.size
}

// Allocate a buffer with the given size and access mode.
func (b *Buffer) Allocate(size int, mode compute.AccessMode) error {
	var errCode cl.ErrorCode

	if size <= 0 {
		return fmt.Errorf("opencl device (%s): invalid size %d for buffer %s", b.device.name, size, b.name)
	}
	if b.device.ctx == nil {
		return fmt.Errorf("opencl device (%s): buffer %s: %w", b.device.name, b.name, compute.ErrNotInitialized)
	}

	// If the buffer is already allocated release it
	b.Release()

	b.bufHandle = cl.CreateBuffer(
		*b.device.ctx,
		memFlags(mode),
		cl.MemFlags(size),
		nil,
		(*int32)(&errCode),
	)
	if errCode != cl.SUCCESS {
		b.bufHandle = nil
		return fmt.Errorf("opencl device (%s): could not allocate buffer %s of size %d (error: %s; code %d)", b.device.name, b.name, size, ErrorName(errCode), errCode)
	}

	b.size = size
	return nil
}

// Write data to the device buffer starting at the given byte offset. The
// write blocks until the host data has been copied.
func (b *Buffer) WriteData(data interface{}, offset int) error {
	dataPtr, dataLen, err := compute.SliceData(data)
	if err != nil {
		return fmt.Errorf("opencl device (%s): buffer %s: %w", b.device.name, b.name, err)
	}

	if offset < 0 || offset+dataLen > b.size {
		return fmt.Errorf("opencl device (%s): writing %d bytes at offset %d to %s (size %d): %w", b.device.name, dataLen, offset, b.name, b.size, compute.ErrBufferTooSmall)
	}

	errCode := cl.EnqueueWriteBuffer(
		b.device.cmdQueue,
		b.bufHandle,
		cl.TRUE,
		uint64(offset),
		uint64(dataLen),
		dataPtr,
		0,
		nil,
		nil,
	)
	if errCode != cl.SUCCESS {
		return fmt.Errorf("opencl device (%s): error copying host data to device buffer %s (error: %s; code %d)", b.device.name, b.name, ErrorName(errCode), errCode)
	}

	return nil
}

// Read data from device buffer into the supplied host buffer. If size is <= 0
// then ReadData will read the remainder of the buffer. Both src and dst
// offsets are specified in bytes.
func (b *Buffer) ReadData(srcOffset, dstOffset, size int, hostBuffer interface{}) error {
	if size <= 0 {
		size = b.size - srcOffset
	}

	dataPtr, dataLen, err := compute.SliceData(hostBuffer)
	if err != nil {
		return fmt.Errorf("opencl device (%s): buffer %s: %w", b.device.name, b.name, err)
	}

	if srcOffset < 0 || srcOffset+size > b.size || dstOffset < 0 || dstOffset+size > dataLen {
		return fmt.Errorf("opencl device (%s): reading %d bytes at offset %d from %s: %w", b.device.name, size, srcOffset, b.name, compute.ErrBufferTooSmall)
	}

	errCode := cl.EnqueueReadBuffer(
		b.device.cmdQueue,
		b.bufHandle,
		cl.TRUE,
		uint64(srcOffset),
		uint64(size),
		unsafe.Pointer(uintptr(dataPtr)+uintptr(dstOffset)),
		0,
		nil,
		nil,
	)
	if errCode != cl.SUCCESS {
		return fmt.Errorf("opencl device (%s): error copying device data from %s to host buffer (error: %s; code %d)", b.device.name, b.name, ErrorName(errCode), errCode)
	}

	return nil
}

// Release buffer.
func (b *Buffer) Release() {
	if b.bufHandle != nil {
		cl.ReleaseMemObject(b.bufHandle)
		b.bufHandle = nil
	}
	b.size = 0
}

func memFlags(mode compute.AccessMode) cl.MemFlags {
	switch mode {
	case compute.ReadOnly:
		return cl.MEM_READ_ONLY
	case compute.WriteOnly:
		return cl.MEM_WRITE_ONLY
	default:
		return cl.MEM_READ_WRITE
	}
}
