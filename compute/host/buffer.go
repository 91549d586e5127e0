package host

import (
	"fmt"
	"unsafe"

	"github.com/achilleasa/lbvh/compute"
	"github.com/achilleasa/lbvh/types"
)

// A host memory buffer. Storage is kept in 8-byte words so that typed views
// of float4 and uint32 elements are always aligned.
type Buffer struct {
	device *Device
	name   string
	mode   compute.AccessMode

	words []uint64
	size  int
}

func (b *Buffer) Name() string {
	return b.name
}

// Get buffer size.
func (b *Buffer) Size() int {
	return b.size
}

// Allocate a zeroed buffer with the given size.
func (b *Buffer) Allocate(size int, mode compute.AccessMode) error {
	if size <= 0 {
		return fmt.Errorf("host device (%s): could not allocate buffer %s of size %d", b.device.name, b.name, size)
	}

	b.Release()
	b.words = make([]uint64, (size+7)/8)
	b.size = size
	b.mode = mode
	return nil
}

// Write data to the buffer starting at the given byte offset.
func (b *Buffer) WriteData(data interface{}, offset int) error {
	src, err := compute.SliceBytes(data)
	if err != nil {
		return fmt.Errorf("host device (%s): writing to %s: %w", b.device.name, b.name, err)
	}

	if offset < 0 || offset+len(src) > b.size {
		return fmt.Errorf("host device (%s): buffer %s (%d bytes) cannot fit %d bytes at offset %d: %w", b.device.name, b.name, b.size, len(src), offset, compute.ErrBufferTooSmall)
	}

	copy(b.bytes()[offset:], src)
	return nil
}

// Read data from the buffer into the supplied host slice. If size is <= 0
// the buffer contents past srcOffset are read.
func (b *Buffer) ReadData(srcOffset, dstOffset, size int, hostBuffer interface{}) error {
	dst, err := compute.SliceBytes(hostBuffer)
	if err != nil {
		return fmt.Errorf("host device (%s): reading from %s: %w", b.device.name, b.name, err)
	}

	if size <= 0 {
		size = b.size - srcOffset
	}
	if srcOffset < 0 || dstOffset < 0 || srcOffset+size > b.size || dstOffset+size > len(dst) {
		return fmt.Errorf("host device (%s): cannot read %d bytes from %s@%d into host buffer of %d bytes at %d: %w", b.device.name, size, b.name, srcOffset, len(dst), dstOffset, compute.ErrBufferTooSmall)
	}

	copy(dst[dstOffset:dstOffset+size], b.bytes()[srcOffset:srcOffset+size])
	return nil
}

// Release buffer.
func (b *Buffer) Release() {
	b.words = nil
	b.size = 0
}

func (b *Buffer) bytes() []byte {
	if len(b.words) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&b.words[0])), b.size)
}

func (b *Buffer) uint32s() []uint32 {
	if len(b.words) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b.words[0])), b.size/4)
}

func (b *Buffer) float4s() []types.Vec4 {
	if len(b.words) == 0 {
		return nil
	}
	return unsafe.Slice((*types.Vec4)(unsafe.Pointer(&b.words[0])), b.size/16)
}
