package host

import (
	"errors"
	"testing"

	"github.com/achilleasa/lbvh/compute"
	"github.com/stretchr/testify/require"
)

func testProgram() *compute.Program {
	return &compute.Program{
		Name: "test",
		Host: map[string]compute.HostKernelFunc{
			"square": func(wg compute.WorkGroup) {
				in := wg.Uint32s(0)
				out := wg.Uint32s(1)
				n := int(wg.Uint32(2))
				wg.Items(func(_, i int) {
					if i >= n {
						return
					}
					out[i] = in[i] * in[i]
				})
			},
			// Reverse each group's slice of data through local memory.
			"reverseGroups": func(wg compute.WorkGroup) {
				data := wg.Uint32s(0)
				tmp := wg.Local(1)
				g := wg.LocalSize()
				wg.Items(func(l, i int) {
					tmp[l] = data[i]
				})
				wg.Items(func(l, i int) {
					data[i] = tmp[g-1-l]
				})
			},
			"outOfRange": func(wg compute.WorkGroup) {
				data := wg.Uint32s(0)
				wg.Items(func(_, i int) {
					data[i+len(data)] = 1
				})
			},
		},
	}
}

func newTestDevice(t *testing.T, workers int) *Device {
	dev := NewDevice(workers)
	require.NoError(t, dev.Init(testProgram()))
	t.Cleanup(dev.Close)
	return dev
}

func TestDeviceInit(t *testing.T) {
	dev := NewDevice(0)
	require.Equal(t, compute.CpuDevice, dev.Type())
	require.Greater(t, dev.Workers(), 0)

	_, err := dev.Kernel("square")
	require.True(t, errors.Is(err, compute.ErrNotInitialized))

	require.Error(t, dev.Init(&compute.Program{Name: "empty"}))
	require.NoError(t, dev.Init(testProgram()))

	_, err = dev.Kernel("foo")
	require.True(t, errors.Is(err, compute.ErrUnknownKernel))
}

func TestKernelExec1D(t *testing.T) {
	for _, workers := range []int{1, 4} {
		dev := newTestDevice(t, workers)

		kernel, err := dev.Kernel("square")
		require.NoError(t, err)
		defer kernel.Release()

		dataSize := 37
		dataIn := make([]uint32, dataSize)
		for i := range dataIn {
			dataIn[i] = uint32(i)
		}

		bufIn := dev.Buffer("in")
		require.NoError(t, bufIn.Allocate(dataSize*4, compute.ReadOnly))
		require.NoError(t, bufIn.WriteData(dataIn, 0))
		bufOut := dev.Buffer("out")
		require.NoError(t, bufOut.Allocate(dataSize*4, compute.WriteOnly))

		// 37 items with a local size of 8 pads the range to 40 items.
		err = kernel.Exec1D([]compute.Arg{bufIn, bufOut, uint32(dataSize)}, dataSize, 8)
		require.NoError(t, err)
		require.NoError(t, dev.Finish())

		dataOut := make([]uint32, dataSize)
		require.NoError(t, bufOut.ReadData(0, 0, 0, dataOut))
		for i := range dataOut {
			require.Equal(t, dataIn[i]*dataIn[i], dataOut[i], "item %d", i)
		}
	}
}

func TestKernelLocalMemory(t *testing.T) {
	dev := newTestDevice(t, 3)

	kernel, err := dev.Kernel("reverseGroups")
	require.NoError(t, err)

	data := []uint32{0, 1, 2, 3, 4, 5, 6, 7}
	buf := dev.Buffer("data")
	require.NoError(t, buf.Allocate(len(data)*4, compute.ReadWrite))
	require.NoError(t, buf.WriteData(data, 0))

	require.NoError(t, kernel.Exec1D([]compute.Arg{buf, compute.LocalMem(4 * 4)}, len(data), 4))

	out := make([]uint32, len(data))
	require.NoError(t, buf.ReadData(0, 0, 0, out))
	require.Equal(t, []uint32{3, 2, 1, 0, 7, 6, 5, 4}, out)
}

func TestKernelErrors(t *testing.T) {
	dev := newTestDevice(t, 2)

	kernel, err := dev.Kernel("outOfRange")
	require.NoError(t, err)

	buf := dev.Buffer("data")
	require.NoError(t, buf.Allocate(16, compute.ReadWrite))

	// Kernel panics surface as launch errors.
	err = kernel.Exec1D([]compute.Arg{buf}, 4, 4)
	require.Error(t, err)
	require.Contains(t, err.Error(), "outOfRange")

	// Unsupported argument types are rejected before launching.
	err = kernel.Exec1D([]compute.Arg{"foo"}, 4, 4)
	require.True(t, errors.Is(err, compute.ErrUnsupportedArg))

	// Buffers from another device are rejected.
	other := NewDevice(1)
	foreign := other.Buffer("foreign")
	require.NoError(t, foreign.Allocate(16, compute.ReadWrite))
	err = kernel.Exec1D([]compute.Arg{foreign}, 4, 4)
	require.True(t, errors.Is(err, compute.ErrForeignBuffer))

	// Mismatched scalar types fail inside the group.
	square, err := dev.Kernel("square")
	require.NoError(t, err)
	err = square.Exec1D([]compute.Arg{buf, buf, int32(4)}, 4, 4)
	require.Error(t, err)
}

func TestBufferBounds(t *testing.T) {
	dev := newTestDevice(t, 1)

	buf := dev.Buffer("data")
	require.Error(t, buf.Allocate(0, compute.ReadWrite))
	require.NoError(t, buf.Allocate(8, compute.ReadWrite))
	require.Equal(t, 8, buf.Size())

	err := buf.WriteData([]uint32{1, 2, 3}, 0)
	require.True(t, errors.Is(err, compute.ErrBufferTooSmall))

	require.NoError(t, buf.WriteData([]uint32{42}, 4))

	out := make([]uint32, 1)
	require.NoError(t, buf.ReadData(4, 0, 4, out))
	require.Equal(t, uint32(42), out[0])

	err = buf.ReadData(0, 0, 8, out)
	require.True(t, errors.Is(err, compute.ErrBufferTooSmall))

	err = buf.WriteData(42, 0)
	require.True(t, errors.Is(err, compute.ErrNotSlice))
}

func TestCopyBuffer(t *testing.T) {
	dev := newTestDevice(t, 1)

	src := dev.Buffer("src")
	require.NoError(t, src.Allocate(16, compute.ReadWrite))
	require.NoError(t, src.WriteData([]uint32{1, 2, 3, 4}, 0))

	dst := dev.Buffer("dst")
	require.NoError(t, dst.Allocate(8, compute.ReadWrite))

	require.NoError(t, dev.CopyBuffer(dst, src, 0, 8, 8))
	out := make([]uint32, 2)
	require.NoError(t, dst.ReadData(0, 0, 0, out))
	require.Equal(t, []uint32{3, 4}, out)

	err := dev.CopyBuffer(dst, src, 0, 0, 16)
	require.True(t, errors.Is(err, compute.ErrBufferTooSmall))
}
