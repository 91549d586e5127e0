package lbvh

import (
	"testing"

	"github.com/achilleasa/lbvh/compute"
	"github.com/achilleasa/lbvh/compute/host"
)

// Allocate device resources for n elements on a host device.
func newTestResources(t *testing.T, n, localWorkSize int) *deviceResources {
	t.Helper()

	dev := host.NewDevice(4)
	if err := dev.Init(Program()); err != nil {
		t.Fatal(err)
	}

	opts := Options{
		NumElements:   uint32(n),
		LocalWorkSize: uint32(localWorkSize),
	}
	if err := opts.Validate(); err != nil {
		t.Fatal(err)
	}

	dr, err := newDeviceResources(dev, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		dr.Close()
		dev.Close()
	})
	return dr
}

func readUint32s(t *testing.T, buf compute.Buffer, count int) []uint32 {
	t.Helper()

	out := make([]uint32, count)
	if err := buf.ReadData(0, 0, count*sizeofUint32, out); err != nil {
		t.Fatal(err)
	}
	return out
}

func writeData(t *testing.T, buf compute.Buffer, data interface{}) {
	t.Helper()

	if err := buf.WriteData(data, 0); err != nil {
		t.Fatal(err)
	}
}
