package lbvh

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestScanLevels(t *testing.T) {
	type spec struct {
		n, g int
		exp  []int
	}
	specs := []spec{
		{1, 4, []int{8}},
		{8, 4, []int{8}},
		{9, 4, []int{16, 8}},
		{5000, 4, []int{5000, 632, 80, 16, 8}},
		{100000, 128, []int{100096, 512, 256}},
	}

	for index, s := range specs {
		levels := scanLevels(s.n, s.g)
		if !reflect.DeepEqual(levels, s.exp) {
			t.Fatalf("[spec %d] expected levels %v; got %v", index, s.exp, levels)
		}
	}
}

func TestScan(t *testing.T) {
	type spec struct {
		n, g int
	}
	specs := []spec{
		{1, 4},
		{7, 4},
		{8, 4},
		{9, 4},
		{1000, 8},
		{5000, 4},
		{20000, 32},
	}

	rng := rand.New(rand.NewSource(42))
	for index, s := range specs {
		dr := newTestResources(t, s.n, s.g)
		paddedN := dr.scan.PaddedSize()

		// Padding entries hold garbage that must be ignored.
		data := make([]uint32, paddedN)
		for i := range data {
			if i < s.n {
				data[i] = uint32(rng.Intn(16))
			} else {
				data[i] = 0xFFFF
			}
		}
		writeData(t, dr.buffers.ZeroFlags, data)

		if err := dr.scan.Scan(dr.buffers.ZeroFlags, s.n); err != nil {
			t.Fatalf("[spec %d] %v", index, err)
		}

		out := readUint32s(t, dr.buffers.ZeroFlags, s.n)
		var sum uint32
		for i := 0; i < s.n; i++ {
			if out[i] != sum {
				t.Fatalf("[spec %d] expected scan[%d] to be %d; got %d", index, i, sum, out[i])
			}
			sum += data[i]
		}

		total := readUint32s(t, dr.scan.Total(), 1)
		if total[0] != sum {
			t.Fatalf("[spec %d] expected scan total to be %d; got %d", index, sum, total[0])
		}
	}
}

func TestScanBufferTooSmall(t *testing.T) {
	dr := newTestResources(t, 100, 4)

	if err := dr.scan.Scan(dr.buffers.Codes.Current(), 100); err == nil {
		t.Fatal("expected an error when scanning an unpadded buffer")
	}
}
