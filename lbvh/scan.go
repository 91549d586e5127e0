package lbvh

import (
	"fmt"

	"github.com/achilleasa/lbvh/compute"
)

// Multi-level exclusive prefix sum over uint32 buffers.
//
// Each scan work-group of g items processes a block of 2g elements. Level 0
// is the caller's buffer padded to a whole number of blocks; every further
// level holds one sum per block of the level below, again padded to whole
// blocks, until a level fits in a single block. The top level's total is
// written into a one element buffer.
type scanner struct {
	dev       compute.Device
	scanKern  compute.Kernel
	addKern   compute.Kernel
	local     int
	blockSize int

	// Padded element count per level.
	levels []int

	// levelBufs[l] backs level l for l >= 1; levelBufs[0] is unused.
	levelBufs []compute.Buffer
	total     compute.Buffer
}

// Get the padded sizes of every scan level for n elements and a work-group
// size of g.
func scanLevels(n, g int) []int {
	blockSize := 2 * g
	size := compute.GlobalWorkSize(n, blockSize)
	levels := []int{size}
	for size > blockSize {
		size = compute.GlobalWorkSize(size/blockSize, blockSize)
		levels = append(levels, size)
	}
	return levels
}

func newScanner(dev compute.Device, scanKern, addKern compute.Kernel, n, g int) (*scanner, error) {
	s := &scanner{
		dev:       dev,
		scanKern:  scanKern,
		addKern:   addKern,
		local:     g,
		blockSize: 2 * g,
		levels:    scanLevels(n, g),
		total:     dev.Buffer("scanTotal"),
	}

	s.levelBufs = make([]compute.Buffer, len(s.levels))
	for l := 1; l < len(s.levels); l++ {
		s.levelBufs[l] = dev.Buffer(fmt.Sprintf("scanLevel%d", l))
		if err := s.levelBufs[l].Allocate(s.levels[l]*sizeofUint32, compute.ReadWrite); err != nil {
			s.Release()
			return nil, err
		}
	}
	if err := s.total.Allocate(sizeofUint32, compute.ReadWrite); err != nil {
		s.Release()
		return nil, err
	}

	return s, nil
}

// Get the padded size of level 0. Buffers passed to Scan must hold at
// least this many elements.
func (s *scanner) PaddedSize() int {
	return s.levels[0]
}

// Get the buffer that receives the sum of all scanned elements.
func (s *scanner) Total() compute.Buffer {
	return s.total
}

// Replace the first n elements of data with their exclusive prefix sum.
// Elements in [n, PaddedSize()) are treated as zero and overwritten.
func (s *scanner) Scan(data compute.Buffer, n int) error {
	if n > s.levels[0] || data.Size() < s.levels[0]*sizeofUint32 {
		return fmt.Errorf("lbvh: scan of %d elements needs a buffer of %d elements: %w", n, s.levels[0], compute.ErrBufferTooSmall)
	}

	localBytes := scanLocalWords(s.local) * sizeofUint32
	top := len(s.levels) - 1

	// Scan every level, bottom-up; each level's block sums feed the next.
	valid := n
	for l := 0; l <= top; l++ {
		sums := s.total
		if l < top {
			sums = s.levelBufs[l+1]
		}
		params := scanParams{
			data:       s.levelBuf(l, data),
			sums:       sums,
			n:          uint32(valid),
			localBytes: localBytes,
		}
		if err := s.scanKern.Exec1D(params.args(), s.levels[l]/2, s.local); err != nil {
			return fmt.Errorf("lbvh: scan level %d: %w", l, err)
		}
		valid = s.levels[l] / s.blockSize
	}

	// Propagate the scanned block sums back down. The first block of every
	// level is already final.
	for l := top; l >= 1; l-- {
		size := s.levels[l-1]
		params := scanAddParams{
			data: s.levelBuf(l-1, data),
			sums: s.levelBufs[l],
			n:    uint32(size),
		}
		if err := s.addKern.Exec1D(params.args(), size-s.blockSize, s.local); err != nil {
			return fmt.Errorf("lbvh: scan add into level %d: %w", l-1, err)
		}
	}

	return nil
}

func (s *scanner) levelBuf(l int, data compute.Buffer) compute.Buffer {
	if l == 0 {
		return data
	}
	return s.levelBufs[l]
}

func (s *scanner) Release() {
	for _, buf := range s.levelBufs {
		if buf != nil {
			buf.Release()
		}
	}
	s.total.Release()
}
