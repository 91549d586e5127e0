package lbvh

import (
	"fmt"
	"time"

	"github.com/achilleasa/lbvh/compute"
	"github.com/achilleasa/lbvh/log"
	"github.com/achilleasa/lbvh/types"
)

// Builds a linear BVH over a fixed number of elements every frame.
type Builder struct {
	logger log.Logger

	dev       compute.Device
	pipeline  *Pipeline
	opts      Options
	resources *deviceResources

	frame int
	stats FrameStats
}

// Create a builder that runs the supplied pipeline on dev. If pipeline is
// nil the default pipeline is used.
func NewBuilder(dev compute.Device, pipeline *Pipeline, opts Options) (*Builder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if pipeline == nil {
		pipeline = DefaultPipeline()
	}

	return &Builder{
		logger:   log.New("lbvh"),
		dev:      dev,
		pipeline: pipeline,
		opts:     opts,
	}, nil
}

// Get the validated builder options.
func (b *Builder) Options() Options {
	return b.opts
}

// Build the kernel program on the device and allocate all buffers.
func (b *Builder) Init() error {
	if b.resources != nil {
		return nil
	}

	start := time.Now()
	if err := b.dev.Init(Program()); err != nil {
		return err
	}

	dr, err := newDeviceResources(b.dev, b.opts)
	if err != nil {
		return err
	}
	b.resources = dr

	b.logger.Debugf(
		"initialized device %q for %d elements (local work size %d, scan levels %v) in %d ms",
		b.dev.Name(), b.opts.NumElements, b.opts.LocalWorkSize, dr.scan.levels,
		time.Since(start).Nanoseconds()/1e6,
	)
	return nil
}

// Release all device resources.
func (b *Builder) Close() {
	if b.resources != nil {
		b.resources.Close()
		b.resources = nil
	}
}

// Upload element positions (center in xyz, radius in w) and velocities.
func (b *Builder) Upload(positions, velocities []types.Vec4) error {
	if b.resources == nil {
		return ErrNotInitialized
	}

	n := int(b.opts.NumElements)
	if len(positions) != n || len(velocities) != n {
		return fmt.Errorf("%w: expected %d elements; got %d positions and %d velocities", ErrElementCountMismatch, n, len(positions), len(velocities))
	}

	return b.resources.Upload(positions, velocities)
}

// Run the pipeline once and wait for the device to finish.
func (b *Builder) BuildFrame() error {
	if b.resources == nil {
		return ErrNotInitialized
	}

	b.frame++
	stats := FrameStats{Frame: b.frame}

	frameStart := time.Now()
	for _, s := range b.pipeline.stages() {
		stageStart := time.Now()
		if err := s.stage(b); err != nil {
			return fmt.Errorf("lbvh: frame %d: stage %s: %w", b.frame, s.name, err)
		}
		if b.opts.SyncStages {
			if err := b.dev.Finish(); err != nil {
				return fmt.Errorf("lbvh: frame %d: stage %s: %w", b.frame, s.name, err)
			}
		}
		stats.Stages = append(stats.Stages, StageStat{Name: s.name, Time: time.Since(stageStart)})
	}

	if err := b.dev.Finish(); err != nil {
		return fmt.Errorf("lbvh: frame %d: %w", b.frame, err)
	}
	stats.BuildTime = time.Since(frameStart)
	b.stats = stats

	b.logger.Infof("frame %d: built hierarchy for %d elements in %s", b.frame, b.opts.NumElements, stats.BuildTime)
	return nil
}

// Get the stats of the last built frame.
func (b *Builder) Stats() FrameStats {
	return b.stats
}

// Copy the current hierarchy back to the host.
func (b *Builder) Readback() (*Frame, error) {
	if b.resources == nil {
		return nil, ErrNotInitialized
	}
	if err := b.dev.Finish(); err != nil {
		return nil, err
	}

	n := int(b.opts.NumElements)
	nodes := max(n-1, 1)
	bufs := b.resources.buffers

	f := &Frame{
		NumElements: n,
		Codes:       make([]uint32, n),
		Permutation: make([]uint32, n),
		Positions:   make([]types.Vec4, n),
		Velocities:  make([]types.Vec4, n),
		Children:    make([]uint32, 2*nodes),
		Parents:     make([]uint32, 2*n),
	}

	leafMin := make([]types.Vec4, n)
	leafMax := make([]types.Vec4, n)
	nodeMin := make([]types.Vec4, nodes)
	nodeMax := make([]types.Vec4, nodes)
	morton := make([]types.Vec4, 2)

	reads := []struct {
		buf  compute.Buffer
		dst  interface{}
		size int
	}{
		{bufs.Codes.Current(), f.Codes, n * sizeofUint32},
		{bufs.Permutation.Current(), f.Permutation, n * sizeofUint32},
		{bufs.Positions.Current(), f.Positions, n * sizeofFloat4},
		{bufs.Velocities.Current(), f.Velocities, n * sizeofFloat4},
		{bufs.Children, f.Children, 2 * nodes * sizeofUint32},
		{bufs.Parents, f.Parents, 2 * n * sizeofUint32},
		{bufs.LeafMin, leafMin, n * sizeofFloat4},
		{bufs.LeafMax, leafMax, n * sizeofFloat4},
		{bufs.NodeMin, nodeMin, nodes * sizeofFloat4},
		{bufs.NodeMax, nodeMax, nodes * sizeofFloat4},
		{bufs.MortonAABB, morton, 2 * sizeofFloat4},
	}
	for _, r := range reads {
		if err := r.buf.ReadData(0, 0, r.size, r.dst); err != nil {
			return nil, err
		}
	}

	f.Children = f.Children[:2*f.NumInternal()]
	f.LeafAABBs = make([]types.AABB, n)
	for i := range f.LeafAABBs {
		f.LeafAABBs[i] = types.AABB{Min: leafMin[i], Max: leafMax[i]}
	}
	f.NodeAABBs = make([]types.AABB, f.NumInternal())
	for i := range f.NodeAABBs {
		f.NodeAABBs[i] = types.AABB{Min: nodeMin[i], Max: nodeMax[i]}
	}
	f.MortonAABB = types.AABB{Min: morton[0], Max: morton[1]}

	return f, nil
}
