package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"

	"github.com/achilleasa/lbvh/lbvh"
	"github.com/achilleasa/lbvh/particle"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Flags accepted by the build command.
var BuildFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "elements, n",
		Value: 100000,
		Usage: "number of particles",
	},
	cli.IntFlag{
		Name:  "frames, f",
		Value: 1,
		Usage: "number of frames to build",
	},
	cli.IntFlag{
		Name:  "local-size",
		Value: lbvh.DefaultLocalWorkSize,
		Usage: "work-group size for element kernels (power of two)",
	},
	cli.IntFlag{
		Name:  "scan-local-size",
		Usage: "work-group size for the scan kernels; defaults to --local-size",
	},
	cli.Int64Flag{
		Name:  "seed",
		Value: 1,
		Usage: "seed for the particle generator",
	},
	cli.StringFlag{
		Name:  "backend, b",
		Value: "host",
		Usage: "compute backend (host or opencl when built with -tags opencl)",
	},
	cli.StringFlag{
		Name:  "device, d",
		Usage: "only use devices whose name contains this value",
	},
	cli.IntFlag{
		Name:  "workers",
		Usage: "host backend worker count; 0 uses GOMAXPROCS",
	},
	cli.BoolFlag{
		Name:  "static",
		Usage: "do not advance particles between frames",
	},
	cli.BoolFlag{
		Name:  "sync-stages",
		Usage: "wait for the device after each stage for accurate stage timings",
	},
	cli.StringFlag{
		Name:  "grid",
		Usage: "use a static NXxNYxNZ particle lattice (e.g. 16x16x16) instead of random particles",
	},
	cli.Float64Flag{
		Name:  "grid-spacing",
		Value: 0.5,
		Usage: "distance between neighboring lattice particles",
	},
	cli.BoolFlag{
		Name:  "verify",
		Usage: "validate the tree structure after every frame",
	},
}

// Generate the particles selected by the --grid or --elements flags.
func inputSet(ctx *cli.Context) (*particle.Set, error) {
	grid := ctx.String("grid")
	if grid == "" {
		if ctx.Int("elements") < 1 {
			return nil, lbvh.ErrNoElements
		}
		return particle.Random(ctx.Int("elements"), rand.New(rand.NewSource(ctx.Int64("seed")))), nil
	}

	var nx, ny, nz int
	if _, err := fmt.Sscanf(grid, "%dx%dx%d", &nx, &ny, &nz); err != nil {
		return nil, fmt.Errorf("invalid grid %q; expected NXxNYxNZ: %w", grid, err)
	}
	if nx < 0 || ny < 0 || nz < 0 {
		return nil, fmt.Errorf("invalid grid %q: negative dimension", grid)
	}
	return particle.Grid(nx, ny, nz, float32(ctx.Float64("grid-spacing")), particle.MinRadius), nil
}

// Build BVH frames for a random particle set or a lattice.
func BuildHierarchy(ctx *cli.Context) error {
	setupLogging(ctx)

	numFrames := ctx.Int("frames")
	if numFrames < 1 {
		return errors.New("at least one frame must be built")
	}

	set, err := inputSet(ctx)
	if err != nil {
		return err
	}
	if err = set.Validate(); err != nil {
		return err
	}

	opts := lbvh.Options{
		NumElements:       uint32(set.Len()),
		LocalWorkSize:     uint32(ctx.Int("local-size")),
		ScanLocalWorkSize: uint32(ctx.Int("scan-local-size")),
		SyncStages:        ctx.Bool("sync-stages"),
	}

	dev, err := openDevice(ctx.String("backend"), ctx.String("device"), ctx.Int("workers"))
	if err != nil {
		return err
	}
	defer dev.Close()
	logger.Noticef("using device %s", dev.Name())

	pipeline := lbvh.DefaultPipeline()
	if ctx.Bool("static") {
		pipeline = lbvh.StaticPipeline()
	}

	b, err := lbvh.NewBuilder(dev, pipeline, opts)
	if err != nil {
		return err
	}
	if err = b.Init(); err != nil {
		return err
	}
	defer b.Close()

	if err = b.Upload(set.Positions, set.Velocities); err != nil {
		return err
	}

	for i := 0; i < numFrames; i++ {
		if err = b.BuildFrame(); err != nil {
			return err
		}
		if ctx.Bool("verify") {
			if err = verifyFrame(b); err != nil {
				return err
			}
		}
	}

	frame, err := b.Readback()
	if err != nil {
		return err
	}

	displayFrameStats(b.Stats(), frame)
	return nil
}

func verifyFrame(b *lbvh.Builder) error {
	frame, err := b.Readback()
	if err != nil {
		return err
	}
	if err = frame.Validate(); err != nil {
		return fmt.Errorf("frame %d: %w", b.Stats().Frame, err)
	}
	return nil
}

func displayFrameStats(stats lbvh.FrameStats, frame *lbvh.Frame) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Stage", "Time", "% of frame"})
	for _, stat := range stats.Stages {
		pct := 0.0
		if stats.BuildTime > 0 {
			pct = 100 * float64(stat.Time) / float64(stats.BuildTime)
		}
		table.Append([]string{
			stat.Name,
			stat.Time.String(),
			fmt.Sprintf("%02.1f %%", pct),
		})
	}
	table.SetFooter([]string{"TOTAL", stats.BuildTime.String(), ""})

	table.Render()
	logger.Noticef(
		"frame %d statistics (%d elements, root %s, digest %016x)\n%s",
		stats.Frame,
		frame.NumElements,
		frame.Bounds(frame.Root()),
		frame.Digest(),
		buf.String(),
	)
}
