package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/lbvh/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "lbvh"
	app.Usage = "build linear bounding volume hierarchies over moving particles"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringSliceFlag{
			Name:  "debug-module",
			Value: &cli.StringSlice{},
			Usage: "enable debug logging for a single logger (lbvh, host or opencl); may be repeated",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "list-devices",
			Usage:  "list the devices of all compiled-in compute backends",
			Action: cmd.ListDevices,
		},
		{
			Name:  "build",
			Usage: "build hierarchies for a random particle set",
			Description: `
Generate a random set of particles, upload it to a compute device and run the
BVH construction pipeline for the requested number of frames. Particles are
advanced by their velocity before every frame unless --static is specified.

Per-stage timings for the last frame are printed together with a digest of the
resulting tree topology.`,
			Flags:  cmd.BuildFlags,
			Action: cmd.BuildHierarchy,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
