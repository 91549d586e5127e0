package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/achilleasa/lbvh/log"
	"github.com/urfave/cli"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	log.SetSink(&buf)
	t.Cleanup(func() {
		log.SetSink(os.Stderr)
		log.SetLevel(log.Notice)
	})

	app := cli.NewApp()
	app.Name = "lbvh"
	app.Writer = &buf
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "v"},
		cli.BoolFlag{Name: "vv"},
		cli.StringSliceFlag{Name: "debug-module", Value: &cli.StringSlice{}},
	}
	app.Commands = []cli.Command{
		{Name: "list-devices", Action: ListDevices},
		{Name: "build", Flags: BuildFlags, Action: BuildHierarchy},
	}

	err := app.Run(append([]string{"lbvh"}, args...))
	return buf.String(), err
}

func TestListDevices(t *testing.T) {
	out, err := runApp(t, "list-devices")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "[Backend host]") {
		t.Fatalf("expected host backend to be listed; got:\n%s", out)
	}
}

func TestBuild(t *testing.T) {
	out, err := runApp(t, "build", "--elements", "1000", "--frames", "3", "--local-size", "32", "--workers", "2", "--verify", "--sync-stages")
	if err != nil {
		t.Fatal(err)
	}
	for _, exp := range []string{"frame 3 statistics", "digest", "sort", "TOTAL"} {
		if !strings.Contains(out, exp) {
			t.Fatalf("expected output to contain %q; got:\n%s", exp, out)
		}
	}
}

func TestBuildGrid(t *testing.T) {
	out, err := runApp(t, "build", "--grid", "4x4x4", "--grid-spacing", "0.25", "--local-size", "16", "--verify")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "(64 elements") {
		t.Fatalf("expected a 64 element lattice; got:\n%s", out)
	}
}

func TestDebugModule(t *testing.T) {
	out, err := runApp(t, "--debug-module", "host", "build", "--elements", "64", "--local-size", "16")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "loaded program") {
		t.Fatalf("expected host debug output; got:\n%s", out)
	}
	// Other loggers stay at the default level.
	if strings.Contains(out, "[lbvh] [DEBU]") {
		t.Fatalf("expected lbvh debug output to stay hidden; got:\n%s", out)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	digest := func(args ...string) string {
		out, err := runApp(t, append([]string{"build", "--elements", "500", "--static", "--seed", "7"}, args...)...)
		if err != nil {
			t.Fatal(err)
		}
		idx := strings.Index(out, "digest ")
		if idx == -1 {
			t.Fatalf("missing digest in output:\n%s", out)
		}
		return out[idx : idx+len("digest ")+16]
	}

	if d1, d2 := digest("--workers", "1"), digest("--workers", "4"); d1 != d2 {
		t.Fatalf("expected digests to match; got %s and %s", d1, d2)
	}
}

func TestBuildErrors(t *testing.T) {
	specs := [][]string{
		{"build", "--backend", "cuda"},
		{"build", "--elements", "0"},
		{"build", "--frames", "0"},
		{"build", "--local-size", "3"},
		{"build", "--device", "no-such-device"},
		{"build", "--grid", "8by8"},
		{"build", "--grid", "0x4x4"},
		{"build", "--grid", "-2x4x4"},
	}

	for specIndex, args := range specs {
		if _, err := runApp(t, args...); err == nil {
			t.Errorf("[spec %d] expected args %v to fail", specIndex, args)
		}
	}
}
