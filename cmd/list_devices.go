package cmd

import (
	"bytes"
	"fmt"

	"github.com/urfave/cli"
)

// List the devices of every compiled-in backend.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer
	names := backendNames()
	fmt.Fprintf(&buf, "\nSystem provides %d compute backend(s):\n\n", len(names))
	for _, name := range names {
		devices, err := backends[name].devices()
		if err != nil {
			logger.Warningf("backend %s: could not enumerate devices: %v", name, err)
			continue
		}

		fmt.Fprintf(&buf, "[Backend %s]\n  Devices %d\n\n", name, len(devices))
		for dIdx, device := range devices {
			fmt.Fprintf(&buf, "  [Device %02d]\n    Name    %s\n    Type    %s\n    Details %s\n\n", dIdx, device.Name, device.Type, device.Details)
		}
	}

	logger.Notice(buf.String())
	return nil
}
