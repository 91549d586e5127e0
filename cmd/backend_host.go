package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/achilleasa/lbvh/compute"
	"github.com/achilleasa/lbvh/compute/host"
)

func init() {
	registerBackend("host", backend{
		devices: func() ([]deviceInfo, error) {
			dev := host.NewDevice(0)
			defer dev.Close()
			return []deviceInfo{{
				Name:    dev.Name(),
				Type:    dev.Type(),
				Details: fmt.Sprintf("%d CPUs, work-groups scheduled on goroutines", runtime.NumCPU()),
			}}, nil
		},
		open: func(nameFilter string, workers int) (compute.Device, error) {
			dev := host.NewDevice(workers)
			if nameFilter != "" && !strings.Contains(dev.Name(), nameFilter) {
				return nil, fmt.Errorf("host backend: no device matching %q", nameFilter)
			}
			return dev, nil
		},
	})
}
