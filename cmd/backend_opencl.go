//go:build opencl

package cmd

import (
	"fmt"

	"github.com/achilleasa/lbvh/compute"
	"github.com/achilleasa/lbvh/compute/opencl"
)

func init() {
	registerBackend("opencl", backend{
		devices: func() ([]deviceInfo, error) {
			platforms, err := opencl.GetPlatformInfo()
			if err != nil {
				return nil, err
			}

			var list []deviceInfo
			for _, p := range platforms {
				for _, d := range p.Devices {
					list = append(list, deviceInfo{
						Name:    d.Name(),
						Type:    d.Type(),
						Details: fmt.Sprintf("platform %s (%s); ~%d GFlops", p.Name, p.Version, d.SpeedEstimate()),
					})
				}
			}
			return list, nil
		},
		open: func(nameFilter string, _ int) (compute.Device, error) {
			devList, err := opencl.SelectDevices(compute.AllDevices, nameFilter)
			if err != nil {
				return nil, err
			}
			if len(devList) == 0 {
				return nil, fmt.Errorf("opencl backend: no device matching %q", nameFilter)
			}
			return devList[0], nil
		},
	})
}
