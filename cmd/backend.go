package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/achilleasa/lbvh/compute"
)

// A device description as reported by list-devices.
type deviceInfo struct {
	Name    string
	Type    compute.DeviceType
	Details string
}

// A compiled-in compute backend.
type backend struct {
	// Enumerate the devices this backend can drive.
	devices func() ([]deviceInfo, error)

	// Open the first device whose name contains nameFilter. The workers
	// argument only applies to the host backend.
	open func(nameFilter string, workers int) (compute.Device, error)
}

var backends = map[string]backend{}

func registerBackend(name string, b backend) {
	backends[name] = b
}

// Get the sorted list of compiled-in backend names.
func backendNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func openDevice(backendName, nameFilter string, workers int) (compute.Device, error) {
	b, exists := backends[backendName]
	if !exists {
		return nil, fmt.Errorf("unknown backend %q; available backends: %s", backendName, strings.Join(backendNames(), ", "))
	}
	return b.open(nameFilter, workers)
}
