//go:build opencl

package opencl

import (
	"bytes"
	"fmt"
	"strings"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
	"github.com/achilleasa/lbvh/compute"
)

const (
	platformBufferSize = 100
	deviceBufferSize   = 100
	dataBufferSize     = 1024
)

// Information about a system's opencl platform and supported devices.
type PlatformInfo struct {
	Profile    string
	Version    string
	Name       string
	Vendor     string
	Extensions string
	Devices    DeviceList
}

func (pl PlatformInfo) String() string {
	var buf bytes.Buffer

	fmt.Fprintf(
		&buf,
		"Version:    %s\nName:       %s\nVendor:     %s\nDevices:\n",
		pl.Version,
		pl.Name,
		pl.Vendor,
	)

	for dIdx, d := range pl.Devices {
		fmt.Fprintf(&buf, "  Device %02d:\n", dIdx)
		buf.WriteString(indentRegex.ReplaceAllString(d.String(), "    "))
		buf.WriteString("\n\n")
	}

	return buf.String()
}

func trimInfo(data []byte, dataLen uint64) string {
	if dataLen == 0 {
		return ""
	}
	return string(data[0 : dataLen-1])
}

// Get information about supported opencl platforms and devices.
func GetPlatformInfo() ([]PlatformInfo, error) {
	pids := make([]cl.PlatformID, platformBufferSize)
	data := make([]byte, dataBufferSize)
	dataLen := uint64(0)

	devices := make([]cl.DeviceId, deviceBufferSize)
	deviceCount := uint32(0)

	pidCount := uint32(0)
	errCode := cl.GetPlatformIDs(uint32(len(pids)), &pids[0], &pidCount)
	if errCode != cl.SUCCESS {
		return nil, fmt.Errorf("opencl: could not enumerate platforms (error: %s; code %d)", ErrorName(errCode), errCode)
	}

	infoList := make([]PlatformInfo, int(pidCount))
	for pIdx := 0; pIdx < int(pidCount); pIdx++ {
		info := &infoList[pIdx]

		cl.GetPlatformInfo(pids[pIdx], cl.PLATFORM_PROFILE, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
		info.Profile = trimInfo(data, dataLen)

		cl.GetPlatformInfo(pids[pIdx], cl.PLATFORM_VERSION, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
		info.Version = trimInfo(data, dataLen)

		cl.GetPlatformInfo(pids[pIdx], cl.PLATFORM_NAME, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
		info.Name = trimInfo(data, dataLen)

		cl.GetPlatformInfo(pids[pIdx], cl.PLATFORM_VENDOR, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
		info.Vendor = trimInfo(data, dataLen)

		cl.GetPlatformInfo(pids[pIdx], cl.PLATFORM_EXTENSIONS, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
		info.Extensions = trimInfo(data, dataLen)

		for _, query := range []struct {
			clType  cl.DeviceType
			devType compute.DeviceType
		}{
			{cl.DEVICE_TYPE_CPU, compute.CpuDevice},
			{cl.DEVICE_TYPE_GPU, compute.GpuDevice},
			{cl.DEVICE_TYPE_ACCELERATOR, compute.OtherDevice},
		} {
			deviceCount = 0
			cl.GetDeviceIDs(pids[pIdx], query.clType, uint32(deviceBufferSize), &devices[0], &deviceCount)
			for dIdx := 0; dIdx < int(deviceCount); dIdx++ {
				cl.GetDeviceInfo(devices[dIdx], cl.DEVICE_NAME, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
				info.Devices = append(info.Devices, &Device{
					name:    trimInfo(data, dataLen),
					id:      devices[dIdx],
					devType: query.devType,
				})
			}
		}

		// Enumerate speed for all platform devices
		for _, dev := range info.Devices {
			if err := dev.detectSpeed(); err != nil {
				return nil, err
			}
		}
	}

	return infoList, nil
}

// Scan all available opencl platforms and select devices that match the given query.
func SelectDevices(typeMask compute.DeviceType, matchName string) (DeviceList, error) {
	platforms, err := GetPlatformInfo()
	if err != nil {
		return nil, err
	}
	list := make(DeviceList, 0)
	for _, p := range platforms {
		for _, d := range p.Devices {
			// Match type
			if d.devType&typeMask != d.devType {
				continue
			}

			// Match name
			if matchName != "" && !strings.Contains(d.name, matchName) {
				continue
			}

			list = append(list, d)
		}
	}
	return list, nil
}
