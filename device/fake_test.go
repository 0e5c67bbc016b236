package device_test

import (
	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/toolkit/device"
)

type fakeGPU struct {
	props      device.Properties
	families   []device.QueueFamilyProperties
	present    []bool
	extensions []string
	formats    []device.SurfaceFormat
	modes      []device.PresentMode
	report     device.FeatureReport

	failProperties bool
	failPresentAt  int
	failExtensions bool
	failFormats    bool
	failModes      bool
	failFeatures   bool
}

type fakeDriver struct {
	gpus          []*fakeGPU
	failEnumerate bool
	lastQuery     device.FeatureQuery
}

var errDriver = errors.New("VK_ERROR_INITIALIZATION_FAILED")

func (d *fakeDriver) EnumeratePhysicalDevices() ([]device.Handle, error) {
	if d.failEnumerate {
		return nil, errDriver
	}
	handles := make([]device.Handle, 0, len(d.gpus))
	for _, gpu := range d.gpus {
		handles = append(handles, gpu)
	}
	return handles, nil
}

func (d *fakeDriver) Properties(h device.Handle) (device.Properties, error) {
	gpu := h.(*fakeGPU)
	if gpu.failProperties {
		return device.Properties{}, errDriver
	}
	return gpu.props, nil
}

func (d *fakeDriver) QueueFamilies(h device.Handle) ([]device.QueueFamilyProperties, error) {
	return h.(*fakeGPU).families, nil
}

func (d *fakeDriver) Extensions(h device.Handle) ([]string, error) {
	gpu := h.(*fakeGPU)
	if gpu.failExtensions {
		return nil, errDriver
	}
	return gpu.extensions, nil
}

func (d *fakeDriver) Features(h device.Handle, query device.FeatureQuery) (device.FeatureReport, error) {
	gpu := h.(*fakeGPU)
	d.lastQuery = query
	if gpu.failFeatures {
		return nil, errDriver
	}
	return gpu.report, nil
}

type fakeSurface struct{}

func (fakeSurface) SupportsPresent(h device.Handle, queueFamily int) (bool, error) {
	gpu := h.(*fakeGPU)
	if gpu.failPresentAt == queueFamily+1 {
		return false, errDriver
	}
	return gpu.present[queueFamily], nil
}

func (fakeSurface) Formats(h device.Handle) ([]device.SurfaceFormat, error) {
	gpu := h.(*fakeGPU)
	if gpu.failFormats {
		return nil, errDriver
	}
	return gpu.formats, nil
}

func (fakeSurface) PresentModes(h device.Handle) ([]device.PresentMode, error) {
	gpu := h.(*fakeGPU)
	if gpu.failModes {
		return nil, errDriver
	}
	return gpu.modes, nil
}

// swapchainGPU has a graphics+present family followed by a transfer-only one.
func swapchainGPU(name string, deviceType device.DeviceType) *fakeGPU {
	return &fakeGPU{
		props: device.Properties{Name: name, Type: deviceType, VendorID: 0x10de, DeviceID: 0x2684},
		families: []device.QueueFamilyProperties{
			{Flags: device.QueueGraphics | device.QueueCompute | device.QueueTransfer, QueueCount: 16, TimestampValidBits: 64},
			{Flags: device.QueueTransfer, QueueCount: 2, TimestampValidBits: 64},
		},
		present:    []bool{true, false},
		extensions: []string{"VK_KHR_swapchain"},
		formats: []device.SurfaceFormat{
			{Format: device.FormatB8G8R8A8SRGB, ColorSpace: device.ColorSpaceSRGBNonlinear},
		},
		modes: []device.PresentMode{device.PresentModeFIFO, device.PresentModeMailbox},
		report: device.FeatureReport{
			device.FeatureSamplerAnisotropy: true,
			device.FeatureDynamicRendering:  true,
		},
	}
}
