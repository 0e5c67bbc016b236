// Package vkng implements the device and shader boundaries on top of the
// vkngwrapper Vulkan bindings.
package vkng

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/core/v3/core1_1"
	"github.com/vkngwrapper/core/v3/core1_2"
	"github.com/vkngwrapper/extensions/v3/khr_surface"

	"github.com/vkngwrapper/toolkit/device"
	"github.com/vkngwrapper/toolkit/shader"
)

// features2Driver is satisfied by instance drivers created for Vulkan 1.1 and
// later.
type features2Driver interface {
	GetPhysicalDeviceFeatures2(physicalDevice core1_0.PhysicalDevice, out *core1_1.PhysicalDeviceFeatures2) error
}

// Driver answers device queries through an instance driver.
type Driver struct {
	instance core1_0.CoreInstanceDriver
}

var _ device.Driver = (*Driver)(nil)

func NewDriver(instance core1_0.CoreInstanceDriver) *Driver {
	return &Driver{instance: instance}
}

func physicalDevice(handle device.Handle) (core1_0.PhysicalDevice, error) {
	physical, ok := handle.(core1_0.PhysicalDevice)
	if !ok {
		return physical, errors.Newf("handle %T is not a vulkan physical device", handle)
	}
	return physical, nil
}

func (d *Driver) EnumeratePhysicalDevices() ([]device.Handle, error) {
	physicalDevices, _, err := d.instance.EnumeratePhysicalDevices()
	if err != nil {
		return nil, err
	}

	handles := make([]device.Handle, 0, len(physicalDevices))
	for _, physical := range physicalDevices {
		handles = append(handles, physical)
	}
	return handles, nil
}

func (d *Driver) Properties(handle device.Handle) (device.Properties, error) {
	physical, err := physicalDevice(handle)
	if err != nil {
		return device.Properties{}, err
	}

	properties, err := d.instance.GetPhysicalDeviceProperties(physical)
	if err != nil {
		return device.Properties{}, err
	}

	return device.Properties{
		Name:     properties.DriverName,
		Type:     device.DeviceType(properties.DriverType),
		VendorID: properties.VendorID,
		DeviceID: properties.DeviceID,
	}, nil
}

func (d *Driver) QueueFamilies(handle device.Handle) ([]device.QueueFamilyProperties, error) {
	physical, err := physicalDevice(handle)
	if err != nil {
		return nil, err
	}

	queueFamilies := d.instance.GetPhysicalDeviceQueueFamilyProperties(physical)
	families := make([]device.QueueFamilyProperties, 0, len(queueFamilies))
	for _, family := range queueFamilies {
		families = append(families, device.QueueFamilyProperties{
			Flags:              device.QueueFlags(family.QueueFlags),
			QueueCount:         int(family.QueueCount),
			TimestampValidBits: int(family.TimestampValidBits),
		})
	}
	return families, nil
}

func (d *Driver) Extensions(handle device.Handle) ([]string, error) {
	physical, err := physicalDevice(handle)
	if err != nil {
		return nil, err
	}

	extensions, _, err := d.instance.EnumerateDeviceExtensionProperties(physical)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	return names, nil
}

// Features reads the core block with vkGetPhysicalDeviceFeatures and links
// every other queried block into one vkGetPhysicalDeviceFeatures2 chain. A
// block is linked only when the device can report it: the Vulkan 1.2 and 1.3
// blocks by device API version, the ray tracing blocks by extension. Blocks
// that are not linked, or every extended block when the instance predates
// features2, are left out of the report.
func (d *Driver) Features(handle device.Handle, query device.FeatureQuery) (device.FeatureReport, error) {
	physical, err := physicalDevice(handle)
	if err != nil {
		return nil, err
	}

	report := device.FeatureReport{}

	if query.Includes(device.BlockCore) {
		features := d.instance.GetPhysicalDeviceFeatures(physical)
		report[device.FeatureGeometryShader] = features.GeometryShader
		report[device.FeatureTessellationShader] = features.TessellationShader
		report[device.FeatureSamplerAnisotropy] = features.SamplerAnisotropy
		report[device.FeatureShaderInt64] = features.ShaderInt64
	}

	driver, ok := d.instance.(features2Driver)
	if !ok {
		return report, nil
	}

	var chain featureChain
	version := physical.DeviceAPIVersion()

	var vulkan12 *core1_2.PhysicalDeviceVulkan12Features
	if query.Includes(device.BlockVulkan12) && version.IsAtLeast(common.Vulkan1_2) {
		vulkan12 = &core1_2.PhysicalDeviceVulkan12Features{}
		chain.link(vulkan12, &vulkan12.NextOutData)
	}

	var vulkan13 *PhysicalDeviceVulkan13Features
	if query.Includes(device.BlockVulkan13) && version.IsAtLeast(vulkan1_3) {
		vulkan13 = &PhysicalDeviceVulkan13Features{}
		chain.link(vulkan13, &vulkan13.NextOutData)
	}

	var rayTracing *PhysicalDeviceRayTracingPipelineFeatures
	var accelerationStructure *PhysicalDeviceAccelerationStructureFeatures
	if query.Includes(device.BlockRayTracingPipeline) || query.Includes(device.BlockAccelerationStructure) {
		extensions, _, err := d.instance.EnumerateDeviceExtensionProperties(physical)
		if err != nil {
			return nil, err
		}

		if _, ok := extensions[ExtensionRayTracingPipeline]; ok && query.Includes(device.BlockRayTracingPipeline) {
			rayTracing = &PhysicalDeviceRayTracingPipelineFeatures{}
			chain.link(rayTracing, &rayTracing.NextOutData)
		}
		if _, ok := extensions[ExtensionAccelerationStructure]; ok && query.Includes(device.BlockAccelerationStructure) {
			accelerationStructure = &PhysicalDeviceAccelerationStructureFeatures{}
			chain.link(accelerationStructure, &accelerationStructure.NextOutData)
		}
	}

	if chain.size == 0 {
		return report, nil
	}

	if err := driver.GetPhysicalDeviceFeatures2(physical, &chain.root); err != nil {
		return nil, err
	}

	if vulkan12 != nil {
		report[device.FeatureRuntimeDescriptorArray] = vulkan12.RuntimeDescriptorArray
		report[device.FeatureBufferDeviceAddress] = vulkan12.BufferDeviceAddress
		report[device.FeatureDescriptorIndexing] = vulkan12.DescriptorIndexing
		report[device.FeatureTimelineSemaphore] = vulkan12.TimelineSemaphore
	}
	if vulkan13 != nil {
		report[device.FeatureDynamicRendering] = vulkan13.DynamicRendering
		report[device.FeatureSynchronization2] = vulkan13.Synchronization2
		report[device.FeatureMaintenance4] = vulkan13.Maintenance4
	}
	if rayTracing != nil {
		report[device.FeatureRayTracingPipeline] = rayTracing.RayTracingPipeline
	}
	if accelerationStructure != nil {
		report[device.FeatureAccelerationStructure] = accelerationStructure.AccelerationStructure
	}

	return report, nil
}

// Surface answers presentation queries for one khr_surface surface.
type Surface struct {
	extension khr_surface.ExtensionDriver
	surface   khr_surface.Surface
}

var _ device.Surface = (*Surface)(nil)

func NewSurface(extension khr_surface.ExtensionDriver, surface khr_surface.Surface) *Surface {
	return &Surface{extension: extension, surface: surface}
}

func (s *Surface) SupportsPresent(handle device.Handle, queueFamily int) (bool, error) {
	physical, err := physicalDevice(handle)
	if err != nil {
		return false, err
	}

	supported, _, err := s.extension.GetPhysicalDeviceSurfaceSupport(s.surface, physical, queueFamily)
	return supported, err
}

func (s *Surface) Formats(handle device.Handle) ([]device.SurfaceFormat, error) {
	physical, err := physicalDevice(handle)
	if err != nil {
		return nil, err
	}

	surfaceFormats, _, err := s.extension.GetPhysicalDeviceSurfaceFormats(s.surface, physical)
	if err != nil {
		return nil, err
	}

	formats := make([]device.SurfaceFormat, 0, len(surfaceFormats))
	for _, format := range surfaceFormats {
		formats = append(formats, device.SurfaceFormat{
			Format:     device.Format(format.Format),
			ColorSpace: device.ColorSpace(format.ColorSpace),
		})
	}
	return formats, nil
}

func (s *Surface) PresentModes(handle device.Handle) ([]device.PresentMode, error) {
	physical, err := physicalDevice(handle)
	if err != nil {
		return nil, err
	}

	presentModes, _, err := s.extension.GetPhysicalDeviceSurfacePresentModes(s.surface, physical)
	if err != nil {
		return nil, err
	}

	modes := make([]device.PresentMode, 0, len(presentModes))
	for _, mode := range presentModes {
		modes = append(modes, device.PresentMode(mode))
	}
	return modes, nil
}

// Device creates shader modules on a logical device.
type Device struct {
	driver core1_0.CoreDeviceDriver
}

var _ shader.Device = (*Device)(nil)

func NewDevice(driver core1_0.CoreDeviceDriver) *Device {
	return &Device{driver: driver}
}

func (d *Device) CreateShaderModule(code []uint32) (shader.ModuleHandle, error) {
	module, _, err := d.driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	if err != nil {
		return nil, err
	}
	return module, nil
}

func (d *Device) DestroyShaderModule(handle shader.ModuleHandle) {
	module, ok := handle.(core1_0.ShaderModule)
	if !ok || !module.Initialized() {
		return
	}
	d.driver.DestroyShaderModule(module, nil)
}
