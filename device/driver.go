// Package device discovers what each physical device can do: its queue
// families, extensions, surface formats, present modes and optional features.
//
// The driver and surface are consumed through the Driver and Surface
// interfaces; package vkng implements them on top of vkngwrapper.
package device

// Handle is the driver's opaque reference to one physical device.
type Handle any

// Properties is the identity part of a physical device.
type Properties struct {
	Name     string
	Type     DeviceType
	VendorID uint32
	DeviceID uint32
}

// QueueFamilyProperties is what the driver reports for one queue family,
// before presentation support is known.
type QueueFamilyProperties struct {
	Flags              QueueFlags
	QueueCount         int
	TimestampValidBits int
}

// Driver is the instance-level boundary. Each call is synchronous and may fail
// with a driver defined error.
type Driver interface {
	EnumeratePhysicalDevices() ([]Handle, error)
	Properties(device Handle) (Properties, error)
	QueueFamilies(device Handle) ([]QueueFamilyProperties, error)
	Extensions(device Handle) ([]string, error)
	Features(device Handle, query FeatureQuery) (FeatureReport, error)
}

// Surface answers presentation questions for one window surface.
type Surface interface {
	SupportsPresent(device Handle, queueFamily int) (bool, error)
	Formats(device Handle) ([]SurfaceFormat, error)
	PresentModes(device Handle) ([]PresentMode, error)
}

type DeviceType int32

const (
	TypeOther DeviceType = iota
	TypeIntegratedGPU
	TypeDiscreteGPU
	TypeVirtualGPU
	TypeCPU
)

var deviceTypeNames = map[DeviceType]string{
	TypeOther:         "Other",
	TypeIntegratedGPU: "Integrated GPU",
	TypeDiscreteGPU:   "Discrete GPU",
	TypeVirtualGPU:    "Virtual GPU",
	TypeCPU:           "CPU",
}

func (t DeviceType) String() string {
	if name, ok := deviceTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Format and ColorSpace carry the raw VkFormat and VkColorSpaceKHR values.
type Format int32
type ColorSpace int32

const (
	FormatB8G8R8A8UnsignedNormalized Format = 44
	FormatB8G8R8A8SRGB               Format = 50
	FormatR8G8B8A8SRGB               Format = 43

	ColorSpaceSRGBNonlinear ColorSpace = 0
)

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type PresentMode int32

const (
	PresentModeImmediate PresentMode = iota
	PresentModeMailbox
	PresentModeFIFO
	PresentModeFIFORelaxed
)

var presentModeNames = map[PresentMode]string{
	PresentModeImmediate:   "Immediate",
	PresentModeMailbox:     "Mailbox",
	PresentModeFIFO:        "FIFO",
	PresentModeFIFORelaxed: "FIFO Relaxed",
}

func (m PresentMode) String() string {
	if name, ok := presentModeNames[m]; ok {
		return name
	}
	return "Unknown"
}
