package device

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/vkngwrapper/toolkit/logging"
)

// PhysicalDevice is a snapshot of one candidate device's capabilities, taken
// against a particular surface. It holds no resources and is safe to copy.
type PhysicalDevice struct {
	Handle Handle

	Name     string
	Type     DeviceType
	VendorID uint32
	DeviceID uint32

	QueueFamilies  []QueueFamily
	Extensions     map[string]struct{}
	SurfaceFormats []SurfaceFormat
	PresentModes   []PresentMode
	Features       FeatureSet
}

// NewPhysicalDevice queries everything about handle in one pass. Any failed
// query aborts the whole descriptor with a *QueryError.
func NewPhysicalDevice(driver Driver, surface Surface, handle Handle) (PhysicalDevice, error) {
	props, err := driver.Properties(handle)
	if err != nil {
		return PhysicalDevice{}, queryFailed("", "properties", err)
	}

	log := logging.Logger().WithFields(logrus.Fields{
		"device": props.Name,
		"type":   props.Type,
	})

	familyProps, err := driver.QueueFamilies(handle)
	if err != nil {
		return PhysicalDevice{}, queryFailed(props.Name, "queue families", err)
	}

	queueFamilies := make([]QueueFamily, 0, len(familyProps))
	for index, family := range familyProps {
		supported, err := surface.SupportsPresent(handle, index)
		if err != nil {
			return PhysicalDevice{}, queryFailed(props.Name, "surface support", errors.Wrapf(err, "queue family %d", index))
		}
		queueFamilies = append(queueFamilies, newQueueFamily(index, family, supported))
	}

	extensionNames, err := driver.Extensions(handle)
	if err != nil {
		return PhysicalDevice{}, queryFailed(props.Name, "device extensions", err)
	}
	extensions := make(map[string]struct{}, len(extensionNames))
	for _, name := range extensionNames {
		extensions[name] = struct{}{}
	}

	formats, err := surface.Formats(handle)
	if err != nil {
		return PhysicalDevice{}, queryFailed(props.Name, "surface formats", err)
	}

	presentModes, err := surface.PresentModes(handle)
	if err != nil {
		return PhysicalDevice{}, queryFailed(props.Name, "surface present modes", err)
	}

	query := DefaultFeatureQuery()
	report, err := driver.Features(handle, query)
	if err != nil {
		return PhysicalDevice{}, queryFailed(props.Name, "features", err)
	}

	log.WithFields(logrus.Fields{
		"queueFamilies": len(queueFamilies),
		"extensions":    len(extensions),
		"formats":       len(formats),
		"presentModes":  len(presentModes),
	}).Debug("described physical device")

	return PhysicalDevice{
		Handle:         handle,
		Name:           props.Name,
		Type:           props.Type,
		VendorID:       props.VendorID,
		DeviceID:       props.DeviceID,
		QueueFamilies:  queueFamilies,
		Extensions:     extensions,
		SurfaceFormats: formats,
		PresentModes:   presentModes,
		Features:       NewFeatureSet(query, report),
	}, nil
}

func queryFailed(device, query string, err error) error {
	return errors.WithStack(&QueryError{Device: device, Query: query, Err: err})
}

// SupportsExtensions reports whether every named extension is supported.
// Names are compared exactly; an empty list is always supported.
func (d PhysicalDevice) SupportsExtensions(required ...string) bool {
	for _, extension := range required {
		if _, ok := d.Extensions[extension]; !ok {
			return false
		}
	}
	return true
}

// MissingExtensions returns the required extensions the device lacks, in order.
func (d PhysicalDevice) MissingExtensions(required ...string) []string {
	var missing []string
	for _, extension := range required {
		if _, ok := d.Extensions[extension]; !ok {
			missing = append(missing, extension)
		}
	}
	return missing
}

// ExtensionNames returns the supported extensions sorted by name.
func (d PhysicalDevice) ExtensionNames() []string {
	names := make([]string, 0, len(d.Extensions))
	for name := range d.Extensions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// QueueFamily returns the first family that has all of flags.
func (d PhysicalDevice) QueueFamily(flags QueueFlags) (QueueFamily, bool) {
	for _, family := range d.QueueFamilies {
		if family.QueueCount > 0 && family.Flags.Has(flags) {
			return family, true
		}
	}
	return QueueFamily{}, false
}

// PresentQueueFamily returns the first family able to present to the surface.
func (d PhysicalDevice) PresentQueueFamily() (QueueFamily, bool) {
	for _, family := range d.QueueFamilies {
		if family.QueueCount > 0 && family.SupportsPresent {
			return family, true
		}
	}
	return QueueFamily{}, false
}

// SupportsPresentMode reports whether the surface offers mode on this device.
func (d PhysicalDevice) SupportsPresentMode(mode PresentMode) bool {
	for _, m := range d.PresentModes {
		if m == mode {
			return true
		}
	}
	return false
}
