package device

import "strings"

// QueueFlags mirrors VkQueueFlagBits.
type QueueFlags uint32

const (
	QueueGraphics      QueueFlags = 0x00000001
	QueueCompute       QueueFlags = 0x00000002
	QueueTransfer      QueueFlags = 0x00000004
	QueueSparseBinding QueueFlags = 0x00000008
	QueueProtected     QueueFlags = 0x00000010
	QueueVideoDecode   QueueFlags = 0x00000020
	QueueVideoEncode   QueueFlags = 0x00000040
	QueueOpticalFlow   QueueFlags = 0x00000100
)

var queueFlagNames = []struct {
	flag QueueFlags
	name string
}{
	{QueueGraphics, "Graphics"},
	{QueueCompute, "Compute"},
	{QueueTransfer, "Transfer"},
	{QueueSparseBinding, "SparseBinding"},
	{QueueProtected, "Protected"},
	{QueueVideoDecode, "VideoDecode"},
	{QueueVideoEncode, "VideoEncode"},
	{QueueOpticalFlow, "OpticalFlow"},
}

// Has reports whether every bit in other is set.
func (f QueueFlags) Has(other QueueFlags) bool {
	return f&other == other
}

func (f QueueFlags) String() string {
	if f == 0 {
		return "None"
	}

	var names []string
	for _, entry := range queueFlagNames {
		if f&entry.flag != 0 {
			names = append(names, entry.name)
		}
	}
	if len(names) == 0 {
		return "Unknown"
	}
	return strings.Join(names, "|")
}

// QueueFamily describes one hardware queue family of a physical device.
// Index is the family's position in the driver's enumeration order.
type QueueFamily struct {
	Index              int
	Flags              QueueFlags
	QueueCount         int
	TimestampValidBits int
	SupportsPresent    bool
}

func newQueueFamily(index int, props QueueFamilyProperties, supportsPresent bool) QueueFamily {
	return QueueFamily{
		Index:              index,
		Flags:              props.Flags,
		QueueCount:         props.QueueCount,
		TimestampValidBits: props.TimestampValidBits,
		SupportsPresent:    supportsPresent,
	}
}
