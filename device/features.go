package device

import (
	"github.com/cockroachdb/errors"
)

// Feature names one optional device capability.
type Feature int

const (
	FeatureGeometryShader Feature = iota
	FeatureTessellationShader
	FeatureSamplerAnisotropy
	FeatureShaderInt64

	FeatureRuntimeDescriptorArray
	FeatureBufferDeviceAddress
	FeatureDescriptorIndexing
	FeatureTimelineSemaphore

	FeatureDynamicRendering
	FeatureSynchronization2
	FeatureMaintenance4

	FeatureRayTracingPipeline
	FeatureAccelerationStructure
)

var featureNames = map[Feature]string{
	FeatureGeometryShader:         "geometryShader",
	FeatureTessellationShader:     "tessellationShader",
	FeatureSamplerAnisotropy:      "samplerAnisotropy",
	FeatureShaderInt64:            "shaderInt64",
	FeatureRuntimeDescriptorArray: "runtimeDescriptorArray",
	FeatureBufferDeviceAddress:    "bufferDeviceAddress",
	FeatureDescriptorIndexing:     "descriptorIndexing",
	FeatureTimelineSemaphore:      "timelineSemaphore",
	FeatureDynamicRendering:       "dynamicRendering",
	FeatureSynchronization2:       "synchronization2",
	FeatureMaintenance4:           "maintenance4",
	FeatureRayTracingPipeline:     "rayTracingPipeline",
	FeatureAccelerationStructure:  "accelerationStructure",
}

func (f Feature) String() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	return "unknownFeature"
}

// ParseFeature looks a feature up by its Vulkan member name, e.g. "dynamicRendering".
func ParseFeature(name string) (Feature, error) {
	for feature, featureName := range featureNames {
		if featureName == name {
			return feature, nil
		}
	}
	return 0, errors.Newf("unknown device feature %q", name)
}

// FeatureBlock is one structure of the Vulkan feature chain.
type FeatureBlock int

const (
	BlockCore FeatureBlock = iota
	BlockVulkan12
	BlockVulkan13
	BlockRayTracingPipeline
	BlockAccelerationStructure
)

var blockFeatures = map[FeatureBlock][]Feature{
	BlockCore:                  {FeatureGeometryShader, FeatureTessellationShader, FeatureSamplerAnisotropy, FeatureShaderInt64},
	BlockVulkan12:              {FeatureRuntimeDescriptorArray, FeatureBufferDeviceAddress, FeatureDescriptorIndexing, FeatureTimelineSemaphore},
	BlockVulkan13:              {FeatureDynamicRendering, FeatureSynchronization2, FeatureMaintenance4},
	BlockRayTracingPipeline:    {FeatureRayTracingPipeline},
	BlockAccelerationStructure: {FeatureAccelerationStructure},
}

var blockNames = map[FeatureBlock]string{
	BlockCore:                  "VkPhysicalDeviceFeatures",
	BlockVulkan12:              "VkPhysicalDeviceVulkan12Features",
	BlockVulkan13:              "VkPhysicalDeviceVulkan13Features",
	BlockRayTracingPipeline:    "VkPhysicalDeviceRayTracingPipelineFeaturesKHR",
	BlockAccelerationStructure: "VkPhysicalDeviceAccelerationStructureFeaturesKHR",
}

func (b FeatureBlock) String() string {
	if name, ok := blockNames[b]; ok {
		return name
	}
	return "UnknownFeatureBlock"
}

// Features lists the flags carried by the block.
func (b FeatureBlock) Features() []Feature {
	return blockFeatures[b]
}

// FeatureQuery lists the blocks to read in a single chained query.
type FeatureQuery struct {
	Blocks []FeatureBlock
}

// DefaultFeatureQuery asks for every block the toolkit knows about.
func DefaultFeatureQuery() FeatureQuery {
	return FeatureQuery{
		Blocks: []FeatureBlock{
			BlockCore,
			BlockVulkan12,
			BlockVulkan13,
			BlockRayTracingPipeline,
			BlockAccelerationStructure,
		},
	}
}

// Includes reports whether the query asks for the block.
func (q FeatureQuery) Includes(block FeatureBlock) bool {
	for _, b := range q.Blocks {
		if b == block {
			return true
		}
	}
	return false
}

// FeatureReport is the driver's answer to a FeatureQuery. Blocks the driver
// could not fill are left out entirely.
type FeatureReport map[Feature]bool

// FeatureSet records which optional capabilities a device supports. It is
// built once from a FeatureReport and never changes.
type FeatureSet struct {
	GeometryShader     bool
	TessellationShader bool
	SamplerAnisotropy  bool
	ShaderInt64        bool

	RuntimeDescriptorArray bool
	BufferDeviceAddress    bool
	DescriptorIndexing     bool
	TimelineSemaphore      bool

	DynamicRendering bool
	Synchronization2 bool
	Maintenance4     bool

	RayTracingPipeline    bool
	AccelerationStructure bool
}

// NewFeatureSet projects a report onto a FeatureSet. A flag is set only when
// its block was queried and the driver reported it as supported.
func NewFeatureSet(query FeatureQuery, report FeatureReport) FeatureSet {
	var set FeatureSet
	for _, block := range query.Blocks {
		for _, feature := range block.Features() {
			if report[feature] {
				*set.field(feature) = true
			}
		}
	}
	return set
}

func (s *FeatureSet) field(f Feature) *bool {
	switch f {
	case FeatureGeometryShader:
		return &s.GeometryShader
	case FeatureTessellationShader:
		return &s.TessellationShader
	case FeatureSamplerAnisotropy:
		return &s.SamplerAnisotropy
	case FeatureShaderInt64:
		return &s.ShaderInt64
	case FeatureRuntimeDescriptorArray:
		return &s.RuntimeDescriptorArray
	case FeatureBufferDeviceAddress:
		return &s.BufferDeviceAddress
	case FeatureDescriptorIndexing:
		return &s.DescriptorIndexing
	case FeatureTimelineSemaphore:
		return &s.TimelineSemaphore
	case FeatureDynamicRendering:
		return &s.DynamicRendering
	case FeatureSynchronization2:
		return &s.Synchronization2
	case FeatureMaintenance4:
		return &s.Maintenance4
	case FeatureRayTracingPipeline:
		return &s.RayTracingPipeline
	case FeatureAccelerationStructure:
		return &s.AccelerationStructure
	}
	return new(bool)
}

// Has reports whether the named feature is supported.
func (s FeatureSet) Has(f Feature) bool {
	return *s.field(f)
}

// Missing returns the features from required that are not supported, in order.
func (s FeatureSet) Missing(required ...Feature) []Feature {
	var missing []Feature
	for _, f := range required {
		if !s.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}
