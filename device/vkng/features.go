package vkng

import (
	"unsafe"

	"github.com/CannibalVox/cgoparam"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_1"
)

const (
	ExtensionRayTracingPipeline    = "VK_KHR_ray_tracing_pipeline"
	ExtensionAccelerationStructure = "VK_KHR_acceleration_structure"
)

// VkStructureType values from vulkan_core.h.
const (
	structureTypeVulkan13Features              int32 = 53
	structureTypeAccelerationStructureFeatures int32 = 1000150013
	structureTypeRayTracingPipelineFeatures    int32 = 1000347000
)

var vulkan1_3 = common.APIVersion(common.CreateVersion(1, 3, 0))

// structHeader mirrors the sType/pNext prefix every Vulkan out structure
// starts with. The feature structures below are that header followed by
// VkBool32 members only, so they are read without cgo.
type structHeader struct {
	sType int32
	pNext unsafe.Pointer
}

func populateBoolHeader(allocator *cgoparam.Allocator, preallocatedPointer unsafe.Pointer, next unsafe.Pointer, sType int32, members int) unsafe.Pointer {
	if preallocatedPointer == nil {
		preallocatedPointer = allocator.Malloc(int(unsafe.Sizeof(structHeader{})) + members*4)
	}

	header := (*structHeader)(preallocatedPointer)
	header.sType = sType
	header.pNext = next

	return preallocatedPointer
}

func readBoolMembers(cDataPointer unsafe.Pointer, members int) ([]bool, unsafe.Pointer) {
	header := (*structHeader)(cDataPointer)
	raw := unsafe.Slice((*uint32)(unsafe.Add(cDataPointer, unsafe.Sizeof(structHeader{}))), members)

	values := make([]bool, members)
	for i, value := range raw {
		values[i] = value != 0
	}
	return values, header.pNext
}

// PhysicalDeviceVulkan13Features is VkPhysicalDeviceVulkan13Features as an
// out structure for GetPhysicalDeviceFeatures2.
type PhysicalDeviceVulkan13Features struct {
	RobustImageAccess                                  bool
	InlineUniformBlock                                 bool
	DescriptorBindingInlineUniformBlockUpdateAfterBind bool
	PipelineCreationCacheControl                       bool
	PrivateData                                        bool
	ShaderDemoteToHelperInvocation                     bool
	ShaderTerminateInvocation                          bool
	SubgroupSizeControl                                bool
	ComputeFullSubgroups                               bool
	Synchronization2                                   bool
	TextureCompressionASTCHDR                          bool
	ShaderZeroInitializeWorkgroupMemory                bool
	DynamicRendering                                   bool
	ShaderIntegerDotProduct                            bool
	Maintenance4                                       bool

	common.NextOutData
}

func (o *PhysicalDeviceVulkan13Features) members() []*bool {
	return []*bool{
		&o.RobustImageAccess,
		&o.InlineUniformBlock,
		&o.DescriptorBindingInlineUniformBlockUpdateAfterBind,
		&o.PipelineCreationCacheControl,
		&o.PrivateData,
		&o.ShaderDemoteToHelperInvocation,
		&o.ShaderTerminateInvocation,
		&o.SubgroupSizeControl,
		&o.ComputeFullSubgroups,
		&o.Synchronization2,
		&o.TextureCompressionASTCHDR,
		&o.ShaderZeroInitializeWorkgroupMemory,
		&o.DynamicRendering,
		&o.ShaderIntegerDotProduct,
		&o.Maintenance4,
	}
}

func (o *PhysicalDeviceVulkan13Features) PopulateHeader(allocator *cgoparam.Allocator, preallocatedPointer unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	return populateBoolHeader(allocator, preallocatedPointer, next, structureTypeVulkan13Features, len(o.members())), nil
}

func (o *PhysicalDeviceVulkan13Features) PopulateOutData(cDataPointer unsafe.Pointer, helpers ...any) (next unsafe.Pointer, err error) {
	members := o.members()
	values, next := readBoolMembers(cDataPointer, len(members))
	for i, member := range members {
		*member = values[i]
	}
	return next, nil
}

// PhysicalDeviceRayTracingPipelineFeatures is
// VkPhysicalDeviceRayTracingPipelineFeaturesKHR.
type PhysicalDeviceRayTracingPipelineFeatures struct {
	RayTracingPipeline                                    bool
	RayTracingPipelineShaderGroupHandleCaptureReplay      bool
	RayTracingPipelineShaderGroupHandleCaptureReplayMixed bool
	RayTracingPipelineTraceRaysIndirect                   bool
	RayTraversalPrimitiveCulling                          bool

	common.NextOutData
}

func (o *PhysicalDeviceRayTracingPipelineFeatures) members() []*bool {
	return []*bool{
		&o.RayTracingPipeline,
		&o.RayTracingPipelineShaderGroupHandleCaptureReplay,
		&o.RayTracingPipelineShaderGroupHandleCaptureReplayMixed,
		&o.RayTracingPipelineTraceRaysIndirect,
		&o.RayTraversalPrimitiveCulling,
	}
}

func (o *PhysicalDeviceRayTracingPipelineFeatures) PopulateHeader(allocator *cgoparam.Allocator, preallocatedPointer unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	return populateBoolHeader(allocator, preallocatedPointer, next, structureTypeRayTracingPipelineFeatures, len(o.members())), nil
}

func (o *PhysicalDeviceRayTracingPipelineFeatures) PopulateOutData(cDataPointer unsafe.Pointer, helpers ...any) (next unsafe.Pointer, err error) {
	members := o.members()
	values, next := readBoolMembers(cDataPointer, len(members))
	for i, member := range members {
		*member = values[i]
	}
	return next, nil
}

// PhysicalDeviceAccelerationStructureFeatures is
// VkPhysicalDeviceAccelerationStructureFeaturesKHR.
type PhysicalDeviceAccelerationStructureFeatures struct {
	AccelerationStructure                                 bool
	AccelerationStructureCaptureReplay                    bool
	AccelerationStructureIndirectBuild                    bool
	AccelerationStructureHostCommands                     bool
	DescriptorBindingAccelerationStructureUpdateAfterBind bool

	common.NextOutData
}

func (o *PhysicalDeviceAccelerationStructureFeatures) members() []*bool {
	return []*bool{
		&o.AccelerationStructure,
		&o.AccelerationStructureCaptureReplay,
		&o.AccelerationStructureIndirectBuild,
		&o.AccelerationStructureHostCommands,
		&o.DescriptorBindingAccelerationStructureUpdateAfterBind,
	}
}

func (o *PhysicalDeviceAccelerationStructureFeatures) PopulateHeader(allocator *cgoparam.Allocator, preallocatedPointer unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	return populateBoolHeader(allocator, preallocatedPointer, next, structureTypeAccelerationStructureFeatures, len(o.members())), nil
}

func (o *PhysicalDeviceAccelerationStructureFeatures) PopulateOutData(cDataPointer unsafe.Pointer, helpers ...any) (next unsafe.Pointer, err error) {
	members := o.members()
	values, next := readBoolMembers(cDataPointer, len(members))
	for i, member := range members {
		*member = values[i]
	}
	return next, nil
}

// featureChain links out structures behind one PhysicalDeviceFeatures2 in
// the order they are added. It must not be copied once a block is linked.
type featureChain struct {
	root core1_1.PhysicalDeviceFeatures2
	tail *common.NextOutData
	size int
}

func (c *featureChain) link(block common.OutData, next *common.NextOutData) {
	if c.tail == nil {
		c.tail = &c.root.NextOutData
	}
	c.tail.Next = block
	c.tail = next
	c.size++
}
