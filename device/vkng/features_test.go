package vkng

import (
	"testing"
	"unsafe"

	"github.com/CannibalVox/cgoparam"
	"github.com/vkngwrapper/core/v3/common"
)

// writeMembers stands in for the driver: it sets the VkBool32 members at the
// given indices of the structure at p.
func writeMembers(p unsafe.Pointer, count int, set ...int) {
	raw := unsafe.Slice((*uint32)(unsafe.Add(p, unsafe.Sizeof(structHeader{}))), count)
	for i := range raw {
		raw[i] = 0
	}
	for _, i := range set {
		raw[i] = 1
	}
}

func TestVulkan13FeaturesLayout(t *testing.T) {
	allocator := cgoparam.GetAlloc()
	defer cgoparam.ReturnAlloc(allocator)

	next := allocator.Malloc(8)

	var features PhysicalDeviceVulkan13Features
	p, err := features.PopulateHeader(allocator, nil, next)
	if err != nil {
		t.Fatal(err)
	}

	header := (*structHeader)(p)
	if header.sType != 53 || header.pNext != next {
		t.Fatalf("header = %+v", *header)
	}

	// synchronization2, dynamicRendering and maintenance4 in declaration order.
	writeMembers(p, 15, 9, 12, 14)

	gotNext, err := features.PopulateOutData(p)
	if err != nil {
		t.Fatal(err)
	}
	if gotNext != next {
		t.Error("PopulateOutData lost pNext")
	}

	want := PhysicalDeviceVulkan13Features{Synchronization2: true, DynamicRendering: true, Maintenance4: true}
	if features != want {
		t.Errorf("features = %+v", features)
	}
}

func TestRayTracingFeaturesLayout(t *testing.T) {
	allocator := cgoparam.GetAlloc()
	defer cgoparam.ReturnAlloc(allocator)

	var rayTracing PhysicalDeviceRayTracingPipelineFeatures
	p, err := rayTracing.PopulateHeader(allocator, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if (*structHeader)(p).sType != 1000347000 {
		t.Fatalf("sType = %d", (*structHeader)(p).sType)
	}
	writeMembers(p, 5, 0, 4)
	if _, err := rayTracing.PopulateOutData(p); err != nil {
		t.Fatal(err)
	}
	if !rayTracing.RayTracingPipeline || !rayTracing.RayTraversalPrimitiveCulling || rayTracing.RayTracingPipelineTraceRaysIndirect {
		t.Errorf("ray tracing = %+v", rayTracing)
	}

	var accelerationStructure PhysicalDeviceAccelerationStructureFeatures
	p, err = accelerationStructure.PopulateHeader(allocator, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if (*structHeader)(p).sType != 1000150013 {
		t.Fatalf("sType = %d", (*structHeader)(p).sType)
	}
	writeMembers(p, 5, 0)
	if _, err := accelerationStructure.PopulateOutData(p); err != nil {
		t.Fatal(err)
	}
	if !accelerationStructure.AccelerationStructure || accelerationStructure.AccelerationStructureHostCommands {
		t.Errorf("acceleration structure = %+v", accelerationStructure)
	}
}

func TestFeatureChainOrder(t *testing.T) {
	var chain featureChain
	first := &PhysicalDeviceVulkan13Features{}
	second := &PhysicalDeviceAccelerationStructureFeatures{}
	chain.link(first, &first.NextOutData)
	chain.link(second, &second.NextOutData)

	var order []common.OutData
	for next := chain.root.NextOutData.Next; next != nil; next = next.NextOutDataInChain() {
		order = append(order, next)
	}
	if chain.size != 2 || len(order) != 2 || order[0] != first || order[1] != second {
		t.Errorf("chain = %v", order)
	}
}
