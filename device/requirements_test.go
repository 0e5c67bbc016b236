package device_test

import (
	"strings"
	"testing"

	"github.com/vkngwrapper/toolkit/device"
)

func describe(t *testing.T, gpu *fakeGPU) device.PhysicalDevice {
	t.Helper()
	d, err := device.NewPhysicalDevice(&fakeDriver{}, fakeSurface{}, gpu)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestRequirementsCheck(t *testing.T) {
	d := describe(t, swapchainGPU("gpu", device.TypeDiscreteGPU))

	tests := []struct {
		name string
		req  device.Requirements
		want string
	}{
		{"nothing", device.Requirements{}, ""},
		{"graphics and present", device.Requirements{QueueFlags: device.QueueGraphics, Present: true, SurfaceFormats: true}, ""},
		{"video", device.Requirements{QueueFlags: device.QueueVideoEncode}, "no queue family"},
		{"extension", device.Requirements{Extensions: []string{"VK_KHR_swapchain", "VK_KHR_ray_tracing_pipeline"}}, "VK_KHR_ray_tracing_pipeline"},
		{"feature", device.Requirements{Features: []device.Feature{device.FeatureRayTracingPipeline}}, "rayTracingPipeline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Check(d)
			if tt.want == "" {
				if err != nil {
					t.Errorf("Check: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Check = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestRequirementsPresent(t *testing.T) {
	gpu := swapchainGPU("headless", device.TypeDiscreteGPU)
	gpu.present = []bool{false, false}
	d := describe(t, gpu)

	if err := (device.Requirements{Present: true}).Check(d); err == nil {
		t.Error("a device without present support passed")
	}
}

func TestPickPrefersDiscrete(t *testing.T) {
	devices := []device.PhysicalDevice{
		describe(t, swapchainGPU("integrated", device.TypeIntegratedGPU)),
		describe(t, swapchainGPU("discrete", device.TypeDiscreteGPU)),
		describe(t, swapchainGPU("discrete twin", device.TypeDiscreteGPU)),
	}

	best, err := device.Pick(devices, device.Requirements{Extensions: []string{"VK_KHR_swapchain"}})
	if err != nil {
		t.Fatal(err)
	}
	if best.Name != "discrete" {
		t.Errorf("picked %q", best.Name)
	}
}

func TestPickNothingSuitable(t *testing.T) {
	devices := []device.PhysicalDevice{describe(t, swapchainGPU("gpu", device.TypeCPU))}

	_, err := device.Pick(devices, device.Requirements{Features: []device.Feature{device.FeatureAccelerationStructure}})
	if err == nil || !strings.Contains(err.Error(), "accelerationStructure") {
		t.Errorf("Pick = %v", err)
	}

	if _, err := device.Pick(nil, device.Requirements{}); err == nil {
		t.Error("picked from an empty list")
	}
}
