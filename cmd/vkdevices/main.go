// Command vkdevices lists the Vulkan physical devices that can present to an
// SDL2 window surface, ranks them against the configured requirements and
// optionally loads a SPIR-V binary as a shader module on the chosen device.
//
// Usage:
//
//	vkdevices [-shader file.spv]
//
// DEVICE_EXTENSIONS and DEVICE_FEATURES (comma separated, Vulkan member names
// such as samplerAnisotropy) set the requirements. VULKAN_VALIDATION=true
// enables the Khronos validation layer and logs its messages.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"

	"github.com/vkngwrapper/toolkit/config"
	"github.com/vkngwrapper/toolkit/device"
	"github.com/vkngwrapper/toolkit/device/vkng"
	"github.com/vkngwrapper/toolkit/logging"
	"github.com/vkngwrapper/toolkit/shader"
)

var shaderPath = flag.String("shader", "", "SPIR-V binary to load on the chosen device")

type DeviceSurvey struct {
	cfg config.Config
	log logrus.FieldLogger

	window *sdl.Window

	globalDriver   core1_0.GlobalDriver
	instanceDriver core1_0.CoreInstanceDriver
	deviceDriver   core1_0.CoreDeviceDriver

	debugExtension ext_debug_utils.ExtensionDriver
	debugMessenger ext_debug_utils.DebugUtilsMessenger

	surfaceExtension khr_surface.ExtensionDriver
	surface          khr_surface.Surface

	physicalDevice device.PhysicalDevice
}

func (p *DeviceSurvey) Run() error {
	err := p.initWindow()
	if err != nil {
		return err
	}
	defer p.cleanup()

	err = p.createInstance()
	if err != nil {
		return err
	}

	err = p.createSurface()
	if err != nil {
		return err
	}

	err = p.pickPhysicalDevice()
	if err != nil {
		return err
	}

	if *shaderPath == "" {
		return nil
	}

	err = p.createLogicalDevice()
	if err != nil {
		return err
	}

	return p.loadShader(*shaderPath)
}

func (p *DeviceSurvey) initWindow() error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return errors.WithStack(err)
	}

	window, err := sdl.CreateWindow("vkdevices", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, 64, 64, sdl.WINDOW_HIDDEN|sdl.WINDOW_VULKAN)
	if err != nil {
		return errors.WithStack(err)
	}
	p.window = window

	p.globalDriver, err = core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (p *DeviceSurvey) createInstance() error {
	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    "vkdevices",
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "No Engine",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_2,
	}

	extensions, _, err := p.globalDriver.AvailableExtensions()
	if err != nil {
		return errors.WithStack(err)
	}

	for _, ext := range p.window.VulkanGetInstanceExtensions() {
		if _, hasExt := extensions[ext]; !hasExt {
			return errors.Newf("cannot initialize sdl: missing instance extension %s", ext)
		}
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, ext)
	}

	if _, enumerationSupported := extensions[khr_portability_enumeration.ExtensionName]; enumerationSupported {
		instanceOptions.EnabledExtensionNames = append(instanceOptions.EnabledExtensionNames, khr_portability_enumeration.ExtensionName)
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if p.cfg.VulkanValidation {
		instanceOptions.EnabledLayerNames, instanceOptions.EnabledExtensionNames, err = p.enableValidation(instanceOptions.EnabledLayerNames, instanceOptions.EnabledExtensionNames)
		if err != nil {
			return err
		}
		instanceOptions.Next = p.debugMessengerOptions()
	}

	p.instanceDriver, _, err = p.globalDriver.CreateInstance(nil, instanceOptions)
	if err != nil {
		return errors.Wrap(err, "create instance")
	}

	if p.cfg.VulkanValidation {
		return p.createDebugMessenger()
	}

	return nil
}

func (p *DeviceSurvey) createSurface() error {
	p.surfaceExtension = khr_surface.CreateExtensionDriverFromCoreDriver(p.instanceDriver)
	surface, err := vkng_sdl2.CreateSurface(p.instanceDriver.Instance(), p.surfaceExtension, p.window)
	if err != nil {
		return errors.Wrap(err, "create surface")
	}

	p.surface = surface
	return nil
}

func (p *DeviceSurvey) requirements() (device.Requirements, error) {
	req := device.Requirements{
		Extensions:     p.cfg.DeviceExtensions,
		QueueFlags:     device.QueueGraphics,
		Present:        true,
		SurfaceFormats: true,
	}

	for _, name := range p.cfg.DeviceFeatures {
		feature, err := device.ParseFeature(name)
		if err != nil {
			return req, errors.Wrap(err, "DEVICE_FEATURES")
		}
		req.Features = append(req.Features, feature)
	}

	return req, nil
}

func (p *DeviceSurvey) pickPhysicalDevice() error {
	req, err := p.requirements()
	if err != nil {
		return err
	}

	enumeration, err := device.Enumerate(vkng.NewDriver(p.instanceDriver), vkng.NewSurface(p.surfaceExtension, p.surface))
	if err != nil {
		return err
	}

	for _, failure := range enumeration.Failed {
		fmt.Printf("skipped: %v\n", failure)
	}
	for _, d := range enumeration.Devices {
		printDevice(d, req)
	}

	p.physicalDevice, err = device.Pick(enumeration.Devices, req)
	if err != nil {
		return err
	}

	fmt.Printf("\nchosen: %s\n", p.physicalDevice.Name)
	return nil
}

func printDevice(d device.PhysicalDevice, req device.Requirements) {
	fmt.Printf("%s (%s, vendor 0x%04x, device 0x%04x)\n", d.Name, d.Type, d.VendorID, d.DeviceID)

	for _, family := range d.QueueFamilies {
		present := ""
		if family.SupportsPresent {
			present = " present"
		}
		fmt.Printf("  queue family %d: %s x%d%s\n", family.Index, family.Flags, family.QueueCount, present)
	}

	fmt.Printf("  extensions: %d\n", len(d.Extensions))
	fmt.Printf("  surface formats: %d\n", len(d.SurfaceFormats))

	modes := make([]string, 0, len(d.PresentModes))
	for _, mode := range d.PresentModes {
		modes = append(modes, mode.String())
	}
	fmt.Printf("  present modes: %s\n", strings.Join(modes, ", "))

	var features []string
	for _, block := range device.DefaultFeatureQuery().Blocks {
		for _, feature := range block.Features() {
			if d.Features.Has(feature) {
				features = append(features, feature.String())
			}
		}
	}
	fmt.Printf("  features: %s\n", strings.Join(features, ", "))

	if err := req.Check(d); err != nil {
		fmt.Printf("  unsuitable: %v\n", err)
	} else {
		fmt.Printf("  score: %d\n", device.Score(d))
	}
}

func (p *DeviceSurvey) createLogicalDevice() error {
	graphics, _ := p.physicalDevice.QueueFamily(device.QueueGraphics)
	present, _ := p.physicalDevice.PresentQueueFamily()

	uniqueQueueFamilies := []int{graphics.Index}
	if present.Index != graphics.Index {
		uniqueQueueFamilies = append(uniqueQueueFamilies, present.Index)
	}

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	for _, queueFamily := range uniqueQueueFamilies {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{1.0},
		})
	}

	extensionNames := append([]string{}, p.cfg.DeviceExtensions...)
	if p.physicalDevice.SupportsExtensions(khr_portability_subset.ExtensionName) {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	physical, ok := p.physicalDevice.Handle.(core1_0.PhysicalDevice)
	if !ok {
		return errors.Newf("unexpected physical device handle %T", p.physicalDevice.Handle)
	}

	var err error
	p.deviceDriver, _, err = p.instanceDriver.CreateDevice(physical, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return errors.Wrapf(err, "create device on %s", p.physicalDevice.Name)
	}

	return nil
}

func (p *DeviceSurvey) loadShader(path string) error {
	binary, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(err)
	}

	module, err := shader.LoadModule(vkng.NewDevice(p.deviceDriver), binary)
	if err != nil {
		return errors.Wrapf(err, "load %s", path)
	}
	defer module.Destroy()

	p.log.WithFields(logrus.Fields{
		"shader": path,
		"words":  len(binary) / shader.WordSize,
		"device": p.physicalDevice.Name,
	}).Info("created shader module")
	fmt.Printf("loaded %s (%d bytes)\n", path, len(binary))
	return nil
}

func (p *DeviceSurvey) cleanup() {
	if p.deviceDriver != nil {
		p.deviceDriver.DestroyDevice(nil)
	}

	if p.surface.Initialized() {
		p.surfaceExtension.DestroySurface(p.surface, nil)
	}

	if p.debugMessenger.Initialized() {
		p.debugExtension.DestroyDebugUtilsMessenger(p.debugMessenger, nil)
	}

	if p.instanceDriver != nil {
		p.instanceDriver.DestroyInstance(nil)
	}

	if p.window != nil {
		p.window.Destroy()
	}
	sdl.Quit()
}

func main() {
	runtime.LockOSThread()
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logging.SetLogger(logger)

	survey := &DeviceSurvey{cfg: cfg, log: logger}
	if err := survey.Run(); err != nil {
		logger.Fatalf("%+v", err)
	}
}
