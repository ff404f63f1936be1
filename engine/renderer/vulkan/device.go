package vulkan

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer"
)

var (
	ErrForeignContext = errors.New("context was not created by this device")
	ErrForeignBuffer  = errors.New("buffer was not created by this device")
	ErrNoWindow       = errors.New("surface has no glfw window")
	ErrNoDevice       = errors.New("no physical device meets the requirements")
)

// queueFamily is what a device queue family can do.
type queueFamily struct {
	graphics bool
	present  bool
}

// queueIndices are the chosen queue families, -1 when none was found.
// Uploads go through the graphics queue so buffers never change queue
// family ownership.
type queueIndices struct {
	graphics int32
	present  int32
}

func (q queueIndices) complete() bool {
	return q.graphics >= 0 && q.present >= 0
}

// selectQueueFamilies picks the first graphics family and prefers presenting
// from it.
func selectQueueFamilies(families []queueFamily) queueIndices {
	q := queueIndices{graphics: -1, present: -1}
	for i, f := range families {
		if f.graphics && q.graphics < 0 {
			q.graphics = int32(i)
		}
		if f.present && q.present < 0 {
			q.present = int32(i)
		}
	}
	if q.graphics >= 0 && families[q.graphics].present {
		q.present = q.graphics
	}
	return q
}

// deviceTypeScore ranks adapters, discrete first.
func deviceTypeScore(t vk.PhysicalDeviceType) int {
	switch t {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return 1000
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return 100
	case vk.PhysicalDeviceTypeVirtualGpu:
		return 50
	case vk.PhysicalDeviceTypeCpu:
		return 10
	}
	return 1
}

func deviceTypeName(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	}
	return "unknown"
}

// physicalDevice is a candidate adapter and what was learnt about it.
type physicalDevice struct {
	handle     vk.PhysicalDevice
	properties vk.PhysicalDeviceProperties
	memory     vk.PhysicalDeviceMemoryProperties
	queues     queueIndices
	extensions []string
}

func queryQueueFamilies(pd vk.PhysicalDevice, surface vk.Surface) ([]queueFamily, error) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, props)

	families := make([]queueFamily, count)
	for i := range props {
		props[i].Deref()
		flags := vk.QueueFlagBits(props[i].QueueFlags)
		families[i] = queueFamily{graphics: flags&vk.QueueGraphicsBit != 0}
		if surface == vk.NullSurface {
			families[i].present = families[i].graphics
			continue
		}
		var supported vk.Bool32
		if err := check("vkGetPhysicalDeviceSurfaceSupport", vk.GetPhysicalDeviceSurfaceSupport(pd, uint32(i), surface, &supported)); err != nil {
			return nil, err
		}
		families[i].present = supported == vk.True
	}
	return families, nil
}

func deviceExtensions(pd vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if err := check("vkEnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.ExtensionProperties, count)
	if err := check("vkEnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(pd, "", &count, props)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for i := range props {
		props[i].Deref()
		names = append(names, cString(props[i].ExtensionName[:]))
	}
	return names, nil
}

func hasString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// selectPhysicalDevice returns the highest ranked adapter that can draw and
// present to surface.
func selectPhysicalDevice(instance vk.Instance, surface vk.Surface) (*physicalDevice, error) {
	var count uint32
	if err := check("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(instance, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("no vulkan capable devices: %w", ErrNoDevice)
	}
	handles := make([]vk.PhysicalDevice, count)
	if err := check("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(instance, &count, handles)); err != nil {
		return nil, err
	}

	var best *physicalDevice
	bestScore := -1
	for _, h := range handles {
		pd := &physicalDevice{handle: h}
		vk.GetPhysicalDeviceProperties(h, &pd.properties)
		pd.properties.Deref()
		pd.properties.Limits.Deref()
		name := cString(pd.properties.DeviceName[:])

		families, err := queryQueueFamilies(h, surface)
		if err != nil {
			return nil, err
		}
		pd.queues = selectQueueFamilies(families)
		if !pd.queues.complete() {
			core.LogInfo("device '%s' lacks graphics or present queues, skipping", name)
			continue
		}
		if pd.extensions, err = deviceExtensions(h); err != nil {
			return nil, err
		}
		if !hasString(pd.extensions, vk.KhrSwapchainExtensionName) {
			core.LogInfo("device '%s' has no swapchain support, skipping", name)
			continue
		}
		if surface != vk.NullSurface {
			support, err := querySwapchainSupport(h, surface)
			if err != nil {
				return nil, err
			}
			if len(support.formats) == 0 || len(support.presentModes) == 0 {
				core.LogInfo("device '%s' cannot present to the surface, skipping", name)
				continue
			}
		}
		if score := deviceTypeScore(pd.properties.DeviceType); score > bestScore {
			best, bestScore = pd, score
		}
	}
	if best == nil {
		return nil, ErrNoDevice
	}

	vk.GetPhysicalDeviceMemoryProperties(best.handle, &best.memory)
	best.memory.Deref()
	p := best.properties
	core.LogInfo("selected %s device '%s'", deviceTypeName(p.DeviceType), cString(p.DeviceName[:]))
	core.LogInfo("driver %d.%d.%d, vulkan %d.%d.%d",
		vk.Version(p.DriverVersion).Major(), vk.Version(p.DriverVersion).Minor(), vk.Version(p.DriverVersion).Patch(),
		vk.Version(p.ApiVersion).Major(), vk.Version(p.ApiVersion).Minor(), vk.Version(p.ApiVersion).Patch())
	for i := uint32(0); i < best.memory.MemoryHeapCount; i++ {
		heap := best.memory.MemoryHeaps[i]
		heap.Deref()
		gib := float64(heap.Size) / (1 << 30)
		if vk.MemoryHeapFlagBits(heap.Flags)&vk.MemoryHeapDeviceLocalBit != 0 {
			core.LogInfo("local GPU memory: %.2f GiB", gib)
		} else {
			core.LogInfo("shared system memory: %.2f GiB", gib)
		}
	}
	return best, nil
}

// Device owns the instance, the logical device and its queues. Presentation
// surfaces are created per window and handed to the context drawing into it.
type Device struct {
	instance vk.Instance
	debug    vk.DebugReportCallback
	physical *physicalDevice
	logical  vk.Device

	graphicsQueue vk.Queue
	presentQueue  vk.Queue
	// queueMu serialises submissions; vkQueueSubmit needs external sync.
	queueMu sync.Mutex

	graphicsPool vk.CommandPool
	depthFormat  vk.Format
	validation   bool

	surfaces map[*glfw.Window]vk.Surface
	contexts map[*Context]struct{}
	buffers  map[*Buffer]struct{}

	initialized bool
}

var _ renderer.Device = (*Device)(nil)

func NewDevice() *Device {
	return &Device{
		surfaces: make(map[*glfw.Window]vk.Surface),
		contexts: make(map[*Context]struct{}),
		buffers:  make(map[*Buffer]struct{}),
	}
}

func (d *Device) Type() renderer.RendererType { return renderer.Vulkan }

func windowOf(s renderer.Surface) (*glfw.Window, error) {
	if s == nil {
		return nil, ErrNoWindow
	}
	win, ok := s.NativeHandle().(*glfw.Window)
	if !ok || win == nil {
		return nil, ErrNoWindow
	}
	return win, nil
}

func (d *Device) Initialize(cfg renderer.DeviceConfig) (err error) {
	if d.initialized {
		return core.ErrAlreadyInitialized
	}
	var rb renderer.Rollback
	defer func() {
		if err != nil {
			rb.Run()
		}
	}()

	if err := loadVulkan(); err != nil {
		return err
	}

	win, err := windowOf(cfg.Surface)
	if err != nil {
		return err
	}
	if d.instance, err = createInstance(cfg.ApplicationName, win.GetRequiredInstanceExtensions(), cfg.Validation); err != nil {
		return err
	}
	rb.Push(func() { vk.DestroyInstance(d.instance, nil); d.instance = nil })
	core.LogInfo("vulkan instance created")
	d.validation = cfg.Validation

	if cfg.Validation {
		if d.debug, err = createDebugCallback(d.instance); err != nil {
			core.LogWarn("debug callback unavailable: %s", err)
			err = nil
		} else {
			rb.Push(func() {
				vk.DestroyDebugReportCallback(d.instance, d.debug, nil)
				d.debug = vk.NullDebugReportCallback
			})
		}
	}

	surface, err := createSurface(d.instance, win)
	if err != nil {
		return err
	}
	d.surfaces[win] = surface
	rb.Push(d.destroySurfaces)

	if d.physical, err = selectPhysicalDevice(d.instance, surface); err != nil {
		return err
	}
	if err = d.createLogicalDevice(); err != nil {
		return err
	}
	rb.Push(d.destroyLogicalDevice)

	if d.depthFormat, err = d.detectDepthFormat(); err != nil {
		return err
	}

	rb.Discard()
	d.initialized = true
	core.LogInfo("vulkan device created")
	return nil
}

func (d *Device) createLogicalDevice() error {
	q := d.physical.queues
	families := []uint32{uint32(q.graphics)}
	if q.present != q.graphics {
		families = append(families, uint32(q.present))
	}
	queueInfos := make([]vk.DeviceQueueCreateInfo, len(families))
	for i, f := range families {
		queueInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: f,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	extensions := []string{vk.KhrSwapchainExtensionName}
	if hasString(d.physical.extensions, "VK_KHR_portability_subset") {
		core.LogInfo("enabling VK_KHR_portability_subset")
		extensions = append(extensions, "VK_KHR_portability_subset")
	}

	info := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	}
	var logical vk.Device
	if err := check("vkCreateDevice", vk.CreateDevice(d.physical.handle, &info, nil, &logical)); err != nil {
		return err
	}
	d.logical = logical

	vk.GetDeviceQueue(d.logical, uint32(q.graphics), 0, &d.graphicsQueue)
	vk.GetDeviceQueue(d.logical, uint32(q.present), 0, &d.presentQueue)
	core.LogDebug("queues obtained: graphics %d, present %d", q.graphics, q.present)

	pool, err := d.createCommandPool(uint32(q.graphics))
	if err != nil {
		vk.DestroyDevice(d.logical, nil)
		d.logical = nil
		return err
	}
	d.graphicsPool = pool
	return nil
}

func (d *Device) createCommandPool(family uint32) (vk.CommandPool, error) {
	info := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if err := check("vkCreateCommandPool", vk.CreateCommandPool(d.logical, &info, nil, &pool)); err != nil {
		return nil, err
	}
	return pool, nil
}

func (d *Device) destroyLogicalDevice() {
	if d.logical == nil {
		return
	}
	vk.DestroyCommandPool(d.logical, d.graphicsPool, nil)
	vk.DestroyDevice(d.logical, nil)
	d.logical = nil
	d.graphicsQueue, d.presentQueue = nil, nil
}

var depthCandidates = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
}

func (d *Device) detectDepthFormat() (vk.Format, error) {
	want := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	for _, f := range depthCandidates {
		var props vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(d.physical.handle, f, &props)
		props.Deref()
		if props.OptimalTilingFeatures&want == want {
			return f, nil
		}
	}
	return vk.FormatUndefined, errors.New("no supported depth format")
}

// surfaceFor returns the presentation surface of the window behind s,
// creating it on first use.
func (d *Device) surfaceFor(s renderer.Surface) (vk.Surface, error) {
	win, err := windowOf(s)
	if err != nil {
		return vk.NullSurface, err
	}
	if surface, ok := d.surfaces[win]; ok {
		return surface, nil
	}
	surface, err := createSurface(d.instance, win)
	if err != nil {
		return vk.NullSurface, err
	}
	var supported vk.Bool32
	res := vk.GetPhysicalDeviceSurfaceSupport(d.physical.handle, uint32(d.physical.queues.present), surface, &supported)
	if err := check("vkGetPhysicalDeviceSurfaceSupport", res); err != nil || supported != vk.True {
		vk.DestroySurface(d.instance, surface, nil)
		if err == nil {
			err = errors.New("present queue cannot present to the window")
		}
		return vk.NullSurface, err
	}
	d.surfaces[win] = surface
	return surface, nil
}

func (d *Device) releaseSurface(surface vk.Surface) {
	for win, s := range d.surfaces {
		if s == surface {
			delete(d.surfaces, win)
		}
	}
	vk.DestroySurface(d.instance, surface, nil)
}

func (d *Device) destroySurfaces() {
	for win, s := range d.surfaces {
		vk.DestroySurface(d.instance, s, nil)
		delete(d.surfaces, win)
	}
}

// minUniformAlignment is the device's minUniformBufferOffsetAlignment.
func (d *Device) minUniformAlignment() uint64 {
	return uint64(d.physical.properties.Limits.MinUniformBufferOffsetAlignment)
}

func (d *Device) waitIdle() {
	if d.logical != nil {
		vk.DeviceWaitIdle(d.logical)
	}
}

func (d *Device) Shutdown() error {
	if !d.initialized {
		return core.ErrNotInitialized
	}
	d.waitIdle()
	var errs []error
	for c := range d.contexts {
		if c.initialized {
			errs = append(errs, c.Shutdown())
		}
		delete(d.contexts, c)
	}
	if n := len(d.buffers); n > 0 {
		core.LogWarn("releasing %d vulkan buffers at device shutdown", n)
	}
	for b := range d.buffers {
		b.destroy(d.logical)
		delete(d.buffers, b)
	}

	core.LogDebug("destroying vulkan device")
	d.destroyLogicalDevice()
	d.destroySurfaces()
	if d.debug != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(d.instance, d.debug, nil)
		d.debug = vk.NullDebugReportCallback
	}
	vk.DestroyInstance(d.instance, nil)
	d.instance = nil
	d.physical = nil
	d.initialized = false
	core.LogInfo("vulkan device destroyed")
	return errors.Join(errs...)
}

func (d *Device) NewContext() renderer.Context {
	c := &Context{device: d}
	d.contexts[c] = struct{}{}
	return c
}

func (d *Device) DestroyContext(ctx renderer.Context) error {
	c, ok := ctx.(*Context)
	if !ok || c.device != d {
		return ErrForeignContext
	}
	var err error
	if c.initialized {
		err = c.Shutdown()
	}
	delete(d.contexts, c)
	return err
}
