package vulkan

import (
	"errors"
	"math"
	"testing"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/renderer"
)

func TestSelectQueueFamilies(t *testing.T) {
	tests := []struct {
		name     string
		families []queueFamily
		want     queueIndices
		complete bool
	}{
		{
			name:     "single family does everything",
			families: []queueFamily{{graphics: true, present: true}},
			want:     queueIndices{graphics: 0, present: 0},
			complete: true,
		},
		{
			name:     "present only on a separate family",
			families: []queueFamily{{graphics: true}, {present: true}},
			want:     queueIndices{graphics: 0, present: 1},
			complete: true,
		},
		{
			name:     "graphics family preferred for present",
			families: []queueFamily{{present: true}, {graphics: true, present: true}},
			want:     queueIndices{graphics: 1, present: 1},
			complete: true,
		},
		{
			name:     "no present support",
			families: []queueFamily{{graphics: true}},
			want:     queueIndices{graphics: 0, present: -1},
		},
		{
			name: "no families",
			want: queueIndices{graphics: -1, present: -1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectQueueFamilies(tt.families)
			if got != tt.want {
				t.Errorf("selectQueueFamilies() = %+v, want %+v", got, tt.want)
			}
			if got.complete() != tt.complete {
				t.Errorf("complete() = %v, want %v", got.complete(), tt.complete)
			}
		})
	}
}

func TestDeviceTypeScoreOrdering(t *testing.T) {
	order := []vk.PhysicalDeviceType{
		vk.PhysicalDeviceTypeDiscreteGpu,
		vk.PhysicalDeviceTypeIntegratedGpu,
		vk.PhysicalDeviceTypeVirtualGpu,
		vk.PhysicalDeviceTypeCpu,
		vk.PhysicalDeviceTypeOther,
	}
	for i := 1; i < len(order); i++ {
		if deviceTypeScore(order[i-1]) <= deviceTypeScore(order[i]) {
			t.Errorf("%s should outrank %s", deviceTypeName(order[i-1]), deviceTypeName(order[i]))
		}
	}
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		name      string
		requested uint32
		min, max  uint32
		want      uint32
	}{
		{"within limits", 3, 2, 8, 3},
		{"below surface minimum", 1, 2, 8, 2},
		{"above surface maximum", 6, 2, 4, 4},
		{"unbounded maximum", 8, 2, 0, 8},
		{"zero requested", 0, 1, 3, renderer.MinBackbufferCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := vk.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
			if got := chooseImageCount(tt.requested, caps); got != tt.want {
				t.Errorf("chooseImageCount(%d) = %d, want %d", tt.requested, got, tt.want)
			}
		})
	}
}

func TestChooseExtent(t *testing.T) {
	fixed := vk.SurfaceCapabilities{CurrentExtent: vk.Extent2D{Width: 800, Height: 600}}
	if got := chooseExtent(1024, 768, fixed); got.Width != 800 || got.Height != 600 {
		t.Errorf("fixed extent = %dx%d, want 800x600", got.Width, got.Height)
	}

	free := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 1920, Height: 1080},
	}
	if got := chooseExtent(4096, 720, free); got.Width != 1920 || got.Height != 720 {
		t.Errorf("clamped extent = %dx%d, want 1920x720", got.Width, got.Height)
	}
}

func TestChoosePresentMode(t *testing.T) {
	tests := []struct {
		name  string
		vsync bool
		modes []vk.PresentMode
		want  vk.PresentMode
	}{
		{"vsync", true, []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo}, vk.PresentModeFifo},
		{"immediate", false, []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate}, vk.PresentModeImmediate},
		{"mailbox", false, []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}, vk.PresentModeMailbox},
		{"fifo fallback", false, []vk.PresentMode{vk.PresentModeFifo}, vk.PresentModeFifo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := choosePresentMode(tt.vsync, tt.modes); got != tt.want {
				t.Errorf("choosePresentMode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestChooseSurfaceFormat(t *testing.T) {
	preferred := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	other := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	if got := chooseSurfaceFormat([]vk.SurfaceFormat{other, preferred}); got != preferred {
		t.Errorf("got %+v, want the BGRA sRGB format", got)
	}
	if got := chooseSurfaceFormat([]vk.SurfaceFormat{other}); got != other {
		t.Errorf("got %+v, want the first format as fallback", got)
	}
}

func TestVertexAttributes(t *testing.T) {
	want := []struct {
		format vk.Format
		offset uint32
	}{
		{vk.FormatR32g32b32Sfloat, 0},
		{vk.FormatR32g32b32Sfloat, 12},
		{vk.FormatR32g32Sfloat, 24},
		{vk.FormatR32g32b32a32Sfloat, 32},
		{vk.FormatR32g32b32Sfloat, 48},
	}
	attrs := vertexAttributes()
	if len(attrs) != len(want) {
		t.Fatalf("got %d attributes, want %d", len(attrs), len(want))
	}
	for i, w := range want {
		a := attrs[i]
		if a.Format != w.format || a.Offset != w.offset || a.Location != uint32(i) || a.Binding != 0 {
			t.Errorf("attribute %d = %+v, want format %d offset %d", i, a, w.format, w.offset)
		}
	}
}

func TestStringHelpers(t *testing.T) {
	if got := safeString("vs_main"); got != "vs_main\x00" {
		t.Errorf("safeString = %q", got)
	}
	if got := safeString("done\x00"); got != "done\x00" {
		t.Errorf("safeString terminated twice: %q", got)
	}
	in := []string{"a", "b\x00"}
	out := safeStrings(in)
	if out[0] != "a\x00" || out[1] != "b\x00" || in[0] != "a" {
		t.Errorf("safeStrings = %q, input %q", out, in)
	}

	name := make([]byte, 16)
	copy(name, "llvmpipe")
	if got := cString(name); got != "llvmpipe" {
		t.Errorf("cString = %q", got)
	}
	if got := cString([]byte("full")); got != "full" {
		t.Errorf("cString without NUL = %q", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, low, high, want uint32
	}{
		{5, 1, 10, 5},
		{0, 1, 10, 1},
		{20, 1, 10, 10},
		{20, 1, 0, 20},
	}
	for _, tt := range tests {
		if got := clamp(tt.v, tt.low, tt.high); got != tt.want {
			t.Errorf("clamp(%d, %d, %d) = %d, want %d", tt.v, tt.low, tt.high, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	if err := check("vkCreateFence", vk.Success); err != nil {
		t.Fatalf("check(Success) = %v", err)
	}
	err := check("vkCreateFence", vk.ErrorOutOfDeviceMemory)
	var re *ResultError
	if !errors.As(err, &re) || re.Result != vk.ErrorOutOfDeviceMemory {
		t.Fatalf("check() = %v, want a ResultError", err)
	}
	if got := err.Error(); got != "vkCreateFence failed with VK_ERROR_OUT_OF_DEVICE_MEMORY" {
		t.Errorf("Error() = %q", got)
	}
	if got := ResultString(vk.Result(-424242)); got != "VkResult(-424242)" {
		t.Errorf("ResultString(unknown) = %q", got)
	}
}

func TestDeviceBeforeInitialize(t *testing.T) {
	d := NewDevice()
	if d.Type() != renderer.Vulkan {
		t.Errorf("Type() = %s", d.Type())
	}
	if _, err := d.CreateBuffer(renderer.VertexBuffer, []byte{1, 2, 3, 4}); !errors.Is(err, core.ErrNotInitialized) {
		t.Errorf("CreateBuffer before Initialize = %v", err)
	}
	if err := d.Shutdown(); !errors.Is(err, core.ErrNotInitialized) {
		t.Errorf("Shutdown before Initialize = %v", err)
	}
	ctx := d.NewContext()
	if err := ctx.Initialize(nil, renderer.DefaultContextSettings()); !errors.Is(err, core.ErrNotInitialized) {
		t.Errorf("context Initialize before device = %v", err)
	}
	if err := d.DestroyContext(ctx); err != nil {
		t.Errorf("DestroyContext = %v", err)
	}
}
