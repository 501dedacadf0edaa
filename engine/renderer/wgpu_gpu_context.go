package renderer

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuContext is the GPUContext backed by a real WebGPU device.
type wgpuContext struct {
	mu sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	surface  *wgpu.Surface

	surfaceDescriptor    *wgpu.SurfaceDescriptor
	surfaceFormat        wgpu.TextureFormat
	forceFallbackAdapter bool
	maxBindGroups        uint32
	presentMode          wgpu.PresentMode

	logger *slog.Logger
}

// WGPUContext is the GPUContext implementation over cogentcore/webgpu. Besides object
// creation it exposes the surface configuration the application shell needs.
type WGPUContext interface {
	GPUContext

	// ConfigureSurface configures the window surface for presentation at the given size.
	// It does nothing for a headless context.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	ConfigureSurface(width, height int)

	// Headless reports whether the context was created without a surface.
	//
	// Returns:
	//   - bool: true if there is no surface
	Headless() bool

	// Device returns the underlying device.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device
}

var _ WGPUContext = &wgpuContext{}

// NewWGPUContext creates the instance, optional surface, adapter and device.
// Without WithSurfaceDescriptor the context is headless and reports the format set by
// WithSurfaceFormat (BGRA8Unorm by default) as its surface format.
// Adapter or device acquisition failures panic, as nothing can proceed without them.
//
// Parameters:
//   - opts: a variadic list of GPUContextBuilderOption functions
//
// Returns:
//   - WGPUContext: the created context
func NewWGPUContext(opts ...GPUContextBuilderOption) WGPUContext {
	runtime.LockOSThread()
	c := &wgpuContext{
		surfaceFormat: wgpu.TextureFormatBGRA8Unorm,
		maxBindGroups: 8,
		presentMode:   wgpu.PresentModeFifo,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.instance = wgpu.CreateInstance(nil)
	if c.surfaceDescriptor != nil {
		c.surface = c.instance.CreateSurface(c.surfaceDescriptor)
	}

	a, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: c.forceFallbackAdapter,
		CompatibleSurface:    c.surface,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to request adapter: %v", err))
	}
	c.adapter = a

	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = c.maxBindGroups

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Resource Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to request device: %v", err))
	}
	c.device = d

	if c.surface != nil {
		capabilities := c.surface.GetCapabilities(c.adapter)
		if len(capabilities.Formats) > 0 {
			c.surfaceFormat = capabilities.Formats[0]
		}
	}

	c.logger.Info("gpu context ready",
		slog.Bool("headless", c.surface == nil),
		slog.Any("surface_format", c.surfaceFormat),
		slog.Bool("fallback_adapter", c.forceFallbackAdapter))

	return c
}

func (c *wgpuContext) SurfaceFormat() wgpu.TextureFormat {
	return c.surfaceFormat
}

func (c *wgpuContext) Headless() bool {
	return c.surface == nil
}

func (c *wgpuContext) Device() *wgpu.Device {
	return c.device
}

func (c *wgpuContext) ConfigureSurface(width, height int) {
	if c.surface == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	capabilities := c.surface.GetCapabilities(c.adapter)
	c.surface.Configure(c.adapter, c.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      c.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: c.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (c *wgpuContext) CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device.CreateShaderModule(desc)
}

func (c *wgpuContext) CreateBufferInit(desc *wgpu.BufferInitDescriptor) (*wgpu.Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device.CreateBufferInit(desc)
}

func (c *wgpuContext) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device.CreateBindGroupLayout(desc)
}

func (c *wgpuContext) CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device.CreatePipelineLayout(desc)
}

func (c *wgpuContext) CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device.CreateRenderPipeline(desc)
}

func (c *wgpuContext) CreateComputePipeline(desc *wgpu.ComputePipelineDescriptor) (*wgpu.ComputePipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device.CreateComputePipeline(desc)
}

func (c *wgpuContext) CreateTexture(desc *wgpu.TextureDescriptor) (*wgpu.Texture, *wgpu.TextureView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tex, err := c.device.CreateTexture(desc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create texture %q: %w", desc.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("failed to create view for texture %q: %w", desc.Label, err)
	}
	return tex, view, nil
}

func (c *wgpuContext) CreateSampler(desc *wgpu.SamplerDescriptor) (*wgpu.Sampler, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device.CreateSampler(desc)
}

func (c *wgpuContext) ReleaseObject(obj Releaser) {
	if obj == nil {
		return
	}
	obj.Release()
}

func (c *wgpuContext) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}
