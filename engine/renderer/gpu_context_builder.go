package renderer

import (
	"log/slog"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUContextBuilderOption is a functional option applied to the WebGPU context during
// construction via NewWGPUContext.
type GPUContextBuilderOption func(*wgpuContext)

// WithSurfaceDescriptor attaches a window surface to the context. Without it the
// context is headless.
//
// Parameters:
//   - desc: the platform surface descriptor, usually from the window package
//
// Returns:
//   - GPUContextBuilderOption: a function that applies the surface option
func WithSurfaceDescriptor(desc *wgpu.SurfaceDescriptor) GPUContextBuilderOption {
	return func(c *wgpuContext) {
		c.surfaceDescriptor = desc
	}
}

// WithSurfaceFormat sets the color format a headless context reports as its
// swap-chain format. Windowed contexts use the surface's preferred format instead.
//
// Parameters:
//   - format: the color format
//
// Returns:
//   - GPUContextBuilderOption: a function that applies the format option
func WithSurfaceFormat(format wgpu.TextureFormat) GPUContextBuilderOption {
	return func(c *wgpuContext) {
		c.surfaceFormat = format
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the
// system (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter
//
// Returns:
//   - GPUContextBuilderOption: a function that applies the fallback option
func WithForceSoftwareRenderer(force bool) GPUContextBuilderOption {
	return func(c *wgpuContext) {
		c.forceFallbackAdapter = force
	}
}

// WithMaxBindGroups raises the device's bind group limit. Pipelines whose layout field
// lists more binding sets than the default limit need this.
//
// Parameters:
//   - n: the required number of bind groups
//
// Returns:
//   - GPUContextBuilderOption: a function that applies the limit option
func WithMaxBindGroups(n uint32) GPUContextBuilderOption {
	return func(c *wgpuContext) {
		c.maxBindGroups = n
	}
}

// WithPresentMode sets the surface present mode used by ConfigureSurface.
//
// Parameters:
//   - mode: the present mode
//
// Returns:
//   - GPUContextBuilderOption: a function that applies the present mode option
func WithPresentMode(mode wgpu.PresentMode) GPUContextBuilderOption {
	return func(c *wgpuContext) {
		c.presentMode = mode
	}
}

// WithLogger sets the logger used for context lifecycle messages.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - GPUContextBuilderOption: a function that applies the logger option
func WithLogger(logger *slog.Logger) GPUContextBuilderOption {
	return func(c *wgpuContext) {
		c.logger = logger
	}
}
