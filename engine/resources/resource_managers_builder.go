package resources

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-resources/engine/loader"
	"github.com/Carmen-Shannon/oxy-resources/engine/platform"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ResourceManagersBuilderOption is a functional option for configuring the aggregate via
// NewResourceManagers.
type ResourceManagersBuilderOption func(*resourceManagers)

// WithLogger sets the logger shared by every manager.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - ResourceManagersBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) ResourceManagersBuilderOption {
	return func(r *resourceManagers) {
		r.logger = logger
	}
}

// WithCompiler sets the shader compiler. Nil hands WGSL to the device unchanged.
//
// Parameters:
//   - c: the shader compiler, or nil
//
// Returns:
//   - ResourceManagersBuilderOption: option function to apply
func WithCompiler(c platform.ShaderCompiler) ResourceManagersBuilderOption {
	return func(r *resourceManagers) {
		r.shaderOpts = append(r.shaderOpts, shader.WithCompiler(c))
	}
}

// WithPreferPrecompiled controls whether precompiled SPIR-V artifacts are probed first.
//
// Parameters:
//   - prefer: false to always compile from source
//
// Returns:
//   - ResourceManagersBuilderOption: option function to apply
func WithPreferPrecompiled(prefer bool) ResourceManagersBuilderOption {
	return func(r *resourceManagers) {
		r.shaderOpts = append(r.shaderOpts, shader.WithPreferPrecompiled(prefer))
	}
}

// WithDepthFormat sets the format "default" depth states resolve to.
//
// Parameters:
//   - format: a depth texture format
//
// Returns:
//   - ResourceManagersBuilderOption: option function to apply
func WithDepthFormat(format wgpu.TextureFormat) ResourceManagersBuilderOption {
	return func(r *resourceManagers) {
		r.depthFormat = format
	}
}

// WithWorkers sets the number of goroutines decoding scene primitives.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - ResourceManagersBuilderOption: option function to apply
func WithWorkers(n int) ResourceManagersBuilderOption {
	return func(r *resourceManagers) {
		r.loaderOpts = append(r.loaderOpts, loader.WithWorkers(n))
	}
}
