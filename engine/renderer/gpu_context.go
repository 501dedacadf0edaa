// Package renderer holds the GPU context boundary shared by the resource managers and
// its WebGPU implementation.
package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Releaser is any native object that frees its resources through Release.
type Releaser interface {
	Release()
}

// GPUContext is the device-level boundary the resource managers create native objects
// through. It is supplied once per session and is read-only to the managers.
type GPUContext interface {
	// SurfaceFormat returns the swap-chain's native color format. Pipeline color targets
	// declared as "swap_chain_native" resolve to this format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat

	// CreateShaderModule compiles a shader module on the device.
	//
	// Parameters:
	//   - desc: the shader module descriptor (WGSL or SPIR-V)
	//
	// Returns:
	//   - *wgpu.ShaderModule: the created module
	//   - error: error if creation fails
	CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error)

	// CreateBufferInit allocates a buffer and uploads its initial contents.
	//
	// Parameters:
	//   - desc: the buffer descriptor including contents
	//
	// Returns:
	//   - *wgpu.Buffer: the created buffer
	//   - error: error if creation fails
	CreateBufferInit(desc *wgpu.BufferInitDescriptor) (*wgpu.Buffer, error)

	// CreateBindGroupLayout creates a bind group layout.
	//
	// Parameters:
	//   - desc: the layout descriptor
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the created layout
	//   - error: error if creation fails
	CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error)

	// CreatePipelineLayout creates a pipeline layout from bind group layouts.
	//
	// Parameters:
	//   - desc: the pipeline layout descriptor
	//
	// Returns:
	//   - *wgpu.PipelineLayout: the created pipeline layout
	//   - error: error if creation fails
	CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error)

	// CreateRenderPipeline creates a raster pipeline.
	//
	// Parameters:
	//   - desc: the render pipeline descriptor
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the created pipeline
	//   - error: error if creation fails
	CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error)

	// CreateComputePipeline creates a compute pipeline.
	//
	// Parameters:
	//   - desc: the compute pipeline descriptor
	//
	// Returns:
	//   - *wgpu.ComputePipeline: the created pipeline
	//   - error: error if creation fails
	CreateComputePipeline(desc *wgpu.ComputePipelineDescriptor) (*wgpu.ComputePipeline, error)

	// CreateTexture creates a texture together with its default view.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - *wgpu.Texture: the created texture
	//   - *wgpu.TextureView: the default view of the texture
	//   - error: error if creation fails
	CreateTexture(desc *wgpu.TextureDescriptor) (*wgpu.Texture, *wgpu.TextureView, error)

	// CreateSampler creates a sampler.
	//
	// Parameters:
	//   - desc: the sampler descriptor
	//
	// Returns:
	//   - *wgpu.Sampler: the created sampler
	//   - error: error if creation fails
	CreateSampler(desc *wgpu.SamplerDescriptor) (*wgpu.Sampler, error)

	// ReleaseObject frees a native object previously created through this context.
	//
	// Parameters:
	//   - obj: the object to release
	ReleaseObject(obj Releaser)

	// Release frees the device, adapter, surface and instance.
	Release()
}
