package pipeline

import (
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithSource records the file and configuration the pipeline is built from.
//
// Parameters:
//   - path: the pipeline file path
//   - cfg: the configuration
//
// Returns:
//   - PipelineBuilderOption: a function that sets the source of this pipeline
func WithSource(path string, cfg Configuration) PipelineBuilderOption {
	return func(p *pipeline) {
		p.path = path
		p.configuration = cfg
	}
}

// WithVertexShader sets the vertex shader for this pipeline.
//
// Parameters:
//   - s: the vertex shader to use for this pipeline
//   - entryPoint: an entry point override, or empty to use the shader's own
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex shader for this pipeline
func WithVertexShader(s shader.Shader, entryPoint string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = s
		p.vertexEntry = entryPoint
	}
}

// WithFragmentShader sets the fragment shader for this pipeline.
//
// Parameters:
//   - s: the fragment shader to use for this pipeline
//   - entryPoint: an entry point override, or empty to use the shader's own
//
// Returns:
//   - PipelineBuilderOption: a function that sets the fragment shader for this pipeline
func WithFragmentShader(s shader.Shader, entryPoint string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentShader = s
		p.fragmentEntry = entryPoint
	}
}

// WithComputeShader sets the compute shader for this pipeline.
//
// Parameters:
//   - s: the compute shader to use for this pipeline
//   - entryPoint: an entry point override, or empty to use the shader's own
//
// Returns:
//   - PipelineBuilderOption: a function that sets the compute shader for this pipeline
func WithComputeShader(s shader.Shader, entryPoint string) PipelineBuilderOption {
	return func(p *pipeline) {
		p.computeShader = s
		p.computeEntry = entryPoint
	}
}

// WithBindGroupLayouts sets the layout handles in bind group order.
//
// Parameters:
//   - layouts: KindBindGroupLayout handles
//
// Returns:
//   - PipelineBuilderOption: a function that sets the bind group layouts for this pipeline
func WithBindGroupLayouts(layouts ...resource.Handle) PipelineBuilderOption {
	return func(p *pipeline) {
		p.bindGroupLayouts = append(p.bindGroupLayouts, layouts...)
	}
}

// WithCullMode sets the cull mode for this pipeline.
//
// Parameters:
//   - mode: the cull mode to use for this pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode for this pipeline
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology for this pipeline.
//
// Parameters:
//   - topology: the primitive topology to use for this pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the primitive topology for this pipeline
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the front face winding order for this pipeline.
//
// Parameters:
//   - frontFace: the front face to use for this pipeline (e.g., wgpu.FrontFaceCCW, wgpu.FrontFaceCW)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face for this pipeline
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithStripIndexFormat sets the index format used by strip topologies.
//
// Parameters:
//   - format: the strip index format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the strip index format for this pipeline
func WithStripIndexFormat(format wgpu.IndexFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.stripIndexFormat = format
	}
}

// WithDepthBias sets the depth bias parameters for this pipeline.
//
// Parameters:
//   - bias: the constant depth bias to apply
//   - slopeScale: the slope scale depth bias to apply
//   - clamp: the maximum bias
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth bias parameters for this pipeline
func WithDepthBias(bias int32, slopeScale, clamp float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
		p.depthBiasClamp = clamp
	}
}

// WithDepthStencil sets the depth state for this pipeline. The bias fields of the state
// are overwritten from WithDepthBias when the native pipeline is created.
//
// Parameters:
//   - state: the depth state, or nil for no depth attachment
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth state for this pipeline
func WithDepthStencil(state *wgpu.DepthStencilState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthStencil = state
	}
}

// WithColorTargets sets the color target states for this pipeline.
//
// Parameters:
//   - targets: the color targets in attachment order
//
// Returns:
//   - PipelineBuilderOption: a function that sets the color targets for this pipeline
func WithColorTargets(targets ...wgpu.ColorTargetState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.colorTargets = append(p.colorTargets, targets...)
	}
}

// WithVertexLayouts sets the vertex buffer layouts for this pipeline.
//
// Parameters:
//   - layouts: the vertex buffer layouts in slot order
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex layouts for this pipeline
func WithVertexLayouts(layouts ...wgpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexLayouts = append(p.vertexLayouts, layouts...)
	}
}

// WithSampleCount sets the multisample count for this pipeline.
//
// Parameters:
//   - count: the sample count
//
// Returns:
//   - PipelineBuilderOption: a function that sets the sample count for this pipeline
func WithSampleCount(count uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.sampleCount = count
	}
}
