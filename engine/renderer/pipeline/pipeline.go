package pipeline

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-resources/common"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType identifies whether a pipeline is a compute pipeline or a render pipeline.
type PipelineType int

const (
	// PipelineTypeCompute indicates a compute pipeline with a single compute shader entry point.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender indicates a render pipeline with a vertex and an optional fragment entry point.
	PipelineTypeRender
)

func (t PipelineType) String() string {
	if t == PipelineTypeCompute {
		return "compute"
	}
	return "raster"
}

// pipeline is the implementation of the Pipeline interface.
// It holds the native pipeline objects and the resolved state they were created from.
type pipeline struct {
	// handle is the handle issued for this record, sub-tag included
	handle       resource.Handle
	pipelineType PipelineType
	// pipelineKey is "<path>|<configuration>", unique per cache entry
	pipelineKey   string
	path          string
	configuration Configuration

	vertexShader, fragmentShader, computeShader shader.Shader
	// entry point overrides from the pipeline file, empty when the shader's own is used
	vertexEntry, fragmentEntry, computeEntry string

	bindGroupLayouts []resource.Handle

	renderPipeline  *wgpu.RenderPipeline
	computePipeline *wgpu.ComputePipeline
	layout          *wgpu.PipelineLayout

	// The following are only used for render pipelines.

	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	stripIndexFormat    wgpu.IndexFormat
	depthBias           int32
	depthBiasSlopeScale float32
	depthBiasClamp      float32
	depthStencil        *wgpu.DepthStencilState
	colorTargets        []wgpu.ColorTargetState
	vertexLayouts       []wgpu.VertexBufferLayout
	sampleCount         uint32
}

// Pipeline is a built raster or compute pipeline together with every piece of state it was
// created from. Records are owned by the pipeline Manager and are read-only to callers.
type Pipeline interface {
	// Type returns the type of the pipeline
	//
	// Returns:
	//   - PipelineType: the type of the pipeline (render or compute)
	Type() PipelineType

	// PipelineKey returns the unique cache key of this pipeline.
	//
	// Returns:
	//   - string: the key, built from the file path and configuration
	PipelineKey() string

	// Path returns the pipeline file the record was built from.
	//
	// Returns:
	//   - string: the file path
	Path() string

	// Configuration returns the configuration the pipeline was built with.
	//
	// Returns:
	//   - Configuration: the configuration
	Configuration() Configuration

	// Shader retrieves the shader associated with the specified type if it exists, nil otherwise.
	//
	// Parameters:
	//   - shaderType: the type of shader to retrieve (vertex, fragment, or compute)
	//
	// Returns:
	//   - shader.Shader: the shader associated with the specified type, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// EntryPoint returns the entry point used for a stage. A pipeline-level override wins
	// over the entry point recorded on the shader.
	//
	// Parameters:
	//   - shaderType: the stage
	//
	// Returns:
	//   - string: the entry point, or empty if the stage is not set
	EntryPoint(shaderType shader.ShaderType) string

	// Pipeline returns the underlying pipeline object, either *wgpu.RenderPipeline or *wgpu.ComputePipeline
	// Note: The caller is responsible for type asserting the returned value as either pipeline type.
	//
	// Returns:
	//   - any: the underlying pipeline object.
	Pipeline() any

	// Layout returns the native pipeline layout.
	//
	// Returns:
	//   - *wgpu.PipelineLayout: the layout
	Layout() *wgpu.PipelineLayout

	// BindGroupLayouts returns the layout handles in bind group order.
	//
	// Returns:
	//   - []resource.Handle: KindBindGroupLayout handles
	BindGroupLayouts() []resource.Handle

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// StripIndexFormat returns the strip index format, undefined for list topologies.
	//
	// Returns:
	//   - wgpu.IndexFormat: the strip index format
	StripIndexFormat() wgpu.IndexFormat

	// DepthBias returns the constant depth bias, slope scale and clamp.
	//
	// Returns:
	//   - int32: the constant depth bias
	//   - float32: the slope scale
	//   - float32: the clamp
	DepthBias() (int32, float32, float32)

	// DepthStencil returns the depth state, or nil if the pipeline has no depth attachment.
	//
	// Returns:
	//   - *wgpu.DepthStencilState: the depth state or nil
	DepthStencil() *wgpu.DepthStencilState

	// ColorTargets returns the color target states in attachment order.
	//
	// Returns:
	//   - []wgpu.ColorTargetState: the color targets
	ColorTargets() []wgpu.ColorTargetState

	// VertexLayouts returns the vertex buffer layouts in slot order.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// SampleCount returns the multisample count.
	//
	// Returns:
	//   - uint32: the sample count
	SampleCount() uint32
}

var _ Pipeline = &pipeline{}

// newPipeline creates a pipeline record with the "default" rasterization preset, triangle
// lists, no depth state and a single sample.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - pipelineType: the type of pipeline to create (render or compute)
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - *pipeline: the record, ready for native creation
func newPipeline(pipelineKey string, pipelineType PipelineType, opts ...PipelineBuilderOption) *pipeline {
	p := &pipeline{
		pipelineKey:  pipelineKey,
		pipelineType: pipelineType,
		cullMode:     wgpu.CullModeBack,
		topology:     wgpu.PrimitiveTopologyTriangleList,
		frontFace:    wgpu.FrontFaceCCW,
		sampleCount:  1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Path() string {
	return p.path
}

func (p *pipeline) Configuration() Configuration {
	return p.configuration
}

func (p *pipeline) Pipeline() any {
	switch p.pipelineType {
	case PipelineTypeRender:
		return p.renderPipeline
	case PipelineTypeCompute:
		return p.computePipeline
	default:
		return nil
	}
}

func (p *pipeline) Layout() *wgpu.PipelineLayout {
	return p.layout
}

func (p *pipeline) BindGroupLayouts() []resource.Handle {
	return slices.Clone(p.bindGroupLayouts)
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) StripIndexFormat() wgpu.IndexFormat {
	return p.stripIndexFormat
}

func (p *pipeline) DepthBias() (int32, float32, float32) {
	return p.depthBias, p.depthBiasSlopeScale, p.depthBiasClamp
}

func (p *pipeline) DepthStencil() *wgpu.DepthStencilState {
	if p.depthStencil == nil {
		return nil
	}
	ds := *p.depthStencil
	return &ds
}

func (p *pipeline) ColorTargets() []wgpu.ColorTargetState {
	return slices.Clone(p.colorTargets)
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	return slices.Clone(p.vertexLayouts)
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	case shader.ShaderTypeCompute:
		return p.computeShader
	default:
		return nil
	}
}

func (p *pipeline) EntryPoint(shaderType shader.ShaderType) string {
	s := p.Shader(shaderType)
	if s == nil {
		return ""
	}
	var override string
	switch shaderType {
	case shader.ShaderTypeVertex:
		override = p.vertexEntry
	case shader.ShaderTypeFragment:
		override = p.fragmentEntry
	case shader.ShaderTypeCompute:
		override = p.computeEntry
	}
	return common.Coalesce(override, s.EntryPoint())
}
