// Package gputest provides an in-memory GPUContext for tests. It never touches a
// device: created objects are zero-valued placeholders that only serve as identities,
// and every descriptor passed in is recorded for inspection.
package gputest

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-resources/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrInjected is returned by creation calls listed in Context.Fail.
var ErrInjected = errors.New("gputest: injected failure")

// Counts tallies native object creations by category.
type Counts struct {
	ShaderModules    int
	Buffers          int
	BindGroupLayouts int
	PipelineLayouts  int
	RenderPipelines  int
	ComputePipelines int
	Textures         int
	Samplers         int
	Released         int
}

// Context is a fake renderer.GPUContext.
type Context struct {
	Format wgpu.TextureFormat
	Counts Counts

	// Fail makes the named creation call return ErrInjected. Keys are the method names,
	// e.g. "CreateRenderPipeline".
	Fail map[string]bool

	ShaderModules    []wgpu.ShaderModuleDescriptor
	Buffers          []wgpu.BufferInitDescriptor
	BindGroupLayouts []wgpu.BindGroupLayoutDescriptor
	PipelineLayouts  []wgpu.PipelineLayoutDescriptor
	RenderPipelines  []wgpu.RenderPipelineDescriptor
	ComputePipelines []wgpu.ComputePipelineDescriptor
	Textures         []wgpu.TextureDescriptor
	Samplers         []wgpu.SamplerDescriptor
}

var _ renderer.GPUContext = &Context{}

// NewContext returns a fake context reporting BGRA8Unorm as its surface format.
func NewContext() *Context {
	return &Context{
		Format: wgpu.TextureFormatBGRA8Unorm,
		Fail:   make(map[string]bool),
	}
}

func (c *Context) SurfaceFormat() wgpu.TextureFormat {
	return c.Format
}

func (c *Context) CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error) {
	if c.Fail["CreateShaderModule"] {
		return nil, ErrInjected
	}
	c.Counts.ShaderModules++
	c.ShaderModules = append(c.ShaderModules, *desc)
	return new(wgpu.ShaderModule), nil
}

func (c *Context) CreateBufferInit(desc *wgpu.BufferInitDescriptor) (*wgpu.Buffer, error) {
	if c.Fail["CreateBufferInit"] {
		return nil, ErrInjected
	}
	c.Counts.Buffers++
	copied := *desc
	copied.Contents = append([]byte(nil), desc.Contents...)
	c.Buffers = append(c.Buffers, copied)
	return new(wgpu.Buffer), nil
}

func (c *Context) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	if c.Fail["CreateBindGroupLayout"] {
		return nil, ErrInjected
	}
	c.Counts.BindGroupLayouts++
	c.BindGroupLayouts = append(c.BindGroupLayouts, *desc)
	return new(wgpu.BindGroupLayout), nil
}

func (c *Context) CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	if c.Fail["CreatePipelineLayout"] {
		return nil, ErrInjected
	}
	c.Counts.PipelineLayouts++
	c.PipelineLayouts = append(c.PipelineLayouts, *desc)
	return new(wgpu.PipelineLayout), nil
}

func (c *Context) CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error) {
	if c.Fail["CreateRenderPipeline"] {
		return nil, ErrInjected
	}
	c.Counts.RenderPipelines++
	c.RenderPipelines = append(c.RenderPipelines, *desc)
	return new(wgpu.RenderPipeline), nil
}

func (c *Context) CreateComputePipeline(desc *wgpu.ComputePipelineDescriptor) (*wgpu.ComputePipeline, error) {
	if c.Fail["CreateComputePipeline"] {
		return nil, ErrInjected
	}
	c.Counts.ComputePipelines++
	c.ComputePipelines = append(c.ComputePipelines, *desc)
	return new(wgpu.ComputePipeline), nil
}

func (c *Context) CreateTexture(desc *wgpu.TextureDescriptor) (*wgpu.Texture, *wgpu.TextureView, error) {
	if c.Fail["CreateTexture"] {
		return nil, nil, ErrInjected
	}
	c.Counts.Textures++
	c.Textures = append(c.Textures, *desc)
	return new(wgpu.Texture), new(wgpu.TextureView), nil
}

func (c *Context) CreateSampler(desc *wgpu.SamplerDescriptor) (*wgpu.Sampler, error) {
	if c.Fail["CreateSampler"] {
		return nil, ErrInjected
	}
	c.Counts.Samplers++
	c.Samplers = append(c.Samplers, *desc)
	return new(wgpu.Sampler), nil
}

// ReleaseObject counts the release without calling into the object.
func (c *Context) ReleaseObject(obj renderer.Releaser) {
	if obj == nil {
		return
	}
	c.Counts.Released++
}

func (c *Context) Release() {}
