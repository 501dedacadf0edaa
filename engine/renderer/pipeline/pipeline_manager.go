// Package pipeline builds raster and compute pipelines from JSON pipeline files.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-resources/engine/platform"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/bind_group_loader"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// cacheKey identifies one pipeline instantiation.
type cacheKey struct {
	path string
	cfg  Configuration
}

// manager is the implementation of the Manager interface.
type manager struct {
	ctx        renderer.GPUContext
	fs         platform.FileSystem
	shaders    shader.Manager
	bindGroups bind_group_loader.Loader
	logger     *slog.Logger

	defaultDepthFormat wgpu.TextureFormat

	counter   uint64
	pipelines map[uint64]*pipeline
	byKey     map[cacheKey]resource.Handle
}

// Manager builds pipelines from pipeline files. A (path, configuration) pair is built at
// most once; later loads return the first handle. It is not safe for concurrent use.
type Manager interface {
	// Load parses the pipeline file at path, loads the shaders and binding sets it names,
	// and creates the native pipeline. The returned handle carries SubTagCompute for
	// compute pipelines and SubTagIndex16 for 16-bit index configurations.
	//
	// Parameters:
	//   - path: the pipeline file path
	//   - cfg: the build configuration
	//
	// Returns:
	//   - resource.Handle: a handle tagged KindPipeline
	//   - error: a *resource.ConfigError for a bad file, or a load/creation error
	Load(path string, cfg Configuration) (resource.Handle, error)

	// Resolve returns the pipeline record. It panics if the handle is not tagged KindPipeline.
	//
	// Parameters:
	//   - h: the pipeline handle
	//
	// Returns:
	//   - Pipeline: the record
	//   - error: resource.ErrNotFound if the handle was not issued by this manager
	Resolve(h resource.Handle) (Pipeline, error)

	// ResolveRender returns the native render pipeline. It panics if the handle is not
	// tagged KindPipeline or carries SubTagCompute.
	//
	// Parameters:
	//   - h: the pipeline handle
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the native pipeline
	//   - error: resource.ErrNotFound if the handle was not issued by this manager
	ResolveRender(h resource.Handle) (*wgpu.RenderPipeline, error)

	// ResolveCompute returns the native compute pipeline. It panics if the handle is not
	// tagged KindPipeline or lacks SubTagCompute.
	//
	// Parameters:
	//   - h: the pipeline handle
	//
	// Returns:
	//   - *wgpu.ComputePipeline: the native pipeline
	//   - error: resource.ErrNotFound if the handle was not issued by this manager
	ResolveCompute(h resource.Handle) (*wgpu.ComputePipeline, error)

	// ResolveBindGroupLayout returns a layout referenced by a pipeline, delegating to the
	// binding group loader.
	//
	// Parameters:
	//   - h: a KindBindGroupLayout handle
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the native layout
	//   - error: resource.ErrNotFound if the handle is unknown
	ResolveBindGroupLayout(h resource.Handle) (*wgpu.BindGroupLayout, error)

	// Len returns the number of live pipelines.
	//
	// Returns:
	//   - int: the pipeline count
	Len() int

	// Release frees every pipeline and pipeline layout. Shaders and bind group layouts
	// belong to their own managers and are left alone.
	Release()
}

var _ Manager = &manager{}

// NewManager creates a pipeline Manager. Shaders and binding sets named by pipeline files
// are loaded through the given managers, so they share their caches.
//
// Parameters:
//   - ctx: the GPU context to create pipelines through
//   - fs: the file system holding pipeline files
//   - shaders: the shader manager
//   - bindGroups: the binding group loader
//   - opts: a variadic list of ManagerBuilderOption functions
//
// Returns:
//   - Manager: the pipeline manager
func NewManager(ctx renderer.GPUContext, fs platform.FileSystem, shaders shader.Manager, bindGroups bind_group_loader.Loader, opts ...ManagerBuilderOption) Manager {
	m := &manager{
		ctx:                ctx,
		fs:                 fs,
		shaders:            shaders,
		bindGroups:         bindGroups,
		logger:             slog.Default(),
		defaultDepthFormat: wgpu.TextureFormatDepth32Float,
		pipelines:          make(map[uint64]*pipeline),
		byKey:              make(map[cacheKey]resource.Handle),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *manager) Load(path string, cfg Configuration) (resource.Handle, error) {
	cfg = cfg.normalized()
	key := cacheKey{path: path, cfg: cfg}
	if h, ok := m.byKey[key]; ok {
		m.logger.Debug("pipeline cache hit", slog.String("path", path), slog.String("handle", h.String()))
		return h, nil
	}

	data, err := m.fs.LoadBytes(path)
	if err != nil {
		return resource.Handle{}, fmt.Errorf("failed to load pipeline description: %w", err)
	}
	d, err := parseDescriptor(path, data)
	if err != nil {
		return resource.Handle{}, err
	}
	requested := key
	if cfg = cfg.folded(d); cfg != requested.cfg {
		key = cacheKey{path: path, cfg: cfg}
		if h, ok := m.byKey[key]; ok {
			m.byKey[requested] = h
			m.logger.Debug("pipeline cache hit", slog.String("path", path), slog.String("handle", h.String()))
			return h, nil
		}
	}

	pipelineKey := fmt.Sprintf("%s|%s", path, cfg)
	opts := []PipelineBuilderOption{WithSource(path, cfg)}

	layoutHandles, nativeLayouts, err := m.resolveLayouts(d.layouts)
	if err != nil {
		return resource.Handle{}, fmt.Errorf("pipeline %s: %w", path, err)
	}
	opts = append(opts, WithBindGroupLayouts(layoutHandles...))

	stageOpts, err := m.resolveStages(d)
	if err != nil {
		return resource.Handle{}, fmt.Errorf("pipeline %s: %w", path, err)
	}
	opts = append(opts, stageOpts...)

	if d.pipelineType == PipelineTypeRender {
		opts = append(opts, m.renderOptions(d, cfg)...)
	}
	p := newPipeline(pipelineKey, d.pipelineType, opts...)

	p.layout, err = m.ctx.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            pipelineKey,
		BindGroupLayouts: nativeLayouts,
	})
	if err != nil {
		return resource.Handle{}, fmt.Errorf("failed to create pipeline layout for %s: %w", path, err)
	}

	if err := m.createNative(p); err != nil {
		m.ctx.ReleaseObject(p.layout)
		return resource.Handle{}, fmt.Errorf("failed to create %s pipeline %s: %w", d.pipelineType, path, err)
	}

	m.counter++
	h := resource.NewTagged(resource.KindPipeline, cfg.subTag(d.pipelineType), m.counter)
	p.handle = h
	m.pipelines[m.counter] = p
	m.byKey[key] = h
	m.byKey[requested] = h

	m.logger.Info("pipeline loaded",
		slog.String("path", path),
		slog.String("type", d.pipelineType.String()),
		slog.String("configuration", cfg.String()),
		slog.String("handle", h.String()))
	return h, nil
}

// resolveLayouts loads every binding set file in order and flattens their sets into
// bind group order.
func (m *manager) resolveLayouts(paths []string) ([]resource.Handle, []*wgpu.BindGroupLayout, error) {
	var handles []resource.Handle
	var layouts []*wgpu.BindGroupLayout
	for _, p := range paths {
		sets, err := m.bindGroups.Load(p)
		if err != nil {
			return nil, nil, err
		}
		for _, h := range sets {
			bgl, err := m.bindGroups.Resolve(h)
			if err != nil {
				return nil, nil, err
			}
			handles = append(handles, h)
			layouts = append(layouts, bgl)
		}
	}
	return handles, layouts, nil
}

func (m *manager) resolveStages(d *descriptor) ([]PipelineBuilderOption, error) {
	load := func(shaderType shader.ShaderType, ref *stageRef) (shader.Shader, error) {
		h, err := m.shaders.Load(shaderType, ref.name)
		if err != nil {
			return nil, err
		}
		return m.shaders.Resolve(h)
	}

	var opts []PipelineBuilderOption
	if d.compute != nil {
		s, err := load(shader.ShaderTypeCompute, d.compute)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithComputeShader(s, d.compute.entryPoint))
	}
	if d.vertex != nil {
		s, err := load(shader.ShaderTypeVertex, d.vertex)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithVertexShader(s, d.vertex.entryPoint))
	}
	if d.fragment != nil {
		s, err := load(shader.ShaderTypeFragment, d.fragment)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithFragmentShader(s, d.fragment.entryPoint))
	}
	return opts, nil
}

// renderOptions translates the render state of a descriptor, filling in the surface
// format and the session depth format where the file asks for them.
func (m *manager) renderOptions(d *descriptor, cfg Configuration) []PipelineBuilderOption {
	opts := []PipelineBuilderOption{
		WithFrontFace(d.frontFace),
		WithCullMode(d.cullMode),
		WithDepthBias(d.depthBias, d.slopeScale, d.biasClamp),
		WithTopology(d.topology),
		WithSampleCount(d.sampleCount),
		WithVertexLayouts(vertexLayouts(d.vertexState.attributes(cfg))...),
	}
	if d.topology == wgpu.PrimitiveTopologyLineStrip || d.topology == wgpu.PrimitiveTopologyTriangleStrip {
		opts = append(opts, WithStripIndexFormat(cfg.IndexFormat))
	}

	for _, c := range d.colors {
		format := c.format
		if c.swapChain {
			format = m.ctx.SurfaceFormat()
		}
		opts = append(opts, WithColorTargets(wgpu.ColorTargetState{
			Format:    format,
			Blend:     c.blend,
			WriteMask: c.writeMask,
		}))
	}

	if d.depth != nil {
		format := d.depth.format
		if d.depth.useDefault {
			format = m.defaultDepthFormat
		}
		opts = append(opts, WithDepthStencil(&wgpu.DepthStencilState{
			Format:            format,
			DepthWriteEnabled: d.depth.writeEnabled,
			DepthCompare:      d.depth.compare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}))
	}
	return opts
}

// createNative creates the native pipeline object for a fully populated record.
func (m *manager) createNative(p *pipeline) error {
	if p.pipelineType == PipelineTypeCompute {
		created, err := m.ctx.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
			Label:  p.pipelineKey + " Compute Pipeline",
			Layout: p.layout,
			Compute: wgpu.ProgrammableStageDescriptor{
				Module:     p.computeShader.Module(),
				EntryPoint: p.EntryPoint(shader.ShaderTypeCompute),
			},
		})
		if err != nil {
			return err
		}
		p.computePipeline = created
		return nil
	}

	var depthStencil *wgpu.DepthStencilState
	if p.depthStencil != nil {
		ds := *p.depthStencil
		ds.DepthBias = p.depthBias
		ds.DepthBiasSlopeScale = p.depthBiasSlopeScale
		ds.DepthBiasClamp = p.depthBiasClamp
		depthStencil = &ds
	}

	var fragment *wgpu.FragmentState
	if p.fragmentShader != nil {
		fragment = &wgpu.FragmentState{
			Module:     p.fragmentShader.Module(),
			EntryPoint: p.EntryPoint(shader.ShaderTypeFragment),
			Targets:    p.colorTargets,
		}
	}

	created, err := m.ctx.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.pipelineKey + " Render Pipeline",
		Layout: p.layout,
		Vertex: wgpu.VertexState{
			Module:     p.vertexShader.Module(),
			EntryPoint: p.EntryPoint(shader.ShaderTypeVertex),
			Buffers:    p.vertexLayouts,
		},
		Fragment: fragment,
		Primitive: wgpu.PrimitiveState{
			Topology:         p.topology,
			StripIndexFormat: p.stripIndexFormat,
			FrontFace:        p.frontFace,
			CullMode:         p.cullMode,
		},
		DepthStencil: depthStencil,
		Multisample: wgpu.MultisampleState{
			Count: p.sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return err
	}
	p.renderPipeline = created
	return nil
}

func (m *manager) lookup(h resource.Handle) (*pipeline, error) {
	p, ok := m.pipelines[h.Counter()]
	if !ok || p.handle != h {
		return nil, resource.NotFound(h)
	}
	return p, nil
}

func (m *manager) Resolve(h resource.Handle) (Pipeline, error) {
	h.MustBe(resource.KindPipeline)
	p, err := m.lookup(h)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (m *manager) ResolveRender(h resource.Handle) (*wgpu.RenderPipeline, error) {
	h.MustBe(resource.KindPipeline)
	if h.HasSubTag(SubTagCompute) {
		panic(fmt.Sprintf("pipeline: compute handle %s used as a render pipeline", h))
	}
	p, err := m.lookup(h)
	if err != nil {
		return nil, err
	}
	return p.renderPipeline, nil
}

func (m *manager) ResolveCompute(h resource.Handle) (*wgpu.ComputePipeline, error) {
	h.MustBe(resource.KindPipeline).MustHaveSubTag(SubTagCompute)
	p, err := m.lookup(h)
	if err != nil {
		return nil, err
	}
	return p.computePipeline, nil
}

func (m *manager) ResolveBindGroupLayout(h resource.Handle) (*wgpu.BindGroupLayout, error) {
	return m.bindGroups.Resolve(h)
}

func (m *manager) Len() int {
	return len(m.pipelines)
}

func (m *manager) Release() {
	for key, p := range m.pipelines {
		switch p.pipelineType {
		case PipelineTypeRender:
			m.ctx.ReleaseObject(p.renderPipeline)
		case PipelineTypeCompute:
			m.ctx.ReleaseObject(p.computePipeline)
		}
		m.ctx.ReleaseObject(p.layout)
		delete(m.pipelines, key)
	}
	clear(m.byKey)
}
