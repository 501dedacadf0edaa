package pipeline

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-resources/engine/model"
	"github.com/Carmen-Shannon/oxy-resources/engine/platform"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/bind_group_loader"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/gputest"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexWGSL = `
@vertex
fn vs_main(@location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 1.0);
}
`

const fragmentWGSL = `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`

const computeWGSL = `
@compute @workgroup_size(8, 8)
fn cs_main() {}
`

const cameraJSON = `{"bindings": [[{"slot": 0, "visibility": ["vertex"], "type": "uniform"}]]}`

const lightsJSON = `{"bindings": [
  [{"slot": 0, "visibility": ["fragment"], "type": "storage", "storage_config": {"read_only": true}}],
  [{"slot": 0, "visibility": ["fragment"], "type": "sampler"}]
]}`

const rasterJSON = `{
  "type": "raster",
  "layout": "bindings/camera.json",
  "vertex": {"shader_name": "shaders/basic"},
  "fragment": {"shader_name": "shaders/basic"},
  "rasterization_state": "default",
  "primitive_topology": "triangleList",
  "color_states": [{"format": "swap_chain_native", "color_blend": "replace", "alpha_blend": "replace"}],
  "depth_state": {"format": "default", "write_enabled": true, "compare": "less"},
  "vertex_state": {"type": "position_normal"}
}`

const stripJSON = `{
  "type": "raster",
  "layout": ["bindings/camera.json", "bindings/lights.json"],
  "vertex": {"shader_name": "shaders/basic", "entry_point": "vs_strip"},
  "fragment": null,
  "rasterization_state": {"front_facing": "cw", "cull_mode": "none", "depth_bias": 2, "slope_scale": 1.5, "bias_clamp": 0.25},
  "primitive_topology": "triangleStrip",
  "depth_state": {"format": "depth24plus", "write_enabled": false, "compare": "less_equal"},
  "vertex_state": {"type": "mesh"},
  "sample_count": 4
}`

const blendJSON = `{
  "type": "raster",
  "vertex": {"shader_name": "shaders/basic"},
  "fragment": {"shader_name": "shaders/basic"},
  "rasterization_state": {"type": "default"},
  "primitive_topology": "triangleList",
  "color_states": [{"format": "rgba16float", "color_blend": "over", "alpha_blend": "additive", "write_mask": "rgb"}],
  "vertex_state": {"type": "none"}
}`

const computeJSON = `{
  "type": "compute",
  "layout": "bindings/lights.json",
  "compute": {"shader_name": "shaders/cull"}
}`

func testFiles() fstest.MapFS {
	return fstest.MapFS{
		"shaders/basic.vert.wgsl": {Data: []byte(vertexWGSL)},
		"shaders/basic.frag.wgsl": {Data: []byte(fragmentWGSL)},
		"shaders/cull.comp.wgsl":  {Data: []byte(computeWGSL)},
		"bindings/camera.json":    {Data: []byte(cameraJSON)},
		"bindings/lights.json":    {Data: []byte(lightsJSON)},
		"pipelines/raster.json":   {Data: []byte(rasterJSON)},
		"pipelines/strip.json":    {Data: []byte(stripJSON)},
		"pipelines/blend.json":    {Data: []byte(blendJSON)},
		"pipelines/compute.json":  {Data: []byte(computeJSON)},
	}
}

type fixture struct {
	ctx        *gputest.Context
	shaders    shader.Manager
	bindGroups bind_group_loader.Loader
	pipelines  Manager
}

func newFixture(files fstest.MapFS, opts ...ManagerBuilderOption) *fixture {
	ctx := gputest.NewContext()
	fs := platform.NewFileSystem(files)
	shaders := shader.NewManager(ctx, fs, shader.WithCompiler(nil))
	bindGroups := bind_group_loader.NewLoader(ctx, fs)
	return &fixture{
		ctx:        ctx,
		shaders:    shaders,
		bindGroups: bindGroups,
		pipelines:  NewManager(ctx, fs, shaders, bindGroups, opts...),
	}
}

func TestLoadRasterEndToEnd(t *testing.T) {
	f := newFixture(testFiles())

	h, err := f.pipelines.Load("pipelines/raster.json", DefaultConfiguration())
	require.NoError(t, err)
	assert.Equal(t, resource.KindPipeline, h.Kind())
	assert.False(t, h.HasSubTag(SubTagCompute))

	rp, err := f.pipelines.ResolveRender(h)
	require.NoError(t, err)
	assert.NotNil(t, rp)
	assert.Panics(t, func() {
		_, _ = f.pipelines.ResolveCompute(h)
	})

	require.Len(t, f.ctx.RenderPipelines, 1)
	desc := f.ctx.RenderPipelines[0]
	assert.Equal(t, "vs_main", desc.Vertex.EntryPoint)
	require.NotNil(t, desc.Fragment)
	assert.Equal(t, "fs_main", desc.Fragment.EntryPoint)
	require.Len(t, desc.Fragment.Targets, 1)
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, desc.Fragment.Targets[0].Format)
	assert.Nil(t, desc.Fragment.Targets[0].Blend)
	assert.Equal(t, wgpu.ColorWriteMaskAll, desc.Fragment.Targets[0].WriteMask)
	assert.Equal(t, wgpu.FrontFaceCCW, desc.Primitive.FrontFace)
	assert.Equal(t, wgpu.CullModeBack, desc.Primitive.CullMode)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, desc.Primitive.Topology)
	assert.Equal(t, wgpu.IndexFormatUndefined, desc.Primitive.StripIndexFormat)
	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, desc.DepthStencil.Format)
	assert.Equal(t, wgpu.CompareFunctionLess, desc.DepthStencil.DepthCompare)
	assert.Equal(t, uint32(1), desc.Multisample.Count)

	require.Len(t, desc.Vertex.Buffers, 2)
	assert.Equal(t, uint64(12), desc.Vertex.Buffers[1].ArrayStride)
	assert.Equal(t, uint32(1), desc.Vertex.Buffers[1].Attributes[0].ShaderLocation)

	require.Len(t, f.ctx.PipelineLayouts, 1)
	assert.Len(t, f.ctx.PipelineLayouts[0].BindGroupLayouts, 1)

	p, err := f.pipelines.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, PipelineTypeRender, p.Type())
	assert.Equal(t, "pipelines/raster.json", p.Path())
	assert.Len(t, p.BindGroupLayouts(), 1)
	assert.NotNil(t, p.Shader(shader.ShaderTypeFragment))
	assert.Nil(t, p.Shader(shader.ShaderTypeCompute))

	bgl, err := f.pipelines.ResolveBindGroupLayout(p.BindGroupLayouts()[0])
	require.NoError(t, err)
	assert.NotNil(t, bgl)
}

func TestLoadCachesByPathAndConfiguration(t *testing.T) {
	f := newFixture(testFiles())
	cfg32 := DefaultConfiguration()
	cfg16 := cfg32
	cfg16.IndexFormat = wgpu.IndexFormatUint16

	a, err := f.pipelines.Load("pipelines/raster.json", cfg32)
	require.NoError(t, err)
	b, err := f.pipelines.Load("pipelines/raster.json", cfg32)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, f.ctx.Counts.RenderPipelines)

	c, err := f.pipelines.Load("pipelines/raster.json", cfg16)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
	assert.True(t, c.HasSubTag(SubTagIndex16))
	assert.False(t, a.HasSubTag(SubTagIndex16))
	assert.Equal(t, 2, f.ctx.Counts.RenderPipelines)

	_, err = f.pipelines.ResolveRender(a)
	require.NoError(t, err)
	_, err = f.pipelines.ResolveRender(c)
	require.NoError(t, err)

	// shaders and binding sets are shared between both instantiations
	assert.Equal(t, 2, f.ctx.Counts.ShaderModules)
	assert.Equal(t, 1, f.ctx.Counts.BindGroupLayouts)

	// an unset index format is the same as 32-bit
	d, err := f.pipelines.Load("pipelines/raster.json", Configuration{VertexAttributes: cfg32.VertexAttributes})
	require.NoError(t, err)
	assert.Equal(t, a, d)
}

func TestLoadStripAndMeshPreset(t *testing.T) {
	f := newFixture(testFiles())
	cfg := Configuration{
		IndexFormat:      wgpu.IndexFormatUint16,
		VertexAttributes: model.Attributes(model.SemanticPosition, model.SemanticTexCoord0),
	}

	h, err := f.pipelines.Load("pipelines/strip.json", cfg)
	require.NoError(t, err)

	desc := f.ctx.RenderPipelines[0]
	assert.Nil(t, desc.Fragment)
	assert.Equal(t, "vs_strip", desc.Vertex.EntryPoint)
	assert.Equal(t, wgpu.IndexFormatUint16, desc.Primitive.StripIndexFormat)
	assert.Equal(t, wgpu.FrontFaceCW, desc.Primitive.FrontFace)
	assert.Equal(t, wgpu.CullModeNone, desc.Primitive.CullMode)
	assert.Equal(t, uint32(4), desc.Multisample.Count)

	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, wgpu.TextureFormatDepth24Plus, desc.DepthStencil.Format)
	assert.False(t, desc.DepthStencil.DepthWriteEnabled)
	assert.Equal(t, int32(2), desc.DepthStencil.DepthBias)
	assert.Equal(t, float32(1.5), desc.DepthStencil.DepthBiasSlopeScale)
	assert.Equal(t, float32(0.25), desc.DepthStencil.DepthBiasClamp)

	require.Len(t, desc.Vertex.Buffers, 2)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, desc.Vertex.Buffers[1].Attributes[0].Format)
	assert.Equal(t, uint32(2), desc.Vertex.Buffers[1].Attributes[0].ShaderLocation)

	// camera contributes one set and lights two, in file order
	assert.Len(t, f.ctx.PipelineLayouts[0].BindGroupLayouts, 3)
	p, err := f.pipelines.Resolve(h)
	require.NoError(t, err)
	assert.Len(t, p.BindGroupLayouts(), 3)
	assert.Equal(t, "vs_strip", p.EntryPoint(shader.ShaderTypeVertex))
}

func TestLoadBlendStates(t *testing.T) {
	f := newFixture(testFiles())
	_, err := f.pipelines.Load("pipelines/blend.json", DefaultConfiguration())
	require.NoError(t, err)

	desc := f.ctx.RenderPipelines[0]
	target := desc.Fragment.Targets[0]
	assert.Equal(t, wgpu.TextureFormatRGBA16Float, target.Format)
	require.NotNil(t, target.Blend)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, target.Blend.Color.DstFactor)
	assert.Equal(t, wgpu.BlendFactorOne, target.Blend.Alpha.DstFactor)
	assert.Equal(t, wgpu.ColorWriteMaskRed|wgpu.ColorWriteMaskGreen|wgpu.ColorWriteMaskBlue, target.WriteMask)
	assert.Nil(t, desc.DepthStencil)
	assert.Empty(t, desc.Vertex.Buffers)
}

func TestLoadCompute(t *testing.T) {
	f := newFixture(testFiles())

	h, err := f.pipelines.Load("pipelines/compute.json", DefaultConfiguration())
	require.NoError(t, err)
	assert.True(t, h.HasSubTag(SubTagCompute))

	cp, err := f.pipelines.ResolveCompute(h)
	require.NoError(t, err)
	assert.NotNil(t, cp)
	assert.Panics(t, func() {
		_, _ = f.pipelines.ResolveRender(h)
	})

	require.Len(t, f.ctx.ComputePipelines, 1)
	assert.Equal(t, "cs_main", f.ctx.ComputePipelines[0].Compute.EntryPoint)

	p, err := f.pipelines.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, [3]uint32{8, 8, 1}, p.Shader(shader.ShaderTypeCompute).WorkgroupSize())
}

func TestDefaultDepthFormatOption(t *testing.T) {
	f := newFixture(testFiles(), WithDefaultDepthFormat(wgpu.TextureFormatDepth24PlusStencil8))
	_, err := f.pipelines.Load("pipelines/raster.json", DefaultConfiguration())
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatDepth24PlusStencil8, f.ctx.RenderPipelines[0].DepthStencil.Format)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
		cause error
	}{
		{"malformed", `{"type": `, "", resource.ErrMalformed},
		{"missing type", `{}`, "type", resource.ErrMissingField},
		{"unknown type", `{"type": "mesh_shader"}`, "type", resource.ErrUnknownValue},
		{"compute without stage", `{"type": "compute"}`, "compute", resource.ErrMissingField},
		{"raster without vertex", `{"type": "raster"}`, "vertex", resource.ErrMissingField},
		{
			"unknown raster preset",
			`{"type": "raster", "vertex": {"shader_name": "v"}, "rasterization_state": "fancy"}`,
			"rasterization_state", resource.ErrUnknownValue,
		},
		{
			"explicit raster missing bias",
			`{"type": "raster", "vertex": {"shader_name": "v"},
			  "rasterization_state": {"front_facing": "ccw", "cull_mode": "back"}}`,
			"rasterization_state.depth_bias", resource.ErrMissingField,
		},
		{
			"unknown topology",
			`{"type": "raster", "vertex": {"shader_name": "v"}, "rasterization_state": "default",
			  "primitive_topology": "quadList"}`,
			"primitive_topology", resource.ErrUnknownValue,
		},
		{
			"fragment without color states",
			`{"type": "raster", "vertex": {"shader_name": "v"}, "fragment": {"shader_name": "f"},
			  "rasterization_state": "default", "primitive_topology": "triangleList"}`,
			"color_states", resource.ErrMissingField,
		},
		{
			"unknown blend",
			`{"type": "raster", "vertex": {"shader_name": "v"}, "rasterization_state": "default",
			  "primitive_topology": "triangleList",
			  "color_states": [{"format": "swap_chain_native", "color_blend": "multiply", "alpha_blend": "replace"}]}`,
			"color_states[0].color_blend", resource.ErrUnknownValue,
		},
		{
			"missing alpha blend",
			`{"type": "raster", "vertex": {"shader_name": "v"}, "rasterization_state": "default",
			  "primitive_topology": "triangleList",
			  "color_states": [{"format": "swap_chain_native", "color_blend": "replace"}]}`,
			"color_states[0].alpha_blend", resource.ErrMissingField,
		},
		{
			"unknown color format",
			`{"type": "raster", "vertex": {"shader_name": "v"}, "rasterization_state": "default",
			  "primitive_topology": "triangleList",
			  "color_states": [{"format": "rgb565", "color_blend": "replace", "alpha_blend": "replace"}]}`,
			"color_states[0].format", resource.ErrUnknownValue,
		},
		{
			"unknown depth compare",
			`{"type": "raster", "vertex": {"shader_name": "v"}, "rasterization_state": "default",
			  "primitive_topology": "triangleList", "depth_state": {"format": "default", "compare": "sometimes"}}`,
			"depth_state.compare", resource.ErrUnknownValue,
		},
		{
			"missing vertex state",
			`{"type": "raster", "vertex": {"shader_name": "v"}, "rasterization_state": "default",
			  "primitive_topology": "triangleList"}`,
			"vertex_state", resource.ErrMissingField,
		},
		{
			"unsupported sample count",
			`{"type": "raster", "vertex": {"shader_name": "v"}, "rasterization_state": "default",
			  "primitive_topology": "triangleList", "vertex_state": {"type": "none"}, "sample_count": 3}`,
			"sample_count", resource.ErrUnsupported,
		},
		{"bad layout", `{"type": "compute", "layout": 7, "compute": {"shader_name": "c"}}`, "layout", resource.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(fstest.MapFS{"bad.json": {Data: []byte(tt.doc)}})
			_, err := f.pipelines.Load("bad.json", DefaultConfiguration())

			var cfgErr *resource.ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, "bad.json", cfgErr.Path)
			if tt.field != "" {
				assert.Equal(t, tt.field, cfgErr.Field)
			}
			assert.ErrorIs(t, err, tt.cause)
			assert.Equal(t, 0, f.pipelines.Len())
			assert.Equal(t, 0, f.ctx.Counts.ShaderModules)
		})
	}
}

func TestLoadDependencyErrors(t *testing.T) {
	files := testFiles()
	files["pipelines/missing_shader.json"] = &fstest.MapFile{Data: []byte(`{
	  "type": "compute", "compute": {"shader_name": "shaders/nope"}}`)}
	files["pipelines/missing_layout.json"] = &fstest.MapFile{Data: []byte(`{
	  "type": "compute", "layout": "bindings/nope.json", "compute": {"shader_name": "shaders/cull"}}`)}
	f := newFixture(files)

	_, err := f.pipelines.Load("pipelines/missing_shader.json", DefaultConfiguration())
	assert.Error(t, err)
	_, err = f.pipelines.Load("pipelines/missing_layout.json", DefaultConfiguration())
	assert.Error(t, err)
	_, err = f.pipelines.Load("pipelines/absent.json", DefaultConfiguration())
	assert.Error(t, err)
	assert.Equal(t, 0, f.pipelines.Len())
}

func TestLoadNativeFailureReleasesLayout(t *testing.T) {
	f := newFixture(testFiles())
	f.ctx.Fail["CreateRenderPipeline"] = true

	_, err := f.pipelines.Load("pipelines/raster.json", DefaultConfiguration())
	assert.ErrorIs(t, err, gputest.ErrInjected)
	assert.Equal(t, 1, f.ctx.Counts.PipelineLayouts)
	assert.Equal(t, 1, f.ctx.Counts.Released)
	assert.Equal(t, 0, f.pipelines.Len())
}

func TestResolveAndRelease(t *testing.T) {
	f := newFixture(testFiles())
	h, err := f.pipelines.Load("pipelines/compute.json", DefaultConfiguration())
	require.NoError(t, err)

	assert.Panics(t, func() {
		_, _ = f.pipelines.Resolve(resource.New(resource.KindShader, 1))
	})
	_, err = f.pipelines.Resolve(resource.NewTagged(resource.KindPipeline, 0, 99))
	assert.ErrorIs(t, err, resource.ErrNotFound)

	f.pipelines.Release()
	assert.Equal(t, 2, f.ctx.Counts.Released)
	assert.Equal(t, 0, f.pipelines.Len())
	_, err = f.pipelines.ResolveCompute(h)
	assert.ErrorIs(t, err, resource.ErrNotFound)

	// shaders are untouched and the reload reuses them
	again, err := f.pipelines.Load("pipelines/compute.json", DefaultConfiguration())
	require.NoError(t, err)
	assert.NotEqual(t, h, again)
	assert.Equal(t, 1, f.ctx.Counts.ShaderModules)
}

func TestConfigurationForMesh(t *testing.T) {
	mesh := model.NewMesh("m", 3, wgpu.PrimitiveTopologyTriangleList, []model.BufferMapper{
		{Semantic: model.SemanticPosition},
		{Semantic: model.SemanticNormal},
	}, &model.IndexMapper{Length: 12, Count: 3})

	cfg := ConfigurationForMesh(mesh)
	assert.Equal(t, wgpu.IndexFormatUint32, cfg.IndexFormat)
	assert.Equal(t, model.Attributes(model.SemanticPosition, model.SemanticNormal), cfg.VertexAttributes)
	assert.Equal(t, resource.SubTag(0), cfg.subTag(PipelineTypeRender))
	assert.Equal(t, SubTagCompute, cfg.subTag(PipelineTypeCompute))
}

func TestResolveRequiresIssuedSubTag(t *testing.T) {
	f := newFixture(testFiles())
	h, err := f.pipelines.Load("pipelines/compute.json", DefaultConfiguration())
	require.NoError(t, err)

	stripped := resource.NewTagged(resource.KindPipeline, 0, h.Counter())
	p, err := f.pipelines.ResolveRender(stripped)
	assert.ErrorIs(t, err, resource.ErrNotFound)
	assert.Nil(t, p)
	_, err = f.pipelines.Resolve(stripped)
	assert.ErrorIs(t, err, resource.ErrNotFound)

	_, err = f.pipelines.ResolveCompute(h)
	assert.NoError(t, err)
}

func TestLoadFoldsUnusedVertexAttributes(t *testing.T) {
	f := newFixture(testFiles())
	a, err := f.pipelines.Load("pipelines/raster.json", DefaultConfiguration())
	require.NoError(t, err)

	other := DefaultConfiguration()
	other.VertexAttributes = model.Attributes(model.SemanticPosition)
	b, err := f.pipelines.Load("pipelines/raster.json", other)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, f.ctx.Counts.RenderPipelines)
	assert.Equal(t, 1, f.pipelines.Len())

	// the mesh preset reads the attributes, so they stay part of the key
	_, err = f.pipelines.Load("pipelines/strip.json", other)
	require.NoError(t, err)
	_, err = f.pipelines.Load("pipelines/strip.json", DefaultConfiguration())
	require.NoError(t, err)
	assert.Equal(t, 3, f.ctx.Counts.RenderPipelines)
}
