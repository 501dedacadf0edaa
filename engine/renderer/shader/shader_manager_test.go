package shader

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-resources/engine/platform"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/gputest"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vertexSource = `
// @vertex fn commented_out() {}
@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`

const fragmentSource = `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

const computeSource = `
/* @compute @workgroup_size(1) fn old() {} */
@compute @workgroup_size(64, 2)
fn cs_main() {}
`

type countingCompiler struct {
	calls  int
	stages []wgpu.ShaderStage
	err    error
}

func (c *countingCompiler) Compile(source string, stage wgpu.ShaderStage, label string) ([]byte, error) {
	c.calls++
	c.stages = append(c.stages, stage)
	if c.err != nil {
		return nil, c.err
	}
	return []byte{0x03, 0x02, 0x23, 0x07}, nil
}

func newTestManager(files fstest.MapFS, opts ...ManagerBuilderOption) (Manager, *gputest.Context, *countingCompiler) {
	ctx := gputest.NewContext()
	compiler := &countingCompiler{}
	opts = append([]ManagerBuilderOption{WithCompiler(compiler)}, opts...)
	return NewManager(ctx, platform.NewFileSystem(files), opts...), ctx, compiler
}

func TestLoadCompilesWGSL(t *testing.T) {
	m, ctx, compiler := newTestManager(fstest.MapFS{
		"shaders/basic.vert.wgsl": {Data: []byte(vertexSource)},
	})

	h, err := m.Load(ShaderTypeVertex, "shaders/basic")
	require.NoError(t, err)
	assert.Equal(t, resource.KindShader, h.Kind())
	assert.Equal(t, 1, compiler.calls)
	assert.Equal(t, []wgpu.ShaderStage{wgpu.ShaderStageVertex}, compiler.stages)

	s, err := m.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.Equal(t, "shaders/basic.vert", s.Key())
	assert.Equal(t, "shaders/basic.vert.wgsl", s.SourcePath())
	assert.False(t, s.Precompiled())
	assert.NotNil(t, s.Module())

	require.Len(t, ctx.ShaderModules, 1)
	assert.NotNil(t, ctx.ShaderModules[0].SPIRVDescriptor)
	assert.Nil(t, ctx.ShaderModules[0].WGSLDescriptor)
}

func TestLoadDeduplicatesByStageAndName(t *testing.T) {
	m, ctx, compiler := newTestManager(fstest.MapFS{
		"shaders/basic.vert.wgsl": {Data: []byte(vertexSource)},
		"shaders/basic.frag.wgsl": {Data: []byte(fragmentSource)},
	})

	v1, err := m.Load(ShaderTypeVertex, "shaders/basic")
	require.NoError(t, err)
	v2, err := m.Load(ShaderTypeVertex, "shaders/basic")
	require.NoError(t, err)
	f, err := m.Load(ShaderTypeFragment, "shaders/basic")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.NotEqual(t, v1, f)
	assert.Equal(t, 2, compiler.calls)
	assert.Equal(t, 2, ctx.Counts.ShaderModules)
	assert.Equal(t, 2, m.Len())
}

func TestLoadPrefersPrecompiled(t *testing.T) {
	files := fstest.MapFS{
		"shaders/basic.frag.wgsl": {Data: []byte(fragmentSource)},
		"shaders/basic.frag.spv":  {Data: []byte{1, 2, 3, 4}},
	}

	m, ctx, compiler := newTestManager(files)
	h, err := m.Load(ShaderTypeFragment, "shaders/basic")
	require.NoError(t, err)
	s, err := m.Resolve(h)
	require.NoError(t, err)

	assert.Equal(t, 0, compiler.calls)
	assert.True(t, s.Precompiled())
	assert.Equal(t, DefaultEntryPoint, s.EntryPoint())
	assert.Equal(t, []byte{1, 2, 3, 4}, ctx.ShaderModules[0].SPIRVDescriptor.Code)

	m, _, compiler = newTestManager(files, WithPreferPrecompiled(false))
	h, err = m.Load(ShaderTypeFragment, "shaders/basic")
	require.NoError(t, err)
	s, err = m.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, 1, compiler.calls)
	assert.Equal(t, "fs_main", s.EntryPoint())
}

func TestLoadWGSLPassthrough(t *testing.T) {
	ctx := gputest.NewContext()
	m := NewManager(ctx, platform.NewFileSystem(fstest.MapFS{
		"k.comp.wgsl": {Data: []byte(computeSource)},
	}), WithCompiler(nil))

	h, err := m.Load(ShaderTypeCompute, "k")
	require.NoError(t, err)
	s, err := m.Resolve(h)
	require.NoError(t, err)

	assert.Equal(t, "cs_main", s.EntryPoint())
	assert.Equal(t, [3]uint32{64, 2, 1}, s.WorkgroupSize())
	require.NotNil(t, ctx.ShaderModules[0].WGSLDescriptor)
	assert.Equal(t, computeSource, ctx.ShaderModules[0].WGSLDescriptor.Code)
}

func TestLoadErrors(t *testing.T) {
	m, _, _ := newTestManager(fstest.MapFS{
		"frag_only.frag.wgsl": {Data: []byte(fragmentSource)},
	})

	_, err := m.Load(ShaderTypeVertex, "missing")
	assert.Error(t, err)

	_, err = m.Load(ShaderTypeVertex, "frag_only")
	assert.Error(t, err, "vertex request for a file without a vertex entry point")

	var cfgErr *resource.ConfigError
	_, err = m.Load(ShaderTypeFragment+10, "frag_only")
	assert.Error(t, err)
	assert.False(t, errors.As(err, &cfgErr))
	assert.Equal(t, 0, m.Len())
}

func TestLoadMissingEntryPointIsConfigError(t *testing.T) {
	m, _, _ := newTestManager(fstest.MapFS{
		"s.vert.wgsl": {Data: []byte(fragmentSource)},
	})
	_, err := m.Load(ShaderTypeVertex, "s")

	var cfgErr *resource.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "s.vert.wgsl", cfgErr.Path)
	assert.Equal(t, "@vertex", cfgErr.Field)
}

func TestLoadCompileFailure(t *testing.T) {
	ctx := gputest.NewContext()
	compiler := &countingCompiler{err: errors.New("boom")}
	m := NewManager(ctx, platform.NewFileSystem(fstest.MapFS{
		"s.vert.wgsl": {Data: []byte(vertexSource)},
	}), WithCompiler(compiler))

	_, err := m.Load(ShaderTypeVertex, "s")
	assert.Error(t, err)
	assert.Equal(t, 0, ctx.Counts.ShaderModules)
}

func TestResolve(t *testing.T) {
	m, _, _ := newTestManager(fstest.MapFS{})
	_, err := m.Resolve(resource.New(resource.KindShader, 7))
	assert.ErrorIs(t, err, resource.ErrNotFound)

	assert.Panics(t, func() {
		_, _ = m.Resolve(resource.New(resource.KindBuffer, 1))
	})
}

func TestRelease(t *testing.T) {
	m, ctx, _ := newTestManager(fstest.MapFS{
		"s.vert.wgsl": {Data: []byte(vertexSource)},
	})
	h, err := m.Load(ShaderTypeVertex, "s")
	require.NoError(t, err)

	m.Release()
	assert.Equal(t, 1, ctx.Counts.Released)
	_, err = m.Resolve(h)
	assert.ErrorIs(t, err, resource.ErrNotFound)

	h2, err := m.Load(ShaderTypeVertex, "s")
	require.NoError(t, err)
	assert.NotEqual(t, h, h2)
}

func TestParseEntryPoint(t *testing.T) {
	assert.Equal(t, "vs_main", parseEntryPoint(vertexSource, ShaderTypeVertex))
	assert.Equal(t, "", parseEntryPoint(vertexSource, ShaderTypeFragment))
	assert.Equal(t, "cs_main", parseEntryPoint(computeSource, ShaderTypeCompute))
	assert.Equal(t, [3]uint32{1, 1, 1}, parseWorkgroupSize(vertexSource))
}

func TestShaderTypeHelpers(t *testing.T) {
	assert.Equal(t, "vert", ShaderTypeVertex.Extension())
	assert.Equal(t, "frag", ShaderTypeFragment.Extension())
	assert.Equal(t, "comp", ShaderTypeCompute.Extension())
	assert.Equal(t, wgpu.ShaderStageCompute, ShaderTypeCompute.Stage())
	assert.Equal(t, "fragment", ShaderTypeFragment.String())
}
