package resources

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-resources/engine/platform"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/gputest"
	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/pipeline"
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

const cameraJSON = `{"bindings": [[{"slot": 0, "visibility": ["vertex"], "type": "uniform"}]]}`

const meshPipelineJSON = `{
  "type": "raster",
  "layout": "bindings/camera.json",
  "vertex": {"shader_name": "shaders/mesh"},
  "fragment": {"shader_name": "shaders/mesh"},
  "rasterization_state": "default",
  "primitive_topology": "triangleList",
  "color_states": [{"format": "swap_chain_native", "color_blend": "replace", "alpha_blend": "replace"}],
  "depth_state": {"format": "default", "write_enabled": true, "compare": "less"},
  "vertex_state": {"type": "mesh"}
}`

// triangleGLTF returns a one-triangle document with 16-bit indices embedded as a data URI.
func triangleGLTF() []byte {
	var bin bytes.Buffer
	_ = binary.Write(&bin, binary.LittleEndian, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	_ = binary.Write(&bin, binary.LittleEndian, []uint16{0, 1, 2, 0})
	return []byte(fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
  "nodes": [{"mesh": 0}],
  "scenes": [{"nodes": [0]}]
}`, bin.Len(), base64.StdEncoding.EncodeToString(bin.Bytes())))
}

func testFiles() fstest.MapFS {
	return fstest.MapFS{
		"shaders/mesh.vert.wgsl": {Data: []byte(vertexWGSL)},
		"shaders/mesh.frag.wgsl": {Data: []byte(fragmentWGSL)},
		"bindings/camera.json":   {Data: []byte(cameraJSON)},
		"pipelines/mesh.json":    {Data: []byte(meshPipelineJSON)},
		"scenes/tri.gltf":        {Data: triangleGLTF()},
	}
}

func newTestManagers(ctx *gputest.Context, opts ...ResourceManagersBuilderOption) ResourceManagers {
	opts = append([]ResourceManagersBuilderOption{WithCompiler(nil), WithWorkers(2)}, opts...)
	return NewResourceManagers(ctx, platform.NewFileSystem(testFiles()), opts...)
}

func TestSceneDrivesPipelineConfiguration(t *testing.T) {
	ctx := gputest.NewContext()
	rm := newTestManagers(ctx)

	scene, err := rm.LoadScene("scenes/tri.gltf")
	require.NoError(t, err)
	require.Len(t, scene.Models, 1)
	mesh := scene.Models[0].Meshes()[0]

	cfg := pipeline.ConfigurationForMesh(mesh)
	assert.Equal(t, wgpu.IndexFormatUint32, cfg.IndexFormat)

	h, err := rm.LoadPipeline("pipelines/mesh.json", cfg)
	require.NoError(t, err)
	_, err = rm.Pipelines().ResolveRender(h)
	require.NoError(t, err)

	again, err := rm.LoadPipeline("pipelines/mesh.json", cfg)
	require.NoError(t, err)
	assert.Equal(t, h, again)
	assert.Equal(t, 1, ctx.Counts.RenderPipelines)

	require.Len(t, ctx.RenderPipelines, 1)
	assert.Len(t, ctx.RenderPipelines[0].Vertex.Buffers, 1)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, ctx.RenderPipelines[0].DepthStencil.Format)

	stats := rm.Profiler().Stats(resource.KindPipeline)
	assert.Equal(t, 2, stats.Loads)
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, uint64(44+12), rm.Profiler().Stats(resource.KindMesh).Bytes)
}

func TestLoadBindingsShared(t *testing.T) {
	ctx := gputest.NewContext()
	rm := newTestManagers(ctx)

	hs, err := rm.LoadBindings("bindings/camera.json")
	require.NoError(t, err)
	require.Len(t, hs, 1)

	_, err = rm.LoadPipeline("pipelines/mesh.json", pipeline.DefaultConfiguration())
	require.NoError(t, err)
	assert.Equal(t, 1, ctx.Counts.BindGroupLayouts)

	again, err := rm.LoadBindings("bindings/camera.json")
	require.NoError(t, err)
	assert.Equal(t, hs, again)
	assert.Equal(t, 1, rm.Profiler().Stats(resource.KindBindGroupLayout).Hits)
}

func TestDepthFormatOption(t *testing.T) {
	ctx := gputest.NewContext()
	rm := newTestManagers(ctx, WithDepthFormat(wgpu.TextureFormatDepth24Plus))
	assert.Equal(t, wgpu.TextureFormatDepth24Plus, rm.DepthFormat())

	_, err := rm.LoadPipeline("pipelines/mesh.json", pipeline.DefaultConfiguration())
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatDepth24Plus, ctx.RenderPipelines[0].DepthStencil.Format)
}

func TestLoadErrorsAreNotRecorded(t *testing.T) {
	rm := newTestManagers(gputest.NewContext())

	_, err := rm.LoadPipeline("pipelines/missing.json", pipeline.DefaultConfiguration())
	assert.Error(t, err)
	_, err = rm.LoadScene("scenes/missing.gltf")
	assert.Error(t, err)
	assert.Equal(t, 0, rm.Profiler().Stats(resource.KindPipeline).Loads)
	assert.Equal(t, 0, rm.Profiler().Stats(resource.KindMesh).Loads)
}

func TestReleaseFreesEverything(t *testing.T) {
	ctx := gputest.NewContext()
	rm := newTestManagers(ctx)

	_, err := rm.LoadScene("scenes/tri.gltf")
	require.NoError(t, err)
	_, err = rm.LoadPipeline("pipelines/mesh.json", pipeline.DefaultConfiguration())
	require.NoError(t, err)
	_, err = rm.Textures().CreateDepthTexture("depth", 64, 64, rm.DepthFormat())
	require.NoError(t, err)

	rm.Release()

	c := ctx.Counts
	created := c.ShaderModules + c.Buffers + c.BindGroupLayouts + c.PipelineLayouts +
		c.RenderPipelines + c.ComputePipelines + 2*c.Textures + c.Samplers
	assert.Equal(t, created, c.Released)
	assert.Equal(t, 0, rm.Buffers().Len())
	assert.Equal(t, 0, rm.Shaders().Len())
	assert.Equal(t, 0, rm.Pipelines().Len())
	assert.Equal(t, 0, rm.BindGroups().Len())
	assert.Equal(t, 0, rm.Textures().Len())
	assert.Equal(t, 0, rm.Scenes().Len())
}
