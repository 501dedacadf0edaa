package texture

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/gputest"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDepthTexture(t *testing.T) {
	ctx := gputest.NewContext()
	m := NewManager(ctx)

	h, err := m.CreateDepthTexture("depth", 640, 480, wgpu.TextureFormatDepth32Float)
	require.NoError(t, err)
	assert.Equal(t, resource.KindTexture, h.Kind())

	tex, err := m.Resolve(h)
	require.NoError(t, err)
	assert.NotNil(t, tex.Texture)
	assert.NotNil(t, tex.View)
	assert.NotNil(t, tex.Sampler)
	assert.Equal(t, uint32(640), tex.Width)

	require.Len(t, ctx.Textures, 1)
	desc := ctx.Textures[0]
	assert.Equal(t, wgpu.TextureFormatDepth32Float, desc.Format)
	assert.Equal(t, wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding, desc.Usage)
	assert.Equal(t, uint32(1), desc.Size.DepthOrArrayLayers)

	require.Len(t, ctx.Samplers, 1)
	assert.Equal(t, wgpu.CompareFunctionAlways, ctx.Samplers[0].Compare)
	assert.Equal(t, wgpu.AddressModeClampToEdge, ctx.Samplers[0].AddressModeU)
	assert.Equal(t, "depth-depth-sampler", ctx.Samplers[0].Label)
}

func TestCreateDepthTextureErrors(t *testing.T) {
	ctx := gputest.NewContext()
	m := NewManager(ctx)

	_, err := m.CreateDepthTexture("empty", 0, 10, wgpu.TextureFormatDepth32Float)
	assert.ErrorIs(t, err, resource.ErrUnsupported)

	ctx.Fail["CreateSampler"] = true
	_, err = m.CreateDepthTexture("depth", 4, 4, wgpu.TextureFormatDepth32Float)
	assert.ErrorIs(t, err, gputest.ErrInjected)
	assert.Equal(t, 2, ctx.Counts.Released, "view and texture are released when the sampler fails")
	assert.Equal(t, 0, m.Len())
}

func TestResize(t *testing.T) {
	ctx := gputest.NewContext()
	m := NewManager(ctx)
	h, err := m.CreateDepthTexture("depth", 4, 4, wgpu.TextureFormatDepth24Plus)
	require.NoError(t, err)

	require.NoError(t, m.Resize(h, 4, 4))
	assert.Equal(t, 1, ctx.Counts.Textures)

	require.NoError(t, m.Resize(h, 8, 2))
	assert.Equal(t, 2, ctx.Counts.Textures)
	assert.Equal(t, 3, ctx.Counts.Released)
	tex, err := m.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), tex.Width)
	assert.Equal(t, wgpu.TextureFormatDepth24Plus, tex.Format)
}

func TestResolveAndRelease(t *testing.T) {
	ctx := gputest.NewContext()
	m := NewManager(ctx)
	h, err := m.CreateDepthTexture("depth", 4, 4, wgpu.TextureFormatDepth32Float)
	require.NoError(t, err)

	assert.Panics(t, func() {
		_, _ = m.Resolve(resource.New(resource.KindMesh, h.Value()))
	})

	m.Release()
	assert.Equal(t, 3, ctx.Counts.Released)
	_, err = m.Resolve(h)
	assert.ErrorIs(t, err, resource.ErrNotFound)
	assert.ErrorIs(t, m.Resize(h, 2, 2), resource.ErrNotFound)
}
