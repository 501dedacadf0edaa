package buffer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-resources/engine/renderer/gputest"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAlwaysAllocates(t *testing.T) {
	ctx := gputest.NewContext()
	m := NewManager(ctx)

	data := []byte{1, 2, 3, 4}
	h1, err := m.Create("a", data, wgpu.BufferUsageVertex)
	require.NoError(t, err)
	h2, err := m.Create("a", data, wgpu.BufferUsageVertex)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.Equal(t, resource.KindBuffer, h1.Kind())
	assert.Equal(t, 2, ctx.Counts.Buffers)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, uint64(8), m.TotalBytes())

	b1, err := m.Resolve(h1)
	require.NoError(t, err)
	b2, err := m.Resolve(h2)
	require.NoError(t, err)
	assert.NotSame(t, b1, b2)
}

func TestCreatePadsUploadButKeepsLogicalSize(t *testing.T) {
	ctx := gputest.NewContext()
	m := NewManager(ctx)

	h, err := m.Create("odd", []byte{9, 8, 7, 6, 5, 4}, wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst)
	require.NoError(t, err)

	size, err := m.Size(h)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), size)

	require.Len(t, ctx.Buffers, 1)
	assert.Equal(t, []byte{9, 8, 7, 6, 5, 4, 0, 0}, ctx.Buffers[0].Contents)
	assert.Equal(t, "odd", ctx.Buffers[0].Label)

	usage, err := m.Usage(h)
	require.NoError(t, err)
	assert.Equal(t, wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst, usage)
}

func TestCreateRejectsEmpty(t *testing.T) {
	m := NewManager(gputest.NewContext())
	_, err := m.Create("empty", nil, wgpu.BufferUsageVertex)
	assert.ErrorIs(t, err, resource.ErrUnsupported)
}

func TestCreatePropagatesDeviceError(t *testing.T) {
	ctx := gputest.NewContext()
	ctx.Fail["CreateBufferInit"] = true
	m := NewManager(ctx)

	_, err := m.Create("x", []byte{1, 2, 3, 4}, wgpu.BufferUsageVertex)
	assert.ErrorIs(t, err, gputest.ErrInjected)
	assert.Equal(t, 0, m.Len())
}

func TestResolveWrongKindPanics(t *testing.T) {
	m := NewManager(gputest.NewContext())
	assert.Panics(t, func() {
		_, _ = m.Resolve(resource.New(resource.KindShader, 1))
	})
}

func TestResolveUnknownHandle(t *testing.T) {
	m := NewManager(gputest.NewContext())
	_, err := m.Resolve(resource.New(resource.KindBuffer, 42))
	assert.ErrorIs(t, err, resource.ErrNotFound)
}

func TestRelease(t *testing.T) {
	ctx := gputest.NewContext()
	m := NewManager(ctx)
	h, err := m.Create("a", []byte{1, 2, 3, 4}, wgpu.BufferUsageVertex)
	require.NoError(t, err)

	m.Release()
	assert.Equal(t, 1, ctx.Counts.Released)
	assert.Equal(t, 0, m.Len())
	_, err = m.Resolve(h)
	assert.ErrorIs(t, err, resource.ErrNotFound)
}

func TestFree(t *testing.T) {
	ctx := gputest.NewContext()
	m := NewManager(ctx)
	a, err := m.Create("a", []byte{1, 2, 3, 4}, wgpu.BufferUsageVertex)
	require.NoError(t, err)
	b, err := m.Create("b", []byte{5, 6}, wgpu.BufferUsageIndex)
	require.NoError(t, err)

	require.NoError(t, m.Free(a))
	assert.Equal(t, 1, ctx.Counts.Released)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, uint64(2), m.TotalBytes())
	assert.ErrorIs(t, m.Free(a), resource.ErrNotFound)

	_, err = m.Resolve(b)
	assert.NoError(t, err)
}
