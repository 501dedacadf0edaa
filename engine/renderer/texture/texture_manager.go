// Package texture owns render-target textures addressed by handle.
package texture

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-resources/engine/renderer"
	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// Texture is a native texture with its default view and sampler.
type Texture struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Sampler *wgpu.Sampler
	Format  wgpu.TextureFormat
	Width   uint32
	Height  uint32
	Label   string
}

// manager is the implementation of the Manager interface.
type manager struct {
	ctx      renderer.GPUContext
	logger   *slog.Logger
	counter  uint64
	textures map[uint64]*Texture
}

// Manager creates textures and hands out Texture handles for them. It is not safe for
// concurrent use.
type Manager interface {
	// CreateDepthTexture creates a 2D depth texture usable both as a render attachment and
	// as a sampled binding, its default view, and a clamp-to-edge sampler.
	//
	// Parameters:
	//   - label: a debug label
	//   - width: the width in pixels, at least 1
	//   - height: the height in pixels, at least 1
	//   - format: a depth format
	//
	// Returns:
	//   - resource.Handle: a handle tagged KindTexture
	//   - error: error if the size is zero or native creation fails
	CreateDepthTexture(label string, width, height uint32, format wgpu.TextureFormat) (resource.Handle, error)

	// Resize recreates the texture behind h at a new size. The handle stays valid and the
	// old native objects are released.
	//
	// Parameters:
	//   - h: the texture handle
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: resource.ErrNotFound for an unknown handle, or a creation error
	Resize(h resource.Handle, width, height uint32) error

	// Resolve returns the texture for a handle. It panics if the handle is not tagged
	// KindTexture.
	//
	// Parameters:
	//   - h: the texture handle
	//
	// Returns:
	//   - *Texture: the texture
	//   - error: resource.ErrNotFound if the handle was not issued by this manager
	Resolve(h resource.Handle) (*Texture, error)

	// Len returns the number of live textures.
	//
	// Returns:
	//   - int: the texture count
	Len() int

	// Release frees every texture, view and sampler.
	Release()
}

var _ Manager = &manager{}

// NewManager creates a texture Manager that allocates through ctx.
//
// Parameters:
//   - ctx: the GPU context to allocate through
//   - opts: a variadic list of ManagerBuilderOption functions
//
// Returns:
//   - Manager: the texture manager
func NewManager(ctx renderer.GPUContext, opts ...ManagerBuilderOption) Manager {
	m := &manager{
		ctx:      ctx,
		logger:   slog.Default(),
		textures: make(map[uint64]*Texture),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *manager) CreateDepthTexture(label string, width, height uint32, format wgpu.TextureFormat) (resource.Handle, error) {
	t, err := m.createDepth(label, width, height, format)
	if err != nil {
		return resource.Handle{}, err
	}
	m.counter++
	h := resource.New(resource.KindTexture, m.counter)
	m.textures[m.counter] = t

	m.logger.Info("depth texture created",
		slog.String("label", label),
		slog.String("handle", h.String()),
		slog.Int("width", int(width)),
		slog.Int("height", int(height)))
	return h, nil
}

func (m *manager) createDepth(label string, width, height uint32, format wgpu.TextureFormat) (*Texture, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("texture %q: %w: size %dx%d", label, resource.ErrUnsupported, width, height)
	}

	tex, view, err := m.ctx.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
		Dimension:     wgpu.TextureDimension2D,
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create depth texture %q: %w", label, err)
	}

	sampler, err := m.ctx.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + "-depth-sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   100,
		Compare:       wgpu.CompareFunctionAlways,
		MaxAnisotropy: 1,
	})
	if err != nil {
		m.ctx.ReleaseObject(view)
		m.ctx.ReleaseObject(tex)
		return nil, fmt.Errorf("failed to create sampler for %q: %w", label, err)
	}

	return &Texture{
		Texture: tex,
		View:    view,
		Sampler: sampler,
		Format:  format,
		Width:   width,
		Height:  height,
		Label:   label,
	}, nil
}

func (m *manager) Resize(h resource.Handle, width, height uint32) error {
	old, err := m.Resolve(h)
	if err != nil {
		return err
	}
	if old.Width == width && old.Height == height {
		return nil
	}
	t, err := m.createDepth(old.Label, width, height, old.Format)
	if err != nil {
		return err
	}
	m.release(old)
	m.textures[h.Value()] = t
	m.logger.Debug("depth texture resized",
		slog.String("handle", h.String()),
		slog.Int("width", int(width)),
		slog.Int("height", int(height)))
	return nil
}

func (m *manager) Resolve(h resource.Handle) (*Texture, error) {
	h.MustBe(resource.KindTexture)
	t, ok := m.textures[h.Value()]
	if !ok {
		return nil, resource.NotFound(h)
	}
	return t, nil
}

func (m *manager) Len() int {
	return len(m.textures)
}

func (m *manager) release(t *Texture) {
	m.ctx.ReleaseObject(t.Sampler)
	m.ctx.ReleaseObject(t.View)
	m.ctx.ReleaseObject(t.Texture)
}

func (m *manager) Release() {
	for key, t := range m.textures {
		m.release(t)
		delete(m.textures, key)
	}
}
